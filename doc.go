// Package hwansaeng is a generic, keyed recycling pool for expensive
// resources such as connections or handles.
//
// Instead of destroying a resource on every release, the pool keeps it in
// a per-key queue for a configurable time window. A later Acquire for the
// same key reuses the pooled resource; a resource nobody reclaims within
// the window is handed to the caller-supplied finalizer by its own expiry
// timer. The pool never constructs or destroys resources itself; both
// sides are opaque callbacks.
//
// Correctness under concurrency rests on one primitive: every pooled
// entry guards its resource with a take-once claim slot, so a reacquiring
// caller and the entry's expiry timer can race freely and exactly one of
// them ever obtains the resource. Timer cancellation is best-effort
// cleanup only.
//
// The global capacity limit is a soft cap: the release-time check reads
// the pooled-entry counter without synchronizing against concurrent
// releases, so short bursts may overshoot it. Releases at or over the cap
// finalize their resource immediately.
package hwansaeng
