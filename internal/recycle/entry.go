package recycle

import (
	"time"

	"github.com/teamPaprika/hwansaeng/internal/claim"
)

// Entry is one pooled resource instance: a take-once claim slot plus the
// expiry timer racing against reacquisition.
//
// The slot is the single source of truth for ownership. The timer is
// advisory machinery around it: stopping a timer that has already fired,
// or a firing that races with a claim, is harmless because only the slot
// winner may touch the resource.
type Entry[T any] struct {
	slot  *claim.Slot[T]
	timer *time.Timer
}

// NewEntry creates an entry holding res, with no timer armed yet.
func NewEntry[T any](res T) *Entry[T] {
	return &Entry[T]{slot: claim.NewSlot(res)}
}

// Arm schedules expiry after ttl. If the timer wins the claim race,
// onExpire is invoked with the resource on the timer's goroutine.
// If a reacquiring caller has already claimed the entry, the firing is a
// no-op.
//
// Arm must be called at most once, before the entry is published to a
// queue: the timer handle is written without synchronization and may not
// be set while other goroutines can reach the entry.
func (e *Entry[T]) Arm(ttl time.Duration, onExpire func(res T)) {
	e.timer = time.AfterFunc(ttl, func() {
		if res, ok := e.slot.TryTake(); ok {
			onExpire(res)
		}
	})
}

// TryClaim attempts to take ownership of the entry's resource.
//
// On success the expiry timer is stopped on a best-effort basis; a lost
// stop is fine, the emptied slot neutralizes any late firing.
func (e *Entry[T]) TryClaim() (T, bool) {
	res, ok := e.slot.TryTake()
	if ok && e.timer != nil {
		e.timer.Stop()
	}
	return res, ok
}

// Claimed reports whether the entry's resource has been taken, by either
// a caller or its timer.
func (e *Entry[T]) Claimed() bool {
	return e.slot.Taken()
}
