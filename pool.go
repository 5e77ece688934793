package hwansaeng

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/teamPaprika/hwansaeng/events"
	"github.com/teamPaprika/hwansaeng/internal/recycle"
	"github.com/teamPaprika/hwansaeng/metrics"
)

// Factory constructs a fresh resource for a key. It is called whenever an
// Acquire finds no recyclable resource. Failures propagate to the Acquire
// caller untouched; the pool performs no retries and mutates no state on
// a factory error.
type Factory[K comparable, R any] func(ctx context.Context, key K) (R, error)

// Finalizer destroys a resource, permanently removing it from
// circulation. It runs either synchronously inside a release (pool at
// capacity) or on an expiry timer's goroutine (resource outlived its
// pooling window).
type Finalizer[R any] func(res R) error

// ReleaseFunc returns a resource to the pool. The holder must call it
// exactly once when finished with the resource. Depending on the current
// pooled-entry count it either pools the resource for reuse or finalizes
// it immediately; in the latter case the finalizer's error is returned.
type ReleaseFunc func() error

// Pool is a keyed recycling pool. Keys partition it into independent
// sub-pools; the capacity cap and the TTL apply globally.
//
// A Pool is safe for concurrent use and has no Close: it owns no
// resources of its own, and every pooled resource is eventually handed to
// the finalizer by its expiry timer.
type Pool[K comparable, R any] struct {
	ttl       time.Duration
	maxSize   int64
	factory   Factory[K, R]
	finalizer Finalizer[R]

	registry *recycle.Registry[K, R]
	pooled   atomic.Int64

	name    string
	metrics *metrics.PoolMetrics
	broker  *events.Broker
}

// New creates a pool from cfg and the two caller-supplied callbacks.
func New[K comparable, R any](cfg Config, factory Factory[K, R], finalizer Finalizer[R], opts ...Option) (*Pool[K, R], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, ErrNilFactory
	}
	if finalizer == nil {
		return nil, ErrNilFinalizer
	}

	o := options{name: "default"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = metrics.NewPoolMetrics()
	}

	return &Pool[K, R]{
		ttl:       cfg.ttl(),
		maxSize:   int64(cfg.MaxPoolSize),
		factory:   factory,
		finalizer: finalizer,
		registry:  recycle.NewRegistry[K, R](),
		name:      o.name,
		metrics:   o.metrics,
		broker:    o.broker,
	}, nil
}

// Acquire returns a resource for key together with its release action.
//
// A recyclable resource pooled under the same key is returned in
// preference to constructing a fresh one; its identity is exactly the
// instance a previous holder released. With nothing claimable in the
// key's queue the factory runs, and its error (if any) is returned
// as-is with a nil ReleaseFunc.
func (p *Pool[K, R]) Acquire(ctx context.Context, key K) (R, ReleaseFunc, error) {
	queue := p.registry.Resolve(key)

	if res, ok := queue.TryRecycle(); ok {
		p.metrics.SetPooledEntries(p.name, p.pooled.Add(-1))
		p.metrics.RecordAcquireRecycled(p.name)
		p.publish(events.ResourceClaimed, key, nil)
		return res, p.newRelease(queue, key, res), nil
	}

	res, err := p.factory(ctx, key)
	if err != nil {
		var zero R
		return zero, nil, err
	}
	p.metrics.RecordAcquireFresh(p.name)
	return res, p.newRelease(queue, key, res), nil
}

// Size returns the current number of pooled (not in-use) resources
// across all keys. The value is exact only while no Acquire or release is
// in flight.
func (p *Pool[K, R]) Size() int {
	return int(p.pooled.Load())
}

// Name returns the pool's label used in logs, metrics and events.
func (p *Pool[K, R]) Name() string {
	return p.name
}

// Stats returns a snapshot of the pool's utilization counters.
func (p *Pool[K, R]) Stats() metrics.PoolStats {
	return p.metrics.Stats()
}

// newRelease builds the release action handed to a resource holder. The
// take-once guard makes a second call return ErrAlreadyReleased without
// touching pool state.
func (p *Pool[K, R]) newRelease(queue *recycle.Queue[R], key K, res R) ReleaseFunc {
	var released atomic.Bool
	return func() error {
		if !released.CompareAndSwap(false, true) {
			return ErrAlreadyReleased
		}
		return p.release(queue, key, res)
	}
}

// release applies the recycling policy: finalize immediately at or over
// the cap, otherwise pool the resource under an armed expiry timer.
//
// The capacity check is read-then-act against the atomic counter; a
// burst of concurrent releases can transiently overshoot the cap. That
// is the documented soft-cap behavior.
func (p *Pool[K, R]) release(queue *recycle.Queue[R], key K, res R) error {
	if p.pooled.Load() >= p.maxSize {
		p.metrics.RecordReleaseFinalized(p.name)
		p.publish(events.ResourceFinalized, key, nil)
		return p.finalizer(res)
	}

	p.metrics.SetPooledEntries(p.name, p.pooled.Add(1))

	entry := recycle.NewEntry(res)
	entry.Arm(p.ttl, func(expired R) {
		p.expire(queue, entry, key, expired)
	})
	queue.Push(entry)

	p.metrics.RecordReleasePooled(p.name)
	p.publish(events.ResourcePooled, key, nil)
	return nil
}

// expire runs on an expiry timer's goroutine after the timer won the
// claim race for its entry. Counter and queue bookkeeping complete
// before the finalizer is invoked, so a failing finalizer cannot corrupt
// either.
func (p *Pool[K, R]) expire(queue *recycle.Queue[R], entry *recycle.Entry[R], key K, res R) {
	queue.Remove(entry)
	p.metrics.SetPooledEntries(p.name, p.pooled.Add(-1))
	p.metrics.RecordExpiration(p.name)
	p.publish(events.ResourceExpired, key, nil)

	if err := p.finalizer(res); err != nil {
		// No caller is waiting on this path; surface the failure on the
		// log and the event broker.
		slog.Error("finalizer failed for expired resource",
			"pool", p.name,
			"key", fmt.Sprint(key),
			"error", err,
		)
		p.metrics.RecordFinalizerError(p.name)
		p.publish(events.FinalizerError, key, err)
	}
}

func (p *Pool[K, R]) publish(t events.EventType, key K, err error) {
	if p.broker == nil {
		return
	}
	p.broker.Publish(*events.NewEvent(t).
		WithPool(p.name).
		WithKey(fmt.Sprint(key)).
		WithError(err))
}
