// Package workload drives a configurable acquire/hold/release cycle
// against a pool. The daemon uses it to generate recycling activity that
// the /stats and /metrics endpoints can be watched against.
package workload

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/teamPaprika/hwansaeng"
	"github.com/teamPaprika/hwansaeng/internal/config"
)

// Runner manages a set of workers cycling resources through one pool.
type Runner[K comparable, R any] struct {
	pool   *hwansaeng.Pool[K, R]
	keys   []K
	cfg    config.WorkloadConfig
	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewRunner creates a runner spreading load across keys.
func NewRunner[K comparable, R any](pool *hwansaeng.Pool[K, R], keys []K, cfg config.WorkloadConfig) *Runner[K, R] {
	return &Runner[K, R]{
		pool: pool,
		keys: keys,
		cfg:  cfg,
	}
}

// Start launches the workers.
func (r *Runner[K, R]) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.group, ctx = errgroup.WithContext(ctx)

	for i := 0; i < r.cfg.Workers; i++ {
		seed := time.Now().UnixNano() + int64(i)
		r.group.Go(func() error {
			r.work(ctx, rand.New(rand.NewSource(seed)))
			return nil
		})
	}

	slog.Info("workload runner started",
		"workers", r.cfg.Workers,
		"keys", len(r.keys),
		"hold_time", r.cfg.HoldTime,
		"interval", r.cfg.Interval,
	)
}

// Stop cancels the workers and waits for them to finish their current
// cycle.
func (r *Runner[K, R]) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	if r.group != nil {
		_ = r.group.Wait()
	}
	slog.Info("workload runner stopped")
}

// work runs one worker loop until the context is cancelled.
func (r *Runner[K, R]) work(ctx context.Context, rng *rand.Rand) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.cycle(ctx, rng)
		}
	}
}

// cycle acquires a resource under a random key, holds it, and releases.
func (r *Runner[K, R]) cycle(ctx context.Context, rng *rand.Rand) {
	key := r.keys[rng.Intn(len(r.keys))]

	_, release, err := r.pool.Acquire(ctx, key)
	if err != nil {
		slog.Warn("workload acquire failed", "key", key, "error", err)
		return
	}

	select {
	case <-ctx.Done():
		// Still release on shutdown so nothing leaks.
	case <-time.After(r.cfg.HoldTime):
	}

	if err := release(); err != nil {
		slog.Warn("workload release failed", "key", key, "error", err)
	}
}
