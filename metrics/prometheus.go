// Package metrics exposes pool lifecycle metrics via Prometheus and as an
// in-process atomic snapshot.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// acquiresTotal tracks Acquire calls per pool, split by whether the
	// resource was recycled or freshly constructed.
	acquiresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hwansaeng",
		Subsystem: "pool",
		Name:      "acquires_total",
		Help:      "Total number of pool Acquire calls",
	}, []string{"pool", "source"})

	// releasesTotal tracks release invocations per pool, split by outcome.
	releasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hwansaeng",
		Subsystem: "pool",
		Name:      "releases_total",
		Help:      "Total number of release invocations",
	}, []string{"pool", "outcome"})

	// expirationsTotal tracks entries finalized by their own expiry timer.
	expirationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hwansaeng",
		Subsystem: "pool",
		Name:      "expirations_total",
		Help:      "Total number of pooled entries expired by their timer",
	}, []string{"pool"})

	// finalizerErrorsTotal tracks finalizer failures on the timer path,
	// which have no caller to propagate to.
	finalizerErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hwansaeng",
		Subsystem: "pool",
		Name:      "finalizer_errors_total",
		Help:      "Total number of finalizer failures with no waiting caller",
	}, []string{"pool"})

	// pooledEntries tracks the current number of pooled (not in-use)
	// entries per pool.
	pooledEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "hwansaeng",
		Subsystem: "pool",
		Name:      "pooled_entries",
		Help:      "Current number of pooled (not in-use) entries",
	}, []string{"pool"})
)

// Label values for acquire source and release outcome.
const (
	SourceFresh    = "fresh"
	SourceRecycled = "recycled"

	OutcomePooled    = "pooled"
	OutcomeFinalized = "finalized"
)

// PoolMetrics tracks one pool's utilization for observability.
type PoolMetrics struct {
	fresh           atomic.Uint64
	recycled        atomic.Uint64
	pooled          atomic.Uint64
	finalized       atomic.Uint64
	expired         atomic.Uint64
	finalizerErrors atomic.Uint64
}

// NewPoolMetrics creates a new PoolMetrics instance.
func NewPoolMetrics() *PoolMetrics {
	return &PoolMetrics{}
}

// RecordAcquireFresh counts an Acquire served by the factory.
func (m *PoolMetrics) RecordAcquireFresh(pool string) {
	m.fresh.Add(1)
	acquiresTotal.WithLabelValues(pool, SourceFresh).Inc()
}

// RecordAcquireRecycled counts an Acquire served from the pool.
func (m *PoolMetrics) RecordAcquireRecycled(pool string) {
	m.recycled.Add(1)
	acquiresTotal.WithLabelValues(pool, SourceRecycled).Inc()
}

// RecordReleasePooled counts a release that pooled its resource.
func (m *PoolMetrics) RecordReleasePooled(pool string) {
	m.pooled.Add(1)
	releasesTotal.WithLabelValues(pool, OutcomePooled).Inc()
}

// RecordReleaseFinalized counts a release that finalized immediately
// because the pool was at capacity.
func (m *PoolMetrics) RecordReleaseFinalized(pool string) {
	m.finalized.Add(1)
	releasesTotal.WithLabelValues(pool, OutcomeFinalized).Inc()
}

// RecordExpiration counts an entry finalized by its expiry timer.
func (m *PoolMetrics) RecordExpiration(pool string) {
	m.expired.Add(1)
	expirationsTotal.WithLabelValues(pool).Inc()
}

// RecordFinalizerError counts a finalizer failure on the timer path.
func (m *PoolMetrics) RecordFinalizerError(pool string) {
	m.finalizerErrors.Add(1)
	finalizerErrorsTotal.WithLabelValues(pool).Inc()
}

// SetPooledEntries updates the pooled-entries gauge.
func (m *PoolMetrics) SetPooledEntries(pool string, n int64) {
	pooledEntries.WithLabelValues(pool).Set(float64(n))
}

// Stats returns current pool statistics.
func (m *PoolMetrics) Stats() PoolStats {
	return PoolStats{
		FreshAcquires:    m.fresh.Load(),
		RecycledAcquires: m.recycled.Load(),
		PooledReleases:   m.pooled.Load(),
		FinalizedOnCap:   m.finalized.Load(),
		Expirations:      m.expired.Load(),
		FinalizerErrors:  m.finalizerErrors.Load(),
	}
}

// PoolStats contains pool utilization statistics.
type PoolStats struct {
	FreshAcquires    uint64 `json:"fresh_acquires"`
	RecycledAcquires uint64 `json:"recycled_acquires"`
	PooledReleases   uint64 `json:"pooled_releases"`
	FinalizedOnCap   uint64 `json:"finalized_on_cap"`
	Expirations      uint64 `json:"expirations"`
	FinalizerErrors  uint64 `json:"finalizer_errors"`
}

// HitRate calculates the share of acquires served from the pool.
func (s PoolStats) HitRate() float64 {
	total := s.FreshAcquires + s.RecycledAcquires
	if total == 0 {
		return 0
	}
	return float64(s.RecycledAcquires) / float64(total)
}
