package hwansaeng

import (
	"errors"
	"time"

	"github.com/teamPaprika/hwansaeng/events"
	"github.com/teamPaprika/hwansaeng/metrics"
)

var (
	// ErrInvalidTTL is returned by New when WaitInSeconds is not positive.
	ErrInvalidTTL = errors.New("hwansaeng: wait_in_seconds must be positive")

	// ErrNegativeCap is returned by New when MaxPoolSize is negative.
	ErrNegativeCap = errors.New("hwansaeng: max_pool_size must not be negative")

	// ErrNilFactory is returned by New when no factory is supplied.
	ErrNilFactory = errors.New("hwansaeng: factory must not be nil")

	// ErrNilFinalizer is returned by New when no finalizer is supplied.
	ErrNilFinalizer = errors.New("hwansaeng: finalizer must not be nil")

	// ErrAlreadyReleased is returned by a ReleaseFunc invoked more than
	// once. The contract is call-exactly-once; the error only makes
	// misuse visible, the duplicate call changes no pool state.
	ErrAlreadyReleased = errors.New("hwansaeng: resource already released")
)

// Config holds the recognized pool options.
type Config struct {
	// WaitInSeconds is how long a pooled, unclaimed resource survives
	// before its expiry timer finalizes it. Must be positive.
	WaitInSeconds int

	// MaxPoolSize is the soft global cap on concurrently pooled (not
	// in-use) resources across all keys. Zero disables pooling entirely:
	// every release finalizes immediately. Must not be negative.
	MaxPoolSize int
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.WaitInSeconds <= 0 {
		return ErrInvalidTTL
	}
	if c.MaxPoolSize < 0 {
		return ErrNegativeCap
	}
	return nil
}

// ttl returns the pooled-entry lifetime as a duration.
func (c Config) ttl() time.Duration {
	return time.Duration(c.WaitInSeconds) * time.Second
}

type options struct {
	name    string
	metrics *metrics.PoolMetrics
	broker  *events.Broker
}

// Option customizes a pool beyond its Config.
type Option func(*options)

// WithName labels the pool in logs, metrics and events. Defaults to
// "default".
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithMetrics shares a metrics instance between pools. Without it the
// pool creates its own.
func WithMetrics(m *metrics.PoolMetrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithBroker attaches a lifecycle event broker. Timer-driven finalizer
// failures have no caller to return to; the broker is where they surface
// besides the error log.
func WithBroker(b *events.Broker) Option {
	return func(o *options) { o.broker = b }
}
