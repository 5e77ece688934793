package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of pool lifecycle event.
type EventType string

const (
	// ResourcePooled is published when a released resource is wrapped in
	// an entry and enqueued for recycling.
	ResourcePooled EventType = "resource.pooled"

	// ResourceClaimed is published when a reacquiring caller claims a
	// pooled entry before its timer fires.
	ResourceClaimed EventType = "resource.claimed"

	// ResourceExpired is published when an entry's expiry timer wins the
	// claim race and the resource is handed to the finalizer.
	ResourceExpired EventType = "resource.expired"

	// ResourceFinalized is published when a release finalizes its
	// resource immediately because the pool is at capacity.
	ResourceFinalized EventType = "resource.finalized"

	// FinalizerError is published when a timer-driven finalizer fails.
	// There is no caller to propagate the error to, so subscribers are
	// the only consumers of it besides the error log.
	FinalizerError EventType = "finalizer.error"
)

// PoolEvent represents one pool lifecycle transition.
type PoolEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Pool      string    `json:"pool,omitempty"`
	Key       string    `json:"key,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// NewEvent creates a new pool event.
func NewEvent(eventType EventType) *PoolEvent {
	return &PoolEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
	}
}

// WithPool sets the pool name for the event.
func (e *PoolEvent) WithPool(pool string) *PoolEvent {
	e.Pool = pool
	return e
}

// WithKey sets the stringified pool key for the event.
func (e *PoolEvent) WithKey(key string) *PoolEvent {
	e.Key = key
	return e
}

// WithError records the failure carried by the event.
func (e *PoolEvent) WithError(err error) *PoolEvent {
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// Topic returns the topic string for this event.
// Format: pool or pool/key.
func (e *PoolEvent) Topic() string {
	if e.Pool == "" {
		return "*"
	}
	if e.Key != "" {
		return e.Pool + "/" + e.Key
	}
	return e.Pool
}
