// Package events is an in-memory pub/sub channel for pool lifecycle
// events. It carries the failures that have no caller to return to, such
// as finalizer errors raised by an expiry timer, alongside the ordinary
// pooled/claimed/expired transitions.
package events

import (
	"log/slog"
	"sync"
)

// Broker fans events out to topic subscribers.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan PoolEvent]struct{}
	bufferSize  int
	closed      bool
}

// NewBroker creates a new event broker.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[string]map[chan PoolEvent]struct{}),
		bufferSize:  16,
	}
}

// Subscription is one subscriber's handle on the broker.
type Subscription struct {
	topic  string
	ch     chan PoolEvent
	broker *Broker
}

// Events returns the channel for receiving events.
func (s *Subscription) Events() <-chan PoolEvent {
	return s.ch
}

// Unsubscribe removes this subscription and closes the channel.
func (s *Subscription) Unsubscribe() {
	s.broker.unsubscribe(s.topic, s.ch)
}

// Subscribe registers a new channel under topic and returns its
// subscription handle, or nil when the broker has been closed. Valid
// topics are "*" (everything), a pool name, or "pool/key" for one
// sub-pool.
func (b *Broker) Subscribe(topic string) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	ch := make(chan PoolEvent, b.bufferSize)

	if b.subscribers[topic] == nil {
		b.subscribers[topic] = make(map[chan PoolEvent]struct{})
	}
	b.subscribers[topic][ch] = struct{}{}

	slog.Debug("new subscription", "topic", topic)
	return &Subscription{
		topic:  topic,
		ch:     ch,
		broker: b,
	}
}

// unsubscribe drops ch from topic, closing it so a ranging consumer
// terminates. Empty topic sets are pruned from the map.
func (b *Broker) unsubscribe(topic string, ch chan PoolEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.subscribers[topic]
	if !ok {
		return
	}
	if _, exists := subs[ch]; exists {
		delete(subs, ch)
		close(ch)
		slog.Debug("unsubscribed", "topic", topic)
	}
	if len(subs) == 0 {
		delete(b.subscribers, topic)
	}
}

// Publish delivers event to every subscription whose topic matches: the
// exact pool/key topic, the bare pool name, and "*". Each candidate set
// is collected at most once, so a pool-level event does not hit the pool
// subscribers twice.
//
// Publishing never blocks. A subscriber whose channel is full misses the
// event; release and expiry paths must not stall on a slow consumer.
func (b *Broker) Publish(event PoolEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	topic := event.Topic()

	var channels []chan PoolEvent
	for ch := range b.subscribers[topic] {
		channels = append(channels, ch)
	}
	if event.Pool != "" && topic != event.Pool {
		for ch := range b.subscribers[event.Pool] {
			channels = append(channels, ch)
		}
	}
	if topic != "*" {
		for ch := range b.subscribers["*"] {
			channels = append(channels, ch)
		}
	}

	for _, ch := range channels {
		select {
		case ch <- event:
		default:
			slog.Warn("event dropped, subscriber channel full",
				"event_type", event.Type,
				"topic", topic,
			)
		}
	}
}

// Close shuts the broker down and closes every subscriber channel.
// Publish and Subscribe become no-ops afterwards.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for topic, subs := range b.subscribers {
		for ch := range subs {
			close(ch)
		}
		delete(b.subscribers, topic)
	}
}

// Stats returns the subscriber count per topic.
func (b *Broker) Stats() map[string]int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stats := make(map[string]int)
	for topic, subs := range b.subscribers {
		stats[topic] = len(subs)
	}
	return stats
}
