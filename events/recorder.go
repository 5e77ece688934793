package events

import "sync"

// Recorder retains the most recent events seen on a broker topic. It is
// a convenience consumer for observability endpoints that want to show
// what the pool has been doing lately.
type Recorder struct {
	mu      sync.Mutex
	buf     []PoolEvent
	max     int
	sub     *Subscription
	stopped chan struct{}
}

// NewRecorder subscribes to topic on b and keeps the last max events.
// Returns nil if the broker is closed.
func NewRecorder(b *Broker, topic string, max int) *Recorder {
	sub := b.Subscribe(topic)
	if sub == nil {
		return nil
	}
	r := &Recorder{
		max:     max,
		sub:     sub,
		stopped: make(chan struct{}),
	}
	go r.consume()
	return r
}

func (r *Recorder) consume() {
	defer close(r.stopped)
	for ev := range r.sub.Events() {
		r.mu.Lock()
		r.buf = append(r.buf, ev)
		if len(r.buf) > r.max {
			r.buf = r.buf[len(r.buf)-r.max:]
		}
		r.mu.Unlock()
	}
}

// Recent returns the retained events, oldest first.
func (r *Recorder) Recent() []PoolEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PoolEvent, len(r.buf))
	copy(out, r.buf)
	return out
}

// Stop unsubscribes and waits for the consumer to drain.
func (r *Recorder) Stop() {
	r.sub.Unsubscribe()
	<-r.stopped
}
