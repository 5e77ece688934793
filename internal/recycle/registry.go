package recycle

import "sync"

// Registry maps keys to their recycle queues, creating each queue lazily
// on first access.
//
// Lookups take the read lock only. A miss upgrades to the write lock and
// re-checks before installing, so concurrent first-accesses to the same
// key always converge on a single shared queue.
type Registry[K comparable, T any] struct {
	mu     sync.RWMutex
	queues map[K]*Queue[T]
}

// NewRegistry creates an empty registry.
func NewRegistry[K comparable, T any]() *Registry[K, T] {
	return &Registry[K, T]{queues: make(map[K]*Queue[T])}
}

// Resolve returns the queue for key, creating it if this is the first
// access.
func (r *Registry[K, T]) Resolve(key K) *Queue[T] {
	r.mu.RLock()
	q, ok := r.queues[key]
	r.mu.RUnlock()
	if ok {
		return q
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Re-check: another goroutine may have installed the queue between
	// the read unlock and here.
	if q, ok := r.queues[key]; ok {
		return q
	}
	q = NewQueue[T]()
	r.queues[key] = q
	return q
}

// Keys returns a snapshot of the keys with a queue installed.
func (r *Registry[K, T]) Keys() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]K, 0, len(r.queues))
	for k := range r.queues {
		keys = append(keys, k)
	}
	return keys
}

// Entries returns the total number of entries linked across all queues.
func (r *Registry[K, T]) Entries() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, q := range r.queues {
		total += q.Len()
	}
	return total
}
