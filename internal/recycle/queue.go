// Package recycle implements the per-key recycling machinery of the pool:
// pooled entries, their expiry timers, the FIFO queues holding them, and
// the keyed registry resolving a queue per key.
package recycle

import "sync"

type node[T any] struct {
	entry *Entry[T]
	next  *node[T]
}

// Queue is an unbounded FIFO of pooled entries for a single key.
//
// It is implemented as a mutex-guarded linked list. Push and TryRecycle
// never block waiting for entries; an empty queue is an immediate miss.
type Queue[T any] struct {
	mu     sync.Mutex
	head   *node[T]
	tail   *node[T]
	length int
}

// NewQueue creates an empty queue.
func NewQueue[T any]() *Queue[T] {
	return new(Queue[T])
}

// Push appends an entry to the tail.
func (q *Queue[T]) Push(e *Entry[T]) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := &node[T]{entry: e}
	if q.tail == nil {
		q.head = n
	} else {
		q.tail.next = n
	}
	q.tail = n
	q.length++
}

// TryRecycle pops entries oldest-first until one is successfully claimed,
// returning its resource. Entries whose expiry timer won the claim race
// are discarded in passing. The loop is bounded by the queue length at
// entry, since every iteration removes one element.
//
// Returns false without mutating anything further when the queue runs out
// of claimable entries.
func (q *Queue[T]) TryRecycle() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.head != nil {
		n := q.head
		q.head = n.next
		if q.head == nil {
			q.tail = nil
		}
		q.length--

		if res, ok := n.entry.TryClaim(); ok {
			return res, true
		}
	}

	var zero T
	return zero, false
}

// Remove unlinks e from the queue if still present. Used by the expiry
// path to drop an entry whose timer already claimed it; a miss is fine,
// the entry was popped by a concurrent TryRecycle.
func (q *Queue[T]) Remove(e *Entry[T]) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var prev *node[T]
	for n := q.head; n != nil; n = n.next {
		if n.entry != e {
			prev = n
			continue
		}
		if prev == nil {
			q.head = n.next
		} else {
			prev.next = n.next
		}
		if q.tail == n {
			q.tail = prev
		}
		q.length--
		return
	}
}

// Len returns the number of entries currently linked, including entries
// whose timer has claimed them but which have not been discarded yet.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.length
}
