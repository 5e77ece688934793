// Package claim provides a single-assignment take-once cell.
//
// A Slot holds exactly one value from construction until the first
// successful TryTake. Every later or concurrent taker observes an empty
// slot and mutates nothing, which makes the Slot suitable for arbitrating
// races between independent actors over a single resource.
package claim

import "sync/atomic"

// Slot is a take-once cell holding a single value of type T.
//
// The full-to-empty transition is a single compare-and-swap, so exactly
// one caller ever receives the value regardless of contention. A Slot is
// not reusable after it has been taken.
type Slot[T any] struct {
	taken atomic.Uint32
	value T
}

// NewSlot creates a full Slot holding value.
func NewSlot[T any](value T) *Slot[T] {
	return &Slot[T]{value: value}
}

// TryTake attempts to empty the slot.
//
// The first caller to succeed receives the stored value and true. All
// other callers, concurrent or later, receive the zero value and false.
func (s *Slot[T]) TryTake() (T, bool) {
	if s.taken.CompareAndSwap(0, 1) {
		v := s.value
		var zero T
		// Drop the reference so the winner is the only remaining holder.
		s.value = zero
		return v, true
	}
	var zero T
	return zero, false
}

// Taken reports whether the slot has already been emptied.
func (s *Slot[T]) Taken() bool {
	return s.taken.Load() != 0
}
