package claim

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlot_TryTake(t *testing.T) {
	t.Run("first take returns value", func(t *testing.T) {
		s := NewSlot("hello")
		v, ok := s.TryTake()
		require.True(t, ok)
		assert.Equal(t, "hello", v)
	})

	t.Run("second take observes empty", func(t *testing.T) {
		s := NewSlot(42)
		_, ok := s.TryTake()
		require.True(t, ok)

		v, ok := s.TryTake()
		assert.False(t, ok)
		assert.Zero(t, v)
	})

	t.Run("pointer value is released", func(t *testing.T) {
		type resource struct{ id int }
		res := &resource{id: 7}
		s := NewSlot(res)

		v, ok := s.TryTake()
		require.True(t, ok)
		assert.Same(t, res, v)

		// The slot no longer holds the pointer.
		v, ok = s.TryTake()
		assert.False(t, ok)
		assert.Nil(t, v)
	})
}

func TestSlot_Taken(t *testing.T) {
	s := NewSlot(1)
	assert.False(t, s.Taken())

	_, _ = s.TryTake()
	assert.True(t, s.Taken())
}

func TestSlot_ConcurrentTake(t *testing.T) {
	// Exactly one of many concurrent takers may win.
	const takers = 128

	s := NewSlot("resource")

	var wins atomic.Int64
	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(takers)

	for i := 0; i < takers; i++ {
		go func() {
			defer done.Done()
			start.Wait()
			if v, ok := s.TryTake(); ok {
				assert.Equal(t, "resource", v)
				wins.Add(1)
			}
		}()
	}

	start.Done()
	done.Wait()

	assert.Equal(t, int64(1), wins.Load())
}
