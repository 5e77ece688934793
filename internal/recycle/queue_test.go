package recycle

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_TryRecycle(t *testing.T) {
	t.Run("empty queue misses", func(t *testing.T) {
		q := NewQueue[string]()
		res, ok := q.TryRecycle()
		assert.False(t, ok)
		assert.Zero(t, res)
	})

	t.Run("single entry", func(t *testing.T) {
		q := NewQueue[string]()
		q.Push(NewEntry("a"))

		res, ok := q.TryRecycle()
		require.True(t, ok)
		assert.Equal(t, "a", res)
		assert.Equal(t, 0, q.Len())
	})

	t.Run("fifo order", func(t *testing.T) {
		q := NewQueue[int]()
		for i := 1; i <= 3; i++ {
			q.Push(NewEntry(i))
		}

		for want := 1; want <= 3; want++ {
			res, ok := q.TryRecycle()
			require.True(t, ok)
			assert.Equal(t, want, res)
		}

		_, ok := q.TryRecycle()
		assert.False(t, ok)
	})

	t.Run("skips claimed entries", func(t *testing.T) {
		q := NewQueue[string]()

		dead := NewEntry("dead")
		_, ok := dead.TryClaim()
		require.True(t, ok)
		q.Push(dead)
		q.Push(NewEntry("live"))

		res, ok := q.TryRecycle()
		require.True(t, ok)
		assert.Equal(t, "live", res)
		assert.Equal(t, 0, q.Len(), "dead entry discarded in passing")
	})

	t.Run("all entries claimed misses", func(t *testing.T) {
		q := NewQueue[string]()
		for i := 0; i < 3; i++ {
			e := NewEntry("dead")
			_, ok := e.TryClaim()
			require.True(t, ok)
			q.Push(e)
		}

		_, ok := q.TryRecycle()
		assert.False(t, ok)
		assert.Equal(t, 0, q.Len())
	})
}

func TestQueue_Remove(t *testing.T) {
	t.Run("removes middle entry", func(t *testing.T) {
		q := NewQueue[int]()
		entries := []*Entry[int]{NewEntry(1), NewEntry(2), NewEntry(3)}
		for _, e := range entries {
			q.Push(e)
		}

		q.Remove(entries[1])
		assert.Equal(t, 2, q.Len())

		res, ok := q.TryRecycle()
		require.True(t, ok)
		assert.Equal(t, 1, res)
		res, ok = q.TryRecycle()
		require.True(t, ok)
		assert.Equal(t, 3, res)
	})

	t.Run("removes tail and keeps push working", func(t *testing.T) {
		q := NewQueue[int]()
		head, tail := NewEntry(1), NewEntry(2)
		q.Push(head)
		q.Push(tail)

		q.Remove(tail)
		q.Push(NewEntry(3))

		res, ok := q.TryRecycle()
		require.True(t, ok)
		assert.Equal(t, 1, res)
		res, ok = q.TryRecycle()
		require.True(t, ok)
		assert.Equal(t, 3, res)
	})

	t.Run("missing entry is a no-op", func(t *testing.T) {
		q := NewQueue[int]()
		q.Push(NewEntry(1))
		q.Remove(NewEntry(99))
		assert.Equal(t, 1, q.Len())
	})
}

func TestEntry_TimerRace(t *testing.T) {
	t.Run("timer expires unclaimed entry", func(t *testing.T) {
		expired := make(chan string, 1)
		e := NewEntry("r")
		e.Arm(10*time.Millisecond, func(res string) {
			expired <- res
		})

		select {
		case res := <-expired:
			assert.Equal(t, "r", res)
		case <-time.After(time.Second):
			t.Fatal("timer never fired")
		}

		_, ok := e.TryClaim()
		assert.False(t, ok, "expired entry must not be claimable")
	})

	t.Run("claim beats timer", func(t *testing.T) {
		expired := make(chan string, 1)
		e := NewEntry("r")
		e.Arm(time.Hour, func(res string) {
			expired <- res
		})

		res, ok := e.TryClaim()
		require.True(t, ok)
		assert.Equal(t, "r", res)

		select {
		case <-expired:
			t.Fatal("timer fired on a claimed entry")
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("exactly one winner under contention", func(t *testing.T) {
		const claimers = 32

		for i := 0; i < 16; i++ {
			expired := make(chan struct{}, 1)
			e := NewEntry("r")
			// TTL of zero makes the timer fire immediately, racing the
			// claimers below as hard as the scheduler allows.
			e.Arm(0, func(string) { expired <- struct{}{} })

			var claimerWins atomic.Int64
			var wg sync.WaitGroup
			wg.Add(claimers)
			for c := 0; c < claimers; c++ {
				go func() {
					defer wg.Done()
					if _, ok := e.TryClaim(); ok {
						claimerWins.Add(1)
					}
				}()
			}
			wg.Wait()

			switch claimerWins.Load() {
			case 0:
				// The timer must have won; wait for it to report.
				select {
				case <-expired:
				case <-time.After(time.Second):
					t.Fatal("nobody won the claim race")
				}
			case 1:
				// The timer must have lost and stayed silent.
				select {
				case <-expired:
					t.Fatal("timer and claimer both won")
				case <-time.After(20 * time.Millisecond):
				}
			default:
				t.Fatalf("%d claimers won", claimerWins.Load())
			}
		}
	})
}
