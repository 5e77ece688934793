package events

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBroker(t *testing.T) {
	broker := NewBroker()
	require.NotNil(t, broker)
	assert.NotNil(t, broker.subscribers)
	assert.Equal(t, 16, broker.bufferSize)
	assert.False(t, broker.closed)
}

func TestBroker_Subscribe(t *testing.T) {
	broker := NewBroker()
	defer broker.Close()

	t.Run("subscribe to pool topic", func(t *testing.T) {
		sub := broker.Subscribe("connections")
		require.NotNil(t, sub)
		assert.Equal(t, "connections", sub.topic)
		assert.Same(t, broker, sub.broker)
		assert.NotNil(t, sub.ch)
	})

	t.Run("subscribe to wildcard", func(t *testing.T) {
		sub := broker.Subscribe("*")
		require.NotNil(t, sub)
		assert.Equal(t, "*", sub.topic)
	})

	t.Run("multiple subscriptions same topic", func(t *testing.T) {
		sub1 := broker.Subscribe("same-topic")
		sub2 := broker.Subscribe("same-topic")
		require.NotNil(t, sub1)
		require.NotNil(t, sub2)
		assert.NotEqual(t, sub1, sub2)
	})

	t.Run("subscribe to closed broker returns nil", func(t *testing.T) {
		closedBroker := NewBroker()
		closedBroker.Close()
		assert.Nil(t, closedBroker.Subscribe("test"))
	})
}

func TestBroker_Publish(t *testing.T) {
	recv := func(t *testing.T, sub *Subscription) PoolEvent {
		t.Helper()
		select {
		case ev := <-sub.Events():
			return ev
		case <-time.After(time.Second):
			t.Fatal("no event received")
			return PoolEvent{}
		}
	}

	t.Run("exact topic match", func(t *testing.T) {
		broker := NewBroker()
		defer broker.Close()

		sub := broker.Subscribe("connections/pg-primary")
		broker.Publish(*NewEvent(ResourceClaimed).
			WithPool("connections").
			WithKey("pg-primary"))

		ev := recv(t, sub)
		assert.Equal(t, ResourceClaimed, ev.Type)
		assert.Equal(t, "pg-primary", ev.Key)
		assert.NotEmpty(t, ev.ID)
	})

	t.Run("pool wildcard receives key events", func(t *testing.T) {
		broker := NewBroker()
		defer broker.Close()

		sub := broker.Subscribe("connections")
		broker.Publish(*NewEvent(ResourcePooled).
			WithPool("connections").
			WithKey("pg-replica"))

		ev := recv(t, sub)
		assert.Equal(t, ResourcePooled, ev.Type)
	})

	t.Run("global wildcard receives everything", func(t *testing.T) {
		broker := NewBroker()
		defer broker.Close()

		sub := broker.Subscribe("*")
		broker.Publish(*NewEvent(ResourceExpired).WithPool("a"))
		broker.Publish(*NewEvent(ResourceFinalized).WithPool("b"))

		assert.Equal(t, ResourceExpired, recv(t, sub).Type)
		assert.Equal(t, ResourceFinalized, recv(t, sub).Type)
	})

	t.Run("finalizer error carries message", func(t *testing.T) {
		broker := NewBroker()
		defer broker.Close()

		sub := broker.Subscribe("*")
		broker.Publish(*NewEvent(FinalizerError).
			WithPool("connections").
			WithError(errors.New("close failed")))

		ev := recv(t, sub)
		assert.Equal(t, FinalizerError, ev.Type)
		assert.Equal(t, "close failed", ev.Error)
	})

	t.Run("unrelated topic receives nothing", func(t *testing.T) {
		broker := NewBroker()
		defer broker.Close()

		sub := broker.Subscribe("other")
		broker.Publish(*NewEvent(ResourcePooled).WithPool("connections"))

		select {
		case ev := <-sub.Events():
			t.Fatalf("unexpected event: %v", ev)
		case <-time.After(20 * time.Millisecond):
		}
	})

	t.Run("full subscriber channel does not block", func(t *testing.T) {
		broker := NewBroker()
		defer broker.Close()

		sub := broker.Subscribe("busy")
		for i := 0; i < broker.bufferSize+4; i++ {
			broker.Publish(*NewEvent(ResourcePooled).WithPool("busy"))
		}

		// The buffered events are still readable.
		assert.Equal(t, broker.bufferSize, len(sub.ch))
	})

	t.Run("publish after close is a no-op", func(t *testing.T) {
		broker := NewBroker()
		broker.Close()
		broker.Publish(*NewEvent(ResourcePooled).WithPool("a"))
	})
}

func TestBroker_Unsubscribe(t *testing.T) {
	broker := NewBroker()
	defer broker.Close()

	sub := broker.Subscribe("connections")
	require.Equal(t, map[string]int{"connections": 1}, broker.Stats())

	sub.Unsubscribe()
	assert.Empty(t, broker.Stats())

	// Channel is closed after unsubscribe.
	_, open := <-sub.Events()
	assert.False(t, open)
}

func TestPoolEvent_Topic(t *testing.T) {
	assert.Equal(t, "*", (&PoolEvent{}).Topic())
	assert.Equal(t, "p", (&PoolEvent{Pool: "p"}).Topic())
	assert.Equal(t, "p/k", (&PoolEvent{Pool: "p", Key: "k"}).Topic())
}
