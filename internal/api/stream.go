package api

import (
	"log/slog"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/teamPaprika/hwansaeng/events"
)

// webSocketUpgrade rejects plain HTTP requests to the stream endpoint.
func webSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// eventStream pushes live pool lifecycle events to a websocket client.
// GET /events/stream?pool=xxx&key=xxx
//
// The subscription topic narrows with the query parameters: pool and key
// select one sub-pool, pool alone selects one pool, neither streams
// everything. A client that stops reading has its subscriber channel
// fill up and misses events rather than stalling the publisher.
func eventStream(broker *events.Broker) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		topic := streamTopic(c.Query("pool"), c.Query("key"))

		slog.Info("websocket connected",
			"remote_addr", c.RemoteAddr().String(),
			"topic", topic,
		)

		sub := broker.Subscribe(topic)
		if sub == nil {
			slog.Error("broker closed, cannot subscribe")
			return
		}
		defer sub.Unsubscribe()

		if err := c.WriteJSON(map[string]any{
			"type":    "connected",
			"topic":   topic,
			"message": "Connected to event stream",
		}); err != nil {
			slog.Error("failed to send connection message", "error", err)
			return
		}

		// Reader goroutine exists only to notice the client going away.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := c.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case event, ok := <-sub.Events():
				if !ok {
					return
				}
				if err := c.WriteJSON(event); err != nil {
					slog.Debug("websocket write error", "error", err)
					return
				}
			case <-done:
				slog.Info("websocket disconnected", "remote_addr", c.RemoteAddr().String())
				return
			}
		}
	}, websocket.Config{
		EnableCompression: true,
		Origins:           []string{"*"},
		RecoverHandler: func(c *websocket.Conn) {
			slog.Error("websocket panic recovered", "remote_addr", c.RemoteAddr().String())
		},
	})
}

// streamTopic maps the query parameters onto a broker topic.
func streamTopic(pool, key string) string {
	if pool != "" && key != "" {
		return pool + "/" + key
	}
	if pool != "" {
		return pool
	}
	return "*"
}
