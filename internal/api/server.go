// Package api exposes the daemon's observability surface over HTTP:
// health, pool statistics, recent lifecycle events and Prometheus
// metrics.
package api

import (
	"fmt"
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teamPaprika/hwansaeng/events"
	"github.com/teamPaprika/hwansaeng/internal/api/middleware"
	"github.com/teamPaprika/hwansaeng/internal/config"
	"github.com/teamPaprika/hwansaeng/metrics"
)

var (
	promMiddlewareOnce sync.Once
	promMiddleware     *fiberprometheus.FiberPrometheus
)

// PoolStatus is the non-generic view of a pool the server reports on.
type PoolStatus interface {
	Name() string
	Size() int
	Stats() metrics.PoolStats
}

// EventLog supplies the recent lifecycle events shown by /events.
type EventLog interface {
	Recent() []events.PoolEvent
}

// Server represents the HTTP server.
type Server struct {
	app    *fiber.App
	config *config.Config
	pool   PoolStatus
	events EventLog
	broker *events.Broker
}

// NewServer creates a new HTTP server reporting on pool. A nil broker
// disables the live event stream; /events polling still works off log.
func NewServer(cfg *config.Config, pool PoolStatus, log EventLog, broker *events.Broker) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "hwansaeng",
		ServerHeader:          "hwansaengd",
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           cfg.Server.IdleTimeout,
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	})

	server := &Server{
		app:    app,
		config: cfg,
		pool:   pool,
		events: log,
		broker: broker,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// App returns the underlying Fiber app for testing.
func (s *Server) App() *fiber.App {
	return s.app
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	s.app.Use(requestid.New())

	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: s.config.Server.Debug,
	}))

	// Prometheus metrics - use sync.Once to prevent duplicate registration in tests
	promMiddlewareOnce.Do(func() {
		promMiddleware = fiberprometheus.NewWithRegistry(prometheus.DefaultRegisterer.(*prometheus.Registry), "hwansaeng", "", "", nil)
		promMiddleware.SetSkipPaths([]string{"/health", "/metrics"})
	})
	s.app.Use(promMiddleware.Middleware)
	// Standard prometheus handler exposes the pool metrics too.
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	s.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,HEAD,OPTIONS",
	}))

	s.app.Use(middleware.Logger())
}

// setupRoutes registers the endpoints.
func (s *Server) setupRoutes() {
	s.app.Get("/health", s.handleHealth)
	s.app.Get("/stats", s.handleStats)
	s.app.Get("/events", s.handleEvents)
	if s.broker != nil {
		s.app.Get("/events/stream", webSocketUpgrade, eventStream(s.broker))
	}
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"version": s.config.Server.Version,
	})
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	stats := s.pool.Stats()
	return c.JSON(fiber.Map{
		"pool":     s.pool.Name(),
		"pooled":   s.pool.Size(),
		"max_size": s.config.Pool.MaxPoolSize,
		"ttl_s":    s.config.Pool.WaitInSeconds,
		"counters": stats,
		"hit_rate": stats.HitRate(),
	})
}

func (s *Server) handleEvents(c *fiber.Ctx) error {
	if s.events == nil {
		return c.JSON(fiber.Map{"events": []events.PoolEvent{}})
	}
	return c.JSON(fiber.Map{"events": s.events.Recent()})
}

// Start begins listening on the configured address.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
