// Command hwansaengd runs a keyed recycling pool under a configurable
// workload and exposes its behavior over HTTP: /stats, /events, /health
// and Prometheus /metrics. It pools either synthetic handles or real
// PostgreSQL connections, depending on configuration.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/teamPaprika/hwansaeng"
	"github.com/teamPaprika/hwansaeng/events"
	"github.com/teamPaprika/hwansaeng/internal/api"
	"github.com/teamPaprika/hwansaeng/internal/config"
	"github.com/teamPaprika/hwansaeng/internal/telemetry"
	"github.com/teamPaprika/hwansaeng/internal/workload"
	"github.com/teamPaprika/hwansaeng/pgrecycle"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

// handle is the synthetic resource pooled in the default mode.
type handle struct {
	id     string
	key    string
	opened time.Time
}

// runner is the non-generic surface of a workload.Runner.
type runner interface {
	Start(ctx context.Context)
	Stop()
}

func run() error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Server.Debug {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	slog.Info("starting hwansaengd",
		"version", cfg.Server.Version,
		"port", cfg.Server.Port,
		"resource", cfg.Resource.Type,
		"ttl_s", cfg.Pool.WaitInSeconds,
		"max_pool_size", cfg.Pool.MaxPoolSize,
	)

	ctx := context.Background()
	telemetryProvider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:    cfg.Telemetry.Enabled,
		Endpoint:   cfg.Telemetry.Endpoint,
		SampleRate: cfg.Telemetry.SampleRate,
		Insecure:   cfg.Telemetry.Insecure,
	}, "hwansaengd", cfg.Server.Version)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := telemetryProvider.Shutdown(shutdownCtx); shutdownErr != nil {
			slog.Error("error shutting down telemetry", "error", shutdownErr)
		}
	}()

	broker := events.NewBroker()
	defer broker.Close()
	recorder := events.NewRecorder(broker, "*", 64)
	defer recorder.Stop()

	status, loadRunner, err := buildPool(cfg, broker)
	if err != nil {
		return fmt.Errorf("building pool: %w", err)
	}

	if cfg.Workload.Enabled {
		loadRunner.Start(ctx)
		defer loadRunner.Stop()
	}

	server := api.NewServer(cfg, status, recorder, broker)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := server.Start(); err != nil {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down...")

	if err := server.Shutdown(); err != nil {
		slog.Error("error during shutdown", "error", err)
	}

	slog.Info("stopped")
	return nil
}

// buildPool constructs the configured pool flavor together with a
// workload runner feeding it.
func buildPool(cfg *config.Config, broker *events.Broker) (api.PoolStatus, runner, error) {
	opts := []hwansaeng.Option{
		hwansaeng.WithName(cfg.Pool.Name),
		hwansaeng.WithBroker(broker),
	}

	switch cfg.Resource.Type {
	case config.ResourcePostgres:
		pool, err := pgrecycle.New(cfg.Pool.PoolSettings(), opts...)
		if err != nil {
			return nil, nil, err
		}
		// All workers share the one configured database; recycling still
		// kicks in whenever holds overlap.
		keys := []string{cfg.Resource.Database.DSN()}
		return pool, workload.NewRunner(pool, keys, cfg.Workload), nil

	default:
		factory := func(_ context.Context, key string) (*handle, error) {
			return &handle{
				id:     uuid.New().String(),
				key:    key,
				opened: time.Now(),
			}, nil
		}
		finalizer := func(h *handle) error {
			slog.Debug("handle finalized",
				"id", h.id,
				"key", h.key,
				"lifetime", time.Since(h.opened),
			)
			return nil
		}
		pool, err := hwansaeng.New(cfg.Pool.PoolSettings(), factory, finalizer, opts...)
		if err != nil {
			return nil, nil, err
		}
		keys := make([]string, cfg.Workload.Keys)
		for i := range keys {
			keys[i] = fmt.Sprintf("key-%d", i)
		}
		return pool, workload.NewRunner(pool, keys, cfg.Workload), nil
	}
}
