// Package pgrecycle pools PostgreSQL connections keyed by their DSN.
//
// It is a thin binding of the generic recycling pool to pgx: the factory
// dials a new connection for the DSN, the finalizer closes one. Each
// distinct DSN gets its own sub-pool, so a process talking to several
// databases recycles connections per target.
//
// Note the pool does not health-check pooled connections; a connection
// that died while pooled is handed back as-is and fails on first use.
package pgrecycle

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/teamPaprika/hwansaeng"
)

// CloseTimeout bounds the graceful close of a finalized connection.
const CloseTimeout = 5 * time.Second

// New creates a recycling pool of PostgreSQL connections. Keys passed to
// Acquire are connection strings in any form pgx accepts.
func New(cfg hwansaeng.Config, opts ...hwansaeng.Option) (*hwansaeng.Pool[string, *pgx.Conn], error) {
	return hwansaeng.New(cfg, connect, finalize, opts...)
}

func connect(ctx context.Context, dsn string) (*pgx.Conn, error) {
	return pgx.Connect(ctx, dsn)
}

func finalize(conn *pgx.Conn) error {
	ctx, cancel := context.WithTimeout(context.Background(), CloseTimeout)
	defer cancel()
	return conn.Close(ctx)
}
