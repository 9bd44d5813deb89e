// Package postgres provides PostgreSQL persistence for chat cards and world
// settings using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pf2-flat-check/internal/config"
)

// Pool wraps a pgx connection pool with health-check and lifecycle methods.
type Pool struct {
	pool *pgxpool.Pool
	// unhealthy is set by Watch after a failed ping and cleared by the next success.
	unhealthy atomic.Bool
}

// NewPool creates a new PostgreSQL connection pool from the given configuration.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a connected Pool or a non-nil error. The pool is ready
// for queries upon successful return.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &Pool{pool: pool}, nil
}

// Health checks that the database is reachable within the given timeout.
//
// Precondition: The pool must not be closed.
// Postcondition: Returns nil if the database responds within the timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Healthy reports whether the most recent Watch ping succeeded. A pool that
// was never watched is healthy.
func (p *Pool) Healthy() bool {
	return !p.unhealthy.Load()
}

// Watch pings the database every interval until ctx is done. Failed pings
// are logged at warn; the first success after a failure is logged at info.
//
// Precondition: interval > 0, timeout > 0 and logger non-nil.
// Postcondition: Returns nil once ctx is done.
func (p *Pool) Watch(ctx context.Context, interval, timeout time.Duration, logger *zap.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.check(ctx, timeout, logger)
		}
	}
}

func (p *Pool) check(ctx context.Context, timeout time.Duration, logger *zap.Logger) {
	err := p.Health(ctx, timeout)
	if ctx.Err() != nil {
		return
	}
	switch {
	case err != nil:
		p.unhealthy.Store(true)
		stat := p.pool.Stat()
		logger.Warn("database health check failed",
			zap.Error(err),
			zap.Int32("total_conns", stat.TotalConns()),
			zap.Int32("idle_conns", stat.IdleConns()),
		)
	case p.unhealthy.Swap(false):
		logger.Info("database health check recovered")
	}
}

// Close releases all pool resources.
//
// Postcondition: The pool is no longer usable after calling Close.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool for use by repositories.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
