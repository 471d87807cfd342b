// Package postgres persists kingdom snapshots and turn history in PostgreSQL
// through pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/kingdom/internal/config"
)

// DefaultHealthTimeout bounds the startup reachability check.
const DefaultHealthTimeout = 5 * time.Second

// Pool owns the connection pool shared by the repositories.
type Pool struct {
	pool *pgxpool.Pool
	name string
}

// NewPool connects to the database described by cfg.
//
// Precondition: cfg passes config.Validate.
// Postcondition: Returns a pinged Pool or a non-nil error naming the database.
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
		return nil, fmt.Errorf("connecting to %s on %s:%d: %w", cfg.Name, cfg.Host, cfg.Port, err)
	}
	p := &Pool{pool: pool, name: cfg.Name}
	if err := p.Health(ctx, DefaultHealthTimeout); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// Health pings the database, giving up after timeout.
//
// Precondition: the pool is open.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("database %s unreachable: %w", p.name, err)
	}
	return nil
}

// Close releases every pooled connection.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the pgx pool for repository constructors.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
