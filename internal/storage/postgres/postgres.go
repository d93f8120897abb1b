// Package postgres persists the combat ledger in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/skirmish/internal/config"
)

// applicationName tags ledger connections in pg_stat_activity.
const applicationName = "combatd-ledger"

// Pool holds the connections the ledger writes through.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool opens the ledger pool and waits for the first ping, bounded by
// cfg.WriteTimeout when it is set.
//
// Postcondition: Returns a Pool that has answered a ping, or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing ledger dsn: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	pgPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("opening ledger pool: %w", err)
	}
	p := &Pool{pool: pgPool}
	if err := p.Health(ctx, cfg.WriteTimeout); err != nil {
		pgPool.Close()
		return nil, fmt.Errorf("ledger database unreachable: %w", err)
	}
	return p, nil
}

// Health pings the ledger database. A non-positive timeout leaves ctx's
// own deadline in charge.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return p.pool.Ping(ctx)
}

// Stats counts ledger connections by state.
type Stats struct {
	Total    int32
	Idle     int32
	Acquired int32
}

// Stats is logged by combatd at shutdown.
func (p *Pool) Stats() Stats {
	s := p.pool.Stat()
	return Stats{Total: s.TotalConns(), Idle: s.IdleConns(), Acquired: s.AcquiredConns()}
}

// Ledger returns a repository writing through this pool.
func (p *Pool) Ledger() *LedgerRepository {
	return NewLedgerRepository(p.pool)
}

// Close waits for acquired connections to be released.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB exposes the raw pool to test fixtures.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
