// Package pgdb wraps pgxpool for the platforms seeded by direct PostgreSQL
// writes (Chatwoot user fixups, Spree catalog, Supabase tables, GitLab
// authorship rewrites).
package pgdb

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/config"
	"github.com/fixturelab/platformseed/pkg/logging"
)

// DB wraps a pgxpool connection pool for one target platform database.
type DB struct {
	*pgxpool.Pool
}

// Connect creates a connection pool and verifies it with a ping.
// Close the returned DB when the run finishes.
func Connect(ctx context.Context, cfg *config.PostgresConfig, logger *zap.Logger) (*DB, error) {
	connStr := cfg.ConnectionString()

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConnections
	if poolConfig.MaxConns == 0 {
		poolConfig.MaxConns = 10
	}
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping %s: %w", logging.SanitizeConnectionString(connStr), err)
	}

	logger.Debug("connected to postgres",
		zap.String("dsn", logging.SanitizeConnectionString(connStr)))

	return &DB{Pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}
