// Package mysqldb wraps database/sql with the MySQL driver for the Gumroad
// direct-write path.
package mysqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/config"
	"github.com/fixturelab/platformseed/pkg/logging"
)

// DB wraps a sql.DB connected to a platform MySQL database.
type DB struct {
	*sql.DB
}

// Connect opens a MySQL pool and verifies it with a ping.
func Connect(ctx context.Context, cfg *config.MySQLConfig, logger *zap.Logger) (*DB, error) {
	dsn := cfg.DSN()

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", logging.SanitizeConnectionString(dsn), err)
	}

	logger.Debug("connected to mysql",
		zap.String("dsn", logging.SanitizeConnectionString(dsn)))

	return &DB{DB: db}, nil
}
