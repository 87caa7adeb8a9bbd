// Package database opens the optional MySQL and Redis connections behind
// the storage drivers and applies the MySQL schema. Connections are
// created once at startup and closed by main.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	// Registers the "mysql" driver.
	_ "github.com/go-sql-driver/mysql"

	"github.com/keyxmakerx/storefront/internal/config"
)

// NewMySQL opens a connection pool with the settings from cfg and pings
// it, retrying with exponential backoff while the server starts up.
func NewMySQL(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening mysql connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	const maxRetries = 10
	backoff := 1 * time.Second
	var pingErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		pingErr = db.PingContext(pingCtx)
		cancel()

		if pingErr == nil {
			return db, nil
		}
		if attempt == maxRetries {
			break
		}

		slog.Warn("mysql not ready, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_retries", maxRetries),
			slog.Duration("backoff", backoff),
			slog.Any("error", pingErr),
		)
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, 30*time.Second)
	}

	_ = db.Close()
	return nil, fmt.Errorf("pinging mysql after %d attempts: %w", maxRetries, pingErr)
}
