// Package main is the entry point for the Storefront server. It loads
// configuration, opens the configured token storage, wires the session
// registry and plugins together, and starts the HTTP server.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/storefront/internal/app"
	"github.com/keyxmakerx/storefront/internal/authapi"
	"github.com/keyxmakerx/storefront/internal/config"
	"github.com/keyxmakerx/storefront/internal/database"
	"github.com/keyxmakerx/storefront/internal/session"
	"github.com/keyxmakerx/storefront/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	var (
		db      *sql.DB
		rdb     *redis.Client
		backend storage.Backend
	)
	switch cfg.Storage.Driver {
	case config.DriverRedis:
		rdb, err = database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			slog.Error("failed to connect to Redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer rdb.Close()
		slog.Info("connected to Redis")
		backend = storage.NewRedis(rdb, cfg.Storage.TTL)

	case config.DriverMySQL:
		db, err = database.NewMySQL(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to MySQL", slog.Any("error", err))
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("connected to MySQL")

		if err := database.RunMigrations(db, cfg.Database.MigrationsPath); err != nil {
			slog.Error("failed to run migrations", slog.Any("error", err))
			os.Exit(1)
		}
		mysqlBackend := storage.NewMySQL(db)
		go app.RunStoragePurge(ctx, mysqlBackend, cfg.Storage.TTL, time.Hour)
		backend = mysqlBackend

	default:
		slog.Warn("using in-memory token storage; sessions are lost on restart")
		backend = storage.NewMemory()
	}

	backend, err = sealIfConfigured(backend, cfg.Storage.Secret)
	if err != nil {
		slog.Error("failed to set up storage sealing", slog.Any("error", err))
		os.Exit(1)
	}

	// --- Sessions ---
	api := authapi.New(cfg.AuthAPI.BaseURL, cfg.AuthAPI.Timeout)
	sessions := session.NewRegistry(api, backend, cfg.Storage.SessionIdleTTL)

	application := app.New(cfg, sessions, backend, db, rdb)
	application.RegisterRoutes()

	// --- Graceful Shutdown ---
	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")

		// Give in-flight requests 10 seconds to complete.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := application.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced shutdown", slog.Any("error", err))
		}
	}()

	if err := application.Start(); err != nil {
		// Echo returns http.ErrServerClosed on graceful shutdown, which is expected.
		slog.Info("server stopped", slog.Any("reason", err))
	}
}

// sealIfConfigured wraps backend so values are encrypted at rest when a
// secret is set.
func sealIfConfigured(backend storage.Backend, secret string) (storage.Backend, error) {
	if secret == "" {
		return backend, nil
	}
	sealed, err := storage.NewSealed(backend, secret)
	if err != nil {
		return nil, fmt.Errorf("sealing storage: %w", err)
	}
	slog.Info("token storage is sealed at rest")
	return sealed, nil
}

// setupLogging configures the global slog logger based on the environment.
// Development uses text format for readability. Production uses JSON for
// structured log aggregation.
func setupLogging(cfg *config.Config) {
	var handler slog.Handler

	if cfg.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}

	slog.SetDefault(slog.New(handler))
}
