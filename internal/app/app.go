// Package app is the application bootstrap and dependency injection root.
// It holds the shared infrastructure (session registry, storage backend,
// optional MySQL pool and Redis client, Echo instance) and wires the
// plugins together.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/storefront/internal/apperror"
	"github.com/keyxmakerx/storefront/internal/config"
	"github.com/keyxmakerx/storefront/internal/middleware"
	"github.com/keyxmakerx/storefront/internal/plugins/auth"
	"github.com/keyxmakerx/storefront/internal/router"
	"github.com/keyxmakerx/storefront/internal/session"
	"github.com/keyxmakerx/storefront/internal/storage"
	"github.com/keyxmakerx/storefront/internal/views"
)

// App holds all shared dependencies and the Echo HTTP server instance.
// Created once at startup in main.go and used to register all routes.
type App struct {
	// Config holds the loaded application configuration.
	Config *config.Config

	// Sessions caches one session store per browser client.
	Sessions *session.Registry

	// Backend is the per-client storage the sessions persist tokens in.
	Backend storage.Backend

	// DB is the MySQL pool, nil unless STORAGE_DRIVER=mysql.
	DB *sql.DB

	// Redis is the Redis client, nil unless STORAGE_DRIVER=redis.
	Redis *redis.Client

	// Echo is the HTTP server instance.
	Echo *echo.Echo
}

// New creates a new App and configures the Echo server with global
// middleware and error handling. db and rdb may be nil.
func New(cfg *config.Config, sessions *session.Registry, backend storage.Backend, db *sql.DB, rdb *redis.Client) *App {
	e := echo.New()

	// We log our own startup line.
	e.HideBanner = true
	e.HidePort = true

	// c.RealIP() keys the rate limiter; only trust forwarding headers from
	// private ranges.
	middleware.TrustedProxies(e, middleware.DefaultTrustedCIDRs)

	app := &App{
		Config:   cfg,
		Sessions: sessions,
		Backend:  backend,
		DB:       db,
		Redis:    rdb,
		Echo:     e,
	}

	middleware.LayoutInjector = auth.LayoutData

	app.setupMiddleware()
	e.HTTPErrorHandler = app.errorHandler
	e.Static("/static", "static")

	for _, m := range router.Lint(router.Table()) {
		slog.Warn("route table disagrees with navigation guard", slog.String("detail", m.String()))
	}

	return app
}

// setupMiddleware registers global middleware on the Echo instance.
// Order matters: recovery is outermost, the navigation guard innermost.
func (a *App) setupMiddleware() {
	// Panic recovery -- must be outermost to catch panics from all other middleware.
	a.Echo.Use(middleware.Recovery())

	a.Echo.Use(middleware.RequestLogger())
	a.Echo.Use(middleware.SecurityHeaders())

	// CSRF -- double-submit cookie pattern on all state-changing requests.
	a.Echo.Use(middleware.CSRF())

	// Client identity attaches the per-browser session store; the guard
	// then runs before every page navigation, including unknown paths.
	a.Echo.Use(auth.ClientIdentity(a.Sessions))
	a.Echo.Use(router.Guard(auth.TokenLookup(a.Sessions)))
}

// errorHandler maps domain errors (AppError) and Echo errors to rendered
// error pages. 401s send the browser to the login page.
//
// For HTMX partial requests that hit errors, we set HX-Retarget and
// HX-Reswap headers so the error page replaces the full body instead of
// being swapped into a partial target.
func (a *App) errorHandler(err error, c echo.Context) {
	// Don't double-write if response is already committed.
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := defaultErrorMessage(code)

	var appErr *apperror.AppError
	var echoErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
		message = appErr.Message
		if appErr.Internal != nil {
			slog.Error("internal error",
				slog.String("type", appErr.Type),
				slog.String("message", appErr.Message),
				slog.Any("internal", appErr.Internal),
				slog.String("path", c.Request().URL.Path),
			)
		}
	case errors.As(err, &echoErr):
		code = echoErr.Code
		message = defaultErrorMessage(code)
	default:
		slog.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Request().URL.Path),
		)
	}

	if middleware.IsHTMX(c) {
		if code == http.StatusUnauthorized {
			c.Response().Header().Set("HX-Redirect", router.LoginPath)
			_ = c.NoContent(http.StatusNoContent)
			return
		}
		c.Response().Header().Set("HX-Retarget", "body")
		c.Response().Header().Set("HX-Reswap", "innerHTML")
	}

	if code == http.StatusUnauthorized {
		_ = c.Redirect(http.StatusSeeOther, router.LoginPath)
		return
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	if err := middleware.Render(c, code, views.ErrorPage(code, message)); err != nil {
		slog.Error("rendering error page failed", slog.Any("error", err))
	}
}

// defaultErrorMessage returns a user-friendly message for common HTTP
// status codes when the error carried none of its own.
func defaultErrorMessage(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "The request was invalid or cannot be processed."
	case http.StatusUnauthorized:
		return "You need to sign in to access this page."
	case http.StatusForbidden:
		return "The request was rejected. Reload the page and try again."
	case http.StatusNotFound:
		return "The page you're looking for doesn't exist or has been moved."
	case http.StatusMethodNotAllowed:
		return "This action is not allowed."
	case http.StatusTooManyRequests:
		return "You're making too many requests. Please slow down."
	case http.StatusBadGateway:
		return "The authentication service is unavailable. Please try again."
	case http.StatusServiceUnavailable:
		return "The service is temporarily unavailable. Please try again later."
	default:
		return "Something went wrong on our end. Please try again."
	}
}

// IdlePurger removes storage rows that have not been written recently.
// *storage.MySQL implements it.
type IdlePurger interface {
	PurgeIdle(ctx context.Context, olderThanSeconds int64) (int64, error)
}

// RunStoragePurge deletes client namespaces idle for longer than ttl every
// interval until ctx is cancelled. Redis expires keys itself and needs no
// purge.
func RunStoragePurge(ctx context.Context, p IdlePurger, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.PurgeIdle(ctx, int64(ttl/time.Second))
			if err != nil {
				slog.Warn("storage purge failed", slog.Any("error", err))
				continue
			}
			if n > 0 {
				slog.Info("purged idle client storage", slog.Int64("rows", n))
			}
		}
	}
}

// Start begins listening for HTTP requests on the configured port.
func (a *App) Start() error {
	addr := fmt.Sprintf(":%d", a.Config.Port)
	slog.Info("starting Storefront server",
		slog.String("addr", addr),
		slog.String("env", a.Config.Env),
		slog.String("storage", a.Config.Storage.Driver),
		slog.String("auth_api", a.Config.AuthAPI.BaseURL),
	)
	return a.Echo.Start(addr)
}

// Shutdown stops the HTTP server and the session sweeper.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	a.Sessions.Close()
	return err
}
