package app

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/storefront/internal/plugins/auth"
	"github.com/keyxmakerx/storefront/internal/plugins/pages"
	"github.com/keyxmakerx/storefront/internal/router"
)

// RegisterRoutes sets up all application routes. This is the single place
// where plugin routes are aggregated.
func (a *App) RegisterRoutes() {
	e := a.Echo
	routes := router.Table()

	// Health check for container orchestration. Skipped by the guard.
	e.GET("/healthz", a.healthz)

	login, _ := router.ByName(router.NameLogin)
	register, _ := router.ByName(router.NameRegister)
	auth.RegisterRoutes(e, auth.NewHandler(login, register))

	pages.RegisterRoutes(e, routes)
}

// healthz pings whichever storage service is configured.
func (a *App) healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok", "storage": a.Config.Storage.Driver}
	code := http.StatusOK
	if a.DB != nil {
		if err := a.DB.PingContext(ctx); err != nil {
			status["status"], status["mysql"] = "degraded", err.Error()
			code = http.StatusServiceUnavailable
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			status["status"], status["redis"] = "degraded", err.Error()
			code = http.StatusServiceUnavailable
		}
	}
	return c.JSON(code, status)
}
