package middleware

import (
	"context"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// LayoutInjector copies layout data (user, CSRF token, active path) from
// the Echo context into the Go context templ components read. It is set
// once at startup in internal/app so this package never imports the
// session types.
var LayoutInjector func(echo.Context, context.Context) context.Context

// IsHTMX reports whether the request came from HTMX and is not a boosted
// navigation, which expects a full page.
func IsHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true" &&
		c.Request().Header.Get("HX-Boosted") != "true"
}

// Render writes component with statusCode after running LayoutInjector.
func Render(c echo.Context, statusCode int, component templ.Component) error {
	return RenderContext(c.Request().Context(), c, statusCode, component)
}

// RenderContext is Render with an explicit base context, for handlers that
// add view data (such as form state) of their own.
func RenderContext(ctx context.Context, c echo.Context, statusCode int, component templ.Component) error {
	if LayoutInjector != nil {
		ctx = LayoutInjector(c, ctx)
	}
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	c.Response().WriteHeader(statusCode)
	return component.Render(ctx, c.Response().Writer)
}
