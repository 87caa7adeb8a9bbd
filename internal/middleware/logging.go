// Package middleware provides the HTTP middleware shared by every Storefront
// route: panic recovery, request logging, security headers, trusted proxy
// resolution, CSRF protection and rate limiting. Registration order lives
// in internal/app.
package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// ClientIDKey is the Echo context key holding the browser client ID once
// the client identity middleware has run.
const ClientIDKey = "client_id"

// RequestLogger returns middleware that logs every request once it has
// completed: method, path, status, latency, remote IP and, when known, the
// browser client ID. 5xx responses log at error, 4xx at warn.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			req := c.Request()
			res := c.Response()
			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", res.Status),
				slog.Duration("latency", time.Since(start)),
				slog.String("remote_ip", c.RealIP()),
			}
			if req.URL.RawQuery != "" {
				attrs = append(attrs, slog.String("query", req.URL.RawQuery))
			}
			if id, ok := c.Get(ClientIDKey).(string); ok && id != "" {
				attrs = append(attrs, slog.String("client_id", id))
			}

			level := slog.LevelInfo
			switch {
			case res.Status >= 500:
				level = slog.LevelError
			case res.Status >= 400:
				level = slog.LevelWarn
			}
			slog.LogAttrs(req.Context(), level, "request", attrs...)

			return err
		}
	}
}
