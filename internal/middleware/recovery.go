package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
)

// Recovery returns middleware that turns a panicking handler into a logged
// 500 instead of a dead connection.
func Recovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (returnErr error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				slog.Error("panic recovered",
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", c.Request().Method),
					slog.String("path", c.Request().URL.Path),
				)
				if c.Response().Committed {
					returnErr = nil
					return
				}
				returnErr = c.String(http.StatusInternalServerError, "Internal Server Error")
			}()

			return next(c)
		}
	}
}
