package auth

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/storefront/internal/middleware"
)

// RegisterRoutes mounts the login, register and logout endpoints. These
// are public; the navigation guard decides who may see the pages.
//
// POST endpoints are rate-limited per IP: 10 attempts per minute for
// login, 5 for register.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/login", h.LoginForm).Name = "login"
	e.POST("/login", h.Login, middleware.RateLimit(10, time.Minute))
	e.GET("/register", h.RegisterForm).Name = "register"
	e.POST("/register", h.Register, middleware.RateLimit(5, time.Minute))
	e.POST("/logout", h.Logout)
}
