package pages

import (
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/storefront/internal/router"
)

// RegisterRoutes mounts every page route from routes that this plugin
// serves. Login and register belong to the auth plugin.
func RegisterRoutes(e *echo.Echo, routes []router.Route) {
	g := e.Group("")
	router.Register(g, routes, map[string]func(router.Route) echo.HandlerFunc{
		router.NameDashboard: Page,
		router.NameProducts:  Page,
		router.NameOrders:    Page,
	})
}
