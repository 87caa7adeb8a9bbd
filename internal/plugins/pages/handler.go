// Package pages serves the authenticated storefront pages (dashboard,
// products, orders). The navigation guard has already checked for a token
// by the time these handlers run; they load the user when needed and
// render the route's view.
package pages

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/storefront/internal/apperror"
	"github.com/keyxmakerx/storefront/internal/middleware"
	"github.com/keyxmakerx/storefront/internal/plugins/auth"
	"github.com/keyxmakerx/storefront/internal/router"
	"github.com/keyxmakerx/storefront/internal/session"
)

// Page returns the handler for route.
func Page(route router.Route) echo.HandlerFunc {
	return func(c echo.Context) error {
		store := auth.GetStore(c)
		if store == nil {
			return apperror.NewMissingContext()
		}

		if store.Phase() == session.Pending {
			store.FetchUser(c.Request().Context())
		}
		// A failed fetch logs the client out.
		if !store.LoggedIn() {
			if middleware.IsHTMX(c) {
				c.Response().Header().Set("HX-Redirect", router.LoginPath)
				return c.NoContent(http.StatusNoContent)
			}
			return c.Redirect(http.StatusSeeOther, router.LoginPath)
		}

		return middleware.Render(c, http.StatusOK, route.View())
	}
}
