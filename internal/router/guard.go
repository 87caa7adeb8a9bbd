package router

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Decision is the guard's verdict for one navigation.
type Decision struct {
	Allow    bool
	Redirect string
}

// Decide is the navigation policy. A target that is not IsPublic needs a
// token; loggedIn only says a token is present, its content is never
// checked. from is accepted for symmetry with the navigation event and is
// not consulted.
func Decide(to, from string, loggedIn bool) Decision {
	if !IsPublic(to) && !loggedIn {
		return Decision{Redirect: LoginPath}
	}
	return Decision{Allow: true}
}

// TokenLookup reads the requesting client's persisted token. An empty
// string means no token.
type TokenLookup func(c echo.Context) (string, error)

// IsNavigation reports whether the request is a page navigation: a GET or
// HEAD outside the static asset and health check paths. Form posts are
// actions, not navigations.
func IsNavigation(c echo.Context) bool {
	req := c.Request()
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return false
	}
	p := req.URL.Path
	return !strings.HasPrefix(p, "/static/") && p != "/healthz"
}

// Guard returns middleware that applies Decide before every navigation,
// including navigations to paths the table does not know. The token is
// read from persistent storage each time; an empty value counts as absent
// and a read failure is treated as no token.
func Guard(lookup TokenLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !IsNavigation(c) {
				return next(c)
			}

			token, err := lookup(c)
			if err != nil {
				slog.Warn("guard could not read persisted token",
					slog.String("path", c.Request().URL.Path),
					slog.Any("error", err),
				)
				token = ""
			}

			d := Decide(c.Request().URL.Path, c.Request().Referer(), token != "")
			if d.Allow {
				return next(c)
			}
			return redirect(c, d.Redirect)
		}
	}
}

// redirect sends browsers a 303 and HTMX requests an HX-Redirect so the
// whole page navigates instead of swapping a fragment.
func redirect(c echo.Context, to string) error {
	if c.Request().Header.Get("HX-Request") == "true" {
		c.Response().Header().Set("HX-Redirect", to)
		return c.NoContent(http.StatusNoContent)
	}
	return c.Redirect(http.StatusSeeOther, to)
}
