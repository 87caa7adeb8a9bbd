package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/storefront/internal/apperror"
	"github.com/keyxmakerx/storefront/internal/middleware"
	"github.com/keyxmakerx/storefront/internal/router"
	"github.com/keyxmakerx/storefront/internal/sanitize"
	"github.com/keyxmakerx/storefront/internal/session"
	"github.com/keyxmakerx/storefront/internal/views"
)

const (
	// clientCookieName identifies the browser whose storage namespace and
	// session store a request uses.
	clientCookieName = "storefront_client"

	// clientCookieMaxAge is one year in seconds.
	clientCookieMaxAge = 365 * 24 * 60 * 60

	contextKeyStore = "session_store"
)

// Sessions is what the plugin needs from *session.Registry.
type Sessions interface {
	Get(ctx context.Context, clientID string) (*session.Store, error)
	PersistedToken(ctx context.Context, clientID string) (string, error)
}

// ClientIdentity returns middleware that assigns every browser a stable
// client ID cookie and attaches that client's session store to the
// request. Static assets and the health check are skipped.
func ClientIdentity(sessions Sessions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := c.Request().URL.Path
			if strings.HasPrefix(p, "/static/") || p == "/healthz" {
				return next(c)
			}

			clientID := readClientID(c)
			if clientID == "" {
				clientID = uuid.NewString()
				setClientCookie(c, clientID)
			}
			c.Set(middleware.ClientIDKey, clientID)

			store, err := sessions.Get(c.Request().Context(), clientID)
			if err != nil {
				return apperror.NewInternal(err)
			}
			c.Set(contextKeyStore, store)

			return next(c)
		}
	}
}

// TokenLookup adapts sessions to the navigation guard. When the client
// identity middleware has attached a store, the guard reads that store's
// token, which Sessions.Get has just reloaded from storage; handlers that
// check LoggedIn later in the request then see the same value. Without a
// store it reads persistent storage directly.
func TokenLookup(sessions Sessions) router.TokenLookup {
	return func(c echo.Context) (string, error) {
		if store := GetStore(c); store != nil {
			return store.Token(), nil
		}
		clientID := GetClientID(c)
		if clientID == "" {
			return "", nil
		}
		return sessions.PersistedToken(c.Request().Context(), clientID)
	}
}

// LayoutData copies the CSRF token, active path and signed-in user into
// ctx for templ components. Registered as middleware.LayoutInjector.
func LayoutData(c echo.Context, ctx context.Context) context.Context {
	ctx = views.WithCSRFToken(ctx, middleware.GetCSRFToken(c))
	ctx = views.WithActivePath(ctx, c.Request().URL.Path)
	if store := GetStore(c); store != nil {
		if u := store.User(); u != nil {
			ctx = views.WithUser(ctx, &views.User{Name: sanitize.Text(u.Name), Email: u.Email})
		}
	}
	return ctx
}

// GetStore returns the request's session store, or nil when the client
// identity middleware did not run.
func GetStore(c echo.Context) *session.Store {
	store, _ := c.Get(contextKeyStore).(*session.Store)
	return store
}

// GetClientID returns the request's browser client ID, or "".
func GetClientID(c echo.Context) string {
	id, _ := c.Get(middleware.ClientIDKey).(string)
	return id
}

// readClientID returns the cookie's client ID if it is a well-formed UUID.
func readClientID(c echo.Context) string {
	cookie, err := c.Cookie(clientCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	id, err := uuid.Parse(cookie.Value)
	if err != nil {
		return ""
	}
	return id.String()
}

func setClientCookie(c echo.Context, clientID string) {
	req := c.Request()
	c.SetCookie(&http.Cookie{
		Name:     clientCookieName,
		Value:    clientID,
		Path:     "/",
		HttpOnly: true,
		Secure:   req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   clientCookieMaxAge,
	})
}
