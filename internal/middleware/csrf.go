package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	// csrfTokenLength is the number of random bytes in a token.
	csrfTokenLength = 32

	csrfCookieName = "storefront_csrf"
	csrfHeaderName = "X-CSRF-Token"
	csrfFormField  = "csrf_token"
	csrfContextKey = "csrf_token"
)

// CSRF returns middleware implementing the double-submit cookie pattern.
// Every response carries a CSRF cookie; every POST, PUT, PATCH or DELETE
// must echo its value in the X-CSRF-Token header or the csrf_token form
// field, or it is rejected with 403.
func CSRF() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			var cookieToken string
			if cookie, err := req.Cookie(csrfCookieName); err == nil && cookie.Value != "" {
				cookieToken = cookie.Value
			} else {
				token, genErr := generateCSRFToken()
				if genErr != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate CSRF token")
				}
				cookieToken = token
				c.SetCookie(&http.Cookie{
					Name:     csrfCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: false, // read by scripts that send the header
					Secure:   isSecureRequest(req),
					SameSite: http.SameSiteLaxMode,
				})
			}
			c.Set(csrfContextKey, cookieToken)

			if isSafeMethod(req.Method) {
				return next(c)
			}

			submitted := req.Header.Get(csrfHeaderName)
			if submitted == "" {
				submitted = req.FormValue(csrfFormField)
			}
			if submitted == "" || subtle.ConstantTimeCompare([]byte(submitted), []byte(cookieToken)) != 1 {
				return echo.NewHTTPError(http.StatusForbidden, "invalid or missing CSRF token")
			}
			return next(c)
		}
	}
}

// GetCSRFToken returns the request's CSRF token for embedding in forms.
func GetCSRFToken(c echo.Context) string {
	token, _ := c.Get(csrfContextKey).(string)
	return token
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet ||
		method == http.MethodHead ||
		method == http.MethodOptions
}

// isSecureRequest reports whether the browser reached us over TLS, directly
// or through the proxy.
func isSecureRequest(req *http.Request) bool {
	return req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https"
}

func generateCSRFToken() (string, error) {
	b := make([]byte, csrfTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
