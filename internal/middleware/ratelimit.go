package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// rateLimitEntry counts one IP's requests in the current window.
type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

// RateLimit returns middleware allowing maxRequests per client IP per
// window (fixed window). Excess requests get 429. Expired entries are
// pruned on the request path whenever a window has elapsed since the last
// prune, so the limiter needs no background goroutine.
func RateLimit(maxRequests int, window time.Duration) echo.MiddlewareFunc {
	var (
		mu        sync.Mutex
		entries   = make(map[string]*rateLimitEntry)
		lastPrune = time.Now()
	)

	allow := func(ip string, now time.Time) bool {
		mu.Lock()
		defer mu.Unlock()

		if now.Sub(lastPrune) > window {
			for k, e := range entries {
				if now.Sub(e.windowStart) > window {
					delete(entries, k)
				}
			}
			lastPrune = now
		}

		e, ok := entries[ip]
		if !ok || now.Sub(e.windowStart) > window {
			entries[ip] = &rateLimitEntry{count: 1, windowStart: now}
			return true
		}
		e.count++
		return e.count <= maxRequests
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !allow(c.RealIP(), time.Now()) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many attempts. Please wait a minute and try again.")
			}
			return next(c)
		}
	}
}
