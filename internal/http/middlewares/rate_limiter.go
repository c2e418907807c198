package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimiter caps requests per client IP to limit per fixed window. Expired
// windows reset lazily on the next request, so idle clients cost nothing.
func RateLimiter(limit int, window time.Duration) echo.MiddlewareFunc {
	type counter struct {
		hits    int
		resetAt time.Time
	}

	var (
		mu       sync.Mutex
		counters = make(map[string]*counter)
	)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			now := time.Now()

			mu.Lock()
			w, ok := counters[ip]
			if !ok || now.After(w.resetAt) {
				w = &counter{resetAt: now.Add(window)}
				counters[ip] = w
			}

			if w.hits >= limit {
				mu.Unlock()
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}

			w.hits++
			mu.Unlock()

			return next(c)
		}
	}
}
