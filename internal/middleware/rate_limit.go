package middleware

import (
	"net/http"
	"time"

	"patronhub/internal/caching"

	"github.com/labstack/echo/v4"
)

// RateLimit throttles a route by client IP using the redis counters. A redis
// failure lets the request through rather than blocking logins.
func RateLimit(cacheSvc caching.CacheService, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "ratelimit:" + c.Path() + ":" + c.RealIP()
			limited, err := cacheSvc.IsRateLimited(c.Request().Context(), key, limit, window)
			if err == nil && limited {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, try again later")
			}
			_ = cacheSvc.IncrementRateLimit(c.Request().Context(), key, window)
			return next(c)
		}
	}
}
