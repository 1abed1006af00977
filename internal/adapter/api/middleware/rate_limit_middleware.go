package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"assetbazaar/internal/infrastructure/ratelimit"
	"assetbazaar/pkg/errors"
	"assetbazaar/pkg/logger"
	"assetbazaar/pkg/response"
)

// RateLimit limits an action per client IP. Signed-in callers are keyed by
// user id instead so users behind one NAT do not share a bucket.
func RateLimit(limiter *ratelimit.RateLimiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "ip:" + c.RealIP()
			if uid, ok := c.Get("uid").(string); ok && uid != "" {
				key = "user:" + uid
			}

			allowed, wait := limiter.Allow(key, action)
			if !allowed {
				logger.Warn("RATE LIMIT: %s blocked on %s (retry in %s)", key, action, wait.Round(time.Millisecond))
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				return response.Error(c, errors.TooManyRequests("Rate limit exceeded", nil))
			}

			return next(c)
		}
	}
}
