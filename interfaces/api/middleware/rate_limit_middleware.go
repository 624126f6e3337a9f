package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/cjnghn/drone-topview-analysis/pkg/config"
)

// RateLimiter limits requests per client IP
func RateLimiter(cfg *config.RateLimitConfig) fiber.Handler {
	if !cfg.Enabled || cfg.MaxRequests <= 0 {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	return limiter.New(limiter.Config{
		Max:        cfg.MaxRequests,
		Expiration: time.Duration(cfg.WindowSeconds) * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Too many requests. Please try again later.",
				"error":   "RATE_LIMIT_EXCEEDED",
			})
		},
	})
}
