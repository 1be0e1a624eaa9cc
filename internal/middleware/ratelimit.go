package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimiter creates a rate limiting middleware keyed by authenticated
// user id, falling back to client IP.
func RateLimiter(max int, expiration time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			if userID := GetUserID(c); userID != 0 {
				return strconv.FormatInt(userID, 10)
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "Too many requests, please try again later",
			})
		},
	})
}

// MessageRateLimiter bounds how fast a single user can post.
func MessageRateLimiter() fiber.Handler {
	return RateLimiter(60, 1*time.Minute)
}

// ReadRateLimiter for read-only endpoints.
func ReadRateLimiter() fiber.Handler {
	return RateLimiter(120, 1*time.Minute)
}
