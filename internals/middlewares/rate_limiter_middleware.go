package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"smartstudy_backend/internals/configs"
	helper "smartstudy_backend/internals/helpers"
)

func newIPLimiter(max int, exp time.Duration, msg string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: exp,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		Next: func(c *fiber.Ctx) bool {
			// test & lokal tidak dibatasi
			return configs.GetEnvBool("RATE_LIMIT_DISABLED", false)
		},
		LimitReached: func(c *fiber.Ctx) error {
			return helper.JsonError(c, fiber.StatusTooManyRequests, msg)
		},
	})
}

// Global limiter: untuk semua endpoint biasa
func GlobalRateLimiter() fiber.Handler {
	return newIPLimiter(configs.GetEnvInt("RATE_LIMIT_PER_MINUTE", 100), time.Minute,
		"too many requests, please try again later")
}

// Rate limiter untuk login route (lebih ketat)
func LoginRateLimiter() fiber.Handler {
	return newIPLimiter(5, time.Minute, "too many login attempts, please wait a moment")
}

func RegisterRateLimiter() fiber.Handler {
	return newIPLimiter(3, 5*time.Minute, "too many registration attempts, please wait a few minutes")
}

// Webhook payment boleh lebih longgar, tapi tetap dibatasi
func WebhookRateLimiter() fiber.Handler {
	return newIPLimiter(60, time.Minute, "too many webhook calls")
}
