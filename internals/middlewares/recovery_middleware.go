package middlewares

import (
	"log"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"smartstudy_backend/internals/configs"
)

// RecoveryMiddleware menangkap panic, cetak stack trace, dan lapor ke rollbar.
func RecoveryMiddleware() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			log.Printf("[PANIC] %s %s: %v\n%s", c.Method(), c.OriginalURL(), e, debug.Stack())
			configs.ReportCritical(e, map[string]interface{}{
				"method":     c.Method(),
				"path":       c.Path(),
				"request_id": c.Locals("reqid"),
			})
		},
	})
}
