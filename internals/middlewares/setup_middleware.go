package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"smartstudy_backend/internals/configs"
	"smartstudy_backend/internals/middlewares/logger"
)

// SetupMiddlewares memasang middleware global (urutan penting).
func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(logger.RequestContextMiddleware(configs.GetEnvDuration("REQUEST_TIMEOUT", 15*time.Second)))
	if configs.GetEnvBool("HTTP_VERBOSE_LOG", false) {
		app.Use(logger.LoggerMiddleware())
	}
	app.Use(CorsMiddleware())
	app.Use(GlobalRateLimiter())
}
