package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authController "smartstudy_backend/internals/features/users/auth/controller"
	"smartstudy_backend/internals/middlewares"
	authMiddleware "smartstudy_backend/internals/middlewares/auth"
)

// AuthRoutes: /api/auth/*
func AuthRoutes(app *fiber.App, db *gorm.DB) {
	ac := authController.NewAuthController(db)

	pub := app.Group("/api/auth")
	pub.Post("/register", middlewares.RegisterRateLimiter(), ac.Register)
	pub.Post("/login", middlewares.LoginRateLimiter(), ac.Login)
	pub.Post("/login-google", middlewares.LoginRateLimiter(), ac.LoginGoogle)
	pub.Post("/refresh-token", ac.RefreshToken)

	authed := authMiddleware.AuthMiddleware(db)
	pub.Post("/logout", authed, ac.Logout)
	pub.Post("/change-password", authed, ac.ChangePassword)
}
