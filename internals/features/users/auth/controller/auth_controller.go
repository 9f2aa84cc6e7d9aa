package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authService "smartstudy_backend/internals/features/users/auth/service"
)

type AuthController struct {
	DB *gorm.DB
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db}
}

func (ac *AuthController) Register(c *fiber.Ctx) error { return authService.Register(ac.DB, c) }

func (ac *AuthController) Login(c *fiber.Ctx) error { return authService.Login(ac.DB, c) }

func (ac *AuthController) LoginGoogle(c *fiber.Ctx) error { return authService.LoginGoogle(ac.DB, c) }

func (ac *AuthController) RefreshToken(c *fiber.Ctx) error {
	return authService.RefreshToken(ac.DB, c)
}

func (ac *AuthController) Logout(c *fiber.Ctx) error { return authService.Logout(ac.DB, c) }

func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	return authService.ChangePassword(ac.DB, c)
}
