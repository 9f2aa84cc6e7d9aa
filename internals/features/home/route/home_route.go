package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"smartstudy_backend/internals/features/home/controller"
	homeService "smartstudy_backend/internals/features/home/service"
)

// Base: /api/public
func HomePublicRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewHomeController(homeService.New(db))

	r.Get("/home", ctl.Index)
	r.Get("/search", ctl.Search)
}
