package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"smartstudy_backend/internals/features/users/user/controller"
	userService "smartstudy_backend/internals/features/users/user/service"
)

// Base: /api/u
func UserRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewUserController(userService.New(db), userService.NewDashboardService(db))

	r.Get("/me", ctl.Me)
	r.Patch("/me", ctl.UpdateMe)
	r.Get("/dashboard", ctl.MyDashboard)
}

// Base: /api/a (admin)
func UserAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewUserController(userService.New(db), nil)

	u := r.Group("/users")
	u.Get("/", ctl.List)
	u.Patch("/:id", ctl.AdminUpdate)
}
