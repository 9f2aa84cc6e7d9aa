package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"smartstudy_backend/internals/constants"
	"smartstudy_backend/internals/features/doubts/controller"
	doubtService "smartstudy_backend/internals/features/doubts/service"
	notifService "smartstudy_backend/internals/features/users/notifications/service"
	ossHelper "smartstudy_backend/internals/helpers/oss"
	authMiddleware "smartstudy_backend/internals/middlewares/auth"
)

// Base: /api/u (create/edit hanya siswa; list & detail difilter per role di service)
func DoubtUserRoutes(r fiber.Router, db *gorm.DB, notifier notifService.Notifier, blobs ossHelper.BlobService) {
	ctl := controller.NewDoubtController(doubtService.New(db, notifier), blobs)
	onlyStudent := authMiddleware.OnlyRoles("only students can submit doubts", constants.RoleStudent)

	d := r.Group("/doubts")
	d.Get("/", ctl.List)
	d.Get("/:id", ctl.Detail)
	d.Post("/", onlyStudent, ctl.Create)
	d.Patch("/:id", onlyStudent, ctl.Update)
	d.Delete("/:id", onlyStudent, ctl.Delete)
}

// Base: /api/t (teacher/admin)
func DoubtTeacherRoutes(r fiber.Router, db *gorm.DB, notifier notifService.Notifier) {
	ctl := controller.NewDoubtController(doubtService.New(db, notifier), nil)

	d := r.Group("/doubts")
	d.Post("/:id/assign", ctl.Assign)
	d.Post("/:id/resolve", ctl.Resolve)
}
