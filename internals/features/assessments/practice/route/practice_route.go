package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"smartstudy_backend/internals/features/assessments/practice/controller"
	practiceService "smartstudy_backend/internals/features/assessments/practice/service"
)

// Base: /api/u
func PracticeUserRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewPracticeController(practiceService.New(db))
	r.Get("/chapters/:chapterId/practice", ctl.ListByChapter)
	r.Post("/practice/:id/check", ctl.Check)
}

// Base: /api/t
func PracticeTeacherRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewPracticeController(practiceService.New(db))
	p := r.Group("/practice")
	p.Post("/", ctl.Create)
	p.Patch("/:id", ctl.Update)
	p.Delete("/:id", ctl.Delete)
}
