package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"smartstudy_backend/internals/features/assessments/dpps/controller"
	dppService "smartstudy_backend/internals/features/assessments/dpps/service"
	ossHelper "smartstudy_backend/internals/helpers/oss"
)

// Base: /api/u
func DPPUserRoutes(r fiber.Router, db *gorm.DB, blobs ossHelper.BlobService) {
	ctl := controller.NewDPPController(dppService.New(db), blobs)

	d := r.Group("/dpps")
	d.Get("/lecture/:lectureId", ctl.ByLecture)
	d.Get("/:id", ctl.Detail)
	d.Get("/:id/solution", ctl.Solution)
	d.Post("/:id/attempts", ctl.StartAttempt)
	d.Get("/:id/attempts/active", ctl.ActiveAttempt)

	a := r.Group("/dpp-attempts")
	a.Get("/", ctl.MyAttempts)
	a.Get("/:id", ctl.Result)
	a.Patch("/:id/answers", ctl.SaveAnswer)
	a.Post("/:id/submit", ctl.Submit)
}

// Base: /api/t (teacher/admin)
func DPPTeacherRoutes(r fiber.Router, db *gorm.DB, blobs ossHelper.BlobService) {
	ctl := controller.NewDPPController(dppService.New(db), blobs)

	d := r.Group("/dpps")
	d.Post("/", ctl.Create)
	d.Patch("/:id", ctl.Update)
	d.Delete("/:id", ctl.Delete)
	d.Post("/:id/questions", ctl.AddQuestion)
	d.Post("/:id/questions/import", ctl.ImportQuestions)
	d.Put("/:id/questions/:questionId", ctl.UpdateQuestion)
	d.Delete("/:id/questions/:questionId", ctl.DeleteQuestion)
	d.Put("/:id/solution", ctl.UpsertSolution)
	d.Delete("/:id/solution", ctl.DeleteSolution)
}
