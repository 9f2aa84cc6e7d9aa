package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"smartstudy_backend/internals/features/batches/controller"
	batchService "smartstudy_backend/internals/features/batches/service"
	ossHelper "smartstudy_backend/internals/helpers/oss"
)

// Base: /api/public
func BatchPublicRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewBatchController(batchService.New(db), nil)

	r.Get("/categories", ctl.Categories)
	b := r.Group("/batches")
	b.Get("/", ctl.ListBatches)
	b.Get("/:id", ctl.BatchDetail)
}

// Base: /api/u
func BatchUserRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewBatchController(batchService.New(db), nil)

	b := r.Group("/batches")
	b.Get("/:id", ctl.BatchDetail)
	b.Post("/:id/enroll", ctl.EnrollFree)

	r.Get("/my-batches", ctl.MyBatches)
	r.Get("/batch-lectures/:id", ctl.LectureDetail)
}

// Base: /api/t (teacher/admin)
func BatchTeacherRoutes(r fiber.Router, db *gorm.DB, blobs ossHelper.BlobService) {
	ctl := controller.NewBatchController(batchService.New(db), blobs)

	cat := r.Group("/categories")
	cat.Get("/", ctl.AllCategories)
	cat.Post("/", ctl.CreateCategory)
	cat.Patch("/:id", ctl.UpdateCategory)
	cat.Delete("/:id", ctl.DeleteCategory)

	b := r.Group("/batches")
	b.Get("/", ctl.ListAllBatches)
	b.Post("/", ctl.CreateBatch)
	b.Patch("/:id", ctl.UpdateBatch)
	b.Delete("/:id", ctl.DeleteBatch)

	s := r.Group("/batch-subjects")
	s.Post("/", ctl.CreateSubject)
	s.Patch("/:id", ctl.UpdateSubject)
	s.Delete("/:id", ctl.DeleteSubject)

	l := r.Group("/batch-lectures")
	l.Post("/", ctl.CreateLecture)
	l.Patch("/:id", ctl.UpdateLecture)
	l.Delete("/:id", ctl.DeleteLecture)
}
