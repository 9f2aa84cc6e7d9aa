package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	orderService "smartstudy_backend/internals/features/commerce/orders/service"
	"smartstudy_backend/internals/features/courses/controller"
	courseService "smartstudy_backend/internals/features/courses/service"
	ossHelper "smartstudy_backend/internals/helpers/oss"
)

// Base: /api/public
func CoursePublicRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewCourseController(courseService.New(db), nil, nil)

	s := r.Group("/subjects")
	s.Get("/", ctl.ListSubjects)
	s.Get("/:id", ctl.SubjectDetail)
}

// Base: /api/u
func CourseUserRoutes(r fiber.Router, db *gorm.DB, orders *orderService.OrderService) {
	ctl := controller.NewCourseController(courseService.New(db), orders, nil)

	r.Get("/lectures/:id", ctl.LectureDetail)
	r.Put("/lectures/:id/progress", ctl.UpsertProgress)
	r.Get("/subjects/:id/progress", ctl.SubjectProgress)

	e := r.Group("/enrollments")
	e.Get("/", ctl.MyEnrollments)
	e.Post("/", ctl.EnrollPlan)
}

// Base: /api/t (teacher/admin)
func CourseTeacherRoutes(r fiber.Router, db *gorm.DB, blobs ossHelper.BlobService) {
	ctl := controller.NewCourseController(courseService.New(db), nil, blobs)

	s := r.Group("/subjects")
	s.Get("/", ctl.ListAllSubjects)
	s.Post("/", ctl.CreateSubject)
	s.Patch("/:id", ctl.UpdateSubject)
	s.Delete("/:id", ctl.DeleteSubject)

	ch := r.Group("/chapters")
	ch.Post("/", ctl.CreateChapter)
	ch.Patch("/:id", ctl.UpdateChapter)
	ch.Delete("/:id", ctl.DeleteChapter)

	l := r.Group("/lectures")
	l.Post("/", ctl.CreateLecture)
	l.Patch("/:id", ctl.UpdateLecture)
	l.Delete("/:id", ctl.DeleteLecture)
	l.Post("/:id/pdfs", ctl.UploadPDF)
	l.Delete("/:id/pdfs/:pdfId", ctl.DeletePDF)
}
