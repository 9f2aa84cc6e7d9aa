package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"smartstudy_backend/internals/features/assessments/quizzes/controller"
	quizService "smartstudy_backend/internals/features/assessments/quizzes/service"
)

// Base: /api/u
func QuizUserRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewQuizController(quizService.New(db))

	q := r.Group("/quizzes")
	q.Get("/", ctl.List)
	q.Get("/:id", ctl.Detail)
	q.Post("/:id/attempts", ctl.StartAttempt)
	q.Get("/:id/attempts/active", ctl.ActiveAttempt)

	a := r.Group("/quiz-attempts")
	a.Get("/", ctl.MyAttempts)
	a.Get("/:id", ctl.Result)
	a.Patch("/:id/answers", ctl.SaveAnswer)
	a.Post("/:id/submit", ctl.Submit)
}

// Base: /api/t (teacher/admin)
func QuizTeacherRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewQuizController(quizService.New(db))

	q := r.Group("/quizzes")
	q.Post("/", ctl.Create)
	q.Patch("/:id", ctl.Update)
	q.Delete("/:id", ctl.Delete)
	q.Post("/:id/questions", ctl.AddQuestion)
	q.Post("/:id/questions/import", ctl.ImportQuestions)
	q.Put("/:id/questions/:questionId", ctl.UpdateQuestion)
	q.Delete("/:id/questions/:questionId", ctl.DeleteQuestion)
}
