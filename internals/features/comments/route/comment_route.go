package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"smartstudy_backend/internals/features/comments/controller"
	commentService "smartstudy_backend/internals/features/comments/service"
	notifService "smartstudy_backend/internals/features/users/notifications/service"
)

// Base: /api/u
func CommentUserRoutes(r fiber.Router, db *gorm.DB, notifier notifService.Notifier) {
	ctl := controller.NewCommentController(commentService.New(db, notifier))

	cm := r.Group("/comments")
	cm.Get("/", ctl.List)
	cm.Post("/", ctl.Create)
	cm.Post("/:id/react", ctl.React)
	cm.Delete("/:id", ctl.Delete)
}
