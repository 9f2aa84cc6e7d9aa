package route

import (
	"github.com/gofiber/fiber/v2"

	"smartstudy_backend/internals/features/users/notifications/controller"
	notifService "smartstudy_backend/internals/features/users/notifications/service"
)

// Base: /api/u/notifications
func NotificationUserRoutes(r fiber.Router, svc *notifService.Service) {
	ctl := controller.NewNotificationController(svc)

	g := r.Group("/notifications")
	g.Get("/", ctl.List)
	g.Get("/unread-count", ctl.UnreadCount)
	g.Patch("/read-all", ctl.MarkAllRead)
	g.Patch("/:id/read", ctl.MarkRead)
}
