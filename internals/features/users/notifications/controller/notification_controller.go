package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	notifService "smartstudy_backend/internals/features/users/notifications/service"
	helper "smartstudy_backend/internals/helpers"
)

type NotificationController struct {
	Svc *notifService.Service
}

func NewNotificationController(svc *notifService.Service) *NotificationController {
	return &NotificationController{Svc: svc}
}

// GET /api/u/notifications?unread=true
func (ctl *NotificationController) List(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	p := helper.ResolvePaging(c, 20, 100)
	onlyUnread := strings.EqualFold(c.Query("unread"), "true")

	rows, total, err := ctl.Svc.List(c.UserContext(), userID, onlyUnread, p.Offset, p.Limit)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "failed to load notifications")
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", rows, &pg)
}

// GET /api/u/notifications/unread-count
func (ctl *NotificationController) UnreadCount(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	n, err := ctl.Svc.UnreadCount(c.UserContext(), userID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "failed to count notifications")
	}
	return helper.JsonOK(c, "ok", fiber.Map{"unread": n})
}

// PATCH /api/u/notifications/:id/read
func (ctl *NotificationController) MarkRead(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if err := ctl.Svc.MarkRead(c.UserContext(), userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "notification not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "failed to update notification")
	}
	return helper.JsonUpdated(c, "notification marked as read", fiber.Map{"id": id})
}

// PATCH /api/u/notifications/read-all
func (ctl *NotificationController) MarkAllRead(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	n, err := ctl.Svc.MarkAllRead(c.UserContext(), userID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "failed to update notifications")
	}
	return helper.JsonUpdated(c, "all notifications marked as read", fiber.Map{"updated": n})
}
