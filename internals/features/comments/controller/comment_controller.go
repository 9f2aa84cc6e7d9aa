package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"smartstudy_backend/internals/constants"
	"smartstudy_backend/internals/features/comments/dto"
	commentService "smartstudy_backend/internals/features/comments/service"
	helper "smartstudy_backend/internals/helpers"
)

type CommentController struct {
	Svc *commentService.CommentService
}

func NewCommentController(svc *commentService.CommentService) *CommentController {
	return &CommentController{Svc: svc}
}

func writeCommentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, commentService.ErrTargetNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, commentService.ErrNoAccess), errors.Is(err, commentService.ErrNotOwner):
		return helper.JsonError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, commentService.ErrParentMismatch), errors.Is(err, commentService.ErrNestedReply):
		return helper.JsonValidationError(c, map[string]string{"parent_id": err.Error()})
	}
	return helper.WriteDBError(c, err)
}

// 🟢 GET /api/u/comments?content_type=lecture|solution&target_id=
func (ctl *CommentController) List(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	ct := strings.ToLower(strings.TrimSpace(c.Query("content_type", "lecture")))
	if !dto.ValidTarget(ct) {
		return helper.JsonValidationError(c, map[string]string{"content_type": "content_type must be lecture or solution"})
	}
	targetID, err := helper.ParseUUIDQuery(c, "target_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	t := commentService.Target{Type: ct, ID: targetID}
	if err := ctl.Svc.CheckAccess(ctx, userID, constants.IsStaff(helper.GetRole(c)), t); err != nil {
		return writeCommentError(c, err)
	}

	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := ctl.Svc.List(ctx, userID, t, p.Offset, p.Limit)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", rows, &pg)
}

// 🟢 POST /api/u/comments
func (ctl *CommentController) Create(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if fe := helper.ValidateStruct(&req); fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	if err := ctl.Svc.CheckAccess(ctx, userID, constants.IsStaff(helper.GetRole(c)), req.Target()); err != nil {
		return writeCommentError(c, err)
	}
	cm, err := ctl.Svc.Add(ctx, userID, req.Target(), req.ParentID, req.Text)
	if err != nil {
		return writeCommentError(c, err)
	}
	return helper.JsonCreated(c, "comment added", cm)
}

// 🟢 POST /api/u/comments/:id/react
func (ctl *CommentController) React(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.ReactRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if fe := helper.ValidateStruct(&req); fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	st, err := ctl.Svc.Toggle(c.UserContext(), userID, id, req.Kind)
	if err != nil {
		return writeCommentError(c, err)
	}
	return helper.JsonOK(c, "ok", st)
}

// 🔴 DELETE /api/u/comments/:id (pemilik atau admin)
func (ctl *CommentController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if err := ctl.Svc.Delete(c.UserContext(), userID, helper.GetRole(c) == constants.RoleAdmin, id); err != nil {
		return writeCommentError(c, err)
	}
	return helper.JsonDeleted(c, "comment deleted", fiber.Map{"id": id})
}
