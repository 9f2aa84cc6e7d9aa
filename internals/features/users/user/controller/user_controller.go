package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"smartstudy_backend/internals/features/users/user/dto"
	userService "smartstudy_backend/internals/features/users/user/service"
	helper "smartstudy_backend/internals/helpers"
)

type UserController struct {
	Svc       *userService.UserService
	Dashboard *userService.DashboardService
}

func NewUserController(svc *userService.UserService, dash *userService.DashboardService) *UserController {
	return &UserController{Svc: svc, Dashboard: dash}
}

func writeUserError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, userService.ErrCannotChangeSelf), errors.Is(err, userService.ErrNoDashboard):
		return helper.JsonError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, userService.ErrReportsDisabled):
		return helper.JsonError(c, fiber.StatusServiceUnavailable, err.Error())
	}
	return helper.WriteDBError(c, err)
}

// 🟢 GET /api/u/me
func (ctl *UserController) Me(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	u, err := ctl.Svc.Get(c.UserContext(), userID)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToProfile(u))
}

// 🟡 PATCH /api/u/me
func (ctl *UserController) UpdateMe(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if fe := helper.ValidateStruct(&req); fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	u, err := ctl.Svc.UpdateProfile(c.UserContext(), userID, req.ToUpdates())
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	return helper.JsonUpdated(c, "profile updated", dto.ToProfile(u))
}

// 🟢 GET /api/u/dashboard (isi tergantung role)
func (ctl *UserController) MyDashboard(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	d, err := ctl.Dashboard.For(c.UserContext(), userID, helper.GetRole(c))
	if err != nil {
		return writeUserError(c, err)
	}
	return helper.JsonOK(c, "ok", d)
}

// 🟢 GET /api/a/users?role=&q=
func (ctl *UserController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := ctl.Svc.List(c.UserContext(), userService.UserFilter{
		Role: strings.TrimSpace(c.Query("role")),
		Q:    c.Query("q"),
	}, p.Offset, p.Limit)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", rows, &pg)
}

// 🟡 PATCH /api/a/users/:id (role, is_active)
func (ctl *UserController) AdminUpdate(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	actor, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.AdminUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if fe := helper.ValidateStruct(&req); fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	u, err := ctl.Svc.AdminUpdate(c.UserContext(), actor, id, req.Role, req.IsActive)
	if err != nil {
		return writeUserError(c, err)
	}
	return helper.JsonUpdated(c, "user updated", dto.ToProfile(u))
}
