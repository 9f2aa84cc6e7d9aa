package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"smartstudy_backend/internals/features/doubts/dto"
	"smartstudy_backend/internals/features/doubts/model"
	doubtService "smartstudy_backend/internals/features/doubts/service"
	helper "smartstudy_backend/internals/helpers"
	ossHelper "smartstudy_backend/internals/helpers/oss"
)

type DoubtController struct {
	Svc   *doubtService.DoubtService
	Blobs ossHelper.BlobService
}

func NewDoubtController(svc *doubtService.DoubtService, blobs ossHelper.BlobService) *DoubtController {
	return &DoubtController{Svc: svc, Blobs: blobs}
}

func writeDoubtError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, doubtService.ErrDoubtNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, doubtService.ErrRoleNotAllowed):
		return helper.JsonError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, doubtService.ErrInvalidTransition),
		errors.Is(err, doubtService.ErrNotEditable),
		errors.Is(err, doubtService.ErrAssignedToOther):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	}
	return helper.WriteDBError(c, err)
}

func viewer(c *fiber.Ctx) (doubtService.Viewer, error) {
	id, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return doubtService.Viewer{}, err
	}
	return doubtService.Viewer{ID: id, Role: helper.GetRole(c)}, nil
}

func (ctl *DoubtController) trash(c *fiber.Ctx, url string) {
	if url == "" {
		return
	}
	if err := ctl.Blobs.MoveToTrash(c.UserContext(), url); err != nil {
		log.Printf("[OSS] move to trash failed url=%s err=%v", url, err)
	}
}

// 🟢 POST /api/u/doubts (multipart, image opsional → webp)
func (ctl *DoubtController) Create(c *fiber.Ctx) error {
	ctx := c.UserContext()
	studentID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.CreateDoubtRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if fe := helper.ValidateStruct(&req); fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	d := req.ToModel(studentID)
	if fh := ossHelper.FormFile(c, "image"); fh != nil {
		url, err := ctl.Blobs.UploadImageWebP(ctx, "doubts/"+studentID.String(), fh)
		if err != nil {
			return helper.JsonFromError(c, err)
		}
		d.ImageURL = url
	}
	if err := ctl.Svc.Create(ctx, d); err != nil {
		ctl.trash(c, d.ImageURL)
		return writeDoubtError(c, err)
	}
	return helper.JsonCreated(c, "doubt submitted", d)
}

// 🟢 GET /api/u/doubts?status= (siswa: miliknya, teacher: belum di-assign/miliknya, admin: semua)
func (ctl *DoubtController) List(c *fiber.Ctx) error {
	v, err := viewer(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	status := strings.ToLower(strings.TrimSpace(c.Query("status")))
	switch status {
	case "", model.StatusSubmitted, model.StatusInProgress, model.StatusResolved:
	default:
		return helper.JsonValidationError(c, map[string]string{"status": "status must be submitted, in_progress or resolved"})
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := ctl.Svc.List(c.UserContext(), v, status, p.Offset, p.Limit)
	if err != nil {
		return writeDoubtError(c, err)
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", rows, &pg)
}

// 🟢 GET /api/u/doubts/:id
func (ctl *DoubtController) Detail(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	v, err := viewer(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	d, err := ctl.Svc.Get(c.UserContext(), v, id)
	if err != nil {
		return writeDoubtError(c, err)
	}
	return helper.JsonOK(c, "ok", d)
}

// 🟡 PATCH /api/u/doubts/:id (siswa, hanya saat submitted)
func (ctl *DoubtController) Update(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	studentID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.UpdateDoubtRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if fe := helper.ValidateStruct(&req); fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	updates := req.ToUpdates()
	var uploaded string
	if fh := ossHelper.FormFile(c, "image"); fh != nil {
		if uploaded, err = ctl.Blobs.UploadImageWebP(ctx, "doubts/"+studentID.String(), fh); err != nil {
			return helper.JsonFromError(c, err)
		}
		updates["image_url"] = uploaded
	}
	d, replaced, err := ctl.Svc.Update(ctx, studentID, id, updates)
	if err != nil {
		ctl.trash(c, uploaded)
		return writeDoubtError(c, err)
	}
	ctl.trash(c, replaced)
	return helper.JsonUpdated(c, "doubt updated", d)
}

// 🔴 DELETE /api/u/doubts/:id (siswa, hanya saat submitted)
func (ctl *DoubtController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	studentID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	img, err := ctl.Svc.Delete(c.UserContext(), studentID, id)
	if err != nil {
		return writeDoubtError(c, err)
	}
	ctl.trash(c, img)
	return helper.JsonDeleted(c, "doubt deleted", fiber.Map{"id": id})
}

// 🟢 POST /api/t/doubts/:id/assign
func (ctl *DoubtController) Assign(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	teacherID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	d, err := ctl.Svc.Assign(c.UserContext(), teacherID, id)
	if err != nil {
		return writeDoubtError(c, err)
	}
	return helper.JsonUpdated(c, "doubt assigned", d)
}

// 🟢 POST /api/t/doubts/:id/resolve
func (ctl *DoubtController) Resolve(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	v, err := viewer(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.ResolveRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if fe := helper.ValidateStruct(&req); fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	d, err := ctl.Svc.Resolve(c.UserContext(), v, id, strings.TrimSpace(req.Resolution))
	if err != nil {
		return writeDoubtError(c, err)
	}
	return helper.JsonUpdated(c, "doubt resolved", d)
}
