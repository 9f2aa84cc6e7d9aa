package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"smartstudy_backend/internals/constants"
	"smartstudy_backend/internals/features/assessments/practice/dto"
	practiceService "smartstudy_backend/internals/features/assessments/practice/service"
	helper "smartstudy_backend/internals/helpers"
)

type PracticeController struct {
	Svc *practiceService.PracticeService
}

func NewPracticeController(svc *practiceService.PracticeService) *PracticeController {
	return &PracticeController{Svc: svc}
}

// 🟢 GET /api/u/chapters/:chapterId/practice?date=YYYY-MM-DD
func (ctl *PracticeController) ListByChapter(c *fiber.Ctx) error {
	chapterID, err := helper.ParseUUIDParam(c, "chapterId")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var day *time.Time
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		d, err := time.Parse(dto.DateLayout, raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		d = dto.TruncateDay(d)
		day = &d
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := ctl.Svc.ListByChapter(c.UserContext(), chapterID, day, p.Offset, p.Limit)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	if constants.IsStaff(helper.GetRole(c)) {
		return helper.JsonList(c, "ok", rows, &pg)
	}
	out := make([]dto.ProblemPublic, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ToProblemPublic(r))
	}
	return helper.JsonList(c, "ok", out, &pg)
}

// 🟢 POST /api/u/practice/:id/check
func (ctl *PracticeController) Check(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.CheckRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if errs := helper.ValidateStruct(&req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}
	ok, p, err := ctl.Svc.Check(c.UserContext(), id, req.Answer)
	if err != nil {
		if errors.Is(err, practiceService.ErrNoAnswerKey) {
			return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
		}
		return helper.WriteDBError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.CheckResponse{Correct: ok, Answer: *p.Answer, Explanation: p.Explanation})
}

// 🟢 POST /api/t/practice
func (ctl *PracticeController) Create(c *fiber.Ctx) error {
	var req dto.ProblemRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if errs := helper.ValidateStruct(&req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}
	p := req.ToModel(time.Now())
	if err := ctl.Svc.Create(c.UserContext(), p); err != nil {
		return helper.WriteDBError(c, err)
	}
	return helper.JsonCreated(c, "practice problem created", p)
}

// 🟡 PATCH /api/t/practice/:id
func (ctl *PracticeController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.ProblemUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if errs := helper.ValidateStruct(&req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}
	p, err := ctl.Svc.Update(c.UserContext(), id, req.ToUpdates())
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	return helper.JsonUpdated(c, "practice problem updated", p)
}

// 🔴 DELETE /api/t/practice/:id
func (ctl *PracticeController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if err := ctl.Svc.Delete(c.UserContext(), id); err != nil {
		return helper.WriteDBError(c, err)
	}
	return helper.JsonDeleted(c, "practice problem deleted", fiber.Map{"id": id})
}
