package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"smartstudy_backend/internals/constants"
	orderController "smartstudy_backend/internals/features/commerce/orders/controller"
	orderDTO "smartstudy_backend/internals/features/commerce/orders/dto"
	orderModel "smartstudy_backend/internals/features/commerce/orders/model"
	orderService "smartstudy_backend/internals/features/commerce/orders/service"
	"smartstudy_backend/internals/features/courses/dto"
	"smartstudy_backend/internals/features/courses/model"
	courseService "smartstudy_backend/internals/features/courses/service"
	helper "smartstudy_backend/internals/helpers"
	ossHelper "smartstudy_backend/internals/helpers/oss"
)

type CourseController struct {
	Svc    *courseService.CourseService
	Orders *orderService.OrderService
	Blobs  ossHelper.BlobService
}

func NewCourseController(svc *courseService.CourseService, orders *orderService.OrderService, blobs ossHelper.BlobService) *CourseController {
	return &CourseController{Svc: svc, Orders: orders, Blobs: blobs}
}

func writeCourseError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, courseService.ErrLectureLocked):
		return helper.JsonError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, courseService.ErrAlreadyOnPlan):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	}
	return helper.WriteDBError(c, err)
}

func (ctl *CourseController) trash(c *fiber.Ctx, urls ...string) {
	for _, u := range urls {
		if u == "" {
			continue
		}
		if err := ctl.Blobs.MoveToTrash(c.UserContext(), u); err != nil {
			log.Printf("[OSS] move to trash failed url=%s err=%v", u, err)
		}
	}
}

/* ===================== PUBLIC ===================== */

// 🟢 GET /api/public/subjects?class_level=&stream=
func (ctl *CourseController) ListSubjects(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 50, 200)
	rows, total, err := ctl.Svc.ListSubjects(c.UserContext(), courseService.SubjectFilter{
		ClassLevel: strings.TrimSpace(c.Query("class_level")),
		Stream:     strings.TrimSpace(c.Query("stream")),
		OnlyActive: true,
	}, p.Offset, p.Limit)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", rows, &pg)
}

// 🟢 GET /api/public/subjects/:id (video_url lecture berbayar dikosongkan)
func (ctl *CourseController) SubjectDetail(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	sub, err := ctl.Svc.GetSubject(c.UserContext(), id)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	if !sub.IsActive {
		return helper.JsonError(c, fiber.StatusNotFound, "subject not found")
	}
	tree, err := ctl.Svc.SubjectTree(c.UserContext(), id)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	for i := range tree {
		for j := range tree[i].Lectures {
			if !tree[i].Lectures[j].IsFree {
				tree[i].Lectures[j].VideoURL = ""
			}
		}
	}
	return helper.JsonOK(c, "ok", dto.SubjectDetailResponse{SubjectModel: *sub, Chapters: tree})
}

/* ===================== USER ===================== */

// 🟢 GET /api/u/lectures/:id (gratis, paket berbayar aktif, atau staff)
func (ctl *CourseController) LectureDetail(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	lec, err := ctl.Svc.GetLecture(ctx, id)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	ok, err := ctl.Svc.CanAccessLecture(ctx, userID, helper.GetRole(c), lec)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	if !ok {
		return writeCourseError(c, courseService.ErrLectureLocked)
	}
	sub, err := ctl.Svc.SubjectOfLecture(ctx, id)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	pdfs, err := ctl.Svc.LecturePDFs(ctx, id)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	prog, err := ctl.Svc.Progress(ctx, userID, id)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.LectureDetailResponse{
		CourseLectureModel: *lec,
		Subject:            *sub,
		PDFs:               pdfs,
		Progress:           prog,
	})
}

// 🟢 PUT /api/u/lectures/:id/progress
func (ctl *CourseController) UpsertProgress(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.ProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if fe := helper.ValidateStruct(&req); fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	lec, err := ctl.Svc.GetLecture(ctx, id)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	ok, err := ctl.Svc.CanAccessLecture(ctx, userID, helper.GetRole(c), lec)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	if !ok {
		return writeCourseError(c, courseService.ErrLectureLocked)
	}
	prog, err := ctl.Svc.UpsertProgress(ctx, userID, lec, req.ToInput())
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	return helper.JsonUpdated(c, "progress saved", prog)
}

// 🟢 GET /api/u/subjects/:id/progress
func (ctl *CourseController) SubjectProgress(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	prog, err := ctl.Svc.SubjectProgress(c.UserContext(), userID, id)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	return helper.JsonOK(c, "ok", prog)
}

// 🟢 GET /api/u/enrollments
func (ctl *CourseController) MyEnrollments(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	rows, err := ctl.Svc.MyEnrollments(c.UserContext(), userID)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

// 🟢 POST /api/u/enrollments (free langsung aktif, basic/premium lewat order)
func (ctl *CourseController) EnrollPlan(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req orderDTO.PlanCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if fe := helper.ValidateStruct(&req); fe != nil {
		return helper.JsonValidationError(c, fe)
	}

	if req.CourseType == model.CourseTypeFree {
		e, err := ctl.Svc.EnrollFree(c.UserContext(), userID, req.ClassLevel, req.Stream)
		if err != nil {
			return writeCourseError(c, err)
		}
		return helper.JsonCreated(c, "enrolled in free plan", e)
	}

	res, err := ctl.Orders.Checkout(c.UserContext(), orderService.CheckoutInput{
		UserID:       userID,
		ItemType:     orderModel.ItemPlan,
		PlanType:     req.CourseType,
		ClassLevel:   req.ClassLevel,
		Stream:       req.Stream,
		ReferralCode: req.ReferralCode,
		PaymentMode:  req.PaymentMode,
	})
	if err != nil {
		return orderController.WriteOrderError(c, err)
	}
	return helper.JsonCreated(c, "order created", res)
}

/* ===================== TEACHER / ADMIN ===================== */

// 🟢 GET /api/t/subjects (termasuk yang nonaktif)
func (ctl *CourseController) ListAllSubjects(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 50, 200)
	rows, total, err := ctl.Svc.ListSubjects(c.UserContext(), courseService.SubjectFilter{
		ClassLevel: strings.TrimSpace(c.Query("class_level")),
		Stream:     strings.TrimSpace(c.Query("stream")),
	}, p.Offset, p.Limit)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", rows, &pg)
}

// 🟢 POST /api/t/subjects
func (ctl *CourseController) CreateSubject(c *fiber.Ctx) error {
	var req dto.SubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if fe := helper.ValidateStruct(&req); fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	sub := req.ToModel()
	if err := ctl.Svc.CreateSubject(c.UserContext(), sub); err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "subject already exists for this class and stream")
		}
		return helper.WriteDBError(c, err)
	}
	return helper.JsonCreated(c, "subject created", sub)
}

// 🟡 PATCH /api/t/subjects/:id
func (ctl *CourseController) UpdateSubject(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.SubjectUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if fe := helper.ValidateStruct(&req); fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	sub, err := ctl.Svc.UpdateSubject(c.UserContext(), id, req.ToUpdates())
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	return helper.JsonUpdated(c, "subject updated", sub)
}

// 🔴 DELETE /api/t/subjects/:id
func (ctl *CourseController) DeleteSubject(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	files, err := ctl.Svc.DeleteSubject(c.UserContext(), id)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	ctl.trash(c, files...)
	return helper.JsonDeleted(c, "subject deleted", fiber.Map{"id": id})
}

// 🟢 POST /api/t/chapters
func (ctl *CourseController) CreateChapter(c *fiber.Ctx) error {
	var req dto.ChapterRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if fe := helper.ValidateStruct(&req); fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	ch := req.ToModel()
	if err := ctl.Svc.CreateChapter(c.UserContext(), ch); err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "order_index already used in this subject")
		}
		return helper.WriteDBError(c, err)
	}
	return helper.JsonCreated(c, "chapter created", ch)
}

// 🟡 PATCH /api/t/chapters/:id
func (ctl *CourseController) UpdateChapter(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.ChapterUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if fe := helper.ValidateStruct(&req); fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	ch, err := ctl.Svc.UpdateChapter(c.UserContext(), id, req.ToUpdates())
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	return helper.JsonUpdated(c, "chapter updated", ch)
}

// 🔴 DELETE /api/t/chapters/:id
func (ctl *CourseController) DeleteChapter(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	files, err := ctl.Svc.DeleteChapter(c.UserContext(), id)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	ctl.trash(c, files...)
	return helper.JsonDeleted(c, "chapter deleted", fiber.Map{"id": id})
}

// 🟢 POST /api/t/lectures
func (ctl *CourseController) CreateLecture(c *fiber.Ctx) error {
	var req dto.LectureRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if fe := helper.ValidateStruct(&req); fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	lec := req.ToModel()
	if err := ctl.Svc.CreateLecture(c.UserContext(), lec); err != nil {
		return helper.WriteDBError(c, err)
	}
	return helper.JsonCreated(c, "lecture created", lec)
}

// 🟡 PATCH /api/t/lectures/:id
func (ctl *CourseController) UpdateLecture(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.LectureUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if fe := helper.ValidateStruct(&req); fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	lec, err := ctl.Svc.UpdateLecture(c.UserContext(), id, req.ToUpdates())
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	return helper.JsonUpdated(c, "lecture updated", lec)
}

// 🔴 DELETE /api/t/lectures/:id
func (ctl *CourseController) DeleteLecture(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	files, err := ctl.Svc.DeleteLecture(c.UserContext(), id)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	ctl.trash(c, files...)
	return helper.JsonDeleted(c, "lecture deleted", fiber.Map{"id": id})
}

// 🟢 POST /api/t/lectures/:id/pdfs (multipart: title, file)
func (ctl *CourseController) UploadPDF(c *fiber.Ctx) error {
	lectureID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.PDFRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if fe := helper.ValidateStruct(&req); fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	fh := ossHelper.FormFile(c, "file")
	if fh == nil {
		return helper.JsonValidationError(c, map[string]string{"file": "file is required"})
	}
	if constants.DetectFileKind(fh.Filename) != constants.FileKindPDF {
		return helper.JsonError(c, fiber.StatusBadRequest, "file must be a .pdf file")
	}
	if _, err := ctl.Svc.GetLecture(c.UserContext(), lectureID); err != nil {
		return helper.WriteDBError(c, err)
	}
	url, err := ctl.Blobs.UploadRawToDir(c.UserContext(), "lectures/"+lectureID.String(), fh)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	pdf := model.LecturePDFModel{
		LectureID: lectureID,
		Title:     strings.TrimSpace(req.Title),
		FileURL:   url,
		FileSize:  fh.Size,
	}
	if err := ctl.Svc.AddPDF(c.UserContext(), &pdf); err != nil {
		ctl.trash(c, url)
		return helper.WriteDBError(c, err)
	}
	return helper.JsonCreated(c, "pdf uploaded", pdf)
}

// 🔴 DELETE /api/t/lectures/:id/pdfs/:pdfId
func (ctl *CourseController) DeletePDF(c *fiber.Ctx) error {
	lectureID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	pdfID, err := helper.ParseUUIDParam(c, "pdfId")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	pdf, err := ctl.Svc.DeletePDF(c.UserContext(), lectureID, pdfID)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	ctl.trash(c, pdf.FileURL)
	return helper.JsonDeleted(c, "pdf deleted", fiber.Map{"id": pdfID})
}
