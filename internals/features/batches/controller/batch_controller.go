package controller

import (
	"errors"
	"log"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"smartstudy_backend/internals/constants"
	"smartstudy_backend/internals/features/batches/dto"
	batchService "smartstudy_backend/internals/features/batches/service"
	helper "smartstudy_backend/internals/helpers"
	ossHelper "smartstudy_backend/internals/helpers/oss"
	"smartstudy_backend/internals/helpers/video"
)

const (
	thumbW = 1280
	thumbH = 720
)

type BatchController struct {
	Svc   *batchService.BatchService
	Blobs ossHelper.BlobService
}

func NewBatchController(svc *batchService.BatchService, blobs ossHelper.BlobService) *BatchController {
	return &BatchController{Svc: svc, Blobs: blobs}
}

func writeBatchError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, batchService.ErrNotEnrolled):
		return helper.JsonError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, batchService.ErrBatchNotAvailable):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, batchService.ErrPaidBatch):
		return helper.JsonError(c, fiber.StatusPaymentRequired, err.Error())
	case errors.Is(err, batchService.ErrAlreadyEnrolled),
		errors.Is(err, batchService.ErrCategoryNotEmpty),
		errors.Is(err, batchService.ErrBatchHasStudents),
		errors.Is(err, batchService.ErrLectureHasDPP):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	}
	if helper.IsUniqueViolation(err) {
		return helper.JsonError(c, fiber.StatusConflict, "duplicate entry")
	}
	return helper.WriteDBError(c, err)
}

func (ctl *BatchController) trash(c *fiber.Ctx, urls ...string) {
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

// 🟢 GET /api/public/categories
func (ctl *BatchController) Categories(c *fiber.Ctx) error {
	rows, err := ctl.Svc.Categories(c.UserContext(), true)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

// 🟢 GET /api/public/batches?category=<slug>
func (ctl *BatchController) ListBatches(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := ctl.Svc.ListBatches(c.UserContext(), batchService.BatchFilter{
		CategorySlug: strings.TrimSpace(c.Query("category")),
		OnlyActive:   true,
	}, p.Offset, p.Limit)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", rows, &pg)
}

// 🟢 GET /api/public/batches/:id   |   GET /api/u/batches/:id (dengan is_enrolled)
func (ctl *BatchController) BatchDetail(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	staff := constants.IsStaff(helper.GetRole(c))
	b, err := ctl.Svc.GetBatch(ctx, id)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	if !b.IsActive && !staff {
		return writeBatchError(c, batchService.ErrBatchNotAvailable)
	}
	tree, err := ctl.Svc.Tree(ctx, id, !staff)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	count, err := ctl.Svc.EnrolledCount(ctx, id)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	out := dto.BatchDetailResponse{BatchModel: *b, Subjects: tree, EnrolledCount: count}

	if c.Locals(helper.LocUserID) != nil {
		userID, err := helper.GetUserIDFromToken(c)
		if err != nil {
			return helper.JsonFromError(c, err)
		}
		if out.IsEnrolled, err = ctl.Svc.IsEnrolled(ctx, userID, id); err != nil {
			return helper.WriteDBError(c, err)
		}
	}
	return helper.JsonOK(c, "ok", out)
}

/* ===================== USER ===================== */

// 🟢 POST /api/u/batches/:id/enroll (hanya batch gratis)
func (ctl *BatchController) EnrollFree(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if err := ctl.Svc.EnrollFree(c.UserContext(), userID, id); err != nil {
		return writeBatchError(c, err)
	}
	return helper.JsonCreated(c, "enrolled", fiber.Map{"batch_id": id})
}

// 🟢 GET /api/u/my-batches
func (ctl *BatchController) MyBatches(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	rows, err := ctl.Svc.MyBatches(c.UserContext(), userID)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

// 🟢 GET /api/u/batch-lectures/:id (siswa terdaftar atau staff)
func (ctl *BatchController) LectureDetail(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	staff := constants.IsStaff(helper.GetRole(c))
	lec, err := ctl.Svc.GetLecture(ctx, id)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	if !lec.IsActive && !staff {
		return helper.JsonError(c, fiber.StatusNotFound, "lecture not found")
	}
	ok, err := ctl.Svc.CanAccessLecture(ctx, userID, staff, id)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	if !ok {
		return writeBatchError(c, batchService.ErrNotEnrolled)
	}
	extras, err := ctl.Svc.Extras(ctx, id, staff)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToLectureDetail(lec, extras))
}

/* ===================== TEACHER / ADMIN: CATEGORY ===================== */

// 🟢 GET /api/t/categories (termasuk nonaktif)
func (ctl *BatchController) AllCategories(c *fiber.Ctx) error {
	rows, err := ctl.Svc.Categories(c.UserContext(), false)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

// 🟢 POST /api/t/categories
func (ctl *BatchController) CreateCategory(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if fe := helper.ValidateStruct(&req); fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	cat := req.ToModel()
	if err := ctl.Svc.CreateCategory(c.UserContext(), cat); err != nil {
		return writeBatchError(c, err)
	}
	return helper.JsonCreated(c, "category created", cat)
}

// 🟡 PATCH /api/t/categories/:id
func (ctl *BatchController) UpdateCategory(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.CategoryUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if fe := helper.ValidateStruct(&req); fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	cat, err := ctl.Svc.UpdateCategory(c.UserContext(), id, req.ToUpdates())
	if err != nil {
		return writeBatchError(c, err)
	}
	return helper.JsonUpdated(c, "category updated", cat)
}

// 🔴 DELETE /api/t/categories/:id
func (ctl *BatchController) DeleteCategory(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if err := ctl.Svc.DeleteCategory(c.UserContext(), id); err != nil {
		return writeBatchError(c, err)
	}
	return helper.JsonDeleted(c, "category deleted", fiber.Map{"id": id})
}

/* ===================== TEACHER / ADMIN: BATCH ===================== */

// 🟢 GET /api/t/batches (termasuk nonaktif)
func (ctl *BatchController) ListAllBatches(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := ctl.Svc.ListBatches(c.UserContext(), batchService.BatchFilter{
		CategorySlug: strings.TrimSpace(c.Query("category")),
	}, p.Offset, p.Limit)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", rows, &pg)
}

// 🟢 POST /api/t/batches (multipart, thumbnail opsional)
func (ctl *BatchController) CreateBatch(c *fiber.Ctx) error {
	ctx := c.UserContext()
	var req dto.BatchRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if fe := helper.ValidateStruct(&req); fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	b, fe := req.ToModel()
	if fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	if err := ctl.Svc.CreateBatch(ctx, b); err != nil {
		return writeBatchError(c, err)
	}

	// thumbnail diupload setelah id batch ada
	if fh := ossHelper.FormFile(c, "thumbnail"); fh != nil {
		url, err := ctl.Blobs.UploadThumbnail(ctx, "batches/"+b.ID.String(), fh, thumbW, thumbH)
		if err != nil {
			log.Printf("[BATCH] thumbnail upload failed batch=%s err=%v", b.ID, err)
			return helper.JsonFromError(c, err)
		}
		if b, _, err = ctl.Svc.UpdateBatch(ctx, b.ID, map[string]any{"thumbnail": url}); err != nil {
			ctl.trash(c, url)
			return helper.WriteDBError(c, err)
		}
	}
	return helper.JsonCreated(c, "batch created", b)
}

// 🟡 PATCH /api/t/batches/:id (multipart, thumbnail opsional)
func (ctl *BatchController) UpdateBatch(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.BatchUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if fe := helper.ValidateStruct(&req); fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	updates, fe := req.ToUpdates()
	if fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	if _, err := ctl.Svc.GetBatch(ctx, id); err != nil {
		return helper.WriteDBError(c, err)
	}

	var uploaded string
	if fh := ossHelper.FormFile(c, "thumbnail"); fh != nil {
		if uploaded, err = ctl.Blobs.UploadThumbnail(ctx, "batches/"+id.String(), fh, thumbW, thumbH); err != nil {
			return helper.JsonFromError(c, err)
		}
		updates["thumbnail"] = uploaded
	}
	b, replaced, err := ctl.Svc.UpdateBatch(ctx, id, updates)
	if err != nil {
		ctl.trash(c, uploaded)
		return writeBatchError(c, err)
	}
	ctl.trash(c, replaced)
	return helper.JsonUpdated(c, "batch updated", b)
}

// 🔴 DELETE /api/t/batches/:id
func (ctl *BatchController) DeleteBatch(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	files, err := ctl.Svc.DeleteBatch(c.UserContext(), id)
	if err != nil {
		return writeBatchError(c, err)
	}
	ctl.trash(c, files...)
	return helper.JsonDeleted(c, "batch deleted", fiber.Map{"id": id})
}

/* ===================== TEACHER / ADMIN: SUBJECT ===================== */

// 🟢 POST /api/t/batch-subjects
func (ctl *BatchController) CreateSubject(c *fiber.Ctx) error {
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
			return helper.JsonError(c, fiber.StatusConflict, "subject name already used in this batch")
		}
		return writeBatchError(c, err)
	}
	return helper.JsonCreated(c, "subject created", sub)
}

// 🟡 PATCH /api/t/batch-subjects/:id
func (ctl *BatchController) UpdateSubject(c *fiber.Ctx) error {
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
		return writeBatchError(c, err)
	}
	return helper.JsonUpdated(c, "subject updated", sub)
}

// 🔴 DELETE /api/t/batch-subjects/:id
func (ctl *BatchController) DeleteSubject(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	files, err := ctl.Svc.DeleteSubject(c.UserContext(), id)
	if err != nil {
		return writeBatchError(c, err)
	}
	ctl.trash(c, files...)
	return helper.JsonDeleted(c, "subject deleted", fiber.Map{"id": id})
}

/* ===================== TEACHER / ADMIN: LECTURE ===================== */

// uploadLectureFiles: pdf_file (.pdf) dan video_file (wajib untuk video_type upload).
func (ctl *BatchController) uploadLectureFiles(c *fiber.Ctx, lectureID uuid.UUID) (map[string]any, []string, error) {
	ctx := c.UserContext()
	dir := "batch-lectures/" + lectureID.String()
	out := map[string]any{}
	var uploaded []string

	files := []struct {
		field string
		check func(*multipart.FileHeader) bool
		msg   string
	}{
		{"pdf_file", func(fh *multipart.FileHeader) bool {
			return constants.DetectFileKind(fh.Filename) == constants.FileKindPDF
		}, "pdf_file must be a .pdf file"},
		{"video_file", func(fh *multipart.FileHeader) bool {
			return constants.DetectFileKind(fh.Filename) == constants.FileKindVideo
		}, "video_file must be a video (.mp4, .webm, .mov, .mkv)"},
	}
	for _, f := range files {
		fh := ossHelper.FormFile(c, f.field)
		if fh == nil {
			continue
		}
		if !f.check(fh) {
			ctl.trash(c, uploaded...)
			return nil, nil, fiber.NewError(fiber.StatusBadRequest, f.msg)
		}
		url, err := ctl.Blobs.UploadRawToDir(ctx, dir, fh)
		if err != nil {
			ctl.trash(c, uploaded...)
			return nil, nil, err
		}
		uploaded = append(uploaded, url)
		out[f.field] = url
	}
	return out, uploaded, nil
}

// 🟢 POST /api/t/batch-lectures (multipart: pdf_file, video_file)
func (ctl *BatchController) CreateLecture(c *fiber.Ctx) error {
	ctx := c.UserContext()
	var req dto.LectureRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if fe := helper.ValidateStruct(&req); fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	if req.VideoType != video.TypeUpload && req.VideoURL == "" {
		return helper.JsonValidationError(c, map[string]string{"video_url": "video_url is required for this video_type"})
	}
	if req.VideoType == video.TypeUpload && ossHelper.FormFile(c, "video_file") == nil {
		return helper.JsonValidationError(c, map[string]string{"video_file": "video_file is required for upload"})
	}
	lec := req.ToModel()
	if err := ctl.Svc.CreateLecture(ctx, lec); err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "day_number already used in this subject")
		}
		return writeBatchError(c, err)
	}

	files, uploaded, err := ctl.uploadLectureFiles(c, lec.ID)
	if err != nil {
		// upload gagal → lecture dibatalkan
		if _, derr := ctl.Svc.DeleteLecture(ctx, lec.ID); derr != nil {
			log.Printf("[BATCH] rollback lecture %s failed: %v", lec.ID, derr)
		}
		return helper.JsonFromError(c, err)
	}
	if len(files) > 0 {
		if lec, _, err = ctl.Svc.UpdateLecture(ctx, lec.ID, files); err != nil {
			ctl.trash(c, uploaded...)
			return helper.WriteDBError(c, err)
		}
	}
	return helper.JsonCreated(c, "lecture created", dto.ToLectureDetail(lec, &batchService.LectureExtras{}))
}

// 🟡 PATCH /api/t/batch-lectures/:id (multipart, file opsional)
func (ctl *BatchController) UpdateLecture(c *fiber.Ctx) error {
	ctx := c.UserContext()
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
	if _, err := ctl.Svc.GetLecture(ctx, id); err != nil {
		return helper.WriteDBError(c, err)
	}
	updates := req.ToUpdates()
	files, uploaded, err := ctl.uploadLectureFiles(c, id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	for k, v := range files {
		updates[k] = v
	}
	lec, replaced, err := ctl.Svc.UpdateLecture(ctx, id, updates)
	if err != nil {
		ctl.trash(c, uploaded...)
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "day_number already used in this subject")
		}
		return writeBatchError(c, err)
	}
	ctl.trash(c, replaced...)
	return helper.JsonUpdated(c, "lecture updated", dto.ToLectureDetail(lec, &batchService.LectureExtras{}))
}

// 🔴 DELETE /api/t/batch-lectures/:id
func (ctl *BatchController) DeleteLecture(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	files, err := ctl.Svc.DeleteLecture(c.UserContext(), id)
	if err != nil {
		return writeBatchError(c, err)
	}
	ctl.trash(c, files...)
	return helper.JsonDeleted(c, "lecture deleted", fiber.Map{"id": id})
}
