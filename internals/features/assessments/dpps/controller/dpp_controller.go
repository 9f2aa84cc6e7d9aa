package controller

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"smartstudy_backend/internals/constants"
	"smartstudy_backend/internals/features/assessments/dpps/dto"
	"smartstudy_backend/internals/features/assessments/dpps/model"
	dppService "smartstudy_backend/internals/features/assessments/dpps/service"
	"smartstudy_backend/internals/features/assessments/grading"
	"smartstudy_backend/internals/features/assessments/importer"
	helper "smartstudy_backend/internals/helpers"
	ossHelper "smartstudy_backend/internals/helpers/oss"
	"smartstudy_backend/internals/helpers/video"
)

type DPPController struct {
	Svc   *dppService.DPPService
	Blobs ossHelper.BlobService
}

func NewDPPController(svc *dppService.DPPService, blobs ossHelper.BlobService) *DPPController {
	return &DPPController{Svc: svc, Blobs: blobs}
}

// detail dipakai oleh GET by id dan GET by lecture
func (ctl *DPPController) detail(c *fiber.Ctx, dpp *model.DPPModel) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	role := helper.GetRole(c)
	staff := constants.IsStaff(role)
	if !dpp.IsActive && !staff {
		return helper.JsonError(c, fiber.StatusNotFound, "dpp not found")
	}
	if err := ctl.Svc.CheckAccess(c.UserContext(), userID, role, dpp); err != nil {
		return grading.WriteError(c, err)
	}
	questions, err := ctl.Svc.Questions(c.UserContext(), dpp.ID)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	unlocked, err := ctl.Svc.SolutionUnlocked(c.UserContext(), userID, role, dpp.ID)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	resp := dto.DPPDetailResponse{
		DPPModel:         *dpp,
		QuestionCount:    len(questions),
		Questions:        dto.ToQuestionList(questions, staff),
		SolutionUnlocked: unlocked,
	}
	if unlocked {
		sol, err := ctl.Svc.Solution(c.UserContext(), dpp.ID)
		if err != nil {
			return helper.WriteDBError(c, err)
		}
		resp.Solution = dto.ToSolutionResponse(sol)
	}
	return helper.JsonOK(c, "ok", resp)
}

// 🟢 GET /api/u/dpps/:id
func (ctl *DPPController) Detail(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	dpp, err := ctl.Svc.Get(c.UserContext(), id)
	if err != nil {
		return grading.WriteError(c, err)
	}
	return ctl.detail(c, dpp)
}

// 🟢 GET /api/u/dpps/lecture/:lectureId
func (ctl *DPPController) ByLecture(c *fiber.Ctx) error {
	lectureID, err := helper.ParseUUIDParam(c, "lectureId")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	dpp, err := ctl.Svc.GetByLecture(c.UserContext(), lectureID)
	if err != nil {
		return grading.WriteError(c, err)
	}
	return ctl.detail(c, dpp)
}

// 🟢 GET /api/u/dpps/:id/solution
func (ctl *DPPController) Solution(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	role := helper.GetRole(c)
	dpp, err := ctl.Svc.Get(c.UserContext(), id)
	if err != nil {
		return grading.WriteError(c, err)
	}
	if err := ctl.Svc.CheckAccess(c.UserContext(), userID, role, dpp); err != nil {
		return grading.WriteError(c, err)
	}
	unlocked, err := ctl.Svc.SolutionUnlocked(c.UserContext(), userID, role, id)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	if !unlocked {
		return helper.JsonError(c, fiber.StatusForbidden, "complete an attempt to unlock the solution")
	}
	sol, err := ctl.Svc.Solution(c.UserContext(), id)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	if sol == nil {
		return helper.JsonError(c, fiber.StatusNotFound, "solution not available yet")
	}
	return helper.JsonOK(c, "ok", dto.ToSolutionResponse(sol))
}

/* ===================== TEACHER: DPP ===================== */

// 🟢 POST /api/t/dpps
func (ctl *DPPController) Create(c *fiber.Ctx) error {
	var req dto.DPPRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if errs := helper.ValidateStruct(&req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}
	dpp := req.ToModel()
	if err := ctl.Svc.Create(c.UserContext(), dpp); err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "lecture already has a dpp")
		}
		return helper.WriteDBError(c, err)
	}
	return helper.JsonCreated(c, "dpp created", dpp)
}

// 🟡 PATCH /api/t/dpps/:id
func (ctl *DPPController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.DPPUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if errs := helper.ValidateStruct(&req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}
	dpp, err := ctl.Svc.Update(c.UserContext(), id, req.ToUpdates())
	if err != nil {
		return grading.WriteError(c, err)
	}
	return helper.JsonUpdated(c, "dpp updated", dpp)
}

// 🔴 DELETE /api/t/dpps/:id
func (ctl *DPPController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	sol, err := ctl.Svc.Solution(c.UserContext(), id)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	if err := ctl.Svc.Delete(c.UserContext(), id); err != nil {
		return grading.WriteError(c, err)
	}
	if sol != nil {
		ctl.trash(c, sol.SolutionPDF, sol.VideoFile)
	}
	return helper.JsonDeleted(c, "dpp deleted", fiber.Map{"id": id})
}

/* ===================== TEACHER: QUESTIONS ===================== */

func parseQuestion(c *fiber.Ctx) (*dto.QuestionRequest, map[string]string, error) {
	var req dto.QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if errs := helper.ValidateStruct(&req); errs != nil {
		return nil, errs, nil
	}
	if errs := req.Check(); errs != nil {
		return nil, errs, nil
	}
	return &req, nil, nil
}

// 🟢 POST /api/t/dpps/:id/questions
func (ctl *DPPController) AddQuestion(c *fiber.Ctx) error {
	dppID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	req, verrs, err := parseQuestion(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if verrs != nil {
		return helper.JsonValidationError(c, verrs)
	}
	q := req.ToModel(dppID)
	if err := ctl.Svc.AddQuestions(c.UserContext(), dppID, []*model.DPPQuestionModel{q}); err != nil {
		return grading.WriteError(c, err)
	}
	return helper.JsonCreated(c, "question added", dto.ToQuestionFull(*q))
}

// 🟡 PUT /api/t/dpps/:id/questions/:questionId
func (ctl *DPPController) UpdateQuestion(c *fiber.Ctx) error {
	dppID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	questionID, err := helper.ParseUUIDParam(c, "questionId")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	req, verrs, err := parseQuestion(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if verrs != nil {
		return helper.JsonValidationError(c, verrs)
	}
	q := req.ToModel(dppID)
	if err := ctl.Svc.UpdateQuestion(c.UserContext(), dppID, questionID, q); err != nil {
		return grading.WriteError(c, err)
	}
	q.ID = questionID
	return helper.JsonUpdated(c, "question updated", dto.ToQuestionFull(*q))
}

// 🔴 DELETE /api/t/dpps/:id/questions/:questionId
func (ctl *DPPController) DeleteQuestion(c *fiber.Ctx) error {
	dppID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	questionID, err := helper.ParseUUIDParam(c, "questionId")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if err := ctl.Svc.DeleteQuestion(c.UserContext(), dppID, questionID); err != nil {
		return grading.WriteError(c, err)
	}
	return helper.JsonDeleted(c, "question deleted", fiber.Map{"id": questionID})
}

// 🟢 POST /api/t/dpps/:id/questions/import (multipart: file, kolom "type" opsional)
func (ctl *DPPController) ImportQuestions(c *fiber.Ctx) error {
	dppID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "file is required")
	}
	if constants.DetectFileKind(fh.Filename) != constants.FileKindSheet {
		return helper.JsonError(c, fiber.StatusBadRequest, "only .xlsx files are supported")
	}
	f, err := fh.Open()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "cannot read file")
	}
	defer f.Close()

	res, err := importer.Parse(f, true)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	qs := make([]*model.DPPQuestionModel, 0, len(res.Rows))
	for i, r := range res.Rows {
		qs = append(qs, &model.DPPQuestionModel{
			QuestionType:  r.Type,
			QuestionText:  r.Question,
			Options:       model.EncodeOptions(r.Options),
			CorrectAnswer: r.CorrectAnswer,
			Explanation:   r.Explanation,
			Marks:         r.Marks,
			OrderIndex:    i + 1,
		})
	}
	if len(qs) > 0 {
		if err := ctl.Svc.AddQuestions(c.UserContext(), dppID, qs); err != nil {
			return grading.WriteError(c, err)
		}
	}
	return helper.JsonCreated(c, "questions imported", fiber.Map{
		"imported": len(qs),
		"invalid":  res.Invalid,
	})
}

/* ===================== TEACHER: SOLUTION ===================== */

// 🟡 PUT /api/t/dpps/:id/solution (multipart: solution_pdf, video_file, video_type, video_url)
func (ctl *DPPController) UpsertSolution(c *fiber.Ctx) error {
	dppID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.SolutionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if errs := helper.ValidateStruct(&req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}

	in := model.DPPSolutionModel{VideoType: req.VideoType, VideoURL: req.VideoURL}
	dir := "dpps/" + dppID.String()
	if fh := ossHelper.FormFile(c, "solution_pdf"); fh != nil {
		if constants.DetectFileKind(fh.Filename) != constants.FileKindPDF {
			return helper.JsonError(c, fiber.StatusBadRequest, "solution_pdf must be a .pdf file")
		}
		url, err := ctl.Blobs.UploadRawToDir(c.UserContext(), dir, fh)
		if err != nil {
			return helper.JsonFromError(c, err)
		}
		in.SolutionPDF = url
	}
	if fh := ossHelper.FormFile(c, "video_file"); fh != nil {
		url, err := ctl.Blobs.UploadRawToDir(c.UserContext(), dir, fh)
		if err != nil {
			return helper.JsonFromError(c, err)
		}
		in.VideoFile = url
		in.VideoType = video.TypeUpload
	}
	// "upload" tanpa file baru → video_type lama dipertahankan
	if in.VideoType == video.TypeUpload && in.VideoFile == "" {
		in.VideoType = ""
	}

	sol, replaced, err := ctl.Svc.UpsertSolution(c.UserContext(), dppID, in)
	if err != nil {
		return grading.WriteError(c, err)
	}
	ctl.trash(c, replaced...)
	return helper.JsonUpdated(c, "solution saved", dto.ToSolutionResponse(sol))
}

// 🔴 DELETE /api/t/dpps/:id/solution
func (ctl *DPPController) DeleteSolution(c *fiber.Ctx) error {
	dppID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	sol, err := ctl.Svc.DeleteSolution(c.UserContext(), dppID)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	ctl.trash(c, sol.SolutionPDF, sol.VideoFile)
	return helper.JsonDeleted(c, "solution deleted", fiber.Map{"dpp_id": dppID})
}

func (ctl *DPPController) trash(c *fiber.Ctx, urls ...string) {
	for _, u := range urls {
		if u == "" {
			continue
		}
		if err := ctl.Blobs.MoveToTrash(c.UserContext(), u); err != nil {
			log.Printf("[OSS] move to trash failed url=%s err=%v", u, err)
		}
	}
}

/* ===================== ATTEMPTS ===================== */

// 🟢 POST /api/u/dpps/:id/attempts
func (ctl *DPPController) StartAttempt(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	dppID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	att, questions, resumed, err := ctl.Svc.StartAttempt(c.UserContext(), userID, helper.GetRole(c), dppID)
	if err != nil {
		return grading.WriteError(c, err)
	}
	dpp, err := ctl.Svc.Get(c.UserContext(), dppID)
	if err != nil {
		return grading.WriteError(c, err)
	}
	pub := make([]dto.QuestionPublic, 0, len(questions))
	for _, q := range questions {
		pub = append(pub, dto.ToQuestionPublic(q))
	}
	body := dto.AttemptStartResponse{Attempt: *att, DPP: *dpp, Questions: pub, Resumed: resumed}
	if resumed {
		return helper.JsonOK(c, "attempt resumed", body)
	}
	return helper.JsonCreated(c, "attempt started", body)
}

// 🟢 GET /api/u/dpps/:id/attempts/active
func (ctl *DPPController) ActiveAttempt(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	dppID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	att, err := ctl.Svc.ActiveAttempt(c.UserContext(), userID, dppID)
	if err != nil {
		return grading.WriteError(c, err)
	}
	return helper.JsonOK(c, "ok", att)
}

// 🟡 PATCH /api/u/dpp-attempts/:id/answers
func (ctl *DPPController) SaveAnswer(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	attemptID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req grading.Response
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if errs := helper.ValidateStruct(&req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}
	ans, err := ctl.Svc.SaveAnswer(c.UserContext(), userID, attemptID, req)
	if err != nil {
		return grading.WriteError(c, err)
	}
	return helper.JsonUpdated(c, "answer saved", fiber.Map{
		"question_id":     ans.QuestionID,
		"selected_answer": ans.SelectedAnswer,
		"answered_at":     ans.AnsweredAt,
	})
}

// 🟢 POST /api/u/dpp-attempts/:id/submit
func (ctl *DPPController) Submit(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	attemptID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.SubmitRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}
	if errs := helper.ValidateStruct(&req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}
	att, err := ctl.Svc.Submit(c.UserContext(), userID, attemptID, req.Answers)
	if err != nil {
		return grading.WriteError(c, err)
	}
	return helper.JsonOK(c, "attempt submitted", att)
}

// 🟢 GET /api/u/dpp-attempts/:id
func (ctl *DPPController) Result(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	attemptID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	att, dpp, rows, err := ctl.Svc.Result(c.UserContext(), userID, attemptID)
	if err != nil {
		return grading.WriteError(c, err)
	}
	done := att.IsCompleted()
	answers := make([]dto.AnswerResult, 0, len(rows))
	for _, r := range rows {
		pub := dto.ToQuestionPublic(r.Question)
		item := dto.AnswerResult{
			QuestionID:     r.Question.ID,
			QuestionType:   r.Question.QuestionType,
			QuestionText:   r.Question.QuestionText,
			Options:        pub.Options,
			SelectedAnswer: r.Answer.SelectedAnswer,
			Marks:          r.Question.Marks,
		}
		if done {
			item.CorrectAnswer = r.Question.CorrectAnswer
			item.Explanation = r.Question.Explanation
			item.IsCorrect = r.Answer.IsCorrect
			item.MarksObtained = r.Answer.MarksObtained
		}
		answers = append(answers, item)
	}
	resp := dto.AttemptResultResponse{Attempt: *att, DPP: *dpp, Answers: answers}
	if done {
		sol, err := ctl.Svc.Solution(c.UserContext(), dpp.ID)
		if err != nil {
			return helper.WriteDBError(c, err)
		}
		resp.Solution = dto.ToSolutionResponse(sol)
	}
	return helper.JsonOK(c, "ok", resp)
}

// 🟢 GET /api/u/dpp-attempts?dpp_id=
func (ctl *DPPController) MyAttempts(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var dppID *uuid.UUID
	if raw := strings.TrimSpace(c.Query("dpp_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "dpp_id is not a valid uuid")
		}
		dppID = &id
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, stats, err := ctl.Svc.MyAttempts(c.UserContext(), userID, dppID, p.Offset, p.Limit)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	items := make([]dto.AttemptListItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.AttemptListItem{DPPAttemptModel: r.DPPAttemptModel, DPPTitle: r.DPPTitle})
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", dto.MyAttemptsResponse{Attempts: items, Stats: stats}, &pg)
}
