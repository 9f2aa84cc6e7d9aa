package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"smartstudy_backend/internals/constants"
	"smartstudy_backend/internals/features/assessments/grading"
	"smartstudy_backend/internals/features/assessments/importer"
	"smartstudy_backend/internals/features/assessments/quizzes/dto"
	"smartstudy_backend/internals/features/assessments/quizzes/model"
	quizService "smartstudy_backend/internals/features/assessments/quizzes/service"
	helper "smartstudy_backend/internals/helpers"
)

type QuizController struct {
	Svc *quizService.QuizService
}

func NewQuizController(svc *quizService.QuizService) *QuizController {
	return &QuizController{Svc: svc}
}

func optionalUUIDQuery(c *fiber.Ctx, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, key+" is not a valid uuid")
	}
	return &id, nil
}

// 🟢 GET /api/u/quizzes?chapter_id=&subject_id=
func (ctl *QuizController) List(c *fiber.Ctx) error {
	chapterID, err := optionalUUIDQuery(c, "chapter_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	subjectID, err := optionalUUIDQuery(c, "subject_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := ctl.Svc.List(c.UserContext(), quizService.ListFilter{
		ChapterID:  chapterID,
		SubjectID:  subjectID,
		OnlyActive: !constants.IsStaff(helper.GetRole(c)),
	}, p.Offset, p.Limit)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", rows, &pg)
}

// 🟢 GET /api/u/quizzes/:id (kunci jawaban hanya untuk staff)
func (ctl *QuizController) Detail(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	staff := constants.IsStaff(helper.GetRole(c))
	quiz, err := ctl.Svc.Get(c.UserContext(), id)
	if err != nil {
		return grading.WriteError(c, err)
	}
	if !quiz.IsActive && !staff {
		return helper.JsonError(c, fiber.StatusNotFound, "quiz not found")
	}
	questions, err := ctl.Svc.Questions(c.UserContext(), id)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.QuizDetailResponse{
		QuizModel:     *quiz,
		QuestionCount: len(questions),
		Questions:     dto.ToQuestionList(questions, staff),
	})
}

// 🟢 POST /api/t/quizzes
func (ctl *QuizController) Create(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.QuizRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if errs := helper.ValidateStruct(&req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}
	quiz := req.ToModel(userID)
	if err := ctl.Svc.Create(c.UserContext(), quiz); err != nil {
		return helper.WriteDBError(c, err)
	}
	return helper.JsonCreated(c, "quiz created", quiz)
}

// 🟡 PATCH /api/t/quizzes/:id
func (ctl *QuizController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.QuizUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if errs := helper.ValidateStruct(&req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}
	quiz, err := ctl.Svc.Update(c.UserContext(), id, req.ToUpdates())
	if err != nil {
		return grading.WriteError(c, err)
	}
	return helper.JsonUpdated(c, "quiz updated", quiz)
}

// 🔴 DELETE /api/t/quizzes/:id
func (ctl *QuizController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if err := ctl.Svc.Delete(c.UserContext(), id); err != nil {
		return grading.WriteError(c, err)
	}
	return helper.JsonDeleted(c, "quiz deleted", fiber.Map{"id": id})
}

/* ===================== QUESTIONS ===================== */

// 🟢 POST /api/t/quizzes/:id/questions
func (ctl *QuizController) AddQuestion(c *fiber.Ctx) error {
	quizID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if errs := helper.ValidateStruct(&req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}
	q := req.ToModel(quizID)
	if err := ctl.Svc.AddQuestions(c.UserContext(), quizID, []*model.QuizQuestionModel{q}); err != nil {
		return grading.WriteError(c, err)
	}
	return helper.JsonCreated(c, "question added", dto.ToQuestionFull(*q))
}

// 🟡 PUT /api/t/quizzes/:id/questions/:questionId
func (ctl *QuizController) UpdateQuestion(c *fiber.Ctx) error {
	quizID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	questionID, err := helper.ParseUUIDParam(c, "questionId")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if errs := helper.ValidateStruct(&req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}
	q := req.ToModel(quizID)
	if err := ctl.Svc.UpdateQuestion(c.UserContext(), quizID, questionID, q); err != nil {
		return grading.WriteError(c, err)
	}
	q.ID = questionID
	return helper.JsonUpdated(c, "question updated", dto.ToQuestionFull(*q))
}

// 🔴 DELETE /api/t/quizzes/:id/questions/:questionId
func (ctl *QuizController) DeleteQuestion(c *fiber.Ctx) error {
	quizID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	questionID, err := helper.ParseUUIDParam(c, "questionId")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if err := ctl.Svc.DeleteQuestion(c.UserContext(), quizID, questionID); err != nil {
		return grading.WriteError(c, err)
	}
	return helper.JsonDeleted(c, "question deleted", fiber.Map{"id": questionID})
}

// 🟢 POST /api/t/quizzes/:id/questions/import (multipart: file)
func (ctl *QuizController) ImportQuestions(c *fiber.Ctx) error {
	quizID, err := helper.ParseUUIDParam(c, "id")
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

	res, err := importer.Parse(f, false)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	qs := make([]*model.QuizQuestionModel, 0, len(res.Rows))
	for i, r := range res.Rows {
		qs = append(qs, &model.QuizQuestionModel{
			QuestionText:  r.Question,
			Options:       model.EncodeOptions(r.Options),
			CorrectAnswer: r.CorrectAnswer,
			Explanation:   r.Explanation,
			Marks:         r.Marks,
			OrderIndex:    i + 1,
		})
	}
	if len(qs) > 0 {
		if err := ctl.Svc.AddQuestions(c.UserContext(), quizID, qs); err != nil {
			return grading.WriteError(c, err)
		}
	}
	return helper.JsonCreated(c, "questions imported", fiber.Map{
		"imported": len(qs),
		"invalid":  res.Invalid,
	})
}

/* ===================== ATTEMPTS ===================== */

// 🟢 POST /api/u/quizzes/:id/attempts
func (ctl *QuizController) StartAttempt(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	quizID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	att, questions, resumed, err := ctl.Svc.StartAttempt(c.UserContext(), userID, quizID)
	if err != nil {
		return grading.WriteError(c, err)
	}
	quiz, err := ctl.Svc.Get(c.UserContext(), quizID)
	if err != nil {
		return grading.WriteError(c, err)
	}
	pub := make([]dto.QuestionPublic, 0, len(questions))
	for _, q := range questions {
		pub = append(pub, dto.ToQuestionPublic(q))
	}
	body := dto.AttemptStartResponse{Attempt: *att, Quiz: *quiz, Questions: pub, Resumed: resumed}
	if resumed {
		return helper.JsonOK(c, "attempt resumed", body)
	}
	return helper.JsonCreated(c, "attempt started", body)
}

// 🟢 GET /api/u/quizzes/:id/attempts/active
func (ctl *QuizController) ActiveAttempt(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	quizID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	att, err := ctl.Svc.ActiveAttempt(c.UserContext(), userID, quizID)
	if err != nil {
		return grading.WriteError(c, err)
	}
	return helper.JsonOK(c, "ok", att)
}

// 🟡 PATCH /api/u/quiz-attempts/:id/answers
func (ctl *QuizController) SaveAnswer(c *fiber.Ctx) error {
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
	// is_correct tidak dibocorkan sebelum submit
	return helper.JsonUpdated(c, "answer saved", fiber.Map{
		"question_id":     ans.QuestionID,
		"selected_answer": ans.SelectedAnswer,
		"answered_at":     ans.AnsweredAt,
	})
}

// 🟢 POST /api/u/quiz-attempts/:id/submit
func (ctl *QuizController) Submit(c *fiber.Ctx) error {
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

// 🟢 GET /api/u/quiz-attempts/:id
func (ctl *QuizController) Result(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	attemptID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	att, quiz, rows, err := ctl.Svc.Result(c.UserContext(), userID, attemptID)
	if err != nil {
		return grading.WriteError(c, err)
	}
	done := att.IsCompleted()
	answers := make([]dto.AnswerResult, 0, len(rows))
	for _, r := range rows {
		item := dto.AnswerResult{
			QuestionID:     r.Question.ID,
			QuestionText:   r.Question.QuestionText,
			Options:        r.Question.OptionMap(),
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
	return helper.JsonOK(c, "ok", dto.AttemptResultResponse{Attempt: *att, Quiz: *quiz, Answers: answers})
}

// 🟢 GET /api/u/quiz-attempts?quiz_id=
func (ctl *QuizController) MyAttempts(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	quizID, err := optionalUUIDQuery(c, "quiz_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, stats, err := ctl.Svc.MyAttempts(c.UserContext(), userID, quizID, p.Offset, p.Limit)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	items := make([]dto.AttemptListItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.AttemptListItem{QuizAttemptModel: r.QuizAttemptModel, QuizTitle: r.QuizTitle})
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", dto.MyAttemptsResponse{Attempts: items, Stats: stats}, &pg)
}
