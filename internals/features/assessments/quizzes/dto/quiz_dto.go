package dto

import (
	"github.com/google/uuid"

	"smartstudy_backend/internals/features/assessments/grading"
	"smartstudy_backend/internals/features/assessments/quizzes/model"
)

/* ===================== REQUEST ===================== */

type QuizRequest struct {
	ChapterID       uuid.UUID `json:"chapter_id" validate:"required"`
	Title           string    `json:"title" validate:"required,notblank,max=200"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"duration_minutes" validate:"min=0,max=600"`
	IsActive        *bool     `json:"is_active"`
}

func (r *QuizRequest) ToModel(createdBy uuid.UUID) *model.QuizModel {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &model.QuizModel{
		ChapterID:       r.ChapterID,
		Title:           r.Title,
		Description:     r.Description,
		DurationMinutes: r.DurationMinutes,
		IsActive:        active,
		CreatedBy:       &createdBy,
	}
}

type QuizUpdateRequest struct {
	Title           *string `json:"title" validate:"omitempty,notblank,max=200"`
	Description     *string `json:"description"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,min=0,max=600"`
	IsActive        *bool   `json:"is_active"`
}

func (r *QuizUpdateRequest) ToUpdates() map[string]any {
	m := map[string]any{}
	if r.Title != nil {
		m["title"] = *r.Title
	}
	if r.Description != nil {
		m["description"] = *r.Description
	}
	if r.DurationMinutes != nil {
		m["duration_minutes"] = *r.DurationMinutes
	}
	if r.IsActive != nil {
		m["is_active"] = *r.IsActive
	}
	return m
}

type QuestionRequest struct {
	QuestionText  string            `json:"question_text" validate:"required,notblank"`
	Options       map[string]string `json:"options" validate:"required,len=4,dive,keys,oneof=A B C D,endkeys,required"`
	CorrectAnswer string            `json:"correct_answer" validate:"required,oneof=A B C D"`
	Explanation   string            `json:"explanation"`
	Marks         int               `json:"marks" validate:"omitempty,min=1,max=100"`
	OrderIndex    int               `json:"order_index" validate:"min=0"`
}

func (r *QuestionRequest) ToModel(quizID uuid.UUID) *model.QuizQuestionModel {
	marks := r.Marks
	if marks == 0 {
		marks = 1
	}
	return &model.QuizQuestionModel{
		QuizID:        quizID,
		QuestionText:  r.QuestionText,
		Options:       model.EncodeOptions(r.Options),
		CorrectAnswer: r.CorrectAnswer,
		Explanation:   r.Explanation,
		Marks:         marks,
		OrderIndex:    r.OrderIndex,
	}
}

type SubmitRequest struct {
	Answers []grading.Response `json:"answers" validate:"dive"`
}

/* ===================== RESPONSE ===================== */

// QuestionPublic: tanpa kunci jawaban
type QuestionPublic struct {
	ID           uuid.UUID         `json:"id"`
	QuestionText string            `json:"question_text"`
	Options      map[string]string `json:"options"`
	Marks        int               `json:"marks"`
	OrderIndex   int               `json:"order_index"`
}

type QuestionFull struct {
	QuestionPublic
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

func ToQuestionPublic(q model.QuizQuestionModel) QuestionPublic {
	return QuestionPublic{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		Options:      q.OptionMap(),
		Marks:        q.Marks,
		OrderIndex:   q.OrderIndex,
	}
}

func ToQuestionFull(q model.QuizQuestionModel) QuestionFull {
	return QuestionFull{QuestionPublic: ToQuestionPublic(q), CorrectAnswer: q.CorrectAnswer, Explanation: q.Explanation}
}

func ToQuestionList(rows []model.QuizQuestionModel, withKey bool) any {
	if withKey {
		out := make([]QuestionFull, 0, len(rows))
		for _, q := range rows {
			out = append(out, ToQuestionFull(q))
		}
		return out
	}
	out := make([]QuestionPublic, 0, len(rows))
	for _, q := range rows {
		out = append(out, ToQuestionPublic(q))
	}
	return out
}

type QuizDetailResponse struct {
	model.QuizModel
	QuestionCount int `json:"question_count"`
	Questions     any `json:"questions"`
}

type AttemptStartResponse struct {
	Attempt   model.QuizAttemptModel `json:"attempt"`
	Quiz      model.QuizModel        `json:"quiz"`
	Questions []QuestionPublic       `json:"questions"`
	Resumed   bool                   `json:"resumed"`
}

type AnswerResult struct {
	QuestionID     uuid.UUID         `json:"question_id"`
	QuestionText   string            `json:"question_text"`
	Options        map[string]string `json:"options"`
	SelectedAnswer string            `json:"selected_answer"`
	CorrectAnswer  string            `json:"correct_answer,omitempty"`
	IsCorrect      bool              `json:"is_correct"`
	Marks          int               `json:"marks"`
	MarksObtained  int               `json:"marks_obtained"`
	Explanation    string            `json:"explanation,omitempty"`
}

type AttemptResultResponse struct {
	Attempt model.QuizAttemptModel `json:"attempt"`
	Quiz    model.QuizModel        `json:"quiz"`
	Answers []AnswerResult         `json:"answers"`
}

type AttemptListItem struct {
	model.QuizAttemptModel
	QuizTitle string `json:"quiz_title"`
}

type MyAttemptsResponse struct {
	Attempts []AttemptListItem `json:"attempts"`
	Stats    grading.Summary   `json:"stats"`
}
