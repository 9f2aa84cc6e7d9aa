package dto

import (
	"github.com/google/uuid"

	"smartstudy_backend/internals/features/assessments/dpps/model"
	"smartstudy_backend/internals/features/assessments/grading"
)

/* ===================== REQUEST ===================== */

type DPPRequest struct {
	LectureID        uuid.UUID `json:"lecture_id" validate:"required"`
	Title            string    `json:"title" validate:"required,notblank,max=200"`
	Description      string    `json:"description"`
	TimeLimitMinutes int       `json:"time_limit_minutes" validate:"omitempty,min=1,max=600"`
	IsActive         *bool     `json:"is_active"`
}

func (r *DPPRequest) ToModel() *model.DPPModel {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &model.DPPModel{
		LectureID:        r.LectureID,
		Title:            r.Title,
		Description:      r.Description,
		TimeLimitMinutes: r.TimeLimitMinutes,
		IsActive:         active,
	}
}

type DPPUpdateRequest struct {
	Title            *string `json:"title" validate:"omitempty,notblank,max=200"`
	Description      *string `json:"description"`
	TimeLimitMinutes *int    `json:"time_limit_minutes" validate:"omitempty,min=1,max=600"`
	IsActive         *bool   `json:"is_active"`
}

func (r *DPPUpdateRequest) ToUpdates() map[string]any {
	m := map[string]any{}
	if r.Title != nil {
		m["title"] = *r.Title
	}
	if r.Description != nil {
		m["description"] = *r.Description
	}
	if r.TimeLimitMinutes != nil {
		m["time_limit_minutes"] = *r.TimeLimitMinutes
	}
	if r.IsActive != nil {
		m["is_active"] = *r.IsActive
	}
	return m
}

type QuestionRequest struct {
	QuestionType  string            `json:"question_type" validate:"required,oneof=mcq numerical true_false"`
	QuestionText  string            `json:"question_text" validate:"required,notblank"`
	ImageURL      string            `json:"image_url" validate:"omitempty,url"`
	Options       map[string]string `json:"options" validate:"required_if=QuestionType mcq,omitempty,len=4,dive,keys,oneof=A B C D,endkeys,required"`
	CorrectAnswer string            `json:"correct_answer" validate:"required,max=100"`
	Explanation   string            `json:"explanation"`
	Marks         int               `json:"marks" validate:"omitempty,min=1,max=100"`
	OrderIndex    int               `json:"order_index" validate:"min=0"`
}

// Check: aturan yang bergantung pada tipe soal (di luar tag validator).
func (r *QuestionRequest) Check() map[string]string {
	if !grading.ValidAnswer(r.QuestionType, r.CorrectAnswer) {
		return map[string]string{"correct_answer": "correct_answer is not valid for question_type " + r.QuestionType}
	}
	return nil
}

func (r *QuestionRequest) ToModel(dppID uuid.UUID) *model.DPPQuestionModel {
	marks := r.Marks
	if marks == 0 {
		marks = 1
	}
	opts := r.Options
	if r.QuestionType != grading.QuestionMCQ {
		opts = nil
	}
	return &model.DPPQuestionModel{
		DPPID:         dppID,
		QuestionType:  r.QuestionType,
		QuestionText:  r.QuestionText,
		ImageURL:      r.ImageURL,
		Options:       model.EncodeOptions(opts),
		CorrectAnswer: grading.NormalizeAnswer(r.CorrectAnswer),
		Explanation:   r.Explanation,
		Marks:         marks,
		OrderIndex:    r.OrderIndex,
	}
}

// SolutionRequest: multipart form (solution_pdf & video_file opsional sebagai file)
type SolutionRequest struct {
	VideoType string `form:"video_type" json:"video_type" validate:"omitempty,oneof=youtube vimeo drive upload url"`
	VideoURL  string `form:"video_url" json:"video_url" validate:"omitempty,url"`
}

type SubmitRequest struct {
	Answers []grading.Response `json:"answers" validate:"dive"`
}

/* ===================== RESPONSE ===================== */

type QuestionPublic struct {
	ID           uuid.UUID         `json:"id"`
	QuestionType string            `json:"question_type"`
	QuestionText string            `json:"question_text"`
	ImageURL     string            `json:"image_url,omitempty"`
	Options      map[string]string `json:"options,omitempty"`
	Marks        int               `json:"marks"`
	OrderIndex   int               `json:"order_index"`
}

type QuestionFull struct {
	QuestionPublic
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

func ToQuestionPublic(q model.DPPQuestionModel) QuestionPublic {
	var opts map[string]string
	if q.QuestionType == grading.QuestionMCQ {
		opts = q.OptionMap()
	}
	return QuestionPublic{
		ID:           q.ID,
		QuestionType: q.QuestionType,
		QuestionText: q.QuestionText,
		ImageURL:     q.ImageURL,
		Options:      opts,
		Marks:        q.Marks,
		OrderIndex:   q.OrderIndex,
	}
}

func ToQuestionFull(q model.DPPQuestionModel) QuestionFull {
	return QuestionFull{QuestionPublic: ToQuestionPublic(q), CorrectAnswer: q.CorrectAnswer, Explanation: q.Explanation}
}

func ToQuestionList(rows []model.DPPQuestionModel, withKey bool) any {
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

type SolutionResponse struct {
	model.DPPSolutionModel
	EmbedURL string `json:"embed_url"`
}

func ToSolutionResponse(s *model.DPPSolutionModel) *SolutionResponse {
	if s == nil {
		return nil
	}
	return &SolutionResponse{DPPSolutionModel: *s, EmbedURL: s.EmbedURL()}
}

type DPPDetailResponse struct {
	model.DPPModel
	QuestionCount int               `json:"question_count"`
	Questions     any               `json:"questions"`
	Solution      *SolutionResponse `json:"solution"`
	// false → solusi disembunyikan sampai ada attempt selesai
	SolutionUnlocked bool `json:"solution_unlocked"`
}

type AttemptStartResponse struct {
	Attempt   model.DPPAttemptModel `json:"attempt"`
	DPP       model.DPPModel        `json:"dpp"`
	Questions []QuestionPublic      `json:"questions"`
	Resumed   bool                  `json:"resumed"`
}

type AnswerResult struct {
	QuestionID     uuid.UUID         `json:"question_id"`
	QuestionType   string            `json:"question_type"`
	QuestionText   string            `json:"question_text"`
	Options        map[string]string `json:"options,omitempty"`
	SelectedAnswer string            `json:"selected_answer"`
	CorrectAnswer  string            `json:"correct_answer,omitempty"`
	IsCorrect      bool              `json:"is_correct"`
	Marks          int               `json:"marks"`
	MarksObtained  int               `json:"marks_obtained"`
	Explanation    string            `json:"explanation,omitempty"`
}

type AttemptResultResponse struct {
	Attempt  model.DPPAttemptModel `json:"attempt"`
	DPP      model.DPPModel        `json:"dpp"`
	Answers  []AnswerResult        `json:"answers"`
	Solution *SolutionResponse     `json:"solution,omitempty"`
}

type AttemptListItem struct {
	model.DPPAttemptModel
	DPPTitle string `json:"dpp_title"`
}

type MyAttemptsResponse struct {
	Attempts []AttemptListItem `json:"attempts"`
	Stats    grading.Summary   `json:"stats"`
}
