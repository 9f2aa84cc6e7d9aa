package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"smartstudy_backend/internals/features/assessments/practice/model"
)

const DateLayout = "2006-01-02"

type ProblemRequest struct {
	ChapterID    uuid.UUID `json:"chapter_id" validate:"required"`
	Title        string    `json:"title" validate:"required,notblank,max=200"`
	QuestionText string    `json:"question_text" validate:"required,notblank"`
	Difficulty   string    `json:"difficulty" validate:"required,oneof=easy medium hard"`
	DateAssigned string    `json:"date_assigned" validate:"omitempty,datetime=2006-01-02"`
	Answer       *string   `json:"answer"`
	Explanation  *string   `json:"explanation"`
}

// ToModel: date_assigned kosong → hari ini (UTC)
func (r *ProblemRequest) ToModel(today time.Time) *model.DailyPracticeProblemModel {
	d := today
	if r.DateAssigned != "" {
		d, _ = time.Parse(DateLayout, r.DateAssigned)
	}
	return &model.DailyPracticeProblemModel{
		ChapterID:    r.ChapterID,
		Title:        strings.TrimSpace(r.Title),
		QuestionText: r.QuestionText,
		Difficulty:   r.Difficulty,
		DateAssigned: TruncateDay(d),
		Answer:       trimPtr(r.Answer),
		Explanation:  r.Explanation,
	}
}

type ProblemUpdateRequest struct {
	Title        *string `json:"title" validate:"omitempty,notblank,max=200"`
	QuestionText *string `json:"question_text" validate:"omitempty,notblank"`
	Difficulty   *string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	DateAssigned *string `json:"date_assigned" validate:"omitempty,datetime=2006-01-02"`
	Answer       *string `json:"answer"`
	Explanation  *string `json:"explanation"`
}

func (r *ProblemUpdateRequest) ToUpdates() map[string]any {
	m := map[string]any{}
	if r.Title != nil {
		m["title"] = strings.TrimSpace(*r.Title)
	}
	if r.QuestionText != nil {
		m["question_text"] = *r.QuestionText
	}
	if r.Difficulty != nil {
		m["difficulty"] = *r.Difficulty
	}
	if r.DateAssigned != nil {
		d, _ := time.Parse(DateLayout, *r.DateAssigned)
		m["date_assigned"] = TruncateDay(d)
	}
	if r.Answer != nil {
		m["answer"] = trimPtr(r.Answer)
	}
	if r.Explanation != nil {
		m["explanation"] = *r.Explanation
	}
	return m
}

type CheckRequest struct {
	Answer string `json:"answer" validate:"required,notblank,max=500"`
}

type CheckResponse struct {
	Correct     bool    `json:"correct"`
	Answer      string  `json:"answer"`
	Explanation *string `json:"explanation,omitempty"`
}

// ProblemPublic: tanpa kunci jawaban (dibuka lewat endpoint check)
type ProblemPublic struct {
	ID           uuid.UUID `json:"id"`
	ChapterID    uuid.UUID `json:"chapter_id"`
	Title        string    `json:"title"`
	QuestionText string    `json:"question_text"`
	Difficulty   string    `json:"difficulty"`
	DateAssigned string    `json:"date_assigned"`
	HasAnswer    bool      `json:"has_answer"`
}

func ToProblemPublic(m model.DailyPracticeProblemModel) ProblemPublic {
	return ProblemPublic{
		ID:           m.ID,
		ChapterID:    m.ChapterID,
		Title:        m.Title,
		QuestionText: m.QuestionText,
		Difficulty:   m.Difficulty,
		DateAssigned: m.DateAssigned.Format(DateLayout),
		HasAnswer:    m.Answer != nil && *m.Answer != "",
	}
}

func TruncateDay(t time.Time) time.Time {
	y, mo, d := t.UTC().Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
