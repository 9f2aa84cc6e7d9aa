package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DPPAttemptModel struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index:idx_dpp_attempt_user_dpp" json:"user_id"`
	DPPID            uuid.UUID  `gorm:"column:dpp_id;type:uuid;not null;index:idx_dpp_attempt_user_dpp" json:"dpp_id"`
	StartedAt        time.Time  `gorm:"column:started_at;not null" json:"started_at"`
	CompletedAt      *time.Time `gorm:"column:completed_at" json:"completed_at"`
	Score            int        `gorm:"column:score;not null" json:"score"`
	TotalMarks       int        `gorm:"column:total_marks;not null" json:"total_marks"`
	Percentage       float64    `gorm:"column:percentage;not null" json:"percentage"`
	TimeTakenMinutes int        `gorm:"column:time_taken_minutes;not null" json:"time_taken_minutes"`
}

func (DPPAttemptModel) TableName() string { return "dpp_attempts" }

func (m *DPPAttemptModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.StartedAt.IsZero() {
		m.StartedAt = time.Now().UTC()
	}
	return nil
}

func (m DPPAttemptModel) IsCompleted() bool { return m.CompletedAt != nil }

type DPPAnswerModel struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	AttemptID      uuid.UUID  `gorm:"column:attempt_id;type:uuid;not null;uniqueIndex:uq_dpp_answer_attempt_question" json:"attempt_id"`
	QuestionID     uuid.UUID  `gorm:"column:question_id;type:uuid;not null;uniqueIndex:uq_dpp_answer_attempt_question" json:"question_id"`
	SelectedAnswer string     `gorm:"column:selected_answer;size:100" json:"selected_answer"`
	IsCorrect      bool       `gorm:"column:is_correct;not null" json:"is_correct"`
	MarksObtained  int        `gorm:"column:marks_obtained;not null" json:"marks_obtained"`
	AnsweredAt     *time.Time `gorm:"column:answered_at" json:"answered_at,omitempty"`
}

func (DPPAnswerModel) TableName() string { return "dpp_answers" }

func (m *DPPAnswerModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
