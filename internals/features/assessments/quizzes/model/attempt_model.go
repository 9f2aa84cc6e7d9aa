package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuizAttemptModel struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index:idx_quiz_attempt_user_quiz" json:"user_id"`
	QuizID           uuid.UUID  `gorm:"column:quiz_id;type:uuid;not null;index:idx_quiz_attempt_user_quiz" json:"quiz_id"`
	StartedAt        time.Time  `gorm:"column:started_at;not null" json:"started_at"`
	CompletedAt      *time.Time `gorm:"column:completed_at" json:"completed_at"`
	Score            int        `gorm:"column:score;not null" json:"score"`
	TotalMarks       int        `gorm:"column:total_marks;not null" json:"total_marks"`
	Percentage       float64    `gorm:"column:percentage;not null" json:"percentage"`
	TimeTakenMinutes int        `gorm:"column:time_taken_minutes;not null" json:"time_taken_minutes"`
}

func (QuizAttemptModel) TableName() string { return "quiz_attempts" }

func (m *QuizAttemptModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.StartedAt.IsZero() {
		m.StartedAt = time.Now().UTC()
	}
	return nil
}

func (m QuizAttemptModel) IsCompleted() bool { return m.CompletedAt != nil }

type QuizAnswerModel struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	AttemptID      uuid.UUID  `gorm:"column:attempt_id;type:uuid;not null;uniqueIndex:uq_quiz_answer_attempt_question" json:"attempt_id"`
	QuestionID     uuid.UUID  `gorm:"column:question_id;type:uuid;not null;uniqueIndex:uq_quiz_answer_attempt_question" json:"question_id"`
	SelectedAnswer string     `gorm:"column:selected_answer;size:1" json:"selected_answer"`
	IsCorrect      bool       `gorm:"column:is_correct;not null" json:"is_correct"`
	MarksObtained  int        `gorm:"column:marks_obtained;not null" json:"marks_obtained"`
	AnsweredAt     *time.Time `gorm:"column:answered_at" json:"answered_at,omitempty"`
}

func (QuizAnswerModel) TableName() string { return "quiz_answers" }

func (m *QuizAnswerModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
