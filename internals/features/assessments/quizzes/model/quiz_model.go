package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuizModel struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ChapterID       uuid.UUID  `gorm:"column:chapter_id;type:uuid;not null;index" json:"chapter_id"`
	Title           string     `gorm:"column:title;size:200;not null" json:"title"`
	Description     string     `gorm:"column:description;type:text" json:"description"`
	DurationMinutes int        `gorm:"column:duration_minutes;not null" json:"duration_minutes"`
	TotalMarks      int        `gorm:"column:total_marks;not null" json:"total_marks"`
	IsActive        bool       `gorm:"column:is_active;not null" json:"is_active"`
	CreatedBy       *uuid.UUID `gorm:"column:created_by;type:uuid" json:"created_by,omitempty"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (QuizModel) TableName() string { return "quizzes" }

func (m *QuizModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// QuizQuestionModel: options disimpan sebagai objek {"A": "...", "B": "...", ...}
type QuizQuestionModel struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	QuizID        uuid.UUID      `gorm:"column:quiz_id;type:uuid;not null;index" json:"quiz_id"`
	QuestionText  string         `gorm:"column:question_text;type:text;not null" json:"question_text"`
	Options       datatypes.JSON `gorm:"column:options" json:"options"`
	CorrectAnswer string         `gorm:"column:correct_answer;size:1;not null" json:"correct_answer"`
	Explanation   string         `gorm:"column:explanation;type:text" json:"explanation"`
	Marks         int            `gorm:"column:marks;not null" json:"marks"`
	OrderIndex    int            `gorm:"column:order_index;not null" json:"order_index"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (QuizQuestionModel) TableName() string { return "quiz_questions" }

func (m *QuizQuestionModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Marks == 0 {
		m.Marks = 1
	}
	return nil
}

// OptionMap decode options; map kosong kalau rusak.
func (m QuizQuestionModel) OptionMap() map[string]string {
	out := map[string]string{}
	if len(m.Options) > 0 {
		_ = json.Unmarshal(m.Options, &out)
	}
	return out
}

func EncodeOptions(opts map[string]string) datatypes.JSON {
	b, _ := json.Marshal(opts)
	return datatypes.JSON(b)
}
