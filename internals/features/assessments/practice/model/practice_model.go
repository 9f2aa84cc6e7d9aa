package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// DailyPracticeProblemModel: soal harian per chapter, jawabannya opsional
type DailyPracticeProblemModel struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ChapterID    uuid.UUID `gorm:"column:chapter_id;type:uuid;not null;index" json:"chapter_id"`
	Title        string    `gorm:"column:title;size:200;not null" json:"title"`
	QuestionText string    `gorm:"column:question_text;type:text;not null" json:"question_text"`
	Difficulty   string    `gorm:"column:difficulty;size:10;not null" json:"difficulty"`
	DateAssigned time.Time `gorm:"column:date_assigned;type:date;not null;index" json:"date_assigned"`
	Answer       *string   `gorm:"column:answer;type:text" json:"answer,omitempty"`
	Explanation  *string   `gorm:"column:explanation;type:text" json:"explanation,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (DailyPracticeProblemModel) TableName() string { return "daily_practice_problems" }

func (m *DailyPracticeProblemModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
