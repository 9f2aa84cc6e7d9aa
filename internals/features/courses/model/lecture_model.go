package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseLectureModel struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ChapterID       uuid.UUID `gorm:"column:chapter_id;type:uuid;not null;index" json:"chapter_id"`
	Title           string    `gorm:"column:title;size:200;not null" json:"title"`
	Description     string    `gorm:"column:description;type:text" json:"description"`
	VideoURL        string    `gorm:"column:video_url;type:text" json:"video_url"`
	DurationMinutes int       `gorm:"column:duration_minutes;not null" json:"duration_minutes"`
	OrderIndex      int       `gorm:"column:order_index;not null" json:"order_index"`
	IsFree          bool      `gorm:"column:is_free;not null" json:"is_free"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (CourseLectureModel) TableName() string { return "course_lectures" }

func (m *CourseLectureModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type LecturePDFModel struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	LectureID uuid.UUID `gorm:"column:lecture_id;type:uuid;not null;index" json:"lecture_id"`
	Title     string    `gorm:"column:title;size:200;not null" json:"title"`
	FileURL   string    `gorm:"column:file_url;type:text;not null" json:"file_url"`
	FileSize  int64     `gorm:"column:file_size;not null" json:"file_size"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (LecturePDFModel) TableName() string { return "lecture_pdfs" }

func (m *LecturePDFModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// LectureProgressModel: satu baris per (user, lecture), di-upsert
type LectureProgressModel struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_progress_user_lecture" json:"user_id"`
	LectureID      uuid.UUID `gorm:"column:lecture_id;type:uuid;not null;uniqueIndex:uq_progress_user_lecture" json:"lecture_id"`
	IsCompleted    bool      `gorm:"column:is_completed;not null" json:"is_completed"`
	WatchedSeconds int       `gorm:"column:watched_seconds;not null" json:"watched_seconds"`
	LastWatched    time.Time `gorm:"column:last_watched;not null" json:"last_watched"`
}

func (LectureProgressModel) TableName() string { return "lecture_progress" }

func (m *LectureProgressModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
