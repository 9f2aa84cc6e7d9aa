package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"smartstudy_backend/internals/helpers/video"
)

type BatchLectureModel struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	BatchSubjectID  uuid.UUID `gorm:"column:batch_subject_id;type:uuid;not null;uniqueIndex:uq_batch_lecture_day" json:"batch_subject_id"`
	TopicName       string    `gorm:"column:topic_name;size:200;not null" json:"topic_name"`
	Description     string    `gorm:"column:description;type:text" json:"description"`
	DayNumber       int       `gorm:"column:day_number;not null;uniqueIndex:uq_batch_lecture_day" json:"day_number"`
	VideoType       string    `gorm:"column:video_type;size:20;not null" json:"video_type"`
	VideoURL        string    `gorm:"column:video_url;type:text" json:"video_url"`
	VideoFile       string    `gorm:"column:video_file;type:text" json:"video_file"`
	PDFFile         string    `gorm:"column:pdf_file;type:text" json:"pdf_file"`
	DurationMinutes int       `gorm:"column:duration_minutes;not null" json:"duration_minutes"`
	IsActive        bool      `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (BatchLectureModel) TableName() string { return "batch_lectures" }

func (m *BatchLectureModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// EmbedURL: url player (youtube/vimeo/drive); upload pakai file OSS-nya.
func (m BatchLectureModel) EmbedURL() string {
	if m.VideoType == video.TypeUpload {
		return m.VideoFile
	}
	return video.EmbedURL(m.VideoType, m.VideoURL)
}
