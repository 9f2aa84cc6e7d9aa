package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubjectModel: mata pelajaran per (class_level, stream)
type SubjectModel struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;size:100;not null;uniqueIndex:uq_subject_name_level_stream" json:"name"`
	Slug        string    `gorm:"column:slug;size:120;not null;uniqueIndex" json:"slug"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	ClassLevel  string    `gorm:"column:class_level;size:10;not null;uniqueIndex:uq_subject_name_level_stream" json:"class_level"`
	Stream      string    `gorm:"column:stream;size:20;not null;uniqueIndex:uq_subject_name_level_stream" json:"stream"`
	IsActive    bool      `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (SubjectModel) TableName() string { return "subjects" }

func (m *SubjectModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type ChapterModel struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SubjectID   uuid.UUID `gorm:"column:subject_id;type:uuid;not null;uniqueIndex:uq_chapter_subject_order" json:"subject_id"`
	Name        string    `gorm:"column:name;size:200;not null" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	OrderIndex  int       `gorm:"column:order_index;not null;uniqueIndex:uq_chapter_subject_order" json:"order_index"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ChapterModel) TableName() string { return "chapters" }

func (m *ChapterModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
