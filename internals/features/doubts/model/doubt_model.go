package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusSubmitted  = "submitted"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
)

type DoubtModel struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	StudentID      uuid.UUID  `gorm:"column:student_id;type:uuid;not null;index" json:"student_id"`
	SubjectID      *uuid.UUID `gorm:"column:subject_id;type:uuid" json:"subject_id,omitempty"`
	BatchSubjectID *uuid.UUID `gorm:"column:batch_subject_id;type:uuid" json:"batch_subject_id,omitempty"`
	Title          string     `gorm:"column:title;size:200;not null" json:"title"`
	Description    string     `gorm:"column:description;type:text;not null" json:"description"`
	ImageURL       string     `gorm:"column:image_url;type:text" json:"image_url,omitempty"`
	Status         string     `gorm:"column:status;size:20;not null;index" json:"status"`
	AssignedTo     *uuid.UUID `gorm:"column:assigned_to;type:uuid;index" json:"assigned_to,omitempty"`
	Resolution     string     `gorm:"column:resolution;type:text" json:"resolution,omitempty"`
	ResolvedBy     *uuid.UUID `gorm:"column:resolved_by;type:uuid" json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (DoubtModel) TableName() string { return "doubts" }

func (m *DoubtModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = StatusSubmitted
	}
	return nil
}

// CanTransition: submitted → in_progress → resolved (submitted → resolved juga boleh)
func CanTransition(from, to string) bool {
	switch from {
	case StatusSubmitted:
		return to == StatusInProgress || to == StatusResolved
	case StatusInProgress:
		return to == StatusResolved
	}
	return false
}
