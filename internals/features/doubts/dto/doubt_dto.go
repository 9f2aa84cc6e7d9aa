package dto

import (
	"strings"

	"github.com/google/uuid"

	"smartstudy_backend/internals/features/doubts/model"
)

// multipart: title, description, subject_id?, batch_subject_id?, image?
type CreateDoubtRequest struct {
	Title          string `form:"title" json:"title" validate:"required,notblank,max=200"`
	Description    string `form:"description" json:"description" validate:"required,notblank"`
	SubjectID      string `form:"subject_id" json:"subject_id" validate:"omitempty,uuid"`
	BatchSubjectID string `form:"batch_subject_id" json:"batch_subject_id" validate:"omitempty,uuid"`
}

func optionalUUID(s string) *uuid.UUID {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	id := uuid.MustParse(strings.TrimSpace(s))
	return &id
}

func (r *CreateDoubtRequest) ToModel(studentID uuid.UUID) *model.DoubtModel {
	return &model.DoubtModel{
		StudentID:      studentID,
		SubjectID:      optionalUUID(r.SubjectID),
		BatchSubjectID: optionalUUID(r.BatchSubjectID),
		Title:          strings.TrimSpace(r.Title),
		Description:    strings.TrimSpace(r.Description),
	}
}

type UpdateDoubtRequest struct {
	Title       *string `form:"title" json:"title" validate:"omitempty,notblank,max=200"`
	Description *string `form:"description" json:"description" validate:"omitempty,notblank"`
}

func (r *UpdateDoubtRequest) ToUpdates() map[string]any {
	m := map[string]any{}
	if r.Title != nil {
		m["title"] = strings.TrimSpace(*r.Title)
	}
	if r.Description != nil {
		m["description"] = strings.TrimSpace(*r.Description)
	}
	return m
}

type ResolveRequest struct {
	Resolution string `json:"resolution" validate:"required,notblank"`
}
