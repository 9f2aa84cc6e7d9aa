package dto

import (
	"strings"

	"github.com/google/uuid"

	"smartstudy_backend/internals/features/courses/model"
	"smartstudy_backend/internals/features/courses/service"
)

/* ===================== SUBJECT ===================== */

type SubjectRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=100"`
	Description string `json:"description"`
	ClassLevel  string `json:"class_level" validate:"required,oneof=9th 10th 11th 12th"`
	Stream      string `json:"stream" validate:"required,oneof=Science NEET JEE"`
	IsActive    *bool  `json:"is_active"`
}

func (r *SubjectRequest) ToModel() *model.SubjectModel {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &model.SubjectModel{
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		ClassLevel:  r.ClassLevel,
		Stream:      r.Stream,
		IsActive:    active,
	}
}

type SubjectUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=100"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

func (r *SubjectUpdateRequest) ToUpdates() map[string]any {
	m := map[string]any{}
	if r.Name != nil {
		m["name"] = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		m["description"] = *r.Description
	}
	if r.IsActive != nil {
		m["is_active"] = *r.IsActive
	}
	return m
}

type SubjectDetailResponse struct {
	model.SubjectModel
	Chapters []service.ChapterTree `json:"chapters"`
}

/* ===================== CHAPTER ===================== */

type ChapterRequest struct {
	SubjectID   uuid.UUID `json:"subject_id" validate:"required"`
	Name        string    `json:"name" validate:"required,notblank,max=200"`
	Description string    `json:"description"`
	OrderIndex  int       `json:"order_index" validate:"min=0"`
}

func (r *ChapterRequest) ToModel() *model.ChapterModel {
	return &model.ChapterModel{
		SubjectID:   r.SubjectID,
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		OrderIndex:  r.OrderIndex,
	}
}

type ChapterUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=200"`
	Description *string `json:"description"`
	OrderIndex  *int    `json:"order_index" validate:"omitempty,min=0"`
}

func (r *ChapterUpdateRequest) ToUpdates() map[string]any {
	m := map[string]any{}
	if r.Name != nil {
		m["name"] = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		m["description"] = *r.Description
	}
	if r.OrderIndex != nil {
		m["order_index"] = *r.OrderIndex
	}
	return m
}

/* ===================== LECTURE ===================== */

type LectureRequest struct {
	ChapterID       uuid.UUID `json:"chapter_id" validate:"required"`
	Title           string    `json:"title" validate:"required,notblank,max=200"`
	Description     string    `json:"description"`
	VideoURL        string    `json:"video_url" validate:"omitempty,url"`
	DurationMinutes int       `json:"duration_minutes" validate:"min=0,max=600"`
	OrderIndex      int       `json:"order_index" validate:"min=0"`
	IsFree          bool      `json:"is_free"`
}

func (r *LectureRequest) ToModel() *model.CourseLectureModel {
	return &model.CourseLectureModel{
		ChapterID:       r.ChapterID,
		Title:           strings.TrimSpace(r.Title),
		Description:     r.Description,
		VideoURL:        strings.TrimSpace(r.VideoURL),
		DurationMinutes: r.DurationMinutes,
		OrderIndex:      r.OrderIndex,
		IsFree:          r.IsFree,
	}
}

type LectureUpdateRequest struct {
	Title           *string `json:"title" validate:"omitempty,notblank,max=200"`
	Description     *string `json:"description"`
	VideoURL        *string `json:"video_url" validate:"omitempty,url"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,min=0,max=600"`
	OrderIndex      *int    `json:"order_index" validate:"omitempty,min=0"`
	IsFree          *bool   `json:"is_free"`
}

func (r *LectureUpdateRequest) ToUpdates() map[string]any {
	m := map[string]any{}
	if r.Title != nil {
		m["title"] = strings.TrimSpace(*r.Title)
	}
	if r.Description != nil {
		m["description"] = *r.Description
	}
	if r.VideoURL != nil {
		m["video_url"] = strings.TrimSpace(*r.VideoURL)
	}
	if r.DurationMinutes != nil {
		m["duration_minutes"] = *r.DurationMinutes
	}
	if r.OrderIndex != nil {
		m["order_index"] = *r.OrderIndex
	}
	if r.IsFree != nil {
		m["is_free"] = *r.IsFree
	}
	return m
}

type LectureDetailResponse struct {
	model.CourseLectureModel
	Subject  model.SubjectModel          `json:"subject"`
	PDFs     []model.LecturePDFModel     `json:"pdfs"`
	Progress *model.LectureProgressModel `json:"progress,omitempty"`
}

/* ===================== PDF / PROGRESS / PLAN ===================== */

type PDFRequest struct {
	Title string `form:"title" json:"title" validate:"required,notblank,max=200"`
}

type ProgressRequest struct {
	WatchedSeconds *int  `json:"watched_seconds" validate:"omitempty,min=0"`
	IsCompleted    *bool `json:"is_completed"`
}

func (r *ProgressRequest) ToInput() service.ProgressInput {
	return service.ProgressInput{WatchedSeconds: r.WatchedSeconds, IsCompleted: r.IsCompleted}
}
