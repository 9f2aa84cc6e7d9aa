package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"smartstudy_backend/internals/features/batches/model"
	"smartstudy_backend/internals/features/batches/service"
)

const DateLayout = "2006-01-02"

/* ===================== CATEGORY ===================== */

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=100"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
	Order       int    `json:"order" validate:"min=0"`
}

func (r *CategoryRequest) ToModel() *model.CategoryModel {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &model.CategoryModel{
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		IsActive:    active,
		SortOrder:   r.Order,
	}
}

type CategoryUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=100"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
	Order       *int    `json:"order" validate:"omitempty,min=0"`
}

func (r *CategoryUpdateRequest) ToUpdates() map[string]any {
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
	if r.Order != nil {
		m["sort_order"] = *r.Order
	}
	return m
}

/* ===================== BATCH (multipart, thumbnail opsional) ===================== */

type BatchRequest struct {
	CategoryID  string `form:"category_id" json:"category_id" validate:"required,uuid"`
	Name        string `form:"name" json:"name" validate:"required,notblank,max=200"`
	Description string `form:"description" json:"description"`
	Price       string `form:"price" json:"price" validate:"omitempty,numeric"`
	IsFree      bool   `form:"is_free" json:"is_free"`
	IsActive    *bool  `form:"is_active" json:"is_active"`
	StartDate   string `form:"start_date" json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string `form:"end_date" json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Order       int    `form:"order" json:"order" validate:"min=0"`
}

func parseDate(s string) *time.Time {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func parsePrice(s string) (decimal.Decimal, map[string]string) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	p, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || p.IsNegative() {
		return decimal.Zero, map[string]string{"price": "price must be a non-negative number"}
	}
	return p.Round(2), nil
}

// ToModel: batch berbayar wajib price > 0, end_date tidak boleh sebelum start_date.
func (r *BatchRequest) ToModel() (*model.BatchModel, map[string]string) {
	price, fe := parsePrice(r.Price)
	if fe != nil {
		return nil, fe
	}
	if !r.IsFree && !price.IsPositive() {
		return nil, map[string]string{"price": "paid batch needs a price greater than 0"}
	}
	start, end := parseDate(r.StartDate), parseDate(r.EndDate)
	if start != nil && end != nil && end.Before(*start) {
		return nil, map[string]string{"end_date": "end_date must not be before start_date"}
	}
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &model.BatchModel{
		CategoryID:  uuid.MustParse(r.CategoryID),
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		Price:       price,
		IsFree:      r.IsFree,
		IsActive:    active,
		StartDate:   start,
		EndDate:     end,
		SortOrder:   r.Order,
	}, nil
}

type BatchUpdateRequest struct {
	CategoryID  *string `form:"category_id" json:"category_id" validate:"omitempty,uuid"`
	Name        *string `form:"name" json:"name" validate:"omitempty,notblank,max=200"`
	Description *string `form:"description" json:"description"`
	Price       *string `form:"price" json:"price" validate:"omitempty,numeric"`
	IsFree      *bool   `form:"is_free" json:"is_free"`
	IsActive    *bool   `form:"is_active" json:"is_active"`
	StartDate   *string `form:"start_date" json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string `form:"end_date" json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Order       *int    `form:"order" json:"order" validate:"omitempty,min=0"`
}

func (r *BatchUpdateRequest) ToUpdates() (map[string]any, map[string]string) {
	m := map[string]any{}
	if r.CategoryID != nil {
		m["category_id"] = uuid.MustParse(*r.CategoryID)
	}
	if r.Name != nil {
		m["name"] = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		m["description"] = *r.Description
	}
	if r.Price != nil {
		p, fe := parsePrice(*r.Price)
		if fe != nil {
			return nil, fe
		}
		m["price"] = p
	}
	if r.IsFree != nil {
		m["is_free"] = *r.IsFree
	}
	if r.IsActive != nil {
		m["is_active"] = *r.IsActive
	}
	if r.StartDate != nil {
		m["start_date"] = parseDate(*r.StartDate)
	}
	if r.EndDate != nil {
		m["end_date"] = parseDate(*r.EndDate)
	}
	if r.Order != nil {
		m["sort_order"] = *r.Order
	}
	return m, nil
}

type BatchDetailResponse struct {
	model.BatchModel
	Subjects      []service.SubjectTree `json:"subjects"`
	EnrolledCount int64                 `json:"enrolled_count"`
	IsEnrolled    bool                  `json:"is_enrolled"`
}

/* ===================== SUBJECT ===================== */

type SubjectRequest struct {
	BatchID     uuid.UUID `json:"batch_id" validate:"required"`
	Name        string    `json:"name" validate:"required,notblank,max=100"`
	Description string    `json:"description"`
	OrderIndex  int       `json:"order_index" validate:"min=0"`
}

func (r *SubjectRequest) ToModel() *model.BatchSubjectModel {
	return &model.BatchSubjectModel{
		BatchID:     r.BatchID,
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		OrderIndex:  r.OrderIndex,
	}
}

type SubjectUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=100"`
	Description *string `json:"description"`
	OrderIndex  *int    `json:"order_index" validate:"omitempty,min=0"`
}

func (r *SubjectUpdateRequest) ToUpdates() map[string]any {
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

/* ===================== LECTURE (multipart: pdf_file, video_file) ===================== */

type LectureRequest struct {
	BatchSubjectID  string `form:"batch_subject_id" json:"batch_subject_id" validate:"required,uuid"`
	TopicName       string `form:"topic_name" json:"topic_name" validate:"required,notblank,max=200"`
	Description     string `form:"description" json:"description"`
	DayNumber       int    `form:"day_number" json:"day_number" validate:"required,min=1"`
	VideoType       string `form:"video_type" json:"video_type" validate:"required,oneof=youtube vimeo drive upload url"`
	VideoURL        string `form:"video_url" json:"video_url" validate:"omitempty,url"`
	DurationMinutes int    `form:"duration_minutes" json:"duration_minutes" validate:"min=0,max=600"`
	IsActive        *bool  `form:"is_active" json:"is_active"`
}

func (r *LectureRequest) ToModel() *model.BatchLectureModel {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &model.BatchLectureModel{
		BatchSubjectID:  uuid.MustParse(r.BatchSubjectID),
		TopicName:       strings.TrimSpace(r.TopicName),
		Description:     r.Description,
		DayNumber:       r.DayNumber,
		VideoType:       r.VideoType,
		VideoURL:        strings.TrimSpace(r.VideoURL),
		DurationMinutes: r.DurationMinutes,
		IsActive:        active,
	}
}

type LectureUpdateRequest struct {
	TopicName       *string `form:"topic_name" json:"topic_name" validate:"omitempty,notblank,max=200"`
	Description     *string `form:"description" json:"description"`
	DayNumber       *int    `form:"day_number" json:"day_number" validate:"omitempty,min=1"`
	VideoType       *string `form:"video_type" json:"video_type" validate:"omitempty,oneof=youtube vimeo drive upload url"`
	VideoURL        *string `form:"video_url" json:"video_url" validate:"omitempty,url"`
	DurationMinutes *int    `form:"duration_minutes" json:"duration_minutes" validate:"omitempty,min=0,max=600"`
	IsActive        *bool   `form:"is_active" json:"is_active"`
}

func (r *LectureUpdateRequest) ToUpdates() map[string]any {
	m := map[string]any{}
	if r.TopicName != nil {
		m["topic_name"] = strings.TrimSpace(*r.TopicName)
	}
	if r.Description != nil {
		m["description"] = *r.Description
	}
	if r.DayNumber != nil {
		m["day_number"] = *r.DayNumber
	}
	if r.VideoType != nil {
		m["video_type"] = *r.VideoType
	}
	if r.VideoURL != nil {
		m["video_url"] = strings.TrimSpace(*r.VideoURL)
	}
	if r.DurationMinutes != nil {
		m["duration_minutes"] = *r.DurationMinutes
	}
	if r.IsActive != nil {
		m["is_active"] = *r.IsActive
	}
	return m
}

type LectureDetailResponse struct {
	model.BatchLectureModel
	EmbedURL string `json:"embed_url"`
	service.LectureExtras
}

func ToLectureDetail(l *model.BatchLectureModel, extras *service.LectureExtras) LectureDetailResponse {
	return LectureDetailResponse{BatchLectureModel: *l, EmbedURL: l.EmbedURL(), LectureExtras: *extras}
}
