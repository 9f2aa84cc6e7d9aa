package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CategoryModel struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;size:100;not null;uniqueIndex" json:"name"`
	Slug        string    `gorm:"column:slug;size:120;not null;uniqueIndex" json:"slug"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	IsActive    bool      `gorm:"column:is_active;not null" json:"is_active"`
	SortOrder   int       `gorm:"column:sort_order;not null" json:"order"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (CategoryModel) TableName() string { return "categories" }

func (m *CategoryModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type BatchModel struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CategoryID  uuid.UUID       `gorm:"column:category_id;type:uuid;not null;index" json:"category_id"`
	Name        string          `gorm:"column:name;size:200;not null" json:"name"`
	Slug        string          `gorm:"column:slug;size:220;not null;uniqueIndex" json:"slug"`
	Description string          `gorm:"column:description;type:text" json:"description"`
	Thumbnail   string          `gorm:"column:thumbnail;type:text" json:"thumbnail"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	IsFree      bool            `gorm:"column:is_free;not null" json:"is_free"`
	IsActive    bool            `gorm:"column:is_active;not null" json:"is_active"`
	StartDate   *time.Time      `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate     *time.Time      `gorm:"column:end_date" json:"end_date,omitempty"`
	SortOrder   int             `gorm:"column:sort_order;not null" json:"order"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (BatchModel) TableName() string { return "batches" }

func (m *BatchModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// EffectivePrice: batch gratis selalu 0 walau kolom price terisi
func (m BatchModel) EffectivePrice() decimal.Decimal {
	if m.IsFree {
		return decimal.Zero
	}
	return m.Price
}

type BatchSubjectModel struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	BatchID     uuid.UUID `gorm:"column:batch_id;type:uuid;not null;uniqueIndex:uq_batch_subject_name" json:"batch_id"`
	Name        string    `gorm:"column:name;size:100;not null;uniqueIndex:uq_batch_subject_name" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	OrderIndex  int       `gorm:"column:order_index;not null" json:"order_index"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (BatchSubjectModel) TableName() string { return "batch_subjects" }

func (m *BatchSubjectModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type BatchEnrollmentModel struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_batch_enrollment" json:"user_id"`
	BatchID    uuid.UUID `gorm:"column:batch_id;type:uuid;not null;uniqueIndex:uq_batch_enrollment;index" json:"batch_id"`
	EnrolledAt time.Time `gorm:"column:enrolled_at;not null" json:"enrolled_at"`
	IsActive   bool      `gorm:"column:is_active;not null" json:"is_active"`
}

func (BatchEnrollmentModel) TableName() string { return "batch_enrollments" }

func (m *BatchEnrollmentModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.EnrolledAt.IsZero() {
		m.EnrolledAt = time.Now().UTC()
	}
	return nil
}
