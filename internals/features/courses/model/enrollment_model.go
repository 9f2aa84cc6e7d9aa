package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	CourseTypeFree    = "free"
	CourseTypeBasic   = "basic"
	CourseTypePremium = "premium"

	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"

	EnrollmentValidity = 365 * 24 * time.Hour
)

var planPrices = map[string]decimal.Decimal{
	CourseTypeFree:    decimal.Zero,
	CourseTypeBasic:   decimal.NewFromInt(799),
	CourseTypePremium: decimal.NewFromInt(1299),
}

// PlanPrice: harga paket, false kalau course_type tidak dikenal
func PlanPrice(courseType string) (decimal.Decimal, bool) {
	p, ok := planPrices[courseType]
	return p, ok
}

// EnrollmentModel: langganan paket (free/basic/premium) per class_level + stream
type EnrollmentModel struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	CourseType    string          `gorm:"column:course_type;size:20;not null" json:"course_type"`
	ClassLevel    string          `gorm:"column:class_level;size:10;not null" json:"class_level"`
	Stream        string          `gorm:"column:stream;size:20;not null" json:"stream"`
	AmountPaid    decimal.Decimal `gorm:"column:amount_paid;type:numeric(10,2);not null" json:"amount_paid"`
	PaymentStatus string          `gorm:"column:payment_status;size:20;not null" json:"payment_status"`
	EnrolledAt    time.Time       `gorm:"column:enrolled_at;not null" json:"enrolled_at"`
	ExpiresAt     time.Time       `gorm:"column:expires_at;not null" json:"expires_at"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (EnrollmentModel) TableName() string { return "enrollments" }

func (m *EnrollmentModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.EnrolledAt.IsZero() {
		m.EnrolledAt = time.Now().UTC()
	}
	if m.ExpiresAt.IsZero() {
		m.ExpiresAt = m.EnrolledAt.Add(EnrollmentValidity)
	}
	return nil
}

func (m EnrollmentModel) IsActiveAt(now time.Time) bool {
	return m.PaymentStatus == PaymentCompleted && now.Before(m.ExpiresAt)
}
