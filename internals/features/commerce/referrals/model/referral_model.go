package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SalesExecutiveModel struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex" json:"user_id"`
	EmployeeID string    `gorm:"column:employee_id;size:20;not null;uniqueIndex" json:"employee_id"`
	Phone      string    `gorm:"column:phone;size:15" json:"phone"`
	IsActive   bool      `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (SalesExecutiveModel) TableName() string { return "sales_executives" }

func (m *SalesExecutiveModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type ReferralCodeModel struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Code               string          `gorm:"column:code;size:8;not null;uniqueIndex" json:"code"`
	SalesExecutiveID   uuid.UUID       `gorm:"column:sales_executive_id;type:uuid;not null;index" json:"sales_executive_id"`
	DiscountPercentage decimal.Decimal `gorm:"column:discount_percentage;type:numeric(5,2);not null" json:"discount_percentage"`
	IsActive           bool            `gorm:"column:is_active;not null" json:"is_active"`
	UsageCount         int             `gorm:"column:usage_count;not null" json:"usage_count"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ReferralCodeModel) TableName() string { return "referral_codes" }

func (m *ReferralCodeModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
