package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ItemBatch = "batch"
	ItemPlan  = "plan"

	StatusPending    = "pending"
	StatusSuccessful = "successful"
	StatusFailed     = "failed"
	StatusExpired    = "expired"

	ModeCard       = "card"
	ModeUPI        = "upi"
	ModeNetbanking = "netbanking"
	ModeWallet     = "wallet"
)

type OrderModel struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderID string    `gorm:"column:order_id;size:32;not null;uniqueIndex" json:"order_id"`
	UserID  uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`

	ItemType   string     `gorm:"column:item_type;size:10;not null" json:"item_type"`
	BatchID    *uuid.UUID `gorm:"column:batch_id;type:uuid;index" json:"batch_id,omitempty"`
	PlanType   string     `gorm:"column:plan_type;size:20" json:"plan_type,omitempty"`
	ClassLevel string     `gorm:"column:class_level;size:10" json:"class_level,omitempty"`
	Stream     string     `gorm:"column:stream;size:20" json:"stream,omitempty"`

	OriginalAmount decimal.Decimal `gorm:"column:original_amount;type:numeric(10,2);not null" json:"original_amount"`
	DiscountAmount decimal.Decimal `gorm:"column:discount_amount;type:numeric(10,2);not null" json:"discount_amount"`
	Amount         decimal.Decimal `gorm:"column:amount;type:numeric(10,2);not null" json:"amount"`

	ReferralCodeID   *uuid.UUID `gorm:"column:referral_code_id;type:uuid" json:"referral_code_id,omitempty"`
	ReferralCode     string     `gorm:"column:referral_code;size:8" json:"referral_code,omitempty"`
	SalesExecutiveID *uuid.UUID `gorm:"column:sales_executive_id;type:uuid;index" json:"sales_executive_id,omitempty"`

	PaymentMode string     `gorm:"column:payment_mode;size:20;not null" json:"payment_mode"`
	Status      string     `gorm:"column:status;size:20;not null;index" json:"status"`
	SnapToken   string     `gorm:"column:snap_token;size:100" json:"snap_token,omitempty"`
	RedirectURL string     `gorm:"column:redirect_url;type:text" json:"redirect_url,omitempty"`
	PaidAt      *time.Time `gorm:"column:paid_at" json:"paid_at,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (OrderModel) TableName() string { return "orders" }

func (m *OrderModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = StatusPending
	}
	return nil
}

func ValidPaymentMode(s string) bool {
	switch s {
	case ModeCard, ModeUPI, ModeNetbanking, ModeWallet:
		return true
	}
	return false
}
