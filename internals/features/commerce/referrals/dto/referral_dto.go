package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValidateRequest: batch_id atau plan_type (basic/premium), salah satu wajib
type ValidateRequest struct {
	Code     string     `json:"code" validate:"required,notblank,max=20"`
	BatchID  *uuid.UUID `json:"batch_id" validate:"required_without=PlanType"`
	PlanType string     `json:"plan_type" validate:"required_without=BatchID,omitempty,oneof=basic premium"`
}

type CreateCodeRequest struct {
	SalesExecutiveID   uuid.UUID       `json:"sales_executive_id" validate:"required"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
}

// Check: 0 <= pct <= 100 (validator tidak paham decimal.Decimal)
func (r CreateCodeRequest) Check() map[string]string {
	if r.DiscountPercentage.IsNegative() || r.DiscountPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return map[string]string{"discount_percentage": "discount_percentage must be between 0 and 100"}
	}
	return nil
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type CreateExecutiveRequest struct {
	UserID     uuid.UUID `json:"user_id" validate:"required"`
	EmployeeID string    `json:"employee_id" validate:"required,notblank,max=20"`
	Phone      string    `json:"phone" validate:"omitempty,max=15"`
}
