package dto

// CheckoutRequest: body POST /api/u/batches/:id/checkout
type CheckoutRequest struct {
	ReferralCode string `json:"referral_code" validate:"omitempty,max=20"`
	PaymentMode  string `json:"payment_mode" validate:"required,oneof=card upi netbanking wallet"`
}

// PlanCheckoutRequest: body POST /api/u/enrollments (plan berbayar)
type PlanCheckoutRequest struct {
	CourseType   string `json:"course_type" validate:"required,oneof=free basic premium"`
	ClassLevel   string `json:"class_level" validate:"required,oneof=9th 10th 11th 12th"`
	Stream       string `json:"stream" validate:"required,oneof=Science NEET JEE"`
	ReferralCode string `json:"referral_code" validate:"omitempty,max=20"`
	PaymentMode  string `json:"payment_mode" validate:"required_unless=CourseType free,omitempty,oneof=card upi netbanking wallet"`
}
