package dto

import (
	"strings"

	"smartstudy_backend/internals/features/users/user/model"
)

type UpdateProfileRequest struct {
	FirstName  *string `json:"first_name" validate:"omitempty,max=100"`
	LastName   *string `json:"last_name" validate:"omitempty,max=100"`
	Phone      *string `json:"phone" validate:"omitempty,max=15,numeric"`
	ClassLevel *string `json:"class_level" validate:"omitempty,oneof=9th 10th 11th 12th"`
	Stream     *string `json:"stream" validate:"omitempty,oneof=Science NEET JEE"`
}

func (r *UpdateProfileRequest) ToUpdates() map[string]any {
	m := map[string]any{}
	if r.FirstName != nil {
		m["first_name"] = strings.TrimSpace(*r.FirstName)
	}
	if r.LastName != nil {
		m["last_name"] = strings.TrimSpace(*r.LastName)
	}
	if r.Phone != nil {
		m["phone"] = strings.TrimSpace(*r.Phone)
	}
	if r.ClassLevel != nil {
		m["class_level"] = *r.ClassLevel
	}
	if r.Stream != nil {
		m["stream"] = *r.Stream
	}
	return m
}

type AdminUpdateRequest struct {
	Role     *string `json:"role" validate:"omitempty,oneof=admin teacher student sales_executive"`
	IsActive *bool   `json:"is_active"`
}

type ProfileResponse struct {
	model.UserModel
	FullName string `json:"full_name"`
}

func ToProfile(u *model.UserModel) ProfileResponse {
	return ProfileResponse{UserModel: *u, FullName: u.FullName()}
}
