package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"smartstudy_backend/internals/features/users/user/model"
)

var ErrCannotChangeSelf = errors.New("admins cannot change their own role or status")

type UserService struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*model.UserModel, error) {
	var u model.UserModel
	if err := s.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile: hanya field profil (nama, phone, class_level, stream).
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) (*model.UserModel, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(u).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

type UserFilter struct {
	Role string
	Q    string
}

// List (admin): cari di user_name/email/nama depan/belakang.
func (s *UserService) List(ctx context.Context, f UserFilter, offset, limit int) ([]model.UserModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.UserModel{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if kw := strings.ToLower(strings.TrimSpace(f.Q)); kw != "" {
		pat := "%" + kw + "%"
		q = q.Where("(LOWER(user_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?)", pat, pat, pat, pat)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.UserModel
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, total, err
}

// AdminUpdate (admin): role dan is_active. Admin tidak boleh mengubah dirinya sendiri.
func (s *UserService) AdminUpdate(ctx context.Context, actor, id uuid.UUID, role *string, active *bool) (*model.UserModel, error) {
	if actor == id {
		return nil, ErrCannotChangeSelf
	}
	updates := map[string]any{}
	if role != nil {
		updates["role"] = *role
	}
	if active != nil {
		updates["is_active"] = *active
	}
	return s.UpdateProfile(ctx, id, updates)
}
