package service

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authModel "smartstudy_backend/internals/features/users/auth/model"
	userModel "smartstudy_backend/internals/features/users/user/model"
	helper "smartstudy_backend/internals/helpers"
)

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72,nefield=OldPassword"`
}

// ChangePassword mengganti password dan mencabut semua refresh token user.
func ChangePassword(db *gorm.DB, c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if errs := helper.ValidateStruct(&req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}

	var u userModel.UserModel
	if err := db.WithContext(c.Context()).First(&u, "id = ?", userID).Error; err != nil {
		return helper.WriteDBError(c, err)
	}
	if !CheckPassword(u.Password, req.OldPassword) {
		return helper.JsonError(c, fiber.StatusUnauthorized, "old password is incorrect")
	}

	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "failed to hash password")
	}

	err = db.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&u).Update("password", hash).Error; err != nil {
			return err
		}
		return tx.Model(&authModel.RefreshTokenModel{}).
			Where("user_id = ? AND revoked_at IS NULL", u.ID).
			Update("revoked_at", nowUTC()).Error
	})
	if err != nil {
		log.Printf("[CHANGE PASSWORD] failed: %v", err)
		return helper.WriteDBError(c, err)
	}
	return helper.JsonUpdated(c, "password changed", nil)
}
