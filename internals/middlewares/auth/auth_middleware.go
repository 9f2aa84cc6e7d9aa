// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"

	authService "smartstudy_backend/internals/features/users/auth/service"
	userModel "smartstudy_backend/internals/features/users/user/model"
	helper "smartstudy_backend/internals/helpers"
)

func AuthMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1) Ambil Authorization (atau cookie)
		tokenString := helper.GetRawAccessToken(c)
		if tokenString == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - missing access token")
		}
		if err := authenticate(c, db, tokenString); err != nil {
			return err
		}
		return c.Next()
	}
}

// OptionalAuth: token valid → locals diisi, token kosong/invalid → lanjut sebagai anonim.
func OptionalAuth(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := helper.GetRawAccessToken(c)
		if tokenString == "" {
			return c.Next()
		}
		if err := authenticate(c, db, tokenString); err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) && fe.Code >= fiber.StatusInternalServerError {
				return err
			}
		}
		return c.Next()
	}
}

func authenticate(c *fiber.Ctx, db *gorm.DB, tokenString string) error {
	// 2) Cek blacklist (sekali per request)
	if c.Locals("token_checked") == nil {
		black, err := authService.IsBlacklisted(c.Context(), db, tokenString)
		if err != nil {
			log.Println("[ERROR] DB error saat cek blacklist:", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
		}
		if black {
			log.Println("[WARNING] Token ditemukan di blacklist")
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - token is blacklisted")
		}
		c.Locals("token_checked", true)
	}

	// 3) Parse & verifikasi JWT (exp dengan skew 30s)
	claims, err := authService.ParseAccessToken(tokenString)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - invalid or expired token")
	}

	// 4) user_id & user aktif
	userID, err := extractUserID(claims)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - invalid or missing user ID")
	}

	var u userModel.UserModel
	if err := db.WithContext(c.Context()).
		Select("id", "user_name", "role", "is_active").
		First(&u, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - user not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
	}
	if !u.IsActive {
		return fiber.NewError(fiber.StatusForbidden, "account is inactive")
	}

	// 5) Simpan ke context. Role diambil dari DB supaya perubahan role langsung berlaku.
	c.Locals(helper.LocUserID, u.ID.String())
	c.Locals(helper.LocUserRole, strings.ToLower(u.Role))
	c.Locals(helper.LocUserName, u.UserName)
	return nil
}

func extractUserID(claims jwt.MapClaims) (uuid.UUID, error) {
	for _, k := range []string{"id", "sub"} {
		if s, ok := claims[k].(string); ok && s != "" {
			return uuid.Parse(s)
		}
	}
	return uuid.Nil, errors.New("user id claim missing")
}

