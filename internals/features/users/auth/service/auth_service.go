// internals/features/users/auth/service/auth_service.go
package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	verifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"smartstudy_backend/internals/configs"
	"smartstudy_backend/internals/constants"
	userModel "smartstudy_backend/internals/features/users/user/model"
	helper "smartstudy_backend/internals/helpers"
)

var (
	ErrUserInactive       = errors.New("account is inactive")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

/* ==========================
   DTO
========================== */

type RegisterRequest struct {
	UserName   string `json:"user_name" validate:"required,min=3,max=50"`
	Email      string `json:"email" validate:"required,email,max=255"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	FirstName  string `json:"first_name" validate:"omitempty,max=100"`
	LastName   string `json:"last_name" validate:"omitempty,max=100"`
	Phone      string `json:"phone" validate:"omitempty,max=15"`
	ClassLevel string `json:"class_level" validate:"omitempty,oneof=9th 10th 11th 12th"`
	Stream     string `json:"stream" validate:"omitempty,oneof=Science NEET JEE"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type authUserResponse struct {
	ID         uuid.UUID `json:"id"`
	UserName   string    `json:"user_name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	ClassLevel string    `json:"class_level"`
	Stream     string    `json:"stream"`
}

func toAuthUser(u userModel.UserModel) authUserResponse {
	return authUserResponse{
		ID: u.ID, UserName: u.UserName, Email: u.Email, Role: u.Role,
		FirstName: u.FirstName, LastName: u.LastName,
		ClassLevel: u.ClassLevel, Stream: u.Stream,
	}
}

/* ==========================
   USER CREATION (dipakai juga oleh seed & CLI)
========================== */

type NewUser struct {
	UserName   string
	Email      string
	Password   string
	Role       string
	FirstName  string
	LastName   string
	Phone      string
	ClassLevel string
	Stream     string
	GoogleID   *string
}

func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

func CreateUser(ctx context.Context, db *gorm.DB, in NewUser) (*userModel.UserModel, error) {
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if role == "" {
		role = constants.RoleStudent
	}
	if !constants.IsValidRole(role) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid role")
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := userModel.UserModel{
		UserName:   strings.TrimSpace(in.UserName),
		Email:      strings.ToLower(strings.TrimSpace(in.Email)),
		Password:   hash,
		GoogleID:   in.GoogleID,
		Role:       role,
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Phone:      strings.TrimSpace(in.Phone),
		ClassLevel: in.ClassLevel,
		Stream:     in.Stream,
		IsActive:   true,
	}
	if err := db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByIdentifier: email (case-insensitive) atau user_name.
func FindByIdentifier(ctx context.Context, db *gorm.DB, identifier string) (*userModel.UserModel, error) {
	id := strings.TrimSpace(identifier)
	var u userModel.UserModel
	err := db.WithContext(ctx).
		Where("email = ? OR user_name = ?", strings.ToLower(id), id).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

/* ==========================
   HANDLERS
========================== */

func Register(db *gorm.DB, c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if errs := helper.ValidateStruct(&req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}

	u, err := CreateUser(c.Context(), db, NewUser{
		UserName: req.UserName, Email: req.Email, Password: req.Password,
		Role:      constants.RoleStudent,
		FirstName: req.FirstName, LastName: req.LastName, Phone: req.Phone,
		ClassLevel: req.ClassLevel, Stream: req.Stream,
	})
	if err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "email or user_name already registered")
		}
		log.Printf("[REGISTER] create user failed: %v", err)
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "registration successful", toAuthUser(*u))
}

func Login(db *gorm.DB, c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if errs := helper.ValidateStruct(&req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}

	u, err := FindByIdentifier(c.Context(), db, req.Identifier)
	if err != nil || !CheckPassword(u.Password, req.Password) {
		return helper.JsonError(c, fiber.StatusUnauthorized, "invalid credentials")
	}
	if !u.IsActive {
		return helper.JsonError(c, fiber.StatusForbidden, "account is inactive")
	}
	return issueAndRespond(db, c, *u)
}

func LoginGoogle(db *gorm.DB, c *fiber.Ctx) error {
	if strings.TrimSpace(configs.GoogleClientID) == "" {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "google login is not configured")
	}
	var req GoogleLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if errs := helper.ValidateStruct(&req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}

	v := verifier.Verifier{}
	if err := v.VerifyIDToken(req.IDToken, []string{configs.GoogleClientID}); err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "invalid google id token")
	}
	payload, err := verifier.Decode(req.IDToken)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "invalid google id token")
	}

	u, err := upsertGoogleUser(c.Context(), db, payload.Email, payload.Name, payload.Sub)
	if err != nil {
		log.Printf("[GOOGLE LOGIN] upsert failed: %v", err)
		return helper.JsonFromError(c, err)
	}
	if !u.IsActive {
		return helper.JsonError(c, fiber.StatusForbidden, "account is inactive")
	}
	return issueAndRespond(db, c, *u)
}

func upsertGoogleUser(ctx context.Context, db *gorm.DB, email, name, sub string) (*userModel.UserModel, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u userModel.UserModel
	err := db.WithContext(ctx).Where("google_id = ? OR email = ?", sub, email).First(&u).Error
	if err == nil {
		if u.GoogleID == nil {
			u.GoogleID = &sub
			if err := db.WithContext(ctx).Model(&u).Update("google_id", sub).Error; err != nil {
				return nil, err
			}
		}
		return &u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	first, last := name, ""
	if i := strings.LastIndex(name, " "); i > 0 {
		first, last = name[:i], name[i+1:]
	}
	base := strings.SplitN(email, "@", 2)[0]
	userName := helper.Slugify(base, 40) + "-" + uuid.NewString()[:6]

	return CreateUser(ctx, db, NewUser{
		UserName: userName, Email: email,
		Password:  uuid.NewString(), // tidak dipakai, login lewat google
		Role:      constants.RoleStudent,
		FirstName: first, LastName: last,
		GoogleID:  &sub,
	})
}

func RefreshToken(db *gorm.DB, c *fiber.Ctx) error {
	raw := helper.GetRefreshTokenFromCookie(c)
	if raw == "" {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = c.BodyParser(&body)
		raw = strings.TrimSpace(body.RefreshToken)
	}
	if raw == "" {
		return helper.JsonError(c, fiber.StatusUnauthorized, "refresh token is missing")
	}

	pair, err := RotateRefreshToken(c.Context(), db, raw, c.Get("User-Agent"), c.IP())
	switch {
	case errors.Is(err, ErrUserInactive):
		return helper.JsonError(c, fiber.StatusForbidden, "account is inactive")
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenRevoked):
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	case err != nil:
		log.Printf("[REFRESH] rotate failed: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "failed to refresh token")
	}
	setAuthCookies(c, pair)
	return helper.JsonOK(c, "token refreshed", pair)
}

func Logout(db *gorm.DB, c *fiber.Ctx) error {
	ctx := c.Context()
	if access := helper.GetRawAccessToken(c); access != "" {
		if err := BlacklistAccessToken(ctx, db, access); err != nil {
			log.Printf("[LOGOUT] blacklist failed: %v", err)
			return helper.JsonError(c, fiber.StatusInternalServerError, "failed to logout")
		}
	}
	if rt := helper.GetRefreshTokenFromCookie(c); rt != "" {
		if err := RevokeRefreshToken(ctx, db, rt); err != nil {
			log.Printf("[LOGOUT] revoke refresh failed: %v", err)
		}
	}
	clearAuthCookies(c)
	return helper.JsonOK(c, "logout successful", nil)
}

/* ==========================
   INTERNAL
========================== */

func issueAndRespond(db *gorm.DB, c *fiber.Ctx, u userModel.UserModel) error {
	pair, err := IssueTokens(c.Context(), db, u, c.Get("User-Agent"), c.IP())
	if err != nil {
		log.Printf("[LOGIN] issue tokens failed: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "failed to issue token")
	}
	now := nowUTC()
	if err := db.WithContext(c.Context()).Model(&u).Update("last_login", now).Error; err != nil {
		log.Printf("[LOGIN] update last_login failed: %v", err)
	}
	setAuthCookies(c, pair)
	return helper.JsonOK(c, "login successful", fiber.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_at":    pair.ExpiresAt,
		"user":          toAuthUser(u),
	})
}

func cookieSecure() bool { return configs.AppEnv == "production" }

func setAuthCookies(c *fiber.Ctx, pair *TokenPair) {
	sameSite := "Lax"
	if cookieSecure() {
		sameSite = "None"
	}
	c.Cookie(&fiber.Cookie{
		Name: "access_token", Value: pair.AccessToken,
		HTTPOnly: true, Secure: cookieSecure(), SameSite: sameSite,
		Expires: pair.ExpiresAt, Path: "/",
	})
	c.Cookie(&fiber.Cookie{
		Name: "refresh_token", Value: pair.RefreshToken,
		HTTPOnly: true, Secure: cookieSecure(), SameSite: sameSite,
		Expires: nowUTC().Add(refreshTTLDefault), Path: "/",
	})
}

func clearAuthCookies(c *fiber.Ctx) {
	past := time.Unix(0, 0)
	for _, name := range []string{"access_token", "refresh_token"} {
		c.Cookie(&fiber.Cookie{Name: name, Value: "", Expires: past, HTTPOnly: true, Path: "/"})
	}
}
