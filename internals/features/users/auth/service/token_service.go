// internals/features/users/auth/service/token_service.go
package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smartstudy_backend/internals/configs"
	authModel "smartstudy_backend/internals/features/users/auth/model"
	userModel "smartstudy_backend/internals/features/users/user/model"
)

const (
	accessTTLDefault  = 24 * time.Hour
	refreshTTLDefault = 7 * 24 * time.Hour

	// toleransi jam antar server
	clockSkew = 30 * time.Second
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")
)

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func nowUTC() time.Time { return time.Now().UTC() }

func getJWTSecret() (string, error) {
	s := strings.TrimSpace(configs.JWTSecret)
	if s == "" {
		return "", errors.New("JWT_SECRET is not configured")
	}
	return s, nil
}

func getRefreshSecret() (string, error) {
	if s := strings.TrimSpace(configs.JWTRefreshSecret); s != "" {
		return s, nil
	}
	return getJWTSecret()
}

func computeHash(token, secret string) string {
	m := hmac.New(sha256.New, []byte(secret))
	_, _ = m.Write([]byte(token))
	return hex.EncodeToString(m.Sum(nil))
}

func buildAccessClaims(u userModel.UserModel, now time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"typ":       "access",
		"sub":       u.ID.String(),
		"id":        u.ID.String(),
		"user_name": u.UserName,
		"role":      u.Role,
		"iat":       now.Unix(),
		"exp":       now.Add(accessTTLDefault).Unix(),
	}
}

func buildRefreshClaims(userID uuid.UUID, now time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"typ": "refresh",
		"sub": userID.String(),
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(refreshTTLDefault).Unix(),
	}
}

// SignAccessToken dipakai juga oleh test untuk membuat token.
func SignAccessToken(u userModel.UserModel, now time.Time) (string, error) {
	secret, err := getJWTSecret()
	if err != nil {
		return "", err
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, buildAccessClaims(u, now)).SignedString([]byte(secret))
}

// IssueTokens membuat pasangan access+refresh dan menyimpan hash refresh.
func IssueTokens(ctx context.Context, db *gorm.DB, u userModel.UserModel, userAgent, ip string) (*TokenPair, error) {
	refreshSecret, err := getRefreshSecret()
	if err != nil {
		return nil, err
	}
	now := nowUTC()

	access, err := SignAccessToken(u, now)
	if err != nil {
		return nil, fmt.Errorf("sign access: %w", err)
	}
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, buildRefreshClaims(u.ID, now)).SignedString([]byte(refreshSecret))
	if err != nil {
		return nil, fmt.Errorf("sign refresh: %w", err)
	}

	rt := authModel.RefreshTokenModel{
		UserID:    u.ID,
		TokenHash: computeHash(refresh, refreshSecret),
		ExpiresAt: now.Add(refreshTTLDefault),
		UserAgent: truncate(userAgent, 255),
		IP:        truncate(ip, 64),
	}
	if err := db.WithContext(ctx).Create(&rt).Error; err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: now.Add(accessTTLDefault)}, nil
}

// ParseAccessToken memvalidasi signature + exp (dengan skew) dan typ.
func ParseAccessToken(raw string) (jwt.MapClaims, error) {
	secret, err := getJWTSecret()
	if err != nil {
		return nil, err
	}
	parser := jwt.Parser{SkipClaimsValidation: true}
	claims := jwt.MapClaims{}
	tok, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	exp, ok := claims["exp"].(float64)
	if !ok || time.Unix(int64(exp), 0).Add(clockSkew).Before(nowUTC()) {
		return nil, ErrInvalidToken
	}
	if typ, _ := claims["typ"].(string); typ != "" && typ != "access" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RotateRefreshToken: validasi refresh lama, revoke, lalu terbitkan pasangan baru.
func RotateRefreshToken(ctx context.Context, db *gorm.DB, raw, userAgent, ip string) (*TokenPair, error) {
	refreshSecret, err := getRefreshSecret()
	if err != nil {
		return nil, err
	}
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(refreshSecret), nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	claims, _ := tok.Claims.(jwt.MapClaims)
	if typ, _ := claims["typ"].(string); typ != "refresh" {
		return nil, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var pair *TokenPair
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rt authModel.RefreshTokenModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("token_hash = ? AND user_id = ?", computeHash(raw, refreshSecret), userID).
			First(&rt).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidToken
			}
			return err
		}
		if rt.RevokedAt != nil || rt.ExpiresAt.Before(nowUTC()) {
			return ErrTokenRevoked
		}
		now := nowUTC()
		if err := tx.Model(&rt).Update("revoked_at", now).Error; err != nil {
			return err
		}

		var u userModel.UserModel
		if err := tx.First(&u, "id = ?", userID).Error; err != nil {
			return ErrInvalidToken
		}
		if !u.IsActive {
			return ErrUserInactive
		}
		p, err := IssueTokens(ctx, tx, u, userAgent, ip)
		pair = p
		return err
	})
	return pair, err
}

func RevokeRefreshToken(ctx context.Context, db *gorm.DB, raw string) error {
	refreshSecret, err := getRefreshSecret()
	if err != nil || raw == "" {
		return err
	}
	return db.WithContext(ctx).Model(&authModel.RefreshTokenModel{}).
		Where("token_hash = ? AND revoked_at IS NULL", computeHash(raw, refreshSecret)).
		Update("revoked_at", nowUTC()).Error
}

/* ==========================
   BLACKLIST (HMAC access token)
========================== */

// BlacklistAccessToken menyimpan hash token sampai exp-nya lewat.
func BlacklistAccessToken(ctx context.Context, db *gorm.DB, raw string) error {
	secret, err := getJWTSecret()
	if err != nil || strings.TrimSpace(raw) == "" {
		return err
	}
	until := nowUTC().Add(accessTTLDefault)
	if claims, err := ParseAccessToken(raw); err == nil {
		if exp, ok := claims["exp"].(float64); ok {
			until = time.Unix(int64(exp), 0).Add(clockSkew)
		}
	}
	row := authModel.TokenBlacklist{Token: computeHash(raw, secret), ExpiredAt: until}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"expired_at"}),
	}).Create(&row).Error
}

func IsBlacklisted(ctx context.Context, db *gorm.DB, raw string) (bool, error) {
	secret, err := getJWTSecret()
	if err != nil {
		return false, err
	}
	var n int64
	err = db.WithContext(ctx).Model(&authModel.TokenBlacklist{}).
		Where("token = ? AND expired_at > ?", computeHash(raw, secret), nowUTC()).
		Count(&n).Error
	return n > 0, err
}

// PurgeExpired menghapus baris blacklist yang sudah lewat grace period.
func PurgeExpired(ctx context.Context, db *gorm.DB, grace time.Duration) (int64, error) {
	res := db.WithContext(ctx).
		Where("expired_at < ?", nowUTC().Add(-grace)).
		Delete(&authModel.TokenBlacklist{})
	if res.Error != nil {
		return 0, res.Error
	}
	res2 := db.WithContext(ctx).
		Where("expires_at < ?", nowUTC().Add(-grace)).
		Delete(&authModel.RefreshTokenModel{})
	return res.RowsAffected + res2.RowsAffected, res2.Error
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
