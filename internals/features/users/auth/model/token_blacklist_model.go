package model

import (
	"time"
)

// TokenBlacklist menyimpan HMAC(access_token) sampai token itu expired.
type TokenBlacklist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"size:64;not null;uniqueIndex" json:"token"`
	ExpiredAt time.Time `gorm:"not null;index" json:"expired_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (TokenBlacklist) TableName() string { return "token_blacklist" }
