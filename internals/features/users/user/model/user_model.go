package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ClassLevel9  = "9th"
	ClassLevel10 = "10th"
	ClassLevel11 = "11th"
	ClassLevel12 = "12th"

	StreamScience = "Science"
	StreamNEET    = "NEET"
	StreamJEE     = "JEE"
)

type RoleModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:64;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (RoleModel) TableName() string { return "roles" }

func (r *RoleModel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// UserModel merepresentasikan tabel users
type UserModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserName   string     `gorm:"size:50;uniqueIndex;not null" json:"user_name"`
	Email      string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password   string     `gorm:"not null" json:"-"`
	GoogleID   *string    `gorm:"size:255;uniqueIndex" json:"-"`
	Role       string     `gorm:"size:30;not null;index" json:"role"`
	FirstName  string     `gorm:"size:100" json:"first_name"`
	LastName   string     `gorm:"size:100" json:"last_name"`
	Phone      string     `gorm:"size:15" json:"phone"`
	ClassLevel string     `gorm:"size:10" json:"class_level"`
	Stream     string     `gorm:"size:20" json:"stream"`
	IsActive   bool       `gorm:"not null" json:"is_active"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserModel) TableName() string { return "users" }

func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return nil
}

func (u *UserModel) FullName() string {
	if n := strings.TrimSpace(u.FirstName + " " + u.LastName); n != "" {
		return n
	}
	return u.UserName
}

func ValidClassLevel(s string) bool {
	switch s {
	case ClassLevel9, ClassLevel10, ClassLevel11, ClassLevel12:
		return true
	}
	return false
}

func ValidStream(s string) bool {
	switch s {
	case StreamScience, StreamNEET, StreamJEE:
		return true
	}
	return false
}
