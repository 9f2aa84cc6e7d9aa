package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TypeGeneral = "general"
	TypeDoubt   = "doubt"
	TypeQuiz    = "quiz"
	TypePayment = "payment"
	TypeComment = "comment"
)

type NotificationModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Type      string    `gorm:"size:50;not null" json:"notification_type"`
	IsRead    bool      `gorm:"not null;index" json:"is_read"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (NotificationModel) TableName() string { return "notifications" }

func (n *NotificationModel) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Type == "" {
		n.Type = TypeGeneral
	}
	return nil
}
