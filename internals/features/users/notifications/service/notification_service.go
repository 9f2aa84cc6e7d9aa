package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"smartstudy_backend/internals/features/users/notifications/mailer"
	notifModel "smartstudy_backend/internals/features/users/notifications/model"
	userModel "smartstudy_backend/internals/features/users/user/model"
)

type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind, title, message string) error
}

type Service struct {
	DB     *gorm.DB
	Mailer mailer.Mailer
	// Sync=true: email dikirim inline (dipakai di test).
	Sync bool
}

func New(db *gorm.DB, m mailer.Mailer) *Service {
	return &Service{DB: db, Mailer: m}
}

// Notify menyimpan notifikasi lalu mengirim email (best effort).
// Panggil setelah transaksi commit.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, kind, title, message string) error {
	n := notifModel.NotificationModel{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
	}
	if err := s.DB.WithContext(ctx).Create(&n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	if s.Mailer == nil {
		return nil
	}

	var u userModel.UserModel
	if err := s.DB.WithContext(ctx).Select("id", "email", "user_name", "first_name", "last_name").
		First(&u, "id = ?", userID).Error; err != nil {
		log.Printf("[MAIL] skip notification email user=%s: %v", userID, err)
		return nil
	}
	msg := mailer.Message{ToName: u.FullName(), ToEmail: u.Email, Subject: title, Text: message}

	send := func() {
		sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.Mailer.Send(sctx, msg); err != nil {
			log.Printf("[MAIL] send to %s failed: %v", u.Email, err)
		}
	}
	if s.Sync {
		send()
	} else {
		go send()
	}
	return nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, onlyUnread bool, offset, limit int) ([]notifModel.NotificationModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&notifModel.NotificationModel{}).Where("user_id = ?", userID)
	if onlyUnread {
		q = q.Where("is_read = ?", false)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []notifModel.NotificationModel
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, total, err
}

func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&notifModel.NotificationModel{}).
		Where("user_id = ? AND is_read = ?", userID, false).Count(&n).Error
	return n, err
}

// MarkRead: gorm.ErrRecordNotFound kalau bukan milik user.
func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).Model(&notifModel.NotificationModel{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&notifModel.NotificationModel{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
