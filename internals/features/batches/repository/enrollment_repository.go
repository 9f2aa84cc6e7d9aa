// Package repository berisi query enrollment batch yang dipakai lintas fitur
// (dpps, comments, orders) tanpa harus import service batches.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smartstudy_backend/internals/features/batches/model"
)

func IsEnrolledInBatch(ctx context.Context, db *gorm.DB, userID, batchID uuid.UUID) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&model.BatchEnrollmentModel{}).
		Where("user_id = ? AND batch_id = ? AND is_active = ?", userID, batchID, true).
		Count(&n).Error
	return n > 0, err
}

// IsEnrolledForLecture: lecture → batch_subject → batch → enrollment aktif.
func IsEnrolledForLecture(ctx context.Context, db *gorm.DB, userID, lectureID uuid.UUID) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Table("batch_enrollments AS be").
		Joins("JOIN batch_subjects bs ON bs.batch_id = be.batch_id").
		Joins("JOIN batch_lectures bl ON bl.batch_subject_id = bs.id").
		Where("bl.id = ? AND be.user_id = ? AND be.is_active = ?", lectureID, userID, true).
		Count(&n).Error
	return n > 0, err
}

// BatchIDForLecture: 404 (gorm.ErrRecordNotFound) kalau lecture tidak ada.
func BatchIDForLecture(ctx context.Context, db *gorm.DB, lectureID uuid.UUID) (uuid.UUID, error) {
	var row struct{ BatchID uuid.UUID }
	err := db.WithContext(ctx).Table("batch_lectures AS bl").
		Select("bs.batch_id AS batch_id").
		Joins("JOIN batch_subjects bs ON bs.id = bl.batch_subject_id").
		Where("bl.id = ?", lectureID).
		Take(&row).Error
	return row.BatchID, err
}

// Enroll membuat atau mengaktifkan kembali enrollment (idempotent).
// Dipakai free-enroll dan settlement order.
func Enroll(tx *gorm.DB, userID, batchID uuid.UUID) error {
	row := model.BatchEnrollmentModel{
		UserID:     userID,
		BatchID:    batchID,
		EnrolledAt: time.Now().UTC(),
		IsActive:   true,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "batch_id"}},
		DoUpdates: clause.Assignments(map[string]any{"is_active": true}),
	}).Create(&row).Error
}

func EnrolledCount(ctx context.Context, db *gorm.DB, batchID uuid.UUID) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&model.BatchEnrollmentModel{}).
		Where("batch_id = ? AND is_active = ?", batchID, true).
		Count(&n).Error
	return n, err
}
