package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smartstudy_backend/internals/constants"
	"smartstudy_backend/internals/features/courses/model"
)

var (
	ErrLectureLocked = errors.New("enroll in a paid plan to access this lecture")
	ErrAlreadyOnPlan = errors.New("you already have an active plan for this class and stream")
)

var nowFunc = func() time.Time { return time.Now().UTC() }

// ActivePlans: enrollment completed yang belum kedaluwarsa.
func (s *CourseService) ActivePlans(ctx context.Context, userID uuid.UUID) ([]model.EnrollmentModel, error) {
	var rows []model.EnrollmentModel
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND payment_status = ? AND expires_at > ?", userID, model.PaymentCompleted, nowFunc()).
		Order("enrolled_at DESC").
		Find(&rows).Error
	return rows, err
}

func (s *CourseService) MyEnrollments(ctx context.Context, userID uuid.UUID) ([]model.EnrollmentModel, error) {
	var rows []model.EnrollmentModel
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("enrolled_at DESC").Find(&rows).Error
	return rows, err
}

// HasPaidPlan: paket berbayar aktif untuk class_level + stream tertentu.
func (s *CourseService) HasPaidPlan(ctx context.Context, userID uuid.UUID, classLevel, stream string) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&model.EnrollmentModel{}).
		Where("user_id = ? AND payment_status = ? AND expires_at > ?", userID, model.PaymentCompleted, nowFunc()).
		Where("course_type <> ? AND class_level = ? AND stream = ?", model.CourseTypeFree, classLevel, stream).
		Count(&n).Error
	return n > 0, err
}

// CanAccessLecture: lecture gratis, staff, atau paket berbayar aktif untuk subject-nya.
func (s *CourseService) CanAccessLecture(ctx context.Context, userID uuid.UUID, role string, lec *model.CourseLectureModel) (bool, error) {
	if lec.IsFree || constants.IsStaff(role) {
		return true, nil
	}
	sub, err := s.SubjectOfLecture(ctx, lec.ID)
	if err != nil {
		return false, err
	}
	return s.HasPaidPlan(ctx, userID, sub.ClassLevel, sub.Stream)
}

// EnrollFree: paket free langsung aktif tanpa order.
func (s *CourseService) EnrollFree(ctx context.Context, userID uuid.UUID, classLevel, stream string) (*model.EnrollmentModel, error) {
	var out model.EnrollmentModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.EnrollmentModel{}).
			Where("user_id = ? AND course_type = ? AND class_level = ? AND stream = ?", userID, model.CourseTypeFree, classLevel, stream).
			Where("payment_status = ? AND expires_at > ?", model.PaymentCompleted, nowFunc()).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrAlreadyOnPlan
		}
		out = model.EnrollmentModel{
			UserID:        userID,
			CourseType:    model.CourseTypeFree,
			ClassLevel:    classLevel,
			Stream:        stream,
			PaymentStatus: model.PaymentCompleted,
			EnrolledAt:    nowFunc(),
		}
		return tx.Create(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

/* ===================== PROGRESS ===================== */

type ProgressInput struct {
	WatchedSeconds *int
	IsCompleted    *bool
}

// UpsertProgress: satu baris per (user, lecture). Completed → watched minimal durasi penuh.
// Progress tidak pernah mundur (watched_seconds pakai nilai terbesar, completed tetap true).
func (s *CourseService) UpsertProgress(ctx context.Context, userID uuid.UUID, lec *model.CourseLectureModel, in ProgressInput) (*model.LectureProgressModel, error) {
	var out model.LectureProgressModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND lecture_id = ?", userID, lec.ID).
			First(&out).Error
		isNew := errors.Is(err, gorm.ErrRecordNotFound)
		if err != nil && !isNew {
			return err
		}
		if isNew {
			out = model.LectureProgressModel{UserID: userID, LectureID: lec.ID}
		}
		if in.WatchedSeconds != nil && *in.WatchedSeconds > out.WatchedSeconds {
			out.WatchedSeconds = *in.WatchedSeconds
		}
		if in.IsCompleted != nil && *in.IsCompleted {
			out.IsCompleted = true
			if full := lec.DurationMinutes * 60; out.WatchedSeconds < full {
				out.WatchedSeconds = full
			}
		}
		out.LastWatched = nowFunc()
		if !isNew {
			return tx.Save(&out).Error
		}
		// insert paralel untuk pasangan yang sama → jadi update
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "lecture_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_completed", "watched_seconds", "last_watched"}),
		}).Create(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CourseService) Progress(ctx context.Context, userID, lectureID uuid.UUID) (*model.LectureProgressModel, error) {
	var p model.LectureProgressModel
	err := s.DB.WithContext(ctx).Where("user_id = ? AND lecture_id = ?", userID, lectureID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SubjectProgress: map lecture_id → progress untuk satu subject.
func (s *CourseService) SubjectProgress(ctx context.Context, userID, subjectID uuid.UUID) (map[uuid.UUID]model.LectureProgressModel, error) {
	var rows []model.LectureProgressModel
	err := s.DB.WithContext(ctx).
		Joins("JOIN course_lectures ON course_lectures.id = lecture_progress.lecture_id").
		Joins("JOIN chapters ON chapters.id = course_lectures.chapter_id").
		Where("lecture_progress.user_id = ? AND chapters.subject_id = ?", userID, subjectID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]model.LectureProgressModel, len(rows))
	for _, r := range rows {
		out[r.LectureID] = r
	}
	return out, nil
}
