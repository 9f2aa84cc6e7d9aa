package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"smartstudy_backend/internals/features/assessments/grading"
	"smartstudy_backend/internals/features/assessments/quizzes/model"
	courseModel "smartstudy_backend/internals/features/courses/model"
)

type QuizService struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *QuizService {
	return &QuizService{DB: db}
}

type ListFilter struct {
	ChapterID  *uuid.UUID
	SubjectID  *uuid.UUID
	OnlyActive bool
}

func (s *QuizService) List(ctx context.Context, f ListFilter, offset, limit int) ([]model.QuizModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.QuizModel{})
	if f.ChapterID != nil {
		q = q.Where("chapter_id = ?", *f.ChapterID)
	}
	if f.SubjectID != nil {
		q = q.Where("chapter_id IN (?)",
			s.DB.Model(&courseModel.ChapterModel{}).Select("id").Where("subject_id = ?", *f.SubjectID))
	}
	if f.OnlyActive {
		q = q.Where("is_active = ?", true)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.QuizModel
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, total, err
}

func (s *QuizService) Get(ctx context.Context, id uuid.UUID) (*model.QuizModel, error) {
	var quiz model.QuizModel
	if err := s.DB.WithContext(ctx).First(&quiz, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, grading.ErrAssessmentMissing
		}
		return nil, err
	}
	return &quiz, nil
}

func (s *QuizService) Questions(ctx context.Context, quizID uuid.UUID) ([]model.QuizQuestionModel, error) {
	return loadQuestions(s.DB.WithContext(ctx), quizID)
}

func (s *QuizService) Create(ctx context.Context, quiz *model.QuizModel) error {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&courseModel.ChapterModel{}).
		Where("id = ?", quiz.ChapterID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("chapter: %w", gorm.ErrRecordNotFound)
	}
	return s.DB.WithContext(ctx).Create(quiz).Error
}

func (s *QuizService) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*model.QuizModel, error) {
	quiz, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(quiz).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

// Delete: quiz yang sudah punya attempt tidak boleh dihapus.
func (s *QuizService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnlocked(tx, id); err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", id).Delete(&model.QuizQuestionModel{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.QuizModel{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return grading.ErrAssessmentMissing
		}
		return nil
	})
}

/* ===================== QUESTIONS ===================== */

func (s *QuizService) AddQuestions(ctx context.Context, quizID uuid.UUID, qs []*model.QuizQuestionModel) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureQuizExists(tx, quizID); err != nil {
			return err
		}
		if err := ensureUnlocked(tx, quizID); err != nil {
			return err
		}
		if len(qs) > 0 {
			for _, q := range qs {
				q.QuizID = quizID
			}
			if err := tx.Create(&qs).Error; err != nil {
				return err
			}
		}
		return SyncTotalMarks(tx, quizID)
	})
}

func (s *QuizService) UpdateQuestion(ctx context.Context, quizID, questionID uuid.UUID, q *model.QuizQuestionModel) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnlocked(tx, quizID); err != nil {
			return err
		}
		res := tx.Model(&model.QuizQuestionModel{}).
			Where("id = ? AND quiz_id = ?", questionID, quizID).
			Updates(map[string]any{
				"question_text":  q.QuestionText,
				"options":        q.Options,
				"correct_answer": q.CorrectAnswer,
				"explanation":    q.Explanation,
				"marks":          q.Marks,
				"order_index":    q.OrderIndex,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return SyncTotalMarks(tx, quizID)
	})
}

func (s *QuizService) DeleteQuestion(ctx context.Context, quizID, questionID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnlocked(tx, quizID); err != nil {
			return err
		}
		res := tx.Where("id = ? AND quiz_id = ?", questionID, quizID).Delete(&model.QuizQuestionModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return SyncTotalMarks(tx, quizID)
	})
}

// SyncTotalMarks: total_marks = jumlah marks semua soal.
func SyncTotalMarks(tx *gorm.DB, quizID uuid.UUID) error {
	return tx.Exec(`
		UPDATE quizzes
		SET total_marks = (SELECT COALESCE(SUM(marks), 0) FROM quiz_questions WHERE quiz_id = ?)
		WHERE id = ?`, quizID, quizID).Error
}

func ensureQuizExists(tx *gorm.DB, quizID uuid.UUID) error {
	var n int64
	if err := tx.Model(&model.QuizModel{}).Where("id = ?", quizID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return grading.ErrAssessmentMissing
	}
	return nil
}

func ensureUnlocked(tx *gorm.DB, quizID uuid.UUID) error {
	var n int64
	if err := tx.Model(&model.QuizAttemptModel{}).Where("quiz_id = ?", quizID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return grading.ErrAssessmentLocked
	}
	return nil
}

func loadQuestions(db *gorm.DB, quizID uuid.UUID) ([]model.QuizQuestionModel, error) {
	var rows []model.QuizQuestionModel
	err := db.Where("quiz_id = ?", quizID).Order("order_index ASC, created_at ASC").Find(&rows).Error
	return rows, err
}
