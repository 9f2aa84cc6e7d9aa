package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smartstudy_backend/internals/constants"
	"smartstudy_backend/internals/features/assessments/dpps/model"
	"smartstudy_backend/internals/features/assessments/grading"
	batchModel "smartstudy_backend/internals/features/batches/model"
	batchRepo "smartstudy_backend/internals/features/batches/repository"
)

type DPPService struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *DPPService {
	return &DPPService{DB: db}
}

func (s *DPPService) Get(ctx context.Context, id uuid.UUID) (*model.DPPModel, error) {
	var dpp model.DPPModel
	if err := s.DB.WithContext(ctx).First(&dpp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, grading.ErrAssessmentMissing
		}
		return nil, err
	}
	return &dpp, nil
}

func (s *DPPService) GetByLecture(ctx context.Context, lectureID uuid.UUID) (*model.DPPModel, error) {
	var dpp model.DPPModel
	if err := s.DB.WithContext(ctx).First(&dpp, "lecture_id = ?", lectureID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, grading.ErrAssessmentMissing
		}
		return nil, err
	}
	return &dpp, nil
}

// CheckAccess: staff bebas, siswa harus terdaftar di batch pemilik lecture.
func (s *DPPService) CheckAccess(ctx context.Context, userID uuid.UUID, role string, dpp *model.DPPModel) error {
	if constants.IsStaff(role) {
		return nil
	}
	ok, err := batchRepo.IsEnrolledForLecture(ctx, s.DB, userID, dpp.LectureID)
	if err != nil {
		return err
	}
	if !ok {
		return grading.ErrNotEnrolled
	}
	return nil
}

func (s *DPPService) Questions(ctx context.Context, dppID uuid.UUID) ([]model.DPPQuestionModel, error) {
	return loadQuestions(s.DB.WithContext(ctx), dppID)
}

func (s *DPPService) Create(ctx context.Context, dpp *model.DPPModel) error {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&batchModel.BatchLectureModel{}).
		Where("id = ?", dpp.LectureID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("lecture: %w", gorm.ErrRecordNotFound)
	}
	return s.DB.WithContext(ctx).Create(dpp).Error
}

func (s *DPPService) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*model.DPPModel, error) {
	dpp, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(dpp).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

func (s *DPPService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnlocked(tx, id); err != nil {
			return err
		}
		if err := tx.Where("dpp_id = ?", id).Delete(&model.DPPQuestionModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("dpp_id = ?", id).Delete(&model.DPPSolutionModel{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.DPPModel{}, "id = ?", id)
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

func (s *DPPService) AddQuestions(ctx context.Context, dppID uuid.UUID, qs []*model.DPPQuestionModel) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureDPPExists(tx, dppID); err != nil {
			return err
		}
		if err := ensureUnlocked(tx, dppID); err != nil {
			return err
		}
		if len(qs) > 0 {
			for _, q := range qs {
				q.DPPID = dppID
			}
			if err := tx.Create(&qs).Error; err != nil {
				return err
			}
		}
		return SyncTotalMarks(tx, dppID)
	})
}

func (s *DPPService) UpdateQuestion(ctx context.Context, dppID, questionID uuid.UUID, q *model.DPPQuestionModel) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnlocked(tx, dppID); err != nil {
			return err
		}
		res := tx.Model(&model.DPPQuestionModel{}).
			Where("id = ? AND dpp_id = ?", questionID, dppID).
			Updates(map[string]any{
				"question_type":  q.QuestionType,
				"question_text":  q.QuestionText,
				"image_url":      q.ImageURL,
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
		return SyncTotalMarks(tx, dppID)
	})
}

func (s *DPPService) DeleteQuestion(ctx context.Context, dppID, questionID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnlocked(tx, dppID); err != nil {
			return err
		}
		res := tx.Where("id = ? AND dpp_id = ?", questionID, dppID).Delete(&model.DPPQuestionModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return SyncTotalMarks(tx, dppID)
	})
}

/* ===================== SOLUTION ===================== */

// Solution: nil tanpa error kalau belum ada.
func (s *DPPService) Solution(ctx context.Context, dppID uuid.UUID) (*model.DPPSolutionModel, error) {
	var sol model.DPPSolutionModel
	err := s.DB.WithContext(ctx).First(&sol, "dpp_id = ?", dppID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sol, nil
}

// SolutionUnlocked: staff selalu, siswa setelah punya attempt yang selesai.
func (s *DPPService) SolutionUnlocked(ctx context.Context, userID uuid.UUID, role string, dppID uuid.UUID) (bool, error) {
	if constants.IsStaff(role) {
		return true, nil
	}
	var n int64
	err := s.DB.WithContext(ctx).Model(&model.DPPAttemptModel{}).
		Where("user_id = ? AND dpp_id = ? AND completed_at IS NOT NULL", userID, dppID).
		Count(&n).Error
	return n > 0, err
}

// UpsertSolution: field kosong tidak menimpa nilai lama. Mengembalikan URL file lama
// yang tergantikan supaya controller bisa memindahkannya ke trash.
func (s *DPPService) UpsertSolution(ctx context.Context, dppID uuid.UUID, in model.DPPSolutionModel) (*model.DPPSolutionModel, []string, error) {
	var (
		out      model.DPPSolutionModel
		replaced []string
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureDPPExists(tx, dppID); err != nil {
			return err
		}
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&out, "dpp_id = ?", dppID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			in.DPPID = dppID
			out = in
			return tx.Create(&out).Error
		}
		if err != nil {
			return err
		}
		if in.SolutionPDF != "" {
			if out.SolutionPDF != "" && out.SolutionPDF != in.SolutionPDF {
				replaced = append(replaced, out.SolutionPDF)
			}
			out.SolutionPDF = in.SolutionPDF
		}
		if in.VideoFile != "" {
			if out.VideoFile != "" && out.VideoFile != in.VideoFile {
				replaced = append(replaced, out.VideoFile)
			}
			out.VideoFile = in.VideoFile
		}
		if in.VideoType != "" {
			out.VideoType = in.VideoType
		}
		if in.VideoURL != "" {
			out.VideoURL = in.VideoURL
		}
		return tx.Save(&out).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &out, replaced, nil
}

func (s *DPPService) DeleteSolution(ctx context.Context, dppID uuid.UUID) (*model.DPPSolutionModel, error) {
	var sol model.DPPSolutionModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sol, "dpp_id = ?", dppID).Error; err != nil {
			return err
		}
		return tx.Delete(&sol).Error
	})
	if err != nil {
		return nil, err
	}
	return &sol, nil
}

/* ===================== INTERNAL ===================== */

func SyncTotalMarks(tx *gorm.DB, dppID uuid.UUID) error {
	return tx.Exec(`
		UPDATE dpps
		SET total_marks = (SELECT COALESCE(SUM(marks), 0) FROM dpp_questions WHERE dpp_id = ?)
		WHERE id = ?`, dppID, dppID).Error
}

func ensureDPPExists(tx *gorm.DB, dppID uuid.UUID) error {
	var n int64
	if err := tx.Model(&model.DPPModel{}).Where("id = ?", dppID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return grading.ErrAssessmentMissing
	}
	return nil
}

func ensureUnlocked(tx *gorm.DB, dppID uuid.UUID) error {
	var n int64
	if err := tx.Model(&model.DPPAttemptModel{}).Where("dpp_id = ?", dppID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return grading.ErrAssessmentLocked
	}
	return nil
}

func loadQuestions(db *gorm.DB, dppID uuid.UUID) ([]model.DPPQuestionModel, error) {
	var qs []model.DPPQuestionModel
	err := db.Where("dpp_id = ?", dppID).Order("order_index ASC, created_at ASC").Find(&qs).Error
	return qs, err
}
