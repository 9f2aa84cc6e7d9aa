package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"smartstudy_backend/internals/features/assessments/dpps/model"
	"smartstudy_backend/internals/features/assessments/grading"
)

var nowFunc = func() time.Time { return time.Now().UTC() }

// StartAttempt: cek enrollment (siswa), lalu attempt + satu jawaban kosong per soal
// dalam satu transaksi. Attempt terbuka yang sudah ada dikembalikan apa adanya.
func (s *DPPService) StartAttempt(ctx context.Context, userID uuid.UUID, role string, dppID uuid.UUID) (*model.DPPAttemptModel, []model.DPPQuestionModel, bool, error) {
	dpp, err := s.Get(ctx, dppID)
	if err != nil {
		return nil, nil, false, err
	}
	if !dpp.IsActive {
		return nil, nil, false, grading.ErrInactive
	}
	if err := s.CheckAccess(ctx, userID, role, dpp); err != nil {
		return nil, nil, false, err
	}

	var (
		att       model.DPPAttemptModel
		questions []model.DPPQuestionModel
		resumed   bool
	)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		questions, err = loadQuestions(tx, dppID)
		if err != nil {
			return err
		}

		err = tx.Where("user_id = ? AND dpp_id = ? AND completed_at IS NULL", userID, dppID).
			Order("started_at DESC").First(&att).Error
		if err == nil {
			resumed = true
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if len(questions) == 0 {
			return grading.ErrNoQuestions
		}
		total := 0
		for _, q := range questions {
			total += q.Marks
		}
		att = model.DPPAttemptModel{
			UserID:     userID,
			DPPID:      dppID,
			StartedAt:  nowFunc(),
			TotalMarks: total,
		}
		if err := tx.Create(&att).Error; err != nil {
			return fmt.Errorf("create attempt: %w", err)
		}
		answers := make([]model.DPPAnswerModel, 0, len(questions))
		for _, q := range questions {
			answers = append(answers, model.DPPAnswerModel{AttemptID: att.ID, QuestionID: q.ID})
		}
		if err := tx.Create(&answers).Error; err != nil {
			return fmt.Errorf("create answers: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, false, err
	}
	if !resumed {
		log.Printf("[DPP] attempt started id=%s user=%s dpp=%s questions=%d", att.ID, userID, dppID, len(questions))
	}
	return &att, questions, resumed, nil
}

func (s *DPPService) ActiveAttempt(ctx context.Context, userID, dppID uuid.UUID) (*model.DPPAttemptModel, error) {
	var att model.DPPAttemptModel
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND dpp_id = ? AND completed_at IS NULL", userID, dppID).
		Order("started_at DESC").First(&att).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, grading.ErrAttemptNotFound
		}
		return nil, err
	}
	return &att, nil
}

func (s *DPPService) SaveAnswer(ctx context.Context, userID, attemptID uuid.UUID, r grading.Response) (*model.DPPAnswerModel, error) {
	var ans model.DPPAnswerModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		att, err := lockOwnedAttempt(tx, userID, attemptID)
		if err != nil {
			return err
		}
		qmap, err := attemptQuestions(tx, att.ID)
		if err != nil {
			return err
		}
		q, ok := qmap[r.QuestionID]
		if !ok {
			return grading.ErrUnknownQuestion
		}
		if err := applyAnswer(tx, att.ID, q, r.SelectedAnswer); err != nil {
			return err
		}
		return tx.Where("attempt_id = ? AND question_id = ?", att.ID, q.ID).First(&ans).Error
	})
	if err != nil {
		return nil, err
	}
	return &ans, nil
}

// Submit: alurnya sama dengan quiz (lock → nilai → SUM → guarded update).
func (s *DPPService) Submit(ctx context.Context, userID, attemptID uuid.UUID, responses []grading.Response) (*model.DPPAttemptModel, error) {
	var out model.DPPAttemptModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		att, err := lockOwnedAttempt(tx, userID, attemptID)
		if err != nil {
			return err
		}
		qmap, err := attemptQuestions(tx, att.ID)
		if err != nil {
			return err
		}
		for _, r := range responses {
			q, ok := qmap[r.QuestionID]
			if !ok {
				return fmt.Errorf("%w: %s", grading.ErrUnknownQuestion, r.QuestionID)
			}
			if err := applyAnswer(tx, att.ID, q, r.SelectedAnswer); err != nil {
				return err
			}
		}

		res, err := grading.DPPFamily.Finalize(tx, att.ID, att.StartedAt, att.TotalMarks, nowFunc())
		if err != nil {
			return err
		}
		att.CompletedAt = &res.CompletedAt
		att.Score = res.Score
		att.Percentage = res.Percentage
		att.TimeTakenMinutes = res.TimeTakenMinutes
		out = *att
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[GRADING] dpp attempt=%s score=%d/%d (%.2f%%)", out.ID, out.Score, out.TotalMarks, out.Percentage)
	return &out, nil
}

type AnswerWithQuestion struct {
	Answer   model.DPPAnswerModel
	Question model.DPPQuestionModel
}

func (s *DPPService) Result(ctx context.Context, userID, attemptID uuid.UUID) (*model.DPPAttemptModel, *model.DPPModel, []AnswerWithQuestion, error) {
	db := s.DB.WithContext(ctx)
	var att model.DPPAttemptModel
	if err := db.Where("id = ? AND user_id = ?", attemptID, userID).First(&att).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, grading.ErrAttemptNotFound
		}
		return nil, nil, nil, err
	}
	var dpp model.DPPModel
	if err := db.First(&dpp, "id = ?", att.DPPID).Error; err != nil {
		return nil, nil, nil, err
	}

	var answers []model.DPPAnswerModel
	if err := db.Where("attempt_id = ?", att.ID).Find(&answers).Error; err != nil {
		return nil, nil, nil, err
	}
	byQuestion := make(map[uuid.UUID]model.DPPAnswerModel, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}
	ordered, err := loadQuestions(db, att.DPPID)
	if err != nil {
		return nil, nil, nil, err
	}
	out := make([]AnswerWithQuestion, 0, len(answers))
	for _, q := range ordered {
		a, ok := byQuestion[q.ID]
		if !ok {
			continue
		}
		out = append(out, AnswerWithQuestion{Answer: a, Question: q})
	}
	return &att, &dpp, out, nil
}

type AttemptRow struct {
	model.DPPAttemptModel
	DPPTitle string
}

func (s *DPPService) MyAttempts(ctx context.Context, userID uuid.UUID, dppID *uuid.UUID, offset, limit int) ([]AttemptRow, int64, grading.Summary, error) {
	db := s.DB.WithContext(ctx)
	base := func() *gorm.DB {
		q := db.Model(&model.DPPAttemptModel{}).Where("user_id = ? AND completed_at IS NOT NULL", userID)
		if dppID != nil {
			q = q.Where("dpp_id = ?", *dppID)
		}
		return q
	}

	sum, err := grading.Summarize(base())
	if err != nil {
		return nil, 0, sum, err
	}

	var attempts []model.DPPAttemptModel
	if err := base().Order("completed_at DESC").Offset(offset).Limit(limit).Find(&attempts).Error; err != nil {
		return nil, 0, sum, err
	}
	titles := map[uuid.UUID]string{}
	if len(attempts) > 0 {
		ids := make([]uuid.UUID, 0, len(attempts))
		for _, a := range attempts {
			ids = append(ids, a.DPPID)
		}
		var dpps []model.DPPModel
		if err := db.Select("id", "title").Where("id IN ?", ids).Find(&dpps).Error; err != nil {
			return nil, 0, sum, err
		}
		for _, d := range dpps {
			titles[d.ID] = d.Title
		}
	}
	rows := make([]AttemptRow, 0, len(attempts))
	for _, a := range attempts {
		rows = append(rows, AttemptRow{DPPAttemptModel: a, DPPTitle: titles[a.DPPID]})
	}
	return rows, sum.Count, sum, nil
}

/* ===================== INTERNAL ===================== */

func lockOwnedAttempt(tx *gorm.DB, userID, attemptID uuid.UUID) (*model.DPPAttemptModel, error) {
	var att model.DPPAttemptModel
	if err := grading.LockOwned(tx, &att, userID, attemptID); err != nil {
		return nil, err
	}
	return &att, nil
}

func attemptQuestions(db *gorm.DB, attemptID uuid.UUID) (map[uuid.UUID]model.DPPQuestionModel, error) {
	var qs []model.DPPQuestionModel
	if err := db.Where("id IN (?)",
		db.Session(&gorm.Session{NewDB: true}).Model(&model.DPPAnswerModel{}).Select("question_id").Where("attempt_id = ?", attemptID),
	).Find(&qs).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]model.DPPQuestionModel, len(qs))
	for _, q := range qs {
		out[q.ID] = q
	}
	return out, nil
}

// applyAnswer: validasi format mengikuti tipe soal (mcq A-D, true_false, numerical).
func applyAnswer(tx *gorm.DB, attemptID uuid.UUID, q model.DPPQuestionModel, selected string) error {
	return grading.DPPFamily.ApplyAnswer(tx, attemptID, grading.Question{
		ID: q.ID, Type: q.QuestionType, CorrectAnswer: q.CorrectAnswer, Marks: q.Marks,
	}, selected, nowFunc())
}
