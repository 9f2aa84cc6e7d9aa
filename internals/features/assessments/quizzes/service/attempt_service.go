package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"smartstudy_backend/internals/features/assessments/grading"
	"smartstudy_backend/internals/features/assessments/quizzes/model"
)

var nowFunc = func() time.Time { return time.Now().UTC() }

// StartAttempt membuat attempt + satu jawaban kosong per soal.
// Kalau masih ada attempt terbuka, attempt itu yang dikembalikan (resumed=true).
func (s *QuizService) StartAttempt(ctx context.Context, userID, quizID uuid.UUID) (*model.QuizAttemptModel, []model.QuizQuestionModel, bool, error) {
	var (
		att       model.QuizAttemptModel
		questions []model.QuizQuestionModel
		resumed   bool
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var quiz model.QuizModel
		if err := tx.First(&quiz, "id = ?", quizID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return grading.ErrAssessmentMissing
			}
			return err
		}
		if !quiz.IsActive {
			return grading.ErrInactive
		}

		var err error
		questions, err = loadQuestions(tx, quizID)
		if err != nil {
			return err
		}

		err = tx.Where("user_id = ? AND quiz_id = ? AND completed_at IS NULL", userID, quizID).
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

		att = model.QuizAttemptModel{
			UserID:     userID,
			QuizID:     quizID,
			StartedAt:  nowFunc(),
			TotalMarks: total,
		}
		if err := tx.Create(&att).Error; err != nil {
			return fmt.Errorf("create attempt: %w", err)
		}

		answers := make([]model.QuizAnswerModel, 0, len(questions))
		for _, q := range questions {
			answers = append(answers, model.QuizAnswerModel{AttemptID: att.ID, QuestionID: q.ID})
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
		log.Printf("[QUIZ] attempt started id=%s user=%s quiz=%s questions=%d", att.ID, userID, quizID, len(questions))
	}
	return &att, questions, resumed, nil
}

func (s *QuizService) ActiveAttempt(ctx context.Context, userID, quizID uuid.UUID) (*model.QuizAttemptModel, error) {
	var att model.QuizAttemptModel
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ? AND completed_at IS NULL", userID, quizID).
		Order("started_at DESC").First(&att).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, grading.ErrAttemptNotFound
		}
		return nil, err
	}
	return &att, nil
}

// SaveAnswer menyimpan satu jawaban selama attempt masih terbuka.
func (s *QuizService) SaveAnswer(ctx context.Context, userID, attemptID uuid.UUID, r grading.Response) (*model.QuizAnswerModel, error) {
	var ans model.QuizAnswerModel
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

// Submit: satu transaksi. Row attempt dikunci, jawaban dinilai ulang,
// score diturunkan dari jumlah marks_obtained, lalu completed_at dicap
// dengan guard "completed_at IS NULL" supaya submit ganda tidak dobel hitung.
func (s *QuizService) Submit(ctx context.Context, userID, attemptID uuid.UUID, responses []grading.Response) (*model.QuizAttemptModel, error) {
	var out model.QuizAttemptModel
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

		res, err := grading.QuizFamily.Finalize(tx, att.ID, att.StartedAt, att.TotalMarks, nowFunc())
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
	log.Printf("[GRADING] quiz attempt=%s score=%d/%d (%.2f%%)", out.ID, out.Score, out.TotalMarks, out.Percentage)
	return &out, nil
}

type AnswerWithQuestion struct {
	Answer   model.QuizAnswerModel
	Question model.QuizQuestionModel
}

// Result: attempt + jawaban per soal (urut order_index).
func (s *QuizService) Result(ctx context.Context, userID, attemptID uuid.UUID) (*model.QuizAttemptModel, *model.QuizModel, []AnswerWithQuestion, error) {
	db := s.DB.WithContext(ctx)
	var att model.QuizAttemptModel
	if err := db.Where("id = ? AND user_id = ?", attemptID, userID).First(&att).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, grading.ErrAttemptNotFound
		}
		return nil, nil, nil, err
	}
	var quiz model.QuizModel
	if err := db.First(&quiz, "id = ?", att.QuizID).Error; err != nil {
		return nil, nil, nil, err
	}

	var answers []model.QuizAnswerModel
	if err := db.Where("attempt_id = ?", att.ID).Find(&answers).Error; err != nil {
		return nil, nil, nil, err
	}
	qmap, err := attemptQuestions(db, att.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	byQuestion := make(map[uuid.UUID]model.QuizAnswerModel, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	ordered, err := loadQuestions(db, att.QuizID)
	if err != nil {
		return nil, nil, nil, err
	}
	out := make([]AnswerWithQuestion, 0, len(answers))
	for _, q := range ordered {
		if _, ok := qmap[q.ID]; !ok {
			continue
		}
		out = append(out, AnswerWithQuestion{Answer: byQuestion[q.ID], Question: q})
	}
	return &att, &quiz, out, nil
}

type AttemptRow struct {
	model.QuizAttemptModel
	QuizTitle string
}

// MyAttempts: attempt selesai milik user, terbaru dulu, plus statistik.
func (s *QuizService) MyAttempts(ctx context.Context, userID uuid.UUID, quizID *uuid.UUID, offset, limit int) ([]AttemptRow, int64, grading.Summary, error) {
	db := s.DB.WithContext(ctx)
	base := func() *gorm.DB {
		q := db.Model(&model.QuizAttemptModel{}).Where("user_id = ? AND completed_at IS NOT NULL", userID)
		if quizID != nil {
			q = q.Where("quiz_id = ?", *quizID)
		}
		return q
	}

	sum, err := grading.Summarize(base())
	if err != nil {
		return nil, 0, sum, err
	}

	var attempts []model.QuizAttemptModel
	if err := base().Order("completed_at DESC").Offset(offset).Limit(limit).Find(&attempts).Error; err != nil {
		return nil, 0, sum, err
	}

	titles := map[uuid.UUID]string{}
	if len(attempts) > 0 {
		ids := make([]uuid.UUID, 0, len(attempts))
		for _, a := range attempts {
			ids = append(ids, a.QuizID)
		}
		var quizzes []model.QuizModel
		if err := db.Select("id", "title").Where("id IN ?", ids).Find(&quizzes).Error; err != nil {
			return nil, 0, sum, err
		}
		for _, q := range quizzes {
			titles[q.ID] = q.Title
		}
	}
	rows := make([]AttemptRow, 0, len(attempts))
	for _, a := range attempts {
		rows = append(rows, AttemptRow{QuizAttemptModel: a, QuizTitle: titles[a.QuizID]})
	}
	return rows, sum.Count, sum, nil
}

/* ===================== INTERNAL ===================== */

func lockOwnedAttempt(tx *gorm.DB, userID, attemptID uuid.UUID) (*model.QuizAttemptModel, error) {
	var att model.QuizAttemptModel
	if err := grading.LockOwned(tx, &att, userID, attemptID); err != nil {
		return nil, err
	}
	return &att, nil
}

// attemptQuestions: soal yang punya baris jawaban di attempt ini.
func attemptQuestions(db *gorm.DB, attemptID uuid.UUID) (map[uuid.UUID]model.QuizQuestionModel, error) {
	var qs []model.QuizQuestionModel
	if err := db.Where("id IN (?)",
		db.Session(&gorm.Session{NewDB: true}).Model(&model.QuizAnswerModel{}).Select("question_id").Where("attempt_id = ?", attemptID),
	).Find(&qs).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]model.QuizQuestionModel, len(qs))
	for _, q := range qs {
		out[q.ID] = q
	}
	return out, nil
}

func applyAnswer(tx *gorm.DB, attemptID uuid.UUID, q model.QuizQuestionModel, selected string) error {
	return grading.QuizFamily.ApplyAnswer(tx, attemptID, grading.Question{
		ID: q.ID, Type: grading.QuestionMCQ, CorrectAnswer: q.CorrectAnswer, Marks: q.Marks,
	}, selected, nowFunc())
}
