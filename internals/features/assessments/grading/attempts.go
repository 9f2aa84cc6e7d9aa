package grading

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Family: pasangan tabel attempt + answer untuk satu jenis assessment.
// Quiz dan DPP memakai alur yang sama, hanya beda tabel.
type Family struct {
	Attempts string
	Answers  string
}

var (
	QuizFamily = Family{Attempts: "quiz_attempts", Answers: "quiz_answers"}
	DPPFamily  = Family{Attempts: "dpp_attempts", Answers: "dpp_answers"}
)

// Attempt: model attempt (pointer) yang bisa dicek selesai/belum.
type Attempt interface {
	IsCompleted() bool
}

// Question: bagian soal yang dibutuhkan untuk menilai.
type Question struct {
	ID            uuid.UUID
	Type          string
	CorrectAnswer string
	Marks         int
}

// Outcome: hasil finalisasi attempt.
type Outcome struct {
	Score            int
	Percentage       float64
	TimeTakenMinutes int
	CompletedAt      time.Time
}

// LockOwned mengunci row attempt milik user (FOR UPDATE) ke dest.
// Attempt orang lain → ErrAttemptNotFound, sudah selesai → ErrAttemptCompleted.
func LockOwned(tx *gorm.DB, dest Attempt, userID, attemptID uuid.UUID) error {
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", attemptID, userID).
		First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAttemptNotFound
		}
		return err
	}
	if dest.IsCompleted() {
		return ErrAttemptCompleted
	}
	return nil
}

// ApplyAnswer: validasi format sesuai tipe soal, nilai ulang, tulis ke baris jawaban.
func (f Family) ApplyAnswer(tx *gorm.DB, attemptID uuid.UUID, q Question, selected string, now time.Time) error {
	sel := NormalizeAnswer(selected)
	if !ValidAnswer(q.Type, sel) {
		return fmt.Errorf("%w: %q for %s question", ErrInvalidOption, sel, q.Type)
	}
	ok, marks := Evaluate(sel, q.CorrectAnswer, q.Marks)
	return tx.Table(f.Answers).
		Where("attempt_id = ? AND question_id = ?", attemptID, q.ID).
		Updates(map[string]any{
			"selected_answer": sel,
			"is_correct":      ok,
			"marks_obtained":  marks,
			"answered_at":     now,
		}).Error
}

// Finalize: score = SUM(marks_obtained) semua baris jawaban, lalu completed_at dicap
// dengan guard "completed_at IS NULL". 0 row → submit ganda → ErrAttemptCompleted.
func (f Family) Finalize(tx *gorm.DB, attemptID uuid.UUID, startedAt time.Time, total int, now time.Time) (Outcome, error) {
	var score int
	if err := tx.Table(f.Answers).
		Where("attempt_id = ?", attemptID).
		Select("COALESCE(SUM(marks_obtained), 0)").
		Row().Scan(&score); err != nil {
		return Outcome{}, fmt.Errorf("sum score: %w", err)
	}

	out := Outcome{
		Score:            score,
		Percentage:       Percentage(score, total),
		TimeTakenMinutes: ElapsedMinutes(startedAt, now),
		CompletedAt:      now,
	}
	res := tx.Table(f.Attempts).
		Where("id = ? AND completed_at IS NULL", attemptID).
		Updates(map[string]any{
			"completed_at":       out.CompletedAt,
			"score":              out.Score,
			"percentage":         out.Percentage,
			"time_taken_minutes": out.TimeTakenMinutes,
		})
	if res.Error != nil {
		return Outcome{}, res.Error
	}
	if res.RowsAffected == 0 {
		return Outcome{}, ErrAttemptCompleted
	}
	return out, nil
}

// Summarize: statistik attempt selesai. base sudah difilter user (dan assessment kalau ada).
func Summarize(base *gorm.DB) (Summary, error) {
	var agg struct {
		Cnt      int64
		AvgScore float64
		MaxScore int
		AvgPct   float64
		AvgTime  float64
	}
	if err := base.Select(`COUNT(*) AS cnt,
		COALESCE(AVG(score), 0) AS avg_score,
		COALESCE(MAX(score), 0) AS max_score,
		COALESCE(AVG(percentage), 0) AS avg_pct,
		COALESCE(AVG(time_taken_minutes), 0) AS avg_time`).Scan(&agg).Error; err != nil {
		return Summary{}, err
	}
	return Summary{
		Count:             agg.Cnt,
		AverageScore:      Round2(agg.AvgScore),
		BestScore:         agg.MaxScore,
		AveragePercentage: Round2(agg.AvgPct),
		AverageTime:       Round2(agg.AvgTime),
	}, nil
}
