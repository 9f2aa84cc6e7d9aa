// Package grading berisi aturan penilaian yang dipakai bersama oleh quiz dan DPP.
package grading

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	QuestionMCQ       = "mcq"
	QuestionNumerical = "numerical"
	QuestionTrueFalse = "true_false"
)

var mcqKeys = []string{"A", "B", "C", "D"}

// NormalizeAnswer: spasi di pinggir dibuang, selain itu apa adanya.
func NormalizeAnswer(s string) string {
	return strings.TrimSpace(s)
}

// Evaluate: jawaban kosong tidak pernah benar.
func Evaluate(selected, correct string, marks int) (bool, int) {
	selected = NormalizeAnswer(selected)
	if selected == "" || selected != NormalizeAnswer(correct) {
		return false, 0
	}
	return true, marks
}

// Percentage dibulatkan 2 desimal; 0 kalau total 0.
func Percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(score)*100/float64(total)*100) / 100
}

// ElapsedMinutes dibulatkan ke bawah, minimal 0.
func ElapsedMinutes(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

func IsMCQKey(s string) bool {
	for _, k := range mcqKeys {
		if s == k {
			return true
		}
	}
	return false
}

// ValidAnswer cek format jawaban per tipe soal. Jawaban kosong selalu valid (dikosongkan).
func ValidAnswer(questionType, answer string) bool {
	a := NormalizeAnswer(answer)
	if a == "" {
		return true
	}
	switch questionType {
	case QuestionMCQ:
		return IsMCQKey(a)
	case QuestionTrueFalse:
		return a == "True" || a == "False"
	case QuestionNumerical:
		return len(a) <= 100
	}
	return false
}

func ValidQuestionType(t string) bool {
	switch t {
	case QuestionMCQ, QuestionNumerical, QuestionTrueFalse:
		return true
	}
	return false
}

// Summary dipakai untuk statistik "my attempts".
type Summary struct {
	Count             int64   `json:"count"`
	AverageScore      float64 `json:"average_score"`
	BestScore         int     `json:"best_score"`
	AveragePercentage float64 `json:"average_percentage"`
	AverageTime       float64 `json:"average_time_minutes"`
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Response: satu jawaban yang dikirim user saat save/submit.
type Response struct {
	QuestionID     uuid.UUID `json:"question_id" validate:"required"`
	SelectedAnswer string    `json:"selected_answer" validate:"max=100"`
}
