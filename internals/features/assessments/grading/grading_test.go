package grading

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name      string
		selected  string
		correct   string
		marks     int
		wantOK    bool
		wantMarks int
	}{
		{"match", "B", "B", 4, true, 4},
		{"mismatch", "A", "B", 4, false, 0},
		{"blank never correct", "", "", 1, false, 0},
		{"trimmed", " C ", "C", 2, true, 2},
		{"case sensitive", "b", "B", 1, false, 0},
		{"numerical", "3.14", "3.14", 3, true, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, m := Evaluate(tc.selected, tc.correct, tc.marks)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantMarks, m)
		})
	}
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(5, 0))
	assert.Equal(t, 50.0, Percentage(2, 4))
	assert.Equal(t, 33.33, Percentage(1, 3))
	assert.Equal(t, 66.67, Percentage(2, 3))
	assert.Equal(t, 100.0, Percentage(7, 7))
}

func TestElapsedMinutes(t *testing.T) {
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, ElapsedMinutes(start, start.Add(59*time.Second)))
	assert.Equal(t, 12, ElapsedMinutes(start, start.Add(12*time.Minute+40*time.Second)))
	assert.Equal(t, 0, ElapsedMinutes(start, start.Add(-time.Hour)))
}

func TestValidAnswer(t *testing.T) {
	assert.True(t, ValidAnswer(QuestionMCQ, "A"))
	assert.True(t, ValidAnswer(QuestionMCQ, ""))
	assert.False(t, ValidAnswer(QuestionMCQ, "E"))
	assert.True(t, ValidAnswer(QuestionTrueFalse, "False"))
	assert.False(t, ValidAnswer(QuestionTrueFalse, "yes"))
	assert.True(t, ValidAnswer(QuestionNumerical, "42"))
	assert.False(t, ValidAnswer("essay", "x"))
}

func TestToFiberError(t *testing.T) {
	cases := map[error]int{
		ErrAttemptNotFound:  fiber.StatusNotFound,
		ErrAttemptCompleted: fiber.StatusConflict,
		ErrUnknownQuestion:  fiber.StatusBadRequest,
		ErrInvalidOption:    fiber.StatusUnprocessableEntity,
		ErrNoQuestions:      fiber.StatusUnprocessableEntity,
		ErrNotEnrolled:      fiber.StatusForbidden,
		ErrAssessmentLocked: fiber.StatusConflict,
	}
	for err, code := range cases {
		wrapped := fmt.Errorf("submit: %w", err)
		fe := ToFiberError(wrapped)
		if assert.NotNil(t, fe, err.Error()) {
			assert.Equal(t, code, fe.Code)
		}
	}
	assert.Nil(t, ToFiberError(errors.New("boom")))
}
