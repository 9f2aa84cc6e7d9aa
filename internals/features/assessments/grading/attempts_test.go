package grading_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"smartstudy_backend/internals/constants"
	"smartstudy_backend/internals/features/assessments/grading"
	quizModel "smartstudy_backend/internals/features/assessments/quizzes/model"
	"smartstudy_backend/internals/testdb"
)

func TestFamilyLockApplyFinalize(t *testing.T) {
	db := testdb.New(t)
	_, ch := testdb.CreateChapter(t, db)

	quiz := quizModel.QuizModel{ChapterID: ch.ID, Title: "Optics", IsActive: true}
	require.NoError(t, db.Create(&quiz).Error)
	q := quizModel.QuizQuestionModel{
		QuizID:        quiz.ID,
		QuestionText:  "focal length sign?",
		Options:       quizModel.EncodeOptions(map[string]string{"A": "+", "B": "-", "C": "0", "D": "inf"}),
		CorrectAnswer: "B",
		Marks:         4,
		OrderIndex:    1,
	}
	require.NoError(t, db.Create(&q).Error)

	student := testdb.CreateUser(t, db, constants.RoleStudent)
	att := quizModel.QuizAttemptModel{
		UserID:     student.ID,
		QuizID:     quiz.ID,
		StartedAt:  time.Now().UTC().Add(-7 * time.Minute),
		TotalMarks: 8,
	}
	require.NoError(t, db.Create(&att).Error)
	require.NoError(t, db.Create(&quizModel.QuizAnswerModel{AttemptID: att.ID, QuestionID: q.ID}).Error)

	gq := grading.Question{ID: q.ID, Type: grading.QuestionMCQ, CorrectAnswer: q.CorrectAnswer, Marks: q.Marks}
	now := time.Now().UTC()

	err := db.Transaction(func(tx *gorm.DB) error {
		var locked quizModel.QuizAttemptModel
		assert.ErrorIs(t, grading.LockOwned(tx, &locked, uuid.New(), att.ID), grading.ErrAttemptNotFound)
		require.NoError(t, grading.LockOwned(tx, &locked, student.ID, att.ID))

		assert.ErrorIs(t, grading.QuizFamily.ApplyAnswer(tx, att.ID, gq, "E", now), grading.ErrInvalidOption)
		require.NoError(t, grading.QuizFamily.ApplyAnswer(tx, att.ID, gq, " B ", now))

		out, err := grading.QuizFamily.Finalize(tx, att.ID, locked.StartedAt, locked.TotalMarks, now)
		require.NoError(t, err)
		assert.Equal(t, 4, out.Score)
		assert.Equal(t, 50.0, out.Percentage)
		assert.Equal(t, 7, out.TimeTakenMinutes)

		// kedua kalinya guard completed_at menolak
		_, err = grading.QuizFamily.Finalize(tx, att.ID, locked.StartedAt, locked.TotalMarks, now)
		assert.ErrorIs(t, err, grading.ErrAttemptCompleted)
		return nil
	})
	require.NoError(t, err)

	var ans quizModel.QuizAnswerModel
	require.NoError(t, db.Where("attempt_id = ?", att.ID).First(&ans).Error)
	assert.Equal(t, "B", ans.SelectedAnswer)
	assert.True(t, ans.IsCorrect)
	assert.Equal(t, 4, ans.MarksObtained)

	var done quizModel.QuizAttemptModel
	assert.ErrorIs(t, grading.LockOwned(db, &done, student.ID, att.ID), grading.ErrAttemptCompleted)

	sum, err := grading.Summarize(db.Model(&quizModel.QuizAttemptModel{}).
		Where("user_id = ? AND completed_at IS NOT NULL", student.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(1), sum.Count)
	assert.Equal(t, 4, sum.BestScore)
	assert.Equal(t, 50.0, sum.AveragePercentage)
}
