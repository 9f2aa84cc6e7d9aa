package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"smartstudy_backend/internals/constants"
	"smartstudy_backend/internals/features/assessments/grading"
	"smartstudy_backend/internals/features/assessments/quizzes/model"
	"smartstudy_backend/internals/testdb"
)

type quizFixture struct {
	svc       *QuizService
	db        *gorm.DB
	quiz      model.QuizModel
	questions []*model.QuizQuestionModel
	student   uuid.UUID
}

func newQuizFixture(t *testing.T) quizFixture {
	t.Helper()
	db := testdb.New(t)
	svc := New(db)
	ctx := context.Background()

	_, ch := testdb.CreateChapter(t, db)
	quiz := model.QuizModel{ChapterID: ch.ID, Title: "Kinematics basics", IsActive: true}
	require.NoError(t, svc.Create(ctx, &quiz))

	opts := model.EncodeOptions(map[string]string{"A": "1", "B": "2", "C": "3", "D": "4"})
	qs := []*model.QuizQuestionModel{
		{QuestionText: "q1", Options: opts, CorrectAnswer: "A", Marks: 1, OrderIndex: 1},
		{QuestionText: "q2", Options: opts, CorrectAnswer: "B", Marks: 2, OrderIndex: 2},
		{QuestionText: "q3", Options: opts, CorrectAnswer: "C", Marks: 3, OrderIndex: 3},
	}
	require.NoError(t, svc.AddQuestions(ctx, quiz.ID, qs))

	student := testdb.CreateUser(t, db, constants.RoleStudent)
	return quizFixture{svc: svc, db: db, quiz: quiz, questions: qs, student: student.ID}
}

func TestAddQuestionsSyncsTotalMarks(t *testing.T) {
	f := newQuizFixture(t)
	got, err := f.svc.Get(context.Background(), f.quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.TotalMarks)
}

func TestStartAttemptCreatesOneAnswerPerQuestion(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()

	att, questions, resumed, err := f.svc.StartAttempt(ctx, f.student, f.quiz.ID)
	require.NoError(t, err)
	assert.False(t, resumed)
	assert.Len(t, questions, 3)
	assert.Equal(t, 6, att.TotalMarks)
	assert.Nil(t, att.CompletedAt)

	var n int64
	require.NoError(t, f.db.Model(&model.QuizAnswerModel{}).Where("attempt_id = ?", att.ID).Count(&n).Error)
	assert.EqualValues(t, 3, n)

	// attempt terbuka dipakai ulang
	again, _, resumed, err := f.svc.StartAttempt(ctx, f.student, f.quiz.ID)
	require.NoError(t, err)
	assert.True(t, resumed)
	assert.Equal(t, att.ID, again.ID)

	require.NoError(t, f.db.Model(&model.QuizAnswerModel{}).Count(&n).Error)
	assert.EqualValues(t, 3, n)
}

func TestStartAttemptWithoutQuestions(t *testing.T) {
	f := newQuizFixture(t)
	empty := model.QuizModel{ChapterID: f.quiz.ChapterID, Title: "empty", IsActive: true}
	require.NoError(t, f.svc.Create(context.Background(), &empty))

	_, _, _, err := f.svc.StartAttempt(context.Background(), f.student, empty.ID)
	assert.ErrorIs(t, err, grading.ErrNoQuestions)
}

func TestStartAttemptInactiveQuiz(t *testing.T) {
	f := newQuizFixture(t)
	_, err := f.svc.Update(context.Background(), f.quiz.ID, map[string]any{"is_active": false})
	require.NoError(t, err)

	_, _, _, err = f.svc.StartAttempt(context.Background(), f.student, f.quiz.ID)
	assert.ErrorIs(t, err, grading.ErrInactive)
}

func TestSubmitScoresAndFreezesAttempt(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()

	att, _, _, err := f.svc.StartAttempt(ctx, f.student, f.quiz.ID)
	require.NoError(t, err)

	_, err = f.svc.SaveAnswer(ctx, f.student, att.ID, grading.Response{QuestionID: f.questions[0].ID, SelectedAnswer: "A"})
	require.NoError(t, err)

	done, err := f.svc.Submit(ctx, f.student, att.ID, []grading.Response{
		{QuestionID: f.questions[1].ID, SelectedAnswer: "B"},
		{QuestionID: f.questions[2].ID, SelectedAnswer: "D"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, done.Score)
	assert.Equal(t, 50.0, done.Percentage)
	require.NotNil(t, done.CompletedAt)
	assert.GreaterOrEqual(t, done.TimeTakenMinutes, 0)

	// score == sum(marks_obtained)
	var answers []model.QuizAnswerModel
	require.NoError(t, f.db.Where("attempt_id = ?", att.ID).Find(&answers).Error)
	sum := 0
	for _, a := range answers {
		sum += a.MarksObtained
		q := findQuestion(f.questions, a.QuestionID)
		assert.Equal(t, a.SelectedAnswer != "" && a.SelectedAnswer == q.CorrectAnswer, a.IsCorrect)
	}
	assert.Equal(t, done.Score, sum)

	// submit kedua ditolak, skor tidak berubah
	_, err = f.svc.Submit(ctx, f.student, att.ID, []grading.Response{{QuestionID: f.questions[2].ID, SelectedAnswer: "C"}})
	assert.ErrorIs(t, err, grading.ErrAttemptCompleted)

	var reloaded model.QuizAttemptModel
	require.NoError(t, f.db.First(&reloaded, "id = ?", att.ID).Error)
	assert.Equal(t, 3, reloaded.Score)

	// save answer setelah selesai juga ditolak
	_, err = f.svc.SaveAnswer(ctx, f.student, att.ID, grading.Response{QuestionID: f.questions[2].ID, SelectedAnswer: "C"})
	assert.ErrorIs(t, err, grading.ErrAttemptCompleted)
}

func TestConcurrentSubmitCountsOnce(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()
	att, _, _, err := f.svc.StartAttempt(ctx, f.student, f.quiz.ID)
	require.NoError(t, err)

	responses := []grading.Response{
		{QuestionID: f.questions[0].ID, SelectedAnswer: "A"},
		{QuestionID: f.questions[1].ID, SelectedAnswer: "B"},
		{QuestionID: f.questions[2].ID, SelectedAnswer: "C"},
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Submit(ctx, f.student, att.ID, responses)
		}(i)
	}
	wg.Wait()

	ok, conflict := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, grading.ErrAttemptCompleted):
			conflict++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflict)

	var reloaded model.QuizAttemptModel
	require.NoError(t, f.db.First(&reloaded, "id = ?", att.ID).Error)
	assert.Equal(t, 6, reloaded.Score)
	assert.Equal(t, 100.0, reloaded.Percentage)
}

func TestSubmitRejectsForeignAttemptAndBadInput(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()
	att, _, _, err := f.svc.StartAttempt(ctx, f.student, f.quiz.ID)
	require.NoError(t, err)

	other := testdb.CreateUser(t, f.db, constants.RoleStudent)
	_, err = f.svc.Submit(ctx, other.ID, att.ID, nil)
	assert.ErrorIs(t, err, grading.ErrAttemptNotFound)

	_, err = f.svc.Submit(ctx, f.student, att.ID, []grading.Response{{QuestionID: uuid.New(), SelectedAnswer: "A"}})
	assert.ErrorIs(t, err, grading.ErrUnknownQuestion)

	_, err = f.svc.Submit(ctx, f.student, att.ID, []grading.Response{{QuestionID: f.questions[0].ID, SelectedAnswer: "E"}})
	assert.ErrorIs(t, err, grading.ErrInvalidOption)

	// transaksi gagal → attempt masih terbuka
	var reloaded model.QuizAttemptModel
	require.NoError(t, f.db.First(&reloaded, "id = ?", att.ID).Error)
	assert.Nil(t, reloaded.CompletedAt)
}

func TestEmptySubmitScoresZero(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()
	att, _, _, err := f.svc.StartAttempt(ctx, f.student, f.quiz.ID)
	require.NoError(t, err)

	done, err := f.svc.Submit(ctx, f.student, att.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, done.Score)
	assert.Equal(t, 0.0, done.Percentage)
}

func TestQuestionsLockedOnceAttempted(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()
	_, _, _, err := f.svc.StartAttempt(ctx, f.student, f.quiz.ID)
	require.NoError(t, err)

	extra := &model.QuizQuestionModel{QuestionText: "q4", CorrectAnswer: "A", Marks: 1}
	assert.ErrorIs(t, f.svc.AddQuestions(ctx, f.quiz.ID, []*model.QuizQuestionModel{extra}), grading.ErrAssessmentLocked)
	assert.ErrorIs(t, f.svc.DeleteQuestion(ctx, f.quiz.ID, f.questions[0].ID), grading.ErrAssessmentLocked)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.quiz.ID), grading.ErrAssessmentLocked)
}

func TestResultAndMyAttempts(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()

	for _, picks := range [][]string{{"A", "B", "C"}, {"A", "", ""}} {
		att, _, _, err := f.svc.StartAttempt(ctx, f.student, f.quiz.ID)
		require.NoError(t, err)
		var rs []grading.Response
		for i, p := range picks {
			rs = append(rs, grading.Response{QuestionID: f.questions[i].ID, SelectedAnswer: p})
		}
		_, err = f.svc.Submit(ctx, f.student, att.ID, rs)
		require.NoError(t, err)
	}
	// attempt terbuka tidak ikut dihitung
	open, _, _, err := f.svc.StartAttempt(ctx, f.student, f.quiz.ID)
	require.NoError(t, err)

	rows, total, stats, err := f.svc.MyAttempts(ctx, f.student, nil, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "Kinematics basics", rows[0].QuizTitle)
	assert.EqualValues(t, 2, stats.Count)
	assert.Equal(t, 6, stats.BestScore)
	assert.Equal(t, 3.5, stats.AverageScore)
	assert.InDelta(t, 58.33, stats.AveragePercentage, 0.011)

	att, quiz, answers, err := f.svc.Result(ctx, f.student, rows[0].ID)
	require.NoError(t, err)
	assert.Equal(t, f.quiz.ID, quiz.ID)
	assert.True(t, att.IsCompleted())
	require.Len(t, answers, 3)
	assert.Equal(t, "q1", answers[0].Question.QuestionText)

	_, _, _, err = f.svc.Result(ctx, uuid.New(), open.ID)
	assert.ErrorIs(t, err, grading.ErrAttemptNotFound)
}

func findQuestion(qs []*model.QuizQuestionModel, id uuid.UUID) *model.QuizQuestionModel {
	for _, q := range qs {
		if q.ID == id {
			return q
		}
	}
	return nil
}
