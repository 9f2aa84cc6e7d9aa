package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartstudy_backend/internals/features/assessments/practice/model"
	"smartstudy_backend/internals/testdb"
)

func TestMatchAnswer(t *testing.T) {
	assert.True(t, MatchAnswer(" 9.8 m/s2 ", "9.8 m/s2"))
	assert.True(t, MatchAnswer("Newton", "newton"))
	assert.False(t, MatchAnswer("", ""))
	assert.False(t, MatchAnswer("9.81", "9.8"))
}

func TestListByChapterAndCheck(t *testing.T) {
	db := testdb.New(t)
	svc := New(db)
	ctx := context.Background()
	_, ch := testdb.CreateChapter(t, db)

	day1 := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	key := "42"
	require.NoError(t, svc.Create(ctx, &model.DailyPracticeProblemModel{
		ChapterID: ch.ID, Title: "p1", QuestionText: "6*7", Difficulty: model.DifficultyEasy, DateAssigned: day1, Answer: &key,
	}))
	require.NoError(t, svc.Create(ctx, &model.DailyPracticeProblemModel{
		ChapterID: ch.ID, Title: "p2", QuestionText: "open ended", Difficulty: model.DifficultyHard, DateAssigned: day2,
	}))

	rows, total, err := svc.ListByChapter(ctx, ch.ID, nil, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "p2", rows[0].Title)

	rows, total, err = svc.ListByChapter(ctx, ch.ID, &day1, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "p1", rows[0].Title)

	ok, _, err := svc.Check(ctx, rows[0].ID, "42")
	require.NoError(t, err)
	assert.True(t, ok)

	all, _, err := svc.ListByChapter(ctx, ch.ID, &day2, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 1)
	_, _, err = svc.Check(ctx, all[0].ID, "anything")
	assert.ErrorIs(t, err, ErrNoAnswerKey)
}
