package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	quizModel "smartstudy_backend/internals/features/assessments/quizzes/model"
	courseModel "smartstudy_backend/internals/features/courses/model"
	"smartstudy_backend/internals/testdb"
)

func TestIndexCounts(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	_, ch := testdb.CreateChapter(t, db)
	require.NoError(t, db.Create(&courseModel.CourseLectureModel{ChapterID: ch.ID, Title: "Newton's laws", OrderIndex: 1}).Error)
	require.NoError(t, db.Create(&quizModel.QuizModel{ChapterID: ch.ID, Title: "Forces quiz", IsActive: true}).Error)
	testdb.CreateBatchTree(t, db, 0)

	home, err := New(db).Index(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, home.Counts.Subjects)
	assert.EqualValues(t, 1, home.Counts.Lectures)
	assert.EqualValues(t, 1, home.Counts.Quizzes)
	assert.EqualValues(t, 1, home.Counts.Batches)
	assert.Len(t, home.Featured, 1)
}

func TestSearch(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	svc := New(db)
	_, ch := testdb.CreateChapter(t, db)
	require.NoError(t, db.Create(&courseModel.CourseLectureModel{ChapterID: ch.ID, Title: "Projectile Motion", OrderIndex: 1}).Error)
	require.NoError(t, db.Create(&courseModel.CourseLectureModel{ChapterID: ch.ID, Title: "Circular motion", OrderIndex: 2}).Error)
	require.NoError(t, db.Create(&quizModel.QuizModel{ChapterID: ch.ID, Title: "MOTION basics", IsActive: true}).Error)
	require.NoError(t, db.Create(&quizModel.QuizModel{ChapterID: ch.ID, Title: "Motion hidden", IsActive: false}).Error)

	res, err := svc.Search(ctx, "motion")
	require.NoError(t, err)
	assert.Len(t, res.Lectures, 2)
	assert.Len(t, res.Quizzes, 1)
	assert.Empty(t, res.Subjects)

	res, err = svc.Search(ctx, "PHYSICS")
	require.NoError(t, err)
	assert.Len(t, res.Subjects, 1)

	res, err = svc.Search(ctx, "100%")
	require.NoError(t, err)
	assert.Empty(t, res.Lectures)

	res, err = svc.Search(ctx, "   ")
	require.NoError(t, err)
	assert.NotNil(t, res.Subjects)
	assert.Empty(t, res.Subjects)
	assert.Empty(t, res.Quizzes)
}
