package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartstudy_backend/internals/constants"
	dppModel "smartstudy_backend/internals/features/assessments/dpps/model"
	"smartstudy_backend/internals/features/batches/model"
	"smartstudy_backend/internals/testdb"
)

func TestEnrollFree(t *testing.T) {
	db := testdb.New(t)
	svc := New(db)
	ctx := context.Background()
	u := testdb.CreateUser(t, db, constants.RoleStudent)

	free := testdb.CreateBatchTree(t, db, 0)
	paid := testdb.CreateBatchTree(t, db, 999)

	require.NoError(t, svc.EnrollFree(ctx, u.ID, free.Batch.ID))
	assert.ErrorIs(t, svc.EnrollFree(ctx, u.ID, free.Batch.ID), ErrAlreadyEnrolled)
	assert.ErrorIs(t, svc.EnrollFree(ctx, u.ID, paid.Batch.ID), ErrPaidBatch)

	n, err := svc.EnrolledCount(ctx, free.Batch.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	mine, err := svc.MyBatches(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, free.Batch.ID, mine[0].ID)

	require.NoError(t, db.Model(&model.BatchModel{}).Where("id = ?", free.Batch.ID).Update("is_active", false).Error)
	other := testdb.CreateUser(t, db, constants.RoleStudent)
	assert.ErrorIs(t, svc.EnrollFree(ctx, other.ID, free.Batch.ID), ErrBatchNotAvailable)
}

func TestTreeOrdersLecturesByDay(t *testing.T) {
	db := testdb.New(t)
	svc := New(db)
	ctx := context.Background()
	tree := testdb.CreateBatchTree(t, db, 0)

	for _, day := range []int{3, 2} {
		require.NoError(t, svc.CreateLecture(ctx, &model.BatchLectureModel{
			BatchSubjectID: tree.Subject.ID,
			TopicName:      "Topic",
			DayNumber:      day,
			VideoType:      "youtube",
			VideoURL:       "https://youtu.be/abc",
			IsActive:       day != 3,
		}))
	}

	all, err := svc.Tree(ctx, tree.Batch.ID, false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	days := []int{}
	for _, l := range all[0].Lectures {
		days = append(days, l.DayNumber)
	}
	assert.Equal(t, []int{1, 2, 3}, days)

	active, err := svc.Tree(ctx, tree.Batch.ID, true)
	require.NoError(t, err)
	assert.Len(t, active[0].Lectures, 2)
}

func TestCanAccessLecture(t *testing.T) {
	db := testdb.New(t)
	svc := New(db)
	ctx := context.Background()
	tree := testdb.CreateBatchTree(t, db, 500)
	student := testdb.CreateUser(t, db, constants.RoleStudent)

	ok, err := svc.CanAccessLecture(ctx, student.ID, false, tree.Lecture.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.CanAccessLecture(ctx, student.ID, true, tree.Lecture.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	testdb.EnrollInBatch(t, db, student.ID, tree.Batch.ID)
	ok, err = svc.CanAccessLecture(ctx, student.ID, false, tree.Lecture.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteGuards(t *testing.T) {
	db := testdb.New(t)
	svc := New(db)
	ctx := context.Background()
	tree := testdb.CreateBatchTree(t, db, 0)

	assert.ErrorIs(t, svc.DeleteCategory(ctx, tree.Category.ID), ErrCategoryNotEmpty)

	dpp := dppModel.DPPModel{LectureID: tree.Lecture.ID, Title: "DPP 1", IsActive: true}
	require.NoError(t, db.Create(&dpp).Error)

	_, err := svc.DeleteLecture(ctx, tree.Lecture.ID)
	assert.ErrorIs(t, err, ErrLectureHasDPP)

	extras, err := svc.Extras(ctx, tree.Lecture.ID, false)
	require.NoError(t, err)
	require.NotNil(t, extras.DPP)
	assert.Equal(t, dpp.ID, extras.DPP.ID)

	require.NoError(t, db.Delete(&dpp).Error)
	_, err = svc.DeleteLecture(ctx, tree.Lecture.ID)
	require.NoError(t, err)

	u := testdb.CreateUser(t, db, constants.RoleStudent)
	testdb.EnrollInBatch(t, db, u.ID, tree.Batch.ID)
	_, err = svc.DeleteBatch(ctx, tree.Batch.ID)
	assert.ErrorIs(t, err, ErrBatchHasStudents)
}

func TestDeleteBatchReturnsFiles(t *testing.T) {
	db := testdb.New(t)
	svc := New(db)
	ctx := context.Background()
	tree := testdb.CreateBatchTree(t, db, 0)

	_, _, err := svc.UpdateBatch(ctx, tree.Batch.ID, map[string]any{"thumbnail": "https://cdn/thumb.webp"})
	require.NoError(t, err)
	_, replaced, err := svc.UpdateLecture(ctx, tree.Lecture.ID, map[string]any{"pdf_file": "https://cdn/notes.pdf"})
	require.NoError(t, err)
	assert.Empty(t, replaced)

	files, err := svc.DeleteBatch(ctx, tree.Batch.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"https://cdn/notes.pdf", "https://cdn/thumb.webp"}, files)

	var n int64
	require.NoError(t, db.Model(&model.BatchLectureModel{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestUpdateBatchReslugs(t *testing.T) {
	db := testdb.New(t)
	svc := New(db)
	ctx := context.Background()
	tree := testdb.CreateBatchTree(t, db, 0)

	b, replaced, err := svc.UpdateBatch(ctx, tree.Batch.ID, map[string]any{"name": "Arjuna JEE 2027"})
	require.NoError(t, err)
	assert.Empty(t, replaced)
	assert.Equal(t, "arjuna-jee-2027", b.Slug)
}
