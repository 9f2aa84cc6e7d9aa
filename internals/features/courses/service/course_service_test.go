package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"smartstudy_backend/internals/constants"
	"smartstudy_backend/internals/features/courses/model"
	userModel "smartstudy_backend/internals/features/users/user/model"
	"smartstudy_backend/internals/testdb"
)

func newLecture(t *testing.T, db *gorm.DB, chapterID model.ChapterModel, order int, free bool) *model.CourseLectureModel {
	t.Helper()
	l := &model.CourseLectureModel{
		ChapterID:       chapterID.ID,
		Title:           "Lecture",
		VideoURL:        "https://youtu.be/abc",
		DurationMinutes: 10,
		OrderIndex:      order,
		IsFree:          free,
	}
	require.NoError(t, New(db).CreateLecture(context.Background(), l))
	return l
}

func TestCreateSubjectSlugIsUnique(t *testing.T) {
	db := testdb.New(t)
	svc := New(db)
	ctx := context.Background()

	a := &model.SubjectModel{Name: "Organic Chemistry", ClassLevel: userModel.ClassLevel12, Stream: userModel.StreamNEET, IsActive: true}
	require.NoError(t, svc.CreateSubject(ctx, a))
	assert.Equal(t, "organic-chemistry-12th-neet", a.Slug)

	dup := &model.SubjectModel{Name: "Organic Chemistry", ClassLevel: userModel.ClassLevel12, Stream: userModel.StreamNEET, IsActive: true}
	assert.Error(t, svc.CreateSubject(ctx, dup))

	other := &model.SubjectModel{Name: "Organic Chemistry", ClassLevel: userModel.ClassLevel12, Stream: userModel.StreamJEE, IsActive: true}
	require.NoError(t, svc.CreateSubject(ctx, other))
	assert.NotEqual(t, a.Slug, other.Slug)
}

func TestSubjectTreeOrdersChaptersAndLectures(t *testing.T) {
	db := testdb.New(t)
	svc := New(db)
	ctx := context.Background()
	sub, ch1 := testdb.CreateChapter(t, db)
	ch2 := model.ChapterModel{SubjectID: sub.ID, Name: "Dynamics", OrderIndex: 0}
	require.NoError(t, svc.CreateChapter(ctx, &ch2))

	second := newLecture(t, db, ch1, 2, false)
	first := newLecture(t, db, ch1, 1, true)

	tree, err := svc.SubjectTree(ctx, sub.ID)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, ch2.ID, tree[0].ID)
	assert.Empty(t, tree[0].Lectures)
	require.Len(t, tree[1].Lectures, 2)
	assert.Equal(t, first.ID, tree[1].Lectures[0].ID)
	assert.Equal(t, second.ID, tree[1].Lectures[1].ID)
}

func TestCanAccessLecture(t *testing.T) {
	db := testdb.New(t)
	svc := New(db)
	ctx := context.Background()
	_, ch := testdb.CreateChapter(t, db) // 11th / JEE
	free := newLecture(t, db, ch, 1, true)
	paid := newLecture(t, db, ch, 2, false)
	student := testdb.CreateUser(t, db, constants.RoleStudent)

	ok, err := svc.CanAccessLecture(ctx, student.ID, constants.RoleStudent, free)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CanAccessLecture(ctx, student.ID, constants.RoleStudent, paid)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.CanAccessLecture(ctx, student.ID, constants.RoleTeacher, paid)
	require.NoError(t, err)
	assert.True(t, ok)

	// paket free tidak membuka lecture berbayar
	_, err = svc.EnrollFree(ctx, student.ID, userModel.ClassLevel11, userModel.StreamJEE)
	require.NoError(t, err)
	ok, err = svc.CanAccessLecture(ctx, student.ID, constants.RoleStudent, paid)
	require.NoError(t, err)
	assert.False(t, ok)

	// paket berbayar untuk stream lain juga tidak
	require.NoError(t, db.Create(&model.EnrollmentModel{
		UserID: student.ID, CourseType: model.CourseTypeBasic, ClassLevel: userModel.ClassLevel11,
		Stream: userModel.StreamNEET, PaymentStatus: model.PaymentCompleted,
	}).Error)
	ok, err = svc.CanAccessLecture(ctx, student.ID, constants.RoleStudent, paid)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.Create(&model.EnrollmentModel{
		UserID: student.ID, CourseType: model.CourseTypePremium, ClassLevel: userModel.ClassLevel11,
		Stream: userModel.StreamJEE, PaymentStatus: model.PaymentCompleted,
	}).Error)
	ok, err = svc.CanAccessLecture(ctx, student.ID, constants.RoleStudent, paid)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEnrollFreeOncePerClassAndStream(t *testing.T) {
	db := testdb.New(t)
	svc := New(db)
	ctx := context.Background()
	student := testdb.CreateUser(t, db, constants.RoleStudent)

	e, err := svc.EnrollFree(ctx, student.ID, userModel.ClassLevel10, userModel.StreamScience)
	require.NoError(t, err)
	assert.True(t, e.AmountPaid.IsZero())
	assert.True(t, e.IsActiveAt(e.EnrolledAt))

	_, err = svc.EnrollFree(ctx, student.ID, userModel.ClassLevel10, userModel.StreamScience)
	assert.ErrorIs(t, err, ErrAlreadyOnPlan)

	_, err = svc.EnrollFree(ctx, student.ID, userModel.ClassLevel9, userModel.StreamScience)
	assert.NoError(t, err)

	plans, err := svc.ActivePlans(ctx, student.ID)
	require.NoError(t, err)
	assert.Len(t, plans, 2)
}

func TestUpsertProgressNeverGoesBack(t *testing.T) {
	db := testdb.New(t)
	svc := New(db)
	ctx := context.Background()
	sub, ch := testdb.CreateChapter(t, db)
	lec := newLecture(t, db, ch, 1, true)
	student := testdb.CreateUser(t, db, constants.RoleStudent)

	secs := func(n int) *int { return &n }
	yes := true

	p, err := svc.UpsertProgress(ctx, student.ID, lec, ProgressInput{WatchedSeconds: secs(120)})
	require.NoError(t, err)
	assert.Equal(t, 120, p.WatchedSeconds)
	assert.False(t, p.IsCompleted)

	p, err = svc.UpsertProgress(ctx, student.ID, lec, ProgressInput{WatchedSeconds: secs(30)})
	require.NoError(t, err)
	assert.Equal(t, 120, p.WatchedSeconds)

	p, err = svc.UpsertProgress(ctx, student.ID, lec, ProgressInput{IsCompleted: &yes})
	require.NoError(t, err)
	assert.True(t, p.IsCompleted)
	assert.Equal(t, 600, p.WatchedSeconds)

	var n int64
	require.NoError(t, db.Model(&model.LectureProgressModel{}).Where("user_id = ?", student.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	m, err := svc.SubjectProgress(ctx, student.ID, sub.ID)
	require.NoError(t, err)
	assert.True(t, m[lec.ID].IsCompleted)
}

func TestDeleteSubjectReturnsPDFsForTrash(t *testing.T) {
	db := testdb.New(t)
	svc := New(db)
	ctx := context.Background()
	sub, ch := testdb.CreateChapter(t, db)
	lec := newLecture(t, db, ch, 1, false)
	require.NoError(t, svc.AddPDF(ctx, &model.LecturePDFModel{LectureID: lec.ID, Title: "Notes", FileURL: "https://cdn/notes.pdf", FileSize: 10}))

	files, err := svc.DeleteSubject(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn/notes.pdf"}, files)

	_, err = svc.GetLecture(ctx, lec.ID)
	assert.True(t, IsNotFound(err))
	_, err = svc.GetChapter(ctx, ch.ID)
	assert.True(t, IsNotFound(err))

	_, err = svc.DeleteSubject(ctx, sub.ID)
	assert.True(t, IsNotFound(err))
}
