package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"smartstudy_backend/internals/constants"
	"smartstudy_backend/internals/features/doubts/model"
	notifModel "smartstudy_backend/internals/features/users/notifications/model"
	notifService "smartstudy_backend/internals/features/users/notifications/service"
	"smartstudy_backend/internals/testdb"
)

func submit(t *testing.T, svc *DoubtService, studentID uuid.UUID, title string) *model.DoubtModel {
	t.Helper()
	d := &model.DoubtModel{StudentID: studentID, Title: title, Description: "help"}
	require.NoError(t, svc.Create(context.Background(), d))
	return d
}

func viewerOf(db *gorm.DB, t *testing.T, role string) Viewer {
	t.Helper()
	u := testdb.CreateUser(t, db, role)
	return Viewer{ID: u.ID, Role: role}
}

func TestVisibilityByRole(t *testing.T) {
	db := testdb.New(t)
	svc := New(db, nil)
	ctx := context.Background()

	s1 := viewerOf(db, t, constants.RoleStudent)
	s2 := viewerOf(db, t, constants.RoleStudent)
	t1 := viewerOf(db, t, constants.RoleTeacher)
	t2 := viewerOf(db, t, constants.RoleTeacher)
	admin := viewerOf(db, t, constants.RoleAdmin)

	a := submit(t, svc, s1.ID, "A")
	submit(t, svc, s1.ID, "B")
	submit(t, svc, s2.ID, "C")

	_, err := svc.Assign(ctx, t2.ID, a.ID)
	require.NoError(t, err)

	count := func(v Viewer) int64 {
		_, total, err := svc.List(ctx, v, "", 0, 50)
		require.NoError(t, err)
		return total
	}
	assert.EqualValues(t, 2, count(s1))
	assert.EqualValues(t, 1, count(s2))
	assert.EqualValues(t, 2, count(t1))
	assert.EqualValues(t, 3, count(t2))
	assert.EqualValues(t, 3, count(admin))

	_, err = svc.Get(ctx, t1, a.ID)
	assert.ErrorIs(t, err, ErrDoubtNotFound)
	_, err = svc.Get(ctx, s2, a.ID)
	assert.ErrorIs(t, err, ErrDoubtNotFound)

	_, _, err = svc.List(ctx, Viewer{ID: uuid.New(), Role: constants.RoleSalesExecutive}, "", 0, 10)
	assert.ErrorIs(t, err, ErrRoleNotAllowed)

	_, total, err := svc.List(ctx, admin, model.StatusInProgress, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestLifecycle(t *testing.T) {
	db := testdb.New(t)
	svc := New(db, notifService.New(db, nil))
	ctx := context.Background()
	student := viewerOf(db, t, constants.RoleStudent)
	teacher := viewerOf(db, t, constants.RoleTeacher)
	other := viewerOf(db, t, constants.RoleTeacher)

	d := submit(t, svc, student.ID, "Projectile")

	upd, _, err := svc.Update(ctx, student.ID, d.ID, map[string]any{"title": "Projectile motion"})
	require.NoError(t, err)
	assert.Equal(t, "Projectile motion", upd.Title)

	got, err := svc.Assign(ctx, teacher.ID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, teacher.ID, *got.AssignedTo)

	_, err = svc.Assign(ctx, other.ID, d.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, _, err = svc.Update(ctx, student.ID, d.ID, map[string]any{"title": "late"})
	assert.ErrorIs(t, err, ErrNotEditable)
	_, err = svc.Resolve(ctx, other, d.ID, "nope")
	assert.ErrorIs(t, err, ErrAssignedToOther)

	res, err := svc.Resolve(ctx, teacher, d.ID, "Use v²=u²+2as")
	require.NoError(t, err)
	assert.Equal(t, model.StatusResolved, res.Status)
	require.NotNil(t, res.ResolvedBy)
	assert.Equal(t, teacher.ID, *res.ResolvedBy)
	assert.NotNil(t, res.ResolvedAt)

	_, err = svc.Resolve(ctx, teacher, d.ID, "again")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	var n int64
	require.NoError(t, db.Model(&notifModel.NotificationModel{}).
		Where("user_id = ? AND type = ?", student.ID, notifModel.TypeDoubt).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	counts, err := svc.Counts(ctx, Viewer{ID: teacher.ID, Role: constants.RoleAdmin})
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts.Resolved)
	assert.EqualValues(t, 1, counts.Total)
}

func TestResolveUnassignedStampsTeacher(t *testing.T) {
	db := testdb.New(t)
	svc := New(db, nil)
	ctx := context.Background()
	student := viewerOf(db, t, constants.RoleStudent)
	teacher := viewerOf(db, t, constants.RoleTeacher)

	d := submit(t, svc, student.ID, "Limits")
	res, err := svc.Resolve(ctx, teacher, d.ID, "L'Hôpital")
	require.NoError(t, err)
	require.NotNil(t, res.AssignedTo)
	assert.Equal(t, teacher.ID, *res.AssignedTo)

	_, err = svc.Delete(ctx, student.ID, d.ID)
	assert.ErrorIs(t, err, ErrNotEditable)
}

func TestStudentDeleteWhileSubmitted(t *testing.T) {
	db := testdb.New(t)
	svc := New(db, nil)
	ctx := context.Background()
	student := viewerOf(db, t, constants.RoleStudent)
	stranger := viewerOf(db, t, constants.RoleStudent)

	d := &model.DoubtModel{StudentID: student.ID, Title: "x", Description: "y", ImageURL: "https://cdn/d.webp"}
	require.NoError(t, svc.Create(ctx, d))

	_, err := svc.Delete(ctx, stranger.ID, d.ID)
	assert.ErrorIs(t, err, ErrDoubtNotFound)

	img, err := svc.Delete(ctx, student.ID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/d.webp", img)
}
