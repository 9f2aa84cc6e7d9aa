package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartstudy_backend/internals/constants"
	orderModel "smartstudy_backend/internals/features/commerce/orders/model"
	doubtModel "smartstudy_backend/internals/features/doubts/model"
	"smartstudy_backend/internals/testdb"
)

func TestStudentDashboard(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	u := testdb.CreateUser(t, db, constants.RoleStudent)
	tree := testdb.CreateBatchTree(t, db, 0)
	testdb.EnrollInBatch(t, db, u.ID, tree.Batch.ID)
	require.NoError(t, db.Create(&doubtModel.DoubtModel{StudentID: u.ID, Title: "open", Description: "x"}).Error)
	now := time.Now().UTC()
	require.NoError(t, db.Create(&doubtModel.DoubtModel{StudentID: u.ID, Title: "done", Description: "x", Status: doubtModel.StatusResolved, ResolvedAt: &now}).Error)

	d, err := NewDashboardService(db).For(ctx, u.ID, constants.RoleStudent)
	require.NoError(t, err)
	require.NotNil(t, d.Student)
	assert.Nil(t, d.Teacher)
	assert.Len(t, d.Student.Batches, 1)
	require.Len(t, d.Student.OpenDoubts, 1)
	assert.Equal(t, "open", d.Student.OpenDoubts[0].Title)
}

func TestTeacherDashboard(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	s := testdb.CreateUser(t, db, constants.RoleStudent)
	teacher := testdb.CreateUser(t, db, constants.RoleTeacher)
	require.NoError(t, db.Create(&doubtModel.DoubtModel{StudentID: s.ID, Title: "a", Description: "x"}).Error)
	require.NoError(t, db.Create(&doubtModel.DoubtModel{StudentID: s.ID, Title: "b", Description: "x",
		Status: doubtModel.StatusResolved, AssignedTo: &teacher.ID, ResolvedBy: &teacher.ID}).Error)

	d, err := NewDashboardService(db).For(ctx, teacher.ID, constants.RoleTeacher)
	require.NoError(t, err)
	require.NotNil(t, d.Teacher)
	assert.EqualValues(t, 2, d.Teacher.Doubts.Total)
	assert.EqualValues(t, 1, d.Teacher.Doubts.Submitted)
	assert.EqualValues(t, 1, d.Teacher.ResolvedByMe)
	assert.Len(t, d.Teacher.LatestDoubts, 2)
}

func TestAdminDashboard(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	admin := testdb.CreateUser(t, db, constants.RoleAdmin)
	s := testdb.CreateUser(t, db, constants.RoleStudent)
	tree := testdb.CreateBatchTree(t, db, 800)

	for i, st := range []string{orderModel.StatusSuccessful, orderModel.StatusPending} {
		o := orderModel.OrderModel{
			OrderID:        "SS2026010100000" + string(rune('A'+i)),
			UserID:         s.ID,
			ItemType:       orderModel.ItemBatch,
			BatchID:        &tree.Batch.ID,
			OriginalAmount: decimal.NewFromInt(800),
			DiscountAmount: decimal.Zero,
			Amount:         decimal.NewFromInt(800),
			PaymentMode:    orderModel.ModeCard,
			Status:         st,
		}
		require.NoError(t, db.Create(&o).Error)
	}

	d, err := NewDashboardService(db).For(ctx, admin.ID, constants.RoleAdmin)
	require.NoError(t, err)
	require.NotNil(t, d.Admin)
	assert.EqualValues(t, 1, d.Admin.UsersByRole[constants.RoleAdmin])
	assert.EqualValues(t, 1, d.Admin.UsersByRole[constants.RoleStudent])
	assert.EqualValues(t, 1, d.Admin.Batches)
	assert.EqualValues(t, 1, d.Admin.SuccessfulOrders)
	assert.True(t, d.Admin.Revenue.Equal(decimal.NewFromInt(800)), d.Admin.Revenue.String())

	_, err = NewDashboardService(db).For(ctx, admin.ID, "guest")
	assert.ErrorIs(t, err, ErrNoDashboard)
}

func TestAdminCannotChangeSelf(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	admin := testdb.CreateUser(t, db, constants.RoleAdmin)
	other := testdb.CreateUser(t, db, constants.RoleStudent)
	svc := New(db)

	role := constants.RoleTeacher
	_, err := svc.AdminUpdate(ctx, admin.ID, admin.ID, &role, nil)
	assert.ErrorIs(t, err, ErrCannotChangeSelf)

	u, err := svc.AdminUpdate(ctx, admin.ID, other.ID, &role, nil)
	require.NoError(t, err)
	assert.Equal(t, constants.RoleTeacher, u.Role)

	rows, total, err := svc.List(ctx, UserFilter{Q: other.UserName[:6]}, 0, 10)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, int64(1))
	assert.NotEmpty(t, rows)
}
