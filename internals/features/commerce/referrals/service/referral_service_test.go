package service

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"smartstudy_backend/internals/constants"
	orderModel "smartstudy_backend/internals/features/commerce/orders/model"
	"smartstudy_backend/internals/features/commerce/referrals/model"
	userModel "smartstudy_backend/internals/features/users/user/model"
	"smartstudy_backend/internals/testdb"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestApplyDiscount(t *testing.T) {
	cases := []struct {
		name, price, pct, discount, final string
	}{
		{"ten percent", "1000", "10", "100", "900"},
		{"rounded to cents", "799", "12.5", "99.88", "699.12"},
		{"zero percent", "1299", "0", "0", "1299"},
		{"full discount", "500", "100", "500", "0"},
		{"over hundred is capped", "500", "150", "500", "0"},
		{"free item", "0", "20", "0", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			disc, final := ApplyDiscount(d(tc.price), d(tc.pct))
			assert.True(t, d(tc.discount).Equal(disc), "discount %s", disc)
			assert.True(t, d(tc.final).Equal(final), "final %s", final)
		})
	}
}

func TestGenerateCode(t *testing.T) {
	re := regexp.MustCompile(`^[A-Z0-9]{8}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.Regexp(t, re, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 45)
}

func newExecutive(t *testing.T, db *gorm.DB) (userModel.UserModel, *model.SalesExecutiveModel) {
	t.Helper()
	u := testdb.CreateUser(t, db, constants.RoleStudent)
	se, err := CreateExecutive(context.Background(), db, u.ID, "EMP-"+uuid.NewString()[:6], "9999999999")
	require.NoError(t, err)
	return u, se
}

func TestCreateExecutivePromotesUser(t *testing.T) {
	db := testdb.New(t)
	u, se := newExecutive(t, db)

	var got userModel.UserModel
	require.NoError(t, db.First(&got, "id = ?", u.ID).Error)
	assert.Equal(t, constants.RoleSalesExecutive, got.Role)
	assert.True(t, se.IsActive)

	_, err := CreateExecutive(context.Background(), db, uuid.New(), "EMP-X", "")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestValidateCode(t *testing.T) {
	db := testdb.New(t)
	svc := New(db)
	ctx := context.Background()
	u, se := newExecutive(t, db)

	rc, err := svc.CreateCode(ctx, se.ID, d("10"))
	require.NoError(t, err)

	t.Run("valid code, case insensitive", func(t *testing.T) {
		q, err := svc.Validate(ctx, "  "+strings.ToLower(rc.Code)+" ", d("1000"))
		require.NoError(t, err)
		assert.True(t, q.Valid)
		assert.True(t, d("100").Equal(q.DiscountAmount))
		assert.True(t, d("900").Equal(q.FinalAmount))
		assert.Equal(t, u.FullName(), q.SalesExecutive)
	})

	t.Run("unknown code", func(t *testing.T) {
		q, err := svc.Validate(ctx, "ZZZZZZZZ", d("1000"))
		require.NoError(t, err)
		assert.False(t, q.Valid)
		assert.True(t, d("1000").Equal(q.FinalAmount))
	})

	t.Run("inactive code", func(t *testing.T) {
		require.NoError(t, svc.SetCodeActive(ctx, rc.ID, false))
		q, err := svc.Validate(ctx, rc.Code, d("1000"))
		require.NoError(t, err)
		assert.False(t, q.Valid)
		require.NoError(t, svc.SetCodeActive(ctx, rc.ID, true))
	})

	t.Run("inactive executive", func(t *testing.T) {
		require.NoError(t, db.Model(&model.SalesExecutiveModel{}).Where("id = ?", se.ID).Update("is_active", false).Error)
		q, err := svc.Validate(ctx, rc.Code, d("1000"))
		require.NoError(t, err)
		assert.False(t, q.Valid)

		_, err = svc.CreateCode(ctx, se.ID, d("5"))
		assert.ErrorIs(t, err, ErrExecutiveInactive)
	})
}

func seedOrder(t *testing.T, db *gorm.DB, userID uuid.UUID, se *model.SalesExecutiveModel, status, amount, discount string) {
	t.Helper()
	o := orderModel.OrderModel{
		OrderID:          fmt.Sprintf("SS20260101%s", uuid.NewString()[:8]),
		UserID:           userID,
		ItemType:         orderModel.ItemPlan,
		PlanType:         "basic",
		OriginalAmount:   d(amount).Add(d(discount)),
		DiscountAmount:   d(discount),
		Amount:           d(amount),
		SalesExecutiveID: &se.ID,
		PaymentMode:      orderModel.ModeUPI,
		Status:           status,
	}
	require.NoError(t, db.Create(&o).Error)
}

func TestSalesReportAndDashboard(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	svc := New(db)
	reports, err := NewReportService(db)
	require.NoError(t, err)

	_, busy := newExecutive(t, db)
	_, idle := newExecutive(t, db)
	buyer := testdb.CreateUser(t, db, constants.RoleStudent)
	_, err = svc.CreateCode(ctx, busy.ID, d("10"))
	require.NoError(t, err)

	seedOrder(t, db, buyer.ID, busy, orderModel.StatusSuccessful, "900", "100")
	seedOrder(t, db, buyer.ID, busy, orderModel.StatusSuccessful, "450", "50")
	seedOrder(t, db, buyer.ID, busy, orderModel.StatusPending, "900", "100")
	seedOrder(t, db, buyer.ID, busy, orderModel.StatusExpired, "900", "100")
	seedOrder(t, db, buyer.ID, busy, orderModel.StatusFailed, "900", "100")

	st, err := reports.ExecutiveStats(ctx, busy.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, st.TotalOrders)
	assert.EqualValues(t, 2, st.Enrolled)
	assert.EqualValues(t, 1, st.Pending)
	assert.EqualValues(t, 2, st.Cancelled)
	assert.True(t, d("1350").Equal(st.Revenue), "revenue %s", st.Revenue)
	assert.True(t, d("150").Equal(st.DiscountGiven), "discount %s", st.DiscountGiven)

	dash, err := svc.DashboardFor(ctx, reports, busy.ID)
	require.NoError(t, err)
	assert.Len(t, dash.Codes, 1)
	assert.Len(t, dash.RecentOrders, 5)

	rep, err := reports.SalesReport(ctx)
	require.NoError(t, err)
	require.Len(t, rep.Executives, 2)
	assert.Equal(t, busy.EmployeeID, rep.Executives[0].EmployeeID)
	assert.Equal(t, idle.EmployeeID, rep.Executives[1].EmployeeID)
	assert.EqualValues(t, 0, rep.Executives[1].TotalOrders)
	assert.EqualValues(t, 5, rep.Totals.TotalOrders)
	assert.True(t, d("1350").Equal(rep.Totals.Revenue))

	data, err := ExportXLSX(rep)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Employee ID", rows[0][0])
	assert.Equal(t, busy.EmployeeID, rows[1][0])
	assert.Equal(t, "TOTAL", rows[3][0])
}
