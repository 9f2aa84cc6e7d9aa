package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"smartstudy_backend/internals/constants"
	batchModel "smartstudy_backend/internals/features/batches/model"
	batchRepo "smartstudy_backend/internals/features/batches/repository"
	"smartstudy_backend/internals/features/commerce/orders/model"
	refModel "smartstudy_backend/internals/features/commerce/referrals/model"
	refService "smartstudy_backend/internals/features/commerce/referrals/service"
	courseModel "smartstudy_backend/internals/features/courses/model"
	notifModel "smartstudy_backend/internals/features/users/notifications/model"
	notifService "smartstudy_backend/internals/features/users/notifications/service"
	"smartstudy_backend/internals/testdb"
)

const testServerKey = "server-key"

type fakeGateway struct {
	calls int
	fail  error
}

func (g *fakeGateway) CreateSnap(_ context.Context, o *model.OrderModel, _ Customer, _ string) (string, string, error) {
	g.calls++
	if g.fail != nil {
		return "", "", g.fail
	}
	return "snap-" + o.OrderID, "https://app.sandbox.midtrans.com/snap/v2/vtweb/" + o.OrderID, nil
}

func (g *fakeGateway) ServerKey() string { return testServerKey }

func TestNewOrderID(t *testing.T) {
	id := NewOrderID(time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^SS20260309[0-9A-F]{8}$`), id)
	assert.NotEqual(t, id, NewOrderID(time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)))
}

func TestSignature(t *testing.T) {
	want := "8faed9a44ed72c6cd5e9885b5e9e15e4aa7f2cbef6ce42a669cce74015724194a1b2cf9180bce9a6785ed9d2e4a19afbe1e0d7abecd8b7ec76366701e4c07bbd"
	assert.Equal(t, want, Signature("SS20260101ABCDEF12", "200", "1000.00", "server-key"))

	n := Notification{OrderID: "SS20260101ABCDEF12", StatusCode: "200", GrossAmount: "1000.00", SignatureKey: want}
	assert.True(t, VerifySignature(n, "server-key"))
	assert.False(t, VerifySignature(n, "other-key"))
	assert.False(t, VerifySignature(n, ""))

	n.GrossAmount = "1.00"
	assert.False(t, VerifySignature(n, "server-key"))
}

func TestMapTransactionStatus(t *testing.T) {
	cases := []struct{ tx, fraud, want string }{
		{"capture", "accept", model.StatusSuccessful},
		{"capture", "", model.StatusSuccessful},
		{"capture", "challenge", ""},
		{"settlement", "", model.StatusSuccessful},
		{"deny", "", model.StatusFailed},
		{"cancel", "", model.StatusFailed},
		{"failure", "", model.StatusFailed},
		{"expire", "", model.StatusExpired},
		{"pending", "", ""},
		{"refund", "", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MapTransactionStatus(tc.tx, tc.fraud), tc.tx+"/"+tc.fraud)
	}
}

func referralCode(t *testing.T, db *gorm.DB, pct string) *refModel.ReferralCodeModel {
	t.Helper()
	u := testdb.CreateUser(t, db, constants.RoleStudent)
	se, err := refService.CreateExecutive(context.Background(), db, u.ID, "EMP-"+uuid.NewString()[:6], "")
	require.NoError(t, err)
	rc, err := refService.New(db).CreateCode(context.Background(), se.ID, decimal.RequireFromString(pct))
	require.NoError(t, err)
	return rc
}

func notifCount(t *testing.T, db *gorm.DB, userID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&notifModel.NotificationModel{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func TestCheckoutWithoutGatewaySettlesImmediately(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	svc := New(db, nil, notifService.New(db, nil))
	tree := testdb.CreateBatchTree(t, db, 1000)
	student := testdb.CreateUser(t, db, constants.RoleStudent)
	rc := referralCode(t, db, "10")

	res, err := svc.Checkout(ctx, CheckoutInput{
		UserID:       student.ID,
		ItemType:     model.ItemBatch,
		BatchID:      &tree.Batch.ID,
		ReferralCode: rc.Code,
		PaymentMode:  model.ModeUPI,
	})
	require.NoError(t, err)
	assert.True(t, res.Settled)
	assert.Equal(t, model.StatusSuccessful, res.Order.Status)
	assert.NotNil(t, res.Order.PaidAt)
	assert.True(t, decimal.NewFromInt(1000).Equal(res.Order.OriginalAmount))
	assert.True(t, decimal.NewFromInt(100).Equal(res.Order.DiscountAmount))
	assert.True(t, decimal.NewFromInt(900).Equal(res.Order.Amount))
	assert.Equal(t, rc.Code, res.Order.ReferralCode)

	enrolled, err := batchRepo.IsEnrolledInBatch(ctx, db, student.ID, tree.Batch.ID)
	require.NoError(t, err)
	assert.True(t, enrolled)

	var got refModel.ReferralCodeModel
	require.NoError(t, db.First(&got, "id = ?", rc.ID).Error)
	assert.Equal(t, 1, got.UsageCount)
	assert.EqualValues(t, 1, notifCount(t, db, student.ID))

	_, err = svc.Checkout(ctx, CheckoutInput{UserID: student.ID, ItemType: model.ItemBatch, BatchID: &tree.Batch.ID, PaymentMode: model.ModeUPI})
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
}

func TestCheckoutRejections(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	svc := New(db, nil, nil)
	student := testdb.CreateUser(t, db, constants.RoleStudent)
	paid := testdb.CreateBatchTree(t, db, 500)
	free := testdb.CreateBatchTree(t, db, 0)
	missing := uuid.New()

	_, err := svc.Checkout(ctx, CheckoutInput{UserID: student.ID, ItemType: model.ItemBatch, BatchID: &free.Batch.ID, PaymentMode: model.ModeCard})
	assert.ErrorIs(t, err, ErrFreeItem)

	_, err = svc.Checkout(ctx, CheckoutInput{UserID: student.ID, ItemType: model.ItemBatch, BatchID: &missing, PaymentMode: model.ModeCard})
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, err = svc.Checkout(ctx, CheckoutInput{UserID: student.ID, ItemType: model.ItemBatch, BatchID: &paid.Batch.ID, ReferralCode: "NOPE1234", PaymentMode: model.ModeCard})
	assert.ErrorIs(t, err, ErrInvalidReferral)

	var n int64
	require.NoError(t, db.Model(&model.OrderModel{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestWebhookSettlesOnceAndNeverDowngrades(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	gw := &fakeGateway{}
	svc := New(db, gw, notifService.New(db, nil))
	tree := testdb.CreateBatchTree(t, db, 1000)
	student := testdb.CreateUser(t, db, constants.RoleStudent)
	rc := referralCode(t, db, "25")

	res, err := svc.Checkout(ctx, CheckoutInput{
		UserID: student.ID, ItemType: model.ItemBatch, BatchID: &tree.Batch.ID,
		ReferralCode: rc.Code, PaymentMode: model.ModeCard,
	})
	require.NoError(t, err)
	assert.False(t, res.Settled)
	assert.Equal(t, model.StatusPending, res.Order.Status)
	assert.Equal(t, "snap-"+res.Order.OrderID, res.SnapToken)
	assert.Equal(t, 1, gw.calls)

	orderID := res.Order.OrderID
	notif := func(status string) Notification {
		n := Notification{OrderID: orderID, StatusCode: "200", GrossAmount: "750.00", TransactionStatus: status}
		n.SignatureKey = Signature(n.OrderID, n.StatusCode, n.GrossAmount, testServerKey)
		return n
	}

	bad := notif("settlement")
	bad.SignatureKey = "deadbeef"
	_, err = svc.HandleNotification(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	o, err := svc.HandleNotification(ctx, notif("pending"))
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, o.Status)

	for i := 0; i < 2; i++ {
		o, err = svc.HandleNotification(ctx, notif("settlement"))
		require.NoError(t, err)
		assert.Equal(t, model.StatusSuccessful, o.Status)
	}

	o, err = svc.HandleNotification(ctx, notif("expire"))
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccessful, o.Status)

	var enrollments int64
	require.NoError(t, db.Model(&batchModel.BatchEnrollmentModel{}).
		Where("user_id = ? AND batch_id = ?", student.ID, tree.Batch.ID).Count(&enrollments).Error)
	assert.EqualValues(t, 1, enrollments)

	var got refModel.ReferralCodeModel
	require.NoError(t, db.First(&got, "id = ?", rc.ID).Error)
	assert.Equal(t, 1, got.UsageCount)
	assert.EqualValues(t, 1, notifCount(t, db, student.ID))

	unknown := notif("settlement")
	unknown.OrderID = "SS20260101FFFFFFFF"
	unknown.SignatureKey = Signature(unknown.OrderID, unknown.StatusCode, unknown.GrossAmount, testServerKey)
	_, err = svc.HandleNotification(ctx, unknown)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestWebhookFailureThenLateSettlement(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	svc := New(db, &fakeGateway{}, nil)
	tree := testdb.CreateBatchTree(t, db, 300)
	student := testdb.CreateUser(t, db, constants.RoleStudent)

	res, err := svc.Checkout(ctx, CheckoutInput{UserID: student.ID, ItemType: model.ItemBatch, BatchID: &tree.Batch.ID, PaymentMode: model.ModeWallet})
	require.NoError(t, err)

	o, err := svc.ApplyStatus(ctx, res.Order.OrderID, model.StatusFailed)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, o.Status)

	o, err = svc.ApplyStatus(ctx, res.Order.OrderID, model.StatusExpired)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, o.Status)

	// pembayaran tetap diterima walau order sempat gagal
	o, err = svc.ApplyStatus(ctx, res.Order.OrderID, model.StatusSuccessful)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccessful, o.Status)
	enrolled, err := batchRepo.IsEnrolledInBatch(ctx, db, student.ID, tree.Batch.ID)
	require.NoError(t, err)
	assert.True(t, enrolled)
}

func TestGatewayFailureMarksOrderFailed(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	svc := New(db, &fakeGateway{fail: assert.AnError}, nil)
	tree := testdb.CreateBatchTree(t, db, 300)
	student := testdb.CreateUser(t, db, constants.RoleStudent)

	_, err := svc.Checkout(ctx, CheckoutInput{UserID: student.ID, ItemType: model.ItemBatch, BatchID: &tree.Batch.ID, PaymentMode: model.ModeCard})
	assert.ErrorIs(t, err, ErrGateway)

	var o model.OrderModel
	require.NoError(t, db.First(&o, "user_id = ?", student.ID).Error)
	assert.Equal(t, model.StatusFailed, o.Status)
}

func TestCheckoutSubUnitAmountSkipsGateway(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	gw := &fakeGateway{}
	svc := New(db, gw, nil)
	tree := testdb.CreateBatchTree(t, db, 4)
	student := testdb.CreateUser(t, db, constants.RoleStudent)
	rc := referralCode(t, db, "90")

	res, err := svc.Checkout(ctx, CheckoutInput{
		UserID:       student.ID,
		ItemType:     model.ItemBatch,
		BatchID:      &tree.Batch.ID,
		ReferralCode: rc.Code,
		PaymentMode:  model.ModeWallet,
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.40").Equal(res.Order.Amount))
	assert.True(t, res.Settled)
	assert.Equal(t, model.StatusSuccessful, res.Order.Status)
	assert.Zero(t, gw.calls)

	enrolled, err := batchRepo.IsEnrolledInBatch(ctx, db, student.ID, tree.Batch.ID)
	require.NoError(t, err)
	assert.True(t, enrolled)
}

func TestPlanCheckoutCreatesEnrollment(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	svc := New(db, nil, nil)
	student := testdb.CreateUser(t, db, constants.RoleStudent)

	in := CheckoutInput{
		UserID: student.ID, ItemType: model.ItemPlan, PlanType: courseModel.CourseTypePremium,
		ClassLevel: "12th", Stream: "NEET", PaymentMode: model.ModeNetbanking,
	}
	res, err := svc.Checkout(ctx, in)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1299).Equal(res.Order.Amount))

	var e courseModel.EnrollmentModel
	require.NoError(t, db.First(&e, "user_id = ?", student.ID).Error)
	assert.Equal(t, courseModel.CourseTypePremium, e.CourseType)
	assert.Equal(t, courseModel.PaymentCompleted, e.PaymentStatus)
	assert.WithinDuration(t, e.EnrolledAt.Add(courseModel.EnrollmentValidity), e.ExpiresAt, time.Second)

	_, err = svc.Checkout(ctx, in)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)

	in.PlanType = courseModel.CourseTypeFree
	_, err = svc.Checkout(ctx, in)
	assert.ErrorIs(t, err, ErrFreeItem)
}

func TestExpirePending(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	svc := New(db, &fakeGateway{}, nil)
	student := testdb.CreateUser(t, db, constants.RoleStudent)

	var ids []string
	for i := 0; i < 2; i++ {
		tree := testdb.CreateBatchTree(t, db, 200)
		res, err := svc.Checkout(ctx, CheckoutInput{UserID: student.ID, ItemType: model.ItemBatch, BatchID: &tree.Batch.ID, PaymentMode: model.ModeUPI})
		require.NoError(t, err)
		ids = append(ids, res.Order.OrderID)
	}
	now := time.Now().UTC()
	require.NoError(t, db.Model(&model.OrderModel{}).Where("order_id = ?", ids[0]).UpdateColumn("created_at", now.Add(-48*time.Hour)).Error)
	require.NoError(t, db.Model(&model.OrderModel{}).Where("order_id = ?", ids[1]).UpdateColumn("created_at", now.Add(-time.Hour)).Error)

	n, err := svc.ExpirePending(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var old, fresh model.OrderModel
	require.NoError(t, db.First(&old, "order_id = ?", ids[0]).Error)
	require.NoError(t, db.First(&fresh, "order_id = ?", ids[1]).Error)
	assert.Equal(t, model.StatusExpired, old.Status)
	assert.Equal(t, model.StatusPending, fresh.Status)
}
