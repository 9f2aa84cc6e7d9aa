package seeds

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dppModel "smartstudy_backend/internals/features/assessments/dpps/model"
	quizModel "smartstudy_backend/internals/features/assessments/quizzes/model"
	batchModel "smartstudy_backend/internals/features/batches/model"
	refModel "smartstudy_backend/internals/features/commerce/referrals/model"
	courseModel "smartstudy_backend/internals/features/courses/model"
	userModel "smartstudy_backend/internals/features/users/user/model"
	"smartstudy_backend/internals/testdb"
)

func TestRunAllSeedsIsIdempotent(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()

	require.NoError(t, RunAllSeeds(ctx, db))
	require.NoError(t, RunAllSeeds(ctx, db))

	var n int64
	require.NoError(t, db.Model(&userModel.UserModel{}).Count(&n).Error)
	assert.EqualValues(t, 6, n, "5 user + 1 sales executive")

	require.NoError(t, db.Model(&courseModel.SubjectModel{}).Count(&n).Error)
	assert.EqualValues(t, 2, n)

	require.NoError(t, db.Model(&batchModel.BatchModel{}).Count(&n).Error)
	assert.EqualValues(t, 2, n)

	var dpp dppModel.DPPModel
	require.NoError(t, db.First(&dpp).Error)
	assert.Equal(t, 8, dpp.TotalMarks)

	var quiz quizModel.QuizModel
	require.NoError(t, db.First(&quiz).Error)
	assert.Equal(t, 2, quiz.TotalMarks)

	var free batchModel.BatchModel
	require.NoError(t, db.First(&free, "is_free = ?", true).Error)
	assert.True(t, free.Price.IsZero())
	assert.Equal(t, "foundation-starter", free.Slug)
}

func TestCreateSalesExecutive(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()

	in := SalesExecutiveInput{
		UserName:     "sales_two",
		Email:        "Sales.Two@Example.com",
		Password:     "secret-123",
		EmployeeID:   "SE777",
		Phone:        "9811111111",
		CodeDiscount: decimal.NewFromFloat(12.5),
	}
	se, code, err := CreateSalesExecutive(ctx, db, in)
	require.NoError(t, err)
	require.NotNil(t, code)
	assert.True(t, se.IsActive)
	assert.Len(t, code.Code, 8)
	assert.True(t, code.DiscountPercentage.Equal(decimal.NewFromFloat(12.5)))

	var u userModel.UserModel
	require.NoError(t, db.First(&u, "id = ?", se.UserID).Error)
	assert.Equal(t, "sales_executive", u.Role)
	assert.Equal(t, "sales.two@example.com", u.Email)

	in.UserName, in.Email = "sales_three", "three@example.com"
	_, _, err = CreateSalesExecutive(ctx, db, in)
	assert.ErrorIs(t, err, ErrEmployeeTaken)

	var n int64
	require.NoError(t, db.Model(&refModel.SalesExecutiveModel{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestCreateSalesExecutiveWithoutCode(t *testing.T) {
	db := testdb.New(t)
	se, code, err := CreateSalesExecutive(context.Background(), db, SalesExecutiveInput{
		UserName: "sales_nocode", Email: "nocode@example.com", Password: "secret-123", EmployeeID: "SE100",
	})
	require.NoError(t, err)
	assert.NotNil(t, se)
	assert.Nil(t, code)
}
