package seeds

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"smartstudy_backend/internals/constants"
	refModel "smartstudy_backend/internals/features/commerce/referrals/model"
	refService "smartstudy_backend/internals/features/commerce/referrals/service"
	authService "smartstudy_backend/internals/features/users/auth/service"
	userModel "smartstudy_backend/internals/features/users/user/model"
)

type userSeed struct {
	UserName   string `json:"user_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	ClassLevel string `json:"class_level"`
	Stream     string `json:"stream"`
}

func seedUsers(ctx context.Context, db *gorm.DB) error {
	var inputs []userSeed
	if err := readJSON("data_users.json", &inputs); err != nil {
		return err
	}
	for _, in := range inputs {
		if exists, err := userExists(ctx, db, in.Email); err != nil {
			return err
		} else if exists {
			log.Printf("[SEED] ℹ️ user '%s' sudah ada, dilewati", in.Email)
			continue
		}
		if _, err := authService.CreateUser(ctx, db, authService.NewUser{
			UserName:   in.UserName,
			Email:      in.Email,
			Password:   in.Password,
			Role:       in.Role,
			FirstName:  in.FirstName,
			LastName:   in.LastName,
			ClassLevel: in.ClassLevel,
			Stream:     in.Stream,
		}); err != nil {
			return fmt.Errorf("user %s: %w", in.Email, err)
		}
		log.Printf("[SEED] ✅ user '%s' (%s)", in.Email, in.Role)
	}
	return nil
}

func userExists(ctx context.Context, db *gorm.DB, email string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&userModel.UserModel{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&n).Error
	return n > 0, err
}

/* ===================== SALES EXECUTIVE ===================== */

type SalesExecutiveInput struct {
	UserName   string
	Email      string
	Password   string
	FirstName  string
	LastName   string
	EmployeeID string
	Phone      string
	// CodeDiscount > 0 → langsung terbitkan satu referral code
	CodeDiscount decimal.Decimal
}

var ErrEmployeeTaken = errors.New("employee id already registered")

// CreateSalesExecutive: user baru (role sales_executive) + profil + referral code opsional.
// Dipakai oleh command create-sales-executive dan seed.
func CreateSalesExecutive(ctx context.Context, db *gorm.DB, in SalesExecutiveInput) (*refModel.SalesExecutiveModel, *refModel.ReferralCodeModel, error) {
	var n int64
	if err := db.WithContext(ctx).Model(&refModel.SalesExecutiveModel{}).
		Where("employee_id = ?", strings.TrimSpace(in.EmployeeID)).Count(&n).Error; err != nil {
		return nil, nil, err
	}
	if n > 0 {
		return nil, nil, ErrEmployeeTaken
	}

	var (
		se   *refModel.SalesExecutiveModel
		code *refModel.ReferralCodeModel
	)
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := authService.CreateUser(ctx, tx, authService.NewUser{
			UserName:  in.UserName,
			Email:     in.Email,
			Password:  in.Password,
			Role:      constants.RoleSalesExecutive,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Phone:     in.Phone,
		})
		if err != nil {
			return fmt.Errorf("user: %w", err)
		}
		if se, err = refService.CreateExecutive(ctx, tx, u.ID, in.EmployeeID, in.Phone); err != nil {
			return fmt.Errorf("executive: %w", err)
		}
		if !in.CodeDiscount.IsPositive() {
			return nil
		}
		if code, err = refService.New(tx).CreateCode(ctx, se.ID, in.CodeDiscount); err != nil {
			return fmt.Errorf("referral code: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return se, code, nil
}

func seedSales(ctx context.Context, db *gorm.DB) error {
	in := SalesExecutiveInput{
		UserName:     "sales_demo",
		Email:        "sales@smartstudy.local",
		Password:     "Sales#12345",
		FirstName:    "Kiran",
		LastName:     "Rao",
		EmployeeID:   "SE001",
		Phone:        "9800000001",
		CodeDiscount: decimal.NewFromInt(10),
	}
	if exists, err := userExists(ctx, db, in.Email); err != nil || exists {
		return err
	}
	_, code, err := CreateSalesExecutive(ctx, db, in)
	if err != nil {
		return err
	}
	log.Printf("[SEED] ✅ sales executive '%s' code=%s", in.Email, code.Code)
	return nil
}
