package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"smartstudy_backend/internals/constants"
	"smartstudy_backend/internals/features/commerce/referrals/model"
	userModel "smartstudy_backend/internals/features/users/user/model"
)

const (
	CodeLength   = 8
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var (
	ErrCodeInvalid       = errors.New("referral code is invalid or inactive")
	ErrNotSalesExecutive = errors.New("user is not a sales executive")
	ErrExecutiveInactive = errors.New("sales executive is inactive")
)

var hundred = decimal.NewFromInt(100)

// ApplyDiscount: discount = price*pct/100 (2 desimal), final tidak pernah < 0.
func ApplyDiscount(price, pct decimal.Decimal) (discount, final decimal.Decimal) {
	if pct.IsNegative() || price.IsNegative() {
		return decimal.Zero, price
	}
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	discount = price.Mul(pct).Div(hundred).Round(2)
	final = price.Sub(discount)
	if final.IsNegative() {
		final = decimal.Zero
	}
	return discount, final
}

// GenerateCode: 8 karakter A-Z0-9 dari crypto/rand.
func GenerateCode() (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

type ReferralService struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *ReferralService {
	return &ReferralService{DB: db}
}

// LookupActive: kode aktif + sales executive aktif. tx boleh transaksi pemanggil.
func LookupActive(tx *gorm.DB, code string) (*model.ReferralCodeModel, *model.SalesExecutiveModel, error) {
	code = NormalizeCode(code)
	if len(code) != CodeLength {
		return nil, nil, ErrCodeInvalid
	}
	var rc model.ReferralCodeModel
	if err := tx.Where("code = ? AND is_active = ?", code, true).First(&rc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCodeInvalid
		}
		return nil, nil, err
	}
	var se model.SalesExecutiveModel
	if err := tx.Where("id = ? AND is_active = ?", rc.SalesExecutiveID, true).First(&se).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCodeInvalid
		}
		return nil, nil, err
	}
	return &rc, &se, nil
}

// IncrementUsage dipanggil saat order berhasil.
func IncrementUsage(tx *gorm.DB, codeID uuid.UUID) error {
	return tx.Model(&model.ReferralCodeModel{}).
		Where("id = ?", codeID).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1")).Error
}

type Quote struct {
	Valid              bool            `json:"valid"`
	Code               string          `json:"code,omitempty"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	OriginalAmount     decimal.Decimal `json:"original_amount"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	FinalAmount        decimal.Decimal `json:"final_amount"`
	SalesExecutive     string          `json:"sales_executive,omitempty"`
}

// Validate: kode tidak valid bukan error, hanya valid=false dengan harga penuh.
func (s *ReferralService) Validate(ctx context.Context, code string, price decimal.Decimal) (*Quote, error) {
	q := &Quote{OriginalAmount: price, DiscountAmount: decimal.Zero, FinalAmount: price, DiscountPercentage: decimal.Zero}
	rc, se, err := LookupActive(s.DB.WithContext(ctx), code)
	if errors.Is(err, ErrCodeInvalid) {
		return q, nil
	}
	if err != nil {
		return nil, err
	}
	var u userModel.UserModel
	if err := s.DB.WithContext(ctx).Select("id", "user_name", "first_name", "last_name").First(&u, "id = ?", se.UserID).Error; err != nil {
		return nil, err
	}
	q.Valid = true
	q.Code = rc.Code
	q.DiscountPercentage = rc.DiscountPercentage
	q.DiscountAmount, q.FinalAmount = ApplyDiscount(price, rc.DiscountPercentage)
	q.SalesExecutive = u.FullName()
	return q, nil
}

/* ===================== EXECUTIVES ===================== */

type ExecutiveRow struct {
	model.SalesExecutiveModel
	UserName  string `json:"user_name"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	CodeCount int64  `json:"code_count"`
}

func (s *ReferralService) ListExecutives(ctx context.Context) ([]ExecutiveRow, error) {
	db := s.DB.WithContext(ctx)
	var execs []model.SalesExecutiveModel
	if err := db.Order("created_at DESC").Find(&execs).Error; err != nil {
		return nil, err
	}
	out := make([]ExecutiveRow, 0, len(execs))
	if len(execs) == 0 {
		return out, nil
	}
	userIDs := make([]uuid.UUID, 0, len(execs))
	execIDs := make([]uuid.UUID, 0, len(execs))
	for _, e := range execs {
		userIDs = append(userIDs, e.UserID)
		execIDs = append(execIDs, e.ID)
	}
	var users []userModel.UserModel
	if err := db.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	byUser := make(map[uuid.UUID]userModel.UserModel, len(users))
	for _, u := range users {
		byUser[u.ID] = u
	}
	var counts []struct {
		SalesExecutiveID uuid.UUID
		N                int64
	}
	if err := db.Model(&model.ReferralCodeModel{}).
		Select("sales_executive_id, COUNT(*) AS n").
		Where("sales_executive_id IN ?", execIDs).
		Group("sales_executive_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	byExec := map[uuid.UUID]int64{}
	for _, c := range counts {
		byExec[c.SalesExecutiveID] = c.N
	}
	for _, e := range execs {
		u := byUser[e.UserID]
		out = append(out, ExecutiveRow{
			SalesExecutiveModel: e,
			UserName:            u.UserName,
			Email:               u.Email,
			FullName:            u.FullName(),
			CodeCount:           byExec[e.ID],
		})
	}
	return out, nil
}

// CreateExecutive: user dijadikan sales_executive (role ikut diubah).
func CreateExecutive(ctx context.Context, db *gorm.DB, userID uuid.UUID, employeeID, phone string) (*model.SalesExecutiveModel, error) {
	se := model.SalesExecutiveModel{
		UserID:     userID,
		EmployeeID: strings.TrimSpace(employeeID),
		Phone:      strings.TrimSpace(phone),
		IsActive:   true,
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&userModel.UserModel{}).Where("id = ?", userID).Update("role", constants.RoleSalesExecutive)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user: %w", gorm.ErrRecordNotFound)
		}
		return tx.Create(&se).Error
	})
	if err != nil {
		return nil, err
	}
	return &se, nil
}

func (s *ReferralService) ExecutiveByUser(ctx context.Context, userID uuid.UUID) (*model.SalesExecutiveModel, error) {
	var se model.SalesExecutiveModel
	if err := s.DB.WithContext(ctx).First(&se, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotSalesExecutive
		}
		return nil, err
	}
	return &se, nil
}

/* ===================== CODES ===================== */

// CreateCode: kode dibangkitkan ulang kalau bentrok (maks 5 kali).
func (s *ReferralService) CreateCode(ctx context.Context, executiveID uuid.UUID, pct decimal.Decimal) (*model.ReferralCodeModel, error) {
	var se model.SalesExecutiveModel
	if err := s.DB.WithContext(ctx).First(&se, "id = ?", executiveID).Error; err != nil {
		return nil, err
	}
	if !se.IsActive {
		return nil, ErrExecutiveInactive
	}
	for attempt := 0; attempt < 5; attempt++ {
		code, err := GenerateCode()
		if err != nil {
			return nil, err
		}
		var n int64
		if err := s.DB.WithContext(ctx).Model(&model.ReferralCodeModel{}).Where("code = ?", code).Count(&n).Error; err != nil {
			return nil, err
		}
		if n > 0 {
			continue
		}
		rc := model.ReferralCodeModel{
			Code:               code,
			SalesExecutiveID:   executiveID,
			DiscountPercentage: pct.Round(2),
			IsActive:           true,
		}
		if err := s.DB.WithContext(ctx).Create(&rc).Error; err != nil {
			return nil, err
		}
		return &rc, nil
	}
	return nil, errors.New("could not generate a unique referral code")
}

func (s *ReferralService) SetCodeActive(ctx context.Context, codeID uuid.UUID, active bool) error {
	res := s.DB.WithContext(ctx).Model(&model.ReferralCodeModel{}).Where("id = ?", codeID).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *ReferralService) CodesOf(ctx context.Context, executiveID uuid.UUID) ([]model.ReferralCodeModel, error) {
	var rows []model.ReferralCodeModel
	err := s.DB.WithContext(ctx).Where("sales_executive_id = ?", executiveID).Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// DashboardFor: kode milik executive + statistik order + 10 order terakhir.
func (s *ReferralService) DashboardFor(ctx context.Context, reports *ReportService, executiveID uuid.UUID) (*ExecutiveDashboard, error) {
	var se model.SalesExecutiveModel
	if err := s.DB.WithContext(ctx).First(&se, "id = ?", executiveID).Error; err != nil {
		return nil, err
	}
	codes, err := s.CodesOf(ctx, executiveID)
	if err != nil {
		return nil, err
	}
	stats, err := reports.ExecutiveStats(ctx, executiveID)
	if err != nil {
		return nil, err
	}
	recent, err := reports.RecentOrders(ctx, executiveID, 10)
	if err != nil {
		return nil, err
	}
	return &ExecutiveDashboard{Executive: se, Codes: codes, Stats: stats, RecentOrders: recent}, nil
}
