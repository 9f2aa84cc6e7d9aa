package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"smartstudy_backend/internals/features/commerce/referrals/model"
)

// ReportService: agregat penjualan lewat sqlx di atas *sql.DB milik gorm.
type ReportService struct {
	DB *sqlx.DB
}

// NewReportService memakai pool yang sama dengan gorm (tidak buka koneksi baru).
func NewReportService(gdb *gorm.DB) (*ReportService, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	driver := gdb.Dialector.Name()
	switch driver {
	case "sqlite":
		driver = "sqlite3"
	case "postgres":
		driver = "pgx"
	}
	return &ReportService{DB: sqlx.NewDb(sqlDB, driver)}, nil
}

type OrderStats struct {
	TotalOrders   int64           `db:"total_orders" json:"total_orders"`
	Enrolled      int64           `db:"enrolled" json:"enrolled"`
	Pending       int64           `db:"pending" json:"pending"`
	Cancelled     int64           `db:"cancelled" json:"cancelled"`
	Revenue       decimal.Decimal `db:"revenue" json:"total_revenue"`
	DiscountGiven decimal.Decimal `db:"discount_given" json:"total_discount"`
}

func (s *OrderStats) add(o OrderStats) {
	s.TotalOrders += o.TotalOrders
	s.Enrolled += o.Enrolled
	s.Pending += o.Pending
	s.Cancelled += o.Cancelled
	s.Revenue = s.Revenue.Add(o.Revenue)
	s.DiscountGiven = s.DiscountGiven.Add(o.DiscountGiven)
}

// successful = enrolled, failed+expired = cancelled
const statsColumns = `
	COUNT(o.id) AS total_orders,
	COALESCE(SUM(CASE WHEN o.status = 'successful' THEN 1 ELSE 0 END), 0) AS enrolled,
	COALESCE(SUM(CASE WHEN o.status = 'pending' THEN 1 ELSE 0 END), 0) AS pending,
	COALESCE(SUM(CASE WHEN o.status IN ('failed', 'expired') THEN 1 ELSE 0 END), 0) AS cancelled,
	COALESCE(SUM(CASE WHEN o.status = 'successful' THEN o.amount ELSE 0 END), 0) AS revenue,
	COALESCE(SUM(CASE WHEN o.status = 'successful' THEN o.discount_amount ELSE 0 END), 0) AS discount_given`

type RecentOrder struct {
	OrderID        string          `db:"order_id" json:"order_id"`
	ItemType       string          `db:"item_type" json:"item_type"`
	ReferralCode   string          `db:"referral_code" json:"referral_code"`
	Amount         decimal.Decimal `db:"amount" json:"amount"`
	DiscountAmount decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	Status         string          `db:"status" json:"status"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

type ExecutiveDashboard struct {
	Executive    model.SalesExecutiveModel `json:"executive"`
	Codes        []model.ReferralCodeModel `json:"codes"`
	Stats        OrderStats                `json:"stats"`
	RecentOrders []RecentOrder             `json:"recent_orders"`
}

func (s *ReportService) ExecutiveStats(ctx context.Context, executiveID uuid.UUID) (OrderStats, error) {
	var st OrderStats
	q := s.DB.Rebind(`SELECT` + statsColumns + ` FROM orders o WHERE o.sales_executive_id = ?`)
	if err := s.DB.GetContext(ctx, &st, q, executiveID); err != nil {
		return st, fmt.Errorf("executive stats: %w", err)
	}
	return st, nil
}

func (s *ReportService) RecentOrders(ctx context.Context, executiveID uuid.UUID, limit int) ([]RecentOrder, error) {
	rows := []RecentOrder{}
	q := s.DB.Rebind(`
		SELECT order_id, item_type, COALESCE(referral_code, '') AS referral_code,
		       amount, discount_amount, status, created_at
		FROM orders
		WHERE sales_executive_id = ?
		ORDER BY created_at DESC
		LIMIT ?`)
	if err := s.DB.SelectContext(ctx, &rows, q, executiveID, limit); err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}
	return rows, nil
}

type ExecutiveSales struct {
	ExecutiveID string `db:"executive_id" json:"executive_id"`
	EmployeeID  string `db:"employee_id" json:"employee_id"`
	UserName    string `db:"user_name" json:"user_name"`
	Email       string `db:"email" json:"email"`
	IsActive    bool   `db:"is_active" json:"is_active"`
	OrderStats
}

type SalesReport struct {
	Executives  []ExecutiveSales `json:"executives"`
	Totals      OrderStats       `json:"totals"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// SalesReport: satu baris per executive (LEFT JOIN, executive tanpa order tetap muncul).
func (s *ReportService) SalesReport(ctx context.Context) (*SalesReport, error) {
	rows := []ExecutiveSales{}
	q := `
		SELECT CAST(se.id AS TEXT) AS executive_id, se.employee_id, se.is_active,
		       u.user_name, u.email,` + statsColumns + `
		FROM sales_executives se
		JOIN users u ON u.id = se.user_id
		LEFT JOIN orders o ON o.sales_executive_id = se.id
		GROUP BY se.id, se.employee_id, se.is_active, u.user_name, u.email
		ORDER BY revenue DESC, se.employee_id ASC`
	if err := s.DB.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("sales report: %w", err)
	}
	rep := &SalesReport{Executives: rows, GeneratedAt: time.Now().UTC()}
	for _, r := range rows {
		rep.Totals.add(r.OrderStats)
	}
	return rep, nil
}

/* ===================== XLSX EXPORT ===================== */

var reportHeader = []any{
	"Employee ID", "Username", "Email", "Active",
	"Total Orders", "Enrolled", "Pending", "Cancelled",
	"Revenue", "Discount Given",
}

// ExportXLSX: header tebal, satu baris per executive, baris TOTAL di akhir.
func ExportXLSX(rep *SalesReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	reportSheet := f.GetSheetName(0)
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(reportSheet, "A1", &reportHeader); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(reportSheet, "A1", "J1", bold); err != nil {
		return nil, err
	}

	row := 2
	for _, e := range rep.Executives {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		vals := []any{
			e.EmployeeID, e.UserName, e.Email, e.IsActive,
			e.TotalOrders, e.Enrolled, e.Pending, e.Cancelled,
			e.Revenue.InexactFloat64(), e.DiscountGiven.InexactFloat64(),
		}
		if err := f.SetSheetRow(reportSheet, cell, &vals); err != nil {
			return nil, err
		}
		row++
	}

	t := rep.Totals
	cell, _ := excelize.CoordinatesToCellName(1, row)
	totals := []any{
		"TOTAL", "", "", "",
		t.TotalOrders, t.Enrolled, t.Pending, t.Cancelled,
		t.Revenue.InexactFloat64(), t.DiscountGiven.InexactFloat64(),
	}
	if err := f.SetSheetRow(reportSheet, cell, &totals); err != nil {
		return nil, err
	}
	end, _ := excelize.CoordinatesToCellName(len(reportHeader), row)
	if err := f.SetCellStyle(reportSheet, cell, end, bold); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(reportSheet, "A", "C", 22)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
