package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"smartstudy_backend/internals/constants"
	dppModel "smartstudy_backend/internals/features/assessments/dpps/model"
	quizModel "smartstudy_backend/internals/features/assessments/quizzes/model"
	batchModel "smartstudy_backend/internals/features/batches/model"
	batchService "smartstudy_backend/internals/features/batches/service"
	orderModel "smartstudy_backend/internals/features/commerce/orders/model"
	refService "smartstudy_backend/internals/features/commerce/referrals/service"
	courseModel "smartstudy_backend/internals/features/courses/model"
	courseService "smartstudy_backend/internals/features/courses/service"
	doubtModel "smartstudy_backend/internals/features/doubts/model"
	doubtService "smartstudy_backend/internals/features/doubts/service"
	"smartstudy_backend/internals/features/users/user/model"
)

const recentLimit = 5

var (
	ErrNoDashboard     = errors.New("no dashboard for this role")
	ErrReportsDisabled = errors.New("sales reporting is not available")
)

type DashboardService struct {
	DB      *gorm.DB
	Reports *refService.ReportService
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	reports, err := refService.NewReportService(db)
	if err != nil {
		log.Printf("[REFERRAL] sales dashboard disabled: %v", err)
	}
	return &DashboardService{DB: db, Reports: reports}
}

type StudentDashboard struct {
	Enrollments        []courseModel.EnrollmentModel `json:"enrollments"`
	Batches            []batchModel.BatchModel       `json:"batches"`
	RecentQuizAttempts []quizModel.QuizAttemptModel  `json:"recent_quiz_attempts"`
	RecentDPPAttempts  []dppModel.DPPAttemptModel    `json:"recent_dpp_attempts"`
	OpenDoubts         []doubtModel.DoubtModel       `json:"open_doubts"`
}

type TeacherDashboard struct {
	Doubts       doubtService.StatusCounts `json:"doubts"`
	LatestDoubts []doubtModel.DoubtModel   `json:"latest_doubts"`
	ResolvedByMe int64                     `json:"resolved_by_me"`
}

type AdminDashboard struct {
	UsersByRole      map[string]int64 `json:"users_by_role"`
	Subjects         int64            `json:"subjects"`
	Batches          int64            `json:"batches"`
	Quizzes          int64            `json:"quizzes"`
	DPPs             int64            `json:"dpps"`
	OpenDoubts       int64            `json:"open_doubts"`
	SuccessfulOrders int64            `json:"successful_orders"`
	Revenue          decimal.Decimal  `json:"revenue"`
}

type Dashboard struct {
	Role    string                         `json:"role"`
	Student *StudentDashboard              `json:"student,omitempty"`
	Teacher *TeacherDashboard              `json:"teacher,omitempty"`
	Sales   *refService.ExecutiveDashboard `json:"sales,omitempty"`
	Admin   *AdminDashboard                `json:"admin,omitempty"`
}

// For: isi dashboard sesuai role.
func (s *DashboardService) For(ctx context.Context, userID uuid.UUID, role string) (*Dashboard, error) {
	out := &Dashboard{Role: role}
	var err error
	switch role {
	case constants.RoleStudent:
		out.Student, err = s.student(ctx, userID)
	case constants.RoleTeacher:
		out.Teacher, err = s.teacher(ctx, userID)
	case constants.RoleSalesExecutive:
		out.Sales, err = s.sales(ctx, userID)
	case constants.RoleAdmin:
		out.Admin, err = s.admin(ctx)
	default:
		return nil, ErrNoDashboard
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DashboardService) student(ctx context.Context, userID uuid.UUID) (*StudentDashboard, error) {
	db := s.DB.WithContext(ctx)
	out := &StudentDashboard{}
	var err error
	if out.Enrollments, err = courseService.New(s.DB).MyEnrollments(ctx, userID); err != nil {
		return nil, err
	}
	if out.Batches, err = batchService.New(s.DB).MyBatches(ctx, userID); err != nil {
		return nil, err
	}
	if err := db.Where("user_id = ? AND completed_at IS NOT NULL", userID).
		Order("completed_at DESC").Limit(recentLimit).
		Find(&out.RecentQuizAttempts).Error; err != nil {
		return nil, err
	}
	if err := db.Where("user_id = ? AND completed_at IS NOT NULL", userID).
		Order("completed_at DESC").Limit(recentLimit).
		Find(&out.RecentDPPAttempts).Error; err != nil {
		return nil, err
	}
	if err := db.Where("student_id = ? AND status <> ?", userID, doubtModel.StatusResolved).
		Order("created_at DESC").
		Find(&out.OpenDoubts).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DashboardService) teacher(ctx context.Context, userID uuid.UUID) (*TeacherDashboard, error) {
	v := doubtService.Viewer{ID: userID, Role: constants.RoleTeacher}
	ds := doubtService.New(s.DB, nil)
	counts, err := ds.Counts(ctx, v)
	if err != nil {
		return nil, err
	}
	latest, _, err := ds.List(ctx, v, "", 0, recentLimit)
	if err != nil {
		return nil, err
	}
	out := &TeacherDashboard{Doubts: *counts, LatestDoubts: latest}
	if err := s.DB.WithContext(ctx).Model(&doubtModel.DoubtModel{}).
		Where("resolved_by = ?", userID).
		Count(&out.ResolvedByMe).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DashboardService) sales(ctx context.Context, userID uuid.UUID) (*refService.ExecutiveDashboard, error) {
	if s.Reports == nil {
		return nil, ErrReportsDisabled
	}
	rs := refService.New(s.DB)
	se, err := rs.ExecutiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return rs.DashboardFor(ctx, s.Reports, se.ID)
}

func (s *DashboardService) admin(ctx context.Context) (*AdminDashboard, error) {
	db := s.DB.WithContext(ctx)
	out := &AdminDashboard{UsersByRole: map[string]int64{}}

	var roles []struct {
		Role string
		N    int64
	}
	if err := db.Model(&model.UserModel{}).Select("role, COUNT(*) AS n").Group("role").Scan(&roles).Error; err != nil {
		return nil, err
	}
	for _, r := range roles {
		out.UsersByRole[r.Role] = r.N
	}

	counts := []struct {
		m   any
		dst *int64
	}{
		{&courseModel.SubjectModel{}, &out.Subjects},
		{&batchModel.BatchModel{}, &out.Batches},
		{&quizModel.QuizModel{}, &out.Quizzes},
		{&dppModel.DPPModel{}, &out.DPPs},
	}
	for _, c := range counts {
		if err := db.Model(c.m).Where("is_active = ?", true).Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	if err := db.Model(&doubtModel.DoubtModel{}).Where("status <> ?", doubtModel.StatusResolved).Count(&out.OpenDoubts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&orderModel.OrderModel{}).Where("status = ?", orderModel.StatusSuccessful).Count(&out.SuccessfulOrders).Error; err != nil {
		return nil, err
	}
	var revenue decimal.NullDecimal
	if err := db.Model(&orderModel.OrderModel{}).
		Select("SUM(amount)").
		Where("status = ?", orderModel.StatusSuccessful).
		Row().Scan(&revenue); err != nil {
		return nil, err
	}
	out.Revenue = revenue.Decimal
	return out, nil
}
