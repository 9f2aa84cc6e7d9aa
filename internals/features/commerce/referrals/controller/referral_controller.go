package controller

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"smartstudy_backend/internals/constants"
	batchModel "smartstudy_backend/internals/features/batches/model"
	"smartstudy_backend/internals/features/commerce/referrals/dto"
	refService "smartstudy_backend/internals/features/commerce/referrals/service"
	courseModel "smartstudy_backend/internals/features/courses/model"
	helper "smartstudy_backend/internals/helpers"
)

type ReferralController struct {
	DB      *gorm.DB
	Svc     *refService.ReferralService
	Reports *refService.ReportService
}

func NewReferralController(db *gorm.DB) *ReferralController {
	reports, err := refService.NewReportService(db)
	if err != nil {
		log.Printf("[REFERRAL] report service disabled: %v", err)
	}
	return &ReferralController{DB: db, Svc: refService.New(db), Reports: reports}
}

func writeReferralError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, refService.ErrNotSalesExecutive):
		return helper.JsonError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, refService.ErrExecutiveInactive):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	return helper.WriteDBError(c, err)
}

// 🟢 POST /api/public/referrals/validate
func (ctl *ReferralController) Validate(c *fiber.Ctx) error {
	var req dto.ValidateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if fe := helper.ValidateStruct(&req); fe != nil {
		return helper.JsonValidationError(c, fe)
	}

	var price decimal.Decimal
	if req.BatchID != nil {
		var b batchModel.BatchModel
		if err := ctl.DB.WithContext(c.UserContext()).
			Where("id = ? AND is_active = ?", *req.BatchID, true).
			First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.JsonError(c, fiber.StatusNotFound, "batch not found")
			}
			return helper.WriteDBError(c, err)
		}
		price = b.EffectivePrice()
	} else {
		p, ok := courseModel.PlanPrice(req.PlanType)
		if !ok {
			return helper.JsonValidationError(c, map[string]string{"plan_type": "unknown plan"})
		}
		price = p
	}

	q, err := ctl.Svc.Validate(c.UserContext(), req.Code, price)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	return helper.JsonOK(c, "ok", q)
}

/* ===================== ADMIN ===================== */

// 🟢 GET /api/a/sales-executives
func (ctl *ReferralController) ListExecutives(c *fiber.Ctx) error {
	rows, err := ctl.Svc.ListExecutives(c.UserContext())
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

// 🟢 POST /api/a/sales-executives (user existing dijadikan sales executive)
func (ctl *ReferralController) CreateExecutive(c *fiber.Ctx) error {
	var req dto.CreateExecutiveRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if fe := helper.ValidateStruct(&req); fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	se, err := refService.CreateExecutive(c.UserContext(), ctl.DB, req.UserID, req.EmployeeID, req.Phone)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	log.Printf("[REFERRAL] sales executive %s created for user %s", se.EmployeeID, se.UserID)
	return helper.JsonCreated(c, "sales executive created", se)
}

// 🟢 GET /api/a/sales-executives/:id/codes
func (ctl *ReferralController) ExecutiveCodes(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	rows, err := ctl.Svc.CodesOf(c.UserContext(), id)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

// 🟢 POST /api/a/referral-codes
func (ctl *ReferralController) CreateCode(c *fiber.Ctx) error {
	var req dto.CreateCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if fe := helper.ValidateStruct(&req); fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	if fe := req.Check(); fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	rc, err := ctl.Svc.CreateCode(c.UserContext(), req.SalesExecutiveID, req.DiscountPercentage)
	if err != nil {
		return writeReferralError(c, err)
	}
	log.Printf("[REFERRAL] code %s issued (%s%%) to executive %s", rc.Code, rc.DiscountPercentage, rc.SalesExecutiveID)
	return helper.JsonCreated(c, "referral code created", rc)
}

// 🟢 PATCH /api/a/referral-codes/:id
func (ctl *ReferralController) SetCodeActive(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.SetActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if fe := helper.ValidateStruct(&req); fe != nil {
		return helper.JsonValidationError(c, fe)
	}
	if err := ctl.Svc.SetCodeActive(c.UserContext(), id, *req.IsActive); err != nil {
		return helper.WriteDBError(c, err)
	}
	return helper.JsonUpdated(c, "referral code updated", fiber.Map{"id": id, "is_active": *req.IsActive})
}

// 🟢 GET /api/a/sales/report
func (ctl *ReferralController) SalesReport(c *fiber.Ctx) error {
	if ctl.Reports == nil {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "reporting unavailable")
	}
	rep, err := ctl.Reports.SalesReport(c.UserContext())
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "ok", rep)
}

// 🟢 GET /api/a/sales/report.xlsx
func (ctl *ReferralController) ExportSalesReport(c *fiber.Ctx) error {
	if ctl.Reports == nil {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "reporting unavailable")
	}
	rep, err := ctl.Reports.SalesReport(c.UserContext())
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	data, err := refService.ExportXLSX(rep)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	name := fmt.Sprintf("sales-report-%s.xlsx", time.Now().Format("20060102"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(data)
}

/* ===================== SALES EXECUTIVE ===================== */

// 🟢 GET /api/s/dashboard (admin boleh lihat via ?executive_id=)
func (ctl *ReferralController) Dashboard(c *fiber.Ctx) error {
	if ctl.Reports == nil {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "reporting unavailable")
	}
	ctx := c.UserContext()
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	var dash *refService.ExecutiveDashboard
	if helper.GetRole(c) == constants.RoleAdmin && c.Query("executive_id") != "" {
		id, perr := helper.ParseUUIDQuery(c, "executive_id")
		if perr != nil {
			return helper.JsonFromError(c, perr)
		}
		dash, err = ctl.Svc.DashboardFor(ctx, ctl.Reports, id)
	} else {
		se, serr := ctl.Svc.ExecutiveByUser(ctx, userID)
		if serr != nil {
			return writeReferralError(c, serr)
		}
		dash, err = ctl.Svc.DashboardFor(ctx, ctl.Reports, se.ID)
	}
	if err != nil {
		return writeReferralError(c, err)
	}
	return helper.JsonOK(c, "ok", dash)
}
