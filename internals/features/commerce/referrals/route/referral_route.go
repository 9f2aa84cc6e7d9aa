package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"smartstudy_backend/internals/features/commerce/referrals/controller"
)

// Base: /api/public
func ReferralPublicRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewReferralController(db)
	r.Post("/referrals/validate", ctl.Validate)
}

// Base: /api/s (sales executive/admin)
func ReferralSalesRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewReferralController(db)
	r.Get("/dashboard", ctl.Dashboard)
}

// Base: /api/a
func ReferralAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewReferralController(db)

	se := r.Group("/sales-executives")
	se.Get("/", ctl.ListExecutives)
	se.Post("/", ctl.CreateExecutive)
	se.Get("/:id/codes", ctl.ExecutiveCodes)

	rc := r.Group("/referral-codes")
	rc.Post("/", ctl.CreateCode)
	rc.Patch("/:id", ctl.SetCodeActive)

	r.Get("/sales/report", ctl.SalesReport)
	r.Get("/sales/report.xlsx", ctl.ExportSalesReport)
}
