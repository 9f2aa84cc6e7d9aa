// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"smartstudy_backend/internals/configs"
	"smartstudy_backend/internals/constants"

	dppRoute "smartstudy_backend/internals/features/assessments/dpps/route"
	practiceRoute "smartstudy_backend/internals/features/assessments/practice/route"
	quizRoute "smartstudy_backend/internals/features/assessments/quizzes/route"
	batchRoute "smartstudy_backend/internals/features/batches/route"
	commentRoute "smartstudy_backend/internals/features/comments/route"
	orderRoute "smartstudy_backend/internals/features/commerce/orders/route"
	orderService "smartstudy_backend/internals/features/commerce/orders/service"
	referralRoute "smartstudy_backend/internals/features/commerce/referrals/route"
	courseRoute "smartstudy_backend/internals/features/courses/route"
	doubtRoute "smartstudy_backend/internals/features/doubts/route"
	homeRoute "smartstudy_backend/internals/features/home/route"
	authRoute "smartstudy_backend/internals/features/users/auth/route"
	"smartstudy_backend/internals/features/users/notifications/mailer"
	notifRoute "smartstudy_backend/internals/features/users/notifications/route"
	notifService "smartstudy_backend/internals/features/users/notifications/service"
	userRoute "smartstudy_backend/internals/features/users/user/route"
	ossHelper "smartstudy_backend/internals/helpers/oss"
	authMiddleware "smartstudy_backend/internals/middlewares/auth"
)

var startTime time.Time

// Deps: service bersama yang dipakai route dan scheduler.
type Deps struct {
	Blobs    ossHelper.BlobService
	Notifier *notifService.Service
	Orders   *orderService.OrderService
}

// NewDeps: rakit dependency dari ENV (OSS, SendGrid, Midtrans).
func NewDeps(db *gorm.DB) Deps {
	notifier := notifService.New(db, mailer.NewFromEnv())
	gw := orderService.NewGatewayFromEnv(configs.MidtransServerKey, configs.MidtransUseProd)
	return Deps{
		Blobs:    ossHelper.NewBlobServiceFromEnv(),
		Notifier: notifier,
		Orders:   orderService.New(db, gw, notifier),
	}
}

func SetupRoutes(app *fiber.App, db *gorm.DB, d Deps) {
	startTime = time.Now()

	BaseRoutes(app, db)

	// ===================== AUTH =====================
	// harus sebelum group /api/a: middleware group dicocokkan per prefix
	log.Println("[INFO] Setting up AuthRoutes...")
	authRoute.AuthRoutes(app, db)

	// ===================== GROUPS =====================

	// PUBLIC → JWT opsional
	log.Println("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api/public", authMiddleware.OptionalAuth(db))

	// PRIVATE → semua role yang login
	log.Println("[INFO] Setting up PRIVATE group...")
	private := app.Group("/api/u", authMiddleware.AuthMiddleware(db))

	// TEACHER → teacher + admin
	log.Println("[INFO] Setting up TEACHER group (Auth + staff)...")
	teacher := app.Group("/api/t",
		authMiddleware.AuthMiddleware(db),
		authMiddleware.OnlyRoles(constants.RoleErrorStaff("this feature"), constants.StaffRoles...),
	)

	// ADMIN
	log.Println("[INFO] Setting up ADMIN group (Auth + admin)...")
	admin := app.Group("/api/a",
		authMiddleware.AuthMiddleware(db),
		authMiddleware.OnlyRoles(constants.RoleErrorAdmin("this feature"), constants.RoleAdmin),
	)

	// SALES → sales executive + admin
	log.Println("[INFO] Setting up SALES group (Auth + sales)...")
	sales := app.Group("/api/s",
		authMiddleware.AuthMiddleware(db),
		authMiddleware.OnlyRoles(constants.RoleErrorSales("this feature"), constants.SalesRoles...),
	)

	// ===================== MOUNT ROUTES =====================

	log.Println("[INFO] Mounting Home routes...")
	homeRoute.HomePublicRoutes(public, db)

	log.Println("[INFO] Mounting User routes...")
	userRoute.UserRoutes(private, db)
	userRoute.UserAdminRoutes(admin, db)
	notifRoute.NotificationUserRoutes(private, d.Notifier)

	log.Println("[INFO] Mounting Course routes...")
	courseRoute.CoursePublicRoutes(public, db)
	courseRoute.CourseUserRoutes(private, db, d.Orders)
	courseRoute.CourseTeacherRoutes(teacher, db, d.Blobs)

	log.Println("[INFO] Mounting Batch routes...")
	batchRoute.BatchPublicRoutes(public, db)
	batchRoute.BatchUserRoutes(private, db)
	batchRoute.BatchTeacherRoutes(teacher, db, d.Blobs)

	log.Println("[INFO] Mounting Assessment routes...")
	dppRoute.DPPUserRoutes(private, db, d.Blobs)
	dppRoute.DPPTeacherRoutes(teacher, db, d.Blobs)
	quizRoute.QuizUserRoutes(private, db)
	quizRoute.QuizTeacherRoutes(teacher, db)
	practiceRoute.PracticeUserRoutes(private, db)
	practiceRoute.PracticeTeacherRoutes(teacher, db)

	log.Println("[INFO] Mounting Comment & Doubt routes...")
	commentRoute.CommentUserRoutes(private, db, d.Notifier)
	doubtRoute.DoubtUserRoutes(private, db, d.Notifier, d.Blobs)
	doubtRoute.DoubtTeacherRoutes(teacher, db, d.Notifier)

	log.Println("[INFO] Mounting Commerce routes...")
	orderRoute.OrderPublicRoutes(public, d.Orders)
	orderRoute.OrderUserRoutes(private, d.Orders)
	referralRoute.ReferralPublicRoutes(public, db)
	referralRoute.ReferralSalesRoutes(sales, db)
	referralRoute.ReferralAdminRoutes(admin, db)
}
