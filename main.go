package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"smartstudy_backend/internals/configs"
	database "smartstudy_backend/internals/databases"
	orderService "smartstudy_backend/internals/features/commerce/orders/service"
	scheduler "smartstudy_backend/internals/features/users/auth/scheduler"
	helper "smartstudy_backend/internals/helpers"
	ossHelper "smartstudy_backend/internals/helpers/oss"
	middlewares "smartstudy_backend/internals/middlewares"
	routes "smartstudy_backend/internals/route"
)

func main() {
	root := &cobra.Command{
		Use:          "smartstudy_backend",
		Short:        "SmartStudy learning platform API",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configs.LoadEnv()
			configs.InitRollbar()
		},
		// tanpa subcommand → serve
		RunE: func(cmd *cobra.Command, args []string) error { return runServe() },
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE:  func(cmd *cobra.Command, args []string) error { return runServe() },
		},
		migrateCmd(),
		seedCmd(),
		createSalesExecutiveCmd(),
	)

	err := root.Execute()
	configs.FlushRollbar()
	if err != nil {
		os.Exit(1)
	}
}

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
		BodyLimit:               configs.GetEnvInt("BODY_LIMIT_MB", 110) * 1024 * 1024,
		ErrorHandler:            errorHandler,
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault})) // gzip
	app.Use(etag.New())                                                  // 304 caching

	middlewares.SetupMiddlewares(app)
	return app
}

// errorHandler: envelope JSON seragam; 5xx dilaporkan ke rollbar.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal Server Error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code, msg = fe.Code, fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		log.Printf("[ERROR] %s %s: %v", c.Method(), c.OriginalURL(), err)
		configs.ReportError(err, map[string]interface{}{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     code,
			"request_id": c.Locals("reqid"),
		})
	}
	return helper.JsonError(c, code, msg)
}

func runServe() error {
	app := newApp()

	// 🔌 DB connect + pool + warm-up
	database.ConnectDB()
	database.TunePool()
	database.WarmUpQueries()

	deps := routes.NewDeps(database.DB)

	// ⏱ scheduler setelah DB siap
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)))
	scheduler.RegisterBlacklistCleanup(c, database.DB)
	orderService.RegisterOrderExpiry(c, deps.Orders)
	ossHelper.RegisterTrashReaper(c, deps.Blobs)
	c.Start()

	// ✅ Routes
	routes.SetupRoutes(app, database.DB, deps)

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := configs.GetEnv("PORT", "3000")

	// Start server non-blocking
	errCh := make(chan error, 1)
	go func() {
		log.Printf("✅ Listening on :%s", port)
		errCh <- app.Listen("0.0.0.0:" + port)
	}()

	// graceful shutdown + tutup pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	var serveErr error
	select {
	case <-quit:
	case serveErr = <-errCh:
		log.Printf("[ERROR] server error: %v", serveErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)
	<-c.Stop().Done()
	database.Close()
	return serveErr
}
