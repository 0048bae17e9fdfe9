package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/fleuri/fleuri-api/docs" // Swagger docs
	"github.com/fleuri/fleuri-api/internal/config"
	"github.com/fleuri/fleuri-api/internal/database"
	"github.com/fleuri/fleuri-api/internal/handlers"
	"github.com/fleuri/fleuri-api/internal/jobs"
	"github.com/fleuri/fleuri-api/internal/middleware"
	"github.com/fleuri/fleuri-api/internal/repository"
	"github.com/fleuri/fleuri-api/internal/services"
	"github.com/fleuri/fleuri-api/internal/storage"
	"github.com/fleuri/fleuri-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Fleuri API
// @version 1.0
// @description REST API for the Fleuri floristry marketplace

// @contact.name API Support
// @contact.email support@fleuri.app

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Warn if Resend email is not configured
	if cfg.ResendAPIKey == "" || cfg.FromEmail == "" {
		logger.Warn("Resend email disabled: RESEND_API_KEY or FROM_EMAIL not set. Set them in .env and ensure the From domain is verified in Resend dashboard.")
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	// Initialize storage (compliance export archives)
	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage")

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, worker, store, cfg)

	// Schedule recurring jobs
	scheduleJobs(worker, svcs)

	// Initialize handlers
	h := handlers.NewHandlers(svcs)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown background worker
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Redirect root to swagger
		router.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
		})

		// Swagger documentation
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		// Password recovery (public)
		v1.POST("/users/send_recovery_code", h.User.SendRecoveryCode)
		v1.POST("/users/verify_recovery_code", h.User.VerifyRecoveryCode)
		v1.POST("/users/update_password_with_code", h.User.UpdatePasswordWithCode)

		// Public catalog browsing
		v1.GET("/products", h.Product.Index)
		v1.GET("/products/:product_id", h.Product.Show)

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Admin-only routes
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireAdmin())
			{
				// Commission rate changes (two-person rule enforced in the service)
				admin.GET("/commissions", h.Commission.Index)
				admin.POST("/commissions", h.Commission.Create)
				admin.GET("/commissions/effective", h.Commission.Effective)
				admin.GET("/commissions/:commission_id", h.Commission.Show)
				admin.POST("/commissions/:commission_id/approve", h.Commission.Approve)
				admin.POST("/commissions/:commission_id/reject", h.Commission.Reject)

				// Payout oversight
				admin.POST("/payouts/:payout_id/request-approval", h.Payout.RequestApproval)
				admin.POST("/payouts/:payout_id/approve", h.Payout.Approve)
				admin.POST("/payouts/:payout_id/retry", h.Payout.Retry)

				// Legal holds
				admin.POST("/orders/:order_id/legal_hold", h.Order.SetLegalHold)
				admin.DELETE("/orders/:order_id/legal_hold", h.Order.ReleaseLegalHold)

				// Retention
				admin.GET("/retention/preview", h.Retention.Preview)
				admin.POST("/retention/run", h.Retention.Run)

				// Audit trail
				admin.GET("/audits", h.Audit.Index)
				admin.GET("/audits/verify", h.Audit.Verify)
				admin.GET("/audits/export", h.Audit.Export)

				// User management
				admin.GET("/users", h.User.Index)
				admin.POST("/users", h.User.Create)
				admin.DELETE("/users/:user_id", h.User.Delete)
				admin.POST("/users/:user_id/restore", h.User.Restore)
				admin.PATCH("/users/:user_id/toggle_status", h.User.ToggleStatus)

				// Background jobs
				admin.GET("/jobs/status", h.Job.Status)
			}

			// Seller routes (shop management)
			seller := protected.Group("")
			seller.Use(middleware.RequireRole("admin", "seller"))
			{
				seller.POST("/products", h.Product.Create)
				seller.PUT("/products/:product_id", h.Product.Update)
				seller.POST("/products/:product_id/archive", h.Product.Archive)

				seller.POST("/payouts", h.Payout.Create)
				seller.POST("/orders/:order_id/prepare", h.Order.MarkPreparing)
				seller.POST("/orders/:order_id/deliver", h.Order.MarkDelivered)
			}

			// Orders and payouts (visibility scoped per role inside the handlers)
			protected.GET("/orders", h.Order.Index)
			protected.POST("/orders", h.Order.Create)
			protected.GET("/orders/:order_id", h.Order.Show)
			protected.POST("/orders/:order_id/cancel", h.Order.Cancel)
			protected.GET("/payouts", h.Payout.Index)
			protected.GET("/payouts/:payout_id", h.Payout.Show)

			// Profiles
			protected.GET("/users/:user_id", middleware.RequireAdminOrOwner(), h.User.Show)
			protected.PUT("/users/:user_id", middleware.RequireAdminOrOwner(), h.User.Update)
			protected.POST("/users/change_password", h.User.ChangePassword)

			// Notifications (users manage their own)
			// Static route first so "mark_all_as_read" is not matched as :notification_id
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.Index)
				notifications.POST("/mark_all_as_read", h.Notification.MarkAllAsRead)
				notifications.PUT("/:notification_id", h.Notification.Update)
				notifications.DELETE("/:notification_id", h.Notification.Delete)
			}
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services) {
	// Nightly retention preview. Destructive runs stay endpoint-only so a
	// named admin (and a reason) is always attached to actual deletion;
	// the preview still audits per-table counts and surfaces what a real
	// run would remove.
	worker.ScheduleEvery(24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Running retention preview...")
		result, err := svcs.Retention.Run(ctx, services.RunOptions{DryRun: true})
		if err != nil {
			return err
		}
		for _, t := range result.Tables {
			if t.Error != nil {
				logger.Warn("[Job] Retention preview partial failure", "table", t.Table, "error", *t.Error)
			}
		}
		return nil
	})

	// Weekly audit chain verification
	worker.ScheduleEveryImmediate(7*24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Verifying audit chain integrity...")
		report, err := svcs.Audit.VerifyChain(ctx)
		if err != nil {
			return err
		}
		if !report.Valid {
			logger.Error("[Job] Audit chain verification FAILED", "broken_at_id", report.BrokenAtID, "reason", report.Reason)
			return nil
		}
		logger.Info("[Job] Audit chain verified", "entries", report.Entries)
		return nil
	})

	logger.Info("Scheduled recurring jobs")
}
