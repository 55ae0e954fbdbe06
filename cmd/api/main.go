package main

import (
	"context"
	"errors"
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

	_ "github.com/sjperalta/fintera-tuition/docs" // Swagger docs
	"github.com/sjperalta/fintera-tuition/internal/config"
	"github.com/sjperalta/fintera-tuition/internal/database"
	"github.com/sjperalta/fintera-tuition/internal/handlers"
	"github.com/sjperalta/fintera-tuition/internal/jobs"
	"github.com/sjperalta/fintera-tuition/internal/middleware"
	"github.com/sjperalta/fintera-tuition/internal/models"
	"github.com/sjperalta/fintera-tuition/internal/repository"
	"github.com/sjperalta/fintera-tuition/internal/services"
	"github.com/sjperalta/fintera-tuition/pkg/logger"
	"github.com/sjperalta/fintera-tuition/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// @title Fintera Tuition API
// @version 1.0
// @description Tuition fee reconciliation for schools: payments, dues and reminders

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

	// Initialize Sentry (GlitchTip) when DSN is configured
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

	if cfg.EnableEmailNotifications && cfg.ResendAPIKey == "" {
		logger.Warn("Dues reminders disabled: RESEND_API_KEY is not set")
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// The engine refuses to start without a valid academic calendar
	engine, err := services.NewEngine(cfg)
	if err != nil {
		logger.Error("Invalid reconciliation configuration", "error", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL, cfg.Environment)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, worker, engine, cfg)

	// Schedule recurring jobs
	scheduleJobs(worker, svcs, cfg)

	// Initialize handlers
	h := handlers.NewHandlers(svcs, cfg.SchoolName)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // report exports
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

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
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Redirect root to swagger
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Read access for every staff role
			protected.GET("/students/:student_id/reconciliation", h.Reconciliation.Show)
			protected.GET("/students/:student_id/payments", h.Payment.IndexByStudent)
			protected.GET("/payments", h.Payment.Index)
			protected.GET("/reports/dues", h.Report.Dues)

			// Payment entry (admin and accountants)
			writers := protected.Group("")
			writers.Use(middleware.RequireRole(models.RoleAdmin, models.RoleAccountant))
			{
				writers.POST("/students/:student_id/payments", h.Payment.Create)
				writers.POST("/payments/:payment_id/void", h.Payment.Void)
			}

			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				admin.GET("/audits", h.Audit.Index)
				admin.GET("/jobs/status", h.Job.Status)
				admin.POST("/jobs/dues-reminders", h.Job.SendReminders)
			}
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services, cfg *config.Config) {
	// Remind guardians of overdue fees; the cooldown keeps restarts from resending
	worker.ScheduleEveryImmediate("dues-reminders", cfg.ReminderInterval, func(ctx context.Context) error {
		logger.Info("[Job] Sending dues reminders...")
		_, err := svcs.Dues.SendReminders(ctx, time.Now())
		return err
	})

	// Drop expired reconciliation results
	if cfg.ReconciliationCacheTTL > 0 {
		worker.ScheduleEvery("reconciliation-cache-purge", cfg.ReconciliationCacheTTL, func(ctx context.Context) error {
			if purged := svcs.Reconciliation.PurgeExpired(ctx); purged > 0 {
				logger.Debug("[Job] Purged expired reconciliations", "count", purged)
			}
			return nil
		})
	}

	logger.Info("Scheduled recurring jobs")
}
