package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/shopadmin-backend/config"
	"github.com/ikkim/shopadmin-backend/internal/app/controller"
	"github.com/ikkim/shopadmin-backend/internal/app/refund"
	"github.com/ikkim/shopadmin-backend/internal/app/repository"
	"github.com/ikkim/shopadmin-backend/internal/app/service"
	"github.com/ikkim/shopadmin-backend/internal/cache"
	"github.com/ikkim/shopadmin-backend/internal/db"
	"github.com/ikkim/shopadmin-backend/internal/middleware"
	"github.com/ikkim/shopadmin-backend/internal/router"
	"github.com/ikkim/shopadmin-backend/internal/scheduler"
	"github.com/ikkim/shopadmin-backend/internal/storage"
	"github.com/ikkim/shopadmin-backend/pkg/logger"
	"github.com/ikkim/shopadmin-backend/pkg/redis"
)

const reportLinkTTL = 15 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := logger.LevelForEnvironment(cfg.Server.Environment)
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Server.LogFormat,
		EnableColor: cfg.Server.Environment == "development",
	})

	logger.Info("Starting shop admin server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	middleware.SetupValidator()

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Seed database (optional)
	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	healthChecks := map[string]router.HealthCheck{
		"database": func(ctx context.Context) error {
			return db.Ping(ctx, db.GetDB())
		},
	}

	// Taxonomy cache: Redis when enabled, process memory otherwise
	taxonomyCache := cache.NewMemoryTaxonomyCache(cfg.Taxonomy.CacheTTL)
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, using in-memory taxonomy cache", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer func() {
				if err := redis.Close(); err != nil {
					logger.Error("Failed to close Redis connection", err)
				}
			}()
			taxonomyCache = cache.NewRedisTaxonomyCache(redis.GetClient(), cfg.Taxonomy.CacheTTL)
			healthChecks["redis"] = redis.Ping
		}
	}

	var objectStorage storage.ObjectStorage
	if cfg.S3.Enabled() {
		objectStorage = storage.NewS3Storage(
			cfg.S3.Region,
			cfg.S3.Bucket,
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			cfg.S3.BaseURL,
		)
		logger.Info("Report exports go to S3", map[string]interface{}{
			"bucket": cfg.S3.Bucket,
			"folder": cfg.S3.ReportFolder,
		})
	} else {
		logger.Warn("AWS_S3_BUCKET not set, report exports are disabled")
	}

	// Initialize repositories
	taxonomyRepo := repository.NewTaxonomyRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	refundRepo := repository.NewRefundRepository(db.GetDB())

	// Initialize services
	taxonomyService := service.NewTaxonomyService(taxonomyRepo, taxonomyCache, db.GetDB())
	productService := service.NewProductService(productRepo, taxonomyService)
	orderService := service.NewOrderService(orderRepo, db.GetDB())
	refundService := service.NewRefundService(
		refundRepo,
		orderRepo,
		refund.NewReconciler(cfg.Refund.AmountTolerance),
		db.GetDB(),
	)
	reportService := service.NewReportService(refundRepo, objectStorage, cfg.S3.ReportFolder, reportLinkTTL)

	// Initialize controllers
	taxonomyController := controller.NewTaxonomyController(taxonomyService)
	productController := controller.NewProductController(productService)
	orderController := controller.NewOrderController(orderService)
	refundController := controller.NewRefundController(refundService)
	reportController := controller.NewReportController(reportService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Nightly taxonomy audit
	auditScheduler := scheduler.NewTaxonomyAuditScheduler(taxonomyService, cfg.Taxonomy.AuditCron)
	if err := auditScheduler.Start(); err != nil {
		logger.Fatal("Failed to start taxonomy audit scheduler", err)
	}

	// Setup router
	r := router.NewRouter(
		taxonomyController,
		productController,
		orderController,
		refundController,
		reportController,
		authMiddleware,
		cfg,
		healthChecks,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	auditScheduler.Stop()

	logger.Info("Server stopped successfully")
}
