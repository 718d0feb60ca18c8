package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hanifn/catalog-backend/config"
	"github.com/hanifn/catalog-backend/internal/app/controller"
	"github.com/hanifn/catalog-backend/internal/app/repository"
	"github.com/hanifn/catalog-backend/internal/app/service"
	"github.com/hanifn/catalog-backend/internal/db"
	"github.com/hanifn/catalog-backend/internal/middleware"
	"github.com/hanifn/catalog-backend/internal/router"
	"github.com/hanifn/catalog-backend/internal/scheduler"
	"github.com/hanifn/catalog-backend/internal/storage"
	"github.com/hanifn/catalog-backend/pkg/logger"
	"github.com/hanifn/catalog-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Catalog Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

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

	// Redis is optional; token revocation degrades gracefully without it
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Failed to connect to Redis, token revocation disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	attributeRepo := repository.NewAttributeRepository(db.GetDB())
	productTypeRepo := repository.NewProductTypeRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	variantRepo := repository.NewVariantRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	attributeService := service.NewAttributeService(attributeRepo)
	productTypeService := service.NewProductTypeService(productTypeRepo, attributeRepo)
	productService := service.NewProductService(productRepo, variantRepo, productTypeRepo, db.GetDB())
	exportService := service.NewExportService(productRepo, attributeRepo)

	// Initialize storage
	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize controllers
	authController := controller.NewAuthController(authService, cfg.JWT.AccessTokenExpiry)
	attributeController := controller.NewAttributeController(attributeService)
	productTypeController := controller.NewProductTypeController(productTypeService)
	productController := controller.NewProductController(productService)
	uploadController := controller.NewUploadController(s3Storage)
	exportController := controller.NewExportController(exportService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Start the nightly price reconciliation
	priceScheduler := scheduler.NewPriceRefreshScheduler(productRepo)
	if err := priceScheduler.Start(); err != nil {
		logger.Error("Failed to start price refresh scheduler", err)
	}
	defer priceScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		attributeController,
		productTypeController,
		productController,
		uploadController,
		exportController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
