package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/KLH-F-2025/campus-safety-service/internal/cache"
	"github.com/KLH-F-2025/campus-safety-service/internal/config"
	"github.com/KLH-F-2025/campus-safety-service/internal/handlers"
	"github.com/KLH-F-2025/campus-safety-service/internal/services"
	"github.com/KLH-F-2025/campus-safety-service/internal/store"
	"github.com/KLH-F-2025/campus-safety-service/internal/utils"
	"github.com/KLH-F-2025/campus-safety-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlogLogger(logger)

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	defer redisClient.Close()

	storeClient := store.NewRedisStore(redisClient, slogger)

	// Audit trail is optional: without a database the service still runs,
	// it just records nothing.
	audit := services.NewNopAuditRecorder(slogger)
	if cfg.AuditEnabled && cfg.DatabaseURL != "" {
		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		if err := services.MigrateAuditSchema(db); err != nil {
			log.Fatalf("audit migration failed: %v", err)
		}
		audit = services.NewAuditService(db, slogger)
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		log.Fatalf("event publisher setup failed: %v", err)
	}
	defer publisher.Close()

	retry := services.RetryPolicy{
		Attempts:  cfg.RetryAttempts,
		Backoff:   cfg.RetryBackoff,
		OpTimeout: cfg.OpTimeout,
	}

	serviceManager := services.NewServiceManager(storeClient, publisher, audit, slogger, retry)

	seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := serviceManager.Auth().SeedDefaultUsers(seedCtx); err != nil {
		cancel()
		log.Fatalf("user seed failed: %v", err)
	}
	cancel()

	alerts, err := cache.NewAlertFeed(storeClient, slogger)
	if err != nil {
		log.Fatalf("alert feed setup failed: %v", err)
	}
	defer alerts.Close()

	complaints, err := cache.NewComplaintFeed(storeClient, slogger)
	if err != nil {
		log.Fatalf("complaint feed setup failed: %v", err)
	}
	defer complaints.Close()

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		utils.RegisterCustomValidators(v)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(serviceManager, alerts, complaints, logger)
	handlerManager.SetupRoutes(router)

	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			logger.LogError(err, "server exited")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")
}
