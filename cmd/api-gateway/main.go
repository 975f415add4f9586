package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/forgottenfelines/tnr-intake-api/api/swagger"
	"github.com/forgottenfelines/tnr-intake-api/internal/handler"
	"github.com/forgottenfelines/tnr-intake-api/internal/middleware"
	"github.com/forgottenfelines/tnr-intake-api/internal/models"
	"github.com/forgottenfelines/tnr-intake-api/internal/repository"
	"github.com/forgottenfelines/tnr-intake-api/internal/service"
	"github.com/forgottenfelines/tnr-intake-api/internal/triage"
	"github.com/forgottenfelines/tnr-intake-api/pkg/cache"
	"github.com/forgottenfelines/tnr-intake-api/pkg/config"
	"github.com/forgottenfelines/tnr-intake-api/pkg/database"
	"github.com/forgottenfelines/tnr-intake-api/pkg/logger"
	corsmiddleware "github.com/forgottenfelines/tnr-intake-api/pkg/middleware/cors"
	reqidmiddleware "github.com/forgottenfelines/tnr-intake-api/pkg/middleware/requestid"
	"github.com/forgottenfelines/tnr-intake-api/pkg/storage"
)

// @title TNR Intake API
// @version 1.0.0
// @description Submission lifecycle engine for community-cat intake case management
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck
	sugar := logr.Sugar()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		sugar.Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		sugar.Warnw("redis unavailable; queue cache disabled", "error", err)
		redisClient = nil
	}

	fileStorage, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		sugar.Warnw("upload storage dir unavailable; ingestion falls back to inline storage", "error", err)
		fileStorage = nil
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	submissionRepo := repository.NewSubmissionRepository(db, cfg.Intake.GuardTimeout)
	uploadRepo := repository.NewUploadRepository(db, cfg.Intake.GuardTimeout)
	historyRepo := repository.NewHistoryRepository(db)
	commRepo := repository.NewCommunicationRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	requestRepo := repository.NewRequestRepository(db)

	metricsSvc := service.NewMetricsService()
	queueCache := service.NewQueueCache(redisClient, cfg.Queue.CacheTTL, logr)
	classifier := triage.New(cfg.Intake.ServiceCounty)

	authSvc := service.NewAuthService(staffRepo, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	var ingestStorage service.UploadFileStorage
	if fileStorage != nil {
		ingestStorage = fileStorage
	}
	ingestSvc := service.NewIngestService(uploadRepo, ingestStorage, signer, metricsSvc, logr, service.IngestServiceConfig{
		DeleteMinAge: cfg.Uploads.DeleteMinAge,
		MaxFileSize:  cfg.Uploads.MaxFileSizeBytes,
	})
	submissionSvc := service.NewSubmissionService(submissionRepo, historyRepo, commRepo,
		classifier, requestRepo, queueCache, metricsSvc, logr, service.SubmissionServiceConfig{
			UndoWindow: cfg.Intake.UndoWindow,
		})

	authHandler := handler.NewAuthHandler(authSvc)
	uploadHandler := handler.NewUploadHandler(ingestSvc)
	submissionHandler := handler.NewSubmissionHandler(submissionSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	{
		protected.GET("/auth/me", authHandler.Me)

		protected.POST("/uploads", uploadHandler.Create)
		protected.GET("/uploads", uploadHandler.List)
		protected.GET("/uploads/:id", uploadHandler.Get)
		protected.PATCH("/uploads/:id", uploadHandler.Action)
		protected.GET("/uploads/:id/download-url", uploadHandler.DownloadURL)
		protected.DELETE("/uploads/:id",
			middleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator), uploadHandler.Delete)

		protected.POST("/submissions", submissionHandler.Create)
		protected.GET("/submissions", submissionHandler.List)
		protected.GET("/submissions/:id", submissionHandler.Get)
		protected.PATCH("/submissions/:id", submissionHandler.Patch)
		protected.POST("/submissions/:id/archive", submissionHandler.Archive)
		protected.POST("/submissions/:id/reset", submissionHandler.Reset)
		protected.POST("/submissions/:id/convert", submissionHandler.Convert)
		protected.POST("/submissions/:id/communications", submissionHandler.AddCommunication)
		protected.GET("/submissions/:id/communications", submissionHandler.ListCommunications)
		protected.GET("/submissions/:id/history", submissionHandler.History)
		protected.POST("/submissions/:id/history/:entryId/undo", submissionHandler.Undo)
		protected.POST("/submissions/bulk-status",
			middleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator), submissionHandler.BulkStatus)
	}

	// The token itself gates file downloads; JWT headers do not survive
	// browser-driven file fetches.
	api.GET("/uploads/:id/download", uploadHandler.Download)

	addr := fmt.Sprintf(":%d", cfg.Port)
	sugar.Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		sugar.Fatalw("server failed", "error", err)
	}
}
