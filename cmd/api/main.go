package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sentryops/guard-roster-api/api/swagger"
	"github.com/sentryops/guard-roster-api/internal/handler"
	"github.com/sentryops/guard-roster-api/internal/middleware"
	"github.com/sentryops/guard-roster-api/internal/models"
	"github.com/sentryops/guard-roster-api/internal/repository"
	"github.com/sentryops/guard-roster-api/internal/service"
	"github.com/sentryops/guard-roster-api/pkg/cache"
	"github.com/sentryops/guard-roster-api/pkg/config"
	"github.com/sentryops/guard-roster-api/pkg/database"
	"github.com/sentryops/guard-roster-api/pkg/export"
	"github.com/sentryops/guard-roster-api/pkg/jobs"
	"github.com/sentryops/guard-roster-api/pkg/logger"
	corsmiddleware "github.com/sentryops/guard-roster-api/pkg/middleware/cors"
	reqidmiddleware "github.com/sentryops/guard-roster-api/pkg/middleware/requestid"
	"github.com/sentryops/guard-roster-api/pkg/storage"
)

// @title Guard Roster API
// @version 1.0.0
// @description Shift scheduling and payroll history for guard services
// @BasePath /
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	guardRepo := repository.NewGuardRepository(db)
	advanceRepo := repository.NewAdvanceRepository(db)
	siteRepo := repository.NewSiteRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	rateRepo := repository.NewRateRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	tokenSvc := service.NewTokenService(cfg.JWT.Secret, logr)
	rateSvc := service.NewRateService(positionRepo, rateRepo, logr)
	catalogSvc := service.NewCatalogService(shiftRepo, siteRepo, validate, logr)

	auditSvc := service.NewAuditService(auditRepo, service.AuditServiceConfig{
		Workers:    cfg.Audit.Workers,
		BufferSize: cfg.Audit.BufferSize,
	}, logr)
	auditSvc.Start(ctx)
	defer auditSvc.Stop()

	rosterSvc := service.NewRosterService(
		scheduleRepo,
		guardRepo,
		siteRepo,
		rateSvc,
		cacheRepo,
		auditSvc,
		metricsSvc,
		validate,
		logr,
		service.RosterServiceConfig{IndexCacheTTL: cfg.Roster.IndexCacheTTL},
	)
	advanceSvc := service.NewAdvanceService(advanceRepo, guardRepo, validate, logr)
	historySvc := service.NewHistoryService(historyRepo, guardRepo, cacheRepo, validate, logr,
		service.HistoryServiceConfig{CacheTTL: cfg.Roster.HistoryCacheTTL})

	var exportSvc *service.ExportJobService
	if cfg.Exports.Enabled {
		fileStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("export storage init failed", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exporter := service.NewPayrollExportService(historySvc, fileStore, signer,
			service.PayrollExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Exports.SignedURLTTL},
			logr, export.NewCSVExporter(), export.NewPDFExporter())

		exportRepo := repository.NewExportJobRepository(db)
		worker := service.NewExportWorker(exportRepo, exporter, cfg.Exports.WorkerRetries, logr)
		exportQueue := jobs.NewQueue("payroll_export", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})
		exportQueue.Start(ctx)
		defer exportQueue.Stop()

		exportSvc = service.NewExportJobService(exportRepo, exportQueue, exporter, validate, logr,
			service.ExportJobServiceConfig{
				ResultTTL:       cfg.Exports.SignedURLTTL,
				CleanupInterval: cfg.Exports.CleanupInterval,
				MaxRetries:      cfg.Exports.WorkerRetries,
			})
		exportSvc.RecoverPendingJobs(ctx)
		exportSvc.StartCleanup(ctx)
	}

	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	rateHandler := handler.NewRateHandler(rateSvc)
	rosterHandler := handler.NewRosterHandler(rosterSvc)
	advanceHandler := handler.NewAdvanceHandler(advanceSvc)
	payrollHandler := handler.NewPayrollHandler(historySvc, exportSvc, logr)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(tokenSvc))

	scheduling := middleware.RequireRoles(models.RoleAdmin, models.RoleScheduler)

	slots := api.Group("/sites/:siteId/slots")
	{
		slots.GET("", catalogHandler.ListSlots)
		slots.GET("/:code", catalogHandler.GetSlot)
		slots.POST("", scheduling, catalogHandler.CreateSlot)
		slots.PATCH("/:code", scheduling, catalogHandler.UpdateSlot)
		slots.DELETE("/:code", scheduling, catalogHandler.DeleteSlot)
	}
	api.GET("/sites/:siteId/rates/:positionId", rateHandler.Resolve)

	roster := api.Group("/roster")
	{
		roster.POST("/assign", scheduling, rosterHandler.Assign)
		roster.POST("/unassign", scheduling, rosterHandler.Unassign)
		roster.POST("/move", scheduling, rosterHandler.Move)
		roster.POST("/replace", scheduling, rosterHandler.Replace)
		roster.GET("/schedules", rosterHandler.List)
		roster.GET("/schedules/:siteId/:date", rosterHandler.GetSchedule)
		roster.GET("/index", rosterHandler.Index)
		roster.GET("/availability", rosterHandler.Availability)
	}

	advances := api.Group("/advances")
	{
		advances.GET("", advanceHandler.List)
		advances.GET("/:id", advanceHandler.Get)
		advances.POST("", scheduling, advanceHandler.Create)
		advances.PUT("/:id", scheduling, advanceHandler.Update)
		advances.PUT("/:id/status", scheduling, advanceHandler.UpdateStatus)
		advances.DELETE("/:id", scheduling, advanceHandler.Delete)
	}

	payroll := api.Group("/payroll")
	{
		payroll.GET("/guards/:guardId/work-history", payrollHandler.WorkHistory)
		payroll.GET("/guards/:guardId/summary", payrollHandler.GuardSummary)
		if exportSvc != nil {
			payroll.POST("/exports", payrollHandler.CreateExport)
			payroll.GET("/exports/status/:id", payrollHandler.ExportStatus)
		}
	}
	if exportSvc != nil {
		// Token-authenticated: the signed token is the credential.
		r.GET(cfg.APIPrefix+"/payroll/exports/download/:token", payrollHandler.DownloadExport)
	}

	api.GET("/metrics/system", middleware.RequireRoles(models.RoleAdmin), metricsHandler.System)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown incomplete", "error", err)
	}
}
