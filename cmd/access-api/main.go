package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/erp-access-api/internal/handler"
	"github.com/noah-isme/erp-access-api/internal/middleware"
	"github.com/noah-isme/erp-access-api/internal/models"
	"github.com/noah-isme/erp-access-api/internal/repository"
	"github.com/noah-isme/erp-access-api/internal/service"
	"github.com/noah-isme/erp-access-api/pkg/cache"
	"github.com/noah-isme/erp-access-api/pkg/config"
	"github.com/noah-isme/erp-access-api/pkg/database"
	"github.com/noah-isme/erp-access-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/erp-access-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/erp-access-api/pkg/middleware/requestid"
	"github.com/noah-isme/erp-access-api/pkg/storage"
)

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	sessionRepo := repository.NewSessionRepository(redisClient, cfg.JWT.RefreshExpiration)

	metricsSvc := service.NewMetricsService()

	sinks := []service.AuditSink{auditRepo}
	if cfg.Audit.CollectorURL != "" {
		sinks = append(sinks, service.NewCollectorClient(cfg.Audit.CollectorURL, cfg.Audit.CollectorTimeout))
	}

	auditSvc := service.NewAuditService(sessionRepo, sinks, metricsSvc, logr, service.AuditServiceConfig{
		QueueWorkers: cfg.Audit.QueueWorkers,
		QueueBuffer:  cfg.Audit.QueueBuffer,
		MaxRetries:   cfg.Audit.MaxRetries,
		RetryDelay:   cfg.Audit.RetryDelay,
	})
	auditSvc.Start(context.Background())
	defer auditSvc.Stop()

	validate := validator.New()
	authSvc := service.NewAuthService(userRepo, sessionRepo, auditSvc, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
		SingleSession:      true,
	})

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewAuditExportService(auditRepo, auditSvc, exportStore, signer, logr, cfg.Exports.MaxRows)

	go runExportCleanup(exportSvc, cfg.Exports.SignedURLTTL, cfg.Exports.CleanupInterval)

	authHandler := handler.NewAuthHandler(authSvc)
	accessHandler := handler.NewAccessHandler(metricsSvc)
	auditHandler := handler.NewAuditHandler(auditSvc, exportSvc, auditRepo)
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

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	access := api.Group("/access", middleware.JWT(authSvc))
	{
		access.GET("/summary", accessHandler.Summary)
		access.GET("/modules", accessHandler.Modules)
		access.POST("/check", accessHandler.Check)
		access.POST("/check-batch", accessHandler.CheckBatch)
		access.GET("/control/:resource", accessHandler.Control)
	}

	audit := api.Group("/audit", middleware.JWT(authSvc))
	{
		audit.POST("/logs", auditHandler.Record)
		audit.GET("/logs",
			middleware.RequirePermission(metricsSvc, models.ResourceAudit, models.ActionRead),
			auditHandler.List)
		audit.GET("/buffer",
			middleware.RequirePermission(metricsSvc, models.ResourceAudit, models.ActionRead),
			auditHandler.Buffer)
		audit.DELETE("/buffer",
			middleware.RequireRoles(metricsSvc, models.RoleSuperAdmin, models.RoleAdmin),
			auditHandler.ClearBuffer)
		audit.POST("/export",
			middleware.RequirePermission(metricsSvc, models.ResourceAudit, models.ActionExport),
			auditHandler.Export)
		audit.GET("/export/download", auditHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func runExportCleanup(exports *service.AuditExportService, ttl, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		exports.Cleanup(ttl)
	}
}
