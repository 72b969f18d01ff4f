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

	_ "github.com/placement-cell/placement-api/api/swagger"
	"github.com/placement-cell/placement-api/internal/handler"
	"github.com/placement-cell/placement-api/internal/middleware"
	"github.com/placement-cell/placement-api/internal/models"
	"github.com/placement-cell/placement-api/internal/repository"
	"github.com/placement-cell/placement-api/internal/service"
	"github.com/placement-cell/placement-api/pkg/cache"
	"github.com/placement-cell/placement-api/pkg/config"
	"github.com/placement-cell/placement-api/pkg/database"
	"github.com/placement-cell/placement-api/pkg/logger"
	"github.com/placement-cell/placement-api/pkg/mailer"
	corsmiddleware "github.com/placement-cell/placement-api/pkg/middleware/cors"
	reqidmiddleware "github.com/placement-cell/placement-api/pkg/middleware/requestid"
	"github.com/placement-cell/placement-api/pkg/storage"
)

// @title Placement Cell API
// @version 1.0.0
// @description Campus placement management: accounts, company listings and the application workflow
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	if err := database.Migrate(ctx, db); err != nil {
		logr.Sugar().Fatalw("failed to run migrations", "error", err)
	}

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, company cache disabled", "error", err)
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo = repository.NewCacheRepository(redisClient)
		}
	}

	store, err := storage.NewLocalStorage(cfg.Resumes.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare resume storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Resumes.SignedURLSecret, cfg.Resumes.SignedURLTTL)

	accountRepo := repository.NewAccountRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)

	validate := validator.New()
	metricsService := service.NewMetricsService()

	authService := service.NewAuthService(accountRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	studentService := service.NewStudentService(accountRepo, store, signer, validate, logr)
	companyService := service.NewCompanyService(companyRepo, companyCache(cacheRepo), cfg.Cache.TTL, metricsService, validate, logr)

	var notifier service.Notifier
	if cfg.Notify.Enabled {
		notificationService := service.NewNotificationService(mailer.NewSMTPMailer(cfg.SMTP), cfg.Notify, metricsService, logr)
		notificationService.Start(ctx)
		defer notificationService.Stop()
		notifier = notificationService
	}

	applicationService := service.NewApplicationService(applicationRepo, accountRepo, companyRepo, notifier, validate, logr)

	authHandler := handler.NewAuthHandler(authService)
	studentHandler := handler.NewStudentHandler(studentService, store)
	companyHandler := handler.NewCompanyHandler(companyService)
	applicationHandler := handler.NewApplicationHandler(applicationService)
	metricsHandler := handler.NewMetricsHandler(metricsService, db)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))
	r.MaxMultipartMemory = cfg.Resumes.MaxFileSize

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
		}

		api.GET("/resumes/:token", studentHandler.DownloadResume)

		authed := api.Group("")
		authed.Use(middleware.JWT(authService))
		{
			students := authed.Group("/students")
			{
				students.GET("/profile", studentHandler.Profile)
				students.PUT("/profile", studentHandler.UpdateProfile)
				students.POST("/resume", middleware.RequireRoles(models.RoleStudent), studentHandler.UploadResume)
				students.GET("/resume/link", middleware.RequireRoles(models.RoleStudent), studentHandler.ResumeLink)
				students.GET("", middleware.RequireRoles(models.RoleAdmin), studentHandler.List)
				students.GET("/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleHR), studentHandler.Get)
			}

			companies := authed.Group("/companies")
			{
				companies.GET("", companyHandler.List)
				companies.GET("/:id", companyHandler.Get)
				companies.POST("", middleware.RequireRoles(models.RoleAdmin), companyHandler.Create)
				companies.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), companyHandler.Update)
				companies.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), companyHandler.Delete)
			}

			applications := authed.Group("/applications")
			{
				applications.GET("", middleware.RequireRoles(models.RoleAdmin), applicationHandler.List)
				applications.GET("/export", middleware.RequireRoles(models.RoleAdmin), applicationHandler.Export)
				applications.GET("/my", middleware.RequireRoles(models.RoleStudent), applicationHandler.Mine)
				applications.GET("/company/:companyId", middleware.RequireRoles(models.RoleAdmin, models.RoleHR), applicationHandler.ByCompany)
				applications.POST("/apply/:companyId", middleware.RequireRoles(models.RoleStudent), applicationHandler.Apply)
				applications.PUT("/:id/status", middleware.RequireRoles(models.RoleAdmin, models.RoleHR), applicationHandler.UpdateStatus)
			}
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}

// companyCache keeps the typed-nil pitfall out of the service: a nil
// *CacheRepository must become a nil interface so caching is disabled.
func companyCache(repo *repository.CacheRepository) service.ListingCache {
	if repo == nil {
		return nil
	}
	return repo
}
