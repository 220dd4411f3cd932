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
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/pal-tracker-api/api/swagger"
	"github.com/noah-isme/pal-tracker-api/internal/handler"
	"github.com/noah-isme/pal-tracker-api/internal/middleware"
	"github.com/noah-isme/pal-tracker-api/internal/models"
	"github.com/noah-isme/pal-tracker-api/internal/repository"
	"github.com/noah-isme/pal-tracker-api/internal/service"
	"github.com/noah-isme/pal-tracker-api/pkg/cache"
	"github.com/noah-isme/pal-tracker-api/pkg/config"
	"github.com/noah-isme/pal-tracker-api/pkg/database"
	"github.com/noah-isme/pal-tracker-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/pal-tracker-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/pal-tracker-api/pkg/middleware/requestid"
	"github.com/noah-isme/pal-tracker-api/pkg/validation"
)

// @title PAL Tracker API
// @version 1.0.0
// @description Peer Assisted Learning registration, session tracking and analytics
// @BasePath /api/v1
// @schemes http https
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	rdb, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := newRouter(cfg, db, rdb, logr)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newRouter(cfg *config.Config, db *sqlx.DB, rdb *redis.Client, logr *zap.Logger) *gin.Engine {
	validate := validation.New()
	metrics := service.NewMetricsService()

	users := repository.NewUserRepository(db)
	students := repository.NewStudentRepository(db)
	academic := repository.NewAcademicRepository(db)
	settings := repository.NewConfigurationRepository(db)
	evalYears := repository.NewEvaluationYearRepository(db)
	sessions := repository.NewSessionRepository(db)
	feedback := repository.NewFeedbackRepository(db)
	applications := repository.NewTutorApplicationRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	wizardStore := repository.NewWizardStateRepository(rdb, cfg.Wizard.KeyPrefix, cfg.Wizard.StateTTL, logr)

	authSvc := service.NewAuthService(users, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
		Audience:           cfg.JWT.Audience,
	})
	userSvc := service.NewUserService(users, students, academic, validate, logr, metrics, service.UserImportConfig{
		DefaultPassword: cfg.Import.DefaultPassword,
		SampleErrors:    cfg.Import.SampleErrors,
	})
	catalogSvc := service.NewCatalogService(academic, students, logr)
	configSvc := service.NewConfigurationService(settings, users, validate, logr)
	evalYearSvc := service.NewEvaluationYearService(evalYears, academic, users, validate, logr)
	sessionSvc := service.NewSessionService(sessions, users, applications, evalYears, validate, logr)
	feedbackSvc := service.NewFeedbackService(feedback, applications, students, sessions, academic, validate, logr)
	applicationSvc := service.NewTutorApplicationService(applications, users, validate, logr)
	dashboardSvc := service.NewDashboardService(users, sessions, applications, feedback, students, logr)
	studentWizard := service.NewStudentRegistrationService(wizardStore, users, academic, students, settings, validate, logr, metrics)
	tutorWizard := service.NewTutorRegistrationService(wizardStore, academic, applications, settings, validate, logr, metrics)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, users, evalYears, academic, metrics, logr, cfg.Export.PDFTitle)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc, cfg.Import.MaxFileSizeBytes)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	configHandler := handler.NewConfigurationHandler(configSvc)
	evalYearHandler := handler.NewEvaluationYearHandler(evalYearSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc)
	feedbackHandler := handler.NewFeedbackHandler(feedbackSvc)
	applicationHandler := handler.NewTutorApplicationHandler(applicationSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	registrationHandler := handler.NewRegistrationHandler(studentWizard, tutorWizard, cfg.APIPrefix)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc)
	metricsHandler := handler.NewMetricsHandler(metrics, map[string]handler.HealthCheck{
		"postgres": db.PingContext,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	authRequired := middleware.JWT(authSvc)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleManager)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authRequired, authHandler.Logout)
	auth.GET("/me", authRequired, authHandler.Me)

	catalog := api.Group("/programs", middleware.OptionalJWT(authSvc))
	catalog.GET("", catalogHandler.Programs)
	catalog.GET("/:id/years", catalogHandler.Years)
	catalog.GET("/:id/courses", catalogHandler.Courses)

	studentReg := api.Group("/register/student", authRequired)
	studentReg.POST("/step1", registrationHandler.StudentStep1)
	studentReg.POST("/step2", registrationHandler.StudentStep2)
	studentReg.GET("/step3", registrationHandler.StudentCourseOptions)
	studentReg.POST("/step3", registrationHandler.StudentStep3)

	tutorReg := api.Group("/register/tutor")
	tutorReg.POST("/step1", registrationHandler.TutorStep1)
	tutorReg.POST("/step2", registrationHandler.TutorStep2)
	tutorReg.GET("/step3", registrationHandler.TutorCourseOptions)
	tutorReg.POST("/step3", registrationHandler.TutorStep3)

	protected := api.Group("", authRequired)

	usersGroup := protected.Group("/users", adminOnly)
	usersGroup.GET("", userHandler.List)
	usersGroup.POST("", userHandler.Create)
	usersGroup.POST("/import", userHandler.Import)
	usersGroup.GET("/import/template", userHandler.ImportTemplate)
	usersGroup.GET("/:id", userHandler.Get)
	usersGroup.PUT("/:id", userHandler.Update)
	usersGroup.DELETE("/:id", userHandler.Delete)

	settingsGroup := protected.Group("/settings", adminOnly)
	settingsGroup.GET("", configHandler.List)
	settingsGroup.PUT("/:key", configHandler.Update)

	years := protected.Group("/evaluation-years")
	years.GET("", staff, evalYearHandler.List)
	years.GET("/active", evalYearHandler.Active)
	years.GET("/:id", staff, evalYearHandler.Get)
	years.POST("", adminOnly, evalYearHandler.Create)
	years.PUT("/:id", adminOnly, evalYearHandler.Update)
	years.POST("/:id/activate", adminOnly, evalYearHandler.Activate)
	years.DELETE("/:id", adminOnly, evalYearHandler.Delete)

	protected.POST("/sessions", middleware.RequireRoles(models.RoleTutor), sessionHandler.Create)
	protected.GET("/sessions/mine", sessionHandler.ListMine)

	protected.GET("/feedback/tutors", middleware.RequireRoles(models.RoleStudent), feedbackHandler.EligibleTutors)
	protected.POST("/feedback", middleware.RequireRoles(models.RoleStudent), feedbackHandler.Submit)

	protected.GET("/tutor-applications", staff, applicationHandler.List)
	protected.PATCH("/tutor-applications/:id/status", adminOnly, applicationHandler.UpdateStatus)

	protected.GET("/dashboard/admin", adminOnly, dashboardHandler.Admin)
	protected.GET("/dashboard/me", dashboardHandler.Personal)

	analytics := protected.Group("/analytics", staff)
	analytics.GET("", analyticsHandler.Dashboard)
	analytics.GET("/leaderboard", analyticsHandler.Leaderboard)
	analytics.GET("/export/excel", analyticsHandler.ExportExcel)
	analytics.GET("/export/pdf", analyticsHandler.ExportPDF)

	return r
}
