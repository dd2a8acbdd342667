package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/aulaflow/agenda-api/api/swagger"
	"github.com/aulaflow/agenda-api/internal/handler"
	"github.com/aulaflow/agenda-api/internal/middleware"
	"github.com/aulaflow/agenda-api/internal/models"
	"github.com/aulaflow/agenda-api/internal/repository"
	"github.com/aulaflow/agenda-api/internal/service"
	"github.com/aulaflow/agenda-api/pkg/cache"
	"github.com/aulaflow/agenda-api/pkg/config"
	"github.com/aulaflow/agenda-api/pkg/database"
	"github.com/aulaflow/agenda-api/pkg/logger"
	corsmiddleware "github.com/aulaflow/agenda-api/pkg/middleware/cors"
	reqidmiddleware "github.com/aulaflow/agenda-api/pkg/middleware/requestid"

	"github.com/go-playground/validator/v10"
)

// @title AulaFlow Agenda API
// @version 1.0.0
// @description Schedule grid, lesson occurrence and class log reconciliation service
// @BasePath /
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// Grid caching degrades to direct reads when redis is down.
		logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	bookingRepo := repository.NewBookingRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	rescheduleRepo := repository.NewRescheduleRepository(db)
	classLogRepo := repository.NewClassLogRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	gridSvc := service.NewGridService(bookingRepo, availabilityRepo, cacheRepo, metricsSvc, cfg.Grid.CacheTTL, validate, logr)
	occurrenceSvc := service.NewOccurrenceService(bookingRepo, rescheduleRepo, profileRepo, logr)
	reconcilerSvc := service.NewReconcilerService(occurrenceSvc, classLogRepo, service.ReconcilerWindows{
		DueTodayDays:     cfg.Reconciler.DueTodayDays,
		PendingGraceDays: cfg.Reconciler.PendingGraceDays,
		PendingMaxDays:   cfg.Reconciler.PendingMaxDays,
	}, logr)
	absencePolicy := service.NewAbsencePolicy(rescheduleRepo, cfg.Absences.MonthlyCap, logr)
	classLogSvc := service.NewClassLogService(classLogRepo, rescheduleRepo, absencePolicy, validate, logr)
	rescheduleSvc := service.NewRescheduleService(rescheduleRepo, validate, logr)
	reportSvc := service.NewReportService(reconcilerSvc, logr)

	scheduleHandler := handler.NewScheduleHandler(gridSvc)
	bookingHandler := handler.NewBookingHandler(gridSvc)
	lessonHandler := handler.NewLessonHandler(occurrenceSvc, reconcilerSvc)
	classLogHandler := handler.NewClassLogHandler(classLogSvc)
	rescheduleHandler := handler.NewRescheduleHandler(rescheduleSvc)
	reportHandler := handler.NewReportHandler(reportSvc)

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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.JWT.Secret))

	anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleStaff, models.RoleTeacher)
	staffOnly := middleware.RequireRoles(models.RoleAdmin, models.RoleStaff)

	teachers := api.Group("/teachers", anyRole)
	{
		teachers.GET("/:id/grid", scheduleHandler.WeeklyGrid)
		teachers.GET("/:id/availability", scheduleHandler.Availability)
		teachers.PUT("/:id/availability", scheduleHandler.PublishAvailability)
		teachers.GET("/:id/occurrences", lessonHandler.Occurrences)
		teachers.GET("/:id/lessons/due-today", lessonHandler.DueToday)
		teachers.GET("/:id/lessons/pending", lessonHandler.Pending)
		teachers.GET("/:id/class-logs", classLogHandler.List)
		teachers.GET("/:id/reschedules", rescheduleHandler.ListForDate)
		teachers.GET("/:id/reschedules/unscheduled", rescheduleHandler.ListUnscheduled)
		if cfg.Reports.Enabled {
			teachers.GET("/:id/reports/pending-lessons", reportHandler.PendingLessons)
		}
	}

	bookings := api.Group("/bookings", staffOnly)
	{
		bookings.POST("", bookingHandler.Assign)
		bookings.GET("/conflicts", bookingHandler.CheckConflict)
		bookings.DELETE("/:id", bookingHandler.Unassign)
	}

	api.DELETE("/students/:id/bookings", staffOnly, bookingHandler.RemoveStudent)

	api.POST("/class-logs", anyRole, classLogHandler.Commit)

	reschedules := api.Group("/reschedules", staffOnly)
	{
		reschedules.POST("", rescheduleHandler.Create)
		reschedules.PUT("/:id/schedule", rescheduleHandler.Schedule)
		reschedules.DELETE("/:id", rescheduleHandler.Cancel)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
