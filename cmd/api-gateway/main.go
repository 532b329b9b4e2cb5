package main

import (
	"context"
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

	_ "github.com/one-zero-eight/schedule-builder-backend/api/swagger"
	"github.com/one-zero-eight/schedule-builder-backend/internal/client"
	"github.com/one-zero-eight/schedule-builder-backend/internal/handler"
	"github.com/one-zero-eight/schedule-builder-backend/internal/middleware"
	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
	"github.com/one-zero-eight/schedule-builder-backend/internal/repository"
	"github.com/one-zero-eight/schedule-builder-backend/internal/service"
	"github.com/one-zero-eight/schedule-builder-backend/pkg/cache"
	"github.com/one-zero-eight/schedule-builder-backend/pkg/config"
	"github.com/one-zero-eight/schedule-builder-backend/pkg/database"
	"github.com/one-zero-eight/schedule-builder-backend/pkg/jobs"
	"github.com/one-zero-eight/schedule-builder-backend/pkg/logger"
	corsmiddleware "github.com/one-zero-eight/schedule-builder-backend/pkg/middleware/cors"
	reqidmiddleware "github.com/one-zero-eight/schedule-builder-backend/pkg/middleware/requestid"
	"github.com/one-zero-eight/schedule-builder-backend/pkg/storage"
)

// @title Schedule Builder API
// @version 1.0.0
// @description Timetable collision detection for academic schedules
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	// External collaborators.
	bookingClient, err := client.NewBookingClient(cfg.Booking, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init booking client", "error", err)
	}
	var bookingGateway interface {
		GetRooms(ctx context.Context) ([]models.Room, error)
		GetAllBookings(ctx context.Context, start, end time.Time) ([]models.Booking, error)
	} = bookingClient
	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer rdb.Close() //nolint:errcheck
		bookingGateway = client.NewCachedBookingClient(bookingClient, rdb,
			cfg.Booking.RoomsTTL, cfg.Booking.BookingsTTL, metricsSvc, logr)
	}
	accountsClient := client.NewAccountsClient(cfg.Accounts, logr)

	var sources []service.LessonSource
	if cfg.LessonFeed.CoreCoursesURL != "" {
		sources = append(sources, client.NewLessonFeedClient(
			"core-courses", cfg.LessonFeed.CoreCoursesURL, models.SourceCoreCourse, cfg.LessonFeed.Timeout, logr))
	}
	if cfg.LessonFeed.ElectivesURL != "" {
		sources = append(sources, client.NewLessonFeedClient(
			"electives", cfg.LessonFeed.ElectivesURL, models.SourceElective, cfg.LessonFeed.Timeout, logr))
	}

	// Repositories and services.
	optionsRepo := repository.NewOptionsRepository(db)
	reportRepo := repository.NewReportRepository(db)

	location, err := time.LoadLocation(cfg.Collisions.Timezone)
	if err != nil {
		logr.Sugar().Fatalw("invalid timezone", "timezone", cfg.Collisions.Timezone, "error", err)
	}
	checkerCfg := service.CollisionCheckerConfig{
		DefaultRoomCapacity:  cfg.Collisions.DefaultRoomCapacity,
		OutlookMinOverlap:    cfg.Collisions.OutlookMinOverlap,
		OutlookWindowDays:    cfg.Collisions.OutlookWindowDays,
		OutlookMaxWindowDays: cfg.Collisions.OutlookMaxWindow,
		OnlineRoomNames:      cfg.Collisions.OnlineRoomNames,
		ExemptLessonNames:    cfg.Collisions.ExemptLessonNames,
		Location:             location,
	}

	checkSvc := service.NewCheckService(optionsRepo, bookingGateway, bookingGateway, sources, checkerCfg, metricsSvc, logr)
	optionsSvc := service.NewOptionsService(optionsRepo, validate, logr)

	collisionHandler := handler.NewCollisionHandler(checkSvc)
	optionsHandler := handler.NewOptionsHandler(optionsSvc)
	bookingHandler := handler.NewBookingHandler(bookingGateway)

	var reportHandler *handler.ReportHandler
	if cfg.Reports.Enabled {
		files, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init report storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

		var reportSvc *service.ReportService
		queue := jobs.NewQueue("collision-reports", func(ctx context.Context, job jobs.Job) error {
			return reportSvc.HandleJob(ctx, job)
		}, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		reportSvc = service.NewReportService(reportRepo, checkSvc, queue, files, signer, service.ReportServiceConfig{
			ResultTTL:       cfg.Reports.SignedURLTTL,
			CleanupInterval: cfg.Reports.CleanupInterval,
		}, logr)
		queue.Start(ctx)
		defer queue.Stop()
		reportSvc.StartCleanup(ctx)
		reportHandler = handler.NewReportHandler(reportSvc)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins, cfg.CORS.AllowOriginRegexp))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	authed := api.Group("", middleware.Auth(accountsClient.Keyfunc))
	{
		authed.POST("/collisions/check", collisionHandler.Check)
		authed.GET("/collisions/check-spreadsheet", collisionHandler.CheckSpreadsheet)

		authed.GET("/rooms", bookingHandler.Rooms)
		authed.GET("/bookings", bookingHandler.Bookings)

		authed.GET("/options", optionsHandler.Get)
		authed.PUT("/options/semester", optionsHandler.UpdateSemester)
		authed.POST("/options/teachers", optionsHandler.UploadTeachers)
		authed.PUT("/options/very-same", optionsHandler.UpdateVerySame)

		if reportHandler != nil {
			authed.POST("/collisions/reports", reportHandler.Create)
			authed.GET("/collisions/reports/:id", reportHandler.Status)
		}
	}
	if reportHandler != nil {
		// The download link carries its own signed token.
		api.GET("/collisions/reports/download", reportHandler.Download)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
