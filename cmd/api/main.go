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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ayudapp/ayudapp-api/api/swagger"
	"github.com/ayudapp/ayudapp-api/internal/handler"
	"github.com/ayudapp/ayudapp-api/internal/middleware"
	"github.com/ayudapp/ayudapp-api/internal/repository"
	"github.com/ayudapp/ayudapp-api/internal/semester"
	"github.com/ayudapp/ayudapp-api/internal/service"
	"github.com/ayudapp/ayudapp-api/pkg/analyzer"
	"github.com/ayudapp/ayudapp-api/pkg/cache"
	"github.com/ayudapp/ayudapp-api/pkg/config"
	"github.com/ayudapp/ayudapp-api/pkg/database"
	"github.com/ayudapp/ayudapp-api/pkg/jobs"
	"github.com/ayudapp/ayudapp-api/pkg/logger"
	corsmiddleware "github.com/ayudapp/ayudapp-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ayudapp/ayudapp-api/pkg/middleware/requestid"
	"github.com/ayudapp/ayudapp-api/pkg/storage"
)

// @title AyudApp API
// @version 1.0.0
// @description Search, statistics and review lifecycle for teaching-assistant reviews
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db, logr); err != nil {
			logr.Sugar().Fatalw("migrations failed", "error", err)
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("redis connection failed", "error", err)
	}
	defer redisClient.Close()

	semesters, err := semester.NewSequence(cfg.Semester.StartYear, cfg.Semester.EndYear)
	if err != nil {
		logr.Sugar().Fatalw("invalid semester range", "error", err)
	}

	// Repositories.
	courseRepo := repository.NewCourseRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	tokenSvc := service.NewTokenService(cfg.JWT, logr)
	matcherSvc := service.NewMatcherService(courseRepo, logr)
	searchSvc := service.NewSearchService(matcherSvc, reviewRepo, cfg.Search.PageSize, logr)
	catalogSvc := service.NewCatalogService(courseRepo, cacheRepo, semesters, cfg.Stats.CatalogCacheTTL, logr)
	statsSvc := service.NewStatsService(statsRepo, cacheRepo, cfg.Stats.CacheTTL, cfg.Stats.PageSize, logr)
	docAnalyzer := analyzer.NewHTTPClient(cfg.Analyzer, logr)
	reviewSvc := service.NewReviewService(reviewRepo, courseRepo, semesters, docAnalyzer, cacheRepo, cfg.JWT.Secret, cfg.Search.PageSize, nil, logr)

	// HTTP handlers.
	searchHandler := handler.NewSearchHandler(searchSvc, metricsSvc, cfg.Search.PageSize)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	reviewHandler := handler.NewReviewHandler(reviewSvc, cfg.Analyzer.MaxFileSizeBytes)
	statsHandler := handler.NewStatsHandler(statsSvc)
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
	{
		api.GET("/search", searchHandler.Search)

		catalog := api.Group("/catalog")
		{
			catalog.GET("/options", catalogHandler.Options)
			catalog.GET("/prefixes", catalogHandler.Prefixes)
			catalog.GET("/ta-types", catalogHandler.TaTypes)
		}

		// Reviews can be submitted anonymously, so the write routes carry
		// optional authentication. Ownership is enforced in the service.
		reviews := api.Group("/reviews", middleware.OptionalJWT(tokenSvc))
		{
			reviews.POST("", reviewHandler.Create)
			reviews.POST("/validate-document", reviewHandler.ValidateDocument)
			reviews.GET("/:id", reviewHandler.Get)
			reviews.PUT("/:id", reviewHandler.Update)
			reviews.DELETE("/:id", reviewHandler.Delete)
			reviews.GET("/:id/edit", reviewHandler.GetForEdit)
		}

		api.GET("/courses/:id/reviews", reviewHandler.ListByCourse)

		stats := api.Group("/stats")
		{
			stats.GET("/courses", statsHandler.List)
			stats.GET("/courses/:id", statsHandler.GetByCourse)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var reportQueue *jobs.Queue
	if cfg.Reports.Enabled {
		reportStorage, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("report storage init failed", "error", err)
		}
		signer := storage.NewSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		reportRepo := repository.NewReportRepository(db)

		var reportSvc *service.ReportService
		reportQueue = jobs.New("reports", func(ctx context.Context, job jobs.Job) error {
			return reportSvc.Process(ctx, job)
		}, jobs.Config{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		reportSvc = service.NewReportService(reportRepo, statsSvc, reportQueue, reportStorage, signer, cfg.Reports.SignedURLTTL, logr)
		reportQueue.Start(ctx)

		reportHandler := handler.NewReportHandler(reportSvc)
		reports := api.Group("/reports")
		{
			reports.POST("", reportHandler.Create)
			reports.GET("/download", reportHandler.Download)
			reports.GET("/:id", reportHandler.Status)
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
	if reportQueue != nil {
		reportQueue.Stop()
	}
}
