package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dashprint/backend/internal/application/dashboardprint"
	"github.com/dashprint/backend/internal/application/timeselector"
	"github.com/dashprint/backend/internal/infrastructure/cache"
	"github.com/dashprint/backend/internal/infrastructure/config"
	"github.com/dashprint/backend/internal/infrastructure/i18n"
	"github.com/dashprint/backend/internal/infrastructure/logger"
	"github.com/dashprint/backend/internal/infrastructure/persistence"
	"github.com/dashprint/backend/internal/infrastructure/printing"
	"github.com/dashprint/backend/internal/infrastructure/storage"
	"github.com/dashprint/backend/internal/infrastructure/telemetry"
	"github.com/dashprint/backend/internal/infrastructure/widgetdefaults"
	"github.com/dashprint/backend/internal/interfaces/http/handler"
	"github.com/dashprint/backend/internal/interfaces/http/middleware"
	"github.com/dashprint/backend/internal/interfaces/http/router"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting dashboard print service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mp.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	if err := i18n.Load(); err != nil {
		log.Fatal("Failed to load translations", zap.Error(err))
	}

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled
	dbTracing.DBSystem = telemetry.DBSystemFor(cfg.Database.Driver)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, logger.GormLogLevel(cfg.Log.Level),
		persistence.WithTracing(telemetry.NewDBTracingPlugin(dbTracing, log)))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.Driver == "sqlite" {
		// sqlite has no SQL migrations, the schema comes from the models
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite database", zap.Error(err))
		}
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	widgets, err := widgetdefaults.NewStore(&widgetdefaults.StoreConfig{
		OverrideFile: cfg.Print.WidgetDefaultsFile,
		Logger:       log,
	})
	if err != nil {
		log.Fatal("Failed to load widget defaults", zap.Error(err))
	}

	views, err := printing.NewViewRenderer(&printing.ViewConfig{
		AssetBaseURL: cfg.Print.AssetBaseURL,
		Logger:       log,
	})
	if err != nil {
		log.Fatal("Failed to load print templates", zap.Error(err))
	}

	var renderer printing.PDFRenderer = printing.DisabledRenderer{}
	if cfg.Chrome.Enabled {
		chrome, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
			DefaultTimeout: cfg.Chrome.Timeout,
			RemoteURL:      cfg.Chrome.RemoteURL,
			NoSandbox:      cfg.Chrome.NoSandbox,
			Logger:         log,
		})
		if err != nil {
			log.Fatal("Failed to start headless browser", zap.Error(err))
		}
		renderer = chrome
	} else {
		log.Info("PDF rendering disabled")
	}
	defer func() {
		if err := renderer.Close(); err != nil {
			log.Error("Error closing PDF renderer", zap.Error(err))
		}
	}()

	renderCache, err := cache.NewRenderCacheFactory(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Redis.Enabled, cache.WithLogger(log), cache.WithMaxItems(cfg.Cache.MaxItems)).CreateCache()
	if err != nil {
		log.Fatal("Failed to create render cache", zap.Error(err))
	}
	defer func() {
		if err := renderCache.Close(); err != nil {
			log.Error("Error closing render cache", zap.Error(err))
		}
	}()

	var archive storage.ArchiveStorage = storage.NewStubArchiveStorage()
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3ArchiveStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration))
		if err != nil {
			log.Fatal("Failed to initialize archive storage", zap.Error(err))
		}
		archive = s3
		log.Info("Archive storage enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	constants, err := cfg.Print.Constants()
	if err != nil {
		log.Fatal("Invalid print geometry", zap.Error(err))
	}

	printService := dashboardprint.NewPrintService(dashboardprint.Dependencies{
		Dashboards: persistence.NewGormDashboardRepository(db.DB),
		Periods:    timeselector.NewService(persistence.NewGormProfileRepository(db.DB), log),
		Widgets:    widgets,
		Views:      views,
		Renderer:   renderer,
		Cache:      renderCache,
		Archive:    archive,
	}, dashboardprint.Options{
		Constants:         constants,
		CacheTTL:          cfg.Cache.TTL,
		PresignExpiration: cfg.Storage.PresignExpiration,
		AssetBaseURL:      cfg.Print.AssetBaseURL,
		Meter:             mp.Meter(telemetry.MeterName),
	}, log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to set up request validation", zap.Error(err))
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.SpanAttributes(),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			Meter:   mp.Meter(telemetry.MeterName),
			Enabled: mp.IsEnabled(),
			Logger:  log,
		}),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(corsConfig),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Timeout(cfg.HTTP.WriteTimeout),
	)

	var renderGuard gin.HandlerFunc
	if cfg.HTTP.RenderRateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RenderRateLimit, cfg.HTTP.RenderRateWindow)
		defer limiter.Stop()
		renderGuard = middleware.RateLimit(limiter)
	}

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, map[string]bool{
		"pdf":     cfg.Chrome.Enabled,
		"redis":   cfg.Redis.Enabled,
		"archive": cfg.Storage.Enabled,
	}).AddCheck("database", func(context.Context) error {
		return db.Ping()
	})
	if redisCache, ok := renderCache.(*cache.RedisRenderCache); ok {
		systemHandler.AddCheck("redis", func(ctx context.Context) error {
			return redisCache.Client().Ping(ctx).Err()
		})
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.DashboardPrintRoutes(handler.NewDashboardPrintHandler(printService), renderGuard)).
		Register(handler.SystemRoutes(systemHandler))
	r.Setup()

	for _, route := range r.Routes() {
		log.Debug("Route registered",
			zap.String("method", route.Method),
			zap.String("path", route.Path),
			zap.String("description", route.Description))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("Shutting down server...", zap.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("Server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
