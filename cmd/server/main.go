package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/erp/erpcore/internal/application/crud"
	"github.com/erp/erpcore/internal/application/ingest"
	reportapp "github.com/erp/erpcore/internal/application/report"
	"github.com/erp/erpcore/internal/application/search"
	"github.com/erp/erpcore/internal/domain/schema"
	"github.com/erp/erpcore/internal/domain/shared"
	"github.com/erp/erpcore/internal/infrastructure/config"
	"github.com/erp/erpcore/internal/infrastructure/logger"
	"github.com/erp/erpcore/internal/infrastructure/persistence"
	"github.com/erp/erpcore/internal/infrastructure/telemetry"
	"github.com/erp/erpcore/internal/interfaces/http/handler"
	"github.com/erp/erpcore/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting ERP Core",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry providers are no-ops when disabled
	tp, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	mp, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mp.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	metrics, err := telemetry.NewEngineMetrics(mp.Meter("github.com/erp/erpcore"))
	if err != nil {
		log.Fatal("Failed to create engine metrics", zap.Error(err))
	}

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.NewDBTracingConfig(cfg.Telemetry, cfg.Database.Driver), log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	registry := schema.Default()
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(ctx, registry); err != nil {
			log.Fatal("Failed to migrate schema", zap.Error(err))
		}
	}

	// Engines
	store := persistence.NewGormEntityStore(db)
	crudEngine := crud.NewEngine(registry, store,
		crud.WithPageLimits(shared.PageLimits{Default: cfg.Engine.DefaultLimit, Max: cfg.Engine.MaxLimit}),
		crud.WithMetrics(metrics),
	)
	ingestEngine := ingest.NewEngine(crudEngine,
		ingest.WithDefaults(ingest.Options{Mode: ingest.Mode(cfg.Engine.IngestMode), MaxErrors: cfg.Engine.MaxRowErrors}),
		ingest.WithMetrics(metrics),
	)
	searchEngine := search.NewEngine(registry, store, search.WithLimits(cfg.Engine.SearchLimit, cfg.Engine.MaxLimit))
	reportService := reportapp.NewReportService(persistence.NewGormReportRepository(db),
		reportapp.WithTopN(cfg.Engine.TopN),
		reportapp.WithMetrics(metrics),
	)

	// HTTP
	engine, err := router.NewEngine(router.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		Tracing:        tp.IsEnabled(),
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Meter:          mp.Meter("http.server"),
	}, log)
	if err != nil {
		log.Fatal("Failed to create HTTP engine", zap.Error(err))
	}
	router.Mount(engine, router.Handlers{
		Entities: handler.NewEntityHandler(crudEngine, cfg.HTTP.MaxBodySize),
		Uploads:  handler.NewUploadHandler(ingestEngine, cfg.HTTP.MaxUploadSize),
		Search:   handler.NewSearchHandler(searchEngine),
		Reports:  handler.NewReportHandler(reportService),
		Health:   handler.NewHealthHandler(db),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}
