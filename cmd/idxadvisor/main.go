package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/idxadvisor/internal/config"
	"github.com/kailas-cloud/idxadvisor/internal/db/mongodb"
	"github.com/kailas-cloud/idxadvisor/internal/domain/catalog"
	logpkg "github.com/kailas-cloud/idxadvisor/internal/logger"
	"github.com/kailas-cloud/idxadvisor/internal/metrics"
	indexrepo "github.com/kailas-cloud/idxadvisor/internal/repository/index"
	profilerepo "github.com/kailas-cloud/idxadvisor/internal/repository/profile"
	serverrepo "github.com/kailas-cloud/idxadvisor/internal/repository/server"
	statsrepo "github.com/kailas-cloud/idxadvisor/internal/repository/stats"
	chiTransport "github.com/kailas-cloud/idxadvisor/internal/transport/chi"
	healthuc "github.com/kailas-cloud/idxadvisor/internal/usecase/health"
	monitoruc "github.com/kailas-cloud/idxadvisor/internal/usecase/monitor"
	provisionuc "github.com/kailas-cloud/idxadvisor/internal/usecase/provision"
	slowqueryuc "github.com/kailas-cloud/idxadvisor/internal/usecase/slowquery"
	usageuc "github.com/kailas-cloud/idxadvisor/internal/usecase/usage"
	"github.com/kailas-cloud/idxadvisor/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting idxadvisor",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("database", cfg.Database.Name),
	)

	cat, err := loadCatalog(cfg.Catalog)
	if err != nil {
		logger.Fatal("Failed to load index catalog", zap.Error(err))
	}
	logger.Info("Index catalog loaded",
		zap.String("source", catalogSource(cfg.Catalog)),
		zap.Int("collections", len(cat.Collections())),
		zap.Int("specs", cat.Len()),
	)

	// Register advisor metrics explicitly (no init())
	metrics.RegisterAdvisorMetrics()

	ctx := context.Background()
	store, err := mongodb.NewStore(ctx, mongodb.Config{
		URI:                    cfg.Database.URI,
		Database:               cfg.Database.Name,
		AppName:                cfg.Database.AppName,
		ConnectTimeout:         time.Duration(cfg.Database.ConnectTimeout) * time.Second,
		ServerSelectionTimeout: time.Duration(cfg.Database.ConnectTimeout) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Repositories
	indexRepo := indexrepo.New(store)
	statsRepo := statsrepo.New(store)
	profileRepo := profilerepo.New(store)
	serverRepo := serverrepo.New(store)

	// Use case services
	opTimeout := cfg.Advisor.OpTimeout()
	provisionSvc := provisionuc.New(indexRepo, logger).WithTimeout(opTimeout)
	usageSvc := usageuc.New(statsRepo, logger).
		WithConcurrency(cfg.Advisor.AnalyzeConcurrency).
		WithTimeout(opTimeout)
	slowQuerySvc := slowqueryuc.New(logger).
		WithSource(profileRepo).
		WithThresholds(slowqueryuc.Thresholds{
			MediumMs: cfg.Advisor.MediumThresholdMs,
			HighMs:   cfg.Advisor.HighThresholdMs,
		}).
		WithProfileLimit(cfg.Advisor.ProfileLimit)
	monitorSvc := monitoruc.New(serverRepo, logger).
		WithInFlightThreshold(cfg.Advisor.InFlightThreshold()).
		WithTimeout(opTimeout)
	healthSvc := healthuc.New(store, provisionSvc)

	if cfg.Advisor.ProvisionOnStartup {
		outcomes := provisionSvc.ProvisionAll(ctx, cat)
		if last, ok := provisionSvc.LastRun(); ok && !last.OK() {
			logger.Warn("Startup provisioning finished with failures",
				zap.String("run_id", last.RunID),
				zap.Int("failed", last.Failed),
				zap.Int("total", len(outcomes)),
			)
		}
	}

	// Create chi server
	server := chiTransport.NewServer(cat, provisionSvc, usageSvc, slowQuerySvc, monitorSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Scheduled analysis
	jobCtx, stopJobs := context.WithCancel(ctx)
	defer stopJobs()
	if interval := cfg.Advisor.ScheduleInterval(); interval > 0 {
		s := &scheduler{usage: usageSvc, monitor: monitorSvc, logger: logger}
		go s.run(jobCtx, interval)
		logger.Info("Scheduled analysis enabled", zap.Duration("interval", interval))
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")
	stopJobs()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// loadCatalog reads the configured catalog file or falls back to the built-in catalog.
func loadCatalog(cfg config.CatalogConfig) (*catalog.Catalog, error) {
	if cfg.Path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

func catalogSource(cfg config.CatalogConfig) string {
	if cfg.Path == "" {
		return "built-in"
	}
	return cfg.Path
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
