package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/infrastructure/config"
	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/metrics"
	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/service/monitoring"
	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/service/scoring"
)

// Server hosts the scoring and monitoring API.
type Server struct {
	config     *config.Config
	httpServer *http.Server
	handler    *Handler
	health     *HealthService
	stream     *AlertStreamHandler
	logger     *slog.Logger
}

// NewServer wires the HTTP surface around the scoring pipeline.
func NewServer(cfg *config.Config, pipeline *scoring.Pipeline, scorer scoring.Scorer, aggregator *monitoring.Aggregator, registry *metrics.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:  cfg,
		handler: NewHandler(pipeline, scorer, aggregator, registry, logger, cfg.Version),
		health:  NewHealthService(cfg.Version),
		stream:  NewAlertStreamHandler(aggregator, registry, logger),
		logger:  logger,
	}

	s.health.RegisterChecker(NewModelHealthChecker(scorer))
	s.health.RegisterChecker(NewMonitoringHealthChecker(aggregator))

	mux := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.applyMiddleware(mux, registry),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Probes and docs live outside the versioned prefix
	mux.HandleFunc("GET /health", s.handler.handleHealth)
	mux.HandleFunc("GET /healthz", s.health.LivenessHandler())
	mux.HandleFunc("GET /ready", s.health.ReadinessHandler())
	mux.HandleFunc("GET /docs", handleDocs)
	mux.HandleFunc("GET /docs/openapi.json", handleOpenAPISpec)
	mux.Handle("GET /metrics", promhttp.Handler())

	v1 := http.NewServeMux()
	v1.HandleFunc("GET /health", s.handler.handleHealth)
	v1.HandleFunc("POST /process_transaction", s.handler.handleProcessTransaction)
	v1.HandleFunc("POST /bulk_process", s.handler.handleBulkProcess)
	v1.HandleFunc("GET /model/info", s.handler.handleModelInfo)
	v1.HandleFunc("GET /monitoring/stats", s.handler.handleMonitoringStats)
	v1.HandleFunc("GET /monitoring/alerts", s.handler.handleMonitoringAlerts)
	v1.HandleFunc("GET /monitoring/high_risk", s.handler.handleMonitoringHighRisk)
	v1.HandleFunc("GET /monitoring/high-risk", s.handler.handleMonitoringHighRisk)
	v1.HandleFunc("POST /monitoring/start", s.handler.handleMonitoringStart)
	v1.HandleFunc("POST /monitoring/stop", s.handler.handleMonitoringStop)
	v1.Handle("GET /monitoring/stream", s.stream)

	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", v1))
	// Unversioned alias kept for clients of the original API
	mux.Handle("/api/", http.StripPrefix("/api", v1))

	return mux
}

func (s *Server) applyMiddleware(h http.Handler, registry *metrics.Registry) http.Handler {
	middleware := []Middleware{
		requestIDMiddleware,
		tracingMiddleware,
		loggingMiddleware,
		metricsMiddleware(registry),
		corsMiddleware(s.config.Security.CORS.AllowedOrigins),
		rateLimitMiddleware(s.config.Security.RateLimit.RequestsPerSecond, s.config.Security.RateLimit.BurstSize),
		timeoutMiddleware(s.config.Server.RequestTimeout),
		recoveryMiddleware,
	}

	// Apply in reverse so the first listed runs outermost
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}

	return h
}

// Start runs the server until the context is canceled or a shutdown
// signal arrives.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigCh:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown()
	case <-ctx.Done():
		s.logger.Info("context canceled, shutting down")
		return s.Shutdown()
	}
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown() error {
	timeout := s.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
