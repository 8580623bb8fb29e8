package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/api/rest"
	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/infrastructure/config"
	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/infrastructure/scorer"
	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/infrastructure/telemetry"
	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/metrics"
	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/service/monitoring"
	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/service/scoring"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := telemetry.SetupLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}
	slog.SetDefault(logger)

	ctx := context.Background()
	provider, err := telemetry.InitializeOpenTelemetry(ctx, &telemetry.Config{
		ServiceName:    "acrs-api",
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SamplingRate:   cfg.Telemetry.SampleRate,
	})
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := provider.Shutdown(ctx); err != nil {
			logger.Error("failed to shut down telemetry", "error", err)
		}
	}()

	// Fail fast on a broken API contract
	if _, err := rest.LoadOpenAPIDocument(); err != nil {
		log.Fatalf("Invalid OpenAPI document: %v", err)
	}

	// The server starts even without a model; scoring endpoints return
	// 503 until an artifact is loaded.
	model := scorer.NewLogistic()
	if err := model.Reload(cfg.Model.MetadataPath); err != nil {
		logger.Warn("scoring model not loaded, serving degraded",
			"path", cfg.Model.MetadataPath,
			"error", err)
	} else {
		info := model.Info()
		logger.Info("scoring model loaded",
			"model", info.Name,
			"version", info.Version,
			"features", len(info.FeaturesUsed))
	}

	registry, err := metrics.NewRegistry("acrs")
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	aggregator := monitoring.NewAggregator(cfg.Monitoring)
	pipeline := scoring.NewPipeline(model, aggregator, cfg.Model.ScoreTimeout, logger)

	SetBuildInfo(cfg.Version, cfg.Environment)

	server := rest.NewServer(cfg, pipeline, model, aggregator, registry, logger)
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
