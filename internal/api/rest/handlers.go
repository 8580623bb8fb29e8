package rest

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	domainErrors "github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/errors"
	risk "github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/scoring"
	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/transaction"
	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/infrastructure/telemetry"
	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/metrics"
	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/service/monitoring"
	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/service/scoring"
)

// Query parameter defaults for the monitoring endpoints.
const (
	defaultAlertWindowHours = 24
	maxAlertWindowHours     = 24 * 7
	defaultHighRiskLimit    = 100
	maxHighRiskLimit        = 1000
)

// Handler serves the risk scoring and monitoring API.
type Handler struct {
	*BaseHandler
	pipeline   *scoring.Pipeline
	scorer     scoring.Scorer
	aggregator *monitoring.Aggregator
	metrics    *metrics.Registry
	spans      *telemetry.OpenTelemetryTracer
	logger     *slog.Logger
}

// NewHandler creates the API handler with all dependencies.
func NewHandler(pipeline *scoring.Pipeline, scorer scoring.Scorer, aggregator *monitoring.Aggregator, registry *metrics.Registry, logger *slog.Logger, apiVersion string) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		BaseHandler: NewBaseHandler(apiVersion),
		pipeline:    pipeline,
		scorer:      scorer,
		aggregator:  aggregator,
		metrics:     registry,
		spans:       telemetry.NewOpenTelemetryTracer("scoring"),
		logger:      logger,
	}
}

// handleHealth reports overall service health including model state.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := h.aggregator.Snapshot()
	h.writeSuccess(w, r, http.StatusOK, map[string]any{
		"status":         "healthy",
		"model_loaded":   h.scorer.Ready(),
		"uptime_seconds": snap.UptimeSeconds,
		"timestamp":      time.Now().UTC(),
	})
}

// handleProcessTransaction scores a single transaction.
func (h *Handler) handleProcessTransaction(w http.ResponseWriter, r *http.Request) {
	var req ProcessTransactionRequest
	if err := h.ParseAndValidate(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	rec, err := req.ToRecord()
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	ctx, span := telemetry.StartScoringSpan(r.Context(), h.spans, rec.ID)
	start := time.Now()
	result, err := h.pipeline.Process(ctx, rec)
	telemetry.WithSpanError(span, err)
	span.End()
	if err != nil {
		h.recordScoringMetrics(r, start, nil, rec)
		h.handleError(w, r, err)
		return
	}

	h.recordScoringMetrics(r, start, result, rec)
	h.writeSuccess(w, r, http.StatusOK, result)
}

// handleBulkProcess scores a batch with per-item isolation: one bad
// transaction never fails the others.
func (h *Handler) handleBulkProcess(w http.ResponseWriter, r *http.Request) {
	var req BulkProcessRequest
	if err := h.ParseAndValidate(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	resp := BulkProcessResponse{
		Results:        make([]BulkItemResult, len(req.Transactions)),
		TotalProcessed: len(req.Transactions),
	}

	// Items that fail conversion are settled up front; the rest go
	// through the batch pipeline.
	records := make([]transaction.Record, 0, len(req.Transactions))
	origin := make([]int, 0, len(req.Transactions))
	for i, item := range req.Transactions {
		rec, err := item.ToRecord()
		if err != nil {
			resp.Failed++
			resp.Results[i] = bulkFailure(i, item.TransactionID, err)
			continue
		}
		records = append(records, rec)
		origin = append(origin, i)
	}

	batch := h.pipeline.ProcessBatch(r.Context(), records)
	for _, outcome := range batch.Outcomes {
		idx := origin[outcome.Index]
		if outcome.Err != nil {
			resp.Failed++
			resp.Results[idx] = bulkFailure(idx, outcome.TransactionID, outcome.Err)
			continue
		}
		resp.Successful++
		resp.Results[idx] = BulkItemResult{
			Index:         idx,
			TransactionID: outcome.TransactionID,
			Status:        "processed",
			Result:        outcome.Result,
		}
	}

	if h.metrics != nil {
		h.metrics.RecordBatch(r.Context(), resp.TotalProcessed, resp.Successful)
	}

	h.writeSuccess(w, r, http.StatusOK, resp)
}

func bulkFailure(idx int, transactionID string, err error) BulkItemResult {
	code := "INTERNAL_ERROR"
	var appErr *domainErrors.AppError
	if e, ok := err.(*domainErrors.AppError); ok {
		appErr = e
		code = appErr.Code
	}
	return BulkItemResult{
		Index:         idx,
		TransactionID: transactionID,
		Status:        "failed",
		Error: &BulkItemError{
			Code:    code,
			Message: err.Error(),
		},
	}
}

// handleModelInfo describes the loaded model. Returns 503 until a model
// artifact has been loaded.
func (h *Handler) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	if !h.scorer.Ready() {
		h.handleError(w, r, domainErrors.NewScoringUnavailableError())
		return
	}

	info := h.scorer.Info()
	h.writeSuccess(w, r, http.StatusOK, ModelInfoResponse{
		Name:         info.Name,
		Version:      info.Version,
		Threshold:    info.Threshold,
		FeaturesUsed: info.FeaturesUsed,
		FeatureCount: len(info.FeaturesUsed),
		Metrics:      info.Metrics,
		LoadedAt:     info.LoadedAt,
	})
}

// handleMonitoringStats returns the live monitoring snapshot.
func (h *Handler) handleMonitoringStats(w http.ResponseWriter, r *http.Request) {
	snap := h.aggregator.Snapshot()
	info := h.scorer.Info()
	h.writeSuccess(w, r, http.StatusOK, newMonitoringStatsResponse(snap, info, h.scorer.Ready()))
}

// handleMonitoringAlerts lists alerts raised within the requested window.
func (h *Handler) handleMonitoringAlerts(w http.ResponseWriter, r *http.Request) {
	hours, err := queryInt(r, "hours", defaultAlertWindowHours, 1, maxAlertWindowHours)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	alerts := h.aggregator.RecentAlerts(time.Duration(hours) * time.Hour)
	h.writeSuccess(w, r, http.StatusOK, AlertListResponse{
		Alerts: alerts,
		Count:  len(alerts),
		Hours:  hours,
	})
}

// handleMonitoringHighRisk lists the most recent high-risk transactions.
func (h *Handler) handleMonitoringHighRisk(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultHighRiskLimit, 1, maxHighRiskLimit)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	txns := h.aggregator.RecentHighRisk(limit)
	h.writeSuccess(w, r, http.StatusOK, HighRiskListResponse{
		Transactions: txns,
		Count:        len(txns),
	})
}

// handleMonitoringStart arms the live alert feed. Recording is always on;
// this only gates the push channel.
func (h *Handler) handleMonitoringStart(w http.ResponseWriter, r *http.Request) {
	h.aggregator.StartStreaming()
	h.logger.InfoContext(r.Context(), "alert streaming started")
	h.writeSuccess(w, r, http.StatusOK, StreamControlResponse{
		Streaming: true,
		Message:   "Alert streaming started",
	})
}

// handleMonitoringStop disarms the live alert feed.
func (h *Handler) handleMonitoringStop(w http.ResponseWriter, r *http.Request) {
	h.aggregator.StopStreaming()
	h.logger.InfoContext(r.Context(), "alert streaming stopped")
	h.writeSuccess(w, r, http.StatusOK, StreamControlResponse{
		Streaming: false,
		Message:   "Alert streaming stopped",
	})
}

func (h *Handler) recordScoringMetrics(r *http.Request, start time.Time, result *risk.Result, rec transaction.Record) {
	if h.metrics == nil {
		return
	}

	durationMS := float64(time.Since(start).Milliseconds())
	amount, _ := rec.Amount.Float64()
	if result == nil {
		h.metrics.RecordScoring(r.Context(), durationMS, "unknown", amount, false)
		return
	}

	h.metrics.RecordScoring(r.Context(), durationMS, string(result.RiskLevel), amount, true)
	if result.RequiresReview {
		h.metrics.RecordPendingReview(r.Context(), string(result.RiskLevel))
	}
	if result.RiskScore > monitoring.AlertScoreThreshold {
		h.metrics.RecordAlert(r.Context(), "HIGH")
	}
}

// queryInt parses an optional positive integer query parameter, clamping to
// the given maximum.
func queryInt(r *http.Request, name string, def, min, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < min {
		return 0, domainErrors.NewValidationError("INVALID_PARAMETER",
			"query parameter "+name+" must be a positive integer")
	}
	if v > max {
		v = max
	}
	return v, nil
}
