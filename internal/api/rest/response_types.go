package rest

import (
	"time"

	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/service/monitoring"
	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/service/scoring"
)

// BulkItemResult is one outcome of a bulk submission. Failed items carry an
// error document in place of a result.
type BulkItemResult struct {
	Index         int            `json:"index"`
	TransactionID string         `json:"transaction_id,omitempty"`
	Status        string         `json:"status"`
	Result        any            `json:"result,omitempty"`
	Error         *BulkItemError `json:"error,omitempty"`
}

type BulkItemError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BulkProcessResponse summarizes a batch run.
type BulkProcessResponse struct {
	Results        []BulkItemResult `json:"results"`
	TotalProcessed int              `json:"total_processed"`
	Successful     int              `json:"successful"`
	Failed         int              `json:"failed"`
}

// RiskDistribution breaks down scored transactions by level.
type RiskDistribution struct {
	High    int64 `json:"high"`
	Medium  int64 `json:"medium"`
	Low     int64 `json:"low"`
	Minimal int64 `json:"minimal"`
}

// MonitoringStatsResponse is the monitoring dashboard document.
type MonitoringStatsResponse struct {
	TotalTransactions int64            `json:"total_transactions"`
	RiskDistribution  RiskDistribution `json:"risk_distribution"`
	PendingReviews    int64            `json:"pending_reviews"`
	AlertsGenerated   int64            `json:"alerts_generated"`
	ProcessingRate    float64          `json:"processing_rate"`
	UptimeSeconds     float64          `json:"uptime_seconds"`
	LastAlertTime     *time.Time       `json:"last_alert_time"`
	QueueSize         int              `json:"queue_size"`
	ModelInfo         ModelInfoBrief   `json:"model_info"`
}

// ModelInfoBrief is the compact model summary embedded in stats.
type ModelInfoBrief struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Loaded  bool   `json:"loaded"`
}

// ModelInfoResponse is the full model description.
type ModelInfoResponse struct {
	Name         string             `json:"model_name"`
	Version      string             `json:"version"`
	Threshold    float64            `json:"threshold"`
	FeaturesUsed []string           `json:"features_used"`
	FeatureCount int                `json:"feature_count"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
	LoadedAt     time.Time          `json:"loaded_at"`
}

// AlertListResponse is the windowed alert query result.
type AlertListResponse struct {
	Alerts []monitoring.Alert `json:"alerts"`
	Count  int                `json:"count"`
	Hours  int                `json:"hours"`
}

// HighRiskListResponse is the recent high-risk query result.
type HighRiskListResponse struct {
	Transactions []monitoring.HighRiskTransaction `json:"transactions"`
	Count        int                              `json:"count"`
}

// StreamControlResponse acknowledges a streaming start or stop.
type StreamControlResponse struct {
	Streaming bool   `json:"streaming"`
	Message   string `json:"message"`
}

func newMonitoringStatsResponse(snap monitoring.Snapshot, info scoring.ModelInfo, loaded bool) MonitoringStatsResponse {
	return MonitoringStatsResponse{
		TotalTransactions: snap.TotalTransactions,
		RiskDistribution: RiskDistribution{
			High:    snap.HighRiskCount,
			Medium:  snap.MediumRiskCount,
			Low:     snap.LowRiskCount,
			Minimal: snap.MinimalRiskCount,
		},
		PendingReviews:  snap.PendingReviews,
		AlertsGenerated: snap.AlertsGenerated,
		ProcessingRate:  snap.ProcessingRate,
		UptimeSeconds:   snap.UptimeSeconds,
		LastAlertTime:   snap.LastAlertTime,
		// Scoring is synchronous, there is no ingest queue.
		QueueSize: 0,
		ModelInfo: ModelInfoBrief{
			Name:    info.Name,
			Version: info.Version,
			Loaded:  loaded,
		},
	}
}
