package monitoring

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/scoring"
)

// Alert types and severities.
const (
	AlertTypeHighRiskTransaction = "HIGH_RISK_TRANSACTION"
	SeverityHigh                 = "HIGH"
)

// AlertScoreThreshold is the probability above which an alert is raised.
const AlertScoreThreshold = 0.8

// Alert is an append-only record of a high-risk detection.
type Alert struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Severity  string          `json:"severity"`
	Message   string          `json:"message"`
	RiskScore float64         `json:"risk_score"`
	Amount    decimal.Decimal `json:"amount"`
	Sender    string          `json:"sender"`
	Receiver  string          `json:"receiver"`
	CreatedAt time.Time       `json:"timestamp"`
}

// HighRiskTransaction is a retained view of a transaction classified HIGH.
type HighRiskTransaction struct {
	TransactionID string          `json:"transaction_id"`
	RiskScore     float64         `json:"risk_score"`
	RiskLevel     scoring.Level   `json:"risk_level"`
	Amount        decimal.Decimal `json:"amount"`
	SenderID      string          `json:"sender_id"`
	ReceiverID    string          `json:"receiver_id"`
	RecordedAt    time.Time       `json:"timestamp"`
}

// Snapshot is a point-in-time, internally consistent view of the running
// statistics. The four level counters always sum to TotalTransactions.
type Snapshot struct {
	TotalTransactions int64      `json:"total_transactions"`
	HighRiskCount     int64      `json:"high_risk_count"`
	MediumRiskCount   int64      `json:"medium_risk_count"`
	LowRiskCount      int64      `json:"low_risk_count"`
	MinimalRiskCount  int64      `json:"minimal_risk_count"`
	PendingReviews    int64      `json:"pending_reviews"`
	AlertsGenerated   int64      `json:"alerts_generated"`
	ProcessingRate    float64    `json:"processing_rate"`
	UptimeSeconds     float64    `json:"uptime_seconds"`
	LastAlertTime     *time.Time `json:"last_alert_time,omitempty"`
}

// Config bounds the in-memory history buffers. Zero values fall back to the
// defaults; retention is per-process, nothing survives a restart.
type Config struct {
	MaxAlerts   int `koanf:"max_alerts"`
	MaxHighRisk int `koanf:"max_high_risk"`
}

// DefaultConfig returns the default retention bounds.
func DefaultConfig() Config {
	return Config{
		MaxAlerts:   1000,
		MaxHighRisk: 1000,
	}
}
