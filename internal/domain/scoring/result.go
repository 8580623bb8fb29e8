package scoring

import (
	"time"

	"github.com/shopspring/decimal"
)

// Compliance status values. Exactly two exist: a transaction requiring review
// is PENDING, everything else is APPROVED.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
)

// Result is the immutable outcome of scoring one transaction.
type Result struct {
	TransactionID    string          `json:"transaction_id"`
	RiskScore        float64         `json:"risk_score"`
	RiskLevel        Level           `json:"risk_level"`
	ComplianceStatus string          `json:"compliance_status"`
	RequiresReview   bool            `json:"requires_review"`
	FlaggedFeatures  []string        `json:"flagged_features"`
	Confidence       float64         `json:"confidence"`
	Amount           decimal.Decimal `json:"amount"`
	SenderID         string          `json:"sender_id"`
	ReceiverID       string          `json:"receiver_id"`
	ProcessedAt      time.Time       `json:"processed_at"`
}

// NewResult assembles a Result from a scored probability, applying the fixed
// classification policy.
func NewResult(id string, probability float64, flags []string, amount decimal.Decimal, sender, receiver string, processedAt time.Time) *Result {
	review := RequiresReview(probability)
	status := StatusApproved
	if review {
		status = StatusPending
	}
	if flags == nil {
		flags = []string{}
	}
	return &Result{
		TransactionID:    id,
		RiskScore:        probability,
		RiskLevel:        ClassifyLevel(probability),
		ComplianceStatus: status,
		RequiresReview:   review,
		FlaggedFeatures:  flags,
		Confidence:       Confidence(probability),
		Amount:           amount,
		SenderID:         sender,
		ReceiverID:       receiver,
		ProcessedAt:      processedAt,
	}
}
