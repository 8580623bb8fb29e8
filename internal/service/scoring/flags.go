package scoring

import (
	"github.com/shopspring/decimal"

	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/transaction"
)

// Compliance flag names attached to scored transactions.
const (
	FlagLargeAmount       = "large_amount"
	FlagHighRiskScore     = "high_risk_score"
	FlagSuspiciousPattern = "suspicious_pattern"
)

const (
	highRiskScoreThreshold   = 0.8
	suspiciousScoreThreshold = 0.6
)

var (
	largeAmountThreshold      = decimal.NewFromInt(100000)
	suspiciousAmountThreshold = decimal.NewFromInt(50000)
)

// EvaluateFlags applies the flag rules to a record and its scored
// probability. Rules are independent and additive; the returned slice is
// never nil. Amount comparisons are exact decimal comparisons, both rules
// are strict greater-than.
func EvaluateFlags(rec transaction.Record, probability float64) []string {
	flags := []string{}
	if rec.Amount.GreaterThan(largeAmountThreshold) {
		flags = append(flags, FlagLargeAmount)
	}
	if probability > highRiskScoreThreshold {
		flags = append(flags, FlagHighRiskScore)
	}
	if rec.Amount.GreaterThan(suspiciousAmountThreshold) && probability > suspiciousScoreThreshold {
		flags = append(flags, FlagSuspiciousPattern)
	}
	return flags
}
