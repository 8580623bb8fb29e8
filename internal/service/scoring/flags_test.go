package scoring

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/testutil/fixtures"
)

func TestEvaluateFlags(t *testing.T) {
	tests := []struct {
		name        string
		amount      int64
		probability float64
		want        []string
	}{
		{
			name:        "no flags",
			amount:      500,
			probability: 0.1,
			want:        []string{},
		},
		{
			name:        "large amount only",
			amount:      150000,
			probability: 0.3,
			want:        []string{FlagLargeAmount},
		},
		{
			name:        "high risk score only",
			amount:      100,
			probability: 0.95,
			want:        []string{FlagHighRiskScore},
		},
		{
			name:        "suspicious pattern only",
			amount:      60000,
			probability: 0.7,
			want:        []string{FlagSuspiciousPattern},
		},
		{
			name:        "all three rules fire independently",
			amount:      150000,
			probability: 0.85,
			want:        []string{FlagLargeAmount, FlagHighRiskScore, FlagSuspiciousPattern},
		},
		{
			// amount and score rules need strict excess; the pattern rule
			// still fires because both of its conditions are exceeded
			name:        "large and high thresholds are strict",
			amount:      100000,
			probability: 0.8,
			want:        []string{FlagSuspiciousPattern},
		},
		{
			name:        "all thresholds exactly met raise nothing",
			amount:      50000,
			probability: 0.6,
			want:        []string{},
		},
		{
			name:        "suspicious pattern needs both conditions",
			amount:      60000,
			probability: 0.6,
			want:        []string{},
		},
		{
			name:        "high score alone below suspicious amount",
			amount:      50000,
			probability: 0.7,
			want:        []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := fixtures.NewRecordBuilder(t).WithAmount(float64(tt.amount)).Build()
			assert.Equal(t, tt.want, EvaluateFlags(rec, tt.probability))
		})
	}
}

func TestEvaluateFlags_DecimalBoundary(t *testing.T) {
	rec := fixtures.NewRecordBuilder(t).Build()
	rec.Amount = decimal.RequireFromString("100000.01")
	assert.Equal(t, []string{FlagLargeAmount}, EvaluateFlags(rec, 0.1))
}
