package transaction

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/errors"
)

func TestRecord_Validate(t *testing.T) {
	valid := Record{
		ID:         "t1",
		Amount:     decimal.NewFromInt(100),
		SenderID:   "a",
		ReceiverID: "b",
		Type:       "transfer",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		mut   func(*Record)
		field string
	}{
		{"missing id", func(r *Record) { r.ID = "" }, "transaction_id"},
		{"negative amount", func(r *Record) { r.Amount = decimal.NewFromInt(-1) }, "amount"},
		{"missing sender", func(r *Record) { r.SenderID = "" }, "sender_id"},
		{"missing receiver", func(r *Record) { r.ReceiverID = "" }, "receiver_id"},
		{"missing type", func(r *Record) { r.Type = "" }, "transaction_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid
			tt.mut(&rec)
			err := rec.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, "INVALID_RECORD"))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestRecord_WithDefaults(t *testing.T) {
	now := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)

	rec := Record{ID: "t1", SenderID: "a", ReceiverID: "b", Type: "transfer"}
	filled := rec.WithDefaults(now)

	assert.Equal(t, DefaultCurrency, filled.PaymentCurrency)
	assert.Equal(t, DefaultCurrency, filled.ReceivedCurrency)
	assert.Equal(t, DefaultBankLocation, filled.SenderBankLocation)
	assert.Equal(t, DefaultBankLocation, filled.ReceiverBankLocation)
	assert.Equal(t, now, filled.Timestamp)

	// Present values are never overwritten.
	rec.PaymentCurrency = "EUR"
	rec.Timestamp = now.Add(-time.Hour)
	kept := rec.WithDefaults(now)
	assert.Equal(t, "EUR", kept.PaymentCurrency)
	assert.Equal(t, now.Add(-time.Hour), kept.Timestamp)

	// The receiver is unchanged.
	assert.Empty(t, rec.SenderBankLocation)
}

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("2024-03-15T14:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 15, 14, 30, 0, 0, time.UTC), ts)

	// Bare ISO datetime without zone is accepted.
	ts, err = ParseTimestamp("2024-03-15T14:30:00")
	require.NoError(t, err)
	assert.Equal(t, 14, ts.Hour())

	// Empty means "default at ingestion", not an error.
	ts, err = ParseTimestamp("")
	require.NoError(t, err)
	assert.True(t, ts.IsZero())

	// Malformed is an InvalidRecord error, never a silent default.
	_, err = ParseTimestamp("yesterday")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, "INVALID_RECORD"))
	assert.Contains(t, err.Error(), "timestamp")
}
