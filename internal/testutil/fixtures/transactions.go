package fixtures

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/transaction"
)

// RecordBuilder builds test transaction records
type RecordBuilder struct {
	t      *testing.T
	record transaction.Record
}

// NewRecordBuilder creates a new RecordBuilder with defaults
func NewRecordBuilder(t *testing.T) *RecordBuilder {
	t.Helper()

	return &RecordBuilder{
		t: t,
		record: transaction.Record{
			ID:                   "TXN-" + uuid.New().String()[:8],
			Amount:               decimal.NewFromInt(2500),
			SenderID:             "ACC-SENDER",
			ReceiverID:           "ACC-RECEIVER",
			Type:                 "wire_transfer",
			Timestamp:            time.Date(2024, 3, 12, 14, 30, 0, 0, time.UTC),
			PaymentCurrency:      "USD",
			ReceivedCurrency:     "USD",
			SenderBankLocation:   "USA",
			ReceiverBankLocation: "UK",
		},
	}
}

// WithID sets the transaction ID
func (b *RecordBuilder) WithID(id string) *RecordBuilder {
	b.record.ID = id
	return b
}

// WithAmount sets the amount from a float
func (b *RecordBuilder) WithAmount(amount float64) *RecordBuilder {
	b.record.Amount = decimal.NewFromFloat(amount)
	return b
}

// WithParties sets sender and receiver accounts
func (b *RecordBuilder) WithParties(sender, receiver string) *RecordBuilder {
	b.record.SenderID = sender
	b.record.ReceiverID = receiver
	return b
}

// WithType sets the transaction type
func (b *RecordBuilder) WithType(txType string) *RecordBuilder {
	b.record.Type = txType
	return b
}

// WithTimestamp sets the transaction timestamp
func (b *RecordBuilder) WithTimestamp(ts time.Time) *RecordBuilder {
	b.record.Timestamp = ts
	return b
}

// WithCurrencies sets payment and received currencies
func (b *RecordBuilder) WithCurrencies(payment, received string) *RecordBuilder {
	b.record.PaymentCurrency = payment
	b.record.ReceivedCurrency = received
	return b
}

// WithBankLocations sets sender and receiver bank locations
func (b *RecordBuilder) WithBankLocations(sender, receiver string) *RecordBuilder {
	b.record.SenderBankLocation = sender
	b.record.ReceiverBankLocation = receiver
	return b
}

// WithoutOptionalFields clears the fields the ingestion contract defaults
func (b *RecordBuilder) WithoutOptionalFields() *RecordBuilder {
	b.record.Timestamp = time.Time{}
	b.record.PaymentCurrency = ""
	b.record.ReceivedCurrency = ""
	b.record.SenderBankLocation = ""
	b.record.ReceiverBankLocation = ""
	return b
}

// Build returns the record
func (b *RecordBuilder) Build() transaction.Record {
	return b.record
}

// LargeAmountRecord returns a record above the large-amount flag threshold
func LargeAmountRecord(t *testing.T) transaction.Record {
	t.Helper()
	return NewRecordBuilder(t).WithAmount(150000).Build()
}

// RoutineRecord returns a small unremarkable transaction
func RoutineRecord(t *testing.T) transaction.Record {
	t.Helper()
	return NewRecordBuilder(t).WithAmount(120.50).Build()
}
