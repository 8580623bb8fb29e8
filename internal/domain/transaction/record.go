package transaction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/errors"
)

// Default values for optional categorical fields, matching the ingestion
// contract: absent currencies are treated as USD, absent bank locations as
// Unknown.
const (
	DefaultCurrency     = "USD"
	DefaultBankLocation = "Unknown"
)

// Timestamp layouts accepted on ingestion. RFC3339 first, then a bare ISO
// local datetime without zone.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Record is an immutable raw transaction as submitted for risk assessment.
// ID is caller-unique; Amount is a non-negative decimal. Timestamp is zero
// when the caller omitted it; the pipeline stamps ingestion time before
// encoding.
type Record struct {
	ID                   string          `json:"transaction_id"`
	Amount               decimal.Decimal `json:"amount"`
	SenderID             string          `json:"sender_id"`
	ReceiverID           string          `json:"receiver_id"`
	Type                 string          `json:"transaction_type"`
	Timestamp            time.Time       `json:"timestamp,omitempty"`
	PaymentCurrency      string          `json:"payment_currency,omitempty"`
	ReceivedCurrency     string          `json:"received_currency,omitempty"`
	SenderBankLocation   string          `json:"sender_bank_location,omitempty"`
	ReceiverBankLocation string          `json:"receiver_bank_location,omitempty"`
}

// Validate checks the required fields in submission order and returns an
// InvalidRecord error naming the first missing one.
func (r Record) Validate() error {
	if r.ID == "" {
		return errors.NewInvalidRecordError("transaction_id")
	}
	if r.Amount.IsNegative() {
		return errors.NewMalformedFieldError("amount", "must be non-negative")
	}
	if r.SenderID == "" {
		return errors.NewInvalidRecordError("sender_id")
	}
	if r.ReceiverID == "" {
		return errors.NewInvalidRecordError("receiver_id")
	}
	if r.Type == "" {
		return errors.NewInvalidRecordError("transaction_type")
	}
	return nil
}

// WithDefaults returns a copy with optional categorical fields filled in and
// the timestamp defaulted to now when absent. The receiver is not mutated.
func (r Record) WithDefaults(now time.Time) Record {
	if r.PaymentCurrency == "" {
		r.PaymentCurrency = DefaultCurrency
	}
	if r.ReceivedCurrency == "" {
		r.ReceivedCurrency = DefaultCurrency
	}
	if r.SenderBankLocation == "" {
		r.SenderBankLocation = DefaultBankLocation
	}
	if r.ReceiverBankLocation == "" {
		r.ReceiverBankLocation = DefaultBankLocation
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = now
	}
	return r
}

// ParseTimestamp parses a caller-supplied timestamp string. An empty string
// returns the zero time (meaning "default to ingestion time"); anything
// present but unparseable is an InvalidRecord error, never a silent default.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, errors.NewMalformedFieldError("timestamp", "unrecognized timestamp format")
}
