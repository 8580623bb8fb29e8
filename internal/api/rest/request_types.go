package rest

import (
	"github.com/shopspring/decimal"

	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/transaction"
)

// ProcessTransactionRequest is the payload for scoring a single transaction.
// Timestamp is an optional string so a missing value can be distinguished
// from a malformed one.
type ProcessTransactionRequest struct {
	TransactionID        string           `json:"transaction_id" validate:"required"`
	Amount               *decimal.Decimal `json:"amount" validate:"required"`
	SenderID             string           `json:"sender_id" validate:"required"`
	ReceiverID           string           `json:"receiver_id" validate:"required"`
	TransactionType      string           `json:"transaction_type" validate:"required"`
	Timestamp            string           `json:"timestamp,omitempty"`
	PaymentCurrency      string           `json:"payment_currency,omitempty" validate:"omitempty,iso4217"`
	ReceivedCurrency     string           `json:"received_currency,omitempty" validate:"omitempty,iso4217"`
	SenderBankLocation   string           `json:"sender_bank_location,omitempty"`
	ReceiverBankLocation string           `json:"receiver_bank_location,omitempty"`
}

// ToRecord converts the request into a domain record. Timestamp parsing
// errors surface as InvalidRecord domain errors.
func (req ProcessTransactionRequest) ToRecord() (transaction.Record, error) {
	ts, err := transaction.ParseTimestamp(req.Timestamp)
	if err != nil {
		return transaction.Record{}, err
	}

	var amount decimal.Decimal
	if req.Amount != nil {
		amount = *req.Amount
	}

	return transaction.Record{
		ID:                   req.TransactionID,
		Amount:               amount,
		SenderID:             req.SenderID,
		ReceiverID:           req.ReceiverID,
		Type:                 req.TransactionType,
		Timestamp:            ts,
		PaymentCurrency:      req.PaymentCurrency,
		ReceivedCurrency:     req.ReceivedCurrency,
		SenderBankLocation:   req.SenderBankLocation,
		ReceiverBankLocation: req.ReceiverBankLocation,
	}, nil
}

// BulkProcessRequest scores a batch of transactions with per-item isolation.
type BulkProcessRequest struct {
	Transactions []ProcessTransactionRequest `json:"transactions" validate:"required,min=1,max=1000,dive"`
}
