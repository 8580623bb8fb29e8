package scoring

import (
	"math"
	"time"

	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/transaction"
)

// FeatureCount is the length of the positional feature layout every Scorer
// implementation must accept.
const FeatureCount = 18

// FeatureNames lists the features in their mandated positional order. The
// order is part of the Scorer contract and must never be reordered.
var FeatureNames = [FeatureCount]string{
	"Amount",
	"Log_amount",
	"Receiver_account",
	"Sender_account",
	"Payment_type",
	"Received_currency",
	"Hour_sin",
	"Hour_cos",
	"Month_cos",
	"Month_sin",
	"Day_of_week_sin",
	"Receiver_bank_location",
	"Day_of_week_cos",
	"Payment_currency",
	"Is_weekend",
	"Sender_bank_location",
	"Is_night",
	"Amount_rounded",
}

// FeatureVector holds the encoded numeric features of one transaction.
// Field order mirrors FeatureNames; Vector flattens it for the Scorer.
type FeatureVector struct {
	Amount               float64
	LogAmount            float64
	ReceiverAccount      float64
	SenderAccount        float64
	PaymentType          float64
	ReceivedCurrency     float64
	HourSin              float64
	HourCos              float64
	MonthCos             float64
	MonthSin             float64
	DayOfWeekSin         float64
	ReceiverBankLocation float64
	DayOfWeekCos         float64
	PaymentCurrency      float64
	IsWeekend            float64
	SenderBankLocation   float64
	IsNight              float64
	AmountRounded        float64
}

// Vector returns the positional layout consumed by Scorer implementations.
func (v FeatureVector) Vector() [FeatureCount]float64 {
	return [FeatureCount]float64{
		v.Amount,
		v.LogAmount,
		v.ReceiverAccount,
		v.SenderAccount,
		v.PaymentType,
		v.ReceivedCurrency,
		v.HourSin,
		v.HourCos,
		v.MonthCos,
		v.MonthSin,
		v.DayOfWeekSin,
		v.ReceiverBankLocation,
		v.DayOfWeekCos,
		v.PaymentCurrency,
		v.IsWeekend,
		v.SenderBankLocation,
		v.IsNight,
		v.AmountRounded,
	}
}

// Encode derives the feature vector from a raw record. Pure and
// deterministic: identical records (including timestamp) produce bit-identical
// vectors. Temporal features come from the record's own timestamp, never from
// the wall clock; callers default absent timestamps before encoding.
func Encode(rec transaction.Record) (FeatureVector, error) {
	if err := rec.Validate(); err != nil {
		return FeatureVector{}, err
	}

	rec = rec.WithDefaults(rec.Timestamp)

	amount := rec.Amount.InexactFloat64()
	ts := rec.Timestamp
	hour := float64(ts.Hour())
	month := float64(ts.Month())
	weekday := mondayIndexedWeekday(ts.Weekday())

	v := FeatureVector{
		Amount:               amount,
		LogAmount:            math.Log1p(amount),
		ReceiverAccount:      hashBucket(rec.ReceiverID, AccountBuckets),
		SenderAccount:        hashBucket(rec.SenderID, AccountBuckets),
		PaymentType:          hashBucket(rec.Type, CategoryBuckets),
		ReceivedCurrency:     hashBucket(rec.ReceivedCurrency, CategoryBuckets),
		HourSin:              math.Sin(2 * math.Pi * hour / 24),
		HourCos:              math.Cos(2 * math.Pi * hour / 24),
		MonthCos:             math.Cos(2 * math.Pi * month / 12),
		MonthSin:             math.Sin(2 * math.Pi * month / 12),
		DayOfWeekSin:         math.Sin(2 * math.Pi * weekday / 7),
		ReceiverBankLocation: hashBucket(rec.ReceiverBankLocation, CategoryBuckets),
		DayOfWeekCos:         math.Cos(2 * math.Pi * weekday / 7),
		PaymentCurrency:      hashBucket(rec.PaymentCurrency, CategoryBuckets),
		SenderBankLocation:   hashBucket(rec.SenderBankLocation, CategoryBuckets),
	}

	if weekday >= 5 {
		v.IsWeekend = 1
	}
	if ts.Hour() >= 22 || ts.Hour() <= 6 {
		v.IsNight = 1
	}
	if rec.Amount.IsInteger() {
		v.AmountRounded = 1
	}

	return v, nil
}

// mondayIndexedWeekday converts Go's Sunday=0 weekday to Monday=0 indexing,
// which the temporal encodings and the weekend rule are defined against.
func mondayIndexedWeekday(wd time.Weekday) float64 {
	return float64((int(wd) + 6) % 7)
}
