package monitoring

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/scoring"
	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/transaction"
)

func testRecord(id string, amount int64) transaction.Record {
	return transaction.Record{
		ID:         id,
		Amount:     decimal.NewFromInt(amount),
		SenderID:   "a",
		ReceiverID: "b",
		Type:       "transfer",
	}
}

func scored(id string, probability float64, amount int64) (transaction.Record, *scoring.Result) {
	rec := testRecord(id, amount)
	res := scoring.NewResult(id, probability, nil, rec.Amount, rec.SenderID, rec.ReceiverID, time.Now())
	return rec, res
}

func TestAggregator_LevelCountersSumToTotal(t *testing.T) {
	agg := NewAggregator(DefaultConfig())

	probabilities := []float64{0.05, 0.1, 0.25, 0.4, 0.55, 0.7, 0.85, 0.95, 0.5, 0.8}
	for i, p := range probabilities {
		rec, res := scored(fmt.Sprintf("t%d", i), p, 100)
		agg.RecordTransaction(rec, res)
	}

	snap := agg.Snapshot()
	assert.Equal(t, int64(len(probabilities)), snap.TotalTransactions)
	sum := snap.HighRiskCount + snap.MediumRiskCount + snap.LowRiskCount + snap.MinimalRiskCount
	assert.Equal(t, snap.TotalTransactions, sum)

	assert.Equal(t, int64(3), snap.HighRiskCount)    // 0.85, 0.95, 0.8
	assert.Equal(t, int64(3), snap.MediumRiskCount)  // 0.55, 0.7, 0.5
	assert.Equal(t, int64(2), snap.LowRiskCount)     // 0.25, 0.4
	assert.Equal(t, int64(2), snap.MinimalRiskCount) // 0.05, 0.1
	assert.Equal(t, int64(6), snap.PendingReviews)   // p >= 0.5
	assert.Equal(t, int64(2), snap.AlertsGenerated)  // p > 0.8
}

func TestAggregator_DoubleRecordCountsTwice(t *testing.T) {
	// Recording is not idempotent; the same record twice increments twice.
	agg := NewAggregator(DefaultConfig())
	rec, res := scored("t1", 0.85, 150000)

	agg.RecordTransaction(rec, res)
	agg.RecordTransaction(rec, res)

	snap := agg.Snapshot()
	assert.Equal(t, int64(2), snap.TotalTransactions)
	assert.Equal(t, int64(2), snap.HighRiskCount)
	assert.Equal(t, int64(2), snap.AlertsGenerated)
	assert.Len(t, agg.RecentHighRisk(10), 2)
}

func TestAggregator_HighRiskScenario(t *testing.T) {
	agg := NewAggregator(DefaultConfig())
	rec, res := scored("t1", 0.85, 150000)

	agg.RecordTransaction(rec, res)

	snap := agg.Snapshot()
	assert.Equal(t, int64(1), snap.TotalTransactions)
	assert.Equal(t, int64(1), snap.HighRiskCount)
	assert.Equal(t, int64(1), snap.PendingReviews)
	assert.Equal(t, int64(1), snap.AlertsGenerated)
	require.NotNil(t, snap.LastAlertTime)

	alerts := agg.RecentAlerts(time.Hour)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertTypeHighRiskTransaction, alerts[0].Type)
	assert.Equal(t, SeverityHigh, alerts[0].Severity)
	assert.Contains(t, alerts[0].Message, "t1")
	assert.Equal(t, 0.85, alerts[0].RiskScore)
	assert.Equal(t, "a", alerts[0].Sender)
	assert.Equal(t, "b", alerts[0].Receiver)

	high := agg.RecentHighRisk(100)
	require.Len(t, high, 1)
	assert.Equal(t, "t1", high[0].TransactionID)
	assert.Equal(t, scoring.LevelHigh, high[0].RiskLevel)
}

func TestAggregator_ExactThresholdRaisesNoAlert(t *testing.T) {
	// Level HIGH starts at 0.8 but alerts need strictly greater.
	agg := NewAggregator(DefaultConfig())
	rec, res := scored("t1", 0.8, 100)

	agg.RecordTransaction(rec, res)

	snap := agg.Snapshot()
	assert.Equal(t, int64(1), snap.HighRiskCount)
	assert.Equal(t, int64(0), snap.AlertsGenerated)
	assert.Len(t, agg.RecentHighRisk(10), 1)
	assert.Nil(t, snap.LastAlertTime)
}

func TestAggregator_MinimalScenario(t *testing.T) {
	agg := NewAggregator(DefaultConfig())
	rec, res := scored("t1", 0.1, 500)

	agg.RecordTransaction(rec, res)

	snap := agg.Snapshot()
	assert.Equal(t, int64(1), snap.MinimalRiskCount)
	assert.Equal(t, int64(0), snap.PendingReviews)
	assert.Equal(t, int64(0), snap.AlertsGenerated)
	assert.Empty(t, agg.RecentAlerts(time.Hour))
	assert.Empty(t, agg.RecentHighRisk(10))
}

func TestAggregator_RecentAlertsWindow(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	current := now
	agg := NewAggregator(DefaultConfig()).WithClock(func() time.Time { return current })

	rec, res := scored("old", 0.9, 100)
	agg.RecordTransaction(rec, res)

	current = now.Add(3 * time.Hour)
	rec, res = scored("recent", 0.9, 100)
	agg.RecordTransaction(rec, res)

	current = now.Add(4 * time.Hour)

	within := agg.RecentAlerts(2 * time.Hour)
	require.Len(t, within, 1)
	assert.Contains(t, within[0].Message, "recent")

	all := agg.RecentAlerts(24 * time.Hour)
	assert.Len(t, all, 2)
}

func TestAggregator_RecentHighRiskLimitAndOrder(t *testing.T) {
	agg := NewAggregator(DefaultConfig())
	for i := 0; i < 5; i++ {
		rec, res := scored(fmt.Sprintf("t%d", i), 0.9, 100)
		agg.RecordTransaction(rec, res)
	}

	// Capped at limit from the start of the buffer, insertion order.
	capped := agg.RecentHighRisk(3)
	require.Len(t, capped, 3)
	assert.Equal(t, "t0", capped[0].TransactionID)
	assert.Equal(t, "t2", capped[2].TransactionID)

	assert.Len(t, agg.RecentHighRisk(100), 5)
	assert.Empty(t, agg.RecentHighRisk(0))
}

func TestAggregator_RetentionEvictsOldest(t *testing.T) {
	agg := NewAggregator(Config{MaxAlerts: 3, MaxHighRisk: 2})
	for i := 0; i < 5; i++ {
		rec, res := scored(fmt.Sprintf("t%d", i), 0.9, 100)
		agg.RecordTransaction(rec, res)
	}

	high := agg.RecentHighRisk(100)
	require.Len(t, high, 2)
	assert.Equal(t, "t3", high[0].TransactionID)
	assert.Equal(t, "t4", high[1].TransactionID)

	alerts := agg.RecentAlerts(24 * time.Hour)
	require.Len(t, alerts, 3)
	assert.Contains(t, alerts[0].Message, "t2")

	// Eviction never touches the counters.
	snap := agg.Snapshot()
	assert.Equal(t, int64(5), snap.AlertsGenerated)
	assert.Equal(t, int64(5), snap.HighRiskCount)
}

func TestAggregator_UptimeRecomputed(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	current := now
	agg := NewAggregator(DefaultConfig()).WithClock(func() time.Time { return current })

	current = now.Add(90 * time.Second)
	assert.InDelta(t, 90.0, agg.Snapshot().UptimeSeconds, 1e-9)

	current = now.Add(10 * time.Minute)
	assert.InDelta(t, 600.0, agg.Snapshot().UptimeSeconds, 1e-9)
}

func TestAggregator_ConcurrentRecording(t *testing.T) {
	agg := NewAggregator(DefaultConfig())

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			p := float64(i%100) / 100.0
			rec, res := scored(fmt.Sprintf("t%d", i), p, 100)
			agg.RecordTransaction(rec, res)
		}(i)
	}
	wg.Wait()

	snap := agg.Snapshot()
	assert.Equal(t, int64(n), snap.TotalTransactions)
	sum := snap.HighRiskCount + snap.MediumRiskCount + snap.LowRiskCount + snap.MinimalRiskCount
	assert.Equal(t, int64(n), sum)
}

func TestAggregator_StreamGating(t *testing.T) {
	agg := NewAggregator(DefaultConfig())
	sub := agg.Subscribe()
	defer agg.Unsubscribe(sub)

	// Disarmed: alerts are recorded but not pushed.
	rec, res := scored("quiet", 0.9, 100)
	agg.RecordTransaction(rec, res)
	select {
	case <-sub.Alerts():
		t.Fatal("received alert while streaming disarmed")
	default:
	}

	agg.StartStreaming()
	rec, res = scored("loud", 0.9, 100)
	agg.RecordTransaction(rec, res)

	select {
	case alert := <-sub.Alerts():
		assert.Contains(t, alert.Message, "loud")
	case <-time.After(time.Second):
		t.Fatal("expected pushed alert")
	}

	assert.Equal(t, int64(2), agg.Snapshot().AlertsGenerated)
}
