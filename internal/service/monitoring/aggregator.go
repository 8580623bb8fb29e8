package monitoring

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/scoring"
	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/transaction"
)

// Aggregator is the only stateful component of the scoring pipeline. All
// counters and both history buffers are guarded by a single mutex; every
// mutation belonging to one transaction is applied inside one critical
// section, so readers never observe a partially recorded transaction.
//
// Construct one per process and inject it; isolated instances keep tests
// independent.
type Aggregator struct {
	cfg   Config
	clock func() time.Time

	mu                sync.Mutex
	totalTransactions int64
	highRiskCount     int64
	mediumRiskCount   int64
	lowRiskCount      int64
	minimalRiskCount  int64
	pendingReviews    int64
	alertsGenerated   int64
	lastAlert         time.Time
	alerts            []Alert
	highRisk          []HighRiskTransaction
	startTime         time.Time

	subMu       sync.Mutex
	subscribers map[*Subscriber]struct{}
	streaming   bool
}

// NewAggregator creates an aggregator with the given retention bounds.
func NewAggregator(cfg Config) *Aggregator {
	if cfg.MaxAlerts <= 0 {
		cfg.MaxAlerts = DefaultConfig().MaxAlerts
	}
	if cfg.MaxHighRisk <= 0 {
		cfg.MaxHighRisk = DefaultConfig().MaxHighRisk
	}
	return &Aggregator{
		cfg:         cfg,
		clock:       time.Now,
		startTime:   time.Now(),
		subscribers: make(map[*Subscriber]struct{}),
	}
}

// WithClock replaces the time source, for tests.
func (a *Aggregator) WithClock(clock func() time.Time) *Aggregator {
	a.clock = clock
	a.mu.Lock()
	a.startTime = clock()
	a.mu.Unlock()
	return a
}

// RecordTransaction folds one scored transaction into the running statistics.
// Counter increments, the review counter, the high-risk history append and
// the alert append happen atomically with respect to Snapshot and the read
// queries. The scoring call itself must complete before entering here; no
// scoring work ever runs under this lock.
func (a *Aggregator) RecordTransaction(rec transaction.Record, res *scoring.Result) {
	now := a.clock()
	var raised *Alert

	a.mu.Lock()
	a.totalTransactions++
	switch res.RiskLevel {
	case scoring.LevelHigh:
		a.highRiskCount++
	case scoring.LevelMedium:
		a.mediumRiskCount++
	case scoring.LevelLow:
		a.lowRiskCount++
	default:
		a.minimalRiskCount++
	}

	if res.RequiresReview {
		a.pendingReviews++
	}

	if res.RiskLevel == scoring.LevelHigh {
		a.highRisk = append(a.highRisk, HighRiskTransaction{
			TransactionID: res.TransactionID,
			RiskScore:     res.RiskScore,
			RiskLevel:     res.RiskLevel,
			Amount:        rec.Amount,
			SenderID:      rec.SenderID,
			ReceiverID:    rec.ReceiverID,
			RecordedAt:    now,
		})
		if len(a.highRisk) > a.cfg.MaxHighRisk {
			a.highRisk = a.highRisk[len(a.highRisk)-a.cfg.MaxHighRisk:]
		}
	}

	if res.RiskScore > AlertScoreThreshold {
		alert := Alert{
			ID:        uuid.New(),
			Type:      AlertTypeHighRiskTransaction,
			Severity:  SeverityHigh,
			Message:   fmt.Sprintf("High risk transaction detected: %s", res.TransactionID),
			RiskScore: res.RiskScore,
			Amount:    rec.Amount,
			Sender:    rec.SenderID,
			Receiver:  rec.ReceiverID,
			CreatedAt: now,
		}
		a.alerts = append(a.alerts, alert)
		if len(a.alerts) > a.cfg.MaxAlerts {
			a.alerts = a.alerts[len(a.alerts)-a.cfg.MaxAlerts:]
		}
		a.alertsGenerated++
		a.lastAlert = now
		raised = &alert
	}
	a.mu.Unlock()

	// Fan-out happens outside the critical section; a slow websocket
	// consumer must not stall transaction recording.
	if raised != nil {
		a.publish(*raised)
	}
}

// Snapshot returns a consistent copy of all counters. Uptime is recomputed
// from the start time on every call, never stored.
func (a *Aggregator) Snapshot() Snapshot {
	now := a.clock()

	a.mu.Lock()
	defer a.mu.Unlock()

	uptime := now.Sub(a.startTime).Seconds()
	rate := 0.0
	if uptime > 0 {
		rate = float64(a.totalTransactions) / uptime
	}

	snap := Snapshot{
		TotalTransactions: a.totalTransactions,
		HighRiskCount:     a.highRiskCount,
		MediumRiskCount:   a.mediumRiskCount,
		LowRiskCount:      a.lowRiskCount,
		MinimalRiskCount:  a.minimalRiskCount,
		PendingReviews:    a.pendingReviews,
		AlertsGenerated:   a.alertsGenerated,
		ProcessingRate:    rate,
		UptimeSeconds:     uptime,
	}
	if !a.lastAlert.IsZero() {
		t := a.lastAlert
		snap.LastAlertTime = &t
	}
	return snap
}

// RecentAlerts returns alerts created within the window before now, oldest
// first. Linear scan over the retained buffer; never mutates or reorders it.
func (a *Aggregator) RecentAlerts(window time.Duration) []Alert {
	cutoff := a.clock().Add(-window)

	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Alert, 0, len(a.alerts))
	for _, alert := range a.alerts {
		if alert.CreatedAt.After(cutoff) {
			out = append(out, alert)
		}
	}
	return out
}

// RecentHighRisk returns up to limit entries from the start of the retained
// high-risk buffer, in insertion order. Callers wanting most-recent-first
// reverse client-side.
func (a *Aggregator) RecentHighRisk(limit int) []HighRiskTransaction {
	a.mu.Lock()
	defer a.mu.Unlock()

	if limit < 0 {
		limit = 0
	}
	if limit > len(a.highRisk) {
		limit = len(a.highRisk)
	}
	out := make([]HighRiskTransaction, limit)
	copy(out, a.highRisk[:limit])
	return out
}

// StartTime returns when this aggregator began observing.
func (a *Aggregator) StartTime() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.startTime
}
