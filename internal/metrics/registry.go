package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Registry holds all domain-specific metrics for the application
type Registry struct {
	meter metric.Meter

	// Scoring Metrics
	ScoringDuration       metric.Float64Histogram
	TransactionsPerSecond metric.Float64ObservableGauge
	ScoringSuccessCounter metric.Int64Counter
	ScoringFailureCounter metric.Int64Counter
	RiskLevelCounter      metric.Int64Counter
	TransactionAmount     metric.Float64Histogram

	// Monitoring Metrics
	AlertCounter         metric.Int64Counter
	PendingReviewCounter metric.Int64Counter
	StreamSubscribers    metric.Int64ObservableGauge
	BatchSize            metric.Int64Histogram

	// System Metrics
	APIRequestDuration metric.Float64Histogram
	APIRequestCounter  metric.Int64Counter

	// State for observable metrics
	mu                    sync.RWMutex
	streamSubscribers     int64
	transactionsProcessed int64
	lastTransactionCount  int64
	lastTransactionTime   time.Time
}

// NewRegistry creates a new metrics registry with all domain metrics
func NewRegistry(meterName string) (*Registry, error) {
	meter := otel.Meter(meterName)
	r := &Registry{
		meter:               meter,
		lastTransactionTime: time.Now(),
	}

	if err := r.initScoringMetrics(); err != nil {
		return nil, err
	}

	if err := r.initMonitoringMetrics(); err != nil {
		return nil, err
	}

	if err := r.initSystemMetrics(); err != nil {
		return nil, err
	}

	return r, nil
}

// initScoringMetrics initializes scoring domain metrics
func (r *Registry) initScoringMetrics() error {
	var err error

	// Scoring duration histogram
	r.ScoringDuration, err = r.meter.Float64Histogram(
		"acrs.scoring.duration",
		metric.WithDescription("End-to-end scoring duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50, 100, 500),
	)
	if err != nil {
		return err
	}

	// Transactions per second gauge
	r.TransactionsPerSecond, err = r.meter.Float64ObservableGauge(
		"acrs.scoring.throughput_per_second",
		metric.WithDescription("Current transaction scoring throughput per second"),
		metric.WithFloat64Callback(func(ctx context.Context, o metric.Float64Observer) error {
			// The callback resets the rate window, so it takes the write lock.
			r.mu.Lock()
			defer r.mu.Unlock()

			now := time.Now()
			elapsed := now.Sub(r.lastTransactionTime).Seconds()
			if elapsed > 0 {
				rate := float64(r.transactionsProcessed-r.lastTransactionCount) / elapsed
				o.Observe(rate)
				r.lastTransactionCount = r.transactionsProcessed
				r.lastTransactionTime = now
			}
			return nil
		}),
	)
	if err != nil {
		return err
	}

	// Scoring outcome counters
	r.ScoringSuccessCounter, err = r.meter.Int64Counter(
		"acrs.scoring.success_total",
		metric.WithDescription("Total number of successfully scored transactions"),
	)
	if err != nil {
		return err
	}

	r.ScoringFailureCounter, err = r.meter.Int64Counter(
		"acrs.scoring.failure_total",
		metric.WithDescription("Total number of scoring failures"),
	)
	if err != nil {
		return err
	}

	// Risk level counter, labeled by level
	r.RiskLevelCounter, err = r.meter.Int64Counter(
		"acrs.scoring.risk_level_total",
		metric.WithDescription("Scored transactions by assigned risk level"),
	)
	if err != nil {
		return err
	}

	// Transaction amount histogram
	r.TransactionAmount, err = r.meter.Float64Histogram(
		"acrs.scoring.transaction_amount",
		metric.WithDescription("Scored transaction amounts in USD"),
		metric.WithUnit("USD"),
		metric.WithExplicitBucketBoundaries(10, 100, 1000, 10000, 50000, 100000, 1000000),
	)

	return err
}

// initMonitoringMetrics initializes monitoring domain metrics
func (r *Registry) initMonitoringMetrics() error {
	var err error

	r.AlertCounter, err = r.meter.Int64Counter(
		"acrs.monitoring.alert_total",
		metric.WithDescription("Total high-risk alerts generated"),
	)
	if err != nil {
		return err
	}

	r.PendingReviewCounter, err = r.meter.Int64Counter(
		"acrs.monitoring.pending_review_total",
		metric.WithDescription("Total transactions marked for compliance review"),
	)
	if err != nil {
		return err
	}

	// Live alert stream subscribers
	r.StreamSubscribers, err = r.meter.Int64ObservableGauge(
		"acrs.monitoring.stream_subscribers",
		metric.WithDescription("Current number of live alert stream subscribers"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			r.mu.RLock()
			defer r.mu.RUnlock()
			o.Observe(r.streamSubscribers)
			return nil
		}),
	)
	if err != nil {
		return err
	}

	// Batch size histogram
	r.BatchSize, err = r.meter.Int64Histogram(
		"acrs.scoring.batch_size",
		metric.WithDescription("Number of records per bulk scoring request"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 50, 100, 500, 1000),
	)

	return err
}

// initSystemMetrics initializes system-level metrics
func (r *Registry) initSystemMetrics() error {
	var err error

	// API request duration
	r.APIRequestDuration, err = r.meter.Float64Histogram(
		"acrs.api.request_duration",
		metric.WithDescription("API request duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 50, 100, 500, 1000, 5000),
	)
	if err != nil {
		return err
	}

	// API request counter
	r.APIRequestCounter, err = r.meter.Int64Counter(
		"acrs.api.request_total",
		metric.WithDescription("Total number of API requests"),
	)

	return err
}

// Helper methods for updating observable metric values

// UpdateStreamSubscribers updates the live subscriber count
func (r *Registry) UpdateStreamSubscribers(delta int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.streamSubscribers += delta
}

// IncrementTransactionsProcessed increments the throughput counter
func (r *Registry) IncrementTransactionsProcessed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactionsProcessed++
}

// Helper methods for recording metrics with common attribute patterns

// RecordScoring records the outcome of one scored transaction
func (r *Registry) RecordScoring(ctx context.Context, durationMS float64, riskLevel string, amount float64, success bool) {
	attrs := []attribute.KeyValue{
		attribute.Bool("success", success),
	}

	r.ScoringDuration.Record(ctx, durationMS, metric.WithAttributes(attrs...))

	if success {
		r.ScoringSuccessCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
		r.RiskLevelCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("risk_level", riskLevel)))
		r.TransactionAmount.Record(ctx, amount)
	} else {
		r.ScoringFailureCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	r.IncrementTransactionsProcessed()
}

// RecordPendingReview records a transaction flagged for compliance review
func (r *Registry) RecordPendingReview(ctx context.Context, riskLevel string) {
	r.PendingReviewCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("risk_level", riskLevel)))
}

// RecordAlert records a generated high-risk alert
func (r *Registry) RecordAlert(ctx context.Context, severity string) {
	r.AlertCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("severity", severity)))
}

// RecordBatch records the size of a bulk scoring request
func (r *Registry) RecordBatch(ctx context.Context, size, successful int) {
	r.BatchSize.Record(ctx, int64(size), metric.WithAttributes(attribute.Int("successful", successful)))
}

// RecordAPIRequest records API request metrics
func (r *Registry) RecordAPIRequest(ctx context.Context, duration float64, method, path string, statusCode int) {
	attrs := []attribute.KeyValue{
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status_code", statusCode),
	}

	r.APIRequestDuration.Record(ctx, duration, metric.WithAttributes(attrs...))
	r.APIRequestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
}
