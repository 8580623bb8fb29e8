package scoring

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/errors"
	risk "github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/scoring"
	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/transaction"
	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/service/monitoring"
	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/testutil/fixtures"
)

type mockScorer struct {
	mock.Mock
}

func (m *mockScorer) Score(ctx context.Context, features [risk.FeatureCount]float64) (float64, error) {
	args := m.Called(ctx, features)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockScorer) Ready() bool {
	return m.Called().Bool(0)
}

func (m *mockScorer) Info() ModelInfo {
	return m.Called().Get(0).(ModelInfo)
}

func newTestPipeline(t *testing.T, scorer Scorer) (*Pipeline, *monitoring.Aggregator) {
	t.Helper()
	agg := monitoring.NewAggregator(monitoring.DefaultConfig())
	return NewPipeline(scorer, agg, time.Second, nil), agg
}

func record(t *testing.T, id string, amount int64) transaction.Record {
	t.Helper()
	return fixtures.NewRecordBuilder(t).
		WithID(id).
		WithAmount(float64(amount)).
		WithParties("a", "b").
		WithType("transfer").
		Build()
}

func TestPipeline_Process_HighRisk(t *testing.T) {
	scorer := new(mockScorer)
	scorer.On("Ready").Return(true)
	scorer.On("Score", mock.Anything, mock.Anything).Return(0.85, nil)
	pipeline, agg := newTestPipeline(t, scorer)

	rec := fixtures.LargeAmountRecord(t)
	result, err := pipeline.Process(context.Background(), rec)

	require.NoError(t, err)
	assert.Equal(t, rec.ID, result.TransactionID)
	assert.Equal(t, 0.85, result.RiskScore)
	assert.Equal(t, risk.LevelHigh, result.RiskLevel)
	assert.Equal(t, risk.StatusPending, result.ComplianceStatus)
	assert.True(t, result.RequiresReview)
	assert.Equal(t, []string{FlagLargeAmount, FlagHighRiskScore, FlagSuspiciousPattern}, result.FlaggedFeatures)
	assert.InDelta(t, 0.7, result.Confidence, 1e-9)

	snap := agg.Snapshot()
	assert.Equal(t, int64(1), snap.TotalTransactions)
	assert.Equal(t, int64(1), snap.HighRiskCount)
	assert.Equal(t, int64(1), snap.AlertsGenerated)
	require.Len(t, agg.RecentAlerts(time.Hour), 1)
}

func TestPipeline_Process_Minimal(t *testing.T) {
	scorer := new(mockScorer)
	scorer.On("Ready").Return(true)
	scorer.On("Score", mock.Anything, mock.Anything).Return(0.1, nil)
	pipeline, agg := newTestPipeline(t, scorer)

	result, err := pipeline.Process(context.Background(), fixtures.RoutineRecord(t))

	require.NoError(t, err)
	assert.Equal(t, risk.LevelMinimal, result.RiskLevel)
	assert.Equal(t, risk.StatusApproved, result.ComplianceStatus)
	assert.False(t, result.RequiresReview)
	assert.Equal(t, []string{}, result.FlaggedFeatures)

	snap := agg.Snapshot()
	assert.Equal(t, int64(1), snap.MinimalRiskCount)
	assert.Equal(t, int64(0), snap.AlertsGenerated)
}

func TestPipeline_Process_InvalidRecordSkipsScoring(t *testing.T) {
	scorer := new(mockScorer)
	pipeline, agg := newTestPipeline(t, scorer)

	rec := record(t, "t1", 100)
	rec.SenderID = ""

	result, err := pipeline.Process(context.Background(), rec)

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsCode(err, "INVALID_RECORD"))
	assert.Contains(t, err.Error(), "sender_id")
	assert.Equal(t, int64(0), agg.Snapshot().TotalTransactions)
	scorer.AssertNotCalled(t, "Score", mock.Anything, mock.Anything)
}

func TestPipeline_Process_ScorerNotReady(t *testing.T) {
	scorer := new(mockScorer)
	scorer.On("Ready").Return(false)
	pipeline, agg := newTestPipeline(t, scorer)

	_, err := pipeline.Process(context.Background(), record(t, "t1", 100))

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, "SCORING_UNAVAILABLE"))
	assert.True(t, errors.IsRetryable(err))
	assert.Equal(t, 503, errors.GetStatusCode(err))
	assert.Equal(t, int64(0), agg.Snapshot().TotalTransactions)
}

func TestPipeline_Process_ModelFailureIsNotValidation(t *testing.T) {
	scorer := new(mockScorer)
	scorer.On("Ready").Return(true)
	scorer.On("Score", mock.Anything, mock.Anything).Return(0.0, fmt.Errorf("matrix shape mismatch"))
	pipeline, agg := newTestPipeline(t, scorer)

	_, err := pipeline.Process(context.Background(), record(t, "t1", 100))

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, "SCORING_ERROR"))
	assert.False(t, errors.IsCode(err, "INVALID_RECORD"))
	assert.False(t, errors.IsRetryable(err))
	assert.Equal(t, int64(0), agg.Snapshot().TotalTransactions)
}

func TestPipeline_Process_Timeout(t *testing.T) {
	scorer := new(mockScorer)
	scorer.On("Ready").Return(true)
	scorer.On("Score", mock.Anything, mock.Anything).Return(0.0, context.DeadlineExceeded)
	pipeline, _ := newTestPipeline(t, scorer)

	_, err := pipeline.Process(context.Background(), record(t, "t1", 100))

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, "SCORING_TIMEOUT"))
	assert.True(t, errors.IsRetryable(err))
	assert.Equal(t, 504, errors.GetStatusCode(err))
}

func TestPipeline_Process_OutOfRangeProbability(t *testing.T) {
	scorer := new(mockScorer)
	scorer.On("Ready").Return(true)
	scorer.On("Score", mock.Anything, mock.Anything).Return(1.5, nil)
	pipeline, _ := newTestPipeline(t, scorer)

	_, err := pipeline.Process(context.Background(), record(t, "t1", 100))

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, "SCORING_ERROR"))
}

func TestPipeline_Process_DefaultsTimestampBeforeEncoding(t *testing.T) {
	// Saturday 23:00, so the encoded vector must carry both night and
	// weekend markers when the record omits its timestamp.
	ingestion := time.Date(2024, time.March, 16, 23, 0, 0, 0, time.UTC)

	var got [risk.FeatureCount]float64
	scorer := new(mockScorer)
	scorer.On("Ready").Return(true)
	scorer.On("Score", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		got = args.Get(1).([risk.FeatureCount]float64)
	}).Return(0.2, nil)

	pipeline, _ := newTestPipeline(t, scorer)
	pipeline.WithClock(func() time.Time { return ingestion })

	rec := fixtures.NewRecordBuilder(t).WithID("t1").WithAmount(100).WithoutOptionalFields().Build()
	_, err := pipeline.Process(context.Background(), rec)

	require.NoError(t, err)
	assert.Equal(t, 1.0, got[14], "Is_weekend")
	assert.Equal(t, 1.0, got[16], "Is_night")
}

func TestPipeline_ProcessBatch_IsolatesFailures(t *testing.T) {
	scorer := new(mockScorer)
	scorer.On("Ready").Return(true)
	scorer.On("Score", mock.Anything, mock.Anything).Return(0.3, nil)
	pipeline, agg := newTestPipeline(t, scorer)

	bad := record(t, "t2", 100)
	bad.ReceiverID = ""
	recs := []transaction.Record{record(t, "t1", 100), bad, record(t, "t3", 100)}

	batch := pipeline.ProcessBatch(context.Background(), recs)

	require.Len(t, batch.Outcomes, 3)
	assert.Equal(t, 2, batch.Successful)
	assert.Equal(t, 1, batch.Failed)

	assert.Equal(t, "t1", batch.Outcomes[0].TransactionID)
	require.NotNil(t, batch.Outcomes[0].Result)
	assert.NoError(t, batch.Outcomes[0].Err)

	assert.Equal(t, 1, batch.Outcomes[1].Index)
	assert.Nil(t, batch.Outcomes[1].Result)
	assert.True(t, errors.IsCode(batch.Outcomes[1].Err, "INVALID_RECORD"))

	require.NotNil(t, batch.Outcomes[2].Result)

	assert.Equal(t, int64(2), agg.Snapshot().TotalTransactions)
}

func TestPipeline_ProcessBatch_Empty(t *testing.T) {
	scorer := new(mockScorer)
	pipeline, _ := newTestPipeline(t, scorer)

	batch := pipeline.ProcessBatch(context.Background(), nil)

	assert.Empty(t, batch.Outcomes)
	assert.Equal(t, 0, batch.Successful)
	assert.Equal(t, 0, batch.Failed)
}

func TestPipeline_Process_Concurrent(t *testing.T) {
	scorer := new(mockScorer)
	scorer.On("Ready").Return(true)
	scorer.On("Score", mock.Anything, mock.Anything).Return(0.4, nil)
	pipeline, agg := newTestPipeline(t, scorer)

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := pipeline.Process(context.Background(), record(t, fmt.Sprintf("t%d", i), 100))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(n), agg.Snapshot().TotalTransactions)
}
