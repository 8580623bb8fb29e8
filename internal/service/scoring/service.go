package scoring

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/errors"
	risk "github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/scoring"
	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/transaction"
	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/service/monitoring"
)

// DefaultScoreTimeout bounds a single model invocation when no explicit
// timeout is configured.
const DefaultScoreTimeout = 5 * time.Second

// Pipeline runs a raw transaction through validation, feature encoding, the
// scoring model, classification and flag evaluation, then folds the outcome
// into the monitoring aggregator. The model call always completes before the
// aggregator lock is taken.
type Pipeline struct {
	scorer     Scorer
	aggregator *monitoring.Aggregator
	timeout    time.Duration
	clock      func() time.Time
	logger     *slog.Logger
}

// NewPipeline wires a pipeline. A non-positive scoreTimeout falls back to
// DefaultScoreTimeout; a nil logger falls back to slog.Default.
func NewPipeline(scorer Scorer, aggregator *monitoring.Aggregator, scoreTimeout time.Duration, logger *slog.Logger) *Pipeline {
	if scoreTimeout <= 0 {
		scoreTimeout = DefaultScoreTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		scorer:     scorer,
		aggregator: aggregator,
		timeout:    scoreTimeout,
		clock:      time.Now,
		logger:     logger,
	}
}

// WithClock replaces the time source, for tests.
func (p *Pipeline) WithClock(clock func() time.Time) *Pipeline {
	p.clock = clock
	return p
}

// Process scores one transaction end to end. Validation failures return an
// InvalidRecord error before any model work. On success the result has been
// recorded with the aggregator.
func (p *Pipeline) Process(ctx context.Context, rec transaction.Record) (*risk.Result, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	rec = rec.WithDefaults(p.clock())

	features, err := risk.Encode(rec)
	if err != nil {
		return nil, err
	}

	probability, err := p.score(ctx, features.Vector())
	if err != nil {
		return nil, err
	}

	flags := EvaluateFlags(rec, probability)
	result := risk.NewResult(rec.ID, probability, flags, rec.Amount, rec.SenderID, rec.ReceiverID, p.clock())
	p.aggregator.RecordTransaction(rec, result)
	return result, nil
}

// score invokes the model under the configured timeout and normalizes every
// failure into the scoring error taxonomy. A failure on a well-formed vector
// is never reported as a validation error.
func (p *Pipeline) score(ctx context.Context, features [risk.FeatureCount]float64) (float64, error) {
	if !p.scorer.Ready() {
		return 0, errors.NewScoringUnavailableError()
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	probability, err := p.scorer.Score(ctx, features)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return 0, errors.NewScoringTimeoutError(fmt.Sprintf("model did not answer within %s", p.timeout)).WithCause(err)
		}
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return 0, err
		}
		return 0, errors.NewScoringError("model scoring failed").WithCause(err)
	}
	if math.IsNaN(probability) || probability < 0 || probability > 1 {
		return 0, errors.NewScoringError(fmt.Sprintf("model produced out-of-range probability %v", probability))
	}
	return probability, nil
}

// BatchOutcome is the per-item result of a batch: exactly one of Result and
// Err is set. Index is the item's position in the submitted batch.
type BatchOutcome struct {
	Index         int
	TransactionID string
	Result        *risk.Result
	Err           error
}

// BatchResult aggregates a batch run. Outcomes preserve submission order.
type BatchResult struct {
	Outcomes   []BatchOutcome
	Successful int
	Failed     int
}

// ProcessBatch scores every record independently. One item's failure never
// affects the others and never aborts the batch.
func (p *Pipeline) ProcessBatch(ctx context.Context, recs []transaction.Record) *BatchResult {
	batch := &BatchResult{Outcomes: make([]BatchOutcome, 0, len(recs))}
	for i, rec := range recs {
		result, err := p.Process(ctx, rec)
		if err != nil {
			p.logger.WarnContext(ctx, "batch item failed",
				slog.Int("index", i),
				slog.String("transaction_id", rec.ID),
				slog.String("error", err.Error()),
			)
			batch.Failed++
			batch.Outcomes = append(batch.Outcomes, BatchOutcome{Index: i, TransactionID: rec.ID, Err: err})
			continue
		}
		batch.Successful++
		batch.Outcomes = append(batch.Outcomes, BatchOutcome{Index: i, TransactionID: rec.ID, Result: result})
	}
	return batch
}
