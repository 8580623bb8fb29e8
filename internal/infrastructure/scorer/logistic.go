package scorer

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/errors"
	risk "github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/scoring"
	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/service/scoring"
)

// Logistic scores feature vectors with a logistic model loaded from a
// Metadata artifact. Scoring is read-only once loaded; Reload swaps the
// whole artifact atomically so in-flight scores always see one consistent
// model.
type Logistic struct {
	mu       sync.RWMutex
	meta     *Metadata
	loadedAt time.Time
}

// NewLogistic returns an unloaded scorer. Ready reports false until a model
// is loaded; the pipeline maps that to a scoring-unavailable error.
func NewLogistic() *Logistic {
	return &Logistic{}
}

// Load builds a scorer from the artifact at path.
func Load(path string) (*Logistic, error) {
	s := NewLogistic()
	if err := s.Reload(path); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the current model with the artifact at path. On failure
// the previous model keeps serving.
func (s *Logistic) Reload(path string) error {
	meta, err := LoadMetadata(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.meta = meta
	s.loadedAt = time.Now()
	s.mu.Unlock()
	return nil
}

// Ready reports whether a model is loaded.
func (s *Logistic) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta != nil
}

// Info describes the loaded model. Zero value when no model is loaded.
func (s *Logistic) Info() scoring.ModelInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.meta == nil {
		return scoring.ModelInfo{}
	}
	return scoring.ModelInfo{
		Name:         s.meta.ModelName,
		Version:      s.meta.Version,
		Threshold:    s.meta.Threshold,
		FeaturesUsed: append([]string(nil), s.meta.FeaturesUsed...),
		Metrics:      s.meta.Metrics,
		LoadedAt:     s.loadedAt,
	}
}

// Score computes sigmoid(intercept + w·x) over the standardized vector.
func (s *Logistic) Score(ctx context.Context, features [risk.FeatureCount]float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	meta := s.meta
	s.mu.RUnlock()

	if meta == nil {
		return 0, errors.NewScoringUnavailableError()
	}

	z := meta.Intercept
	for i, x := range features {
		if len(meta.FeatureMeans) == risk.FeatureCount {
			x -= meta.FeatureMeans[i]
		}
		if len(meta.FeatureStds) == risk.FeatureCount {
			x /= meta.FeatureStds[i]
		}
		z += meta.Coefficients[i] * x
	}

	p := sigmoid(z)
	if math.IsNaN(p) {
		return 0, errors.NewScoringError("model produced NaN probability")
	}
	return p, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
