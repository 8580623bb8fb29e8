package scoring

import (
	"context"
	"time"

	risk "github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/scoring"
)

// Scorer is the port every risk model implementation satisfies. Score takes
// the positional feature layout and returns a probability in [0,1]. Ready
// reports whether a model is loaded; the pipeline refuses to score while it
// is false. Implementations must honor ctx cancellation.
type Scorer interface {
	Score(ctx context.Context, features [risk.FeatureCount]float64) (float64, error)
	Ready() bool
	Info() ModelInfo
}

// ModelInfo describes the loaded model for the model-info endpoint.
type ModelInfo struct {
	Name         string             `json:"name"`
	Version      string             `json:"version"`
	Threshold    float64            `json:"threshold"`
	FeaturesUsed []string           `json:"features_used"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
	LoadedAt     time.Time          `json:"loaded_at"`
}
