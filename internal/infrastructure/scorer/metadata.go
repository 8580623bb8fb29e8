package scorer

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/errors"
	risk "github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/scoring"
)

// Metadata is the exported model artifact: a logistic model with optional
// per-feature standardization, plus the training provenance served by the
// model-info endpoint. FeaturesUsed pins the positional layout the weights
// were trained against.
type Metadata struct {
	ModelName    string             `json:"model_name"`
	Version      string             `json:"version"`
	TrainedAt    time.Time          `json:"trained_at"`
	Threshold    float64            `json:"threshold"`
	FeaturesUsed []string           `json:"features_used"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
	Coefficients []float64          `json:"coefficients"`
	Intercept    float64            `json:"intercept"`
	FeatureMeans []float64          `json:"feature_means,omitempty"`
	FeatureStds  []float64          `json:"feature_stds,omitempty"`
}

// LoadMetadata reads and validates a model artifact from disk.
func LoadMetadata(path string) (*Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("read model metadata %s", path))
	}

	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("parse model metadata %s", path))
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Validate checks the artifact against the feature contract. The feature
// list must match the encoder's layout exactly, name for name and position
// for position.
func (m *Metadata) Validate() error {
	if m.ModelName == "" {
		return errors.NewValidationError("INVALID_MODEL", "model_name is required")
	}
	if len(m.FeaturesUsed) != risk.FeatureCount {
		return errors.NewValidationError("INVALID_MODEL",
			fmt.Sprintf("model uses %d features, encoder produces %d", len(m.FeaturesUsed), risk.FeatureCount))
	}
	for i, name := range m.FeaturesUsed {
		if name != risk.FeatureNames[i] {
			return errors.NewValidationError("INVALID_MODEL",
				fmt.Sprintf("feature %d is %q, encoder produces %q", i, name, risk.FeatureNames[i]))
		}
	}
	if len(m.Coefficients) != risk.FeatureCount {
		return errors.NewValidationError("INVALID_MODEL",
			fmt.Sprintf("model carries %d coefficients for %d features", len(m.Coefficients), risk.FeatureCount))
	}
	if m.Threshold < 0 || m.Threshold > 1 {
		return errors.NewValidationError("INVALID_MODEL",
			fmt.Sprintf("decision threshold %v outside [0,1]", m.Threshold))
	}
	if len(m.FeatureMeans) != 0 && len(m.FeatureMeans) != risk.FeatureCount {
		return errors.NewValidationError("INVALID_MODEL", "feature_means length does not match the feature count")
	}
	if len(m.FeatureStds) != 0 {
		if len(m.FeatureStds) != risk.FeatureCount {
			return errors.NewValidationError("INVALID_MODEL", "feature_stds length does not match the feature count")
		}
		for i, std := range m.FeatureStds {
			if std <= 0 {
				return errors.NewValidationError("INVALID_MODEL",
					fmt.Sprintf("feature_stds[%d] must be positive", i))
			}
		}
	}
	return nil
}
