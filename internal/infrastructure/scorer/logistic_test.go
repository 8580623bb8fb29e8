package scorer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/errors"
	risk "github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/scoring"
)

func validMetadata() Metadata {
	coefs := make([]float64, risk.FeatureCount)
	coefs[0] = 0.00001 // Amount
	coefs[1] = 0.4     // Log_amount
	return Metadata{
		ModelName:    "logistic_aml",
		Version:      "1.2.0",
		Threshold:    0.5,
		FeaturesUsed: risk.FeatureNames[:],
		Metrics:      map[string]float64{"auc": 0.93},
		Coefficients: coefs,
		Intercept:    -2.0,
	}
}

func writeMetadata(t *testing.T, meta Metadata) string {
	t.Helper()
	raw, err := json.Marshal(meta)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeMetadata(t, validMetadata())

	s, err := Load(path)
	require.NoError(t, err)

	assert.True(t, s.Ready())
	info := s.Info()
	assert.Equal(t, "logistic_aml", info.Name)
	assert.Equal(t, "1.2.0", info.Version)
	assert.Equal(t, 0.5, info.Threshold)
	assert.Equal(t, risk.FeatureNames[:], info.FeaturesUsed)
	assert.False(t, info.LoadedAt.IsZero())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestMetadata_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Metadata)
	}{
		{"missing name", func(m *Metadata) { m.ModelName = "" }},
		{"wrong feature count", func(m *Metadata) { m.FeaturesUsed = m.FeaturesUsed[:5] }},
		{"reordered features", func(m *Metadata) {
			m.FeaturesUsed = append([]string(nil), m.FeaturesUsed...)
			m.FeaturesUsed[0], m.FeaturesUsed[1] = m.FeaturesUsed[1], m.FeaturesUsed[0]
		}},
		{"coefficient count mismatch", func(m *Metadata) { m.Coefficients = m.Coefficients[:3] }},
		{"threshold above one", func(m *Metadata) { m.Threshold = 1.5 }},
		{"short means", func(m *Metadata) { m.FeatureMeans = []float64{1, 2} }},
		{"zero std", func(m *Metadata) {
			m.FeatureStds = make([]float64, risk.FeatureCount)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := validMetadata()
			tt.mutate(&meta)
			err := meta.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, "INVALID_MODEL"))
		})
	}
}

func TestLogistic_Score(t *testing.T) {
	s, err := Load(writeMetadata(t, validMetadata()))
	require.NoError(t, err)

	var low, high [risk.FeatureCount]float64
	low[1] = 1.0   // small log amount
	high[1] = 12.0 // large log amount

	pLow, err := s.Score(context.Background(), low)
	require.NoError(t, err)
	pHigh, err := s.Score(context.Background(), high)
	require.NoError(t, err)

	assert.Greater(t, pHigh, pLow, "positive weight on Log_amount must raise the probability")
	assert.GreaterOrEqual(t, pLow, 0.0)
	assert.LessOrEqual(t, pHigh, 1.0)
}

func TestLogistic_Score_Standardized(t *testing.T) {
	meta := validMetadata()
	meta.FeatureMeans = make([]float64, risk.FeatureCount)
	meta.FeatureStds = make([]float64, risk.FeatureCount)
	for i := range meta.FeatureStds {
		meta.FeatureStds[i] = 1
	}
	meta.FeatureMeans[1] = 6.0
	meta.FeatureStds[1] = 2.0

	s, err := Load(writeMetadata(t, meta))
	require.NoError(t, err)

	// At the feature mean the standardized value is zero, so only the
	// intercept contributes.
	var atMean [risk.FeatureCount]float64
	atMean[1] = 6.0
	p, err := s.Score(context.Background(), atMean)
	require.NoError(t, err)
	assert.InDelta(t, sigmoid(-2.0), p, 1e-12)
}

func TestLogistic_Score_Unloaded(t *testing.T) {
	s := NewLogistic()
	assert.False(t, s.Ready())

	_, err := s.Score(context.Background(), [risk.FeatureCount]float64{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, "SCORING_UNAVAILABLE"))
}

func TestLogistic_Score_CanceledContext(t *testing.T) {
	s, err := Load(writeMetadata(t, validMetadata()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Score(ctx, [risk.FeatureCount]float64{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLogistic_ReloadKeepsServingOnFailure(t *testing.T) {
	s, err := Load(writeMetadata(t, validMetadata()))
	require.NoError(t, err)

	bad := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))

	require.Error(t, s.Reload(bad))
	assert.True(t, s.Ready())
	assert.Equal(t, "logistic_aml", s.Info().Name)
}
