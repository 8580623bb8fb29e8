package scoring

// Level is the coarse risk bucket derived from a probability.
type Level string

const (
	LevelMinimal Level = "MINIMAL"
	LevelLow     Level = "LOW"
	LevelMedium  Level = "MEDIUM"
	LevelHigh    Level = "HIGH"
)

// Fixed cut points. The level boundaries and the review threshold are
// independent of the model's configurable decision threshold; they never move
// with it.
const (
	levelLowBound    = 0.2
	levelMediumBound = 0.5
	levelHighBound   = 0.8

	// ReviewThreshold flags a transaction for compliance review.
	ReviewThreshold = 0.5

	// DefaultDecisionThreshold is the fallback binary cut point when model
	// metadata does not supply one.
	DefaultDecisionThreshold = 0.5
)

// ClassifyLevel buckets a probability: <0.2 MINIMAL, [0.2,0.5) LOW,
// [0.5,0.8) MEDIUM, >=0.8 HIGH.
func ClassifyLevel(probability float64) Level {
	switch {
	case probability < levelLowBound:
		return LevelMinimal
	case probability < levelMediumBound:
		return LevelLow
	case probability < levelHighBound:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// RequiresReview reports whether the probability crosses the fixed review
// threshold.
func RequiresReview(probability float64) bool {
	return probability >= ReviewThreshold
}

// Confidence measures distance from the decision midpoint, scaled to [0,1].
func Confidence(probability float64) float64 {
	c := probability - 0.5
	if c < 0 {
		c = -c
	}
	return c * 2
}
