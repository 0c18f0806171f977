package fraud

import (
	"errors"
	"fmt"
	"math"
)

// Configuration errors. These are programming or deployment faults, fatal
// at construction time, never dependent on the document under analysis.
var (
	ErrWeightSum      = errors.New("fraud: pattern weights must sum to 1.0")
	ErrUnknownPattern = errors.New("fraud: unknown pattern name")
)

// Weights maps each pattern to its share of the composite score.
type Weights map[Pattern]float64

// DefaultWeights returns the documented weighting: Benford 20%, duplicates
// 15%, ratios 25%, revenue 20%, expenses 15%, round numbers 5%.
func DefaultWeights() Weights {
	return Weights{
		PatternBenford:  0.20,
		PatternDupes:    0.15,
		PatternRatios:   0.25,
		PatternRevenue:  0.20,
		PatternExpenses: 0.15,
		PatternRound:    0.05,
	}
}

// Aggregator folds six sub-scores into a composite fraud score. The weight
// set is validated once at construction.
type Aggregator struct {
	weights Weights
}

// NewAggregator validates that the weights cover exactly the six known
// patterns and sum to 1.0 within 0.001, and returns the aggregator.
func NewAggregator(w Weights) (*Aggregator, error) {
	if w == nil {
		w = DefaultWeights()
	}
	sum := 0.0
	for p, weight := range w {
		if !knownPattern(p) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPattern, p)
		}
		sum += weight
	}
	if len(w) != len(Patterns()) {
		return nil, fmt.Errorf("%w: got %d weights, want %d", ErrWeightSum, len(w), len(Patterns()))
	}
	if math.Abs(sum-1.0) > 0.001 {
		return nil, fmt.Errorf("%w: got %.4f", ErrWeightSum, sum)
	}
	return &Aggregator{weights: w}, nil
}

// Aggregate combines the six sub-scores into an Assessment. The composite
// is the weighted sum rounded to one decimal and clamped to [0,100]. An
// unknown pattern in the input is a programming error.
func (a *Aggregator) Aggregate(subScores []SubScore) (*Assessment, error) {
	composite := 0.0
	for _, s := range subScores {
		w, ok := a.weights[s.Pattern]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPattern, s.Pattern)
		}
		composite += w * s.Score
	}
	composite = clamp(math.Round(composite*10)/10, 0, 100)

	return &Assessment{
		SubScores:      subScores,
		CompositeScore: composite,
		Severity:       SeverityFor(composite),
	}, nil
}

func knownPattern(p Pattern) bool {
	for _, known := range Patterns() {
		if p == known {
			return true
		}
	}
	return false
}
