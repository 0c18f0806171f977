// Package fraud implements the six statistical fraud pattern detectors and
// the weighted aggregator that folds their sub-scores into one composite
// fraud score with a severity bucket.
//
// Detectors are pure functions of their inputs: no hidden state, no I/O.
// Thresholds are product-specified defaults, overridable via configuration.
package fraud

// Pattern identifies one of the six fixed fraud patterns.
type Pattern string

const (
	PatternBenford  Pattern = "benford_law"
	PatternDupes    Pattern = "duplicate_transactions"
	PatternRatios   Pattern = "ratio_anomaly"
	PatternRevenue  Pattern = "revenue_recognition"
	PatternExpenses Pattern = "expense_manipulation"
	PatternRound    Pattern = "round_numbers"
)

// Patterns lists all six patterns in their fixed order.
func Patterns() []Pattern {
	return []Pattern{
		PatternBenford, PatternDupes, PatternRatios,
		PatternRevenue, PatternExpenses, PatternRound,
	}
}

// SubScore is one detector's verdict. Score is 0-100, higher is more
// suspicious. Triggered is true when the score crosses the alert threshold.
// HasData is false when the detector lacked the input it needed and the
// score should be read as "no evidence" rather than "clean".
type SubScore struct {
	Pattern   Pattern `json:"pattern"`
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
	Triggered bool    `json:"triggered"`
	HasData   bool    `json:"has_data"`
}

// Severity buckets a composite fraud score.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// SeverityFor maps a composite score to its severity bucket. Cut-points are
// inclusive lower bounds: >=70 critical, >=50 high, >=30 medium, else low.
func SeverityFor(composite float64) Severity {
	switch {
	case composite >= 70:
		return SeverityCritical
	case composite >= 50:
		return SeverityHigh
	case composite >= 30:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Assessment is the combined fraud verdict: the six sub-scores in fixed
// order, the weighted composite, and its severity bucket.
type Assessment struct {
	SubScores      []SubScore `json:"sub_scores"`
	CompositeScore float64    `json:"composite_score"`
	Severity       Severity   `json:"severity"`
}

// DataCount returns how many sub-scores had sufficient input data.
func (a *Assessment) DataCount() int {
	n := 0
	for _, s := range a.SubScores {
		if s.HasData {
			n++
		}
	}
	return n
}

// Triggered returns the sub-scores whose alert threshold was crossed.
func (a *Assessment) Triggered() []SubScore {
	var out []SubScore
	for _, s := range a.SubScores {
		if s.Triggered {
			out = append(out, s)
		}
	}
	return out
}
