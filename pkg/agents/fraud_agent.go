package agents

import (
	"context"
	"fmt"
)

// FraudAgent narrates the precomputed fraud assessment: one finding per
// triggered pattern, carrying that pattern's rationale. Its confidence
// reflects input coverage, not the verdict itself: high when at least four
// of the six detectors had sufficient data, degrading proportionally below
// that.
type FraudAgent struct{}

func NewFraudAgent() *FraudAgent { return &FraudAgent{} }

func (f *FraudAgent) Type() Type { return TypeFraud }

func (f *FraudAgent) Run(_ context.Context, in Input) Result {
	return timed(TypeFraud, func() ([]Finding, float64) {
		var findings []Finding

		if in.Fraud == nil {
			findings = append(findings, NewFinding(
				"insufficient data: fraud assessment unavailable", 40))
			return findings, 0.2
		}

		for _, sub := range in.Fraud.Triggered() {
			findings = append(findings, NewFinding(sub.Rationale, sub.Score))
		}
		for _, sub := range in.Fraud.SubScores {
			if !sub.HasData {
				findings = append(findings, NewFinding(
					fmt.Sprintf("pattern %s not evaluated: %s", sub.Pattern, sub.Rationale), 45))
			}
		}
		if len(in.Fraud.Triggered()) == 0 {
			findings = append(findings, NewFinding(fmt.Sprintf(
				"no fraud pattern triggered; composite score %.1f (%s)",
				in.Fraud.CompositeScore, in.Fraud.Severity), 85))
		}

		return findings, fraudConfidence(in.Fraud.DataCount())
	})
}

// fraudConfidence maps detector input coverage to agent confidence: 0.85
// at four covered patterns, rising slightly with full coverage, degrading
// proportionally below four.
func fraudConfidence(dataCount int) float64 {
	if dataCount >= 4 {
		return 0.85 + 0.025*float64(dataCount-4)
	}
	return 0.85 * float64(dataCount) / 4
}
