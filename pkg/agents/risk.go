package agents

import (
	"context"
	"fmt"

	"github.com/finsight-labs/analysis-core/pkg/compliance"
	"github.com/finsight-labs/analysis-core/pkg/fraud"
)

// Risk summarizes the fraud assessment and the compliance verdicts into
// tier-level findings: one per severity tier the composite score crossed,
// plus a compliance summary when anything failed or warned.
type Risk struct{}

func NewRisk() *Risk { return &Risk{} }

func (r *Risk) Type() Type { return TypeRisk }

func (r *Risk) Run(_ context.Context, in Input) Result {
	return timed(TypeRisk, func() ([]Finding, float64) {
		var findings []Finding

		if in.Fraud == nil {
			findings = append(findings, NewFinding(
				"insufficient data: fraud assessment unavailable for risk summary", 40))
			return findings, 0.3
		}

		score := in.Fraud.CompositeScore
		tiers := []struct {
			floor    float64
			severity fraud.Severity
			text     string
		}{
			{30, fraud.SeverityMedium, "composite fraud score %.1f crosses the medium-severity tier; schedule enhanced monitoring"},
			{50, fraud.SeverityHigh, "composite fraud score %.1f crosses the high-severity tier; manual review required"},
			{70, fraud.SeverityCritical, "composite fraud score %.1f crosses the critical tier; immediate forensic investigation required"},
		}
		for _, tier := range tiers {
			if score >= tier.floor {
				findings = append(findings, NewFinding(fmt.Sprintf(tier.text, score), 90))
			}
		}
		if score < 30 {
			findings = append(findings, NewFinding(fmt.Sprintf(
				"composite fraud score %.1f stays in the low tier", score), 85))
		}

		failed, warned := 0, 0
		for _, c := range in.Compliance {
			switch c.Result {
			case compliance.ResultFailed:
				failed++
			case compliance.ResultWarning:
				warned++
			}
		}
		if failed > 0 {
			findings = append(findings, NewFinding(fmt.Sprintf(
				"%d compliance check(s) failed; regulatory exposure is independent of the fraud score", failed), 92))
		} else if warned > 0 {
			findings = append(findings, NewFinding(fmt.Sprintf(
				"%d compliance check(s) raised warnings", warned), 78))
		}

		return findings, 0.9
	})
}
