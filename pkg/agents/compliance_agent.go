package agents

import (
	"context"
	"fmt"

	"github.com/finsight-labs/analysis-core/pkg/compliance"
)

// ComplianceAgent surfaces the rule evaluator's non-passing results as
// findings. The evaluation itself happens once in the orchestrator and is
// shared through the input snapshot.
type ComplianceAgent struct{}

func NewComplianceAgent() *ComplianceAgent { return &ComplianceAgent{} }

func (c *ComplianceAgent) Type() Type { return TypeCompliance }

func (c *ComplianceAgent) Run(_ context.Context, in Input) Result {
	return timed(TypeCompliance, func() ([]Finding, float64) {
		var findings []Finding

		evaluated := 0
		for _, r := range in.Compliance {
			if r.Result == compliance.ResultPassed {
				evaluated++
				continue
			}
			score := 75.0
			if r.Result == compliance.ResultFailed {
				score = 92
			}
			text := fmt.Sprintf("[%s] %s: %s - %s", r.Standard, r.CheckName, r.Result, r.Details)
			if r.Recommendation != "" {
				text += "; " + r.Recommendation
			}
			findings = append(findings, NewFinding(text, score))
			evaluated++
		}

		if len(in.Compliance) == 0 {
			findings = append(findings, NewFinding(
				"insufficient data: no compliance rules could be evaluated", 45))
			return findings, 0.3
		}

		// Warnings caused by missing fields lower confidence in the verdict.
		missing := 0
		for _, r := range in.Compliance {
			if r.Result == compliance.ResultWarning {
				missing++
			}
		}
		confidence := 0.95 - 0.08*float64(missing)
		if confidence < 0.3 {
			confidence = 0.3
		}
		return findings, confidence
	})
}
