package agents

import (
	"context"
	"fmt"
	"sort"

	"github.com/finsight-labs/analysis-core/pkg/document"
)

// Analyzer derives the standard financial ratios and surfaces notable ones
// as purely descriptive findings. Fraud judgement is the fraud agent's job.
type Analyzer struct{}

func NewAnalyzer() *Analyzer { return &Analyzer{} }

func (a *Analyzer) Type() Type { return TypeAnalyzer }

// ratio descriptions keyed by the shared ratio vocabulary.
var ratioLabels = map[string]string{
	document.RatioDebtToEquity:   "debt-to-equity",
	document.RatioCurrent:        "current ratio",
	document.RatioNetMargin:      "net margin",
	document.RatioAssetTurnover:  "asset turnover",
	document.RatioDaysReceivable: "days receivable outstanding",
}

func (a *Analyzer) Run(_ context.Context, in Input) Result {
	return timed(TypeAnalyzer, func() ([]Finding, float64) {
		var findings []Finding

		ratios := in.Figures.Ratios()
		if len(ratios) == 0 {
			findings = append(findings, NewFinding(
				"insufficient data: no financial ratios derivable from supplied figures", 45))
			return findings, 0.4
		}

		names := make([]string, 0, len(ratios))
		for name := range ratios {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			label := ratioLabels[name]
			if label == "" {
				label = name
			}
			findings = append(findings, NewFinding(
				fmt.Sprintf("%s is %.2f", label, ratios[name]), 85))
		}

		if v, ok := ratios[document.RatioNetMargin]; ok && v < 0 {
			findings = append(findings, NewFinding("company is operating at a net loss", 90))
		}
		if v, ok := ratios[document.RatioCurrent]; ok && v < 1 {
			findings = append(findings, NewFinding(
				fmt.Sprintf("current ratio %.2f is below 1; short-term obligations exceed liquid assets", v), 88))
		}

		// Confidence grows with ratio coverage out of the five standard
		// ratios.
		confidence := 0.5 + float64(len(ratios))*0.1
		if confidence > 0.95 {
			confidence = 0.95
		}
		return findings, confidence
	})
}
