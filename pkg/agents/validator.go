package agents

import (
	"context"
	"fmt"
	"math"
)

// Validator checks the structural consistency of the extracted figures,
// starting with the accounting equation.
type Validator struct{}

func NewValidator() *Validator { return &Validator{} }

func (v *Validator) Type() Type { return TypeValidator }

func (v *Validator) Run(_ context.Context, in Input) Result {
	return timed(TypeValidator, func() ([]Finding, float64) {
		var findings []Finding
		confidence := 0.9
		f := in.Figures

		if f == nil || f.Assets == nil || f.Liabilities == nil || f.Equity == nil {
			findings = append(findings, NewFinding(
				"insufficient data: balance sheet fields missing, accounting equation not verified", 45))
			confidence = 0.4
		} else if *f.Assets != 0 {
			imbalance := math.Abs(*f.Assets-(*f.Liabilities+*f.Equity)) / math.Abs(*f.Assets)
			if imbalance > 0.01 {
				findings = append(findings, NewFinding(fmt.Sprintf(
					"balance sheet imbalance: assets %.0f vs liabilities + equity %.0f (%.1f%% off)",
					*f.Assets, *f.Liabilities+*f.Equity, imbalance*100), 92))
			} else {
				findings = append(findings, NewFinding("accounting equation holds within tolerance", 95))
			}
		}

		if f != nil {
			if f.Revenue != nil && *f.Revenue < 0 {
				findings = append(findings, NewFinding("reported revenue is negative", 90))
			}
			if f.Equity != nil && *f.Equity < 0 {
				findings = append(findings, NewFinding("negative equity reported; balance sheet is insolvent on paper", 90))
			}
			for i, q := range f.QuarterlyRevenue {
				if q < 0 {
					findings = append(findings, NewFinding(
						fmt.Sprintf("quarter %d revenue is negative", i+1), 88))
				}
			}
		}

		return findings, confidence
	})
}
