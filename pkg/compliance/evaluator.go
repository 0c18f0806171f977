// Package compliance evaluates named regulatory rules against extracted
// financial figures, yielding a pass/warning/failed verdict per rule.
//
// Each rule compares specific fields against a literal regulatory threshold
// and carries an explicit borderline band (within 10% of the hard
// threshold) that maps to a warning. A rule whose required fields are
// missing reports a warning noting the gap, never a silent pass.
package compliance

import (
	"fmt"
	"math"

	"github.com/finsight-labs/analysis-core/pkg/document"
)

// Standard names a regulatory framework.
type Standard string

const (
	StandardGAAP     Standard = "GAAP"
	StandardIFRS     Standard = "IFRS"
	StandardSEC      Standard = "SEC"
	StandardSOX      Standard = "SOX"
	StandardBaselIII Standard = "Basel III"
)

// Standards lists every framework the evaluator knows.
func Standards() []Standard {
	return []Standard{StandardGAAP, StandardIFRS, StandardSEC, StandardSOX, StandardBaselIII}
}

// Result is a rule verdict.
type Result string

const (
	ResultPassed  Result = "passed"
	ResultWarning Result = "warning"
	ResultFailed  Result = "failed"
)

// CheckResult is the outcome of one named rule. Recommendation is present
// only when the result is not passed.
type CheckResult struct {
	Standard       Standard `json:"standard"`
	CheckName      string   `json:"check_name"`
	Result         Result   `json:"result"`
	Details        string   `json:"details"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// Evaluator runs the rule set for a standard. Stateless; one instance is
// shared across analysis runs.
type Evaluator struct{}

// NewEvaluator returns an Evaluator.
func NewEvaluator() *Evaluator { return &Evaluator{} }

// Evaluate runs every rule registered under the standard. An unknown
// standard returns an error; that is a caller bug, not a document fault.
func (e *Evaluator) Evaluate(standard Standard, figures *document.FinancialFigures) ([]CheckResult, error) {
	switch standard {
	case StandardGAAP:
		return []CheckResult{
			e.balanceSheetEquation(figures),
			e.revenueConsistency(figures),
		}, nil
	case StandardIFRS:
		return []CheckResult{e.reportingCompleteness(figures)}, nil
	case StandardSEC:
		return []CheckResult{e.transactionDocumentation(figures)}, nil
	case StandardSOX:
		return []CheckResult{e.controlTotals(figures)}, nil
	case StandardBaselIII:
		return []CheckResult{
			e.capitalAdequacy(figures),
			e.leverageRatio(figures),
		}, nil
	default:
		return nil, fmt.Errorf("compliance: unknown standard %q", standard)
	}
}

// EvaluateAll runs every known standard and concatenates the results.
func (e *Evaluator) EvaluateAll(figures *document.FinancialFigures) []CheckResult {
	var out []CheckResult
	for _, std := range Standards() {
		results, err := e.Evaluate(std, figures)
		if err != nil {
			continue // unreachable for the fixed standard list
		}
		out = append(out, results...)
	}
	return out
}

func missingField(standard Standard, check, field, recommendation string) CheckResult {
	return CheckResult{
		Standard:       standard,
		CheckName:      check,
		Result:         ResultWarning,
		Details:        fmt.Sprintf("%s unavailable in extracted figures, rule could not be evaluated", field),
		Recommendation: recommendation,
	}
}

// balanceSheetEquation checks assets = liabilities + equity. Imbalance
// under 1% passes, 1-2% is borderline, above 2% fails.
func (e *Evaluator) balanceSheetEquation(f *document.FinancialFigures) CheckResult {
	const check = "Balance Sheet Equation"
	if f == nil || f.Assets == nil || f.Liabilities == nil || f.Equity == nil {
		return missingField(StandardGAAP, check, "assets, liabilities or equity",
			"Supply the full balance sheet so the accounting equation can be verified")
	}
	assets := *f.Assets
	if assets == 0 {
		return missingField(StandardGAAP, check, "nonzero total assets",
			"Verify total assets extraction; zero assets cannot anchor the equation")
	}
	imbalance := math.Abs(assets-(*f.Liabilities+*f.Equity)) / math.Abs(assets)
	details := fmt.Sprintf("assets deviate %.2f%% from liabilities + equity", imbalance*100)
	switch {
	case imbalance <= 0.01:
		return CheckResult{Standard: StandardGAAP, CheckName: check, Result: ResultPassed, Details: details}
	case imbalance <= 0.02:
		return CheckResult{Standard: StandardGAAP, CheckName: check, Result: ResultWarning, Details: details,
			Recommendation: "Reconcile the balance sheet; imbalance is inside the borderline band"}
	default:
		return CheckResult{Standard: StandardGAAP, CheckName: check, Result: ResultFailed, Details: details,
			Recommendation: "Restate the balance sheet; the accounting equation does not hold"}
	}
}

// revenueConsistency checks quarter-over-quarter revenue swings. A swing
// above 50% fails, 45-50% is borderline.
func (e *Evaluator) revenueConsistency(f *document.FinancialFigures) CheckResult {
	const check = "Revenue Recognition Consistency"
	if f == nil || len(f.QuarterlyRevenue) < 2 {
		return missingField(StandardGAAP, check, "quarterly revenue series",
			"Provide at least two quarters of revenue to assess recognition consistency")
	}
	worst := 0.0
	for i := 1; i < len(f.QuarterlyRevenue); i++ {
		prev := f.QuarterlyRevenue[i-1]
		if prev == 0 {
			continue
		}
		swing := math.Abs(f.QuarterlyRevenue[i]-prev) / math.Abs(prev)
		if swing > worst {
			worst = swing
		}
	}
	details := fmt.Sprintf("largest quarter-over-quarter revenue swing is %.0f%%", worst*100)
	switch {
	case worst < 0.45:
		return CheckResult{Standard: StandardGAAP, CheckName: check, Result: ResultPassed, Details: details}
	case worst < 0.50:
		return CheckResult{Standard: StandardGAAP, CheckName: check, Result: ResultWarning, Details: details,
			Recommendation: "Review revenue timing for the swing quarter"}
	default:
		return CheckResult{Standard: StandardGAAP, CheckName: check, Result: ResultFailed, Details: details,
			Recommendation: "Audit revenue recognition policy for the quarters around the swing"}
	}
}

// reportingCompleteness checks that a full year of quarterly figures is
// present.
func (e *Evaluator) reportingCompleteness(f *document.FinancialFigures) CheckResult {
	const check = "Quarterly Reporting Completeness"
	n := 0
	if f != nil {
		n = len(f.QuarterlyRevenue)
	}
	details := fmt.Sprintf("%d quarterly revenue figure(s) present", n)
	switch {
	case n >= 4:
		return CheckResult{Standard: StandardIFRS, CheckName: check, Result: ResultPassed, Details: details}
	case n >= 1:
		return CheckResult{Standard: StandardIFRS, CheckName: check, Result: ResultWarning, Details: details,
			Recommendation: "Supply the remaining quarters for a complete reporting period"}
	default:
		return missingField(StandardIFRS, check, "quarterly revenue series",
			"Extract interim reporting figures from the filing")
	}
}

// transactionDocumentation checks that transactions carry descriptions.
// More than 5% undocumented is borderline, more than 10% fails.
func (e *Evaluator) transactionDocumentation(f *document.FinancialFigures) CheckResult {
	const check = "Transaction Documentation"
	if f == nil || len(f.Transactions) == 0 {
		return missingField(StandardSEC, check, "transaction list",
			"Supply the transaction ledger to verify documentation coverage")
	}
	undocumented := 0
	for _, t := range f.Transactions {
		if t.Description == "" {
			undocumented++
		}
	}
	share := float64(undocumented) / float64(len(f.Transactions))
	details := fmt.Sprintf("%d of %d transactions lack a description (%.0f%%)", undocumented, len(f.Transactions), share*100)
	switch {
	case share <= 0.05:
		return CheckResult{Standard: StandardSEC, CheckName: check, Result: ResultPassed, Details: details}
	case share <= 0.10:
		return CheckResult{Standard: StandardSEC, CheckName: check, Result: ResultWarning, Details: details,
			Recommendation: "Backfill descriptions for the undocumented transactions"}
	default:
		return CheckResult{Standard: StandardSEC, CheckName: check, Result: ResultFailed, Details: details,
			Recommendation: "Documentation coverage is below disclosure expectations; complete the ledger"}
	}
}

// controlTotals reconciles the transaction total against reported revenue.
// Deviation under 5% passes, 5-10% is borderline, above 10% fails.
func (e *Evaluator) controlTotals(f *document.FinancialFigures) CheckResult {
	const check = "Internal Controls: Control Totals"
	if f == nil || f.Revenue == nil || *f.Revenue == 0 {
		return missingField(StandardSOX, check, "reported revenue",
			"Supply reported revenue to reconcile control totals")
	}
	if len(f.Transactions) == 0 {
		return missingField(StandardSOX, check, "transaction list",
			"Supply the transaction ledger to reconcile against reported revenue")
	}
	total := 0.0
	for _, t := range f.Transactions {
		total += t.Amount
	}
	deviation := math.Abs(total-*f.Revenue) / math.Abs(*f.Revenue)
	details := fmt.Sprintf("transaction total deviates %.1f%% from reported revenue", deviation*100)
	switch {
	case deviation <= 0.05:
		return CheckResult{Standard: StandardSOX, CheckName: check, Result: ResultPassed, Details: details}
	case deviation <= 0.10:
		return CheckResult{Standard: StandardSOX, CheckName: check, Result: ResultWarning, Details: details,
			Recommendation: "Investigate the reconciliation gap between ledger and reported revenue"}
	default:
		return CheckResult{Standard: StandardSOX, CheckName: check, Result: ResultFailed, Details: details,
			Recommendation: "Control totals do not reconcile; review internal controls over reporting"}
	}
}

// capitalAdequacy checks equity against total assets. The hard floor is
// 8%; within 10% of the floor (7.2-8%) is borderline.
func (e *Evaluator) capitalAdequacy(f *document.FinancialFigures) CheckResult {
	const check = "Capital Adequacy Ratio"
	const floor = 0.08
	if f == nil || f.Equity == nil || f.Assets == nil || *f.Assets == 0 {
		return missingField(StandardBaselIII, check, "equity or total assets",
			"Supply equity and total assets to compute the capital ratio")
	}
	ratio := *f.Equity / *f.Assets
	details := fmt.Sprintf("capital ratio %.1f%% vs %.0f%% regulatory floor", ratio*100, floor*100)
	switch {
	case ratio >= floor:
		return CheckResult{Standard: StandardBaselIII, CheckName: check, Result: ResultPassed, Details: details}
	case ratio >= floor*0.9:
		return CheckResult{Standard: StandardBaselIII, CheckName: check, Result: ResultWarning, Details: details,
			Recommendation: "Capital sits just under the floor; plan a capital raise or asset reduction"}
	default:
		return CheckResult{Standard: StandardBaselIII, CheckName: check, Result: ResultFailed, Details: details,
			Recommendation: "Capital ratio breaches the regulatory floor; escalate to the regulator"}
	}
}

// leverageRatio checks assets against equity. Leverage above 25x fails;
// within 10% of the cap (22.5-25x) is borderline.
func (e *Evaluator) leverageRatio(f *document.FinancialFigures) CheckResult {
	const check = "Leverage Ratio"
	const maxLeverage = 25.0
	if f == nil || f.Equity == nil || f.Assets == nil || *f.Equity == 0 {
		return missingField(StandardBaselIII, check, "equity or total assets",
			"Supply equity and total assets to compute leverage")
	}
	leverage := *f.Assets / *f.Equity
	details := fmt.Sprintf("leverage %.1fx vs %.0fx cap", leverage, maxLeverage)
	switch {
	case leverage <= maxLeverage*0.9:
		return CheckResult{Standard: StandardBaselIII, CheckName: check, Result: ResultPassed, Details: details}
	case leverage <= maxLeverage:
		return CheckResult{Standard: StandardBaselIII, CheckName: check, Result: ResultWarning, Details: details,
			Recommendation: "Leverage is approaching the cap; monitor asset growth"}
	default:
		return CheckResult{Standard: StandardBaselIII, CheckName: check, Result: ResultFailed, Details: details,
			Recommendation: "Leverage exceeds the cap; deleverage or raise equity"}
	}
}
