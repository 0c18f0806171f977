package compliance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/analysis-core/pkg/compliance"
	"github.com/finsight-labs/analysis-core/pkg/document"
)

func findCheck(t *testing.T, results []compliance.CheckResult, name string) compliance.CheckResult {
	t.Helper()
	for _, r := range results {
		if r.CheckName == name {
			return r
		}
	}
	t.Fatalf("check %q not found", name)
	return compliance.CheckResult{}
}

func TestEvaluate_UnknownStandard(t *testing.T) {
	e := compliance.NewEvaluator()
	_, err := e.Evaluate("FASB", &document.FinancialFigures{})
	assert.Error(t, err)
}

func TestBalanceSheetEquation(t *testing.T) {
	e := compliance.NewEvaluator()

	run := func(assets, liabilities, equity float64) compliance.CheckResult {
		results, err := e.Evaluate(compliance.StandardGAAP, &document.FinancialFigures{
			Assets:      document.Ptr(assets),
			Liabilities: document.Ptr(liabilities),
			Equity:      document.Ptr(equity),
		})
		require.NoError(t, err)
		return findCheck(t, results, "Balance Sheet Equation")
	}

	t.Run("balanced passes", func(t *testing.T) {
		assert.Equal(t, compliance.ResultPassed, run(1000, 600, 400).Result)
	})

	t.Run("borderline imbalance warns", func(t *testing.T) {
		r := run(1000, 600, 415) // 1.5% off
		assert.Equal(t, compliance.ResultWarning, r.Result)
		assert.NotEmpty(t, r.Recommendation)
	})

	t.Run("large imbalance fails", func(t *testing.T) {
		assert.Equal(t, compliance.ResultFailed, run(1000, 600, 500).Result)
	})

	t.Run("missing equity warns instead of passing", func(t *testing.T) {
		results, err := e.Evaluate(compliance.StandardGAAP, &document.FinancialFigures{
			Assets:      document.Ptr(1000.0),
			Liabilities: document.Ptr(600.0),
		})
		require.NoError(t, err)
		r := findCheck(t, results, "Balance Sheet Equation")
		assert.Equal(t, compliance.ResultWarning, r.Result)
		assert.Contains(t, r.Details, "unavailable")
	})
}

func TestRevenueConsistency(t *testing.T) {
	e := compliance.NewEvaluator()

	run := func(quarters ...float64) compliance.CheckResult {
		results, err := e.Evaluate(compliance.StandardGAAP, &document.FinancialFigures{
			QuarterlyRevenue: quarters,
		})
		require.NoError(t, err)
		return findCheck(t, results, "Revenue Recognition Consistency")
	}

	t.Run("steady quarters pass", func(t *testing.T) {
		assert.Equal(t, compliance.ResultPassed, run(100, 110, 105, 115).Result)
	})

	t.Run("48 percent swing warns", func(t *testing.T) {
		assert.Equal(t, compliance.ResultWarning, run(100, 148).Result)
	})

	t.Run("60 percent swing fails", func(t *testing.T) {
		assert.Equal(t, compliance.ResultFailed, run(100, 160).Result)
	})

	t.Run("single quarter warns of missing data", func(t *testing.T) {
		r := run(100)
		assert.Equal(t, compliance.ResultWarning, r.Result)
		assert.Contains(t, r.Details, "unavailable")
	})
}

func TestReportingCompleteness(t *testing.T) {
	e := compliance.NewEvaluator()

	run := func(quarters []float64) compliance.CheckResult {
		results, err := e.Evaluate(compliance.StandardIFRS, &document.FinancialFigures{
			QuarterlyRevenue: quarters,
		})
		require.NoError(t, err)
		return findCheck(t, results, "Quarterly Reporting Completeness")
	}

	assert.Equal(t, compliance.ResultPassed, run([]float64{1, 2, 3, 4}).Result)
	assert.Equal(t, compliance.ResultWarning, run([]float64{1, 2}).Result)
	assert.Equal(t, compliance.ResultWarning, run(nil).Result)
}

func TestTransactionDocumentation(t *testing.T) {
	e := compliance.NewEvaluator()

	run := func(total, undocumented int) compliance.CheckResult {
		f := &document.FinancialFigures{}
		for i := 0; i < total; i++ {
			desc := "invoice payment"
			if i < undocumented {
				desc = ""
			}
			f.Transactions = append(f.Transactions, document.Transaction{
				Amount: 100, Date: time.Date(2025, 1, 1+i%27, 0, 0, 0, 0, time.UTC), Description: desc,
			})
		}
		results, err := e.Evaluate(compliance.StandardSEC, f)
		require.NoError(t, err)
		return findCheck(t, results, "Transaction Documentation")
	}

	assert.Equal(t, compliance.ResultPassed, run(100, 5).Result)
	assert.Equal(t, compliance.ResultWarning, run(100, 8).Result)
	assert.Equal(t, compliance.ResultFailed, run(100, 20).Result)
}

func TestControlTotals(t *testing.T) {
	e := compliance.NewEvaluator()

	run := func(revenue float64, amounts ...float64) compliance.CheckResult {
		f := &document.FinancialFigures{Revenue: document.Ptr(revenue)}
		for _, a := range amounts {
			f.Transactions = append(f.Transactions, document.Transaction{Amount: a})
		}
		results, err := e.Evaluate(compliance.StandardSOX, f)
		require.NoError(t, err)
		return findCheck(t, results, "Internal Controls: Control Totals")
	}

	assert.Equal(t, compliance.ResultPassed, run(1000, 500, 480).Result)
	assert.Equal(t, compliance.ResultWarning, run(1000, 500, 420).Result)
	assert.Equal(t, compliance.ResultFailed, run(1000, 500, 300).Result)
}

func TestBaselChecks(t *testing.T) {
	e := compliance.NewEvaluator()

	run := func(assets, equity float64) []compliance.CheckResult {
		results, err := e.Evaluate(compliance.StandardBaselIII, &document.FinancialFigures{
			Assets: document.Ptr(assets),
			Equity: document.Ptr(equity),
		})
		require.NoError(t, err)
		return results
	}

	t.Run("capital adequacy bands", func(t *testing.T) {
		// 10% passes, 7.5% sits in the borderline band, 5% breaches.
		assert.Equal(t, compliance.ResultPassed, findCheck(t, run(1000, 100), "Capital Adequacy Ratio").Result)
		assert.Equal(t, compliance.ResultWarning, findCheck(t, run(1000, 75), "Capital Adequacy Ratio").Result)
		assert.Equal(t, compliance.ResultFailed, findCheck(t, run(1000, 50), "Capital Adequacy Ratio").Result)
	})

	t.Run("leverage bands", func(t *testing.T) {
		// 20x passes, 24x is borderline, 26x exceeds the cap.
		assert.Equal(t, compliance.ResultPassed, findCheck(t, run(2000, 100), "Leverage Ratio").Result)
		assert.Equal(t, compliance.ResultWarning, findCheck(t, run(2400, 100), "Leverage Ratio").Result)
		assert.Equal(t, compliance.ResultFailed, findCheck(t, run(2600, 100), "Leverage Ratio").Result)
	})

	t.Run("missing figures warn", func(t *testing.T) {
		results, err := e.Evaluate(compliance.StandardBaselIII, &document.FinancialFigures{})
		require.NoError(t, err)
		for _, r := range results {
			assert.Equal(t, compliance.ResultWarning, r.Result, r.CheckName)
		}
	})
}

func TestEvaluateAll(t *testing.T) {
	e := compliance.NewEvaluator()
	results := e.EvaluateAll(&document.FinancialFigures{})

	// Two GAAP rules, one each for IFRS/SEC/SOX, two Basel III rules.
	require.Len(t, results, 7)
	for _, r := range results {
		assert.NotEmpty(t, r.Standard)
		assert.NotEmpty(t, r.CheckName)
		assert.NotEmpty(t, r.Details)
	}
}
