package fraud_test

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/analysis-core/pkg/document"
	"github.com/finsight-labs/analysis-core/pkg/fraud"
)

func day(n int) time.Time {
	return time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

// benfordLedger builds n line items drawn log-uniformly, which follow the
// reference distribution closely.
func benfordLedger(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	items := make([]float64, n)
	for i := range items {
		items[i] = math.Pow(10, rng.Float64()*5)
	}
	return items
}

func TestDetectBenford(t *testing.T) {
	d := fraud.NewDetector(fraud.DefaultThresholds())

	t.Run("natural ledger stays quiet", func(t *testing.T) {
		sub := d.DetectBenford(&document.FinancialFigures{LineItems: benfordLedger(2000, 7)})
		assert.True(t, sub.HasData)
		assert.False(t, sub.Triggered)
		assert.Less(t, sub.Score, 25.0)
	})

	t.Run("fabricated ledger triggers", func(t *testing.T) {
		items := make([]float64, 200)
		for i := range items {
			items[i] = 8000 + float64(i) // every leading digit is 8
		}
		sub := d.DetectBenford(&document.FinancialFigures{LineItems: items})
		assert.True(t, sub.HasData)
		assert.True(t, sub.Triggered)
		assert.Equal(t, 100.0, sub.Score, "deviation caps the score")
		assert.Contains(t, sub.Rationale, "digit 8")
	})

	t.Run("too few line items is no evidence, not clean", func(t *testing.T) {
		sub := d.DetectBenford(&document.FinancialFigures{LineItems: []float64{100, 200, 300}})
		assert.False(t, sub.HasData)
		assert.False(t, sub.Triggered)
		assert.Zero(t, sub.Score)
		assert.Contains(t, sub.Rationale, "insufficient")
	})
}

func TestDetectDuplicates(t *testing.T) {
	d := fraud.NewDetector(fraud.DefaultThresholds())

	t.Run("three near-duplicates inside the window trigger", func(t *testing.T) {
		figures := &document.FinancialFigures{Transactions: []document.Transaction{
			{Amount: 10000, Date: day(0)},
			{Amount: 10200, Date: day(1)}, // within 5% and 3 days
			{Amount: 9900, Date: day(2)},
			{Amount: 55000, Date: day(10)},
		}}
		sub := d.DetectDuplicates(figures)
		assert.True(t, sub.HasData)
		assert.True(t, sub.Triggered)
		assert.GreaterOrEqual(t, sub.Score, 60.0)
		assert.Contains(t, sub.Rationale, "3 near-duplicate")
	})

	t.Run("same amounts spread over sixty days do not trigger", func(t *testing.T) {
		figures := &document.FinancialFigures{Transactions: []document.Transaction{
			{Amount: 10000, Date: day(0)},
			{Amount: 10000, Date: day(30)},
			{Amount: 10000, Date: day(60)},
		}}
		sub := d.DetectDuplicates(figures)
		assert.True(t, sub.HasData)
		assert.False(t, sub.Triggered)
		assert.Zero(t, sub.Score)
	})

	t.Run("circular counterparty chains score without duplicates", func(t *testing.T) {
		figures := &document.FinancialFigures{Transactions: []document.Transaction{
			{Amount: 5000, Date: day(0), CounterpartyChain: []string{"Acme", "Globex", "Acme"}},
			{Amount: 7000, Date: day(20), CounterpartyChain: []string{"Initech", "Hooli", "Initech"}},
		}}
		sub := d.DetectDuplicates(figures)
		assert.True(t, sub.Triggered)
		assert.InDelta(t, 80.0, sub.Score, 0.01)
		assert.Contains(t, sub.Rationale, "circular")
	})

	t.Run("no transactions is no evidence", func(t *testing.T) {
		sub := d.DetectDuplicates(&document.FinancialFigures{})
		assert.False(t, sub.HasData)
		assert.Zero(t, sub.Score)
	})
}

func TestDetectRatioAnomaly(t *testing.T) {
	d := fraud.NewDetector(fraud.DefaultThresholds())

	t.Run("industry outlier debt to equity", func(t *testing.T) {
		// 4.5 against mean 1.8, stddev 0.84: Z ~ 3.21, score ~ 80.
		figures := &document.FinancialFigures{
			TotalDebt: document.Ptr(4500),
			Equity:    document.Ptr(1000),
		}
		sub := d.DetectRatioAnomaly(figures)
		assert.True(t, sub.HasData)
		assert.True(t, sub.Triggered)
		assert.InDelta(t, 80.4, sub.Score, 0.5)
		assert.Contains(t, sub.Rationale, "debt_to_equity")
	})

	t.Run("ratios near benchmark stay quiet", func(t *testing.T) {
		figures := &document.FinancialFigures{
			TotalDebt: document.Ptr(1800),
			Equity:    document.Ptr(1000),
			Revenue:   document.Ptr(10000),
			NetIncome: document.Ptr(800),
		}
		sub := d.DetectRatioAnomaly(figures)
		assert.True(t, sub.HasData)
		assert.False(t, sub.Triggered)
	})

	t.Run("liabilities stand in when total debt is absent", func(t *testing.T) {
		figures := &document.FinancialFigures{
			Liabilities: document.Ptr(4500),
			Equity:      document.Ptr(1000),
		}
		sub := d.DetectRatioAnomaly(figures)
		assert.True(t, sub.Triggered)
	})

	t.Run("no derivable ratio is no evidence", func(t *testing.T) {
		sub := d.DetectRatioAnomaly(&document.FinancialFigures{Revenue: document.Ptr(100)})
		assert.False(t, sub.HasData)
	})
}

func TestDetectRevenueRecognition(t *testing.T) {
	d := fraud.NewDetector(fraud.DefaultThresholds())

	t.Run("dip then spike triggers", func(t *testing.T) {
		figures := &document.FinancialFigures{
			QuarterlyRevenue: []float64{100, 100, 40, 180, 100, 100},
		}
		sub := d.DetectRevenueRecognition(figures)
		assert.True(t, sub.HasData)
		assert.True(t, sub.Triggered)
		assert.Contains(t, sub.Rationale, "shifting pattern")
	})

	t.Run("steady growth does not trigger", func(t *testing.T) {
		figures := &document.FinancialFigures{
			QuarterlyRevenue: []float64{100, 105, 110, 116, 122, 128},
		}
		sub := d.DetectRevenueRecognition(figures)
		assert.True(t, sub.HasData)
		assert.False(t, sub.Triggered)
		assert.Zero(t, sub.Score)
	})

	t.Run("short series is no evidence", func(t *testing.T) {
		sub := d.DetectRevenueRecognition(&document.FinancialFigures{QuarterlyRevenue: []float64{100, 120}})
		assert.False(t, sub.HasData)
		assert.Contains(t, sub.Rationale, "2 quarters")
	})
}

func TestDetectExpenseManipulation(t *testing.T) {
	d := fraud.NewDetector(fraud.DefaultThresholds())

	t.Run("marketing far under norm triggers", func(t *testing.T) {
		figures := &document.FinancialFigures{
			Revenue:  document.Ptr(1000000.0),
			Expenses: map[string]float64{"marketing": 20000}, // 2% vs 10% norm
		}
		sub := d.DetectExpenseManipulation(figures)
		assert.True(t, sub.HasData)
		assert.True(t, sub.Triggered)
		assert.InDelta(t, 80.0, sub.Score, 0.01)
		assert.Contains(t, sub.Rationale, "marketing")
		assert.Contains(t, sub.Rationale, "80000", "missing amount estimate")
	})

	t.Run("expenses within range stay quiet", func(t *testing.T) {
		figures := &document.FinancialFigures{
			Revenue: document.Ptr(1000000.0),
			Expenses: map[string]float64{
				"marketing": 95000,
				"admin":     110000,
			},
		}
		sub := d.DetectExpenseManipulation(figures)
		assert.True(t, sub.HasData)
		assert.False(t, sub.Triggered)
		assert.Zero(t, sub.Score)
	})

	t.Run("missing revenue is no evidence", func(t *testing.T) {
		sub := d.DetectExpenseManipulation(&document.FinancialFigures{
			Expenses: map[string]float64{"marketing": 100},
		})
		assert.False(t, sub.HasData)
		assert.Contains(t, sub.Rationale, "revenue unavailable")
	})

	t.Run("unrecognized categories are no evidence", func(t *testing.T) {
		sub := d.DetectExpenseManipulation(&document.FinancialFigures{
			Revenue:  document.Ptr(1000.0),
			Expenses: map[string]float64{"exotic": 10},
		})
		assert.False(t, sub.HasData)
	})
}

func TestDetectRoundNumbers(t *testing.T) {
	d := fraud.NewDetector(fraud.DefaultThresholds())

	txns := func(amounts ...float64) *document.FinancialFigures {
		f := &document.FinancialFigures{}
		for i, a := range amounts {
			f.Transactions = append(f.Transactions, document.Transaction{
				Amount: a, Date: day(i),
			})
		}
		return f
	}

	t.Run("45 percent round triggers", func(t *testing.T) {
		var amounts []float64
		for i := 0; i < 9; i++ {
			amounts = append(amounts, 1000*float64(i+1)) // round
		}
		for i := 0; i < 11; i++ {
			amounts = append(amounts, 1234.56+float64(i)) // not round
		}
		sub := d.DetectRoundNumbers(txns(amounts...))
		assert.True(t, sub.HasData)
		assert.True(t, sub.Triggered)
		assert.InDelta(t, (0.45-0.20)*250, sub.Score, 0.01)
	})

	t.Run("10 percent round does not trigger", func(t *testing.T) {
		var amounts []float64
		amounts = append(amounts, 1000, 2000)
		for i := 0; i < 18; i++ {
			amounts = append(amounts, 1501.25+float64(i))
		}
		sub := d.DetectRoundNumbers(txns(amounts...))
		assert.True(t, sub.HasData)
		assert.False(t, sub.Triggered)
		assert.Zero(t, sub.Score)
	})

	t.Run("too few transactions is no evidence", func(t *testing.T) {
		sub := d.DetectRoundNumbers(txns(1000, 2000, 3000))
		assert.False(t, sub.HasData)
	})
}

func TestDetectAll_FixedOrder(t *testing.T) {
	d := fraud.NewDetector(fraud.DefaultThresholds())
	subs := d.DetectAll(&document.FinancialFigures{})
	require.Len(t, subs, 6)
	for i, p := range fraud.Patterns() {
		assert.Equal(t, p, subs[i].Pattern, fmt.Sprintf("position %d", i))
	}
}
