package fraud

import "github.com/finsight-labs/analysis-core/pkg/document"

// Benchmark is an industry reference population for one financial ratio.
type Benchmark struct {
	Mean   float64 `yaml:"mean"`
	StdDev float64 `yaml:"stddev"`
}

// DefaultBenchmarks returns the industry reference table the ratio anomaly
// detector compares against. The debt/equity row matches the documented
// example: mean 1.8, stddev 0.84.
func DefaultBenchmarks() map[string]Benchmark {
	return map[string]Benchmark{
		document.RatioDebtToEquity:   {Mean: 1.8, StdDev: 0.84},
		document.RatioCurrent:        {Mean: 1.9, StdDev: 0.55},
		document.RatioNetMargin:      {Mean: 0.08, StdDev: 0.045},
		document.RatioAssetTurnover:  {Mean: 0.9, StdDev: 0.35},
		document.RatioDaysReceivable: {Mean: 45, StdDev: 15},
	}
}

// DefaultExpenseNorms returns the expected expense-category-to-revenue
// ratios the expense manipulation detector compares against.
func DefaultExpenseNorms() map[string]float64 {
	return map[string]float64{
		"marketing": 0.10,
		"rnd":       0.08,
		"admin":     0.12,
		"cogs":      0.55,
		"payroll":   0.25,
	}
}
