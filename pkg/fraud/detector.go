package fraud

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/finsight-labs/analysis-core/pkg/document"
	"github.com/finsight-labs/analysis-core/pkg/stats"
)

// Detector runs the six fraud pattern checks. It is stateless apart from
// its configured thresholds and benchmark tables, so one instance can be
// shared across analysis runs.
type Detector struct {
	thresholds   Thresholds
	benchmarks   map[string]Benchmark
	expenseNorms map[string]float64
}

// NewDetector returns a Detector with the supplied thresholds and the
// default benchmark tables.
func NewDetector(t Thresholds) *Detector {
	return &Detector{
		thresholds:   t,
		benchmarks:   DefaultBenchmarks(),
		expenseNorms: DefaultExpenseNorms(),
	}
}

// WithBenchmarks overrides the industry ratio benchmark table.
func (d *Detector) WithBenchmarks(b map[string]Benchmark) *Detector {
	d.benchmarks = b
	return d
}

// WithExpenseNorms overrides the expense-to-revenue norm table.
func (d *Detector) WithExpenseNorms(n map[string]float64) *Detector {
	d.expenseNorms = n
	return d
}

// DetectAll runs every pattern check and returns the six sub-scores in
// fixed order.
func (d *Detector) DetectAll(figures *document.FinancialFigures) []SubScore {
	return []SubScore{
		d.DetectBenford(figures),
		d.DetectDuplicates(figures),
		d.DetectRatioAnomaly(figures),
		d.DetectRevenueRecognition(figures),
		d.DetectExpenseManipulation(figures),
		d.DetectRoundNumbers(figures),
	}
}

func (d *Detector) subScore(p Pattern, score float64, rationale string) SubScore {
	score = clamp(score, 0, 100)
	return SubScore{
		Pattern:   p,
		Score:     score,
		Rationale: rationale,
		Triggered: score >= d.thresholds.TriggerScore,
		HasData:   true,
	}
}

func noData(p Pattern, why string) SubScore {
	return SubScore{Pattern: p, Rationale: why}
}

// DetectBenford compares the leading-digit distribution of all numeric line
// items against the Benford reference and scores the total deviation.
func (d *Detector) DetectBenford(figures *document.FinancialFigures) SubScore {
	items := figures.AllLineItems()
	if len(items) < d.thresholds.BenfordMinSamples {
		return noData(PatternBenford, fmt.Sprintf("insufficient line items for digit analysis (%d, need %d)", len(items), d.thresholds.BenfordMinSamples))
	}
	observed := stats.DigitFrequency(items)
	if len(observed) == 0 {
		return noData(PatternBenford, "no nonzero line items for digit analysis")
	}

	dev := stats.BenfordDeviation(observed)
	ref := stats.BenfordReference()
	worstDigit, worstGap := 0, 0.0
	for digit := 1; digit <= 9; digit++ {
		gap := math.Abs(observed[digit] - ref[digit-1])
		if gap > worstGap {
			worstDigit, worstGap = digit, gap
		}
	}

	rationale := fmt.Sprintf("digit distribution deviates %.1fpp from Benford reference; digit %d observed at %.1f%% vs expected %.1f%%",
		dev, worstDigit, observed[worstDigit], ref[worstDigit-1])
	return d.subScore(PatternBenford, dev*4, rationale)
}

// DetectDuplicates looks for clusters of near-duplicate transactions
// (amount within the tolerance, dates within the pair window, cluster span
// inside the 30-day window) and for closed counterparty cycles.
func (d *Detector) DetectDuplicates(figures *document.FinancialFigures) SubScore {
	if figures == nil || len(figures.Transactions) == 0 {
		return noData(PatternDupes, "no transaction list supplied")
	}
	txns := figures.Transactions

	cluster := d.largestDuplicateCluster(txns)
	cycles := countCounterpartyCycles(txns)

	score := 0.0
	if cluster >= d.thresholds.DuplicateMinCount {
		score += 20 * float64(cluster)
	}
	score += 40 * float64(cycles)

	switch {
	case cluster >= d.thresholds.DuplicateMinCount && cycles > 0:
		return d.subScore(PatternDupes, score, fmt.Sprintf("%d near-duplicate transactions within %d days and %d circular counterparty chain(s)",
			cluster, d.thresholds.DuplicateClusterDays, cycles))
	case cycles > 0:
		return d.subScore(PatternDupes, score, fmt.Sprintf("%d circular counterparty chain(s) detected", cycles))
	case cluster >= d.thresholds.DuplicateMinCount:
		return d.subScore(PatternDupes, score, fmt.Sprintf("%d near-duplicate transactions (amounts within %.0f%%, dates within %d days) inside a %d-day window",
			cluster, d.thresholds.DuplicateAmountTolerance*100, d.thresholds.DuplicateDateWindowDays, d.thresholds.DuplicateClusterDays))
	default:
		return d.subScore(PatternDupes, 0, fmt.Sprintf("no duplicate cluster of %d or more found in %d transactions", d.thresholds.DuplicateMinCount, len(txns)))
	}
}

// largestDuplicateCluster returns the size of the biggest connected set of
// near-duplicate transactions whose overall span fits the cluster window.
func (d *Detector) largestDuplicateCluster(txns []document.Transaction) int {
	n := len(txns)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return txns[idx[a]].Date.Before(txns[idx[b]].Date) })

	pairWindow := time.Duration(d.thresholds.DuplicateDateWindowDays) * 24 * time.Hour
	clusterWindow := time.Duration(d.thresholds.DuplicateClusterDays) * 24 * time.Hour

	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) { parent[find(a)] = find(b) }

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := txns[idx[i]], txns[idx[j]]
			gap := b.Date.Sub(a.Date)
			if gap > pairWindow {
				break // sorted by date, later pairs only grow the gap
			}
			if nearAmount(a.Amount, b.Amount, d.thresholds.DuplicateAmountTolerance) {
				union(idx[i], idx[j])
			}
		}
	}

	sizes := make(map[int][]int)
	for i := 0; i < n; i++ {
		root := find(i)
		sizes[root] = append(sizes[root], i)
	}
	best := 0
	for _, members := range sizes {
		if len(members) < 2 || len(members) <= best {
			continue
		}
		var lo, hi time.Time
		for k, m := range members {
			t := txns[m].Date
			if k == 0 || t.Before(lo) {
				lo = t
			}
			if k == 0 || t.After(hi) {
				hi = t
			}
		}
		if hi.Sub(lo) <= clusterWindow {
			best = len(members)
		}
	}
	return best
}

func nearAmount(a, b, tolerance float64) bool {
	base := math.Max(math.Abs(a), math.Abs(b))
	if base == 0 {
		return true
	}
	return math.Abs(a-b)/base <= tolerance
}

// countCounterpartyCycles counts transactions whose counterparty chain
// revisits a party, e.g. A -> B -> C -> A.
func countCounterpartyCycles(txns []document.Transaction) int {
	cycles := 0
	for _, t := range txns {
		if len(t.CounterpartyChain) < 3 {
			continue
		}
		seen := make(map[string]bool, len(t.CounterpartyChain))
		for _, party := range t.CounterpartyChain {
			if seen[party] {
				cycles++
				break
			}
			seen[party] = true
		}
	}
	return cycles
}

// DetectRatioAnomaly Z-scores each derivable financial ratio against its
// industry benchmark and scores the worst absolute deviation.
func (d *Detector) DetectRatioAnomaly(figures *document.FinancialFigures) SubScore {
	ratios := figures.Ratios()
	if len(ratios) == 0 {
		return noData(PatternRatios, "no financial ratios derivable from supplied figures")
	}

	worstName := ""
	worstZ := 0.0
	worstValue := 0.0
	compared := 0
	for name, value := range ratios {
		bm, ok := d.benchmarks[name]
		if !ok {
			continue
		}
		z, ok := stats.ZScore(value, bm.Mean, bm.StdDev)
		if !ok {
			continue
		}
		compared++
		if compared == 1 || math.Abs(z) > math.Abs(worstZ) {
			worstName, worstZ, worstValue = name, z, value
		}
	}
	if compared == 0 {
		return noData(PatternRatios, "no ratio had a usable industry benchmark")
	}

	bm := d.benchmarks[worstName]
	rationale := fmt.Sprintf("%s of %.2f vs industry mean %.2f (stddev %.2f), Z-score %.1f across %d ratio(s)",
		worstName, worstValue, bm.Mean, bm.StdDev, worstZ, compared)
	return d.subScore(PatternRatios, math.Abs(worstZ)*25, rationale)
}

// DetectRevenueRecognition flags the shifting pattern: a quarter well below
// its seasonal expectation immediately followed by a quarter well above it.
func (d *Detector) DetectRevenueRecognition(figures *document.FinancialFigures) SubScore {
	if figures == nil || len(figures.QuarterlyRevenue) < 4 {
		n := 0
		if figures != nil {
			n = len(figures.QuarterlyRevenue)
		}
		return noData(PatternRevenue, fmt.Sprintf("quarterly revenue series too short for pattern analysis (%d quarters, need 4)", n))
	}
	series := figures.QuarterlyRevenue

	worst := 0.0
	worstQuarter := -1
	worstDip, worstSpike := 0.0, 0.0
	for i := 0; i+1 < len(series); i++ {
		expDip := expectedQuarter(series, i)
		expSpike := expectedQuarter(series, i+1)
		if expDip <= 0 || expSpike <= 0 {
			continue
		}
		dip := 1 - series[i]/expDip
		spike := series[i+1]/expSpike - 1
		if dip >= d.thresholds.RevenueDipFraction && spike >= d.thresholds.RevenueSpikeFraction {
			swing := (dip + spike) * 100
			if swing > worst {
				worst, worstQuarter = swing, i
				worstDip, worstSpike = dip, spike
			}
		}
	}

	if worstQuarter < 0 {
		return d.subScore(PatternRevenue, 0, fmt.Sprintf("no dip-then-spike shifting pattern across %d quarters", len(series)))
	}
	rationale := fmt.Sprintf("quarter %d revenue %.0f%% below expectation followed by quarter %d at %.0f%% above, a shifting pattern",
		worstQuarter+1, worstDip*100, worstQuarter+2, worstSpike*100)
	return d.subScore(PatternRevenue, worst, rationale)
}

// expectedQuarter computes the seasonally-adjusted expectation for quarter
// i: the mean of the other quarters in the same seasonal slot when two full
// years are available, otherwise the leave-one-out mean of the series.
func expectedQuarter(series []float64, i int) float64 {
	var pool []float64
	if len(series) >= 8 {
		for j := range series {
			if j != i && j%4 == i%4 {
				pool = append(pool, series[j])
			}
		}
	}
	if len(pool) == 0 {
		for j := range series {
			if j != i {
				pool = append(pool, series[j])
			}
		}
	}
	m, ok := stats.Mean(pool)
	if !ok {
		return 0
	}
	return m
}

// DetectExpenseManipulation compares each expense category's share of
// revenue against the industry norm. A ratio under half the norm suggests
// missing or mis-capitalized expenses.
func (d *Detector) DetectExpenseManipulation(figures *document.FinancialFigures) SubScore {
	if figures == nil || figures.Revenue == nil || *figures.Revenue <= 0 {
		return noData(PatternExpenses, "revenue unavailable, cannot normalize expense categories")
	}
	if len(figures.Expenses) == 0 {
		return noData(PatternExpenses, "no expense categories supplied")
	}
	revenue := *figures.Revenue

	worst := 0.0
	worstCategory := ""
	worstActual, worstNorm := 0.0, 0.0
	compared := 0
	for category, amount := range figures.Expenses {
		norm, ok := d.expenseNorms[category]
		if !ok || norm <= 0 {
			continue
		}
		compared++
		actual := amount / revenue
		if actual >= norm*d.thresholds.ExpenseShortfallFraction {
			continue
		}
		shortfall := 1 - actual/norm
		if shortfall*100 > worst {
			worst = shortfall * 100
			worstCategory, worstActual, worstNorm = category, actual, norm
		}
	}
	if compared == 0 {
		return noData(PatternExpenses, "no expense category matched an industry norm")
	}
	if worstCategory == "" {
		return d.subScore(PatternExpenses, 0, fmt.Sprintf("all %d expense categories within expected range of industry norms", compared))
	}

	missing := (worstNorm - worstActual) * revenue
	rationale := fmt.Sprintf("%s expenses at %.1f%% of revenue vs industry norm %.1f%%; roughly %.0f possibly missing or capitalized",
		worstCategory, worstActual*100, worstNorm*100, missing)
	return d.subScore(PatternExpenses, worst, rationale)
}

// DetectRoundNumbers scores the excess of round transaction amounts over
// the natural expectation.
func (d *Detector) DetectRoundNumbers(figures *document.FinancialFigures) SubScore {
	amounts := figures.TransactionAmounts()
	if len(amounts) < 5 {
		return noData(PatternRound, fmt.Sprintf("too few transactions for round-number analysis (%d, need 5)", len(amounts)))
	}

	ratio := stats.RoundNumberRatio(amounts, d.thresholds.RoundUnit)
	excess := ratio - d.thresholds.RoundNaturalRatio
	score := 0.0
	if excess > 0 {
		score = excess * 250
	}
	rationale := fmt.Sprintf("%.0f%% of %d transaction amounts are multiples of %.0f vs natural expectation under %.0f%%",
		ratio*100, len(amounts), d.thresholds.RoundUnit, d.thresholds.RoundNaturalRatio*100)
	return d.subScore(PatternRound, score, rationale)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
