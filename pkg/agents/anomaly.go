package agents

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/finsight-labs/analysis-core/pkg/fraud"
	"github.com/finsight-labs/analysis-core/pkg/stats"
)

// Anomaly runs the general statistical outlier checks: ratio Z-scores
// against benchmarks, transaction amounts more than two deviations from
// their own mean, and lexical risk signals. These are descriptive findings,
// distinct from the fraud agent's verdict.
type Anomaly struct {
	benchmarks map[string]fraud.Benchmark
}

func NewAnomaly() *Anomaly {
	return &Anomaly{benchmarks: fraud.DefaultBenchmarks()}
}

func (a *Anomaly) Type() Type { return TypeAnomaly }

func (a *Anomaly) Run(_ context.Context, in Input) Result {
	return timed(TypeAnomaly, func() ([]Finding, float64) {
		var findings []Finding
		signals := 0

		ratios := in.Figures.Ratios()
		names := make([]string, 0, len(ratios))
		for name := range ratios {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			bm, ok := a.benchmarks[name]
			if !ok {
				continue
			}
			z, ok := stats.ZScore(ratios[name], bm.Mean, bm.StdDev)
			if !ok {
				continue
			}
			signals++
			if math.Abs(z) > 2 {
				findings = append(findings, NewFinding(fmt.Sprintf(
					"%s of %.2f is %.1f standard deviations from the industry mean %.2f",
					name, ratios[name], z, bm.Mean), 88))
			}
		}

		amounts := in.Figures.TransactionAmounts()
		if len(amounts) >= 5 {
			signals++
			mean, _ := stats.Mean(amounts)
			sd, _ := stats.StdDev(amounts)
			if sd > 0 {
				outliers := 0
				for _, v := range amounts {
					if math.Abs(v-mean) > 2*sd {
						outliers++
					}
				}
				if outliers > 0 {
					findings = append(findings, NewFinding(fmt.Sprintf(
						"%d transaction amount(s) lie more than two deviations from the mean %.2f", outliers, mean), 82))
				}
			}
		}

		if in.Extraction != nil && len(in.Extraction.RiskKeywords) > 0 {
			signals++
			findings = append(findings, NewFinding(fmt.Sprintf(
				"risk-related language present: %s", strings.Join(in.Extraction.RiskKeywords, ", ")), 70))
		}

		if signals == 0 {
			findings = append(findings, NewFinding(
				"insufficient data for statistical outlier checks", 45))
			return findings, 0.4
		}

		confidence := 0.6 + 0.1*float64(signals)
		if confidence > 0.9 {
			confidence = 0.9
		}
		return findings, confidence
	})
}
