// Package stats is the statistical test library the fraud detectors are
// built on: leading-digit frequency against the Benford reference, Z-scores
// against benchmark populations, and round-number ratios.
//
// All functions are pure. Descriptive statistics delegate to
// montanaflynn/stats.
package stats

import (
	"math"

	mstats "github.com/montanaflynn/stats"
)

// BenfordReference returns the expected leading-digit distribution
// P(d) = log10(1 + 1/d) for d in 1..9, as percentages. Index 0 holds d=1.
func BenfordReference() [9]float64 {
	var ref [9]float64
	for d := 1; d <= 9; d++ {
		ref[d-1] = math.Log10(1+1/float64(d)) * 100
	}
	return ref
}

// LeadingDigit returns the leading significant digit (1..9) of |v|, or 0
// when v is zero or not finite.
func LeadingDigit(v float64) int {
	v = math.Abs(v)
	if v == 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	for v >= 10 {
		v /= 10
	}
	for v < 1 {
		v *= 10
	}
	return int(v)
}

// DigitFrequency returns the observed leading-digit distribution of values,
// as percentages keyed by digit 1..9. Zero values are skipped. An empty or
// all-zero input yields an empty map.
func DigitFrequency(values []float64) map[int]float64 {
	counts := make(map[int]int)
	total := 0
	for _, v := range values {
		d := LeadingDigit(v)
		if d == 0 {
			continue
		}
		counts[d]++
		total++
	}
	freq := make(map[int]float64, len(counts))
	if total == 0 {
		return freq
	}
	for d, c := range counts {
		freq[d] = float64(c) / float64(total) * 100
	}
	return freq
}

// BenfordDeviation returns the sum of absolute deviations, in percentage
// points, between an observed leading-digit distribution and the Benford
// reference. An empty observation returns 0.
func BenfordDeviation(observed map[int]float64) float64 {
	if len(observed) == 0 {
		return 0
	}
	ref := BenfordReference()
	dev := 0.0
	for d := 1; d <= 9; d++ {
		dev += math.Abs(observed[d] - ref[d-1])
	}
	return dev
}

// ZScore returns (value - mean) / stddev. ok is false when stddev is zero,
// in which case the score is meaningless and callers must treat the input
// as insufficient.
func ZScore(value, mean, stddev float64) (z float64, ok bool) {
	if stddev == 0 {
		return 0, false
	}
	return (value - mean) / stddev, true
}

// RoundNumberRatio returns the fraction of values exactly divisible by unit
// (1,000 by default when unit <= 0). Range [0,1]; empty input returns 0.
func RoundNumberRatio(values []float64, unit float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if unit <= 0 {
		unit = 1000
	}
	round := 0
	for _, v := range values {
		if v != 0 && math.Mod(math.Abs(v), unit) == 0 {
			round++
		}
	}
	return float64(round) / float64(len(values))
}

// Mean returns the arithmetic mean, and false for empty input.
func Mean(values []float64) (float64, bool) {
	m, err := mstats.Mean(values)
	if err != nil {
		return 0, false
	}
	return m, true
}

// StdDev returns the population standard deviation, and false for empty
// input.
func StdDev(values []float64) (float64, bool) {
	sd, err := mstats.StandardDeviationPopulation(values)
	if err != nil {
		return 0, false
	}
	return sd, true
}

// Variance returns the population variance, and false for empty input.
func Variance(values []float64) (float64, bool) {
	v, err := mstats.PopulationVariance(values)
	if err != nil {
		return 0, false
	}
	return v, true
}
