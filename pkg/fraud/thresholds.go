package fraud

// Thresholds are the product-specified detector constants. They were not
// tuned against a labeled dataset, so they are carried as configurable
// defaults rather than empirical values.
type Thresholds struct {
	// TriggerScore is the pattern-local alert threshold: a detector sets
	// Triggered when its score reaches this value.
	TriggerScore float64 `yaml:"trigger_score"`

	// BenfordMinSamples is the minimum number of line items needed before
	// the digit-distribution test is meaningful.
	BenfordMinSamples int `yaml:"benford_min_samples"`

	// DuplicateAmountTolerance is the relative amount window for
	// near-duplicates (0.05 = +/-5%).
	DuplicateAmountTolerance float64 `yaml:"duplicate_amount_tolerance"`
	// DuplicateDateWindowDays is the date window for near-duplicates.
	DuplicateDateWindowDays int `yaml:"duplicate_date_window_days"`
	// DuplicateClusterDays is the window within which a cluster of
	// near-duplicates counts as suspicious.
	DuplicateClusterDays int `yaml:"duplicate_cluster_days"`
	// DuplicateMinCount is the cluster size that raises an alert.
	DuplicateMinCount int `yaml:"duplicate_min_count"`

	// RevenueDipFraction flags a quarter at or below (1 - dip) of the
	// seasonal expectation.
	RevenueDipFraction float64 `yaml:"revenue_dip_fraction"`
	// RevenueSpikeFraction flags a following quarter at or above
	// (1 + spike) of expectation.
	RevenueSpikeFraction float64 `yaml:"revenue_spike_fraction"`

	// ExpenseShortfallFraction flags an expense ratio below this fraction
	// of the industry norm (0.5 = under half the norm).
	ExpenseShortfallFraction float64 `yaml:"expense_shortfall_fraction"`

	// RoundUnit is the round-number divisor. RoundNaturalRatio is the
	// natural expectation for the round-number share of a transaction set.
	RoundUnit         float64 `yaml:"round_unit"`
	RoundNaturalRatio float64 `yaml:"round_natural_ratio"`
}

// DefaultThresholds returns the documented product constants: 15pp Benford
// deviation, +/-5% / +/-3 day duplicate windows, 15%/50% revenue swing,
// 50% expense shortfall, and the 40%/20% round-number split.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TriggerScore:             50,
		BenfordMinSamples:        10,
		DuplicateAmountTolerance: 0.05,
		DuplicateDateWindowDays:  3,
		DuplicateClusterDays:     30,
		DuplicateMinCount:        3,
		RevenueDipFraction:       0.15,
		RevenueSpikeFraction:     0.50,
		ExpenseShortfallFraction: 0.50,
		RoundUnit:                1000,
		RoundNaturalRatio:        0.20,
	}
}
