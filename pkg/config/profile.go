package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/finsight-labs/analysis-core/pkg/fraud"
)

// ThresholdProfile is a YAML-loadable override of the detector constants.
// The documented thresholds are product-specified defaults, not empirically
// tuned values, so deployments may swap them per jurisdiction or industry.
type ThresholdProfile struct {
	Name       string                     `yaml:"name"`
	Thresholds *fraud.Thresholds          `yaml:"thresholds,omitempty"`
	Weights    map[string]float64         `yaml:"weights,omitempty"`
	Benchmarks map[string]fraud.Benchmark `yaml:"benchmarks,omitempty"`
	Expenses   map[string]float64         `yaml:"expense_norms,omitempty"`
}

// LoadProfile reads a threshold profile from path.
func LoadProfile(path string) (*ThresholdProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load threshold profile: %w", err)
	}
	var p ThresholdProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse threshold profile %q: %w", path, err)
	}
	return &p, nil
}

// FraudThresholds returns the profile's thresholds, falling back to the
// defaults when the section is absent.
func (p *ThresholdProfile) FraudThresholds() fraud.Thresholds {
	if p == nil || p.Thresholds == nil {
		return fraud.DefaultThresholds()
	}
	return *p.Thresholds
}

// FraudWeights returns the profile's pattern weights, falling back to the
// defaults. Weight validation stays in fraud.NewAggregator, so a broken
// profile still fails at startup.
func (p *ThresholdProfile) FraudWeights() fraud.Weights {
	if p == nil || len(p.Weights) == 0 {
		return fraud.DefaultWeights()
	}
	w := make(fraud.Weights, len(p.Weights))
	for name, weight := range p.Weights {
		w[fraud.Pattern(name)] = weight
	}
	return w
}
