package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/analysis-core/pkg/config"
	"github.com/finsight-labs/analysis-core/pkg/fraud"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "LOG_LEVEL", "DB_PATH", "REDIS_ADDR", "THRESHOLD_PROFILE"} {
		t.Setenv(key, "")
	}
	cfg := config.Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "finsight.db", cfg.DBPath)
	assert.Empty(t, cfg.RedisAddr, "cache is disabled by default")
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("DB_PATH", "/tmp/analysis.db")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg := config.Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "/tmp/analysis.db", cfg.DBPath)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoadProfile(t *testing.T) {
	t.Run("full profile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "profile.yaml")
		content := `
name: strict-eu
thresholds:
  trigger_score: 40
  benford_min_samples: 20
  duplicate_amount_tolerance: 0.03
  duplicate_date_window_days: 2
  duplicate_cluster_days: 14
  duplicate_min_count: 3
  revenue_dip_fraction: 0.10
  revenue_spike_fraction: 0.40
  expense_shortfall_fraction: 0.60
  round_unit: 500
  round_natural_ratio: 0.15
weights:
  benford_law: 0.25
  duplicate_transactions: 0.15
  ratio_anomaly: 0.25
  revenue_recognition: 0.15
  expense_manipulation: 0.15
  round_numbers: 0.05
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		p, err := config.LoadProfile(path)
		require.NoError(t, err)
		assert.Equal(t, "strict-eu", p.Name)

		th := p.FraudThresholds()
		assert.Equal(t, 40.0, th.TriggerScore)
		assert.Equal(t, 20, th.BenfordMinSamples)
		assert.Equal(t, 500.0, th.RoundUnit)

		w := p.FraudWeights()
		assert.Equal(t, 0.25, w[fraud.PatternBenford])
		_, err = fraud.NewAggregator(w)
		assert.NoError(t, err, "profile weights must validate")
	})

	t.Run("empty sections fall back to defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "profile.yaml")
		require.NoError(t, os.WriteFile(path, []byte("name: bare\n"), 0o600))

		p, err := config.LoadProfile(path)
		require.NoError(t, err)
		assert.Equal(t, fraud.DefaultThresholds(), p.FraudThresholds())
		assert.Equal(t, fraud.DefaultWeights(), p.FraudWeights())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadProfile("/no/such/profile.yaml")
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("name: [unclosed"), 0o600))
		_, err := config.LoadProfile(path)
		assert.Error(t, err)
	})
}
