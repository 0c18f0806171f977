package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/analysis-core/pkg/cache"
	"github.com/finsight-labs/analysis-core/pkg/document"
)

func TestKey(t *testing.T) {
	doc := document.Document{ID: "d1", Text: "quarterly statement"}
	figures := &document.FinancialFigures{
		Revenue: document.Ptr(1000),
		Equity:  document.Ptr(400),
	}

	t.Run("deterministic", func(t *testing.T) {
		k1, err := cache.Key(doc, figures)
		require.NoError(t, err)
		k2, err := cache.Key(doc, figures)
		require.NoError(t, err)
		assert.Equal(t, k1, k2)
		assert.Contains(t, k1, "finsight:analysis:")
	})

	t.Run("document identity does not affect the key", func(t *testing.T) {
		renamed := doc
		renamed.ID = "d2"
		k1, err := cache.Key(doc, figures)
		require.NoError(t, err)
		k2, err := cache.Key(renamed, figures)
		require.NoError(t, err)
		assert.Equal(t, k1, k2, "key is content-addressed, not ID-addressed")
	})

	t.Run("text changes the key", func(t *testing.T) {
		changed := doc
		changed.Text = "annual statement"
		k1, err := cache.Key(doc, figures)
		require.NoError(t, err)
		k2, err := cache.Key(changed, figures)
		require.NoError(t, err)
		assert.NotEqual(t, k1, k2)
	})

	t.Run("figures change the key", func(t *testing.T) {
		other := &document.FinancialFigures{
			Revenue: document.Ptr(2000),
			Equity:  document.Ptr(400),
		}
		k1, err := cache.Key(doc, figures)
		require.NoError(t, err)
		k2, err := cache.Key(doc, other)
		require.NoError(t, err)
		assert.NotEqual(t, k1, k2)
	})
}

func TestNilCacheIsNoOp(t *testing.T) {
	c := cache.New("", time.Hour)
	require.Nil(t, c)

	// A nil cache must be safe to call.
	got, hit, err := c.Get(context.Background(), "finsight:analysis:x")
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, got)
	assert.NoError(t, c.Put(context.Background(), "finsight:analysis:x", nil))
}
