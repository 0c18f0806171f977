// Package cache provides an optional content-addressed result cache.
//
// Analysis is deterministic for a given (document, figures) input, so a
// completed assessment can be keyed by a canonical hash of that input and
// served again without recomputation. The cache is an outer layer: the
// orchestrator itself stays stateless per call.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gowebpki/jcs"
	"github.com/redis/go-redis/v9"

	"github.com/finsight-labs/analysis-core/pkg/document"
	"github.com/finsight-labs/analysis-core/pkg/orchestrator"
)

// ResultCache stores assessments in Redis. A nil *ResultCache is a no-op,
// so callers can wire it unconditionally.
type ResultCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects a ResultCache to the Redis instance at addr. Empty addr
// returns a nil cache (disabled).
func New(addr string, ttl time.Duration) *ResultCache {
	if addr == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResultCache{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
		ttl: ttl,
	}
}

// Key derives the content address of one analysis input: the SHA-256 of
// the JCS-canonicalized document text hash plus figures. Canonicalization
// makes the key independent of Go map iteration and JSON field ordering.
func Key(doc document.Document, figures *document.FinancialFigures) (string, error) {
	textHash := sha256.Sum256([]byte(doc.Text))
	input := struct {
		TextHash string                     `json:"text_hash"`
		Figures  *document.FinancialFigures `json:"figures"`
	}{
		TextHash: hex.EncodeToString(textHash[:]),
		Figures:  figures,
	}
	raw, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("cache key: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("cache key canonicalize: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return "finsight:analysis:" + hex.EncodeToString(sum[:]), nil
}

// Get returns the cached assessment for key, or (nil, false) on a miss.
func (c *ResultCache) Get(ctx context.Context, key string) (*orchestrator.OverallAssessment, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	var a orchestrator.OverallAssessment
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	return &a, true, nil
}

// Put stores an assessment under key with the configured TTL.
func (c *ResultCache) Put(ctx context.Context, key string, a *orchestrator.OverallAssessment) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}
