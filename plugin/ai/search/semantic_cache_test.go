package search

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatvise/chatvise/plugin/ai"
)

func newTestSemanticCache(t *testing.T, maxSize int) *SemanticCache {
	t.Helper()
	c := NewSemanticCache(&ai.SemanticCacheConfig{
		Enabled:             true,
		SimilarityThreshold: 0.92,
		MaxSize:             maxSize,
		TTL:                 7 * 24 * time.Hour,
		CleanupInterval:     time.Hour,
	})
	t.Cleanup(c.Close)
	return c
}

func TestSemanticCacheSelfSimilarityHit(t *testing.T) {
	c := newTestSemanticCache(t, 100)

	embedding := []float32{0.6, 0.8, 0, 0}
	c.Set("asst-1", embedding, &CachedResponse{Query: "wat zijn de prijzen?", Answer: "Vanaf 49 euro."})

	hit, ok := c.FindSimilar("asst-1", embedding)
	require.True(t, ok)
	assert.Equal(t, "Vanaf 49 euro.", hit.Answer)
	assert.InDelta(t, 1.0, hit.Similarity, 1e-6)
}

func TestSemanticCacheBelowThresholdMisses(t *testing.T) {
	c := newTestSemanticCache(t, 100)

	c.Set("asst-1", []float32{1, 0, 0, 0}, &CachedResponse{Answer: "a"})

	// Orthogonal embedding: similarity 0.
	_, ok := c.FindSimilar("asst-1", []float32{0, 1, 0, 0})
	assert.False(t, ok)
}

func TestSemanticCacheIsTenantPartitioned(t *testing.T) {
	c := newTestSemanticCache(t, 100)

	embedding := []float32{1, 0, 0, 0}
	c.Set("asst-1", embedding, &CachedResponse{Answer: "tenant one"})

	_, ok := c.FindSimilar("asst-2", embedding)
	assert.False(t, ok)
}

func TestSemanticCacheIgnoresZeroVector(t *testing.T) {
	c := newTestSemanticCache(t, 100)

	c.Set("asst-1", []float32{0, 0, 0, 0}, &CachedResponse{Answer: "never stored"})
	assert.Equal(t, 0, c.Size())

	_, ok := c.FindSimilar("asst-1", []float32{0, 0, 0, 0})
	assert.False(t, ok)
}

func TestSemanticCacheTTLExpiry(t *testing.T) {
	c := newTestSemanticCache(t, 100)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	embedding := []float32{1, 0, 0, 0}
	c.Set("asst-1", embedding, &CachedResponse{Answer: "a"})

	c.now = func() time.Time { return base.Add(8 * 24 * time.Hour) }
	_, ok := c.FindSimilar("asst-1", embedding)
	assert.False(t, ok)

	c.sweepExpired()
	assert.Equal(t, 0, c.Size())
}

func TestSemanticCacheEvictionPrefersLowValueEntries(t *testing.T) {
	c := newTestSemanticCache(t, 10)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	// orthogonal-ish embeddings so lookups only hit their own entry
	embeddingFor := func(i int) []float32 {
		v := make([]float32, 10)
		v[i] = 1
		return v
	}

	for i := 0; i < 10; i++ {
		c.Set("asst-1", embeddingFor(i), &CachedResponse{Answer: fmt.Sprintf("answer-%d", i)})
	}

	// Entry 0 is hot, the rest are cold.
	c.now = func() time.Time { return base.Add(24 * time.Hour) }
	for i := 0; i < 5; i++ {
		_, ok := c.FindSimilar("asst-1", embeddingFor(0))
		require.True(t, ok)
	}

	// Inserting at capacity evicts the lowest-value tenth, never the hot entry.
	c.Set("asst-1", []float32{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}, &CachedResponse{Answer: "new"})
	assert.Equal(t, 10, c.Size())

	hit, ok := c.FindSimilar("asst-1", embeddingFor(0))
	require.True(t, ok)
	assert.Equal(t, "answer-0", hit.Answer)
}

func TestSemanticCacheHitCountIncrements(t *testing.T) {
	c := newTestSemanticCache(t, 100)

	embedding := []float32{1, 0, 0, 0}
	c.Set("asst-1", embedding, &CachedResponse{Answer: "a"})

	for i := 0; i < 3; i++ {
		_, ok := c.FindSimilar("asst-1", embedding)
		require.True(t, ok)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	require.Len(t, c.entries["asst-1"], 1)
	assert.Equal(t, 3, c.entries["asst-1"][0].hitCount)
}
