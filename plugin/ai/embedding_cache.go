package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// ContentHash returns the deduplication key for a text: a SHA-256 digest of
// the lowercased, trimmed content. Texts differing only in surrounding
// whitespace or letter case collapse to the same key.
func ContentHash(text string) string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	digest := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(digest[:])
}

// contentEntry is a content-hash cache entry. The cache is a pure function
// cache (same content always yields the same embedding), so entries live for
// the whole process and are only cleared explicitly.
type contentEntry struct {
	embedding []float32
	originID  string
}

// queryEntry is a query-embedding cache entry, TTL bounded.
type queryEntry struct {
	embedding []float32
	createdAt time.Time
}

// EmbeddingCache holds the two embedding caches shared by all requests:
// a process-lifetime content-hash cache for document deduplication and a
// TTL-bounded query cache. It is safe for concurrent use.
type EmbeddingCache struct {
	mu      sync.RWMutex
	content map[string]contentEntry
	queries map[string]queryEntry

	queryTTL time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewEmbeddingCache creates the cache and starts the query sweep goroutine.
func NewEmbeddingCache(queryTTL time.Duration) *EmbeddingCache {
	if queryTTL <= 0 {
		queryTTL = 24 * time.Hour
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &EmbeddingCache{
		content:  make(map[string]contentEntry),
		queries:  make(map[string]queryEntry),
		queryTTL: queryTTL,
		ctx:      ctx,
		cancel:   cancel,
	}

	c.wg.Add(1)
	go c.sweepLoop()

	return c
}

// Close stops the sweep goroutine.
func (c *EmbeddingCache) Close() {
	c.cancel()
	c.wg.Wait()
}

// GetContent returns the cached embedding for a content hash.
func (c *EmbeddingCache) GetContent(hash string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.content[hash]
	if !ok {
		return nil, false
	}
	return entry.embedding, true
}

// SetContent stores an embedding under a content hash.
func (c *EmbeddingCache) SetContent(hash string, embedding []float32, originID string) {
	c.mu.Lock()
	c.content[hash] = contentEntry{embedding: embedding, originID: originID}
	c.mu.Unlock()
}

// GetQuery returns the cached embedding for a query hash, honoring TTL.
func (c *EmbeddingCache) GetQuery(hash string) ([]float32, bool) {
	c.mu.RLock()
	entry, ok := c.queries[hash]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Since(entry.createdAt) > c.queryTTL {
		c.mu.Lock()
		delete(c.queries, hash)
		c.mu.Unlock()
		return nil, false
	}
	return entry.embedding, true
}

// SetQuery stores a query embedding with the current timestamp.
func (c *EmbeddingCache) SetQuery(hash string, embedding []float32) {
	c.mu.Lock()
	c.queries[hash] = queryEntry{embedding: embedding, createdAt: time.Now()}
	c.mu.Unlock()
}

// Clear drops both caches. Intended for tests.
func (c *EmbeddingCache) Clear() {
	c.mu.Lock()
	c.content = make(map[string]contentEntry)
	c.queries = make(map[string]queryEntry)
	c.mu.Unlock()
}

// Sizes returns the entry counts of the content and query caches.
func (c *EmbeddingCache) Sizes() (content int, queries int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.content), len(c.queries)
}

func (c *EmbeddingCache) sweepLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.sweepExpiredQueries()
		}
	}
}

func (c *EmbeddingCache) sweepExpiredQueries() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for hash, entry := range c.queries {
		if now.Sub(entry.createdAt) > c.queryTTL {
			delete(c.queries, hash)
		}
	}
}
