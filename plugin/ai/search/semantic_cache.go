package search

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chatvise/chatvise/plugin/ai"
)

// CachedResponse is a complete answer served without rerunning retrieval or
// completion.
type CachedResponse struct {
	Query              string
	Answer             string
	Sources            []*Result
	SuggestedQuestions []string
	TokensUsed         int
	// Similarity is filled on a hit with the match similarity; it is not
	// part of the stored entry.
	Similarity float64
}

type cacheEntry struct {
	response  *CachedResponse
	embedding []float32
	createdAt time.Time
	hitCount  int
}

// SemanticCache caches full responses keyed by query embedding. Lookup is a
// linear cosine scan; at the bounded size the scan is a few thousand dot
// products, far cheaper than the retrieval pipeline it replaces. Entries are
// partitioned per assistant so tenants never see each other's answers.
type SemanticCache struct {
	mu      sync.RWMutex
	entries map[string][]*cacheEntry // assistantID -> insertion-ordered entries

	threshold float64
	maxSize   int
	ttl       time.Duration

	now    func() time.Time
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSemanticCache creates the cache and starts the expiry sweep goroutine.
func NewSemanticCache(cfg *ai.SemanticCacheConfig) *SemanticCache {
	threshold := cfg.SimilarityThreshold
	if threshold <= 0 {
		threshold = 0.92
	}
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = 1000
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval <= 0 {
		cleanupInterval = time.Hour
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &SemanticCache{
		entries:   make(map[string][]*cacheEntry),
		threshold: threshold,
		maxSize:   maxSize,
		ttl:       ttl,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
	}

	c.wg.Add(1)
	go c.sweepLoop(cleanupInterval)

	return c
}

// Close stops the sweep goroutine.
func (c *SemanticCache) Close() {
	c.cancel()
	c.wg.Wait()
}

// FindSimilar returns the best cached response whose query embedding is at
// least threshold-similar to the given one. Entries are scanned in insertion
// order, so equal similarities resolve to the oldest entry deterministically.
// A hit bumps the entry's hit count.
func (c *SemanticCache) FindSimilar(assistantID string, embedding []float32) (*CachedResponse, bool) {
	if ai.IsZeroVector(embedding) {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var best *cacheEntry
	bestSimilarity := 0.0
	for _, entry := range c.entries[assistantID] {
		if now.Sub(entry.createdAt) > c.ttl {
			continue
		}
		similarity := ai.CosineSimilarity(embedding, entry.embedding)
		if similarity >= c.threshold && similarity > bestSimilarity {
			best = entry
			bestSimilarity = similarity
		}
	}
	if best == nil {
		return nil, false
	}

	best.hitCount++
	hit := *best.response
	hit.Similarity = bestSimilarity
	return &hit, true
}

// Set stores a response under its query embedding. The zero sentinel is never
// cached. When the cache is full the least valuable tenth is evicted first.
func (c *SemanticCache) Set(assistantID string, embedding []float32, response *CachedResponse) {
	if ai.IsZeroVector(embedding) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.size() >= c.maxSize {
		c.evictLocked()
	}
	c.entries[assistantID] = append(c.entries[assistantID], &cacheEntry{
		response:  response,
		embedding: embedding,
		createdAt: c.now(),
	})
}

// Size returns the total entry count across all assistants.
func (c *SemanticCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.size()
}

func (c *SemanticCache) size() int {
	total := 0
	for _, entries := range c.entries {
		total += len(entries)
	}
	return total
}

// evictLocked removes the 10% of entries with the lowest value, where value
// is hit count per day of age. Frequently hit entries survive even when old;
// fresh entries get a grace period through the age floor.
func (c *SemanticCache) evictLocked() {
	type scored struct {
		assistantID string
		entry       *cacheEntry
		value       float64
	}

	now := c.now()
	all := []scored{}
	for assistantID, entries := range c.entries {
		for _, entry := range entries {
			ageDays := now.Sub(entry.createdAt).Hours() / 24
			if ageDays < 0.1 {
				ageDays = 0.1
			}
			all = append(all, scored{
				assistantID: assistantID,
				entry:       entry,
				value:       float64(entry.hitCount) / ageDays,
			})
		}
	}

	evictCount := len(all) / 10
	if evictCount < 1 {
		evictCount = 1
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].value < all[j].value
	})

	doomed := map[*cacheEntry]bool{}
	for _, s := range all[:evictCount] {
		doomed[s.entry] = true
	}
	for assistantID, entries := range c.entries {
		kept := entries[:0]
		for _, entry := range entries {
			if !doomed[entry] {
				kept = append(kept, entry)
			}
		}
		if len(kept) == 0 {
			delete(c.entries, assistantID)
			continue
		}
		c.entries[assistantID] = kept
	}
}

func (c *SemanticCache) sweepLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.sweepExpired()
		}
	}
}

func (c *SemanticCache) sweepExpired() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for assistantID, entries := range c.entries {
		kept := entries[:0]
		for _, entry := range entries {
			if now.Sub(entry.createdAt) <= c.ttl {
				kept = append(kept, entry)
			}
		}
		if len(kept) == 0 {
			delete(c.entries, assistantID)
			continue
		}
		c.entries[assistantID] = kept
	}
}
