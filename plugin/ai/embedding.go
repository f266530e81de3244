package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// EmbeddingService is the vector embedding service interface.
//
// EmbedQuery is the best-effort path: it never returns a provider error.
// When every backend model fails it returns the all-zero sentinel vector and
// callers switch to text-only retrieval. EmbedDocuments is the indexing path:
// silently degrading a whole corpus to zero vectors is worse than rejecting
// it, so provider exhaustion is returned as an error.
type EmbeddingService interface {
	// EmbedQuery generates a vector for a search query, consulting the
	// query cache first. The returned error is reserved for context
	// cancellation; provider failure yields the zero sentinel instead.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedDocuments generates vectors for a batch of document texts with
	// content-hash deduplication. Order and length preserving: result[i]
	// is the embedding of texts[i], and identical texts share the
	// identical vector.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector dimension.
	Dimensions() int
}

// embeddingProvider is one backend model in the fallback chain.
type embeddingProvider struct {
	model string
}

type embeddingService struct {
	client    *openai.Client
	providers []embeddingProvider
	cache     *EmbeddingCache
	limiter   *rate.Limiter

	dimensions    int
	maxInputChars int
	maxBatchSize  int

	// embedFn performs one provider call; replaced in tests.
	embedFn func(ctx context.Context, model string, texts []string) ([][]float32, error)
}

// NewEmbeddingService creates a new EmbeddingService.
func NewEmbeddingService(cfg *EmbeddingConfig, cache *EmbeddingCache) (EmbeddingService, error) {
	if cfg.Provider != "openai" {
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
	if cache == nil {
		return nil, errors.New("embedding cache is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	providers := []embeddingProvider{{model: cfg.Model}}
	for _, model := range cfg.FallbackModels {
		providers = append(providers, embeddingProvider{model: model})
	}

	maxInputChars := cfg.MaxInputChars
	if maxInputChars <= 0 {
		maxInputChars = 8000
	}
	maxBatchSize := cfg.MaxBatchSize
	if maxBatchSize <= 0 {
		maxBatchSize = 100
	}

	s := &embeddingService{
		client:        openai.NewClientWithConfig(clientConfig),
		providers:     providers,
		cache:         cache,
		limiter:       rate.NewLimiter(rate.Limit(10), 20),
		dimensions:    cfg.Dimensions,
		maxInputChars: maxInputChars,
		maxBatchSize:  maxBatchSize,
	}
	s.embedFn = s.createEmbeddings
	return s, nil
}

func (s *embeddingService) Dimensions() int {
	return s.dimensions
}

func (s *embeddingService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	// The query cache is keyed by the raw text, before any truncation or
	// preprocessing, so repeated questions hit regardless of pipeline stage.
	hash := ContentHash(text)
	if cached, ok := s.cache.GetQuery(hash); ok {
		return cached, nil
	}

	vectors, err := s.embedWithFallback(ctx, []string{s.truncate(text)})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.WarnContext(ctx, "all embedding models failed, returning zero vector",
			"error", err,
			"query_length", len(text),
		)
		return ZeroVector(s.dimensions), nil
	}

	s.cache.SetQuery(hash, vectors[0])
	return vectors[0], nil
}

func (s *embeddingService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	// Partition inputs into unique-by-hash groups.
	hashes := make([]string, len(texts))
	uniqueTexts := []string{}
	uniqueHashes := []string{}
	seen := map[string]bool{}
	for i, text := range texts {
		hash := ContentHash(text)
		hashes[i] = hash
		if !seen[hash] {
			seen[hash] = true
			uniqueTexts = append(uniqueTexts, text)
			uniqueHashes = append(uniqueHashes, hash)
		}
	}

	// Split uniques into cached and to-embed.
	resolved := make(map[string][]float32, len(uniqueHashes))
	pendingTexts := []string{}
	pendingHashes := []string{}
	for i, hash := range uniqueHashes {
		if cached, ok := s.cache.GetContent(hash); ok {
			resolved[hash] = cached
			continue
		}
		pendingTexts = append(pendingTexts, s.truncate(uniqueTexts[i]))
		pendingHashes = append(pendingHashes, hash)
	}

	// One provider round for everything uncached. Exhaustion is a hard
	// failure on this path.
	for start := 0; start < len(pendingTexts); start += s.maxBatchSize {
		end := min(start+s.maxBatchSize, len(pendingTexts))
		vectors, err := s.embedWithFallback(ctx, pendingTexts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch failed: %w", err)
		}
		for i, vector := range vectors {
			hash := pendingHashes[start+i]
			resolved[hash] = vector
			s.cache.SetContent(hash, vector, "")
		}
	}

	// Reconstruct positionally through the hash index.
	results := make([][]float32, len(texts))
	for i, hash := range hashes {
		results[i] = resolved[hash]
	}
	return results, nil
}

// embedWithFallback folds over the provider chain, trying each model in
// order until one succeeds.
func (s *embeddingService) embedWithFallback(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for _, provider := range s.providers {
		vectors, err := s.embedFn(ctx, provider.model, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err
		slog.WarnContext(ctx, "embedding model failed, trying next",
			"model", provider.model,
			"error", err,
		)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("all %d embedding models exhausted: %w", len(s.providers), lastErr)
}

func (s *embeddingService) createEmbeddings(ctx context.Context, model string, texts []string) ([][]float32, error) {
	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(model),
		Dimensions: s.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response size mismatch: got %d, want %d", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		vectors[i] = data.Embedding
	}
	return vectors, nil
}

func (s *embeddingService) truncate(text string) string {
	if len(text) > s.maxInputChars {
		return text[:s.maxInputChars]
	}
	return text
}

// ZeroVector returns the sentinel vector meaning "embedding generation
// degraded or unavailable". It is never a legitimate embedding.
func ZeroVector(dimensions int) []float32 {
	return make([]float32, dimensions)
}

// IsZeroVector reports whether a vector is the degradation sentinel.
func IsZeroVector(vector []float32) bool {
	if len(vector) == 0 {
		return true
	}
	for _, v := range vector {
		if v != 0 {
			return false
		}
	}
	return true
}

// CosineSimilarity computes the normalized dot product of two vectors.
// Returns 0 for mismatched or zero-norm inputs.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
