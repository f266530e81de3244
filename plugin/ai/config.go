package ai

import (
	"errors"
	"time"

	"github.com/chatvise/chatvise/internal/profile"
)

// Config represents AI configuration.
type Config struct {
	Enabled bool

	Embedding     EmbeddingConfig
	Completion    CompletionConfig
	SemanticCache SemanticCacheConfig
}

// EmbeddingConfig represents vector embedding configuration.
type EmbeddingConfig struct {
	Provider       string   // openai (or any OpenAI compatible endpoint)
	Model          string   // text-embedding-3-small
	FallbackModels []string // tried in order when the primary model errors
	Dimensions     int      // 1536
	APIKey         string
	BaseURL        string

	// MaxInputChars is the hard input ceiling per text. Longer inputs are
	// silently truncated, never rejected.
	MaxInputChars int
	// MaxBatchSize is the ceiling of texts per provider call.
	MaxBatchSize int
	// QueryCacheTTL bounds the per-query embedding cache.
	QueryCacheTTL time.Duration
}

// CompletionConfig represents answer generation configuration.
type CompletionConfig struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int     // default: 2048
	Temperature float32 // default: 0.7
}

// SemanticCacheConfig represents semantic response cache configuration.
type SemanticCacheConfig struct {
	Enabled             bool
	SimilarityThreshold float64       // default: 0.92
	MaxSize             int           // default: 1000
	TTL                 time.Duration // default: 7 days
	CleanupInterval     time.Duration // default: 1 hour
}

// NewConfigFromProfile creates AI config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := &Config{
		Enabled: p.AIEnabled,
	}

	if !cfg.Enabled {
		return cfg
	}

	cfg.Embedding = EmbeddingConfig{
		Provider:       p.AIEmbeddingProvider,
		Model:          p.AIEmbeddingModel,
		FallbackModels: p.AIEmbeddingFallback,
		Dimensions:     p.AIEmbeddingDims,
		APIKey:         p.AIOpenAIAPIKey,
		BaseURL:        p.AIOpenAIBaseURL,
		MaxInputChars:  8000,
		MaxBatchSize:   100,
		QueryCacheTTL:  24 * time.Hour,
	}

	cfg.Completion = CompletionConfig{
		Provider:    "openai",
		Model:       p.AICompletionModel,
		APIKey:      p.AIOpenAIAPIKey,
		BaseURL:     p.AIOpenAIBaseURL,
		MaxTokens:   2048,
		Temperature: 0.7,
	}

	cfg.SemanticCache = SemanticCacheConfig{
		Enabled:             p.SemanticCacheEnabled,
		SimilarityThreshold: p.SemanticCacheThreshold,
		MaxSize:             p.SemanticCacheMaxSize,
		TTL:                 7 * 24 * time.Hour,
		CleanupInterval:     time.Hour,
	}

	return cfg
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.Embedding.Provider == "" {
		return errors.New("embedding provider is required")
	}
	if c.Embedding.APIKey == "" {
		return errors.New("embedding API key is required")
	}
	if c.Embedding.Model == "" {
		return errors.New("embedding model is required")
	}
	if c.Embedding.Dimensions <= 0 {
		return errors.New("embedding dimensions must be positive")
	}
	if c.Completion.Model == "" {
		return errors.New("completion model is required")
	}

	return nil
}
