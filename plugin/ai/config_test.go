package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatvise/chatvise/internal/profile"
)

func TestNewConfigFromProfile(t *testing.T) {
	p := &profile.Profile{
		AIEnabled:           true,
		AIEmbeddingProvider: "openai",
		AIOpenAIAPIKey:      "test-key",
		AIEmbeddingModel:    "text-embedding-3-small",
		AIEmbeddingFallback: []string{"text-embedding-3-large"},
		AIEmbeddingDims:     1536,
		AICompletionModel:   "gpt-4o-mini",

		SemanticCacheEnabled:   true,
		SemanticCacheThreshold: 0.92,
		SemanticCacheMaxSize:   1000,
	}

	cfg := NewConfigFromProfile(p)
	require.True(t, cfg.Enabled)
	assert.Equal(t, "openai", cfg.Embedding.Provider)
	assert.Equal(t, []string{"text-embedding-3-large"}, cfg.Embedding.FallbackModels)
	assert.Equal(t, 1536, cfg.Embedding.Dimensions)
	assert.Equal(t, 0.92, cfg.SemanticCache.SimilarityThreshold)
	assert.NoError(t, cfg.Validate())
}

func TestConfigDisabledSkipsValidation(t *testing.T) {
	cfg := NewConfigFromProfile(&profile.Profile{AIEnabled: false})
	assert.False(t, cfg.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{"missing provider", func(cfg *Config) { cfg.Embedding.Provider = "" }},
		{"missing api key", func(cfg *Config) { cfg.Embedding.APIKey = "" }},
		{"missing model", func(cfg *Config) { cfg.Embedding.Model = "" }},
		{"bad dimensions", func(cfg *Config) { cfg.Embedding.Dimensions = 0 }},
		{"missing completion model", func(cfg *Config) { cfg.Completion.Model = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Enabled: true,
				Embedding: EmbeddingConfig{
					Provider:   "openai",
					Model:      "text-embedding-3-small",
					Dimensions: 1536,
					APIKey:     "test-key",
				},
				Completion: CompletionConfig{Model: "gpt-4o-mini"},
			}
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
