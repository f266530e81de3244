package profile

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where chatvise stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// AI configuration
	AIEnabled           bool     // CHATVISE_AI_ENABLED
	AIEmbeddingProvider string   // CHATVISE_AI_EMBEDDING_PROVIDER (default: openai)
	AIOpenAIAPIKey      string   // CHATVISE_AI_OPENAI_API_KEY
	AIOpenAIBaseURL     string   // CHATVISE_AI_OPENAI_BASE_URL (default: https://api.openai.com/v1)
	AIEmbeddingModel    string   // CHATVISE_AI_EMBEDDING_MODEL (default: text-embedding-3-small)
	AIEmbeddingFallback []string // CHATVISE_AI_EMBEDDING_FALLBACK_MODELS (comma separated)
	AIEmbeddingDims     int      // CHATVISE_AI_EMBEDDING_DIMENSIONS (default: 1536)
	AICompletionModel   string   // CHATVISE_AI_COMPLETION_MODEL (default: gpt-4o-mini)

	// Semantic cache configuration
	SemanticCacheEnabled   bool    // CHATVISE_SEMANTIC_CACHE_ENABLED (default: true)
	SemanticCacheThreshold float64 // CHATVISE_SEMANTIC_CACHE_THRESHOLD (default: 0.92)
	SemanticCacheMaxSize   int     // CHATVISE_SEMANTIC_CACHE_MAX_SIZE (default: 1000)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if AI is enabled and an API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && p.AIOpenAIAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1"
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getFloatEnv(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.Mode = getEnvOrDefault("CHATVISE_MODE", p.Mode)
	p.Addr = getEnvOrDefault("CHATVISE_ADDR", p.Addr)
	p.Port = getIntEnv("CHATVISE_PORT", p.Port)
	p.Data = getEnvOrDefault("CHATVISE_DATA", p.Data)
	p.DSN = getEnvOrDefault("CHATVISE_DSN", p.DSN)
	p.Driver = getEnvOrDefault("CHATVISE_DRIVER", p.Driver)

	p.AIEnabled = getBoolEnv("CHATVISE_AI_ENABLED", p.AIEnabled)
	p.AIEmbeddingProvider = getEnvOrDefault("CHATVISE_AI_EMBEDDING_PROVIDER", "openai")
	p.AIOpenAIAPIKey = getEnvOrDefault("CHATVISE_AI_OPENAI_API_KEY", p.AIOpenAIAPIKey)
	p.AIOpenAIBaseURL = getEnvOrDefault("CHATVISE_AI_OPENAI_BASE_URL", "https://api.openai.com/v1")
	p.AIEmbeddingModel = getEnvOrDefault("CHATVISE_AI_EMBEDDING_MODEL", "text-embedding-3-small")
	p.AIEmbeddingDims = getIntEnv("CHATVISE_AI_EMBEDDING_DIMENSIONS", 1536)
	p.AICompletionModel = getEnvOrDefault("CHATVISE_AI_COMPLETION_MODEL", "gpt-4o-mini")

	if fallback := os.Getenv("CHATVISE_AI_EMBEDDING_FALLBACK_MODELS"); fallback != "" {
		for _, model := range strings.Split(fallback, ",") {
			if model = strings.TrimSpace(model); model != "" {
				p.AIEmbeddingFallback = append(p.AIEmbeddingFallback, model)
			}
		}
	}

	p.SemanticCacheEnabled = getBoolEnv("CHATVISE_SEMANTIC_CACHE_ENABLED", true)
	p.SemanticCacheThreshold = getFloatEnv("CHATVISE_SEMANTIC_CACHE_THRESHOLD", 0.92)
	p.SemanticCacheMaxSize = getIntEnv("CHATVISE_SEMANTIC_CACHE_MAX_SIZE", 1000)
}

// Validate validates the profile.
func (p *Profile) Validate() error {
	if p.Mode != "prod" && p.Mode != "dev" && p.Mode != "demo" {
		p.Mode = "dev"
	}

	switch p.Driver {
	case "sqlite", "postgres":
	case "":
		p.Driver = "sqlite"
	default:
		return errors.Errorf("unsupported database driver: %s", p.Driver)
	}

	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("DSN is required for the postgres driver")
	}

	if p.Port < 0 || p.Port > 65535 {
		return fmt.Errorf("invalid port: %d", p.Port)
	}

	if p.AIEmbeddingDims <= 0 {
		p.AIEmbeddingDims = 1536
	}

	return nil
}

// New creates a profile from environment with defaults applied.
func New() (*Profile, error) {
	p := &Profile{
		Mode:    "dev",
		Addr:    "",
		Port:    8082,
		Data:    "",
		Driver:  "sqlite",
		Version: "0.4.0",
	}
	p.FromEnv()
	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid profile")
	}
	return p, nil
}
