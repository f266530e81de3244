// Package v1 implements the JSON HTTP API.
package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/chatvise/chatvise/internal/profile"
	"github.com/chatvise/chatvise/plugin/ai"
	"github.com/chatvise/chatvise/plugin/ai/search"
	"github.com/chatvise/chatvise/store"
)

type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store

	Searcher          *search.Searcher
	CompletionService ai.CompletionService
	EmbeddingService  ai.EmbeddingService
	SemanticCache     *search.SemanticCache
}

// NewAPIV1Service creates the v1 API service. CompletionService,
// EmbeddingService and SemanticCache may be nil when AI is disabled; search
// still runs in text-only mode and chat degrades to retrieval-only answers.
func NewAPIV1Service(
	profile *profile.Profile,
	store *store.Store,
	searcher *search.Searcher,
	completionService ai.CompletionService,
	embeddingService ai.EmbeddingService,
	semanticCache *search.SemanticCache,
) *APIV1Service {
	return &APIV1Service{
		Profile:           profile,
		Store:             store,
		Searcher:          searcher,
		CompletionService: completionService,
		EmbeddingService:  embeddingService,
		SemanticCache:     semanticCache,
	}
}

// RegisterRoutes registers all v1 routes on the echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	apiV1 := echoServer.Group("/api/v1")
	apiV1.POST("/search", s.Search)
	apiV1.POST("/chat", s.Chat)
}
