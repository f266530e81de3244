package v1

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/chatvise/chatvise/plugin/ai"
	"github.com/chatvise/chatvise/plugin/ai/search"
)

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	AssistantID string   `json:"assistant_id"`
	Query       string   `json:"query"`
	History     []string `json:"history,omitempty"`
}

// ChatResponse is the response of POST /api/v1/chat.
type ChatResponse struct {
	Answer     string             `json:"answer"`
	Sources    []SearchResultItem `json:"sources"`
	Cached     bool               `json:"cached"`
	TokensUsed int                `json:"tokens_used"`
}

const chatSystemPrompt = `You are a customer support assistant. Answer strictly from the provided context. ` +
	`Answer in the language of the question. If the context does not contain the answer, say you don't know.`

// Chat answers a conversational turn: semantic cache first, then retrieval
// plus completion, caching the generated answer for similar future queries.
// POST /api/v1/chat
func (s *APIV1Service) Chat(c echo.Context) error {
	request := &ChatRequest{}
	if err := c.Bind(request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}
	if request.AssistantID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "assistant_id is required"})
	}
	if request.Query == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "query is required"})
	}

	ctx := c.Request().Context()

	// Query embedding is shared by the cache lookup and the store on miss.
	var queryEmbedding []float32
	if s.EmbeddingService != nil {
		embedding, err := s.EmbeddingService.EmbedQuery(ctx, request.Query)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "embedding failed"})
		}
		queryEmbedding = embedding
	}

	if s.SemanticCache != nil && queryEmbedding != nil {
		if cached, ok := s.SemanticCache.FindSimilar(request.AssistantID, queryEmbedding); ok {
			return c.JSON(http.StatusOK, &ChatResponse{
				Answer:     cached.Answer,
				Sources:    toSearchResultItems(cached.Sources),
				Cached:     true,
				TokensUsed: 0,
			})
		}
	}

	results, err := s.Searcher.Search(ctx, request.Query, &search.SearchOptions{
		AssistantID:         request.AssistantID,
		Limit:               5,
		Hybrid:              true,
		Rerank:              true,
		ConversationHistory: request.History,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "search failed"})
	}

	answer, tokensUsed, err := s.generateAnswer(c, request, results)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "answer generation failed"})
	}

	if s.SemanticCache != nil && queryEmbedding != nil && !ai.IsZeroVector(queryEmbedding) {
		s.SemanticCache.Set(request.AssistantID, queryEmbedding, &search.CachedResponse{
			Query:      request.Query,
			Answer:     answer,
			Sources:    results,
			TokensUsed: tokensUsed,
		})
	}

	return c.JSON(http.StatusOK, &ChatResponse{
		Answer:     answer,
		Sources:    toSearchResultItems(results),
		Cached:     false,
		TokensUsed: tokensUsed,
	})
}

// generateAnswer builds the grounded prompt and calls completion. Without a
// completion service the best FAQ answer is served verbatim.
func (s *APIV1Service) generateAnswer(c echo.Context, request *ChatRequest, results []*search.Result) (string, int, error) {
	if s.CompletionService == nil {
		for _, result := range results {
			if result.Type == search.SourceFAQ {
				return result.Content, 0, nil
			}
		}
		return "Ik heb hier helaas geen antwoord op gevonden.", 0, nil
	}

	messages := []ai.Message{{Role: "system", Content: chatSystemPrompt}}
	if len(results) > 0 {
		var sb strings.Builder
		sb.WriteString("Context:\n")
		for i, result := range results {
			fmt.Fprintf(&sb, "[%d] (%s) %s\n%s\n\n", i+1, result.Type, result.Title, result.Content)
		}
		messages = append(messages, ai.Message{Role: "system", Content: sb.String()})
	}
	for i, turn := range request.History {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		messages = append(messages, ai.Message{Role: role, Content: turn})
	}
	messages = append(messages, ai.Message{Role: "user", Content: request.Query})

	return s.CompletionService.Complete(c.Request().Context(), messages)
}
