package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatvise/chatvise/internal/profile"
	"github.com/chatvise/chatvise/plugin/ai"
	"github.com/chatvise/chatvise/plugin/ai/search"
)

type stubRetriever struct {
	results []*search.Result
}

func (*stubRetriever) Source() search.SourceType { return search.SourceFAQ }

func (s *stubRetriever) Search(context.Context, string, *search.Options) ([]*search.Result, error) {
	return s.results, nil
}

type stubCompletion struct {
	answer string
	calls  int
}

func (s *stubCompletion) Complete(context.Context, []ai.Message) (string, int, error) {
	s.calls++
	return s.answer, 42, nil
}

type stubEmbedding struct{}

func (*stubEmbedding) EmbedQuery(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0, 0}, nil
}

func (*stubEmbedding) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0, 0, 0}
	}
	return vectors, nil
}

func (*stubEmbedding) Dimensions() int { return 4 }

func newTestService(t *testing.T, completion ai.CompletionService) *APIV1Service {
	t.Helper()
	searcher := search.NewSearcherWithRetrievers([]search.Retriever{&stubRetriever{
		results: []*search.Result{{
			ID:        "1",
			Type:      search.SourceFAQ,
			Title:     "Wat zijn de prijzen?",
			Content:   "Vanaf 49 euro per maand.",
			BaseScore: 0.9,
		}},
	}})
	cache := search.NewSemanticCache(&ai.SemanticCacheConfig{
		Enabled:             true,
		SimilarityThreshold: 0.92,
		MaxSize:             10,
		TTL:                 time.Hour,
		CleanupInterval:     time.Hour,
	})
	t.Cleanup(cache.Close)

	return NewAPIV1Service(&profile.Profile{Mode: "dev"}, nil, searcher, completion, &stubEmbedding{}, cache)
}

func doRequest(t *testing.T, handler echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec
}

func TestSearchHandlerValidation(t *testing.T) {
	service := newTestService(t, &stubCompletion{answer: "x"})

	rec := doRequest(t, service.Search, `{"query": "prijzen"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, service.Search, `{"assistant_id": "asst-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchHandlerReturnsRankedResults(t *testing.T) {
	service := newTestService(t, &stubCompletion{answer: "x"})

	rec := doRequest(t, service.Search, `{"assistant_id": "asst-1", "query": "wat zijn de prijzen?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var response SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Results, 1)
	assert.Equal(t, "faq", response.Results[0].Type)
	assert.Equal(t, "Wat zijn de prijzen?", response.Results[0].Title)
}

func TestChatHandlerCachesAnswers(t *testing.T) {
	completion := &stubCompletion{answer: "Vanaf 49 euro per maand."}
	service := newTestService(t, completion)

	body := `{"assistant_id": "asst-1", "query": "wat zijn de prijzen?"}`

	rec := doRequest(t, service.Chat, body)
	require.Equal(t, http.StatusOK, rec.Code)
	var first ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.False(t, first.Cached)
	assert.Equal(t, "Vanaf 49 euro per maand.", first.Answer)
	assert.Equal(t, 42, first.TokensUsed)

	// The same query again is served from the semantic cache.
	rec = doRequest(t, service.Chat, body)
	require.Equal(t, http.StatusOK, rec.Code)
	var second ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.True(t, second.Cached)
	assert.Equal(t, first.Answer, second.Answer)
	assert.Equal(t, 1, completion.calls)
}

func TestChatHandlerWithoutCompletionServesFAQ(t *testing.T) {
	service := newTestService(t, nil)
	service.SemanticCache = nil
	service.EmbeddingService = nil

	rec := doRequest(t, service.Chat, `{"assistant_id": "asst-1", "query": "wat zijn de prijzen?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var response ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "Vanaf 49 euro per maand.", response.Answer)
	assert.Equal(t, 0, response.TokensUsed)
}
