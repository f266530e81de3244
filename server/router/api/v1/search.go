package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chatvise/chatvise/plugin/ai/search"
)

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	AssistantID string `json:"assistant_id"`
	Query       string `json:"query"`
	Limit       int    `json:"limit"`
	Hybrid      bool   `json:"hybrid"`
	Rerank      bool   `json:"rerank"`
}

// SearchResultItem is one ranked result on the wire.
type SearchResultItem struct {
	ID      string  `json:"id"`
	Type    string  `json:"type"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	URL     string  `json:"url,omitempty"`
	Score   float64 `json:"score"`
}

// SearchResponse is the response of POST /api/v1/search.
type SearchResponse struct {
	Results []SearchResultItem `json:"results"`
}

// Search runs the unified retrieval pipeline.
// POST /api/v1/search
func (s *APIV1Service) Search(c echo.Context) error {
	request := &SearchRequest{}
	if err := c.Bind(request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}
	if request.AssistantID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "assistant_id is required"})
	}
	if request.Query == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "query is required"})
	}

	results, err := s.Searcher.Search(c.Request().Context(), request.Query, &search.SearchOptions{
		AssistantID: request.AssistantID,
		Limit:       request.Limit,
		Hybrid:      request.Hybrid,
		Rerank:      request.Rerank,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "search failed"})
	}

	return c.JSON(http.StatusOK, &SearchResponse{Results: toSearchResultItems(results)})
}

func toSearchResultItems(results []*search.Result) []SearchResultItem {
	items := make([]SearchResultItem, 0, len(results))
	for _, result := range results {
		items = append(items, SearchResultItem{
			ID:      result.ID,
			Type:    string(result.Type),
			Title:   result.Title,
			Content: result.Content,
			URL:     result.URL,
			Score:   result.Score(),
		})
	}
	return items
}
