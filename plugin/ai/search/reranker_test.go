package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectQueryType(t *testing.T) {
	tests := []struct {
		query    string
		expected QueryType
	}{
		{"wat zijn de prijzen?", QueryTypeQuestion},
		{"hoe werkt retourneren", QueryTypeQuestion},
		{"what are your opening hours", QueryTypeQuestion},
		{"levering binnen nederland?", QueryTypeQuestion}, // trailing question mark
		{"toon alle facturen", QueryTypeCommand},
		{"zoek handleiding printer", QueryTypeCommand},
		{"show pricing page", QueryTypeCommand},
		{"levering kosten", QueryTypeKeyword},
		{"printer handleiding", QueryTypeKeyword},
		{"", QueryTypeKeyword},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectQueryType(tt.query))
		})
	}
}

func TestRerankPrefersFAQForQuestions(t *testing.T) {
	reranker := NewReranker()
	now := time.Now().Unix()

	faq := &Result{
		ID: "1", Type: SourceFAQ,
		Title:      "Wat zijn de prijzen?",
		Content:    "Onze prijzen beginnen bij 49 euro per maand, afhankelijk van het gekozen pakket en het aantal gebruikers dat toegang nodig heeft.",
		UpdatedTs:  now,
		BaseScore:  0.6, Stage: StageBase,
	}
	website := &Result{
		ID: "2", Type: SourceWebsite,
		Title:      "Homepage",
		Content:    "Welkom bij ons bedrijf.",
		UpdatedTs:  now,
		BaseScore:  0.6, Stage: StageBase,
	}

	reranked := reranker.Rerank([]*Result{website, faq}, &RerankContext{Query: "wat zijn de prijzen?"})
	require.Len(t, reranked, 2)
	assert.Equal(t, "1", reranked[0].ID)
	assert.Equal(t, StageRerank, reranked[0].Stage)
	assert.Greater(t, reranked[0].RerankScore, reranked[1].RerankScore)
}

func TestRerankTiesKeepIncomingOrder(t *testing.T) {
	reranker := NewReranker()

	// Identical results except for ID score identically; stability must
	// preserve the incoming order.
	build := func(id string) *Result {
		return &Result{
			ID: id, Type: SourceDocument,
			Title: "Verzendkosten", Content: "Verzendkosten binnen Nederland zijn 4,95.",
			BaseScore: 0.5, Stage: StageBase,
		}
	}

	reranked := reranker.Rerank([]*Result{build("a"), build("b"), build("c")}, &RerankContext{Query: "verzendkosten"})
	require.Len(t, reranked, 3)
	assert.Equal(t, reranked[0].RerankScore, reranked[1].RerankScore)
	assert.Equal(t, []string{"a", "b", "c"}, []string{reranked[0].ID, reranked[1].ID, reranked[2].ID})
}

func TestRerankConversationOverlapBoostsRelatedResults(t *testing.T) {
	reranker := NewReranker()

	related := &Result{
		ID: "1", Type: SourceDocument,
		Title: "Printer handleiding", Content: "Instellen van de printer en drivers.",
		BaseScore: 0.5, Stage: StageBase,
	}
	unrelated := &Result{
		ID: "2", Type: SourceDocument,
		Title: "Vakantiedagen", Content: "Verlofregeling voor medewerkers.",
		BaseScore: 0.5, Stage: StageBase,
	}

	reranked := reranker.Rerank([]*Result{unrelated, related}, &RerankContext{
		Query:               "werkt het nog niet",
		ConversationHistory: []string{"mijn printer doet het niet", "heb je de drivers geprobeerd?"},
	})
	assert.Equal(t, "1", reranked[0].ID)
}

func TestRecencyScoreBands(t *testing.T) {
	reranker := NewReranker()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	reranker.now = func() time.Time { return base }

	tests := []struct {
		name     string
		age      time.Duration
		expected float64
	}{
		{"fresh", 24 * time.Hour, 1.0},
		{"weeks", 14 * 24 * time.Hour, 0.75},
		{"months", 60 * 24 * time.Hour, 0.5},
		{"half year", 200 * 24 * time.Hour, 0.25},
		{"ancient", 500 * 24 * time.Hour, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &Result{UpdatedTs: base.Add(-tt.age).Unix()}
			assert.Equal(t, tt.expected, reranker.recencyScore(result, nil))
		})
	}

	// Missing timestamp scores neutral.
	assert.Equal(t, 0.5, reranker.recencyScore(&Result{}, nil))
}

func TestRerankKeepsAllResults(t *testing.T) {
	reranker := NewReranker()
	results := []*Result{
		{ID: "1", Type: SourceFAQ, BaseScore: 0.9, Stage: StageBase},
		{ID: "2", Type: SourceDocument, BaseScore: 0.1, Stage: StageBase},
	}
	reranked := reranker.Rerank(results, &RerankContext{Query: "prijzen"})
	assert.Len(t, reranked, 2)
}
