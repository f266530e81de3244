// Package search implements the retrieval and ranking core: per-source
// retrievers over the tenant knowledge partitions, reciprocal rank fusion,
// domain-aware reranking, a semantic response cache and the unified searcher
// that ties them together.
package search

import (
	"sort"
)

// SourceType identifies the knowledge partition a result came from.
type SourceType string

const (
	SourceFAQ           SourceType = "faq"
	SourceDocument      SourceType = "document"
	SourceKnowledgeFile SourceType = "knowledge_file"
	SourceWebsite       SourceType = "website"
	SourceWebsitePage   SourceType = "website_page"
)

// ScoreStage marks the last pipeline stage that assigned a score to a result.
// Scores are re-assigned at every merge/rerank stage and only mean "higher is
// more relevant at this stage"; callers must never compare scores across
// stages or read them as probabilities.
type ScoreStage int

const (
	StageBase ScoreStage = iota
	StageFused
	StageRerank
)

// Result is the universal candidate unit returned by every retriever.
type Result struct {
	// ID is unique within its source type, not globally.
	ID          string
	Type        SourceType
	Title       string
	Content     string
	AssistantID string
	URL         string // only meaningful for web-sourced results
	UpdatedTs   int64  // unix seconds; 0 when the source has no timestamp

	// Distinct score fields are retained through the pipeline instead of
	// overwriting one mutable field, so tests can observe every stage.
	BaseScore   float64
	FusedScore  float64
	RerankScore float64
	Stage       ScoreStage

	// Per-source metadata; each source attaches only the struct it
	// produces. Reranking strategies tolerate absence.
	FAQ   *FAQMeta
	Chunk *ChunkMeta
	File  *FileMeta
	Site  *SiteMeta
	Page  *PageMeta
}

// FAQMeta is attached by the FAQ retriever.
type FAQMeta struct {
	Question string
	Keywords []string
}

// ChunkMeta is attached by the document retriever.
type ChunkMeta struct {
	DocumentID      int32
	ChunkIndex      int32
	Heading         string
	Similarity      float64 // vector similarity, 0 on the keyword path
	KeywordFallback bool
	MatchedKeywords []string
}

// FileMeta is attached by the knowledge file retriever.
type FileMeta struct {
	Name string
}

// SiteMeta is attached by the website retriever.
type SiteMeta struct {
	LastCrawledTs int64
}

// PageMeta is attached by the website page retriever.
type PageMeta struct {
	WebsiteID int32
}

// Score returns the score of the stage the result last passed through.
func (r *Result) Score() float64 {
	switch r.Stage {
	case StageRerank:
		return r.RerankScore
	case StageFused:
		return r.FusedScore
	default:
		return r.BaseScore
	}
}

// Options are the per-source retrieval options.
type Options struct {
	AssistantID     string
	Limit           int
	Threshold       float64 // 0 means the retriever default
	IncludeDisabled bool
}

// sortByScore stable-sorts results descending by their current stage score.
// Stability preserves pre-sort order on ties, keeping output reproducible.
func sortByScore(results []*Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score() > results[j].Score()
	})
}

// truncateResults bounds a result list to limit.
func truncateResults(results []*Result, limit int) []*Result {
	if limit <= 0 || len(results) <= limit {
		return results
	}
	return results[:limit]
}

// truncateContent bounds bulky content for result purposes.
func truncateContent(content string, maxChars int) string {
	if len(content) <= maxChars {
		return content
	}
	return content[:maxChars]
}
