package search

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/chatvise/chatvise/plugin/ai"
	"github.com/chatvise/chatvise/store"
)

const (
	defaultVectorThreshold = 0.7

	// degenerateSimilarity is the floor below which a vector hit carries no
	// signal. A whole result set under it (typically against the zero query
	// vector) is treated the same as an empty one.
	degenerateSimilarity = 0.01

	// Keyword fallback scoring.
	allMatchMultiplier   = 1.5
	verbatimPhraseBonus  = 0.3
	headingProximityBonus = 0.4
	lineStartBonus       = 0.15
	headingProximityChars = 50
)

// DocumentRetriever searches document chunks by vector similarity, degrading
// to keyword search when embeddings are unavailable or produce nothing. Both
// paths are restricted to the tenant's resolved document scope.
type DocumentRetriever struct {
	store        *store.Store
	embedder     ai.EmbeddingService
	preprocessor *Preprocessor
	model        string
}

// NewDocumentRetriever creates a document retriever. The model names which
// embedding column variant to search.
func NewDocumentRetriever(s *store.Store, embedder ai.EmbeddingService, preprocessor *Preprocessor, model string) *DocumentRetriever {
	return &DocumentRetriever{
		store:        s,
		embedder:     embedder,
		preprocessor: preprocessor,
		model:        model,
	}
}

func (*DocumentRetriever) Source() SourceType {
	return SourceDocument
}

func (r *DocumentRetriever) Search(ctx context.Context, query string, opts *Options) ([]*Result, error) {
	scope, err := r.store.ResolveDocumentScope(ctx, opts.AssistantID)
	if err != nil {
		return nil, errors.Wrap(err, "resolve document scope")
	}
	if len(scope) == 0 {
		return []*Result{}, nil
	}

	results, err := r.vectorSearch(ctx, query, scope, opts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.WarnContext(ctx, "vector search failed, falling back to keyword search",
			"assistant_id", opts.AssistantID,
			"error", err,
		)
		return r.keywordSearch(ctx, query, scope, opts)
	}
	if len(results) == 0 {
		return r.keywordSearch(ctx, query, scope, opts)
	}

	// A weak, crowded top suggests the pool was too narrow; widen once.
	if evaluation := EvaluateResults(results); evaluation.SuggestedAction == ActionExpand {
		widened := *opts
		widened.Limit = opts.Limit * 2
		if expanded, err := r.vectorSearch(ctx, query, scope, &widened); err == nil && len(expanded) > len(results) {
			return truncateResults(expanded, widened.Limit), nil
		}
	}
	return results, nil
}

func (r *DocumentRetriever) vectorSearch(ctx context.Context, query string, scope []int32, opts *Options) ([]*Result, error) {
	if r.embedder == nil {
		return nil, errors.New("no embedding service configured")
	}
	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	if ai.IsZeroVector(vector) {
		return nil, errors.New("query embedding degraded to zero vector")
	}

	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = defaultVectorThreshold
	}

	hits, err := r.store.VectorSearchChunks(ctx, &store.VectorSearchOptions{
		DocumentIDs:   scope,
		Vector:        vector,
		Limit:         opts.Limit,
		MinSimilarity: float32(threshold),
		Model:         r.model,
	})
	if err != nil {
		return nil, errors.Wrap(err, "vector search chunks")
	}

	results := []*Result{}
	degenerate := true
	for _, hit := range hits {
		if float64(hit.Score) >= degenerateSimilarity {
			degenerate = false
		}
		results = append(results, r.chunkResult(hit.Chunk, hit.Document, float64(hit.Score), nil))
	}
	// Every hit at or under the noise floor means the similarity column
	// carried no signal at all; let the keyword path take over.
	if len(results) > 0 && degenerate {
		return []*Result{}, nil
	}
	return truncateResults(results, opts.Limit), nil
}

func (r *DocumentRetriever) keywordSearch(ctx context.Context, query string, scope []int32, opts *Options) ([]*Result, error) {
	keywords := r.preprocessor.Keywords(query)
	if len(keywords) == 0 {
		return []*Result{}, nil
	}

	// Over-fetch so chunks that match few keywords can still be outranked
	// after in-process scoring.
	fetchLimit := opts.Limit * 3
	if fetchLimit <= 0 {
		fetchLimit = 30
	}
	chunks, err := r.store.KeywordSearchChunks(ctx, &store.KeywordSearchOptions{
		DocumentIDs: scope,
		Keywords:    keywords,
		Limit:       fetchLimit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "keyword search chunks")
	}

	lowered := strings.ToLower(strings.TrimSpace(query))
	results := make([]*Result, 0, len(chunks))
	for _, chunk := range chunks {
		score, matched := scoreChunkKeywords(chunk.Content, lowered, keywords)
		if score <= 0 {
			continue
		}
		result := r.chunkResult(chunk, nil, 0, matched)
		result.AssistantID = opts.AssistantID
		result.BaseScore = score
		results = append(results, result)
	}

	sortByScore(results)
	return truncateResults(results, opts.Limit), nil
}

func (r *DocumentRetriever) chunkResult(chunk *store.DocumentChunk, document *store.Document, similarity float64, matched []string) *Result {
	result := &Result{
		ID:        strconv.Itoa(int(chunk.ID)),
		Type:      SourceDocument,
		Content:   chunk.Content,
		BaseScore: similarity,
		Stage:     StageBase,
		Chunk: &ChunkMeta{
			DocumentID:      chunk.DocumentID,
			ChunkIndex:      chunk.ChunkIndex,
			Heading:         chunk.Heading,
			Similarity:      similarity,
			KeywordFallback: matched != nil,
			MatchedKeywords: matched,
		},
	}
	if chunk.Heading != "" {
		result.Title = chunk.Heading
	}
	if document != nil {
		result.AssistantID = document.AssistantID
		result.UpdatedTs = document.UpdatedTs
		if result.Title == "" {
			result.Title = document.Title
		}
	}
	return result
}

// scoreChunkKeywords scores a chunk against the extracted query keywords.
// Base is the matched fraction, multiplied by 1.5 when every keyword matches,
// plus a verbatim phrase bonus, a heading proximity bonus and a line start
// bonus, capped at 1.0.
func scoreChunkKeywords(content string, loweredQuery string, keywords []string) (float64, []string) {
	loweredContent := strings.ToLower(content)

	matched := []string{}
	for _, keyword := range keywords {
		if strings.Contains(loweredContent, keyword) {
			matched = append(matched, keyword)
		}
	}
	if len(matched) == 0 {
		return 0, nil
	}

	score := float64(len(matched)) / float64(len(keywords))
	if len(matched) == len(keywords) {
		score *= allMatchMultiplier
	}
	if loweredQuery != "" && strings.Contains(loweredContent, loweredQuery) {
		score += verbatimPhraseBonus
	}
	if anyKeywordNearHeading(loweredContent, matched) {
		score += headingProximityBonus
	}
	if anyKeywordAtLineStart(loweredContent, matched) {
		score += lineStartBonus
	}
	if score > 1.0 {
		score = 1.0
	}
	return score, matched
}

// anyKeywordNearHeading reports whether a matched keyword occurs within
// headingProximityChars after a markdown heading marker.
func anyKeywordNearHeading(loweredContent string, matched []string) bool {
	offset := 0
	for {
		idx := strings.Index(loweredContent[offset:], "#")
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + headingProximityChars
		if end > len(loweredContent) {
			end = len(loweredContent)
		}
		window := loweredContent[start:end]
		for _, keyword := range matched {
			if strings.Contains(window, keyword) {
				return true
			}
		}
		offset = start + 1
		if offset >= len(loweredContent) {
			return false
		}
	}
}

// anyKeywordAtLineStart reports whether a matched keyword starts any line.
func anyKeywordAtLineStart(loweredContent string, matched []string) bool {
	for _, line := range strings.Split(loweredContent, "\n") {
		trimmed := strings.TrimSpace(line)
		for _, keyword := range matched {
			if strings.HasPrefix(trimmed, keyword) {
				return true
			}
		}
	}
	return false
}
