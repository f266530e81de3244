package search

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chatvise/chatvise/plugin/ai"
	"github.com/chatvise/chatvise/store"
)

// Retriever is one per-source search backend.
type Retriever interface {
	Source() SourceType
	Search(ctx context.Context, query string, opts *Options) ([]*Result, error)
}

// defaultSourceTimeout bounds each retriever. One slow source must not hold
// the whole response hostage.
const defaultSourceTimeout = 2 * time.Second

// SearchOptions are the orchestrator-level options.
type SearchOptions struct {
	AssistantID string
	Limit       int // default 10
	// Hybrid merges per-source rankings with reciprocal rank fusion instead
	// of comparing raw scores across sources.
	Hybrid bool
	// Rerank applies the heuristic reranker to the merged list.
	Rerank              bool
	ConversationHistory []string
	IncludeDisabled     bool
}

// Searcher fans a query out over all knowledge sources concurrently and
// merges the rankings. A failing source degrades to zero results for that
// source; the search itself only fails when the caller's context does.
type Searcher struct {
	preprocessor  *Preprocessor
	retrievers    []Retriever
	reranker      *Reranker
	sourceTimeout time.Duration
}

// NewSearcher creates a searcher over the standard five sources.
func NewSearcher(s *store.Store, embedder ai.EmbeddingService, embeddingModel string) *Searcher {
	preprocessor := NewPreprocessor()
	return &Searcher{
		preprocessor: preprocessor,
		retrievers: []Retriever{
			NewFAQRetriever(s, preprocessor),
			NewDocumentRetriever(s, embedder, preprocessor, embeddingModel),
			NewKnowledgeFileRetriever(s, preprocessor),
			NewWebsiteRetriever(s, preprocessor),
			NewWebsitePageRetriever(s, preprocessor),
		},
		reranker:      NewReranker(),
		sourceTimeout: defaultSourceTimeout,
	}
}

// NewSearcherWithRetrievers creates a searcher over an explicit retriever
// set. Intended for tests and partial deployments.
func NewSearcherWithRetrievers(retrievers []Retriever) *Searcher {
	return &Searcher{
		preprocessor:  NewPreprocessor(),
		retrievers:    retrievers,
		reranker:      NewReranker(),
		sourceTimeout: defaultSourceTimeout,
	}
}

// Search runs the full pipeline: preprocess, concurrent per-source retrieval,
// merge (flat or fused), optional rerank, truncate.
func (s *Searcher) Search(ctx context.Context, query string, opts *SearchOptions) ([]*Result, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	normalized := s.preprocessor.Normalize(query)
	if normalized == "" {
		// Stop-word-only queries keep their raw form rather than matching
		// nothing.
		normalized = strings.TrimSpace(query)
	}
	if normalized == "" {
		return []*Result{}, nil
	}

	perSource := (limit + len(s.retrievers) - 1) / len(s.retrievers)
	lists := make([][]*Result, len(s.retrievers))

	g, gctx := errgroup.WithContext(ctx)
	for i, retriever := range s.retrievers {
		i, retriever := i, retriever
		sourceOpts := &Options{
			AssistantID:     opts.AssistantID,
			Limit:           perSource,
			IncludeDisabled: opts.IncludeDisabled,
		}
		// Documents are the deepest source and feed the reranker's pool;
		// give them headroom beyond the per-source share.
		if retriever.Source() == SourceDocument {
			sourceOpts.Limit = limit * 2
		}

		g.Go(func() error {
			sctx, cancel := context.WithTimeout(gctx, s.sourceTimeout)
			defer cancel()

			results, err := retriever.Search(sctx, normalized, sourceOpts)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				slog.WarnContext(ctx, "source search failed",
					"source", retriever.Source(),
					"assistant_id", opts.AssistantID,
					"error", err,
				)
				lists[i] = []*Result{}
				return nil
			}
			lists[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []*Result
	if opts.Hybrid {
		merged = Fuse(lists, DampingFactor)
	} else {
		for _, list := range lists {
			merged = append(merged, list...)
		}
		sortByScore(merged)
	}

	if opts.Rerank {
		merged = s.reranker.Rerank(merged, &RerankContext{
			Query:               query,
			ConversationHistory: opts.ConversationHistory,
		})
	}

	return truncateResults(merged, limit), nil
}
