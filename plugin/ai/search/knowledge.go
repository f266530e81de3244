package search

import (
	"context"
	"strconv"

	"github.com/pkg/errors"

	"github.com/chatvise/chatvise/store"
)

// maxContainmentKeywords caps the per-keyword store queries of the
// containment retrievers.
const maxContainmentKeywords = 5

// KnowledgeFileRetriever matches uploaded knowledge files by name and
// description: one containment query per significant keyword, OR-merged and
// deduplicated, with positional scoring over the merged list.
type KnowledgeFileRetriever struct {
	store        *store.Store
	preprocessor *Preprocessor
}

// NewKnowledgeFileRetriever creates a knowledge file retriever.
func NewKnowledgeFileRetriever(s *store.Store, preprocessor *Preprocessor) *KnowledgeFileRetriever {
	return &KnowledgeFileRetriever{store: s, preprocessor: preprocessor}
}

func (*KnowledgeFileRetriever) Source() SourceType {
	return SourceKnowledgeFile
}

func (r *KnowledgeFileRetriever) Search(ctx context.Context, query string, opts *Options) ([]*Result, error) {
	files := []*store.KnowledgeFile{}
	seen := map[int32]bool{}
	for _, keyword := range containmentKeywords(r.preprocessor, query) {
		find := &store.FindKnowledgeFile{
			AssistantID:  &opts.AssistantID,
			ContainsText: &keyword,
		}
		if !opts.IncludeDisabled {
			enabled := true
			find.Enabled = &enabled
		}
		if opts.Limit > 0 {
			find.Limit = &opts.Limit
		}

		matched, err := r.store.ListKnowledgeFiles(ctx, find)
		if err != nil {
			return nil, errors.Wrap(err, "list knowledge files")
		}
		for _, file := range matched {
			if seen[file.ID] {
				continue
			}
			seen[file.ID] = true
			files = append(files, file)
		}
	}

	results := make([]*Result, 0, len(files))
	for i, file := range files {
		results = append(results, &Result{
			ID:          strconv.Itoa(int(file.ID)),
			Type:        SourceKnowledgeFile,
			Title:       file.Name,
			Content:     file.Description,
			AssistantID: file.AssistantID,
			UpdatedTs:   file.UpdatedTs,
			BaseScore:   positionalScore(i, len(files)),
			Stage:       StageBase,
			File:        &FileMeta{Name: file.Name},
		})
	}
	return truncateResults(results, opts.Limit), nil
}

// containmentKeywords returns the capped significant keywords of a query,
// falling back to the whole query when nothing significant survives.
func containmentKeywords(preprocessor *Preprocessor, query string) []string {
	keywords := preprocessor.Keywords(query)
	if len(keywords) == 0 {
		return []string{query}
	}
	if len(keywords) > maxContainmentKeywords {
		keywords = keywords[:maxContainmentKeywords]
	}
	return keywords
}

// positionalScore converts a list position into a descending (0,1] score:
// 1 - index/total. The single or first match scores 1.0; scores thin out as
// the list grows.
func positionalScore(index, total int) float64 {
	if total <= 0 {
		return 0
	}
	return 1.0 - float64(index)/float64(total)
}
