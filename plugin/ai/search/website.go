package search

import (
	"context"
	"strconv"

	"github.com/pkg/errors"

	"github.com/chatvise/chatvise/store"
)

// pageContentMaxChars bounds page content in results. Crawled pages can run
// to hundreds of kilobytes; downstream ranking and prompting only ever needs
// the head.
const pageContentMaxChars = 500

// WebsiteRetriever matches registered websites by URL, title and description
// with per-keyword containment queries and positional scoring.
type WebsiteRetriever struct {
	store        *store.Store
	preprocessor *Preprocessor
}

// NewWebsiteRetriever creates a website retriever.
func NewWebsiteRetriever(s *store.Store, preprocessor *Preprocessor) *WebsiteRetriever {
	return &WebsiteRetriever{store: s, preprocessor: preprocessor}
}

func (*WebsiteRetriever) Source() SourceType {
	return SourceWebsite
}

func (r *WebsiteRetriever) Search(ctx context.Context, query string, opts *Options) ([]*Result, error) {
	websites := []*store.Website{}
	seen := map[int32]bool{}
	for _, keyword := range containmentKeywords(r.preprocessor, query) {
		find := &store.FindWebsite{
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

		matched, err := r.store.ListWebsites(ctx, find)
		if err != nil {
			return nil, errors.Wrap(err, "list websites")
		}
		for _, website := range matched {
			if seen[website.ID] {
				continue
			}
			seen[website.ID] = true
			websites = append(websites, website)
		}
	}

	results := make([]*Result, 0, len(websites))
	for i, website := range websites {
		results = append(results, &Result{
			ID:          strconv.Itoa(int(website.ID)),
			Type:        SourceWebsite,
			Title:       website.Title,
			Content:     website.Description,
			AssistantID: website.AssistantID,
			URL:         website.URL,
			UpdatedTs:   website.UpdatedTs,
			BaseScore:   positionalScore(i, len(websites)),
			Stage:       StageBase,
			Site:        &SiteMeta{LastCrawledTs: website.LastCrawledTs},
		})
	}
	return truncateResults(results, opts.Limit), nil
}

// WebsitePageRetriever matches individual crawled pages by URL, title and
// content. Page content is truncated before it enters the pipeline.
type WebsitePageRetriever struct {
	store        *store.Store
	preprocessor *Preprocessor
}

// NewWebsitePageRetriever creates a website page retriever.
func NewWebsitePageRetriever(s *store.Store, preprocessor *Preprocessor) *WebsitePageRetriever {
	return &WebsitePageRetriever{store: s, preprocessor: preprocessor}
}

func (*WebsitePageRetriever) Source() SourceType {
	return SourceWebsitePage
}

func (r *WebsitePageRetriever) Search(ctx context.Context, query string, opts *Options) ([]*Result, error) {
	pages := []*store.WebsitePage{}
	seen := map[int32]bool{}
	for _, keyword := range containmentKeywords(r.preprocessor, query) {
		find := &store.FindWebsitePage{
			AssistantID:  &opts.AssistantID,
			ContainsText: &keyword,
		}
		if opts.Limit > 0 {
			find.Limit = &opts.Limit
		}

		matched, err := r.store.ListWebsitePages(ctx, find)
		if err != nil {
			return nil, errors.Wrap(err, "list website pages")
		}
		for _, page := range matched {
			if seen[page.ID] {
				continue
			}
			seen[page.ID] = true
			pages = append(pages, page)
		}
	}

	results := make([]*Result, 0, len(pages))
	for i, page := range pages {
		results = append(results, &Result{
			ID:          strconv.Itoa(int(page.ID)),
			Type:        SourceWebsitePage,
			Title:       page.Title,
			Content:     truncateContent(page.Content, pageContentMaxChars),
			AssistantID: page.AssistantID,
			URL:         page.URL,
			UpdatedTs:   page.UpdatedTs,
			BaseScore:   positionalScore(i, len(pages)),
			Stage:       StageBase,
			Page:        &PageMeta{WebsiteID: page.WebsiteID},
		})
	}
	return truncateResults(results, opts.Limit), nil
}
