package search

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/chatvise/chatvise/store"
)

// Weights of the FAQ hybrid score. Synonym co-occurrence carries as much
// weight as direct text match because FAQ phrasing rarely matches how users
// actually ask ("wat zijn de prijzen" vs "Onze tarieven").
const (
	faqTextWeight    = 0.4
	faqKeywordWeight = 0.2
	faqSynonymWeight = 0.4

	defaultFAQThreshold = 0.3
)

// FAQRetriever scores curated question/answer pairs with a hybrid of text
// match, curated keyword overlap and synonym group co-occurrence. FAQ sets
// are small per tenant, so all candidates are loaded and scored in process.
type FAQRetriever struct {
	store        *store.Store
	preprocessor *Preprocessor
}

// NewFAQRetriever creates an FAQ retriever.
func NewFAQRetriever(s *store.Store, preprocessor *Preprocessor) *FAQRetriever {
	return &FAQRetriever{store: s, preprocessor: preprocessor}
}

func (*FAQRetriever) Source() SourceType {
	return SourceFAQ
}

// Search returns FAQs scoring at or above the threshold, best first.
func (r *FAQRetriever) Search(ctx context.Context, query string, opts *Options) ([]*Result, error) {
	find := &store.FindFAQ{AssistantID: &opts.AssistantID}
	if !opts.IncludeDisabled {
		enabled := true
		find.Enabled = &enabled
	}
	faqs, err := r.store.ListFAQs(ctx, find)
	if err != nil {
		return nil, errors.Wrap(err, "list faqs")
	}

	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = defaultFAQThreshold
	}

	lowered := strings.ToLower(strings.TrimSpace(query))
	queryTokens := r.preprocessor.Keywords(query)

	results := []*Result{}
	for _, faq := range faqs {
		score := r.scoreFAQ(lowered, queryTokens, faq)
		if score < threshold {
			continue
		}
		results = append(results, &Result{
			ID:          strconv.Itoa(int(faq.ID)),
			Type:        SourceFAQ,
			Title:       faq.Question,
			Content:     faq.Answer,
			AssistantID: faq.AssistantID,
			UpdatedTs:   faq.UpdatedTs,
			BaseScore:   score,
			Stage:       StageBase,
			FAQ: &FAQMeta{
				Question: faq.Question,
				Keywords: splitKeywords(faq.Keywords),
			},
		})
	}

	sortByScore(results)
	return truncateResults(results, opts.Limit), nil
}

// scoreFAQ combines the three scoring components into one [0,1] score.
func (r *FAQRetriever) scoreFAQ(lowered string, queryTokens []string, faq *store.FAQ) float64 {
	faqText := strings.ToLower(faq.Question + " " + faq.Answer)

	text := textMatchScore(lowered, queryTokens, faqText)
	keyword := keywordOverlapScore(queryTokens, splitKeywords(faq.Keywords))
	synonym := synonymCooccurrenceScore(lowered, faqText)

	return faqTextWeight*text + faqKeywordWeight*keyword + faqSynonymWeight*synonym
}

// textMatchScore is 1.0 for a verbatim containment of the whole query, else
// the fraction of query tokens present in the FAQ text.
func textMatchScore(lowered string, queryTokens []string, faqText string) float64 {
	if lowered != "" && strings.Contains(faqText, lowered) {
		return 1.0
	}
	if len(queryTokens) == 0 {
		return 0
	}
	matched := 0
	for _, token := range queryTokens {
		if strings.Contains(faqText, token) {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTokens))
}

// keywordOverlapScore is the fraction of curated FAQ keywords present in the
// query tokens. Editors curate few, high-precision keywords, so the FAQ side
// is the denominator.
func keywordOverlapScore(queryTokens []string, faqKeywords []string) float64 {
	if len(faqKeywords) == 0 {
		return 0
	}
	querySet := map[string]struct{}{}
	for _, token := range queryTokens {
		querySet[token] = struct{}{}
	}
	matched := 0
	for _, keyword := range faqKeywords {
		if _, ok := querySet[keyword]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(faqKeywords))
}

// synonymCooccurrenceScore is the fraction of synonym groups triggered by the
// query that also appear in the FAQ text. A group is triggered when any
// member occurs as a query token, and co-occurs when any member occurs in the
// FAQ text.
func synonymCooccurrenceScore(lowered string, faqText string) float64 {
	queryTokens := map[string]struct{}{}
	for _, token := range tokenize(lowered) {
		queryTokens[token] = struct{}{}
	}

	triggered, matched := 0, 0
	for canonical, members := range synonymGroups {
		if !groupMatches(queryTokens, canonical, members) {
			continue
		}
		triggered++
		if strings.Contains(faqText, canonical) {
			matched++
			continue
		}
		for _, member := range members {
			if strings.Contains(faqText, member) {
				matched++
				break
			}
		}
	}
	if triggered == 0 {
		return 0
	}
	return float64(matched) / float64(triggered)
}

// splitKeywords parses the comma separated curated keyword column.
func splitKeywords(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		keyword := strings.ToLower(strings.TrimSpace(part))
		if keyword != "" {
			keywords = append(keywords, keyword)
		}
	}
	return keywords
}
