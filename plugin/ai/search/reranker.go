package search

import (
	"sort"
	"strings"
	"time"
)

// QueryType classifies the user's intent shape, which drives the source-type
// affinity strategy.
type QueryType string

const (
	QueryTypeQuestion QueryType = "question"
	QueryTypeCommand  QueryType = "command"
	QueryTypeKeyword  QueryType = "keyword"
)

// questionWords open Dutch and English interrogative queries.
var questionWords = map[string]struct{}{
	"wat": {}, "hoe": {}, "waarom": {}, "wanneer": {}, "waar": {}, "wie": {},
	"welke": {}, "kan": {}, "kunnen": {}, "mag": {}, "moet": {}, "is": {}, "zijn": {},
	"what": {}, "how": {}, "why": {}, "when": {}, "where": {}, "who": {},
	"which": {}, "can": {}, "could": {}, "does": {}, "do": {}, "are": {}, "should": {},
}

// commandWords open imperative queries.
var commandWords = map[string]struct{}{
	"toon": {}, "laat": {}, "geef": {}, "zoek": {}, "vind": {}, "maak": {},
	"open": {}, "verwijder": {}, "stuur": {},
	"show": {}, "give": {}, "find": {}, "search": {}, "list": {}, "create": {},
	"delete": {}, "send": {}, "get": {},
}

// DetectQueryType classifies a query by its leading token.
func DetectQueryType(query string) QueryType {
	tokens := tokenize(strings.ToLower(strings.TrimSpace(query)))
	if len(tokens) == 0 {
		return QueryTypeKeyword
	}
	if _, ok := questionWords[tokens[0]]; ok {
		return QueryTypeQuestion
	}
	if _, ok := commandWords[tokens[0]]; ok {
		return QueryTypeCommand
	}
	if strings.HasSuffix(strings.TrimSpace(query), "?") {
		return QueryTypeQuestion
	}
	return QueryTypeKeyword
}

// RerankContext carries the query-side signals the strategies score against.
type RerankContext struct {
	Query     string
	QueryType QueryType // detected from Query when empty
	// ConversationHistory holds recent user turns, most recent last.
	ConversationHistory []string
}

// strategy scores one result in [0,1] against the rerank context.
type strategy struct {
	name   string
	weight float64
	score  func(result *Result, rc *RerankContext) float64
}

// originalScoreWeight is the share of the incoming (base or fused) score in
// the composite; the strategies share the rest.
const originalScoreWeight = 0.3

// Reranker reorders fused candidates with a weighted set of domain
// heuristics. It is stateless and safe for concurrent use.
type Reranker struct {
	strategies []strategy
	now        func() time.Time
}

// NewReranker creates a reranker with the default strategy set.
func NewReranker() *Reranker {
	r := &Reranker{now: time.Now}
	r.strategies = []strategy{
		{name: "title_match", weight: 0.25, score: titleMatchScore},
		{name: "source_type_fit", weight: 0.2, score: sourceTypeFitScore},
		{name: "conversation_overlap", weight: 0.2, score: conversationOverlapScore},
		{name: "recency", weight: 0.15, score: r.recencyScore},
		{name: "length_fit", weight: 0.1, score: lengthFitScore},
		// TODO: replace the flat diversity placeholder with MMR once result
		// embeddings are carried through the pipeline.
		{name: "diversity", weight: 0.1, score: diversityScore},
	}
	return r
}

// Rerank assigns RerankScore to every result and returns them reordered,
// best first. Equal composites keep their incoming order.
func (r *Reranker) Rerank(results []*Result, rc *RerankContext) []*Result {
	if rc.QueryType == "" {
		rc.QueryType = DetectQueryType(rc.Query)
	}

	for _, result := range results {
		composite := originalScoreWeight * result.Score()
		for _, s := range r.strategies {
			composite += s.weight * s.score(result, rc)
		}
		result.RerankScore = composite
		result.Stage = StageRerank
	}

	reranked := make([]*Result, len(results))
	copy(reranked, results)
	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].RerankScore > reranked[j].RerankScore
	})
	return reranked
}

// titleMatchScore is the fraction of significant query tokens occurring in
// the result title.
func titleMatchScore(result *Result, rc *RerankContext) float64 {
	tokens := significantTokens(rc.Query)
	if len(tokens) == 0 || result.Title == "" {
		return 0
	}
	title := strings.ToLower(result.Title)
	matched := 0
	for _, token := range tokens {
		if strings.Contains(title, token) {
			matched++
		}
	}
	return float64(matched) / float64(len(tokens))
}

// sourceTypeAffinity encodes which sources tend to answer which query shapes:
// questions are usually answered by curated FAQs, commands by document
// content, bare keywords by pages and documents alike.
var sourceTypeAffinity = map[QueryType]map[SourceType]float64{
	QueryTypeQuestion: {
		SourceFAQ:           1.0,
		SourceDocument:      0.8,
		SourceKnowledgeFile: 0.6,
		SourceWebsitePage:   0.5,
		SourceWebsite:       0.4,
	},
	QueryTypeCommand: {
		SourceDocument:      1.0,
		SourceKnowledgeFile: 0.8,
		SourceFAQ:           0.6,
		SourceWebsitePage:   0.5,
		SourceWebsite:       0.4,
	},
	QueryTypeKeyword: {
		SourceDocument:      0.8,
		SourceWebsitePage:   0.8,
		SourceFAQ:           0.7,
		SourceKnowledgeFile: 0.6,
		SourceWebsite:       0.5,
	},
}

func sourceTypeFitScore(result *Result, rc *RerankContext) float64 {
	affinities, ok := sourceTypeAffinity[rc.QueryType]
	if !ok {
		return 0.5
	}
	if fit, ok := affinities[result.Type]; ok {
		return fit
	}
	return 0.5
}

// conversationOverlapScore measures token overlap between the result and the
// last three conversation turns. No history scores neutral.
func conversationOverlapScore(result *Result, rc *RerankContext) float64 {
	history := rc.ConversationHistory
	if len(history) == 0 {
		return 0.5
	}
	if len(history) > 3 {
		history = history[len(history)-3:]
	}

	historyTokens := map[string]struct{}{}
	for _, turn := range history {
		for _, token := range significantTokens(turn) {
			historyTokens[token] = struct{}{}
		}
	}
	if len(historyTokens) == 0 {
		return 0.5
	}

	resultText := strings.ToLower(result.Title + " " + result.Content)
	matched := 0
	for token := range historyTokens {
		if strings.Contains(resultText, token) {
			matched++
		}
	}
	return float64(matched) / float64(len(historyTokens))
}

// recencyScore bands results by age. Sources without a timestamp score
// neutral rather than stale.
func (r *Reranker) recencyScore(result *Result, _ *RerankContext) float64 {
	if result.UpdatedTs == 0 {
		return 0.5
	}
	age := r.now().Sub(time.Unix(result.UpdatedTs, 0))
	switch {
	case age < 7*24*time.Hour:
		return 1.0
	case age < 30*24*time.Hour:
		return 0.75
	case age < 90*24*time.Hour:
		return 0.5
	case age < 365*24*time.Hour:
		return 0.25
	default:
		return 0.1
	}
}

// lengthFitScore prefers content sized for the query shape: questions are
// served by paragraph-sized answers, keyword probes by shorter fragments.
func lengthFitScore(result *Result, rc *RerankContext) float64 {
	ideal := 300.0
	if rc.QueryType == QueryTypeQuestion {
		ideal = 600.0
	}
	deviation := float64(len(result.Content)) - ideal
	if deviation < 0 {
		deviation = -deviation
	}
	fit := 1.0 - deviation/1500.0
	if fit < 0 {
		return 0
	}
	return fit
}

// diversityScore is a flat placeholder so the weight slot stays reserved.
func diversityScore(_ *Result, _ *RerankContext) float64 {
	return 0.5
}

// significantTokens returns lowercased tokens longer than two runes that are
// not stop words.
func significantTokens(text string) []string {
	tokens := []string{}
	for _, token := range tokenize(strings.ToLower(text)) {
		if len([]rune(token)) <= 2 {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}
