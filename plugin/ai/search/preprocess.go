package search

import (
	"sort"
	"strings"
	"unicode"
)

// synonymGroups maps a canonical domain term to its Dutch/English expansion
// set. When a query mentions any member of a group, the whole group is
// appended so lexical retrievers match phrasing variants.
var synonymGroups = map[string][]string{
	"prijs":         {"prijzen", "kosten", "tarief", "tarieven", "price", "pricing", "cost", "costs", "fee"},
	"openingstijden": {"openingsuren", "geopend", "open", "hours", "opening", "schedule"},
	"contact":       {"contactgegevens", "telefoonnummer", "email", "mail", "bereiken", "phone", "reach"},
	"levering":      {"bezorging", "verzending", "verzenden", "delivery", "shipping", "shipment"},
	"retour":        {"retourneren", "terugsturen", "ruilen", "return", "returns", "refund", "terugbetaling"},
	"betaling":      {"betalen", "betaalmethode", "betaalmethoden", "payment", "pay", "ideal", "factuur", "invoice"},
	"account":       {"inloggen", "wachtwoord", "login", "password", "aanmelden", "registreren", "signup"},
	"garantie":      {"warranty", "guarantee", "defect", "kapot", "reparatie", "repair"},
	"abonnement":    {"subscription", "opzeggen", "cancel", "annuleren", "plan", "lidmaatschap"},
	"korting":       {"discount", "actie", "aanbieding", "kortingscode", "coupon", "sale"},
}

// stopWords are high-frequency Dutch and English function words dropped
// during keyword extraction.
var stopWords = map[string]struct{}{
	// Dutch
	"de": {}, "het": {}, "een": {}, "en": {}, "van": {}, "voor": {}, "met": {},
	"aan": {}, "bij": {}, "naar": {}, "dat": {}, "dit": {}, "deze": {}, "die": {},
	"zijn": {}, "wordt": {}, "worden": {}, "hebben": {}, "heeft": {}, "kan": {},
	"kunnen": {}, "wat": {}, "hoe": {}, "waar": {}, "wanneer": {}, "waarom": {},
	"wie": {}, "welke": {}, "over": {}, "ook": {}, "niet": {}, "maar": {},
	"mijn": {}, "jouw": {}, "jullie": {}, "onze": {},
	// English
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {},
	"what": {}, "how": {}, "where": {}, "when": {}, "why": {}, "who": {},
	"which": {}, "are": {}, "was": {}, "were": {}, "can": {}, "could": {},
	"does": {}, "do": {}, "about": {}, "from": {}, "have": {}, "has": {},
	"you": {}, "your": {}, "our": {}, "not": {}, "but": {},
}

// Preprocessor normalizes user queries before retrieval. It is stateless and
// safe for concurrent use.
type Preprocessor struct{}

// NewPreprocessor creates a query preprocessor.
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{}
}

// Normalize lowercases and trims a query, appends synonym expansions and
// strips stop words. It returns the empty string when nothing survives; the
// caller decides whether to fall back to the raw query.
func (p *Preprocessor) Normalize(query string) string {
	lowered := strings.ToLower(strings.TrimSpace(query))
	if lowered == "" {
		return ""
	}

	expanded := p.expandSynonyms(lowered)

	kept := []string{}
	for _, token := range tokenize(expanded) {
		if len([]rune(token)) <= 2 {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		kept = append(kept, token)
	}
	return strings.Join(kept, " ")
}

// Keywords returns the deduplicated significant tokens of a query, in first
// occurrence order. Synonyms are not expanded; keyword scoring wants only
// what the user actually typed.
func (p *Preprocessor) Keywords(query string) []string {
	lowered := strings.ToLower(strings.TrimSpace(query))
	seen := map[string]struct{}{}
	keywords := []string{}
	for _, token := range tokenize(lowered) {
		if len([]rune(token)) <= 2 {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
	}
	return keywords
}

// expandSynonyms appends every group whose canonical term or any member
// occurs in the lowered query. Group members already present are not
// duplicated.
func (p *Preprocessor) expandSynonyms(lowered string) string {
	present := map[string]struct{}{}
	for _, token := range tokenize(lowered) {
		present[token] = struct{}{}
	}

	additions := []string{}
	for canonical, members := range synonymGroups {
		if !groupMatches(present, canonical, members) {
			continue
		}
		if _, ok := present[canonical]; !ok {
			additions = append(additions, canonical)
			present[canonical] = struct{}{}
		}
		for _, member := range members {
			if _, ok := present[member]; ok {
				continue
			}
			additions = append(additions, member)
			present[member] = struct{}{}
		}
	}
	if len(additions) == 0 {
		return lowered
	}
	// Map iteration order is random; sort for reproducible output.
	sort.Strings(additions)
	return lowered + " " + strings.Join(additions, " ")
}

// groupMatches reports whether any member of a synonym group occurs as a
// token in the query.
func groupMatches(present map[string]struct{}, canonical string, members []string) bool {
	if _, ok := present[canonical]; ok {
		return true
	}
	for _, member := range members {
		if _, ok := present[member]; ok {
			return true
		}
	}
	return false
}

// tokenize splits on any non-letter, non-digit rune.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
