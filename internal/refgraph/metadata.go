// Package refgraph implements the reference and relationship graph
// engine for the work tracker.
//
// It discovers relationships between work items by multi-dimensional
// content similarity, persists them as smart references through the
// item store, and exposes the resulting graph for suggestions,
// clustering, path-finding, and visualization. The engine holds no
// state of its own: every operation re-reads the item set from the
// injected store, so results are always derived from current data.
package refgraph

import (
	"sort"
	"strings"
	"unicode"

	"github.com/weftdev/weft/internal/item"
)

// ─── Keyword extraction ──────────────────────────────────────────────────────

const (
	maxKeywords   = 10
	minTokenRunes = 4
)

// stopWords are common words excluded from keywords. Tokens shorter
// than minTokenRunes are dropped before this filter applies, so only
// longer stop words need listing.
var stopWords = map[string]bool{
	"that": true, "this": true, "with": true, "from": true, "have": true,
	"will": true, "been": true, "were": true, "they": true, "their": true,
	"would": true, "could": true, "should": true, "about": true,
	"which": true, "where": true, "when": true, "what": true, "your": true,
	"into": true, "them": true, "then": true, "than": true, "some": true,
	"only": true, "over": true, "just": true, "also": true, "very": true,
	"such": true, "each": true, "more": true, "most": true, "other": true,
	"after": true, "before": true, "because": true, "while": true,
	"these": true, "those": true, "there": true, "does": true, "done": true,
}

// vocabRule maps a set of trigger terms to a label. A token triggers a
// rule when it contains any of the terms as a substring, so "oauth2"
// and "authentication" both trigger "auth".
type vocabRule struct {
	terms []string
	label string
}

// featureDomainRules infer the feature domain. First match wins.
var featureDomainRules = []vocabRule{
	{[]string{"auth", "login", "user", "password", "account", "signup"}, "user-management"},
	{[]string{"payment", "billing", "invoice", "checkout", "subscription"}, "payments"},
	{[]string{"search", "query", "filter", "ranking"}, "search"},
	{[]string{"notification", "email", "alert", "webhook"}, "notifications"},
	{[]string{"report", "analytics", "dashboard", "metric"}, "analytics"},
	{[]string{"import", "export", "migration", "sync"}, "data-management"},
}

// technicalDomainRules infer the technical domain. First match wins.
var technicalDomainRules = []vocabRule{
	{[]string{"frontend", "component", "react", "view", "styling"}, "frontend"},
	{[]string{"backend", "server", "endpoint", "handler", "service"}, "backend"},
	{[]string{"database", "sqlite", "postgres", "schema", "index"}, "database"},
	{[]string{"deploy", "docker", "kubernetes", "pipeline", "terraform"}, "infrastructure"},
	{[]string{"test", "coverage", "regression", "fixture"}, "testing"},
}

// codeLocationRules infer likely code areas. Unlike the domain rules,
// every matching rule contributes — an item can touch several areas.
var codeLocationRules = []vocabRule{
	{[]string{"auth", "login", "session"}, "src/auth"},
	{[]string{"endpoint", "handler", "route", "controller"}, "src/api"},
	{[]string{"component", "view", "page", "styling"}, "src/ui"},
	{[]string{"database", "schema", "model", "repository"}, "src/storage"},
	{[]string{"config", "settings", "environment"}, "config"},
	{[]string{"test", "fixture", "regression"}, "tests"},
}

// strategicThemeRules infer the strategic theme. First match wins.
var strategicThemeRules = []vocabRule{
	{[]string{"security", "auth", "encrypt", "vulnerability", "token"}, "security"},
	{[]string{"performance", "optimize", "cache", "latency", "slow"}, "performance"},
	{[]string{"crash", "bugfix", "error", "flaky", "incident"}, "reliability"},
	{[]string{"scale", "load", "concurrent", "throughput"}, "scalability"},
	{[]string{"usability", "onboarding", "accessibility", "design"}, "user-experience"},
}

// ExtractMetadata derives similarity metadata from raw item text. It is
// deterministic and has no side effects; the caller decides whether to
// cache the result on the item.
func ExtractMetadata(content string) *item.SimilarityMetadata {
	tokens := tokenize(content)

	return &item.SimilarityMetadata{
		Keywords:        extractKeywords(tokens),
		FeatureDomain:   matchFirst(tokens, featureDomainRules),
		TechnicalDomain: matchFirst(tokens, technicalDomainRules),
		CodeLocations:   matchAll(tokens, codeLocationRules),
		StrategicTheme:  matchTheme(tokens, strategicThemeRules),
	}
}

// metadataFor returns the item's cached similarity metadata, deriving
// it fresh when absent. Never nil.
func metadataFor(w *item.WorkItem) *item.SimilarityMetadata {
	if w.Metadata.Similarity != nil {
		return w.Metadata.Similarity
	}
	return ExtractMetadata(w.Content)
}

// tokenize lowercases, strips punctuation, and splits on whitespace,
// keeping only tokens of minTokenRunes or more.
func tokenize(content string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return r
		default:
			return ' '
		}
	}, content)

	var tokens []string
	for _, t := range strings.Fields(cleaned) {
		if len([]rune(t)) >= minTokenRunes {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// extractKeywords keeps the first maxKeywords distinct non-stop-word
// tokens in order of appearance.
func extractKeywords(tokens []string) []string {
	seen := map[string]bool{}
	var keywords []string
	for _, t := range tokens {
		if stopWords[t] || seen[t] {
			continue
		}
		seen[t] = true
		keywords = append(keywords, t)
		if len(keywords) >= maxKeywords {
			break
		}
	}
	return keywords
}

func ruleMatches(tokens []string, r vocabRule) bool {
	for _, t := range tokens {
		for _, term := range r.terms {
			if strings.Contains(t, term) {
				return true
			}
		}
	}
	return false
}

// matchFirst returns the label of the first matching rule, or "general".
func matchFirst(tokens []string, rules []vocabRule) string {
	for _, r := range rules {
		if ruleMatches(tokens, r) {
			return r.label
		}
	}
	return "general"
}

// matchTheme is matchFirst without a default: an item with no strategic
// signal has no theme rather than a catch-all one.
func matchTheme(tokens []string, rules []vocabRule) string {
	for _, r := range rules {
		if ruleMatches(tokens, r) {
			return r.label
		}
	}
	return ""
}

// matchAll returns the labels of every matching rule, sorted for
// deterministic output.
func matchAll(tokens []string, rules []vocabRule) []string {
	var labels []string
	for _, r := range rules {
		if ruleMatches(tokens, r) {
			labels = append(labels, r.label)
		}
	}
	sort.Strings(labels)
	return labels
}
