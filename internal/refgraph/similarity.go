package refgraph

import (
	"sort"

	"github.com/weftdev/weft/internal/item"
)

// Similarity dimension weights. They sum to 1.0 so the total stays in
// [0,1] as long as each component does.
const (
	weightKeyword   = 0.30
	weightDomain    = 0.25
	weightLocation  = 0.20
	weightStrategic = 0.15
	weightContent   = 0.10

	domainMatchScore    = 0.8
	strategicMatchScore = 0.6

	contentWindowWords = 50
)

// SimilarityScore is the weighted multi-dimension similarity between
// two work items. All components and Total are in [0,1].
type SimilarityScore struct {
	Keyword   float64 `json:"keyword_score"`
	Domain    float64 `json:"domain_score"`
	Location  float64 `json:"location_score"`
	Strategic float64 `json:"strategic_score"`
	Content   float64 `json:"content_score"`
	Total     float64 `json:"total_score"`

	SharedKeywords  []string `json:"shared_keywords,omitempty"`
	SharedLocations []string `json:"shared_locations,omitempty"`
}

// Similarity scores the similarity between two work items. The
// function is symmetric: Similarity(a, b) == Similarity(b, a). Missing
// similarity metadata is derived on the fly and every denominator is
// guarded, so the score degrades toward zero instead of failing.
func Similarity(a, b *item.WorkItem) SimilarityScore {
	ma, mb := metadataFor(a), metadataFor(b)

	var s SimilarityScore

	s.SharedKeywords = intersect(ma.Keywords, mb.Keywords)
	s.Keyword = float64(len(s.SharedKeywords)) /
		float64(maxInt(len(ma.Keywords), len(mb.Keywords), 1))

	if nonEmptyEqual(ma.FeatureDomain, mb.FeatureDomain) ||
		nonEmptyEqual(ma.TechnicalDomain, mb.TechnicalDomain) {
		s.Domain = domainMatchScore
	}

	s.SharedLocations = intersect(ma.CodeLocations, mb.CodeLocations)
	s.Location = float64(len(s.SharedLocations)) /
		float64(maxInt(len(ma.CodeLocations), len(mb.CodeLocations), 1))

	if nonEmptyEqual(ma.StrategicTheme, mb.StrategicTheme) {
		s.Strategic = strategicMatchScore
	}

	s.Content = contentOverlap(a.Content, b.Content)

	s.Total = weightKeyword*s.Keyword +
		weightDomain*s.Domain +
		weightLocation*s.Location +
		weightStrategic*s.Strategic +
		weightContent*s.Content

	return s
}

// contentOverlap is the word-overlap ratio over up to contentWindowWords
// distinct lowercase tokens (length > 3) taken independently from each
// content string.
func contentOverlap(a, b string) float64 {
	wa := contentWords(a)
	wb := contentWords(b)
	common := intersect(wa, wb)
	return float64(len(common)) / float64(maxInt(len(wa), len(wb), 1))
}

func contentWords(content string) []string {
	tokens := tokenize(content)
	seen := map[string]bool{}
	var words []string
	for _, t := range tokens {
		if seen[t] {
			continue
		}
		seen[t] = true
		words = append(words, t)
		if len(words) >= contentWindowWords {
			break
		}
	}
	return words
}

// intersect returns the sorted common elements of two string slices.
func intersect(a, b []string) []string {
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	var common []string
	seen := map[string]bool{}
	for _, s := range b {
		if set[s] && !seen[s] {
			seen[s] = true
			common = append(common, s)
		}
	}
	sort.Strings(common)
	return common
}

func nonEmptyEqual(a, b string) bool {
	return a != "" && a == b
}

func maxInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
