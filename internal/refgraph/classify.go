package refgraph

import (
	"strings"

	"github.com/weftdev/weft/internal/item"
)

// relationRule maps trigger phrases to a relationship type. Rules are
// checked in order and the first phrase hit anywhere in either item's
// content wins, so an item carrying both a continuation phrase and a
// conflict phrase classifies as continuation.
//
// The check is direction-blind on purpose: which of the two items
// contains the phrase does not influence the result. See DESIGN.md.
type relationRule struct {
	phrases []string
	relType string
}

var relationRules = []relationRule{
	{
		phrases: []string{"continue", "follow up", "follow-up", "next step", "building on", "resuming"},
		relType: item.RelContinuation,
	},
	{
		phrases: []string{"instead", "alternative", "rather than", "replaces", "supersedes", "conflicts with"},
		relType: item.RelConflict,
	},
	{
		phrases: []string{"depends on", "requires", "blocked by", "prerequisite", "needs first"},
		relType: item.RelDependency,
	},
}

// Classify labels the relationship between two similar items by
// scanning both contents for trigger phrases. Defaults to "related"
// when no rule fires.
func Classify(a, b *item.WorkItem) string {
	ca := strings.ToLower(a.Content)
	cb := strings.ToLower(b.Content)

	for _, rule := range relationRules {
		for _, p := range rule.phrases {
			if strings.Contains(ca, p) || strings.Contains(cb, p) {
				return rule.relType
			}
		}
	}
	return item.RelRelated
}
