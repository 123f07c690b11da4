package refgraph

import (
	"fmt"
	"sort"

	"github.com/weftdev/weft/internal/item"
)

// Suggestion priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Suggestion types.
const (
	SuggestContinueWork      = "continue_work"
	SuggestReviewConflict    = "review_conflict"
	SuggestPromoteHistorical = "promote_historical"
	SuggestReferenceDecision = "reference_decision"
)

// Suggestion is a user-facing recommendation derived from a
// high-confidence reference. Suggestions are ephemeral: built on
// demand, never persisted.
type Suggestion struct {
	Type         string  `json:"type"`
	Priority     string  `json:"priority"`
	Message      string  `json:"message"`
	TargetItemID string  `json:"target_item_id"`
	Confidence   float64 `json:"confidence"`
	ActionHint   string  `json:"action_hint,omitempty"`
}

const suggestionPreviewLen = 80

var priorityRank = map[string]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

// Suggestions regenerates references for each active item and turns
// the high-confidence ones into prioritized recommendations. Ordering
// is priority first, then confidence descending.
func (e *Engine) Suggestions(activeItems []item.WorkItem) ([]Suggestion, error) {
	var out []Suggestion

	for i := range activeItems {
		w := &activeItems[i]
		refs, err := e.GenerateReferences(w)
		if err != nil {
			return nil, err
		}

		for _, ref := range refs {
			if ref.Confidence < e.cfg.SuggestionFloor {
				continue
			}
			target, err := e.lookup(ref.TargetID)
			if err != nil {
				return nil, err
			}
			if target == nil {
				continue // reference to a vanished item; nothing to show
			}
			out = append(out, buildSuggestion(w, target, ref))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if priorityRank[out[i].Priority] != priorityRank[out[j].Priority] {
			return priorityRank[out[i].Priority] < priorityRank[out[j].Priority]
		}
		return out[i].Confidence > out[j].Confidence
	})
	return out, nil
}

func buildSuggestion(w, target *item.WorkItem, ref item.SmartReference) Suggestion {
	preview := item.Truncate(target.Content, suggestionPreviewLen)

	s := Suggestion{
		TargetItemID: ref.TargetID,
		Confidence:   ref.Confidence,
	}

	switch ref.RelationshipType {
	case item.RelContinuation:
		s.Type = SuggestContinueWork
		s.Priority = PriorityHigh
		s.Message = fmt.Sprintf("%q looks like a continuation of %q — consider picking it back up.", w.Preview(suggestionPreviewLen), preview)
		s.ActionHint = "Open the earlier item and resume from where it stopped"
	case item.RelConflict:
		s.Type = SuggestReviewConflict
		s.Priority = PriorityHigh
		s.Message = fmt.Sprintf("%q may conflict with %q — review before proceeding.", w.Preview(suggestionPreviewLen), preview)
		s.ActionHint = "Compare both approaches and record a decision"
	case item.RelDependency:
		s.Type = SuggestPromoteHistorical
		s.Priority = PriorityMedium
		s.Message = fmt.Sprintf("%q appears to depend on %q.", w.Preview(suggestionPreviewLen), preview)
		s.ActionHint = "Consider promoting the dependency back into active work"
	default:
		s.Type = SuggestReferenceDecision
		s.Priority = PriorityLow
		s.Message = fmt.Sprintf("Past work %q relates to %q.", preview, w.Preview(suggestionPreviewLen))
		s.ActionHint = "Check whether the earlier outcome still applies"
	}
	return s
}
