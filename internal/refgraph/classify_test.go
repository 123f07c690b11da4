package refgraph

import (
	"testing"

	"github.com/weftdev/weft/internal/item"
)

func TestClassify_Continuation(t *testing.T) {
	a := activeItem("a", "Continue the onboarding flow rework")
	b := historicalItem("b", "Onboarding flow rework, phase one")

	if got := Classify(&a, &b); got != item.RelContinuation {
		t.Errorf("Classify = %q, want continuation", got)
	}
}

func TestClassify_Conflict(t *testing.T) {
	a := activeItem("a", "Use MongoDB instead of Redis for session storage")
	b := historicalItem("b", "Decision: use Redis for sessions")

	if got := Classify(&a, &b); got != item.RelConflict {
		t.Errorf("Classify = %q, want conflict", got)
	}
}

func TestClassify_Dependency(t *testing.T) {
	a := activeItem("a", "Ship the billing report; depends on the export pipeline")
	b := historicalItem("b", "Export pipeline design")

	if got := Classify(&a, &b); got != item.RelDependency {
		t.Errorf("Classify = %q, want dependency", got)
	}
}

func TestClassify_DefaultsToRelated(t *testing.T) {
	// Regression guard: same domain, overlapping vocabulary, but no
	// trigger phrase in either item must stay "related".
	a := activeItem("a", "Implement OAuth2 authentication with refresh tokens")
	b := historicalItem("b", "Design auth system with email-based recovery")

	if got := Classify(&a, &b); got != item.RelRelated {
		t.Errorf("Classify = %q, want related", got)
	}
}

func TestClassify_OrderedRules_ContinuationBeatsConflict(t *testing.T) {
	// An item carrying both a continuation and a conflict phrase
	// classifies by the earlier rule.
	a := activeItem("a", "Follow up on the cache work; use LRU instead of TTL")
	b := historicalItem("b", "Cache eviction groundwork")

	if got := Classify(&a, &b); got != item.RelContinuation {
		t.Errorf("Classify = %q, want continuation", got)
	}
}

func TestClassify_EitherItemTriggers(t *testing.T) {
	// The phrase lives in the target, not the source; classification
	// is direction-blind.
	a := activeItem("a", "Polish the settings page")
	b := historicalItem("b", "Settings page cleanup, follow up in the next sprint")

	if got := Classify(&a, &b); got != item.RelContinuation {
		t.Errorf("Classify = %q, want continuation", got)
	}
}
