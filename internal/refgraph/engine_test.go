package refgraph

import (
	"testing"

	"github.com/weftdev/weft/internal/item"
)

const (
	oauthFixContent    = "Fix OAuth2 authentication login endpoint session token refresh handling"
	oauthImplContent   = "Implement OAuth2 authentication login endpoint with session token handling"
	unrelatedContent   = "Repaint the office walls before winter"
	mongoSwapContent   = "Use MongoDB instead of Redis for session storage and caching"
	redisChoiceContent = "Decision: use Redis for session storage and caching of user data"
)

func newTestEngine(items ...item.WorkItem) (*Engine, *fakeStore) {
	store := newFakeStore(items...)
	return New(store, DefaultConfig()), store
}

func TestGenerateReferences_FindsSimilarHistory(t *testing.T) {
	w := activeItem("a1", oauthFixContent)
	e, store := newTestEngine(
		w,
		historicalItem("h1", oauthImplContent),
		historicalItem("h2", unrelatedContent),
	)

	refs, err := e.GenerateReferences(&w)
	if err != nil {
		t.Fatalf("GenerateReferences: %v", err)
	}

	if len(refs) != 1 {
		t.Fatalf("got %d references, want 1: %+v", len(refs), refs)
	}
	if refs[0].TargetID != "h1" {
		t.Errorf("target = %s, want h1", refs[0].TargetID)
	}
	if !refs[0].AutoGenerated {
		t.Error("reference should be auto_generated")
	}
	if refs[0].RelationshipType != item.RelRelated {
		t.Errorf("relationship = %s, want related", refs[0].RelationshipType)
	}

	// Persisted, not just returned.
	saved := store.get("a1")
	if len(saved.Metadata.SmartReferences) != 1 {
		t.Fatalf("persisted references = %d, want 1", len(saved.Metadata.SmartReferences))
	}
	if saved.Metadata.Similarity == nil {
		t.Error("similarity metadata should be cached on save")
	}
}

func TestGenerateReferences_NeverBelowThreshold(t *testing.T) {
	w := activeItem("a1", oauthFixContent)
	e, _ := newTestEngine(
		w,
		historicalItem("h1", oauthImplContent),
		historicalItem("h2", "Authentication overview notes"),
		historicalItem("h3", "Session handling glossary for the login team"),
		historicalItem("h4", unrelatedContent),
	)

	refs, err := e.GenerateReferences(&w)
	if err != nil {
		t.Fatalf("GenerateReferences: %v", err)
	}
	for _, r := range refs {
		if r.SimilarityScore < 0.7 {
			t.Errorf("reference %s has score %v below threshold", r.TargetID, r.SimilarityScore)
		}
		if r.Confidence < 0 || r.Confidence > 1 {
			t.Errorf("reference %s has confidence %v out of [0,1]", r.TargetID, r.Confidence)
		}
	}
}

func TestGenerateReferences_SortedByScoreDescending(t *testing.T) {
	w := activeItem("a1", oauthFixContent)
	e, _ := newTestEngine(
		w,
		historicalItem("h1", oauthImplContent),
		historicalItem("h2", oauthFixContent), // identical content scores highest
	)

	refs, err := e.GenerateReferences(&w)
	if err != nil {
		t.Fatalf("GenerateReferences: %v", err)
	}
	for i := 1; i < len(refs); i++ {
		if refs[i].SimilarityScore > refs[i-1].SimilarityScore {
			t.Errorf("references not sorted: %v before %v",
				refs[i-1].SimilarityScore, refs[i].SimilarityScore)
		}
	}
	if len(refs) == 0 || refs[0].TargetID != "h2" {
		t.Errorf("strongest reference should be h2, got %+v", refs)
	}
}

func TestGenerateReferences_OverwritesPreviousList(t *testing.T) {
	w := activeItem("a1", oauthFixContent)
	w.Metadata.SmartReferences = []item.SmartReference{
		{TargetID: "stale", SimilarityScore: 0.99, RelationshipType: item.RelRelated},
	}
	e, store := newTestEngine(w, historicalItem("h1", oauthImplContent))

	if _, err := e.GenerateReferences(&w); err != nil {
		t.Fatalf("GenerateReferences: %v", err)
	}

	for _, r := range store.get("a1").Metadata.SmartReferences {
		if r.TargetID == "stale" {
			t.Error("stale reference survived regeneration")
		}
	}
}

func TestGenerateReferences_ReciprocalScan(t *testing.T) {
	changed := activeItem("a1", oauthFixContent)
	other := activeItem("a2", oauthImplContent)
	far := activeItem("a3", unrelatedContent)
	e, store := newTestEngine(changed, other, far)

	if _, err := e.GenerateReferences(&changed); err != nil {
		t.Fatalf("GenerateReferences: %v", err)
	}

	// The similar active item picked up a one-directional reference.
	gotOther := store.get("a2").Metadata.SmartReferences
	if len(gotOther) != 1 || gotOther[0].TargetID != "a1" {
		t.Fatalf("a2 references = %+v, want one reference to a1", gotOther)
	}

	// The dissimilar one did not.
	if refs := store.get("a3").Metadata.SmartReferences; len(refs) != 0 {
		t.Errorf("a3 references = %+v, want none", refs)
	}

	// The changed item itself gets no reciprocal self-reference.
	for _, r := range store.get("a1").Metadata.SmartReferences {
		if r.TargetID == "a1" {
			t.Error("self-reference created")
		}
	}
}

func TestGenerateReferences_ReciprocalMergeReplacesSameType(t *testing.T) {
	changed := activeItem("a1", oauthFixContent)
	other := activeItem("a2", oauthImplContent)
	other.Metadata.SmartReferences = []item.SmartReference{
		{TargetID: "a1", SimilarityScore: 0.71, RelationshipType: item.RelRelated, Confidence: 0.8},
		{TargetID: "a1", SimilarityScore: 0.75, RelationshipType: item.RelDependency, Confidence: 0.8},
	}
	e, store := newTestEngine(changed, other)

	if _, err := e.GenerateReferences(&changed); err != nil {
		t.Fatalf("GenerateReferences: %v", err)
	}

	// Same target+type replaced in place, the other type kept: the
	// list must not grow on repeated saves.
	refs := store.get("a2").Metadata.SmartReferences
	if len(refs) != 2 {
		t.Fatalf("a2 references = %+v, want 2", refs)
	}
}

func TestUpdateOnChange_UnknownIDIsNoOp(t *testing.T) {
	e, store := newTestEngine(activeItem("a1", oauthFixContent))

	if err := e.UpdateOnChange("ghost"); err != nil {
		t.Fatalf("UpdateOnChange: %v", err)
	}
	if store.saves != 0 {
		t.Errorf("saves = %d, want 0 for unknown id", store.saves)
	}
}

func TestUpdateOnChange_RegeneratesActiveItem(t *testing.T) {
	e, store := newTestEngine(
		activeItem("a1", oauthFixContent),
		historicalItem("h1", oauthImplContent),
	)

	if err := e.UpdateOnChange("a1"); err != nil {
		t.Fatalf("UpdateOnChange: %v", err)
	}

	refs := store.get("a1").Metadata.SmartReferences
	if len(refs) != 1 || refs[0].TargetID != "h1" {
		t.Errorf("a1 references = %+v, want one reference to h1", refs)
	}
}

func TestUpdateOnChange_FindsHistoricalItem(t *testing.T) {
	e, store := newTestEngine(
		historicalItem("h1", oauthImplContent),
		historicalItem("h2", oauthFixContent),
	)

	if err := e.UpdateOnChange("h1"); err != nil {
		t.Fatalf("UpdateOnChange: %v", err)
	}
	refs := store.get("h1").Metadata.SmartReferences
	if len(refs) != 1 || refs[0].TargetID != "h2" {
		t.Errorf("h1 references = %+v, want one reference to h2", refs)
	}
}
