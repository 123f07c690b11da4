package refgraph

import (
	"fmt"
	"sort"

	"github.com/weftdev/weft/internal/item"
)

// ─── Config ──────────────────────────────────────────────────────────────────

// Config bounds the engine's worst-case cost. There is no internal
// cache or cancellation: callers rely on these caps to keep every
// operation cheap enough to run synchronously.
type Config struct {
	// ReferenceThreshold is the minimum total similarity for a
	// reference to be persisted.
	ReferenceThreshold float64
	// SuggestionFloor is the minimum confidence for a suggestion.
	SuggestionFloor float64
	// SearchKeywords is how many top keywords seed the candidate search.
	SearchKeywords int
	// MaxCandidates caps the candidate set per item.
	MaxCandidates int
	// MaxFocusDepth caps focused-map traversal depth.
	MaxFocusDepth int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		ReferenceThreshold: 0.7,
		SuggestionFloor:    0.6,
		SearchKeywords:     3,
		MaxCandidates:      20,
		MaxFocusDepth:      5,
	}
}

// ─── Engine ──────────────────────────────────────────────────────────────────

// Engine is the reference graph engine. It owns no state beyond the
// injected store and configuration; all graph structure lives in item
// metadata and is recomputed from the store on every call.
type Engine struct {
	store item.Store
	cfg   Config
}

// New creates an Engine over the given item store.
func New(store item.Store, cfg Config) *Engine {
	if cfg.ReferenceThreshold <= 0 {
		cfg = DefaultConfig()
	}
	return &Engine{store: store, cfg: cfg}
}

// Similarity scores two items. Exposed on the engine so callers hold a
// single handle; the computation itself is stateless.
func (e *Engine) Similarity(a, b *item.WorkItem) SimilarityScore {
	return Similarity(a, b)
}

// ─── Reference generation ────────────────────────────────────────────────────

// GenerateReferences discovers, scores, and persists the smart
// references for one item, then runs the reciprocal scan that lets
// other active items pick up a reference to it.
//
// The item's smart_references list is fully overwritten, never
// incrementally patched. Reciprocal references on other items are
// merged: an existing reference to the same target with the same
// relationship type is replaced, a different type accumulates — the
// graph is directed and deliberately asymmetric.
func (e *Engine) GenerateReferences(w *item.WorkItem) ([]item.SmartReference, error) {
	if w == nil {
		return nil, nil
	}

	// Cache derived metadata on the item; it is regenerated only when
	// absent.
	meta := metadataFor(w)
	w.Metadata.Similarity = meta

	candidates, err := e.findCandidates(w, meta)
	if err != nil {
		return nil, err
	}

	refs := e.scoreCandidates(w, candidates)

	w.Metadata.SmartReferences = refs
	if err := e.store.SaveWorkItem(w); err != nil {
		return nil, fmt.Errorf("refgraph: persist references for %s: %w", w.ID, err)
	}

	if err := e.reciprocalScan(w); err != nil {
		return nil, err
	}

	return refs, nil
}

// UpdateOnChange regenerates references for the item with the given
// id, looking it up first in the active set and then in history. An
// unknown id is a no-op, not an error.
func (e *Engine) UpdateOnChange(itemID string) error {
	w, err := e.lookup(itemID)
	if err != nil {
		return err
	}
	if w == nil {
		return nil
	}
	_, err = e.GenerateReferences(w)
	return err
}

// findCandidates builds the deduplicated candidate set: a substring
// history search per top keyword, plus one per inferred domain.
func (e *Engine) findCandidates(w *item.WorkItem, meta *item.SimilarityMetadata) ([]item.WorkItem, error) {
	var terms []string
	for i, kw := range meta.Keywords {
		if i >= e.cfg.SearchKeywords {
			break
		}
		terms = append(terms, kw)
	}
	// "general" is the inference fallback, not a searchable tag.
	if meta.FeatureDomain != "" && meta.FeatureDomain != "general" {
		terms = append(terms, meta.FeatureDomain)
	}
	if meta.TechnicalDomain != "" && meta.TechnicalDomain != "general" {
		terms = append(terms, meta.TechnicalDomain)
	}

	seen := map[string]bool{w.ID: true}
	var candidates []item.WorkItem
	for _, term := range terms {
		found, err := e.store.QueryHistory(term)
		if err != nil {
			return nil, fmt.Errorf("refgraph: candidate search %q: %w", term, err)
		}
		for _, c := range found {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			candidates = append(candidates, c)
			if len(candidates) >= e.cfg.MaxCandidates {
				return candidates, nil
			}
		}
	}
	return candidates, nil
}

// scoreCandidates keeps candidates at or above the reference threshold
// and assembles the sorted reference list.
func (e *Engine) scoreCandidates(w *item.WorkItem, candidates []item.WorkItem) []item.SmartReference {
	var refs []item.SmartReference
	for i := range candidates {
		c := &candidates[i]
		score := Similarity(w, c)
		if score.Total < e.cfg.ReferenceThreshold {
			continue
		}
		refs = append(refs, item.SmartReference{
			TargetID:         c.ID,
			SimilarityScore:  score.Total,
			RelationshipType: Classify(w, c),
			Confidence:       confidence(score),
			AutoGenerated:    true,
			CreatedAt:        item.Now(),
		})
	}

	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].SimilarityScore != refs[j].SimilarityScore {
			return refs[i].SimilarityScore > refs[j].SimilarityScore
		}
		return refs[i].TargetID < refs[j].TargetID
	})
	return refs
}

// reciprocalScan lets every other active item pick up a one-directional
// reference to the changed item when the pair scores at or above the
// threshold.
func (e *Engine) reciprocalScan(w *item.WorkItem) error {
	active, err := e.store.LoadActiveItems()
	if err != nil {
		return fmt.Errorf("refgraph: reciprocal scan: %w", err)
	}

	for i := range active {
		o := &active[i]
		if o.ID == w.ID {
			continue
		}
		score := Similarity(o, w)
		if score.Total < e.cfg.ReferenceThreshold {
			continue
		}

		ref := item.SmartReference{
			TargetID:         w.ID,
			SimilarityScore:  score.Total,
			RelationshipType: Classify(o, w),
			Confidence:       confidence(score),
			AutoGenerated:    true,
			CreatedAt:        item.Now(),
		}
		o.Metadata.Similarity = metadataFor(o)
		o.Metadata.SmartReferences = mergeReference(o.Metadata.SmartReferences, ref)

		if err := e.store.SaveWorkItem(o); err != nil {
			return fmt.Errorf("refgraph: persist reciprocal reference on %s: %w", o.ID, err)
		}
	}
	return nil
}

// mergeReference replaces an existing reference with the same target
// and relationship type, otherwise appends. Same target under a
// different type accumulates.
func mergeReference(refs []item.SmartReference, ref item.SmartReference) []item.SmartReference {
	for i, r := range refs {
		if r.TargetID == ref.TargetID && r.RelationshipType == ref.RelationshipType {
			refs[i] = ref
			return refs
		}
	}
	return append(refs, ref)
}

// confidence boosts the total score by 0.1 per contributing dimension,
// capped at 1.0.
func confidence(s SimilarityScore) float64 {
	dims := 0
	if s.Keyword > 0.3 {
		dims++
	}
	if s.Domain > 0 {
		dims++
	}
	if s.Location > 0.3 {
		dims++
	}
	if s.Strategic > 0 {
		dims++
	}
	c := s.Total + 0.1*float64(dims)
	if c > 1.0 {
		c = 1.0
	}
	return c
}

// lookup finds an item by id: active set first, then history. Missing
// items return (nil, nil).
func (e *Engine) lookup(id string) (*item.WorkItem, error) {
	active, err := e.store.LoadActiveItems()
	if err != nil {
		return nil, fmt.Errorf("refgraph: load active items: %w", err)
	}
	for i := range active {
		if active[i].ID == id {
			return &active[i], nil
		}
	}
	w, err := e.store.GetHistoricalItem(id)
	if err != nil {
		return nil, fmt.Errorf("refgraph: lookup %s: %w", id, err)
	}
	return w, nil
}
