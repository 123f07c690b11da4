// Package item defines the work-item data model and the item store.
//
// A work item is an atomic captured unit of work — a todo, plan,
// proposal, finding, or decision — tracked per project. The reference
// engine in internal/refgraph reads items through the Store interface
// and writes back only the smart_references portion of item metadata.
package item

import (
	"strings"
	"time"
)

// ─── Statuses ────────────────────────────────────────────────────────────────

// Item statuses. Open, in-progress, and blocked items are "active";
// done and dropped items are "historical".
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusBlocked    = "blocked"
	StatusDone       = "done"
	StatusDropped    = "dropped"
)

// ActiveStatuses lists statuses of items still being worked on.
var ActiveStatuses = []string{StatusOpen, StatusInProgress, StatusBlocked}

// HistoricalStatuses lists statuses of items that left the active set.
var HistoricalStatuses = []string{StatusDone, StatusDropped}

// IsActiveStatus reports whether status belongs to the active set.
func IsActiveStatus(status string) bool {
	for _, s := range ActiveStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ─── Types ───────────────────────────────────────────────────────────────────

// WorkItem is a single tracked unit of work.
type WorkItem struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"` // todo, plan, proposal, finding, decision
	Content   string   `json:"content"`
	Status    string   `json:"status"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
	Metadata  Metadata `json:"metadata"`
}

// Active reports whether the item is in the active working set.
func (w *WorkItem) Active() bool {
	return IsActiveStatus(w.Status)
}

// Preview returns the first line of content truncated to max runes.
func (w *WorkItem) Preview(max int) string {
	line := w.Content
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	return Truncate(line, max)
}

// Metadata is the engine-owned portion of a work item. Other tooling
// may read smart_references directly from disk; similarity_metadata is
// a derivation cache regenerated when absent.
type Metadata struct {
	Similarity      *SimilarityMetadata `json:"similarity_metadata,omitempty"`
	SmartReferences []SmartReference    `json:"smart_references,omitempty"`
}

// SimilarityMetadata holds the derived comparison tags for one item.
type SimilarityMetadata struct {
	Keywords        []string `json:"keywords,omitempty"`
	FeatureDomain   string   `json:"feature_domain,omitempty"`
	TechnicalDomain string   `json:"technical_domain,omitempty"`
	CodeLocations   []string `json:"code_locations,omitempty"`
	StrategicTheme  string   `json:"strategic_theme,omitempty"`
}

// Relationship types carried on smart references.
const (
	RelRelated      = "related"
	RelContinuation = "continuation"
	RelConflict     = "conflict"
	RelDependency   = "dependency"
)

// SmartReference is a directed, scored, typed link to another item.
// A persisted reference always has SimilarityScore >= the engine's
// reference threshold and Confidence in [0,1].
type SmartReference struct {
	TargetID         string  `json:"target_id"`
	SimilarityScore  float64 `json:"similarity_score"`
	RelationshipType string  `json:"relationship_type"`
	Confidence       float64 `json:"confidence"`
	AutoGenerated    bool    `json:"auto_generated"`
	CreatedAt        string  `json:"created_at,omitempty"`
}

// Stats holds aggregate item-store statistics.
type Stats struct {
	TotalItems      int            `json:"total_items"`
	ActiveItems     int            `json:"active_items"`
	HistoricalItems int            `json:"historical_items"`
	TotalReferences int            `json:"total_references"`
	ByType          map[string]int `json:"by_type"`
}

// SearchResult embeds a WorkItem with its FTS5 rank score.
type SearchResult struct {
	WorkItem
	Rank float64 `json:"rank"`
}

// ─── Store interface ─────────────────────────────────────────────────────────

// Store is the persistence boundary consumed by the reference engine.
// Implementations must treat missing items as (nil, nil), never as an
// error — the engine degrades to empty results on absent data.
type Store interface {
	// LoadActiveItems returns every item in an active status.
	LoadActiveItems() ([]WorkItem, error)

	// GetHistoricalItem returns a historical item by id, or nil if the
	// id is unknown or still active.
	GetHistoricalItem(id string) (*WorkItem, error)

	// QueryHistory returns historical items whose content contains the
	// keyword (case-insensitive substring match).
	QueryHistory(keyword string) ([]WorkItem, error)

	// SaveWorkItem inserts or overwrites an item, metadata included.
	SaveWorkItem(it *WorkItem) error
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// Truncate shortens s to max runes, appending "..." when cut.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// Now returns the store's canonical timestamp format (UTC, second
// precision, matching SQLite's datetime('now')).
func Now() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05")
}
