package refgraph

import (
	"reflect"
	"testing"

	"github.com/weftdev/weft/internal/item"
)

// withRef attaches a persisted smart reference to an item.
func withRef(w item.WorkItem, targetID, relType string, strength float64) item.WorkItem {
	w.Metadata.SmartReferences = append(w.Metadata.SmartReferences, item.SmartReference{
		TargetID:         targetID,
		SimilarityScore:  strength,
		RelationshipType: relType,
		Confidence:       strength,
		AutoGenerated:    true,
	})
	return w
}

func TestBuildMap_SummaryMatchesStructure(t *testing.T) {
	e, _ := newTestEngine(
		withRef(activeItem("a1", "Fix login token refresh"), "h1", item.RelRelated, 0.8),
		activeItem("a2", "Repaint the office walls"),
		historicalItem("h1", "Login token design"),
	)

	m, err := e.BuildMap()
	if err != nil {
		t.Fatalf("BuildMap: %v", err)
	}

	if m.Summary.TotalItems != len(m.Nodes) {
		t.Errorf("TotalItems = %d, nodes = %d", m.Summary.TotalItems, len(m.Nodes))
	}
	if m.Summary.TotalReferences != len(m.Edges) {
		t.Errorf("TotalReferences = %d, edges = %d", m.Summary.TotalReferences, len(m.Edges))
	}
	if m.Summary.ClusterCount != len(m.Clusters) {
		t.Errorf("ClusterCount = %d, clusters = %d", m.Summary.ClusterCount, len(m.Clusters))
	}

	// a1, a2 active; h1 pulled in by a1's reference.
	if len(m.Nodes) != 3 {
		t.Errorf("nodes = %+v, want 3", m.Nodes)
	}
	if len(m.Edges) != 1 {
		t.Errorf("edges = %+v, want 1", m.Edges)
	}
	// a2 has no incident edges.
	if m.Summary.OrphanedItems != 1 {
		t.Errorf("OrphanedItems = %d, want 1", m.Summary.OrphanedItems)
	}
}

func TestBuildMap_HistoricalEdgesNotExpanded(t *testing.T) {
	// h1 itself references h2; the full map keeps h1 as a node but
	// does not follow its outgoing references.
	e, _ := newTestEngine(
		withRef(activeItem("a1", "Fix login token refresh"), "h1", item.RelRelated, 0.8),
		withRef(historicalItem("h1", "Login token design"), "h2", item.RelRelated, 0.9),
		historicalItem("h2", "Old token notes"),
	)

	m, err := e.BuildMap()
	if err != nil {
		t.Fatalf("BuildMap: %v", err)
	}

	if len(m.Edges) != 1 || m.Edges[0].SourceID != "a1" {
		t.Errorf("edges = %+v, want only a1 -> h1", m.Edges)
	}
	for _, n := range m.Nodes {
		if n.ID == "h2" {
			t.Error("h2 should not appear: only items referenced by active items join the map")
		}
		if n.ID == "h1" && n.ReferenceCount != 1 {
			t.Errorf("h1 reference_count = %d, want 1 (its own outgoing list)", n.ReferenceCount)
		}
	}
}

func TestBuildMap_DanglingReferenceDropped(t *testing.T) {
	e, _ := newTestEngine(
		withRef(activeItem("a1", "Fix login token refresh"), "ghost", item.RelRelated, 0.8),
	)

	m, err := e.BuildMap()
	if err != nil {
		t.Fatalf("BuildMap: %v", err)
	}
	if len(m.Edges) != 0 {
		t.Errorf("edges = %+v, want none for a vanished target", m.Edges)
	}
	if m.Summary.TotalItems != 1 {
		t.Errorf("TotalItems = %d, want 1", m.Summary.TotalItems)
	}
}

func TestBuildMap_FeatureCluster(t *testing.T) {
	// Three active items share feature domain "user-management";
	// nothing else shares a domain.
	e, _ := newTestEngine(
		activeItem("a1", "Add login page validation"),
		activeItem("a2", "Tighten password reset checks"),
		activeItem("a3", "Review account signup flow"),
		activeItem("a4", "Repaint the office walls"),
	)

	m, err := e.BuildMap()
	if err != nil {
		t.Fatalf("BuildMap: %v", err)
	}

	if len(m.Clusters) != 1 {
		t.Fatalf("clusters = %+v, want exactly 1", m.Clusters)
	}
	c := m.Clusters[0]
	if c.Name != "Feature: user management" {
		t.Errorf("cluster name = %q, want %q", c.Name, "Feature: user management")
	}
	if c.Kind != "feature" {
		t.Errorf("cluster kind = %q, want feature", c.Kind)
	}
	want := []string{"a1", "a2", "a3"}
	if !reflect.DeepEqual(c.MemberIDs, want) {
		t.Errorf("members = %v, want %v", c.MemberIDs, want)
	}
}

func TestBuildMap_GeneralDomainNeverClusters(t *testing.T) {
	e, _ := newTestEngine(
		activeItem("a1", "Repaint the office walls"),
		activeItem("a2", "Order new chairs"),
		activeItem("a3", "Plan the offsite"),
	)

	m, err := e.BuildMap()
	if err != nil {
		t.Fatalf("BuildMap: %v", err)
	}
	if len(m.Clusters) != 0 {
		t.Errorf("clusters = %+v, want none for general-domain items", m.Clusters)
	}
}

func TestBuildMap_ClusterCentrality(t *testing.T) {
	e, _ := newTestEngine(
		withRef(activeItem("a1", "Add login page validation"), "a2", item.RelRelated, 0.8),
		activeItem("a2", "Tighten password reset checks"),
	)

	m, err := e.BuildMap()
	if err != nil {
		t.Fatalf("BuildMap: %v", err)
	}
	if len(m.Clusters) != 1 {
		t.Fatalf("clusters = %+v, want 1", m.Clusters)
	}
	// One edge touches the two-member cluster: 1 / 2.
	if got := m.Clusters[0].CentralityScore; got != 0.5 {
		t.Errorf("centrality = %v, want 0.5", got)
	}
}

func TestBuildFocusedMap_DepthBound(t *testing.T) {
	e, _ := newTestEngine(
		withRef(activeItem("a1", "Fix login token refresh"), "h1", item.RelRelated, 0.8),
		withRef(historicalItem("h1", "Login token design"), "h2", item.RelContinuation, 0.9),
		withRef(historicalItem("h2", "Old token notes"), "h3", item.RelRelated, 0.75),
		historicalItem("h3", "Ancient auth memo"),
	)

	m, err := e.BuildFocusedMap("a1", 1)
	if err != nil {
		t.Fatalf("BuildFocusedMap: %v", err)
	}

	ids := nodeIDs(m)
	if !reflect.DeepEqual(ids, []string{"a1", "h1"}) {
		t.Errorf("depth-1 nodes = %v, want [a1 h1]", ids)
	}

	m, err = e.BuildFocusedMap("a1", 2)
	if err != nil {
		t.Fatalf("BuildFocusedMap: %v", err)
	}
	ids = nodeIDs(m)
	if !reflect.DeepEqual(ids, []string{"a1", "h1", "h2"}) {
		t.Errorf("depth-2 nodes = %v, want [a1 h1 h2]", ids)
	}
}

func TestBuildFocusedMap_CycleTerminates(t *testing.T) {
	e, _ := newTestEngine(
		withRef(activeItem("a1", "Fix login token refresh"), "a2", item.RelRelated, 0.8),
		withRef(activeItem("a2", "Tighten password reset checks"), "a1", item.RelRelated, 0.8),
	)

	m, err := e.BuildFocusedMap("a1", 5)
	if err != nil {
		t.Fatalf("BuildFocusedMap: %v", err)
	}
	if len(m.Nodes) != 2 {
		t.Errorf("nodes = %+v, want 2", m.Nodes)
	}
	if len(m.Edges) != 2 {
		t.Errorf("edges = %+v, want both directions", m.Edges)
	}
}

func TestBuildFocusedMap_UnknownSeedIsEmpty(t *testing.T) {
	e, _ := newTestEngine(activeItem("a1", "Fix login token refresh"))

	m, err := e.BuildFocusedMap("ghost", 3)
	if err != nil {
		t.Fatalf("BuildFocusedMap: %v", err)
	}
	if len(m.Nodes) != 0 || len(m.Edges) != 0 {
		t.Errorf("map = %+v, want empty", m)
	}
}

func TestBuildFocusedMap_OrphanedAlwaysZero(t *testing.T) {
	// A seed with no references is structurally an orphan, but the
	// focused map reports orphaned_items as 0 unconditionally. Pinned
	// here so the inconsistency with the full map stays visible.
	e, _ := newTestEngine(activeItem("a1", "Repaint the office walls"))

	m, err := e.BuildFocusedMap("a1", 3)
	if err != nil {
		t.Fatalf("BuildFocusedMap: %v", err)
	}
	if len(m.Nodes) != 1 {
		t.Fatalf("nodes = %+v, want just the seed", m.Nodes)
	}
	if m.Summary.OrphanedItems != 0 {
		t.Errorf("OrphanedItems = %d, want hardcoded 0", m.Summary.OrphanedItems)
	}
}

func nodeIDs(m *ReferenceMap) []string {
	ids := make([]string, 0, len(m.Nodes))
	for _, n := range m.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}
