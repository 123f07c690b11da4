package refgraph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/weftdev/weft/internal/item"
)

// ─── Map types ───────────────────────────────────────────────────────────────

// Node is one work item in a reference map.
type Node struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	Status          string `json:"status"`
	Preview         string `json:"preview"`
	Active          bool   `json:"active"`
	FeatureDomain   string `json:"feature_domain,omitempty"`
	TechnicalDomain string `json:"technical_domain,omitempty"`
	Theme           string `json:"theme,omitempty"`
	ReferenceCount  int    `json:"reference_count"`
}

// Edge is one persisted smart reference projected into the map.
type Edge struct {
	SourceID string  `json:"source_id"`
	TargetID string  `json:"target_id"`
	Type     string  `json:"type"`
	Strength float64 `json:"strength"`
}

// Cluster groups nodes sharing a domain attribute.
type Cluster struct {
	Name            string   `json:"name"`
	Kind            string   `json:"kind"` // "feature" or "technical"
	MemberIDs       []string `json:"member_ids"`
	Themes          []string `json:"themes,omitempty"`
	CentralityScore float64  `json:"centrality_score"`
}

// Summary holds the map-level counts.
type Summary struct {
	TotalItems      int `json:"total_items"`
	TotalReferences int `json:"total_references"`
	ClusterCount    int `json:"cluster_count"`
	OrphanedItems   int `json:"orphaned_items"`
}

// ReferenceMap is the queryable projection of the reference graph.
// Computed fresh per call and never stored.
type ReferenceMap struct {
	Nodes    []Node    `json:"nodes"`
	Edges    []Edge    `json:"edges"`
	Clusters []Cluster `json:"clusters"`
	Summary  Summary   `json:"summary"`
}

const nodePreviewLen = 60

// ─── Full map ────────────────────────────────────────────────────────────────

// BuildMap assembles the full reference map: one node per active item
// plus every historical item referenced by an active item, one edge
// per active item's persisted references. Historical items' own
// outgoing references are counted on their nodes but not expanded into
// edges.
func (e *Engine) BuildMap() (*ReferenceMap, error) {
	active, err := e.store.LoadActiveItems()
	if err != nil {
		return nil, fmt.Errorf("refgraph: build map: %w", err)
	}

	b := newMapBuilder()
	for i := range active {
		b.addNode(&active[i])
	}
	for i := range active {
		a := &active[i]
		for _, ref := range a.Metadata.SmartReferences {
			if !b.has(ref.TargetID) {
				target, err := e.store.GetHistoricalItem(ref.TargetID)
				if err != nil {
					return nil, fmt.Errorf("refgraph: resolve %s: %w", ref.TargetID, err)
				}
				if target == nil {
					continue // target vanished; drop the edge silently
				}
				b.addNode(target)
			}
			b.addEdge(a.ID, ref)
		}
	}

	m := b.finish()
	m.Summary.OrphanedItems = countOrphans(m)
	return m, nil
}

// ─── Focused map ─────────────────────────────────────────────────────────────

// BuildFocusedMap builds a depth-bounded map expanded from one seed
// item. Traversal is an iterative depth-first walk guarded by a
// visited set, so cycles terminate. The seed is looked up in the
// active set first, then in history; an unknown seed yields an empty
// map.
//
// OrphanedItems on a focused map is always reported as 0, matching the
// full-map builder's historical behavior rather than the actual
// structure.
func (e *Engine) BuildFocusedMap(seedID string, depth int) (*ReferenceMap, error) {
	if depth <= 0 {
		depth = 2
	}
	if depth > e.cfg.MaxFocusDepth {
		depth = e.cfg.MaxFocusDepth
	}

	active, err := e.store.LoadActiveItems()
	if err != nil {
		return nil, fmt.Errorf("refgraph: build focused map: %w", err)
	}
	activeByID := make(map[string]*item.WorkItem, len(active))
	for i := range active {
		activeByID[active[i].ID] = &active[i]
	}

	b := newMapBuilder()

	type frame struct {
		id    string
		depth int
	}
	stack := []frame{{seedID, depth}}
	visited := map[string]bool{}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[f.id] {
			continue
		}

		w := activeByID[f.id]
		if w == nil {
			w, err = e.store.GetHistoricalItem(f.id)
			if err != nil {
				return nil, fmt.Errorf("refgraph: resolve %s: %w", f.id, err)
			}
		}
		if w == nil {
			continue
		}
		visited[f.id] = true
		b.addNode(w)

		if f.depth == 0 {
			continue
		}
		for _, ref := range w.Metadata.SmartReferences {
			b.addEdge(w.ID, ref)
			if !visited[ref.TargetID] {
				stack = append(stack, frame{ref.TargetID, f.depth - 1})
			}
		}
	}

	b.pruneDanglingEdges()
	m := b.finish()
	m.Summary.OrphanedItems = 0
	return m, nil
}

// ─── Builder ─────────────────────────────────────────────────────────────────

type mapBuilder struct {
	nodes  []Node
	index  map[string]int
	edges  []Edge
	counts map[string]int
}

func newMapBuilder() *mapBuilder {
	return &mapBuilder{index: map[string]int{}, counts: map[string]int{}}
}

func (b *mapBuilder) has(id string) bool {
	_, ok := b.index[id]
	return ok
}

func (b *mapBuilder) addNode(w *item.WorkItem) {
	if b.has(w.ID) {
		return
	}
	meta := metadataFor(w)
	b.index[w.ID] = len(b.nodes)
	b.nodes = append(b.nodes, Node{
		ID:              w.ID,
		Type:            w.Type,
		Status:          w.Status,
		Preview:         w.Preview(nodePreviewLen),
		Active:          w.Active(),
		FeatureDomain:   meta.FeatureDomain,
		TechnicalDomain: meta.TechnicalDomain,
		Theme:           meta.StrategicTheme,
		ReferenceCount:  len(w.Metadata.SmartReferences),
	})
}

func (b *mapBuilder) addEdge(sourceID string, ref item.SmartReference) {
	b.edges = append(b.edges, Edge{
		SourceID: sourceID,
		TargetID: ref.TargetID,
		Type:     ref.RelationshipType,
		Strength: ref.SimilarityScore,
	})
}

// pruneDanglingEdges drops edges whose target never resolved to a node.
func (b *mapBuilder) pruneDanglingEdges() {
	kept := b.edges[:0]
	for _, ed := range b.edges {
		if b.has(ed.SourceID) && b.has(ed.TargetID) {
			kept = append(kept, ed)
		}
	}
	b.edges = kept
}

func (b *mapBuilder) finish() *ReferenceMap {
	m := &ReferenceMap{
		Nodes:    b.nodes,
		Edges:    b.edges,
		Clusters: buildClusters(b.nodes, b.edges),
	}
	m.Summary.TotalItems = len(m.Nodes)
	m.Summary.TotalReferences = len(m.Edges)
	m.Summary.ClusterCount = len(m.Clusters)
	return m
}

// ─── Clusters ────────────────────────────────────────────────────────────────

// buildClusters groups nodes by feature domain, then by technical
// domain. Groups need at least two members; the "general" fallback and
// empty domains never cluster. Centrality is the count of edges
// touching any member over the member count.
func buildClusters(nodes []Node, edges []Edge) []Cluster {
	var clusters []Cluster
	clusters = append(clusters, clusterBy(nodes, edges, "feature")...)
	clusters = append(clusters, clusterBy(nodes, edges, "technical")...)
	return clusters
}

func clusterBy(nodes []Node, edges []Edge, kind string) []Cluster {
	groups := map[string][]Node{}
	for _, n := range nodes {
		domain := n.FeatureDomain
		if kind == "technical" {
			domain = n.TechnicalDomain
		}
		if domain == "" || domain == "general" {
			continue
		}
		groups[domain] = append(groups[domain], n)
	}

	domains := make([]string, 0, len(groups))
	for d, members := range groups {
		if len(members) >= 2 {
			domains = append(domains, d)
		}
	}
	sort.Strings(domains)

	label := "Feature: "
	if kind == "technical" {
		label = "Technical: "
	}

	clusters := make([]Cluster, 0, len(domains))
	for _, d := range domains {
		members := groups[d]

		memberSet := map[string]bool{}
		var ids []string
		themeSet := map[string]bool{}
		var themes []string
		for _, n := range members {
			memberSet[n.ID] = true
			ids = append(ids, n.ID)
			if n.Theme != "" && !themeSet[n.Theme] {
				themeSet[n.Theme] = true
				themes = append(themes, n.Theme)
			}
		}
		sort.Strings(ids)
		sort.Strings(themes)

		touching := 0
		for _, ed := range edges {
			if memberSet[ed.SourceID] || memberSet[ed.TargetID] {
				touching++
			}
		}

		clusters = append(clusters, Cluster{
			Name:            label + strings.ReplaceAll(d, "-", " "),
			Kind:            kind,
			MemberIDs:       ids,
			Themes:          themes,
			CentralityScore: float64(touching) / float64(maxInt(len(members), 1)),
		})
	}
	return clusters
}

func countOrphans(m *ReferenceMap) int {
	touched := map[string]bool{}
	for _, ed := range m.Edges {
		touched[ed.SourceID] = true
		touched[ed.TargetID] = true
	}
	orphans := 0
	for _, n := range m.Nodes {
		if !touched[n.ID] {
			orphans++
		}
	}
	return orphans
}
