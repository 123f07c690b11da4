package refgraph

import (
	"fmt"
	"math"
	"strings"

	"github.com/weftdev/weft/internal/item"
)

// Relationship icons used in the rendered report.
var relationIcons = map[string]string{
	item.RelContinuation: "→",
	item.RelConflict:     "⚠",
	item.RelDependency:   "↗",
	item.RelRelated:      "~",
}

const strengthBarSegments = 5

// Render produces a deterministic ASCII report of a reference map:
// one "●" line per active node (historical nodes get "○"), one line
// per outgoing edge beneath its source node, a cluster section, and a
// trailing summary block.
func Render(m *ReferenceMap) string {
	if m == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("Reference Map\n")
	b.WriteString("═════════════\n\n")

	if len(m.Nodes) == 0 {
		b.WriteString("(no items)\n\n")
	}

	edgesBySource := map[string][]Edge{}
	for _, ed := range m.Edges {
		edgesBySource[ed.SourceID] = append(edgesBySource[ed.SourceID], ed)
	}

	for _, n := range m.Nodes {
		bullet := "○"
		if n.Active {
			bullet = "●"
		}
		fmt.Fprintf(&b, "%s [%s] %s (%s, %s)\n", bullet, n.ID, n.Preview, n.Type, n.Status)
		for _, ed := range edgesBySource[n.ID] {
			icon := relationIcons[ed.Type]
			if icon == "" {
				icon = relationIcons[item.RelRelated]
			}
			fmt.Fprintf(&b, "    %s %s %s %.2f (%s)\n",
				icon, ed.TargetID, strengthBar(ed.Strength), ed.Strength, ed.Type)
		}
	}
	b.WriteString("\n")

	if len(m.Clusters) > 0 {
		b.WriteString("Clusters\n")
		b.WriteString("────────\n")
		for _, c := range m.Clusters {
			fmt.Fprintf(&b, "  %s — %d items (%s)", c.Name, len(c.MemberIDs), c.Kind)
			if len(c.Themes) > 0 {
				fmt.Fprintf(&b, " themes: %s", strings.Join(c.Themes, ", "))
			}
			fmt.Fprintf(&b, " centrality: %.2f\n", c.CentralityScore)
		}
		b.WriteString("\n")
	}

	b.WriteString("Summary\n")
	b.WriteString("───────\n")
	fmt.Fprintf(&b, "  items: %d\n", m.Summary.TotalItems)
	fmt.Fprintf(&b, "  references: %d\n", m.Summary.TotalReferences)
	fmt.Fprintf(&b, "  clusters: %d\n", m.Summary.ClusterCount)
	fmt.Fprintf(&b, "  orphaned: %d\n", m.Summary.OrphanedItems)

	return b.String()
}

// Render is also exposed on the engine so callers hold one handle for
// the whole API surface.
func (e *Engine) Render(m *ReferenceMap) string {
	return Render(m)
}

// strengthBar renders a 5-segment bar: round(strength×5) filled
// segments, the remainder empty.
func strengthBar(strength float64) string {
	filled := int(math.Round(strength * strengthBarSegments))
	if filled < 0 {
		filled = 0
	}
	if filled > strengthBarSegments {
		filled = strengthBarSegments
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", strengthBarSegments-filled)
}
