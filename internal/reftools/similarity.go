package reftools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/weftdev/weft/internal/item"
	"github.com/weftdev/weft/internal/refgraph"
)

// SimilarityTool handles the ref_similarity MCP tool.
type SimilarityTool struct {
	store  *item.SQLiteStore
	engine *refgraph.Engine
}

// NewSimilarityTool creates a SimilarityTool.
func NewSimilarityTool(store *item.SQLiteStore, engine *refgraph.Engine) *SimilarityTool {
	return &SimilarityTool{store: store, engine: engine}
}

// Definition returns the MCP tool definition for ref_similarity.
func (t *SimilarityTool) Definition() mcp.Tool {
	return mcp.NewTool("ref_similarity",
		mcp.WithDescription(
			"Score the similarity between two work items, dimension by dimension: "+
				"keywords, domains, code locations, strategic theme, and raw content overlap.",
		),
		mcp.WithString("item_a",
			mcp.Required(),
			mcp.Description("First item id"),
		),
		mcp.WithString("item_b",
			mcp.Required(),
			mcp.Description("Second item id"),
		),
	)
}

// Handle processes the ref_similarity tool call.
func (t *SimilarityTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idA := req.GetString("item_a", "")
	idB := req.GetString("item_b", "")
	if idA == "" || idB == "" {
		return mcp.NewToolResultError("'item_a' and 'item_b' are required"), nil
	}

	a, err := t.store.GetItem(idA)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load %s: %v", idA, err)), nil
	}
	if a == nil {
		return mcp.NewToolResultError(fmt.Sprintf("item %s not found", idA)), nil
	}
	b, err := t.store.GetItem(idB)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load %s: %v", idB, err)), nil
	}
	if b == nil {
		return mcp.NewToolResultError(fmt.Sprintf("item %s not found", idB)), nil
	}

	s := t.engine.Similarity(a, b)

	var out strings.Builder
	fmt.Fprintf(&out, "Similarity %s ↔ %s\n\n", a.ID, b.ID)
	fmt.Fprintf(&out, "  keyword:   %.2f\n", s.Keyword)
	fmt.Fprintf(&out, "  domain:    %.2f\n", s.Domain)
	fmt.Fprintf(&out, "  location:  %.2f\n", s.Location)
	fmt.Fprintf(&out, "  strategic: %.2f\n", s.Strategic)
	fmt.Fprintf(&out, "  content:   %.2f\n", s.Content)
	fmt.Fprintf(&out, "  total:     %.2f\n", s.Total)
	if len(s.SharedKeywords) > 0 {
		fmt.Fprintf(&out, "\nShared keywords: %s\n", strings.Join(s.SharedKeywords, ", "))
	}
	if len(s.SharedLocations) > 0 {
		fmt.Fprintf(&out, "Shared locations: %s\n", strings.Join(s.SharedLocations, ", "))
	}
	return mcp.NewToolResultText(out.String()), nil
}
