package reftools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/weftdev/weft/internal/refgraph"
)

// ─── MapTool ─────────────────────────────────────────────────────────────────

// MapTool handles the ref_map MCP tool.
type MapTool struct {
	engine *refgraph.Engine
}

// NewMapTool creates a MapTool.
func NewMapTool(engine *refgraph.Engine) *MapTool {
	return &MapTool{engine: engine}
}

// Definition returns the MCP tool definition for ref_map.
func (t *MapTool) Definition() mcp.Tool {
	return mcp.NewTool("ref_map",
		mcp.WithDescription(
			"Render the reference map as text. Without arguments the full map is shown; "+
				"pass item_id to get the subgraph reachable from that item, optionally "+
				"bounded by depth.",
		),
		mcp.WithString("item_id",
			mcp.Description("Focus the map on the subgraph reachable from this item"),
		),
		mcp.WithNumber("depth",
			mcp.Description("Traversal depth for a focused map (default 2, max 5)"),
		),
	)
}

// Handle processes the ref_map tool call.
func (t *MapTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	seedID := req.GetString("item_id", "")

	var (
		m   *refgraph.ReferenceMap
		err error
	)
	if seedID == "" {
		m, err = t.engine.BuildMap()
	} else {
		m, err = t.engine.BuildFocusedMap(seedID, intArg(req, "depth", 2))
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to build map: %v", err)), nil
	}

	return mcp.NewToolResultText(refgraph.Render(m)), nil
}

// ─── PathTool ────────────────────────────────────────────────────────────────

// PathTool handles the ref_path MCP tool.
type PathTool struct {
	engine *refgraph.Engine
}

// NewPathTool creates a PathTool.
func NewPathTool(engine *refgraph.Engine) *PathTool {
	return &PathTool{engine: engine}
}

// Definition returns the MCP tool definition for ref_path.
func (t *PathTool) Definition() mcp.Tool {
	return mcp.NewTool("ref_path",
		mcp.WithDescription(
			"Find a chain of references connecting two items, following outgoing "+
				"references from the source.",
		),
		mcp.WithString("from_id",
			mcp.Required(),
			mcp.Description("Source item id"),
		),
		mcp.WithString("to_id",
			mcp.Required(),
			mcp.Description("Target item id"),
		),
	)
}

// Handle processes the ref_path tool call.
func (t *PathTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fromID := req.GetString("from_id", "")
	if fromID == "" {
		return mcp.NewToolResultError("'from_id' is required"), nil
	}
	toID := req.GetString("to_id", "")
	if toID == "" {
		return mcp.NewToolResultError("'to_id' is required"), nil
	}

	path, err := t.engine.FindPath(fromID, toID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to find path: %v", err)), nil
	}
	if len(path) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No reference path from %s to %s.", fromID, toID)), nil
	}

	return mcp.NewToolResultText("Path: " + strings.Join(path, " → ")), nil
}
