package reftools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/weftdev/weft/internal/item"
	"github.com/weftdev/weft/internal/refgraph"
)

// ─── GenerateTool ────────────────────────────────────────────────────────────

// GenerateTool handles the ref_generate MCP tool.
type GenerateTool struct {
	store  *item.SQLiteStore
	engine *refgraph.Engine
}

// NewGenerateTool creates a GenerateTool.
func NewGenerateTool(store *item.SQLiteStore, engine *refgraph.Engine) *GenerateTool {
	return &GenerateTool{store: store, engine: engine}
}

// Definition returns the MCP tool definition for ref_generate.
func (t *GenerateTool) Definition() mcp.Tool {
	return mcp.NewTool("ref_generate",
		mcp.WithDescription(
			"Regenerate the smart references for one work item: search past work, "+
				"score the candidates, classify the relationships, and persist the result. "+
				"The previous reference list is fully replaced.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Item id"),
		),
	)
}

// Handle processes the ref_generate tool call.
func (t *GenerateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	w, err := t.store.GetItem(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load item: %v", err)), nil
	}
	if w == nil {
		return mcp.NewToolResultError(fmt.Sprintf("item %s not found", id)), nil
	}

	refs, err := t.engine.GenerateReferences(w)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to generate references: %v", err)), nil
	}
	if len(refs) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No references found for %s.", id)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d references for %s:\n\n", len(refs), id)
	for _, r := range refs {
		fmt.Fprintf(&b, "  %s → %s (score %.2f, confidence %.2f)\n",
			r.RelationshipType, r.TargetID, r.SimilarityScore, r.Confidence)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ─── SuggestTool ─────────────────────────────────────────────────────────────

// SuggestTool handles the ref_suggestions MCP tool.
type SuggestTool struct {
	store  *item.SQLiteStore
	engine *refgraph.Engine
}

// NewSuggestTool creates a SuggestTool.
func NewSuggestTool(store *item.SQLiteStore, engine *refgraph.Engine) *SuggestTool {
	return &SuggestTool{store: store, engine: engine}
}

// Definition returns the MCP tool definition for ref_suggestions.
func (t *SuggestTool) Definition() mcp.Tool {
	return mcp.NewTool("ref_suggestions",
		mcp.WithDescription(
			"Get prioritized suggestions derived from high-confidence references across "+
				"all active items: continuations to resume, conflicts to review, "+
				"dependencies to promote, and past decisions worth a look.",
		),
	)
}

// Handle processes the ref_suggestions tool call.
func (t *SuggestTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	active, err := t.store.LoadActiveItems()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load active items: %v", err)), nil
	}

	sugs, err := t.engine.Suggestions(active)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to build suggestions: %v", err)), nil
	}
	if len(sugs) == 0 {
		return mcp.NewToolResultText("No suggestions right now."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d suggestions:\n\n", len(sugs))
	for i, s := range sugs {
		fmt.Fprintf(&b, "[%d] (%s) %s\n    %s\n    target: %s | confidence: %.2f\n",
			i+1, s.Priority, s.Type, s.Message, s.TargetItemID, s.Confidence)
		if s.ActionHint != "" {
			fmt.Fprintf(&b, "    hint: %s\n", s.ActionHint)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}
