package reftools

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/weftdev/weft/internal/item"
	"github.com/weftdev/weft/internal/refgraph"
)

// ─── SaveTool ────────────────────────────────────────────────────────────────

// SaveTool handles the item_save MCP tool.
type SaveTool struct {
	store  *item.SQLiteStore
	engine *refgraph.Engine
}

// NewSaveTool creates a SaveTool with its dependencies.
func NewSaveTool(store *item.SQLiteStore, engine *refgraph.Engine) *SaveTool {
	return &SaveTool{store: store, engine: engine}
}

// Definition returns the MCP tool definition for item_save.
func (t *SaveTool) Definition() mcp.Tool {
	return mcp.NewTool("item_save",
		mcp.WithDescription(
			"Create or update a work item (todo, plan, proposal, finding, decision). "+
				"Saving regenerates the item's smart references against past work and lets "+
				"other active items pick up a reference to it.",
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The item's free-text content"),
		),
		mcp.WithString("id",
			mcp.Description("Item id to update; omitted means a new item"),
		),
		mcp.WithString("type",
			mcp.Description("Item type: todo (default), plan, proposal, finding, decision"),
		),
		mcp.WithString("status",
			mcp.Description("Status: open (default), in_progress, blocked, done, dropped"),
		),
	)
}

// Handle processes the item_save tool call.
func (t *SaveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content := req.GetString("content", "")
	if content == "" {
		return mcp.NewToolResultError("'content' is required"), nil
	}

	id := req.GetString("id", "")
	typ := req.GetString("type", "")
	status := req.GetString("status", "")

	var w *item.WorkItem
	if id != "" {
		existing, err := t.store.GetItem(id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to load item: %v", err)), nil
		}
		w = existing
	}
	created := w == nil
	if created {
		if id == "" {
			id = uuid.NewString()
		}
		w = &item.WorkItem{ID: id}
	}

	if w.Content != content {
		w.Content = content
		// Content changed: the cached derivation is stale.
		w.Metadata.Similarity = nil
	}
	if typ != "" {
		w.Type = typ
	}
	if status != "" {
		w.Status = status
	}

	if err := t.store.SaveWorkItem(w); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save item: %v", err)), nil
	}

	refs, err := t.engine.GenerateReferences(w)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to generate references: %v", err)), nil
	}

	verb := "updated"
	if created {
		verb = "created"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Item %s: %s (%s, %s)\n", verb, w.ID, w.Type, w.Status)
	if len(refs) == 0 {
		b.WriteString("No related past work found.")
	} else {
		fmt.Fprintf(&b, "Found %d related items:\n", len(refs))
		for _, r := range refs {
			fmt.Fprintf(&b, "  %s %s (score %.2f, confidence %.2f)\n",
				r.RelationshipType, r.TargetID, r.SimilarityScore, r.Confidence)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ─── SearchTool ──────────────────────────────────────────────────────────────

// SearchTool handles the item_search MCP tool.
type SearchTool struct {
	store *item.SQLiteStore
}

// NewSearchTool creates a SearchTool.
func NewSearchTool(store *item.SQLiteStore) *SearchTool {
	return &SearchTool{store: store}
}

// Definition returns the MCP tool definition for item_search.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("item_search",
		mcp.WithDescription(
			"Full-text search across all work items, active and historical. "+
				"Use this to find past decisions, plans, and findings by keyword.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query — natural language or keywords"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default: 10, max: 20)"),
		),
	)
}

// Handle processes the item_search tool call.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}
	limit := intArg(req, "limit", 10)

	results, err := t.store.Search(query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No items found matching your query."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d items:\n\n", len(results))
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] %s (%s, %s)\n    %s\n    references: %d\n\n",
			i+1, r.ID, r.Type, r.Status,
			item.Truncate(r.Content, 300),
			len(r.Metadata.SmartReferences),
		)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ─── ListTool ────────────────────────────────────────────────────────────────

// ListTool handles the item_list MCP tool.
type ListTool struct {
	store *item.SQLiteStore
}

// NewListTool creates a ListTool.
func NewListTool(store *item.SQLiteStore) *ListTool {
	return &ListTool{store: store}
}

// Definition returns the MCP tool definition for item_list.
func (t *ListTool) Definition() mcp.Tool {
	return mcp.NewTool("item_list",
		mcp.WithDescription("List work items, newest first."),
		mcp.WithString("status",
			mcp.Description("Filter by status: open, in_progress, blocked, done, dropped (default: all)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default: 20)"),
		),
	)
}

// Handle processes the item_list tool call.
func (t *ListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := req.GetString("status", "")
	limit := intArg(req, "limit", 20)

	items, err := t.store.ListItems(status, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("No items yet."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d items:\n\n", len(items))
	for _, w := range items {
		fmt.Fprintf(&b, "%s [%s/%s] %s (references: %d)\n",
			w.ID, w.Type, w.Status, w.Preview(80), len(w.Metadata.SmartReferences))
	}
	return mcp.NewToolResultText(b.String()), nil
}
