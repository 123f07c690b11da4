// Package resources implements MCP resource handlers for the reference graph.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (weft://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/weftdev/weft/internal/refgraph"
)

// Handler manages reference graph resource endpoints.
type Handler struct {
	engine *refgraph.Engine
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(engine *refgraph.Engine) *Handler {
	return &Handler{engine: engine}
}

// MapResource returns the MCP resource definition for the full reference map.
func (h *Handler) MapResource() mcp.Resource {
	return mcp.NewResource(
		"weft://graph/map",
		"Reference Map",
		mcp.WithResourceDescription("The full reference graph: nodes, edges, clusters, and summary"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleMap returns the full reference map as JSON.
func (h *Handler) HandleMap(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	m, err := h.engine.BuildMap()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling map: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// SummaryResource returns the MCP resource definition for the graph summary.
func (h *Handler) SummaryResource() mcp.Resource {
	return mcp.NewResource(
		"weft://graph/summary",
		"Reference Graph Summary",
		mcp.WithResourceDescription("Item, reference, cluster, and orphan counts for the reference graph"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleSummary returns the graph summary counts as JSON.
func (h *Handler) HandleSummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	m, err := h.engine.BuildMap()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	data, err := json.MarshalIndent(m.Summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling summary: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
