// Package reftools provides MCP tool handlers for the work-item
// tracker and its reference graph engine.
//
// Each tool handler follows the same pattern:
// - A struct with dependencies (item store, reference engine) injected
//   via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
//
// Handlers never return Go errors for user-level problems; those
// become mcp.NewToolResultError so the client can show them.
package reftools

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}
