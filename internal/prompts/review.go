// Package prompts implements MCP prompt handlers for the work tracker.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ReviewPrompt handles the weft-review MCP prompt.
// It guides the AI to walk the user through the current suggestions
// and the state of the reference graph.
type ReviewPrompt struct{}

// NewReviewPrompt creates a ReviewPrompt.
func NewReviewPrompt() *ReviewPrompt {
	return &ReviewPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ReviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("weft-review",
		mcp.WithPromptDescription(
			"Review your active work against past decisions. "+
				"Surfaces conflicts to resolve, abandoned work to resume, "+
				"and dependencies worth promoting before you continue.",
		),
		mcp.WithArgument("focus",
			mcp.ArgumentDescription(
				"Optional item id to center the review on. Default: all active items",
			),
		),
	)
}

// Handle processes the weft-review prompt request.
func (p *ReviewPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	focus := ""
	if args := req.Params.Arguments; args != nil {
		if f, ok := args["focus"]; ok && f != "" {
			focus = f
		}
	}

	scope := "all my active work items"
	mapStep := "2. Run `ref_map` to see how the active items connect to past work\n"
	if focus != "" {
		scope = fmt.Sprintf("work item '%s'", focus)
		mapStep = fmt.Sprintf("2. Run `ref_map` with item_id='%s' to see what it connects to\n", focus)
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Review %s", scope),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want to review %s against past decisions and related work.\n\n"+
						"Please:\n"+
						"1. Run `ref_suggestions` to get the current suggestions\n"+
						"%s"+
						"3. Walk me through the high-priority suggestions first: for each conflict, "+
						"show me both items (use `ref_similarity` for the breakdown) and ask whether "+
						"the past decision still stands\n"+
						"4. For continuations, ask if I want to resume the earlier work and, if so, "+
						"update the item with `item_save`\n"+
						"5. Summarize what we decided at the end",
					scope, mapStep,
				)),
			},
		},
	}, nil
}
