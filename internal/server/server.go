// Package server wires all MCP components and creates the server instance.
//
// This is the composition root (DIP): it creates concrete implementations
// and injects them into the tools/prompts/resources that depend on abstractions.
// No business logic lives here — only wiring.
package server

import (
	"log"

	"github.com/mark3labs/mcp-go/server"
	"github.com/weftdev/weft/internal/config"
	"github.com/weftdev/weft/internal/item"
	"github.com/weftdev/weft/internal/prompts"
	"github.com/weftdev/weft/internal/refgraph"
	"github.com/weftdev/weft/internal/reftools"
	"github.com/weftdev/weft/internal/resources"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
//
// The returned cleanup function closes the item store's database
// connection and must be called on shutdown (typically via defer).
// It is always non-nil and safe to call even if store init failed.
func New() (*server.MCPServer, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		// A broken config file shouldn't take the server down; the
		// defaults are always usable.
		log.Printf("WARNING: config load: %v (using defaults)", err)
		cfg = config.Default()
	}

	s := server.NewMCPServer(
		"weft",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register the review prompt ---
	//
	// The prompt is stateless, so it registers even when the store
	// fails: the host can still list it and the workflow text still
	// tells the user what's wrong when the tools error out.

	reviewPrompt := prompts.NewReviewPrompt()
	s.AddPrompt(reviewPrompt.Definition(), reviewPrompt.Handle)

	// --- Open the item store ---
	//
	// Item and reference tools all need the store. If it fails to
	// open we log a warning and skip their registration rather than
	// aborting, so the client still gets a clean handshake and a
	// diagnosable server instead of a dead process.

	cleanup := noop
	store, storeErr := item.Open(item.Config{
		DataDir:          cfg.DataDir,
		MaxContentLength: cfg.MaxContentLength,
		MaxSearchResults: cfg.MaxSearchResults,
	})
	if storeErr != nil {
		log.Printf("WARNING: item store disabled: %v", storeErr)
		return s, cleanup, nil
	}
	cleanup = func() {
		if err := store.Close(); err != nil {
			log.Printf("WARNING: item store close: %v", err)
		}
	}

	engine := refgraph.New(store, refgraph.Config{
		ReferenceThreshold: cfg.Engine.ReferenceThreshold,
		SuggestionFloor:    cfg.Engine.SuggestionFloor,
		SearchKeywords:     cfg.Engine.SearchKeywords,
		MaxCandidates:      cfg.Engine.MaxCandidates,
		MaxFocusDepth:      cfg.Engine.MaxFocusDepth,
	})

	// --- Register item tools ---

	saveTool := reftools.NewSaveTool(store, engine)
	s.AddTool(saveTool.Definition(), saveTool.Handle)

	searchTool := reftools.NewSearchTool(store)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	listTool := reftools.NewListTool(store)
	s.AddTool(listTool.Definition(), listTool.Handle)

	// --- Register reference tools ---

	similarityTool := reftools.NewSimilarityTool(store, engine)
	s.AddTool(similarityTool.Definition(), similarityTool.Handle)

	generateTool := reftools.NewGenerateTool(store, engine)
	s.AddTool(generateTool.Definition(), generateTool.Handle)

	suggestTool := reftools.NewSuggestTool(store, engine)
	s.AddTool(suggestTool.Definition(), suggestTool.Handle)

	mapTool := reftools.NewMapTool(engine)
	s.AddTool(mapTool.Definition(), mapTool.Handle)

	pathTool := reftools.NewPathTool(engine)
	s.AddTool(pathTool.Definition(), pathTool.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(engine)
	s.AddResource(resourceHandler.MapResource(), resourceHandler.HandleMap)
	s.AddResource(resourceHandler.SummaryResource(), resourceHandler.HandleSummary)

	return s, cleanup, nil
}

// noop is a no-op cleanup function used as the default when the store
// hasn't been initialized.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use weft effectively.
func serverInstructions() string {
	return `You have access to weft, a local work tracker with a smart reference graph.

## What weft does
weft stores work items (todos, plans, proposals, findings, decisions) and
automatically cross-references them: every save compares the item against
past work, scores the similarity, classifies the relationship (related,
continuation, conflict, dependency), and persists the strongest links.

## When to use it
- The user starts, resumes, or finishes a piece of work: save it with item_save
- The user asks "have we dealt with this before?": use item_search
- Before implementing a proposal: run ref_suggestions and surface conflicts
  with past decisions BEFORE code gets written
- The user wants the big picture: ref_map renders the whole graph;
  ref_path traces how two items connect

## How saving works
item_save regenerates the item's references on every call. You never create
references by hand — write clear, specific content and the engine finds the
links. Content phrasing matters:
- "continuing the auth work" links it as a continuation
- "use X instead of Y" flags conflicts with past decisions about Y
- "depends on the session refactor" records a dependency

## Statuses
open, in_progress, blocked are active; done and dropped are historical.
Historical items are the memory the engine searches against — mark finished
work done rather than deleting it.

## Review workflow
The weft-review prompt walks the user through the current suggestions,
highest priority first. Prefer it when the user asks for a status review.`
}
