package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/fittrack/internal/suggest"
)

// New creates an MCP server with all tools and resources registered. A nil
// suggester makes suggest_workout report that suggestions are unavailable.
func New(ds DataSource, sugg suggest.Suggester, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("FitTrack", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("FitTrack workout tracker. Browse the exercise library and workout plans, review completed sessions and body weight, and ask for a suggested training plan."),
	)

	h := &handlers{ds: ds, suggester: sugg, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
		server.ServerTool{Tool: toolGetHistory, Handler: h.getHistory},
		server.ServerTool{Tool: toolGetBodyWeight, Handler: h.getBodyWeight},
		server.ServerTool{Tool: toolSuggestWorkout, Handler: h.suggestWorkout},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resSummary, Handler: h.summary},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds        DataSource
	suggester suggest.Suggester
	log       *slog.Logger
}

// --- Resource definitions ---

var resSummary = mcp.NewResource(
	"fittrack://summary",
	"Training Summary",
	mcp.WithResourceDescription("Library size, workouts with a session in progress, the latest body weight and the most recent finished sessions"),
	mcp.WithMIMEType("application/json"),
)
