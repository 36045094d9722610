package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/alphaomegateam/taiga-bridge/internal/gateway"
	"github.com/alphaomegateam/taiga-bridge/internal/metrics"
	"github.com/alphaomegateam/taiga-bridge/internal/taiga"
)

// Version is set at build time via ldflags.
var Version = "dev"

// registrable is the shape every tool in this package exposes.
type registrable interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// NewServer wires every tool into an MCP server instance. Each handler is
// wrapped to count calls per tool and outcome.
func NewServer(factory taiga.Factory, store *gateway.IdempotencyStore, m *metrics.Metrics, logger zerolog.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"taiga-bridge",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	tools := []registrable{
		NewListProjectsTool(factory),
		NewGetProjectTool(factory),
		NewListEpicsTool(factory),
		NewCreateEpicTool(factory),
		NewUpdateEpicTool(factory),
		NewDeleteEpicTool(factory),
		NewAddUserStoryToEpicTool(factory),
		NewListStoriesTool(factory),
		NewCreateStoryTool(factory),
		NewUpdateStoryTool(factory),
		NewDeleteStoryTool(factory),
		NewCreateTaskTool(factory, store),
		NewUpdateTaskTool(factory),
		NewListTasksTool(factory),
		NewDeleteTaskTool(factory),
		NewListUsersTool(factory),
		NewListMilestonesTool(factory),
	}
	for _, tool := range tools {
		def := tool.Definition()
		s.AddTool(def, instrument(def.Name, tool.Handle, m, logger))
	}
	return s
}

// instrument wraps a tool handler with metrics and structured logging.
func instrument(name string, handle server.ToolHandlerFunc, m *metrics.Metrics, logger zerolog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := handle(ctx, req)

		status := "ok"
		switch {
		case err != nil:
			status = "error"
		case result != nil && result.IsError:
			status = "rejected"
		}
		if m != nil {
			m.RecordToolCall(name, status)
		}

		event := logger.Debug()
		if status != "ok" {
			event = logger.Warn()
		}
		event.Str("tool", name).Str("status", status).Err(err).Msg("tool call")
		return result, err
	}
}
