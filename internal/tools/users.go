package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/alphaomegateam/taiga-bridge/internal/gateway"
	"github.com/alphaomegateam/taiga-bridge/internal/taiga"
)

// ListUsersTool handles the taiga.users.list MCP tool.
type ListUsersTool struct {
	factory taiga.Factory
}

// NewListUsersTool creates a ListUsersTool.
func NewListUsersTool(factory taiga.Factory) *ListUsersTool {
	return &ListUsersTool{factory: factory}
}

// Definition returns the MCP tool definition for registration.
func (t *ListUsersTool) Definition() mcp.Tool {
	return mcp.NewTool("taiga.users.list",
		mcp.WithDescription(
			"List Taiga users, optionally scoped to a project and filtered by "+
				"a case-insensitive substring over full name, username and email. "+
				"Accounts without global user access fall back to the project's "+
				"membership list.",
		),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "List users",
			ReadOnlyHint: boolPtr(true),
		}),
		mcp.WithNumber("project_id", mcp.Description("Only members of this project.")),
		mcp.WithString("search", mcp.Description("Substring to match against full name, username, or email.")),
	)
}

// Handle processes the taiga.users.list tool call.
func (t *ListUsersTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := optionalInt(req, "project_id")
	if err != nil {
		return toolError(err)
	}
	client, err := t.factory(ctx)
	if err != nil {
		return toolError(err)
	}
	users, err := gateway.ListUsers(ctx, client, projectID, argString(req, "search"))
	if err != nil {
		return toolError(err)
	}
	return marshalResult(users)
}

// ListMilestonesTool handles the taiga.milestones.list MCP tool.
type ListMilestonesTool struct {
	factory taiga.Factory
}

// NewListMilestonesTool creates a ListMilestonesTool.
func NewListMilestonesTool(factory taiga.Factory) *ListMilestonesTool {
	return &ListMilestonesTool{factory: factory}
}

// Definition returns the MCP tool definition for registration.
func (t *ListMilestonesTool) Definition() mcp.Tool {
	return mcp.NewTool("taiga.milestones.list",
		mcp.WithDescription(
			"List the milestones (sprints) of a Taiga project, optionally "+
				"filtered by a case-insensitive name or slug substring.",
		),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "List milestones",
			ReadOnlyHint: boolPtr(true),
		}),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Numeric project id."),
		),
		mcp.WithString("search", mcp.Description("Substring to match against milestone names and slugs.")),
	)
}

// Handle processes the taiga.milestones.list tool call.
func (t *ListMilestonesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := requiredInt(req, "project_id")
	if err != nil {
		return toolError(err)
	}
	client, err := t.factory(ctx)
	if err != nil {
		return toolError(err)
	}
	milestones, err := client.ListMilestones(ctx, projectID)
	if err != nil {
		return toolError(err)
	}
	return marshalResult(gateway.FilterMilestones(milestones, argString(req, "search")))
}
