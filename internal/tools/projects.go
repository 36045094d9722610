package tools

import (
	"context"
	"net/url"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/alphaomegateam/taiga-bridge/internal/gateway"
	"github.com/alphaomegateam/taiga-bridge/internal/taiga"
)

// ListProjectsTool handles the taiga.projects.list MCP tool.
type ListProjectsTool struct {
	factory taiga.Factory
}

// NewListProjectsTool creates a ListProjectsTool.
func NewListProjectsTool(factory taiga.Factory) *ListProjectsTool {
	return &ListProjectsTool{factory: factory}
}

// Definition returns the MCP tool definition for registration.
func (t *ListProjectsTool) Definition() mcp.Tool {
	return mcp.NewTool("taiga.projects.list",
		mcp.WithDescription(
			"List Taiga projects the service account is a member of. "+
				"Optionally filter by a case-insensitive name substring.",
		),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "List projects",
			ReadOnlyHint: boolPtr(true),
		}),
		mcp.WithString("search",
			mcp.Description("Case-insensitive substring to match against project names."),
		),
	)
}

// Handle processes the taiga.projects.list tool call.
func (t *ListProjectsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, err := t.factory(ctx)
	if err != nil {
		return toolError(err)
	}

	userID, err := client.CurrentUserID(ctx)
	if err != nil {
		return toolError(err)
	}
	projects, err := client.ListProjects(ctx, url.Values{"member": {strconv.Itoa(userID)}})
	if err != nil {
		return toolError(err)
	}

	filtered := gateway.FilterProjectsByName(projects, argString(req, "search"))
	return marshalResult(gateway.ProjectAll(filtered, gateway.ProjectFields))
}

// GetProjectTool handles the taiga.projects.get MCP tool.
type GetProjectTool struct {
	factory taiga.Factory
}

// NewGetProjectTool creates a GetProjectTool.
func NewGetProjectTool(factory taiga.Factory) *GetProjectTool {
	return &GetProjectTool{factory: factory}
}

// Definition returns the MCP tool definition for registration.
func (t *GetProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("taiga.projects.get",
		mcp.WithDescription("Get a single Taiga project by numeric id or by slug."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Get project",
			ReadOnlyHint: boolPtr(true),
		}),
		mcp.WithNumber("project_id",
			mcp.Description("Numeric project id. Mutually exclusive with slug."),
		),
		mcp.WithString("slug",
			mcp.Description("Project slug. Mutually exclusive with project_id."),
		),
	)
}

// Handle processes the taiga.projects.get tool call.
func (t *GetProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	_, hasID := args["project_id"]
	slug := argString(req, "slug")

	if hasID && slug != "" {
		return mcp.NewToolResultError("Provide either project_id or slug, but not both"), nil
	}
	if !hasID && slug == "" {
		return mcp.NewToolResultError("Provide either project_id or slug"), nil
	}

	client, err := t.factory(ctx)
	if err != nil {
		return toolError(err)
	}

	var project taiga.Record
	if hasID {
		id, err := requiredInt(req, "project_id")
		if err != nil {
			return toolError(err)
		}
		project, err = client.GetProject(ctx, id)
		if err != nil {
			return toolError(err)
		}
	} else {
		project, err = client.GetProjectBySlug(ctx, slug)
		if err != nil {
			return toolError(err)
		}
	}
	return marshalResult(gateway.Project(project, gateway.ProjectFields))
}
