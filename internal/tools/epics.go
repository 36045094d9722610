package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/alphaomegateam/taiga-bridge/internal/gateway"
	"github.com/alphaomegateam/taiga-bridge/internal/taiga"
)

// ListEpicsTool handles the taiga.epics.list MCP tool.
type ListEpicsTool struct {
	factory taiga.Factory
}

// NewListEpicsTool creates a ListEpicsTool.
func NewListEpicsTool(factory taiga.Factory) *ListEpicsTool {
	return &ListEpicsTool{factory: factory}
}

// Definition returns the MCP tool definition for registration.
func (t *ListEpicsTool) Definition() mcp.Tool {
	return mcp.NewTool("taiga.epics.list",
		mcp.WithDescription("List the epics of a Taiga project."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "List epics",
			ReadOnlyHint: boolPtr(true),
		}),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Numeric project id."),
		),
	)
}

// Handle processes the taiga.epics.list tool call.
func (t *ListEpicsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := requiredInt(req, "project_id")
	if err != nil {
		return toolError(err)
	}
	client, err := t.factory(ctx)
	if err != nil {
		return toolError(err)
	}
	epics, err := client.ListEpics(ctx, projectID)
	if err != nil {
		return toolError(err)
	}
	return marshalResult(gateway.ProjectAll(epics, gateway.EpicSummaryFields))
}

// CreateEpicTool handles the taiga.epics.create MCP tool.
type CreateEpicTool struct {
	factory taiga.Factory
}

// NewCreateEpicTool creates a CreateEpicTool.
func NewCreateEpicTool(factory taiga.Factory) *CreateEpicTool {
	return &CreateEpicTool{factory: factory}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateEpicTool) Definition() mcp.Tool {
	return mcp.NewTool("taiga.epics.create",
		mcp.WithDescription("Create an epic in a Taiga project."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:         "Create epic",
			OpenWorldHint: boolPtr(true),
		}),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Numeric project id."),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Epic subject line."),
		),
		mcp.WithString("description",
			mcp.Description("Epic description."),
		),
		mcp.WithString("color",
			mcp.Description("Display color, e.g. '#ff5733'."),
		),
		mcp.WithArray("tags",
			mcp.Description("Tags to attach to the epic."),
		),
	)
}

// Handle processes the taiga.epics.create tool call.
func (t *CreateEpicTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := requiredInt(req, "project_id")
	if err != nil {
		return toolError(err)
	}
	subject := argString(req, "subject")
	if subject == "" {
		return mcp.NewToolResultError("'subject' is required"), nil
	}

	payload := taiga.Record{"project": projectID, "subject": subject}
	if v := argOrUnset(req, "description"); !gateway.IsUnset(v) {
		payload["description"] = v
	}
	if v := argOrUnset(req, "color"); !gateway.IsUnset(v) {
		payload["color"] = v
	}
	if v := argOrUnset(req, "tags"); !gateway.IsUnset(v) {
		tags, err := gateway.RequireList(v, "tags")
		if err != nil {
			return toolError(err)
		}
		if tags == nil {
			tags = []any{}
		}
		payload["tags"] = tags
	}

	client, err := t.factory(ctx)
	if err != nil {
		return toolError(err)
	}
	epic, err := client.CreateEpic(ctx, payload)
	if err != nil {
		return toolError(err)
	}
	return marshalResult(gateway.Project(epic, gateway.EpicFields))
}

// UpdateEpicTool handles the taiga.epics.update MCP tool.
type UpdateEpicTool struct {
	factory taiga.Factory
}

// NewUpdateEpicTool creates an UpdateEpicTool.
func NewUpdateEpicTool(factory taiga.Factory) *UpdateEpicTool {
	return &UpdateEpicTool{factory: factory}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateEpicTool) Definition() mcp.Tool {
	return mcp.NewTool("taiga.epics.update",
		mcp.WithDescription(
			"Update fields of an epic. Only the provided fields change; "+
				"the current version is fetched automatically unless one is given. "+
				"Epic status must be a numeric status id.",
		),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:         "Update epic",
			OpenWorldHint: boolPtr(true),
		}),
		mcp.WithNumber("epic_id",
			mcp.Required(),
			mcp.Description("Numeric epic id."),
		),
		mcp.WithString("subject", mcp.Description("New subject.")),
		mcp.WithString("description", mcp.Description("New description.")),
		mcp.WithNumber("status", mcp.Description("Numeric epic status id.")),
		mcp.WithNumber("assigned_to", mcp.Description("User id to assign, or null to unassign.")),
		mcp.WithString("color", mcp.Description("New display color.")),
		mcp.WithArray("tags", mcp.Description("Replacement tag list.")),
		mcp.WithNumber("version",
			mcp.Description("Expected current version; omit to use the latest."),
		),
	)
}

// Handle processes the taiga.epics.update tool call.
func (t *UpdateEpicTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	epicID, err := requiredInt(req, "epic_id")
	if err != nil {
		return toolError(err)
	}
	client, err := t.factory(ctx)
	if err != nil {
		return toolError(err)
	}

	fields := map[string]any{
		"subject":     argOrUnset(req, "subject"),
		"description": argOrUnset(req, "description"),
		"status":      argOrUnset(req, "status"),
		"assigned_to": argOrUnset(req, "assigned_to"),
		"color":       argOrUnset(req, "color"),
		"tags":        argOrUnset(req, "tags"),
	}
	epic, err := gateway.ApplyUpdate(ctx, gateway.EpicOps(client), epicID, fields, argOrUnset(req, "version"))
	if err != nil {
		return toolError(err)
	}
	return marshalResult(gateway.Project(epic, gateway.EpicFields))
}

// DeleteEpicTool handles the taiga.epics.delete MCP tool.
type DeleteEpicTool struct {
	factory taiga.Factory
}

// NewDeleteEpicTool creates a DeleteEpicTool.
func NewDeleteEpicTool(factory taiga.Factory) *DeleteEpicTool {
	return &DeleteEpicTool{factory: factory}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteEpicTool) Definition() mcp.Tool {
	return mcp.NewTool("taiga.epics.delete",
		mcp.WithDescription("Delete an epic permanently."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:           "Delete epic",
			DestructiveHint: boolPtr(true),
			OpenWorldHint:   boolPtr(true),
		}),
		mcp.WithNumber("epic_id",
			mcp.Required(),
			mcp.Description("Numeric epic id."),
		),
	)
}

// Handle processes the taiga.epics.delete tool call.
func (t *DeleteEpicTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	epicID, err := requiredInt(req, "epic_id")
	if err != nil {
		return toolError(err)
	}
	client, err := t.factory(ctx)
	if err != nil {
		return toolError(err)
	}
	if err := client.DeleteEpic(ctx, epicID); err != nil {
		return toolError(err)
	}
	return marshalResult(taiga.Record{"deleted": taiga.Record{"epic_id": epicID}})
}

// AddUserStoryToEpicTool handles the taiga.epics.add_user_story MCP tool.
type AddUserStoryToEpicTool struct {
	factory taiga.Factory
}

// NewAddUserStoryToEpicTool creates an AddUserStoryToEpicTool.
func NewAddUserStoryToEpicTool(factory taiga.Factory) *AddUserStoryToEpicTool {
	return &AddUserStoryToEpicTool{factory: factory}
}

// Definition returns the MCP tool definition for registration.
func (t *AddUserStoryToEpicTool) Definition() mcp.Tool {
	return mcp.NewTool("taiga.epics.add_user_story",
		mcp.WithDescription("Link an existing user story to an epic."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:          "Add user story to epic",
			IdempotentHint: boolPtr(true),
			OpenWorldHint:  boolPtr(true),
		}),
		mcp.WithNumber("epic_id",
			mcp.Required(),
			mcp.Description("Numeric epic id."),
		),
		mcp.WithNumber("user_story_id",
			mcp.Required(),
			mcp.Description("Numeric user story id."),
		),
	)
}

// Handle processes the taiga.epics.add_user_story tool call.
func (t *AddUserStoryToEpicTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	epicID, err := requiredInt(req, "epic_id")
	if err != nil {
		return toolError(err)
	}
	storyID, err := requiredInt(req, "user_story_id")
	if err != nil {
		return toolError(err)
	}
	client, err := t.factory(ctx)
	if err != nil {
		return toolError(err)
	}
	link, err := client.LinkEpicUserStory(ctx, epicID, storyID)
	if err != nil {
		return toolError(err)
	}
	return marshalResult(link)
}
