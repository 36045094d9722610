package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/alphaomegateam/taiga-bridge/internal/gateway"
	"github.com/alphaomegateam/taiga-bridge/internal/taiga"
)

// ListStoriesTool handles the taiga.stories.list MCP tool.
type ListStoriesTool struct {
	factory taiga.Factory
}

// NewListStoriesTool creates a ListStoriesTool.
func NewListStoriesTool(factory taiga.Factory) *ListStoriesTool {
	return &ListStoriesTool{factory: factory}
}

// Definition returns the MCP tool definition for registration.
func (t *ListStoriesTool) Definition() mcp.Tool {
	return mcp.NewTool("taiga.stories.list",
		mcp.WithDescription("List the user stories of a Taiga project, with optional filters."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "List user stories",
			ReadOnlyHint: boolPtr(true),
		}),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Numeric project id."),
		),
		mcp.WithNumber("epic_id", mcp.Description("Only stories linked to this epic.")),
		mcp.WithString("query", mcp.Description("Full-text search query passed to Taiga.")),
		mcp.WithString("tags", mcp.Description("Comma-separated tag filter passed to Taiga.")),
		mcp.WithNumber("page", mcp.Description("Page number.")),
		mcp.WithNumber("page_size", mcp.Description("Page size.")),
	)
}

// Handle processes the taiga.stories.list tool call.
func (t *ListStoriesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := requiredInt(req, "project_id")
	if err != nil {
		return toolError(err)
	}
	epicID, err := optionalInt(req, "epic_id")
	if err != nil {
		return toolError(err)
	}
	page, err := optionalInt(req, "page")
	if err != nil {
		return toolError(err)
	}
	pageSize, err := optionalInt(req, "page_size")
	if err != nil {
		return toolError(err)
	}

	client, err := t.factory(ctx)
	if err != nil {
		return toolError(err)
	}
	filter := taiga.StoryFilter{
		Epic:     epicID,
		Query:    argString(req, "query"),
		Page:     page,
		PageSize: pageSize,
	}
	if tags := argString(req, "tags"); tags != "" {
		filter.Tags = strings.Split(tags, ",")
	}
	stories, err := client.ListUserStories(ctx, projectID, filter)
	if err != nil {
		return toolError(err)
	}
	return marshalResult(gateway.ProjectAll(stories, gateway.StoryListFields))
}

// CreateStoryTool handles the taiga.stories.create MCP tool.
type CreateStoryTool struct {
	factory taiga.Factory
}

// NewCreateStoryTool creates a CreateStoryTool.
func NewCreateStoryTool(factory taiga.Factory) *CreateStoryTool {
	return &CreateStoryTool{factory: factory}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateStoryTool) Definition() mcp.Tool {
	return mcp.NewTool("taiga.stories.create",
		mcp.WithDescription(
			"Create a user story in a Taiga project. The status may be a "+
				"numeric id or a status name/slug, which is resolved against "+
				"the project's status list.",
		),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:         "Create user story",
			OpenWorldHint: boolPtr(true),
		}),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Numeric project id."),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Story subject line."),
		),
		mcp.WithString("description", mcp.Description("Story description.")),
		mcp.WithString("status", mcp.Description("Status id, name, or slug.")),
		mcp.WithArray("tags", mcp.Description("Tags to attach to the story.")),
		mcp.WithNumber("assigned_to", mcp.Description("User id to assign the story to.")),
		mcp.WithNumber("milestone_id", mcp.Description("Milestone (sprint) id to place the story in.")),
	)
}

// Handle processes the taiga.stories.create tool call.
func (t *CreateStoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := requiredInt(req, "project_id")
	if err != nil {
		return toolError(err)
	}
	subject := argString(req, "subject")
	if subject == "" {
		return mcp.NewToolResultError("'subject' is required"), nil
	}

	client, err := t.factory(ctx)
	if err != nil {
		return toolError(err)
	}

	payload := taiga.Record{"project": projectID, "subject": subject}
	if v := argOrUnset(req, "description"); !gateway.IsUnset(v) {
		payload["description"] = v
	}
	if v := argOrUnset(req, "assigned_to"); !gateway.IsUnset(v) {
		payload["assigned_to"] = v
	}
	if v := argOrUnset(req, "milestone_id"); !gateway.IsUnset(v) {
		payload["milestone"] = v
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
	if v := argOrUnset(req, "status"); !gateway.IsUnset(v) && v != nil {
		resolved, err := gateway.ResolveStatus(ctx, client, gateway.UserStoryStatus, projectID, v)
		if err != nil {
			return toolError(err)
		}
		payload["status"] = resolved
	}

	story, err := client.CreateUserStory(ctx, payload)
	if err != nil {
		return toolError(err)
	}
	return marshalResult(gateway.Project(story, gateway.StoryFields))
}

// UpdateStoryTool handles the taiga.stories.update MCP tool.
type UpdateStoryTool struct {
	factory taiga.Factory
}

// NewUpdateStoryTool creates an UpdateStoryTool.
func NewUpdateStoryTool(factory taiga.Factory) *UpdateStoryTool {
	return &UpdateStoryTool{factory: factory}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateStoryTool) Definition() mcp.Tool {
	return mcp.NewTool("taiga.stories.update",
		mcp.WithDescription(
			"Update fields of a user story. Only the provided fields change. "+
				"Status names are resolved against the story's project; the "+
				"current version is fetched automatically unless one is given. "+
				"A conflicting concurrent edit is reported with the latest version.",
		),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:         "Update user story",
			OpenWorldHint: boolPtr(true),
		}),
		mcp.WithNumber("user_story_id",
			mcp.Required(),
			mcp.Description("Numeric user story id."),
		),
		mcp.WithString("subject", mcp.Description("New subject.")),
		mcp.WithString("description", mcp.Description("New description.")),
		mcp.WithString("status", mcp.Description("Status id, name, or slug. Null clears the status.")),
		mcp.WithArray("tags", mcp.Description("Replacement tag list. Null clears all tags.")),
		mcp.WithNumber("assigned_to", mcp.Description("User id to assign, or null to unassign.")),
		mcp.WithNumber("epic_id", mcp.Description("Epic id to link, or null to unlink.")),
		mcp.WithNumber("milestone_id", mcp.Description("Milestone id, or null to remove from the sprint.")),
		mcp.WithObject("custom_attributes", mcp.Description("Custom attribute values keyed by attribute id.")),
		mcp.WithNumber("version",
			mcp.Description("Expected current version; omit to use the latest."),
		),
	)
}

// Handle processes the taiga.stories.update tool call.
func (t *UpdateStoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	storyID, err := requiredInt(req, "user_story_id")
	if err != nil {
		return toolError(err)
	}
	client, err := t.factory(ctx)
	if err != nil {
		return toolError(err)
	}

	tags := argOrUnset(req, "tags")
	if !gateway.IsUnset(tags) {
		validated, err := gateway.RequireList(tags, "tags")
		if err != nil {
			return toolError(err)
		}
		// A null tag list means "remove all tags" on this surface.
		if validated == nil {
			validated = []any{}
		}
		tags = validated
	}

	fields := map[string]any{
		"subject":           argOrUnset(req, "subject"),
		"description":       argOrUnset(req, "description"),
		"status":            argOrUnset(req, "status"),
		"tags":              tags,
		"assigned_to":       argOrUnset(req, "assigned_to"),
		"epic":              argOrUnset(req, "epic_id"),
		"milestone":         argOrUnset(req, "milestone_id"),
		"custom_attributes": argOrUnset(req, "custom_attributes"),
	}
	story, err := gateway.ApplyUpdate(ctx, gateway.StoryOps(client), storyID, fields, argOrUnset(req, "version"))
	if err != nil {
		return toolError(err)
	}
	return marshalResult(gateway.Project(story, gateway.StoryFields))
}

// DeleteStoryTool handles the taiga.stories.delete MCP tool.
type DeleteStoryTool struct {
	factory taiga.Factory
}

// NewDeleteStoryTool creates a DeleteStoryTool.
func NewDeleteStoryTool(factory taiga.Factory) *DeleteStoryTool {
	return &DeleteStoryTool{factory: factory}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteStoryTool) Definition() mcp.Tool {
	return mcp.NewTool("taiga.stories.delete",
		mcp.WithDescription("Delete a user story permanently."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:           "Delete user story",
			DestructiveHint: boolPtr(true),
			OpenWorldHint:   boolPtr(true),
		}),
		mcp.WithNumber("user_story_id",
			mcp.Required(),
			mcp.Description("Numeric user story id."),
		),
	)
}

// Handle processes the taiga.stories.delete tool call.
func (t *DeleteStoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	storyID, err := requiredInt(req, "user_story_id")
	if err != nil {
		return toolError(err)
	}
	client, err := t.factory(ctx)
	if err != nil {
		return toolError(err)
	}
	if err := client.DeleteUserStory(ctx, storyID); err != nil {
		return toolError(err)
	}
	return marshalResult(taiga.Record{"deleted": taiga.Record{"user_story_id": storyID}})
}
