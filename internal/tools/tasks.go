package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/alphaomegateam/taiga-bridge/internal/gateway"
	"github.com/alphaomegateam/taiga-bridge/internal/taiga"
)

// CreateTaskTool handles the taiga.tasks.create MCP tool. It is the one
// creation path with idempotency support: repeating a call with the same
// idempotency_key, user story and subject replays the first result
// instead of creating a duplicate.
type CreateTaskTool struct {
	factory taiga.Factory
	store   *gateway.IdempotencyStore
}

// NewCreateTaskTool creates a CreateTaskTool backed by the given
// idempotency store.
func NewCreateTaskTool(factory taiga.Factory, store *gateway.IdempotencyStore) *CreateTaskTool {
	return &CreateTaskTool{factory: factory, store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("taiga.tasks.create",
		mcp.WithDescription(
			"Create a task under a user story. Supply an idempotency_key to "+
				"make retries safe: repeating the call with the same key, story "+
				"and subject returns the originally created task instead of a "+
				"duplicate. The task status may be a numeric id or a name/slug.",
		),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:         "Create task",
			OpenWorldHint: boolPtr(true),
		}),
		mcp.WithNumber("user_story_id",
			mcp.Required(),
			mcp.Description("Numeric user story id the task belongs to."),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Task subject line."),
		),
		mcp.WithString("description", mcp.Description("Task description.")),
		mcp.WithNumber("assigned_to", mcp.Description("User id to assign the task to.")),
		mcp.WithString("status", mcp.Description("Task status id, name, or slug.")),
		mcp.WithArray("tags", mcp.Description("Tags to attach to the task.")),
		mcp.WithString("due_date", mcp.Description("Due date in YYYY-MM-DD format.")),
		mcp.WithString("idempotency_key",
			mcp.Description("Caller-chosen token that makes this creation safe to retry."),
		),
	)
}

// Handle processes the taiga.tasks.create tool call.
func (t *CreateTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	storyID, err := requiredInt(req, "user_story_id")
	if err != nil {
		return toolError(err)
	}
	subject := argString(req, "subject")
	if subject == "" {
		return mcp.NewToolResultError("'subject' is required"), nil
	}

	tags := argOrUnset(req, "tags")
	if !gateway.IsUnset(tags) {
		if _, err := gateway.RequireList(tags, "tags"); err != nil {
			return toolError(err)
		}
	}

	client, err := t.factory(ctx)
	if err != nil {
		return toolError(err)
	}
	task, err := gateway.CreateTask(ctx, client, t.store, gateway.CreateTaskParams{
		UserStoryID:    storyID,
		Subject:        subject,
		Description:    argOrUnset(req, "description"),
		AssignedTo:     argOrUnset(req, "assigned_to"),
		Status:         argOrUnset(req, "status"),
		Tags:           tags,
		DueDate:        argOrUnset(req, "due_date"),
		IdempotencyKey: argString(req, "idempotency_key"),
	})
	if err != nil {
		return toolError(err)
	}
	return marshalResult(gateway.Project(task, gateway.TaskFields))
}

// UpdateTaskTool handles the taiga.tasks.update MCP tool.
type UpdateTaskTool struct {
	factory taiga.Factory
}

// NewUpdateTaskTool creates an UpdateTaskTool.
func NewUpdateTaskTool(factory taiga.Factory) *UpdateTaskTool {
	return &UpdateTaskTool{factory: factory}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("taiga.tasks.update",
		mcp.WithDescription(
			"Update fields of a task. Only the provided fields change. Status "+
				"names are resolved against the task's project; the current "+
				"version is fetched automatically unless one is given.",
		),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:         "Update task",
			OpenWorldHint: boolPtr(true),
		}),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("Numeric task id."),
		),
		mcp.WithString("subject", mcp.Description("New subject.")),
		mcp.WithString("description", mcp.Description("New description.")),
		mcp.WithString("status", mcp.Description("Task status id, name, or slug.")),
		mcp.WithNumber("assigned_to", mcp.Description("User id to assign, or null to unassign.")),
		mcp.WithArray("tags", mcp.Description("Replacement tag list.")),
		mcp.WithString("due_date", mcp.Description("Due date in YYYY-MM-DD format, or null to clear.")),
		mcp.WithNumber("version",
			mcp.Description("Expected current version; omit to use the latest."),
		),
	)
}

// Handle processes the taiga.tasks.update tool call.
func (t *UpdateTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := requiredInt(req, "task_id")
	if err != nil {
		return toolError(err)
	}
	client, err := t.factory(ctx)
	if err != nil {
		return toolError(err)
	}

	dueDate := argOrUnset(req, "due_date")
	if !gateway.IsUnset(dueDate) {
		validated, err := gateway.ValidateDueDate(dueDate)
		if err != nil {
			return toolError(err)
		}
		dueDate = validated
	}

	tags := argOrUnset(req, "tags")
	// A null tag list means "remove all tags" on this surface.
	if !gateway.IsUnset(tags) && tags == nil {
		tags = []any{}
	}

	fields := map[string]any{
		"subject":     argOrUnset(req, "subject"),
		"description": argOrUnset(req, "description"),
		"status":      argOrUnset(req, "status"),
		"assigned_to": argOrUnset(req, "assigned_to"),
		"tags":        tags,
		"due_date":    dueDate,
	}
	task, err := gateway.ApplyUpdate(ctx, gateway.TaskOps(client), taskID, fields, argOrUnset(req, "version"))
	if err != nil {
		return toolError(err)
	}
	return marshalResult(gateway.Project(task, gateway.TaskFields))
}

// ListTasksTool handles the taiga.tasks.list MCP tool.
type ListTasksTool struct {
	factory taiga.Factory
}

// NewListTasksTool creates a ListTasksTool.
func NewListTasksTool(factory taiga.Factory) *ListTasksTool {
	return &ListTasksTool{factory: factory}
}

// Definition returns the MCP tool definition for registration.
func (t *ListTasksTool) Definition() mcp.Tool {
	return mcp.NewTool("taiga.tasks.list",
		mcp.WithDescription(
			"List tasks with optional filters. A status filter given by name "+
				"requires project_id so the name can be resolved. The result "+
				"carries the page metadata reported by Taiga.",
		),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "List tasks",
			ReadOnlyHint: boolPtr(true),
		}),
		mcp.WithNumber("project_id", mcp.Description("Only tasks in this project.")),
		mcp.WithNumber("user_story_id", mcp.Description("Only tasks under this user story.")),
		mcp.WithNumber("assigned_to", mcp.Description("Only tasks assigned to this user.")),
		mcp.WithString("query", mcp.Description("Full-text search query passed to Taiga.")),
		mcp.WithString("status", mcp.Description("Task status id, name, or slug.")),
		mcp.WithNumber("page", mcp.Description("Page number.")),
		mcp.WithNumber("page_size", mcp.Description("Page size.")),
	)
}

// Handle processes the taiga.tasks.list tool call.
func (t *ListTasksTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := optionalInt(req, "project_id")
	if err != nil {
		return toolError(err)
	}
	storyID, err := optionalInt(req, "user_story_id")
	if err != nil {
		return toolError(err)
	}
	assignedTo, err := optionalInt(req, "assigned_to")
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

	var statusID *int
	if v := argOrUnset(req, "status"); !gateway.IsUnset(v) && v != nil {
		if id, ok := gateway.AsInt(v); ok {
			statusID = &id
		} else {
			if projectID == nil {
				return mcp.NewToolResultError("project_id is required to filter by status name"), nil
			}
			resolved, err := gateway.ResolveStatus(ctx, client, gateway.TaskStatus, *projectID, v)
			if err != nil {
				return toolError(err)
			}
			id, _ := gateway.AsInt(resolved)
			statusID = &id
		}
	}

	tasks, pagination, err := client.ListTasks(ctx, taiga.TaskFilter{
		Project:    projectID,
		UserStory:  storyID,
		AssignedTo: assignedTo,
		Query:      argString(req, "query"),
		Status:     statusID,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return toolError(err)
	}
	return marshalResult(map[string]any{
		"tasks":      gateway.ProjectAll(tasks, gateway.TaskListFields),
		"pagination": pagination,
	})
}

// DeleteTaskTool handles the taiga.tasks.delete MCP tool.
type DeleteTaskTool struct {
	factory taiga.Factory
}

// NewDeleteTaskTool creates a DeleteTaskTool.
func NewDeleteTaskTool(factory taiga.Factory) *DeleteTaskTool {
	return &DeleteTaskTool{factory: factory}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("taiga.tasks.delete",
		mcp.WithDescription("Delete a task permanently."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:           "Delete task",
			DestructiveHint: boolPtr(true),
			OpenWorldHint:   boolPtr(true),
		}),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("Numeric task id."),
		),
	)
}

// Handle processes the taiga.tasks.delete tool call.
func (t *DeleteTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := requiredInt(req, "task_id")
	if err != nil {
		return toolError(err)
	}
	client, err := t.factory(ctx)
	if err != nil {
		return toolError(err)
	}
	if err := client.DeleteTask(ctx, taskID); err != nil {
		return toolError(err)
	}
	return marshalResult(taiga.Record{"deleted": taiga.Record{"task_id": taskID}})
}
