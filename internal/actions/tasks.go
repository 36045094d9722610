package actions

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alphaomegateam/taiga-bridge/internal/gateway"
	"github.com/alphaomegateam/taiga-bridge/internal/taiga"
)

// createTask issues a plain create against Taiga. Unlike the MCP tool it
// takes project_id directly, allows tasks without a user story, accepts a
// numeric status id only, and does not replay through the idempotency
// store.
func (s *Server) createTask(c *fiber.Ctx) (any, error) {
	b, err := parseBody(c)
	if err != nil {
		return nil, err
	}
	projectID, err := b.requireInt("project_id")
	if err != nil {
		return nil, err
	}
	subject, err := b.requireString("subject")
	if err != nil {
		return nil, err
	}

	payload := taiga.Record{"project": projectID, "subject": subject}
	if v := b.fieldOrUnset("description"); !gateway.IsUnset(v) {
		payload["description"] = v
	}
	if v := b.fieldOrUnset("status"); !gateway.IsUnset(v) {
		id, err := gateway.RequireInt(v, "status")
		if err != nil {
			return nil, err
		}
		payload["status"] = id
	}
	if v := b.fieldOrUnset("assigned_to"); !gateway.IsUnset(v) {
		if v == nil {
			payload["assigned_to"] = nil
		} else {
			id, err := gateway.RequireInt(v, "assigned_to")
			if err != nil {
				return nil, err
			}
			payload["assigned_to"] = id
		}
	}
	if v := b.fieldOrUnset("tags"); !gateway.IsUnset(v) {
		if _, err := gateway.RequireList(v, "tags"); err != nil {
			return nil, err
		}
		payload["tags"] = v
	}
	if v := b.fieldOrUnset("user_story_id"); !gateway.IsUnset(v) {
		id, err := gateway.RequireInt(v, "user_story_id")
		if err != nil {
			return nil, err
		}
		payload["user_story"] = id
	}

	client, err := s.factory(c.Context())
	if err != nil {
		return nil, err
	}
	task, err := client.CreateTask(c.Context(), payload)
	if err != nil {
		return nil, err
	}
	return fiber.Map{"task": gateway.Project(task, gateway.TaskFields)}, nil
}

func (s *Server) updateTask(c *fiber.Ctx) (any, error) {
	b, err := parseBody(c)
	if err != nil {
		return nil, err
	}
	taskID, err := b.requireInt("task_id")
	if err != nil {
		return nil, err
	}

	dueDate := b.fieldOrUnset("due_date")
	if !gateway.IsUnset(dueDate) {
		validated, err := gateway.ValidateDueDate(dueDate)
		if err != nil {
			return nil, err
		}
		dueDate = validated
	}

	client, err := s.factory(c.Context())
	if err != nil {
		return nil, err
	}
	fields := map[string]any{
		"subject":     b.fieldOrUnset("subject"),
		"description": b.fieldOrUnset("description"),
		"status":      b.fieldOrUnset("status"),
		"assigned_to": b.fieldOrUnset("assigned_to"),
		"tags":        b.fieldOrUnset("tags"),
		"due_date":    dueDate,
	}
	task, err := gateway.ApplyUpdate(c.Context(), gateway.TaskOps(client), taskID, fields, b.fieldOrUnset("version"))
	if err != nil {
		return nil, err
	}
	return fiber.Map{"task": gateway.Project(task, gateway.TaskFields)}, nil
}

func (s *Server) deleteTask(c *fiber.Ctx) (any, error) {
	b, err := parseBody(c)
	if err != nil {
		return nil, err
	}
	taskID, err := b.requireInt("task_id")
	if err != nil {
		return nil, err
	}
	client, err := s.factory(c.Context())
	if err != nil {
		return nil, err
	}
	if err := client.DeleteTask(c.Context(), taskID); err != nil {
		return nil, err
	}
	return fiber.Map{"deleted": fiber.Map{"task_id": taskID}}, nil
}
