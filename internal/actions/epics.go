package actions

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alphaomegateam/taiga-bridge/internal/gateway"
	"github.com/alphaomegateam/taiga-bridge/internal/taiga"
)

// createEpic takes the epic status as a numeric id only; this surface has
// never resolved epic status names.
func (s *Server) createEpic(c *fiber.Ctx) (any, error) {
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
	for _, field := range []string{"description", "color", "tags", "assigned_to"} {
		if v := b.fieldOrUnset(field); !gateway.IsUnset(v) {
			payload[field] = v
		}
	}
	if v := b.fieldOrUnset("status"); !gateway.IsUnset(v) {
		if v != nil {
			id, err := gateway.RequireInt(v, "status")
			if err != nil {
				return nil, err
			}
			payload["status"] = id
		} else {
			payload["status"] = nil
		}
	}

	client, err := s.factory(c.Context())
	if err != nil {
		return nil, err
	}
	epic, err := client.CreateEpic(c.Context(), payload)
	if err != nil {
		return nil, err
	}
	return fiber.Map{"epic": gateway.Project(epic, gateway.EpicFields)}, nil
}

func (s *Server) updateEpic(c *fiber.Ctx) (any, error) {
	b, err := parseBody(c)
	if err != nil {
		return nil, err
	}
	epicID, err := b.requireInt("epic_id")
	if err != nil {
		return nil, err
	}

	// Epic status is id-only; validate here since the epic ops carry no
	// name resolver.
	status := b.fieldOrUnset("status")
	if !gateway.IsUnset(status) && status != nil {
		id, err := gateway.RequireInt(status, "status")
		if err != nil {
			return nil, err
		}
		status = id
	}

	client, err := s.factory(c.Context())
	if err != nil {
		return nil, err
	}
	fields := map[string]any{
		"subject":     b.fieldOrUnset("subject"),
		"description": b.fieldOrUnset("description"),
		"status":      status,
		"color":       b.fieldOrUnset("color"),
		"tags":        b.fieldOrUnset("tags"),
		"assigned_to": b.fieldOrUnset("assigned_to"),
	}
	epic, err := gateway.ApplyUpdate(c.Context(), gateway.EpicOps(client), epicID, fields, b.fieldOrUnset("version"))
	if err != nil {
		return nil, err
	}
	return fiber.Map{"epic": gateway.Project(epic, gateway.EpicFields)}, nil
}

func (s *Server) deleteEpic(c *fiber.Ctx) (any, error) {
	b, err := parseBody(c)
	if err != nil {
		return nil, err
	}
	epicID, err := b.requireInt("epic_id")
	if err != nil {
		return nil, err
	}
	client, err := s.factory(c.Context())
	if err != nil {
		return nil, err
	}
	if err := client.DeleteEpic(c.Context(), epicID); err != nil {
		return nil, err
	}
	return fiber.Map{"deleted": fiber.Map{"epic_id": epicID}}, nil
}
