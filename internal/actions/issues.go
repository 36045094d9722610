package actions

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alphaomegateam/taiga-bridge/internal/gateway"
	"github.com/alphaomegateam/taiga-bridge/internal/taiga"
)

// Issue classification fields accept numeric ids only; an explicit null
// is rejected like any other non-integer. The request field "type" maps
// to Taiga's "issue_type".
var issueClassifiers = map[string]string{
	"status":   "status",
	"priority": "priority",
	"severity": "severity",
	"type":     "issue_type",
}

func (s *Server) createIssue(c *fiber.Ctx) (any, error) {
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
	for _, field := range []string{"description", "assigned_to", "tags"} {
		if v := b.fieldOrUnset(field); !gateway.IsUnset(v) {
			payload[field] = v
		}
	}
	for request, remote := range issueClassifiers {
		v := b.fieldOrUnset(request)
		if gateway.IsUnset(v) {
			continue
		}
		id, err := gateway.RequireInt(v, request)
		if err != nil {
			return nil, err
		}
		payload[remote] = id
	}

	client, err := s.factory(c.Context())
	if err != nil {
		return nil, err
	}
	issue, err := client.CreateIssue(c.Context(), payload)
	if err != nil {
		return nil, err
	}
	return fiber.Map{"issue": gateway.Project(issue, gateway.IssueFields)}, nil
}

func (s *Server) updateIssue(c *fiber.Ctx) (any, error) {
	b, err := parseBody(c)
	if err != nil {
		return nil, err
	}
	issueID, err := b.requireInt("issue_id")
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		"subject":     b.fieldOrUnset("subject"),
		"description": b.fieldOrUnset("description"),
		"assigned_to": b.fieldOrUnset("assigned_to"),
		"tags":        b.fieldOrUnset("tags"),
	}
	for request, remote := range issueClassifiers {
		v := b.fieldOrUnset(request)
		if gateway.IsUnset(v) {
			fields[remote] = gateway.Unset
			continue
		}
		id, err := gateway.RequireInt(v, request)
		if err != nil {
			return nil, err
		}
		fields[remote] = id
	}

	client, err := s.factory(c.Context())
	if err != nil {
		return nil, err
	}
	issue, err := gateway.ApplyUpdate(c.Context(), gateway.IssueOps(client), issueID, fields, b.fieldOrUnset("version"))
	if err != nil {
		return nil, err
	}
	return fiber.Map{"issue": gateway.Project(issue, gateway.IssueFields)}, nil
}

func (s *Server) deleteIssue(c *fiber.Ctx) (any, error) {
	b, err := parseBody(c)
	if err != nil {
		return nil, err
	}
	issueID, err := b.requireInt("issue_id")
	if err != nil {
		return nil, err
	}
	client, err := s.factory(c.Context())
	if err != nil {
		return nil, err
	}
	if err := client.DeleteIssue(c.Context(), issueID); err != nil {
		return nil, err
	}
	return fiber.Map{"deleted": fiber.Map{"issue_id": issueID}}, nil
}
