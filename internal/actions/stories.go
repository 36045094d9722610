package actions

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alphaomegateam/taiga-bridge/internal/errors"
	"github.com/alphaomegateam/taiga-bridge/internal/gateway"
	"github.com/alphaomegateam/taiga-bridge/internal/taiga"
)

func (s *Server) listStories(c *fiber.Ctx) (any, error) {
	projectID, err := queryInt(c, "project_id")
	if err != nil {
		return nil, err
	}

	search := c.Query("search")
	if search == "" {
		search = c.Query("q")
	}
	tags := queryAll(c, "tag")
	if len(tags) == 0 {
		tags = queryAll(c, "tags")
	}

	filter := taiga.StoryFilter{
		Query: search,
		Tags:  tags,
	}
	epic := c.Query("epic_id")
	if epic == "" {
		epic = c.Query("epic")
	}
	if epic != "" {
		id, err := gateway.RequireInt(epic, "epic_id")
		if err != nil {
			return nil, err
		}
		filter.Epic = &id
	}
	if v := c.Query("page"); v != "" {
		page, err := gateway.RequireInt(v, "page")
		if err != nil {
			return nil, err
		}
		filter.Page = &page
	}
	if v := c.Query("page_size"); v != "" {
		size, err := gateway.RequireInt(v, "page_size")
		if err != nil {
			return nil, err
		}
		filter.PageSize = &size
	}

	client, err := s.factory(c.Context())
	if err != nil {
		return nil, err
	}
	stories, err := client.ListUserStories(c.Context(), projectID, filter)
	if err != nil {
		return nil, err
	}
	return fiber.Map{"stories": gateway.ProjectAll(stories, gateway.StoryListFields)}, nil
}

func (s *Server) createStory(c *fiber.Ctx) (any, error) {
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

	client, err := s.factory(c.Context())
	if err != nil {
		return nil, err
	}

	payload := taiga.Record{"project": projectID, "subject": subject}
	for _, field := range []string{"description", "assigned_to", "tags", "milestone"} {
		if v := b.fieldOrUnset(field); !gateway.IsUnset(v) {
			payload[field] = v
		}
	}
	if v := b.fieldOrUnset("status"); !gateway.IsUnset(v) && v != nil {
		resolved, err := gateway.ResolveStatus(c.Context(), client, gateway.UserStoryStatus, projectID, v)
		if err != nil {
			return nil, err
		}
		payload["status"] = resolved
	}

	story, err := client.CreateUserStory(c.Context(), payload)
	if err != nil {
		return nil, err
	}
	return fiber.Map{"story": gateway.Project(story, gateway.StoryFields)}, nil
}

func (s *Server) addStoryToEpic(c *fiber.Ctx) (any, error) {
	b, err := parseBody(c)
	if err != nil {
		return nil, err
	}
	epicID, err := b.requireInt("epic_id")
	if err != nil {
		return nil, err
	}
	storyID, err := b.requireInt("user_story_id")
	if err != nil {
		return nil, err
	}
	client, err := s.factory(c.Context())
	if err != nil {
		return nil, err
	}
	link, err := client.LinkEpicUserStory(c.Context(), epicID, storyID)
	if err != nil {
		return nil, err
	}
	return fiber.Map{"link": link}, nil
}

// updateStory keeps this surface's historical quirks: tags pass through
// verbatim (a null list is not coerced) and a null status is rejected
// instead of being sent to clear the field. An explicit project_id is
// written into the payload and scopes the status-name lookup.
func (s *Server) updateStory(c *fiber.Ctx) (any, error) {
	b, err := parseBody(c)
	if err != nil {
		return nil, err
	}
	storyID, err := b.requireInt("story_id")
	if err != nil {
		return nil, err
	}

	status := b.fieldOrUnset("status")
	if !gateway.IsUnset(status) && status == nil {
		return nil, errors.NewValidation("status cannot be null")
	}

	client, err := s.factory(c.Context())
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		"subject":     b.fieldOrUnset("subject"),
		"description": b.fieldOrUnset("description"),
		"tags":        b.fieldOrUnset("tags"),
		"assigned_to": b.fieldOrUnset("assigned_to"),
	}
	if v := b.fieldOrUnset("project_id"); !gateway.IsUnset(v) {
		projectID, err := gateway.RequireInt(v, "project_id")
		if err != nil {
			return nil, err
		}
		fields["project"] = projectID
		if !gateway.IsUnset(status) {
			resolved, err := gateway.ResolveStatus(c.Context(), client, gateway.UserStoryStatus, projectID, status)
			if err != nil {
				return nil, err
			}
			status = resolved
		}
	}
	fields["status"] = status

	story, err := gateway.ApplyUpdate(c.Context(), gateway.StoryOps(client), storyID, fields, b.fieldOrUnset("version"))
	if err != nil {
		return nil, err
	}
	return fiber.Map{"story": gateway.Project(story, gateway.StoryFields)}, nil
}

func (s *Server) deleteStory(c *fiber.Ctx) (any, error) {
	b, err := parseBody(c)
	if err != nil {
		return nil, err
	}
	storyID, err := b.requireInt("story_id")
	if err != nil {
		return nil, err
	}
	client, err := s.factory(c.Context())
	if err != nil {
		return nil, err
	}
	if err := client.DeleteUserStory(c.Context(), storyID); err != nil {
		return nil, err
	}
	return fiber.Map{"deleted": fiber.Map{"story_id": storyID}}, nil
}
