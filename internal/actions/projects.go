package actions

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/alphaomegateam/taiga-bridge/internal/errors"
	"github.com/alphaomegateam/taiga-bridge/internal/gateway"
	"github.com/alphaomegateam/taiga-bridge/internal/taiga"
)

// listProjects forwards caller query parameters to Taiga untouched, except
// "search" which filters client-side by name. The member filter defaults to
// the authenticated user when the caller did not supply one.
func (s *Server) listProjects(c *fiber.Ctx) (any, error) {
	params := url.Values{}
	var search string
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		if string(key) == "search" {
			search = string(value)
			return
		}
		params.Add(string(key), string(value))
	})

	client, err := s.factory(c.Context())
	if err != nil {
		return nil, err
	}
	if _, ok := params["member"]; !ok {
		userID, err := client.CurrentUserID(c.Context())
		if err != nil {
			return nil, err
		}
		params.Set("member", strconv.Itoa(userID))
	}
	projects, err := client.ListProjects(c.Context(), params)
	if err != nil {
		return nil, err
	}
	filtered := gateway.FilterProjectsByName(projects, search)
	return fiber.Map{"projects": gateway.ProjectAll(filtered, gateway.ProjectFields)}, nil
}

func (s *Server) getProject(c *fiber.Ctx) (any, error) {
	projectID, err := queryInt(c, "project_id")
	if err != nil {
		return nil, err
	}
	client, err := s.factory(c.Context())
	if err != nil {
		return nil, err
	}
	project, err := client.GetProject(c.Context(), projectID)
	if err != nil {
		return nil, err
	}
	return fiber.Map{"project": gateway.Project(project, gateway.ProjectFields)}, nil
}

func (s *Server) getProjectBySlug(c *fiber.Ctx) (any, error) {
	slug := c.Query("slug")
	if slug == "" {
		return nil, errors.NewValidation("'slug' is required")
	}
	client, err := s.factory(c.Context())
	if err != nil {
		return nil, err
	}
	project, err := client.GetProjectBySlug(c.Context(), slug)
	if err != nil {
		return nil, err
	}
	return fiber.Map{"project": gateway.Project(project, gateway.ProjectFields)}, nil
}

// listEpics accepts one or more project_id query parameters and returns
// the epics of every named project, each annotated with its project id so
// results from different projects stay distinguishable.
func (s *Server) listEpics(c *fiber.Ctx) (any, error) {
	raw := queryAll(c, "project_id")
	if len(raw) == 0 {
		return nil, errors.NewValidation("'project_id' is required")
	}

	client, err := s.factory(c.Context())
	if err != nil {
		return nil, err
	}

	out := make([]taiga.Record, 0)
	for _, value := range raw {
		projectID, err := gateway.RequireInt(value, "project_id")
		if err != nil {
			return nil, err
		}
		epics, err := client.ListEpics(c.Context(), projectID)
		if err != nil {
			return nil, err
		}
		for _, epic := range epics {
			projected := gateway.Project(epic, gateway.EpicSummaryFields)
			projected["project_id"] = projectID
			out = append(out, projected)
		}
	}
	return fiber.Map{"epics": out}, nil
}

func (s *Server) listStatuses(c *fiber.Ctx) (any, error) {
	projectID, err := queryInt(c, "project_id")
	if err != nil {
		return nil, err
	}
	kind := c.Query("kind", "userstory")

	client, err := s.factory(c.Context())
	if err != nil {
		return nil, err
	}

	var statuses []taiga.Record
	switch kind {
	case "userstory":
		statuses, err = client.ListUserStoryStatuses(c.Context(), projectID)
	case "task":
		statuses, err = client.ListTaskStatuses(c.Context(), projectID)
	default:
		return nil, errors.NewValidation("kind must be 'userstory' or 'task'")
	}
	if err != nil {
		return nil, err
	}
	return fiber.Map{"statuses": gateway.ProjectAll(statuses, gateway.StatusFields)}, nil
}

func queryInt(c *fiber.Ctx, name string) (int, error) {
	value := c.Query(name)
	if value == "" {
		return 0, errors.NewValidation("'%s' is required", name)
	}
	return gateway.RequireInt(value, name)
}

// queryAll returns every occurrence of a repeated query parameter.
func queryAll(c *fiber.Ctx, name string) []string {
	var values []string
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		if string(key) == name {
			values = append(values, string(value))
		}
	})
	return values
}
