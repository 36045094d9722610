package gateway

import (
	"context"
	"net/http"
	"strings"

	"github.com/alphaomegateam/taiga-bridge/internal/errors"
	"github.com/alphaomegateam/taiga-bridge/internal/taiga"
)

// ListUsers lists users visible to the authenticated account, optionally
// narrowed to a project and filtered by a case-insensitive substring over
// full name, username and email. Accounts without the users endpoint
// permission fall back to the project membership listing, which wraps the
// user record one level deeper.
func ListUsers(ctx context.Context, client *taiga.Client, projectID *int, search string) ([]taiga.Record, error) {
	users, err := client.ListUsers(ctx, search, projectID)
	if err != nil {
		apiErr, ok := errors.AsAPIError(err)
		if !ok || projectID == nil || (apiErr.StatusCode != http.StatusUnauthorized && apiErr.StatusCode != http.StatusForbidden) {
			return nil, err
		}
		members, memberErr := client.ListProjectUsers(ctx, *projectID)
		if memberErr != nil {
			return nil, memberErr
		}
		users = make([]taiga.Record, 0, len(members))
		for _, member := range members {
			if nested, ok := member["user"].(map[string]any); ok {
				users = append(users, taiga.Record(nested))
			} else {
				users = append(users, member)
			}
		}
	}

	projected := make([]taiga.Record, 0, len(users))
	needle := strings.ToLower(search)
	for _, user := range users {
		if needle != "" && !userMatches(user, needle) {
			continue
		}
		projected = append(projected, Project(user, UserFields))
	}
	return projected, nil
}

func userMatches(user taiga.Record, needle string) bool {
	for _, field := range []string{"full_name", "username", "email"} {
		if s, ok := user[field].(string); ok && strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

// FilterMilestones projects milestones to their summary fields and keeps
// only those whose name or slug contains search, case-insensitively.
func FilterMilestones(milestones []taiga.Record, search string) []taiga.Record {
	out := make([]taiga.Record, 0, len(milestones))
	needle := strings.ToLower(search)
	for _, milestone := range milestones {
		if needle != "" && !recordMatches(milestone, needle, "name", "slug") {
			continue
		}
		out = append(out, Project(milestone, MilestoneFields))
	}
	return out
}

// FilterProjectsByName keeps projects whose name contains search,
// case-insensitively. An empty search keeps everything.
func FilterProjectsByName(projects []taiga.Record, search string) []taiga.Record {
	if search == "" {
		return projects
	}
	out := make([]taiga.Record, 0, len(projects))
	needle := strings.ToLower(search)
	for _, project := range projects {
		if recordMatches(project, needle, "name") {
			out = append(out, project)
		}
	}
	return out
}

func recordMatches(rec taiga.Record, needle string, fields ...string) bool {
	for _, field := range fields {
		if s, ok := rec[field].(string); ok && strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}
