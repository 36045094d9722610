package taiga

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// StoryFilter narrows user story listings.
type StoryFilter struct {
	Epic     *int
	Query    string
	Tags     []string
	Page     *int
	PageSize *int
}

// TaskFilter narrows task listings.
type TaskFilter struct {
	Project    *int
	UserStory  *int
	AssignedTo *int
	Query      string
	Status     *int
	Page       *int
	PageSize   *int
}

// ListProjects lists projects, passing params (e.g. member) through to Taiga.
func (c *Client) ListProjects(ctx context.Context, params url.Values) ([]Record, error) {
	return c.listRecords(ctx, "/projects", params)
}

// GetProject fetches a project by id.
func (c *Client) GetProject(ctx context.Context, projectID int) (Record, error) {
	return c.getRecord(ctx, fmt.Sprintf("/projects/%d", projectID), nil)
}

// GetProjectBySlug fetches a project by its slug.
func (c *Client) GetProjectBySlug(ctx context.Context, slug string) (Record, error) {
	return c.getRecord(ctx, "/projects/by_slug", url.Values{"slug": {slug}})
}

// ListEpics lists the epics of a project.
func (c *Client) ListEpics(ctx context.Context, projectID int) ([]Record, error) {
	return c.listRecords(ctx, "/epics", projectQuery(projectID))
}

func (c *Client) CreateEpic(ctx context.Context, payload Record) (Record, error) {
	return c.submitRecord(ctx, http.MethodPost, "/epics", payload)
}

func (c *Client) GetEpic(ctx context.Context, epicID int) (Record, error) {
	return c.getRecord(ctx, fmt.Sprintf("/epics/%d", epicID), nil)
}

func (c *Client) UpdateEpic(ctx context.Context, epicID int, payload Record) (Record, error) {
	return c.submitRecord(ctx, http.MethodPatch, fmt.Sprintf("/epics/%d", epicID), payload)
}

func (c *Client) DeleteEpic(ctx context.Context, epicID int) error {
	return c.delete(ctx, fmt.Sprintf("/epics/%d", epicID))
}

// LinkEpicUserStory attaches a user story to an epic.
func (c *Client) LinkEpicUserStory(ctx context.Context, epicID, userStoryID int) (Record, error) {
	payload := Record{
		"epic":       epicID,
		"user_story": userStoryID,
	}
	return c.submitRecord(ctx, http.MethodPost, fmt.Sprintf("/epics/%d/related_userstories", epicID), payload)
}

// ListUserStories lists a project's user stories with optional filters.
func (c *Client) ListUserStories(ctx context.Context, projectID int, f StoryFilter) ([]Record, error) {
	params := projectQuery(projectID)
	if f.Epic != nil {
		params.Set("epic", strconv.Itoa(*f.Epic))
	}
	if f.Query != "" {
		params.Set("q", f.Query)
	}
	for _, tag := range f.Tags {
		params.Add("tags", tag)
	}
	if f.Page != nil {
		params.Set("page", strconv.Itoa(*f.Page))
	}
	if f.PageSize != nil {
		params.Set("page_size", strconv.Itoa(*f.PageSize))
	}
	return c.listRecords(ctx, "/userstories", params)
}

func (c *Client) CreateUserStory(ctx context.Context, payload Record) (Record, error) {
	return c.submitRecord(ctx, http.MethodPost, "/userstories", payload)
}

func (c *Client) GetUserStory(ctx context.Context, storyID int) (Record, error) {
	return c.getRecord(ctx, fmt.Sprintf("/userstories/%d", storyID), nil)
}

func (c *Client) UpdateUserStory(ctx context.Context, storyID int, payload Record) (Record, error) {
	return c.submitRecord(ctx, http.MethodPatch, fmt.Sprintf("/userstories/%d", storyID), payload)
}

func (c *Client) DeleteUserStory(ctx context.Context, storyID int) error {
	return c.delete(ctx, fmt.Sprintf("/userstories/%d", storyID))
}

// ListUserStoryStatuses lists the valid user story statuses of a project.
func (c *Client) ListUserStoryStatuses(ctx context.Context, projectID int) ([]Record, error) {
	return c.listRecords(ctx, "/userstory-statuses", projectQuery(projectID))
}

// ListTaskStatuses lists the valid task statuses of a project.
func (c *Client) ListTaskStatuses(ctx context.Context, projectID int) ([]Record, error) {
	return c.listRecords(ctx, "/task-statuses", projectQuery(projectID))
}

func (c *Client) CreateTask(ctx context.Context, payload Record) (Record, error) {
	return c.submitRecord(ctx, http.MethodPost, "/tasks", payload)
}

func (c *Client) GetTask(ctx context.Context, taskID int) (Record, error) {
	return c.getRecord(ctx, fmt.Sprintf("/tasks/%d", taskID), nil)
}

func (c *Client) UpdateTask(ctx context.Context, taskID int, payload Record) (Record, error) {
	return c.submitRecord(ctx, http.MethodPatch, fmt.Sprintf("/tasks/%d", taskID), payload)
}

func (c *Client) DeleteTask(ctx context.Context, taskID int) error {
	return c.delete(ctx, fmt.Sprintf("/tasks/%d", taskID))
}

// ListTasks lists tasks with optional filters. Paging metadata comes from
// Taiga's x-pagination-* response headers.
func (c *Client) ListTasks(ctx context.Context, f TaskFilter) ([]Record, Pagination, error) {
	params := url.Values{}
	if f.Project != nil {
		params.Set("project", strconv.Itoa(*f.Project))
	}
	if f.UserStory != nil {
		params.Set("user_story", strconv.Itoa(*f.UserStory))
	}
	if f.AssignedTo != nil {
		params.Set("assigned_to", strconv.Itoa(*f.AssignedTo))
	}
	if f.Query != "" {
		params.Set("q", f.Query)
	}
	if f.Status != nil {
		params.Set("status", strconv.Itoa(*f.Status))
	}
	if f.Page != nil {
		params.Set("page", strconv.Itoa(*f.Page))
	}
	if f.PageSize != nil {
		params.Set("page_size", strconv.Itoa(*f.PageSize))
	}

	resp, err := c.do(ctx, http.MethodGet, "/tasks", params, nil)
	if err != nil {
		return nil, nil, err
	}
	pagination := extractPagination(resp.Header)

	var tasks []Record
	if err := decodeResponse(resp, &tasks); err != nil {
		return nil, nil, err
	}
	return tasks, pagination, nil
}

func (c *Client) CreateIssue(ctx context.Context, payload Record) (Record, error) {
	return c.submitRecord(ctx, http.MethodPost, "/issues", payload)
}

func (c *Client) GetIssue(ctx context.Context, issueID int) (Record, error) {
	return c.getRecord(ctx, fmt.Sprintf("/issues/%d", issueID), nil)
}

func (c *Client) UpdateIssue(ctx context.Context, issueID int, payload Record) (Record, error) {
	return c.submitRecord(ctx, http.MethodPatch, fmt.Sprintf("/issues/%d", issueID), payload)
}

func (c *Client) DeleteIssue(ctx context.Context, issueID int) error {
	return c.delete(ctx, fmt.Sprintf("/issues/%d", issueID))
}

// ListUsers lists users globally, optionally filtered by search term and
// project scope.
func (c *Client) ListUsers(ctx context.Context, search string, projectID *int) ([]Record, error) {
	params := url.Values{}
	if search != "" {
		params.Set("search", search)
	}
	if projectID != nil {
		params.Set("project", strconv.Itoa(*projectID))
	}
	return c.listRecords(ctx, "/users", params)
}

// ListProjectUsers lists the members of a project. Unlike the global user
// listing it works for service accounts without admin rights.
func (c *Client) ListProjectUsers(ctx context.Context, projectID int) ([]Record, error) {
	return c.listRecords(ctx, fmt.Sprintf("/projects/%d/users", projectID), nil)
}

// ListMilestones lists the milestones (sprints) of a project.
func (c *Client) ListMilestones(ctx context.Context, projectID int) ([]Record, error) {
	return c.listRecords(ctx, "/milestones", projectQuery(projectID))
}

func projectQuery(projectID int) url.Values {
	return url.Values{"project": {strconv.Itoa(projectID)}}
}
