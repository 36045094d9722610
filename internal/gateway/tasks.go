package gateway

import (
	"context"

	"github.com/alphaomegateam/taiga-bridge/internal/errors"
	"github.com/alphaomegateam/taiga-bridge/internal/taiga"
)

// CreateTaskParams carries the inputs for an idempotent task creation.
// Description, AssignedTo, Status, Tags and DueDate are tri-state: Unset
// means omitted, nil means explicit null.
type CreateTaskParams struct {
	UserStoryID    int
	Subject        string
	Description    any
	AssignedTo     any
	Status         any
	Tags           any
	DueDate        any
	IdempotencyKey string
}

// CreateTask creates a task under a user story, replaying a cached result
// when the caller supplies an idempotency key already seen for the same
// token. The cache is consulted before any remote call, so a hit costs
// nothing: not even the story lookup that learns the project.
func CreateTask(ctx context.Context, client *taiga.Client, store *IdempotencyStore, p CreateTaskParams) (taiga.Record, error) {
	var cacheKey string
	if p.IdempotencyKey != "" && store != nil {
		cacheKey = CacheKey(p.IdempotencyKey, p.UserStoryID, p.Subject)
		if cached, ok := store.Get(cacheKey); ok {
			return cached, nil
		}
	}

	story, err := client.GetUserStory(ctx, p.UserStoryID)
	if err != nil {
		return nil, err
	}
	projectID, ok := AsInt(story["project"])
	if !ok {
		return nil, errors.NewAPIError("taiga", 0, "unable to resolve project for task creation")
	}

	payload := taiga.Record{
		"project":    projectID,
		"user_story": p.UserStoryID,
		"subject":    p.Subject,
	}
	if !IsUnset(p.Description) {
		payload["description"] = p.Description
	}
	if !IsUnset(p.AssignedTo) {
		payload["assigned_to"] = p.AssignedTo
	}
	if !IsUnset(p.Tags) {
		tags := p.Tags
		if tags == nil {
			tags = []any{}
		}
		payload["tags"] = tags
	}
	if !IsUnset(p.DueDate) {
		due, err := ValidateDueDate(p.DueDate)
		if err != nil {
			return nil, err
		}
		payload["due_date"] = due
	}
	if !IsUnset(p.Status) {
		if p.Status == nil {
			payload["status"] = nil
		} else {
			resolved, err := ResolveStatus(ctx, client, TaskStatus, projectID, p.Status)
			if err != nil {
				return nil, err
			}
			payload["status"] = resolved
		}
	}

	created, err := client.CreateTask(ctx, payload)
	if err != nil {
		return nil, err
	}
	if cacheKey != "" {
		store.Store(cacheKey, created)
	}
	return created, nil
}
