package gateway

import (
	"context"
	"net/http"

	"github.com/alphaomegateam/taiga-bridge/internal/errors"
	"github.com/alphaomegateam/taiga-bridge/internal/taiga"
)

// EntityOps binds the update orchestrator to one entity kind. ResolveStatus
// is nil for entities whose status field only accepts raw ids.
type EntityOps struct {
	Kind          string
	Get           func(ctx context.Context, id int) (taiga.Record, error)
	Submit        func(ctx context.Context, id int, payload taiga.Record) (taiga.Record, error)
	ResolveStatus func(ctx context.Context, projectID int, status any) (any, error)
}

// StoryOps returns update operations for user stories.
func StoryOps(client *taiga.Client) EntityOps {
	return EntityOps{
		Kind:   "user story",
		Get:    client.GetUserStory,
		Submit: client.UpdateUserStory,
		ResolveStatus: func(ctx context.Context, projectID int, status any) (any, error) {
			return ResolveStatus(ctx, client, UserStoryStatus, projectID, status)
		},
	}
}

// EpicOps returns update operations for epics. Epic statuses are not
// resolvable by name.
func EpicOps(client *taiga.Client) EntityOps {
	return EntityOps{
		Kind:   "epic",
		Get:    client.GetEpic,
		Submit: client.UpdateEpic,
	}
}

// TaskOps returns update operations for tasks.
func TaskOps(client *taiga.Client) EntityOps {
	return EntityOps{
		Kind:   "task",
		Get:    client.GetTask,
		Submit: client.UpdateTask,
		ResolveStatus: func(ctx context.Context, projectID int, status any) (any, error) {
			return ResolveStatus(ctx, client, TaskStatus, projectID, status)
		},
	}
}

// IssueOps returns update operations for issues. Issue status, priority,
// severity and type only accept raw ids.
func IssueOps(client *taiga.Client) EntityOps {
	return EntityOps{
		Kind:   "issue",
		Get:    client.GetIssue,
		Submit: client.UpdateIssue,
	}
}

// ApplyUpdate performs an optimistic-concurrency update. Fields holds
// candidate values keyed by remote field name, with Unset marking fields
// the caller did not provide; those are filtered out before anything else
// happens. The current entity is fetched to learn its version (and its
// project, when a status name needs resolving), the surviving fields are
// submitted alongside that version, and a remote 409 is translated into a
// ConflictError carrying the version observed by a follow-up read.
//
// An explicit non-Unset version in fields overrides the fetched one, which
// lets a caller deliberately race against a stale snapshot.
func ApplyUpdate(ctx context.Context, ops EntityOps, id int, fields map[string]any, version any) (taiga.Record, error) {
	provided := make(map[string]any, len(fields))
	for name, value := range fields {
		if IsUnset(value) {
			continue
		}
		provided[name] = value
	}
	if len(provided) == 0 {
		return nil, errors.NewValidation("at least one field must be provided to update the %s", ops.Kind)
	}

	existing, err := ops.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	payload := taiga.Record{}
	for name, value := range provided {
		if name == "status" && value != nil && ops.ResolveStatus != nil {
			projectID, ok := AsInt(existing["project"])
			if !ok {
				return nil, errors.NewAPIError("taiga", 0, "unable to resolve project for "+ops.Kind+" update")
			}
			resolved, err := ops.ResolveStatus(ctx, projectID, value)
			if err != nil {
				return nil, err
			}
			payload[name] = resolved
			continue
		}
		payload[name] = value
	}

	if IsUnset(version) || version == nil {
		current, ok := AsInt(existing["version"])
		if !ok {
			return nil, errors.NewAPIError("taiga", 0, "unable to resolve version for "+ops.Kind+" update")
		}
		payload["version"] = current
	} else {
		v, err := RequireInt(version, "version")
		if err != nil {
			return nil, err
		}
		payload["version"] = v
	}

	updated, err := ops.Submit(ctx, id, payload)
	if err != nil {
		if apiErr, ok := errors.AsAPIError(err); ok && apiErr.StatusCode == http.StatusConflict {
			latest, fetchErr := ops.Get(ctx, id)
			if fetchErr != nil {
				return nil, fetchErr
			}
			return nil, &errors.ConflictError{Entity: ops.Kind, ID: id, LatestVersion: latest["version"], Err: err}
		}
		return nil, err
	}
	return updated, nil
}
