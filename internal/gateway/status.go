package gateway

import (
	"context"

	"github.com/alphaomegateam/taiga-bridge/internal/errors"
	"github.com/alphaomegateam/taiga-bridge/internal/taiga"
)

// StatusKind selects which status enumeration a name is resolved against.
// Issue status/priority/severity/type are not resolvable by name; those
// fields only accept raw ids.
type StatusKind int

const (
	UserStoryStatus StatusKind = iota
	TaskStatus
)

func (k StatusKind) label() string {
	if k == TaskStatus {
		return "task status"
	}
	return "status"
}

// ResolveStatus maps a status value to a numeric status id scoped to a
// project. nil passes through (caller wants to skip or clear the status),
// integers pass through unchanged without a network call, and strings are
// matched case-sensitively against the project's status enumeration by
// name or slug, in listing order, first match wins. The enumeration is
// re-fetched on every call rather than cached; statuses rarely change but
// can, and correctness wins over latency here.
func ResolveStatus(ctx context.Context, client *taiga.Client, kind StatusKind, projectID int, status any) (any, error) {
	if status == nil {
		return nil, nil
	}
	if id, ok := AsInt(status); ok {
		return id, nil
	}

	name, ok := status.(string)
	if !ok {
		return nil, errors.NewValidation("status must be an integer or string")
	}

	var (
		entries []taiga.Record
		err     error
	)
	if kind == TaskStatus {
		entries, err = client.ListTaskStatuses(ctx, projectID)
	} else {
		entries, err = client.ListUserStoryStatuses(ctx, projectID)
	}
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry["name"] == name || entry["slug"] == name {
			if id, ok := AsInt(entry["id"]); ok {
				return id, nil
			}
		}
	}
	return nil, errors.NewNotFound("%s '%s' not found for project %d", kind.label(), name, projectID)
}
