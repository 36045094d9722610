// Package gateway implements the bridge's core mechanics: response field
// projection, the idempotency store, status name resolution, and the
// optimistic-concurrency update protocol shared by all mutable entities.
package gateway

import (
	"github.com/alphaomegateam/taiga-bridge/internal/taiga"
)

// Per-entity allow-lists applied to every outbound response so remote-only
// fields never leak to callers. Listing and detail shapes differ where the
// upstream API reports different fields.
var (
	ProjectFields = []string{"id", "name", "slug", "description", "is_private"}

	EpicSummaryFields = []string{"id", "ref", "subject", "created_date", "modified_date", "status"}
	EpicFields        = []string{
		"id", "ref", "subject", "project", "status", "description",
		"assigned_to", "tags", "color", "created_date", "modified_date",
	}

	StoryFields = []string{
		"id", "ref", "subject", "project", "status", "description",
		"assigned_to", "tags", "created_date", "modified_date",
	}
	StoryListFields = []string{
		"id", "ref", "subject", "description", "project", "epic", "epics",
		"tags", "status", "status_extra_info", "assigned_to",
		"created_date", "modified_date",
	}

	TaskFields = []string{
		"id", "ref", "subject", "project", "status", "description",
		"assigned_to", "tags", "user_story", "created_date", "modified_date",
	}
	TaskListFields = []string{
		"id", "ref", "subject", "project", "user_story", "status",
		"description", "assigned_to", "tags", "due_date",
		"created_date", "modified_date", "version",
	}

	IssueFields = []string{
		"id", "ref", "subject", "project", "status", "priority", "severity",
		"issue_type", "description", "assigned_to", "tags",
		"created_date", "modified_date",
	}

	StatusFields    = []string{"id", "name", "slug", "is_closed", "order"}
	UserFields      = []string{"id", "full_name", "username", "email"}
	MilestoneFields = []string{
		"id", "name", "slug", "estimated_start", "estimated_finish",
		"closed", "project",
	}
)

// Project reduces a record to the allowed fields that are present in it.
// Allowed fields missing from the record stay absent rather than being
// filled with null.
func Project(rec taiga.Record, fields []string) taiga.Record {
	out := make(taiga.Record, len(fields))
	for _, f := range fields {
		if v, ok := rec[f]; ok {
			out[f] = v
		}
	}
	return out
}

// ProjectAll projects every record in a slice. Always returns a non-nil
// slice so empty listings serialize as [] rather than null.
func ProjectAll(recs []taiga.Record, fields []string) []taiga.Record {
	out := make([]taiga.Record, 0, len(recs))
	for _, rec := range recs {
		out = append(out, Project(rec, fields))
	}
	return out
}

// cloneRecord makes a shallow copy, enough to keep cached idempotency
// values insulated from caller mutation of top-level keys.
func cloneRecord(rec taiga.Record) taiga.Record {
	out := make(taiga.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
