package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alphaomegateam/taiga-bridge/internal/taiga"
)

func TestProject_DropsUnlistedFields(t *testing.T) {
	rec := taiga.Record{
		"id":                3,
		"name":              "Mirror",
		"slug":              "mirror",
		"description":       "reflective surfaces",
		"is_private":        true,
		"total_memberships": 12,
		"owner":             taiga.Record{"id": 1},
	}

	got := Project(rec, ProjectFields)

	assert.Equal(t, taiga.Record{
		"id":          3,
		"name":        "Mirror",
		"slug":        "mirror",
		"description": "reflective surfaces",
		"is_private":  true,
	}, got)
}

func TestProject_AbsentFieldsStayAbsent(t *testing.T) {
	rec := taiga.Record{"id": 9, "subject": "Polish the glass"}

	got := Project(rec, TaskFields)

	assert.Equal(t, taiga.Record{"id": 9, "subject": "Polish the glass"}, got)
	_, present := got["status"]
	assert.False(t, present, "missing fields must not be materialized as null")
}

func TestProject_KeepsExplicitNulls(t *testing.T) {
	rec := taiga.Record{"id": 9, "subject": "Polish the glass", "assigned_to": nil}

	got := Project(rec, TaskFields)

	v, present := got["assigned_to"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestProjectAll_EmptyIsNonNil(t *testing.T) {
	got := ProjectAll(nil, StoryFields)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestProjectAll(t *testing.T) {
	recs := []taiga.Record{
		{"id": 1, "name": "alpha", "owner": "x"},
		{"id": 2, "name": "beta", "owner": "y"},
	}

	got := ProjectAll(recs, ProjectFields)

	assert.Equal(t, []taiga.Record{
		{"id": 1, "name": "alpha"},
		{"id": 2, "name": "beta"},
	}, got)
}
