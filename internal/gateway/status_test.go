package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphaomegateam/taiga-bridge/internal/errors"
	"github.com/alphaomegateam/taiga-bridge/internal/taiga"
)

func TestResolveStatus_IntPassthrough(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	got, err := ResolveStatus(context.Background(), client, TaskStatus, 3, 21)
	require.NoError(t, err)
	assert.Equal(t, 21, got)

	got, err = ResolveStatus(context.Background(), client, UserStoryStatus, 3, float64(14))
	require.NoError(t, err)
	assert.Equal(t, 14, got)

	assert.Equal(t, 0, calls, "numeric statuses must not hit the remote API")
}

func TestResolveStatus_Nil(t *testing.T) {
	got, err := ResolveStatus(context.Background(), nil, TaskStatus, 3, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResolveStatus_ByNameAndSlug(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/task-statuses", r.URL.Path)
		require.Equal(t, "3", r.URL.Query().Get("project"))
		json.NewEncoder(w).Encode([]taiga.Record{
			{"id": 20, "name": "New", "slug": "new"},
			{"id": 21, "name": "Doing", "slug": "in-progress"},
			{"id": 22, "name": "Doing", "slug": "doing-again"},
		})
	})

	got, err := ResolveStatus(context.Background(), client, TaskStatus, 3, "Doing")
	require.NoError(t, err)
	assert.Equal(t, 21, got, "first match in listing order wins")

	got, err = ResolveStatus(context.Background(), client, TaskStatus, 3, "in-progress")
	require.NoError(t, err)
	assert.Equal(t, 21, got)
}

func TestResolveStatus_CaseSensitive(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]taiga.Record{
			{"id": 14, "name": "Ready", "slug": "ready"},
		})
	})

	_, err := ResolveStatus(context.Background(), client, UserStoryStatus, 9, "READY")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.EqualError(t, err, "status 'READY' not found for project 9")
}

func TestResolveStatus_TaskNotFoundMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]taiga.Record{})
	})

	_, err := ResolveStatus(context.Background(), client, TaskStatus, 3, "Blocked")
	require.Error(t, err)
	assert.EqualError(t, err, "task status 'Blocked' not found for project 3")
}

func TestResolveStatus_UserStoryEndpoint(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/userstory-statuses", r.URL.Path)
		json.NewEncoder(w).Encode([]taiga.Record{
			{"id": 5, "name": "Done", "slug": "done"},
		})
	})

	got, err := ResolveStatus(context.Background(), client, UserStoryStatus, 3, "Done")
	require.NoError(t, err)
	assert.Equal(t, 5, got)
}

func TestResolveStatus_InvalidType(t *testing.T) {
	_, err := ResolveStatus(context.Background(), nil, TaskStatus, 3, []any{"Doing"})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.EqualError(t, err, "status must be an integer or string")
}
