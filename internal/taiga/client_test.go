package taiga

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/alphaomegateam/taiga-bridge/internal/errors"
)

func setupTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(server.URL, "bridge", "secret", zerolog.Nop())
	client.SetHTTPClient(server.Client())
	return client
}

func TestClient_Authenticate(t *testing.T) {
	var sawPayload Record
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		json.NewDecoder(r.Body).Decode(&sawPayload)
		json.NewEncoder(w).Encode(Record{"auth_token": "tok-123", "id": 42})
	})

	require.NoError(t, client.Authenticate(context.Background()))
	assert.Equal(t, "normal", sawPayload["type"])
	assert.Equal(t, "bridge", sawPayload["username"])

	// The login response carried the user id, so no extra request is needed.
	id, err := client.CurrentUserID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	// Re-authenticating is a no-op.
	require.NoError(t, client.Authenticate(context.Background()))
}

func TestClient_Authenticate_Failure(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "invalid credentials"}`))
	})

	err := client.Authenticate(context.Background())
	require.Error(t, err)
	apiErr, ok := apierrors.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "invalid credentials")
}

func TestClient_CurrentUserID_ViaMe(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/me", r.URL.Path)
		json.NewEncoder(w).Encode(Record{"id": 7, "username": "bridge"})
	})

	id, err := client.CurrentUserID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, id)
}

func TestClient_BearerToken(t *testing.T) {
	calls := 0
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path == "/auth" {
			json.NewEncoder(w).Encode(Record{"auth_token": "tok-abc", "id": 1})
			return
		}
		assert.Equal(t, "Bearer tok-abc", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]Record{})
	})

	require.NoError(t, client.Authenticate(context.Background()))
	_, err := client.ListEpics(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestClient_GetUserStory(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/userstories/12", r.URL.Path)
		json.NewEncoder(w).Encode(Record{"id": 12, "subject": "Stand up mirror", "version": 3})
	})

	story, err := client.GetUserStory(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, "Stand up mirror", story["subject"])
	assert.Equal(t, float64(3), story["version"])
}

func TestClient_ListUserStories_Filters(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "3", q.Get("project"))
		assert.Equal(t, "9", q.Get("epic"))
		assert.Equal(t, "mirror", q.Get("q"))
		assert.Equal(t, []string{"ux", "backend"}, q["tags"])
		json.NewEncoder(w).Encode([]Record{{"id": 1}})
	})

	epic := 9
	stories, err := client.ListUserStories(context.Background(), 3, StoryFilter{
		Epic:  &epic,
		Query: "mirror",
		Tags:  []string{"ux", "backend"},
	})
	require.NoError(t, err)
	assert.Len(t, stories, 1)
}

func TestClient_ListTasks_Pagination(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tasks", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("user_story"))
		w.Header().Set("x-pagination-page", "1")
		w.Header().Set("x-pagination-total", "27")
		json.NewEncoder(w).Encode([]Record{{"id": 100}, {"id": 101}})
	})

	story := 5
	tasks, pagination, err := client.ListTasks(context.Background(), TaskFilter{UserStory: &story})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	assert.Equal(t, 1, pagination["page"])
	assert.Equal(t, 27, pagination["total"])
}

func TestClient_UpdateTask_Conflict(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"version": "The version doesn't match with the current one"}`))
	})

	_, err := client.UpdateTask(context.Background(), 7, Record{"subject": "Revised", "version": 1})
	require.Error(t, err)
	apiErr, ok := apierrors.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.NotNil(t, apiErr.Payload)
}

func TestClient_DeleteEpic(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/epics/4", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteEpic(context.Background(), 4))
}

func TestClient_LinkEpicUserStory(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/epics/4/related_userstories", r.URL.Path)
		var payload Record
		json.NewDecoder(r.Body).Decode(&payload)
		assert.Equal(t, float64(4), payload["epic"])
		assert.Equal(t, float64(12), payload["user_story"])
		json.NewEncoder(w).Encode(Record{"epic": 4, "user_story": 12})
	})

	link, err := client.LinkEpicUserStory(context.Background(), 4, 12)
	require.NoError(t, err)
	assert.Equal(t, float64(12), link["user_story"])
}

func TestExtractPagination_IgnoresBadValues(t *testing.T) {
	h := http.Header{}
	h.Set("x-pagination-page", "2")
	h.Set("x-pagination-total", "not-a-number")
	p := extractPagination(h)
	assert.Equal(t, Pagination{"page": 2}, p)
}
