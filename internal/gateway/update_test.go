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

func TestApplyUpdate_AllUnsetRejectedBeforeNetwork(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	fields := map[string]any{"subject": Unset, "status": Unset, "tags": Unset}
	_, err := ApplyUpdate(context.Background(), StoryOps(client), 17, fields, Unset)

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.EqualError(t, err, "at least one field must be provided to update the user story")
	assert.Equal(t, 0, calls)
}

func TestApplyUpdate_OnlyProvidedFieldsSubmitted(t *testing.T) {
	var patched taiga.Record
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			require.Equal(t, "/userstories/17", r.URL.Path)
			json.NewEncoder(w).Encode(taiga.Record{"id": 17, "project": 3, "version": 4, "subject": "old"})
		case r.Method == http.MethodPatch:
			require.Equal(t, "/userstories/17", r.URL.Path)
			json.NewDecoder(r.Body).Decode(&patched)
			json.NewEncoder(w).Encode(taiga.Record{"id": 17, "version": 5, "subject": "new"})
		default:
			t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
		}
	})

	fields := map[string]any{"subject": "new", "status": Unset, "tags": Unset, "description": Unset}
	got, err := ApplyUpdate(context.Background(), StoryOps(client), 17, fields, Unset)

	require.NoError(t, err)
	assert.Equal(t, taiga.Record{"subject": "new", "version": float64(4)}, patched)
	assert.Equal(t, "new", got["subject"])
}

func TestApplyUpdate_ExplicitNullSubmitted(t *testing.T) {
	var patched map[string]json.RawMessage
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			json.NewEncoder(w).Encode(taiga.Record{"id": 8, "project": 3, "version": 2})
			return
		}
		json.NewDecoder(r.Body).Decode(&patched)
		json.NewEncoder(w).Encode(taiga.Record{"id": 8, "version": 3})
	})

	fields := map[string]any{"assigned_to": nil, "subject": Unset}
	_, err := ApplyUpdate(context.Background(), TaskOps(client), 8, fields, Unset)

	require.NoError(t, err)
	raw, present := patched["assigned_to"]
	require.True(t, present, "explicit null must reach the remote payload")
	assert.Equal(t, "null", string(raw))
}

func TestApplyUpdate_ResolvesStatusNameViaFetchedProject(t *testing.T) {
	var patched taiga.Record
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tasks/12":
			if r.Method == http.MethodGet {
				json.NewEncoder(w).Encode(taiga.Record{"id": 12, "project": 3, "version": 1})
				return
			}
			json.NewDecoder(r.Body).Decode(&patched)
			json.NewEncoder(w).Encode(taiga.Record{"id": 12, "version": 2})
		case "/task-statuses":
			require.Equal(t, "3", r.URL.Query().Get("project"))
			json.NewEncoder(w).Encode([]taiga.Record{{"id": 21, "name": "Doing", "slug": "doing"}})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	fields := map[string]any{"status": "Doing"}
	_, err := ApplyUpdate(context.Background(), TaskOps(client), 12, fields, Unset)

	require.NoError(t, err)
	assert.Equal(t, float64(21), patched["status"])
}

func TestApplyUpdate_EpicStatusNotResolved(t *testing.T) {
	var patched taiga.Record
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			json.NewEncoder(w).Encode(taiga.Record{"id": 4, "project": 3, "version": 1})
			return
		}
		json.NewDecoder(r.Body).Decode(&patched)
		json.NewEncoder(w).Encode(taiga.Record{"id": 4, "version": 2})
	})

	// Epic statuses pass through untouched, even strings.
	fields := map[string]any{"status": "7"}
	_, err := ApplyUpdate(context.Background(), EpicOps(client), 4, fields, Unset)

	require.NoError(t, err)
	assert.Equal(t, "7", patched["status"])
}

func TestApplyUpdate_ExplicitVersionWins(t *testing.T) {
	var patched taiga.Record
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			json.NewEncoder(w).Encode(taiga.Record{"id": 17, "project": 3, "version": 9})
			return
		}
		json.NewDecoder(r.Body).Decode(&patched)
		json.NewEncoder(w).Encode(taiga.Record{"id": 17, "version": 10})
	})

	fields := map[string]any{"subject": "new"}
	_, err := ApplyUpdate(context.Background(), StoryOps(client), 17, fields, 4)

	require.NoError(t, err)
	assert.Equal(t, float64(4), patched["version"], "a caller-supplied version must not be overwritten by the fetched one")
}

func TestApplyUpdate_ConflictSurfacesLatestVersion(t *testing.T) {
	gets, patches := 0, 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			gets++
			version := 4
			if gets > 1 {
				version = 6
			}
			json.NewEncoder(w).Encode(taiga.Record{"id": 17, "project": 3, "version": version})
			return
		}
		patches++
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"version": "The version doesn't match with the current one"}`))
	})

	fields := map[string]any{"subject": "new"}
	_, err := ApplyUpdate(context.Background(), StoryOps(client), 17, fields, Unset)

	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
	assert.EqualError(t, err, "conflict updating user story 17: latest version is 6")
	assert.Equal(t, 1, patches, "no automatic retry on conflict")
	assert.Equal(t, 2, gets, "one pre-update fetch plus one post-conflict fetch")

	var conflict *errors.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, float64(6), conflict.LatestVersion)

	apiErr, ok := errors.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
}

func TestApplyUpdate_NonConflictErrorPropagates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			json.NewEncoder(w).Encode(taiga.Record{"id": 17, "project": 3, "version": 4})
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"subject": ["This field may not be blank."]}`))
	})

	fields := map[string]any{"subject": ""}
	_, err := ApplyUpdate(context.Background(), StoryOps(client), 17, fields, Unset)

	require.Error(t, err)
	assert.False(t, errors.IsConflict(err))
	apiErr, ok := errors.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestApplyUpdate_BadVersionType(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(taiga.Record{"id": 17, "project": 3, "version": 4})
	})

	fields := map[string]any{"subject": "new"}
	_, err := ApplyUpdate(context.Background(), StoryOps(client), 17, fields, "latest")

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.EqualError(t, err, "version must be an integer")
}
