package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_HandlerExposesCounters(t *testing.T) {
	m := New()
	m.RecordAction("create_task", "200")
	m.RecordToolCall("taiga.tasks.create", "ok")
	m.ObserveActionDuration("create_task", 0.042)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `bridge_actions_total{action="create_task",status="200"} 1`)
	assert.Contains(t, body, `bridge_tool_calls_total{status="ok",tool="taiga.tasks.create"} 1`)
	assert.Contains(t, body, "bridge_action_duration_seconds_bucket")
}

func TestMetrics_PrivateRegistries(t *testing.T) {
	// Two instances must not collide, so tests can build them freely.
	a := New()
	b := New()
	a.RecordAction("x", "200")
	assert.NotSame(t, a.registry, b.registry)
}
