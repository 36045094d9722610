package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/alphaomegateam/taiga-bridge/internal/taiga"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *taiga.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := taiga.NewClient(server.URL, "bridge", "secret", zerolog.Nop())
	client.SetHTTPClient(server.Client())
	return client
}
