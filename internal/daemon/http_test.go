package daemon

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/lesswatch/internal/metrics"
)

func TestHTTPServerServesMetricsAndHealth(t *testing.T) {
	reg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	rec.IncWatchEvent("modified")

	srv := NewHTTPServer("127.0.0.1:0", reg, func() HealthResponse {
		return HealthResponse{Status: "healthy", Profiles: []ProfileHealth{{Name: "site", Active: true}}}
	})
	require.NoError(t, srv.Start())
	t.Cleanup(func() { _ = srv.Shutdown(t.Context()) })
	base := "http://" + srv.Addr()

	resp, err := http.Get(base + "/metrics") //nolint:noctx // test
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "lesswatch_")

	resp, err = http.Get(base + "/healthz") //nolint:noctx // test
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)
	require.Len(t, health.Profiles, 1)
	assert.Equal(t, "site", health.Profiles[0].Name)
}

func TestHTTPServerBindFailure(t *testing.T) {
	first := NewHTTPServer("127.0.0.1:0", prom.NewRegistry(), func() HealthResponse { return HealthResponse{} })
	require.NoError(t, first.Start())
	t.Cleanup(func() { _ = first.Shutdown(t.Context()) })

	second := NewHTTPServer(first.Addr(), prom.NewRegistry(), func() HealthResponse { return HealthResponse{} })
	require.Error(t, second.Start())
}
