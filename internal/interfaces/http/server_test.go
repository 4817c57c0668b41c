package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketlens/nftdepth/internal/depth"
	"github.com/marketlens/nftdepth/internal/interfaces/http/handlers"
	"github.com/marketlens/nftdepth/internal/telemetry/metrics"
)

type stubDepthService struct {
	snap depth.Snapshot
	err  error
}

func (s *stubDepthService) MarketDepth(_ context.Context) (depth.Snapshot, error) {
	return s.snap, s.err
}

func newTestServer(svc handlers.DepthService) *Server {
	h := handlers.NewHandlers(svc, "boredapes", time.Second)
	return NewServer(DefaultServerConfig(), h, metrics.NewRegistry())
}

func TestServer_MarketDepthRoute(t *testing.T) {
	srv := newTestServer(&stubDepthService{snap: depth.Snapshot{TotalListingDepth: 4}})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/market-depth")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var snap depth.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, 4, snap.TotalListingDepth)
}

func TestServer_HealthRoute(t *testing.T) {
	srv := newTestServer(&stubDepthService{})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_MetricsRoute(t *testing.T) {
	srv := newTestServer(&stubDepthService{})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	// Drive one API request so HTTP metrics have samples.
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "nftdepth_http_requests_total")
}

func TestServer_UnknownRoute(t *testing.T) {
	srv := newTestServer(&stubDepthService{})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
