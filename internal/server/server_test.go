package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortsradar/internal/config"
	"shortsradar/internal/domain/trend"
	"shortsradar/internal/logger"
	"shortsradar/internal/metrics"
)

type stubRanker struct {
	rows []trend.ScoredResult
	err  error
}

func (s stubRanker) Rank(context.Context, trend.SearchCriteria) ([]trend.ScoredResult, error) {
	return s.rows, s.err
}

func newTestServer(t *testing.T, ranker trend.Ranker) *httptest.Server {
	t.Helper()
	cfg := config.ServerConfig{
		Host:         "127.0.0.1",
		Port:         0,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		CorsOrigins:  []string{"*"},
	}
	s := NewServer(cfg, ranker, metrics.NewCollector(), logger.NewNop())
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, stubRanker{})

	resp, body := get(t, srv.URL+"/api/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body)
}

func TestServer_IndexPage(t *testing.T) {
	srv := newTestServer(t, stubRanker{})

	for _, path := range []string{"/", "/trends"} {
		resp, body := get(t, srv.URL+path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html", path)
		assert.Contains(t, body, "<html", path)
	}
}

func TestServer_RankTrends(t *testing.T) {
	srv := newTestServer(t, stubRanker{rows: []trend.ScoredResult{{Title: "t", FinalScore: 1.5}}})

	resp, err := http.Post(srv.URL+"/api/trends", "application/json", strings.NewReader(`{"query":"먹방"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"final_score":1.5`)
}

func TestServer_RankTrendsRejectsGet(t *testing.T) {
	srv := newTestServer(t, stubRanker{})

	resp, _ := get(t, srv.URL+"/api/trends")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServer_MetricsRecordsRoutes(t *testing.T) {
	srv := newTestServer(t, stubRanker{})

	get(t, srv.URL+"/api/health")

	resp, body := get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "shortsradar_http_request_duration_seconds")
	assert.Contains(t, body, `route="/api/health"`)
}

func TestServer_CORSPreflight(t *testing.T) {
	srv := newTestServer(t, stubRanker{})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/trends", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://radar.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestServer_Addr(t *testing.T) {
	s := NewServer(config.ServerConfig{Host: "0.0.0.0", Port: 5000}, stubRanker{}, metrics.NewCollector(), logger.NewNop())
	assert.Equal(t, "0.0.0.0:5000", s.Addr())
}
