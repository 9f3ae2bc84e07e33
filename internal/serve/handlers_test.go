package serve

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdsite/internal/config"
	"git.home.luguber.info/inful/mdsite/internal/history"
	"git.home.luguber.info/inful/mdsite/internal/site"
)

// testServer builds a Server over temp dirs with an in-memory history store.
func testServer(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Content.Dir = filepath.Join(root, "content")
	cfg.Output.Dir = filepath.Join(root, "_site")
	require.NoError(t, os.MkdirAll(cfg.Content.Dir, 0o755))
	require.NoError(t, os.MkdirAll(cfg.Output.Dir, 0o755))

	s, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(s.close)
	return s
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestServer_HandleHealth_DegradedUntilFirstGoodBuild(t *testing.T) {
	s := testServer(t)
	h := s.handler()

	rec := get(t, h, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var health healthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&health))
	require.Equal(t, "degraded", health.Status)
	require.Empty(t, health.LastBuildID)
	require.NotEmpty(t, health.Version)

	report := site.NewBuildReport()
	report.Outcome = site.OutcomeSuccess
	report.Finish()
	s.status.record(report)

	rec = get(t, h, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&health))
	require.Equal(t, "ok", health.Status)
	require.Equal(t, report.BuildID, health.LastBuildID)
	require.Equal(t, "success", health.LastOutcome)
}

func TestServer_HandleBuilds_ReturnsRecentBuildsNewestFirst(t *testing.T) {
	s := testServer(t)
	h := s.handler()

	rec := get(t, h, "/api/builds")
	require.Equal(t, http.StatusOK, rec.Code)

	var builds []history.StoredBuild
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&builds))
	require.Empty(t, builds)

	for i := 1; i <= 3; i++ {
		report := site.NewBuildReport()
		report.Pages = i
		report.Outcome = site.OutcomeSuccess
		report.Finish()
		require.NoError(t, s.store.Append(t.Context(), report))
	}

	rec = get(t, h, "/api/builds?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&builds))
	require.Len(t, builds, 2)
	require.Equal(t, 3, builds[0].Pages)
	require.Equal(t, 2, builds[1].Pages)
	require.Equal(t, "success", builds[0].Outcome)
}

func TestServer_HandleBuilds_RejectsBadLimit(t *testing.T) {
	s := testServer(t)
	h := s.handler()

	for _, limit := range []string{"0", "-1", "abc", "500"} {
		rec := get(t, h, "/api/builds?limit="+limit)
		require.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", limit)
	}
}

func TestServer_Handler_InjectsReloadScriptIntoPages(t *testing.T) {
	s := testServer(t)
	writeDoc(t, filepath.Join(s.outputDir, "index.html"),
		"<html><body><p>hello</p></body></html>")
	h := s.handler()

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), reloadScriptTag)
	require.Contains(t, rec.Body.String(), "<p>hello</p>")

	rec = get(t, h, "/livereload.js")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "javascript")
	require.Contains(t, rec.Body.String(), "EventSource")
}

func TestServer_Handler_LiveReloadDisabledServesPlainPages(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.Content.Dir = filepath.Join(root, "content")
	cfg.Output.Dir = filepath.Join(root, "_site")
	cfg.Serve.LiveReload = false
	require.NoError(t, os.MkdirAll(cfg.Content.Dir, 0o755))

	s, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(s.close)
	writeDoc(t, filepath.Join(s.outputDir, "index.html"),
		"<html><body><p>hello</p></body></html>")

	rec := get(t, s.handler(), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), reloadScriptTag)

	rec = get(t, s.handler(), "/livereload.js")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Handler_ExposesMetrics(t *testing.T) {
	s := testServer(t)

	rec := get(t, s.handler(), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.True(t, strings.Contains(body, "go_goroutines"), "runtime collector missing")
	require.True(t, strings.Contains(body, "mdsite_pages_rendered_total"), "build metrics missing")
}
