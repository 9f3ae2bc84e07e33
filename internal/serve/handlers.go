package serve

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"git.home.luguber.info/inful/mdsite/internal/history"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
	"git.home.luguber.info/inful/mdsite/internal/metrics"
	"git.home.luguber.info/inful/mdsite/internal/version"
)

const defaultHistoryLimit = 20

// handler assembles the preview mux: the generated site at the root, plus
// health, metrics, build history, and the live reload endpoints.
func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()

	files := http.FileServer(http.Dir(s.outputDir))
	if s.hub != nil {
		mux.Handle("/", injectReloadScript(files))
		mux.Handle("/livereload", s.hub)
		mux.HandleFunc("/livereload.js", handleReloadScript)
	} else {
		mux.Handle("/", files)
	}

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", metrics.HTTPHandler(s.registry))
	mux.HandleFunc("/api/builds", s.handleBuilds)

	return mux
}

func handleReloadScript(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	if _, err := w.Write([]byte(reloadScript)); err != nil {
		slog.Error("Failed to write reload script", logfields.Error(err))
	}
}

// healthResponse is the /healthz payload.
type healthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Uptime      string    `json:"uptime"`
	Version     string    `json:"version"`
	LastBuildID string    `json:"last_build_id,omitempty"`
	LastOutcome string    `json:"last_outcome,omitempty"`
}

// handleHealth reports liveness. "degraded" means no build has produced a
// servable tree yet; the server itself is up either way.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	snap := s.status.snapshot()

	status := "ok"
	if !snap.goodBuild {
		status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(healthResponse{
		Status:      status,
		Timestamp:   time.Now(),
		Uptime:      time.Since(s.startTime).Truncate(time.Second).String(),
		Version:     version.Version,
		LastBuildID: snap.buildID,
		LastOutcome: snap.outcome,
	})
}

// handleBuilds serves recent build history as JSON, newest first.
func (s *Server) handleBuilds(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "build history disabled", http.StatusNotFound)
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			http.Error(w, "limit must be an integer between 1 and 200", http.StatusBadRequest)
			return
		}
		limit = n
	}

	builds, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to read build history", logfields.Error(err))
		http.Error(w, "failed to read build history", http.StatusInternalServerError)
		return
	}
	if builds == nil {
		builds = []history.StoredBuild{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(builds)
}
