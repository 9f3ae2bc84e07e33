// Package serve runs the local preview server: an initial build, a file
// server over the output, and automatic rebuilds on content changes.
package serve

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/mdsite/internal/config"
	siterrors "git.home.luguber.info/inful/mdsite/internal/errors"
	"git.home.luguber.info/inful/mdsite/internal/events"
	"git.home.luguber.info/inful/mdsite/internal/history"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
	"git.home.luguber.info/inful/mdsite/internal/metrics"
	"git.home.luguber.info/inful/mdsite/internal/site"
)

// Server is the preview server. It owns the builder, the reload hub, the
// build history store, and the optional event publisher.
type Server struct {
	cfg       *config.Config
	builder   *site.Builder
	registry  *prom.Registry
	hub       *ReloadHub // nil when live reload is disabled
	store     *history.Store
	publisher *events.Publisher // nil when event publishing is disabled
	prints    *fingerprintIndex

	contentDir string
	outputDir  string
	startTime  time.Time
	status     buildStatus
}

// buildStatus is the last-build snapshot reported by /healthz.
type buildStatus struct {
	mu        sync.RWMutex
	buildID   string
	outcome   string
	goodBuild bool // at least one build produced a servable tree
}

func (b *buildStatus) record(report *site.BuildReport) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buildID = report.BuildID
	b.outcome = string(report.Outcome)
	if report.Outcome == site.OutcomeSuccess || report.Outcome == site.OutcomeWarning {
		b.goodBuild = true
	}
}

type statusSnapshot struct {
	buildID   string
	outcome   string
	goodBuild bool
}

func (b *buildStatus) snapshot() statusSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return statusSnapshot{buildID: b.buildID, outcome: b.outcome, goodBuild: b.goodBuild}
}

// New assembles a Server from configuration. The returned server owns its
// history store and event publisher; Run releases them on shutdown.
func New(cfg *config.Config) (*Server, error) {
	contentDir, err := filepath.Abs(config.ExpandPath(cfg.Content.Dir))
	if err != nil {
		return nil, siterrors.ContentDirInvalid(cfg.Content.Dir, err)
	}
	outputDir, err := filepath.Abs(config.ExpandPath(cfg.Output.Dir))
	if err != nil {
		return nil, siterrors.Wrap(err, siterrors.CategoryServe, siterrors.SeverityFatal, "failed to resolve output directory").
			WithContext("path", cfg.Output.Dir)
	}

	registry := prom.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheusRecorder(registry)

	s := &Server{
		cfg:        cfg,
		builder:    site.NewBuilder(cfg, recorder),
		registry:   registry,
		prints:     newFingerprintIndex(),
		contentDir: contentDir,
		outputDir:  outputDir,
		startTime:  time.Now(),
	}
	if cfg.Serve.LiveReload {
		s.hub = NewReloadHub()
	}

	store, err := history.Open(config.ExpandPath(cfg.Serve.HistoryDB))
	if err != nil {
		return nil, err
	}
	s.store = store

	if cfg.Events.URL != "" {
		pub, err := events.Connect(cfg.Events.URL, cfg.Events.Subject)
		if err != nil {
			slog.Warn("Build event publishing disabled", logfields.URL(cfg.Events.URL), logfields.Error(err))
		} else {
			s.publisher = pub
		}
	}

	return s, nil
}

// Run builds once, then serves and rebuilds until the context ends.
func (s *Server) Run(ctx context.Context) error {
	defer s.close()

	local := s.cfg.Content.Repository == ""
	if local {
		info, err := os.Stat(s.contentDir)
		if err != nil || !info.IsDir() {
			return siterrors.ContentDirInvalid(s.contentDir, err)
		}
		s.prints.Prime(s.contentDir)
	}

	s.runBuild(ctx)

	rebuildReq := make(chan struct{}, 1)
	request := func() {
		select {
		case rebuildReq <- struct{}{}:
		default:
		}
	}
	go s.rebuildWorker(ctx, rebuildReq)

	if local {
		w, err := newWatcher(s.contentDir, s.prints, request)
		if err != nil {
			return err
		}
		go w.run(ctx)
	} else {
		slog.Info("Content comes from a repository; filesystem watching disabled",
			logfields.Repository(s.cfg.Content.Repository))
	}

	interval, err := s.cfg.Serve.RebuildEvery()
	if err != nil {
		return err
	}
	if interval > 0 {
		sched, err := newRebuildScheduler(interval, request)
		if err != nil {
			return err
		}
		sched.start()
		defer sched.stop()
	} else if !local {
		slog.Warn("Repository content with no serve.rebuild_interval; the preview only rebuilds on restart")
	}

	ln, err := net.Listen("tcp", s.cfg.Serve.Addr)
	if err != nil {
		return siterrors.Wrap(err, siterrors.CategoryServe, siterrors.SeverityFatal, "failed to bind preview address").
			WithContext("addr", s.cfg.Serve.Addr)
	}

	// No write timeout: the reload stream holds its response open.
	srv := &http.Server{
		Handler:           s.handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       300 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if serveErr := srv.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	slog.Info("Preview server listening",
		logfields.Addr(ln.Addr().String()), logfields.Output(s.outputDir))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Preview server shutdown error", logfields.Error(err))
		}
		return nil
	case err := <-errCh:
		return siterrors.Wrap(err, siterrors.CategoryServe, siterrors.SeverityFatal, "preview server failed")
	}
}

func (s *Server) close() {
	if s.hub != nil {
		s.hub.Shutdown()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			slog.Warn("Failed to close build history", logfields.Error(err))
		}
	}
	s.publisher.Close()
}

// rebuildWorker serializes rebuild requests: at most one build runs at a
// time, and requests arriving mid-build coalesce into one follow-up build.
func (s *Server) rebuildWorker(ctx context.Context, rebuildReq <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-rebuildReq:
			slog.Info("Rebuilding site")
			s.runBuild(ctx)
		}
	}
}

// runBuild executes one full build and distributes its report: history,
// events, reload broadcast, health snapshot.
func (s *Server) runBuild(ctx context.Context) {
	report, err := s.builder.Build(ctx)
	if err != nil {
		slog.Error("Rebuild failed", logfields.BuildID(report.BuildID), logfields.Error(err))
	}

	s.status.record(report)

	if s.store != nil {
		if err := s.store.Append(ctx, report); err != nil {
			slog.Warn("Failed to record build history", logfields.BuildID(report.BuildID), logfields.Error(err))
		}
	}
	s.publisher.Publish(report)

	// Failed builds broadcast too, so open browsers show the breakage
	// instead of a stale page.
	if s.hub != nil {
		s.hub.Broadcast(report.BuildID)
	}
}
