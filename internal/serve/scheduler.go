package serve

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	siterrors "git.home.luguber.info/inful/mdsite/internal/errors"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
)

// rebuildScheduler triggers full rebuilds on a fixed interval. It covers
// content on network mounts where filesystem notifications are unreliable.
type rebuildScheduler struct {
	scheduler gocron.Scheduler
}

// newRebuildScheduler creates a scheduler that requests a rebuild every
// interval. The scheduler is created stopped; call start to begin.
func newRebuildScheduler(interval time.Duration, request func()) (*rebuildScheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, siterrors.Wrap(err, siterrors.CategoryServe, siterrors.SeverityFatal, "failed to create rebuild scheduler")
	}

	if _, err := s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			slog.Info("Scheduled rebuild triggered", slog.Duration("interval", interval))
			request()
		}),
		gocron.WithName("scheduled-rebuild"),
	); err != nil {
		_ = s.Shutdown()
		return nil, siterrors.Wrap(err, siterrors.CategoryServe, siterrors.SeverityFatal, "failed to schedule periodic rebuild")
	}

	return &rebuildScheduler{scheduler: s}, nil
}

func (rs *rebuildScheduler) start() {
	slog.Info("Starting rebuild scheduler")
	rs.scheduler.Start()
}

func (rs *rebuildScheduler) stop() {
	if err := rs.scheduler.Shutdown(); err != nil {
		slog.Warn("Rebuild scheduler shutdown error", logfields.Error(err))
	}
}
