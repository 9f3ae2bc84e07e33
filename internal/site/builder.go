// Package site builds a static site from a directory of Markdown content.
package site

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/mdsite/internal/config"
	siterrors "git.home.luguber.info/inful/mdsite/internal/errors"
	"git.home.luguber.info/inful/mdsite/internal/fetch"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
	"git.home.luguber.info/inful/mdsite/internal/markdown"
	"git.home.luguber.info/inful/mdsite/internal/metrics"
	"git.home.luguber.info/inful/mdsite/internal/page"
)

// Builder runs complete site builds. It carries no per-build state, so a
// single Builder can serve repeated builds (the preview server relies on
// this).
type Builder struct {
	cfg      *config.Config
	recorder metrics.Recorder
}

// NewBuilder creates a Builder. A nil recorder disables metrics.
func NewBuilder(cfg *config.Config, recorder metrics.Recorder) *Builder {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Builder{cfg: cfg, recorder: recorder}
}

// buildState is the mutable state threaded through one build's stages.
type buildState struct {
	cfg      *config.Config
	recorder metrics.Recorder
	report   *BuildReport

	contentDir string // resolved content root (local dir or inside a checkout)
	cloneDir   string // temp checkout root, removed after the build
	outputDir  string

	renderer  *markdown.Renderer
	chrome    page.Chrome
	assembler *page.Assembler
	docs      []DocFile
}

// Build runs all stages and returns the report. The returned error is the
// first fatal problem; the report is always populated, also on failure.
func (b *Builder) Build(ctx context.Context) (*BuildReport, error) {
	report := NewBuildReport()
	bs := &buildState{cfg: b.cfg, recorder: b.recorder, report: report}

	slog.Info("Build starting", logfields.BuildID(report.BuildID))

	stages := []StageDef{
		{Name: StageFetchContent, Fn: stageFetchContent},
		{Name: StagePrepareOutput, Fn: stagePrepareOutput},
		{Name: StageLoadChrome, Fn: stageLoadChrome},
		{Name: StageDiscover, Fn: stageDiscover},
		{Name: StageRenderPages, Fn: stageRenderPages},
		{Name: StageCopyAssets, Fn: stageCopyAssets},
	}
	if b.cfg.Build.GenerateIndexes {
		stages = append(stages, StageDef{Name: StageIndexes, Fn: stageIndexes})
	}
	if b.cfg.Build.CheckLinks {
		stages = append(stages, StageDef{Name: StageCheckLinks, Fn: stageCheckLinks})
	}

	err := runStages(ctx, bs, stages)

	if bs.cloneDir != "" {
		if rmErr := os.RemoveAll(bs.cloneDir); rmErr != nil {
			slog.Warn("Failed to remove checkout workspace", logfields.Path(bs.cloneDir), logfields.Error(rmErr))
		}
	}

	report.Finish()
	report.DeriveOutcome()

	b.recorder.ObserveBuildDuration(report.Duration())
	b.recorder.IncBuildOutcome(string(report.Outcome))
	b.recorder.AddPagesRendered(report.Pages)
	b.recorder.AddAssetsCopied(report.Assets)

	slog.Info("Build finished",
		logfields.BuildID(report.BuildID),
		logfields.Outcome(string(report.Outcome)),
		logfields.Pages(report.Pages),
		logfields.Assets(report.Assets),
		logfields.DurationMS(float64(report.Duration().Milliseconds())),
	)

	return report, err
}

// stageFetchContent resolves the content root, cloning the configured
// repository when one is set.
func stageFetchContent(ctx context.Context, bs *buildState) error {
	dir := config.ExpandPath(bs.cfg.Content.Dir)

	if repo := bs.cfg.Content.Repository; repo != "" {
		cloneDir, err := fetch.Clone(ctx, fetch.Options{
			URL:    repo,
			Branch: bs.cfg.Content.Branch,
		})
		if err != nil {
			return err
		}
		bs.cloneDir = cloneDir
		// Inside a checkout the content dir is a repo-relative path.
		dir = filepath.Join(cloneDir, bs.cfg.Content.Dir)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return siterrors.ContentDirInvalid(dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return siterrors.ContentDirInvalid(abs, err)
	}
	if !info.IsDir() {
		return siterrors.ContentDirInvalid(abs, os.ErrInvalid)
	}

	bs.contentDir = abs
	return nil
}

// stagePrepareOutput wipes and recreates the output directory.
func stagePrepareOutput(_ context.Context, bs *buildState) error {
	out, err := filepath.Abs(config.ExpandPath(bs.cfg.Output.Dir))
	if err != nil {
		return err
	}

	if _, statErr := os.Stat(out); statErr == nil {
		if err := os.RemoveAll(out); err != nil {
			return siterrors.Wrap(err, siterrors.CategoryFileSystem, siterrors.SeverityFatal, "failed to clean output directory").
				WithContext("path", out)
		}
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return siterrors.Wrap(err, siterrors.CategoryFileSystem, siterrors.SeverityFatal, "failed to create output directory").
			WithContext("path", out)
	}

	bs.outputDir = out
	return nil
}
