package site

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/mdsite/internal/linkcheck"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
)

// stageCheckLinks verifies the generated tree's internal references. Broken
// links degrade the build to a warning; they never abort it, since the pages
// themselves were written successfully.
func stageCheckLinks(_ context.Context, bs *buildState) error {
	report, err := linkcheck.CheckDir(bs.outputDir)
	if err != nil {
		return err
	}

	slog.Info("Link check finished",
		logfields.Pages(report.Pages),
		logfields.Count(report.Checked),
		slog.Int("external", report.External),
		slog.Int("broken", len(report.Broken)),
	)

	for _, b := range report.Broken {
		bs.report.BrokenLinks = append(bs.report.BrokenLinks, BrokenLink{Page: b.Page, Ref: b.Ref})
		slog.Warn("Broken internal reference", logfields.File(b.Page), logfields.URL(b.Ref))
	}

	if !report.Ok() {
		return NewWarnStageError(StageCheckLinks, fmt.Errorf("%d broken internal references", len(report.Broken)))
	}
	return nil
}
