package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/mdsite/internal/logfields"
	"git.home.luguber.info/inful/mdsite/internal/page"
)

// stageRenderPages assembles every discovered document and writes it to the
// mirrored output path with the .md extension replaced by .html.
//
// Failure policy: the first failing document aborts the stage unless
// keep_going is set, in which case failures are recorded and the stage ends
// with a warning. A template failure aborts regardless, since every
// remaining page would fail the same way.
func stageRenderPages(ctx context.Context, bs *buildState) error {
	for _, doc := range bs.docs {
		select {
		case <-ctx.Done():
			return NewCanceledStageError(StageRenderPages, ctx.Err())
		default:
		}

		if err := renderDoc(bs, doc); err != nil {
			if errors.Is(err, page.ErrTemplate) {
				return NewFatalStageError(StageRenderPages, err)
			}
			if !bs.cfg.Build.KeepGoing {
				return NewFatalStageError(StageRenderPages, err)
			}
			bs.report.Failures = append(bs.report.Failures, PageFailure{Path: doc.RelPath, Error: err.Error()})
			slog.Error("Failed to render page", logfields.File(doc.RelPath), logfields.Error(err))
			continue
		}
		bs.report.Pages++
	}

	if n := len(bs.report.Failures); n > 0 {
		return NewWarnStageError(StageRenderPages, fmt.Errorf("%d of %d documents failed", n, len(bs.docs)))
	}
	return nil
}

func renderDoc(bs *buildState, doc DocFile) error {
	raw, err := os.ReadFile(doc.Path)
	if err != nil {
		return fmt.Errorf("read markdown file %s: %w", doc.Path, err)
	}

	html, err := bs.assembler.Assemble(string(raw))
	if err != nil {
		if errors.Is(err, page.ErrTemplate) {
			return err
		}
		return fmt.Errorf("failed to process markdown file %s: %w", doc.Path, err)
	}

	outPath := filepath.Join(bs.outputDir, outputRelPath(doc.RelPath))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output directory for %s: %w", doc.RelPath, err)
	}
	if err := os.WriteFile(outPath, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write page %s: %w", outPath, err)
	}
	return nil
}

// outputRelPath mirrors a source path into the output tree.
func outputRelPath(rel string) string {
	return strings.TrimSuffix(rel, ".md") + ".html"
}
