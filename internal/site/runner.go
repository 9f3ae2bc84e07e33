package site

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/mdsite/internal/logfields"
)

// runStages executes stages in order, recording timing and stopping on the
// first fatal error. Warning-kind stage errors are recorded and the run
// continues.
func runStages(ctx context.Context, bs *buildState, stages []StageDef) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := NewCanceledStageError(st.Name, ctx.Err())
			bs.report.Errors = append(bs.report.Errors, se)
			bs.report.RecordStageResult(st.Name, StageResultCanceled, bs.recorder)
			return se
		default:
		}

		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)

		bs.report.StageDurations[string(st.Name)] = dur
		if bs.recorder != nil {
			bs.recorder.ObserveStageDuration(string(st.Name), dur)
		}
		slog.Debug("Stage finished", logfields.Stage(string(st.Name)), logfields.DurationMS(float64(dur.Milliseconds())))

		if err == nil {
			bs.report.RecordStageResult(st.Name, StageResultSuccess, bs.recorder)
			continue
		}

		var se *StageError
		if !errors.As(err, &se) {
			se = NewFatalStageError(st.Name, err)
		}

		switch se.Kind {
		case StageErrorWarning:
			bs.report.Warnings = append(bs.report.Warnings, se)
			bs.report.RecordStageResult(st.Name, StageResultWarning, bs.recorder)
			slog.Warn("Stage reported a problem", logfields.Stage(string(st.Name)), logfields.Error(se))
		case StageErrorCanceled:
			bs.report.Errors = append(bs.report.Errors, se)
			bs.report.RecordStageResult(st.Name, StageResultCanceled, bs.recorder)
			return se
		default:
			bs.report.Errors = append(bs.report.Errors, se)
			bs.report.RecordStageResult(st.Name, StageResultFatal, bs.recorder)
			return se
		}
	}

	return nil
}
