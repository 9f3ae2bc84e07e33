package site

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/mdsite/internal/metrics"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// PageFailure records a document that could not be rendered.
type PageFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// BrokenLink records an internal reference that resolves to nothing.
type BrokenLink struct {
	Page string `json:"page"`
	Ref  string `json:"ref"`
}

// BuildReport captures high-level metrics about a site generation run.
type BuildReport struct {
	BuildID        string                   `json:"build_id"`
	Start          time.Time                `json:"start"`
	End            time.Time                `json:"end"`
	StageDurations map[string]time.Duration `json:"stage_durations"`
	Pages          int                      `json:"pages"`   // markdown pages rendered and written
	Assets         int                      `json:"assets"`  // static files copied
	Indexes        int                      `json:"indexes"` // generated directory listings
	Failures       []PageFailure            `json:"failures,omitempty"`
	BrokenLinks    []BrokenLink             `json:"broken_links,omitempty"`
	Outcome        BuildOutcome             `json:"outcome"`

	// Errors are fatal problems that aborted the build; Warnings are recorded
	// problems the build survived. Serialized as strings.
	Errors   []error `json:"-"`
	Warnings []error `json:"-"`
}

// NewBuildReport constructs an empty report with a fresh build id.
func NewBuildReport() *BuildReport {
	return &BuildReport{
		BuildID:        uuid.NewString(),
		Start:          time.Now(),
		StageDurations: make(map[string]time.Duration),
	}
}

// Finish sets the end time of the report.
func (r *BuildReport) Finish() { r.End = time.Now() }

// RecordStageResult emits stage metrics (if recorder non-nil).
func (r *BuildReport) RecordStageResult(stage StageName, res StageResult, recorder metrics.Recorder) {
	if recorder == nil {
		return
	}
	switch res {
	case StageResultSuccess:
		recorder.IncStageResult(string(stage), metrics.ResultSuccess)
	case StageResultWarning:
		recorder.IncStageResult(string(stage), metrics.ResultWarning)
	case StageResultFatal:
		recorder.IncStageResult(string(stage), metrics.ResultFatal)
	case StageResultCanceled:
		recorder.IncStageResult(string(stage), metrics.ResultCanceled)
	}
}

// DeriveOutcome folds errors and warnings into the final outcome.
func (r *BuildReport) DeriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			var se *StageError
			if errors.As(e, &se) && se.Kind == StageErrorCanceled {
				r.Outcome = OutcomeCanceled
				return
			}
		}
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 || len(r.Failures) > 0 || len(r.BrokenLinks) > 0 {
		r.Outcome = OutcomeWarning
		return
	}
	r.Outcome = OutcomeSuccess
}

// Duration returns the wall-clock build time.
func (r *BuildReport) Duration() time.Duration { return r.End.Sub(r.Start) }

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	return fmt.Sprintf("pages=%d assets=%d duration=%s failures=%d outcome=%s",
		r.Pages, r.Assets, r.Duration().Truncate(time.Millisecond), len(r.Failures), string(r.Outcome))
}

// MarshalJSON serializes the report with error fields flattened to strings.
func (r *BuildReport) MarshalJSON() ([]byte, error) {
	type alias BuildReport
	return json.Marshal(struct {
		*alias
		Errors   []string `json:"errors,omitempty"`
		Warnings []string `json:"warnings,omitempty"`
	}{
		alias:    (*alias)(r),
		Errors:   errorStrings(r.Errors),
		Warnings: errorStrings(r.Warnings),
	})
}

func errorStrings(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Error())
	}
	return out
}

// Persist writes the report atomically into the provided root directory.
func (r *BuildReport) Persist(root string) error {
	if r.End.IsZero() {
		r.Finish()
		r.DeriveOutcome()
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return fmt.Errorf("ensure root for report: %w", err)
	}
	jb, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	jsonPath := filepath.Join(root, "build-report.json")
	tmpJSON := jsonPath + ".tmp"
	if err := os.WriteFile(tmpJSON, jb, 0o600); err != nil {
		return fmt.Errorf("write temp report json: %w", err)
	}
	if err := os.Rename(tmpJSON, jsonPath); err != nil {
		return fmt.Errorf("atomic rename json: %w", err)
	}
	return nil
}
