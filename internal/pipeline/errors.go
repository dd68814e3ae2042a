package pipeline

import (
	"errors"
	"fmt"
)

// Stage names a pipeline step.
type Stage string

const (
	StageUpload   Stage = "upload"
	StagePersist  Stage = "persist"
	StageAnalysis Stage = "analysis"
	StageFinalize Stage = "finalize"
)

var (
	ErrUploadFailed   = errors.New("upload failed")
	ErrPersistFailed  = errors.New("persist failed")
	ErrAnalysisFailed = errors.New("analysis failed")
	ErrFinalizeFailed = errors.New("finalize failed")
)

// Error reports which step of a run failed. RecordID is set once a record
// exists, so callers can tell a clean failure from a partial one.
type Error struct {
	Stage    Stage
	RecordID string
	Err      error
}

func (e *Error) Error() string {
	if e.RecordID != "" {
		return fmt.Sprintf("pipeline %s (record %s): %v", e.Stage, e.RecordID, e.Err)
	}
	return fmt.Sprintf("pipeline %s: %v", e.Stage, e.Err)
}

// Unwrap exposes both the stage sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	return []error{e.sentinel(), e.Err}
}

// Partial reports whether a record was left behind by the failed run.
func (e *Error) Partial() bool {
	return e.RecordID != ""
}

func (e *Error) sentinel() error {
	switch e.Stage {
	case StageUpload:
		return ErrUploadFailed
	case StagePersist:
		return ErrPersistFailed
	case StageAnalysis:
		return ErrAnalysisFailed
	default:
		return ErrFinalizeFailed
	}
}

func stageError(stage Stage, recordID string, err error) *Error {
	return &Error{Stage: stage, RecordID: recordID, Err: err}
}
