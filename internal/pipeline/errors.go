package pipeline

import (
	"errors"
	"fmt"
)

// FailureKind tags the single typed failure a stage may raise. The
// runner matches on the kind to log the cause; end users only ever see
// a generic notice.
type FailureKind int

const (
	FailValidation FailureKind = iota + 1
	FailAcquisition
	FailCleaning
	FailTranscription
	FailAnalysis
	FailComposition
)

func (k FailureKind) String() string {
	switch k {
	case FailValidation:
		return "validation"
	case FailAcquisition:
		return "acquisition"
	case FailCleaning:
		return "cleaning"
	case FailTranscription:
		return "transcription"
	case FailAnalysis:
		return "analysis"
	case FailComposition:
		return "composition"
	default:
		return "unknown"
	}
}

// StageError carries the failure kind alongside the wrapped cause.
type StageError struct {
	Kind FailureKind
	Err  error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Kind, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Fail wraps err with a failure kind. If err is already a StageError it
// is returned unchanged so the original kind survives re-wrapping.
func Fail(kind FailureKind, err error) *StageError {
	var serr *StageError
	if errors.As(err, &serr) {
		return serr
	}
	return &StageError{Kind: kind, Err: err}
}

// Failf builds a typed failure from a format string.
func Failf(kind FailureKind, format string, args ...interface{}) *StageError {
	return &StageError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the failure kind from an error chain, or zero when
// the error carries no stage information.
func KindOf(err error) FailureKind {
	var serr *StageError
	if errors.As(err, &serr) {
		return serr.Kind
	}
	return 0
}
