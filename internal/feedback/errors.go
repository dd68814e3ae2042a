package feedback

import (
	"errors"
	"fmt"
)

// ErrorKind names the step an extraction failed at.
type ErrorKind string

const (
	KindSourceUnavailable ErrorKind = "source_unavailable"
	KindCompletionFailed  ErrorKind = "completion_failed"
	KindNoJSONFound       ErrorKind = "no_json_found"
	KindMalformedJSON     ErrorKind = "malformed_json"
)

var (
	ErrSourceUnavailable = errors.New("document source unavailable")
	ErrCompletionFailed  = errors.New("completion failed")
	ErrNoJSONFound       = errors.New("no JSON object found in reply")
	ErrMalformedJSON     = errors.New("malformed JSON in reply")
)

// ExtractionError is returned by Extract. Raw holds the model reply for
// no_json_found and the offending span for malformed_json.
type ExtractionError struct {
	Kind ErrorKind
	Raw  string
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("extract feedback: %s", e.sentinel())
	}
	return fmt.Sprintf("extract feedback: %s: %v", e.sentinel(), e.Err)
}

// Unwrap exposes both the kind sentinel and the cause.
func (e *ExtractionError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.sentinel()}
	}
	return []error{e.sentinel(), e.Err}
}

// Retryable reports whether the failure was in transport, where running the
// same extraction again may succeed.
func (e *ExtractionError) Retryable() bool {
	return e.Kind == KindSourceUnavailable || e.Kind == KindCompletionFailed
}

func (e *ExtractionError) sentinel() error {
	switch e.Kind {
	case KindSourceUnavailable:
		return ErrSourceUnavailable
	case KindCompletionFailed:
		return ErrCompletionFailed
	case KindNoJSONFound:
		return ErrNoJSONFound
	default:
		return ErrMalformedJSON
	}
}

// KindOf returns the extraction kind carried by err, or "" when err is not an
// extraction failure.
func KindOf(err error) ErrorKind {
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return ""
}
