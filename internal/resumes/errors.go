package resumes

import "errors"

var (
	// ErrNotFound covers both missing records and records owned by someone else.
	ErrNotFound        = errors.New("resume not found")
	ErrInvalidInput    = errors.New("invalid input")
	// ErrAlreadyAnalyzed is returned when a record already holds feedback.
	ErrAlreadyAnalyzed = errors.New("resume already analyzed")
)
