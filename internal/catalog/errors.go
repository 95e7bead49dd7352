package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrQuestionNotFound is returned when a question id does not resolve.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrTermNotFound is returned when a glossary term id does not resolve.
	ErrTermNotFound = errors.New("term not found")
)

// ValidationError reports a dataset that failed schema or consistency checks.
type ValidationError struct {
	Source string // file or dataset name
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid dataset %s: %v", e.Source, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
