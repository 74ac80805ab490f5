package types

import (
	"errors"
	"fmt"
)

// Pipeline failure kinds. Every error leaving the analysis pipeline wraps
// exactly one of these, so callers can translate kinds into HTTP statuses
// with errors.Is.
var (
	ErrUnreadableDocument   = errors.New("unreadable document")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrEmptyCorpus          = errors.New("empty corpus")
	ErrModelRequestRejected = errors.New("model request rejected")
	ErrModelUnavailable     = errors.New("model unavailable")
	ErrUnparseableResponse  = errors.New("unparseable response")
)

// PipelineError tags a failure with its kind and keeps the original cause.
type PipelineError struct {
	Kind  error
	Cause error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return e.Kind.Error()
}

func (e *PipelineError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// NewPipelineError wraps cause with the given failure kind.
func NewPipelineError(kind, cause error) *PipelineError {
	return &PipelineError{Kind: kind, Cause: cause}
}
