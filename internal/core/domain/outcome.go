package domain

import (
	"errors"
	"fmt"
)

// Outcome is the result of one probe cycle.
type Outcome int

const (
	// OutcomeSuccess means a new sentinel was produced and committed.
	OutcomeSuccess Outcome = iota
	// OutcomeEmpty means the processor had nothing new; the store is unchanged.
	OutcomeEmpty
	// OutcomeError means either the store or the processor failed.
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeEmpty:
		return "empty"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// FailureKind tells which side of the probe cycle failed.
type FailureKind string

const (
	FailureStore     FailureKind = "store"
	FailureProcessor FailureKind = "processor"
)

var (
	// ErrStoreFailure matches any ProbeError raised by the sentinel store.
	ErrStoreFailure = errors.New("sentinel store failure")

	// ErrProcessorFailure matches any ProbeError raised by the processor.
	ErrProcessorFailure = errors.New("processor failure")
)

// ProbeError carries the cause of an OutcomeError.
type ProbeError struct {
	Kind FailureKind
	Err  error
}

// NewStoreFailure wraps err as a store failure.
func NewStoreFailure(err error) *ProbeError {
	return &ProbeError{Kind: FailureStore, Err: err}
}

// NewProcessorFailure wraps err as a processor failure.
func NewProcessorFailure(err error) *ProbeError {
	return &ProbeError{Kind: FailureProcessor, Err: err}
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("%s failure: %v", e.Kind, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrStoreFailure / ErrProcessorFailure by kind.
func (e *ProbeError) Is(target error) bool {
	switch target {
	case ErrStoreFailure:
		return e.Kind == FailureStore
	case ErrProcessorFailure:
		return e.Kind == FailureProcessor
	}
	return false
}
