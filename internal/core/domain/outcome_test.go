package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestProbeError_Is(t *testing.T) {
	cause := errors.New("disk full")

	storeErr := NewStoreFailure(cause)
	if !errors.Is(storeErr, ErrStoreFailure) {
		t.Error("expected store failure to match ErrStoreFailure")
	}
	if errors.Is(storeErr, ErrProcessorFailure) {
		t.Error("store failure must not match ErrProcessorFailure")
	}
	if !errors.Is(storeErr, cause) {
		t.Error("expected store failure to unwrap to its cause")
	}

	wrapped := fmt.Errorf("probe: %w", NewProcessorFailure(cause))
	if !errors.Is(wrapped, ErrProcessorFailure) {
		t.Error("expected wrapped processor failure to match ErrProcessorFailure")
	}

	var pe *ProbeError
	if !errors.As(wrapped, &pe) || pe.Kind != FailureProcessor {
		t.Errorf("expected ProbeError with kind processor, got %v", pe)
	}
}

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    string
	}{
		{OutcomeSuccess, "success"},
		{OutcomeEmpty, "empty"},
		{OutcomeError, "error"},
		{Outcome(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.outcome.String(); got != tt.want {
			t.Errorf("Outcome(%d).String() = %q, want %q", tt.outcome, got, tt.want)
		}
	}
}
