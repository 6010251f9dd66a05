package auto

import (
	"errors"
	"testing"
	"time"

	"github.com/vietddude/prober/internal/core/domain"
)

func TestConfigValidate(t *testing.T) {
	shared := NewBackoff(3, time.Second, 0)

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"all kinds", Config{
			OnSuccess: Continue(),
			OnEmpty:   FixedDelay(time.Second),
			OnError:   WithBackoff(NewBackoff(3, time.Second, time.Minute)),
		}, false},
		{"zero value kind", Config{OnSuccess: Continue(), OnEmpty: Abort()}, true},
		{"nil backoff", Config{OnSuccess: Continue(), OnEmpty: Abort(), OnError: WithBackoff(nil)}, true},
		{"zero attempts", Config{
			OnSuccess: Continue(),
			OnEmpty:   Abort(),
			OnError:   WithBackoff(NewBackoff(0, time.Second, 0)),
		}, true},
		{"negative delay", Config{OnSuccess: Continue(), OnEmpty: FixedDelay(-time.Second), OnError: Abort()}, true},
		{"shared backoff", Config{
			OnSuccess: Continue(),
			OnEmpty:   WithBackoff(shared),
			OnError:   WithBackoff(shared),
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPolicy) {
				t.Errorf("expected ErrInvalidPolicy, got %v", err)
			}
		})
	}
}

func TestConfigPolicyFor(t *testing.T) {
	cfg := Config{
		OnSuccess: Continue(),
		OnEmpty:   FixedDelay(time.Second),
		OnError:   Abort(),
	}

	if got := cfg.PolicyFor(domain.OutcomeSuccess).Kind; got != PolicyContinue {
		t.Errorf("success: expected continue, got %s", got)
	}
	if got := cfg.PolicyFor(domain.OutcomeEmpty).Kind; got != PolicyDelay {
		t.Errorf("empty: expected delay, got %s", got)
	}
	if got := cfg.PolicyFor(domain.OutcomeError).Kind; got != PolicyAbort {
		t.Errorf("error: expected abort, got %s", got)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name     string
		from     State
		to       State
		expected bool
	}{
		{"idle to running", StateIdle, StateRunning, true},
		{"running to suspended", StateRunning, StateSuspended, true},
		{"suspended to running", StateSuspended, StateRunning, true},
		{"running to terminated", StateRunning, StateTerminated, true},
		{"terminated to running", StateTerminated, StateRunning, false},
		{"idle to suspended", StateIdle, StateSuspended, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.expected {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}
