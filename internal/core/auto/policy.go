package auto

import (
	"errors"
	"fmt"
	"time"

	"github.com/vietddude/prober/internal/core/domain"
)

var (
	// ErrInvalidPolicy is returned when a Config cannot drive a loop.
	ErrInvalidPolicy = errors.New("invalid policy")
)

// PolicyKind names the reaction to a probe outcome.
type PolicyKind string

const (
	PolicyAbort    PolicyKind = "abort"
	PolicyDelay    PolicyKind = "delay"
	PolicyContinue PolicyKind = "continue"
	PolicyBackoff  PolicyKind = "backoff"
)

// Policy is what the driver does after one outcome kind.
type Policy struct {
	Kind    PolicyKind
	Delay   time.Duration // PolicyDelay only
	Backoff *Backoff      // PolicyBackoff only
}

// Abort stops the loop. After an error outcome the stop is fatal.
func Abort() Policy { return Policy{Kind: PolicyAbort} }

// FixedDelay waits d before the next probe.
func FixedDelay(d time.Duration) Policy { return Policy{Kind: PolicyDelay, Delay: d} }

// Continue probes again immediately.
func Continue() Policy { return Policy{Kind: PolicyContinue} }

// WithBackoff waits according to b and stops once b is exhausted.
func WithBackoff(b *Backoff) Policy { return Policy{Kind: PolicyBackoff, Backoff: b} }

func (p Policy) String() string {
	switch p.Kind {
	case PolicyDelay:
		return fmt.Sprintf("delay(%s)", p.Delay)
	case PolicyBackoff:
		if p.Backoff == nil {
			return "backoff(nil)"
		}
		return fmt.Sprintf("backoff(%d x %s)", p.Backoff.MaxAttempts, p.Backoff.BaseDelay)
	default:
		return string(p.Kind)
	}
}

func (p Policy) validate() error {
	switch p.Kind {
	case PolicyAbort, PolicyContinue:
		return nil
	case PolicyDelay:
		if p.Delay < 0 {
			return fmt.Errorf("%w: negative delay %s", ErrInvalidPolicy, p.Delay)
		}
		return nil
	case PolicyBackoff:
		if p.Backoff == nil {
			return fmt.Errorf("%w: backoff policy without schedule", ErrInvalidPolicy)
		}
		if p.Backoff.MaxAttempts <= 0 {
			return fmt.Errorf("%w: backoff max attempts must be positive", ErrInvalidPolicy)
		}
		if p.Backoff.BaseDelay < 0 {
			return fmt.Errorf("%w: negative backoff base delay", ErrInvalidPolicy)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidPolicy, p.Kind)
	}
}

// Config holds one policy slot per outcome kind.
type Config struct {
	OnSuccess Policy
	OnEmpty   Policy
	OnError   Policy
}

// DefaultConfig keeps probing while there is work and stops when there is
// none or when a probe fails.
func DefaultConfig() Config {
	return Config{
		OnSuccess: Continue(),
		OnEmpty:   Abort(),
		OnError:   Abort(),
	}
}

// Validate checks every slot. A Backoff may not be shared between slots.
func (c Config) Validate() error {
	slots := []struct {
		name   string
		policy Policy
	}{
		{"on_success", c.OnSuccess},
		{"on_empty", c.OnEmpty},
		{"on_error", c.OnError},
	}

	seen := make(map[*Backoff]string)
	for _, s := range slots {
		if err := s.policy.validate(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
		if b := s.policy.Backoff; b != nil {
			if other, ok := seen[b]; ok {
				return fmt.Errorf("%w: %s and %s share one backoff schedule", ErrInvalidPolicy, other, s.name)
			}
			seen[b] = s.name
		}
	}
	return nil
}

// PolicyFor selects the slot matching the outcome. Both failure kinds use
// OnError.
func (c Config) PolicyFor(outcome domain.Outcome) Policy {
	switch outcome {
	case domain.OutcomeSuccess:
		return c.OnSuccess
	case domain.OutcomeEmpty:
		return c.OnEmpty
	default:
		return c.OnError
	}
}
