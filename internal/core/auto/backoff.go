package auto

import (
	"math"
	"sync"
	"time"
)

// Backoff is a bounded exponential delay schedule.
//
// Attempt n (0-indexed) waits BaseDelay * 2^n, capped at MaxDelay when
// MaxDelay > 0. After MaxAttempts delays the schedule is exhausted until
// Reset is called. No jitter is applied.
type Backoff struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	mu      sync.Mutex
	attempt int
}

// NewBackoff creates a fresh schedule. maxDelay <= 0 disables the cap.
func NewBackoff(maxAttempts int, baseDelay, maxDelay time.Duration) *Backoff {
	return &Backoff{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		MaxDelay:    maxDelay,
	}
}

// NextDelay advances the schedule. ok is false once attempts are exhausted.
func (b *Backoff) NextDelay() (delay time.Duration, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attempt >= b.MaxAttempts {
		return 0, false
	}
	delay = b.delayFor(b.attempt)
	b.attempt++
	return delay, true
}

// Reset rewinds the schedule to its first delay.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempt = 0
}

// Attempt returns how many delays have been handed out since the last reset.
func (b *Backoff) Attempt() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempt
}

// Exhausted reports whether the next call to NextDelay will fail.
func (b *Backoff) Exhausted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempt >= b.MaxAttempts
}

// delayFor calculates BaseDelay * 2^attempt
func (b *Backoff) delayFor(attempt int) time.Duration {
	delay := float64(b.BaseDelay) * math.Pow(2, float64(attempt))
	if b.MaxDelay > 0 && delay > float64(b.MaxDelay) {
		return b.MaxDelay
	}
	if delay >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(delay)
}
