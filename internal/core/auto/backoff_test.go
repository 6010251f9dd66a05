package auto

import (
	"testing"
	"time"
)

func TestBackoff_GrowsThenExhausts(t *testing.T) {
	const attempts = 5
	b := NewBackoff(attempts, 100*time.Millisecond, 0)

	var prev time.Duration
	for i := 0; i < attempts; i++ {
		d, ok := b.NextDelay()
		if !ok {
			t.Fatalf("attempt %d: unexpected exhaustion", i)
		}
		if d < prev {
			t.Errorf("attempt %d: delay %v shrank from %v", i, d, prev)
		}
		prev = d
	}

	if _, ok := b.NextDelay(); ok {
		t.Errorf("expected exhaustion after %d attempts", attempts)
	}
	if !b.Exhausted() {
		t.Error("expected Exhausted to report true")
	}
}

func TestBackoff_Delay(t *testing.T) {
	b := NewBackoff(10, time.Second, 10*time.Second)

	want := []time.Duration{
		1 * time.Second, // 1*2^0
		2 * time.Second, // 1*2^1
		4 * time.Second, // 1*2^2
		8 * time.Second, // 1*2^3
		10 * time.Second,
		10 * time.Second,
	}
	for i, w := range want {
		d, _ := b.NextDelay()
		if d != w {
			t.Errorf("attempt %d: expected %v, got %v", i, w, d)
		}
	}
}

func TestBackoff_ResetRestoresFirstDelay(t *testing.T) {
	b := NewBackoff(2, time.Second, 0)

	first, _ := b.NextDelay()
	_, _ = b.NextDelay()
	if _, ok := b.NextDelay(); ok {
		t.Fatal("expected exhaustion")
	}

	b.Reset()
	if b.Attempt() != 0 {
		t.Errorf("expected attempt 0 after reset, got %d", b.Attempt())
	}
	d, ok := b.NextDelay()
	if !ok || d != first {
		t.Errorf("expected first delay %v after reset, got %v (ok=%v)", first, d, ok)
	}
}

func TestBackoff_HugeAttemptDoesNotOverflow(t *testing.T) {
	b := NewBackoff(100, time.Hour, 0)
	var prev time.Duration
	for i := 0; i < 100; i++ {
		d, _ := b.NextDelay()
		if d < prev {
			t.Fatalf("attempt %d: delay %v shrank from %v", i, d, prev)
		}
		prev = d
	}
}
