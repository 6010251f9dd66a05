package auto

import (
	"sync"
	"time"

	"github.com/vietddude/prober/internal/core/domain"
)

const historySize = 10

// Status is a snapshot of one driver.
type Status struct {
	Job          string
	State        State
	Probes       map[string]int
	LastOutcome  string
	LastError    string
	LastProbeAt  *time.Time
	Fatal        bool
	StateHistory []Transition
}

// statusCollector tracks driver activity for Status.
type statusCollector struct {
	mu          sync.RWMutex
	job         string
	state       State
	probes      map[string]int
	lastOutcome string
	lastError   string
	lastProbeAt *time.Time
	fatal       bool
	transitions []Transition
}

func newStatusCollector(job string) *statusCollector {
	return &statusCollector{
		job:         job,
		state:       StateIdle,
		probes:      make(map[string]int),
		transitions: make([]Transition, 0, historySize),
	}
}

// RecordProbe records one finished probe cycle.
func (c *statusCollector) RecordProbe(outcome domain.Outcome, err error, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.probes[outcome.String()]++
	c.lastOutcome = outcome.String()
	c.lastProbeAt = &at
	if err != nil {
		c.lastError = err.Error()
	}
}

// RecordTransition records a state change.
func (c *statusCollector) RecordTransition(t Transition) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = t.To
	// Keep only the last transitions
	if len(c.transitions) >= historySize {
		copy(c.transitions, c.transitions[1:])
		c.transitions[len(c.transitions)-1] = t
	} else {
		c.transitions = append(c.transitions, t)
	}
}

func (c *statusCollector) MarkFatal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fatal = true
}

func (c *statusCollector) ClearFatal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fatal = false
}

func (c *statusCollector) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *statusCollector) Snapshot() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Status{
		Job:          c.job,
		State:        c.state,
		Probes:       make(map[string]int, len(c.probes)),
		LastOutcome:  c.lastOutcome,
		LastError:    c.lastError,
		LastProbeAt:  c.lastProbeAt,
		Fatal:        c.fatal,
		StateHistory: make([]Transition, len(c.transitions)),
	}
	for k, v := range c.probes {
		s.Probes[k] = v
	}
	copy(s.StateHistory, c.transitions)
	return s
}
