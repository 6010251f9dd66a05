package health

import (
	"context"
	"fmt"
	"sync"

	"github.com/vietddude/prober/internal/core/auto"
	"github.com/vietddude/prober/internal/core/domain"
)

// StatusProvider is implemented by *auto.AutoProber.
type StatusProvider interface {
	Job() string
	Status() auto.Status
}

// SentinelReader reads the text form of a job's current sentinel.
type SentinelReader func(ctx context.Context) (string, error)

// Monitor aggregates health status from all registered jobs.
type Monitor struct {
	mu        sync.RWMutex
	jobs      []StatusProvider
	sentinels map[string]SentinelReader
}

// NewMonitor creates a new health monitor.
func NewMonitor() *Monitor {
	return &Monitor{sentinels: make(map[string]SentinelReader)}
}

// Register adds a job. sentinel may be nil.
func (m *Monitor) Register(job StatusProvider, sentinel SentinelReader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
	if sentinel != nil {
		m.sentinels[job.Job()] = sentinel
	}
}

// CheckHealth builds a report for all jobs. Worst job status wins.
func (m *Monitor) CheckHealth(ctx context.Context) HealthReport {
	m.mu.RLock()
	defer m.mu.RUnlock()

	report := HealthReport{
		SystemStatus: StatusHealthy,
		Jobs:         make(map[string]JobHealth, len(m.jobs)),
	}

	for _, job := range m.jobs {
		st := job.Status()
		h := JobHealth{
			Job:         st.Job,
			Status:      classify(st),
			State:       st.State,
			Probes:      st.Probes,
			LastOutcome: st.LastOutcome,
			LastError:   st.LastError,
			LastProbeAt: st.LastProbeAt,
		}

		if read, ok := m.sentinels[st.Job]; ok {
			if v, err := read(ctx); err != nil {
				h.Sentinel = fmt.Sprintf("<error: %v>", err)
			} else {
				h.Sentinel = v
			}
		}

		report.Jobs[st.Job] = h
		report.SystemStatus = worst(report.SystemStatus, h.Status)
	}
	return report
}

// Overall returns the system status without reading any sentinel.
func (m *Monitor) Overall() SystemStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := StatusHealthy
	for _, job := range m.jobs {
		status = worst(status, classify(job.Status()))
	}
	return status
}

// classify maps a driver snapshot to a health status:
// fatal stop is critical, a clean stop or a failing last probe is degraded.
func classify(st auto.Status) SystemStatus {
	switch {
	case st.Fatal:
		return StatusCritical
	case st.State == auto.StateTerminated:
		return StatusDegraded
	case st.LastOutcome == domain.OutcomeError.String():
		return StatusDegraded
	default:
		return StatusHealthy
	}
}

func worst(a, b SystemStatus) SystemStatus {
	rank := map[SystemStatus]int{StatusHealthy: 0, StatusDegraded: 1, StatusCritical: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
