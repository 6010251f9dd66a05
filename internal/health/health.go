// Package health provides job health monitoring and status reporting.
package health

import (
	"time"

	"github.com/vietddude/prober/internal/core/auto"
)

// SystemStatus represents the overall health state of the system or a component.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// JobHealth contains health data for one polling job.
type JobHealth struct {
	Job         string         `json:"job"`
	Status      SystemStatus   `json:"status"`
	State       auto.State     `json:"state"`
	Probes      map[string]int `json:"probes"`
	LastOutcome string         `json:"last_outcome,omitempty"`
	LastError   string         `json:"last_error,omitempty"`
	LastProbeAt *time.Time     `json:"last_probe_at,omitempty"`
	Sentinel    string         `json:"sentinel,omitempty"`
}

// HealthReport contains the full system health report.
type HealthReport struct {
	SystemStatus SystemStatus         `json:"system_status"`
	Jobs         map[string]JobHealth `json:"jobs"`
}
