package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProbesTotal counts finished probe cycles per job and outcome
	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prober_probes_total",
			Help: "Total number of probe cycles by outcome",
		},
		[]string{"job", "outcome"},
	)

	// ProbeFailuresTotal counts failed probes by failure kind (store, processor)
	ProbeFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prober_probe_failures_total",
			Help: "Total number of failed probe cycles by failure kind",
		},
		[]string{"job", "kind"},
	)

	// ProbeLatency tracks the duration of a whole probe cycle
	ProbeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prober_probe_latency_seconds",
			Help:    "Probe cycle latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)

	// SuspendedSeconds accumulates time spent sleeping between probes
	SuspendedSeconds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prober_suspended_seconds_total",
			Help: "Total time the driver spent suspended between probes",
		},
		[]string{"job", "outcome"},
	)

	// BackoffAttempt is the current attempt index of a backoff slot
	BackoffAttempt = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "prober_backoff_attempt",
			Help: "Current attempt index of a backoff policy slot",
		},
		[]string{"job", "outcome"},
	)

	// DriverRunning is 1 while a job's driving loop is alive
	DriverRunning = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "prober_driver_running",
			Help: "Whether the driving loop of a job is running",
		},
		[]string{"job"},
	)

	// DBConnectionPoolUsage is the share of open connections in the pool
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "prober_db_connection_pool_usage_percent",
			Help: "Open database connections as a percentage of the pool limit",
		},
	)
)
