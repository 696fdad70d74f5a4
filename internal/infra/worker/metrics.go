package worker

import (
	"temple-notify/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics provides Prometheus metrics for the scheduler component.
// It embeds the standard ConfigMetrics for configuration monitoring and
// adds scheduler-specific metrics for cron job execution tracking.
//
// Scheduler-specific metrics:
//   - worker_cron_job_runs_total: Total cron job runs by slot and status
//   - worker_cron_job_duration_seconds: Duration histogram of job execution
//   - worker_cron_job_last_success_timestamp: Unix timestamp of last successful run per slot
type WorkerMetrics struct {
	*config.ConfigMetrics

	// CronJobRunsTotal counts cron job runs by slot and status
	// (success means the run completed with a reachable store).
	CronJobRunsTotal *prometheus.CounterVec

	// CronJobDurationSeconds measures job execution duration. Dispatch
	// runs are short; the buckets top out at the 10 minute run timeout.
	CronJobDurationSeconds prometheus.Histogram

	// CronJobLastSuccessTimestamp records the last successful run per slot.
	CronJobLastSuccessTimestamp *prometheus.GaugeVec
}

// NewWorkerMetrics creates a new WorkerMetrics instance with all metrics
// initialized and auto-registered via promauto.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		CronJobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Total number of cron job runs by slot and status",
		}, []string{"slot", "status"}),

		CronJobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of cron job execution in seconds",
			Buckets: []float64{0.5, 1, 5, 30, 60, 300, 600},
		}),

		CronJobLastSuccessTimestamp: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful cron job run",
		}, []string{"slot"}),
	}
}

// MustRegister is a no-op method for API compatibility.
// Metrics are automatically registered via promauto when created in NewWorkerMetrics.
func (m *WorkerMetrics) MustRegister() {
	// No-op: metrics are auto-registered via promauto
}

// RecordJobRun increments the job run counter for the given slot and
// status ("success" or "failure").
func (m *WorkerMetrics) RecordJobRun(slot, status string) {
	m.CronJobRunsTotal.WithLabelValues(slot, status).Inc()
}

// RecordJobDuration observes the duration of a cron job execution in seconds.
func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.CronJobDurationSeconds.Observe(seconds)
}

// RecordLastSuccess records the current time as the last successful job
// completion for the slot.
func (m *WorkerMetrics) RecordLastSuccess(slot string) {
	m.CronJobLastSuccessTimestamp.WithLabelValues(slot).SetToCurrentTime()
}
