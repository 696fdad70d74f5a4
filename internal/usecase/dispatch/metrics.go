package dispatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for dispatch run monitoring
var (
	// dispatchOutcomesTotal tracks per-item outcomes by occasion kind and lane
	dispatchOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_outcomes_total",
			Help: "Total number of dispatch item outcomes",
		},
		[]string{"kind", "lane", "outcome"},
	)

	// dispatchRunsTotal tracks completed runs by kind and store health
	dispatchRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_runs_total",
			Help: "Total number of dispatch runs",
		},
		[]string{"kind", "slot", "store_ok"},
	)

	// dispatchRunDuration tracks whole-run duration
	dispatchRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_run_duration_seconds",
			Help:    "Dispatch run duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
		[]string{"kind", "slot"},
	)
)

// recordOutcome increments the outcome counter for one dispatched item.
func recordOutcome(kind string, lane Lane, outcome Outcome) {
	dispatchOutcomesTotal.WithLabelValues(kind, string(lane), string(outcome)).Inc()
}

// recordRun records the completion of one run.
func recordRun(stats *RunStats, duration time.Duration) {
	storeOK := "true"
	if !stats.StoreOK {
		storeOK = "false"
	}
	dispatchRunsTotal.WithLabelValues(stats.Kind, stats.Slot, storeOK).Inc()
	dispatchRunDuration.WithLabelValues(stats.Kind, stats.Slot).Observe(duration.Seconds())
}
