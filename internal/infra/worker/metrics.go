package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"vicemergency-feed/internal/pkg/config"
)

// WorkerMetrics provides Prometheus metrics for the worker component. It
// embeds ConfigMetrics for configuration monitoring and adds update-run
// metrics on top.
type WorkerMetrics struct {
	*config.ConfigMetrics

	// UpdateRunsTotal counts scheduled update runs by status (success/failure).
	UpdateRunsTotal *prometheus.CounterVec

	// UpdateDurationSeconds measures full update pass duration.
	UpdateDurationSeconds prometheus.Histogram

	// IncidentsProcessedTotal counts feed entries processed across all runs.
	IncidentsProcessedTotal prometheus.Counter

	// LastSuccessTimestamp records the Unix timestamp of the last successful run.
	LastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates all worker metrics. Registration happens
// automatically via promauto.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		UpdateRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_update_runs_total",
			Help: "Total number of update runs by status (success/failure)",
		}, []string{"status"}),

		UpdateDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_update_duration_seconds",
			Help:    "Duration of a full update pass in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120},
		}),

		IncidentsProcessedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_incidents_processed_total",
			Help: "Total number of feed entries processed across all update runs",
		}),

		LastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_update_last_success_timestamp",
			Help: "Unix timestamp of the last successful update run",
		}),
	}
}

// RecordUpdateRun increments the run counter for "success" or "failure".
func (m *WorkerMetrics) RecordUpdateRun(status string) {
	m.UpdateRunsTotal.WithLabelValues(status).Inc()
}

// RecordUpdateDuration observes the duration of an update pass in seconds.
func (m *WorkerMetrics) RecordUpdateDuration(seconds float64) {
	m.UpdateDurationSeconds.Observe(seconds)
}

// RecordIncidentsProcessed adds the number of entries seen in one run.
func (m *WorkerMetrics) RecordIncidentsProcessed(count int) {
	m.IncidentsProcessedTotal.Add(float64(count))
}

// RecordLastSuccess records the current time as the last successful run.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.LastSuccessTimestamp.SetToCurrentTime()
}
