// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Feed metrics track the fetch-and-diff cycle against the incident feed.
var (
	// FeedFetchesTotal counts feed fetch attempts by outcome
	FeedFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetches_total",
			Help: "Total number of incident feed fetches by status",
		},
		[]string{"status"},
	)

	// FeedFetchDuration measures feed fetch duration in seconds
	FeedFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_fetch_duration_seconds",
			Help:    "Incident feed fetch duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// FeedEntriesFiltered counts entries dropped by each filter stage
	FeedEntriesFiltered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_entries_filtered_total",
			Help: "Total number of feed entries dropped by filter stage",
		},
		[]string{"filter"},
	)
)

// Incident lifecycle metrics follow entities through the diff callbacks.
var (
	// IncidentsAddedTotal counts incidents first observed in the feed
	IncidentsAddedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "incidents_added_total",
			Help: "Total number of incidents added from the feed",
		},
	)

	// IncidentsUpdatedTotal counts update signals sent to entities
	IncidentsUpdatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "incidents_updated_total",
			Help: "Total number of incident update signals dispatched",
		},
	)

	// IncidentsRemovedTotal counts incidents that left the feed
	IncidentsRemovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "incidents_removed_total",
			Help: "Total number of incidents removed from the feed",
		},
	)

	// ActiveIncidents tracks the number of currently registered entities
	ActiveIncidents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_incidents",
			Help: "Number of incident entities currently registered",
		},
	)
)

// RecordFeedFetch records one feed fetch attempt with its duration.
func RecordFeedFetch(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	FeedFetchesTotal.WithLabelValues(status).Inc()
	FeedFetchDuration.Observe(duration.Seconds())
}

// RecordEntryFiltered records an entry dropped by the named filter stage
// (category, radius, statewide, invalid).
func RecordEntryFiltered(filter string) {
	FeedEntriesFiltered.WithLabelValues(filter).Inc()
}

// RecordDiff records the outcome of one fetch-and-diff pass.
func RecordDiff(added, updated, removed int) {
	IncidentsAddedTotal.Add(float64(added))
	IncidentsUpdatedTotal.Add(float64(updated))
	IncidentsRemovedTotal.Add(float64(removed))
}

// SetActiveIncidents sets the registered-entity gauge.
func SetActiveIncidents(n int) {
	ActiveIncidents.Set(float64(n))
}
