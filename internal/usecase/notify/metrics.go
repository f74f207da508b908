package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for notification system monitoring
var (
	notificationDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dispatched_total",
			Help: "Total number of notifications dispatched",
		},
		[]string{"channel"},
	)

	notificationSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_sent_total",
			Help: "Total number of notifications sent",
		},
		[]string{"channel", "status"}, // status: success|failure
	)

	notificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_duration_seconds",
			Help:    "Notification send duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"channel"},
	)

	circuitBreakerOpenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_circuit_breaker_open_total",
			Help: "Total number of circuit breaker open events",
		},
		[]string{"channel"},
	)

	notificationDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dropped_total",
			Help: "Total number of dropped notifications",
		},
		[]string{"channel", "reason"}, // reason: pool_full|circuit_open|disabled
	)

	activeNotifications = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_active_goroutines",
			Help: "Number of active notification goroutines",
		},
	)

	channelsEnabled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_channels_enabled",
			Help: "Number of enabled notification channels",
		},
	)
)

// RecordDispatch records a notification dispatch attempt for a channel.
func RecordDispatch(channel string) {
	notificationDispatchedTotal.WithLabelValues(channel).Inc()
}

// RecordSuccess records a successful send and its duration.
func RecordSuccess(channel string, duration time.Duration) {
	notificationSentTotal.WithLabelValues(channel, "success").Inc()
	notificationDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordFailure records a failed send and its duration.
func RecordFailure(channel string, duration time.Duration) {
	notificationSentTotal.WithLabelValues(channel, "failure").Inc()
	notificationDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordDropped records a dropped notification with its reason
// (pool_full, circuit_open, disabled).
func RecordDropped(channel string, reason string) {
	notificationDroppedTotal.WithLabelValues(channel, reason).Inc()
}

// RecordCircuitBreakerOpen records a circuit breaker open event.
func RecordCircuitBreakerOpen(channel string) {
	circuitBreakerOpenTotal.WithLabelValues(channel).Inc()
}

// IncrementActiveGoroutines increments the active goroutines gauge by 1.
func IncrementActiveGoroutines() {
	activeNotifications.Inc()
}

// DecrementActiveGoroutines decrements the active goroutines gauge by 1.
func DecrementActiveGoroutines() {
	activeNotifications.Dec()
}

// SetChannelsEnabled sets the number of enabled notification channels.
func SetChannelsEnabled(count float64) {
	channelsEnabled.Set(count)
}
