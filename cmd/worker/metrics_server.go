package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vicemergency-feed/internal/registry"
	"vicemergency-feed/internal/usecase/notify"
)

// HealthResponse represents a simple health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ChannelHealthResponse represents the health status of all notification channels.
type ChannelHealthResponse struct {
	Healthy  bool            `json:"healthy"`
	Channels []ChannelStatus `json:"channels"`
}

// ChannelStatus represents the status of a single notification channel.
type ChannelStatus struct {
	Name               string     `json:"name"`
	Enabled            bool       `json:"enabled"`
	CircuitBreakerOpen bool       `json:"circuit_breaker_open"`
	DisabledUntil      *time.Time `json:"disabled_until,omitempty"`
}

// IncidentResponse is one entry of the /incidents listing.
type IncidentResponse struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Icon       string                 `json:"icon"`
	Distance   float64                `json:"distance"`
	Unit       string                 `json:"unit"`
	Latitude   float64                `json:"latitude"`
	Longitude  float64                `json:"longitude"`
	Source     string                 `json:"source"`
	Attributes map[string]interface{} `json:"attributes"`
}

// startMetricsServer starts the Prometheus metrics HTTP server.
//
// Endpoints:
//   - GET /metrics: Prometheus metrics
//   - GET /health: liveness probe
//   - GET /health/channels: notification channel health with breaker state
//   - GET /incidents: currently tracked incidents with display attributes
//
// The server shuts down gracefully when ctx is canceled.
func startMetricsServer(ctx context.Context, logger *slog.Logger, port int, notifyService notify.Service, incidents *registry.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/health/channels", channelHealthHandler(notifyService))
	mux.HandleFunc("/incidents", incidentsHandler(incidents))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()
		logger.Info("metrics server shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
		} else {
			logger.Info("metrics server stopped")
		}
	}()

	return server
}

// healthHandler handles GET /health (liveness probe), always 200 OK.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(HealthResponse{Status: "healthy"})
}

// channelHealthHandler handles GET /health/channels. Returns 503 when any
// enabled channel has an open circuit breaker.
func channelHealthHandler(notifyService notify.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		healthStatuses := notifyService.GetChannelHealth()

		channels := make([]ChannelStatus, 0, len(healthStatuses))
		healthy := true

		for _, status := range healthStatuses {
			channels = append(channels, ChannelStatus{
				Name:               status.Name,
				Enabled:            status.Enabled,
				CircuitBreakerOpen: status.CircuitBreakerOpen,
				DisabledUntil:      status.DisabledUntil,
			})
			if status.Enabled && status.CircuitBreakerOpen {
				healthy = false
			}
		}

		statusCode := http.StatusOK
		if !healthy {
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(ChannelHealthResponse{
			Healthy:  healthy,
			Channels: channels,
		})
	}
}

// incidentsHandler handles GET /incidents, listing every tracked incident
// sorted by identifier.
func incidentsHandler(incidents *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events := incidents.Snapshot()
		out := make([]IncidentResponse, 0, len(events))
		for _, event := range events {
			lat, lon := event.Coordinates()
			out = append(out, IncidentResponse{
				ID:         event.ExternalID(),
				Name:       event.Name(),
				Icon:       event.Icon(),
				Distance:   event.Distance(),
				Unit:       event.Unit(),
				Latitude:   lat,
				Longitude:  lon,
				Source:     event.Source(),
				Attributes: event.Attributes(),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(out)
	}
}
