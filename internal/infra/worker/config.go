// Package worker holds the operational plumbing of the daemon: environment
// configuration, health endpoints and run metrics.
package worker

import (
	"fmt"
	"log/slog"
	"time"

	"vicemergency-feed/internal/pkg/config"
)

// WorkerConfig controls the operational parameters of the worker process.
// Feed semantics (URL, filters, scan interval) live in the YAML config; this
// struct covers only deployment concerns loaded from the environment.
type WorkerConfig struct {
	// MetricsPort is the port for the Prometheus /metrics server.
	// Range: 1024-65535. Default: 9090.
	MetricsPort int

	// HealthPort is the port for the health check HTTP server.
	// Range: 1024-65535. Default: 9091.
	HealthPort int

	// UpdateTimeout caps a single fetch-and-diff pass. After this the
	// update is cancelled and retried on the next tick.
	// Range: 5s-30m. Default: 2 minutes.
	UpdateTimeout time.Duration

	// NotifyMaxConcurrent limits concurrent notification sends.
	// Range: 1-100. Default: 10.
	NotifyMaxConcurrent int
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		MetricsPort:         9090,
		HealthPort:          9091,
		UpdateTimeout:       2 * time.Minute,
		NotifyMaxConcurrent: 10,
	}
}

// Validate checks the configuration, collecting all failures together.
func (c *WorkerConfig) Validate() error {
	var errors []error

	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errors = append(errors, fmt.Errorf("metrics port: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errors = append(errors, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidateDuration(c.UpdateTimeout, 5*time.Second, 30*time.Minute); err != nil {
		errors = append(errors, fmt.Errorf("update timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.NotifyMaxConcurrent, 1, 100); err != nil {
		errors = append(errors, fmt.Errorf("notify max concurrent: %w", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation failed: %v", errors)
	}
	return nil
}

// LoadConfigFromEnv loads worker configuration from environment variables
// with a fail-open strategy: any invalid value falls back to its default with
// a warning and a metrics increment, and a valid configuration is always
// returned.
//
// Environment variables:
//   - WORKER_METRICS_PORT: integer 1024-65535 (default: 9090)
//   - WORKER_HEALTH_PORT: integer 1024-65535 (default: 9091)
//   - UPDATE_TIMEOUT: duration string, e.g. "2m" (default: 2 minutes)
//   - NOTIFY_MAX_CONCURRENT: integer 1-100 (default: 10)
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	result := config.LoadEnvInt("WORKER_METRICS_PORT", cfg.MetricsPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.MetricsPort = result.Value.(int)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("metrics_port")
		metrics.RecordFallback("metrics_port", "default")
		logWarnings(logger, "MetricsPort", result.Warnings)
	}

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("health_port")
		metrics.RecordFallback("health_port", "default")
		logWarnings(logger, "HealthPort", result.Warnings)
	}

	result = config.LoadEnvDuration("UPDATE_TIMEOUT", cfg.UpdateTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 5*time.Second, 30*time.Minute)
	})
	cfg.UpdateTimeout = result.Value.(time.Duration)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("update_timeout")
		metrics.RecordFallback("update_timeout", "default")
		logWarnings(logger, "UpdateTimeout", result.Warnings)
	}

	result = config.LoadEnvInt("NOTIFY_MAX_CONCURRENT", cfg.NotifyMaxConcurrent, func(v int) error {
		return config.ValidateIntRange(v, 1, 100)
	})
	cfg.NotifyMaxConcurrent = result.Value.(int)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("notify_max_concurrent")
		metrics.RecordFallback("notify_max_concurrent", "default")
		logWarnings(logger, "NotifyMaxConcurrent", result.Warnings)
	}

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	// Always return a valid config (fail-open strategy).
	return &cfg, nil
}

func logWarnings(logger *slog.Logger, field string, warnings []string) {
	for _, warning := range warnings {
		logger.Warn("Configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", warning))
	}
}
