// Package notify dispatches incident notifications across multiple delivery
// channels (Slack, Discord) with a bounded worker pool, per-channel circuit
// breakers and observability.
package notify

import (
	"context"

	"vicemergency-feed/internal/domain/entity"
)

// Channel represents one notification delivery channel. Each implementation
// handles its own rate limiting, retries and error handling.
//
// Retry policy contract:
//   - Transient failures (5xx, network errors): retry with backoff (max 2 attempts)
//   - Rate limits (429): sleep for retry_after, then retry
//   - Client errors (4xx except 429): no retry
//   - Context timeout: no retry
//
// All methods must be safe for concurrent use.
type Channel interface {
	// Name returns the channel identifier used for logging, metrics labels
	// and health endpoints (lowercase, e.g. "slack").
	Name() string

	// IsEnabled reports whether the channel is enabled via configuration.
	// Disabled channels are skipped during dispatching.
	IsEnabled() bool

	// Send delivers a notification about a newly observed incident.
	// Returns ErrChannelDisabled when called on a disabled channel,
	// ErrInvalidIncident for a nil incident, or a wrapped network/API error.
	Send(ctx context.Context, incident *entity.Incident) error
}
