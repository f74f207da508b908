// Package notifier sends incident notifications to webhook services. It
// defines the Notifier interface so delivery mechanisms (Slack, Discord, a
// no-op when disabled) are interchangeable behind dependency injection.
package notifier

import (
	"context"

	"vicemergency-feed/internal/domain/entity"
)

// Notifier sends a notification about a newly observed incident.
// Implementations handle rate limiting, retries and error logging internally
// and respect context cancellation.
type Notifier interface {
	NotifyIncident(ctx context.Context, incident *entity.Incident) error
}
