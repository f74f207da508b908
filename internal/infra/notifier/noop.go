package notifier

import (
	"context"

	"vicemergency-feed/internal/domain/entity"
)

// NoOpNotifier is used when a channel is disabled, so callers never need a
// nil check. Null Object pattern.
type NoOpNotifier struct{}

func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// NotifyIncident does nothing and returns nil immediately.
func (n *NoOpNotifier) NotifyIncident(ctx context.Context, incident *entity.Incident) error {
	return nil
}
