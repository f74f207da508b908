package notify

import (
	"context"

	"vicemergency-feed/internal/domain/entity"
	"vicemergency-feed/internal/infra/notifier"
)

// SlackChannel adapts the infrastructure SlackNotifier to the Channel
// interface so Slack delivery plugs into the multi-channel dispatcher.
type SlackChannel struct {
	notifier notifier.Notifier
	enabled  bool
}

// NewSlackChannel creates a Slack channel. When disabled, a NoOpNotifier
// backs the channel so the interface contract always holds.
func NewSlackChannel(config notifier.SlackConfig) *SlackChannel {
	var n notifier.Notifier
	if config.Enabled {
		n = notifier.NewSlackNotifier(config)
	} else {
		n = notifier.NewNoOpNotifier()
	}

	return &SlackChannel{
		notifier: n,
		enabled:  config.Enabled,
	}
}

// Name returns the channel identifier "slack".
func (c *SlackChannel) Name() string {
	return "slack"
}

// IsEnabled reports whether Slack notifications are enabled via configuration.
func (c *SlackChannel) IsEnabled() bool {
	return c.enabled
}

// Send delivers an incident notification to Slack. The underlying notifier
// handles rate limiting (1 req/s), retries and context cancellation.
func (c *SlackChannel) Send(ctx context.Context, incident *entity.Incident) error {
	if !c.enabled {
		return ErrChannelDisabled
	}
	if incident == nil {
		return ErrInvalidIncident
	}
	return c.notifier.NotifyIncident(ctx, incident)
}
