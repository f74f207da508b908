package notify

import (
	"context"

	"vicemergency-feed/internal/domain/entity"
	"vicemergency-feed/internal/infra/notifier"
)

// DiscordChannel adapts the infrastructure DiscordNotifier to the Channel
// interface so Discord delivery plugs into the multi-channel dispatcher.
type DiscordChannel struct {
	notifier notifier.Notifier
	enabled  bool
}

// NewDiscordChannel creates a Discord channel. When disabled, a NoOpNotifier
// backs the channel so the interface contract always holds.
func NewDiscordChannel(config notifier.DiscordConfig) *DiscordChannel {
	var n notifier.Notifier
	if config.Enabled {
		n = notifier.NewDiscordNotifier(config)
	} else {
		n = notifier.NewNoOpNotifier()
	}

	return &DiscordChannel{
		notifier: n,
		enabled:  config.Enabled,
	}
}

// Name returns the channel identifier "discord".
func (c *DiscordChannel) Name() string {
	return "discord"
}

// IsEnabled reports whether Discord notifications are enabled via configuration.
func (c *DiscordChannel) IsEnabled() bool {
	return c.enabled
}

// Send delivers an incident notification to Discord. The underlying notifier
// handles rate limiting (30 req/min), retries and context cancellation.
func (c *DiscordChannel) Send(ctx context.Context, incident *entity.Incident) error {
	if !c.enabled {
		return ErrChannelDisabled
	}
	if incident == nil {
		return ErrInvalidIncident
	}
	return c.notifier.NotifyIncident(ctx, incident)
}
