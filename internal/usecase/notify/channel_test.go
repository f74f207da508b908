package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"vicemergency-feed/internal/infra/notifier"
)

func TestSlackChannel_Disabled(t *testing.T) {
	channel := NewSlackChannel(notifier.SlackConfig{Enabled: false})

	assert.Equal(t, "slack", channel.Name())
	assert.False(t, channel.IsEnabled())
	assert.ErrorIs(t, channel.Send(context.Background(), testIncident()), ErrChannelDisabled)
}

func TestSlackChannel_NilIncident(t *testing.T) {
	channel := NewSlackChannel(notifier.SlackConfig{
		Enabled:    true,
		WebhookURL: "http://example.invalid",
		Timeout:    time.Second,
	})

	assert.ErrorIs(t, channel.Send(context.Background(), nil), ErrInvalidIncident)
}

func TestDiscordChannel_Disabled(t *testing.T) {
	channel := NewDiscordChannel(notifier.DiscordConfig{Enabled: false})

	assert.Equal(t, "discord", channel.Name())
	assert.False(t, channel.IsEnabled())
	assert.ErrorIs(t, channel.Send(context.Background(), testIncident()), ErrChannelDisabled)
}

func TestDiscordChannel_NilIncident(t *testing.T) {
	channel := NewDiscordChannel(notifier.DiscordConfig{
		Enabled:    true,
		WebhookURL: "http://example.invalid",
		Timeout:    time.Second,
	})

	assert.ErrorIs(t, channel.Send(context.Background(), nil), ErrInvalidIncident)
}
