package notify

import "errors"

// Sentinel errors for notify use case operations.
var (
	// ErrChannelDisabled indicates that Send() was called on a disabled channel.
	ErrChannelDisabled = errors.New("channel is disabled")

	// ErrInvalidIncident indicates a nil incident or one missing its identifier.
	ErrInvalidIncident = errors.New("invalid incident data")

	// ErrNotificationDropped indicates a notification was dropped due to
	// worker pool saturation. Non-critical, used for observability.
	ErrNotificationDropped = errors.New("notification dropped due to pool saturation")

	// ErrCircuitBreakerOpen indicates the channel's circuit breaker is open
	// and notifications are being rejected until the timeout elapses.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open for this channel")
)
