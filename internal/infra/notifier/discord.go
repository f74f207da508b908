package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"vicemergency-feed/internal/domain/entity"
)

// DiscordConfig contains configuration for Discord webhook notifications.
type DiscordConfig struct {
	// Enabled indicates whether Discord notifications are enabled
	Enabled bool

	// WebhookURL is the Discord webhook URL (includes authentication token)
	WebhookURL string

	// Timeout is the HTTP request timeout for Discord API calls
	Timeout time.Duration
}

// DiscordNotifier sends incident notifications to Discord via webhook.
type DiscordNotifier struct {
	config      DiscordConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewDiscordNotifier creates a DiscordNotifier. The rate limiter is set to
// 0.5 requests/second with burst of 3 (Discord Webhook limit: 30/minute).
func NewDiscordNotifier(config DiscordConfig) *DiscordNotifier {
	return &DiscordNotifier{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(0.5, 3),
	}
}

// DiscordWebhookPayload represents the JSON payload sent to Discord webhook.
type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

// DiscordEmbed represents a Discord embed message.
type DiscordEmbed struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Color       int                `json:"color"`
	Footer      DiscordEmbedFooter `json:"footer"`
	Timestamp   string             `json:"timestamp,omitempty"`
}

// DiscordEmbedFooter represents the footer of a Discord embed.
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

const (
	// Discord limits
	maxTitleLength       = 256
	maxDescriptionLength = 4096
	truncationSuffix     = "..."
)

// Embed colors by alert severity.
const (
	colorRed    = 0xED4245 // Emergency Warning
	colorOrange = 0xE67E22 // Watch and Act
	colorYellow = 0xF1C40F // Advice
	colorBlue   = 0x5865F2 // everything else
)

func embedColor(category1 string) int {
	switch category1 {
	case entity.CategoryEmergencyWarning:
		return colorRed
	case entity.CategoryWatchAndAct:
		return colorOrange
	case entity.CategoryAdvice:
		return colorYellow
	default:
		return colorBlue
	}
}

// buildEmbedPayload creates a Discord webhook payload from an incident. The
// embed color encodes the alert severity.
func (d *DiscordNotifier) buildEmbedPayload(incident *entity.Incident) DiscordWebhookPayload {
	title := incident.Title()
	if len(title) > maxTitleLength {
		title = title[:maxTitleLength]
	}

	description := incident.Description
	if incident.Status != "" {
		description = fmt.Sprintf("Status: %s\n\n%s", incident.Status, description)
	}
	description = truncateText(description, maxDescriptionLength, truncationSuffix)

	embed := DiscordEmbed{
		Title:       title,
		Description: description,
		Color:       embedColor(incident.Category1),
		Footer: DiscordEmbedFooter{
			Text: fmt.Sprintf("%s • %.1f km away", entity.Attribution, incident.DistanceKm),
		},
	}
	if !incident.PublicationDate.IsZero() {
		embed.Timestamp = incident.PublicationDate.Format(time.RFC3339)
	}

	return DiscordWebhookPayload{
		Embeds: []DiscordEmbed{embed},
	}
}

// sendWebhookRequest sends a single Discord webhook request.
//
// Error types:
//   - 429: rate limit error (retried after retry_after)
//   - 4xx (non-429): client error (non-retryable)
//   - 5xx: server error (retryable)
//   - network error: retryable
func (d *DiscordNotifier) sendWebhookRequest(ctx context.Context, incident *entity.Incident) error {
	payload := d.buildEmbedPayload(incident)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.config.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{
			Message:    "Discord rate limit exceeded",
			RetryAfter: extractRetryAfter(resp, body),
		}
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Discord API client error: %s", string(body)),
		}
	}

	if resp.StatusCode >= 500 {
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Discord API server error: %s", string(body)),
		}
	}

	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
}

// sendWebhookRequestWithRetry retries transient failures.
//
// Retry strategy:
//   - Max attempts: 2
//   - 429 errors: sleep for retry_after from the Discord response
//   - Server errors (5xx): exponential backoff (5s, 10s)
//   - Client errors (4xx): fail immediately
func (d *DiscordNotifier) sendWebhookRequestWithRetry(ctx context.Context, incident *entity.Incident) error {
	const (
		maxAttempts = 2
		baseDelay   = 5 * time.Second
	)

	requestID, _ := ctx.Value(requestIDKey).(string)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := d.sendWebhookRequest(ctx, incident)
		if err == nil {
			slog.Info("Discord notification successful",
				slog.String("request_id", requestID),
				slog.String("incident_id", incident.ID),
				slog.Int("attempt", attempt))
			return nil
		}

		lastErr = err

		if rateLimitErr, ok := is429Error(err); ok {
			slog.Warn("Discord rate limit hit, backing off",
				slog.String("request_id", requestID),
				slog.String("incident_id", incident.ID),
				slog.Duration("retry_after", rateLimitErr.RetryAfter),
				slog.Int("attempt", attempt))

			select {
			case <-time.After(rateLimitErr.RetryAfter):
				continue
			case <-ctx.Done():
				return fmt.Errorf("context canceled during rate limit backoff: %w", ctx.Err())
			}
		}

		if !isRetryableError(err) {
			slog.Error("Discord notification failed with non-retryable error",
				slog.String("request_id", requestID),
				slog.String("incident_id", incident.ID),
				slog.Any("error", err),
				slog.Int("attempt", attempt))
			return err
		}

		if attempt < maxAttempts {
			delay := baseDelay * time.Duration(attempt)
			slog.Warn("Discord API request failed, retrying",
				slog.String("request_id", requestID),
				slog.String("incident_id", incident.ID),
				slog.Any("error", err),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay))

			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return fmt.Errorf("context canceled during retry backoff: %w", ctx.Err())
			}
		}
	}

	slog.Error("Discord notification failed after all retries",
		slog.String("request_id", requestID),
		slog.String("incident_id", incident.ID),
		slog.Any("error", lastErr),
		slog.Int("max_attempts", maxAttempts))

	return fmt.Errorf("discord notification failed after %d attempts: %w", maxAttempts, lastErr)
}

// NotifyIncident sends a Discord notification for a newly observed incident.
// This method implements the Notifier interface.
func (d *DiscordNotifier) NotifyIncident(ctx context.Context, incident *entity.Incident) error {
	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	slog.Info("Starting Discord notification",
		slog.String("request_id", requestID),
		slog.String("incident_id", incident.ID),
		slog.String("category", incident.Category1))

	if err := d.rateLimiter.Allow(ctx); err != nil {
		slog.Error("Rate limiter error",
			slog.String("request_id", requestID),
			slog.String("incident_id", incident.ID),
			slog.Any("error", err))
		return fmt.Errorf("rate limiter error: %w", err)
	}

	return d.sendWebhookRequestWithRetry(ctx, incident)
}
