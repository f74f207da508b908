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

// SlackConfig contains configuration for Slack webhook notifications.
type SlackConfig struct {
	// Enabled indicates whether Slack notifications are enabled
	Enabled bool

	// WebhookURL is the Slack Incoming Webhook URL (includes authentication token)
	WebhookURL string

	// Timeout is the HTTP request timeout for Slack API calls
	Timeout time.Duration
}

// SlackNotifier sends incident notifications to Slack via Incoming Webhook.
type SlackNotifier struct {
	config      SlackConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewSlackNotifier creates a SlackNotifier. The rate limiter is set to
// 1 request/second with burst of 1 (Slack Webhook limit: 1 message/second).
func NewSlackNotifier(config SlackConfig) *SlackNotifier {
	return &SlackNotifier{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(1.0, 1),
	}
}

// SlackWebhookPayload represents the JSON payload sent to Slack webhook using Block Kit.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`   // Fallback text (required)
	Blocks []SlackBlock `json:"blocks"` // Rich formatting blocks
}

// SlackBlock represents a Slack Block Kit block.
type SlackBlock struct {
	Type     string            `json:"type"`
	Text     *SlackTextObject  `json:"text,omitempty"`
	Elements []SlackTextObject `json:"elements,omitempty"`
}

// SlackTextObject represents a text object in Slack Block Kit.
type SlackTextObject struct {
	Type string `json:"type"` // "mrkdwn" or "plain_text"
	Text string `json:"text"`
}

const (
	// Slack Block Kit limits
	maxSectionTextLength = 3000
	maxFallbackLength    = 150

	slackTruncationSuffix = "..."
)

// buildBlockKitPayload creates a Slack webhook payload from an incident:
// a section block with the composite name, status and description, and a
// context block with attribution, distance and publication time.
func (s *SlackNotifier) buildBlockKitPayload(incident *entity.Incident) SlackWebhookPayload {
	fallbackText := incident.Title()
	if len(fallbackText) > maxFallbackLength {
		fallbackText = fallbackText[:maxFallbackLength-len(slackTruncationSuffix)] + slackTruncationSuffix
	}

	sectionText := fmt.Sprintf("*%s*", incident.Title())
	if incident.Status != "" {
		sectionText += fmt.Sprintf("\nStatus: %s", incident.Status)
	}
	if incident.Description != "" {
		sectionText += "\n\n" + incident.Description
	}
	sectionText = truncateText(sectionText, maxSectionTextLength, slackTruncationSuffix)

	contextText := fmt.Sprintf("%s • %.1f km away", entity.Attribution, incident.DistanceKm)
	if !incident.PublicationDate.IsZero() {
		contextText += " • " + incident.PublicationDate.Format(time.RFC3339)
	}

	return SlackWebhookPayload{
		Text: fallbackText,
		Blocks: []SlackBlock{
			{
				Type: "section",
				Text: &SlackTextObject{Type: "mrkdwn", Text: sectionText},
			},
			{
				Type: "context",
				Elements: []SlackTextObject{
					{Type: "mrkdwn", Text: contextText},
				},
			},
		},
	}
}

// sendWebhookRequest sends a single Slack webhook request.
//
// Error types:
//   - 429: rate limit error (retried after retry_after)
//   - 4xx (non-429): client error (non-retryable)
//   - 5xx: server error (retryable)
//   - network error: retryable
func (s *SlackNotifier) sendWebhookRequest(ctx context.Context, incident *entity.Incident) error {
	payload := s.buildBlockKitPayload(incident)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
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
			Message:    "Slack rate limit exceeded",
			RetryAfter: extractRetryAfter(resp, body),
		}
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Slack API client error: %s", string(body)),
		}
	}

	if resp.StatusCode >= 500 {
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Slack API server error: %s", string(body)),
		}
	}

	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
}

// sendWebhookRequestWithRetry retries transient failures.
//
// Retry strategy:
//   - Max attempts: 2
//   - 429 errors: sleep for retry_after from the Slack response
//   - Server errors (5xx): exponential backoff (5s, 10s)
//   - Client errors (4xx): fail immediately
func (s *SlackNotifier) sendWebhookRequestWithRetry(ctx context.Context, incident *entity.Incident) error {
	const (
		maxAttempts = 2
		baseDelay   = 5 * time.Second
	)

	requestID, _ := ctx.Value(requestIDKey).(string)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := s.sendWebhookRequest(ctx, incident)
		if err == nil {
			slog.Info("Slack notification successful",
				slog.String("request_id", requestID),
				slog.String("incident_id", incident.ID),
				slog.Int("attempt", attempt))
			return nil
		}

		lastErr = err

		if rateLimitErr, ok := is429Error(err); ok {
			slog.Warn("Slack rate limit hit, backing off",
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
			slog.Error("Slack notification failed with non-retryable error",
				slog.String("request_id", requestID),
				slog.String("incident_id", incident.ID),
				slog.Any("error", err),
				slog.Int("attempt", attempt))
			return err
		}

		if attempt < maxAttempts {
			delay := baseDelay * time.Duration(attempt)
			slog.Warn("Slack API request failed, retrying",
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

	slog.Error("Slack notification failed after all retries",
		slog.String("request_id", requestID),
		slog.String("incident_id", incident.ID),
		slog.Any("error", lastErr),
		slog.Int("max_attempts", maxAttempts))

	return fmt.Errorf("slack notification failed after %d attempts: %w", maxAttempts, lastErr)
}

// NotifyIncident sends a Slack notification for a newly observed incident.
// This method implements the Notifier interface.
func (s *SlackNotifier) NotifyIncident(ctx context.Context, incident *entity.Incident) error {
	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	slog.Info("Starting Slack notification",
		slog.String("request_id", requestID),
		slog.String("incident_id", incident.ID),
		slog.String("category", incident.Category1))

	if err := s.rateLimiter.Allow(ctx); err != nil {
		slog.Error("Rate limiter error",
			slog.String("request_id", requestID),
			slog.String("incident_id", incident.ID),
			slog.Any("error", err))
		return fmt.Errorf("rate limiter error: %w", err)
	}

	return s.sendWebhookRequestWithRetry(ctx, incident)
}
