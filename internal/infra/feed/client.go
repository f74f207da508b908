// Package feed provides the HTTP client for the VICEmergency GeoJSON incident
// feed. It decodes the published FeatureCollection into domain incidents with
// reliability patterns around the fetch.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sony/gobreaker"
	"github.com/twpayne/go-geom/encoding/geojson"

	"vicemergency-feed/internal/domain/entity"
	"vicemergency-feed/internal/observability/metrics"
	"vicemergency-feed/internal/resilience/circuitbreaker"
	"vicemergency-feed/internal/resilience/retry"
)

const (
	userAgent = "vicemergency-feed"

	// maxBodyBytes caps the feed response size. The statewide feed is a few
	// megabytes at the height of fire season.
	maxBodyBytes = 32 << 20
)

// Client fetches and decodes the incident feed.
// It includes circuit breaker and retry logic for improved reliability.
type Client struct {
	client         *http.Client
	feedURL        string
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewClient creates a feed Client for the given URL using the provided HTTP
// client. It automatically configures circuit breaker and retry logic.
func NewClient(client *http.Client, feedURL string) *Client {
	return &Client{
		client:         client,
		feedURL:        feedURL,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
	}
}

// Fetch retrieves and decodes the current incident set from the feed.
// It uses circuit breaker and retry logic for improved reliability.
func (c *Client) Fetch(ctx context.Context) ([]entity.Incident, error) {
	var incidents []entity.Incident

	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doFetch(ctx)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("feed fetch circuit breaker open, request rejected",
					slog.String("url", c.feedURL),
					slog.String("state", c.circuitBreaker.State().String()))
			}
			return err
		}

		incidents = cbResult.([]entity.Incident)
		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}
	return incidents, nil
}

// doFetch performs the actual feed fetch without retry or circuit breaker.
func (c *Client) doFetch(ctx context.Context) ([]entity.Incident, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute feed request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("feed request failed: %s", string(body)),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}

	var fc geojson.FeatureCollection
	if err := fc.UnmarshalJSON(body); err != nil {
		return nil, fmt.Errorf("decode feed GeoJSON: %w", err)
	}

	incidents := make([]entity.Incident, 0, len(fc.Features))
	for _, feature := range fc.Features {
		incident, err := decodeFeature(feature)
		if err != nil {
			// Individual malformed features are skipped, not fatal: the feed
			// regularly carries warning polygons without usable geometry.
			slog.Debug("skipping feed feature",
				slog.String("feature_id", feature.ID),
				slog.Any("error", err))
			metrics.RecordEntryFiltered("invalid")
			continue
		}
		if err := incident.Validate(); err != nil {
			slog.Debug("skipping invalid incident",
				slog.String("incident_id", incident.ID),
				slog.Any("error", err))
			metrics.RecordEntryFiltered("invalid")
			continue
		}
		incidents = append(incidents, incident)
	}

	return incidents, nil
}
