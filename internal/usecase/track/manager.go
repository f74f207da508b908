// Package track bridges the feed manager's diff callbacks to the entity
// layer: added entries become registered location events, updated and removed
// entries become per-identifier signals.
package track

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"

	"vicemergency-feed/internal/dispatcher"
	"vicemergency-feed/internal/domain/entity"
	"vicemergency-feed/internal/observability/tracing"
	"vicemergency-feed/internal/registry"
	"vicemergency-feed/internal/usecase/poll"
)

// Notifier dispatches a notification for a newly observed incident.
// Implemented by the notify service.
type Notifier interface {
	NotifyNewIncident(ctx context.Context, incident *entity.Incident) error
}

// RunMetrics records the outcome of update runs. Implemented by the worker
// metrics; may be nil, in which case runs are not recorded.
type RunMetrics interface {
	RecordUpdateRun(status string)
	RecordUpdateDuration(seconds float64)
	RecordIncidentsProcessed(count int)
	RecordLastSuccess()
}

// Options configures an EntityManager.
type Options struct {
	Source     poll.Source
	Filter     poll.Filter
	Dispatcher *dispatcher.Dispatcher
	Registry   *registry.Registry

	// Notifier may be nil when no notification channels are configured.
	// NotifyCategories limits notifications to the listed category1 values;
	// empty means notify for every added incident.
	Notifier         Notifier
	NotifyCategories []string

	ScanInterval time.Duration

	// UpdateTimeout caps a single scheduled update. Zero means the scan
	// interval is used as the timeout.
	UpdateTimeout time.Duration

	// Metrics records update run outcomes; may be nil.
	Metrics RunMetrics
}

// EntityManager owns one feed manager and drives it on a periodic schedule.
// Diff callbacks are translated into entity creation and dispatcher signals.
type EntityManager struct {
	feed       *poll.Manager
	dispatcher *dispatcher.Dispatcher
	registry   *registry.Registry

	notifier         Notifier
	notifyCategories []string

	scanInterval  time.Duration
	updateTimeout time.Duration
	metrics       RunMetrics

	mu      sync.Mutex
	cron    *cron.Cron
	started bool
}

// NewEntityManager wires the feed manager's callbacks into a new manager.
// Start must be called to begin periodic updates; the caller is expected to
// trigger an immediate first Update itself.
func NewEntityManager(opts Options) *EntityManager {
	updateTimeout := opts.UpdateTimeout
	if updateTimeout <= 0 {
		updateTimeout = opts.ScanInterval
	}
	m := &EntityManager{
		dispatcher:       opts.Dispatcher,
		registry:         opts.Registry,
		notifier:         opts.Notifier,
		notifyCategories: opts.NotifyCategories,
		scanInterval:     opts.ScanInterval,
		updateTimeout:    updateTimeout,
		metrics:          opts.Metrics,
	}
	m.feed = poll.NewManager(opts.Source, poll.Callbacks{
		Added:   m.onAdded,
		Updated: m.onUpdated,
		Removed: m.onRemoved,
	}, opts.Filter)
	return m
}

// Start registers the periodic update with the scheduler. It does not fetch
// immediately. Starting twice is an error.
func (m *EntityManager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return fmt.Errorf("entity manager already started")
	}

	c := cron.New()
	schedule := fmt.Sprintf("@every %s", m.scanInterval)
	if _, err := c.AddFunc(schedule, m.scheduledUpdate); err != nil {
		return fmt.Errorf("register update schedule %q: %w", schedule, err)
	}
	c.Start()

	m.cron = c
	m.started = true
	slog.Info("entity manager started", slog.Duration("scan_interval", m.scanInterval))
	return nil
}

// scheduledUpdate runs one update on the scheduler's goroutine. Errors are
// logged and retried on the next tick.
func (m *EntityManager) scheduledUpdate() {
	ctx, cancel := context.WithTimeout(context.Background(), m.updateTimeout)
	defer cancel()

	if err := m.Update(ctx); err != nil {
		slog.Error("scheduled feed update failed", slog.Any("error", err))
	}
}

// Update runs one fetch-and-diff pass. Failures propagate to the caller; the
// entry set and registered entities are left untouched on error.
func (m *EntityManager) Update(ctx context.Context) error {
	ctx, span := tracing.GetTracer().Start(ctx, "EntityManager.Update")
	defer span.End()

	start := time.Now()
	stats, err := m.feed.Update(ctx)
	if err != nil {
		span.RecordError(err)
		if m.metrics != nil {
			m.metrics.RecordUpdateRun("failure")
			m.metrics.RecordUpdateDuration(time.Since(start).Seconds())
		}
		return err
	}

	span.SetAttributes(
		attribute.Int("feed.fetched", stats.Fetched),
		attribute.Int("feed.added", stats.Added),
		attribute.Int("feed.updated", stats.Updated),
		attribute.Int("feed.removed", stats.Removed),
	)
	if m.metrics != nil {
		m.metrics.RecordUpdateRun("success")
		m.metrics.RecordUpdateDuration(time.Since(start).Seconds())
		m.metrics.RecordIncidentsProcessed(stats.Fetched)
		m.metrics.RecordLastSuccess()
	}
	return nil
}

// Stop deregisters the periodic update. Safe to call before Start and safe
// to call repeatedly; an update already in flight is not interrupted.
func (m *EntityManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cron != nil {
		m.cron.Stop()
		m.cron = nil
	}
	m.started = false
	slog.Info("entity manager stopped")
}

// Entry is the read-through accessor into the feed manager's current entry
// set. Unknown identifiers return ok=false.
func (m *EntityManager) Entry(externalID string) (entity.Incident, bool) {
	return m.feed.Entry(externalID)
}

// Entries exposes a copy of the current entry snapshot.
func (m *EntityManager) Entries() map[string]entity.Incident {
	return m.feed.Entries()
}

// onAdded constructs and registers a location event. The event reads its own
// initial state in its first render pass, so no update signal is needed.
func (m *EntityManager) onAdded(ctx context.Context, externalID string) {
	event := registry.NewLocationEvent(externalID, m.feed)
	m.registry.Add(event)
	event.Attach(ctx, m.dispatcher, func(_ context.Context, id string) {
		m.registry.Remove(id)
	})

	slog.Debug("incident added",
		slog.String("external_id", externalID),
		slog.String("name", event.Name()))

	m.maybeNotify(ctx, externalID)
}

func (m *EntityManager) onUpdated(ctx context.Context, externalID string) {
	m.dispatcher.Send(ctx, dispatcher.SignalUpdate, externalID)
}

func (m *EntityManager) onRemoved(ctx context.Context, externalID string) {
	m.dispatcher.Send(ctx, dispatcher.SignalDelete, externalID)
}

// maybeNotify dispatches a notification for a newly added incident when it
// matches the configured notification categories.
func (m *EntityManager) maybeNotify(ctx context.Context, externalID string) {
	if m.notifier == nil {
		return
	}
	incident, ok := m.feed.Entry(externalID)
	if !ok {
		return
	}
	if len(m.notifyCategories) > 0 && !containsCategory(m.notifyCategories, incident.Category1) {
		return
	}
	if err := m.notifier.NotifyNewIncident(ctx, &incident); err != nil {
		slog.Warn("incident notification dispatch failed",
			slog.String("external_id", externalID),
			slog.Any("error", err))
	}
}

func containsCategory(categories []string, category string) bool {
	for _, c := range categories {
		if c == category {
			return true
		}
	}
	return false
}
