// Package poll implements the feed manager: it owns the current incident
// snapshot, applies the configured filters, and diffs each fetch against the
// previous one, emitting added/updated/removed callbacks keyed by the feed's
// stable external identifier.
package poll

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"vicemergency-feed/internal/domain/entity"
	"vicemergency-feed/internal/geo"
	"vicemergency-feed/internal/observability/metrics"
)

// Source fetches the full current incident set from the feed.
type Source interface {
	Fetch(ctx context.Context) ([]entity.Incident, error)
}

// Callbacks receive diff results per external identifier. Any callback may
// be nil. Callbacks are invoked sequentially, in sorted identifier order,
// after the snapshot has been swapped, so a callback reading back through
// Entry always observes the new poll.
type Callbacks struct {
	Added   func(ctx context.Context, externalID string)
	Updated func(ctx context.Context, externalID string)
	Removed func(ctx context.Context, externalID string)
}

// Filter holds the entry filtering rules applied before diffing.
type Filter struct {
	// Home is the reference point for distance computation.
	Home geo.Point

	// RadiusKm excludes non-statewide entries farther than this from Home.
	RadiusKm float64

	// IncludeCategories, when non-empty, keeps only entries whose category1
	// is listed. ExcludeCategories drops listed categories and wins over
	// the include list.
	IncludeCategories []string
	ExcludeCategories []string

	// Statewide controls whether statewide-flagged entries are surfaced at
	// all. Statewide entries that pass are exempt from the radius filter.
	Statewide bool
}

// UpdateStats summarizes one fetch-and-diff pass.
type UpdateStats struct {
	Fetched  int
	Filtered int
	Added    int
	Updated  int
	Removed  int
	Duration time.Duration
}

// Manager is the feed manager. All state transitions happen inside Update;
// Entry and Entries serve read-only snapshots to entities and the HTTP view.
type Manager struct {
	source    Source
	callbacks Callbacks
	filter    Filter

	mu      sync.RWMutex
	entries map[string]entity.Incident
}

// NewManager creates a feed manager with an empty entry set.
func NewManager(source Source, callbacks Callbacks, filter Filter) *Manager {
	return &Manager{
		source:    source,
		callbacks: callbacks,
		filter:    filter,
		entries:   make(map[string]entity.Incident),
	}
}

// Update performs one fetch-and-diff pass. On fetch failure the entry set is
// left untouched and the error propagates to the scheduler; the next tick
// retries. Entities signalled here may re-read a snapshot newer than the one
// that triggered the signal, which is acceptable (eventual consistency).
func (m *Manager) Update(ctx context.Context) (*UpdateStats, error) {
	start := time.Now()

	incidents, err := m.source.Fetch(ctx)
	metrics.RecordFeedFetch(err == nil, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("fetch incident feed: %w", err)
	}

	stats := &UpdateStats{Fetched: len(incidents)}

	next := make(map[string]entity.Incident, len(incidents))
	for _, incident := range incidents {
		if !m.keep(&incident) {
			stats.Filtered++
			continue
		}
		next[incident.ID] = incident
	}

	m.mu.Lock()
	previous := m.entries
	m.entries = next
	m.mu.Unlock()

	var added, updated, removed []string
	for id := range next {
		if _, ok := previous[id]; ok {
			updated = append(updated, id)
		} else {
			added = append(added, id)
		}
	}
	for id := range previous {
		if _, ok := next[id]; !ok {
			removed = append(removed, id)
		}
	}
	sort.Strings(added)
	sort.Strings(updated)
	sort.Strings(removed)

	for _, id := range added {
		if m.callbacks.Added != nil {
			m.callbacks.Added(ctx, id)
		}
	}
	for _, id := range updated {
		if m.callbacks.Updated != nil {
			m.callbacks.Updated(ctx, id)
		}
	}
	for _, id := range removed {
		if m.callbacks.Removed != nil {
			m.callbacks.Removed(ctx, id)
		}
	}

	stats.Added = len(added)
	stats.Updated = len(updated)
	stats.Removed = len(removed)
	stats.Duration = time.Since(start)

	metrics.RecordDiff(stats.Added, stats.Updated, stats.Removed)
	metrics.SetActiveIncidents(len(next))

	slog.Debug("feed update completed",
		slog.Int("fetched", stats.Fetched),
		slog.Int("filtered", stats.Filtered),
		slog.Int("added", stats.Added),
		slog.Int("updated", stats.Updated),
		slog.Int("removed", stats.Removed),
		slog.Duration("duration", stats.Duration))

	return stats, nil
}

// keep applies category, statewide and radius filters and fills in the
// distance to the reference point on entries that survive.
func (m *Manager) keep(incident *entity.Incident) bool {
	if len(m.filter.IncludeCategories) > 0 && !contains(m.filter.IncludeCategories, incident.Category1) {
		metrics.RecordEntryFiltered("category")
		return false
	}
	if contains(m.filter.ExcludeCategories, incident.Category1) {
		metrics.RecordEntryFiltered("category")
		return false
	}

	if incident.Statewide && !m.filter.Statewide {
		metrics.RecordEntryFiltered("statewide")
		return false
	}

	incident.DistanceKm = geo.DistanceKm(m.filter.Home, geo.Point{
		Latitude:  incident.Latitude,
		Longitude: incident.Longitude,
	})

	// Statewide entries are relevant everywhere, so the radius only applies
	// to localized incidents.
	if !incident.Statewide && incident.DistanceKm > m.filter.RadiusKm {
		metrics.RecordEntryFiltered("radius")
		return false
	}

	return true
}

// Entry returns the current entry for an external identifier. An unknown
// identifier yields ok=false, never an error.
func (m *Manager) Entry(externalID string) (entity.Incident, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	incident, ok := m.entries[externalID]
	return incident, ok
}

// Entries returns a copy of the current snapshot keyed by external identifier.
func (m *Manager) Entries() map[string]entity.Incident {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]entity.Incident, len(m.entries))
	for id, incident := range m.entries {
		out[id] = incident
	}
	return out
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
