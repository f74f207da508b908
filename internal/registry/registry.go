// Package registry owns the live set of location events, one per active
// incident, and the display projection each event renders from its feed
// entry.
package registry

import (
	"sort"
	"sync"
)

// Registry is a thread-safe store of location events keyed by external
// identifier.
type Registry struct {
	mu     sync.RWMutex
	events map[string]*LocationEvent
}

func New() *Registry {
	return &Registry{events: make(map[string]*LocationEvent)}
}

// Add registers an event under its external identifier, replacing any
// previous event for the same identifier.
func (r *Registry) Add(event *LocationEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[event.ExternalID()] = event
}

// Remove drops the event for an identifier. Removing an unknown identifier
// is a no-op.
func (r *Registry) Remove(externalID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.events, externalID)
}

// Get returns the event for an identifier, or ok=false if none is registered.
func (r *Registry) Get(externalID string) (*LocationEvent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	event, ok := r.events[externalID]
	return event, ok
}

// Len reports the number of registered events.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}

// Snapshot returns the registered events sorted by external identifier.
func (r *Registry) Snapshot() []*LocationEvent {
	r.mu.RLock()
	events := make([]*LocationEvent, 0, len(r.events))
	for _, event := range r.events {
		events = append(events, event)
	}
	r.mu.RUnlock()

	sort.Slice(events, func(i, j int) bool {
		return events[i].ExternalID() < events[j].ExternalID()
	})
	return events
}
