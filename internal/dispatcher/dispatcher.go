// Package dispatcher routes per-incident signals to their observers. Each
// geolocation entity subscribes for its own external identifier, so a feed
// diff touching one incident never wakes the others.
package dispatcher

import (
	"context"
	"sync"
)

// Signal identifies the kind of per-incident event being dispatched.
type Signal string

const (
	// SignalUpdate fires when an incident is added or its entry refreshed.
	SignalUpdate Signal = "update"
	// SignalDelete fires when an incident leaves the feed.
	SignalDelete Signal = "delete"
)

// Handler observes signals for a single external identifier.
type Handler func(ctx context.Context, externalID string)

type subscriptionKey struct {
	signal     Signal
	externalID string
}

// Dispatcher is a thread-safe observer registry keyed by signal and external
// identifier. The zero value is not usable; call New.
type Dispatcher struct {
	mu     sync.RWMutex
	nextID int
	subs   map[subscriptionKey]map[int]Handler
}

func New() *Dispatcher {
	return &Dispatcher{subs: make(map[subscriptionKey]map[int]Handler)}
}

// Subscribe registers a handler for one signal on one external identifier and
// returns an unsubscribe function. Unsubscribing twice is a no-op.
func (d *Dispatcher) Subscribe(signal Signal, externalID string, handler Handler) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := subscriptionKey{signal: signal, externalID: externalID}
	if d.subs[key] == nil {
		d.subs[key] = make(map[int]Handler)
	}
	d.nextID++
	id := d.nextID
	d.subs[key][id] = handler

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			delete(d.subs[key], id)
			if len(d.subs[key]) == 0 {
				delete(d.subs, key)
			}
		})
	}
}

// Send delivers a signal to every handler subscribed for the identifier.
// Identifiers with no subscribers are silently ignored. Handlers run
// synchronously on the caller's goroutine.
func (d *Dispatcher) Send(ctx context.Context, signal Signal, externalID string) {
	d.mu.RLock()
	handlers := make([]Handler, 0, len(d.subs[subscriptionKey{signal: signal, externalID: externalID}]))
	for _, h := range d.subs[subscriptionKey{signal: signal, externalID: externalID}] {
		handlers = append(handlers, h)
	}
	d.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, externalID)
	}
}

// SubscriberCount reports how many handlers are registered for a signal and
// identifier. Used by tests and the health view.
func (d *Dispatcher) SubscriberCount(signal Signal, externalID string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subs[subscriptionKey{signal: signal, externalID: externalID}])
}
