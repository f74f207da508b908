package registry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"vicemergency-feed/internal/dispatcher"
	"vicemergency-feed/internal/domain/entity"
)

// Display units and fixed identification strings for rendered events.
const (
	DistanceUnit = "km"
	SourceTag    = entity.SourceTag
)

// EntryGetter is the read-through accessor a location event uses to refresh
// itself. Satisfied by the poll manager.
type EntryGetter interface {
	Entry(externalID string) (entity.Incident, bool)
}

// State tracks a location event through its lifecycle.
type State int

const (
	// StatePending means the event is constructed but has not rendered yet.
	StatePending State = iota
	// StateActive means the event has copied its first snapshot.
	StateActive
	// StateRemoved means the event has been torn down.
	StateRemoved
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateActive:
		return "active"
	case StateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// LocationEvent is the display-layer projection of exactly one feed entry.
// Its identifier matches the entry's external identifier for its entire
// lifetime. All display fields are a denormalized copy taken at render time;
// if the entry vanishes between the signal and the render, the stale copy is
// retained until the delete signal arrives.
type LocationEvent struct {
	externalID string
	entries    EntryGetter

	mu          sync.Mutex
	state       State
	incident    entity.Incident
	rendered    bool
	unsubUpdate func()
	unsubDelete func()
	onRemove    func(ctx context.Context, externalID string)
}

// NewLocationEvent constructs a pending event. Display fields stay unset
// until Attach runs the first render pass.
func NewLocationEvent(externalID string, entries EntryGetter) *LocationEvent {
	return &LocationEvent{
		externalID: externalID,
		entries:    entries,
		state:      StatePending,
	}
}

// Attach subscribes the event to its update and delete signals and performs
// the first render. onRemove is invoked after teardown when the delete signal
// arrives, so the owner can drop the event from its registry.
func (e *LocationEvent) Attach(ctx context.Context, d *dispatcher.Dispatcher, onRemove func(ctx context.Context, externalID string)) {
	e.mu.Lock()
	e.onRemove = onRemove
	e.unsubUpdate = d.Subscribe(dispatcher.SignalUpdate, e.externalID, e.handleUpdate)
	e.unsubDelete = d.Subscribe(dispatcher.SignalDelete, e.externalID, e.handleDelete)
	e.mu.Unlock()

	e.render(ctx)
}

func (e *LocationEvent) handleUpdate(ctx context.Context, _ string) {
	e.render(ctx)
}

// handleDelete tears down both subscriptions before notifying the owner, so
// no callback can fire into a removed event.
func (e *LocationEvent) handleDelete(ctx context.Context, _ string) {
	e.mu.Lock()
	if e.state == StateRemoved {
		e.mu.Unlock()
		return
	}
	e.state = StateRemoved
	unsubUpdate, unsubDelete := e.unsubUpdate, e.unsubDelete
	onRemove := e.onRemove
	e.mu.Unlock()

	unsubUpdate()
	unsubDelete()

	slog.Debug("location event removed", slog.String("external_id", e.externalID))
	if onRemove != nil {
		onRemove(ctx, e.externalID)
	}
}

// render re-reads the entry and overwrites all display fields. An absent
// entry leaves the previous copy in place: the delete signal, not the render
// pass, decides removal.
func (e *LocationEvent) render(_ context.Context) {
	incident, ok := e.entries.Entry(e.externalID)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateRemoved {
		return
	}
	if ok {
		e.incident = incident
		e.rendered = true
	}
	if e.state == StatePending && e.rendered {
		e.state = StateActive
	}
}

// ExternalID returns the stable feed identifier this event projects.
func (e *LocationEvent) ExternalID() string { return e.externalID }

// State reports the current lifecycle state.
func (e *LocationEvent) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Name is the composite display name, category and location joined with a
// literal " - " separator.
func (e *LocationEvent) Name() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.incident.Title()
}

// Distance reports the distance to the reference point in kilometers.
func (e *LocationEvent) Distance() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.incident.DistanceKm
}

// Coordinates returns the rendered latitude and longitude.
func (e *LocationEvent) Coordinates() (lat, lon float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.incident.Latitude, e.incident.Longitude
}

// Unit returns the unit of the distance value.
func (e *LocationEvent) Unit() string { return DistanceUnit }

// Source returns the fixed tag identifying this integration.
func (e *LocationEvent) Source() string { return SourceTag }

// Icon picks a display icon from the current status and category fields.
// Rules are evaluated in fixed priority order; the first match wins, so a
// resolved status outranks the category icons.
func (e *LocationEvent) Icon() string {
	e.mu.Lock()
	incident := e.incident
	e.mu.Unlock()
	return iconFor(incident.Status, incident.Category1, incident.Category2)
}

func iconFor(status, category1, category2 string) string {
	switch {
	case status == entity.StatusSafe || status == entity.StatusComplete:
		return "mdi:map-marker-check"
	case status == entity.StatusUnknown:
		return "mdi:map-marker-question"
	case category1 == "Rescue" && category2 == "Rescue Road Trap":
		return "mdi:car-emergency"
	case category1 == "Fire":
		if status == entity.StatusUnderControl {
			return "mdi:fire"
		}
		return "mdi:fire-alert"
	case category1 == "Tree Down":
		return "mdi:tree"
	case category1 == "Flooding":
		return "mdi:house-flood"
	case status == entity.StatusWarning:
		return "mdi:alert"
	default:
		return "mdi:alarm-light"
	}
}

// attributePair is one candidate entry in the projected attribute map.
type attributePair struct {
	key   string
	value interface{}
}

// Attributes projects the rendered entry into a key/value mapping. A pair is
// included when its value is truthy or is a boolean, so statewide=false
// survives while empty strings, zero counts and zero timestamps are dropped.
// Each key appears at most once.
func (e *LocationEvent) Attributes() map[string]interface{} {
	e.mu.Lock()
	incident := e.incident
	e.mu.Unlock()

	pairs := []attributePair{
		{"id", incident.ID},
		{"location", incident.Location},
		{"attribution", entity.Attribution},
		{"category1", incident.Category1},
		{"category2", incident.Category2},
		{"description", incident.Description},
		{"publication_date", incident.PublicationDate},
		{"sourceTitle", incident.SourceTitle},
		{"sourceOrg", incident.SourceOrg},
		{"resources", incident.Resources},
		{"size", incident.Size},
		{"sizefmt", incident.SizeFmt},
		{"status", incident.Status},
		{"statewide", incident.Statewide},
		{"type", incident.Type},
	}

	attributes := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		if includeAttribute(pair.value) {
			attributes[pair.key] = pair.value
		}
	}
	return attributes
}

func includeAttribute(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return true
	case string:
		return v != ""
	case int:
		return v != 0
	case float64:
		return v != 0
	case time.Time:
		return !v.IsZero()
	default:
		return value != nil
	}
}
