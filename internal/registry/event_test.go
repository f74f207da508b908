package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vicemergency-feed/internal/dispatcher"
	"vicemergency-feed/internal/domain/entity"
)

type stubEntries struct {
	entries map[string]entity.Incident
}

func (s *stubEntries) Entry(externalID string) (entity.Incident, bool) {
	incident, ok := s.entries[externalID]
	return incident, ok
}

func fireIncident() entity.Incident {
	return entity.Incident{
		ID:         "339233",
		Category1:  "Fire",
		Category2:  "Bushfire",
		Location:   "BUNYIP STATE PARK",
		Latitude:   -37.56,
		Longitude:  145.12,
		DistanceKm: 42.5,
		Status:     "Going",
	}
}

func TestIconFor_PriorityOrder(t *testing.T) {
	tests := []struct {
		name      string
		status    string
		category1 string
		category2 string
		want      string
	}{
		{"safe outranks fire", "Safe", "Fire", "", "mdi:map-marker-check"},
		{"complete", "Complete", "Flooding", "", "mdi:map-marker-check"},
		{"unknown status", "Unknown", "Fire", "", "mdi:map-marker-question"},
		{"road trap rescue", "Going", "Rescue", "Rescue Road Trap", "mdi:car-emergency"},
		{"other rescue falls through", "Going", "Rescue", "Animal", "mdi:alarm-light"},
		{"fire going", "Going", "Fire", "Bushfire", "mdi:fire-alert"},
		{"fire under control", "Under Control", "Fire", "Bushfire", "mdi:fire"},
		{"tree down", "Going", "Tree Down", "", "mdi:tree"},
		{"flooding", "Going", "Flooding", "", "mdi:house-flood"},
		{"warning status", "Warning", "Met", "", "mdi:alert"},
		{"default", "", "", "", "mdi:alarm-light"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, iconFor(tt.status, tt.category1, tt.category2))
		})
	}
}

func TestLocationEvent_AttachRendersFirstSnapshot(t *testing.T) {
	entries := &stubEntries{entries: map[string]entity.Incident{"339233": fireIncident()}}
	event := NewLocationEvent("339233", entries)
	assert.Equal(t, StatePending, event.State())

	event.Attach(context.Background(), dispatcher.New(), nil)

	assert.Equal(t, StateActive, event.State())
	assert.Equal(t, "Fire - BUNYIP STATE PARK", event.Name())
	assert.Equal(t, 42.5, event.Distance())
	lat, lon := event.Coordinates()
	assert.Equal(t, -37.56, lat)
	assert.Equal(t, 145.12, lon)
	assert.Equal(t, "km", event.Unit())
	assert.Equal(t, "vicemergency_feed", event.Source())
}

func TestLocationEvent_UpdateSignalRerenders(t *testing.T) {
	incident := fireIncident()
	entries := &stubEntries{entries: map[string]entity.Incident{"339233": incident}}
	d := dispatcher.New()
	event := NewLocationEvent("339233", entries)
	event.Attach(context.Background(), d, nil)

	incident.Status = "Under Control"
	entries.entries["339233"] = incident

	d.Send(context.Background(), dispatcher.SignalUpdate, "339233")
	assert.Equal(t, "mdi:fire", event.Icon())
}

func TestLocationEvent_MissingEntryKeepsStaleCopy(t *testing.T) {
	entries := &stubEntries{entries: map[string]entity.Incident{"339233": fireIncident()}}
	d := dispatcher.New()
	event := NewLocationEvent("339233", entries)
	event.Attach(context.Background(), d, nil)

	delete(entries.entries, "339233")
	d.Send(context.Background(), dispatcher.SignalUpdate, "339233")

	assert.Equal(t, "Fire - BUNYIP STATE PARK", event.Name(),
		"a vanished entry must not blank the display fields")
	assert.Equal(t, StateActive, event.State())
}

func TestLocationEvent_DeleteTearsDownSubscriptions(t *testing.T) {
	entries := &stubEntries{entries: map[string]entity.Incident{"339233": fireIncident()}}
	d := dispatcher.New()
	event := NewLocationEvent("339233", entries)

	var removed []string
	event.Attach(context.Background(), d, func(_ context.Context, id string) {
		removed = append(removed, id)
		// Both subscriptions must already be gone when the owner is told.
		assert.Equal(t, 0, d.SubscriberCount(dispatcher.SignalUpdate, id))
		assert.Equal(t, 0, d.SubscriberCount(dispatcher.SignalDelete, id))
	})

	require.Equal(t, 1, d.SubscriberCount(dispatcher.SignalUpdate, "339233"))
	require.Equal(t, 1, d.SubscriberCount(dispatcher.SignalDelete, "339233"))

	d.Send(context.Background(), dispatcher.SignalDelete, "339233")

	assert.Equal(t, []string{"339233"}, removed)
	assert.Equal(t, StateRemoved, event.State())

	// A second delete must not invoke the owner again.
	d.Send(context.Background(), dispatcher.SignalDelete, "339233")
	assert.Len(t, removed, 1)
}

func TestLocationEvent_Attributes(t *testing.T) {
	published := time.Date(2026, 1, 12, 11, 30, 0, 0, time.UTC)
	incident := fireIncident()
	incident.PublicationDate = published
	incident.Resources = 12
	incident.SourceOrg = "CFA"
	incident.Status = "" // falsy non-boolean, must be omitted
	incident.Statewide = false

	entries := &stubEntries{entries: map[string]entity.Incident{"339233": incident}}
	event := NewLocationEvent("339233", entries)
	event.Attach(context.Background(), dispatcher.New(), nil)

	attributes := event.Attributes()

	assert.Equal(t, "339233", attributes["id"])
	assert.Equal(t, "BUNYIP STATE PARK", attributes["location"])
	assert.Equal(t, "VICEmergency", attributes["attribution"])
	assert.Equal(t, published, attributes["publication_date"])
	assert.Equal(t, 12, attributes["resources"])
	assert.Equal(t, "CFA", attributes["sourceOrg"])

	value, ok := attributes["statewide"]
	require.True(t, ok, "boolean false must be preserved")
	assert.Equal(t, false, value)

	_, ok = attributes["status"]
	assert.False(t, ok, "empty status must be dropped")
	_, ok = attributes["sourceTitle"]
	assert.False(t, ok, "empty strings must be dropped")
}

func TestRegistry_AddGetRemove(t *testing.T) {
	entries := &stubEntries{entries: map[string]entity.Incident{}}
	r := New()

	r.Add(NewLocationEvent("b", entries))
	r.Add(NewLocationEvent("a", entries))
	assert.Equal(t, 2, r.Len())

	event, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", event.ExternalID())

	snapshot := r.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "a", snapshot[0].ExternalID())
	assert.Equal(t, "b", snapshot[1].ExternalID())

	r.Remove("a")
	r.Remove("a") // idempotent
	_, ok = r.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len())
}
