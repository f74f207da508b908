package poll

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vicemergency-feed/internal/domain/entity"
	"vicemergency-feed/internal/geo"
)

// melbourne is the reference point for the filter tests.
var melbourne = geo.Point{Latitude: -37.8136, Longitude: 144.9631}

type stubSource struct {
	incidents []entity.Incident
	err       error
}

func (s *stubSource) Fetch(ctx context.Context) ([]entity.Incident, error) {
	return s.incidents, s.err
}

type recorder struct {
	added   []string
	updated []string
	removed []string
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		Added:   func(_ context.Context, id string) { r.added = append(r.added, id) },
		Updated: func(_ context.Context, id string) { r.updated = append(r.updated, id) },
		Removed: func(_ context.Context, id string) { r.removed = append(r.removed, id) },
	}
}

func (r *recorder) reset() {
	r.added, r.updated, r.removed = nil, nil, nil
}

func nearbyIncident(id string) entity.Incident {
	return entity.Incident{
		ID:        id,
		Category1: entity.CategoryAdvice,
		Location:  "RICHMOND",
		Latitude:  -37.82,
		Longitude: 144.99,
	}
}

func TestManager_UpdateDiff(t *testing.T) {
	source := &stubSource{incidents: []entity.Incident{
		nearbyIncident("100"),
		nearbyIncident("200"),
	}}
	rec := &recorder{}
	manager := NewManager(source, rec.callbacks(), Filter{Home: melbourne, RadiusKm: 20})

	stats, err := manager.Update(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Added)
	assert.Equal(t, []string{"100", "200"}, rec.added)
	assert.Empty(t, rec.updated)
	assert.Empty(t, rec.removed)

	// Second poll: 100 survives, 200 disappears, 300 arrives.
	source.incidents = []entity.Incident{
		nearbyIncident("100"),
		nearbyIncident("300"),
	}
	rec.reset()

	stats, err = manager.Update(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Added)
	assert.Equal(t, 1, stats.Updated)
	assert.Equal(t, 1, stats.Removed)
	assert.Equal(t, []string{"300"}, rec.added)
	assert.Equal(t, []string{"100"}, rec.updated)
	assert.Equal(t, []string{"200"}, rec.removed)

	_, ok := manager.Entry("200")
	assert.False(t, ok, "removed entry should be gone")
}

func TestManager_UpdatedFiresForAllSurvivors(t *testing.T) {
	source := &stubSource{incidents: []entity.Incident{nearbyIncident("100")}}
	rec := &recorder{}
	manager := NewManager(source, rec.callbacks(), Filter{Home: melbourne, RadiusKm: 20})

	_, err := manager.Update(context.Background())
	require.NoError(t, err)

	// Identical payload on the next poll still signals an update.
	rec.reset()
	_, err = manager.Update(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"100"}, rec.updated)
}

func TestManager_FetchErrorKeepsEntries(t *testing.T) {
	source := &stubSource{incidents: []entity.Incident{nearbyIncident("100")}}
	rec := &recorder{}
	manager := NewManager(source, rec.callbacks(), Filter{Home: melbourne, RadiusKm: 20})

	_, err := manager.Update(context.Background())
	require.NoError(t, err)

	source.err = errors.New("feed unreachable")
	rec.reset()

	_, err = manager.Update(context.Background())
	require.Error(t, err)
	assert.Empty(t, rec.removed, "fetch failure must not remove entries")

	_, ok := manager.Entry("100")
	assert.True(t, ok)
}

func TestManager_RadiusFilter(t *testing.T) {
	far := nearbyIncident("far")
	far.Latitude = -38.15 // Geelong, ~65 km away
	far.Longitude = 144.35

	source := &stubSource{incidents: []entity.Incident{nearbyIncident("near"), far}}
	manager := NewManager(source, Callbacks{}, Filter{Home: melbourne, RadiusKm: 20})

	stats, err := manager.Update(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Filtered)

	near, ok := manager.Entry("near")
	require.True(t, ok)
	assert.Greater(t, near.DistanceKm, 0.0)
	assert.Less(t, near.DistanceKm, 20.0)

	_, ok = manager.Entry("far")
	assert.False(t, ok)
}

func TestManager_CategoryFilters(t *testing.T) {
	warning := nearbyIncident("w")
	warning.Category1 = entity.CategoryEmergencyWarning
	advice := nearbyIncident("a")
	burn := nearbyIncident("b")
	burn.Category1 = entity.CategoryBurnArea

	source := &stubSource{incidents: []entity.Incident{warning, advice, burn}}
	manager := NewManager(source, Callbacks{}, Filter{
		Home:              melbourne,
		RadiusKm:          20,
		IncludeCategories: []string{entity.CategoryEmergencyWarning, entity.CategoryBurnArea},
		ExcludeCategories: []string{entity.CategoryBurnArea},
	})

	_, err := manager.Update(context.Background())
	require.NoError(t, err)

	_, ok := manager.Entry("w")
	assert.True(t, ok, "included category should pass")
	_, ok = manager.Entry("a")
	assert.False(t, ok, "category outside include list should be dropped")
	_, ok = manager.Entry("b")
	assert.False(t, ok, "exclude list wins over include list")
}

func TestManager_StatewideFilter(t *testing.T) {
	statewide := nearbyIncident("sw")
	statewide.Statewide = true
	statewide.Latitude = -36.0 // well outside the radius
	statewide.Longitude = 146.0

	source := &stubSource{incidents: []entity.Incident{statewide}}

	blocked := NewManager(source, Callbacks{}, Filter{Home: melbourne, RadiusKm: 20})
	_, err := blocked.Update(context.Background())
	require.NoError(t, err)
	_, ok := blocked.Entry("sw")
	assert.False(t, ok, "statewide entries are dropped unless enabled")

	allowed := NewManager(source, Callbacks{}, Filter{Home: melbourne, RadiusKm: 20, Statewide: true})
	_, err = allowed.Update(context.Background())
	require.NoError(t, err)
	_, ok = allowed.Entry("sw")
	assert.True(t, ok, "statewide entries bypass the radius filter when enabled")
}

func TestManager_EntriesReturnsCopy(t *testing.T) {
	source := &stubSource{incidents: []entity.Incident{nearbyIncident("100")}}
	manager := NewManager(source, Callbacks{}, Filter{Home: melbourne, RadiusKm: 20})

	_, err := manager.Update(context.Background())
	require.NoError(t, err)

	snapshot := manager.Entries()
	delete(snapshot, "100")

	_, ok := manager.Entry("100")
	assert.True(t, ok, "mutating a snapshot must not affect the manager")
}
