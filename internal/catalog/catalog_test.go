package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eyss21/projekt/internal/models"
)

type fakeFleet struct {
	stops       []string
	byStop      map[string][]models.Schedule
	byRelation  map[int][]models.Schedule
	stopsCalls  int
	byStopCalls int
}

func (f *fakeFleet) DistinctStops(ctx context.Context) ([]string, error) {
	f.stopsCalls++
	return f.stops, nil
}

func (f *fakeFleet) ListSchedulesByStop(ctx context.Context, stop string) ([]models.Schedule, error) {
	f.byStopCalls++
	return f.byStop[stop], nil
}

func (f *fakeFleet) ListRelationSchedules(ctx context.Context, relationID int) ([]models.Schedule, error) {
	return f.byRelation[relationID], nil
}

type memCache struct {
	entries map[string]string
}

func newMemCache() *memCache { return &memCache{entries: map[string]string{}} }

func (c *memCache) Get(ctx context.Context, key string) (string, error) {
	if v, ok := c.entries[key]; ok {
		return v, nil
	}
	return "", ErrCacheMiss
}

func (c *memCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.entries[key] = value
	return nil
}

func (c *memCache) Invalidate(ctx context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func relID(id int) *int { return &id }

func sched(relationID *int, stop string, order int) models.Schedule {
	return models.Schedule{RelationID: relationID, Stop: stop, OrderNumber: order}
}

func TestAllStops_CachesUntilInvalidated(t *testing.T) {
	fleet := &fakeFleet{stops: []string{"Gdansk", "Torun", "Warszawa"}}
	svc := NewService(fleet, newMemCache())
	ctx := context.Background()

	first, err := svc.AllStops(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Gdansk", "Torun", "Warszawa"}, first)

	_, err = svc.AllStops(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, fleet.stopsCalls, "second read should come from cache")

	require.NoError(t, svc.InvalidateStops(ctx))
	_, err = svc.AllStops(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, fleet.stopsCalls, "invalidation should force a reload")
}

func TestAvailableStops_RouteOrderAndDedup(t *testing.T) {
	// Two relations pass through Warszawa. Relation 1 continues to Lodz then
	// Wroclaw, relation 2 reaches Lodz earlier in its route.
	fleet := &fakeFleet{
		byStop: map[string][]models.Schedule{
			"Warszawa": {
				sched(relID(1), "Warszawa", 2),
				sched(relID(2), "Warszawa", 1),
			},
		},
		byRelation: map[int][]models.Schedule{
			1: {
				sched(relID(1), "Gdansk", 1),
				sched(relID(1), "Warszawa", 2),
				sched(relID(1), "Lodz", 3),
				sched(relID(1), "Wroclaw", 4),
			},
			2: {
				sched(relID(2), "Warszawa", 1),
				sched(relID(2), "Lodz", 2),
			},
		},
	}
	svc := NewService(fleet, newMemCache())

	stops, err := svc.AvailableStops(context.Background(), "Warszawa")
	require.NoError(t, err)
	require.Equal(t, []models.StopAvailability{
		{Stop: "Lodz", OrderNumber: 2},
		{Stop: "Wroclaw", OrderNumber: 4},
	}, stops, "earlier stops and the origin itself must not appear, duplicates keep the lowest order number")
}

func TestAvailableStops_SkipsUnassignedSchedules(t *testing.T) {
	fleet := &fakeFleet{
		byStop: map[string][]models.Schedule{
			"Poznan": {sched(nil, "Poznan", 1)},
		},
	}
	svc := NewService(fleet, newMemCache())

	stops, err := svc.AvailableStops(context.Background(), "Poznan")
	require.NoError(t, err)
	require.Empty(t, stops)
}
