package fleet

import (
	"context"
	"errors"
	"testing"

	"github.com/eyss21/projekt/internal/models"
	"github.com/eyss21/projekt/internal/store"
)

type fakeFleetStore struct {
	vehicles  map[int]models.Vehicle
	schedules map[int]models.Schedule
	relations map[int]models.Relation
	prices    map[int]models.PriceList
	nextID    int
}

func newFakeFleetStore() *fakeFleetStore {
	return &fakeFleetStore{
		vehicles:  map[int]models.Vehicle{},
		schedules: map[int]models.Schedule{},
		relations: map[int]models.Relation{},
		prices:    map[int]models.PriceList{},
		nextID:    1,
	}
}

func (f *fakeFleetStore) id() int {
	id := f.nextID
	f.nextID++
	return id
}

func (f *fakeFleetStore) CreateVehicle(ctx context.Context, v models.Vehicle) (models.Vehicle, error) {
	v.ID = f.id()
	f.vehicles[v.ID] = v
	return v, nil
}

func (f *fakeFleetStore) GetVehicle(ctx context.Context, id int) (models.Vehicle, error) {
	v, ok := f.vehicles[id]
	if !ok {
		return models.Vehicle{}, store.ErrNotFound
	}
	return v, nil
}

func (f *fakeFleetStore) ListVehiclesByOwner(ctx context.Context, ownerID int) ([]models.Vehicle, error) {
	return nil, nil
}

func (f *fakeFleetStore) UpdateVehicle(ctx context.Context, v models.Vehicle) error { return nil }

func (f *fakeFleetStore) DeleteVehicle(ctx context.Context, id int) error {
	if _, ok := f.vehicles[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.vehicles, id)
	return nil
}

func (f *fakeFleetStore) VehicleHasSchedules(ctx context.Context, vehicleID int) (bool, error) {
	for _, sc := range f.schedules {
		if sc.VehicleID == vehicleID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFleetStore) CreateRelation(ctx context.Context, r models.Relation) (models.Relation, error) {
	r.ID = f.id()
	f.relations[r.ID] = r
	return r, nil
}

func (f *fakeFleetStore) GetRelation(ctx context.Context, id int) (models.Relation, error) {
	r, ok := f.relations[id]
	if !ok {
		return models.Relation{}, store.ErrNotFound
	}
	return r, nil
}

func (f *fakeFleetStore) ListRelationsByVehicle(ctx context.Context, vehicleID int) ([]models.Relation, error) {
	return nil, nil
}

func (f *fakeFleetStore) ListRelationsByOwner(ctx context.Context, ownerID int) ([]models.Relation, error) {
	return nil, nil
}

func (f *fakeFleetStore) DeleteRelation(ctx context.Context, vehicleID, relationID int) error {
	if _, ok := f.relations[relationID]; !ok {
		return store.ErrNotFound
	}
	delete(f.relations, relationID)
	delete(f.prices, relationID)
	for id, sc := range f.schedules {
		if sc.RelationID != nil && *sc.RelationID == relationID {
			sc.RelationID = nil
			f.schedules[id] = sc
		}
	}
	return nil
}

func (f *fakeFleetStore) CreateSchedule(ctx context.Context, sc models.Schedule) (models.Schedule, error) {
	sc.ID = f.id()
	f.schedules[sc.ID] = sc
	return sc, nil
}

func (f *fakeFleetStore) GetSchedule(ctx context.Context, id int) (models.Schedule, error) {
	sc, ok := f.schedules[id]
	if !ok {
		return models.Schedule{}, store.ErrNotFound
	}
	return sc, nil
}

func (f *fakeFleetStore) ListVehicleSchedules(ctx context.Context, vehicleID int, relationID *int) ([]models.Schedule, error) {
	var out []models.Schedule
	for _, sc := range f.schedules {
		if sc.VehicleID == vehicleID {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (f *fakeFleetStore) ListRelationSchedules(ctx context.Context, relationID int) ([]models.Schedule, error) {
	return nil, nil
}

func (f *fakeFleetStore) ListSchedulesByStop(ctx context.Context, stop string) ([]models.Schedule, error) {
	return nil, nil
}

func (f *fakeFleetStore) MaxOrderNumber(ctx context.Context, vehicleID int) (int, error) {
	max := 0
	for _, sc := range f.schedules {
		if sc.VehicleID == vehicleID && sc.OrderNumber > max {
			max = sc.OrderNumber
		}
	}
	return max, nil
}

func (f *fakeFleetStore) UpdateSchedule(ctx context.Context, sc models.Schedule) error { return nil }

func (f *fakeFleetStore) UpdateScheduleOrder(ctx context.Context, scheduleID, orderNumber int) error {
	sc, ok := f.schedules[scheduleID]
	if !ok {
		return store.ErrNotFound
	}
	sc.OrderNumber = orderNumber
	f.schedules[scheduleID] = sc
	return nil
}

func (f *fakeFleetStore) AssignScheduleToRelation(ctx context.Context, scheduleID, relationID int) error {
	sc, ok := f.schedules[scheduleID]
	if !ok {
		return store.ErrNotFound
	}
	sc.RelationID = &relationID
	f.schedules[scheduleID] = sc
	return nil
}

func (f *fakeFleetStore) DeleteSchedule(ctx context.Context, id int) error {
	if _, ok := f.schedules[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.schedules, id)
	return nil
}

func (f *fakeFleetStore) DeleteRelationSchedules(ctx context.Context, relationID int) error {
	return nil
}

func (f *fakeFleetStore) DistinctStops(ctx context.Context) ([]string, error) { return nil, nil }

func (f *fakeFleetStore) UpsertPriceList(ctx context.Context, p models.PriceList) (models.PriceList, error) {
	f.prices[p.RelationID] = p
	return p, nil
}

func (f *fakeFleetStore) GetPriceList(ctx context.Context, relationID int) (models.PriceList, error) {
	p, ok := f.prices[relationID]
	if !ok {
		return models.PriceList{}, store.ErrNotFound
	}
	return p, nil
}

type fakeInvalidator struct {
	calls int
	stops []string
}

func (f *fakeInvalidator) InvalidateStops(ctx context.Context, startStops ...string) error {
	f.calls++
	f.stops = append(f.stops, startStops...)
	return nil
}

func TestAddSchedule_OrderNumberAutoIncrements(t *testing.T) {
	st := newFakeFleetStore()
	cache := &fakeInvalidator{}
	svc := NewService(st, cache)
	ctx := context.Background()

	first, err := svc.AddSchedule(ctx, models.Schedule{VehicleID: 1, Stop: "Gdansk"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.AddSchedule(ctx, models.Schedule{VehicleID: 1, Stop: "Torun"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other, err := svc.AddSchedule(ctx, models.Schedule{VehicleID: 2, Stop: "Krakow"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.OrderNumber != 1 || second.OrderNumber != 2 {
		t.Errorf("order numbers = %d, %d, want 1, 2", first.OrderNumber, second.OrderNumber)
	}
	if other.OrderNumber != 1 {
		t.Errorf("order number = %d, want 1 (numbering is per vehicle)", other.OrderNumber)
	}
	if cache.calls != 3 {
		t.Errorf("cache invalidations = %d, want one per mutation", cache.calls)
	}
}

func TestDeleteVehicle_RefusedWhileScheduled(t *testing.T) {
	st := newFakeFleetStore()
	svc := NewService(st, &fakeInvalidator{})
	ctx := context.Background()

	v, err := svc.AddVehicle(ctx, 7, "Sprinter", 6, "GD 12345")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AddSchedule(ctx, models.Schedule{VehicleID: v.ID, Stop: "Gdansk"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.DeleteVehicle(ctx, v.ID); !errors.Is(err, ErrVehicleInUse) {
		t.Fatalf("error = %v, want ErrVehicleInUse", err)
	}

	for id := range st.schedules {
		if err := svc.DeleteSchedule(ctx, id); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := svc.DeleteVehicle(ctx, v.ID); err != nil {
		t.Fatalf("delete after clearing schedules failed: %v", err)
	}
}

func TestDeleteSchedule_InvalidatesEarlierStopsOnRun(t *testing.T) {
	st := newFakeFleetStore()
	cache := &fakeInvalidator{}
	svc := NewService(st, cache)
	ctx := context.Background()

	stops := []string{"Gdansk", "Torun", "Warszawa"}
	ids := make(map[string]int)
	for _, stop := range stops {
		sc, err := svc.AddSchedule(ctx, models.Schedule{VehicleID: 1, Stop: stop})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ids[stop] = sc.ID
	}

	// Removing the last stop changes what is reachable from both earlier
	// origins, so their availability entries must be dropped too.
	cache.stops = nil
	if err := svc.DeleteSchedule(ctx, ids["Warszawa"]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dropped := make(map[string]bool)
	for _, stop := range cache.stops {
		dropped[stop] = true
	}
	for _, stop := range stops {
		if !dropped[stop] {
			t.Errorf("stop %s not invalidated, got %v", stop, cache.stops)
		}
	}
}

func TestDeleteRelation_DropsPriceListAndDetaches(t *testing.T) {
	st := newFakeFleetStore()
	cache := &fakeInvalidator{}
	svc := NewService(st, cache)
	ctx := context.Background()

	rel, err := svc.CreateRelation(ctx, 1, "Gdansk-Warszawa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sc, err := svc.AddSchedule(ctx, models.Schedule{VehicleID: 1, Stop: "Gdansk"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.AssignScheduleToRelation(ctx, sc.ID, rel.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.SetPriceList(ctx, rel.ID, 10, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.DeleteRelation(ctx, 1, rel.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetPriceList(ctx, rel.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("price list should be gone, got %v", err)
	}
	if st.schedules[sc.ID].RelationID != nil {
		t.Error("schedule should be detached from the deleted relation")
	}
}
