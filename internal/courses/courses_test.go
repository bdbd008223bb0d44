package courses

import (
	"context"
	"testing"
	"time"

	"github.com/eyss21/projekt/internal/models"
	"github.com/eyss21/projekt/internal/store"
)

type fakeFleet struct {
	byStop     map[string][]models.Schedule
	byRelation map[int][]models.Schedule
	vehicles   map[int]models.Vehicle
	prices     map[int]models.PriceList
}

func (f *fakeFleet) ListSchedulesByStop(ctx context.Context, stop string) ([]models.Schedule, error) {
	return f.byStop[stop], nil
}

func (f *fakeFleet) ListRelationSchedules(ctx context.Context, relationID int) ([]models.Schedule, error) {
	return f.byRelation[relationID], nil
}

func (f *fakeFleet) GetVehicle(ctx context.Context, id int) (models.Vehicle, error) {
	v, ok := f.vehicles[id]
	if !ok {
		return models.Vehicle{}, store.ErrNotFound
	}
	return v, nil
}

func (f *fakeFleet) GetPriceList(ctx context.Context, relationID int) (models.PriceList, error) {
	p, ok := f.prices[relationID]
	if !ok {
		return models.PriceList{}, store.ErrNotFound
	}
	return p, nil
}

type fakeOrders struct {
	active []models.Order
}

func (f *fakeOrders) ListActiveOrdersForRelationOn(ctx context.Context, relationID int, day time.Time) ([]models.Order, error) {
	return f.active, nil
}

type fakeUsers struct{}

func (fakeUsers) GetUserByID(ctx context.Context, id int) (models.User, error) {
	return models.User{ID: id, CompanyName: "Trans-Pol"}, nil
}

func timeOfDay(hour, min int) time.Time {
	return time.Date(1970, 1, 1, hour, min, 0, 0, time.UTC)
}

func relID(id int) *int { return &id }

// newFixture builds a single relation Gdansk(1) -> Torun(2) -> Warszawa(3)
// departing Gdansk at 14:00, vehicle capacity 4 units, base 10 + 5 per stop.
func newFixture() (*fakeFleet, *fakeOrders) {
	gdansk := models.Schedule{
		ID: 1, VehicleID: 7, Stop: "Gdansk", OrderNumber: 1, RelationID: relID(3),
		DepartureTime: timeOfDay(14, 0), ArrivalTime: timeOfDay(13, 50),
	}
	torun := models.Schedule{
		ID: 2, VehicleID: 7, Stop: "Torun", OrderNumber: 2, RelationID: relID(3),
		DepartureTime: timeOfDay(16, 10), ArrivalTime: timeOfDay(16, 0),
	}
	warszawa := models.Schedule{
		ID: 3, VehicleID: 7, Stop: "Warszawa", OrderNumber: 3, RelationID: relID(3),
		DepartureTime: timeOfDay(18, 30), ArrivalTime: timeOfDay(18, 20),
	}
	fleet := &fakeFleet{
		byStop:     map[string][]models.Schedule{"Gdansk": {gdansk}, "Torun": {torun}},
		byRelation: map[int][]models.Schedule{3: {gdansk, torun, warszawa}},
		vehicles:   map[int]models.Vehicle{7: {ID: 7, Capacity: 4, OwnerID: 12}},
		prices:     map[int]models.PriceList{3: {RelationID: 3, BasePrice: 10, PricePerStop: 5}},
	}
	return fleet, &fakeOrders{}
}

func at(hour, min int) func() time.Time {
	return func() time.Time {
		return time.Date(2026, 8, 28, hour, min, 0, 0, time.UTC)
	}
}

func TestAvailableCourses_PricesByStopDistance(t *testing.T) {
	fleet, orders := newFixture()
	svc := NewService(fleet, orders, fakeUsers{})
	svc.now = at(9, 0)

	// Gdansk -> Warszawa travels two stops.
	courses, err := svc.AvailableCourses(context.Background(), "Gdansk", "Warszawa", models.SizeS, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(courses) != 1 {
		t.Fatalf("expected 1 course, got %d", len(courses))
	}
	c := courses[0]
	if c.TotalPrice != 20 {
		t.Errorf("price = %v, want 20 (base 10 + 2 stops * 5)", c.TotalPrice)
	}
	if c.ScheduleID != 1 || c.RelationID != 3 || c.VehicleID != 7 {
		t.Errorf("unexpected identifiers: %+v", c)
	}
	if c.DepartureTime != "14:00" || c.ArrivalTime != "18:20" {
		t.Errorf("times = %s / %s, want 14:00 / 18:20", c.DepartureTime, c.ArrivalTime)
	}
	if c.CompanyName != "Trans-Pol" {
		t.Errorf("company = %q, want Trans-Pol", c.CompanyName)
	}
}

func TestAvailableCourses_SameDayCutoff(t *testing.T) {
	fleet, orders := newFixture()
	svc := NewService(fleet, orders, fakeUsers{})

	// 12:30, departure 14:00: only 90 minutes away, too late for today.
	svc.now = at(12, 30)
	courses, err := svc.AvailableCourses(context.Background(), "Gdansk", "Warszawa", models.SizeS, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(courses) != 0 {
		t.Fatalf("expected no same-day courses inside the cutoff, got %d", len(courses))
	}

	// Tomorrow the cutoff does not apply.
	courses, err = svc.AvailableCourses(context.Background(), "Gdansk", "Warszawa", models.SizeS, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("expected the course for tomorrow, got %d", len(courses))
	}

	// Exactly two hours ahead still counts.
	svc.now = at(12, 0)
	courses, err = svc.AvailableCourses(context.Background(), "Gdansk", "Warszawa", models.SizeS, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("expected the course at exactly the cutoff, got %d", len(courses))
	}
}

func TestAvailableCourses_CapacityUnits(t *testing.T) {
	fleet, orders := newFixture()
	// Capacity 4, one active L order uses 3 units.
	orders.active = []models.Order{{Size: models.SizeL, Status: models.OrderStatusPosted}}
	svc := NewService(fleet, orders, fakeUsers{})
	svc.now = at(9, 0)

	// S (1 unit) still fits.
	courses, err := svc.AvailableCourses(context.Background(), "Gdansk", "Warszawa", models.SizeS, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("expected S to fit, got %d courses", len(courses))
	}

	// M (2 units) would exceed the 4-unit capacity.
	courses, err = svc.AvailableCourses(context.Background(), "Gdansk", "Warszawa", models.SizeM, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(courses) != 0 {
		t.Fatalf("expected M to be rejected for capacity, got %d courses", len(courses))
	}
}

func TestAvailableCourses_DirectionMatters(t *testing.T) {
	fleet, orders := newFixture()
	svc := NewService(fleet, orders, fakeUsers{})
	svc.now = at(9, 0)

	// Torun -> Gdansk runs against the route order.
	courses, err := svc.AvailableCourses(context.Background(), "Torun", "Gdansk", models.SizeS, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(courses) != 0 {
		t.Fatalf("expected no backward courses, got %d", len(courses))
	}
}

func TestAvailableCourses_NoPriceListMeansZero(t *testing.T) {
	fleet, orders := newFixture()
	delete(fleet.prices, 3)
	svc := NewService(fleet, orders, fakeUsers{})
	svc.now = at(9, 0)

	courses, err := svc.AvailableCourses(context.Background(), "Gdansk", "Torun", models.SizeS, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("expected the unpriced course to be returned, got %d", len(courses))
	}
	if courses[0].TotalPrice != 0 {
		t.Errorf("price = %v, want 0 when no price list exists", courses[0].TotalPrice)
	}
}
