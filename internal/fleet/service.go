// Package fleet manages the carrier side of the platform: vehicles, their
// schedules, relations (routes) and price lists. Every mutation that changes
// which stops exist invalidates the stop-catalogue cache.
package fleet

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/eyss21/projekt/internal/models"
	"github.com/eyss21/projekt/internal/store"
)

var (
	ErrVehicleInUse = errors.New("vehicle still has schedules")
	ErrNotFound     = errors.New("fleet record not found")
)

// CacheInvalidator drops stale stop-catalogue entries after a mutation.
type CacheInvalidator interface {
	InvalidateStops(ctx context.Context, startStops ...string) error
}

// Service implements fleet CRUD on top of the fleet store.
type Service struct {
	store store.FleetStore
	cache CacheInvalidator
}

func NewService(fleetStore store.FleetStore, cache CacheInvalidator) *Service {
	return &Service{store: fleetStore, cache: cache}
}

// --- vehicles ---

func (s *Service) AddVehicle(ctx context.Context, ownerID int, model string, capacity int, registration string) (models.Vehicle, error) {
	return s.store.CreateVehicle(ctx, models.Vehicle{
		Model:              model,
		Capacity:           capacity,
		RegistrationNumber: registration,
		OwnerID:            ownerID,
	})
}

func (s *Service) GetVehicle(ctx context.Context, id int) (models.Vehicle, error) {
	v, err := s.store.GetVehicle(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Vehicle{}, ErrNotFound
	}
	return v, err
}

func (s *Service) ListVehicles(ctx context.Context, ownerID int) ([]models.Vehicle, error) {
	return s.store.ListVehiclesByOwner(ctx, ownerID)
}

func (s *Service) UpdateVehicle(ctx context.Context, v models.Vehicle) error {
	err := s.store.UpdateVehicle(ctx, v)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// DeleteVehicle refuses while schedules still reference the vehicle, so a
// carrier cannot orphan a live route.
func (s *Service) DeleteVehicle(ctx context.Context, id int) error {
	busy, err := s.store.VehicleHasSchedules(ctx, id)
	if err != nil {
		return err
	}
	if busy {
		return ErrVehicleInUse
	}
	err = s.store.DeleteVehicle(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// --- schedules ---

// AddSchedule appends a stop to the vehicle's run; order_number continues
// from the vehicle's current maximum.
func (s *Service) AddSchedule(ctx context.Context, sc models.Schedule) (models.Schedule, error) {
	max, err := s.store.MaxOrderNumber(ctx, sc.VehicleID)
	if err != nil {
		return models.Schedule{}, err
	}
	sc.OrderNumber = max + 1

	created, err := s.store.CreateSchedule(ctx, sc)
	if err != nil {
		return models.Schedule{}, fmt.Errorf("failed to create schedule: %w", err)
	}
	s.invalidateVehicleStops(ctx, created.VehicleID)
	return created, nil
}

func (s *Service) ListVehicleSchedules(ctx context.Context, vehicleID int, relationID *int) ([]models.Schedule, error) {
	return s.store.ListVehicleSchedules(ctx, vehicleID, relationID)
}

func (s *Service) ListRelationSchedules(ctx context.Context, relationID int) ([]models.Schedule, error) {
	return s.store.ListRelationSchedules(ctx, relationID)
}

func (s *Service) UpdateSchedule(ctx context.Context, sc models.Schedule) error {
	previous, err := s.store.GetSchedule(ctx, sc.ID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := s.store.UpdateSchedule(ctx, sc); err != nil {
		return err
	}
	s.invalidateVehicleStops(ctx, previous.VehicleID, previous.Stop)
	return nil
}

// ReorderSchedule moves a stop to a new position on the vehicle's run.
func (s *Service) ReorderSchedule(ctx context.Context, scheduleID, orderNumber int) error {
	sc, err := s.store.GetSchedule(ctx, scheduleID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := s.store.UpdateScheduleOrder(ctx, scheduleID, orderNumber); err != nil {
		return err
	}
	s.invalidateVehicleStops(ctx, sc.VehicleID)
	return nil
}

func (s *Service) AssignScheduleToRelation(ctx context.Context, scheduleID, relationID int) error {
	sc, err := s.store.GetSchedule(ctx, scheduleID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := s.store.AssignScheduleToRelation(ctx, scheduleID, relationID); err != nil {
		return err
	}
	s.invalidateVehicleStops(ctx, sc.VehicleID)
	return nil
}

func (s *Service) DeleteSchedule(ctx context.Context, id int) error {
	sc, err := s.store.GetSchedule(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := s.store.DeleteSchedule(ctx, id); err != nil {
		return err
	}
	s.invalidateVehicleStops(ctx, sc.VehicleID, sc.Stop)
	return nil
}

// --- relations ---

func (s *Service) CreateRelation(ctx context.Context, vehicleID int, name string) (models.Relation, error) {
	return s.store.CreateRelation(ctx, models.Relation{Name: name, VehicleID: vehicleID})
}

func (s *Service) ListRelations(ctx context.Context, ownerID int) ([]models.Relation, error) {
	return s.store.ListRelationsByOwner(ctx, ownerID)
}

func (s *Service) ListVehicleRelations(ctx context.Context, vehicleID int) ([]models.Relation, error) {
	return s.store.ListRelationsByVehicle(ctx, vehicleID)
}

// DeleteRelation detaches the relation's schedules and drops its price list
// along with the relation itself.
func (s *Service) DeleteRelation(ctx context.Context, vehicleID, relationID int) error {
	err := s.store.DeleteRelation(ctx, vehicleID, relationID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// --- price lists ---

func (s *Service) SetPriceList(ctx context.Context, relationID int, basePrice, pricePerStop float64) (models.PriceList, error) {
	return s.store.UpsertPriceList(ctx, models.PriceList{
		RelationID:   relationID,
		BasePrice:    basePrice,
		PricePerStop: pricePerStop,
	})
}

func (s *Service) GetPriceList(ctx context.Context, relationID int) (models.PriceList, error) {
	p, err := s.store.GetPriceList(ctx, relationID)
	if errors.Is(err, store.ErrNotFound) {
		return models.PriceList{}, ErrNotFound
	}
	return p, err
}

// invalidateVehicleStops drops the availability entries of every stop on the
// vehicle's run, plus any extra stops (e.g. one just removed). Changing a
// stop also changes what is reachable from every earlier origin on the same
// route, so invalidating only the mutated stop would leave those stale.
func (s *Service) invalidateVehicleStops(ctx context.Context, vehicleID int, extra ...string) {
	if s.cache == nil {
		return
	}
	stops := extra
	schedules, err := s.store.ListVehicleSchedules(ctx, vehicleID, nil)
	if err != nil {
		log.Printf("failed to list schedules for cache invalidation: %v", err)
	}
	for _, sc := range schedules {
		stops = append(stops, sc.Stop)
	}
	s.invalidate(ctx, stops...)
}

// invalidate drops the catalogue cache best-effort. A stale cache entry
// expires on its own; the mutation itself already committed.
func (s *Service) invalidate(ctx context.Context, stops ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateStops(ctx, stops...); err != nil {
		log.Printf("failed to invalidate stop cache: %v", err)
	}
}
