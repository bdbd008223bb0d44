// Package courses implements the course search behind the booking form: for
// a start stop, end stop, parcel size and delivery day it returns the trips
// that actually have room, priced from the relation's price list.
package courses

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/eyss21/projekt/internal/models"
	"github.com/eyss21/projekt/internal/store"
)

// sameDayCutoff is how far in the future a departure must be to still accept
// a same-day parcel.
const sameDayCutoff = 2 * time.Hour

// FleetReader is the slice of the fleet store the search reads from.
type FleetReader interface {
	ListSchedulesByStop(ctx context.Context, stop string) ([]models.Schedule, error)
	ListRelationSchedules(ctx context.Context, relationID int) ([]models.Schedule, error)
	GetVehicle(ctx context.Context, id int) (models.Vehicle, error)
	GetPriceList(ctx context.Context, relationID int) (models.PriceList, error)
}

// OrderReader provides the active orders that occupy vehicle capacity.
type OrderReader interface {
	ListActiveOrdersForRelationOn(ctx context.Context, relationID int, day time.Time) ([]models.Order, error)
}

// UserReader resolves the carrier behind a vehicle.
type UserReader interface {
	GetUserByID(ctx context.Context, id int) (models.User, error)
}

// Service searches courses across all carriers' relations.
type Service struct {
	fleet  FleetReader
	orders OrderReader
	users  UserReader

	now func() time.Time
}

func NewService(fleet FleetReader, orders OrderReader, users UserReader) *Service {
	return &Service{fleet: fleet, orders: orders, users: users, now: time.Now}
}

// AvailableCourses returns the courses that can carry a parcel of the given
// size from startStop to endStop, today or tomorrow. Prices are the distance
// price from the relation's price list, before the size multiplier; a
// relation without a price list yields total 0.
func (s *Service) AvailableCourses(ctx context.Context, startStop, endStop string, size models.ParcelSize, todayDelivery bool) ([]models.Course, error) {
	if !size.Valid() {
		return nil, fmt.Errorf("unknown parcel size %q", size)
	}

	origins, err := s.fleet.ListSchedulesByStop(ctx, startStop)
	if err != nil {
		return nil, fmt.Errorf("failed to load origin schedules: %w", err)
	}

	now := s.now()
	day := now
	if !todayDelivery {
		day = now.AddDate(0, 0, 1)
	}

	var courses []models.Course
	seen := make(map[int]bool)
	for _, origin := range origins {
		if origin.RelationID == nil || seen[origin.ID] {
			continue
		}
		seen[origin.ID] = true

		route, err := s.fleet.ListRelationSchedules(ctx, *origin.RelationID)
		if err != nil {
			return nil, fmt.Errorf("failed to load relation schedules: %w", err)
		}

		end, ok := findAfter(route, origin.OrderNumber, endStop)
		if !ok {
			continue
		}
		if todayDelivery && !departsInTime(origin.DepartureTime, now) {
			continue
		}

		ok, vehicle, err := s.hasCapacity(ctx, *origin.RelationID, origin.VehicleID, size, day)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		price, err := s.distancePrice(ctx, *origin.RelationID, origin.OrderNumber, end.OrderNumber)
		if err != nil {
			return nil, err
		}

		owner, err := s.users.GetUserByID(ctx, vehicle.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load carrier: %w", err)
		}

		courses = append(courses, models.Course{
			ScheduleID:    origin.ID,
			RelationID:    *origin.RelationID,
			VehicleID:     origin.VehicleID,
			CompanyName:   owner.CompanyName,
			StartStop:     startStop,
			EndStop:       endStop,
			DepartureTime: origin.DepartureTime.Format("15:04"),
			ArrivalTime:   end.ArrivalTime.Format("15:04"),
			TotalPrice:    price,
		})
	}

	sort.Slice(courses, func(i, j int) bool { return courses[i].DepartureTime < courses[j].DepartureTime })
	return courses, nil
}

// findAfter looks for endStop strictly after the origin in route order.
func findAfter(route []models.Schedule, originOrder int, endStop string) (models.Schedule, bool) {
	for _, stop := range route {
		if stop.Stop == endStop && stop.OrderNumber > originOrder {
			return stop, true
		}
	}
	return models.Schedule{}, false
}

// departsInTime checks the same-day cutoff: the departure, placed on today's
// date, must be at least two hours away. Schedule rows only carry a time of
// day.
func departsInTime(departure time.Time, now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(),
		departure.Hour(), departure.Minute(), 0, 0, now.Location())
	return today.Sub(now) >= sameDayCutoff
}

func (s *Service) hasCapacity(ctx context.Context, relationID, vehicleID int, size models.ParcelSize, day time.Time) (bool, models.Vehicle, error) {
	vehicle, err := s.fleet.GetVehicle(ctx, vehicleID)
	if err != nil {
		return false, models.Vehicle{}, fmt.Errorf("failed to load vehicle: %w", err)
	}

	active, err := s.orders.ListActiveOrdersForRelationOn(ctx, relationID, day)
	if err != nil {
		return false, models.Vehicle{}, fmt.Errorf("failed to load active orders: %w", err)
	}

	used := 0
	for _, order := range active {
		used += order.Size.Units()
	}
	return used+size.Units() <= vehicle.Capacity, vehicle, nil
}

// distancePrice is base price plus the stop distance times the per-stop
// price. A relation without a price list prices at 0, which the quote engine
// filters out.
func (s *Service) distancePrice(ctx context.Context, relationID, startOrder, endOrder int) (float64, error) {
	priceList, err := s.fleet.GetPriceList(ctx, relationID)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load price list: %w", err)
	}

	distance := endOrder - startOrder
	if distance < 0 {
		distance = -distance
	}
	return priceList.BasePrice + float64(distance)*priceList.PricePerStop, nil
}
