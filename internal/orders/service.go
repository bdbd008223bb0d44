// Package orders owns the shipment lifecycle: paid creation, driver
// assignment, the pickup/delivery handover, tracking, interventions and the
// soft-delete history flags. Every mutation appends to the order's status
// history and publishes an event.
package orders

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/eyss21/projekt/internal/kafka"
	"github.com/eyss21/projekt/internal/models"
	"github.com/eyss21/projekt/internal/quote"
	"github.com/eyss21/projekt/internal/store"
)

const (
	orderCodeLength    = 14
	handoverCodeLength = 4
)

// FleetReader resolves a relation's route when placing an order.
type FleetReader interface {
	ListRelationSchedules(ctx context.Context, relationID int) ([]models.Schedule, error)
}

// TrackedOrder is an order together with its append-only status history.
type TrackedOrder struct {
	Order   models.Order
	History []models.OrderStatusChange
}

// Service implements the order lifecycle on top of the order store. It also
// satisfies quote.OrderCreator so the quote engine can submit bookings.
type Service struct {
	store  store.OrderStore
	fleet  FleetReader
	events kafka.Publisher

	now func() time.Time
}

func NewService(orderStore store.OrderStore, fleet FleetReader, events kafka.Publisher) *Service {
	return &Service{store: orderStore, fleet: fleet, events: events, now: time.Now}
}

// CreateOrder places a paid order: it resolves the departure/arrival times
// from the relation's route, generates the order code, inserts the order with
// its first history entry and debits the customer wallet in one transaction.
func (s *Service) CreateOrder(ctx context.Context, req quote.BookingRequest) (quote.BookingResult, error) {
	route, err := s.fleet.ListRelationSchedules(ctx, req.RelationID)
	if err != nil {
		return quote.BookingResult{}, fmt.Errorf("failed to load relation route: %w", err)
	}

	start, end, err := resolveLeg(route, req.StartStop, req.EndStop)
	if err != nil {
		return quote.BookingResult{}, err
	}

	day := s.now()
	if !req.TodayDelivery {
		day = day.AddDate(0, 0, 1)
	}

	orderCode, err := s.uniqueOrderCode(ctx)
	if err != nil {
		return quote.BookingResult{}, err
	}

	order := models.Order{
		UserID:        req.UserID,
		RelationID:    req.RelationID,
		Status:        models.OrderStatusPosted,
		Size:          req.Size,
		StartStop:     req.StartStop,
		EndStop:       req.EndStop,
		DepartureTime: onDay(day, start.DepartureTime),
		ArrivalTime:   onDay(day, end.ArrivalTime),
		Price:         req.Price,
		OrderCode:     orderCode,
	}

	created, err := s.store.CreateOrderPaid(ctx, order)
	if errors.Is(err, store.ErrInsufficientFunds) {
		return quote.BookingResult{}, ErrInsufficientBalance
	}
	if err != nil {
		return quote.BookingResult{}, fmt.Errorf("failed to create order: %w", err)
	}

	s.publish(ctx, EventOrderCreated, created)
	return quote.BookingResult{
		OrderID:   created.ID,
		Status:    created.Status,
		OrderCode: created.OrderCode,
	}, nil
}

// AssignDriver puts a driver on a Posted order and generates the 4-digit
// pickup and delivery codes exchanged at the handovers.
func (s *Service) AssignDriver(ctx context.Context, orderID, driverID int) (models.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, err
	}
	if order.Status != models.OrderStatusPosted {
		return models.Order{}, ErrWrongStatus
	}

	pickupCode, err := randomDigits(handoverCodeLength)
	if err != nil {
		return models.Order{}, err
	}
	deliveryCode, err := randomDigits(handoverCodeLength)
	if err != nil {
		return models.Order{}, err
	}

	updated, err := s.store.AssignDriver(ctx, orderID, driverID, pickupCode, deliveryCode)
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to assign driver: %w", err)
	}

	s.publish(ctx, EventOrderStatusChanged, updated)
	return updated, nil
}

// AcceptShipment is the driver's pickup: the order must carry an assigned
// driver and the customer's pickup code must match.
func (s *Service) AcceptShipment(ctx context.Context, orderCode, pickupCode string) (models.Order, error) {
	order, err := s.getByCode(ctx, orderCode)
	if err != nil {
		return models.Order{}, err
	}
	if order.Status != models.OrderStatusDriverAssigned {
		return models.Order{}, ErrWrongStatus
	}
	if order.PickupCode != pickupCode {
		return models.Order{}, ErrWrongCode
	}

	if err := s.store.UpdateStatus(ctx, order.ID, models.OrderStatusPickedUp); err != nil {
		return models.Order{}, fmt.Errorf("failed to update status: %w", err)
	}
	order.Status = models.OrderStatusPickedUp
	s.publish(ctx, EventOrderStatusChanged, order)
	return order, nil
}

// DeliverShipment is the handover to the recipient: requires a picked-up
// order and the matching delivery code. On success the carrier wallet is
// credited with the order price.
func (s *Service) DeliverShipment(ctx context.Context, orderCode, deliveryCode string) (models.Order, error) {
	order, err := s.getByCode(ctx, orderCode)
	if err != nil {
		return models.Order{}, err
	}
	if order.Status != models.OrderStatusPickedUp {
		return models.Order{}, ErrWrongStatus
	}
	if order.DeliveryCode != deliveryCode {
		return models.Order{}, ErrWrongCode
	}

	if err := s.store.MarkDelivered(ctx, order.ID); err != nil {
		return models.Order{}, fmt.Errorf("failed to mark delivered: %w", err)
	}
	order.Status = models.OrderStatusDelivered
	s.publish(ctx, EventOrderStatusChanged, order)
	return order, nil
}

// TrackShipment returns the order and its full status history.
func (s *Service) TrackShipment(ctx context.Context, orderCode string) (TrackedOrder, error) {
	order, err := s.getByCode(ctx, orderCode)
	if err != nil {
		return TrackedOrder{}, err
	}
	history, err := s.store.ListStatusHistory(ctx, order.ID)
	if err != nil {
		return TrackedOrder{}, fmt.Errorf("failed to load status history: %w", err)
	}
	return TrackedOrder{Order: order, History: history}, nil
}

func (s *Service) ListUserOrders(ctx context.Context, userID int) ([]models.Order, error) {
	return s.store.ListOrdersByUser(ctx, userID)
}

func (s *Service) ListCarrierOrders(ctx context.Context, ownerID int) ([]models.Order, error) {
	return s.store.ListOrdersByCarrier(ctx, ownerID)
}

func (s *Service) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.store.ListAllOrders(ctx)
}

// ListDriverOrders returns the driver's orders still in transit.
func (s *Service) ListDriverOrders(ctx context.Context, driverID int) ([]models.Order, error) {
	return s.store.ListOrdersByDriver(ctx, driverID,
		[]models.OrderStatus{models.OrderStatusDriverAssigned, models.OrderStatusPickedUp})
}

// RemoveFromUserHistory hides the order from the customer without touching
// the carrier's view.
func (s *Service) RemoveFromUserHistory(ctx context.Context, orderID, userID int) error {
	err := s.store.SetDeletedByUser(ctx, orderID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrOrderNotFound
	}
	return err
}

func (s *Service) RemoveFromCarrierHistory(ctx context.Context, orderID, ownerID int) error {
	err := s.store.SetDeletedByCarrier(ctx, orderID, ownerID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrOrderNotFound
	}
	return err
}

// ReportProblem records a customer-reported issue and flips the order to
// Intervention until an administrator resolves it.
func (s *Service) ReportProblem(ctx context.Context, orderID, userID int, description string) (models.ShipmentProblem, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return models.ShipmentProblem{}, ErrOrderNotFound
	}
	if err != nil {
		return models.ShipmentProblem{}, err
	}

	problem, err := s.store.CreateProblem(ctx, models.ShipmentProblem{
		OrderID:     orderID,
		UserID:      userID,
		Description: description,
		Status:      "open",
	})
	if err != nil {
		return models.ShipmentProblem{}, fmt.Errorf("failed to record problem: %w", err)
	}

	if err := s.store.UpdateStatus(ctx, orderID, models.OrderStatusIntervention); err != nil {
		return models.ShipmentProblem{}, fmt.Errorf("failed to update status: %w", err)
	}
	order.Status = models.OrderStatusIntervention
	s.publish(ctx, EventOrderStatusChanged, order)
	return problem, nil
}

func (s *Service) ListUserProblems(ctx context.Context, userID int) ([]models.ShipmentProblem, error) {
	return s.store.ListProblemsByUser(ctx, userID)
}

func (s *Service) ResolveProblem(ctx context.Context, problemID int) error {
	err := s.store.DeleteProblem(ctx, problemID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrOrderNotFound
	}
	return err
}

// ListInterventionOrders is the admin view of orders waiting on a decision.
func (s *Service) ListInterventionOrders(ctx context.Context) ([]models.Order, error) {
	return s.store.ListInterventionOrders(ctx)
}

// DeleteOrder is the admin hard delete: the order disappears together with
// its history and problem reports.
func (s *Service) DeleteOrder(ctx context.Context, orderID int) error {
	err := s.store.DeleteOrderWithHistory(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrOrderNotFound
	}
	return err
}

func (s *Service) getByCode(ctx context.Context, orderCode string) (models.Order, error) {
	order, err := s.store.GetOrderByCode(ctx, orderCode)
	if errors.Is(err, store.ErrNotFound) {
		return models.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// publish sends the event best-effort. A broker outage must not fail a
// mutation that already committed.
func (s *Service) publish(ctx context.Context, eventType string, order models.Order) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, order.OrderCode, newEvent(eventType, order)); err != nil {
		log.Printf("failed to publish %s for order %s: %v", eventType, order.OrderCode, err)
	}
}

func (s *Service) uniqueOrderCode(ctx context.Context) (string, error) {
	for {
		code, err := randomDigits(orderCodeLength)
		if err != nil {
			return "", err
		}
		exists, err := s.store.OrderCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check order code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
}

// resolveLeg finds the start and end schedules on the route, the end strictly
// after the start in route order.
func resolveLeg(route []models.Schedule, startStop, endStop string) (models.Schedule, models.Schedule, error) {
	var start models.Schedule
	found := false
	for _, stop := range route {
		if stop.Stop == startStop {
			start = stop
			found = true
			break
		}
	}
	if !found {
		return models.Schedule{}, models.Schedule{}, ErrScheduleNotOnRoute
	}
	for _, stop := range route {
		if stop.Stop == endStop && stop.OrderNumber > start.OrderNumber {
			return start, stop, nil
		}
	}
	return models.Schedule{}, models.Schedule{}, ErrScheduleNotOnRoute
}

// onDay places a schedule's time of day on the given calendar day.
func onDay(day time.Time, timeOfDay time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		timeOfDay.Hour(), timeOfDay.Minute(), 0, 0, day.Location())
}

// randomDigits returns n random decimal digits from crypto/rand.
func randomDigits(n int) (string, error) {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("crypto/rand failed: %w", err)
	}
	digits := make([]byte, n)
	for i, b := range raw {
		digits[i] = '0' + b%10
	}
	return string(digits), nil
}
