package orders

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/eyss21/projekt/internal/models"
	"github.com/eyss21/projekt/internal/quote"
	"github.com/eyss21/projekt/internal/store"
)

// fakeOrderStore is an in-memory store.OrderStore covering what the service
// exercises; payment and payout are modelled with two wallet balances.
type fakeOrderStore struct {
	orders        map[int]models.Order
	history       map[int][]models.OrderStatusChange
	problems      []models.ShipmentProblem
	balance       float64
	carrierCredit float64
	nextID        int
}

func newFakeOrderStore(balance float64) *fakeOrderStore {
	return &fakeOrderStore{
		orders:  map[int]models.Order{},
		history: map[int][]models.OrderStatusChange{},
		balance: balance,
		nextID:  1,
	}
}

func (f *fakeOrderStore) CreateOrderPaid(ctx context.Context, order models.Order) (models.Order, error) {
	if f.balance < order.Price {
		return models.Order{}, store.ErrInsufficientFunds
	}
	f.balance -= order.Price
	order.ID = f.nextID
	f.nextID++
	f.orders[order.ID] = order
	f.appendHistory(order.ID, order.Status)
	return order, nil
}

func (f *fakeOrderStore) appendHistory(orderID int, status models.OrderStatus) {
	f.history[orderID] = append(f.history[orderID],
		models.OrderStatusChange{OrderID: orderID, Status: status, ChangedAt: time.Now()})
}

func (f *fakeOrderStore) GetOrder(ctx context.Context, id int) (models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return models.Order{}, store.ErrNotFound
	}
	return o, nil
}

func (f *fakeOrderStore) GetOrderByCode(ctx context.Context, orderCode string) (models.Order, error) {
	for _, o := range f.orders {
		if o.OrderCode == orderCode {
			return o, nil
		}
	}
	return models.Order{}, store.ErrNotFound
}

func (f *fakeOrderStore) ListOrdersByUser(ctx context.Context, userID int) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeOrderStore) ListOrdersByCarrier(ctx context.Context, ownerID int) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeOrderStore) ListAllOrders(ctx context.Context) ([]models.Order, error) { return nil, nil }

func (f *fakeOrderStore) ListActiveOrdersForRelationOn(ctx context.Context, relationID int, day time.Time) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeOrderStore) OrderCodeExists(ctx context.Context, orderCode string) (bool, error) {
	for _, o := range f.orders {
		if o.OrderCode == orderCode {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOrderStore) UpdateStatus(ctx context.Context, orderID int, status models.OrderStatus) error {
	o, ok := f.orders[orderID]
	if !ok {
		return store.ErrNotFound
	}
	o.Status = status
	f.orders[orderID] = o
	f.appendHistory(orderID, status)
	return nil
}

func (f *fakeOrderStore) AssignDriver(ctx context.Context, orderID, driverID int, pickupCode, deliveryCode string) (models.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return models.Order{}, store.ErrNotFound
	}
	o.DriverID = &driverID
	o.PickupCode = pickupCode
	o.DeliveryCode = deliveryCode
	o.Status = models.OrderStatusDriverAssigned
	f.orders[orderID] = o
	f.appendHistory(orderID, o.Status)
	return o, nil
}

func (f *fakeOrderStore) MarkDelivered(ctx context.Context, orderID int) error {
	o, ok := f.orders[orderID]
	if !ok {
		return store.ErrNotFound
	}
	o.Status = models.OrderStatusDelivered
	f.orders[orderID] = o
	f.appendHistory(orderID, o.Status)
	f.carrierCredit += o.Price
	return nil
}

func (f *fakeOrderStore) ListOrdersByDriver(ctx context.Context, driverID int, statuses []models.OrderStatus) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeOrderStore) ListStatusHistory(ctx context.Context, orderID int) ([]models.OrderStatusChange, error) {
	return f.history[orderID], nil
}

func (f *fakeOrderStore) SetDeletedByUser(ctx context.Context, orderID, userID int) error {
	o, ok := f.orders[orderID]
	if !ok || o.UserID != userID {
		return store.ErrNotFound
	}
	o.DeletedByUser = true
	f.orders[orderID] = o
	return nil
}

func (f *fakeOrderStore) SetDeletedByCarrier(ctx context.Context, orderID, ownerID int) error {
	return nil
}

func (f *fakeOrderStore) CreateProblem(ctx context.Context, p models.ShipmentProblem) (models.ShipmentProblem, error) {
	p.ID = len(f.problems) + 1
	f.problems = append(f.problems, p)
	return p, nil
}

func (f *fakeOrderStore) DeleteProblem(ctx context.Context, problemID int) error { return nil }

func (f *fakeOrderStore) ListProblemsByUser(ctx context.Context, userID int) ([]models.ShipmentProblem, error) {
	return f.problems, nil
}

func (f *fakeOrderStore) ListInterventionOrders(ctx context.Context) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeOrderStore) DeleteOrderWithHistory(ctx context.Context, orderID int) error {
	if _, ok := f.orders[orderID]; !ok {
		return store.ErrNotFound
	}
	delete(f.orders, orderID)
	delete(f.history, orderID)
	return nil
}

type fakeFleet struct {
	route []models.Schedule
}

func (f *fakeFleet) ListRelationSchedules(ctx context.Context, relationID int) ([]models.Schedule, error) {
	return f.route, nil
}

type fakePublisher struct {
	events []Event
}

func (f *fakePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	f.events = append(f.events, value.(Event))
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func timeOfDay(hour, min int) time.Time {
	return time.Date(1970, 1, 1, hour, min, 0, 0, time.UTC)
}

func relID(id int) *int { return &id }

func testRoute() []models.Schedule {
	return []models.Schedule{
		{ID: 1, Stop: "Gdansk", OrderNumber: 1, RelationID: relID(3),
			DepartureTime: timeOfDay(14, 0), ArrivalTime: timeOfDay(13, 50)},
		{ID: 2, Stop: "Warszawa", OrderNumber: 2, RelationID: relID(3),
			DepartureTime: timeOfDay(18, 30), ArrivalTime: timeOfDay(18, 20)},
	}
}

func bookingRequest() quote.BookingRequest {
	return quote.BookingRequest{
		UserID: 5, RelationID: 3, Size: models.SizeM,
		StartStop: "Gdansk", EndStop: "Warszawa",
		Price: 40.00, TodayDelivery: true,
	}
}

func newTestService(balance float64) (*Service, *fakeOrderStore, *fakePublisher) {
	st := newFakeOrderStore(balance)
	pub := &fakePublisher{}
	svc := NewService(st, &fakeFleet{route: testRoute()}, pub)
	svc.now = func() time.Time { return time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC) }
	return svc, st, pub
}

func TestCreateOrder(t *testing.T) {
	svc, st, pub := newTestService(100)

	result, err := svc.CreateOrder(context.Background(), bookingRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != models.OrderStatusPosted {
		t.Errorf("status = %s, want Posted", result.Status)
	}
	if len(result.OrderCode) != 14 {
		t.Errorf("order code %q, want 14 digits", result.OrderCode)
	}
	if st.balance != 60 {
		t.Errorf("balance = %v, want 60 after debiting 40", st.balance)
	}

	created := st.orders[result.OrderID]
	wantDeparture := time.Date(2026, 8, 28, 14, 0, 0, 0, time.UTC)
	if !created.DepartureTime.Equal(wantDeparture) {
		t.Errorf("departure = %v, want %v", created.DepartureTime, wantDeparture)
	}
	wantArrival := time.Date(2026, 8, 28, 18, 20, 0, 0, time.UTC)
	if !created.ArrivalTime.Equal(wantArrival) {
		t.Errorf("arrival = %v, want %v", created.ArrivalTime, wantArrival)
	}

	if len(pub.events) != 1 || pub.events[0].Type != EventOrderCreated {
		t.Errorf("expected a single order.created event, got %+v", pub.events)
	}
	if len(st.history[result.OrderID]) != 1 {
		t.Errorf("expected one history entry, got %d", len(st.history[result.OrderID]))
	}
}

func TestCreateOrder_TomorrowShiftsTheDay(t *testing.T) {
	svc, st, _ := newTestService(100)
	req := bookingRequest()
	req.TodayDelivery = false

	result, err := svc.CreateOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	created := st.orders[result.OrderID]
	if created.DepartureTime.Day() != 29 {
		t.Errorf("departure day = %d, want 29", created.DepartureTime.Day())
	}
}

func TestCreateOrder_InsufficientBalance(t *testing.T) {
	svc, st, pub := newTestService(10)

	_, err := svc.CreateOrder(context.Background(), bookingRequest())
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("error = %v, want ErrInsufficientBalance", err)
	}
	if !strings.Contains(err.Error(), "Insufficient balance") {
		t.Errorf("error message %q must carry the Insufficient balance contract", err)
	}
	if st.balance != 10 {
		t.Errorf("balance = %v, the failed booking must not debit", st.balance)
	}
	if len(pub.events) != 0 {
		t.Errorf("no event expected on failure, got %+v", pub.events)
	}
}

func TestCreateOrder_StopNotOnRoute(t *testing.T) {
	svc, _, _ := newTestService(100)
	req := bookingRequest()
	req.EndStop = "Krakow"

	if _, err := svc.CreateOrder(context.Background(), req); !errors.Is(err, ErrScheduleNotOnRoute) {
		t.Fatalf("error = %v, want ErrScheduleNotOnRoute", err)
	}
}

func TestAssignDriver(t *testing.T) {
	svc, st, pub := newTestService(100)
	result, err := svc.CreateOrder(context.Background(), bookingRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order, err := svc.AssignDriver(context.Background(), result.OrderID, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != models.OrderStatusDriverAssigned {
		t.Errorf("status = %s, want Driver assigned", order.Status)
	}
	if order.DriverID == nil || *order.DriverID != 9 {
		t.Errorf("driver = %v, want 9", order.DriverID)
	}
	if len(order.PickupCode) != 4 || len(order.DeliveryCode) != 4 {
		t.Errorf("handover codes %q/%q, want 4 digits each", order.PickupCode, order.DeliveryCode)
	}
	if len(st.history[result.OrderID]) != 2 {
		t.Errorf("expected two history entries, got %d", len(st.history[result.OrderID]))
	}
	if pub.events[len(pub.events)-1].Type != EventOrderStatusChanged {
		t.Errorf("expected order.status_changed event")
	}

	// A second assignment hits the wrong status.
	if _, err := svc.AssignDriver(context.Background(), result.OrderID, 10); !errors.Is(err, ErrWrongStatus) {
		t.Errorf("error = %v, want ErrWrongStatus", err)
	}
}

func TestAcceptAndDeliverShipment(t *testing.T) {
	svc, st, _ := newTestService(100)
	result, err := svc.CreateOrder(context.Background(), bookingRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Pickup before assignment is the wrong state.
	if _, err := svc.AcceptShipment(context.Background(), result.OrderCode, "0000"); !errors.Is(err, ErrWrongStatus) {
		t.Fatalf("error = %v, want ErrWrongStatus before assignment", err)
	}

	assigned, err := svc.AssignDriver(context.Background(), result.OrderID, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.AcceptShipment(context.Background(), result.OrderCode, "nope"); !errors.Is(err, ErrWrongCode) {
		t.Fatalf("error = %v, want ErrWrongCode", err)
	}

	picked, err := svc.AcceptShipment(context.Background(), result.OrderCode, assigned.PickupCode)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if picked.Status != models.OrderStatusPickedUp {
		t.Errorf("status = %s, want Picked up", picked.Status)
	}

	// Delivery needs the delivery code, not the pickup code.
	if _, err := svc.DeliverShipment(context.Background(), result.OrderCode, assigned.PickupCode); err == nil {
		t.Fatal("expected wrong-code delivery to fail")
	}

	delivered, err := svc.DeliverShipment(context.Background(), result.OrderCode, assigned.DeliveryCode)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delivered.Status != models.OrderStatusDelivered {
		t.Errorf("status = %s, want Delivered", delivered.Status)
	}
	if st.carrierCredit != 40 {
		t.Errorf("carrier credit = %v, want the order price 40", st.carrierCredit)
	}
}

func TestTrackShipment(t *testing.T) {
	svc, _, _ := newTestService(100)
	result, err := svc.CreateOrder(context.Background(), bookingRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AssignDriver(context.Background(), result.OrderID, 9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tracked, err := svc.TrackShipment(context.Background(), result.OrderCode)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tracked.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(tracked.History))
	}
	if tracked.History[0].Status != models.OrderStatusPosted ||
		tracked.History[1].Status != models.OrderStatusDriverAssigned {
		t.Errorf("history = %+v, want Posted then Driver assigned", tracked.History)
	}

	if _, err := svc.TrackShipment(context.Background(), "00000000000000"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("error = %v, want ErrOrderNotFound", err)
	}
}

func TestReportProblem(t *testing.T) {
	svc, st, pub := newTestService(100)
	result, err := svc.CreateOrder(context.Background(), bookingRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	problem, err := svc.ReportProblem(context.Background(), result.OrderID, 5, "parcel damaged")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if problem.Status != "open" {
		t.Errorf("problem status = %q, want open", problem.Status)
	}
	if st.orders[result.OrderID].Status != models.OrderStatusIntervention {
		t.Errorf("order status = %s, want Intervention", st.orders[result.OrderID].Status)
	}
	last := pub.events[len(pub.events)-1]
	if last.Type != EventOrderStatusChanged || last.Status != models.OrderStatusIntervention {
		t.Errorf("last event = %+v, want Intervention status change", last)
	}
}
