package models

import "time"

// OrderStatus follows the shipment through its life. History is append-only:
// every transition adds an OrderStatusChange row.
type OrderStatus string

const (
	OrderStatusPosted         OrderStatus = "Posted"
	OrderStatusDriverAssigned OrderStatus = "Driver assigned"
	OrderStatusPickedUp       OrderStatus = "Picked up"
	OrderStatusDelivered      OrderStatus = "Delivered"
	OrderStatusIntervention   OrderStatus = "Intervention"
)

// ActiveStatuses are the statuses that still occupy vehicle capacity.
var ActiveStatuses = []OrderStatus{
	OrderStatusPosted,
	OrderStatusDriverAssigned,
	OrderStatusPickedUp,
}

// Order is a booked shipment. The 14-digit OrderCode is the public tracking
// handle; PickupCode/DeliveryCode are the 4-digit codes exchanged between
// customer, driver and recipient.
type Order struct {
	ID               int
	UserID           int
	RelationID       int
	DriverID         *int
	Status           OrderStatus
	Size             ParcelSize
	StartStop        string
	EndStop          string
	DepartureTime    time.Time
	ArrivalTime      time.Time
	Price            float64
	CreatedAt        time.Time
	OrderCode        string
	PickupCode       string
	DeliveryCode     string
	DeletedByUser    bool
	DeletedByCarrier bool
}

// OrderStatusChange is one entry of an order's append-only status history.
type OrderStatusChange struct {
	ID        int
	OrderID   int
	Status    OrderStatus
	ChangedAt time.Time
}

// ShipmentProblem is a customer-reported issue that puts the order into
// Intervention until an administrator resolves it.
type ShipmentProblem struct {
	ID          int
	OrderID     int
	UserID      int
	Description string
	Status      string
	CreatedAt   time.Time
}
