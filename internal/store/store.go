package store

import (
	"context"
	"errors"
	"time"

	"github.com/eyss21/projekt/internal/models"
)

// Sentinel errors shared by every store implementation. Services translate
// these into their own domain errors at the boundary.
var (
	ErrNotFound          = errors.New("record not found")
	ErrInsufficientFunds = errors.New("insufficient funds in wallet")
)

// UserStore persists platform accounts and their wallets.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUserByEmail(ctx context.Context, email string, userType models.UserType) (models.User, error)
	GetUserByID(ctx context.Context, id int) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user models.User) error
	DeleteUser(ctx context.Context, id int) error

	GetWallet(ctx context.Context, userID int) (models.Wallet, error)
	SetWalletBalance(ctx context.Context, userID int, balance float64) (models.Wallet, error)
}

// DriverStore persists carrier drivers.
type DriverStore interface {
	CreateDriver(ctx context.Context, driver models.Driver) (models.Driver, error)
	GetDriver(ctx context.Context, id int) (models.Driver, error)
	GetDriverByCode(ctx context.Context, idCode string) (models.Driver, error)
	ListDriversByOwner(ctx context.Context, ownerID int) ([]models.Driver, error)
	UpdateDriverPIN(ctx context.Context, id int, pin string) error
	DeleteDriver(ctx context.Context, id int) error
	DriverCodeExists(ctx context.Context, idCode string) (bool, error)
}

// FleetStore persists vehicles, relations, schedules and price lists.
type FleetStore interface {
	CreateVehicle(ctx context.Context, v models.Vehicle) (models.Vehicle, error)
	GetVehicle(ctx context.Context, id int) (models.Vehicle, error)
	ListVehiclesByOwner(ctx context.Context, ownerID int) ([]models.Vehicle, error)
	UpdateVehicle(ctx context.Context, v models.Vehicle) error
	DeleteVehicle(ctx context.Context, id int) error
	VehicleHasSchedules(ctx context.Context, vehicleID int) (bool, error)

	CreateRelation(ctx context.Context, r models.Relation) (models.Relation, error)
	GetRelation(ctx context.Context, id int) (models.Relation, error)
	ListRelationsByVehicle(ctx context.Context, vehicleID int) ([]models.Relation, error)
	ListRelationsByOwner(ctx context.Context, ownerID int) ([]models.Relation, error)
	// DeleteRelation detaches the relation's schedules and removes its
	// price list in the same transaction.
	DeleteRelation(ctx context.Context, vehicleID, relationID int) error

	CreateSchedule(ctx context.Context, s models.Schedule) (models.Schedule, error)
	GetSchedule(ctx context.Context, id int) (models.Schedule, error)
	// ListVehicleSchedules returns the schedules of a vehicle; relationID
	// nil selects the unassigned ones.
	ListVehicleSchedules(ctx context.Context, vehicleID int, relationID *int) ([]models.Schedule, error)
	// ListRelationSchedules returns a relation's stops ordered by
	// order_number, i.e. in route order.
	ListRelationSchedules(ctx context.Context, relationID int) ([]models.Schedule, error)
	ListSchedulesByStop(ctx context.Context, stop string) ([]models.Schedule, error)
	MaxOrderNumber(ctx context.Context, vehicleID int) (int, error)
	UpdateSchedule(ctx context.Context, s models.Schedule) error
	UpdateScheduleOrder(ctx context.Context, scheduleID, orderNumber int) error
	AssignScheduleToRelation(ctx context.Context, scheduleID, relationID int) error
	DeleteSchedule(ctx context.Context, id int) error
	DeleteRelationSchedules(ctx context.Context, relationID int) error
	DistinctStops(ctx context.Context) ([]string, error)

	UpsertPriceList(ctx context.Context, p models.PriceList) (models.PriceList, error)
	GetPriceList(ctx context.Context, relationID int) (models.PriceList, error)
}

// OrderStore persists orders, their append-only status history and shipment
// problems. Mutations that must be atomic (payment, delivery payout) are
// single store methods so one transaction covers them.
type OrderStore interface {
	// CreateOrderPaid inserts the order with its first history entry and
	// debits the customer wallet in one transaction. A balance lower than
	// the price fails with ErrInsufficientFunds and changes nothing.
	CreateOrderPaid(ctx context.Context, order models.Order) (models.Order, error)
	GetOrder(ctx context.Context, id int) (models.Order, error)
	GetOrderByCode(ctx context.Context, orderCode string) (models.Order, error)
	ListOrdersByUser(ctx context.Context, userID int) ([]models.Order, error)
	ListOrdersByCarrier(ctx context.Context, ownerID int) ([]models.Order, error)
	ListAllOrders(ctx context.Context) ([]models.Order, error)
	// ListActiveOrdersForRelationOn returns the orders still occupying
	// capacity on a relation for the given departure day.
	ListActiveOrdersForRelationOn(ctx context.Context, relationID int, day time.Time) ([]models.Order, error)
	OrderCodeExists(ctx context.Context, orderCode string) (bool, error)

	// UpdateStatus sets the order status and appends the history entry in
	// one transaction.
	UpdateStatus(ctx context.Context, orderID int, status models.OrderStatus) error
	// AssignDriver sets the driver, the pickup/delivery codes and the
	// Driver assigned status with its history entry in one transaction.
	AssignDriver(ctx context.Context, orderID, driverID int, pickupCode, deliveryCode string) (models.Order, error)
	// MarkDelivered sets the Delivered status with history and credits the
	// carrier wallet with the order price in one transaction.
	MarkDelivered(ctx context.Context, orderID int) error
	ListOrdersByDriver(ctx context.Context, driverID int, statuses []models.OrderStatus) ([]models.Order, error)
	ListStatusHistory(ctx context.Context, orderID int) ([]models.OrderStatusChange, error)
	SetDeletedByUser(ctx context.Context, orderID, userID int) error
	SetDeletedByCarrier(ctx context.Context, orderID, ownerID int) error

	CreateProblem(ctx context.Context, p models.ShipmentProblem) (models.ShipmentProblem, error)
	DeleteProblem(ctx context.Context, problemID int) error
	ListProblemsByUser(ctx context.Context, userID int) ([]models.ShipmentProblem, error)
	// ListInterventionOrders returns the orders that currently have an open
	// intervention problem.
	ListInterventionOrders(ctx context.Context) ([]models.Order, error)
	// DeleteOrderWithHistory removes the order together with its history
	// and problem entries.
	DeleteOrderWithHistory(ctx context.Context, orderID int) error
}
