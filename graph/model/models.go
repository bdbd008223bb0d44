// Package model holds the hand-written GraphQL models; gqlgen binds the
// schema types to these via autobind.
package model

import (
	"fmt"
	"io"
	"strconv"
)

type ParcelSize string

const (
	ParcelSizeS ParcelSize = "S"
	ParcelSizeM ParcelSize = "M"
	ParcelSizeL ParcelSize = "L"
)

func (s ParcelSize) IsValid() bool {
	switch s {
	case ParcelSizeS, ParcelSizeM, ParcelSizeL:
		return true
	}
	return false
}

func (s ParcelSize) String() string { return string(s) }

func (s *ParcelSize) UnmarshalGQL(v interface{}) error {
	str, ok := v.(string)
	if !ok {
		return fmt.Errorf("enums must be strings")
	}
	*s = ParcelSize(str)
	if !s.IsValid() {
		return fmt.Errorf("%s is not a valid ParcelSize", str)
	}
	return nil
}

func (s ParcelSize) MarshalGQL(w io.Writer) {
	fmt.Fprint(w, strconv.Quote(string(s)))
}

type AvailableStop struct {
	Stop        string `json:"stop"`
	OrderNumber int    `json:"orderNumber"`
}

type Course struct {
	ScheduleID    int     `json:"scheduleId"`
	RelationID    int     `json:"relationId"`
	VehicleID     int     `json:"vehicleId"`
	CompanyName   string  `json:"companyName"`
	StartStop     string  `json:"startStop"`
	EndStop       string  `json:"endStop"`
	DepartureTime string  `json:"departureTime"`
	ArrivalTime   string  `json:"arrivalTime"`
	TotalPrice    float64 `json:"totalPrice"`
}

type User struct {
	ID          int    `json:"id"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	CompanyName string `json:"companyName"`
	PostalCode  string `json:"postalCode"`
	City        string `json:"city"`
	Street      string `json:"street"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	UserType    string `json:"userType"`
}

type Wallet struct {
	ID      int     `json:"id"`
	UserID  int     `json:"userId"`
	Balance float64 `json:"balance"`
}

type Driver struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	IDCode    string `json:"idCode"`
	OwnerID   int    `json:"ownerId"`
}

type Vehicle struct {
	ID                 int    `json:"id"`
	Model              string `json:"model"`
	Capacity           int    `json:"capacity"`
	RegistrationNumber string `json:"registrationNumber"`
	OwnerID            int    `json:"ownerId"`
}

type Relation struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	VehicleID int    `json:"vehicleId"`
}

type Schedule struct {
	ID            int    `json:"id"`
	VehicleID     int    `json:"vehicleId"`
	Stop          string `json:"stop"`
	ArrivalTime   string `json:"arrivalTime"`
	DepartureTime string `json:"departureTime"`
	OrderNumber   int    `json:"orderNumber"`
	RelationID    *int   `json:"relationId"`
}

type PriceList struct {
	RelationID   int     `json:"relationId"`
	BasePrice    float64 `json:"basePrice"`
	PricePerStop float64 `json:"pricePerStop"`
}

type Order struct {
	ID            int        `json:"id"`
	UserID        int        `json:"userId"`
	RelationID    int        `json:"relationId"`
	DriverID      *int       `json:"driverId"`
	Status        string     `json:"status"`
	Size          ParcelSize `json:"size"`
	StartStop     string     `json:"startStop"`
	EndStop       string     `json:"endStop"`
	DepartureTime string     `json:"departureTime"`
	ArrivalTime   string     `json:"arrivalTime"`
	Price         float64    `json:"price"`
	OrderCode     string     `json:"orderCode"`
	PickupCode    string     `json:"pickupCode"`
	DeliveryCode  string     `json:"deliveryCode"`
}

type StatusChange struct {
	Status    string `json:"status"`
	ChangedAt string `json:"changedAt"`
}

type TrackedOrder struct {
	Order   *Order          `json:"order"`
	History []*StatusChange `json:"history"`
}

type ShipmentProblem struct {
	ID          int    `json:"id"`
	OrderID     int    `json:"orderId"`
	UserID      int    `json:"userId"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type BookingResult struct {
	OrderID   int    `json:"orderId"`
	Status    string `json:"status"`
	OrderCode string `json:"orderCode"`
}

type RegisterInput struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	PhoneNumber *string `json:"phoneNumber"`
	CompanyName *string `json:"companyName"`
	PostalCode  *string `json:"postalCode"`
	City        *string `json:"city"`
	Street      *string `json:"street"`
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
}

type CreateOrderInput struct {
	UserID        int        `json:"userId"`
	RelationID    int        `json:"relationId"`
	Size          ParcelSize `json:"size"`
	StartStop     string     `json:"startStop"`
	EndStop       string     `json:"endStop"`
	Price         float64    `json:"price"`
	TodayDelivery bool       `json:"todayDelivery"`
}

type BookShipmentInput struct {
	UserID        int        `json:"userId"`
	StartStop     string     `json:"startStop"`
	EndStop       string     `json:"endStop"`
	Size          ParcelSize `json:"size"`
	TodayDelivery bool       `json:"todayDelivery"`
	ScheduleID    int        `json:"scheduleId"`
}

type ScheduleInput struct {
	VehicleID     int    `json:"vehicleId"`
	Stop          string `json:"stop"`
	ArrivalTime   string `json:"arrivalTime"`
	DepartureTime string `json:"departureTime"`
}
