package models

import "time"

// Vehicle is a carrier-owned van/bus that runs scheduled trips. Capacity is
// measured in parcel units (S=1, M=2, L=3).
type Vehicle struct {
	ID                 int
	Model              string
	Capacity           int
	RegistrationNumber string
	OwnerID            int
	CreatedAt          time.Time
}

// Relation is a carrier-defined route: an ordered sequence of schedule stops
// a vehicle runs. Orders reference the relation they travel on.
type Relation struct {
	ID        int
	Name      string
	VehicleID int
}

// Schedule is one stop of a vehicle's run: the stop name, the times of day
// the vehicle arrives/departs there, and the position on the route.
// Arrival/departure carry a fixed epoch date; only the time of day matters.
type Schedule struct {
	ID            int
	VehicleID     int
	Stop          string
	ArrivalTime   time.Time
	DepartureTime time.Time
	OrderNumber   int
	RelationID    *int
	CreatedAt     time.Time
}

// PriceList is the per-relation tariff: a flat base price plus a price for
// every stop travelled.
type PriceList struct {
	RelationID   int
	BasePrice    float64
	PricePerStop float64
}
