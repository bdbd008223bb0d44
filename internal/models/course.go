package models

// ParcelSize is the declared parcel size. It drives both the capacity units a
// parcel occupies on a vehicle and the client-side price multiplier.
type ParcelSize string

const (
	SizeS ParcelSize = "S"
	SizeM ParcelSize = "M"
	SizeL ParcelSize = "L"
)

// Valid reports whether s is one of the three declared sizes.
func (s ParcelSize) Valid() bool {
	return s == SizeS || s == SizeM || s == SizeL
}

// Units returns the capacity units the size occupies on a vehicle.
func (s ParcelSize) Units() int {
	switch s {
	case SizeM:
		return 2
	case SizeL:
		return 3
	default:
		return 1
	}
}

// Course is one scheduled trip able to carry a parcel between two stops on a
// given day. TotalPrice is the pre-size-multiplier base computed from the
// relation's price list; the quote engine applies the size multiplier.
// Courses are fetched fresh for every quote request and never persisted.
type Course struct {
	ScheduleID    int
	RelationID    int
	VehicleID     int
	CompanyName   string
	StartStop     string
	EndStop       string
	DepartureTime string
	ArrivalTime   string
	TotalPrice    float64
}

// StopAvailability is one destination reachable from a chosen origin,
// carrying the route position used to keep stops in travel order.
type StopAvailability struct {
	Stop        string
	OrderNumber int
}
