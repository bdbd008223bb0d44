package graph

import (
	"time"

	"github.com/eyss21/projekt/graph/model"
	"github.com/eyss21/projekt/internal/models"
	"github.com/eyss21/projekt/internal/orders"
	"github.com/eyss21/projekt/internal/quote"
	"github.com/eyss21/projekt/internal/users"
)

func toUser(u models.User) *model.User {
	return &model.User{
		ID:          u.ID,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		CompanyName: u.CompanyName,
		PostalCode:  u.PostalCode,
		City:        u.City,
		Street:      u.Street,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		UserType:    string(u.UserType),
	}
}

func toWallet(w models.Wallet) *model.Wallet {
	return &model.Wallet{ID: w.ID, UserID: w.UserID, Balance: w.Balance}
}

func toDriver(d models.Driver) *model.Driver {
	return &model.Driver{
		ID:        d.ID,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		IDCode:    d.IDCode,
		OwnerID:   d.OwnerID,
	}
}

func toVehicle(v models.Vehicle) *model.Vehicle {
	return &model.Vehicle{
		ID:                 v.ID,
		Model:              v.Model,
		Capacity:           v.Capacity,
		RegistrationNumber: v.RegistrationNumber,
		OwnerID:            v.OwnerID,
	}
}

func toRelation(r models.Relation) *model.Relation {
	return &model.Relation{ID: r.ID, Name: r.Name, VehicleID: r.VehicleID}
}

func toSchedule(s models.Schedule) *model.Schedule {
	return &model.Schedule{
		ID:            s.ID,
		VehicleID:     s.VehicleID,
		Stop:          s.Stop,
		ArrivalTime:   s.ArrivalTime.Format("15:04"),
		DepartureTime: s.DepartureTime.Format("15:04"),
		OrderNumber:   s.OrderNumber,
		RelationID:    s.RelationID,
	}
}

func toSchedules(list []models.Schedule) []*model.Schedule {
	out := make([]*model.Schedule, len(list))
	for i, s := range list {
		out[i] = toSchedule(s)
	}
	return out
}

func toPriceList(p models.PriceList) *model.PriceList {
	return &model.PriceList{
		RelationID:   p.RelationID,
		BasePrice:    p.BasePrice,
		PricePerStop: p.PricePerStop,
	}
}

func toCourse(c models.Course) *model.Course {
	return &model.Course{
		ScheduleID:    c.ScheduleID,
		RelationID:    c.RelationID,
		VehicleID:     c.VehicleID,
		CompanyName:   c.CompanyName,
		StartStop:     c.StartStop,
		EndStop:       c.EndStop,
		DepartureTime: c.DepartureTime,
		ArrivalTime:   c.ArrivalTime,
		TotalPrice:    c.TotalPrice,
	}
}

func toOrder(o models.Order) *model.Order {
	return &model.Order{
		ID:            o.ID,
		UserID:        o.UserID,
		RelationID:    o.RelationID,
		DriverID:      o.DriverID,
		Status:        string(o.Status),
		Size:          model.ParcelSize(o.Size),
		StartStop:     o.StartStop,
		EndStop:       o.EndStop,
		DepartureTime: o.DepartureTime.Format(time.RFC3339),
		ArrivalTime:   o.ArrivalTime.Format(time.RFC3339),
		Price:         o.Price,
		OrderCode:     o.OrderCode,
		PickupCode:    o.PickupCode,
		DeliveryCode:  o.DeliveryCode,
	}
}

func toOrders(list []models.Order) []*model.Order {
	out := make([]*model.Order, len(list))
	for i, o := range list {
		out[i] = toOrder(o)
	}
	return out
}

func toProblem(p models.ShipmentProblem) *model.ShipmentProblem {
	return &model.ShipmentProblem{
		ID:          p.ID,
		OrderID:     p.OrderID,
		UserID:      p.UserID,
		Description: p.Description,
		Status:      p.Status,
	}
}

func toBookingResult(r quote.BookingResult) *model.BookingResult {
	return &model.BookingResult{
		OrderID:   r.OrderID,
		Status:    string(r.Status),
		OrderCode: r.OrderCode,
	}
}

func toTrackedOrder(t orders.TrackedOrder) *model.TrackedOrder {
	history := make([]*model.StatusChange, len(t.History))
	for i, h := range t.History {
		history[i] = &model.StatusChange{
			Status:    string(h.Status),
			ChangedAt: h.ChangedAt.Format(time.RFC3339),
		}
	}
	return &model.TrackedOrder{Order: toOrder(t.Order), History: history}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toRegisterInput(in model.RegisterInput) users.RegisterInput {
	return users.RegisterInput{
		Email:       in.Email,
		Password:    in.Password,
		PhoneNumber: deref(in.PhoneNumber),
		CompanyName: deref(in.CompanyName),
		PostalCode:  deref(in.PostalCode),
		City:        deref(in.City),
		Street:      deref(in.Street),
		FirstName:   deref(in.FirstName),
		LastName:    deref(in.LastName),
	}
}

// parseTimeOfDay reads a "HH:MM" form value onto the epoch date used by the
// schedules table.
func parseTimeOfDay(value string) (time.Time, error) {
	return time.Parse("15:04", value)
}
