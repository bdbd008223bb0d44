package graph

// This file holds the resolver implementations for schema.graphqls. The
// matching generated.QueryResolver / generated.MutationResolver interfaces
// come from `go generate ./...`.

import (
	"context"
	"errors"

	"github.com/eyss21/projekt/graph/generated"
	"github.com/eyss21/projekt/graph/model"
	"github.com/eyss21/projekt/internal/fleet"
	"github.com/eyss21/projekt/internal/models"
	"github.com/eyss21/projekt/internal/quote"
)

// Query returns generated.QueryResolver implementation.
func (r *Resolver) Query() generated.QueryResolver { return &queryResolver{r} }

// Mutation returns generated.MutationResolver implementation.
func (r *Resolver) Mutation() generated.MutationResolver { return &mutationResolver{r} }

type queryResolver struct{ *Resolver }
type mutationResolver struct{ *Resolver }

// --- queries ---

func (r *queryResolver) GetAllStops(ctx context.Context) ([]string, error) {
	return r.Catalog.AllStops(ctx)
}

func (r *queryResolver) GetAvailableStops(ctx context.Context, startStop string) ([]*model.AvailableStop, error) {
	stops, err := r.Catalog.AvailableStops(ctx, startStop)
	if err != nil {
		return nil, err
	}
	out := make([]*model.AvailableStop, len(stops))
	for i, s := range stops {
		out[i] = &model.AvailableStop{Stop: s.Stop, OrderNumber: s.OrderNumber}
	}
	return out, nil
}

func (r *queryResolver) GetAvailableCourses(ctx context.Context, startStop, endStop string, size model.ParcelSize, todayDelivery bool) ([]*model.Course, error) {
	found, err := r.Courses.AvailableCourses(ctx, startStop, endStop, models.ParcelSize(size), todayDelivery)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Course, len(found))
	for i, c := range found {
		out[i] = toCourse(c)
	}
	return out, nil
}

func (r *queryResolver) TrackShipment(ctx context.Context, orderCode string) (*model.TrackedOrder, error) {
	tracked, err := r.Orders.TrackShipment(ctx, orderCode)
	if err != nil {
		return nil, err
	}
	return toTrackedOrder(tracked), nil
}

func (r *queryResolver) GetUserOrders(ctx context.Context, userID int) ([]*model.Order, error) {
	list, err := r.Orders.ListUserOrders(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toOrders(list), nil
}

func (r *queryResolver) GetCarrierOrders(ctx context.Context, ownerID int) ([]*model.Order, error) {
	list, err := r.Orders.ListCarrierOrders(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return toOrders(list), nil
}

func (r *queryResolver) GetDriverOrders(ctx context.Context, driverID int) ([]*model.Order, error) {
	list, err := r.Orders.ListDriverOrders(ctx, driverID)
	if err != nil {
		return nil, err
	}
	return toOrders(list), nil
}

func (r *queryResolver) GetAllOrders(ctx context.Context) ([]*model.Order, error) {
	list, err := r.Orders.ListAllOrders(ctx)
	if err != nil {
		return nil, err
	}
	return toOrders(list), nil
}

func (r *queryResolver) GetInterventionOrders(ctx context.Context) ([]*model.Order, error) {
	list, err := r.Orders.ListInterventionOrders(ctx)
	if err != nil {
		return nil, err
	}
	return toOrders(list), nil
}

func (r *queryResolver) GetUserProblems(ctx context.Context, userID int) ([]*model.ShipmentProblem, error) {
	problems, err := r.Orders.ListUserProblems(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.ShipmentProblem, len(problems))
	for i, p := range problems {
		out[i] = toProblem(p)
	}
	return out, nil
}

func (r *queryResolver) GetUsers(ctx context.Context) ([]*model.User, error) {
	list, err := r.Users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.User, len(list))
	for i, u := range list {
		out[i] = toUser(u)
	}
	return out, nil
}

func (r *queryResolver) GetWallet(ctx context.Context, userID int) (*model.Wallet, error) {
	wallet, err := r.Users.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toWallet(wallet), nil
}

func (r *queryResolver) GetVehicles(ctx context.Context, ownerID int) ([]*model.Vehicle, error) {
	list, err := r.Fleet.ListVehicles(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Vehicle, len(list))
	for i, v := range list {
		out[i] = toVehicle(v)
	}
	return out, nil
}

func (r *queryResolver) GetRelations(ctx context.Context, ownerID int) ([]*model.Relation, error) {
	list, err := r.Fleet.ListRelations(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Relation, len(list))
	for i, rel := range list {
		out[i] = toRelation(rel)
	}
	return out, nil
}

func (r *queryResolver) GetVehicleSchedules(ctx context.Context, vehicleID int, relationID *int) ([]*model.Schedule, error) {
	list, err := r.Fleet.ListVehicleSchedules(ctx, vehicleID, relationID)
	if err != nil {
		return nil, err
	}
	return toSchedules(list), nil
}

func (r *queryResolver) GetRelationSchedules(ctx context.Context, relationID int) ([]*model.Schedule, error) {
	list, err := r.Fleet.ListRelationSchedules(ctx, relationID)
	if err != nil {
		return nil, err
	}
	return toSchedules(list), nil
}

func (r *queryResolver) GetPriceList(ctx context.Context, relationID int) (*model.PriceList, error) {
	p, err := r.Fleet.GetPriceList(ctx, relationID)
	if errors.Is(err, fleet.ErrNotFound) {
		// A relation without a tariff is a valid state, not an error.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toPriceList(p), nil
}

func (r *queryResolver) GetDrivers(ctx context.Context, ownerID int) ([]*model.Driver, error) {
	list, err := r.Users.ListDrivers(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Driver, len(list))
	for i, d := range list {
		out[i] = toDriver(d)
	}
	return out, nil
}

// --- account mutations ---

func (r *mutationResolver) RegisterCustomer(ctx context.Context, input model.RegisterInput) (*model.User, error) {
	user, err := r.Users.Register(ctx, models.UserTypeCustomer, toRegisterInput(input))
	if err != nil {
		return nil, err
	}
	return toUser(user), nil
}

func (r *mutationResolver) RegisterCarrier(ctx context.Context, input model.RegisterInput) (*model.User, error) {
	user, err := r.Users.Register(ctx, models.UserTypeCarrier, toRegisterInput(input))
	if err != nil {
		return nil, err
	}
	return toUser(user), nil
}

func (r *mutationResolver) LoginCustomer(ctx context.Context, email, password string) (*model.User, error) {
	return r.login(ctx, models.UserTypeCustomer, email, password)
}

func (r *mutationResolver) LoginCarrier(ctx context.Context, email, password string) (*model.User, error) {
	return r.login(ctx, models.UserTypeCarrier, email, password)
}

func (r *mutationResolver) LoginAdmin(ctx context.Context, email, password string) (*model.User, error) {
	return r.login(ctx, models.UserTypeAdmin, email, password)
}

func (r *mutationResolver) login(ctx context.Context, userType models.UserType, email, password string) (*model.User, error) {
	user, err := r.Users.Login(ctx, userType, email, password)
	if err != nil {
		return nil, err
	}
	return toUser(user), nil
}

func (r *mutationResolver) UpdateProfile(ctx context.Context, userID int, input model.RegisterInput) (*model.User, error) {
	user, err := r.Users.UpdateProfile(ctx, userID, toRegisterInput(input))
	if err != nil {
		return nil, err
	}
	return toUser(user), nil
}

func (r *mutationResolver) ChangePassword(ctx context.Context, userID int, currentPassword, newPassword string) (bool, error) {
	if err := r.Users.ChangePassword(ctx, userID, currentPassword, newPassword); err != nil {
		return false, err
	}
	return true, nil
}

func (r *mutationResolver) DeleteUser(ctx context.Context, userID int) (bool, error) {
	if err := r.Users.DeleteUser(ctx, userID); err != nil {
		return false, err
	}
	return true, nil
}

func (r *mutationResolver) SetWalletBalance(ctx context.Context, userID int, balance float64) (*model.Wallet, error) {
	wallet, err := r.Users.SetWalletBalance(ctx, userID, balance)
	if err != nil {
		return nil, err
	}
	return toWallet(wallet), nil
}

// --- driver mutations ---

func (r *mutationResolver) CreateDriver(ctx context.Context, ownerID int, firstName, lastName, pin string) (*model.Driver, error) {
	driver, err := r.Users.CreateDriver(ctx, ownerID, firstName, lastName, pin)
	if err != nil {
		return nil, err
	}
	return toDriver(driver), nil
}

func (r *mutationResolver) LoginDriver(ctx context.Context, idCode, pin string) (*model.Driver, error) {
	driver, err := r.Users.DriverLogin(ctx, idCode, pin)
	if err != nil {
		return nil, err
	}
	return toDriver(driver), nil
}

func (r *mutationResolver) ChangeDriverPin(ctx context.Context, driverID int, pin string) (bool, error) {
	if err := r.Users.ChangeDriverPIN(ctx, driverID, pin); err != nil {
		return false, err
	}
	return true, nil
}

func (r *mutationResolver) DeleteDriver(ctx context.Context, driverID int) (bool, error) {
	if err := r.Users.DeleteDriver(ctx, driverID); err != nil {
		return false, err
	}
	return true, nil
}

// --- fleet mutations ---

func (r *mutationResolver) AddVehicle(ctx context.Context, ownerID int, vehicleModel string, capacity int, registrationNumber string) (*model.Vehicle, error) {
	v, err := r.Fleet.AddVehicle(ctx, ownerID, vehicleModel, capacity, registrationNumber)
	if err != nil {
		return nil, err
	}
	return toVehicle(v), nil
}

func (r *mutationResolver) UpdateVehicle(ctx context.Context, vehicleID int, vehicleModel string, capacity int, registrationNumber string) (bool, error) {
	err := r.Fleet.UpdateVehicle(ctx, models.Vehicle{
		ID:                 vehicleID,
		Model:              vehicleModel,
		Capacity:           capacity,
		RegistrationNumber: registrationNumber,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *mutationResolver) DeleteVehicle(ctx context.Context, vehicleID int) (bool, error) {
	if err := r.Fleet.DeleteVehicle(ctx, vehicleID); err != nil {
		return false, err
	}
	return true, nil
}

func (r *mutationResolver) AddSchedule(ctx context.Context, input model.ScheduleInput) (*model.Schedule, error) {
	arrival, err := parseTimeOfDay(input.ArrivalTime)
	if err != nil {
		return nil, err
	}
	departure, err := parseTimeOfDay(input.DepartureTime)
	if err != nil {
		return nil, err
	}
	sc, err := r.Fleet.AddSchedule(ctx, models.Schedule{
		VehicleID:     input.VehicleID,
		Stop:          input.Stop,
		ArrivalTime:   arrival,
		DepartureTime: departure,
	})
	if err != nil {
		return nil, err
	}
	return toSchedule(sc), nil
}

func (r *mutationResolver) UpdateSchedule(ctx context.Context, scheduleID int, stop, arrivalTime, departureTime string) (bool, error) {
	arrival, err := parseTimeOfDay(arrivalTime)
	if err != nil {
		return false, err
	}
	departure, err := parseTimeOfDay(departureTime)
	if err != nil {
		return false, err
	}
	err = r.Fleet.UpdateSchedule(ctx, models.Schedule{
		ID:            scheduleID,
		Stop:          stop,
		ArrivalTime:   arrival,
		DepartureTime: departure,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *mutationResolver) ReorderSchedule(ctx context.Context, scheduleID, orderNumber int) (bool, error) {
	if err := r.Fleet.ReorderSchedule(ctx, scheduleID, orderNumber); err != nil {
		return false, err
	}
	return true, nil
}

func (r *mutationResolver) AssignScheduleToRelation(ctx context.Context, scheduleID, relationID int) (bool, error) {
	if err := r.Fleet.AssignScheduleToRelation(ctx, scheduleID, relationID); err != nil {
		return false, err
	}
	return true, nil
}

func (r *mutationResolver) DeleteSchedule(ctx context.Context, scheduleID int) (bool, error) {
	if err := r.Fleet.DeleteSchedule(ctx, scheduleID); err != nil {
		return false, err
	}
	return true, nil
}

func (r *mutationResolver) CreateRelation(ctx context.Context, vehicleID int, name string) (*model.Relation, error) {
	rel, err := r.Fleet.CreateRelation(ctx, vehicleID, name)
	if err != nil {
		return nil, err
	}
	return toRelation(rel), nil
}

func (r *mutationResolver) DeleteRelation(ctx context.Context, vehicleID, relationID int) (bool, error) {
	if err := r.Fleet.DeleteRelation(ctx, vehicleID, relationID); err != nil {
		return false, err
	}
	return true, nil
}

func (r *mutationResolver) SetPriceList(ctx context.Context, relationID int, basePrice, pricePerStop float64) (*model.PriceList, error) {
	p, err := r.Fleet.SetPriceList(ctx, relationID, basePrice, pricePerStop)
	if err != nil {
		return nil, err
	}
	return toPriceList(p), nil
}

// --- order mutations ---

func (r *mutationResolver) CreateOrder(ctx context.Context, input model.CreateOrderInput) (*model.BookingResult, error) {
	result, err := r.Booker.CreateOrder(ctx, quote.BookingRequest{
		UserID:        input.UserID,
		RelationID:    input.RelationID,
		Size:          models.ParcelSize(input.Size),
		StartStop:     input.StartStop,
		EndStop:       input.EndStop,
		Price:         input.Price,
		TodayDelivery: input.TodayDelivery,
	})
	if err != nil {
		return nil, err
	}
	return toBookingResult(result), nil
}

// BookShipment drives one whole quote-engine pass: fill the form, fetch and
// filter quotes, select the course, price it and submit.
func (r *mutationResolver) BookShipment(ctx context.Context, input model.BookShipmentInput) (*model.BookingResult, error) {
	engine := quote.NewEngine(r.Catalog, r.Courses, r.Booker)
	engine.SetOrigin(input.StartStop)
	engine.SetDestination(input.EndStop)
	engine.SetTodayDelivery(input.TodayDelivery)
	if err := engine.SetSize(models.ParcelSize(input.Size)); err != nil {
		return nil, err
	}

	if _, err := engine.SearchCourses(ctx); err != nil {
		return nil, err
	}
	if err := engine.SelectCourse(input.ScheduleID); err != nil {
		return nil, err
	}

	result, err := engine.Submit(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	return toBookingResult(result), nil
}

func (r *mutationResolver) AssignDriverToOrder(ctx context.Context, orderID, driverID int) (*model.Order, error) {
	order, err := r.Orders.AssignDriver(ctx, orderID, driverID)
	if err != nil {
		return nil, err
	}
	return toOrder(order), nil
}

func (r *mutationResolver) AcceptShipment(ctx context.Context, orderCode, pickupCode string) (*model.Order, error) {
	order, err := r.Orders.AcceptShipment(ctx, orderCode, pickupCode)
	if err != nil {
		return nil, err
	}
	return toOrder(order), nil
}

func (r *mutationResolver) DeliverShipment(ctx context.Context, orderCode, deliveryCode string) (*model.Order, error) {
	order, err := r.Orders.DeliverShipment(ctx, orderCode, deliveryCode)
	if err != nil {
		return nil, err
	}
	return toOrder(order), nil
}

func (r *mutationResolver) RemoveOrderFromUserHistory(ctx context.Context, orderID, userID int) (bool, error) {
	if err := r.Orders.RemoveFromUserHistory(ctx, orderID, userID); err != nil {
		return false, err
	}
	return true, nil
}

func (r *mutationResolver) RemoveOrderFromCarrierHistory(ctx context.Context, orderID, ownerID int) (bool, error) {
	if err := r.Orders.RemoveFromCarrierHistory(ctx, orderID, ownerID); err != nil {
		return false, err
	}
	return true, nil
}

func (r *mutationResolver) AddShipmentProblem(ctx context.Context, orderID, userID int, description string) (*model.ShipmentProblem, error) {
	problem, err := r.Orders.ReportProblem(ctx, orderID, userID, description)
	if err != nil {
		return nil, err
	}
	return toProblem(problem), nil
}

func (r *mutationResolver) ResolveShipmentProblem(ctx context.Context, problemID int) (bool, error) {
	if err := r.Orders.ResolveProblem(ctx, problemID); err != nil {
		return false, err
	}
	return true, nil
}

func (r *mutationResolver) DeleteOrder(ctx context.Context, orderID int) (bool, error) {
	if err := r.Orders.DeleteOrder(ctx, orderID); err != nil {
		return false, err
	}
	return true, nil
}
