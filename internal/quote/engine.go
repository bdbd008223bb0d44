package quote

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/eyss21/projekt/internal/models"
)

// State tracks a booking attempt through the form flow. A failing step never
// leaves a partial transition behind: the engine returns to the state it held
// before the step.
type State string

const (
	StateIdle           State = "Idle"
	StateFormFilling    State = "FormFilling"
	StateQuotesFetched  State = "QuotesFetched"
	StateCourseSelected State = "CourseSelected"
	StateSubmitting     State = "Submitting"
	StateBooked         State = "Booked"
)

// StopCatalog is the stop-availability lookup the engine consumes.
type StopCatalog interface {
	AllStops(ctx context.Context) ([]string, error)
	AvailableStops(ctx context.Context, startStop string) ([]models.StopAvailability, error)
}

// CourseSearcher is the course-search lookup the engine consumes. The
// returned courses carry the pre-size-multiplier base price.
type CourseSearcher interface {
	AvailableCourses(ctx context.Context, startStop, endStop string, size models.ParcelSize, todayDelivery bool) ([]models.Course, error)
}

// BookingRequest is the validated payload handed to the order-creation
// collaborator.
type BookingRequest struct {
	UserID        int
	RelationID    int
	Size          models.ParcelSize
	StartStop     string
	EndStop       string
	Price         float64
	TodayDelivery bool
}

// BookingResult is what the order-creation collaborator reports back.
type BookingResult struct {
	OrderID   int
	Status    models.OrderStatus
	OrderCode string
}

// OrderCreator submits a booking.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req BookingRequest) (BookingResult, error)
}

// Engine turns a route/size/timing request into priced, selectable trip
// options and a validated booking payload. It holds the ephemeral state of
// exactly one booking attempt; only one attempt is active per user session,
// so no locking is needed.
type Engine struct {
	stops   StopCatalog
	courses CourseSearcher
	orders  OrderCreator

	state         State
	startStop     string
	endStop       string
	size          models.ParcelSize
	todayDelivery bool

	offered    []models.Course
	selected   *models.Course
	finalPrice float64
}

// NewEngine creates an engine in its initial state: empty form, same-day
// delivery on.
func NewEngine(stops StopCatalog, courses CourseSearcher, orders OrderCreator) *Engine {
	return &Engine{
		stops:         stops,
		courses:       courses,
		orders:        orders,
		state:         StateIdle,
		todayDelivery: true,
	}
}

// State returns the current booking-attempt state.
func (e *Engine) State() State { return e.state }

// FinalPrice returns the price computed for the current selection, 0 when no
// course is selected.
func (e *Engine) FinalPrice() float64 { return e.finalPrice }

// Selected returns the currently selected course, nil when none.
func (e *Engine) Selected() *models.Course {
	if e.selected == nil {
		return nil
	}
	c := *e.selected
	return &c
}

// Offered returns the currently offered courses in collaborator order.
func (e *Engine) Offered() []models.Course {
	out := make([]models.Course, len(e.offered))
	copy(out, e.offered)
	return out
}

func (e *Engine) touch() {
	if e.state == StateIdle || e.state == StateBooked {
		e.state = StateFormFilling
	}
}

// SetOrigin records the origin stop typed by the user.
func (e *Engine) SetOrigin(stop string) {
	e.startStop = strings.TrimSpace(stop)
	e.touch()
}

// SetDestination records the destination stop chosen by the user.
func (e *Engine) SetDestination(stop string) {
	e.endStop = strings.TrimSpace(stop)
	e.touch()
}

// SetTodayDelivery flips the same-day flag.
func (e *Engine) SetTodayDelivery(today bool) {
	e.todayDelivery = today
	e.touch()
}

// SetSize records the declared parcel size. When a course is already
// selected the final price is recomputed from the originally quoted base
// price; courses are not re-fetched. A recomputation failure leaves the
// previous size in place.
func (e *Engine) SetSize(size models.ParcelSize) error {
	prev := e.size
	e.size = size
	e.touch()
	if e.selected == nil {
		return nil
	}
	price, err := ComputeFinalPrice(e.selected.TotalPrice, size)
	if err != nil {
		e.size = prev
		return err
	}
	e.finalPrice = price
	return nil
}

// AvailableDestinations lists the stops reachable from the current origin,
// in physical route order (order_number ascending). With an empty origin the
// collaborator query is skipped and no destinations are produced.
func (e *Engine) AvailableDestinations(ctx context.Context) ([]string, error) {
	if e.startStop == "" {
		return nil, nil
	}
	stops, err := e.stops.AvailableStops(ctx, e.startStop)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(stops, func(i, j int) bool {
		return stops[i].OrderNumber < stops[j].OrderNumber
	})
	names := make([]string, len(stops))
	for i, s := range stops {
		names[i] = s.Stop
	}
	return names, nil
}

// SearchCourses asks the course-search collaborator for trips matching the
// form and filters out courses with a non-positive base price, preserving
// the collaborator's order. With at least one valid course the attempt moves
// to QuotesFetched; an empty result reports ErrNoCoursesFound and the
// attempt stays in FormFilling.
func (e *Engine) SearchCourses(ctx context.Context) ([]models.Course, error) {
	if e.startStop == "" || e.endStop == "" || !e.size.Valid() {
		return nil, ErrFormIncomplete
	}
	prev := e.state
	e.offered = nil
	e.selected = nil
	e.finalPrice = 0

	found, err := e.courses.AvailableCourses(ctx, e.startStop, e.endStop, e.size, e.todayDelivery)
	if err != nil {
		e.state = prev
		return nil, fmt.Errorf("%w: %v", ErrQuoteFetchFailed, err)
	}

	valid := make([]models.Course, 0, len(found))
	for _, c := range found {
		if c.TotalPrice > 0 {
			valid = append(valid, c)
		}
	}
	if len(valid) == 0 {
		e.state = StateFormFilling
		return nil, ErrNoCoursesFound
	}
	e.offered = valid
	e.state = StateQuotesFetched
	return e.Offered(), nil
}

// SelectCourse picks a course by schedule id from the offered list, stores
// the full course record and computes the final price for the current size.
// Selecting the same course twice yields the same price as selecting it once.
func (e *Engine) SelectCourse(scheduleID int) error {
	var course *models.Course
	for i := range e.offered {
		if e.offered[i].ScheduleID == scheduleID {
			course = &e.offered[i]
			break
		}
	}
	if course == nil {
		return fmt.Errorf("%w: schedule %d", ErrCourseNotFound, scheduleID)
	}
	price, err := ComputeFinalPrice(course.TotalPrice, e.size)
	if err != nil {
		return err
	}
	c := *course
	e.selected = &c
	e.finalPrice = price
	e.state = StateCourseSelected
	return nil
}

// BuildBookingRequest validates the current selection and assembles the
// payload for the order-creation collaborator. A selected course without a
// relation id is a collaborator data inconsistency and fails with
// ErrMissingRelation rather than being defaulted.
func (e *Engine) BuildBookingRequest(userID int) (BookingRequest, error) {
	if e.selected == nil {
		return BookingRequest{}, fmt.Errorf("%w: no course selected", ErrBookingFailed)
	}
	if e.selected.RelationID == 0 {
		return BookingRequest{}, ErrMissingRelation
	}
	if e.finalPrice <= 0 {
		return BookingRequest{}, fmt.Errorf("%w: %v", ErrInvalidPrice, e.finalPrice)
	}
	return BookingRequest{
		UserID:        userID,
		RelationID:    e.selected.RelationID,
		Size:          e.size,
		StartStop:     e.startStop,
		EndStop:       e.endStop,
		Price:         e.finalPrice,
		TodayDelivery: e.todayDelivery,
	}, nil
}

// Submit builds the booking request and hands it to the order-creation
// collaborator. On success all ephemeral state resets (same-day back to
// true) and the attempt ends in Booked. An insufficient-balance rejection
// surfaces as ErrInsufficientBalance with the form left untouched; any other
// rejection surfaces as ErrBookingFailed, likewise without losing state.
func (e *Engine) Submit(ctx context.Context, userID int) (BookingResult, error) {
	req, err := e.BuildBookingRequest(userID)
	if err != nil {
		return BookingResult{}, err
	}
	prev := e.state
	e.state = StateSubmitting

	res, err := e.orders.CreateOrder(ctx, req)
	if err != nil {
		e.state = prev
		if errors.Is(err, ErrInsufficientBalance) || strings.Contains(err.Error(), "Insufficient balance") {
			return BookingResult{}, fmt.Errorf("%w: %v", ErrInsufficientBalance, err)
		}
		return BookingResult{}, fmt.Errorf("%w: %v", ErrBookingFailed, err)
	}

	e.reset()
	e.state = StateBooked
	return res, nil
}

// Reset discards the attempt and returns the engine to its initial state.
func (e *Engine) Reset() {
	e.reset()
	e.state = StateIdle
}

func (e *Engine) reset() {
	e.startStop = ""
	e.endStop = ""
	e.size = ""
	e.todayDelivery = true
	e.offered = nil
	e.selected = nil
	e.finalPrice = 0
}
