package quote

import (
	"context"
	"errors"
	"testing"

	"github.com/eyss21/projekt/internal/models"
)

// --- fakes ---

type fakeCatalog struct {
	stops     []string
	available []models.StopAvailability
	calls     int
}

func (f *fakeCatalog) AllStops(ctx context.Context) ([]string, error) {
	return f.stops, nil
}

func (f *fakeCatalog) AvailableStops(ctx context.Context, startStop string) ([]models.StopAvailability, error) {
	f.calls++
	return f.available, nil
}

type fakeSearcher struct {
	courses []models.Course
	err     error
	calls   int
}

func (f *fakeSearcher) AvailableCourses(ctx context.Context, startStop, endStop string, size models.ParcelSize, todayDelivery bool) ([]models.Course, error) {
	f.calls++
	return f.courses, f.err
}

type fakeOrders struct {
	err  error
	got  []BookingRequest
	next BookingResult
}

func (f *fakeOrders) CreateOrder(ctx context.Context, req BookingRequest) (BookingResult, error) {
	f.got = append(f.got, req)
	if f.err != nil {
		return BookingResult{}, f.err
	}
	return f.next, nil
}

func course(scheduleID, relationID int, price float64) models.Course {
	return models.Course{
		ScheduleID:    scheduleID,
		RelationID:    relationID,
		VehicleID:     7,
		CompanyName:   "TransBus",
		StartStop:     "Warszawa",
		EndStop:       "Kraków",
		DepartureTime: "08:00",
		ArrivalTime:   "12:30",
		TotalPrice:    price,
	}
}

func newTestEngine(s *fakeSearcher, o *fakeOrders) *Engine {
	return NewEngine(&fakeCatalog{}, s, o)
}

func fillForm(t *testing.T, e *Engine) {
	t.Helper()
	e.SetOrigin("Warszawa")
	e.SetDestination("Kraków")
	if err := e.SetSize(models.SizeS); err != nil {
		t.Fatalf("SetSize: %v", err)
	}
}

// --- tests ---

func TestAvailableDestinations_RouteOrder(t *testing.T) {
	cat := &fakeCatalog{available: []models.StopAvailability{
		{Stop: "Kielce", OrderNumber: 3},
		{Stop: "Radom", OrderNumber: 2},
		{Stop: "Kraków", OrderNumber: 5},
	}}
	e := NewEngine(cat, &fakeSearcher{}, &fakeOrders{})
	e.SetOrigin("Warszawa")

	got, err := e.AvailableDestinations(context.Background())
	if err != nil {
		t.Fatalf("AvailableDestinations: %v", err)
	}
	want := []string{"Radom", "Kielce", "Kraków"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("destination[%d] = %s, want %s (route order, not alphabetical)", i, got[i], want[i])
		}
	}
}

func TestAvailableDestinations_EmptyOriginSkipsQuery(t *testing.T) {
	cat := &fakeCatalog{available: []models.StopAvailability{{Stop: "Radom", OrderNumber: 1}}}
	e := NewEngine(cat, &fakeSearcher{}, &fakeOrders{})

	got, err := e.AvailableDestinations(context.Background())
	if err != nil {
		t.Fatalf("AvailableDestinations: %v", err)
	}
	if got != nil {
		t.Errorf("expected no destinations for empty origin, got %v", got)
	}
	if cat.calls != 0 {
		t.Errorf("collaborator called %d times, want 0", cat.calls)
	}
}

func TestSearchCourses_FormIncomplete(t *testing.T) {
	// Searching with an empty destination fails before any fetch happens.
	s := &fakeSearcher{courses: []models.Course{course(1, 10, 20)}}
	e := newTestEngine(s, &fakeOrders{})
	e.SetOrigin("Warszawa")
	if err := e.SetSize(models.SizeS); err != nil {
		t.Fatalf("SetSize: %v", err)
	}

	_, err := e.SearchCourses(context.Background())
	if !errors.Is(err, ErrFormIncomplete) {
		t.Fatalf("error = %v, want ErrFormIncomplete", err)
	}
	if s.calls != 0 {
		t.Errorf("search collaborator called %d times, want 0", s.calls)
	}
	if e.State() != StateFormFilling {
		t.Errorf("state = %s, want FormFilling", e.State())
	}
}

func TestSearchCourses_FiltersNonPositivePrices(t *testing.T) {
	// Of the base prices 0, -5 and 15.50 only the last course is offered.
	s := &fakeSearcher{courses: []models.Course{
		course(1, 10, 0),
		course(2, 10, -5),
		course(3, 10, 15.50),
	}}
	e := newTestEngine(s, &fakeOrders{})
	fillForm(t, e)

	offered, err := e.SearchCourses(context.Background())
	if err != nil {
		t.Fatalf("SearchCourses: %v", err)
	}
	if len(offered) != 1 || offered[0].ScheduleID != 3 {
		t.Fatalf("offered = %+v, want only schedule 3", offered)
	}
	if e.State() != StateQuotesFetched {
		t.Errorf("state = %s, want QuotesFetched", e.State())
	}
}

func TestSearchCourses_AllInvalidReportsNoCoursesFound(t *testing.T) {
	s := &fakeSearcher{courses: []models.Course{course(1, 10, 0), course(2, 10, -1)}}
	e := newTestEngine(s, &fakeOrders{})
	fillForm(t, e)

	_, err := e.SearchCourses(context.Background())
	if !errors.Is(err, ErrNoCoursesFound) {
		t.Fatalf("error = %v, want ErrNoCoursesFound", err)
	}
	if e.State() != StateFormFilling {
		t.Errorf("state = %s, want FormFilling", e.State())
	}
}

func TestSearchCourses_PreservesCollaboratorOrder(t *testing.T) {
	s := &fakeSearcher{courses: []models.Course{
		course(5, 10, 30),
		course(2, 10, 10),
		course(9, 10, 20),
	}}
	e := newTestEngine(s, &fakeOrders{})
	fillForm(t, e)

	offered, err := e.SearchCourses(context.Background())
	if err != nil {
		t.Fatalf("SearchCourses: %v", err)
	}
	want := []int{5, 2, 9}
	for i, c := range offered {
		if c.ScheduleID != want[i] {
			t.Errorf("offered[%d].ScheduleID = %d, want %d (no client-side re-sorting)", i, c.ScheduleID, want[i])
		}
	}
}

func TestSearchCourses_CollaboratorError(t *testing.T) {
	s := &fakeSearcher{err: errors.New("connection refused")}
	e := newTestEngine(s, &fakeOrders{})
	fillForm(t, e)

	_, err := e.SearchCourses(context.Background())
	if !errors.Is(err, ErrQuoteFetchFailed) {
		t.Fatalf("error = %v, want ErrQuoteFetchFailed", err)
	}
	if len(e.Offered()) != 0 {
		t.Errorf("course list not cleared on fetch failure")
	}
	// Form fields survive the failure.
	if e.State() != StateFormFilling {
		t.Errorf("state = %s, want FormFilling", e.State())
	}
}

func TestSelectCourse_ComputesFinalPrice(t *testing.T) {
	// An S parcel keeps the 20.00 base price (multiplier 1).
	s := &fakeSearcher{courses: []models.Course{course(1, 10, 20.00)}}
	e := newTestEngine(s, &fakeOrders{})
	fillForm(t, e)
	if _, err := e.SearchCourses(context.Background()); err != nil {
		t.Fatalf("SearchCourses: %v", err)
	}

	if err := e.SelectCourse(1); err != nil {
		t.Fatalf("SelectCourse: %v", err)
	}
	if e.FinalPrice() != 20.00 {
		t.Errorf("final price = %v, want 20.00", e.FinalPrice())
	}
	if e.State() != StateCourseSelected {
		t.Errorf("state = %s, want CourseSelected", e.State())
	}
}

func TestSelectCourse_Idempotent(t *testing.T) {
	s := &fakeSearcher{courses: []models.Course{course(1, 10, 12.34)}}
	e := newTestEngine(s, &fakeOrders{})
	fillForm(t, e)
	if _, err := e.SearchCourses(context.Background()); err != nil {
		t.Fatalf("SearchCourses: %v", err)
	}

	if err := e.SelectCourse(1); err != nil {
		t.Fatalf("first select: %v", err)
	}
	once := e.FinalPrice()
	if err := e.SelectCourse(1); err != nil {
		t.Fatalf("second select: %v", err)
	}
	if e.FinalPrice() != once {
		t.Errorf("selecting twice changed the price: %v -> %v", once, e.FinalPrice())
	}
}

func TestSelectCourse_UnknownID(t *testing.T) {
	s := &fakeSearcher{courses: []models.Course{course(1, 10, 20)}}
	e := newTestEngine(s, &fakeOrders{})
	fillForm(t, e)
	if _, err := e.SearchCourses(context.Background()); err != nil {
		t.Fatalf("SearchCourses: %v", err)
	}

	if err := e.SelectCourse(42); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("error = %v, want ErrCourseNotFound", err)
	}
	if e.State() != StateQuotesFetched {
		t.Errorf("state = %s, want QuotesFetched (failed step must not transition)", e.State())
	}
}

func TestSizeChangeRecomputesWithoutRefetch(t *testing.T) {
	// Switching S to L after selection recomputes 20.00 to 60.00 from the
	// originally quoted base, with no second search call.
	s := &fakeSearcher{courses: []models.Course{course(1, 10, 20.00)}}
	e := newTestEngine(s, &fakeOrders{})
	fillForm(t, e)
	if _, err := e.SearchCourses(context.Background()); err != nil {
		t.Fatalf("SearchCourses: %v", err)
	}
	if err := e.SelectCourse(1); err != nil {
		t.Fatalf("SelectCourse: %v", err)
	}
	searches := s.calls

	if err := e.SetSize(models.SizeL); err != nil {
		t.Fatalf("SetSize: %v", err)
	}
	if e.FinalPrice() != 60.00 {
		t.Errorf("final price = %v, want 60.00", e.FinalPrice())
	}
	if s.calls != searches {
		t.Errorf("size change re-fetched courses (%d -> %d calls)", searches, s.calls)
	}
	if e.State() != StateCourseSelected {
		t.Errorf("state = %s, want CourseSelected (unchanged)", e.State())
	}
}

func TestBuildBookingRequest_MissingRelation(t *testing.T) {
	s := &fakeSearcher{courses: []models.Course{course(1, 0, 20.00)}}
	e := newTestEngine(s, &fakeOrders{})
	fillForm(t, e)
	if _, err := e.SearchCourses(context.Background()); err != nil {
		t.Fatalf("SearchCourses: %v", err)
	}
	if err := e.SelectCourse(1); err != nil {
		t.Fatalf("SelectCourse: %v", err)
	}

	if _, err := e.BuildBookingRequest(100); !errors.Is(err, ErrMissingRelation) {
		t.Fatalf("error = %v, want ErrMissingRelation", err)
	}
}

func TestSubmit_BuildsPayloadFromSelection(t *testing.T) {
	s := &fakeSearcher{courses: []models.Course{course(1, 10, 20.00)}}
	o := &fakeOrders{next: BookingResult{OrderID: 55, Status: models.OrderStatusPosted, OrderCode: "12345678901234"}}
	e := newTestEngine(s, o)
	fillForm(t, e)
	if _, err := e.SearchCourses(context.Background()); err != nil {
		t.Fatalf("SearchCourses: %v", err)
	}
	if err := e.SelectCourse(1); err != nil {
		t.Fatalf("SelectCourse: %v", err)
	}
	if err := e.SetSize(models.SizeM); err != nil {
		t.Fatalf("SetSize: %v", err)
	}

	res, err := e.Submit(context.Background(), 100)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.OrderID != 55 {
		t.Errorf("order id = %d, want 55", res.OrderID)
	}
	if len(o.got) != 1 {
		t.Fatalf("expected exactly one CreateOrder call, got %d", len(o.got))
	}
	req := o.got[0]
	if req.UserID != 100 || req.RelationID != 10 || req.Size != models.SizeM ||
		req.StartStop != "Warszawa" || req.EndStop != "Kraków" || req.Price != 40.00 || !req.TodayDelivery {
		t.Errorf("unexpected booking request: %+v", req)
	}
}

func TestSubmit_InsufficientBalanceKeepsForm(t *testing.T) {
	// A failure whose message contains "Insufficient balance" maps to the
	// dedicated error and the form keeps its values.
	s := &fakeSearcher{courses: []models.Course{course(1, 10, 20.00)}}
	o := &fakeOrders{err: errors.New("Insufficient balance in wallet")}
	e := newTestEngine(s, o)
	fillForm(t, e)
	if _, err := e.SearchCourses(context.Background()); err != nil {
		t.Fatalf("SearchCourses: %v", err)
	}
	if err := e.SelectCourse(1); err != nil {
		t.Fatalf("SelectCourse: %v", err)
	}

	_, err := e.Submit(context.Background(), 100)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("error = %v, want ErrInsufficientBalance", err)
	}
	if e.State() != StateCourseSelected {
		t.Errorf("state = %s, want CourseSelected (form untouched)", e.State())
	}
	if e.Selected() == nil || e.FinalPrice() != 20.00 {
		t.Errorf("selection lost after insufficient-balance rejection")
	}
}

func TestSubmit_GenericFailure(t *testing.T) {
	s := &fakeSearcher{courses: []models.Course{course(1, 10, 20.00)}}
	o := &fakeOrders{err: errors.New("relation not found")}
	e := newTestEngine(s, o)
	fillForm(t, e)
	if _, err := e.SearchCourses(context.Background()); err != nil {
		t.Fatalf("SearchCourses: %v", err)
	}
	if err := e.SelectCourse(1); err != nil {
		t.Fatalf("SelectCourse: %v", err)
	}

	_, err := e.Submit(context.Background(), 100)
	if !errors.Is(err, ErrBookingFailed) {
		t.Fatalf("error = %v, want ErrBookingFailed", err)
	}
	if errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("generic failure must be distinct from insufficient balance")
	}
}

func TestSubmit_SuccessResetsEphemeralState(t *testing.T) {
	// A booked order clears the form and selection; today-delivery
	// returns to its default of true.
	s := &fakeSearcher{courses: []models.Course{course(1, 10, 20.00)}}
	o := &fakeOrders{next: BookingResult{OrderID: 1, Status: models.OrderStatusPosted, OrderCode: "00000000000001"}}
	e := newTestEngine(s, o)
	fillForm(t, e)
	e.SetTodayDelivery(false)
	if _, err := e.SearchCourses(context.Background()); err != nil {
		t.Fatalf("SearchCourses: %v", err)
	}
	if err := e.SelectCourse(1); err != nil {
		t.Fatalf("SelectCourse: %v", err)
	}

	if _, err := e.Submit(context.Background(), 100); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if e.State() != StateBooked {
		t.Errorf("state = %s, want Booked", e.State())
	}
	if e.Selected() != nil || e.FinalPrice() != 0 || len(e.Offered()) != 0 {
		t.Errorf("ephemeral state not reset after booking")
	}
	// The next search must fail as incomplete: the form is empty again, and
	// the next booking defaults to same-day delivery.
	if _, err := e.SearchCourses(context.Background()); !errors.Is(err, ErrFormIncomplete) {
		t.Errorf("expected empty form after reset, got %v", err)
	}
	req, err := func() (BookingRequest, error) {
		fillForm(t, e)
		if _, err := e.SearchCourses(context.Background()); err != nil {
			return BookingRequest{}, err
		}
		if err := e.SelectCourse(1); err != nil {
			return BookingRequest{}, err
		}
		return e.BuildBookingRequest(100)
	}()
	if err != nil {
		t.Fatalf("second attempt: %v", err)
	}
	if !req.TodayDelivery {
		t.Errorf("today-delivery did not reset to true")
	}
}
