package quote

import "errors"

// Sentinel errors for every way a booking attempt can fail. The GraphQL
// layer maps these to user-visible messages; none of them is fatal, the
// form stays usable after any of them.
var (
	// ErrFormIncomplete: a required field is missing before search. No
	// collaborator call is made.
	ErrFormIncomplete = errors.New("origin, destination and parcel size are required")

	// ErrNoCoursesFound: the search succeeded but no course with a valid
	// price exists for the route/day. User-visible, non-fatal.
	ErrNoCoursesFound = errors.New("no courses available for the requested route")

	// ErrQuoteFetchFailed: the course-search collaborator failed. The
	// underlying message is wrapped.
	ErrQuoteFetchFailed = errors.New("failed to fetch available courses")

	// ErrInvalidPrice: a base price that is not a positive finite number.
	ErrInvalidPrice = errors.New("course has an invalid price")

	// ErrCourseNotFound: a selection referenced an id that is not among the
	// currently offered courses.
	ErrCourseNotFound = errors.New("selected course is not among the offered quotes")

	// ErrMissingRelation: the selected course carries no relation id; the
	// booking cannot be built from it.
	ErrMissingRelation = errors.New("selected course has no relation assigned")

	// ErrInsufficientBalance: the order-creation collaborator rejected the
	// booking for funds.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrBookingFailed: any other booking rejection.
	ErrBookingFailed = errors.New("failed to create the order")
)
