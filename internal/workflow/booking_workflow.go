// Package workflow runs the booking submission as a Temporal workflow: the
// steps retry independently, so a database or broker hiccup does not lose a
// paid booking.
package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/eyss21/projekt/internal/quote"
)

// TaskQueue is where booking workers poll for work.
const TaskQueue = "BOOKING_TASK_QUEUE"

// BookOrderWorkflow validates the booking, persists the paid order and
// publishes the created event, each as a retried activity.
func BookOrderWorkflow(ctx workflow.Context, req quote.BookingRequest) (quote.BookingResult, error) {
	retryPolicy := &temporal.RetryPolicy{
		InitialInterval:    time.Second,
		BackoffCoefficient: 2.0,
		MaximumInterval:    time.Minute,
		MaximumAttempts:    10,
	}
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy:         retryPolicy,
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var a *BookingActivities

	if err := workflow.ExecuteActivity(ctx, a.ValidateBooking, req).Get(ctx, nil); err != nil {
		return quote.BookingResult{}, err
	}

	var result quote.BookingResult
	if err := workflow.ExecuteActivity(ctx, a.PersistPaidOrder, req).Get(ctx, &result); err != nil {
		return quote.BookingResult{}, err
	}

	// The order is already committed; the event retries on its own.
	if err := workflow.ExecuteActivity(ctx, a.PublishBookedEvent, result).Get(ctx, nil); err != nil {
		return quote.BookingResult{}, err
	}

	return result, nil
}
