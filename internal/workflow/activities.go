package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"

	"github.com/eyss21/projekt/internal/orders"
	"github.com/eyss21/projekt/internal/quote"
)

// insufficientBalanceType marks the business failure Temporal must not retry.
const insufficientBalanceType = "InsufficientBalance"

// BookingActivities hosts the booking steps with their dependencies
// injected. Creator is the orders service constructed without a publisher;
// the workflow publishes the event itself in its own retried step.
type BookingActivities struct {
	Creator interface {
		CreateOrder(ctx context.Context, req quote.BookingRequest) (quote.BookingResult, error)
	}
	Events interface {
		Publish(ctx context.Context, key string, value interface{}) error
	}
}

// ValidateBooking rejects payloads that can never succeed, before any money
// moves.
func (a *BookingActivities) ValidateBooking(ctx context.Context, req quote.BookingRequest) error {
	if req.UserID == 0 || req.RelationID == 0 || req.StartStop == "" || req.EndStop == "" {
		return temporal.NewNonRetryableApplicationError("incomplete booking payload", "InvalidBooking", nil)
	}
	if !req.Size.Valid() {
		return temporal.NewNonRetryableApplicationError("unknown parcel size", "InvalidBooking", nil)
	}
	if req.Price <= 0 {
		return temporal.NewNonRetryableApplicationError("non-positive price", "InvalidBooking", nil)
	}
	return nil
}

// PersistPaidOrder creates the order and debits the wallet. An insufficient
// balance is final: retrying would just re-read the same balance.
func (a *BookingActivities) PersistPaidOrder(ctx context.Context, req quote.BookingRequest) (quote.BookingResult, error) {
	result, err := a.Creator.CreateOrder(ctx, req)
	if errors.Is(err, orders.ErrInsufficientBalance) {
		return quote.BookingResult{}, temporal.NewNonRetryableApplicationError(
			err.Error(), insufficientBalanceType, err)
	}
	if err != nil {
		return quote.BookingResult{}, err
	}
	return result, nil
}

// PublishBookedEvent emits order.created for the persisted order.
func (a *BookingActivities) PublishBookedEvent(ctx context.Context, result quote.BookingResult) error {
	if a.Events == nil {
		return nil
	}
	event := orders.Event{
		ID:         uuid.NewString(),
		Type:       orders.EventOrderCreated,
		OrderID:    result.OrderID,
		OrderCode:  result.OrderCode,
		Status:     result.Status,
		OccurredAt: time.Now().UTC(),
	}
	return a.Events.Publish(ctx, result.OrderCode, event)
}
