package workflow

import (
	"context"
	"errors"
	"testing"

	"go.temporal.io/sdk/temporal"

	"github.com/eyss21/projekt/internal/models"
	"github.com/eyss21/projekt/internal/orders"
	"github.com/eyss21/projekt/internal/quote"
)

type stubCreator struct {
	err    error
	result quote.BookingResult
}

func (s *stubCreator) CreateOrder(ctx context.Context, req quote.BookingRequest) (quote.BookingResult, error) {
	if s.err != nil {
		return quote.BookingResult{}, s.err
	}
	return s.result, nil
}

func validRequest() quote.BookingRequest {
	return quote.BookingRequest{
		UserID: 5, RelationID: 3, Size: models.SizeM,
		StartStop: "Gdansk", EndStop: "Warszawa", Price: 40, TodayDelivery: true,
	}
}

func TestValidateBooking(t *testing.T) {
	a := &BookingActivities{}
	ctx := context.Background()

	if err := a.ValidateBooking(ctx, validRequest()); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	broken := validRequest()
	broken.Price = 0
	err := a.ValidateBooking(ctx, broken)
	if err == nil {
		t.Fatal("expected zero price to be rejected")
	}
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		t.Fatalf("error %v is not an application error", err)
	}
	if !appErr.NonRetryable() {
		t.Error("validation failures must not be retried")
	}
}

func TestPersistPaidOrder_InsufficientBalanceIsFinal(t *testing.T) {
	a := &BookingActivities{Creator: &stubCreator{err: orders.ErrInsufficientBalance}}

	_, err := a.PersistPaidOrder(context.Background(), validRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		t.Fatalf("error %v is not an application error", err)
	}
	if !appErr.NonRetryable() {
		t.Error("insufficient balance must not be retried")
	}
	if appErr.Type() != insufficientBalanceType {
		t.Errorf("type = %q, want %q", appErr.Type(), insufficientBalanceType)
	}
}

func TestPersistPaidOrder_Success(t *testing.T) {
	want := quote.BookingResult{OrderID: 1, Status: models.OrderStatusPosted, OrderCode: "12345678901234"}
	a := &BookingActivities{Creator: &stubCreator{result: want}}

	got, err := a.PersistPaidOrder(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("result = %+v, want %+v", got, want)
	}
}
