package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/eyss21/projekt/internal/quote"
)

// Submitter runs bookings through the Temporal workflow instead of calling
// the orders service in-process. It satisfies quote.OrderCreator, so the
// gateway swaps it in transparently when a Temporal host is configured.
type Submitter struct {
	client client.Client
}

func NewSubmitter(c client.Client) *Submitter {
	return &Submitter{client: c}
}

func (s *Submitter) CreateOrder(ctx context.Context, req quote.BookingRequest) (quote.BookingResult, error) {
	options := client.StartWorkflowOptions{
		ID:        "book-order-" + uuid.NewString(),
		TaskQueue: TaskQueue,
	}

	run, err := s.client.ExecuteWorkflow(ctx, options, BookOrderWorkflow, req)
	if err != nil {
		return quote.BookingResult{}, fmt.Errorf("failed to start booking workflow: %w", err)
	}

	var result quote.BookingResult
	if err := run.Get(ctx, &result); err != nil {
		return quote.BookingResult{}, err
	}
	return result, nil
}
