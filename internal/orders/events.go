package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/eyss21/projekt/internal/models"
)

// Event types published to the order events topic.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// Event is the envelope published for every order mutation. The notifier
// consumes these and fans them out to the notification queues.
type Event struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	OrderID    int                `json:"order_id"`
	OrderCode  string             `json:"order_code"`
	UserID     int                `json:"user_id"`
	Status     models.OrderStatus `json:"status"`
	OccurredAt time.Time          `json:"occurred_at"`
}

func newEvent(eventType string, order models.Order) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OrderID:    order.ID,
		OrderCode:  order.OrderCode,
		UserID:     order.UserID,
		Status:     order.Status,
		OccurredAt: time.Now().UTC(),
	}
}
