// Package orderevents publishes order.placed events after checkout and
// ingests them into BigQuery from the orders subscription.
package orderevents

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/dronemart-backend/pkg/db/models"
)

// EventTypeOrderPlaced is set on the event_type attribute of every message.
const EventTypeOrderPlaced = "order.placed"

// OrderPlaced describes one pending order created by checkout.
type OrderPlaced struct {
	EventID    uuid.UUID `json:"event_id"`
	OrderID    uuid.UUID `json:"order_id"`
	UserID     uuid.UUID `json:"user_id"`
	ProductID  uuid.UUID `json:"product_id"`
	Action     string    `json:"action"`
	Status     string    `json:"status"`
	Quantity   int       `json:"quantity"`
	UnitPrice  string    `json:"unit_price"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewOrderPlaced(o models.Order, now time.Time) OrderPlaced {
	occurred := o.CreatedAt
	if occurred.IsZero() {
		occurred = now
	}
	return OrderPlaced{
		EventID:    uuid.New(),
		OrderID:    o.ID,
		UserID:     o.UserID,
		ProductID:  o.ProductID,
		Action:     o.Action.String(),
		Status:     o.Status.String(),
		Quantity:   o.Quantity,
		UnitPrice:  o.UnitPrice.StringFixed(2),
		OccurredAt: occurred.UTC(),
	}
}

// Message returns the Pub/Sub payload and attributes.
func (e OrderPlaced) Message() ([]byte, map[string]string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, nil, fmt.Errorf("encode order event: %w", err)
	}
	attrs := map[string]string{
		"event_type": EventTypeOrderPlaced,
		"event_id":   e.EventID.String(),
		"order_id":   e.OrderID.String(),
	}
	return data, attrs, nil
}
