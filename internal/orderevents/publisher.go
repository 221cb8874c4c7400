package orderevents

import (
	"context"
	"time"

	"github.com/angelmondragon/dronemart-backend/pkg/db/models"
	"github.com/angelmondragon/dronemart-backend/pkg/logger"
)

type messagePublisher interface {
	Publish(ctx context.Context, data []byte, attributes map[string]string) (string, error)
}

// Emitter publishes order.placed events. Publishing is best effort: a failed
// publish is logged and never undoes the checkout.
type Emitter struct {
	pub  messagePublisher
	logg *logger.Logger
	now  func() time.Time
}

// NewEmitter returns nil when pub is nil, and a nil Emitter publishes nothing.
func NewEmitter(pub messagePublisher, logg *logger.Logger) *Emitter {
	if pub == nil {
		return nil
	}
	return &Emitter{pub: pub, logg: logg, now: time.Now}
}

// OrdersPlaced publishes one event per order and returns how many succeeded.
func (e *Emitter) OrdersPlaced(ctx context.Context, orders []models.Order) int {
	if e == nil {
		return 0
	}
	sent := 0
	for _, o := range orders {
		data, attrs, err := NewOrderPlaced(o, e.now()).Message()
		if err == nil {
			_, err = e.pub.Publish(ctx, data, attrs)
		}
		if err != nil {
			if e.logg != nil {
				e.logg.Error(e.logg.WithField(ctx, "order_id", o.ID.String()), "failed to publish order event", err)
			}
			continue
		}
		sent++
	}
	return sent
}
