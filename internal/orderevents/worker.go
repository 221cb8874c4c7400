package orderevents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/angelmondragon/dronemart-backend/pkg/logger"
)

const (
	consumerName = "order-events"
	// ProcessedTTL bounds how long an event id is remembered for dedupe.
	ProcessedTTL = 7 * 24 * time.Hour
)

type receiver interface {
	Receive(ctx context.Context, f func(context.Context, *gcppubsub.Message)) error
}

type tableInserter interface {
	InsertRows(ctx context.Context, table string, rows []any) error
}

type processedMarker interface {
	MarkProcessed(ctx context.Context, consumer, eventID string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	ProcessedEventKey(consumer, eventID string) string
}

// Service consumes order.placed events and streams them into BigQuery while
// honoring Redis idempotency.
type Service struct {
	subscription receiver
	sink         tableInserter
	table        string
	marker       processedMarker
	logg         *logger.Logger
	now          func() time.Time
}

func NewService(subscription receiver, sink tableInserter, table string, marker processedMarker, logg *logger.Logger) (*Service, error) {
	if subscription == nil {
		return nil, errors.New("orders subscription is required")
	}
	if sink == nil {
		return nil, errors.New("bigquery client is required")
	}
	if strings.TrimSpace(table) == "" {
		return nil, errors.New("bigquery table name is required")
	}
	if marker == nil {
		return nil, errors.New("idempotency store is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Service{
		subscription: subscription,
		sink:         sink,
		table:        strings.TrimSpace(table),
		marker:       marker,
		logg:         logg,
		now:          time.Now,
	}, nil
}

type processResult struct {
	nack bool
}

// Run consumes messages until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	return s.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if s.process(innerCtx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type orderEventRow struct {
	EventID    string    `bigquery:"event_id"`
	EventType  string    `bigquery:"event_type"`
	OrderID    string    `bigquery:"order_id"`
	UserID     string    `bigquery:"user_id"`
	ProductID  string    `bigquery:"product_id"`
	Action     string    `bigquery:"action"`
	Status     string    `bigquery:"status"`
	Quantity   int64     `bigquery:"quantity"`
	UnitPrice  string    `bigquery:"unit_price"`
	OccurredAt time.Time `bigquery:"occurred_at"`
	IngestedAt time.Time `bigquery:"ingested_at"`
}

func (s *Service) process(ctx context.Context, msg *gcppubsub.Message) processResult {
	logCtx := s.logg.WithFields(ctx, map[string]any{"message_id": msg.ID})

	if eventType := strings.TrimSpace(msg.Attributes["event_type"]); eventType != EventTypeOrderPlaced {
		s.logg.Info(s.logg.WithField(logCtx, "event_type", eventType), "event not handled by order events consumer")
		return processResult{}
	}

	event, err := decodeEvent(msg.Data)
	if err != nil {
		s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "invalid order event")
		return processResult{}
	}
	eventID := event.EventID.String()
	logCtx = s.logg.WithFields(logCtx, map[string]any{"event_id": eventID, "order_id": event.OrderID.String()})

	first, err := s.marker.MarkProcessed(logCtx, consumerName, eventID, ProcessedTTL)
	if err != nil {
		s.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if !first {
		s.logg.Info(logCtx, "event already processed")
		return processResult{}
	}

	row := &orderEventRow{
		EventID:    eventID,
		EventType:  EventTypeOrderPlaced,
		OrderID:    event.OrderID.String(),
		UserID:     event.UserID.String(),
		ProductID:  event.ProductID.String(),
		Action:     event.Action,
		Status:     event.Status,
		Quantity:   int64(event.Quantity),
		UnitPrice:  event.UnitPrice,
		OccurredAt: event.OccurredAt,
		IngestedAt: s.now().UTC(),
	}
	if err := s.sink.InsertRows(logCtx, s.table, []any{row}); err != nil {
		s.logg.Error(logCtx, "failed to insert order event row", err)
		_ = s.marker.Del(logCtx, s.marker.ProcessedEventKey(consumerName, eventID))
		return processResult{nack: true}
	}

	s.logg.Info(logCtx, "order event ingested")
	return processResult{}
}

func decodeEvent(data []byte) (*OrderPlaced, error) {
	var event OrderPlaced
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("decode order event: %w", err)
	}
	if event.EventID == uuid.Nil {
		return nil, errors.New("event id missing")
	}
	if event.OrderID == uuid.Nil {
		return nil, errors.New("order id missing")
	}
	return &event, nil
}
