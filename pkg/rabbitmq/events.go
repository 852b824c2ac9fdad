package rabbitmq

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// QueueName is the durable queue order events are routed to.
const QueueName = "order_queue"

const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

// Event is the JSON body of an order event.
type Event struct {
	Type       string          `json:"type"`
	OrderID    int64           `json:"order_id"`
	Status     string          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Publisher sends order events to whoever listens for them.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, event Event) error
}

// NopPublisher drops every event. It is used when the broker is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishOrderEvent(context.Context, Event) error { return nil }
