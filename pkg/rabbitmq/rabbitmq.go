package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// channel is the subset of *amqp.Channel the client uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	mu      sync.Mutex
	channel channel
	logger  *zap.Logger
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the order queue.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	c, err := newClient(ch, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func newClient(ch channel, logger *zap.Logger) (*Client, error) {
	if err := declareQueue(ch); err != nil {
		ch.Close()
		return nil, err
	}
	logger.Info("RabbitMQ client connected", zap.String("queue", QueueName))
	return &Client{channel: ch, logger: logger}, nil
}

func declareQueue(ch channel) error {
	_, err := ch.QueueDeclare(
		QueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", QueueName, err)
	}
	return nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
		c.channel = nil
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
		c.conn = nil
	}
	return errors.Join(errs...)
}

// PublishOrderEvent publishes event to the order queue as a persistent JSON message.
func (c *Client) PublishOrderEvent(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    uuid.New().String(),
		Type:         event.Type,
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}
	if err := c.channel.Publish("", QueueName, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	c.logger.Debug("order event sent",
		zap.String("type", event.Type),
		zap.Int64("order_id", event.OrderID),
		zap.String("message_id", msg.MessageId))
	return nil
}

// ConsumeOrderEvents delivers every event on the order queue to handler until ctx is
// done or the channel closes. A handler error requeues the message; a body that is not
// an event is rejected without requeue. The returned channel is closed when consumption stops.
func (c *Client) ConsumeOrderEvents(ctx context.Context, handler func(Event) error) (<-chan struct{}, error) {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()
	if ch == nil {
		return nil, fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	if err := declareQueue(ch); err != nil {
		return nil, err
	}
	msgs, err := ch.Consume(
		QueueName,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register consumer: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				c.handle(msg, handler)
			}
		}
	}()
	return done, nil
}

func (c *Client) handle(msg amqp.Delivery, handler func(Event) error) {
	var event Event
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		c.logger.Warn("discarding malformed order event", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(err))
		if err := msg.Reject(false); err != nil {
			c.logger.Error("failed to reject message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(err))
		}
		return
	}

	if err := handler(event); err != nil {
		c.logger.Warn("order event handler failed", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(err))
		if err := msg.Nack(false, true); err != nil {
			c.logger.Error("failed to nack message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(err))
		}
		return
	}
	if err := msg.Ack(false); err != nil {
		c.logger.Error("failed to ack message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(err))
	}
}

// LogHandler returns a handler that records every event it receives.
func LogHandler(logger *zap.Logger) func(Event) error {
	return func(e Event) error {
		logger.Info("order event received",
			zap.String("type", e.Type),
			zap.Int64("order_id", e.OrderID),
			zap.String("status", e.Status),
			zap.String("total", e.Total.StringFixed(2)),
			zap.Time("occurred_at", e.OccurredAt))
		return nil
	}
}
