package presence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"lobbychat/internal/pkg/logx"
)

const (
	// PresenceExchange is the fanout exchange presence events are published to.
	PresenceExchange = "lobbychat.presence"

	dialAttempts = 5
	dialBackoff  = 2 * time.Second
)

// AMQPPublisher publishes every presence event as JSON to a fanout exchange.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// DialAMQP connects to the broker at url, retrying a few times while it starts up.
func DialAMQP(ctx context.Context, url string) (*amqp.Connection, error) {
	var lastErr error

	for attempt := 1; attempt <= dialAttempts; attempt++ {
		conn, err := amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		lastErr = err

		logx.Warn("Failed to connect to RabbitMQ. Retrying...", "attempt", attempt, "error", err.Error())

		select {
		case <-ctx.Done():
			return nil, errors.Join(ctx.Err(), lastErr)
		case <-time.After(dialBackoff):
		}
	}

	return nil, fmt.Errorf("could not connect to RabbitMQ after %d attempts: %w", dialAttempts, lastErr)
}

// NewAMQPPublisher opens a channel on conn and declares the presence exchange.
func NewAMQPPublisher(conn *amqp.Connection) (*AMQPPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		PresenceExchange,
		amqp.ExchangeFanout,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", PresenceExchange, err)
	}

	return &AMQPPublisher{conn: conn, ch: ch, exchange: PresenceExchange}, nil
}

// Name identifies the sink in logs.
func (p *AMQPPublisher) Name() string { return "amqp" }

// Handle publishes the event.
func (p *AMQPPublisher) Handle(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.ch.PublishWithContext(ctx,
		p.exchange,
		string(event.Kind), // routing key, ignored by fanout but useful to consumers
		false,              // mandatory
		false,              // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Transient,
			Timestamp:    event.At,
			Body:         body,
		},
	)
}

// Close closes the channel and the connection.
func (p *AMQPPublisher) Close() error {
	return errors.Join(p.ch.Close(), p.conn.Close())
}
