package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xamuel98/ZoneFlow-sub001/internal/broadcast"
)

const exchangeName = "zoneflow.events"

var _ broadcast.Broadcaster = (*Publisher)(nil)

// Publisher fans events out to the zoneflow.events exchange. The event
// type rides in the routing key and the message type header so
// consumers can bind selectively.
type Publisher struct {
	ch *amqp.Channel
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchangeName, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Publisher{ch: ch}, nil
}

type envelope struct {
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

func (p *Publisher) Publish(ctx context.Context, eventType string, payload any) error {
	body, err := json.Marshal(envelope{
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return p.ch.PublishWithContext(ctx, exchangeName, eventType, false, false, amqp.Publishing{
		ContentType: "application/json",
		Type:        eventType,
		Body:        body,
	})
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}
