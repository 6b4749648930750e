package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/cvpromote/internal/domain"
)

// Publisher публикует события content views в RabbitMQ.
//
// Реализует orchestrator.EventSink.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — конверт события в очереди.
type Message struct {
	// ID — уникальный идентификатор сообщения (совпадает с ID события).
	ID string `json:"id"`

	// Type — тип события, он же routing key.
	Type domain.EventType `json:"type"`

	// Payload — само событие.
	Payload domain.Event `json:"payload"`

	// Timestamp — время события.
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage заворачивает событие в конверт.
func NewMessage(event domain.Event) *Message {
	return &Message{
		ID:        event.ID.String(),
		Type:      event.Type,
		Payload:   event,
		Timestamp: event.Timestamp,
	}
}

// RoutingKeyFor возвращает routing key события.
func RoutingKeyFor(event domain.Event) RoutingKey {
	return RoutingKey(event.Type)
}

// Emit публикует событие в ExchangeEvents.
func (p *Publisher) Emit(ctx context.Context, event domain.Event) error {
	return p.Publish(ctx, ExchangeEvents, RoutingKeyFor(event), NewMessage(event))
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Type:         string(msg.Type),
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}
