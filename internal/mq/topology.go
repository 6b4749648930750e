package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// ExchangeEvents — topic exchange событий публикации и продвижения.
const ExchangeEvents Exchange = "cvpromote.events"

// QueueAudit — очередь, собирающая все события (для внешних потребителей).
const QueueAudit Queue = "cvpromote.audit"

// RoutingKeyAll — шаблон, под который попадают все события.
const RoutingKeyAll RoutingKey = "content_view.#"

// SetupTopology объявляет exchange, очередь аудита и привязку.
//
// Объявления идемпотентны: повторный вызов с теми же параметрами
// ничего не меняет.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeEvents), // name
			amqp.ExchangeTopic,     // type
			true,                   // durable
			false,                  // auto-deleted
			false,                  // internal
			false,                  // no-wait
			nil,                    // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeEvents, err)
		}

		_, err = ch.QueueDeclare(
			string(QueueAudit), // name
			true,               // durable
			false,              // delete when unused
			false,              // exclusive
			false,              // no-wait
			nil,                // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", QueueAudit, err)
		}

		err = ch.QueueBind(
			string(QueueAudit),     // queue name
			string(RoutingKeyAll),  // routing key
			string(ExchangeEvents), // exchange
			false,                  // no-wait
			nil,                    // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", QueueAudit, ExchangeEvents, err)
		}

		return nil
	})
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  cvpromote RabbitMQ Topology:

    cvpromote.events (topic)
    └── cvpromote.audit [routing: content_view.#]
            content_view.published
            content_view.promoted
  `
}
