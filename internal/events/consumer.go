package events

import (
	"context"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// HandlerFunc processes one delivery body. A non-nil error NACKs the message
// without requeue.
type HandlerFunc func(ctx context.Context, body []byte) error

// StartConsumer declares a durable queue, binds it to the given routing keys
// on the events exchange and consumes it on a background goroutine until ctx
// is cancelled.
func StartConsumer(ctx context.Context, conn *amqp.Connection, queueName string, bindings []string, handler HandlerFunc, logger *log.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}

	if err := declareEventsExchange(ch); err != nil {
		return fmt.Errorf("declare events exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	for _, key := range bindings {
		if err := ch.QueueBind(q.Name, key, EventsExchange, false, nil); err != nil {
			return fmt.Errorf("bind %s to %s: %w", q.Name, key, err)
		}
	}

	msgs, err := ch.Consume(
		q.Name,
		serviceName, // consumer tag
		false,       // autoAck
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Printf("stopping %s consumer", queueName)
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Printf("%s messages channel closed", queueName)
					return
				}

				if err := handler(ctx, msg.Body); err != nil {
					logger.Printf("handle %s message: %v", msg.RoutingKey, err)
					_ = msg.Nack(false, false)
					continue
				}
				_ = msg.Ack(false)
			}
		}
	}()

	return nil
}
