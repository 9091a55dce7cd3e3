package events

import (
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange = "storefront.events"

	OrderPlacedRoutingKey    = "order.placed.v1"
	OrderCancelledRoutingKey = "order.cancelled.v1"
	OrderStatusRoutingKey    = "order.status.v1"
	StockDepletedRoutingKey  = "stock.depleted.v1"

	serviceName = "storefront"
)

// NotificationsQueue feeds the back-office notifications consumer.
const NotificationsQueue = serviceName + ".notifications"

func MustDialRabbit(url string) *amqp.Connection {
	conn, err := amqp.Dial(url)
	if err != nil {
		log.Fatalf("connect to RabbitMQ: %v", err)
	}
	return conn
}

func declareEventsExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
}

func orderPartition(orderID string) string {
	return "order:" + orderID
}

func productPartition(productID string) string {
	return "product:" + productID
}

// sequenceKey namespaces event counters away from the order-number counters
// sharing the sequences table.
func sequenceKey(partition string) string {
	return "events:" + partition
}
