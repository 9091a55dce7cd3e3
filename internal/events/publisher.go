package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/guntanalaganesh-web/shoe-store/internal/order"
	"github.com/guntanalaganesh-web/shoe-store/internal/sequence"
)

// Publisher emits enveloped domain events on the topic exchange. Envelope
// sequences come from the per-partition counters, so consumers can
// deduplicate and spot gaps.
type Publisher struct {
	ch  *amqp.Channel
	seq sequence.Repository
}

func NewPublisher(conn *amqp.Connection, seq sequence.Repository) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareEventsExchange(ch); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}
	return &Publisher{ch: ch, seq: seq}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishOrderPlaced(ctx context.Context, o *order.Order) error {
	seq, err := p.seq.NextSequence(ctx, sequenceKey(orderPartition(o.ID)))
	if err != nil {
		return fmt.Errorf("OrderPlaced sequence: %w", err)
	}

	env := BuildOrderPlacedEnvelope(o, seq, EnvelopeMetadata{CorrelationID: o.ID})
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal OrderPlaced: %w", err)
	}
	return p.publishJSON(ctx, OrderPlacedRoutingKey, body)
}

func (p *Publisher) PublishOrderCancelled(ctx context.Context, o *order.Order) error {
	seq, err := p.seq.NextSequence(ctx, sequenceKey(orderPartition(o.ID)))
	if err != nil {
		return fmt.Errorf("OrderCancelled sequence: %w", err)
	}

	env := BuildOrderCancelledEnvelope(o, seq, EnvelopeMetadata{CorrelationID: o.ID})
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal OrderCancelled: %w", err)
	}
	return p.publishJSON(ctx, OrderCancelledRoutingKey, body)
}

func (p *Publisher) PublishOrderStatusChanged(ctx context.Context, o *order.Order, previous order.Status) error {
	seq, err := p.seq.NextSequence(ctx, sequenceKey(orderPartition(o.ID)))
	if err != nil {
		return fmt.Errorf("OrderStatusChanged sequence: %w", err)
	}

	env := BuildOrderStatusChangedEnvelope(o, previous, seq, EnvelopeMetadata{CorrelationID: o.ID})
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal OrderStatusChanged: %w", err)
	}
	return p.publishJSON(ctx, OrderStatusRoutingKey, body)
}

func (p *Publisher) PublishStockDepleted(ctx context.Context, orderID string, b order.DepletedBucket) error {
	seq, err := p.seq.NextSequence(ctx, sequenceKey(productPartition(b.ProductID)))
	if err != nil {
		return fmt.Errorf("StockDepleted sequence: %w", err)
	}

	env := BuildStockDepletedEnvelope(orderID, b, seq, EnvelopeMetadata{CorrelationID: orderID})
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal StockDepleted: %w", err)
	}
	return p.publishJSON(ctx, StockDepletedRoutingKey, body)
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
