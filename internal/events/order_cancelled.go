package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/guntanalaganesh-web/shoe-store/internal/order"
)

const (
	OrderCancelledEventName     = "OrderCancelled"
	orderCancelledEventVersion  = 1
	orderCancelledPayloadSchema = "contracts/events/order/OrderCancelled.v1.payload.schema.json"
)

// OrderCancelledPayload lists the restored lines so stock-tracking consumers
// can follow along.
type OrderCancelledPayload struct {
	OrderID     string      `json:"orderId"`
	OrderNumber string      `json:"orderNumber"`
	UserID      string      `json:"userId"`
	Items       []OrderLine `json:"items"`
	CancelledAt time.Time   `json:"cancelledAt"`
}

type OrderCancelledEnvelope = EventEnvelope[OrderCancelledPayload]

func BuildOrderCancelledEnvelope(o *order.Order, seq int64, meta EnvelopeMetadata) OrderCancelledEnvelope {
	if meta.CorrelationID == "" {
		meta.CorrelationID = uuid.NewString()
	}

	return OrderCancelledEnvelope{
		EventName:     OrderCancelledEventName,
		EventVersion:  orderCancelledEventVersion,
		EventID:       uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
		Producer:      serviceName,
		PartitionKey:  orderPartition(o.ID),
		Sequence:      seq,
		OccurredAt:    time.Now().UTC(),
		Schema:        orderCancelledPayloadSchema,
		Payload: OrderCancelledPayload{
			OrderID:     o.ID,
			OrderNumber: o.OrderNumber,
			UserID:      o.UserID,
			Items:       orderLines(o),
			CancelledAt: o.UpdatedAt,
		},
	}
}
