package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/guntanalaganesh-web/shoe-store/internal/order"
)

const (
	OrderStatusChangedEventName     = "OrderStatusChanged"
	orderStatusChangedEventVersion  = 1
	orderStatusChangedPayloadSchema = "contracts/events/order/OrderStatusChanged.v1.payload.schema.json"
)

type OrderStatusChangedPayload struct {
	OrderID        string       `json:"orderId"`
	OrderNumber    string       `json:"orderNumber"`
	UserID         string       `json:"userId"`
	PreviousStatus order.Status `json:"previousStatus"`
	Status         order.Status `json:"status"`
	TrackingNumber string       `json:"trackingNumber,omitempty"`
	ChangedAt      time.Time    `json:"changedAt"`
}

type OrderStatusChangedEnvelope = EventEnvelope[OrderStatusChangedPayload]

func BuildOrderStatusChangedEnvelope(o *order.Order, previous order.Status, seq int64, meta EnvelopeMetadata) OrderStatusChangedEnvelope {
	if meta.CorrelationID == "" {
		meta.CorrelationID = uuid.NewString()
	}

	return OrderStatusChangedEnvelope{
		EventName:     OrderStatusChangedEventName,
		EventVersion:  orderStatusChangedEventVersion,
		EventID:       uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
		Producer:      serviceName,
		PartitionKey:  orderPartition(o.ID),
		Sequence:      seq,
		OccurredAt:    time.Now().UTC(),
		Schema:        orderStatusChangedPayloadSchema,
		Payload: OrderStatusChangedPayload{
			OrderID:        o.ID,
			OrderNumber:    o.OrderNumber,
			UserID:         o.UserID,
			PreviousStatus: previous,
			Status:         o.Status,
			TrackingNumber: o.TrackingNumber,
			ChangedAt:      o.UpdatedAt,
		},
	}
}
