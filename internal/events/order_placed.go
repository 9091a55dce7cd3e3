package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/guntanalaganesh-web/shoe-store/internal/order"
)

const (
	OrderPlacedEventName     = "OrderPlaced"
	orderPlacedEventVersion  = 1
	orderPlacedPayloadSchema = "contracts/events/order/OrderPlaced.v1.payload.schema.json"
)

// OrderLine is the item contract shared by the order events.
type OrderLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Size      float64         `json:"size"`
	Color     string          `json:"color,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type OrderPlacedPayload struct {
	OrderID     string          `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	UserID      string          `json:"userId"`
	Items       []OrderLine     `json:"items"`
	Total       decimal.Decimal `json:"total"`
	PlacedAt    time.Time       `json:"placedAt"`
}

type OrderPlacedEnvelope = EventEnvelope[OrderPlacedPayload]

func BuildOrderPlacedEnvelope(o *order.Order, seq int64, meta EnvelopeMetadata) OrderPlacedEnvelope {
	if meta.CorrelationID == "" {
		meta.CorrelationID = uuid.NewString()
	}

	return OrderPlacedEnvelope{
		EventName:     OrderPlacedEventName,
		EventVersion:  orderPlacedEventVersion,
		EventID:       uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
		Producer:      serviceName,
		PartitionKey:  orderPartition(o.ID),
		Sequence:      seq,
		OccurredAt:    time.Now().UTC(),
		Schema:        orderPlacedPayloadSchema,
		Payload: OrderPlacedPayload{
			OrderID:     o.ID,
			OrderNumber: o.OrderNumber,
			UserID:      o.UserID,
			Items:       orderLines(o),
			Total:       o.Total,
			PlacedAt:    o.CreatedAt,
		},
	}
}

func orderLines(o *order.Order) []OrderLine {
	items := make([]OrderLine, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderLine{
			ProductID: it.ProductID,
			Name:      it.Name,
			Size:      it.Size,
			Color:     it.Color,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return items
}
