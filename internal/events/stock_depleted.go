package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/guntanalaganesh-web/shoe-store/internal/order"
)

const (
	StockDepletedEventName     = "StockDepleted"
	stockDepletedEventVersion  = 1
	stockDepletedPayloadSchema = "contracts/events/stock/StockDepleted.v1.payload.schema.json"
)

// StockDepletedPayload marks one size bucket drained to zero by a checkout.
type StockDepletedPayload struct {
	OrderID    string    `json:"orderId"`
	ProductID  string    `json:"productId"`
	Name       string    `json:"name"`
	Size       float64   `json:"size"`
	DepletedAt time.Time `json:"depletedAt"`
}

type StockDepletedEnvelope = EventEnvelope[StockDepletedPayload]

func BuildStockDepletedEnvelope(orderID string, b order.DepletedBucket, seq int64, meta EnvelopeMetadata) StockDepletedEnvelope {
	if meta.CorrelationID == "" {
		meta.CorrelationID = uuid.NewString()
	}

	return StockDepletedEnvelope{
		EventName:     StockDepletedEventName,
		EventVersion:  stockDepletedEventVersion,
		EventID:       uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
		Producer:      serviceName,
		PartitionKey:  productPartition(b.ProductID),
		Sequence:      seq,
		OccurredAt:    time.Now().UTC(),
		Schema:        stockDepletedPayloadSchema,
		Payload: StockDepletedPayload{
			OrderID:    orderID,
			ProductID:  b.ProductID,
			Name:       b.Name,
			Size:       b.Size,
			DepletedAt: time.Now().UTC(),
		},
	}
}
