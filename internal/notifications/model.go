package notifications

import "time"

// Kind tags what a back-office notification is about.
type Kind string

const (
	KindOrderPlaced    Kind = "order_placed"
	KindOrderCancelled Kind = "order_cancelled"
	KindStockDepleted  Kind = "stock_depleted"
)

// Notification is one back-office feed entry, materialized from a domain
// event by the consumer.
type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	OrderID   string    `json:"orderId,omitempty"`
	ProductID string    `json:"productId,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
