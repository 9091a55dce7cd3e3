package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/guntanalaganesh-web/shoe-store/internal/pricing"
)

type Address struct {
	FullName   string `json:"fullName"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// Valid reports whether the address carries the fields shipping needs.
func (a Address) Valid() bool {
	for _, field := range []string{a.FullName, a.Line1, a.City, a.PostalCode, a.Country} {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}

// Item is an immutable order line, copied by value from the cart at
// checkout. Later catalog edits never reach it.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Brand     string          `json:"brand"`
	Slug      string          `json:"slug"`
	ImageURL  string          `json:"imageUrl"`
	Price     decimal.Decimal `json:"price"`
	Size      float64         `json:"size"`
	Color     string          `json:"color,omitempty"`
	Quantity  int             `json:"quantity"`
}

type HistoryEntry struct {
	Status    Status    `json:"status"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Order struct {
	ID              string                 `json:"id"`
	OrderNumber     string                 `json:"orderNumber"`
	UserID          string                 `json:"userId"`
	Status          Status                 `json:"status"`
	Items           []Item                 `json:"items"`
	Subtotal        decimal.Decimal        `json:"subtotal"`
	ShippingCost    decimal.Decimal        `json:"shippingCost"`
	Tax             decimal.Decimal        `json:"tax"`
	Total           decimal.Decimal        `json:"total"`
	PaymentMethod   PaymentMethod          `json:"paymentMethod"`
	PaymentStatus   PaymentStatus          `json:"paymentStatus"`
	ShippingMethod  pricing.ShippingMethod `json:"shippingMethod"`
	TrackingNumber  string                 `json:"trackingNumber,omitempty"`
	ShippingAddress Address                `json:"shippingAddress"`
	BillingAddress  Address                `json:"billingAddress"`
	History         []HistoryEntry         `json:"statusHistory,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// DepletedBucket identifies a size bucket that hit zero during checkout.
type DepletedBucket struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Size      float64 `json:"size"`
}

// InsufficientStockError names the first cart line that failed stock
// revalidation during checkout. The whole checkout aborts; no stock moved.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Size      float64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s size %v: requested %d, available %d",
		e.Name, e.Size, e.Requested, e.Available)
}

// FormatOrderNumber renders the human-readable order number: ORD, the year,
// the 2-digit month and a 5-digit monthly counter, e.g. ORD20260800042.
func FormatOrderNumber(t time.Time, seq int64) string {
	return fmt.Sprintf("ORD%04d%02d%05d", t.Year(), int(t.Month()), seq)
}

// MonthKey is the counter partition feeding FormatOrderNumber for t's month.
func MonthKey(t time.Time) string {
	return fmt.Sprintf("order-number:%04d%02d", t.Year(), int(t.Month()))
}
