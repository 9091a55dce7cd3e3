package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/guntanalaganesh-web/shoe-store/internal/pricing"
)

// Item is one cart line. Price and MaxStock are snapshots taken when the line
// was added; mutations revalidate against live stock, not MaxStock.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Brand     string          `json:"brand"`
	Slug      string          `json:"slug"`
	ImageURL  string          `json:"imageUrl"`
	Price     decimal.Decimal `json:"price"`
	Size      float64         `json:"size"`
	Color     string          `json:"color"`
	Quantity  int             `json:"quantity"`
	MaxStock  int             `json:"maxStock"`
}

type Cart struct {
	Items     []Item          `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func Empty() *Cart {
	return &Cart{Items: []Item{}}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Recalculate rebuilds the derived totals from the lines. Cart previews
// always quote the standard shipping tier; checkout reprices with the
// method the customer actually selects. An empty cart quotes all zeros.
func (c *Cart) Recalculate(rates pricing.Rates) {
	c.UpdatedAt = time.Now().UTC()
	if len(c.Items) == 0 {
		c.Subtotal, c.Shipping, c.Tax, c.Total = decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
		return
	}

	subtotal := decimal.Zero
	for _, it := range c.Items {
		subtotal = subtotal.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	c.Subtotal = pricing.Round(subtotal)
	c.Shipping = rates.ShippingCost(pricing.ShippingStandard, c.Subtotal)
	c.Tax = rates.Tax(c.Subtotal)
	c.Total = c.Subtotal.Add(c.Shipping).Add(c.Tax)
}
