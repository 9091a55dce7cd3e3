package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// SizeStock is one stock bucket: units on hand for a single shoe size.
// Sizes are decimal so half sizes (9.5) are first-class.
type SizeStock struct {
	Size  float64 `json:"size"`
	Stock int     `json:"stock"`
}

type Product struct {
	ID          string           `json:"id"`
	Slug        string           `json:"slug"`
	Name        string           `json:"name"`
	Brand       string           `json:"brand"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Gender      string           `json:"gender"`
	ImageURL    string           `json:"imageUrl"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"salePrice,omitempty"`
	Sizes       []SizeStock      `json:"sizes"`
	TotalStock  int              `json:"totalStock"`
	SoldCount   int              `json:"soldCount"`
	Rating      float64          `json:"rating"`
	ReviewCount int              `json:"reviewCount"`
	Featured    bool             `json:"featured"`
	Active      bool             `json:"active"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// EffectivePrice is the sale price when one is set below the list price,
// otherwise the list price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil && p.SalePrice.LessThan(p.Price) {
		return *p.SalePrice
	}
	return p.Price
}

// OnSale reports whether the product currently sells below list price.
func (p *Product) OnSale() bool {
	return p.SalePrice != nil && p.SalePrice.LessThan(p.Price)
}

// StockForSize returns the bucket stock for a size; ok is false when the
// product does not carry that size at all.
func (p *Product) StockForSize(size float64) (int, bool) {
	for _, s := range p.Sizes {
		if s.Size == size {
			return s.Stock, true
		}
	}
	return 0, false
}

// SumSizeStock recomputes the derived total from the buckets. Callers must
// assign the result to TotalStock before persisting.
func (p *Product) SumSizeStock() int {
	total := 0
	for _, s := range p.Sizes {
		total += s.Stock
	}
	return total
}

type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// Listing sort orders.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
)

const (
	GenderMen    = "men"
	GenderWomen  = "women"
	GenderUnisex = "unisex"
	GenderKids   = "kids"
)

// Filter narrows and orders a catalog listing.
type Filter struct {
	Category        string
	Brand           string
	Gender          string
	Featured        bool
	OnSale          bool
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	Sort            string // SortNewest (default) | SortPriceAsc | SortPriceDesc | SortRating
	Page            int
	PerPage         int
	IncludeInactive bool // admin listings see soft-deleted products
}
