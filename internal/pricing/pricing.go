package pricing

import (
	"github.com/shopspring/decimal"
)

// ShippingMethod names a checkout shipping tier.
type ShippingMethod string

const (
	ShippingStandard  ShippingMethod = "standard"
	ShippingExpress   ShippingMethod = "express"
	ShippingOvernight ShippingMethod = "overnight"
)

// Rates holds the store-wide pricing policy. All amounts are decimal; every
// derived figure is rounded half-even to cents before it leaves this package.
type Rates struct {
	TaxRate         decimal.Decimal
	FreeShippingMin decimal.Decimal
	StandardFee     decimal.Decimal
	ExpressFee      decimal.Decimal
	OvernightFee    decimal.Decimal
}

// Default returns the production policy: 8% tax, free standard shipping on
// subtotals of 100 or more, flat fees otherwise.
func Default() Rates {
	return Rates{
		TaxRate:         decimal.NewFromFloat(0.08),
		FreeShippingMin: decimal.NewFromInt(100),
		StandardFee:     decimal.NewFromInt(10),
		ExpressFee:      decimal.NewFromInt(25),
		OvernightFee:    decimal.NewFromInt(40),
	}
}

// ValidMethod reports whether m names a known shipping tier.
func ValidMethod(m ShippingMethod) bool {
	switch m {
	case ShippingStandard, ShippingExpress, ShippingOvernight:
		return true
	}
	return false
}

// ShippingCost returns the cost of the selected method for the given
// subtotal. Only the standard tier is waived above the free-shipping
// threshold.
func (r Rates) ShippingCost(method ShippingMethod, subtotal decimal.Decimal) decimal.Decimal {
	switch method {
	case ShippingExpress:
		return round(r.ExpressFee)
	case ShippingOvernight:
		return round(r.OvernightFee)
	default:
		if subtotal.GreaterThanOrEqual(r.FreeShippingMin) {
			return decimal.Zero
		}
		return round(r.StandardFee)
	}
}

// Tax returns the tax owed on a subtotal.
func (r Rates) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return round(subtotal.Mul(r.TaxRate))
}

func round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

// Round applies the store rounding policy (half-even to cents).
func Round(d decimal.Decimal) decimal.Decimal {
	return round(d)
}
