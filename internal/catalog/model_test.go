package catalog

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestEffectivePrice(t *testing.T) {
	tests := []struct {
		name      string
		price     string
		salePrice *decimal.Decimal
		want      string
		onSale    bool
	}{
		{"no sale price", "120", nil, "120", false},
		{"sale below list", "120", decPtr("89.99"), "89.99", true},
		{"sale equal to list", "120", decPtr("120"), "120", false},
		{"sale above list ignored", "120", decPtr("150"), "120", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := Product{Price: dec(tc.price), SalePrice: tc.salePrice}
			require.True(t, dec(tc.want).Equal(p.EffectivePrice()), "got %s", p.EffectivePrice())
			require.Equal(t, tc.onSale, p.OnSale())
		})
	}
}

func TestStockForSize(t *testing.T) {
	p := Product{Sizes: []SizeStock{{Size: 9, Stock: 5}, {Size: 9.5, Stock: 0}}}

	stock, ok := p.StockForSize(9)
	require.True(t, ok)
	require.Equal(t, 5, stock)

	stock, ok = p.StockForSize(9.5)
	require.True(t, ok, "carried size with zero stock is still known")
	require.Equal(t, 0, stock)

	_, ok = p.StockForSize(13)
	require.False(t, ok)
}

func TestSumSizeStock(t *testing.T) {
	p := Product{Sizes: []SizeStock{{Size: 8, Stock: 3}, {Size: 9, Stock: 5}, {Size: 10, Stock: 0}}}
	require.Equal(t, 8, p.SumSizeStock())

	require.Equal(t, 0, (&Product{}).SumSizeStock())
}

func TestProductJSONMoneyAsString(t *testing.T) {
	p := Product{Price: dec("129.90"), SalePrice: decPtr("99.95")}

	raw, err := json.Marshal(&p)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"price":"129.9"`)
	require.Contains(t, string(raw), `"salePrice":"99.95"`)
}
