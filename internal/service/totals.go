package service

import (
	"github.com/shopspring/decimal"

	"github.com/mkamenev/storefront/internal/models"
)

// Flat shipping and tax rate, matching the storefront's pricing policy.
var (
	ShippingCost = decimal.New(1000, -2) // 10.00
	TaxRate      = decimal.New(10, -2)   // 10%
)

type Totals struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
}

// ComputeTotals derives shipping, tax and grand total from a subtotal. Pure
// and deterministic: the materializer recomputes it from the live cart rather
// than trusting anything the client or the session cached.
func ComputeTotals(subtotal decimal.Decimal) Totals {
	tax := subtotal.Mul(TaxRate).Round(2)
	return Totals{
		Subtotal:     subtotal,
		ShippingCost: ShippingCost,
		Tax:          tax,
		Total:        subtotal.Add(ShippingCost).Add(tax),
	}
}

// LinesSubtotal sums price x quantity over cart lines in decimal arithmetic.
func LinesSubtotal(lines []models.CartItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return subtotal
}
