// Package pricing derives order totals from cart lines.
package pricing

import (
	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

var (
	// FreeShippingThreshold must be strictly exceeded for free shipping.
	FreeShippingThreshold = decimal.NewFromInt(100)
	FlatShipping          = decimal.NewFromInt(10)
	TaxRate               = decimal.RequireFromString("0.05")
)

// Summary holds the derived amounts for a set of cart lines. Amounts keep full precision;
// round only for display.
type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Calculate computes subtotal, shipping, tax and total. Tax applies to the subtotal only.
func Calculate(lines []models.CartLine) Summary {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
	}
	shipping := Shipping(subtotal)
	tax := subtotal.Mul(TaxRate)
	return Summary{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}

// Shipping returns the shipping charge for a subtotal.
func Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(FreeShippingThreshold) {
		return decimal.Zero
	}
	return FlatShipping
}

// Format renders an amount as a two-decimal dollar string.
func Format(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// Display is Summary rounded for presentation.
type Display struct {
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

// Display formats every amount of s.
func (s Summary) Display() Display {
	return Display{
		Subtotal: Format(s.Subtotal),
		Shipping: Format(s.Shipping),
		Tax:      Format(s.Tax),
		Total:    Format(s.Total),
	}
}
