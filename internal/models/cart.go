package models

import "github.com/shopspring/decimal"

// CartLine pairs a product with a quantity. Quantity is always at least 1.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LineTotal is the unit price times the quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CompareEntry is one product in the compare set.
type CompareEntry struct {
	Product Product `json:"product"`
}
