package store_test

import (
	"fmt"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

func product(id int, price string) models.Product {
	return models.Product{
		ID:       id,
		Name:     fmt.Sprintf("Product %d", id),
		Price:    decimal.RequireFromString(price),
		Category: "Accessories",
		Images:   models.StringList{fmt.Sprintf("/images/%d.jpg", id)},
	}
}
