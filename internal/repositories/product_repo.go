package repositories

import (
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

// ProductRepository defines the interface for catalog access. GetAll and Find return products in
// catalog order (ascending id).
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id int) (*models.Product, error)
	Find(filter ProductFilter) ([]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id int) error
}

// ProductFilter narrows a catalog query. Zero fields match everything.
type ProductFilter struct {
	Search   string // substring of name or description, case-insensitive
	Category string // substring of category, case-insensitive
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// Matches reports whether p satisfies every set criterion of f.
func (f ProductFilter) Matches(p models.Product) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	if f.Category != "" && !strings.Contains(strings.ToLower(p.Category), strings.ToLower(f.Category)) {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}
