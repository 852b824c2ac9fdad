package services

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/repositories"
	"storefront/internal/validation"
)

// SortOrder selects how a catalog listing is ordered.
type SortOrder string

const (
	SortFeatured  SortOrder = "featured"
	SortPriceAsc  SortOrder = "price-asc"
	SortPriceDesc SortOrder = "price-desc"
	SortNameAsc   SortOrder = "name-asc"
	SortNameDesc  SortOrder = "name-desc"
)

// ParseSortOrder accepts the sort keys of the products page. An empty key is SortFeatured.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(s); o {
	case "":
		return SortFeatured, nil
	case SortFeatured, SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc:
		return o, nil
	default:
		return "", apperr.Validation(fmt.Sprintf("Unknown sort order %q", s), apperr.Violation{
			Field: "sort", Rule: "oneof", Message: "sort must be one of [featured price-asc price-desc name-asc name-desc]",
		})
	}
}

// ProductQuery is a catalog listing request.
type ProductQuery struct {
	Search   string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     SortOrder
}

// ProductService handles catalog queries and admin product management.
type ProductService struct {
	repo      repositories.ProductRepository
	validator *validation.Validator
	notifier  notify.Notifier
	logger    *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, validator *validation.Validator, notifier notify.Notifier, logger *zap.Logger) *ProductService {
	return &ProductService{
		repo:      repo,
		validator: validator,
		notifier:  notifier,
		logger:    logger,
	}
}

// ListProducts returns the products matching q in the requested order.
func (s *ProductService) ListProducts(q ProductQuery) ([]models.Product, error) {
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return nil, apperr.Validation("Minimum price must not exceed maximum price", apperr.Violation{
			Field: "min_price", Rule: "ltefield", Message: "min_price must not exceed max_price",
		})
	}
	products, err := s.repo.Find(repositories.ProductFilter{
		Search:   strings.TrimSpace(q.Search),
		Category: strings.TrimSpace(q.Category),
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	SortProducts(products, q.Sort)
	return products, nil
}

// SortProducts orders products in place. SortFeatured keeps catalog order.
func SortProducts(products []models.Product, order SortOrder) {
	var cmp func(a, b models.Product) int
	switch order {
	case SortPriceAsc:
		cmp = func(a, b models.Product) int { return a.Price.Cmp(b.Price) }
	case SortPriceDesc:
		cmp = func(a, b models.Product) int { return b.Price.Cmp(a.Price) }
	case SortNameAsc:
		cmp = func(a, b models.Product) int { return compareNames(a.Name, b.Name) }
	case SortNameDesc:
		cmp = func(a, b models.Product) int { return compareNames(b.Name, a.Name) }
	default:
		return
	}
	slices.SortStableFunc(products, cmp)
}

func compareNames(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id int) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// Categories lists the distinct categories in catalog order of first appearance.
func (s *ProductService) Categories() ([]string, error) {
	products, err := s.repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	seen := make(map[string]bool)
	categories := []string{}
	for _, p := range products {
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	return categories, nil
}

// CreateProduct validates and stores a new product. A zero ID is assigned by the repository.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if err := s.check(product); err != nil {
		return err
	}
	if err := s.repo.Create(product); err != nil {
		return err
	}
	s.logger.Info("product created", zap.Int("product_id", product.ID), zap.String("name", product.Name))
	s.notifier.Notify(notify.Info("Product created", fmt.Sprintf("Successfully created %s", product.Name)))
	return nil
}

// UpdateProduct validates and replaces an existing product.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	if err := s.check(product); err != nil {
		return err
	}
	if err := s.repo.Update(product); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			s.notifier.Notify(notify.Failure("Product not found", "The product you're trying to edit doesn't exist."))
		}
		return err
	}
	s.logger.Info("product updated", zap.Int("product_id", product.ID))
	s.notifier.Notify(notify.Info("Product updated", fmt.Sprintf("Successfully updated %s", product.Name)))
	return nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id int) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.logger.Info("product deleted", zap.Int("product_id", id))
	s.notifier.Notify(notify.Info("Product deleted", "The product has been successfully deleted."))
	return nil
}

func (s *ProductService) check(product *models.Product) error {
	err := s.validator.Check(product, "Please fill in all required fields.")
	if err != nil && apperr.Is(err, apperr.KindValidation) {
		s.notifier.Notify(notify.Failure("Validation Error", "Please fill in all required fields."))
	}
	return err
}
