package repositories

import (
	"sort"
	"sync"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
type MemoryProductRepository struct {
	products map[int]models.Product
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates an empty in-memory catalog.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[int]models.Product),
	}
}

// GetAll returns all products in catalog order.
func (r *MemoryProductRepository) GetAll() ([]models.Product, error) {
	return r.Find(ProductFilter{})
}

// Find returns the products matching filter in catalog order.
func (r *MemoryProductRepository) Find(filter ProductFilter) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.Matches(p) {
			productList = append(productList, p.Clone())
		}
	}
	sort.Slice(productList, func(i, j int) bool { return productList[i].ID < productList[j].ID })
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(id int) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, apperr.NotFound("product with ID %d not found", id)
	}
	cp := product.Clone()
	return &cp, nil
}

// Create adds a new product, assigning the next free ID when none is set.
func (r *MemoryProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == 0 {
		for id := range r.products {
			if id > product.ID {
				product.ID = id
			}
		}
		product.ID++
	} else if _, exists := r.products[product.ID]; exists {
		return apperr.Conflict("product with ID %d already exists", product.ID)
	}
	r.products[product.ID] = product.Clone()
	return nil
}

// Update modifies an existing product.
func (r *MemoryProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return apperr.NotFound("product with ID %d not found for update", product.ID)
	}
	r.products[product.ID] = product.Clone()
	return nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return apperr.NotFound("product with ID %d not found for deletion", id)
	}
	delete(r.products, id)
	return nil
}
