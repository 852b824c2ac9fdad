package repositories

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	return r.Find(ProductFilter{})
}

// Find retrieves the products matching filter.
func (r *GORMProductRepository) Find(filter ProductFilter) ([]models.Product, error) {
	q := r.db.Model(&models.Product{})
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}
	if filter.Category != "" {
		q = q.Where("LOWER(category) LIKE ?", "%"+strings.ToLower(filter.Category)+"%")
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", filter.MinPrice.InexactFloat64())
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", filter.MaxPrice.InexactFloat64())
	}

	var products []models.Product
	if err := q.Order("id ASC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(id int) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product with ID %d not found", id)
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database, assigning the next free ID when none is set.
func (r *GORMProductRepository) Create(product *models.Product) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if product.ID == 0 {
			var maxID int
			if err := tx.Model(&models.Product{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
				return fmt.Errorf("failed to allocate product ID: %w", err)
			}
			product.ID = maxID + 1
		} else if exists, err := r.exists(tx, product.ID); err != nil {
			return err
		} else if exists {
			return apperr.Conflict("product with ID %d already exists", product.ID)
		}
		if err := tx.Create(product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		return nil
	})
}

// Update updates an existing product in the database.
func (r *GORMProductRepository) Update(product *models.Product) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Save would insert a missing row, so check first.
		exists, err := r.exists(tx, product.ID)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound("product with ID %d not found for update", product.ID)
		}
		if err := tx.Save(product).Error; err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		return nil
	})
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(id int) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product with ID %d not found for deletion", id)
	}
	return nil
}

func (r *GORMProductRepository) exists(tx *gorm.DB, id int) (bool, error) {
	var count int64
	if err := tx.Model(&models.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to look up product %d: %w", id, err)
	}
	return count > 0, nil
}
