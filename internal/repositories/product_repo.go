package repositories

import (
	"watchstore/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// GetAll returns the catalog, optionally restricted to one category.
	GetAll(category string) ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	// GetByIDs returns the products that still exist among ids, keyed by ID.
	GetByIDs(ids []string) (map[string]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
}
