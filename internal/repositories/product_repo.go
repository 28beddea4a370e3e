package repositories

import (
	"duka/internal/models"
)

// ProductSearchOptions narrows and orders a catalog search.
type ProductSearchOptions struct {
	Query    string   // substring match on name or SKU; empty matches all
	MinPrice *float64 // inclusive
	MaxPrice *float64 // inclusive
	SortBy   string   // "price" or "name"; empty defaults to name
	SortDesc bool
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Search(opts ProductSearchOptions) ([]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
}
