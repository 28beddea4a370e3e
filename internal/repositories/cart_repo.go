package repositories

import (
	"duka/internal/models"
)

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	GetByID(id string) (*models.Cart, error)
	Create(cart *models.Cart) error
	Save(cart *models.Cart) error
	UpdateStatus(id string, status string) error
}
