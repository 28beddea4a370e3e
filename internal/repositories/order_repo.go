package repositories

import (
	"time"

	"duka/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	Create(order *models.Order) error
	UpdateStatus(id string, status string, reason string) error
	// FindExpired returns orders still awaiting payment whose payment
	// deadline has passed as of now.
	FindExpired(now time.Time) ([]models.Order, error)
}
