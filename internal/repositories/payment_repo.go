package repositories

import (
	"duka/internal/models"
)

// PaymentRepository defines the interface for payment data access.
type PaymentRepository interface {
	GetByID(id string) (*models.Payment, error)
	GetByOrderID(orderID string) (*models.Payment, error)
	Create(payment *models.Payment) error
	UpdateStatus(id string, status string) error
}
