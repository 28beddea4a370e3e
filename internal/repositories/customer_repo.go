package repositories

import (
	"duka/internal/models"
)

// CustomerRepository defines the interface for customer and address data
// access. Addresses always belong to a customer, so they live behind the
// same repository.
type CustomerRepository interface {
	GetByID(id string) (*models.Customer, error)
	GetByEmail(email string) (*models.Customer, error)
	Create(customer *models.Customer) error
	CreateAddress(address *models.Address) error
}
