package repositories

import (
	"fmt"
	"sync"
	"time"

	"duka/internal/apperrors"
	"duka/internal/models"

	"github.com/google/uuid"
)

// MockCustomerRepository is an in-memory implementation of CustomerRepository.
type MockCustomerRepository struct {
	customers map[string]models.Customer
	addresses map[string]models.Address
	mu        sync.RWMutex

	// CreateCalls counts customer creations, so tests can assert that
	// resolving an existing customer by email does not create a duplicate.
	CreateCalls int
}

// NewMockCustomerRepository creates a new instance of MockCustomerRepository.
func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{
		customers: make(map[string]models.Customer),
		addresses: make(map[string]models.Address),
	}
}

// GetByID returns a customer by their ID.
func (r *MockCustomerRepository) GetByID(id string) (*models.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer %s: %w", id, apperrors.ErrNotFound)
	}
	return &customer, nil
}

// GetByEmail returns a customer by their email address.
func (r *MockCustomerRepository) GetByEmail(email string) (*models.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, customer := range r.customers {
		if customer.Email == email {
			c := customer
			return &c, nil
		}
	}
	return nil, fmt.Errorf("customer with email %s: %w", email, apperrors.ErrNotFound)
}

// Create adds a new customer.
func (r *MockCustomerRepository) Create(customer *models.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.CreateCalls++
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	customer.CreatedAt = time.Now()
	customer.UpdatedAt = time.Now()
	r.customers[customer.ID] = *customer
	return nil
}

// CreateAddress adds a new address.
func (r *MockCustomerRepository) CreateAddress(address *models.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if address.ID == "" {
		address.ID = uuid.New().String()
	}
	address.CreatedAt = time.Now()
	address.UpdatedAt = time.Now()
	r.addresses[address.ID] = *address
	return nil
}
