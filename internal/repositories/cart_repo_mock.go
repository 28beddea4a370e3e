package repositories

import (
	"fmt"
	"sync"
	"time"

	"duka/internal/apperrors"
	"duka/internal/models"

	"github.com/google/uuid"
)

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	carts map[string]models.Cart
	mu    sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts: make(map[string]models.Cart),
	}
}

// GetByID returns a cart by its ID.
func (r *MockCartRepository) GetByID(id string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[id]
	if !ok {
		return nil, fmt.Errorf("cart %s: %w", id, apperrors.ErrNotFound)
	}
	items := make([]models.CartItem, len(cart.Items))
	copy(items, cart.Items)
	cart.Items = items
	return &cart, nil
}

// Create adds a new cart.
func (r *MockCartRepository) Create(cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	if cart.Status == "" {
		cart.Status = models.CartStatusOpen
	}
	cart.CreatedAt = time.Now()
	cart.UpdatedAt = time.Now()
	r.carts[cart.ID] = *cart
	return nil
}

// Save persists the cart and its items.
func (r *MockCartRepository) Save(cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carts[cart.ID]; !ok {
		return fmt.Errorf("cart %s for save: %w", cart.ID, apperrors.ErrNotFound)
	}
	for i := range cart.Items {
		if cart.Items[i].ID == "" {
			cart.Items[i].ID = uuid.New().String()
		}
		cart.Items[i].CartID = cart.ID
	}
	cart.UpdatedAt = time.Now()
	r.carts[cart.ID] = *cart
	return nil
}

// UpdateStatus updates the status of a cart.
func (r *MockCartRepository) UpdateStatus(id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[id]
	if !ok {
		return fmt.Errorf("cart %s for status update: %w", id, apperrors.ErrNotFound)
	}
	cart.Status = status
	cart.UpdatedAt = time.Now()
	r.carts[id] = cart
	return nil
}
