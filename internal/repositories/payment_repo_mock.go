package repositories

import (
	"fmt"
	"sync"
	"time"

	"duka/internal/apperrors"
	"duka/internal/models"

	"github.com/google/uuid"
)

// MockPaymentRepository is an in-memory implementation of PaymentRepository.
type MockPaymentRepository struct {
	payments map[string]models.Payment
	mu       sync.RWMutex
}

// NewMockPaymentRepository creates a new instance of MockPaymentRepository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]models.Payment),
	}
}

// GetByID returns a payment by its ID.
func (r *MockPaymentRepository) GetByID(id string) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	payment, ok := r.payments[id]
	if !ok {
		return nil, fmt.Errorf("payment %s: %w", id, apperrors.ErrNotFound)
	}
	return &payment, nil
}

// GetByOrderID returns the most recent payment for an order.
func (r *MockPaymentRepository) GetByOrderID(orderID string) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *models.Payment
	for _, payment := range r.payments {
		if payment.OrderID != orderID {
			continue
		}
		if found == nil || payment.CreatedAt.After(found.CreatedAt) {
			p := payment
			found = &p
		}
	}
	if found == nil {
		return nil, fmt.Errorf("payment for order %s: %w", orderID, apperrors.ErrNotFound)
	}
	return found, nil
}

// Create adds a new payment.
func (r *MockPaymentRepository) Create(payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.Status == "" {
		payment.Status = models.PaymentStatusPending
	}
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = time.Now()
	r.payments[payment.ID] = *payment
	return nil
}

// UpdateStatus updates the status of a payment.
func (r *MockPaymentRepository) UpdateStatus(id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, ok := r.payments[id]
	if !ok {
		return fmt.Errorf("payment %s for status update: %w", id, apperrors.ErrNotFound)
	}
	payment.Status = status
	payment.UpdatedAt = time.Now()
	r.payments[id] = payment
	return nil
}
