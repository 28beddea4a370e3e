package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"duka/internal/apperrors"
	"duka/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex

	// FailStatusUpdateFor simulates a storage failure for specific order
	// IDs, so tests can exercise partial-failure handling in batch jobs.
	FailStatusUpdateFor map[string]bool
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// GetAll returns all orders, newest first.
func (r *MockOrderRepository) GetAll() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orderList = append(orderList, order)
	}
	sort.Slice(orderList, func(i, j int) bool {
		return orderList[i].CreatedAt.After(orderList[j].CreatedAt)
	})
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, apperrors.ErrNotFound)
	}
	return &order, nil
}

// Create adds a new order.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

// UpdateStatus updates the status (and cancel reason) of an order.
func (r *MockOrderRepository) UpdateStatus(id string, status string, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailStatusUpdateFor[id] {
		return fmt.Errorf("simulated storage failure for order %s", id)
	}

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order %s for status update: %w", id, apperrors.ErrNotFound)
	}
	order.Status = status
	if reason != "" {
		order.CancelReason = reason
	}
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// FindExpired returns pending-payment orders whose deadline has passed.
func (r *MockOrderRepository) FindExpired(now time.Time) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var expired []models.Order
	for _, order := range r.orders {
		if order.Status == models.OrderStatusPendingPayment &&
			order.PaymentDeadline != nil &&
			order.PaymentDeadline.Before(now) {
			expired = append(expired, order)
		}
	}
	sort.Slice(expired, func(i, j int) bool {
		return expired[i].PaymentDeadline.Before(*expired[j].PaymentDeadline)
	})
	return expired, nil
}
