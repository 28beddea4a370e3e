package services

import (
	"errors"
	"fmt"
	"log"

	"duka/internal/apperrors"
	"duka/internal/models"
	"duka/internal/repositories"
	"duka/pkg/rabbitmq"
)

// OrderService handles order state transitions after checkout.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	paymentRepo repositories.PaymentRepository
	mqClient    OrderEventPublisher
}

// NewOrderService creates a new OrderService. mqClient may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, paymentRepo repositories.PaymentRepository, mqClient OrderEventPublisher) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		mqClient:    mqClient,
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// MarkPaid transitions an order to paid and its payment to completed. A
// cancelled order cannot be revived: a late settlement surfaces as a
// validation error instead of silently reinstating the order.
func (s *OrderService) MarkPaid(id string) error {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return err
	}
	switch order.Status {
	case models.OrderStatusPaid:
		return nil // already settled, nothing to do
	case models.OrderStatusCancelled:
		return apperrors.NewValidationError("order %s is cancelled and cannot be marked paid", id)
	}

	if err := s.orderRepo.UpdateStatus(id, models.OrderStatusPaid, ""); err != nil {
		return fmt.Errorf("failed to mark order %s paid: %w", id, err)
	}

	payment, err := s.paymentRepo.GetByOrderID(id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("Warning: order %s marked paid but has no payment record", id)
			return nil
		}
		return fmt.Errorf("failed to load payment for order %s: %w", id, err)
	}
	if err := s.paymentRepo.UpdateStatus(payment.ID, models.PaymentStatusCompleted); err != nil {
		return fmt.Errorf("failed to complete payment %s: %w", payment.ID, err)
	}

	s.publish(rabbitmq.OrderEvent{
		Event:   rabbitmq.EventOrderPaid,
		OrderID: id,
		Status:  models.OrderStatusPaid,
	})
	return nil
}

// CancelOrder cancels an order and its payment record. Cancellation is an
// idempotent terminal transition: cancelling an already-cancelled order is
// a no-op, so retries and races with the deadline sweep are safe.
func (s *OrderService) CancelOrder(id string, reason string) error {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return err
	}
	if order.Status == models.OrderStatusCancelled {
		return nil
	}
	if order.Status == models.OrderStatusPaid {
		return apperrors.NewValidationError("order %s is paid and cannot be cancelled", id)
	}

	if err := s.orderRepo.UpdateStatus(id, models.OrderStatusCancelled, reason); err != nil {
		return fmt.Errorf("failed to cancel order %s: %w", id, err)
	}

	payment, err := s.paymentRepo.GetByOrderID(id)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to load payment for order %s: %w", id, err)
		}
		// No payment record; the order alone is cancelled.
	} else if payment.Status != models.PaymentStatusCancelled {
		if err := s.paymentRepo.UpdateStatus(payment.ID, models.PaymentStatusCancelled); err != nil {
			return fmt.Errorf("failed to cancel payment %s: %w", payment.ID, err)
		}
	}

	s.publish(rabbitmq.OrderEvent{
		Event:   rabbitmq.EventOrderCancelled,
		OrderID: id,
		Status:  models.OrderStatusCancelled,
		Reason:  reason,
	})
	return nil
}

func (s *OrderService) publish(event rabbitmq.OrderEvent) {
	if s.mqClient == nil {
		return
	}
	if err := s.mqClient.PublishOrderEvent(event); err != nil {
		log.Printf("Warning: Failed to publish %s event for order %s: %v", event.Event, event.OrderID, err)
	}
}
