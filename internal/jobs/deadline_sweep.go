// Package jobs contains the scheduled background work: the payment
// deadline sweep that cancels deferred-settlement orders left unpaid past
// their deadline.
package jobs

import (
	"errors"
	"log"
	"time"

	"duka/internal/apperrors"
	"duka/internal/models"
	"duka/internal/repositories"
	"duka/pkg/rabbitmq"

	"github.com/robfig/cron/v3"
)

// OrderEventPublisher publishes order lifecycle events. *rabbitmq.Client
// satisfies it.
type OrderEventPublisher interface {
	PublishOrderEvent(event rabbitmq.OrderEvent) error
}

// CancelReasonDeadlineExpired is recorded on orders the sweep cancels.
const CancelReasonDeadlineExpired = "payment deadline expired"

// DeadlineSweep periodically cancels pending-payment orders whose payment
// deadline has passed, together with their payment records. Cancellation is
// an idempotent terminal transition, so overlapping ticks and races with a
// user-initiated payment are safe to retry. Latency is bounded by the tick
// interval, not by the deadline itself.
type DeadlineSweep struct {
	orderRepo   repositories.OrderRepository
	paymentRepo repositories.PaymentRepository
	mqClient    OrderEventPublisher
	cron        *cron.Cron
}

// NewDeadlineSweep creates a new DeadlineSweep. mqClient may be nil.
func NewDeadlineSweep(orderRepo repositories.OrderRepository, paymentRepo repositories.PaymentRepository, mqClient OrderEventPublisher) *DeadlineSweep {
	return &DeadlineSweep{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		mqClient:    mqClient,
	}
}

// Start schedules the sweep on the given cron expression (e.g. "@hourly")
// and runs one immediate tick so a restart does not wait a full interval
// for already-expired orders.
func (s *DeadlineSweep) Start(schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { s.RunOnce(time.Now()) }); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	log.Printf("Deadline sweep scheduled (%s)", schedule)

	go s.RunOnce(time.Now())
	return nil
}

// Stop stops the schedule, waiting for a running tick to finish.
func (s *DeadlineSweep) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// RunOnce performs a single sweep tick as of now. Each expired order is its
// own failure boundary: an error is logged and the tick moves on, so one
// bad record cannot block the batch. Returns how many orders were cancelled.
func (s *DeadlineSweep) RunOnce(now time.Time) int {
	expired, err := s.orderRepo.FindExpired(now)
	if err != nil {
		log.Printf("Deadline sweep: failed to query expired orders: %v", err)
		return 0
	}
	if len(expired) == 0 {
		return 0
	}
	log.Printf("Deadline sweep: found %d expired order(s)", len(expired))

	cancelled := 0
	for _, order := range expired {
		if err := s.cancelOrder(order); err != nil {
			log.Printf("Deadline sweep: failed to cancel order %s: %v", order.ID, err)
			continue
		}
		cancelled++
	}
	return cancelled
}

// cancelOrder marks the order cancelled and moves its payment record, when
// one exists, to cancelled as well, so the two never disagree.
func (s *DeadlineSweep) cancelOrder(order models.Order) error {
	if err := s.orderRepo.UpdateStatus(order.ID, models.OrderStatusCancelled, CancelReasonDeadlineExpired); err != nil {
		return err
	}

	payment, err := s.paymentRepo.GetByOrderID(order.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("Deadline sweep: order %s has no payment record", order.ID)
		} else {
			return err
		}
	} else if payment.Status != models.PaymentStatusCancelled {
		if err := s.paymentRepo.UpdateStatus(payment.ID, models.PaymentStatusCancelled); err != nil {
			return err
		}
	}

	if s.mqClient != nil {
		event := rabbitmq.OrderEvent{
			Event:      rabbitmq.EventOrderCancelled,
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			Status:     models.OrderStatusCancelled,
			Reason:     CancelReasonDeadlineExpired,
		}
		if err := s.mqClient.PublishOrderEvent(event); err != nil {
			log.Printf("Warning: Failed to publish cancellation event for order %s: %v", order.ID, err)
		}
	}

	log.Printf("Deadline sweep: cancelled order %s (deadline %s)", order.ID, order.PaymentDeadline.Format(time.RFC3339))
	return nil
}
