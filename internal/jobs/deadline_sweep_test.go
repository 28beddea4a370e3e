package jobs_test

import (
	"io"
	"log"
	"testing"
	"time"

	"duka/internal/jobs"
	"duka/internal/models"
	"duka/internal/repositories"
	"duka/pkg/rabbitmq"

	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	m.Run()
}

type capturingPublisher struct {
	events []rabbitmq.OrderEvent
}

func (p *capturingPublisher) PublishOrderEvent(event rabbitmq.OrderEvent) error {
	p.events = append(p.events, event)
	return nil
}

type sweepFixture struct {
	sweep       *jobs.DeadlineSweep
	orderRepo   *repositories.MockOrderRepository
	paymentRepo *repositories.MockPaymentRepository
	publisher   *capturingPublisher
}

func newSweepFixture(t *testing.T) *sweepFixture {
	t.Helper()
	f := &sweepFixture{
		orderRepo:   repositories.NewMockOrderRepository(),
		paymentRepo: repositories.NewMockPaymentRepository(),
		publisher:   &capturingPublisher{},
	}
	f.sweep = jobs.NewDeadlineSweep(f.orderRepo, f.paymentRepo, f.publisher)
	return f
}

// seedPendingOrder creates a pending-payment order with the given deadline
// and a pending payment record.
func (f *sweepFixture) seedPendingOrder(t *testing.T, deadline time.Time) (*models.Order, *models.Payment) {
	t.Helper()
	order := &models.Order{
		CustomerID:      "cust-1",
		PaymentMethod:   models.PaymentMethodBankTransfer,
		Status:          models.OrderStatusPendingPayment,
		PaymentDeadline: &deadline,
		Total:           250.0,
	}
	assert.NoError(t, f.orderRepo.Create(order))
	payment := &models.Payment{
		OrderID: order.ID,
		Method:  order.PaymentMethod,
		Amount:  order.Total,
		Status:  models.PaymentStatusPending,
	}
	assert.NoError(t, f.paymentRepo.Create(payment))
	return order, payment
}

func TestDeadlineSweep_CancelsExpiredOrders(t *testing.T) {
	f := newSweepFixture(t)
	now := time.Now()
	expired, expiredPayment := f.seedPendingOrder(t, now.Add(-time.Hour))
	future, futurePayment := f.seedPendingOrder(t, now.Add(time.Hour))

	cancelled := f.sweep.RunOnce(now)
	assert.Equal(t, 1, cancelled)

	got, err := f.orderRepo.GetByID(expired.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)
	assert.Equal(t, jobs.CancelReasonDeadlineExpired, got.CancelReason)

	gotPayment, err := f.paymentRepo.GetByID(expiredPayment.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCancelled, gotPayment.Status)

	// The order still inside its deadline is untouched
	got, err = f.orderRepo.GetByID(future.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusPendingPayment, got.Status)
	gotPayment, err = f.paymentRepo.GetByID(futurePayment.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, gotPayment.Status)

	assert.Len(t, f.publisher.events, 1)
	assert.Equal(t, rabbitmq.EventOrderCancelled, f.publisher.events[0].Event)
	assert.Equal(t, expired.ID, f.publisher.events[0].OrderID)
	assert.Equal(t, jobs.CancelReasonDeadlineExpired, f.publisher.events[0].Reason)
}

func TestDeadlineSweep_SkipsOrdersWithoutDeadline(t *testing.T) {
	f := newSweepFixture(t)
	order := &models.Order{
		CustomerID:    "cust-1",
		PaymentMethod: models.PaymentMethodCard,
		Status:        models.OrderStatusPendingPayment,
	}
	assert.NoError(t, f.orderRepo.Create(order))

	assert.Equal(t, 0, f.sweep.RunOnce(time.Now()))

	got, err := f.orderRepo.GetByID(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusPendingPayment, got.Status)
}

func TestDeadlineSweep_SecondTickIsNoOp(t *testing.T) {
	f := newSweepFixture(t)
	now := time.Now()
	f.seedPendingOrder(t, now.Add(-time.Hour))

	assert.Equal(t, 1, f.sweep.RunOnce(now))
	assert.Equal(t, 0, f.sweep.RunOnce(now))
	assert.Len(t, f.publisher.events, 1)
}

func TestDeadlineSweep_PaidOrderIsNotSwept(t *testing.T) {
	f := newSweepFixture(t)
	now := time.Now()
	order, _ := f.seedPendingOrder(t, now.Add(-time.Hour))
	assert.NoError(t, f.orderRepo.UpdateStatus(order.ID, models.OrderStatusPaid, ""))

	assert.Equal(t, 0, f.sweep.RunOnce(now))

	got, err := f.orderRepo.GetByID(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, got.Status)
}

func TestDeadlineSweep_OneFailureDoesNotBlockTheBatch(t *testing.T) {
	f := newSweepFixture(t)
	now := time.Now()
	broken, _ := f.seedPendingOrder(t, now.Add(-2*time.Hour))
	healthy, _ := f.seedPendingOrder(t, now.Add(-time.Hour))

	f.orderRepo.FailStatusUpdateFor = map[string]bool{broken.ID: true}

	assert.Equal(t, 1, f.sweep.RunOnce(now))

	got, err := f.orderRepo.GetByID(healthy.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)

	got, err = f.orderRepo.GetByID(broken.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusPendingPayment, got.Status)

	// The next tick picks the failed order up again
	f.orderRepo.FailStatusUpdateFor = nil
	assert.Equal(t, 1, f.sweep.RunOnce(now))
}

func TestDeadlineSweep_OrderWithoutPaymentRecord(t *testing.T) {
	f := newSweepFixture(t)
	now := time.Now()
	deadline := now.Add(-time.Hour)
	order := &models.Order{
		CustomerID:      "cust-1",
		PaymentMethod:   models.PaymentMethodBankTransfer,
		Status:          models.OrderStatusPendingPayment,
		PaymentDeadline: &deadline,
	}
	assert.NoError(t, f.orderRepo.Create(order))

	assert.Equal(t, 1, f.sweep.RunOnce(now))

	got, err := f.orderRepo.GetByID(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)
}
