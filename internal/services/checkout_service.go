package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"duka/internal/apperrors"
	"duka/internal/models"
	"duka/internal/repositories"
	"duka/pkg/rabbitmq"
)

// OrderEventPublisher publishes order lifecycle events. *rabbitmq.Client
// satisfies it.
type OrderEventPublisher interface {
	PublishOrderEvent(event rabbitmq.OrderEvent) error
}

// Mobile money providers accepted at checkout.
var mobileMoneyProviders = map[string]bool{
	"mtn":    true,
	"airtel": true,
	"zamtel": true,
	"orange": true,
}

// CustomerInput identifies the customer placing the order.
type CustomerInput struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string `json:"last_name" validate:"required,min=1,max=100"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
}

// AddressInput is a shipping or billing address supplied at checkout.
type AddressInput struct {
	Line1      string `json:"line1" validate:"required,min=1,max=255"`
	Line2      string `json:"line2" validate:"omitempty,max=255"`
	City       string `json:"city" validate:"required,min=1,max=100"`
	Province   string `json:"province" validate:"omitempty,max=100"`
	PostalCode string `json:"postal_code" validate:"omitempty,max=20"`
	Country    string `json:"country" validate:"required,min=2,max=100"`
}

// MobileMoneyDetails carries the method-specific payload for mobile money.
type MobileMoneyDetails struct {
	Provider    string `json:"provider" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required,max=32"`
}

// CardDetails carries an opaque gateway reference for card payments.
type CardDetails struct {
	Reference string `json:"reference" validate:"omitempty,max=64"`
}

// CheckoutRequest is the input contract for converting a cart into an order.
type CheckoutRequest struct {
	CartID             string              `json:"cart_id" validate:"required"`
	Customer           CustomerInput       `json:"customer" validate:"required"`
	ShippingAddress    AddressInput        `json:"shipping_address" validate:"required"`
	BillingAddress     *AddressInput       `json:"billing_address,omitempty"`
	PaymentMethod      string              `json:"payment_method" validate:"required,oneof=card mobile-money bank-transfer"`
	CardDetails        *CardDetails        `json:"card_details,omitempty"`
	MobileMoneyDetails *MobileMoneyDetails `json:"mobile_money_details,omitempty"`
	Notes              string              `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// CheckoutResult is what a successful checkout returns to the caller.
type CheckoutResult struct {
	Order   *models.Order   `json:"order"`
	Payment *models.Payment `json:"payment"`
}

// CheckoutService converts carts into durable orders with payment records.
type CheckoutService struct {
	cartRepo     repositories.CartRepository
	customerRepo repositories.CustomerRepository
	orderRepo    repositories.OrderRepository
	paymentRepo  repositories.PaymentRepository
	settings     *SettingsService
	mqClient     OrderEventPublisher
}

// NewCheckoutService creates a new CheckoutService. mqClient may be nil,
// in which case order events are not published.
func NewCheckoutService(
	cartRepo repositories.CartRepository,
	customerRepo repositories.CustomerRepository,
	orderRepo repositories.OrderRepository,
	paymentRepo repositories.PaymentRepository,
	settings *SettingsService,
	mqClient OrderEventPublisher,
) *CheckoutService {
	return &CheckoutService{
		cartRepo:     cartRepo,
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		paymentRepo:  paymentRepo,
		settings:     settings,
		mqClient:     mqClient,
	}
}

// Checkout converts the cart into an order plus a pending payment record.
// For bank transfer orders a payment deadline of now + the configured
// deadline hours (default 24) is set; the sweep cancels orders that miss it.
func (s *CheckoutService) Checkout(req CheckoutRequest) (*CheckoutResult, error) {
	if err := s.validatePaymentDetails(req); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetByID(req.CartID)
	if err != nil {
		return nil, err
	}
	if cart.Status != models.CartStatusOpen {
		return nil, apperrors.NewValidationError("cart %s is already checked out", cart.ID)
	}
	if len(cart.Items) == 0 {
		return nil, apperrors.NewValidationError("cart %s is empty", cart.ID)
	}

	customer, err := s.ensureCustomer(req.Customer)
	if err != nil {
		return nil, err
	}

	shippingID, err := s.createAddress(customer.ID, models.AddressKindShipping, req.ShippingAddress)
	if err != nil {
		return nil, err
	}
	billingID := shippingID
	if req.BillingAddress != nil {
		billingID, err = s.createAddress(customer.ID, models.AddressKindBilling, *req.BillingAddress)
		if err != nil {
			return nil, err
		}
	}

	order := &models.Order{
		CartID:            cart.ID,
		CustomerID:        customer.ID,
		ShippingAddressID: shippingID,
		BillingAddressID:  billingID,
		PaymentMethod:     req.PaymentMethod,
		Status:            models.OrderStatusPendingPayment,
		Notes:             req.Notes,
		Subtotal:          cart.Subtotal,
		TaxTotal:          cart.TaxTotal,
		Total:             cart.Total,
	}
	for _, item := range cart.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			SKU:       item.SKU,
			UnitPrice: item.UnitPrice, // frozen snapshot from the cart
			TaxRate:   item.TaxRate,
			IsDigital: item.IsDigital,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal,
		})
	}

	if req.PaymentMethod == models.PaymentMethodBankTransfer {
		deadline := time.Now().Add(time.Duration(s.settings.PaymentDeadlineHours()) * time.Hour)
		order.PaymentDeadline = &deadline
	}

	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	payment := &models.Payment{
		OrderID: order.ID,
		Method:  req.PaymentMethod,
		Amount:  order.Total,
		Status:  models.PaymentStatusPending,
	}
	if req.MobileMoneyDetails != nil {
		payment.MobileMoneyProvider = req.MobileMoneyDetails.Provider
		payment.MobileMoneyPhone = req.MobileMoneyDetails.PhoneNumber
	}
	if req.CardDetails != nil {
		payment.CardReference = req.CardDetails.Reference
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, fmt.Errorf("failed to create payment for order %s: %w", order.ID, err)
	}

	if err := s.cartRepo.UpdateStatus(cart.ID, models.CartStatusCheckedOut); err != nil {
		log.Printf("Warning: failed to mark cart %s checked out: %v", cart.ID, err)
	}

	s.publishEvent(rabbitmq.OrderEvent{
		Event:      rabbitmq.EventOrderCreated,
		OrderID:    order.ID,
		CustomerID: customer.ID,
		Status:     order.Status,
		Total:      order.Total,
	})

	return &CheckoutResult{Order: order, Payment: payment}, nil
}

// ensureCustomer resolves the customer by email, creating one only on a
// miss. Calling it twice with the same email yields the same customer.
func (s *CheckoutService) ensureCustomer(input CustomerInput) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByEmail(input.Email)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up customer by email: %w", err)
	}

	customer = &models.Customer{
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
	}
	if err := s.customerRepo.Create(customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	if customer.ID == "" {
		return nil, &apperrors.UpstreamError{Op: "create customer", Reason: "backend did not return a customer identifier"}
	}
	return customer, nil
}

func (s *CheckoutService) createAddress(customerID, kind string, input AddressInput) (string, error) {
	address := &models.Address{
		CustomerID: customerID,
		Kind:       kind,
		Line1:      input.Line1,
		Line2:      input.Line2,
		City:       input.City,
		Province:   input.Province,
		PostalCode: input.PostalCode,
		Country:    input.Country,
	}
	if err := s.customerRepo.CreateAddress(address); err != nil {
		return "", fmt.Errorf("failed to create %s address: %w", kind, err)
	}
	if address.ID == "" {
		return "", &apperrors.UpstreamError{Op: "create " + kind + " address", Reason: "backend did not return an address identifier"}
	}
	return address.ID, nil
}

func (s *CheckoutService) validatePaymentDetails(req CheckoutRequest) error {
	switch req.PaymentMethod {
	case models.PaymentMethodMobileMoney:
		if req.MobileMoneyDetails == nil {
			return &apperrors.ValidationError{Field: "mobile_money_details", Message: "required for mobile money payments"}
		}
		if !mobileMoneyProviders[req.MobileMoneyDetails.Provider] {
			return &apperrors.ValidationError{Field: "mobile_money_details.provider", Message: fmt.Sprintf("unsupported provider %q", req.MobileMoneyDetails.Provider)}
		}
		if req.MobileMoneyDetails.PhoneNumber == "" {
			return &apperrors.ValidationError{Field: "mobile_money_details.phone_number", Message: "required for mobile money payments"}
		}
	case models.PaymentMethodCard, models.PaymentMethodBankTransfer:
		// No extra payload to check; card capture happens at the gateway
		// and bank transfers are reconciled against the deadline.
	default:
		return &apperrors.ValidationError{Field: "payment_method", Message: fmt.Sprintf("unsupported payment method %q", req.PaymentMethod)}
	}
	return nil
}

// publishEvent publishes best-effort: a broker outage must never fail a
// checkout that has already been persisted.
func (s *CheckoutService) publishEvent(event rabbitmq.OrderEvent) {
	if s.mqClient == nil {
		log.Println("RabbitMQ client is not initialized. Skipping message publication.")
		return
	}
	if err := s.mqClient.PublishOrderEvent(event); err != nil {
		log.Printf("Warning: Failed to publish %s event for order %s: %v", event.Event, event.OrderID, err)
	}
}
