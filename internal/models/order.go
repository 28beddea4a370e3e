package models

import (
	"time"

	"gorm.io/gorm"
)

// Order statuses.
const (
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusPaid           = "paid"
	OrderStatusCancelled      = "cancelled"
)

// Payment methods.
const (
	PaymentMethodCard         = "card"
	PaymentMethodMobileMoney  = "mobile-money"
	PaymentMethodBankTransfer = "bank-transfer"
)

// Payment statuses, updatable independently of order status.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusCancelled = "cancelled"
	PaymentStatusFailed    = "failed"
)

// OrderItem is a single line within an order, copied from the cart's
// frozen product snapshot at checkout time.
type OrderItem struct {
	ID        string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string  `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductID string  `json:"product_id" gorm:"type:varchar(36)"`
	Name      string  `json:"name"`
	SKU       string  `json:"sku" gorm:"type:varchar(64)"`
	UnitPrice float64 `json:"unit_price"` // Price at the time of order
	TaxRate   float64 `json:"tax_rate"`
	IsDigital bool    `json:"is_digital"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"line_total"`
}

// Order is a customer order created from a cart at checkout. Orders paying
// by a deferred-settlement method carry a payment deadline; once the
// deadline passes unpaid, the sweep cancels both the order and its payment.
type Order struct {
	ID                string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CartID            string      `json:"cart_id" gorm:"index;type:varchar(36)"`
	CustomerID        string      `json:"customer_id" gorm:"index;type:varchar(36)"`
	ShippingAddressID string      `json:"shipping_address_id" gorm:"type:varchar(36)"`
	BillingAddressID  string      `json:"billing_address_id" gorm:"type:varchar(36)"`
	Items             []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	PaymentMethod     string      `json:"payment_method" gorm:"type:varchar(20)"`
	PaymentDeadline   *time.Time  `json:"payment_deadline,omitempty" gorm:"index"`
	Status            string      `json:"status" gorm:"type:varchar(20);index"`
	CancelReason      string      `json:"cancel_reason,omitempty"`
	Notes             string      `json:"notes,omitempty"`
	Subtotal          float64     `json:"subtotal"`
	TaxTotal          float64     `json:"tax_total"`
	Total             float64     `json:"total"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`
}

// Payment is the settlement record for an order.
type Payment struct {
	ID                  string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID             string    `json:"order_id" gorm:"index;type:varchar(36)"`
	Method              string    `json:"method" gorm:"type:varchar(20)"`
	Amount              float64   `json:"amount"`
	Status              string    `json:"status" gorm:"type:varchar(20);index"`
	MobileMoneyProvider string    `json:"mobile_money_provider,omitempty" gorm:"type:varchar(20)"`
	MobileMoneyPhone    string    `json:"mobile_money_phone,omitempty" gorm:"type:varchar(32)"`
	CardReference       string    `json:"card_reference,omitempty" gorm:"type:varchar(64)"`
	BankReference       string    `json:"bank_reference,omitempty" gorm:"type:varchar(64)"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
