package models

import "gorm.io/gorm"

// Address kinds.
const (
	AddressKindShipping = "shipping"
	AddressKindBilling  = "billing"
)

// Customer is a storefront customer, unique by email. Checkout resolves
// customers by email and creates one only on a miss.
type Customer struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Email      string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	FirstName  string `json:"first_name" validate:"required,min=1,max=100"`
	LastName   string `json:"last_name" validate:"required,min=1,max=100"`
	Phone      string `json:"phone" gorm:"type:varchar(32)" validate:"omitempty,max=32"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// Address is a shipping or billing address belonging to a customer.
type Address struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CustomerID string `json:"customer_id" gorm:"index;type:varchar(36)"`
	Kind       string `json:"kind" gorm:"type:varchar(20)"`
	Line1      string `json:"line1" validate:"required,min=1,max=255"`
	Line2      string `json:"line2" validate:"omitempty,max=255"`
	City       string `json:"city" validate:"required,min=1,max=100"`
	Province   string `json:"province" validate:"omitempty,max=100"`
	PostalCode string `json:"postal_code" validate:"omitempty,max=20"`
	Country    string `json:"country" validate:"required,min=2,max=100"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
