package models

import "gorm.io/gorm"

// Cart statuses.
const (
	CartStatusOpen       = "open"
	CartStatusCheckedOut = "checked_out"
)

// CartItem is a single line in a cart. Product data is snapshotted at
// add-to-cart time so later catalog changes never alter an open cart.
type CartItem struct {
	ID         string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CartID     string  `json:"cart_id" gorm:"index;type:varchar(36)"`
	ProductID  string  `json:"product_id" gorm:"type:varchar(36)"`
	Name       string  `json:"name"`
	SKU        string  `json:"sku" gorm:"type:varchar(64)"`
	UnitPrice  float64 `json:"unit_price"` // Price at the time the item was added
	TaxRate    float64 `json:"tax_rate"`
	IsDigital  bool    `json:"is_digital"`
	Quantity   int     `json:"quantity"`
	LineTotal  float64 `json:"line_total"`
	gorm.Model         // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// Cart is an ephemeral aggregate of cart items. Totals are derived and
// recomputed on every mutation.
type Cart struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Status     string     `json:"status" gorm:"type:varchar(20);default:open"`
	Items      []CartItem `json:"items" gorm:"foreignKey:CartID"`
	Subtotal   float64    `json:"subtotal"`
	TaxTotal   float64    `json:"tax_total"`
	Total      float64    `json:"total"`
	gorm.Model            // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// Recalculate recomputes the derived line and cart totals in place.
func (c *Cart) Recalculate() {
	c.Subtotal, c.TaxTotal, c.Total = 0, 0, 0
	for i := range c.Items {
		item := &c.Items[i]
		item.LineTotal = item.UnitPrice * float64(item.Quantity)
		c.Subtotal += item.LineTotal
		c.TaxTotal += item.LineTotal * item.TaxRate
	}
	c.Total = c.Subtotal + c.TaxTotal
}
