package models

import "gorm.io/gorm"

// Product represents a catalog product.
type Product struct {
	ID          string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string  `json:"name" validate:"required,min=3,max=100"`
	Description string  `json:"description" validate:"omitempty,max=500"`
	SKU         string  `json:"sku" gorm:"uniqueIndex;type:varchar(64)" validate:"required,min=1,max=64"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	TaxRate     float64 `json:"tax_rate" validate:"gte=0,lte=1"`
	Stock       int     `json:"stock" validate:"gte=0"`
	IsDigital   bool    `json:"is_digital"`
	gorm.Model          // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
