package models

import "gorm.io/gorm"

// Setting value types.
const (
	SettingTypeString    = "string"
	SettingTypeNumber    = "number"
	SettingTypeBoolean   = "boolean"
	SettingTypeJSON      = "json"
	SettingTypeEncrypted = "encrypted"
)

// Setting is a single configuration value, unique per (category, key).
// Sensitive values are encrypted at rest; IsEncrypted records whether the
// stored Value is ciphertext, so reads never have to guess from its shape.
type Setting struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Category    string `json:"category" gorm:"uniqueIndex:idx_settings_category_key;type:varchar(100)" validate:"required,min=1,max=100"`
	Key         string `json:"key" gorm:"uniqueIndex:idx_settings_category_key;type:varchar(100)" validate:"required,min=1,max=100"`
	Value       string `json:"value" gorm:"type:text"`
	Type        string `json:"type" gorm:"type:varchar(20);default:string" validate:"omitempty,oneof=string number boolean json encrypted"`
	Label       string `json:"label" gorm:"type:varchar(255)"`
	Description string `json:"description" gorm:"type:text"`
	IsActive    bool   `json:"is_active" gorm:"default:true"`
	IsSensitive bool   `json:"is_sensitive"`
	IsEncrypted bool   `json:"-"`
	gorm.Model         // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
