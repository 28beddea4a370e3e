package repositories

import (
	"duka/internal/models"
)

// SettingRepository defines the interface for settings data access.
type SettingRepository interface {
	GetAll() ([]models.Setting, error)
	GetByCategory(category string) ([]models.Setting, error)
	Get(category, key string) (*models.Setting, error)
	Upsert(setting *models.Setting) error
}
