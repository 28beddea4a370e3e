package repositories

import (
	"errors"
	"fmt"

	"duka/internal/apperrors"
	"duka/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMSettingRepository is a GORM implementation of SettingRepository.
type GORMSettingRepository struct {
	db *gorm.DB
}

// NewGORMSettingRepository creates a new instance of GORMSettingRepository.
func NewGORMSettingRepository(db *gorm.DB) *GORMSettingRepository {
	return &GORMSettingRepository{
		db: db,
	}
}

// GetAll retrieves all active settings across all categories.
func (r *GORMSettingRepository) GetAll() ([]models.Setting, error) {
	var settings []models.Setting
	if err := r.db.Where("is_active = ?", true).Order("category, key").Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to get all settings: %w", err)
	}
	return settings, nil
}

// GetByCategory retrieves all active settings in a category.
func (r *GORMSettingRepository) GetByCategory(category string) ([]models.Setting, error) {
	var settings []models.Setting
	if err := r.db.Where("category = ? AND is_active = ?", category, true).Order("key").Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to get settings for category %s: %w", category, err)
	}
	return settings, nil
}

// Get retrieves a single setting by its (category, key) pair.
func (r *GORMSettingRepository) Get(category, key string) (*models.Setting, error) {
	var setting models.Setting
	if err := r.db.First(&setting, "category = ? AND key = ?", category, key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("setting %s/%s: %w", category, key, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get setting %s/%s: %w", category, key, err)
	}
	return &setting, nil
}

// Upsert creates the setting or overwrites the existing row for the same
// (category, key). Last write wins; there is no optimistic locking.
func (r *GORMSettingRepository) Upsert(setting *models.Setting) error {
	var existing models.Setting
	err := r.db.First(&existing, "category = ? AND key = ?", setting.Category, setting.Key).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up setting %s/%s: %w", setting.Category, setting.Key, err)
		}
		if setting.ID == "" {
			setting.ID = uuid.New().String()
		}
		if err := r.db.Create(setting).Error; err != nil {
			return fmt.Errorf("failed to create setting %s/%s: %w", setting.Category, setting.Key, err)
		}
		return nil
	}

	setting.ID = existing.ID
	setting.CreatedAt = existing.CreatedAt
	if err := r.db.Save(setting).Error; err != nil {
		return fmt.Errorf("failed to update setting %s/%s: %w", setting.Category, setting.Key, err)
	}
	return nil
}
