package repositories

import (
	"fmt"
	"sort"
	"sync"

	"duka/internal/apperrors"
	"duka/internal/models"

	"github.com/google/uuid"
)

// MockSettingRepository is an in-memory implementation of SettingRepository.
type MockSettingRepository struct {
	settings map[string]models.Setting // keyed by category + "/" + key
	mu       sync.RWMutex
}

// NewMockSettingRepository creates a new instance of MockSettingRepository.
func NewMockSettingRepository() *MockSettingRepository {
	return &MockSettingRepository{
		settings: make(map[string]models.Setting),
	}
}

func settingKey(category, key string) string {
	return category + "/" + key
}

// GetAll returns all active settings.
func (r *MockSettingRepository) GetAll() ([]models.Setting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Setting, 0, len(r.settings))
	for _, s := range r.settings {
		if s.IsActive {
			list = append(list, s)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Category != list[j].Category {
			return list[i].Category < list[j].Category
		}
		return list[i].Key < list[j].Key
	})
	return list, nil
}

// GetByCategory returns all active settings in a category.
func (r *MockSettingRepository) GetByCategory(category string) ([]models.Setting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []models.Setting
	for _, s := range r.settings {
		if s.Category == category && s.IsActive {
			list = append(list, s)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Key < list[j].Key })
	return list, nil
}

// Get returns a setting by its (category, key) pair.
func (r *MockSettingRepository) Get(category, key string) (*models.Setting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.settings[settingKey(category, key)]
	if !ok {
		return nil, fmt.Errorf("setting %s/%s: %w", category, key, apperrors.ErrNotFound)
	}
	return &s, nil
}

// Upsert creates or overwrites a setting.
func (r *MockSettingRepository) Upsert(setting *models.Setting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := settingKey(setting.Category, setting.Key)
	if existing, ok := r.settings[k]; ok {
		setting.ID = existing.ID
	} else if setting.ID == "" {
		setting.ID = uuid.New().String()
	}
	r.settings[k] = *setting
	return nil
}
