package services

import (
	"fmt"
	"strconv"

	"duka/internal/models"
	"duka/internal/repositories"
	"duka/pkg/secrets"
)

// Default payment deadline for deferred-settlement orders when no setting
// overrides it.
const DefaultPaymentDeadlineHours = 24

// SettingsService handles business logic for grouped configuration values,
// transparently encrypting sensitive values at rest.
type SettingsService struct {
	repo   repositories.SettingRepository
	cipher *secrets.Cipher
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(repo repositories.SettingRepository, cipher *secrets.Cipher) *SettingsService {
	return &SettingsService{
		repo:   repo,
		cipher: cipher,
	}
}

// UpsertSettingInput is the caller-facing payload for creating or
// overwriting a setting.
type UpsertSettingInput struct {
	Category    string `json:"category" validate:"required,min=1,max=100"`
	Key         string `json:"key" validate:"required,min=1,max=100"`
	Value       string `json:"value" validate:"required"`
	Label       string `json:"label" validate:"omitempty,max=255"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	Type        string `json:"type" validate:"omitempty,oneof=string number boolean json encrypted"`
	IsSensitive bool   `json:"is_sensitive"`
}

// GetSetting retrieves a single setting. When the setting is sensitive and
// decrypt is true, the stored ciphertext is decrypted before returning.
func (s *SettingsService) GetSetting(category, key string, decrypt bool) (*models.Setting, error) {
	setting, err := s.repo.Get(category, key)
	if err != nil {
		return nil, err
	}
	if err := s.maybeDecrypt(setting, decrypt); err != nil {
		return nil, err
	}
	return setting, nil
}

// GetSettingsByCategory retrieves all active settings in a category.
func (s *SettingsService) GetSettingsByCategory(category string, decrypt bool) ([]models.Setting, error) {
	settings, err := s.repo.GetByCategory(category)
	if err != nil {
		return nil, err
	}
	for i := range settings {
		if err := s.maybeDecrypt(&settings[i], decrypt); err != nil {
			return nil, err
		}
	}
	return settings, nil
}

// GetAllSettings retrieves all active settings grouped by category.
func (s *SettingsService) GetAllSettings(decrypt bool) (map[string][]models.Setting, error) {
	settings, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]models.Setting)
	for i := range settings {
		if err := s.maybeDecrypt(&settings[i], decrypt); err != nil {
			return nil, err
		}
		grouped[settings[i].Category] = append(grouped[settings[i].Category], settings[i])
	}
	return grouped, nil
}

// UpsertSetting creates or overwrites the setting for (category, key).
// Sensitive values are encrypted before persistence and the stored row
// records that the value is ciphertext.
func (s *SettingsService) UpsertSetting(input UpsertSettingInput) (*models.Setting, error) {
	setting := &models.Setting{
		Category:    input.Category,
		Key:         input.Key,
		Value:       input.Value,
		Type:        input.Type,
		Label:       input.Label,
		Description: input.Description,
		IsActive:    true,
		IsSensitive: input.IsSensitive,
	}
	if setting.Type == "" {
		setting.Type = models.SettingTypeString
	}

	if setting.IsSensitive {
		encrypted, err := s.cipher.Encrypt(setting.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt setting %s/%s: %w", setting.Category, setting.Key, err)
		}
		setting.Value = encrypted
		setting.IsEncrypted = true
	}

	if err := s.repo.Upsert(setting); err != nil {
		return nil, err
	}
	return setting, nil
}

// InitializeDefaults idempotently seeds baseline settings. Existing rows are
// left untouched.
func (s *SettingsService) InitializeDefaults() error {
	defaults := []UpsertSettingInput{
		{Category: "store", Key: "name", Value: "Duka", Label: "Store name", Type: models.SettingTypeString},
		{Category: "store", Key: "currency", Value: "ZMW", Label: "Currency code", Type: models.SettingTypeString},
		{Category: "store", Key: "support_email", Value: "support@duka.example", Label: "Support email", Type: models.SettingTypeString},
		{Category: "checkout", Key: "payment_deadline_hours", Value: strconv.Itoa(DefaultPaymentDeadlineHours), Label: "Bank transfer payment deadline (hours)", Type: models.SettingTypeNumber},
		{Category: "checkout", Key: "allow_guest_checkout", Value: "true", Label: "Allow guest checkout", Type: models.SettingTypeBoolean},
		{Category: "payment", Key: "mobile_money_providers", Value: `["mtn","airtel","zamtel","orange"]`, Label: "Enabled mobile money providers", Type: models.SettingTypeJSON},
		{Category: "notifications", Key: "order_confirmation_enabled", Value: "true", Label: "Send order confirmation", Type: models.SettingTypeBoolean},
	}

	for _, input := range defaults {
		if _, err := s.repo.Get(input.Category, input.Key); err == nil {
			continue // already seeded
		}
		if _, err := s.UpsertSetting(input); err != nil {
			return fmt.Errorf("failed to seed default setting %s/%s: %w", input.Category, input.Key, err)
		}
	}
	return nil
}

// PaymentDeadlineHours returns the configured bank-transfer payment deadline
// in hours, falling back to the default on a missing or malformed setting.
func (s *SettingsService) PaymentDeadlineHours() int {
	setting, err := s.GetSetting("checkout", "payment_deadline_hours", true)
	if err != nil {
		return DefaultPaymentDeadlineHours
	}
	hours, err := strconv.Atoi(setting.Value)
	if err != nil || hours <= 0 {
		return DefaultPaymentDeadlineHours
	}
	return hours
}

// maybeDecrypt replaces ciphertext with plaintext in place when the stored
// row says the value is encrypted and the caller asked for decryption. The
// decision comes from the stored flag, never from the shape of the value.
func (s *SettingsService) maybeDecrypt(setting *models.Setting, decrypt bool) error {
	if !decrypt || !setting.IsEncrypted {
		return nil
	}
	plain, err := s.cipher.Decrypt(setting.Value)
	if err != nil {
		return fmt.Errorf("failed to decrypt setting %s/%s: %w", setting.Category, setting.Key, err)
	}
	setting.Value = plain
	setting.IsEncrypted = false
	return nil
}
