package handlers

import (
	"log"

	"duka/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// SettingsHandler handles the admin settings HTTP surface. All routes are
// registered behind the auth middleware.
type SettingsHandler struct {
	service  *services.SettingsService
	validate *validator.Validate
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(service *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the settings routes with the Fiber app.
func (h *SettingsHandler) RegisterRoutes(router fiber.Router) {
	settingsRoutes := router.Group("/settings")
	settingsRoutes.Get("/", h.HandleGetAllSettings)
	settingsRoutes.Post("/initialize", h.HandleInitialize)
	settingsRoutes.Get("/:category", h.HandleGetSettingsByCategory)
	settingsRoutes.Get("/:category/:key", h.HandleGetSetting)
	settingsRoutes.Put("/:category/:key", h.HandleUpsertSetting)
}

// HandleGetAllSettings returns all active settings grouped by category.
func (h *SettingsHandler) HandleGetAllSettings(c *fiber.Ctx) error {
	settings, err := h.service.GetAllSettings(true)
	if err != nil {
		log.Printf("Error getting all settings: %v", err)
		return respondError(c, "Could not retrieve settings", err)
	}
	return c.JSON(settings)
}

// HandleGetSettingsByCategory returns all active settings in a category.
func (h *SettingsHandler) HandleGetSettingsByCategory(c *fiber.Ctx) error {
	category := c.Params("category")
	settings, err := h.service.GetSettingsByCategory(category, true)
	if err != nil {
		log.Printf("Error getting settings for category %s: %v", category, err)
		return respondError(c, "Could not retrieve settings", err)
	}
	return c.JSON(settings)
}

// HandleGetSetting returns a single setting by category and key.
func (h *SettingsHandler) HandleGetSetting(c *fiber.Ctx) error {
	category := c.Params("category")
	key := c.Params("key")
	setting, err := h.service.GetSetting(category, key, true)
	if err != nil {
		log.Printf("Error getting setting %s/%s: %v", category, key, err)
		return respondError(c, "Could not retrieve setting", err)
	}
	return c.JSON(setting)
}

// UpsertSettingRequest is the request body for updating a setting; category
// and key come from the path.
type UpsertSettingRequest struct {
	Value       string `json:"value" validate:"required"`
	Label       string `json:"label" validate:"omitempty,max=255"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	Type        string `json:"type" validate:"omitempty,oneof=string number boolean json encrypted"`
	IsSensitive bool   `json:"is_sensitive"`
}

// HandleUpsertSetting creates or overwrites a setting.
func (h *SettingsHandler) HandleUpsertSetting(c *fiber.Ctx) error {
	var req UpsertSettingRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing setting request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	setting, err := h.service.UpsertSetting(services.UpsertSettingInput{
		Category:    c.Params("category"),
		Key:         c.Params("key"),
		Value:       req.Value,
		Label:       req.Label,
		Description: req.Description,
		Type:        req.Type,
		IsSensitive: req.IsSensitive,
	})
	if err != nil {
		log.Printf("Error upserting setting %s/%s: %v", c.Params("category"), c.Params("key"), err)
		return respondError(c, "Could not save setting", err)
	}

	// Never echo ciphertext or the plaintext of a sensitive value
	if setting.IsSensitive {
		setting.Value = ""
	}
	return c.JSON(setting)
}

// HandleInitialize idempotently seeds the baseline settings.
func (h *SettingsHandler) HandleInitialize(c *fiber.Ctx) error {
	if err := h.service.InitializeDefaults(); err != nil {
		log.Printf("Error initializing default settings: %v", err)
		return respondError(c, "Could not initialize settings", err)
	}
	return c.JSON(fiber.Map{
		"message": "Default settings initialized",
	})
}
