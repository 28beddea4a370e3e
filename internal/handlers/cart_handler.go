package handlers

import (
	"log"

	"duka/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for carts.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/carts")
	cartRoutes.Post("/", h.HandleCreateCart)
	cartRoutes.Get("/:id", h.HandleGetCart)
	cartRoutes.Post("/:id/items", h.HandleAddItem)
	cartRoutes.Patch("/:id/items/:itemId", h.HandleUpdateItemQuantity)
	cartRoutes.Delete("/:id/items/:itemId", h.HandleRemoveItem)
}

// HandleCreateCart creates a new empty cart.
func (h *CartHandler) HandleCreateCart(c *fiber.Ctx) error {
	cart, err := h.service.CreateCart()
	if err != nil {
		log.Printf("Error creating cart: %v", err)
		return respondError(c, "Could not create cart", err)
	}
	return c.Status(fiber.StatusCreated).JSON(cart)
}

// HandleGetCart retrieves a cart with its items and totals.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(c.Params("id"))
	if err != nil {
		log.Printf("Error getting cart %s: %v", c.Params("id"), err)
		return respondError(c, "Could not retrieve cart", err)
	}
	return c.JSON(cart)
}

// AddItemRequest is the request body for adding a product to a cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// HandleAddItem adds a product to the cart, freezing its price snapshot.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing add item request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	cart, err := h.service.AddItem(c.Params("id"), req.ProductID, req.Quantity)
	if err != nil {
		log.Printf("Error adding item to cart %s: %v", c.Params("id"), err)
		return respondError(c, "Could not add item to cart", err)
	}
	return c.JSON(cart)
}

// UpdateItemRequest is the request body for changing a line quantity.
type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// HandleUpdateItemQuantity changes the quantity on a cart line.
func (h *CartHandler) HandleUpdateItemQuantity(c *fiber.Ctx) error {
	var req UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update item request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	cart, err := h.service.UpdateItemQuantity(c.Params("id"), c.Params("itemId"), req.Quantity)
	if err != nil {
		log.Printf("Error updating item %s in cart %s: %v", c.Params("itemId"), c.Params("id"), err)
		return respondError(c, "Could not update cart item", err)
	}
	return c.JSON(cart)
}

// HandleRemoveItem removes a line from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	cart, err := h.service.RemoveItem(c.Params("id"), c.Params("itemId"))
	if err != nil {
		log.Printf("Error removing item %s from cart %s: %v", c.Params("itemId"), c.Params("id"), err)
		return respondError(c, "Could not remove cart item", err)
	}
	return c.JSON(cart)
}
