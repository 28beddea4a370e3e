package handlers

import (
	"log"

	"duka/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles the admin order management surface.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/:id/pay", h.HandleMarkPaid)
	orderRoutes.Post("/:id/cancel", h.HandleCancelOrder)
}

// HandleGetOrders retrieves all orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetAllOrders()
	if err != nil {
		log.Printf("Error getting all orders: %v", err)
		return respondError(c, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.GetOrderByID(orderID)
	if err != nil {
		log.Printf("Error getting order by ID %s: %v", orderID, err)
		return respondError(c, "Could not retrieve order", err)
	}
	return c.JSON(order)
}

// HandleMarkPaid transitions an order and its payment to their settled
// states.
func (h *OrderHandler) HandleMarkPaid(c *fiber.Ctx) error {
	orderID := c.Params("id")
	if err := h.service.MarkPaid(orderID); err != nil {
		log.Printf("Error marking order %s paid: %v", orderID, err)
		return respondError(c, "Could not mark order paid", err)
	}
	return c.JSON(fiber.Map{
		"message": "Order " + orderID + " marked paid",
	})
}

// CancelOrderRequest carries the optional cancellation reason.
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// HandleCancelOrder cancels an order and its payment record.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var req CancelOrderRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		log.Printf("Error parsing cancel request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.Reason == "" {
		req.Reason = "cancelled by admin"
	}

	if err := h.service.CancelOrder(orderID, req.Reason); err != nil {
		log.Printf("Error cancelling order %s: %v", orderID, err)
		return respondError(c, "Could not cancel order", err)
	}
	return c.JSON(fiber.Map{
		"message": "Order " + orderID + " cancelled",
	})
}
