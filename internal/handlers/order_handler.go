package handlers

import (
	"log"

	"watchstore/internal/middleware"
	"watchstore/internal/models"
	"watchstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	orderService *services.OrderService
	validate     *validator.Validate
}

type createOrderRequest struct {
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod" validate:"omitempty,oneof=cod card paypal"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		validate:     newValidator(),
	}
}

// RegisterRoutes registers the order routes. Listing every order and
// changing status need the admin handler.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth, admin fiber.Handler) {
	orderRoutes := router.Group("/orders", auth)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/my-orders", h.HandleGetMyOrders)
	orderRoutes.Get("/", admin, h.HandleGetAllOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Put("/:id/status", admin, h.HandleUpdateStatus)
}

// HandleCreateOrder checks out the user's cart.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}

	order, err := h.orderService.CreateOrder(middleware.UserID(c), req.ShippingAddress, models.PaymentMethod(req.PaymentMethod))
	if err != nil {
		log.Printf("Error creating order for user %s: %v", middleware.UserID(c), err)
		return respondError(c, err, "Failed to create order")
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetMyOrders lists the user's orders, newest first.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	orders, err := h.orderService.GetUserOrders(middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "Failed to retrieve orders")
	}
	return c.JSON(orders)
}

// HandleGetOrderByID returns an order to its owner or an admin.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.orderService.GetOrderByID(c.Params("id"), middleware.UserID(c), middleware.IsAdmin(c))
	if err != nil {
		return respondError(c, err, "Failed to retrieve order")
	}
	return c.JSON(order)
}

// HandleGetAllOrders lists every order.
func (h *OrderHandler) HandleGetAllOrders(c *fiber.Ctx) error {
	orders, err := h.orderService.GetAllOrders()
	if err != nil {
		return respondError(c, err, "Failed to retrieve orders")
	}
	return c.JSON(orders)
}

// HandleUpdateStatus moves an order along its lifecycle.
func (h *OrderHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var req updateStatusRequest
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}

	order, err := h.orderService.UpdateOrderStatus(c.Params("id"), models.OrderStatus(req.Status))
	if err != nil {
		return respondError(c, err, "Failed to update order status")
	}
	return c.JSON(order)
}
