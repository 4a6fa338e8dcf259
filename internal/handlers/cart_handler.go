package handlers

import (
	"watchstore/internal/middleware"
	"watchstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the authenticated user's cart.
type CartHandler struct {
	cartService *services.CartService
	validate    *validator.Validate
}

type addToCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  *int   `json:"quantity" validate:"omitempty,min=1,max=10000"`
}

type updateCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  *int   `json:"quantity" validate:"required,max=10000"`
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		validate:    newValidator(),
	}
}

// RegisterRoutes registers the cart routes behind auth.
func (h *CartHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	cartRoutes := router.Group("/cart", auth)
	cartRoutes.Get("/", h.HandleGet)
	cartRoutes.Post("/add", h.HandleAdd)
	cartRoutes.Put("/update", h.HandleUpdate)
	cartRoutes.Delete("/remove/:productId", h.HandleRemove)
	cartRoutes.Delete("/", h.HandleClear)
}

// HandleGet returns the user's cart.
func (h *CartHandler) HandleGet(c *fiber.Ctx) error {
	cart, err := h.cartService.GetCart(middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "Failed to retrieve cart")
	}
	return c.JSON(cart)
}

// HandleAdd adds a product to the cart. Quantity defaults to 1.
func (h *CartHandler) HandleAdd(c *fiber.Ctx) error {
	var req addToCartRequest
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cart, err := h.cartService.AddItem(middleware.UserID(c), req.ProductID, quantity)
	if err != nil {
		return respondError(c, err, "Failed to add item to cart")
	}
	return c.JSON(cart)
}

// HandleUpdate sets a line's quantity; zero or less removes the line.
func (h *CartHandler) HandleUpdate(c *fiber.Ctx) error {
	var req updateCartRequest
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}

	cart, err := h.cartService.UpdateItem(middleware.UserID(c), req.ProductID, *req.Quantity)
	if err != nil {
		return respondError(c, err, "Failed to update cart")
	}
	return c.JSON(cart)
}

// HandleRemove drops a product from the cart.
func (h *CartHandler) HandleRemove(c *fiber.Ctx) error {
	cart, err := h.cartService.RemoveItem(middleware.UserID(c), c.Params("productId"))
	if err != nil {
		return respondError(c, err, "Failed to remove item from cart")
	}
	return c.JSON(cart)
}

// HandleClear empties the cart.
func (h *CartHandler) HandleClear(c *fiber.Ctx) error {
	cart, err := h.cartService.ClearCart(middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "Failed to clear cart")
	}
	return c.JSON(fiber.Map{
		"message": "Cart cleared successfully",
		"cart":    cart,
	})
}
