package handlers

import (
	"watchstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// NewsletterHandler handles HTTP requests for newsletter subscriptions.
type NewsletterHandler struct {
	newsletterService *services.NewsletterService
	validate          *validator.Validate
}

type newsletterRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// NewNewsletterHandler creates a new NewsletterHandler.
func NewNewsletterHandler(newsletterService *services.NewsletterService) *NewsletterHandler {
	return &NewsletterHandler{
		newsletterService: newsletterService,
		validate:          newValidator(),
	}
}

// RegisterRoutes registers the newsletter routes. limit may be nil.
func (h *NewsletterHandler) RegisterRoutes(router fiber.Router, auth, admin, limit fiber.Handler) {
	newsletterRoutes := router.Group("/newsletter")
	if limit != nil {
		newsletterRoutes.Post("/subscribe", limit, h.HandleSubscribe)
		newsletterRoutes.Post("/unsubscribe", limit, h.HandleUnsubscribe)
	} else {
		newsletterRoutes.Post("/subscribe", h.HandleSubscribe)
		newsletterRoutes.Post("/unsubscribe", h.HandleUnsubscribe)
	}
	newsletterRoutes.Get("/subscribers", auth, admin, h.HandleGetSubscribers)
}

// HandleSubscribe subscribes an email address.
func (h *NewsletterHandler) HandleSubscribe(c *fiber.Ctx) error {
	var req newsletterRequest
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}

	result, err := h.newsletterService.Subscribe(c.UserContext(), req.Email)
	if err != nil {
		return respondError(c, err, "Subscription failed")
	}

	if result.Reactivated {
		return c.JSON(fiber.Map{
			"message":      "Subscription reactivated successfully",
			"subscription": result.Subscription,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Successfully subscribed to newsletter",
		"subscription": result.Subscription,
		"welcomeSent":  result.WelcomeSent,
	})
}

// HandleUnsubscribe deactivates a subscription.
func (h *NewsletterHandler) HandleUnsubscribe(c *fiber.Ctx) error {
	var req newsletterRequest
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}

	if err := h.newsletterService.Unsubscribe(req.Email); err != nil {
		return respondError(c, err, "Unsubscribe failed")
	}
	return c.JSON(fiber.Map{"message": "Successfully unsubscribed from newsletter"})
}

// HandleGetSubscribers lists active subscriptions.
func (h *NewsletterHandler) HandleGetSubscribers(c *fiber.Ctx) error {
	subs, err := h.newsletterService.GetSubscribers()
	if err != nil {
		return respondError(c, err, "Failed to retrieve subscribers")
	}
	return c.JSON(subs)
}
