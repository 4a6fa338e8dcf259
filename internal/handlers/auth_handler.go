package handlers

import (
	"log"

	"watchstore/internal/middleware"
	"watchstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    newValidator(),
	}
}

// RegisterRoutes registers the user routes. limit guards the credential
// endpoints and may be nil.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, auth, limit fiber.Handler) {
	userRoutes := router.Group("/users")
	if limit != nil {
		userRoutes.Post("/register", limit, h.HandleRegister)
		userRoutes.Post("/login", limit, h.HandleLogin)
	} else {
		userRoutes.Post("/register", h.HandleRegister)
		userRoutes.Post("/login", h.HandleLogin)
	}
	userRoutes.Get("/profile", auth, h.HandleProfile)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}

	user, token, err := h.authService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		log.Printf("Error registering user: %v", err)
		return respondError(c, err, "Registration failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
		"token":   token,
	})
}

// HandleLogin handles user login and JWT token generation.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}

	user, token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		log.Printf("Error logging in user %s: %v", req.Email, err)
		return respondError(c, err, "Login failed")
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}

// HandleProfile returns the authenticated user's account.
func (h *AuthHandler) HandleProfile(c *fiber.Ctx) error {
	user, err := h.authService.GetProfile(middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "Failed to load profile")
	}
	return c.JSON(user)
}
