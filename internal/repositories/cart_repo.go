package repositories

import "watchstore/internal/models"

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	// GetByUserID returns the user's cart with its lines in insertion order.
	GetByUserID(userID string) (*models.Cart, error)
	// Save creates or updates the cart and replaces all of its lines.
	Save(cart *models.Cart) error
}
