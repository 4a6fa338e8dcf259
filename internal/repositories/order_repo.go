package repositories

import (
	"watchstore/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByUserID(userID string) ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	Create(order *models.Order) error
	// UpdateStatus moves an order from status from to status to. It fails
	// with apperr.ErrConflict when the order is no longer in status from.
	UpdateStatus(id string, from, to models.OrderStatus) error
}
