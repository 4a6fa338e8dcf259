package repositories

import (
	"fmt"
	"sync"
	"time"

	"watchstore/internal/apperr"
	"watchstore/internal/models"

	"github.com/google/uuid"
)

// MemoryCartRepository is an in-memory implementation of CartRepository.
// Carts are keyed by owner.
type MemoryCartRepository struct {
	carts  map[string]models.Cart
	nextID uint
	mu     sync.RWMutex
}

// NewMemoryCartRepository creates a new instance of MemoryCartRepository.
func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{
		carts: make(map[string]models.Cart),
	}
}

// GetByUserID returns a copy of the user's cart.
func (r *MemoryCartRepository) GetByUserID(userID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[userID]
	if !ok {
		return nil, fmt.Errorf("cart for user %s %w", userID, apperr.ErrNotFound)
	}
	cart.Items = copyItems(cart.Items)
	return &cart, nil
}

// Save stores a copy of the cart, replacing any previous version.
func (r *MemoryCartRepository) Save(cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.carts[cart.UserID]
	if exists && cart.ID != "" && existing.ID != cart.ID {
		return fmt.Errorf("user %s already owns cart %s: %w", cart.UserID, existing.ID, apperr.ErrConflict)
	}
	if cart.ID == "" {
		if exists {
			cart.ID = existing.ID
		} else {
			cart.ID = uuid.New().String()
		}
	}
	now := time.Now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now
	for i := range cart.Items {
		r.nextID++
		cart.Items[i].ID = r.nextID
		cart.Items[i].CartID = cart.ID
	}

	stored := *cart
	stored.Items = copyItems(cart.Items)
	r.carts[cart.UserID] = stored
	return nil
}

// copyItems detaches lines from the caller and drops resolved products.
func copyItems(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, len(items))
	for i, item := range items {
		item.Product = nil
		out[i] = item
	}
	return out
}
