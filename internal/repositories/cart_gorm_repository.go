package repositories

import (
	"errors"
	"fmt"

	"watchstore/internal/apperr"
	"watchstore/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
// Cart lines live in their own table and are rewritten on every save.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetByUserID retrieves the cart owned by userID together with its lines.
func (r *GORMCartRepository) GetByUserID(userID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&cart, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart for user %s %w", userID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	return &cart, nil
}

// Save upserts the cart row and replaces its lines in one transaction.
func (r *GORMCartRepository) Save(cart *models.Cart) error {
	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(cart).Error; err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return nil
		}
		rows := make([]models.CartItem, len(cart.Items))
		for i, item := range cart.Items {
			rows[i] = models.CartItem{CartID: cart.ID, ProductID: item.ProductID, Quantity: item.Quantity}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
		for i := range rows {
			cart.Items[i].ID = rows[i].ID
			cart.Items[i].CartID = cart.ID
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save cart %s: %w", cart.ID, err)
	}
	return nil
}
