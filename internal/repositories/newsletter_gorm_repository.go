package repositories

import (
	"errors"
	"fmt"

	"watchstore/internal/apperr"
	"watchstore/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMNewsletterRepository is a GORM implementation of NewsletterRepository.
type GORMNewsletterRepository struct {
	db *gorm.DB
}

// NewGORMNewsletterRepository creates a new instance of GORMNewsletterRepository.
func NewGORMNewsletterRepository(db *gorm.DB) *GORMNewsletterRepository {
	return &GORMNewsletterRepository{
		db: db,
	}
}

// GetByEmail retrieves the subscription record for email, active or not.
func (r *GORMNewsletterRepository) GetByEmail(email string) (*models.NewsletterSubscription, error) {
	var sub models.NewsletterSubscription
	if err := r.db.First(&sub, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("subscription for %s %w", email, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get subscription for %s: %w", email, err)
	}
	return &sub, nil
}

// Create stores a new subscription.
func (r *GORMNewsletterRepository) Create(sub *models.NewsletterSubscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if err := r.db.Create(sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("email %s already subscribed: %w", sub.Email, apperr.ErrConflict)
		}
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// Update writes the subscription back, including a cleared active flag.
func (r *GORMNewsletterRepository) Update(sub *models.NewsletterSubscription) error {
	res := r.db.Model(sub).Select("is_active", "subscribed_at").Updates(sub)
	if res.Error != nil {
		return fmt.Errorf("failed to update subscription for %s: %w", sub.Email, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("subscription for %s %w", sub.Email, apperr.ErrNotFound)
	}
	return nil
}

// GetActive retrieves active subscriptions, newest first.
func (r *GORMNewsletterRepository) GetActive() ([]models.NewsletterSubscription, error) {
	var subs []models.NewsletterSubscription
	if err := r.db.Where("is_active = ?", true).Order("subscribed_at DESC").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to get active subscriptions: %w", err)
	}
	return subs, nil
}
