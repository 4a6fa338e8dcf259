package repositories

import "watchstore/internal/models"

// NewsletterRepository defines the interface for newsletter subscription data access.
type NewsletterRepository interface {
	GetByEmail(email string) (*models.NewsletterSubscription, error)
	Create(sub *models.NewsletterSubscription) error
	Update(sub *models.NewsletterSubscription) error
	// GetActive returns active subscriptions, newest first.
	GetActive() ([]models.NewsletterSubscription, error)
}
