package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"watchstore/internal/apperr"
	"watchstore/internal/models"

	"github.com/google/uuid"
)

// MemoryNewsletterRepository is an in-memory implementation of NewsletterRepository.
// Subscriptions are keyed by email.
type MemoryNewsletterRepository struct {
	subs map[string]models.NewsletterSubscription
	mu   sync.RWMutex
}

// NewMemoryNewsletterRepository creates a new instance of MemoryNewsletterRepository.
func NewMemoryNewsletterRepository() *MemoryNewsletterRepository {
	return &MemoryNewsletterRepository{
		subs: make(map[string]models.NewsletterSubscription),
	}
}

// GetByEmail returns the subscription for email.
func (r *MemoryNewsletterRepository) GetByEmail(email string) (*models.NewsletterSubscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.subs[email]
	if !ok {
		return nil, fmt.Errorf("subscription for %s %w", email, apperr.ErrNotFound)
	}
	return &sub, nil
}

// Create adds a subscription. Emails are unique.
func (r *MemoryNewsletterRepository) Create(sub *models.NewsletterSubscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.subs[sub.Email]; exists {
		return fmt.Errorf("email %s already subscribed: %w", sub.Email, apperr.ErrConflict)
	}
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	sub.UpdatedAt = time.Now()
	r.subs[sub.Email] = *sub
	return nil
}

// Update replaces an existing subscription.
func (r *MemoryNewsletterRepository) Update(sub *models.NewsletterSubscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[sub.Email]; !ok {
		return fmt.Errorf("subscription for %s %w", sub.Email, apperr.ErrNotFound)
	}
	sub.UpdatedAt = time.Now()
	r.subs[sub.Email] = *sub
	return nil
}

// GetActive returns active subscriptions, newest first.
func (r *MemoryNewsletterRepository) GetActive() ([]models.NewsletterSubscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	active := make([]models.NewsletterSubscription, 0, len(r.subs))
	for _, sub := range r.subs {
		if sub.IsActive {
			active = append(active, sub)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].SubscribedAt.After(active[j].SubscribedAt)
	})
	return active, nil
}
