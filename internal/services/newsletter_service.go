package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"watchstore/internal/apperr"
	"watchstore/internal/models"
	"watchstore/internal/repositories"
)

// Notifier delivers the newsletter welcome message.
type Notifier interface {
	SendWelcome(ctx context.Context, email string) error
}

// SubscribeResult describes the outcome of a subscription request.
type SubscribeResult struct {
	Subscription *models.NewsletterSubscription
	Reactivated  bool
	WelcomeSent  bool
}

// NewsletterService handles newsletter subscriptions.
type NewsletterService struct {
	repo     repositories.NewsletterRepository
	notifier Notifier
}

// NewNewsletterService creates a new NewsletterService. notifier may be nil.
func NewNewsletterService(repo repositories.NewsletterRepository, notifier Notifier) *NewsletterService {
	return &NewsletterService{
		repo:     repo,
		notifier: notifier,
	}
}

// Subscribe registers email, reactivating a previous subscription if one
// exists. New subscribers are sent a welcome message.
func (s *NewsletterService) Subscribe(ctx context.Context, email string) (*SubscribeResult, error) {
	email = NormalizeEmail(email)
	existing, err := s.repo.GetByEmail(email)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		if existing.IsActive {
			return nil, fmt.Errorf("email '%s' is already subscribed: %w", email, apperr.ErrConflict)
		}
		existing.IsActive = true
		existing.SubscribedAt = time.Now()
		if err := s.repo.Update(existing); err != nil {
			return nil, err
		}
		return &SubscribeResult{Subscription: existing, Reactivated: true}, nil
	}

	sub := &models.NewsletterSubscription{
		Email:        email,
		IsActive:     true,
		SubscribedAt: time.Now(),
	}
	if err := s.repo.Create(sub); err != nil {
		return nil, err
	}

	result := &SubscribeResult{Subscription: sub}
	if s.notifier != nil {
		if err := s.notifier.SendWelcome(ctx, email); err != nil {
			log.Printf("Welcome email to %s not sent: %v", email, err)
		} else {
			result.WelcomeSent = true
		}
	}
	return result, nil
}

// Unsubscribe deactivates the subscription for email. The record is kept.
func (s *NewsletterService) Unsubscribe(email string) error {
	sub, err := s.repo.GetByEmail(NormalizeEmail(email))
	if err != nil {
		return err
	}
	sub.IsActive = false
	return s.repo.Update(sub)
}

// GetSubscribers returns active subscriptions, newest first.
func (s *NewsletterService) GetSubscribers() ([]models.NewsletterSubscription, error) {
	return s.repo.GetActive()
}
