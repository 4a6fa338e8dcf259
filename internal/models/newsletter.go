package models

import "time"

// NewsletterSubscription records an email on the mailing list. Unsubscribing
// only clears IsActive so the history is kept.
type NewsletterSubscription struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	IsActive     bool      `json:"isActive" gorm:"not null"`
	SubscribedAt time.Time `json:"subscribedAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
