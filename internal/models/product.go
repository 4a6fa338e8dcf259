package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product categories used by the storefront sections.
const (
	CategoryFeatured = "featured"
	CategoryProducts = "products"
	CategoryNew      = "new"
)

// Product represents a watch in the catalog.
type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string          `json:"name" gorm:"type:varchar(100);not null" validate:"required,min=2,max=100"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Image       string          `json:"image" gorm:"type:varchar(255)" validate:"omitempty,max=255"`
	Category    string          `json:"category" gorm:"type:varchar(20);index" validate:"required,oneof=featured products new"`
	Description string          `json:"description" validate:"omitempty,max=1000"`
	IsOnSale    bool            `json:"isOnSale"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`
}

// IsValidCategory reports whether category is one of the catalog sections.
func IsValidCategory(category string) bool {
	switch category {
	case CategoryFeatured, CategoryProducts, CategoryNew:
		return true
	}
	return false
}
