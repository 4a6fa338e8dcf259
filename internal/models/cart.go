package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is a single line of a cart. Product is resolved from the catalog
// on every read and is never persisted with the line.
type CartItem struct {
	ID        uint     `json:"-" gorm:"primaryKey;autoIncrement"`
	CartID    string   `json:"-" gorm:"type:varchar(36);index;not null"`
	ProductID string   `json:"productId" gorm:"type:varchar(36);not null"`
	Quantity  int      `json:"quantity" gorm:"not null"`
	Product   *Product `json:"product,omitempty" gorm:"-"`
}

// Cart is the single active cart of a user.
type Cart struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string          `json:"userId" gorm:"type:varchar(36);uniqueIndex;not null"`
	Items       []CartItem      `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	TotalAmount decimal.Decimal `json:"totalAmount" gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// FindItem returns the index of the line holding productID, or -1.
func (c *Cart) FindItem(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// RemoveItem drops the line holding productID. It reports whether a line was removed.
func (c *Cart) RemoveItem(productID string) bool {
	idx := c.FindItem(productID)
	if idx < 0 {
		return false
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	return true
}
