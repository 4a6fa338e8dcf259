package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// orderTransitions lists the statuses reachable from each status.
// Delivered and cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  nil,
	OrderStatusCancelled:  nil,
}

// IsValid reports whether s is a known status.
func (s OrderStatus) IsValid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether an order in status s may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentMethod is how the customer pays for an order.
type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "cod"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodPayPal PaymentMethod = "paypal"
)

// IsValid reports whether m is a supported payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodCard, PaymentMethodPayPal:
		return true
	}
	return false
}

// ShippingAddress is where an order is delivered.
type ShippingAddress struct {
	Street  string `json:"street" validate:"required,max=200"`
	City    string `json:"city" validate:"required,max=100"`
	State   string `json:"state" validate:"required,max=100"`
	ZipCode string `json:"zipCode" validate:"required,max=20"`
	Country string `json:"country" validate:"required,max=100"`
}

// OrderItem is a product line frozen at checkout time.
type OrderItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"` // Price at the time of order
	Quantity  int             `json:"quantity"`
}

// Order represents a checkout of a cart. Only Status changes after creation.
type Order struct {
	ID              string                              `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string                              `json:"userId" gorm:"type:varchar(36);index;not null"`
	Items           datatypes.JSONSlice[OrderItem]      `json:"items"`
	ShippingAddress datatypes.JSONType[ShippingAddress] `json:"shippingAddress"`
	PaymentMethod   PaymentMethod                       `json:"paymentMethod" gorm:"type:varchar(20);not null"`
	TotalAmount     decimal.Decimal                     `json:"totalAmount" gorm:"type:decimal(12,2);not null"`
	Status          OrderStatus                         `json:"status" gorm:"type:varchar(20);index;not null"`
	CreatedAt       time.Time                           `json:"createdAt"`
	UpdatedAt       time.Time                           `json:"updatedAt"`
}
