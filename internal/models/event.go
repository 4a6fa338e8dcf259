package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order event types published on the message bus.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusUpdated = "order.status_updated"
)

// OrderEvent is the message body published whenever an order is created or
// changes status.
type OrderEvent struct {
	Event      string          `json:"event"`
	OrderID    string          `json:"orderId"`
	UserID     string          `json:"userId"`
	Email      string          `json:"email,omitempty"`
	Status     OrderStatus     `json:"status"`
	Total      decimal.Decimal `json:"total"`
	ItemCount  int             `json:"itemCount"`
	OccurredAt time.Time       `json:"occurredAt"`
}
