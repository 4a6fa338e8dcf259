package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"watchstore/internal/apperr"
	"watchstore/internal/models"
	"watchstore/internal/repositories"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// EventPublisher sends order events to the message bus.
type EventPublisher interface {
	Publish(eventType string, body []byte) error
}

// OrderService handles business logic for orders.
type OrderService struct {
	orderRepo repositories.OrderRepository
	userRepo  repositories.UserRepository
	carts     *CartService
	publisher EventPublisher
}

// NewOrderService creates a new OrderService. publisher may be nil, in which
// case no events are sent.
func NewOrderService(orderRepo repositories.OrderRepository, userRepo repositories.UserRepository, carts *CartService, publisher EventPublisher) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		carts:     carts,
		publisher: publisher,
	}
}

// CreateOrder turns the user's cart into a pending order and empties the cart.
// Each line keeps the catalog price current at checkout.
func (s *OrderService) CreateOrder(userID string, address models.ShippingAddress, method models.PaymentMethod) (*models.Order, error) {
	if method == "" {
		method = models.PaymentMethodCOD
	}
	if !method.IsValid() {
		return nil, fmt.Errorf("unknown payment method '%s': %w", method, apperr.ErrValidation)
	}

	var order *models.Order
	err := s.carts.checkout(userID, func(cart *models.Cart) error {
		items := make([]models.OrderItem, 0, len(cart.Items))
		total := decimal.Zero
		for _, line := range cart.Items {
			if line.Product == nil {
				continue
			}
			items = append(items, models.OrderItem{
				ProductID: line.ProductID,
				Name:      line.Product.Name,
				Image:     line.Product.Image,
				Price:     line.Product.Price,
				Quantity:  line.Quantity,
			})
			total = total.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
		if len(items) == 0 {
			return fmt.Errorf("cart has no available products: %w", apperr.ErrValidation)
		}

		order = &models.Order{
			UserID:          userID,
			Items:           datatypes.JSONSlice[models.OrderItem](items),
			ShippingAddress: datatypes.NewJSONType(address),
			PaymentMethod:   method,
			TotalAmount:     total,
			Status:          models.OrderStatusPending,
		}
		return s.orderRepo.Create(order)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Order %s created for user %s, total %s", order.ID, userID, order.TotalAmount.StringFixed(2))
	s.publish(models.EventOrderCreated, order)
	return order, nil
}

// GetUserOrders returns the user's orders, newest first.
func (s *OrderService) GetUserOrders(userID string) ([]models.Order, error) {
	return s.orderRepo.GetByUserID(userID)
}

// GetOrderByID returns an order to its owner or to an admin.
func (s *OrderService) GetOrderByID(orderID, requesterID string, isAdmin bool) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != requesterID {
		return nil, fmt.Errorf("order %s belongs to another user: %w", orderID, apperr.ErrForbidden)
	}
	return order, nil
}

// GetAllOrders returns every order, newest first.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// UpdateOrderStatus moves an order along its lifecycle.
func (s *OrderService) UpdateOrderStatus(orderID string, status models.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("unknown order status '%s': %w", status, apperr.ErrValidation)
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("cannot move order from %s to %s: %w", order.Status, status, apperr.ErrValidation)
	}
	if err := s.orderRepo.UpdateStatus(orderID, order.Status, status); err != nil {
		return nil, err
	}
	order.Status = status
	order.UpdatedAt = time.Now()

	log.Printf("Order %s moved to %s", orderID, status)
	s.publish(models.EventOrderStatusUpdated, order)
	return order, nil
}

// publish is best-effort; failures are logged and never reach the caller.
func (s *OrderService) publish(eventType string, order *models.Order) {
	if s.publisher == nil {
		return
	}
	event := models.OrderEvent{
		Event:      eventType,
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     order.Status,
		Total:      order.TotalAmount,
		ItemCount:  len(order.Items),
		OccurredAt: time.Now().UTC(),
	}
	if user, err := s.userRepo.GetByID(order.UserID); err == nil && user != nil {
		event.Email = user.Email
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal %s event for order %s: %v", eventType, order.ID, err)
		return
	}
	if err := s.publisher.Publish(eventType, body); err != nil {
		log.Printf("Failed to publish %s event for order %s: %v", eventType, order.ID, err)
		return
	}
	log.Printf("Published %s event for order %s", eventType, order.ID)
}
