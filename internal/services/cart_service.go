package services

import (
	"errors"
	"fmt"
	"log"

	"watchstore/internal/apperr"
	"watchstore/internal/models"
	"watchstore/internal/repositories"

	"github.com/shopspring/decimal"
)

// CartService handles business logic for shopping carts.
// Mutations of one user's cart are serialized.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
	locks       *keyedMutex
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		locks:       newKeyedMutex(),
	}
}

// MaxItemQuantity caps the quantity of a single cart line.
const MaxItemQuantity = 10000

// CalculateTotal sums price times quantity over the lines whose product is
// present in products. Lines for missing products contribute nothing.
func CalculateTotal(items []models.CartItem, products map[string]models.Product) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		p, ok := products[item.ProductID]
		if !ok {
			continue
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// GetCart returns the user's cart with products resolved. A user without a
// cart gets an empty one.
func (s *CartService) GetCart(userID string) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByUserID(userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return emptyCart(userID), nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.resolve(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem adds quantity units of a product, creating the cart if needed.
func (s *CartService) AddItem(userID, productID string, quantity int) (*models.Cart, error) {
	if quantity < 1 || quantity > MaxItemQuantity {
		return nil, fmt.Errorf("quantity must be between 1 and %d: %w", MaxItemQuantity, apperr.ErrValidation)
	}
	unlock := s.locks.Lock(userID)
	defer unlock()

	if _, err := s.productRepo.GetByID(productID); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetByUserID(userID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		cart = emptyCart(userID)
	case err != nil:
		return nil, err
	}

	if idx := cart.FindItem(productID); idx >= 0 {
		if cart.Items[idx].Quantity > MaxItemQuantity-quantity {
			return nil, fmt.Errorf("quantity of %s would exceed %d: %w", productID, MaxItemQuantity, apperr.ErrValidation)
		}
		cart.Items[idx].Quantity += quantity
	} else {
		cart.Items = append(cart.Items, models.CartItem{ProductID: productID, Quantity: quantity})
	}
	return s.save(cart)
}

// UpdateItem sets the quantity of a line; zero or less removes it.
func (s *CartService) UpdateItem(userID, productID string, quantity int) (*models.Cart, error) {
	if quantity > MaxItemQuantity {
		return nil, fmt.Errorf("quantity must not exceed %d: %w", MaxItemQuantity, apperr.ErrValidation)
	}
	unlock := s.locks.Lock(userID)
	defer unlock()

	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	idx := cart.FindItem(productID)
	if idx < 0 {
		return nil, fmt.Errorf("item %s not found in cart: %w", productID, apperr.ErrNotFound)
	}
	if quantity <= 0 {
		cart.RemoveItem(productID)
	} else {
		cart.Items[idx].Quantity = quantity
	}
	return s.save(cart)
}

// RemoveItem drops a line from the cart. Removing an absent line is a no-op.
func (s *CartService) RemoveItem(userID, productID string) (*models.Cart, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	cart.RemoveItem(productID)
	return s.save(cart)
}

// ClearCart removes every line from the user's cart.
func (s *CartService) ClearCart(userID string) (*models.Cart, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	cart.Items = []models.CartItem{}
	return s.save(cart)
}

// checkout runs place against the user's resolved cart while holding the
// user's lock and empties the cart once place succeeds.
func (s *CartService) checkout(userID string, place func(cart *models.Cart) error) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	cart, err := s.cartRepo.GetByUserID(userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("cart is empty: %w", apperr.ErrValidation)
	}
	if err != nil {
		return err
	}
	if len(cart.Items) == 0 {
		return fmt.Errorf("cart is empty: %w", apperr.ErrValidation)
	}
	if err := s.resolve(cart); err != nil {
		return err
	}
	if err := place(cart); err != nil {
		return err
	}

	cart.Items = []models.CartItem{}
	cart.TotalAmount = decimal.Zero
	if err := s.cartRepo.Save(cart); err != nil {
		log.Printf("Failed to clear cart for user %s after checkout: %v", userID, err)
	}
	return nil
}

func (s *CartService) save(cart *models.Cart) (*models.Cart, error) {
	if err := s.resolve(cart); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// resolve attaches the current product to every line and recomputes the total.
func (s *CartService) resolve(cart *models.Cart) error {
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	ids := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.GetByIDs(ids)
	if err != nil {
		return fmt.Errorf("failed to resolve cart products: %w", err)
	}
	for i := range cart.Items {
		if p, ok := products[cart.Items[i].ProductID]; ok {
			product := p
			cart.Items[i].Product = &product
		} else {
			cart.Items[i].Product = nil
		}
	}
	cart.TotalAmount = CalculateTotal(cart.Items, products)
	return nil
}

func emptyCart(userID string) *models.Cart {
	return &models.Cart{UserID: userID, Items: []models.CartItem{}, TotalAmount: decimal.Zero}
}
