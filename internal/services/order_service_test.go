package services_test

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"watchstore/internal/apperr"
	"watchstore/internal/models"
	"watchstore/internal/repositories"
	"watchstore/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(eventType string, body []byte) error {
	args := m.Called(eventType, body)
	return args.Error(0)
}

type orderFixture struct {
	*cartFixture
	users     *repositories.MemoryUserRepository
	orders    *repositories.MemoryOrderRepository
	publisher *MockPublisher
	service   *services.OrderService
	buyer     *models.User
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	cf := newCartFixture(t)
	users := repositories.NewMemoryUserRepository()
	orders := repositories.NewMemoryOrderRepository()
	publisher := new(MockPublisher)

	buyer := &models.User{Name: "Buyer", Email: "buyer@example.com", Password: "x", Role: models.RoleUser}
	require.NoError(t, users.Create(buyer))

	return &orderFixture{
		cartFixture: cf,
		users:       users,
		orders:      orders,
		publisher:   publisher,
		service:     services.NewOrderService(orders, users, cf.service, publisher),
		buyer:       buyer,
	}
}

var testAddress = models.ShippingAddress{
	Street:  "1 Main St",
	City:    "Springfield",
	State:   "IL",
	ZipCode: "62701",
	Country: "USA",
}

func eventOfType(eventType string) interface{} {
	return mock.MatchedBy(func(body []byte) bool {
		var event models.OrderEvent
		return json.Unmarshal(body, &event) == nil && event.Event == eventType
	})
}

func TestOrderService_CreateOrder(t *testing.T) {
	f := newOrderFixture(t)
	jazzmaster := f.addProduct(t, "Jazzmaster", "1050")
	khaki := f.addProduct(t, "Khaki Field", "549.99")

	_, err := f.cartFixture.service.AddItem(f.buyer.ID, jazzmaster.ID, 2)
	require.NoError(t, err)
	_, err = f.cartFixture.service.AddItem(f.buyer.ID, khaki.ID, 1)
	require.NoError(t, err)

	var published models.OrderEvent
	f.publisher.On("Publish", models.EventOrderCreated, mock.Anything).
		Run(func(args mock.Arguments) {
			require.NoError(t, json.Unmarshal(args.Get(1).([]byte), &published))
		}).
		Return(nil).Once()

	order, err := f.service.CreateOrder(f.buyer.ID, testAddress, "")
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentMethodCOD, order.PaymentMethod)
	assert.Equal(t, testAddress, order.ShippingAddress.Data())
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Jazzmaster", order.Items[0].Name)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assertMoney(t, "2649.99", order.TotalAmount)

	cart, err := f.cartFixture.service.GetCart(f.buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items, "checkout empties the cart")

	assert.Equal(t, order.ID, published.OrderID)
	assert.Equal(t, "buyer@example.com", published.Email)
	assert.Equal(t, 2, published.ItemCount)
	f.publisher.AssertExpectations(t)
}

func TestOrderService_CreateOrderFreezesPrices(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "Jazzmaster", "1050")
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	_, err := f.cartFixture.service.AddItem(f.buyer.ID, p.ID, 1)
	require.NoError(t, err)
	order, err := f.service.CreateOrder(f.buyer.ID, testAddress, models.PaymentMethodCard)
	require.NoError(t, err)

	p.Price = decimal.NewFromInt(2000)
	require.NoError(t, f.products.Update(p))

	stored, err := f.service.GetOrderByID(order.ID, f.buyer.ID, false)
	require.NoError(t, err)
	assertMoney(t, "1050", stored.Items[0].Price)
	assertMoney(t, "1050", stored.TotalAmount)
}

func TestOrderService_CreateOrderRejects(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "Jazzmaster", "1050")

	_, err := f.service.CreateOrder(f.buyer.ID, testAddress, models.PaymentMethodCOD)
	assert.ErrorIs(t, err, apperr.ErrValidation, "no cart")

	_, err = f.cartFixture.service.AddItem(f.buyer.ID, p.ID, 1)
	require.NoError(t, err)

	_, err = f.service.CreateOrder(f.buyer.ID, testAddress, "bitcoin")
	assert.ErrorIs(t, err, apperr.ErrValidation, "unknown payment method")

	_, err = f.cartFixture.service.ClearCart(f.buyer.ID)
	require.NoError(t, err)
	_, err = f.service.CreateOrder(f.buyer.ID, testAddress, models.PaymentMethodCOD)
	assert.ErrorIs(t, err, apperr.ErrValidation, "empty cart")

	_, err = f.cartFixture.service.AddItem(f.buyer.ID, p.ID, 1)
	require.NoError(t, err)
	require.NoError(t, f.products.Delete(p.ID))
	_, err = f.service.CreateOrder(f.buyer.ID, testAddress, models.PaymentMethodCOD)
	assert.ErrorIs(t, err, apperr.ErrValidation, "only deleted products")

	orders, err := f.service.GetUserOrders(f.buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestOrderService_ConcurrentStatusUpdates(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "Jazzmaster", "1050")
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	_, err := f.cartFixture.service.AddItem(f.buyer.ID, p.ID, 1)
	require.NoError(t, err)
	order, err := f.service.CreateOrder(f.buyer.ID, testAddress, models.PaymentMethodCOD)
	require.NoError(t, err)

	const workers = 16
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.UpdateOrderStatus(order.ID, models.OrderStatusProcessing)
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
			continue
		}
		assert.True(t, errors.Is(err, apperr.ErrConflict) || errors.Is(err, apperr.ErrValidation), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, accepted, "only one move out of pending is accepted")

	stored, err := f.orders.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, stored.Status)
	f.publisher.AssertNumberOfCalls(t, "Publish", 2)
}

func TestOrderService_PublishFailureDoesNotFailCheckout(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "Jazzmaster", "1050")
	f.publisher.On("Publish", models.EventOrderCreated, mock.Anything).Return(errors.New("broker down")).Once()

	_, err := f.cartFixture.service.AddItem(f.buyer.ID, p.ID, 1)
	require.NoError(t, err)

	order, err := f.service.CreateOrder(f.buyer.ID, testAddress, models.PaymentMethodPayPal)
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	f.publisher.AssertExpectations(t)
}

func TestOrderService_NilPublisher(t *testing.T) {
	cf := newCartFixture(t)
	users := repositories.NewMemoryUserRepository()
	service := services.NewOrderService(repositories.NewMemoryOrderRepository(), users, cf.service, nil)
	p := cf.addProduct(t, "Jazzmaster", "1050")

	_, err := cf.service.AddItem("user-1", p.ID, 1)
	require.NoError(t, err)
	order, err := service.CreateOrder("user-1", testAddress, models.PaymentMethodCOD)
	require.NoError(t, err)

	_, err = service.UpdateOrderStatus(order.ID, models.OrderStatusProcessing)
	assert.NoError(t, err)
}

func TestOrderService_GetOrderByIDAccess(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "Jazzmaster", "1050")
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	_, err := f.cartFixture.service.AddItem(f.buyer.ID, p.ID, 1)
	require.NoError(t, err)
	order, err := f.service.CreateOrder(f.buyer.ID, testAddress, models.PaymentMethodCOD)
	require.NoError(t, err)

	_, err = f.service.GetOrderByID(order.ID, f.buyer.ID, false)
	assert.NoError(t, err)

	_, err = f.service.GetOrderByID(order.ID, "someone-else", false)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.service.GetOrderByID(order.ID, "admin-id", true)
	assert.NoError(t, err)

	_, err = f.service.GetOrderByID("missing", f.buyer.ID, false)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestOrderService_ListOrders(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "Jazzmaster", "1050")
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	var ids []string
	for i := 0; i < 2; i++ {
		_, err := f.cartFixture.service.AddItem(f.buyer.ID, p.ID, 1)
		require.NoError(t, err)
		order, err := f.service.CreateOrder(f.buyer.ID, testAddress, models.PaymentMethodCOD)
		require.NoError(t, err)
		ids = append(ids, order.ID)
		time.Sleep(2 * time.Millisecond)
	}
	_, err := f.cartFixture.service.AddItem("other-user", p.ID, 1)
	require.NoError(t, err)
	_, err = f.service.CreateOrder("other-user", testAddress, models.PaymentMethodCOD)
	require.NoError(t, err)

	mine, err := f.service.GetUserOrders(f.buyer.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, ids[1], mine[0].ID, "newest first")

	all, err := f.service.GetAllOrders()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "Jazzmaster", "1050")
	f.publisher.On("Publish", models.EventOrderCreated, mock.Anything).Return(nil)
	f.publisher.On("Publish", models.EventOrderStatusUpdated, eventOfType(models.EventOrderStatusUpdated)).Return(nil)

	_, err := f.cartFixture.service.AddItem(f.buyer.ID, p.ID, 1)
	require.NoError(t, err)
	order, err := f.service.CreateOrder(f.buyer.ID, testAddress, models.PaymentMethodCOD)
	require.NoError(t, err)

	_, err = f.service.UpdateOrderStatus(order.ID, "lost")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.service.UpdateOrderStatus(order.ID, models.OrderStatusDelivered)
	assert.ErrorIs(t, err, apperr.ErrValidation, "pending cannot jump to delivered")

	for _, next := range []models.OrderStatus{models.OrderStatusProcessing, models.OrderStatusShipped, models.OrderStatusDelivered} {
		updated, err := f.service.UpdateOrderStatus(order.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	_, err = f.service.UpdateOrderStatus(order.ID, models.OrderStatusCancelled)
	assert.ErrorIs(t, err, apperr.ErrValidation, "delivered is terminal")

	_, err = f.service.UpdateOrderStatus("missing", models.OrderStatusProcessing)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	f.publisher.AssertNumberOfCalls(t, "Publish", 4)
}
