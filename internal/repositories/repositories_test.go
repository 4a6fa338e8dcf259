package repositories_test

import (
	"fmt"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"watchstore/internal/apperr"
	"watchstore/internal/models"
	"watchstore/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type backend struct {
	products   repositories.ProductRepository
	users      repositories.UserRepository
	carts      repositories.CartRepository
	orders     repositories.OrderRepository
	newsletter repositories.NewsletterRepository
}

func memoryBackend(t *testing.T) backend {
	return backend{
		products:   repositories.NewMemoryProductRepository(),
		users:      repositories.NewMemoryUserRepository(),
		carts:      repositories.NewMemoryCartRepository(),
		orders:     repositories.NewMemoryOrderRepository(),
		newsletter: repositories.NewMemoryNewsletterRepository(),
	}
}

func gormBackend(t *testing.T) backend {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Product{}, &models.User{}, &models.Cart{}, &models.CartItem{},
		&models.Order{}, &models.NewsletterSubscription{},
	))
	return backend{
		products:   repositories.NewGORMProductRepository(db),
		users:      repositories.NewGORMUserRepository(db),
		carts:      repositories.NewGORMCartRepository(db),
		orders:     repositories.NewGORMOrderRepository(db),
		newsletter: repositories.NewGORMNewsletterRepository(db),
	}
}

// forEachBackend runs fn against both implementations of every repository.
func forEachBackend(t *testing.T, fn func(t *testing.T, b backend)) {
	for name, open := range map[string]func(*testing.T) backend{
		"memory": memoryBackend,
		"gorm":   gormBackend,
	} {
		t.Run(name, func(t *testing.T) { fn(t, open(t)) })
	}
}

func newProduct(name, price, category string) *models.Product {
	return &models.Product{Name: name, Price: decimal.RequireFromString(price), Category: category}
}

func TestProductRepository(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		jazz := newProduct("Jazzmaster", "1050", models.CategoryFeatured)
		khaki := newProduct("Khaki Pilot", "1350", models.CategoryProducts)
		require.NoError(t, b.products.Create(jazz))
		require.NoError(t, b.products.Create(khaki))
		assert.NotEmpty(t, jazz.ID)

		all, err := b.products.GetAll("")
		require.NoError(t, err)
		assert.Len(t, all, 2)

		featured, err := b.products.GetAll(models.CategoryFeatured)
		require.NoError(t, err)
		require.Len(t, featured, 1)
		assert.Equal(t, jazz.ID, featured[0].ID)

		createdAt, firstUpdate := jazz.CreatedAt, jazz.UpdatedAt
		time.Sleep(5 * time.Millisecond)
		jazz.Price = decimal.RequireFromString("999.99")
		jazz.IsOnSale = true
		require.NoError(t, b.products.Update(jazz))
		got, err := b.products.GetByID(jazz.ID)
		require.NoError(t, err)
		assert.True(t, got.Price.Equal(decimal.RequireFromString("999.99")))
		assert.True(t, got.IsOnSale)
		assert.True(t, got.UpdatedAt.After(firstUpdate), "update bumps updatedAt")
		assert.True(t, got.CreatedAt.Equal(createdAt))

		assert.ErrorIs(t, b.products.Update(&models.Product{ID: "missing", Name: "x"}), apperr.ErrNotFound)

		require.NoError(t, b.products.Delete(khaki.ID))
		_, err = b.products.GetByID(khaki.ID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.ErrorIs(t, b.products.Delete(khaki.ID), apperr.ErrNotFound)

		found, err := b.products.GetByIDs([]string{jazz.ID, khaki.ID, "missing"})
		require.NoError(t, err)
		assert.Len(t, found, 1)
		assert.Contains(t, found, jazz.ID)

		found, err = b.products.GetByIDs(nil)
		require.NoError(t, err)
		assert.Empty(t, found)

		all, err = b.products.GetAll("")
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestUserRepository(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		user := &models.User{Name: "Ann", Email: "ann@example.com", Password: "hash", Role: models.RoleUser}
		require.NoError(t, b.users.Create(user))
		assert.NotEmpty(t, user.ID)

		dup := &models.User{Name: "Other", Email: "ann@example.com", Password: "hash", Role: models.RoleUser}
		assert.ErrorIs(t, b.users.Create(dup), apperr.ErrConflict)

		byEmail, err := b.users.GetByEmail("ann@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)

		byID, err := b.users.GetByID(user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ann", byID.Name)

		_, err = b.users.GetByEmail("nobody@example.com")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		_, err = b.users.GetByID("missing")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestCartRepository(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		_, err := b.carts.GetByUserID("user-1")
		assert.ErrorIs(t, err, apperr.ErrNotFound)

		cart := &models.Cart{
			UserID: "user-1",
			Items: []models.CartItem{
				{ProductID: "p1", Quantity: 2, Product: &models.Product{ID: "p1", Name: "resolved"}},
				{ProductID: "p2", Quantity: 1},
			},
			TotalAmount: decimal.NewFromInt(300),
		}
		require.NoError(t, b.carts.Save(cart))
		assert.NotEmpty(t, cart.ID)
		assert.NotZero(t, cart.Items[0].ID)

		stored, err := b.carts.GetByUserID("user-1")
		require.NoError(t, err)
		assert.Equal(t, cart.ID, stored.ID)
		require.Len(t, stored.Items, 2)
		assert.Equal(t, "p1", stored.Items[0].ProductID)
		assert.Equal(t, 2, stored.Items[0].Quantity)
		assert.Nil(t, stored.Items[0].Product, "resolved products are not stored")
		assert.True(t, stored.TotalAmount.Equal(decimal.NewFromInt(300)))

		stored.Items = stored.Items[1:]
		stored.Items[0].Quantity = 5
		require.NoError(t, b.carts.Save(stored))

		again, err := b.carts.GetByUserID("user-1")
		require.NoError(t, err)
		require.Len(t, again.Items, 1)
		assert.Equal(t, "p2", again.Items[0].ProductID)
		assert.Equal(t, 5, again.Items[0].Quantity)

		again.Items = []models.CartItem{}
		require.NoError(t, b.carts.Save(again))
		empty, err := b.carts.GetByUserID("user-1")
		require.NoError(t, err)
		assert.Empty(t, empty.Items)
		assert.Equal(t, cart.ID, empty.ID, "one cart per user")
	})
}

func TestOrderRepository(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		address := models.ShippingAddress{Street: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701", Country: "USA"}
		newOrder := func(userID string) *models.Order {
			return &models.Order{
				UserID: userID,
				Items: datatypes.JSONSlice[models.OrderItem]{
					{ProductID: "p1", Name: "Jazzmaster", Price: decimal.NewFromInt(1050), Quantity: 2},
				},
				ShippingAddress: datatypes.NewJSONType(address),
				PaymentMethod:   models.PaymentMethodCOD,
				TotalAmount:     decimal.NewFromInt(2100),
				Status:          models.OrderStatusPending,
			}
		}

		first := newOrder("user-1")
		require.NoError(t, b.orders.Create(first))
		time.Sleep(2 * time.Millisecond)
		second := newOrder("user-1")
		require.NoError(t, b.orders.Create(second))
		require.NoError(t, b.orders.Create(newOrder("user-2")))

		got, err := b.orders.GetByID(first.ID)
		require.NoError(t, err)
		assert.Equal(t, address, got.ShippingAddress.Data())
		require.Len(t, got.Items, 1)
		assert.Equal(t, "Jazzmaster", got.Items[0].Name)
		assert.True(t, got.Items[0].Price.Equal(decimal.NewFromInt(1050)))
		assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(2100)))

		mine, err := b.orders.GetByUserID("user-1")
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, second.ID, mine[0].ID, "newest first")

		all, err := b.orders.GetAll()
		require.NoError(t, err)
		assert.Len(t, all, 3)

		require.NoError(t, b.orders.UpdateStatus(first.ID, models.OrderStatusPending, models.OrderStatusProcessing))
		got, err = b.orders.GetByID(first.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusProcessing, got.Status)

		err = b.orders.UpdateStatus(first.ID, models.OrderStatusPending, models.OrderStatusCancelled)
		assert.ErrorIs(t, err, apperr.ErrConflict, "stale status is rejected")
		got, err = b.orders.GetByID(first.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusProcessing, got.Status)

		assert.ErrorIs(t, b.orders.UpdateStatus("missing", models.OrderStatusPending, models.OrderStatusShipped), apperr.ErrNotFound)
		_, err = b.orders.GetByID("missing")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestNewsletterRepository(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		older := &models.NewsletterSubscription{Email: "a@example.com", IsActive: true, SubscribedAt: time.Now().Add(-time.Hour)}
		newer := &models.NewsletterSubscription{Email: "b@example.com", IsActive: true, SubscribedAt: time.Now()}
		require.NoError(t, b.newsletter.Create(older))
		require.NoError(t, b.newsletter.Create(newer))

		dup := &models.NewsletterSubscription{Email: "a@example.com", IsActive: true, SubscribedAt: time.Now()}
		assert.ErrorIs(t, b.newsletter.Create(dup), apperr.ErrConflict)

		active, err := b.newsletter.GetActive()
		require.NoError(t, err)
		require.Len(t, active, 2)
		assert.Equal(t, "b@example.com", active[0].Email)

		newer.IsActive = false
		require.NoError(t, b.newsletter.Update(newer))

		active, err = b.newsletter.GetActive()
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "a@example.com", active[0].Email)

		kept, err := b.newsletter.GetByEmail("b@example.com")
		require.NoError(t, err)
		assert.False(t, kept.IsActive)

		_, err = b.newsletter.GetByEmail("nobody@example.com")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.ErrorIs(t, b.newsletter.Update(&models.NewsletterSubscription{ID: "missing", Email: "nobody@example.com"}), apperr.ErrNotFound)
	})
}
