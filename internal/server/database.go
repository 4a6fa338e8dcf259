package server

import (
	"fmt"
	"log"

	"watchstore/internal/config"
	"watchstore/internal/models"
	"watchstore/internal/repositories"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// repositorySet groups the data access layer for one storage backend.
type repositorySet struct {
	products   repositories.ProductRepository
	users      repositories.UserRepository
	carts      repositories.CartRepository
	orders     repositories.OrderRepository
	newsletter repositories.NewsletterRepository
}

// openRepositories connects to the configured database and migrates it.
// The memory driver returns a nil *gorm.DB.
func openRepositories(cfg config.Config) (repositorySet, *gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "memory":
		log.Println("Using in-memory repositories; data is lost on restart")
		return repositorySet{
			products:   repositories.NewMemoryProductRepository(),
			users:      repositories.NewMemoryUserRepository(),
			carts:      repositories.NewMemoryCartRepository(),
			orders:     repositories.NewMemoryOrderRepository(),
			newsletter: repositories.NewMemoryNewsletterRepository(),
		}, nil, nil
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return repositorySet{}, nil, fmt.Errorf("unknown DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return repositorySet{}, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.User{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.NewsletterSubscription{},
	); err != nil {
		return repositorySet{}, nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	log.Printf("Connected to %s database", cfg.DatabaseDriver)

	return repositorySet{
		products:   repositories.NewGORMProductRepository(db),
		users:      repositories.NewGORMUserRepository(db),
		carts:      repositories.NewGORMCartRepository(db),
		orders:     repositories.NewGORMOrderRepository(db),
		newsletter: repositories.NewGORMNewsletterRepository(db),
	}, db, nil
}
