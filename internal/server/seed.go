package server

import (
	"fmt"
	"log"

	"watchstore/internal/models"
	"watchstore/internal/repositories"
	"watchstore/internal/services"

	"github.com/shopspring/decimal"
)

func catalog() []models.Product {
	p := func(name string, price int64, image, category, description string, onSale bool) models.Product {
		return models.Product{
			Name:        name,
			Price:       decimal.NewFromInt(price),
			Image:       image,
			Category:    category,
			Description: description,
			IsOnSale:    onSale,
		}
	}
	return []models.Product{
		p("Jazzmaster", 1050, "assets/img/featured1.png", models.CategoryFeatured, "Elegant Jazzmaster watch with premium design", true),
		p("Ingersoll", 250, "assets/img/featured2.png", models.CategoryFeatured, "Classic Ingersoll timepiece", true),
		p("Rose Gold", 890, "assets/img/featured3.png", models.CategoryFeatured, "Luxurious rose gold watch", true),
		p("Spirit Rose", 1500, "assets/img/product1.png", models.CategoryProducts, "Premium Spirit Rose collection", false),
		p("Khaki Pilot", 1350, "assets/img/product2.png", models.CategoryProducts, "Military-inspired Khaki Pilot watch", false),
		p("Jubilee Black", 870, "assets/img/product3.png", models.CategoryProducts, "Sophisticated black Jubilee model", false),
		p("Fosil ME3", 650, "assets/img/product4.png", models.CategoryProducts, "Modern Fossil ME3 design", false),
		p("Duchen", 950, "assets/img/product5.png", models.CategoryProducts, "Elegant Duchen timepiece", false),
		p("Longines Rose", 980, "assets/img/new1.png", models.CategoryNew, "Latest Longines rose gold collection", false),
		p("Jazzmaster", 1150, "assets/img/new2.png", models.CategoryNew, "New Jazzmaster model with enhanced features", false),
		p("Dreyfuss Gold", 750, "assets/img/new3.png", models.CategoryNew, "Stunning Dreyfuss gold edition", false),
		p("Portuguese Rose", 1590, "assets/img/new4.png", models.CategoryNew, "Exclusive Portuguese rose collection", false),
	}
}

// seedCatalog inserts the storefront's watches into an empty catalog.
func seedCatalog(repo repositories.ProductRepository) error {
	existing, err := repo.GetAll("")
	if err != nil {
		return fmt.Errorf("failed to inspect catalog: %w", err)
	}
	if len(existing) > 0 {
		log.Printf("Catalog already has %d products, skipping seed", len(existing))
		return nil
	}

	products := catalog()
	for i := range products {
		if err := repo.Create(&products[i]); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", products[i].Name, err)
		}
	}
	log.Printf("Seeded %d products", len(products))
	return nil
}

// seedAdmin creates the admin account unless it exists.
func seedAdmin(auth *services.AuthService, email, password string) error {
	admin, err := auth.EnsureAdmin("Admin", email, password)
	if err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	log.Printf("Admin account ready: %s", admin.Email)
	return nil
}
