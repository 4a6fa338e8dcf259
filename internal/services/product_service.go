package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"watchstore/internal/apperr"
	"watchstore/internal/models"
	"watchstore/internal/repositories"
	"watchstore/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo   repositories.ProductRepository
	images storage.ImageStore
}

// ProductUpdate carries a partial product update; nil fields are left alone.
type ProductUpdate struct {
	Name        *string          `json:"name" validate:"omitempty,min=2,max=100"`
	Price       *decimal.Decimal `json:"price"`
	Image       *string          `json:"image"`
	Category    *string          `json:"category" validate:"omitempty,oneof=featured products new"`
	Description *string          `json:"description"`
	IsOnSale    *bool            `json:"isOnSale"`
}

// NewProductService creates a new ProductService. images may be nil when
// uploads are disabled.
func NewProductService(repo repositories.ProductRepository, images storage.ImageStore) *ProductService {
	return &ProductService{
		repo:   repo,
		images: images,
	}
}

// GetAllProducts retrieves the catalog, optionally filtered by category.
func (s *ProductService) GetAllProducts(category string) ([]models.Product, error) {
	if category != "" && !models.IsValidCategory(category) {
		return nil, fmt.Errorf("unknown category '%s': %w", category, apperr.ErrValidation)
	}
	return s.repo.GetAll(category)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct creates a new product.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if err := checkProduct(product); err != nil {
		return err
	}
	return s.repo.Create(product)
}

// UpdateProduct applies patch to the product with the given ID.
func (s *ProductService) UpdateProduct(id string, patch ProductUpdate) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.Image != nil {
		product.Image = *patch.Image
	}
	if patch.Category != nil {
		product.Category = *patch.Category
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.IsOnSale != nil {
		product.IsOnSale = *patch.IsOnSale
	}

	if err := checkProduct(product); err != nil {
		return nil, err
	}
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	return s.repo.Delete(id)
}

// UploadImage stores an image under a generated name and returns its path.
// ext is the extension implied by the sniffed content type; when empty the
// original file's extension is kept.
func (s *ProductService) UploadImage(ctx context.Context, originalName, contentType, ext string, r io.Reader) (string, error) {
	if s.images == nil {
		return "", fmt.Errorf("image uploads are not configured")
	}
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(originalName))
	}
	name := fmt.Sprintf("product-%d-%s%s", time.Now().UnixMilli(), uuid.New().String(), ext)
	return s.images.Save(ctx, name, contentType, r)
}

func checkProduct(product *models.Product) error {
	name := strings.TrimSpace(product.Name)
	if len(name) < 2 || len(name) > 100 {
		return fmt.Errorf("product name must be 2 to 100 characters: %w", apperr.ErrValidation)
	}
	if product.Price.IsNegative() {
		return fmt.Errorf("product price must not be negative: %w", apperr.ErrValidation)
	}
	if !models.IsValidCategory(product.Category) {
		return fmt.Errorf("unknown category '%s': %w", product.Category, apperr.ErrValidation)
	}
	return nil
}
