package handlers

import (
	"io"
	"log"
	"strings"

	"watchstore/internal/models"
	"watchstore/internal/services"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// MaxImageSize is the largest accepted product image upload.
const MaxImageSize = 5 << 20

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	productService *services.ProductService
	validate       *validator.Validate
}

type productRequest struct {
	Name        string          `json:"name" validate:"required,min=2,max=100"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category" validate:"omitempty,oneof=featured products new"`
	Description string          `json:"description"`
	IsOnSale    bool            `json:"isOnSale"`
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validate:       newValidator(),
	}
}

// RegisterRoutes registers the catalog routes. Reads are public, writes need
// the auth and admin handlers.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, auth, admin fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetAll)
	productRoutes.Post("/upload", auth, admin, h.HandleUpload)
	productRoutes.Get("/:id", h.HandleGetByID)
	productRoutes.Post("/", auth, admin, h.HandleCreate)
	productRoutes.Put("/:id", auth, admin, h.HandleUpdate)
	productRoutes.Delete("/:id", auth, admin, h.HandleDelete)
}

// HandleGetAll lists products, optionally filtered by ?category=.
func (h *ProductHandler) HandleGetAll(c *fiber.Ctx) error {
	products, err := h.productService.GetAllProducts(c.Query("category"))
	if err != nil {
		return respondError(c, err, "Failed to retrieve products")
	}
	return c.JSON(products)
}

// HandleGetByID returns one product.
func (h *ProductHandler) HandleGetByID(c *fiber.Ctx) error {
	product, err := h.productService.GetProductByID(c.Params("id"))
	if err != nil {
		return respondError(c, err, "Product not found")
	}
	return c.JSON(product)
}

// HandleCreate adds a product to the catalog.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	var req productRequest
	if ok, err := bindJSON(c, h.validate, &req); !ok {
		return err
	}
	if req.Category == "" {
		req.Category = models.CategoryProducts
	}

	product := &models.Product{
		Name:        req.Name,
		Price:       req.Price,
		Image:       req.Image,
		Category:    req.Category,
		Description: req.Description,
		IsOnSale:    req.IsOnSale,
	}
	if err := h.productService.CreateProduct(product); err != nil {
		log.Printf("Error creating product: %v", err)
		return respondError(c, err, "Failed to create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdate applies a partial update to a product.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	var patch services.ProductUpdate
	if ok, err := bindJSON(c, h.validate, &patch); !ok {
		return err
	}

	product, err := h.productService.UpdateProduct(c.Params("id"), patch)
	if err != nil {
		log.Printf("Error updating product %s: %v", c.Params("id"), err)
		return respondError(c, err, "Failed to update product")
	}
	return c.JSON(product)
}

// HandleDelete removes a product from the catalog.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.productService.DeleteProduct(c.Params("id")); err != nil {
		return respondError(c, err, "Failed to delete product")
	}
	return c.JSON(fiber.Map{"message": "Product removed"})
}

// HandleUpload stores a product image sent as the multipart field "image".
func (h *ProductHandler) HandleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "No file uploaded",
			"error":   err.Error(),
		})
	}
	if fileHeader.Size > MaxImageSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Image must be 5MB or smaller",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return respondError(c, err, "Failed to read upload")
	}
	defer file.Close()

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return respondError(c, err, "Failed to read upload")
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Only image files are allowed",
			"error":   "detected content type " + mtype.String(),
		})
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return respondError(c, err, "Failed to read upload")
	}

	path, err := h.productService.UploadImage(c.UserContext(), fileHeader.Filename, mtype.String(), mtype.Extension(), file)
	if err != nil {
		log.Printf("Error storing product image: %v", err)
		return respondError(c, err, "Failed to store image")
	}
	return c.JSON(fiber.Map{"imagePath": path})
}
