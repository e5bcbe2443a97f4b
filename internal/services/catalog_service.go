package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"malonda/internal/gateway"
	"malonda/internal/models"
	"malonda/internal/session"
)

// CatalogService reads categories and products, and exposes the
// manager-only create operations. Catalog data is never cached beyond the
// call; the backend owns it.
type CatalogService struct {
	api      gateway.API
	sessions *session.Store
	validate *validator.Validate
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(api gateway.API, sessions *session.Store) *CatalogService {
	return &CatalogService{
		api:      api,
		sessions: sessions,
		validate: validator.New(),
	}
}

// Categories lists all categories. No authentication required.
func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.api.Get(ctx, "/categories/", &categories); err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return categories, nil
}

// Products lists all products. No authentication required.
func (s *CatalogService) Products(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.api.Get(ctx, "/products/", &products); err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	return products, nil
}

// Product retrieves a single product by ID.
func (s *CatalogService) Product(ctx context.Context, id int) (*models.Product, error) {
	var product models.Product
	if err := s.api.Get(ctx, fmt.Sprintf("/products/%d/", id), &product); err != nil {
		return nil, fmt.Errorf("failed to load product %d: %w", id, err)
	}
	return &product, nil
}

// CreateCategory creates a category. Manager-only.
func (s *CatalogService) CreateCategory(ctx context.Context, req models.NewCategory) (*models.Category, error) {
	if err := s.requireManager(); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid category input: %w", err)
	}

	var category models.Category
	if err := s.api.Post(ctx, "/categories/", req, &category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &category, nil
}

// CreateProduct creates a product, uploading its image as multipart form
// data when an image path is given. Manager-only.
func (s *CatalogService) CreateProduct(ctx context.Context, req models.NewProduct) (*models.Product, error) {
	if err := s.requireManager(); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid product input: %w", err)
	}

	fields := map[string]string{
		"name":           req.Name,
		"description":    req.Description,
		"price":          strconv.FormatFloat(req.Price, 'f', 2, 64),
		"stock_quantity": strconv.Itoa(req.StockQuantity),
		"category_id":    strconv.Itoa(req.CategoryID),
	}

	var product models.Product
	if err := s.api.PostMultipart(ctx, "/products/", fields, "image", req.ImagePath, &product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &product, nil
}

func (s *CatalogService) requireManager() error {
	user := s.sessions.CurrentUser()
	if user == nil {
		return ErrNotAuthenticated
	}
	if !user.IsManager() {
		return ErrManagerOnly
	}
	return nil
}
