package models

import "time"

// Category is a product grouping, read-only for customers.
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Slug        string `json:"slug,omitempty"`
}

// Product is a catalog entry, owned by the backend.
type Product struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Price         Money     `json:"price"`
	SKU           string    `json:"sku,omitempty"`
	StockQuantity int       `json:"stock_quantity"`
	Category      *Category `json:"category,omitempty"`
	Image         string    `json:"image,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewCategory is the payload for the manager-only POST /categories/.
type NewCategory struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// NewProduct is the payload for the manager-only POST /products/.
// It is sent as multipart form data; ImagePath points at a local image
// file to upload, or is empty when the product has no image.
type NewProduct struct {
	Name          string  `validate:"required,min=3,max=100"`
	Description   string  `validate:"omitempty,max=500"`
	Price         float64 `validate:"required,gt=0"`
	StockQuantity int     `validate:"gte=0"`
	CategoryID    int     `validate:"required,gt=0"`
	ImagePath     string  `validate:"omitempty,file"`
}

// WishlistItem is one saved product in the wishlist.
type WishlistItem struct {
	ID           int       `json:"id"`
	ProductID    int       `json:"product"`
	ProductName  string    `json:"product_name"`
	ProductImage string    `json:"product_image,omitempty"`
	AddedAt      time.Time `json:"added_at"`
}

// AddWishlistRequest is the request body for POST /wishlist/.
type AddWishlistRequest struct {
	ProductID int `json:"product"`
}
