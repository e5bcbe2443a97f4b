package models

import "time"

// Order statuses as reported by the backend.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "Paid"
	OrderStatusCancelled = "cancelled"
)

// OrderItem is one product+quantity line within an order.
type OrderItem struct {
	ID           int    `json:"id"`
	ProductID    int    `json:"product"`
	ProductName  string `json:"product_name"`
	ProductImage string `json:"product_image,omitempty"`
	Quantity     int    `json:"quantity"`
	Price        Money  `json:"price"`
}

// Order represents a persisted customer order.
type Order struct {
	ID            int         `json:"id"`
	Status        string      `json:"status"`
	StatusDisplay string      `json:"status_display,omitempty"`
	TotalPrice    Money       `json:"total_price"`
	CreatedAt     time.Time   `json:"created_at"`
	Items         []OrderItem `json:"items"`
}

// PlaceOrderItem is one line in a direct order request.
type PlaceOrderItem struct {
	ProductID int `json:"product"`
	Quantity  int `json:"quantity"`
}

// PlaceOrderRequest is the request body for POST /orders/, used when
// ordering a product directly from the wishlist.
type PlaceOrderRequest struct {
	Items []PlaceOrderItem `json:"items"`
}
