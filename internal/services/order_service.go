package services

import (
	"context"
	"fmt"

	"malonda/internal/gateway"
	"malonda/internal/models"
)

// OrderService reads the authenticated user's order history.
type OrderService struct {
	api gateway.API
}

// NewOrderService creates a new OrderService.
func NewOrderService(api gateway.API) *OrderService {
	return &OrderService{api: api}
}

// Orders lists the user's orders, newest first as served by the backend.
func (s *OrderService) Orders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := s.api.Get(ctx, "/orders/", &orders); err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return orders, nil
}
