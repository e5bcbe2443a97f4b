package services

import (
	"context"
	"fmt"

	"malonda/internal/gateway"
	"malonda/internal/models"
)

// WishlistService manages saved products and can place a direct order for
// one of them.
type WishlistService struct {
	api gateway.API
}

// NewWishlistService creates a new WishlistService.
func NewWishlistService(api gateway.API) *WishlistService {
	return &WishlistService{api: api}
}

// Wishlist lists the saved products.
func (s *WishlistService) Wishlist(ctx context.Context) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	if err := s.api.Get(ctx, "/wishlist/", &items); err != nil {
		return nil, fmt.Errorf("failed to load wishlist: %w", err)
	}
	return items, nil
}

// Add saves a product to the wishlist.
func (s *WishlistService) Add(ctx context.Context, productID int) error {
	if err := s.api.Post(ctx, "/wishlist/", models.AddWishlistRequest{ProductID: productID}, nil); err != nil {
		return fmt.Errorf("failed to add to wishlist: %w", err)
	}
	return nil
}

// Remove deletes a wishlist entry by its entry ID.
func (s *WishlistService) Remove(ctx context.Context, itemID int) error {
	if err := s.api.Delete(ctx, fmt.Sprintf("/wishlist/%d/", itemID), nil); err != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", err)
	}
	return nil
}

// OrderProduct places a single-line order for a wishlisted product,
// bypassing the cart.
func (s *WishlistService) OrderProduct(ctx context.Context, productID int) error {
	req := models.PlaceOrderRequest{
		Items: []models.PlaceOrderItem{{ProductID: productID, Quantity: 1}},
	}
	if err := s.api.Post(ctx, "/orders/", req, nil); err != nil {
		return fmt.Errorf("failed to place order: %w", err)
	}
	return nil
}
