package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"malonda/internal/gateway"
	"malonda/internal/models"
)

// Confirmer gates destructive actions behind a user confirmation.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmerFunc) Confirm(prompt string) bool { return f(prompt) }

// CartService manages the cart: it fetches and mutates line items, applies
// discount codes and computes the displayed pricing client-side from the
// last-fetched snapshot.
//
// Consistency policy: every successful mutation refetches the full cart; the
// backend stays the single source of truth and no incremental patching
// happens locally. Mutations are NOT serialized against each other — two
// overlapping calls race and the last refetch to complete wins the snapshot.
type CartService struct {
	api     gateway.API
	confirm Confirmer

	mu       sync.RWMutex
	lines    []models.CartLine
	discount models.Discount
}

// NewCartService creates a new CartService.
func NewCartService(api gateway.API, confirm Confirmer) *CartService {
	return &CartService{
		api:     api,
		confirm: confirm,
	}
}

// FetchCart loads the cart from the backend and replaces the local snapshot.
// On failure the last-known-good snapshot is kept.
func (s *CartService) FetchCart(ctx context.Context) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := s.api.Get(ctx, "/cart/", &lines); err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}

	s.mu.Lock()
	s.lines = lines
	s.mu.Unlock()
	return s.Lines(), nil
}

// Lines returns a copy of the last-fetched cart lines.
func (s *CartService) Lines() []models.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lines := make([]models.CartLine, len(s.lines))
	copy(lines, s.lines)
	return lines
}

// IsEmpty reports whether the last-fetched cart has no lines.
func (s *CartService) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines) == 0
}

// AddLine adds a product to the cart. The backend treats adding an existing
// product as a quantity increment; the client does not check for duplicates.
func (s *CartService) AddLine(ctx context.Context, productID, quantity int) error {
	if quantity < 1 {
		return ErrQuantityTooLow
	}
	req := models.AddCartLineRequest{ProductID: productID, Quantity: quantity}
	if err := s.api.Post(ctx, "/cart/", req, nil); err != nil {
		return fmt.Errorf("failed to add item to cart: %w", err)
	}
	return s.refetch(ctx)
}

// SetQuantity updates a line to an absolute quantity. A quantity below 1 is
// rejected locally with no network call, leaving the line unchanged.
func (s *CartService) SetQuantity(ctx context.Context, lineID, quantity int) error {
	if quantity < 1 {
		return ErrQuantityTooLow
	}
	req := models.UpdateQuantityRequest{Quantity: quantity}
	if err := s.api.Patch(ctx, fmt.Sprintf("/cart/%d/", lineID), req, nil); err != nil {
		return fmt.Errorf("failed to update quantity: %w", err)
	}
	return s.refetch(ctx)
}

// RemoveLine deletes a line after the confirmation gate. Declining the
// confirmation dispatches nothing and returns ErrRemovalDeclined.
func (s *CartService) RemoveLine(ctx context.Context, lineID int) error {
	if !s.confirm.Confirm("Remove item from cart?") {
		return ErrRemovalDeclined
	}
	if err := s.api.Delete(ctx, fmt.Sprintf("/cart/%d/", lineID), nil); err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}
	return s.refetch(ctx)
}

func (s *CartService) refetch(ctx context.Context) error {
	if _, err := s.FetchCart(ctx); err != nil {
		return fmt.Errorf("cart updated but refresh failed: %w", err)
	}
	return nil
}

// ApplyDiscount validates the code with the backend and stores the granted
// amount. An empty or whitespace-only code is rejected locally with no
// network call.
func (s *CartService) ApplyDiscount(ctx context.Context, code string) (float64, error) {
	if strings.TrimSpace(code) == "" {
		return 0, ErrEmptyDiscountCode
	}

	var resp models.ApplyDiscountResponse
	if err := s.api.Post(ctx, "/apply-discount/", models.ApplyDiscountRequest{Code: code}, &resp); err != nil {
		return 0, fmt.Errorf("%s", gateway.ServerMessage(err, "invalid code"))
	}

	s.mu.Lock()
	s.discount = models.Discount{Code: code, Amount: resp.DiscountAmount.Float64(), Applied: true}
	s.mu.Unlock()

	logrus.WithField("amount", resp.DiscountAmount.Float64()).Info("Discount applied")
	return resp.DiscountAmount.Float64(), nil
}

// RemoveDiscount clears the active discount. On success the amount is zeroed
// and the code cleared regardless of prior state.
func (s *CartService) RemoveDiscount(ctx context.Context) error {
	if err := s.api.Delete(ctx, "/remove-discount/", nil); err != nil {
		return fmt.Errorf("failed to remove discount: %w", err)
	}

	s.mu.Lock()
	s.discount = models.Discount{}
	s.mu.Unlock()
	return nil
}

// Discount returns the current discount state.
func (s *CartService) Discount() models.Discount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.discount
}

// Subtotal is the sum of unit price times quantity over the last-fetched
// lines.
func (s *CartService) Subtotal() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var subtotal float64
	for _, line := range s.lines {
		subtotal += line.LineTotal()
	}
	return subtotal
}

// DiscountAmount is the last-applied discount amount, zero when none.
func (s *CartService) DiscountAmount() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.discount.Amount
}

// Total is subtotal minus discount. It is computed client-side for display;
// the backend recomputes and stays authoritative for the charged amount at
// checkout initiation.
func (s *CartService) Total() float64 {
	return s.Subtotal() - s.DiscountAmount()
}
