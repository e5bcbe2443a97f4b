package services

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"malonda/internal/gateway"
	"malonda/internal/models"
	"malonda/internal/session"
)

// CheckoutStatus is the state of the current checkout attempt.
type CheckoutStatus string

const (
	CheckoutIdle        CheckoutStatus = "IDLE"
	CheckoutInitiating  CheckoutStatus = "INITIATING"
	CheckoutRedirecting CheckoutStatus = "REDIRECTING"
	CheckoutConfirming  CheckoutStatus = "CONFIRMING"
	CheckoutConfirmed   CheckoutStatus = "CONFIRMED"
	CheckoutFailed      CheckoutStatus = "FAILED"
)

// IsTerminal reports whether the attempt has finished. Both terminal states
// require a fresh user-initiated action to proceed further.
func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutConfirmed || s == CheckoutFailed
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}

// Redirector hands the user over to the provider's hosted checkout page.
// In a browser this is a navigation; the CLI prints and opens the URL.
type Redirector interface {
	Redirect(checkoutURL string) error
}

// RedirectorFunc adapts a function to the Redirector interface.
type RedirectorFunc func(checkoutURL string) error

// Redirect implements Redirector.
func (f RedirectorFunc) Redirect(checkoutURL string) error { return f(checkoutURL) }

// CheckoutService orchestrates one checkout attempt:
//
//	Idle -> Initiating -> Redirecting -> (provider, out of process)
//	     -> Confirming -> Confirmed | Failed
//
// Initiation converts the priced cart snapshot into a hosted payment session
// and redirects to it; control returns through the provider's return URL,
// whose identifier keys the order confirmation. Confirmation is expected to
// be idempotent server-side; the client does not guard against reaching it
// twice.
type CheckoutService struct {
	api      gateway.API
	sessions *session.Store
	cart     *CartService
	redirect Redirector
	currency string

	mu      sync.Mutex
	status  CheckoutStatus
	done    chan struct{}
	doneOne sync.Once
}

// NewCheckoutService creates a CheckoutService in the Idle state.
func NewCheckoutService(api gateway.API, sessions *session.Store, cart *CartService, redirect Redirector, currency string) *CheckoutService {
	return &CheckoutService{
		api:      api,
		sessions: sessions,
		cart:     cart,
		redirect: redirect,
		currency: currency,
		status:   CheckoutIdle,
		done:     make(chan struct{}),
	}
}

// Status returns the current checkout state.
func (s *CheckoutService) Status() CheckoutStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Done is closed when the attempt finishes: confirmed, failed or cancelled
// by the user at the provider.
func (s *CheckoutService) Done() <-chan struct{} {
	return s.done
}

func (s *CheckoutService) setStatus(status CheckoutStatus) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	logrus.WithField("status", status).Debug("Checkout state changed")
	if status.IsTerminal() {
		s.doneOne.Do(func() { close(s.done) })
	}
}

// Initiate starts a checkout for the current cart. Guards fire before any
// network call: an empty cart and a missing session both abort back to Idle.
// On success the user is redirected to the provider's hosted page and the
// attempt stays in Redirecting until the return URL arrives.
func (s *CheckoutService) Initiate(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.status != CheckoutIdle {
		s.mu.Unlock()
		return "", ErrCheckoutBusy
	}
	s.mu.Unlock()

	if !s.sessions.IsAuthenticated() {
		return "", ErrNotAuthenticated
	}
	lines := s.cart.Lines()
	if len(lines) == 0 {
		return "", ErrEmptyCart
	}

	s.setStatus(CheckoutInitiating)

	user := s.sessions.CurrentUser()
	items := make([]string, 0, len(lines))
	for _, line := range lines {
		items = append(items, fmt.Sprintf("%s (x%d)", line.ProductName, line.Quantity))
	}
	req := models.InitiatePaymentRequest{
		TxRef:       uuid.NewString(),
		Amount:      s.cart.Total(),
		Currency:    s.currency,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Title:       "Cart Checkout",
		Description: "Payment for items in cart",
		Meta:        models.PaymentMeta{CartItems: items, UserID: user.ID},
	}

	var resp models.InitiatePaymentResponse
	if err := s.api.Post(ctx, "/payments/initiate/", req, &resp); err != nil {
		s.setStatus(CheckoutIdle)
		return "", fmt.Errorf("could not initiate payment: %s", gateway.ServerMessage(err, "payment initiation failed"))
	}
	if resp.Status != "success" || resp.Data.CheckoutURL == "" {
		s.setStatus(CheckoutIdle)
		if resp.Message != "" {
			return "", fmt.Errorf("could not initiate payment: %s", resp.Message)
		}
		return "", fmt.Errorf("could not initiate payment")
	}

	s.setStatus(CheckoutRedirecting)
	if err := s.redirect.Redirect(resp.Data.CheckoutURL); err != nil {
		// The session exists provider-side; the user can still follow the
		// URL manually, so the attempt stays in Redirecting.
		logrus.WithError(err).Warn("Failed to open hosted checkout page")
	}
	return resp.Data.CheckoutURL, nil
}

// HandleReturn consumes the provider's return URL query parameters. A
// missing identifier fails the attempt with zero network calls; otherwise
// the backend confirms and persists the order keyed by the identifier.
func (s *CheckoutService) HandleReturn(ctx context.Context, query url.Values) (string, error) {
	id := query.Get("session_id")
	if id == "" {
		id = query.Get("tx_ref")
	}
	if id == "" {
		s.setStatus(CheckoutFailed)
		return "", ErrMissingIdentifier
	}

	s.setStatus(CheckoutConfirming)

	var resp models.ConfirmOrderResponse
	if err := s.api.Post(ctx, "/confirm-order/", models.ConfirmOrderRequest{SessionID: id}, &resp); err != nil {
		s.setStatus(CheckoutFailed)
		return "", fmt.Errorf("%s", gateway.ServerMessage(err, "order confirmation failed, please contact support"))
	}

	s.setStatus(CheckoutConfirmed)
	detail := resp.Detail
	if detail == "" {
		detail = "Payment confirmed and order saved"
	}
	logrus.WithField("session_id", id).Info("Order confirmed")
	return detail, nil
}

// HandleCancel records a user-cancelled payment. The cart is untouched and
// the attempt returns to Idle so checkout can be retried.
func (s *CheckoutService) HandleCancel() {
	logrus.Info("Payment cancelled by user")
	s.setStatus(CheckoutIdle)
	s.doneOne.Do(func() { close(s.done) })
}
