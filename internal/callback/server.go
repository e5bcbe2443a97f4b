package callback

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"

	"malonda/internal/services"
)

// Server receives the payment provider's return redirect. It is the local
// stand-in for the browser's payment-success and payment-cancel views: the
// provider sends the user back here with a session or transaction identifier
// in the query string, and the success handler drives the checkout
// confirmation.
type Server struct {
	app          *fiber.App
	checkout     *services.CheckoutService
	orders       *services.OrderService
	displayDelay time.Duration
}

// New creates the callback server. displayDelay is how long the success
// result stays on screen before moving on to the orders view.
func New(checkout *services.CheckoutService, orders *services.OrderService, displayDelay time.Duration) *Server {
	s := &Server{
		app:          fiber.New(fiber.Config{DisableStartupMessage: true}),
		checkout:     checkout,
		orders:       orders,
		displayDelay: displayDelay,
	}

	s.app.Use(logger.New())
	s.app.Get("/payment/success", s.HandleSuccess)
	s.app.Get("/payment/cancel", s.HandleCancel)
	return s
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until Shutdown is called.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// HandleSuccess confirms the order keyed by the identifier in the return
// URL. Reaching it twice with the same identifier is safe; the backend
// confirmation is idempotent.
func (s *Server) HandleSuccess(c *fiber.Ctx) error {
	query := url.Values{}
	for key, value := range c.Queries() {
		query.Set(key, value)
	}

	detail, err := s.checkout.HandleReturn(c.UserContext(), query)
	if err != nil {
		if errors.Is(err, services.ErrMissingIdentifier) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Missing session ID in URL.",
			})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "Order confirmation failed. Please contact support.",
			"error":   err.Error(),
		})
	}

	// The browser flow shows the confirmation, then moves to the orders
	// view after a fixed delay. Here that is a delayed order listing.
	go s.showOrdersAfterDelay()

	return c.JSON(fiber.Map{
		"message": detail,
	})
}

func (s *Server) showOrdersAfterDelay() {
	time.Sleep(s.displayDelay)
	orders, err := s.orders.Orders(context.Background())
	if err != nil {
		logrus.WithError(err).Warn("Could not load orders after confirmation")
		return
	}
	logrus.WithField("orders", len(orders)).Info("Order history updated")
}

// HandleCancel is purely informational: the payment was abandoned at the
// provider and the cart is untouched.
func (s *Server) HandleCancel(c *fiber.Ctx) error {
	s.checkout.HandleCancel()
	return c.JSON(fiber.Map{
		"message": "Payment cancelled. Your cart has not been changed.",
	})
}
