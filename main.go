package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"malonda/internal/callback"
	"malonda/internal/config"
	"malonda/internal/gateway"
	"malonda/internal/models"
	"malonda/internal/repositories"
	"malonda/internal/services"
	"malonda/internal/session"
)

// app bundles the wired services behind the CLI commands.
type app struct {
	cfg      config.Config
	out      io.Writer
	sessions *session.Store
	client   *gateway.Client

	auth      *services.AuthService
	cart      *services.CartService
	catalog   *services.CatalogService
	wishlist  *services.WishlistService
	orders    *services.OrderService
	dashboard *services.DashboardService
	checkout  *services.CheckoutService

	close func() error
}

// newApp wires the full service stack: durable state, session store, API
// gateway and the services on top of it.
func newApp(cfg config.Config, out io.Writer) (*app, error) {
	db, err := repositories.OpenStateDB(cfg.StateDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	sessions := session.NewStore(repositories.NewGORMStateRepository(db))
	client := gateway.NewClient(cfg.APIBaseURL, sessions, cfg.HTTPTimeout)

	// A 401 from any call means the token pair is no longer usable: drop
	// the session once and ask the user to log in again. Login re-arms
	// the signal for the next expiry.
	client.OnUnauthorized(func() {
		sessions.Logout()
		logrus.Warn("Session expired, please log in again")
	})
	onLogin := client.ResetUnauthorized

	a := &app{
		cfg:      cfg,
		out:      out,
		sessions: sessions,
		client:   client,
	}
	a.auth = services.NewAuthService(client, sessions, onLogin)
	a.cart = services.NewCartService(client, stdinConfirmer{})
	a.catalog = services.NewCatalogService(client, sessions)
	a.wishlist = services.NewWishlistService(client)
	a.orders = services.NewOrderService(client)
	a.dashboard = services.NewDashboardService(client, sessions)
	a.checkout = services.NewCheckoutService(client, sessions, a.cart, services.RedirectorFunc(func(checkoutURL string) error {
		fmt.Fprintf(out, "Complete your payment at:\n\n  %s\n\n", checkoutURL)
		return nil
	}), cfg.Currency)

	a.close = func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return a, nil
}

// stdinConfirmer asks for a y/N answer on the terminal.
type stdinConfirmer struct{}

func (stdinConfirmer) Confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := newCLIApp().Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

// newCLIApp declares the command tree. Configuration is read per invocation
// so tests can point commands at a stub backend via the environment.
func newCLIApp() *cli.App {
	return &cli.App{
		Name:  "malonda",
		Usage: "Storefront client: browse the catalog, manage your cart and check out",
		Commands: []*cli.Command{
			{Name: "register", Usage: "Create an account", Flags: []cli.Flag{
				&cli.StringFlag{Name: "email", Required: true},
				&cli.StringFlag{Name: "password", Required: true},
				&cli.StringFlag{Name: "first-name", Required: true},
				&cli.StringFlag{Name: "last-name", Required: true},
			}, Action: withApp(runRegister)},
			{Name: "login", Usage: "Log in to the storefront", Flags: []cli.Flag{
				&cli.StringFlag{Name: "email", Usage: "Defaults to the remembered email"},
				&cli.StringFlag{Name: "password", Required: true},
				&cli.BoolFlag{Name: "remember", Usage: "Remember the email for next time"},
			}, Action: withApp(runLogin)},
			{Name: "logout", Usage: "Log out and clear the local session", Action: withApp(runLogout)},
			{Name: "whoami", Usage: "Show the current session", Action: withApp(runWhoami)},
			{Name: "categories", Usage: "List categories", Action: withApp(runCategories)},
			{Name: "products", Usage: "List products", Action: withApp(runProducts)},
			{Name: "product", Usage: "Product operations", Subcommands: []*cli.Command{
				{Name: "show", Usage: "Show one product", ArgsUsage: "<id>", Action: withApp(runProductShow)},
				{Name: "create", Usage: "Create a product (manager only)", Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "description"},
					&cli.Float64Flag{Name: "price", Required: true},
					&cli.IntFlag{Name: "stock"},
					&cli.IntFlag{Name: "category", Required: true},
					&cli.StringFlag{Name: "image", Usage: "Path to a product image"},
				}, Action: withApp(runProductCreate)},
			}},
			{Name: "category", Usage: "Category operations", Subcommands: []*cli.Command{
				{Name: "create", Usage: "Create a category (manager only)", Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "description"},
				}, Action: withApp(runCategoryCreate)},
			}},
			{Name: "cart", Usage: "Cart operations", Subcommands: []*cli.Command{
				{Name: "show", Usage: "Show the cart with pricing", Action: withApp(runCartShow)},
				{Name: "add", Usage: "Add a product", ArgsUsage: "<product-id>", Flags: []cli.Flag{
					&cli.IntFlag{Name: "qty", Value: 1},
				}, Action: withApp(runCartAdd)},
				{Name: "qty", Usage: "Set a line's quantity", ArgsUsage: "<line-id> <quantity>", Action: withApp(runCartQty)},
				{Name: "rm", Usage: "Remove a line", ArgsUsage: "<line-id>", Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Usage: "Skip the confirmation prompt"},
				}, Action: withApp(runCartRemove)},
				{Name: "discount", Usage: "Discount codes", Subcommands: []*cli.Command{
					{Name: "apply", ArgsUsage: "<code>", Action: withApp(runDiscountApply)},
					{Name: "remove", Action: withApp(runDiscountRemove)},
				}},
			}},
			{Name: "wishlist", Usage: "Wishlist operations", Subcommands: []*cli.Command{
				{Name: "show", Usage: "List saved products", Action: withApp(runWishlistShow)},
				{Name: "add", ArgsUsage: "<product-id>", Action: withApp(runWishlistAdd)},
				{Name: "rm", ArgsUsage: "<item-id>", Action: withApp(runWishlistRemove)},
				{Name: "order", Usage: "Order a saved product directly", ArgsUsage: "<product-id>", Action: withApp(runWishlistOrder)},
			}},
			{Name: "orders", Usage: "Show the order history", Action: withApp(runOrders)},
			{Name: "dashboard", Usage: "Show the manager dashboard", Action: withApp(runDashboard)},
			{Name: "checkout", Usage: "Pay for the cart via the hosted checkout", Action: withApp(runCheckout)},
		},
	}
}

// withApp wires the service stack around a command action and tears it down
// afterwards.
func withApp(action func(*cli.Context, *app) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		a, err := newApp(config.Load(), c.App.Writer)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.close(); cerr != nil {
				logrus.WithError(cerr).Warn("Failed to close state database")
			}
		}()
		return action(c, a)
	}
}

func runRegister(c *cli.Context, a *app) error {
	user, err := a.auth.Register(c.Context, models.RegisterRequest{
		Email:     c.String("email"),
		Password:  c.String("password"),
		FirstName: c.String("first-name"),
		LastName:  c.String("last-name"),
	})
	if err != nil {
		if apiErr, ok := gateway.AsAPIError(err); ok && len(apiErr.Fields) > 0 {
			return fmt.Errorf("registration failed:\n%s", apiErr.Error())
		}
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s! You are now logged in.\n", user.FullName())
	return nil
}

func runLogin(c *cli.Context, a *app) error {
	email := c.String("email")
	if email == "" {
		email = a.sessions.RememberedEmail()
	}
	if email == "" {
		return fmt.Errorf("no email given and none remembered; use --email")
	}

	user, err := a.auth.Login(c.Context, email, c.String("password"), c.Bool("remember"))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", user.FullName(), user.Role)
	return nil
}

func runLogout(c *cli.Context, a *app) error {
	a.auth.Logout(c.Context)
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func runWhoami(c *cli.Context, a *app) error {
	user := a.sessions.CurrentUser()
	if user == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s> role=%s\n", user.FullName(), user.Email, user.Role)
	if expiry, ok := a.sessions.TokenExpiry(); ok {
		fmt.Fprintf(a.out, "Access token expires %s\n", expiry.Format(time.RFC1123))
	}
	return nil
}

func runCategories(c *cli.Context, a *app) error {
	categories, err := a.catalog.Categories(c.Context)
	if err != nil {
		return err
	}
	for _, category := range categories {
		fmt.Fprintf(a.out, "%4d  %s\n", category.ID, category.Name)
	}
	return nil
}

func runProducts(c *cli.Context, a *app) error {
	products, err := a.catalog.Products(c.Context)
	if err != nil {
		return err
	}
	for _, p := range products {
		category := "-"
		if p.Category != nil {
			category = p.Category.Name
		}
		fmt.Fprintf(a.out, "%4d  %-30s %10.2f  stock=%-4d %s\n",
			p.ID, p.Name, p.Price.Float64(), p.StockQuantity, category)
	}
	return nil
}

func runProductShow(c *cli.Context, a *app) error {
	id, err := intArg(c, 0, "product id")
	if err != nil {
		return err
	}
	p, err := a.catalog.Product(c.Context, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(a.out, "%s\n", p.Description)
	}
	fmt.Fprintf(a.out, "Price: %.2f %s\nIn stock: %d\n", p.Price.Float64(), a.cfg.Currency, p.StockQuantity)
	return nil
}

func runProductCreate(c *cli.Context, a *app) error {
	product, err := a.catalog.CreateProduct(c.Context, models.NewProduct{
		Name:          c.String("name"),
		Description:   c.String("description"),
		Price:         c.Float64("price"),
		StockQuantity: c.Int("stock"),
		CategoryID:    c.Int("category"),
		ImagePath:     c.String("image"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created product %d: %s\n", product.ID, product.Name)
	return nil
}

func runCategoryCreate(c *cli.Context, a *app) error {
	category, err := a.catalog.CreateCategory(c.Context, models.NewCategory{
		Name:        c.String("name"),
		Description: c.String("description"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created category %d: %s\n", category.ID, category.Name)
	return nil
}

func runCartShow(c *cli.Context, a *app) error {
	lines, err := a.cart.FetchCart(c.Context)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		fmt.Fprintln(a.out, "Your cart is empty.")
		return nil
	}
	for _, line := range lines {
		fmt.Fprintf(a.out, "%4d  %-30s %8.2f x %-3d = %10.2f\n",
			line.ID, line.ProductName, line.ProductPrice.Float64(), line.Quantity, line.LineTotal())
	}
	fmt.Fprintf(a.out, "\nSubtotal: %10.2f\n", a.cart.Subtotal())
	if discount := a.cart.Discount(); discount.Applied {
		fmt.Fprintf(a.out, "Discount: %10.2f (%s)\n", discount.Amount, discount.Code)
	}
	fmt.Fprintf(a.out, "Total:    %10.2f %s\n", a.cart.Total(), a.cfg.Currency)
	return nil
}

func runCartAdd(c *cli.Context, a *app) error {
	productID, err := intArg(c, 0, "product id")
	if err != nil {
		return err
	}
	if err := a.cart.AddLine(c.Context, productID, c.Int("qty")); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Added to cart.")
	return nil
}

func runCartQty(c *cli.Context, a *app) error {
	lineID, err := intArg(c, 0, "line id")
	if err != nil {
		return err
	}
	quantity, err := intArg(c, 1, "quantity")
	if err != nil {
		return err
	}
	if err := a.cart.SetQuantity(c.Context, lineID, quantity); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Quantity updated.")
	return nil
}

func runCartRemove(c *cli.Context, a *app) error {
	lineID, err := intArg(c, 0, "line id")
	if err != nil {
		return err
	}
	cart := a.cart
	if c.Bool("yes") {
		cart = services.NewCartService(a.client, services.ConfirmerFunc(func(string) bool { return true }))
	}
	if err := cart.RemoveLine(c.Context, lineID); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Removed from cart.")
	return nil
}

func runDiscountApply(c *cli.Context, a *app) error {
	amount, err := a.cart.ApplyDiscount(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Discount applied: -%.2f\n", amount)
	return nil
}

func runDiscountRemove(c *cli.Context, a *app) error {
	if err := a.cart.RemoveDiscount(c.Context); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Discount removed.")
	return nil
}

func runWishlistShow(c *cli.Context, a *app) error {
	items, err := a.wishlist.Wishlist(c.Context)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "Your wishlist is empty.")
		return nil
	}
	for _, item := range items {
		fmt.Fprintf(a.out, "%4d  %s (product %d)\n", item.ID, item.ProductName, item.ProductID)
	}
	return nil
}

func runWishlistAdd(c *cli.Context, a *app) error {
	productID, err := intArg(c, 0, "product id")
	if err != nil {
		return err
	}
	if err := a.wishlist.Add(c.Context, productID); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Added to wishlist.")
	return nil
}

func runWishlistRemove(c *cli.Context, a *app) error {
	itemID, err := intArg(c, 0, "item id")
	if err != nil {
		return err
	}
	if err := a.wishlist.Remove(c.Context, itemID); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Removed from wishlist.")
	return nil
}

func runWishlistOrder(c *cli.Context, a *app) error {
	productID, err := intArg(c, 0, "product id")
	if err != nil {
		return err
	}
	if err := a.wishlist.OrderProduct(c.Context, productID); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Order placed.")
	return nil
}

func runOrders(c *cli.Context, a *app) error {
	orders, err := a.orders.Orders(c.Context)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Fprintln(a.out, "No orders yet.")
		return nil
	}
	for _, order := range orders {
		status := order.StatusDisplay
		if status == "" {
			status = order.Status
		}
		fmt.Fprintf(a.out, "Order #%d  %s  %10.2f  %s\n",
			order.ID, order.CreatedAt.Format("2006-01-02"), order.TotalPrice.Float64(), status)
		for _, item := range order.Items {
			fmt.Fprintf(a.out, "    %s x %d\n", item.ProductName, item.Quantity)
		}
	}
	return nil
}

func runDashboard(c *cli.Context, a *app) error {
	stats, err := a.dashboard.Stats(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Products: %d  Categories: %d  Orders: %d  Customers: %d\n",
		stats.TotalProducts, stats.TotalCategories, stats.TotalOrders, stats.TotalCustomers)
	fmt.Fprintf(a.out, "Total sales: %.2f %s\n", stats.TotalSales, a.cfg.Currency)
	if len(stats.TopProducts) > 0 {
		fmt.Fprintln(a.out, "\nTop products:")
		for _, p := range stats.TopProducts {
			fmt.Fprintf(a.out, "  %-30s sales=%-5d revenue=%.2f\n", p.Name, p.Sales, p.Revenue)
		}
	}
	if len(stats.RecentOrders) > 0 {
		fmt.Fprintln(a.out, "\nRecent orders:")
		for _, o := range stats.RecentOrders {
			fmt.Fprintf(a.out, "  #%-5d %-20s %10.2f  %s\n", o.ID, o.Customer, o.TotalPrice.Float64(), o.Status)
		}
	}
	return nil
}

// runCheckout drives the full payment flow: load the cart, create the
// hosted payment session, then serve the return URL locally until the
// provider redirects back or the user interrupts.
func runCheckout(c *cli.Context, a *app) error {
	if _, err := a.cart.FetchCart(c.Context); err != nil {
		return err
	}

	if _, err := a.checkout.Initiate(c.Context); err != nil {
		return err
	}

	server := callback.New(a.checkout, a.orders, a.cfg.ConfirmationDelay)
	go func() {
		if err := server.Listen(a.cfg.CallbackAddr); err != nil {
			logrus.WithError(err).Error("Callback listener failed")
		}
	}()
	fmt.Fprintf(a.out, "Waiting for the payment result on %s (Ctrl-C to abort)...\n", a.cfg.CallbackAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-a.checkout.Done():
	case <-quit:
		fmt.Fprintln(a.out, "\nAborted. The payment session may still be open provider-side.")
	}

	if err := server.Shutdown(); err != nil {
		logrus.WithError(err).Warn("Error during callback listener shutdown")
	}

	if a.checkout.Status() == services.CheckoutConfirmed {
		fmt.Fprintln(a.out, "Payment confirmed. Thank you for your order!")
		return runOrders(c, a)
	}
	return nil
}

func intArg(c *cli.Context, index int, name string) (int, error) {
	raw := c.Args().Get(index)
	if raw == "" {
		return 0, fmt.Errorf("missing %s argument", name)
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	return value, nil
}
