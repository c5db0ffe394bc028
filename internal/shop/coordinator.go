// Package shop hosts the coordinator that drives the storefront flow:
// endpoint resolution, catalog loading, cart mutations, order submission
// and invoice rendering. All state lives on the coordinator; there are
// no package-level variables.
package shop

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"facturador/internal/cart"
	"facturador/internal/catalog"
	"facturador/internal/endpoint"
	"facturador/internal/invoice"
	"facturador/internal/model"
	"facturador/internal/order"
)

// Action identifies a user-initiated operation. The original page
// dispatched on CSS classes of clicked elements; here dispatch is an
// explicit enum decoupled from presentation.
type Action int

const (
	ActionLoadCatalog Action = iota
	ActionAddToCart
	ActionRemoveFromCart
	ActionSubmitOrder
	ActionSaveConfig
)

// Command is one dispatched action with its payload. Only the fields the
// action reads need to be set.
type Command struct {
	Action     Action
	ProductID  string           // add/remove
	CustomerID string           // submit
	Endpoints  *endpoint.Config // save-config
}

// View receives everything the coordinator wants shown. Implementations
// are synchronous; the coordinator calls them from its single event
// loop, immediately after each state change, so derived values like the
// total are never displayed stale.
type View interface {
	ShowProducts(products []model.Product)
	ShowEmptyCatalog()
	ShowCart(lines []model.CartLine, total decimal.Decimal, canSubmit bool)
	ShowOrderCreated(orderID string)
	ShowInvoice(fragment string)
	ShowError(stage string, err error)
	ShowInfo(msg string)
}

// Stage clients, narrowed to what the coordinator calls so tests can
// substitute fakes.
type (
	catalogLoader interface {
		Load(ctx context.Context) ([]model.Product, error)
	}
	orderSubmitter interface {
		Submit(ctx context.Context, customerID string, lines []model.CartLine) (model.OrderResult, error)
	}
	invoiceRenderer interface {
		Render(ctx context.Context, orderID string) (string, error)
	}
)

// Coordinator owns the session state and the stage pipeline. It is not
// safe for concurrent use; callers drive it from one goroutine, matching
// the single event loop of the page it replaces.
type Coordinator struct {
	endpoints endpoint.Config
	store     *endpoint.Store
	assetURL  string
	cart      *cart.Cart
	view      View
	logger    *slog.Logger

	catalog  catalogLoader
	orders   orderSubmitter
	invoices invoiceRenderer

	// buildClients constructs the stage clients for a configuration.
	// Tests substitute fakes here.
	buildClients func(endpoint.Config) (catalogLoader, orderSubmitter, invoiceRenderer)

	// products caches the last loaded catalog by ID so an add action
	// needs no further fetch; each rendered card already carried its data.
	products map[string]model.Product
}

// New creates a coordinator wired to the real service clients. assetURL
// is the page origin serving the invoice stylesheet.
func New(endpoints endpoint.Config, store *endpoint.Store, assetURL string, view View, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coordinator{
		endpoints: endpoints,
		store:     store,
		assetURL:  assetURL,
		cart:      cart.New(),
		view:      view,
		logger:    logger,
		products:  make(map[string]model.Product),
	}
	c.buildClients = c.realClients
	c.rebuildClients()
	return c
}

func (c *Coordinator) realClients(cfg endpoint.Config) (catalogLoader, orderSubmitter, invoiceRenderer) {
	return catalog.New(cfg.CatalogURL, c.logger),
		order.NewSubmitter(cfg.OrderURL, cfg.Format, c.logger),
		invoice.NewRenderer(cfg.InvoiceURL, c.assetURL, cfg.Format, c.logger)
}

// rebuildClients points the stage clients at the current endpoints.
// Called at construction and after a config save.
func (c *Coordinator) rebuildClients() {
	c.catalog, c.orders, c.invoices = c.buildClients(c.endpoints)
}

// Endpoints returns the configuration in effect for this session.
func (c *Coordinator) Endpoints() endpoint.Config {
	return c.endpoints
}

// Do dispatches a command. Every stage catches its own failure and
// routes it to the view; Do never returns an error and never panics.
func (c *Coordinator) Do(ctx context.Context, cmd Command) {
	switch cmd.Action {
	case ActionLoadCatalog:
		c.loadCatalog(ctx)
	case ActionAddToCart:
		c.addToCart(cmd.ProductID)
	case ActionRemoveFromCart:
		c.removeFromCart(cmd.ProductID)
	case ActionSubmitOrder:
		c.submitOrder(ctx, cmd.CustomerID)
	case ActionSaveConfig:
		c.saveConfig(ctx, cmd.Endpoints)
	default:
		c.view.ShowError("acción", fmt.Errorf("acción desconocida: %d", cmd.Action))
	}
}

func (c *Coordinator) loadCatalog(ctx context.Context) {
	products, err := c.catalog.Load(ctx)
	if err != nil {
		c.view.ShowError("catálogo", err)
		return
	}
	if len(products) == 0 {
		// Distinct from the error state: the service answered, there is
		// just nothing to sell.
		c.view.ShowEmptyCatalog()
		return
	}

	c.products = make(map[string]model.Product, len(products))
	for _, p := range products {
		c.products[p.ID] = p
	}
	c.view.ShowProducts(products)
}

func (c *Coordinator) addToCart(productID string) {
	p, ok := c.products[productID]
	if !ok {
		c.view.ShowError("carrito", model.NewValidationError("producto", fmt.Sprintf("%q no está en el catálogo", productID)))
		return
	}
	c.cart.Add(p)
	c.renderCart()
}

func (c *Coordinator) removeFromCart(productID string) {
	c.cart.Remove(productID)
	c.renderCart()
}

// renderCart pushes the cart state to the view. Must follow every
// mutation synchronously; Total is recomputed on each call.
func (c *Coordinator) renderCart() {
	c.view.ShowCart(c.cart.Lines(), c.cart.Total(), !c.cart.IsEmpty())
}

// submitOrder runs the order → invoice pipeline. The submit call fully
// resolves before invoice rendering begins. The cart clears only after
// a confirmed successful submission, and an invoice failure afterwards
// is reported on its own: the order already exists on the server and the
// cart stays cleared.
func (c *Coordinator) submitOrder(ctx context.Context, customerID string) {
	if c.cart.IsEmpty() {
		c.view.ShowError("pedido", model.NewValidationError("items", "el carrito está vacío"))
		return
	}

	runID := uuid.NewString()
	log := c.logger.With(slog.String("run_id", runID))

	result, err := c.orders.Submit(ctx, customerID, c.cart.Lines())
	if err != nil {
		log.Warn("order submission failed", slog.String("error", err.Error()))
		c.view.ShowError("pedido", err)
		return
	}
	log.Info("order created", slog.String("pedido_id", result.OrderID))

	c.cart.Clear()
	c.renderCart()
	c.view.ShowOrderCreated(result.OrderID)

	fragment, err := c.invoices.Render(ctx, result.OrderID)
	if err != nil {
		log.Warn("invoice rendering failed", slog.String("error", err.Error()))
		c.view.ShowError("factura", err)
		return
	}
	c.view.ShowInvoice(fragment)
}

// saveConfig persists the edited endpoints, swaps them in for the live
// session and reloads the catalog against the new catalog URL.
func (c *Coordinator) saveConfig(ctx context.Context, cfg *endpoint.Config) {
	if cfg == nil {
		c.view.ShowError("configuración", model.NewValidationError("endpoints", "faltan las URLs"))
		return
	}
	if err := c.store.Save(*cfg); err != nil {
		c.view.ShowError("configuración", err)
		return
	}

	c.endpoints = *cfg
	if !c.endpoints.Format.Valid() {
		c.endpoints.Format = model.FormatJSON
	}
	c.rebuildClients()
	c.view.ShowInfo("Configuración guardada exitosamente.")
	c.loadCatalog(ctx)
}
