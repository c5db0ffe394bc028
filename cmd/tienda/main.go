// tienda is a CLI storefront for the joyería services. Each command runs
// a single step of the shopping flow, making it composable for scripts.
//
// Commands:
//
//	tienda products
//	tienda order -cliente N -item ID[=QTY] [-item ID[=QTY] ...]
//	tienda invoice -pedido ID
//	tienda config [-products URL -pedidos URL -facturas URL [-format json|xml]]
//	tienda flow -cliente N
//
// Examples:
//
//	tienda products
//	PEDIDO=$(tienda order -cliente 7 -item P-1=2 -item P-2 -q)
//	tienda invoice -pedido "$PEDIDO"
//	tienda config -products http://localhost:5001 -pedidos http://localhost:5002 -facturas http://localhost:5003
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"facturador/internal/endpoint"
	"facturador/internal/invoice"
	"facturador/internal/model"
	"facturador/internal/shop"
)

// Global flags (apply to all commands)
var (
	quiet      bool
	noColor    bool
	verbose    bool
	configPath string
	hostName   string
	assetsURL  string
)

// ANSI color codes
var (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		disableColors()
	}
}

func disableColors() {
	colorReset, colorRed, colorGreen = "", "", ""
	colorYellow, colorCyan, colorGray, colorBold = "", "", "", ""
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "products":
		runProducts(args)
	case "order":
		runOrder(args)
	case "invoice":
		runInvoice(args)
	case "config":
		runConfig(args)
	case "flow":
		runFlow(args)
	case "-h", "-help", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `tienda - joyería storefront client

Usage:
  tienda <command> [options]

Commands:
  products  List the product catalog
  order     Create an order from product IDs and render its invoice
  invoice   Render the invoice of an existing order
  config    Show or save service endpoint overrides
  flow      Run the full demo flow: catalog, cart, order, invoice

Examples:
  # List products
  tienda products

  # Order two of P-1 and one of P-2, capture the order ID
  PEDIDO=$(tienda order -cliente 7 -item P-1=2 -item P-2 -q)

  # Re-render its invoice later
  tienda invoice -pedido "$PEDIDO"

  # Point the client at other services
  tienda config -products http://otro:5001 -pedidos http://otro:5002 -facturas http://otro:5003 -format xml

Run 'tienda <command> -h' for command-specific options.
`)
}

// itemList collects repeated -item flags. Each value is "ID" or "ID=QTY".
type itemList []orderItem

type orderItem struct {
	id  string
	qty int
}

func (l *itemList) String() string {
	parts := make([]string, len(*l))
	for i, it := range *l {
		parts[i] = fmt.Sprintf("%s=%d", it.id, it.qty)
	}
	return strings.Join(parts, ",")
}

func (l *itemList) Set(value string) error {
	id, qtyStr, hasQty := strings.Cut(value, "=")
	if id == "" {
		return fmt.Errorf("empty product ID")
	}
	qty := 1
	if hasQty {
		if _, err := fmt.Sscanf(qtyStr, "%d", &qty); err != nil || qty < 1 {
			return fmt.Errorf("invalid quantity %q", qtyStr)
		}
	}
	*l = append(*l, orderItem{id: id, qty: qty})
	return nil
}

// commonFlags registers the flags every command shares.
func commonFlags(fs *flag.FlagSet) {
	fs.BoolVar(&quiet, "q", false, "Quiet mode - only output the command result")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&verbose, "v", false, "Verbose - debug logging to stderr")
	fs.StringVar(&configPath, "config", "", "Path to endpoints file (default: user config dir)")
	fs.StringVar(&hostName, "host", "", "Hostname for endpoint resolution (default: os.Hostname)")
	fs.StringVar(&assetsURL, "assets", "http://localhost:8080", "Base URL of the asset host serving the invoice stylesheet")
}

func afterParse() {
	if noColor {
		disableColors()
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// resolveEndpoints loads persisted overrides and resolves the session
// configuration against the local hostname.
func resolveEndpoints() (endpoint.Config, *endpoint.Store) {
	path := configPath
	if path == "" {
		var err error
		path, err = endpoint.DefaultPath()
		if err != nil {
			fatal("Cannot locate config dir: %v", err)
		}
	}
	store := endpoint.NewStore(path)

	saved, err := store.Load()
	if err != nil {
		fatal("Cannot read endpoints file: %v", err)
	}

	host := hostName
	if host == "" {
		host, _ = os.Hostname()
	}
	return endpoint.Resolve(host, saved), store
}

func newCoordinator(view shop.View) (*shop.Coordinator, endpoint.Config) {
	cfg, store := resolveEndpoints()
	return shop.New(cfg, store, assetsURL, view, newLogger()), cfg
}

// =============================================================================
// PRODUCTS COMMAND
// =============================================================================

func runProducts(args []string) {
	fs := flag.NewFlagSet("products", flag.ExitOnError)
	commonFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tienda products [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)
	afterParse()

	view := &terminalView{}
	c, cfg := newCoordinator(view)
	printInfo("Catálogo: %s (%s)", cfg.CatalogURL, cfg.Format)

	c.Do(context.Background(), shop.Command{Action: shop.ActionLoadCatalog})
	if view.failed {
		os.Exit(1)
	}
}

// =============================================================================
// ORDER COMMAND
// =============================================================================

func runOrder(args []string) {
	fs := flag.NewFlagSet("order", flag.ExitOnError)
	var clienteID string
	var items itemList
	fs.StringVar(&clienteID, "cliente", "", "Customer ID (required)")
	fs.Var(&items, "item", "Product to order, ID or ID=QTY (repeatable, required)")
	commonFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tienda order -cliente N -item ID[=QTY] [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)
	afterParse()

	if clienteID == "" || len(items) == 0 {
		fs.Usage()
		os.Exit(1)
	}

	view := &terminalView{}
	c, _ := newCoordinator(view)

	c.Do(context.Background(), shop.Command{Action: shop.ActionLoadCatalog})
	if view.failed {
		os.Exit(1)
	}

	for _, it := range items {
		for i := 0; i < it.qty; i++ {
			c.Do(context.Background(), shop.Command{Action: shop.ActionAddToCart, ProductID: it.id})
		}
		if view.failed {
			os.Exit(1)
		}
	}

	c.Do(context.Background(), shop.Command{Action: shop.ActionSubmitOrder, CustomerID: clienteID})
	if view.orderID == "" {
		os.Exit(1)
	}
	if quiet {
		fmt.Println(view.orderID)
	}
	if view.failed {
		// The order exists but the invoice step failed.
		os.Exit(1)
	}
}

// =============================================================================
// INVOICE COMMAND
// =============================================================================

func runInvoice(args []string) {
	fs := flag.NewFlagSet("invoice", flag.ExitOnError)
	var pedidoID string
	fs.StringVar(&pedidoID, "pedido", "", "Order ID (required)")
	commonFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tienda invoice -pedido ID [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)
	afterParse()

	if pedidoID == "" {
		fs.Usage()
		os.Exit(1)
	}

	cfg, _ := resolveEndpoints()
	renderer := invoice.NewRenderer(cfg.InvoiceURL, assetsURL, cfg.Format, newLogger())

	fragment, err := renderer.Render(context.Background(), pedidoID)
	if err != nil {
		fatal("No se pudo generar la factura: %v", err)
	}

	if quiet {
		fmt.Println(fragment)
		return
	}
	printSuccess("Factura generada")
	fmt.Println(fragment)
}

// =============================================================================
// CONFIG COMMAND
// =============================================================================

func runConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	var productsURL, pedidosURL, facturasURL, format string
	fs.StringVar(&productsURL, "products", "", "Catalog service base URL")
	fs.StringVar(&pedidosURL, "pedidos", "", "Order service base URL")
	fs.StringVar(&facturasURL, "facturas", "", "Invoice service base URL")
	fs.StringVar(&format, "format", "", "Wire format: json or xml")
	commonFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tienda config [-products URL -pedidos URL -facturas URL [-format json|xml]]\n\n")
		fmt.Fprintf(os.Stderr, "Without URL flags, shows the configuration in effect.\n")
		fmt.Fprintf(os.Stderr, "Overrides apply as a whole set; all three URLs are required to save.\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)
	afterParse()

	if productsURL == "" && pedidosURL == "" && facturasURL == "" {
		cfg, _ := resolveEndpoints()
		fmt.Printf("  Products: %s%s%s\n", colorCyan, cfg.CatalogURL, colorReset)
		fmt.Printf("  Pedidos:  %s%s%s\n", colorCyan, cfg.OrderURL, colorReset)
		fmt.Printf("  Facturas: %s%s%s\n", colorCyan, cfg.InvoiceURL, colorReset)
		fmt.Printf("  Formato:  %s%s%s\n", colorCyan, cfg.Format, colorReset)
		return
	}

	if productsURL == "" || pedidosURL == "" || facturasURL == "" {
		fmt.Fprintf(os.Stderr, "Error: overrides apply as a whole set, all three URLs are required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	wf := model.WireFormat(format)
	if format == "" {
		wf = model.FormatJSON
	} else if !wf.Valid() {
		fatal("Unknown format: %s (use: json, xml)", format)
	}

	view := &terminalView{}
	c, _ := newCoordinator(view)
	c.Do(context.Background(), shop.Command{
		Action: shop.ActionSaveConfig,
		Endpoints: &endpoint.Config{
			CatalogURL: productsURL,
			OrderURL:   pedidosURL,
			InvoiceURL: facturasURL,
			Format:     wf,
		},
	})
	if view.failed {
		os.Exit(1)
	}
}

// =============================================================================
// FLOW COMMAND
// =============================================================================

// runFlow exercises the whole pipeline against live services: load the
// catalog, put one of the first product in the cart, submit, render the
// invoice.
func runFlow(args []string) {
	fs := flag.NewFlagSet("flow", flag.ExitOnError)
	var clienteID string
	fs.StringVar(&clienteID, "cliente", "1", "Customer ID")
	commonFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tienda flow [-cliente N] [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)
	afterParse()

	view := &terminalView{}
	c, cfg := newCoordinator(view)
	printInfo("Servicios: %s | %s | %s (%s)", cfg.CatalogURL, cfg.OrderURL, cfg.InvoiceURL, cfg.Format)

	c.Do(context.Background(), shop.Command{Action: shop.ActionLoadCatalog})
	if view.failed || len(view.products) == 0 {
		fatal("No products available, cannot run the flow")
	}

	first := view.products[0]
	printInfo("Adding %s to the cart", first.ID)
	c.Do(context.Background(), shop.Command{Action: shop.ActionAddToCart, ProductID: first.ID})

	c.Do(context.Background(), shop.Command{Action: shop.ActionSubmitOrder, CustomerID: clienteID})
	if view.orderID == "" || view.failed {
		os.Exit(1)
	}
}

// =============================================================================
// TERMINAL VIEW
// =============================================================================

// terminalView renders coordinator output to stdout. It remembers the
// last order ID and whether any stage reported an error so commands can
// pick an exit code.
type terminalView struct {
	products []model.Product
	orderID  string
	failed   bool
}

func (v *terminalView) ShowProducts(products []model.Product) {
	v.products = products
	if quiet {
		for _, p := range products {
			fmt.Printf("%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Price.StringFixed(2), p.Stock)
		}
		return
	}
	printSuccess("%d productos", len(products))
	for _, p := range products {
		fmt.Printf("  %s%-8s%s %s%-30s%s $%-10s stock: %s\n",
			colorCyan, p.ID, colorReset, colorBold, p.Name, colorReset, p.Price.StringFixed(2), p.Stock)
		if verbose && p.Description != model.NoDescription {
			fmt.Printf("           %s%s%s\n", colorGray, p.Description, colorReset)
		}
	}
}

func (v *terminalView) ShowEmptyCatalog() {
	printWarning("No hay productos disponibles.")
}

func (v *terminalView) ShowCart(lines []model.CartLine, total decimal.Decimal, canSubmit bool) {
	if quiet {
		return
	}
	if len(lines) == 0 {
		printInfo("Carrito vacío")
		return
	}
	fmt.Printf("  %sCarrito:%s\n", colorYellow, colorReset)
	for _, l := range lines {
		fmt.Printf("    %dx %s ($%s)\n", l.Quantity, l.Name, l.Subtotal().StringFixed(2))
	}
	fmt.Printf("  Total: %s$%s%s\n", colorGreen, total.StringFixed(2), colorReset)
}

func (v *terminalView) ShowOrderCreated(orderID string) {
	v.orderID = orderID
	if quiet {
		return
	}
	printSuccess("Pedido creado")
	fmt.Printf("  ID: %s%s%s\n", colorCyan, orderID, colorReset)
}

func (v *terminalView) ShowInvoice(fragment string) {
	if quiet {
		return
	}
	printSuccess("Factura")
	fmt.Println(fragment)
}

func (v *terminalView) ShowError(stage string, err error) {
	v.failed = true
	// ClientError messages already carry their stage prefix.
	printError("%v", err)
}

func (v *terminalView) ShowInfo(msg string) {
	printInfo("%s", msg)
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

func printSuccess(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf("%s✓ %s%s\n", colorGreen, fmt.Sprintf(format, args...), colorReset)
	}
}

func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
}

func printWarning(format string, args ...interface{}) {
	fmt.Printf("%s⚠ %s%s\n", colorYellow, fmt.Sprintf(format, args...), colorReset)
}

func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf("%s→ %s%s\n", colorGray, fmt.Sprintf(format, args...), colorReset)
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
	os.Exit(1)
}
