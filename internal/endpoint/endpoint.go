// Package endpoint resolves and persists the base URLs of the three
// backend services. Resolution never touches the network: persisted user
// overrides win, then a hostname heuristic picks between in-network
// service names and localhost ports.
package endpoint

import "facturador/internal/model"

// Default service ports for a frontend running outside the compose
// network, one per service.
const (
	DefaultCatalogURL = "http://localhost:5001"
	DefaultOrderURL   = "http://localhost:5002"
	DefaultInvoiceURL = "http://localhost:5003"
)

// Service-name URLs used when the page itself runs inside the compose
// network (every service listens on its own default port there).
const (
	internalCatalogURL = "http://products:5000"
	internalOrderURL   = "http://pedidos:5000"
	internalInvoiceURL = "http://facturas:5000"
)

// internalHostMarker identifies hosts inside the compose network; the
// deployment names every container with the project prefix.
const internalHostMarker = "joyeria"

// Config holds the resolved base URLs for the three backend services and
// the wire format they expect. Computed once at startup, optionally
// replaced by user-entered values, held for the session.
type Config struct {
	CatalogURL string
	OrderURL   string
	InvoiceURL string
	Format     model.WireFormat
}

// Complete reports whether all three URLs are set. Overrides only apply
// as a whole set; a partial set falls through to host-based resolution.
func (c Config) Complete() bool {
	return c.CatalogURL != "" && c.OrderURL != "" && c.InvoiceURL != ""
}
