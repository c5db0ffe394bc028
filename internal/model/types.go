// Package model defines the domain types shared by the factura client:
// catalog products, cart lines, orders and the error taxonomy of the
// pipeline stages.
package model

import "github.com/shopspring/decimal"

// WireFormat selects how the order and invoice services are spoken to.
// The two backend deployments differ only in body encoding; the client
// treats them as configuration profiles of the same flow.
type WireFormat string

const (
	FormatJSON WireFormat = "json"
	FormatXML  WireFormat = "xml"
)

// Valid reports whether f names a known wire format.
func (f WireFormat) Valid() bool {
	return f == FormatJSON || f == FormatXML
}

// Placeholder text for optional catalog fields, matching what the
// storefront has always displayed.
const (
	StockUnknown  = "N/A"
	NoDescription = "Sin descripción"
)

// Product is one entry of the catalog listing. ID, Name and a parseable
// Price are mandatory; rows missing any of them never reach this type.
type Product struct {
	ID          string
	Name        string
	Price       decimal.Decimal
	Stock       string
	Description string
}

// CartLine is one product in the cart with its aggregated quantity.
// Lines are unique per ProductID; adding the same product again bumps
// Quantity instead of appending a duplicate.
type CartLine struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Subtotal returns UnitPrice multiplied by Quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderItem is one line of an order payload: the product and how many.
type OrderItem struct {
	ProductID string
	Quantity  int
}

// Order is the request payload for the order service.
type Order struct {
	CustomerID int
	Items      []OrderItem
}

// OrderResult carries the server-assigned order identifier. The format of
// the identifier is opaque to the client.
type OrderResult struct {
	OrderID string
}
