// Package cart holds the session-scoped shopping cart: a pure in-memory
// state store with no I/O. The coordinator owns the only instance and
// mutates it from a single event loop, so there is no locking here.
package cart

import (
	"github.com/shopspring/decimal"

	"facturador/internal/model"
)

// Cart is an ordered collection of lines keyed by product ID. Insertion
// order is first-add order. Created empty at session start, cleared only
// after a confirmed order submission, never persisted.
type Cart struct {
	lines []model.CartLine
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add puts a product in the cart. If a line for the same product already
// exists its quantity is incremented; duplicate lines are never created.
func (c *Cart) Add(p model.Product) {
	for i := range c.lines {
		if c.lines[i].ProductID == p.ID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, model.CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  1,
	})
}

// Remove deletes the line for productID. At most one line can match.
// Removing an unknown product is a no-op.
func (c *Cart) Remove(productID string) {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Lines returns a copy of the current lines in insertion order.
func (c *Cart) Lines() []model.CartLine {
	out := make([]model.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Total sums unit price times quantity over all lines. It is recomputed
// on every call; a cached total would go stale after mutations.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Clear empties the cart. Called only after a confirmed successful order.
func (c *Cart) Clear() {
	c.lines = nil
}
