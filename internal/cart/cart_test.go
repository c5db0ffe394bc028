package cart

import (
	"testing"

	"github.com/shopspring/decimal"

	"facturador/internal/model"
)

func product(id, name, price string) model.Product {
	return model.Product{
		ID:    id,
		Name:  name,
		Price: decimal.RequireFromString(price),
	}
}

func TestAdd_AggregatesQuantity(t *testing.T) {
	c := New()
	c.Add(product("A1", "Anillo", "9.99"))
	c.Add(product("A1", "Anillo", "9.99"))

	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 line after adding the same product twice", c.Len())
	}
	line := c.Lines()[0]
	if line.Quantity != 2 {
		t.Errorf("Quantity = %d, want 2", line.Quantity)
	}
}

func TestAdd_PreservesInsertionOrder(t *testing.T) {
	c := New()
	c.Add(product("B2", "Brazalete", "25.00"))
	c.Add(product("A1", "Anillo", "9.99"))
	c.Add(product("B2", "Brazalete", "25.00"))
	c.Add(product("C3", "Collar", "40.00"))

	got := c.Lines()
	wantOrder := []string{"B2", "A1", "C3"}
	if len(got) != len(wantOrder) {
		t.Fatalf("Len() = %d, want %d", len(got), len(wantOrder))
	}
	for i, id := range wantOrder {
		if got[i].ProductID != id {
			t.Errorf("line %d = %s, want %s (insertion order = first-add order)", i, got[i].ProductID, id)
		}
	}
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name    string
		remove  string
		wantLen int
	}{
		// Remove drops the whole line, not one unit of its quantity.
		{"existing line with quantity 2", "A1", 1},
		{"unknown product is a no-op", "Z9", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			c.Add(product("A1", "Anillo", "9.99"))
			c.Add(product("A1", "Anillo", "9.99"))
			c.Add(product("B2", "Brazalete", "25.00"))

			c.Remove(tt.remove)
			if c.Len() != tt.wantLen {
				t.Errorf("Len() after Remove(%q) = %d, want %d", tt.remove, c.Len(), tt.wantLen)
			}
		})
	}
}

// Total must equal the recomputed sum after any sequence of mutations.
func TestTotal_NeverStale(t *testing.T) {
	c := New()

	type op struct {
		add    string // product id to add, or ""
		remove string // product id to remove, or ""
	}
	prices := map[string]string{"A1": "9.99", "B2": "25.00", "C3": "0.50"}
	seq := []op{
		{add: "A1"}, {add: "A1"}, {add: "B2"},
		{remove: "A1"}, {add: "C3"}, {add: "C3"},
		{remove: "Z9"}, {add: "B2"}, {remove: "C3"},
	}

	for i, o := range seq {
		if o.add != "" {
			c.Add(product(o.add, "p-"+o.add, prices[o.add]))
		}
		if o.remove != "" {
			c.Remove(o.remove)
		}

		want := decimal.Zero
		for _, l := range c.Lines() {
			want = want.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
		if got := c.Total(); !got.Equal(want) {
			t.Fatalf("after op %d: Total() = %s, want recomputed %s", i, got, want)
		}
	}
}

func TestClear(t *testing.T) {
	c := New()
	c.Add(product("A1", "Anillo", "9.99"))
	c.Add(product("B2", "Brazalete", "25.00"))

	c.Clear()

	if !c.IsEmpty() {
		t.Error("IsEmpty() = false after Clear()")
	}
	if got := c.Total(); !got.Equal(decimal.Zero) {
		t.Errorf("Total() after Clear() = %s, want 0", got)
	}
}

func TestLines_ReturnsCopy(t *testing.T) {
	c := New()
	c.Add(product("A1", "Anillo", "9.99"))

	lines := c.Lines()
	lines[0].Quantity = 99

	if c.Lines()[0].Quantity != 1 {
		t.Error("mutating the returned slice changed cart state")
	}
}
