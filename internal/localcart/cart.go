// Package localcart holds the guest cart and the session that a client keeps
// on its own machine, together with the storage they are persisted in.
package localcart

import (
	"github.com/example/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// Status describes the last load of the cart
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Cart is the client-side cart snapshot
type Cart struct {
	Items  []domain.CartLine `json:"items"`
	Status Status            `json:"status"`
	// Mirror marks a snapshot of the server cart written when a sync failed.
	// A mirror is never replayed onto the server.
	Mirror bool `json:"mirror,omitempty"`
}

// NewCart returns an empty idle cart
func NewCart() *Cart {
	return &Cart{Items: []domain.CartLine{}, Status: StatusIdle}
}

// Clone returns a deep copy
func (c *Cart) Clone() *Cart {
	items := make([]domain.CartLine, len(c.Items))
	copy(items, c.Items)
	return &Cart{Items: items, Status: c.Status, Mirror: c.Mirror}
}

func (c *Cart) indexOf(productID int64) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add puts one unit of the product in the cart and returns its new quantity
func (c *Cart) Add(p domain.Product) int {
	if i := c.indexOf(p.ID); i >= 0 {
		c.Items[i].Quantity++
		return c.Items[i].Quantity
	}
	c.Items = append(c.Items, domain.CartLine{
		ProductID: p.ID,
		Title:     p.Title,
		Price:     p.Price,
		ImageURL:  p.ImageURL,
		Quantity:  1,
	})
	return 1
}

// AddUnits adds quantity units of an existing line shape, appending it when absent
func (c *Cart) AddUnits(line domain.CartLine, quantity int) {
	if quantity <= 0 {
		return
	}
	if i := c.indexOf(line.ProductID); i >= 0 {
		c.Items[i].Quantity += quantity
		return
	}
	line.Quantity = quantity
	c.Items = append(c.Items, line)
}

// Set forces the quantity of a line to the server's value; zero or less removes it
func (c *Cart) Set(line domain.CartLine, quantity int) {
	if quantity <= 0 {
		c.Remove(line.ProductID)
		return
	}
	if i := c.indexOf(line.ProductID); i >= 0 {
		c.Items[i].Quantity = quantity
		return
	}
	line.Quantity = quantity
	c.Items = append(c.Items, line)
}

// Decrement removes one unit; a line reaching zero is deleted.
// ok is false when the product is not in the cart.
func (c *Cart) Decrement(productID int64) (res domain.DecrementResult, ok bool) {
	i := c.indexOf(productID)
	if i < 0 {
		return domain.DecrementResult{}, false
	}
	if c.Items[i].Quantity <= 1 {
		c.Items = append(c.Items[:i:i], c.Items[i+1:]...)
		return domain.DecrementResult{Removed: true}, true
	}
	c.Items[i].Quantity--
	return domain.DecrementResult{NewQuantity: c.Items[i].Quantity}, true
}

// Remove deletes the line of the product if present
func (c *Cart) Remove(productID int64) {
	if i := c.indexOf(productID); i >= 0 {
		c.Items = append(c.Items[:i:i], c.Items[i+1:]...)
	}
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = []domain.CartLine{}
}

// Quantity returns the quantity of a product, zero when absent
func (c *Cart) Quantity(productID int64) int {
	if i := c.indexOf(productID); i >= 0 {
		return c.Items[i].Quantity
	}
	return 0
}

// Units is the total number of units across all lines
func (c *Cart) Units() int {
	n := 0
	for _, l := range c.Items {
		n += l.Quantity
	}
	return n
}

// Total is Σ price × quantity
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Items {
		total = total.Add(l.Subtotal())
	}
	return total
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
