package store

import (
	"fmt"
	"sync"

	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/pricing"
)

// Cart holds at most one line per product id, in the order products were first added.
type Cart struct {
	mu       sync.RWMutex
	lines    []models.CartLine
	subs     subscribers
	notifier notify.Notifier
}

// NewCart creates an empty cart reporting to notifier.
func NewCart(notifier notify.Notifier) *Cart {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Cart{notifier: notifier}
}

// Add puts quantity units of product into the cart, merging with an existing line.
// Non-positive quantities are ignored so every line keeps a quantity of at least one.
func (c *Cart) Add(product models.Product, quantity int) {
	if quantity < 1 {
		return
	}

	c.mu.Lock()
	merged := false
	for i := range c.lines {
		if c.lines[i].Product.ID == product.ID {
			c.lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		c.lines = append(c.lines, models.CartLine{Product: product.Clone(), Quantity: quantity})
	}
	c.mu.Unlock()

	c.notifier.Notify(notify.Info("Added to cart", fmt.Sprintf("%s x%d added to your cart.", product.Name, quantity)))
	c.subs.notify()
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less removes the line;
// an unknown product id is a no-op.
func (c *Cart) UpdateQuantity(productID, quantity int) {
	c.mu.Lock()
	changed := false
	for i := range c.lines {
		if c.lines[i].Product.ID != productID {
			continue
		}
		if quantity <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		} else {
			c.lines[i].Quantity = quantity
		}
		changed = true
		break
	}
	c.mu.Unlock()

	if changed {
		c.subs.notify()
	}
}

// Remove deletes the line for productID if present.
func (c *Cart) Remove(productID int) {
	c.UpdateQuantity(productID, 0)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()
	c.subs.notify()
}

// Lines returns a copy of the cart lines.
func (c *Cart) Lines() []models.CartLine {
	c.mu.RLock()
	defer c.mu.RUnlock()
	lines := make([]models.CartLine, len(c.lines))
	for i, l := range c.lines {
		lines[i] = models.CartLine{Product: l.Product.Clone(), Quantity: l.Quantity}
	}
	return lines
}

// Line returns the line for productID.
func (c *Cart) Line(productID int) (models.CartLine, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, l := range c.lines {
		if l.Product.ID == productID {
			return l, true
		}
	}
	return models.CartLine{}, false
}

// ItemCount is the sum of quantities over all lines.
func (c *Cart) ItemCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lines) == 0
}

// Summary prices the current contents.
func (c *Cart) Summary() pricing.Summary {
	return pricing.Calculate(c.Lines())
}

// Subscribe registers fn to run after every mutation.
func (c *Cart) Subscribe(fn func()) (unsubscribe func()) {
	return c.subs.add(fn)
}
