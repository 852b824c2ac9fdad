package store

import (
	"fmt"
	"sync"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/notify"
)

// MaxCompare is the size of the compare set.
const MaxCompare = 4

const (
	ErrMsgCompareFull      = "Compare limit reached"
	ErrMsgAlreadyInCompare = "Already in compare"
)

// Compare is a bounded, insertion-ordered set of products.
type Compare struct {
	mu       sync.RWMutex
	entries  []models.CompareEntry
	subs     subscribers
	notifier notify.Notifier
}

// NewCompare creates an empty compare set reporting to notifier.
func NewCompare(notifier notify.Notifier) *Compare {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Compare{notifier: notifier}
}

// Add appends product. It is rejected with a capacity error when the set is full and with
// a duplicate error when the product is already present; a rejection changes nothing.
func (c *Compare) Add(product models.Product) error {
	c.mu.Lock()
	if len(c.entries) >= MaxCompare {
		c.mu.Unlock()
		c.notifier.Notify(notify.Failure(ErrMsgCompareFull,
			fmt.Sprintf("You can compare up to %d products at a time. Please remove a product before adding another.", MaxCompare)))
		return apperr.Capacity(ErrMsgCompareFull)
	}
	if c.indexLocked(product.ID) >= 0 {
		c.mu.Unlock()
		c.notifier.Notify(notify.Info(ErrMsgAlreadyInCompare,
			fmt.Sprintf("%s is already in your compare list.", product.Name)))
		return apperr.Duplicate(ErrMsgAlreadyInCompare)
	}
	c.entries = append(c.entries, models.CompareEntry{Product: product.Clone()})
	c.mu.Unlock()

	c.notifier.Notify(notify.Info("Added to compare", fmt.Sprintf("%s added to your compare list.", product.Name)))
	c.subs.notify()
	return nil
}

// Remove deletes productID from the set if present.
func (c *Compare) Remove(productID int) {
	c.mu.Lock()
	i := c.indexLocked(productID)
	if i >= 0 {
		c.entries = append(c.entries[:i], c.entries[i+1:]...)
	}
	c.mu.Unlock()

	if i >= 0 {
		c.subs.notify()
	}
}

// Clear empties the set.
func (c *Compare) Clear() {
	c.mu.Lock()
	c.entries = nil
	c.mu.Unlock()
	c.subs.notify()
}

// Contains reports whether productID is in the set.
func (c *Compare) Contains(productID int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexLocked(productID) >= 0
}

// Entries returns the set in insertion order.
func (c *Compare) Entries() []models.CompareEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entries := make([]models.CompareEntry, len(c.entries))
	copy(entries, c.entries)
	return entries
}

// Len is the number of entries.
func (c *Compare) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Subscribe registers fn to run after every mutation.
func (c *Compare) Subscribe(fn func()) (unsubscribe func()) {
	return c.subs.add(fn)
}

func (c *Compare) indexLocked(productID int) int {
	for i, e := range c.entries {
		if e.Product.ID == productID {
			return i
		}
	}
	return -1
}
