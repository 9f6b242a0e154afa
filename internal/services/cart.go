package services

import (
	"sync"

	"warungpos/internal/domain"
	"warungpos/internal/observe"
)

// Cart holds the in-progress selection for one session. Every retained
// line has quantity in [1, stock-at-add]; reducing a line below 1
// removes it. The running total is published as an observable so the
// UI layer can watch it.
type Cart struct {
	mu    sync.Mutex
	items []domain.CartItem
	total *observe.Value[float64]
}

func NewCart() *Cart {
	return &Cart{total: observe.NewValue(0.0)}
}

// Add puts one unit of p in the cart. An existing line grows by 1 only
// if that stays within p.Stock as passed in; a new line needs stock > 0.
// Hitting the ceiling is a silent no-op, not an error.
func (c *Cart) Add(p domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].Product.ID == p.ID {
			if c.items[i].Quantity < p.Stock {
				c.items[i].Quantity++
				c.publish()
			}
			return
		}
	}
	if p.Stock > 0 {
		c.items = append(c.items, domain.CartItem{Product: p, Quantity: 1})
		c.publish()
	}
}

func (c *Cart) Remove(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.publish()
			return
		}
	}
}

// Increase adds one unit, bounded by the stock snapshot taken when the
// line was created.
func (c *Cart) Increase(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			if c.items[i].Quantity < c.items[i].Product.Stock {
				c.items[i].Quantity++
				c.publish()
			}
			return
		}
	}
}

// Decrease removes one unit; a line at quantity 1 is removed entirely,
// never left at 0.
func (c *Cart) Decrease(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			if c.items[i].Quantity > 1 {
				c.items[i].Quantity--
			} else {
				c.items = append(c.items[:i], c.items[i+1:]...)
			}
			c.publish()
			return
		}
	}
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.publish()
}

// Items returns a snapshot copy of the cart lines.
func (c *Cart) Items() []domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Total() float64 {
	return c.total.Get()
}

// Snapshot returns the lines and their total under one lock, so a
// concurrent mutation can never split a total from the items it was
// computed over.
func (c *Cart) Snapshot() ([]domain.CartItem, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.CartItem, len(c.items))
	copy(out, c.items)
	sum := 0.0
	for _, it := range out {
		sum += it.Subtotal()
	}
	return out, sum
}

// TotalUpdates exposes the running total as an observable.
func (c *Cart) TotalUpdates() *observe.Value[float64] {
	return c.total
}

// publish recomputes the total under the held lock.
func (c *Cart) publish() {
	sum := 0.0
	for _, it := range c.items {
		sum += it.Subtotal()
	}
	c.total.Set(sum)
}
