package services

import (
	"context"
	"strings"

	"warungpos/internal/domain"
	"warungpos/internal/observe"
	"warungpos/internal/store"
)

// CatalogCache mirrors the signed-in user's products via the store's
// live subscription and combines them with a free-text filter. The
// filtered view is itself observable, recomputed whenever either the
// snapshot or the filter changes.
type CatalogCache struct {
	all     *observe.Value[[]domain.Product]
	filter  *observe.Value[string]
	view    *observe.Value[[]domain.Product]
	cancel  func()
	done    chan struct{}
	stopped chan struct{}
}

func NewCatalogCache(ctx context.Context, st store.Store, userID string) (*CatalogCache, error) {
	all, cancel, err := st.WatchProducts(ctx, userID)
	if err != nil {
		return nil, err
	}
	c := &CatalogCache{
		all:     all,
		filter:  observe.NewValue(""),
		view:    observe.NewValue(filterProducts(all.Get(), "")),
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	updates, cancelSub := all.Subscribe()
	go func() {
		defer close(c.stopped)
		defer cancelSub()
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					return
				}
				c.view.Set(filterProducts(snap, c.filter.Get()))
			case <-c.done:
				return
			}
		}
	}()
	return c, nil
}

// SetFilter updates the search text; the view recomputes immediately.
func (c *CatalogCache) SetFilter(q string) {
	c.filter.Set(q)
	c.view.Set(filterProducts(c.all.Get(), q))
}

func (c *CatalogCache) Filter() string {
	return c.filter.Get()
}

// Products returns the current filtered snapshot.
func (c *CatalogCache) Products() []domain.Product {
	return c.view.Get()
}

// View exposes the filtered snapshot as an observable.
func (c *CatalogCache) View() *observe.Value[[]domain.Product] {
	return c.view
}

// GetProductByID looks up the unfiltered snapshot. A miss means "not
// found" (deleted, or the initial snapshot has not arrived), not an
// error.
func (c *CatalogCache) GetProductByID(id string) (domain.Product, bool) {
	for _, p := range c.all.Get() {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Close cancels the subscription, waits for the update loop to stop
// and empties the cache.
func (c *CatalogCache) Close() {
	select {
	case <-c.done:
		return
	default:
		close(c.done)
	}
	c.cancel()
	<-c.stopped
	c.view.Set(nil)
}

func filterProducts(all []domain.Product, q string) []domain.Product {
	if strings.TrimSpace(q) == "" {
		return all
	}
	q = strings.ToLower(q)
	out := []domain.Product{}
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	return out
}
