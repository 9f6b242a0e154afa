package store

import (
	"sync"

	"warungpos/internal/observe"
)

// hub tracks per-user snapshot watchers for one collection. Backends
// call broadcast after every committed mutation; each watcher is
// refreshed with a fresh query for its user.
type hub[T any] struct {
	mu   sync.Mutex
	next int
	subs map[int]*hubEntry[T]
}

type hubEntry[T any] struct {
	userID string
	val    *observe.Value[T]
}

func newHub[T any]() *hub[T] {
	return &hub[T]{subs: make(map[int]*hubEntry[T])}
}

func (h *hub[T]) add(userID string, initial T) (*observe.Value[T], func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	e := &hubEntry[T]{userID: userID, val: observe.NewValue(initial)}
	h.subs[id] = e
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
	return e.val, cancel
}

// broadcast re-queries every watcher's user and publishes the result.
// A load error leaves that watcher on its previous snapshot.
func (h *hub[T]) broadcast(load func(userID string) (T, error)) {
	h.mu.Lock()
	entries := make([]*hubEntry[T], 0, len(h.subs))
	for _, e := range h.subs {
		entries = append(entries, e)
	}
	h.mu.Unlock()

	for _, e := range entries {
		if snap, err := load(e.userID); err == nil {
			e.val.Set(snap)
		}
	}
}
