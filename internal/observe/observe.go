// Package observe provides a small typed observable: a value holder with
// subscribe-with-immediate-replay and multi-subscriber fan-out. Slow
// subscribers are coalesced to the latest value rather than blocking the
// publisher.
package observe

import "sync"

type Value[T any] struct {
	mu   sync.Mutex
	cur  T
	subs map[int]chan T
	next int
}

func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{cur: initial, subs: make(map[int]chan T)}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur
}

// Set replaces the current value and notifies every subscriber.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cur = val
	for _, ch := range v.subs {
		push(ch, val)
	}
}

// Update applies fn to the current value under the lock and publishes
// the result. fn must not call back into this Value.
func (v *Value[T]) Update(fn func(T) T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cur = fn(v.cur)
	for _, ch := range v.subs {
		push(ch, v.cur)
	}
}

// Subscribe registers a new subscriber. The current value is delivered
// immediately; each later Set/Update delivers the newest value (older
// undelivered values are dropped). The returned cancel func releases
// the subscription and closes the channel; it is safe to call twice.
func (v *Value[T]) Subscribe() (<-chan T, func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	ch := make(chan T, 1)
	id := v.next
	v.next++
	v.subs[id] = ch
	ch <- v.cur
	cancel := func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		if c, ok := v.subs[id]; ok {
			delete(v.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// push delivers val without blocking: if the buffer already holds an
// undelivered value, it is replaced.
func push[T any](ch chan T, val T) {
	for {
		select {
		case ch <- val:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
