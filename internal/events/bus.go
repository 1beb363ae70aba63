// Package events is a small typed pub/sub used for cross-component signals
// (forced logout, session changes, "open cart", order placed).
package events

import (
	"sync"

	"github.com/fjod/storefront/internal/domain"
)

// Topic delivers values of one type to its subscribers. Publish is
// synchronous: handlers run on the publishing goroutine, in subscription
// order, without the topic lock held, so a handler may publish again.
type Topic[T any] struct {
	mu       sync.RWMutex
	nextID   int
	handlers []subscription[T]
}

type subscription[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it.
func (t *Topic[T]) Subscribe(fn func(T)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	id := t.nextID
	t.handlers = append(t.handlers, subscription[T]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { t.remove(id) })
	}
}

func (t *Topic[T]) remove(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range t.handlers {
		if s.id == id {
			t.handlers = append(t.handlers[:i:i], t.handlers[i+1:]...)
			return
		}
	}
}

func (t *Topic[T]) Publish(v T) {
	t.mu.RLock()
	hs := make([]subscription[T], len(t.handlers))
	copy(hs, t.handlers)
	t.mu.RUnlock()

	for _, s := range hs {
		s.fn(v)
	}
}

// Unauthorized is published by the API client when a protected call returns 401.
type Unauthorized struct {
	Method string
	Path   string
}

// SessionChanged carries the new session; nil means logged out.
type SessionChanged struct {
	Session *domain.Session
}

type CartChanged struct {
	State domain.CartState
}

type OpenCart struct {
	OpenCheckout bool
}

type ShowOrderHistory struct{}

type OrderPlaced struct {
	OrderID     domain.ID
	UserID      domain.ID
	TotalAmount string
}

type Bus struct {
	Unauthorized     Topic[Unauthorized]
	SessionChanged   Topic[SessionChanged]
	CartChanged      Topic[CartChanged]
	OpenCart         Topic[OpenCart]
	ShowOrderHistory Topic[ShowOrderHistory]
	OrderPlaced      Topic[OrderPlaced]
}

func NewBus() *Bus {
	return &Bus{}
}
