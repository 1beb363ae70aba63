// Package cart keeps the local view of the customer's cart in step with the
// server. Mutations are applied optimistically, sent to the server, and
// reconciled by re-fetching the whole cart. Concurrent mutations are not
// serialized; the last refresh to complete wins.
package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/events"
	"github.com/fjod/storefront/internal/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrNoSession = errors.New("cart requires a logged-in customer")

// Remote is the server side of the cart.
type Remote interface {
	Get(ctx context.Context, token string) (domain.CartResponse, error)
	Add(ctx context.Context, token string, productID int64, variantID *int64, quantity int) error
	Update(ctx context.Context, token string, cartID domain.ID, quantity int) error
	Remove(ctx context.Context, token string, cartID domain.ID) error
	Clear(ctx context.Context, token string) error
}

// TokenSource yields the current bearer token, empty when logged out.
type TokenSource interface {
	Token() string
}

type Engine struct {
	remote Remote
	tokens TokenSource
	logger *zap.Logger
	tempID func() domain.ID

	mu    sync.Mutex
	state domain.CartState
	// refreshing counts in-flight refreshes; Loading is refreshing > 0
	refreshing int
	// epoch changes on every reset so refreshes started before it are dropped
	epoch uint64
	bus   *events.Bus
}

func NewEngine(remote Remote, tokens TokenSource, log *zap.Logger) *Engine {
	return &Engine{
		remote: remote,
		tokens: tokens,
		logger: logger.OrNop(log),
		tempID: func() domain.ID { return domain.ID(domain.TempIDPrefix + uuid.NewString()) },
		state:  domain.NewCartState(nil, decimal.NullDecimal{}),
	}
}

// Attach publishes state changes on bus and follows session changes: a new
// session triggers a refresh, a logout clears the local cart.
func (e *Engine) Attach(bus *events.Bus) (detach func()) {
	e.mu.Lock()
	e.bus = bus
	e.mu.Unlock()

	return bus.SessionChanged.Subscribe(func(ev events.SessionChanged) {
		if ev.Session == nil {
			e.reset()
			return
		}
		if err := e.Refresh(context.Background()); err != nil {
			e.logger.Warn("error fetching cart", zap.Error(err))
		}
	})
}

// State returns a deep copy of the current cart.
func (e *Engine) State() domain.CartState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// ItemQuantity is the quantity of productID/variantID, 0 when absent.
func (e *Engine) ItemQuantity(productID int64, variantID *int64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Quantity(productID, variantID)
}

// AddItem adds one unit. It returns false without a session or when the
// server rejects the change; the cart is refreshed either way.
func (e *Engine) AddItem(ctx context.Context, item NewItem) bool {
	epoch, token := e.session()
	if token == "" {
		return false
	}

	applied := e.mutate(epoch, func(s *domain.CartState) {
		for i := range s.Items {
			if s.Items[i].Matches(item.ProductID, item.VariantID) {
				s.Items[i].Quantity++
				return
			}
		}
		line := item.cartItem(e.tempID())
		s.Items = append(s.Items, line)
	})
	if !applied {
		return false
	}

	err := e.remote.Add(ctx, token, item.ProductID, item.VariantID, 1)
	if err != nil {
		logger.FromContext(ctx, e.logger).Warn("error adding item to cart",
			zap.Int64("product_id", item.ProductID),
			zap.Error(err))
	}
	e.refreshQuietly(ctx)
	return err == nil
}

// UpdateQuantity sets the quantity of cartID. A quantity <= 0 removes the line.
func (e *Engine) UpdateQuantity(ctx context.Context, cartID domain.ID, quantity int) bool {
	if quantity <= 0 {
		return e.RemoveItem(ctx, cartID)
	}
	epoch, token := e.session()
	if token == "" {
		return false
	}

	if !e.mutate(epoch, func(s *domain.CartState) {
		if i := s.Find(cartID); i >= 0 {
			s.Items[i].Quantity = quantity
		}
	}) {
		return false
	}

	if err := e.remote.Update(ctx, token, cartID, quantity); err != nil {
		logger.FromContext(ctx, e.logger).Warn("error updating cart item",
			zap.String("cart_id", cartID.String()),
			zap.Error(err))
		e.refreshQuietly(ctx)
		return false
	}
	return true
}

func (e *Engine) RemoveItem(ctx context.Context, cartID domain.ID) bool {
	epoch, token := e.session()
	if token == "" {
		return false
	}

	if !e.mutate(epoch, func(s *domain.CartState) {
		if i := s.Find(cartID); i >= 0 {
			s.Items = append(s.Items[:i:i], s.Items[i+1:]...)
		}
	}) {
		return false
	}

	if err := e.remote.Remove(ctx, token, cartID); err != nil {
		logger.FromContext(ctx, e.logger).Warn("error removing item from cart",
			zap.String("cart_id", cartID.String()),
			zap.Error(err))
		e.refreshQuietly(ctx)
		return false
	}
	return true
}

// ClearCart empties the cart on the server first and locally only after the
// server confirmed.
func (e *Engine) ClearCart(ctx context.Context) bool {
	epoch, token := e.session()
	if token == "" {
		return false
	}
	if err := e.remote.Clear(ctx, token); err != nil {
		logger.FromContext(ctx, e.logger).Warn("error clearing cart", zap.Error(err))
		return false
	}
	e.mutate(epoch, func(s *domain.CartState) {
		s.Items = nil
	})
	return true
}

// Refresh replaces the local cart with the server's.
func (e *Engine) Refresh(ctx context.Context) error {
	epoch, token := e.session()
	if token == "" {
		return ErrNoSession
	}

	e.mu.Lock()
	if epoch != e.epoch {
		e.mu.Unlock()
		return ErrNoSession
	}
	e.refreshing++
	e.state.Loading = true
	e.mu.Unlock()
	e.publish()

	resp, err := e.remote.Get(ctx, token)

	e.mu.Lock()
	e.refreshing--
	if err == nil && epoch == e.epoch {
		e.state = domain.NewCartState(resp.Items, resp.Total)
	}
	e.state.Loading = e.refreshing > 0
	e.mu.Unlock()
	e.publish()

	return err
}

func (e *Engine) refreshQuietly(ctx context.Context) {
	if err := e.Refresh(ctx); err != nil && !errors.Is(err, ErrNoSession) {
		logger.FromContext(ctx, e.logger).Warn("error fetching cart", zap.Error(err))
	}
}

// session returns the current epoch and token. The epoch is read first, so a
// logout landing after the token read is seen as an epoch change.
func (e *Engine) session() (uint64, string) {
	e.mu.Lock()
	epoch := e.epoch
	e.mu.Unlock()
	return epoch, e.tokens.Token()
}

// mutate applies fn to the items and recomputes the derived totals. It does
// nothing and returns false when the session ended since epoch was taken.
func (e *Engine) mutate(epoch uint64, fn func(s *domain.CartState)) bool {
	e.mu.Lock()
	if epoch != e.epoch {
		e.mu.Unlock()
		return false
	}
	fn(&e.state)
	next := domain.NewCartState(e.state.Items, decimal.NullDecimal{})
	next.Loading = e.state.Loading
	e.state = next
	e.mu.Unlock()
	e.publish()
	return true
}

func (e *Engine) reset() {
	e.mu.Lock()
	e.epoch++
	e.state = domain.NewCartState(nil, decimal.NullDecimal{})
	e.mu.Unlock()
	e.publish()
}

func (e *Engine) publish() {
	e.mu.Lock()
	bus := e.bus
	state := e.state.Clone()
	e.mu.Unlock()
	if bus != nil {
		bus.CartChanged.Publish(events.CartChanged{State: state})
	}
}
