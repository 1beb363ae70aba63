// Package orders lists, cancels and reorders the customer's past orders.
package orders

import (
	"context"
	"errors"
	"sort"

	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/events"
	"github.com/fjod/storefront/internal/logger"
	"go.uber.org/zap"
)

var (
	ErrNotAuthenticated = errors.New("orders require a logged-in customer")
	ErrNotCancellable   = errors.New("order can no longer be cancelled")
	ErrNotReorderable   = errors.New("only delivered orders can be reordered")
)

type OrderAPI interface {
	ListByUser(ctx context.Context, token string, userID domain.ID) ([]domain.Order, error)
	Get(ctx context.Context, token string, orderID domain.ID) (domain.Order, error)
	Cancel(ctx context.Context, token string, orderID domain.ID) error
}

type Sessions interface {
	Current() *domain.Session
}

type Cart interface {
	ClearCart(ctx context.Context) bool
	AddItem(ctx context.Context, item cart.NewItem) bool
}

type Service struct {
	api      OrderAPI
	sessions Sessions
	cart     Cart
	bus      *events.Bus
	logger   *zap.Logger
}

func NewService(api OrderAPI, sessions Sessions, c Cart, bus *events.Bus, log *zap.Logger) *Service {
	if bus == nil {
		bus = events.NewBus()
	}
	return &Service{api: api, sessions: sessions, cart: c, bus: bus, logger: logger.OrNop(log)}
}

// History returns the current customer's orders, newest first.
func (s *Service) History(ctx context.Context) ([]domain.Order, error) {
	session := s.sessions.Current()
	if session == nil {
		return nil, ErrNotAuthenticated
	}
	list, err := s.api.ListByUser(ctx, session.Token, session.User.ID)
	if err != nil {
		logger.FromContext(ctx, s.logger).Error("error loading orders", zap.Error(err))
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt > list[j].CreatedAt
	})
	return list, nil
}

func (s *Service) Get(ctx context.Context, orderID domain.ID) (domain.Order, error) {
	session := s.sessions.Current()
	if session == nil {
		return domain.Order{}, ErrNotAuthenticated
	}
	return s.api.Get(ctx, session.Token, orderID)
}

// Cancel asks the server to cancel order. Orders already past pending are
// refused without a request.
func (s *Service) Cancel(ctx context.Context, order domain.Order) error {
	session := s.sessions.Current()
	if session == nil {
		return ErrNotAuthenticated
	}
	if !order.OrderStatus.Cancellable() {
		return ErrNotCancellable
	}
	if err := s.api.Cancel(ctx, session.Token, order.OrderID); err != nil {
		logger.FromContext(ctx, s.logger).Error("error cancelling order",
			zap.String("order_id", order.OrderID.String()),
			zap.Error(err))
		return err
	}
	return nil
}

type ReorderResult struct {
	Added  int
	Failed int
}

// Reorder replaces the cart with the lines of a delivered order, one unit at
// a time, and asks for the cart to be opened at checkout.
func (s *Service) Reorder(ctx context.Context, order domain.Order) (ReorderResult, error) {
	if s.sessions.Current() == nil {
		return ReorderResult{}, ErrNotAuthenticated
	}
	if !order.OrderStatus.Reorderable() {
		return ReorderResult{}, ErrNotReorderable
	}
	log := logger.FromContext(ctx, s.logger).With(zap.String("order_id", order.OrderID.String()))

	if !s.cart.ClearCart(ctx) {
		log.Warn("cart not cleared before reorder")
	}

	var res ReorderResult
	for _, it := range order.Items {
		item := itemFromOrderLine(it)
		for i := 0; i < it.Quantity; i++ {
			if s.cart.AddItem(ctx, item) {
				res.Added++
			} else {
				res.Failed++
			}
		}
	}
	if res.Failed > 0 {
		log.Warn("reorder incomplete", zap.Int("added", res.Added), zap.Int("failed", res.Failed))
	}

	s.bus.OpenCart.Publish(events.OpenCart{OpenCheckout: true})
	return res, nil
}

func itemFromOrderLine(it domain.OrderItem) cart.NewItem {
	base := it.BasePrice
	if !base.Valid {
		base = it.VariantPrice
	}
	return cart.NewItem{
		ProductID:       it.ProductID,
		ProductName:     it.ProductName,
		BasePrice:       base.Decimal,
		DiscountedPrice: it.DiscountedPrice,
		ImageURL:        it.ImageURL,
		VariantID:       it.VariantID,
		VariantName:     it.VariantName,
		VariantPrice:    it.VariantPrice,
	}
}
