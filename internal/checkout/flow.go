// Package checkout drives the cart → address → summary → confirmation wizard.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/events"
	"github.com/fjod/storefront/internal/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const orderTypeOnline = "online"

type Sessions interface {
	Current() *domain.Session
}

type Cart interface {
	State() domain.CartState
	ClearCart(ctx context.Context) bool
}

type Orders interface {
	Create(ctx context.Context, token string, req domain.CreateOrderRequest) (domain.CreateOrderResponse, error)
}

type PlaceOrderInput struct {
	Payment       domain.PaymentMethod
	Notes         string
	CustomerEmail string
}

// OrderResult is what the confirmation step shows.
type OrderResult struct {
	OrderID         domain.ID
	TotalAmount     decimal.Decimal
	PaymentMethod   domain.PaymentMethod
	DeliveryAddress domain.Address
	Items           []domain.CartItem
}

type Flow struct {
	sessions Sessions
	cart     Cart
	orders   Orders
	bus      *events.Bus
	logger   *zap.Logger

	mu      sync.Mutex
	step    Step
	address *domain.Address
	order   *OrderResult
	placing bool
}

// Begin opens checkout for the current customer and cart.
func Begin(sessions Sessions, cart Cart, orders Orders, bus *events.Bus, log *zap.Logger) (*Flow, error) {
	f := &Flow{
		sessions: sessions,
		cart:     cart,
		orders:   orders,
		bus:      bus,
		logger:   logger.OrNop(log),
		step:     StepCart,
	}
	if err := f.Check(); err != nil {
		return nil, err
	}
	return f, nil
}

// Check re-evaluates the entry guard. Once confirmed the flow stays open even
// though the cart has been emptied.
func (f *Flow) Check() error {
	if f.sessions.Current() == nil {
		return ErrNotAuthenticated
	}
	f.mu.Lock()
	confirmed := f.step == StepConfirmation
	f.mu.Unlock()
	if !confirmed && f.cart.State().Empty() {
		return ErrEmptyCart
	}
	return nil
}

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Next advances one step. Leaving cart needs items, leaving address needs a
// selected address, and summary only moves on through Complete.
func (f *Flow) Next() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.step {
	case StepCart:
		if f.cart.State().Empty() {
			return ErrEmptyCart
		}
	case StepAddress:
		if f.address == nil {
			return ErrNoAddress
		}
	case StepSummary, StepConfirmation:
		return nil
	}
	f.step = steps[f.step.Index()+1]
	return nil
}

// Previous goes back one step; no-op at cart and at confirmation.
func (f *Flow) Previous() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.step.Index(); i > 0 && !f.step.IsTerminal() {
		f.step = steps[i-1]
	}
}

// GoTo jumps to an already reached step and reports whether it moved.
func (f *Flow) GoTo(target Step) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := target.Index()
	if i < 0 || f.step.IsTerminal() || i > f.step.Index() {
		return false
	}
	f.step = target
	return true
}

// Reachable reports whether target can be selected from the step indicator.
func (f *Flow) Reachable(target Step) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := target.Index()
	return i >= 0 && i <= f.step.Index()
}

func (f *Flow) SelectAddress(addr domain.Address) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := addr
	f.address = &a
}

func (f *Flow) SelectedAddress() (domain.Address, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.address == nil {
		return domain.Address{}, false
	}
	return *f.address, true
}

// Order is the placed order once the flow is confirmed.
func (f *Flow) Order() (OrderResult, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.order == nil {
		return OrderResult{}, false
	}
	return *f.order, true
}

// PlaceOrder submits the cart as an order and completes the flow.
func (f *Flow) PlaceOrder(ctx context.Context, in PlaceOrderInput) (OrderResult, error) {
	session := f.sessions.Current()
	if session == nil {
		return OrderResult{}, ErrNotAuthenticated
	}
	if !in.Payment.Enabled() {
		return OrderResult{}, ErrPaymentUnavailable
	}

	f.mu.Lock()
	if f.step != StepSummary || f.placing {
		f.mu.Unlock()
		return OrderResult{}, ErrWrongStep
	}
	if f.address == nil {
		f.mu.Unlock()
		return OrderResult{}, ErrNoAddress
	}
	addr := *f.address
	f.placing = true
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.placing = false
		f.mu.Unlock()
	}()

	state := f.cart.State()
	if state.Empty() {
		return OrderResult{}, ErrEmptyCart
	}
	req := buildOrder(session.User.ID, state, addr, in)

	log := logger.FromContext(ctx, f.logger)
	resp, err := f.orders.Create(ctx, session.Token, req)
	if err != nil {
		log.Error("error placing order", zap.Error(err))
		return OrderResult{}, fmt.Errorf("place order: %w", err)
	}
	if resp.OrderID.IsZero() {
		log.Error("order response without order id")
		return OrderResult{}, ErrOrderRejected
	}

	result := OrderResult{
		OrderID:         resp.OrderID,
		TotalAmount:     req.TotalAmount,
		PaymentMethod:   in.Payment,
		DeliveryAddress: addr,
		Items:           state.Items,
	}
	f.Complete(ctx, result)
	log.Info("order placed",
		zap.String("order_id", resp.OrderID.String()),
		zap.String("total", req.TotalAmount.StringFixed(2)))
	return result, nil
}

// Complete moves the flow to confirmation, clears the cart and announces
// the order.
func (f *Flow) Complete(ctx context.Context, result OrderResult) {
	f.mu.Lock()
	f.order = &result
	f.step = StepConfirmation
	f.mu.Unlock()

	if !f.cart.ClearCart(ctx) {
		logger.FromContext(ctx, f.logger).Warn("cart not cleared after order",
			zap.String("order_id", result.OrderID.String()))
	}

	var userID domain.ID
	if s := f.sessions.Current(); s != nil {
		userID = s.User.ID
	}
	if f.bus != nil {
		f.bus.OrderPlaced.Publish(events.OrderPlaced{
			OrderID:     result.OrderID,
			UserID:      userID,
			TotalAmount: result.TotalAmount.StringFixed(2),
		})
	}
}

func buildOrder(userID domain.ID, state domain.CartState, addr domain.Address, in PlaceOrderInput) domain.CreateOrderRequest {
	items := make([]domain.CreateOrderItem, 0, len(state.Items))
	for _, it := range state.Items {
		items = append(items, domain.CreateOrderItem{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
			Price:     it.UnitPrice(),
			Subtotal:  it.LineTotal(),
		})
	}
	return domain.CreateOrderRequest{
		UserID:            userID,
		VendorID:          state.Items[0].VendorID,
		Items:             items,
		PaymentMethod:     in.Payment.WireValue(),
		TotalAmount:       state.Total,
		DeliveryAddressID: addr.AddressID,
		OrderType:         orderTypeOnline,
		Notes:             in.Notes,
		CustomerEmail:     strings.TrimSpace(in.CustomerEmail),
		CustomerName:      addr.FullName,
	}
}
