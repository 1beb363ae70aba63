package checkout

import (
	"context"
	"sync"

	"github.com/fjod/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

type fakeSessions struct {
	session *domain.Session
}

func (f *fakeSessions) Current() *domain.Session { return f.session }

type fakeCart struct {
	mu      sync.Mutex
	state   domain.CartState
	clearOK bool
	cleared int
}

func (f *fakeCart) State() domain.CartState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Clone()
}

func (f *fakeCart) ClearCart(ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared++
	if !f.clearOK {
		return false
	}
	f.state = domain.NewCartState(nil, decimal.NullDecimal{})
	return true
}

type fakeOrders struct {
	token string
	req   *domain.CreateOrderRequest
	resp  domain.CreateOrderResponse
	err   error
}

func (f *fakeOrders) Create(ctx context.Context, token string, req domain.CreateOrderRequest) (domain.CreateOrderResponse, error) {
	f.token = token
	f.req = &req
	return f.resp, f.err
}
