package cart

import (
	"context"
	"sync"

	"github.com/fjod/storefront/internal/domain"
)

type staticTokens string

func (s staticTokens) Token() string { return string(s) }

type tokenFunc func() string

func (f tokenFunc) Token() string { return f() }

type mockRemote struct {
	mu      sync.Mutex
	calls   []string
	items   []domain.CartItem
	total   string
	getFn   func() error
	addFn   func(productID int64, variantID *int64) error
	updFn   func(cartID domain.ID, qty int) error
	remFn   func(cartID domain.ID) error
	clearFn func() error
}

func (m *mockRemote) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

func (m *mockRemote) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockRemote) setItems(items ...domain.CartItem) {
	m.mu.Lock()
	m.items = items
	m.mu.Unlock()
}

func (m *mockRemote) Get(ctx context.Context, token string) (domain.CartResponse, error) {
	m.record("get")
	if m.getFn != nil {
		if err := m.getFn(); err != nil {
			return domain.CartResponse{}, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	resp := domain.CartResponse{Items: append([]domain.CartItem(nil), m.items...)}
	return resp, nil
}

func (m *mockRemote) Add(ctx context.Context, token string, productID int64, variantID *int64, quantity int) error {
	m.record("add")
	if m.addFn != nil {
		return m.addFn(productID, variantID)
	}
	return nil
}

func (m *mockRemote) Update(ctx context.Context, token string, cartID domain.ID, quantity int) error {
	m.record("update")
	if m.updFn != nil {
		return m.updFn(cartID, quantity)
	}
	return nil
}

func (m *mockRemote) Remove(ctx context.Context, token string, cartID domain.ID) error {
	m.record("remove")
	if m.remFn != nil {
		return m.remFn(cartID)
	}
	return nil
}

func (m *mockRemote) Clear(ctx context.Context, token string) error {
	m.record("clear")
	if m.clearFn != nil {
		return m.clearFn()
	}
	return nil
}
