// Package addresses manages the customer's saved delivery addresses.
package addresses

import (
	"context"
	"errors"
	"sync"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/logger"
	"go.uber.org/zap"
)

var ErrNotAuthenticated = errors.New("addresses require a logged-in customer")

type AddressAPI interface {
	List(ctx context.Context, token string) ([]domain.Address, error)
	Create(ctx context.Context, token string, in domain.AddressInput) (domain.Address, error)
	Update(ctx context.Context, token string, id domain.ID, in domain.AddressInput) (domain.Address, error)
	Delete(ctx context.Context, token string, id domain.ID) error
	SetDefault(ctx context.Context, token string, id domain.ID) error
}

type TokenSource interface {
	Token() string
}

// Book keeps the last loaded address list.
type Book struct {
	api    AddressAPI
	tokens TokenSource
	logger *zap.Logger

	mu   sync.RWMutex
	list []domain.Address
}

func NewBook(api AddressAPI, tokens TokenSource, log *zap.Logger) *Book {
	return &Book{api: api, tokens: tokens, logger: logger.OrNop(log)}
}

// List reloads the addresses from the server.
func (b *Book) List(ctx context.Context) ([]domain.Address, error) {
	token := b.tokens.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	list, err := b.api.List(ctx, token)
	if err != nil {
		logger.FromContext(ctx, b.logger).Error("error loading addresses", zap.Error(err))
		return nil, err
	}
	b.mu.Lock()
	b.list = list
	b.mu.Unlock()
	return b.Addresses(), nil
}

// Addresses returns the last loaded list without a request.
func (b *Book) Addresses() []domain.Address {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]domain.Address(nil), b.list...)
}

// Default is the address flagged as default, else the first one.
func (b *Book) Default() (domain.Address, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, a := range b.list {
		if a.IsDefault {
			return a, true
		}
	}
	if len(b.list) > 0 {
		return b.list[0], true
	}
	return domain.Address{}, false
}

func (b *Book) Create(ctx context.Context, in domain.AddressInput) (domain.Address, error) {
	if err := in.Validate(); err != nil {
		return domain.Address{}, err
	}
	token := b.tokens.Token()
	if token == "" {
		return domain.Address{}, ErrNotAuthenticated
	}
	addr, err := b.api.Create(ctx, token, in)
	if err != nil {
		return domain.Address{}, err
	}
	b.reload(ctx)
	return addr, nil
}

func (b *Book) Update(ctx context.Context, id domain.ID, in domain.AddressInput) (domain.Address, error) {
	if err := in.Validate(); err != nil {
		return domain.Address{}, err
	}
	token := b.tokens.Token()
	if token == "" {
		return domain.Address{}, ErrNotAuthenticated
	}
	addr, err := b.api.Update(ctx, token, id, in)
	if err != nil {
		return domain.Address{}, err
	}
	b.reload(ctx)
	return addr, nil
}

func (b *Book) Delete(ctx context.Context, id domain.ID) error {
	token := b.tokens.Token()
	if token == "" {
		return ErrNotAuthenticated
	}
	if err := b.api.Delete(ctx, token, id); err != nil {
		return err
	}
	b.reload(ctx)
	return nil
}

func (b *Book) SetDefault(ctx context.Context, id domain.ID) error {
	token := b.tokens.Token()
	if token == "" {
		return ErrNotAuthenticated
	}
	if err := b.api.SetDefault(ctx, token, id); err != nil {
		return err
	}
	b.reload(ctx)
	return nil
}

func (b *Book) reload(ctx context.Context) {
	if _, err := b.List(ctx); err != nil {
		logger.FromContext(ctx, b.logger).Warn("address list not refreshed", zap.Error(err))
	}
}
