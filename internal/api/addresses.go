package api

import (
	"context"
	"net/http"

	"github.com/fjod/storefront/internal/domain"
)

type Addresses struct{ c *Client }

func (a *Addresses) List(ctx context.Context, token string) ([]domain.Address, error) {
	var out []domain.Address
	err := a.c.do(ctx, request{method: http.MethodGet, path: "/addresses", token: token, out: &out})
	return out, err
}

func (a *Addresses) Create(ctx context.Context, token string, in domain.AddressInput) (domain.Address, error) {
	var out domain.Address
	err := a.c.do(ctx, request{method: http.MethodPost, path: "/addresses", token: token, body: in, out: &out})
	return out, err
}

func (a *Addresses) Update(ctx context.Context, token string, id domain.ID, in domain.AddressInput) (domain.Address, error) {
	var out domain.Address
	err := a.c.do(ctx, request{method: http.MethodPut, path: "/addresses/" + escape(id), token: token, body: in, out: &out})
	return out, err
}

func (a *Addresses) Delete(ctx context.Context, token string, id domain.ID) error {
	return a.c.do(ctx, request{method: http.MethodDelete, path: "/addresses/" + escape(id), token: token})
}

func (a *Addresses) SetDefault(ctx context.Context, token string, id domain.ID) error {
	return a.c.do(ctx, request{method: http.MethodPut, path: "/addresses/" + escape(id) + "/set-default", token: token})
}
