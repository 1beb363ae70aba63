package api

import (
	"context"
	"net/http"

	"github.com/fjod/storefront/internal/domain"
)

type Orders struct{ c *Client }

func (o *Orders) Create(ctx context.Context, token string, req domain.CreateOrderRequest) (domain.CreateOrderResponse, error) {
	var out domain.CreateOrderResponse
	err := o.c.do(ctx, request{method: http.MethodPost, path: "/orders", token: token, body: req, out: &out})
	return out, err
}

func (o *Orders) ListByUser(ctx context.Context, token string, userID domain.ID) ([]domain.Order, error) {
	var out []domain.Order
	err := o.c.do(ctx, request{method: http.MethodGet, path: "/orders/user/" + escape(userID), token: token, out: &out})
	return out, err
}

func (o *Orders) Get(ctx context.Context, token string, orderID domain.ID) (domain.Order, error) {
	var out domain.Order
	err := o.c.do(ctx, request{method: http.MethodGet, path: "/orders/" + escape(orderID), token: token, out: &out})
	return out, err
}

func (o *Orders) Cancel(ctx context.Context, token string, orderID domain.ID) error {
	return o.c.do(ctx, request{method: http.MethodPost, path: "/orders/" + escape(orderID) + "/cancel", token: token})
}
