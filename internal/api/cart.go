package api

import (
	"context"
	"net/http"

	"github.com/fjod/storefront/internal/domain"
)

type Cart struct{ c *Client }

type addToCartBody struct {
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

type updateCartBody struct {
	Quantity int `json:"quantity"`
}

func (ct *Cart) Get(ctx context.Context, token string) (domain.CartResponse, error) {
	var out domain.CartResponse
	err := ct.c.do(ctx, request{method: http.MethodGet, path: "/cart", token: token, out: &out})
	return out, err
}

func (ct *Cart) Add(ctx context.Context, token string, productID int64, variantID *int64, quantity int) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	return ct.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/cart",
		token:  token,
		body:   addToCartBody{ProductID: productID, VariantID: variantID, Quantity: quantity},
	})
}

func (ct *Cart) Update(ctx context.Context, token string, cartID domain.ID, quantity int) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	return ct.c.do(ctx, request{
		method: http.MethodPut,
		path:   "/cart/" + escape(cartID),
		token:  token,
		body:   updateCartBody{Quantity: quantity},
	})
}

func (ct *Cart) Remove(ctx context.Context, token string, cartID domain.ID) error {
	return ct.c.do(ctx, request{method: http.MethodDelete, path: "/cart/" + escape(cartID), token: token})
}

func (ct *Cart) Clear(ctx context.Context, token string) error {
	return ct.c.do(ctx, request{method: http.MethodDelete, path: "/cart", token: token})
}
