package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/fjod/storefront/internal/domain"
)

type Reviews struct{ c *Client }

type reviewList struct {
	Success bool            `json:"success"`
	Reviews []domain.Review `json:"reviews"`
}

type canReviewBody struct {
	CanReview bool `json:"canReview"`
}

// ForProduct lists approved reviews of a product. It needs no session.
func (r *Reviews) ForProduct(ctx context.Context, productID int64) ([]domain.Review, error) {
	var out reviewList
	err := r.c.do(ctx, request{method: http.MethodGet, path: "/reviews/product/" + escape(domain.IDFromInt(productID)), out: &out})
	if err != nil {
		return nil, err
	}
	return out.Reviews, nil
}

func (r *Reviews) Create(ctx context.Context, token string, in domain.ReviewInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	return r.c.do(ctx, request{method: http.MethodPost, path: "/reviews", token: token, body: in})
}

// Mine lists the reviews written by the session's user.
func (r *Reviews) Mine(ctx context.Context, token string) ([]domain.Review, error) {
	var out reviewList
	err := r.c.do(ctx, request{method: http.MethodGet, path: "/reviews/my-reviews", token: token, out: &out})
	if err != nil {
		return nil, err
	}
	return out.Reviews, nil
}

// CanReview reports whether productID from orderID may be reviewed. Any
// non-2xx other than 401 means no.
func (r *Reviews) CanReview(ctx context.Context, token string, orderID domain.ID, productID int64) (bool, error) {
	var out canReviewBody
	err := r.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/reviews/can-review/" + escape(orderID) + "/" + escape(domain.IDFromInt(productID)),
		token:  token,
		out:    &out,
	})
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return out.CanReview, nil
}
