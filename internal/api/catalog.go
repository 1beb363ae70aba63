package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fjod/storefront/internal/domain"
)

type Products struct{ c *Client }

// List returns products matching filter, or the fallback products when the
// backend fails.
func (p *Products) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	var out []domain.Product
	err := p.c.do(ctx, request{method: http.MethodGet, path: "/products", query: filter.Params(), out: &out})
	if err != nil {
		if !degradable(err) {
			return nil, err
		}
		p.c.degrade(ctx, "products", err)
		return fallbackProducts(p.limit(filter)), nil
	}
	return out, nil
}

func (p *Products) ByLocation(ctx context.Context, pincode string, filter domain.ProductFilter) ([]domain.Product, error) {
	filter.Pincode = pincode
	return p.List(ctx, filter)
}

func (p *Products) ByCategory(ctx context.Context, categoryID int64, filter domain.ProductFilter) ([]domain.Product, error) {
	filter.CategoryID = categoryID
	var out []domain.Product
	if err := p.c.do(ctx, request{method: http.MethodGet, path: "/products", query: filter.Params(), out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

// BySubcategory degrades to an empty list.
func (p *Products) BySubcategory(ctx context.Context, name string, filter domain.ProductFilter) ([]domain.Product, error) {
	filter.SubcategoryName = name
	var out []domain.Product
	err := p.c.do(ctx, request{method: http.MethodGet, path: "/products", query: filter.Params(), out: &out})
	if err != nil {
		if !degradable(err) {
			return nil, err
		}
		p.c.degrade(ctx, "subcategory products", err)
		return []domain.Product{}, nil
	}
	return out, nil
}

func (p *Products) Get(ctx context.Context, id int64) (domain.Product, error) {
	var out domain.Product
	err := p.c.do(ctx, request{method: http.MethodGet, path: "/products/" + strconv.FormatInt(id, 10), out: &out})
	return out, err
}

func (p *Products) Search(ctx context.Context, query string, filter domain.ProductFilter) (domain.SearchResult, error) {
	params := filter.Params()
	params["query"] = query
	var out domain.SearchResult
	err := p.c.do(ctx, request{method: http.MethodGet, path: "/products/search", query: params, out: &out})
	return out, err
}

func (p *Products) limit(filter domain.ProductFilter) int {
	if filter.Limit > 0 {
		return filter.Limit
	}
	return p.c.productLimit
}

type Categories struct{ c *Client }

func (cs *Categories) List(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	err := cs.c.do(ctx, request{method: http.MethodGet, path: "/categories", out: &out})
	if err != nil {
		if !degradable(err) {
			return nil, err
		}
		cs.c.degrade(ctx, "categories", err)
		return fallbackCategories(), nil
	}
	return out, nil
}

func (cs *Categories) Get(ctx context.Context, id int64) (domain.Category, error) {
	var out domain.Category
	err := cs.c.do(ctx, request{method: http.MethodGet, path: "/categories/" + strconv.FormatInt(id, 10), out: &out})
	return out, err
}

// Subcategories lists subcategories of categoryID, or all of them when
// categoryID is 0. Failures degrade to an empty list.
func (cs *Categories) Subcategories(ctx context.Context, categoryID int64) ([]domain.Subcategory, error) {
	req := request{method: http.MethodGet, path: "/subcategories"}
	if categoryID != 0 {
		req.query = map[string]string{"category_id": strconv.FormatInt(categoryID, 10)}
	}
	var out []domain.Subcategory
	req.out = &out
	if err := cs.c.do(ctx, req); err != nil {
		if !degradable(err) {
			return nil, err
		}
		cs.c.degrade(ctx, "subcategories", err)
		return []domain.Subcategory{}, nil
	}
	return out, nil
}

type Banners struct{ c *Client }

func (b *Banners) List(ctx context.Context) ([]domain.Banner, error) {
	return b.ByType(ctx, "")
}

// ByType lists banners of bannerType; an empty type lists all banners.
func (b *Banners) ByType(ctx context.Context, bannerType string) ([]domain.Banner, error) {
	req := request{method: http.MethodGet, path: "/banners"}
	if bannerType != "" {
		req.query = map[string]string{"type": bannerType}
	}
	var out []domain.Banner
	req.out = &out
	if err := b.c.do(ctx, req); err != nil {
		if !degradable(err) {
			return nil, err
		}
		b.c.degrade(ctx, "banners", err)
		return fallbackBanners(bannerType), nil
	}
	return out, nil
}

func escape(id domain.ID) string {
	return url.PathEscape(id.String())
}
