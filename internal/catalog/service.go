// Package catalog serves product, category and banner listings through the
// catalog cache.
package catalog

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/fjod/storefront/internal/api"
	"github.com/fjod/storefront/internal/cache"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

type ProductAPI interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	ByCategory(ctx context.Context, categoryID int64, filter domain.ProductFilter) ([]domain.Product, error)
	BySubcategory(ctx context.Context, name string, filter domain.ProductFilter) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (domain.Product, error)
	Search(ctx context.Context, query string, filter domain.ProductFilter) (domain.SearchResult, error)
}

type CategoryAPI interface {
	List(ctx context.Context) ([]domain.Category, error)
	Subcategories(ctx context.Context, categoryID int64) ([]domain.Subcategory, error)
}

type BannerAPI interface {
	ByType(ctx context.Context, bannerType string) ([]domain.Banner, error)
}

type Service struct {
	products   ProductAPI
	categories CategoryAPI
	banners    BannerAPI
	cache      cache.CatalogCache
	logger     *zap.Logger
	sfg        singleflight.Group
}

func NewService(products ProductAPI, categories CategoryAPI, banners BannerAPI, c cache.CatalogCache, log *zap.Logger) *Service {
	if c == nil {
		c = cache.NopCache{}
	}
	return &Service{
		products:   products,
		categories: categories,
		banners:    banners,
		cache:      c,
		logger:     logger.OrNop(log),
	}
}

// Home is everything the landing screen shows.
type Home struct {
	Products   []domain.Product
	Categories []domain.Category
	Banners    []domain.Banner
}

// Home loads products deliverable to pincode, categories and banners
// concurrently.
func (s *Service) Home(ctx context.Context, pincode string) (Home, error) {
	var home Home
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		home.Products, err = s.Products(gctx, domain.ProductFilter{Pincode: pincode})
		return err
	})
	g.Go(func() error {
		var err error
		home.Categories, err = s.Categories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		home.Banners, err = s.Banners(gctx, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return Home{}, err
	}
	return home, nil
}

// Products lists products matching filter. A subcategory name takes
// precedence over a category id.
func (s *Service) Products(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return load(ctx, s, "products:"+encode(filter.Params()), func(ctx context.Context) ([]domain.Product, error) {
		switch {
		case filter.SubcategoryName != "":
			return s.products.BySubcategory(ctx, filter.SubcategoryName, filter)
		case filter.CategoryID != 0:
			return s.products.ByCategory(ctx, filter.CategoryID, filter)
		default:
			return s.products.List(ctx, filter)
		}
	})
}

func (s *Service) Product(ctx context.Context, id int64) (domain.Product, error) {
	return load(ctx, s, "product:"+strconv.FormatInt(id, 10), func(ctx context.Context) (domain.Product, error) {
		return s.products.Get(ctx, id)
	})
}

// Search always goes to the server.
func (s *Service) Search(ctx context.Context, query string, filter domain.ProductFilter) (domain.SearchResult, error) {
	return s.products.Search(ctx, query, filter)
}

func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	return load(ctx, s, "categories", s.categories.List)
}

func (s *Service) Subcategories(ctx context.Context, categoryID int64) ([]domain.Subcategory, error) {
	return load(ctx, s, "subcategories:"+strconv.FormatInt(categoryID, 10), func(ctx context.Context) ([]domain.Subcategory, error) {
		return s.categories.Subcategories(ctx, categoryID)
	})
}

func (s *Service) Banners(ctx context.Context, bannerType string) ([]domain.Banner, error) {
	return load(ctx, s, "banners:"+bannerType, func(ctx context.Context) ([]domain.Banner, error) {
		return s.banners.ByType(ctx, bannerType)
	})
}

// Invalidate drops cached entries for keys.
func (s *Service) Invalidate(ctx context.Context, keys ...string) {
	for _, k := range keys {
		if err := s.cache.Delete(ctx, k); err != nil {
			logger.FromContext(ctx, s.logger).Warn("cache delete error", zap.String("key", k), zap.Error(err))
		}
	}
}

// load reads key from the cache or fetches it once for all concurrent
// callers. Fallback data is returned but never cached.
func load[T any](ctx context.Context, s *Service, key string, fetch func(context.Context) (T, error)) (T, error) {
	v, err, _ := s.sfg.Do(key, func() (any, error) {
		log := logger.FromContext(ctx, s.logger)

		var cached T
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Warn("cache get error", zap.String("key", key), zap.Error(err))
		}

		fctx, report := api.TrackFallback(ctx)
		out, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		if report.Used() {
			return out, nil
		}
		if err := s.cache.Set(ctx, key, out); err != nil {
			log.Warn("cache set error", zap.String("key", key), zap.Error(err))
		}
		return out, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func encode(params map[string]string) string {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	return q.Encode()
}
