package cache

import (
	"context"
	"errors"
)

// CatalogCache stores catalog responses (product lists, categories, banners)
// as JSON under request-derived keys.
type CatalogCache interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, key string) error
}

var ErrCacheMiss = errors.New("cache miss")

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string, any) error { return ErrCacheMiss }

func (NopCache) Set(context.Context, string, any) error { return nil }

func (NopCache) Delete(context.Context, string) error { return nil }
