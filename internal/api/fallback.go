package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/logger"
	"go.uber.org/zap"
)

//go:embed fallback.json
var fallbackJSON []byte

// fallbackData is served when the backend is unreachable so listings never
// come back empty.
type fallbackData struct {
	Products   []domain.Product  `json:"products"`
	Categories []domain.Category `json:"categories"`
	Banners    []domain.Banner   `json:"banners"`
}

var fallback = mustLoadFallback()

// mustLoadFallback decodes a private copy of the embedded data, so callers
// may modify what they get without affecting later fallbacks.
func mustLoadFallback() fallbackData {
	var fb fallbackData
	if err := json.Unmarshal(fallbackJSON, &fb); err != nil {
		panic(fmt.Sprintf("api: invalid embedded fallback data: %v", err))
	}
	return fb
}

func fallbackProducts(limit int) []domain.Product {
	products := mustLoadFallback().Products
	if limit > len(products) {
		limit = len(products)
	}
	return products[:limit:limit]
}

func fallbackCategories() []domain.Category {
	return mustLoadFallback().Categories
}

func fallbackBanners(bannerType string) []domain.Banner {
	banners := mustLoadFallback().Banners
	out := make([]domain.Banner, 0, len(banners))
	for _, b := range banners {
		if bannerType == "" || b.BannerType == bannerType {
			out = append(out, b)
		}
	}
	return out
}

type fallbackKey struct{}

// FallbackReport records whether any call made with its context was answered
// from fallback data.
type FallbackReport struct {
	used atomic.Bool
}

func (r *FallbackReport) Used() bool {
	return r.used.Load()
}

// TrackFallback returns a context whose calls report fallback use to the
// returned FallbackReport.
func TrackFallback(ctx context.Context) (context.Context, *FallbackReport) {
	r := &FallbackReport{}
	return context.WithValue(ctx, fallbackKey{}, r), r
}

func (c *Client) degrade(ctx context.Context, what string, err error) {
	if r, ok := ctx.Value(fallbackKey{}).(*FallbackReport); ok {
		r.used.Store(true)
	}
	logger.FromContext(ctx, c.logger).Warn("using fallback data",
		zap.String("resource", what),
		zap.Error(err))
}
