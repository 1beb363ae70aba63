package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackData_Embedded(t *testing.T) {
	require.Len(t, fallback.Products, 3)
	assert.Equal(t, "Fresh Organic Bananas", fallback.Products[0].ProductName)
	assert.Equal(t, "2.49", fallback.Products[0].Price().String())
	assert.False(t, fallback.Products[1].DiscountedPrice.Valid)
	assert.Len(t, fallback.Categories, 4)
	assert.Len(t, fallback.Banners, 3)
}

func TestProducts_FallbackOnServerError(t *testing.T) {
	env := setupTestEnv(t)
	env.fake.FailNext(http.MethodGet, "/products", http.StatusBadGateway)

	ctx, report := TrackFallback(context.Background())
	ps, err := env.client.Products.ByLocation(ctx, "560001", domain.ProductFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, ps, 2)
	assert.True(t, report.Used())
}

func TestProducts_NoFallbackWhenHealthy(t *testing.T) {
	env := setupTestEnv(t)

	ctx, report := TrackFallback(context.Background())
	ps, err := env.client.Products.List(ctx, domain.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, ps, 6)
	assert.False(t, report.Used())
}

func TestCategories_Fallback(t *testing.T) {
	env := setupTestEnv(t)
	env.fake.FailNext(http.MethodGet, "/categories", http.StatusServiceUnavailable)

	cs, err := env.client.Categories.List(context.Background())
	require.NoError(t, err)
	require.Len(t, cs, 4)
	assert.Equal(t, "Fresh Fruits", cs[0].Name)
}

func TestBanners_FallbackFiltersByType(t *testing.T) {
	env := setupTestEnv(t)
	env.fake.FailNext(http.MethodGet, "/banners", http.StatusInternalServerError)

	bs, err := env.client.Banners.ByType(context.Background(), "flash_sale")
	require.NoError(t, err)
	require.Len(t, bs, 1)
	assert.Equal(t, "Flash Sale - 50% Off!", bs[0].Title)
}

func TestSubcategories_FallbackEmpty(t *testing.T) {
	env := setupTestEnv(t)
	env.fake.FailNext(http.MethodGet, "/subcategories", http.StatusInternalServerError)

	subs, err := env.client.Categories.Subcategories(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, subs)
	assert.Empty(t, subs)
}

func TestProductGet_NoFallback(t *testing.T) {
	env := setupTestEnv(t)
	env.fake.FailNext(http.MethodGet, "/products/1", http.StatusInternalServerError)

	_, err := env.client.Products.Get(context.Background(), 1)
	require.Error(t, err)
}

func TestFallbackProducts_LimitBeyondData(t *testing.T) {
	assert.Len(t, fallbackProducts(10), 3)
	assert.Len(t, fallbackBanners(""), 3)
	assert.Empty(t, fallbackBanners("seasonal"))
}

func TestFallback_OnHTMLBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html>gateway maintenance</html>"))
	}))
	t.Cleanup(ts.Close)
	client := New(Options{BaseURL: ts.URL, Timeout: 2 * time.Second}, events.NewBus(), nil)

	ctx, report := TrackFallback(context.Background())
	ps, err := client.Products.List(ctx, domain.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, ps, 3)
	assert.True(t, report.Used())

	cs, err := client.Categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cs, 4)

	bs, err := client.Banners.List(ctx)
	require.NoError(t, err)
	assert.Len(t, bs, 3)

	_, err = client.Products.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestFallbackProducts_Isolated(t *testing.T) {
	first := fallbackProducts(3)
	require.NotEmpty(t, first[0].Images)
	first[0].ProductName = "changed"
	first[0].Images[0].ImageURL = "changed"
	if len(first[0].Variants) > 0 {
		first[0].Variants[0].VariantName = "changed"
	}

	second := fallbackProducts(3)
	assert.Equal(t, "Fresh Organic Bananas", second[0].ProductName)
	assert.NotEqual(t, "changed", second[0].Images[0].ImageURL)
	if len(second[0].Variants) > 0 {
		assert.NotEqual(t, "changed", second[0].Variants[0].VariantName)
	}
	assert.Equal(t, fallback.Products[0].Images, second[0].Images)
}
