package api

import (
	"context"
	"testing"

	"github.com/fjod/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogResources(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	ps, err := env.client.Products.ByCategory(ctx, 3, domain.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, ps, 2)

	ps, err = env.client.Products.BySubcategory(ctx, "Rice", domain.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Len(t, ps[0].Variants, 2)

	res, err := env.client.Products.Search(ctx, "tomato", domain.ProductFilter{Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)

	c, err := env.client.Categories.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Grains & Rice", c.Name)

	subs, err := env.client.Categories.Subcategories(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, subs, 4)

	bs, err := env.client.Banners.List(ctx)
	require.NoError(t, err)
	assert.Len(t, bs, 3)
}

func TestAddressesAndOrders(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	login := env.login(t, "+919876543210")
	token, userID := login.Token, login.User.ID

	addr, err := env.client.Addresses.Create(ctx, token, domain.AddressInput{
		AddressType: "home", FullName: "Asha Rao", MobileNumber: "9876543210",
		AddressLine1: "12 MG Road", Pincode: "560001",
	})
	require.NoError(t, err)
	assert.True(t, addr.IsDefault)

	second, err := env.client.Addresses.Create(ctx, token, domain.AddressInput{
		AddressType: "work", FullName: "Asha Rao", MobileNumber: "9876543210",
		AddressLine1: "1 Tech Park", Pincode: "560034",
	})
	require.NoError(t, err)
	require.NoError(t, env.client.Addresses.SetDefault(ctx, token, second.AddressID))

	in := second.Input()
	in.Landmark = ptr("Near the metro")
	updated, err := env.client.Addresses.Update(ctx, token, second.AddressID, in)
	require.NoError(t, err)
	assert.Equal(t, "Near the metro", *updated.Landmark)

	list, err := env.client.Addresses.List(ctx, token)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.False(t, list[0].IsDefault)
	assert.True(t, list[1].IsDefault)

	created, err := env.client.Orders.Create(ctx, token, domain.CreateOrderRequest{
		UserID: userID,
		Items: []domain.CreateOrderItem{
			{ProductID: 3, Quantity: 1, Price: mustDecimal("3.49"), Subtotal: mustDecimal("3.49")},
		},
		PaymentMethod:     domain.PaymentCOD.WireValue(),
		TotalAmount:       mustDecimal("3.49"),
		DeliveryAddressID: addr.AddressID,
		OrderType:         "online",
	})
	require.NoError(t, err)
	require.False(t, created.OrderID.IsZero())

	orders, err := env.client.Orders.ListByUser(ctx, token, userID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, domain.OrderStatusPending, orders[0].OrderStatus)

	require.NoError(t, env.client.Orders.Cancel(ctx, token, created.OrderID))
	o, err := env.client.Orders.Get(ctx, token, created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, o.OrderStatus)

	require.NoError(t, env.client.Addresses.Delete(ctx, token, addr.AddressID))
}

func TestReviews(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	login := env.login(t, "+919876543210")
	token := login.Token

	ok, err := env.client.Reviews.CanReview(ctx, token, "424242", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	err = env.client.Reviews.Create(ctx, token, domain.ReviewInput{ProductID: "1", OrderID: "1", Rating: 6})
	require.ErrorIs(t, err, domain.ErrValidation)

	mine, err := env.client.Reviews.Mine(ctx, token)
	require.NoError(t, err)
	assert.Empty(t, mine)

	reviews, err := env.client.Reviews.ForProduct(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func ptr[T any](v T) *T { return &v }

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
