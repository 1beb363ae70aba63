package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func cartWith(items ...domain.CartItem) *fakeCart {
	return &fakeCart{state: domain.NewCartState(items, decimal.NullDecimal{}), clearOK: true}
}

func sampleItems() []domain.CartItem {
	return []domain.CartItem{
		{
			CartID:          "11",
			ProductID:       1,
			BasePrice:       decimal.RequireFromString("2.99"),
			DiscountedPrice: decimal.NewNullDecimal(decimal.RequireFromString("2.49")),
			Quantity:        2,
			VendorID:        ptr(int64(1)),
		},
		{
			CartID:       "12",
			ProductID:    2,
			BasePrice:    decimal.RequireFromString("12.99"),
			Quantity:     1,
			VariantID:    ptr(int64(22)),
			VariantPrice: decimal.NewNullDecimal(decimal.RequireFromString("59.99")),
			VendorID:     ptr(int64(2)),
		},
	}
}

func loggedIn() *fakeSessions {
	return &fakeSessions{session: &domain.Session{Token: "tok", User: domain.User{ID: "7", Phone: "+919876543210"}}}
}

func homeAddress() domain.Address {
	return domain.Address{AddressID: "3", FullName: "Asha Rao", Pincode: "560001"}
}

func beginAt(t *testing.T, step Step) (*Flow, *fakeCart, *fakeOrders) {
	t.Helper()
	cart := cartWith(sampleItems()...)
	orders := &fakeOrders{resp: domain.CreateOrderResponse{OrderID: "1001"}}
	f, err := Begin(loggedIn(), cart, orders, events.NewBus(), nil)
	require.NoError(t, err)
	if step.Index() >= StepAddress.Index() {
		require.NoError(t, f.Next())
	}
	if step.Index() >= StepSummary.Index() {
		f.SelectAddress(homeAddress())
		require.NoError(t, f.Next())
	}
	require.Equal(t, step, f.Step())
	return f, cart, orders
}

func TestStep_Order(t *testing.T) {
	assert.Equal(t, []Step{StepCart, StepAddress, StepSummary, StepConfirmation}, Steps())
	assert.Equal(t, 2, StepSummary.Index())
	assert.Equal(t, -1, Step("payment").Index())
	assert.Equal(t, "Delivery Address", StepAddress.Title())
	assert.True(t, StepConfirmation.IsTerminal())
}

func TestBegin_Guard(t *testing.T) {
	tests := []struct {
		name     string
		sessions *fakeSessions
		cart     *fakeCart
		want     error
	}{
		{"no session and empty cart", &fakeSessions{}, cartWith(), ErrNotAuthenticated},
		{"no session", &fakeSessions{}, cartWith(sampleItems()...), ErrNotAuthenticated},
		{"empty cart", loggedIn(), cartWith(), ErrEmptyCart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Begin(tt.sessions, tt.cart, &fakeOrders{}, nil, nil)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, f)
		})
	}
}

func TestGoTo_CannotSkipAhead(t *testing.T) {
	f, _, _ := beginAt(t, StepCart)

	assert.False(t, f.GoTo(StepSummary))
	assert.Equal(t, StepCart, f.Step())
	assert.False(t, f.GoTo(StepConfirmation))
	assert.True(t, f.GoTo(StepCart))

	require.NoError(t, f.Next())
	f.SelectAddress(homeAddress())
	require.NoError(t, f.Next())
	assert.Equal(t, StepSummary, f.Step())
	assert.True(t, f.Reachable(StepAddress))
	assert.False(t, f.Reachable(StepConfirmation))

	assert.True(t, f.GoTo(StepCart))
	assert.Equal(t, StepCart, f.Step())
}

func TestNext_Gates(t *testing.T) {
	f, cart, _ := beginAt(t, StepCart)

	cart.state = domain.NewCartState(nil, decimal.NullDecimal{})
	assert.ErrorIs(t, f.Next(), ErrEmptyCart)
	cart.state = domain.NewCartState(sampleItems(), decimal.NullDecimal{})

	require.NoError(t, f.Next())
	assert.ErrorIs(t, f.Next(), ErrNoAddress)
	assert.Equal(t, StepAddress, f.Step())

	f.SelectAddress(homeAddress())
	require.NoError(t, f.Next())

	// navigation never reaches confirmation
	require.NoError(t, f.Next())
	assert.Equal(t, StepSummary, f.Step())
}

func TestPrevious(t *testing.T) {
	f, _, _ := beginAt(t, StepSummary)

	f.Previous()
	assert.Equal(t, StepAddress, f.Step())
	f.Previous()
	f.Previous()
	assert.Equal(t, StepCart, f.Step())
}

func TestCheck_EmptiedCartEndsFlow(t *testing.T) {
	f, cart, _ := beginAt(t, StepAddress)
	require.NoError(t, f.Check())

	cart.state = domain.NewCartState(nil, decimal.NullDecimal{})
	assert.ErrorIs(t, f.Check(), ErrEmptyCart)
}

func TestPlaceOrder_BuildsRequestAndConfirms(t *testing.T) {
	f, cart, orders := beginAt(t, StepSummary)

	bus := events.NewBus()
	f.bus = bus
	var placed []events.OrderPlaced
	bus.OrderPlaced.Subscribe(func(ev events.OrderPlaced) { placed = append(placed, ev) })

	res, err := f.PlaceOrder(context.Background(), PlaceOrderInput{
		Payment:       domain.PaymentCOD,
		Notes:         "ring the bell",
		CustomerEmail: "  asha@example.com ",
	})
	require.NoError(t, err)

	req := orders.req
	require.NotNil(t, req)
	assert.Equal(t, "tok", orders.token)
	assert.Equal(t, domain.ID("7"), req.UserID)
	assert.Equal(t, int64(1), *req.VendorID)
	assert.Equal(t, "COD", req.PaymentMethod)
	assert.Equal(t, "online", req.OrderType)
	assert.Equal(t, domain.ID("3"), req.DeliveryAddressID)
	assert.Equal(t, "asha@example.com", req.CustomerEmail)
	assert.Equal(t, "Asha Rao", req.CustomerName)
	assert.Equal(t, "ring the bell", req.Notes)
	require.Len(t, req.Items, 2)
	assert.Equal(t, "2.49", req.Items[0].Price.StringFixed(2))
	assert.Equal(t, "4.98", req.Items[0].Subtotal.StringFixed(2))
	assert.Equal(t, "59.99", req.Items[1].Price.StringFixed(2))
	assert.Equal(t, "64.97", req.TotalAmount.StringFixed(2))

	assert.Equal(t, domain.ID("1001"), res.OrderID)
	assert.Len(t, res.Items, 2)
	assert.Equal(t, StepConfirmation, f.Step())
	assert.Equal(t, 1, cart.cleared)
	assert.True(t, cart.State().Empty())

	// confirmed flows outlive the emptied cart and ignore navigation
	assert.NoError(t, f.Check())
	assert.False(t, f.GoTo(StepCart))
	f.Previous()
	assert.Equal(t, StepConfirmation, f.Step())

	order, ok := f.Order()
	require.True(t, ok)
	assert.Equal(t, res, order)
	require.Len(t, placed, 1)
	assert.Equal(t, events.OrderPlaced{OrderID: "1001", UserID: "7", TotalAmount: "64.97"}, placed[0])
}

func TestPlaceOrder_BlankEmailOmitted(t *testing.T) {
	f, _, orders := beginAt(t, StepSummary)

	_, err := f.PlaceOrder(context.Background(), PlaceOrderInput{Payment: domain.PaymentCOD, CustomerEmail: "   "})
	require.NoError(t, err)
	assert.Empty(t, orders.req.CustomerEmail)
}

func TestPlaceOrder_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong step", func(t *testing.T) {
		f, _, orders := beginAt(t, StepAddress)
		_, err := f.PlaceOrder(ctx, PlaceOrderInput{Payment: domain.PaymentCOD})
		assert.ErrorIs(t, err, ErrWrongStep)
		assert.Nil(t, orders.req)
	})

	t.Run("card disabled", func(t *testing.T) {
		f, _, orders := beginAt(t, StepSummary)
		_, err := f.PlaceOrder(ctx, PlaceOrderInput{Payment: domain.PaymentCard})
		assert.ErrorIs(t, err, ErrPaymentUnavailable)
		assert.Nil(t, orders.req)
	})

	t.Run("server error", func(t *testing.T) {
		f, cart, orders := beginAt(t, StepSummary)
		orders.err = errors.New("boom")
		_, err := f.PlaceOrder(ctx, PlaceOrderInput{Payment: domain.PaymentCOD})
		assert.Error(t, err)
		assert.Equal(t, StepSummary, f.Step())
		assert.Equal(t, 0, cart.cleared)
	})

	t.Run("missing order id", func(t *testing.T) {
		f, cart, orders := beginAt(t, StepSummary)
		orders.resp = domain.CreateOrderResponse{Message: "ok"}
		_, err := f.PlaceOrder(ctx, PlaceOrderInput{Payment: domain.PaymentCOD})
		assert.ErrorIs(t, err, ErrOrderRejected)
		assert.Equal(t, StepSummary, f.Step())
		assert.Equal(t, 0, cart.cleared)
		_, ok := f.Order()
		assert.False(t, ok)
	})
}
