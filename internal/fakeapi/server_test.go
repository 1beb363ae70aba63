package fakeapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func setupServer(t *testing.T) *Server {
	srv := New(Options{OTP: "123456"}, nil)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, BasePath+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, srv *Server, phone string) (string, domain.ID) {
	t.Helper()
	w := doJSON(t, srv, http.MethodPost, "/auth/customer/auth", "", map[string]string{"phone_number": phone})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/auth/customer/verify", "", map[string]string{"phone_number": phone, "otp": "123456"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID domain.ID `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.User.ID
}

func TestAuth_NewUserThenExisting(t *testing.T) {
	srv := setupServer(t)

	w := doJSON(t, srv, http.MethodPost, "/auth/customer/auth", "", map[string]string{"phone_number": "+919876543210"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"OTP sent successfully","isNewUser":true}`, w.Body.String())

	login(t, srv, "+919876543210")

	w = doJSON(t, srv, http.MethodPost, "/auth/customer/auth", "", map[string]string{"phone_number": "+919876543210"})
	assert.JSONEq(t, `{"message":"OTP sent successfully","isNewUser":false}`, w.Body.String())
}

func TestAuth_WrongOTP(t *testing.T) {
	srv := setupServer(t)
	doJSON(t, srv, http.MethodPost, "/auth/customer/auth", "", map[string]string{"phone_number": "+919876543210"})

	w := doJSON(t, srv, http.MethodPost, "/auth/customer/verify", "", map[string]string{"phone_number": "+919876543210", "otp": "000000"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid OTP")
}

func TestAuth_ExpiredOTP(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	srv := New(Options{OTP: "123456", Now: func() time.Time { return now }}, nil)
	t.Cleanup(srv.Close)

	doJSON(t, srv, http.MethodPost, "/auth/customer/auth", "", map[string]string{"phone_number": "+919876543210"})
	now = now.Add(OTPTTL + time.Second)

	w := doJSON(t, srv, http.MethodPost, "/auth/customer/verify", "", map[string]string{"phone_number": "+919876543210", "otp": "123456"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "OTP expired")
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	srv := setupServer(t)

	w := doJSON(t, srv, http.MethodGet, "/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, srv, http.MethodGet, "/cart", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExpireTokens(t *testing.T) {
	srv := setupServer(t)
	token, _ := login(t, srv, "+919876543210")

	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/cart", token, nil).Code)
	srv.ExpireTokens()
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, srv, http.MethodGet, "/cart", token, nil).Code)

	fresh, _ := login(t, srv, "+919876543210")
	assert.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/cart", fresh, nil).Code)
}

func TestMintToken_Expired(t *testing.T) {
	srv := setupServer(t)
	_, userID := login(t, srv, "+919876543210")

	token, err := srv.MintToken(userID, "+919876543210", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, srv, http.MethodGet, "/cart", token, nil).Code)
}

func TestCart_AddMergesLines(t *testing.T) {
	srv := setupServer(t)
	token, _ := login(t, srv, "+919876543210")

	for i := 0; i < 3; i++ {
		w := doJSON(t, srv, http.MethodPost, "/cart", token, map[string]any{"product_id": 1, "variant_id": nil, "quantity": 1})
		require.Equal(t, http.StatusCreated, w.Code)
	}
	variant := int64(21)
	doJSON(t, srv, http.MethodPost, "/cart", token, map[string]any{"product_id": 2, "variant_id": variant, "quantity": 2})

	var cart domain.CartResponse
	require.NoError(t, json.Unmarshal(doJSON(t, srv, http.MethodGet, "/cart", token, nil).Body.Bytes(), &cart))
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, "12.99", cart.Items[1].VariantPrice.Decimal.String())
	// 3 x 2.49 + 2 x 12.99
	assert.Equal(t, "33.45", cart.Total.Decimal.StringFixed(2))
}

func TestCart_UnknownVariant(t *testing.T) {
	srv := setupServer(t)
	token, _ := login(t, srv, "+919876543210")

	w := doJSON(t, srv, http.MethodPost, "/cart", token, map[string]any{"product_id": 2, "variant_id": 999, "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFailNext(t *testing.T) {
	srv := setupServer(t)
	srv.FailNext(http.MethodGet, "/categories", http.StatusServiceUnavailable)

	assert.Equal(t, http.StatusServiceUnavailable, doJSON(t, srv, http.MethodGet, "/categories", "", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/categories", "", nil).Code)
	assert.Equal(t, 2, srv.Calls(http.MethodGet, "/categories"))
}

func TestProducts_Filters(t *testing.T) {
	srv := setupServer(t)

	var ps []domain.Product
	require.NoError(t, json.Unmarshal(doJSON(t, srv, http.MethodGet, "/products?category_id=1", "", nil).Body.Bytes(), &ps))
	assert.Len(t, ps, 2)

	require.NoError(t, json.Unmarshal(doJSON(t, srv, http.MethodGet, "/products?pincode=999999", "", nil).Body.Bytes(), &ps))
	assert.Empty(t, ps)

	require.NoError(t, json.Unmarshal(doJSON(t, srv, http.MethodGet, "/products?sort=price_low&limit=2", "", nil).Body.Bytes(), &ps))
	require.Len(t, ps, 2)
	assert.Equal(t, "Toned Milk", ps[0].ProductName)

	var res domain.SearchResult
	require.NoError(t, json.Unmarshal(doJSON(t, srv, http.MethodGet, "/products/search?query=rice", "", nil).Body.Bytes(), &res))
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 1, res.TotalPages)
}

func TestOrders_LifecycleAndReview(t *testing.T) {
	srv := setupServer(t)
	token, userID := login(t, srv, "+919876543210")

	w := doJSON(t, srv, http.MethodPost, "/addresses", token, domain.AddressInput{
		AddressType: "home", FullName: "Asha Rao", MobileNumber: "9876543210",
		AddressLine1: "12 MG Road", Pincode: "560001", City: "Bengaluru", State: "KA",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var addr domain.Address
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &addr))
	assert.True(t, addr.IsDefault)

	order := map[string]any{
		"user_id":             userID,
		"items":               []map[string]any{{"product_id": 1, "quantity": 2, "price": "2.49", "subtotal": "4.98"}},
		"payment_method":      "COD",
		"total_amount":        "4.98",
		"delivery_address_id": addr.AddressID,
		"order_type":          "online",
	}
	w = doJSON(t, srv, http.MethodPost, "/orders", token, order)
	require.Equal(t, http.StatusCreated, w.Code)
	var created domain.CreateOrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.False(t, created.OrderID.IsZero())

	w = doJSON(t, srv, http.MethodGet, "/reviews/can-review/"+created.OrderID.String()+"/1", token, nil)
	assert.JSONEq(t, `{"canReview":false}`, w.Body.String())

	require.NoError(t, srv.Store().SetOrderStatus(idNumber(created.OrderID), domain.OrderStatusDelivered))

	w = doJSON(t, srv, http.MethodPost, "/orders/"+created.OrderID.String()+"/cancel", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/reviews", token, map[string]any{"product_id": "1", "order_id": created.OrderID, "rating": 5})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/reviews", token, map[string]any{"product_id": "1", "order_id": created.OrderID, "rating": 4})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var reviews struct {
		Reviews []domain.Review `json:"reviews"`
	}
	require.NoError(t, json.Unmarshal(doJSON(t, srv, http.MethodGet, "/reviews/product/1", "", nil).Body.Bytes(), &reviews))
	assert.Len(t, reviews.Reviews, 1)
}

func TestOrders_RejectCard(t *testing.T) {
	srv := setupServer(t)
	token, userID := login(t, srv, "+919876543210")

	w := doJSON(t, srv, http.MethodPost, "/orders", token, map[string]any{
		"user_id":        userID,
		"items":          []map[string]any{{"product_id": 1, "quantity": 1, "price": "2.49", "subtotal": "2.49"}},
		"payment_method": "credit_card",
		"total_amount":   "2.49",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cash on delivery")
}

func TestOrders_OtherUser(t *testing.T) {
	srv := setupServer(t)
	token, _ := login(t, srv, "+919876543210")
	_, other := login(t, srv, "+919999999999")

	w := doJSON(t, srv, http.MethodGet, "/orders/user/"+other.String(), token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRespondJSON_EncodeFailureLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	srv := New(Options{}, zap.New(core))
	t.Cleanup(srv.Close)

	w := httptest.NewRecorder()
	srv.respondJSON(w, http.StatusOK, map[string]any{"bad": make(chan int)})

	assert.Equal(t, http.StatusOK, w.Code)
	entries := logs.FilterMessage("failed to encode response").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, http.StatusOK, entries[0].ContextMap()["status"])
}
