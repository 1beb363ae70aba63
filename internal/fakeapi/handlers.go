package fakeapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fjod/storefront/internal/domain"
	"go.uber.org/zap"
)

func productFilter(r *http.Request) domain.ProductFilter {
	q := r.URL.Query()
	categoryID, _ := strconv.ParseInt(q.Get("category_id"), 10, 64)
	return domain.ProductFilter{
		CategoryID:      categoryID,
		SubcategoryName: q.Get("subcategory_name"),
		Search:          q.Get("search"),
		Pincode:         q.Get("pincode"),
		Sort:            domain.ProductSort(q.Get("sort")),
		Page:            queryInt(r, "page"),
		Limit:           queryInt(r, "limit"),
	}
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.store.Products(productFilter(r)))
}

func (s *Server) searchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	s.respondJSON(w, http.StatusOK, s.store.Search(query, productFilter(r)))
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "id")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	p, err := s.store.Product(id)
	if err != nil {
		s.handleStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, p)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.store.Categories())
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "id")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	c, err := s.store.Category(id)
	if err != nil {
		s.handleStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, c)
}

func (s *Server) listSubcategories(w http.ResponseWriter, r *http.Request) {
	categoryID, _ := strconv.ParseInt(r.URL.Query().Get("category_id"), 10, 64)
	s.respondJSON(w, http.StatusOK, s.store.Subcategories(categoryID))
}

func (s *Server) listBanners(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.store.Banners(r.URL.Query().Get("type")))
}

type authRequest struct {
	PhoneNumber string `json:"phone_number"`
	OTP         string `json:"otp"`
}

func (s *Server) startAuth(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PhoneNumber == "" {
		s.respondError(w, http.StatusBadRequest, "phone_number is required")
		return
	}
	isNew := s.store.IssueOTP(req.PhoneNumber)
	s.logger.Info("otp issued", zap.String("phone", req.PhoneNumber), zap.Bool("new_user", isNew))
	s.respondJSON(w, http.StatusOK, map[string]any{
		"message":   "OTP sent successfully",
		"isNewUser": isNew,
	})
}

type verifyUser struct {
	ID          domain.ID `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	Name        *string   `json:"name"`
	Email       *string   `json:"email"`
	Role        string    `json:"role"`
}

func (s *Server) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PhoneNumber == "" || req.OTP == "" {
		s.respondError(w, http.StatusBadRequest, "phone_number and otp are required")
		return
	}
	u, err := s.store.VerifyOTP(req.PhoneNumber, req.OTP)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	token, err := s.MintToken(u.ID, u.Phone, s.now().Add(TokenTTL))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	vu := verifyUser{ID: u.ID, PhoneNumber: u.Phone, Role: u.Role}
	if u.Name != "" {
		vu.Name = &u.Name
	}
	if u.Email != "" {
		vu.Email = &u.Email
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   token,
		"user":    vu,
	})
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.store.Cart(getUserIDFromContext(r.Context())))
}

type addToCartRequest struct {
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

func (s *Server) addToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		s.respondError(w, http.StatusBadRequest, "product_id must be positive")
		return
	}
	cartID, err := s.store.AddToCart(getUserIDFromContext(r.Context()), req.ProductID, req.VariantID, req.Quantity)
	if err != nil {
		s.handleStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]any{
		"message": "Item added to cart",
		"cart_id": domain.IDFromInt(cartID),
	})
}

type updateCartRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Server) updateCartItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := pathInt(r, "cartId")
	if !ok {
		s.respondError(w, http.StatusNotFound, "cart item not found")
		return
	}
	var req updateCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.store.UpdateCartLine(getUserIDFromContext(r.Context()), cartID, req.Quantity); err != nil {
		s.handleStoreError(w, err)
		return
	}
	s.respondMessage(w, http.StatusOK, "Cart updated")
}

func (s *Server) removeCartItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := pathInt(r, "cartId")
	if !ok {
		s.respondError(w, http.StatusNotFound, "cart item not found")
		return
	}
	if err := s.store.RemoveCartLine(getUserIDFromContext(r.Context()), cartID); err != nil {
		s.handleStoreError(w, err)
		return
	}
	s.respondMessage(w, http.StatusOK, "Item removed from cart")
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	s.store.ClearCart(getUserIDFromContext(r.Context()))
	s.respondMessage(w, http.StatusOK, "Cart cleared")
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	userID := getUserIDFromContext(r.Context())
	if idNumber(req.UserID) != userID {
		s.respondError(w, http.StatusForbidden, "user_id does not match token")
		return
	}
	id, err := s.store.CreateOrder(userID, req)
	if err != nil {
		s.handleStoreError(w, err)
		return
	}
	s.logger.Info("order created", zap.Int64("order_id", id), zap.Int64("user_id", userID))
	s.respondJSON(w, http.StatusCreated, domain.CreateOrderResponse{
		OrderID: domain.IDFromInt(id),
		Message: "Order placed successfully",
	})
}

func (s *Server) userOrders(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if requested, ok := pathInt(r, "userId"); !ok || requested != userID {
		s.respondError(w, http.StatusForbidden, "cannot list another user's orders")
		return
	}
	s.respondJSON(w, http.StatusOK, s.store.OrdersByUser(userID))
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "id")
	if !ok {
		s.respondError(w, http.StatusNotFound, "order not found")
		return
	}
	o, err := s.store.Order(getUserIDFromContext(r.Context()), id)
	if err != nil {
		s.handleStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, o)
}

func (s *Server) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "id")
	if !ok {
		s.respondError(w, http.StatusNotFound, "order not found")
		return
	}
	if err := s.store.CancelOrder(getUserIDFromContext(r.Context()), id); err != nil {
		s.handleStoreError(w, err)
		return
	}
	s.respondMessage(w, http.StatusOK, "Order cancelled")
}

func (s *Server) listAddresses(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.store.Addresses(getUserIDFromContext(r.Context())))
}

func (s *Server) decodeAddress(w http.ResponseWriter, r *http.Request) (domain.AddressInput, bool) {
	var in domain.AddressInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return in, false
	}
	if err := in.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return in, false
	}
	return in, true
}

func (s *Server) createAddress(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeAddress(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusCreated, s.store.CreateAddress(getUserIDFromContext(r.Context()), in))
}

func (s *Server) updateAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "id")
	if !ok {
		s.respondError(w, http.StatusNotFound, "address not found")
		return
	}
	in, ok := s.decodeAddress(w, r)
	if !ok {
		return
	}
	addr, err := s.store.UpdateAddress(getUserIDFromContext(r.Context()), id, in)
	if err != nil {
		s.handleStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, addr)
}

func (s *Server) deleteAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "id")
	if !ok {
		s.respondError(w, http.StatusNotFound, "address not found")
		return
	}
	if err := s.store.DeleteAddress(getUserIDFromContext(r.Context()), id); err != nil {
		s.handleStoreError(w, err)
		return
	}
	s.respondMessage(w, http.StatusOK, "Address deleted")
}

func (s *Server) setDefaultAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "id")
	if !ok {
		s.respondError(w, http.StatusNotFound, "address not found")
		return
	}
	if err := s.store.SetDefaultAddress(getUserIDFromContext(r.Context()), id); err != nil {
		s.handleStoreError(w, err)
		return
	}
	s.respondMessage(w, http.StatusOK, "Default address updated")
}

func (s *Server) productReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "id")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"reviews": s.store.ProductReviews(id),
	})
}

func (s *Server) createReview(w http.ResponseWriter, r *http.Request) {
	var in domain.ReviewInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := in.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	review, err := s.store.CreateReview(getUserIDFromContext(r.Context()), in)
	if err != nil {
		s.handleStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Review submitted",
		"review":  review,
	})
}

func (s *Server) myReviews(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"reviews": s.store.MyReviews(getUserIDFromContext(r.Context())),
	})
}

func (s *Server) canReview(w http.ResponseWriter, r *http.Request) {
	orderID, ok1 := pathInt(r, "orderId")
	productID, ok2 := pathInt(r, "productId")
	if !ok1 || !ok2 {
		s.respondError(w, http.StatusNotFound, "order not found")
		return
	}
	can, err := s.store.CanReview(getUserIDFromContext(r.Context()), orderID, productID)
	if err != nil {
		s.handleStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"canReview": can})
}
