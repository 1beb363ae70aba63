// Package fakeapi is an in-memory implementation of the storefront REST API.
// It backs the integration tests and the `storefront mock-api` command.
package fakeapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BasePath prefixes every route, mirroring the production base URL.
const BasePath = "/api"

// TokenTTL is the lifetime of minted tokens.
const TokenTTL = 30 * 24 * time.Hour

type Options struct {
	Secret string
	OTP    string
	Now    func() time.Time
}

type Server struct {
	store  *MemoryStore
	secret []byte
	now    func() time.Time
	logger *zap.Logger
	router chi.Router

	mu         sync.Mutex
	generation int
	failures   map[string][]int
	calls      map[string]int
	latency    time.Duration
}

type ctxKey string

const userIDKey ctxKey = "user_id"

type tokenClaims struct {
	Phone      string `json:"phone"`
	Generation int    `json:"gen"`
	jwt.RegisteredClaims
}

func New(opts Options, log *zap.Logger) *Server {
	if opts.Secret == "" {
		opts.Secret = "storefront-mock-secret"
	}
	if opts.OTP == "" {
		opts.OTP = "123456"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Server{
		store:    NewMemoryStore(opts.OTP, opts.Now),
		secret:   []byte(opts.Secret),
		now:      opts.Now,
		logger:   logger.OrNop(log),
		failures: make(map[string][]int),
		calls:    make(map[string]int),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.recordCalls)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route(BasePath, func(r chi.Router) {
		r.Get("/products", s.listProducts)
		r.Get("/products/search", s.searchProducts)
		r.Get("/products/{id}", s.getProduct)
		r.Get("/categories", s.listCategories)
		r.Get("/categories/{id}", s.getCategory)
		r.Get("/subcategories", s.listSubcategories)
		r.Get("/banners", s.listBanners)
		r.Get("/reviews/product/{id}", s.productReviews)

		r.Post("/auth/customer/auth", s.startAuth)
		r.Post("/auth/customer/verify", s.verifyOTP)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/cart", s.getCart)
			r.Post("/cart", s.addToCart)
			r.Delete("/cart", s.clearCart)
			r.Put("/cart/{cartId}", s.updateCartItem)
			r.Delete("/cart/{cartId}", s.removeCartItem)

			r.Post("/orders", s.createOrder)
			r.Get("/orders/user/{userId}", s.userOrders)
			r.Get("/orders/{id}", s.getOrder)
			r.Post("/orders/{id}/cancel", s.cancelOrder)

			r.Get("/addresses", s.listAddresses)
			r.Post("/addresses", s.createAddress)
			r.Put("/addresses/{id}", s.updateAddress)
			r.Delete("/addresses/{id}", s.deleteAddress)
			r.Put("/addresses/{id}/set-default", s.setDefaultAddress)

			r.Post("/reviews", s.createReview)
			r.Get("/reviews/my-reviews", s.myReviews)
			r.Get("/reviews/can-review/{orderId}/{productId}", s.canReview)
		})
	})
	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) Store() *MemoryStore {
	return s.store
}

// Close stops background work.
func (s *Server) Close() {
	s.store.Close()
}

// FailNext makes the next request to method+path (path relative to BasePath)
// answer with status. Calls queue up.
func (s *Server) FailNext(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := callKey(method, path)
	s.failures[key] = append(s.failures[key], status)
}

// Calls counts requests received for method+path (path relative to BasePath).
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[callKey(method, path)]
}

// ExpireTokens invalidates every token minted so far.
func (s *Server) ExpireTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
}

// SetLatency delays every API response by d.
func (s *Server) SetLatency(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latency = d
}

// MintToken issues a token for userID that expires at exp.
func (s *Server) MintToken(userID domain.ID, phone string, exp time.Time) (string, error) {
	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	claims := tokenClaims{
		Phone:      phone,
		Generation: gen,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func callKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

func (s *Server) recordCalls(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, BasePath)
		key := callKey(r.Method, path)

		s.mu.Lock()
		s.calls[key]++
		status := 0
		if q := s.failures[key]; len(q) > 0 {
			status = q[0]
			s.failures[key] = q[1:]
		}
		latency := s.latency
		s.mu.Unlock()

		if latency > 0 && path != r.URL.Path {
			select {
			case <-time.After(latency):
			case <-r.Context().Done():
				return
			}
		}
		if status != 0 {
			s.respondError(w, status, http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			s.respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		var claims tokenClaims
		_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		s.mu.Lock()
		revoked := claims.Generation < s.generation
		s.mu.Unlock()
		if revoked {
			s.respondError(w, http.StatusUnauthorized, "token revoked")
			return
		}

		userID, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "invalid subject")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getUserIDFromContext(ctx context.Context) int64 {
	if userID, ok := ctx.Value(userIDKey).(int64); ok {
		return userID
	}
	return 0
}

// idNumber parses a numeric id, 0 when it is not numeric.
func idNumber(id domain.ID) int64 {
	n, err := strconv.ParseInt(id.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
