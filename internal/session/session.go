// Package session owns the customer's authentication state: OTP login,
// persistence of the token and profile, expiry checks at startup and the
// forced logout that follows a 401 from any API call.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/storefront/internal/api"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/events"
	"github.com/fjod/storefront/internal/logger"
	"github.com/fjod/storefront/internal/storage"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const otpSentMessage = "OTP sent successfully"

var ErrNoSession = errors.New("not logged in")

// AuthAPI is the part of the REST client the manager needs.
type AuthAPI interface {
	Start(ctx context.Context, phone string) (api.StartResponse, error)
	Verify(ctx context.Context, phone, otp string) (api.VerifyResponse, error)
}

type OTPResult struct {
	Success   bool
	Message   string
	IsNewUser *bool
}

type VerifyResult struct {
	Success bool
	Message string
}

type Options struct {
	PhonePrefix string
	// LogoutWindow is how long further 401s are ignored after a forced logout.
	LogoutWindow time.Duration
	Now          func() time.Time
}

type Manager struct {
	store        storage.Store
	auth         AuthAPI
	bus          *events.Bus
	logger       *zap.Logger
	phonePrefix  string
	logoutWindow time.Duration
	now          func() time.Time

	mu      sync.RWMutex
	session *domain.Session

	// forced logouts are suppressed until guardUntil
	guardMu    sync.Mutex
	guardUntil time.Time

	unsubscribe func()
}

// NewManager creates a manager and subscribes it to bus.Unauthorized.
func NewManager(store storage.Store, auth AuthAPI, bus *events.Bus, log *zap.Logger, opts Options) *Manager {
	if opts.PhonePrefix == "" {
		opts.PhonePrefix = "+91"
	}
	if opts.LogoutWindow <= 0 {
		opts.LogoutWindow = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	m := &Manager{
		store:        store,
		auth:         auth,
		bus:          bus,
		logger:       logger.OrNop(log),
		phonePrefix:  opts.PhonePrefix,
		logoutWindow: opts.LogoutWindow,
		now:          opts.Now,
	}
	m.unsubscribe = bus.Unauthorized.Subscribe(func(ev events.Unauthorized) {
		if m.HandleUnauthorized(context.Background()) {
			m.logger.Info("token expired or unauthorized, logged out",
				zap.String("method", ev.Method),
				zap.String("path", ev.Path))
		}
	})
	return m
}

// Close detaches the manager from the bus.
func (m *Manager) Close() {
	m.unsubscribe()
}

// Load restores a persisted session. An expired or unreadable token, or an
// unreadable profile, is discarded together with its companion key.
func (m *Manager) Load(ctx context.Context) error {
	token, err := m.store.Get(ctx, storage.KeyAuthToken)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	raw, err := m.store.Get(ctx, storage.KeyUserData)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read user data: %w", err)
	}

	if TokenExpired(token, m.now()) {
		m.logger.Info("stored token is expired, clearing auth data")
		return m.discard(ctx)
	}
	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		m.logger.Warn("error parsing saved user data", zap.Error(err))
		return m.discard(ctx)
	}

	s := &domain.Session{Token: token, User: user}
	m.mu.Lock()
	m.session = s
	m.mu.Unlock()

	m.bus.SessionChanged.Publish(events.SessionChanged{Session: cloneSession(s)})
	return nil
}

func (m *Manager) discard(ctx context.Context) error {
	if err := m.store.Delete(ctx, storage.KeyAuthToken, storage.KeyUserData); err != nil {
		return fmt.Errorf("clear auth data: %w", err)
	}
	return nil
}

// TokenExpired reports whether the exp claim of token is before now. A token
// that cannot be decoded counts as expired; one without exp does not.
func TokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return true
	}
	if exp == nil {
		return false
	}
	return exp.Before(now)
}

// SendOTP starts login for phone. Invalid input never reaches the server.
func (m *Manager) SendOTP(ctx context.Context, phone string) OTPResult {
	normalized, err := domain.NormalizePhone(phone, m.phonePrefix)
	if err != nil {
		return OTPResult{Message: "Please enter a valid 10-digit phone number"}
	}

	resp, err := m.auth.Start(ctx, normalized)
	if err != nil {
		m.logger.Warn("send otp failed", zap.Error(err))
		var httpErr *api.HTTPError
		if errors.As(err, &httpErr) {
			return OTPResult{Message: api.Message(err, "Failed to send OTP")}
		}
		return OTPResult{Message: "Failed to send OTP. Please try again."}
	}

	if resp.Message != otpSentMessage {
		msg := resp.Message
		if msg == "" {
			msg = "Failed to send OTP"
		}
		return OTPResult{Message: msg}
	}
	return OTPResult{Success: true, Message: resp.Message, IsNewUser: resp.IsNewUser}
}

// VerifyOTP completes login. Nothing is persisted unless the response carries
// both a token and a user.
func (m *Manager) VerifyOTP(ctx context.Context, phone, otp string) VerifyResult {
	normalized, err := domain.NormalizePhone(phone, m.phonePrefix)
	if err != nil {
		return VerifyResult{Message: "Please enter a valid 10-digit phone number"}
	}
	if err := domain.ValidateOTP(otp); err != nil {
		return VerifyResult{Message: "Please enter the 6-digit OTP"}
	}

	resp, err := m.auth.Verify(ctx, normalized, otp)
	if err != nil {
		m.logger.Warn("verify otp failed", zap.Error(err))
		var httpErr *api.HTTPError
		if errors.As(err, &httpErr) {
			return VerifyResult{Message: api.Message(err, "Invalid OTP")}
		}
		return VerifyResult{Message: "Invalid OTP or verification failed"}
	}
	if resp.Token == "" || resp.User == nil {
		msg := resp.Message
		if msg == "" {
			msg = "Invalid OTP"
		}
		return VerifyResult{Message: msg}
	}

	s := &domain.Session{Token: resp.Token, User: resp.User.User()}
	if err := m.persist(ctx, s); err != nil {
		m.logger.Error("save session failed", zap.Error(err))
		return VerifyResult{Message: "Could not save your session. Please try again."}
	}

	m.mu.Lock()
	m.session = s
	m.mu.Unlock()
	m.bus.SessionChanged.Publish(events.SessionChanged{Session: cloneSession(s)})

	msg := resp.Message
	if msg == "" {
		msg = "Login successful"
	}
	return VerifyResult{Success: true, Message: msg}
}

func (m *Manager) persist(ctx context.Context, s *domain.Session) error {
	data, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if err := m.store.Set(ctx, storage.KeyAuthToken, s.Token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if err := m.store.Set(ctx, storage.KeyUserData, string(data)); err != nil {
		_ = m.store.Delete(ctx, storage.KeyAuthToken)
		return fmt.Errorf("save user data: %w", err)
	}
	return nil
}

// Logout clears the in-memory and persisted session unconditionally.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()

	err := m.store.Delete(ctx, storage.KeyAuthToken, storage.KeyUserData)
	m.bus.SessionChanged.Publish(events.SessionChanged{})
	if err != nil {
		return fmt.Errorf("clear auth data: %w", err)
	}
	return nil
}

// HandleUnauthorized runs the logout path unless one ran within the logout
// window. It reports whether it logged out.
func (m *Manager) HandleUnauthorized(ctx context.Context) bool {
	m.guardMu.Lock()
	now := m.now()
	if now.Before(m.guardUntil) {
		m.guardMu.Unlock()
		return false
	}
	m.guardUntil = now.Add(m.logoutWindow)
	m.guardMu.Unlock()

	if err := m.Logout(ctx); err != nil {
		m.logger.Error("forced logout failed", zap.Error(err))
	}
	return true
}

// Current returns a copy of the session, nil when logged out.
func (m *Manager) Current() *domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneSession(m.session)
}

// Token is the bearer token, empty when logged out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return ""
	}
	return m.session.Token
}

func (m *Manager) Authenticated() bool {
	return m.Token() != ""
}

func cloneSession(s *domain.Session) *domain.Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
