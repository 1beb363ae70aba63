package session

import (
	"context"
	"sync"

	"github.com/fjod/storefront/internal/api"
)

type mockAuthAPI struct {
	mu          sync.Mutex
	startResp   api.StartResponse
	startErr    error
	verifyResp  api.VerifyResponse
	verifyErr   error
	startCalls  []string
	verifyCalls []string
}

func (m *mockAuthAPI) Start(_ context.Context, phone string) (api.StartResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startCalls = append(m.startCalls, phone)
	return m.startResp, m.startErr
}

func (m *mockAuthAPI) Verify(_ context.Context, phone, otp string) (api.VerifyResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifyCalls = append(m.verifyCalls, phone+":"+otp)
	return m.verifyResp, m.verifyErr
}
