// Package location keeps the delivery pincode the catalog is filtered by.
package location

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/storage"
)

var ErrPincodeRequired = errors.New("set a delivery pincode first")

type Gate struct {
	store storage.Store

	mu        sync.RWMutex
	pincode   string
	required  bool
	firstTime bool
}

func NewGate(store storage.Store) *Gate {
	return &Gate{store: store}
}

// Load restores the saved pincode. Without one the gate becomes required, and
// the first visit is recorded.
func (g *Gate) Load(ctx context.Context) error {
	code, err := g.store.Get(ctx, storage.KeyPincode)
	if err == nil && domain.ValidatePincode(code) == nil {
		g.mu.Lock()
		g.pincode, g.required, g.firstTime = code, false, false
		g.mu.Unlock()
		return nil
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("read pincode: %w", err)
	}

	_, err = g.store.Get(ctx, storage.KeyHasVisited)
	firstTime := errors.Is(err, storage.ErrNotFound)
	if err != nil && !firstTime {
		return fmt.Errorf("read visit marker: %w", err)
	}

	g.mu.Lock()
	g.pincode, g.required, g.firstTime = "", true, firstTime
	g.mu.Unlock()

	if firstTime {
		if err := g.store.Set(ctx, storage.KeyHasVisited, "true"); err != nil {
			return fmt.Errorf("save visit marker: %w", err)
		}
	}
	return nil
}

// SetPincode validates and persists code.
func (g *Gate) SetPincode(ctx context.Context, code string) error {
	if err := domain.ValidatePincode(code); err != nil {
		return err
	}
	if err := g.store.Set(ctx, storage.KeyPincode, code); err != nil {
		return fmt.Errorf("save pincode: %w", err)
	}
	g.mu.Lock()
	g.pincode, g.required, g.firstTime = code, false, false
	g.mu.Unlock()
	return nil
}

func (g *Gate) Pincode() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.pincode
}

func (g *Gate) Required() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.required
}

// FirstTime is true when no visit was recorded before the last Load.
func (g *Gate) FirstTime() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.firstTime
}

// RequirePincode returns the pincode or ErrPincodeRequired.
func (g *Gate) RequirePincode() (string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.pincode == "" {
		return "", ErrPincodeRequired
	}
	return g.pincode, nil
}
