package main

import (
	"context"
	"fmt"

	"github.com/fjod/storefront/internal/addresses"
	"github.com/fjod/storefront/internal/api"
	"github.com/fjod/storefront/internal/cache"
	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/config"
	"github.com/fjod/storefront/internal/events"
	"github.com/fjod/storefront/internal/location"
	"github.com/fjod/storefront/internal/orders"
	"github.com/fjod/storefront/internal/session"
	"github.com/fjod/storefront/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app is the wired client for one command invocation.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	bus       *events.Bus
	store     storage.Store
	client    *api.Client
	sessions  *session.Manager
	location  *location.Gate
	cart      *cart.Engine
	catalog   *catalog.Service
	orders    *orders.Service
	addresses *addresses.Book

	closers []func()
}

func newApp(ctx context.Context, cfg config.Config, log *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: log, bus: events.NewBus()}

	store, err := storage.Open(ctx, storage.Options{
		Backend:       cfg.Storage.Backend,
		SQLitePath:    cfg.Storage.SQLitePath,
		RedisAddr:     cfg.Storage.RedisAddr,
		RedisPassword: cfg.Storage.RedisPassword,
		RedisDB:       cfg.Storage.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	a.store = store
	a.closers = append(a.closers, func() { store.Close() })

	a.client = api.New(api.Options{
		BaseURL:         cfg.API.BaseURL,
		Timeout:         cfg.API.Timeout,
		BreakerFailures: cfg.API.BreakerFailures,
		BreakerCooldown: cfg.API.BreakerCooldown,
		ProductLimit:    cfg.Catalog.ProductLimit,
	}, a.bus, log)

	a.sessions = session.NewManager(store, a.client.Auth, a.bus, log, session.Options{
		PhonePrefix:  cfg.Session.PhonePrefix,
		LogoutWindow: cfg.Session.LogoutWindow,
	})
	a.closers = append(a.closers, a.sessions.Close)

	a.cart = cart.NewEngine(a.client.Cart, a.sessions, log)
	a.closers = append(a.closers, a.cart.Attach(a.bus))

	var catalogCache cache.CatalogCache = cache.NopCache{}
	if cfg.Catalog.Cache == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.RedisAddr,
			Password: cfg.Storage.RedisPassword,
			DB:       cfg.Storage.RedisDB,
		})
		catalogCache = cache.NewRedisCache(rdb, cfg.Catalog.TTL)
		a.closers = append(a.closers, func() { rdb.Close() })
	}
	a.catalog = catalog.NewService(a.client.Products, a.client.Categories, a.client.Banners, catalogCache, log)
	a.orders = orders.NewService(a.client.Orders, a.sessions, a.cart, a.bus, log)
	a.addresses = addresses.NewBook(a.client.Addresses, a.sessions, log)

	a.location = location.NewGate(store)
	if err := a.location.Load(ctx); err != nil {
		a.Close()
		return nil, err
	}
	// restoring the session also loads the cart
	if err := a.sessions.Load(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	a.closers = append(a.closers, a.bus.OrderPlaced.Subscribe(func(ev events.OrderPlaced) {
		log.Info("order placed",
			zap.String("order_id", ev.OrderID.String()),
			zap.String("total", ev.TotalAmount))
	}))
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// withApp runs fn with a wired app that is closed afterwards.
func withApp(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, a, args)
	}
}

// requireLogin fails commands that need a customer session.
func (a *app) requireLogin() error {
	if !a.sessions.Authenticated() {
		return errLoginRequired
	}
	return nil
}
