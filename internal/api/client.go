// Package api is the typed client for the storefront REST API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/events"
	"github.com/fjod/storefront/internal/logger"
	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/fjod/storefront/internal/api"

// errServerStatus marks 5xx responses so the breaker counts them.
var errServerStatus = errors.New("server error status")

type Options struct {
	BaseURL         string
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerCooldown time.Duration
	// ProductLimit caps fallback product lists when the filter has no limit.
	ProductLimit int
	// Transport replaces the default round tripper; it is still wrapped by otelhttp.
	Transport http.RoundTripper
}

type Client struct {
	http         *resty.Client
	breaker      *gobreaker.CircuitBreaker[*resty.Response]
	bus          *events.Bus
	logger       *zap.Logger
	tracer       trace.Tracer
	productLimit int

	Products   *Products
	Categories *Categories
	Banners    *Banners
	Cart       *Cart
	Auth       *Auth
	Orders     *Orders
	Addresses  *Addresses
	Reviews    *Reviews
}

// New creates a client. bus receives events.Unauthorized on every 401.
func New(opts Options, bus *events.Bus, log *zap.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = 30 * time.Second
	}
	if opts.ProductLimit <= 0 {
		opts.ProductLimit = 6
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}
	if bus == nil {
		bus = events.NewBus()
	}
	log = logger.OrNop(log)

	httpClient := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetTransport(otelhttp.NewTransport(opts.Transport)).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	failures := opts.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker[*resty.Response](gobreaker.Settings{
		Name:        "storefront-api",
		MaxRequests: 1,
		Timeout:     opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	c := &Client{
		http:         httpClient,
		breaker:      breaker,
		bus:          bus,
		logger:       log,
		tracer:       otel.Tracer(tracerName),
		productLimit: opts.ProductLimit,
	}
	c.Products = &Products{c: c}
	c.Categories = &Categories{c: c}
	c.Banners = &Banners{c: c}
	c.Cart = &Cart{c: c}
	c.Auth = &Auth{c: c}
	c.Orders = &Orders{c: c}
	c.Addresses = &Addresses{c: c}
	c.Reviews = &Reviews{c: c}
	return c
}

type request struct {
	method string
	path   string
	token  string
	query  map[string]string
	body   any
	out    any
	// skipAuthHook disables the global logout on 401 (OTP endpoints).
	skipAuthHook bool
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do executes req and decodes a 2xx body into req.out.
func (c *Client) do(ctx context.Context, req request) error {
	ctx, span := c.tracer.Start(ctx, req.method+" "+req.path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.method),
			attribute.String("storefront.path", req.path),
		))
	defer span.End()

	err := c.execute(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Client) execute(ctx context.Context, req request) error {
	resp, err := c.breaker.Execute(func() (*resty.Response, error) {
		r := c.http.R().SetContext(ctx)
		if req.token != "" {
			r.SetAuthToken(req.token)
		}
		if len(req.query) > 0 {
			r.SetQueryParams(req.query)
		}
		if req.body != nil {
			r.SetBody(req.body)
		}
		resp, err := r.Execute(req.method, req.path)
		if err != nil {
			return resp, err
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return resp, errServerStatus
		}
		return resp, nil
	})
	if err != nil && !errors.Is(err, errServerStatus) {
		logger.FromContext(ctx, c.logger).Debug("api request failed",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Error(err))
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}

	status := resp.StatusCode()
	if status == http.StatusUnauthorized && !req.skipAuthHook {
		c.bus.Unauthorized.Publish(events.Unauthorized{Method: req.method, Path: req.path})
		return ErrUnauthorized
	}
	if status < 200 || status > 299 {
		var body errorBody
		_ = json.Unmarshal(resp.Body(), &body)
		msg := body.Message
		if msg == "" {
			msg = body.Error
		}
		return &HTTPError{Status: status, Message: msg}
	}

	if req.out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), req.out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", ErrBadResponse, req.method, req.path, err)
	}
	return nil
}
