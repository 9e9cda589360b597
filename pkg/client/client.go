package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/VaitaR/chainscan/pkg/chains"
	"github.com/VaitaR/chainscan/pkg/common/types"
	"github.com/VaitaR/chainscan/pkg/infra"
	"github.com/VaitaR/chainscan/pkg/ratelimiter"
	"github.com/VaitaR/chainscan/pkg/retry"
	"github.com/VaitaR/chainscan/pkg/scanner"
)

// RateLimiter is the throughput port: Wait blocks until the call may proceed
// or the context is canceled.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// Client composes one provider adapter with the shared infrastructure ports.
// A call flows telemetry span -> rate limit -> cache -> retry -> dispatch.
// Safe for concurrent use provided the injected ports are.
type Client struct {
	scanner   *scanner.Scanner
	http      infra.HTTPClient
	limiter   RateLimiter
	retry     retry.Policy
	classify  retry.Classifier
	cache     infra.Cache
	cacheTTL  time.Duration
	telemetry infra.Telemetry
	log       *slog.Logger
	closed    atomic.Bool
}

type Option func(*Client)

// WithHTTPClient injects a shared transport.
func WithHTTPClient(h infra.HTTPClient) Option { return func(c *Client) { c.http = h } }

// WithRateLimiter injects a limiter; share one across clients to enforce a
// global budget.
func WithRateLimiter(l RateLimiter) Option { return func(c *Client) { c.limiter = l } }

// WithRetryPolicy overrides the retry policy.
func WithRetryPolicy(p retry.Policy) Option { return func(c *Client) { c.retry = p } }

// WithClassifier overrides the retry classifier.
func WithClassifier(f retry.Classifier) Option { return func(c *Client) { c.classify = f } }

// WithCache enables response caching for cacheable methods.
func WithCache(cache infra.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithTelemetry injects a telemetry sink.
func WithTelemetry(t infra.Telemetry) Option { return func(c *Client) { c.telemetry = t } }

// WithLogger injects a logger.
func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.log = l } }

// New resolves the chain reference, instantiates the registered provider
// adapter and wires the ports. apiKey may be empty for keyless providers.
func New(provider, version, chainRef, apiKey string, opts ...Option) (*Client, error) {
	chain, err := chains.Resolve(chainRef)
	if err != nil {
		return nil, err
	}
	return NewForChain(provider, version, chain, apiKey, opts...)
}

// NewForChain is New with an already resolved ChainInfo.
func NewForChain(provider, version string, chain chains.ChainInfo, apiKey string, opts ...Option) (*Client, error) {
	sc, err := scanner.NewFromRegistry(provider, version, chain, apiKey)
	if err != nil {
		return nil, err
	}
	c := &Client{
		scanner:   sc,
		telemetry: infra.NopTelemetry{},
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = infra.NewNetClient(30 * time.Second)
	}
	if c.limiter == nil {
		// One shared budget per provider, the free-tier default.
		c.limiter = ratelimiter.Shared(provider, 5, 5)
	}
	return c, nil
}

func (c *Client) Scanner() *scanner.Scanner { return c.scanner }

func (c *Client) Chain() chains.ChainInfo { return c.scanner.Chain() }

func (c *Client) Provider() string { return c.scanner.Name() + " " + c.scanner.Version() }

// Supports reports whether the underlying adapter implements the method.
func (c *Client) Supports(m scanner.Method) bool { return c.scanner.Supports(m) }

// SupportedMethods lists the adapter's methods.
func (c *Client) SupportedMethods() []scanner.Method { return c.scanner.SupportedMethods() }

// Call executes a logical method with the given parameters.
func (c *Client) Call(ctx context.Context, m scanner.Method, params map[string]any) (any, error) {
	if c.closed.Load() {
		return nil, &types.Error{
			Kind:     types.KindInvalidArgument,
			Provider: c.scanner.Name(),
			Method:   m.String(),
			Message:  "client is closed",
		}
	}

	start := time.Now()
	emit := func(outcome string, status int) {
		c.telemetry.Emit(infra.Event{
			Name:       "client.call",
			Provider:   c.scanner.Name() + " " + c.scanner.Version(),
			ChainID:    c.scanner.Chain().ChainID,
			Method:     m.String(),
			Outcome:    outcome,
			DurationMS: time.Since(start).Milliseconds(),
			Status:     status,
		})
	}

	if err := c.limiter.Wait(ctx); err != nil {
		emit("canceled", 0)
		return nil, &types.Error{
			Kind:     types.KindCanceled,
			Provider: c.scanner.Name(),
			Chain:    c.scanner.Chain().DisplayName,
			Method:   m.String(),
			Err:      err,
		}
	}

	cacheable := c.cache != nil && c.scanner.Cacheable(m)
	var key string
	if cacheable {
		key = c.cacheKey(m, params)
		if data, ok := c.cache.Get(key); ok {
			var cached any
			if err := json.Unmarshal(data, &cached); err == nil {
				emit("cache_hit", 0)
				return cached, nil
			}
			// Corrupt entry: drop it and fall through to the network.
			c.cache.Delete(key)
		}
	}

	var result any
	err := c.retry.Execute(ctx, func() error {
		var callErr error
		result, callErr = c.scanner.Call(ctx, c.http, m, params)
		return callErr
	}, c.classify)
	if err != nil {
		status := 0
		if ce, ok := err.(*types.Error); ok {
			status = ce.Status
		}
		if c.log != nil {
			c.log.Debug("provider call failed",
				"provider", c.Provider(), "method", m.String(), "status", status, "error", err)
		}
		emit("error", status)
		return nil, err
	}

	if cacheable {
		if data, marshalErr := json.Marshal(result); marshalErr == nil {
			c.cache.Set(key, data, c.cacheTTL)
		}
	}
	emit("ok", 0)
	return result, nil
}

// cacheKey fingerprints a call: provider, version, chain, method and the
// canonicalized (sorted) parameters.
func (c *Client) cacheKey(m scanner.Method, params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(c.scanner.Name())
	b.WriteByte('|')
	b.WriteString(c.scanner.Version())
	b.WriteByte('|')
	b.WriteString(strconv.FormatUint(c.scanner.Chain().ChainID, 10))
	b.WriteByte('|')
	b.WriteString(m.String())
	for _, k := range keys {
		if params[k] == nil {
			continue
		}
		vb, _ := json.Marshal(params[k])
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.Write(vb)
	}
	return b.String()
}

// Close marks the client closed. The shared ports stay alive; their owners
// close them.
func (c *Client) Close() error {
	c.closed.Store(true)
	return nil
}
