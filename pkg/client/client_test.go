package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VaitaR/chainscan/pkg/chains"
	"github.com/VaitaR/chainscan/pkg/common/types"
	"github.com/VaitaR/chainscan/pkg/infra"
	"github.com/VaitaR/chainscan/pkg/retry"
	"github.com/VaitaR/chainscan/pkg/scanner"
)

const vitalik = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"

type recordingTelemetry struct {
	events []infra.Event
}

func (r *recordingTelemetry) Emit(ev infra.Event) { r.events = append(r.events, ev) }
func (r *recordingTelemetry) Close()              {}

// testClient builds a client whose etherscan adapter targets the given server.
func testClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	def := scanner.EtherscanV2()
	def.BaseURL = func(chains.ChainInfo) (string, error) { return srv.URL, nil }
	chain, err := chains.Resolve("ethereum")
	require.NoError(t, err)
	sc, err := scanner.New(def, chain, "KEY")
	require.NoError(t, err)

	c := &Client{
		scanner:   sc,
		telemetry: infra.NopTelemetry{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = infra.NewNetClient(5 * time.Second)
	}
	if c.limiter == nil {
		c.limiter = noLimiter{}
	}
	return c
}

type noLimiter struct{}

func (noLimiter) Wait(context.Context) error { return nil }

func TestCallBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "1", "message": "OK", "result": "4780000000000000000",
		})
	}))
	t.Cleanup(srv.Close)

	c := testClient(t, srv)
	balance, err := c.Balance(context.Background(), vitalik)
	require.NoError(t, err)
	assert.Equal(t, "4780000000000000000", balance)
}

func TestCallEmptySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "0", "message": "No transactions found", "result": []any{},
		})
	}))
	t.Cleanup(srv.Close)

	c := testClient(t, srv)
	result, err := c.Call(context.Background(), scanner.AccountTransactions,
		map[string]any{"address": vitalik})
	require.NoError(t, err)
	records, err := Records(result)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCallProviderErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "0", "message": "NOTOK", "result": "Invalid API Key",
		})
	}))
	t.Cleanup(srv.Close)

	c := testClient(t, srv)
	_, err := c.Call(context.Background(), scanner.AccountBalance, map[string]any{"address": vitalik})
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindProvider))
	assert.Contains(t, err.Error(), "Invalid API Key")
	assert.Equal(t, int32(1), calls.Load())
}

func TestCallRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "1", "message": "OK", "result": "1",
		})
	}))
	t.Cleanup(srv.Close)

	c := testClient(t, srv, WithRetryPolicy(retry.Policy{InitialInterval: 5 * time.Millisecond}))
	result, err := c.Call(context.Background(), scanner.AccountBalance, map[string]any{"address": vitalik})
	require.NoError(t, err)
	assert.Equal(t, "1", result)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCallRateLimitSurfacesAfterRetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	c := testClient(t, srv, WithRetryPolicy(retry.Policy{
		InitialInterval: time.Millisecond,
		MaxAttempts:     2,
	}))
	_, err := c.Call(context.Background(), scanner.AccountBalance, map[string]any{"address": vitalik})
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindRateLimited))
}

func TestCallCachesCacheableMethods(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "1", "message": "OK", "result": map[string]any{"hash": "0xabc"},
		})
	}))
	t.Cleanup(srv.Close)

	cache := infra.NewMemoryCache(time.Minute, 0)
	c := testClient(t, srv, WithCache(cache, time.Minute))

	params := map[string]any{"txhash": "0xabc"}
	first, err := c.Call(context.Background(), scanner.TxByHash, params)
	require.NoError(t, err)
	second, err := c.Call(context.Background(), scanner.TxByHash, params)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCallDoesNotCacheLiveMethods(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "1", "message": "OK", "result": "100",
		})
	}))
	t.Cleanup(srv.Close)

	cache := infra.NewMemoryCache(time.Minute, 0)
	c := testClient(t, srv, WithCache(cache, time.Minute))

	params := map[string]any{"address": vitalik}
	_, err := c.Call(context.Background(), scanner.AccountBalance, params)
	require.NoError(t, err)
	_, err = c.Call(context.Background(), scanner.AccountBalance, params)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCacheKeyCanonicalizesParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	t.Cleanup(srv.Close)
	c := testClient(t, srv)

	a := c.cacheKey(scanner.TxByHash, map[string]any{"a": 1, "b": 2})
	b := c.cacheKey(scanner.TxByHash, map[string]any{"b": 2, "a": 1})
	assert.Equal(t, a, b)

	other := c.cacheKey(scanner.TxByHash, map[string]any{"a": 1, "b": 3})
	assert.NotEqual(t, a, other)
}

func TestLatestBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": 1, "result": "0x121eac0"})
	}))
	t.Cleanup(srv.Close)

	c := testClient(t, srv)
	head, err := c.LatestBlock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(19000000), head)
}

func TestClosedClientRefusesCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	t.Cleanup(srv.Close)

	c := testClient(t, srv)
	require.NoError(t, c.Close())
	_, err := c.Call(context.Background(), scanner.AccountBalance, map[string]any{"address": vitalik})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
}

func TestTelemetryEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "1", "message": "OK", "result": "1",
		})
	}))
	t.Cleanup(srv.Close)

	tel := &recordingTelemetry{}
	c := testClient(t, srv, WithTelemetry(tel))
	_, err := c.Call(context.Background(), scanner.AccountBalance, map[string]any{"address": vitalik})
	require.NoError(t, err)

	require.Len(t, tel.events, 1)
	ev := tel.events[0]
	assert.Equal(t, "client.call", ev.Name)
	assert.Equal(t, "etherscan v2", ev.Provider)
	assert.Equal(t, uint64(1), ev.ChainID)
	assert.Equal(t, "account_balance", ev.Method)
	assert.Equal(t, "ok", ev.Outcome)
}

func TestNewRejectsUnknownChainAndProvider(t *testing.T) {
	_, err := New("etherscan", "v2", "atlantis", "KEY")
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindUnknownChain))

	_, err = New("nosuch", "v1", "ethereum", "KEY")
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindUnknownProvider))
}

func TestConcurrentCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "1", "message": "OK", "result": "1",
		})
	}))
	t.Cleanup(srv.Close)

	c := testClient(t, srv)
	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := c.Call(context.Background(), scanner.AccountBalance, map[string]any{"address": vitalik})
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-done)
	}
}
