package infra

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPClient is the outbound transport port. Implementations must surface
// transport failures (DNS, TCP, TLS, I/O) through the error return; HTTP
// error statuses are not errors at this layer; callers classify them.
type HTTPClient interface {
	Get(ctx context.Context, rawURL string, query url.Values, headers http.Header) (status int, body []byte, err error)
	Post(ctx context.Context, rawURL string, query url.Values, headers http.Header, payload []byte) (status int, body []byte, err error)
}

// NetClient implements HTTPClient on net/http. Safe for concurrent use and
// intended to be shared across clients.
type NetClient struct {
	client *http.Client
}

func NewNetClient(timeout time.Duration) *NetClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &NetClient{client: &http.Client{Timeout: timeout}}
}

func (c *NetClient) Get(ctx context.Context, rawURL string, query url.Values, headers http.Header) (int, []byte, error) {
	return c.do(ctx, http.MethodGet, rawURL, query, headers, nil)
}

func (c *NetClient) Post(ctx context.Context, rawURL string, query url.Values, headers http.Header, payload []byte) (int, []byte, error) {
	return c.do(ctx, http.MethodPost, rawURL, query, headers, payload)
}

func (c *NetClient) do(ctx context.Context, method, rawURL string, query url.Values, headers http.Header, payload []byte) (int, []byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, nil, err
	}
	if len(query) > 0 {
		merged := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				merged.Set(k, v)
			}
		}
		u.RawQuery = merged.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return 0, nil, err
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, data, nil
}
