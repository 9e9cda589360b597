package scanner

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/VaitaR/chainscan/pkg/chains"
	"github.com/VaitaR/chainscan/pkg/common/types"
	"github.com/VaitaR/chainscan/pkg/infra"
)

// AuthMode is how a provider expects its credential.
type AuthMode int

const (
	AuthNone AuthMode = iota
	AuthQuery
	AuthHeader
)

// Definition is the static description of a provider adapter: identity, auth,
// base-URL derivation and the method table. Adapters differ only in data.
type Definition struct {
	Name        string
	Version     string
	Auth        AuthMode
	AuthField   string // query key or header name
	KeyOptional bool   // provider works without a credential (Blockscout)

	// Supports reports whether the chain carries this provider's hint.
	Supports func(chains.ChainInfo) bool
	// BaseURL derives the URL prefix endpoint paths are appended to.
	BaseURL func(chains.ChainInfo) (string, error)
	// ChainQuery returns per-chain query parameters injected into every call
	// (etherscan v2 chainid, moralis hex chain).
	ChainQuery func(chains.ChainInfo) map[string]string

	Methods map[Method]EndpointSpec
}

// Scanner binds a Definition to one chain and credential. Instances are
// immutable after construction and safe for concurrent use.
type Scanner struct {
	def        Definition
	chain      chains.ChainInfo
	apiKey     string
	baseURL    string
	chainQuery map[string]string
}

// New instantiates an adapter for a chain, validating chain support and the
// credential requirement up front.
func New(def Definition, chain chains.ChainInfo, apiKey string) (*Scanner, error) {
	if def.Supports != nil && !def.Supports(chain) {
		supported := chains.List(chains.Filter{Provider: def.Name})
		names := make([]string, len(supported))
		for i, c := range supported {
			names[i] = c.Name
		}
		return nil, &types.Error{
			Kind:     types.KindChainNotSupported,
			Provider: def.Name,
			Chain:    chain.DisplayName,
			Message:  fmt.Sprintf("supported chains: %s", strings.Join(names, ", ")),
		}
	}
	if apiKey == "" && def.Auth != AuthNone && !def.KeyOptional {
		return nil, &types.Error{
			Kind:     types.KindAuthRequired,
			Provider: def.Name,
			Chain:    chain.DisplayName,
			Message:  "an API key is required",
		}
	}
	baseURL, err := def.BaseURL(chain)
	if err != nil {
		return nil, &types.Error{
			Kind:     types.KindChainNotSupported,
			Provider: def.Name,
			Chain:    chain.DisplayName,
			Err:      err,
		}
	}
	s := &Scanner{def: def, chain: chain, apiKey: apiKey, baseURL: baseURL}
	if def.ChainQuery != nil {
		s.chainQuery = def.ChainQuery(chain)
	}
	return s, nil
}

func (s *Scanner) Name() string { return s.def.Name }

func (s *Scanner) Version() string { return s.def.Version }

func (s *Scanner) Chain() chains.ChainInfo { return s.chain }

// Supports reports whether the adapter implements the logical method.
func (s *Scanner) Supports(m Method) bool {
	_, ok := s.def.Methods[m]
	return ok
}

// SupportedMethods lists the adapter's methods in stable order.
func (s *Scanner) SupportedMethods() []Method {
	out := make([]Method, 0, len(s.def.Methods))
	for m := range s.def.Methods {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Spec returns the endpoint spec for a method.
func (s *Scanner) Spec(m Method) (EndpointSpec, bool) {
	spec, ok := s.def.Methods[m]
	return spec, ok
}

// Cacheable reports whether results of the method are a function of final
// blocks; live-state methods are never cached.
func (s *Scanner) Cacheable(m Method) bool {
	spec, ok := s.def.Methods[m]
	return ok && spec.Cacheable
}

// Request is a fully rendered outbound call.
type Request struct {
	HTTPMethod string
	URL        string
	Query      url.Values
	Headers    http.Header
}

// BuildRequest renders a logical call into a Request without performing I/O.
func (s *Scanner) BuildRequest(m Method, params map[string]any) (*Request, error) {
	spec, ok := s.def.Methods[m]
	if !ok {
		supported := s.SupportedMethods()
		names := make([]string, len(supported))
		for i, sm := range supported {
			names[i] = sm.String()
		}
		return nil, s.decorate(&types.Error{
			Kind:    types.KindMethodNotSupported,
			Message: fmt.Sprintf("available: %s", strings.Join(names, ", ")),
		}, m)
	}

	path, query, err := spec.BuildRequest(params)
	if err != nil {
		return nil, s.decorate(err, m)
	}
	for k, v := range s.chainQuery {
		query.Set(k, v)
	}

	headers := http.Header{}
	switch s.def.Auth {
	case AuthQuery:
		if s.apiKey != "" {
			query.Set(s.def.AuthField, s.apiKey)
		}
	case AuthHeader:
		headers.Set(s.def.AuthField, s.apiKey)
	}

	return &Request{
		HTTPMethod: spec.HTTPMethod,
		URL:        s.baseURL + path,
		Query:      query,
		Headers:    headers,
	}, nil
}

// Call dispatches a logical method through the given transport and parses
// the response. Rate limiting and retries belong to the caller.
func (s *Scanner) Call(ctx context.Context, httpc infra.HTTPClient, m Method, params map[string]any) (any, error) {
	req, err := s.BuildRequest(m, params)
	if err != nil {
		return nil, err
	}

	var status int
	var body []byte
	if req.HTTPMethod == http.MethodPost {
		form := []byte(req.Query.Encode())
		req.Headers.Set("Content-Type", "application/x-www-form-urlencoded")
		status, body, err = httpc.Post(ctx, req.URL, nil, req.Headers, form)
	} else {
		status, body, err = httpc.Get(ctx, req.URL, req.Query, req.Headers)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, s.decorate(&types.Error{Kind: types.KindCanceled, Err: ctx.Err()}, m)
		}
		return nil, s.decorate(&types.Error{Kind: types.KindTransport, Err: err}, m)
	}

	if kindErr := classifyStatus(status, body); kindErr != nil {
		return nil, s.decorate(kindErr, m)
	}

	spec := s.def.Methods[m]
	result, err := spec.Parser(body)
	if err != nil {
		return nil, s.decorate(err, m)
	}
	return result, nil
}

// classifyStatus maps HTTP statuses to the error taxonomy: 429 is a
// rate-limit signal, 5xx is transient transport trouble, other 4xx is a
// structured provider refusal.
func classifyStatus(status int, body []byte) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &types.Error{Kind: types.KindRateLimited, Status: status, Message: snippet(body)}
	case status >= 500:
		return &types.Error{Kind: types.KindTransport, Status: status, Message: snippet(body)}
	case status >= 400:
		return &types.Error{Kind: types.KindProvider, Status: status, Message: snippet(body)}
	default:
		return nil
	}
}

func snippet(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max]
	}
	return s
}

// decorate stamps provider, chain and method context onto taxonomy errors.
func (s *Scanner) decorate(err error, m Method) error {
	ce, ok := err.(*types.Error)
	if !ok {
		return err
	}
	if ce.Provider == "" {
		ce.Provider = s.def.Name + " " + s.def.Version
	}
	if ce.Chain == "" {
		ce.Chain = s.chain.DisplayName
	}
	if ce.Method == "" {
		ce.Method = m.String()
	}
	return ce
}
