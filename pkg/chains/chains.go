package chains

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/VaitaR/chainscan/pkg/common/types"
)

// EtherscanHint describes how an Etherscan-family explorer addresses this
// chain: the explorer domain and the network segment of the API host
// ("main" collapses to the bare api subdomain).
type EtherscanHint struct {
	Domain  string
	Network string
}

// ChainInfo is an immutable chain catalogue entry. A provider hint is present
// iff that provider supports the chain.
type ChainInfo struct {
	ChainID     uint64
	Name        string
	DisplayName string
	Aliases     []string
	Currency    string
	Testnet     bool

	Etherscan      *EtherscanHint
	BlockscoutHost string
	MoralisID      string // hex chain id, e.g. "0x1"
}

// SupportsProvider reports whether the chain carries a mapping hint for the
// named provider.
func (c ChainInfo) SupportsProvider(provider string) bool {
	switch provider {
	case "etherscan":
		return c.Etherscan != nil
	case "blockscout":
		return c.BlockscoutHost != ""
	case "moralis":
		return c.MoralisID != ""
	default:
		return false
	}
}

// EtherscanAPIBase derives the per-chain v1 API host from the hint. Endpoint
// paths ("/api") are appended per call.
func (c ChainInfo) EtherscanAPIBase() (string, error) {
	if c.Etherscan == nil {
		return "", fmt.Errorf("chain %s has no etherscan hint", c.Name)
	}
	if c.Etherscan.Network == "main" {
		return "https://api." + c.Etherscan.Domain, nil
	}
	return "https://api-" + c.Etherscan.Network + "." + c.Etherscan.Domain, nil
}

// BlockscoutAPIBase derives the instance host from the hint.
func (c ChainInfo) BlockscoutAPIBase() (string, error) {
	if c.BlockscoutHost == "" {
		return "", fmt.Errorf("chain %s has no blockscout instance", c.Name)
	}
	return "https://" + c.BlockscoutHost, nil
}

// Registry is an immutable chain catalogue with id, name and alias lookup.
type Registry struct {
	chains  []ChainInfo
	byID    map[uint64]int
	byName  map[string]int
	byAlias map[string]int
}

// NewRegistry builds a registry, rejecting duplicate chain ids, names or
// aliases.
func NewRegistry(chains []ChainInfo) (*Registry, error) {
	r := &Registry{
		chains:  make([]ChainInfo, len(chains)),
		byID:    make(map[uint64]int, len(chains)),
		byName:  make(map[string]int, len(chains)),
		byAlias: make(map[string]int),
	}
	copy(r.chains, chains)

	for i, c := range r.chains {
		if _, dup := r.byID[c.ChainID]; dup {
			return nil, fmt.Errorf("duplicate chain id %d", c.ChainID)
		}
		r.byID[c.ChainID] = i

		name := strings.ToLower(c.Name)
		if _, dup := r.byName[name]; dup {
			return nil, fmt.Errorf("duplicate chain name %q", c.Name)
		}
		r.byName[name] = i

		for _, a := range c.Aliases {
			alias := strings.ToLower(a)
			if _, dup := r.byAlias[alias]; dup {
				return nil, fmt.Errorf("duplicate chain alias %q", a)
			}
			if _, dup := r.byName[alias]; dup {
				return nil, fmt.Errorf("alias %q collides with a chain name", a)
			}
			r.byAlias[alias] = i
		}
	}
	return r, nil
}

// ResolveID looks up a chain by its EIP-155 id.
func (r *Registry) ResolveID(id uint64) (ChainInfo, error) {
	if i, ok := r.byID[id]; ok {
		return r.chains[i], nil
	}
	return ChainInfo{}, r.unknown(strconv.FormatUint(id, 10))
}

// Resolve looks up a chain by numeric id string, canonical name or alias.
// Resolution order: numeric id, lowercased name, alias.
func (r *Registry) Resolve(ref string) (ChainInfo, error) {
	trimmed := strings.TrimSpace(ref)
	if id, err := strconv.ParseUint(trimmed, 10, 64); err == nil {
		if i, ok := r.byID[id]; ok {
			return r.chains[i], nil
		}
		return ChainInfo{}, r.unknown(ref)
	}
	lower := strings.ToLower(trimmed)
	if i, ok := r.byName[lower]; ok {
		return r.chains[i], nil
	}
	if i, ok := r.byAlias[lower]; ok {
		return r.chains[i], nil
	}
	return ChainInfo{}, r.unknown(ref)
}

func (r *Registry) unknown(ref string) error {
	suggestions := r.suggest(ref, 3)
	msg := fmt.Sprintf("unknown chain %q", ref)
	if len(suggestions) > 0 {
		msg += ", did you mean: " + strings.Join(suggestions, ", ")
	}
	return &types.Error{Kind: types.KindUnknownChain, Message: msg}
}

// suggest returns up to n known names/aliases sharing a case-insensitive
// prefix with ref.
func (r *Registry) suggest(ref string, n int) []string {
	lower := strings.ToLower(strings.TrimSpace(ref))
	if lower == "" {
		return nil
	}
	var out []string
	candidates := make([]string, 0, len(r.byName)+len(r.byAlias))
	for name := range r.byName {
		candidates = append(candidates, name)
	}
	for alias := range r.byAlias {
		candidates = append(candidates, alias)
	}
	sort.Strings(candidates)
	for _, c := range candidates {
		if strings.HasPrefix(c, lower) || strings.HasPrefix(lower, c) {
			out = append(out, c)
			if len(out) == n {
				break
			}
		}
	}
	return out
}

// Filter narrows List results. A nil Testnet matches both.
type Filter struct {
	Provider string
	Testnet  *bool
}

// List returns chains matching the filter, ordered by chain id.
func (r *Registry) List(f Filter) []ChainInfo {
	out := make([]ChainInfo, 0, len(r.chains))
	for _, c := range r.chains {
		if f.Provider != "" && !c.SupportsProvider(f.Provider) {
			continue
		}
		if f.Testnet != nil && c.Testnet != *f.Testnet {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChainID < out[j].ChainID })
	return out
}

var defaultRegistry = mustRegistry()

func mustRegistry() *Registry {
	r, err := NewRegistry(defaultChains)
	if err != nil {
		panic("chains: invalid default registry: " + err.Error())
	}
	return r
}

// Default returns the built-in registry.
func Default() *Registry { return defaultRegistry }

// Resolve resolves against the built-in registry.
func Resolve(ref string) (ChainInfo, error) { return defaultRegistry.Resolve(ref) }

// ResolveID resolves a numeric id against the built-in registry.
func ResolveID(id uint64) (ChainInfo, error) { return defaultRegistry.ResolveID(id) }

// List lists chains from the built-in registry.
func List(f Filter) []ChainInfo { return defaultRegistry.List(f) }
