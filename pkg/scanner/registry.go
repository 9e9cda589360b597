package scanner

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/VaitaR/chainscan/pkg/chains"
	"github.com/VaitaR/chainscan/pkg/common/types"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Definition)
)

func registryKey(name, version string) string {
	return strings.ToLower(name) + "/" + strings.ToLower(version)
}

// Register adds a provider definition. Adapters call this from init; the
// registry is read-only afterwards.
func Register(def Definition) {
	registryMu.Lock()
	defer registryMu.Unlock()
	key := registryKey(def.Name, def.Version)
	if _, dup := registry[key]; dup {
		panic(fmt.Sprintf("scanner: duplicate registration for %s %s", def.Name, def.Version))
	}
	registry[key] = def
}

// Lookup returns the definition for (name, version).
func Lookup(name, version string) (Definition, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	def, ok := registry[registryKey(name, version)]
	if !ok {
		return Definition{}, &types.Error{
			Kind:     types.KindUnknownProvider,
			Provider: name + " " + version,
			Message:  fmt.Sprintf("registered: %s", strings.Join(providerKeys(), ", ")),
		}
	}
	return def, nil
}

// NewFromRegistry instantiates a registered provider for a chain.
func NewFromRegistry(name, version string, chain chains.ChainInfo, apiKey string) (*Scanner, error) {
	def, err := Lookup(name, version)
	if err != nil {
		return nil, err
	}
	return New(def, chain, apiKey)
}

// Providers lists registered (name, version) pairs in stable order.
func Providers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return providerKeys()
}

func providerKeys() []string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
