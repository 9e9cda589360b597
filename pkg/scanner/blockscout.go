package scanner

import (
	"github.com/VaitaR/chainscan/pkg/chains"
)

// BlockscoutV1 serves Blockscout instances, which expose an
// Etherscan-compatible API per chain host. No credential is required;
// instances that accept one treat it as optional. The adapter is the
// Etherscan table with the base URL overridden and the Etherscan-only
// endpoints removed, so absent methods fail as MethodNotSupported before any
// network call.
func BlockscoutV1() Definition {
	methods := etherscanMethods("/api")
	delete(methods, GasOracle)
	delete(methods, EthPrice)

	return Definition{
		Name:        "blockscout",
		Version:     "v1",
		Auth:        AuthQuery,
		AuthField:   "apikey",
		KeyOptional: true,
		Supports: func(c chains.ChainInfo) bool {
			return c.BlockscoutHost != ""
		},
		BaseURL: func(c chains.ChainInfo) (string, error) {
			return c.BlockscoutAPIBase()
		},
		Methods: methods,
	}
}

func init() {
	Register(BlockscoutV1())
}
