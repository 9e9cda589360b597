package scanner

import (
	"strconv"

	"github.com/VaitaR/chainscan/pkg/chains"
)

// etherscanMethods builds the Etherscan-family method table rooted at the
// given endpoint path ("/api" for v1 and Blockscout, "/v2/api" for v2). The
// family shares one wire shape; adapters differ in base URL, auth and
// per-chain query (v2's chainid), and Blockscout drops the Etherscan-only
// methods from the table.
func etherscanMethods(path string) map[Method]EndpointSpec {
	rangeParams := map[string]string{
		"address":     "address",
		"start_block": "startblock",
		"end_block":   "endblock",
		"page":        "page",
		"offset":      "offset",
		"sort":        "sort",
	}

	return map[Method]EndpointSpec{
		AccountBalance: {
			HTTPMethod: "GET",
			Path:       path,
			Query:      map[string]string{"module": "account", "action": "balance", "tag": "latest"},
			ParamMap:   map[string]string{"address": "address"},
			Parser:     ParseEnvelope,
		},
		AccountTransactions: {
			HTTPMethod: "GET",
			Path:       path,
			Query:      map[string]string{"module": "account", "action": "txlist"},
			ParamMap:   rangeParams,
			Parser:     ParseEnvelope,
		},
		AccountInternalTxs: {
			HTTPMethod: "GET",
			Path:       path,
			Query:      map[string]string{"module": "account", "action": "txlistinternal"},
			ParamMap: merge(rangeParams, map[string]string{
				"txhash": "txhash",
			}),
			Parser: ParseEnvelope,
		},
		AccountERC20Transfers: {
			HTTPMethod: "GET",
			Path:       path,
			Query:      map[string]string{"module": "account", "action": "tokentx"},
			ParamMap: merge(rangeParams, map[string]string{
				"contract_address": "contractaddress",
			}),
			Parser: ParseEnvelope,
		},
		TokenBalance: {
			HTTPMethod: "GET",
			Path:       path,
			Query:      map[string]string{"module": "account", "action": "tokenbalance", "tag": "latest"},
			ParamMap: map[string]string{
				"address":          "address",
				"contract_address": "contractaddress",
			},
			Parser: ParseEnvelope,
		},
		TokenSupply: {
			HTTPMethod: "GET",
			Path:       path,
			Query:      map[string]string{"module": "stats", "action": "tokensupply"},
			ParamMap:   map[string]string{"contract_address": "contractaddress"},
			Parser:     ParseEnvelope,
		},
		TxByHash: {
			HTTPMethod: "GET",
			Path:       path,
			Query:      map[string]string{"module": "proxy", "action": "eth_getTransactionByHash"},
			ParamMap:   map[string]string{"txhash": "txhash"},
			Parser:     ParseEnvelope,
			Cacheable:  true,
		},
		TxReceiptStatus: {
			HTTPMethod: "GET",
			Path:       path,
			Query:      map[string]string{"module": "transaction", "action": "gettxreceiptstatus"},
			ParamMap:   map[string]string{"txhash": "txhash"},
			Parser:     ParseEnvelope,
			Cacheable:  true,
		},
		BlockByNumber: {
			HTTPMethod: "GET",
			Path:       path,
			Query:      map[string]string{"module": "proxy", "action": "eth_getBlockByNumber", "boolean": "true"},
			ParamMap:   map[string]string{"block_number": "tag"},
			Transforms: map[string]Transform{"block_number": TransformHexNum},
			Parser:     ParseEnvelope,
			Cacheable:  true,
		},
		BlockReward: {
			HTTPMethod: "GET",
			Path:       path,
			Query:      map[string]string{"module": "block", "action": "getblockreward"},
			ParamMap:   map[string]string{"block_number": "blockno"},
			Parser:     ParseEnvelope,
			Cacheable:  true,
		},
		BlockNumber: {
			HTTPMethod: "GET",
			Path:       path,
			Query:      map[string]string{"module": "proxy", "action": "eth_blockNumber"},
			Parser:     ParseEnvelope,
		},
		EventLogs: {
			HTTPMethod: "GET",
			Path:       path,
			Query:      map[string]string{"module": "logs", "action": "getLogs"},
			ParamMap: map[string]string{
				"address":     "address",
				"start_block": "fromBlock",
				"end_block":   "toBlock",
				"page":        "page",
				"offset":      "offset",
			},
			Parser: ParseEnvelope,
		},
		ContractABI: {
			HTTPMethod: "GET",
			Path:       path,
			Query:      map[string]string{"module": "contract", "action": "getabi"},
			ParamMap:   map[string]string{"address": "address"},
			Parser:     ParseEnvelope,
			Cacheable:  true,
		},
		ContractSource: {
			HTTPMethod: "GET",
			Path:       path,
			Query:      map[string]string{"module": "contract", "action": "getsourcecode"},
			ParamMap:   map[string]string{"address": "address"},
			Parser:     ParseEnvelope,
			Cacheable:  true,
		},
		GasOracle: {
			HTTPMethod: "GET",
			Path:       path,
			Query:      map[string]string{"module": "gastracker", "action": "gasoracle"},
			Parser:     ParseEnvelope,
		},
		EthPrice: {
			HTTPMethod: "GET",
			Path:       path,
			Query:      map[string]string{"module": "stats", "action": "ethprice"},
			Parser:     ParseEnvelope,
		},
		EthSupply: {
			HTTPMethod: "GET",
			Path:       path,
			Query:      map[string]string{"module": "stats", "action": "ethsupply"},
			Parser:     ParseEnvelope,
		},
	}
}

func merge(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func supportsEtherscan(c chains.ChainInfo) bool { return c.Etherscan != nil }

// EtherscanV1 targets the per-chain explorer hosts (api.etherscan.io,
// api.bscscan.com, ...). One instance serves one chain.
func EtherscanV1() Definition {
	return Definition{
		Name:      "etherscan",
		Version:   "v1",
		Auth:      AuthQuery,
		AuthField: "apikey",
		Supports:  supportsEtherscan,
		BaseURL: func(c chains.ChainInfo) (string, error) {
			return c.EtherscanAPIBase()
		},
		Methods: etherscanMethods("/api"),
	}
}

// EtherscanV2 targets the unified multichain endpoint: one key for every
// supported chain, the chain selected per call via the chainid parameter.
func EtherscanV2() Definition {
	return Definition{
		Name:      "etherscan",
		Version:   "v2",
		Auth:      AuthQuery,
		AuthField: "apikey",
		Supports:  supportsEtherscan,
		BaseURL: func(chains.ChainInfo) (string, error) {
			return "https://api.etherscan.io", nil
		},
		ChainQuery: func(c chains.ChainInfo) map[string]string {
			return map[string]string{"chainid": strconv.FormatUint(c.ChainID, 10)}
		},
		Methods: etherscanMethods("/v2/api"),
	}
}

func init() {
	Register(EtherscanV1())
	Register(EtherscanV2())
}
