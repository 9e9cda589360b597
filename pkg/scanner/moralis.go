package scanner

import (
	"github.com/VaitaR/chainscan/pkg/chains"
)

const moralisBaseURL = "https://deep-index.moralis.io/api/v2.2"

// MoralisV1 serves the Moralis deep-index Web3 Data API: RESTful paths with
// {address}/{txhash}/{block_number} placeholders, the chain conveyed as a hex
// id query parameter, and a named-header credential. Responses are plain
// JSON; field-pick parsers extract the logical value.
func MoralisV1() Definition {
	return Definition{
		Name:      "moralis",
		Version:   "v1",
		Auth:      AuthHeader,
		AuthField: "X-API-Key",
		Supports: func(c chains.ChainInfo) bool {
			return c.MoralisID != ""
		},
		BaseURL: func(chains.ChainInfo) (string, error) {
			return moralisBaseURL, nil
		},
		ChainQuery: func(c chains.ChainInfo) map[string]string {
			return map[string]string{"chain": c.MoralisID}
		},
		Methods: map[Method]EndpointSpec{
			AccountBalance: {
				HTTPMethod: "GET",
				Path:       "/{address}/balance",
				PathParams: []string{"address"},
				Parser:     ParseField("balance"),
			},
			AccountTransactions: {
				HTTPMethod: "GET",
				Path:       "/{address}",
				Query:      map[string]string{"limit": "100"},
				ParamMap: map[string]string{
					"cursor":      "cursor",
					"limit":       "limit",
					"start_block": "from_block",
					"end_block":   "to_block",
				},
				PathParams: []string{"address"},
				Parser:     ParseField("result"),
			},
			TokenBalance: {
				HTTPMethod: "GET",
				Path:       "/{address}/erc20",
				ParamMap:   map[string]string{"token_addresses": "token_addresses"},
				PathParams: []string{"address"},
				Parser:     ParseDirect,
			},
			AccountERC20Transfers: {
				HTTPMethod: "GET",
				Path:       "/{address}/erc20/transfers",
				Query:      map[string]string{"limit": "100"},
				ParamMap: map[string]string{
					"cursor":      "cursor",
					"limit":       "limit",
					"start_block": "from_block",
					"end_block":   "to_block",
				},
				PathParams: []string{"address"},
				Parser:     ParseField("result"),
			},
			TxByHash: {
				HTTPMethod: "GET",
				Path:       "/transaction/{txhash}",
				PathParams: []string{"txhash"},
				Parser:     ParseDirect,
				Cacheable:  true,
			},
			BlockByNumber: {
				HTTPMethod: "GET",
				Path:       "/block/{block_number}",
				PathParams: []string{"block_number"},
				Parser:     ParseDirect,
				Cacheable:  true,
			},
			ContractABI: {
				HTTPMethod: "GET",
				Path:       "/{address}/abi",
				PathParams: []string{"address"},
				Parser:     ParseDirect,
				Cacheable:  true,
			},
		},
	}
}

func init() {
	Register(MoralisV1())
}
