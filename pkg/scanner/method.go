package scanner

// Method is a provider-agnostic logical operation. Providers advertise which
// methods they implement through their endpoint tables.
type Method int

const (
	AccountBalance Method = iota
	AccountTransactions
	AccountInternalTxs
	AccountERC20Transfers
	TokenBalance
	TokenSupply
	TxByHash
	TxReceiptStatus
	BlockByNumber
	BlockReward
	BlockNumber
	EventLogs
	ContractABI
	ContractSource
	GasOracle
	EthPrice
	EthSupply
)

var methodNames = map[Method]string{
	AccountBalance:        "account_balance",
	AccountTransactions:   "account_transactions",
	AccountInternalTxs:    "account_internal_txs",
	AccountERC20Transfers: "account_erc20_transfers",
	TokenBalance:          "token_balance",
	TokenSupply:           "token_supply",
	TxByHash:              "tx_by_hash",
	TxReceiptStatus:       "tx_receipt_status",
	BlockByNumber:         "block_by_number",
	BlockReward:           "block_reward",
	BlockNumber:           "block_number",
	EventLogs:             "event_logs",
	ContractABI:           "contract_abi",
	ContractSource:        "contract_source",
	GasOracle:             "gas_oracle",
	EthPrice:              "eth_price",
	EthSupply:             "eth_supply",
}

func (m Method) String() string {
	if s, ok := methodNames[m]; ok {
		return s
	}
	return "unknown_method"
}
