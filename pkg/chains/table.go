package chains

// defaultChains is generated from the community chain catalogue plus the
// explorer host tables; edit with care, the registry rejects duplicates.
var defaultChains = []ChainInfo{
	{
		ChainID: 1, Name: "ethereum", DisplayName: "Ethereum", Currency: "ETH",
		Aliases:        []string{"eth", "mainnet"},
		Etherscan:      &EtherscanHint{Domain: "etherscan.io", Network: "main"},
		BlockscoutHost: "eth.blockscout.com",
		MoralisID:      "0x1",
	},
	{
		ChainID: 10, Name: "optimism", DisplayName: "OP Mainnet", Currency: "ETH",
		Aliases:        []string{"op"},
		Etherscan:      &EtherscanHint{Domain: "etherscan.io", Network: "optimistic"},
		BlockscoutHost: "optimism.blockscout.com",
		MoralisID:      "0xa",
	},
	{
		ChainID: 56, Name: "bsc", DisplayName: "BNB Smart Chain", Currency: "BNB",
		Aliases:   []string{"bnb", "binance"},
		Etherscan: &EtherscanHint{Domain: "bscscan.com", Network: "main"},
		MoralisID: "0x38",
	},
	{
		ChainID: 100, Name: "gnosis", DisplayName: "Gnosis", Currency: "xDAI",
		Aliases:        []string{"xdai"},
		Etherscan:      &EtherscanHint{Domain: "gnosisscan.io", Network: "main"},
		BlockscoutHost: "gnosis.blockscout.com",
		MoralisID:      "0x64",
	},
	{
		ChainID: 137, Name: "polygon", DisplayName: "Polygon PoS", Currency: "POL",
		Aliases:        []string{"matic"},
		Etherscan:      &EtherscanHint{Domain: "polygonscan.com", Network: "main"},
		BlockscoutHost: "polygon.blockscout.com",
		MoralisID:      "0x89",
	},
	{
		ChainID: 250, Name: "fantom", DisplayName: "Fantom Opera", Currency: "FTM",
		Aliases:   []string{"ftm"},
		Etherscan: &EtherscanHint{Domain: "ftmscan.com", Network: "main"},
		MoralisID: "0xfa",
	},
	{
		ChainID: 324, Name: "zksync", DisplayName: "zkSync Era", Currency: "ETH",
		Aliases:        []string{"zksync-era"},
		Etherscan:      &EtherscanHint{Domain: "era.zksync.network", Network: "main"},
		BlockscoutHost: "zksync.blockscout.com",
		MoralisID:      "0x144",
	},
	{
		ChainID: 5000, Name: "mantle", DisplayName: "Mantle", Currency: "MNT",
		Etherscan: &EtherscanHint{Domain: "mantlescan.xyz", Network: "main"},
		MoralisID: "0x1388",
	},
	{
		ChainID: 8453, Name: "base", DisplayName: "Base", Currency: "ETH",
		Etherscan:      &EtherscanHint{Domain: "basescan.org", Network: "main"},
		BlockscoutHost: "base.blockscout.com",
		MoralisID:      "0x2105",
	},
	{
		ChainID: 42161, Name: "arbitrum", DisplayName: "Arbitrum One", Currency: "ETH",
		Aliases:        []string{"arb", "arbitrum-one"},
		Etherscan:      &EtherscanHint{Domain: "arbiscan.io", Network: "main"},
		BlockscoutHost: "arbitrum.blockscout.com",
		MoralisID:      "0xa4b1",
	},
	{
		ChainID: 42220, Name: "celo", DisplayName: "Celo", Currency: "CELO",
		Etherscan:      &EtherscanHint{Domain: "celoscan.io", Network: "main"},
		BlockscoutHost: "celo.blockscout.com",
		MoralisID:      "0xa4ec",
	},
	{
		ChainID: 43114, Name: "avalanche", DisplayName: "Avalanche C-Chain", Currency: "AVAX",
		Aliases:   []string{"avax"},
		Etherscan: &EtherscanHint{Domain: "snowscan.xyz", Network: "main"},
		MoralisID: "0xa86a",
	},
	{
		ChainID: 59144, Name: "linea", DisplayName: "Linea", Currency: "ETH",
		Etherscan: &EtherscanHint{Domain: "lineascan.build", Network: "main"},
		MoralisID: "0xe708",
	},
	{
		ChainID: 81457, Name: "blast", DisplayName: "Blast", Currency: "ETH",
		Etherscan: &EtherscanHint{Domain: "blastscan.io", Network: "main"},
	},
	{
		ChainID: 534352, Name: "scroll", DisplayName: "Scroll", Currency: "ETH",
		Etherscan: &EtherscanHint{Domain: "scrollscan.com", Network: "main"},
		MoralisID: "0x82750",
	},
	{
		ChainID: 11155111, Name: "sepolia", DisplayName: "Sepolia", Currency: "ETH",
		Testnet:        true,
		Etherscan:      &EtherscanHint{Domain: "etherscan.io", Network: "sepolia"},
		BlockscoutHost: "eth-sepolia.blockscout.com",
		MoralisID:      "0xaa36a7",
	},
	{
		ChainID: 17000, Name: "holesky", DisplayName: "Holesky", Currency: "ETH",
		Testnet:        true,
		Etherscan:      &EtherscanHint{Domain: "etherscan.io", Network: "holesky"},
		BlockscoutHost: "eth-holesky.blockscout.com",
		MoralisID:      "0x4268",
	},
}
