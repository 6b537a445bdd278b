package decode

import "github.com/ethereum/go-ethereum/common"

// Token is one entry of the curated mainnet ERC-20 registry.
type Token struct {
	Address  common.Address
	Name     string
	Symbol   string
	Decimals uint8
}

var popularTokens = []Token{
	{common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"), "Tether USD", "USDT", 6},
	{common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), "USD Coin", "USDC", 6},
	{common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"), "Wrapped Ether", "WETH", 18},
	{common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"), "Dai Stablecoin", "DAI", 18},
	{common.HexToAddress("0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599"), "Wrapped Bitcoin", "WBTC", 8},
	{common.HexToAddress("0x514910771AF9Ca656af840dff83E8264EcF986CA"), "Chainlink", "LINK", 18},
	{common.HexToAddress("0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984"), "Uniswap", "UNI", 18},
	{common.HexToAddress("0x7D1AfA7B718fb893dB30A3aBc0Cfc608AaCfeBB0"), "Polygon", "MATIC", 18},
	{common.HexToAddress("0x95aD61b0a150d79219dCF64E1E6Cc01f0B64C4cE"), "Shiba Inu", "SHIB", 18},
	{common.HexToAddress("0xae7ab96520DE3A18E5e111B5EaAb095312D7fE84"), "Lido Staked ETH", "stETH", 18},
}

var tokensByAddress = buildTokenIndex()

func buildTokenIndex() map[common.Address]Token {
	m := make(map[common.Address]Token, len(popularTokens))
	for _, t := range popularTokens {
		m[t.Address] = t
	}
	return m
}

// TokenByAddress looks up the registry; absence is a normal miss.
func TokenByAddress(addr common.Address) (Token, bool) {
	t, ok := tokensByAddress[addr]
	return t, ok
}

// PopularTokens returns the registry set, used for balance probes.
func PopularTokens() []Token {
	return popularTokens
}
