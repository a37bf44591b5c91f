package resolver

import (
	"context"
	"strings"

	"poolscout/internal/model"
)

// staticEntry is one curated token mapping.
type staticEntry struct {
	Address  string
	Decimals uint8
	NativeID string
}

// Curated well-known tokens per chain (mainnet). Addresses are stored
// lowercase, the canonical form for pool derivation.
var staticTokens = map[model.ChainID]map[string]staticEntry{
	model.ChainEthereum: {
		"WETH": {Address: "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", Decimals: 18},
		"USDC": {Address: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", Decimals: 6},
		"USDT": {Address: "0xdac17f958d2ee523a2206206994597c13d831ec7", Decimals: 6},
		"DAI":  {Address: "0x6b175474e89094c44da98b954eedeac495271d0f", Decimals: 18},
		"WBTC": {Address: "0x2260fac5e5542a773aa44fbcfedf7c193bc2c599", Decimals: 8},
	},
	model.ChainPolygon: {
		"WETH":   {Address: "0x7ceb23fd6bc0add59e62ac25578270cff1b9f619", Decimals: 18},
		"USDC":   {Address: "0x3c499c542cef5e3811e1192ce70d8cc03d5c3359", Decimals: 6},
		"USDT":   {Address: "0xc2132d05d31c914a87c6611c10748aeb04b58e8f", Decimals: 6},
		"DAI":    {Address: "0x8f3cf7ad23cd3cadbd9735aff958023239c6a063", Decimals: 18},
		"WMATIC": {Address: "0x0d500b1d8e8ef31e21c99d1db9a6444d3adf1270", Decimals: 18},
	},
	model.ChainHedera: {
		"WHBAR": {Address: "0x0000000000000000000000000000000000163b5a", Decimals: 8, NativeID: "0.0.1456986"},
		"USDC":  {Address: "0x000000000000000000000000000000000006f89a", Decimals: 6, NativeID: "0.0.456858"},
		"SAUCE": {Address: "0x00000000000000000000000000000000000b2ad5", Decimals: 8, NativeID: "0.0.731861"},
		"JAM":   {Address: "0x000000000000000000000000000000000001f3f5", Decimals: 8, NativeID: "0.0.127877"},
	},
}

// StaticTable resolves symbols from the curated constant tables. It is
// deterministic and performs no I/O.
type StaticTable struct{}

func NewStaticTable() *StaticTable {
	return &StaticTable{}
}

func (s *StaticTable) Name() string { return "constants" }

func (s *StaticTable) Resolve(_ context.Context, symbol string, chain model.ChainID) (model.TokenRef, bool, error) {
	upper := strings.ToUpper(symbol)

	if entry, ok := staticTokens[chain][upper]; ok {
		return tokenRefFromEntry(upper, chain, entry), true, nil
	}

	// Bridged majors share Ethereum symbols; fall back to the Ethereum
	// table for symbols missing from the Polygon one.
	if chain == model.ChainPolygon {
		if entry, ok := staticTokens[model.ChainEthereum][upper]; ok {
			return tokenRefFromEntry(upper, chain, entry), true, nil
		}
	}

	return model.TokenRef{}, false, nil
}

func tokenRefFromEntry(symbol string, chain model.ChainID, entry staticEntry) model.TokenRef {
	return model.TokenRef{
		Symbol:   symbol,
		Chain:    chain,
		Address:  entry.Address,
		NativeID: entry.NativeID,
		Decimals: entry.Decimals,
		Source:   model.SourceConstants,
	}
}

// WrappedNativeAddress returns the wrapped-native token address for a
// chain, used when a caller hands a raw native-asset marker to a pool
// lookup.
func WrappedNativeAddress(chain model.ChainID) (string, bool) {
	var symbol string
	switch chain {
	case model.ChainEthereum:
		symbol = "WETH"
	case model.ChainPolygon:
		symbol = "WMATIC"
	case model.ChainHedera:
		symbol = "WHBAR"
	default:
		return "", false
	}
	entry, ok := staticTokens[chain][symbol]
	if !ok {
		return "", false
	}
	return entry.Address, true
}
