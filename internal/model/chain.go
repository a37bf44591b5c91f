package model

import "fmt"

// ChainID identifies a supported chain.
type ChainID string

const (
	ChainEthereum ChainID = "ethereum"
	ChainPolygon  ChainID = "polygon"
	ChainHedera   ChainID = "hedera"

	// ChainAll is the request selector for every supported chain.
	ChainAll = "all"
)

// SupportedChains lists chains in canonical response order.
var SupportedChains = []ChainID{ChainEthereum, ChainPolygon, ChainHedera}

// ParseChainID validates a chain name.
func ParseChainID(input string) (ChainID, error) {
	switch ChainID(input) {
	case ChainEthereum, ChainPolygon, ChainHedera:
		return ChainID(input), nil
	default:
		return "", fmt.Errorf("unsupported chain: %s", input)
	}
}

// ExpandChainSelector turns a chain selector ("all" or a chain name) into
// the list of chains to query, in canonical order.
func ExpandChainSelector(selector string) ([]ChainID, error) {
	if selector == "" || selector == ChainAll {
		chains := make([]ChainID, len(SupportedChains))
		copy(chains, SupportedChains)
		return chains, nil
	}
	chain, err := ParseChainID(selector)
	if err != nil {
		return nil, err
	}
	return []ChainID{chain}, nil
}
