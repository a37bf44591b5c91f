package model

// ResolutionSource records where a token resolution came from.
type ResolutionSource string

const (
	SourceConstants ResolutionSource = "constants"
	SourceCache     ResolutionSource = "cache"
	SourceDiscovery ResolutionSource = "discovery"
)

// TokenRef is a resolved token identity on one chain. Address is always
// the lowercase EVM form; NativeID carries Hedera's shard.realm.num id
// when known.
type TokenRef struct {
	Symbol   string           `json:"symbol"`
	Chain    ChainID          `json:"chain"`
	Address  string           `json:"address"`
	NativeID string           `json:"native_id,omitempty"`
	Decimals uint8            `json:"decimals"`
	Source   ResolutionSource `json:"source"`
}
