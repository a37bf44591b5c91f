package model

// ProbeStatus is the outcome class of a single pool probe.
type ProbeStatus string

const (
	StatusSuccess      ProbeStatus = "success"
	StatusPoolNotFound ProbeStatus = "pool_not_found"
	StatusError        ProbeStatus = "error"
)

// PoolQuery describes one fee-tier probe against one chain.
type PoolQuery struct {
	Chain   ChainID  `json:"chain"`
	TokenA  TokenRef `json:"token_a"`
	TokenB  TokenRef `json:"token_b"`
	FeeTier int      `json:"fee_tier"`
}

// PoolResult is the outcome of one fee-tier probe. Liquidity and
// SqrtPriceX96 are decimal strings so values past 2^63 survive JSON
// round-trips untouched.
type PoolResult struct {
	Chain        ChainID     `json:"chain"`
	Network      string      `json:"network"`
	PoolAddress  *string     `json:"pool_address"`
	TokenA       string      `json:"token_a"`
	TokenB       string      `json:"token_b"`
	Fee          int         `json:"fee"`
	Liquidity    string      `json:"liquidity,omitempty"`
	Tick         int32       `json:"tick,omitempty"`
	SqrtPriceX96 string      `json:"sqrt_price_x96,omitempty"`
	Status       ProbeStatus `json:"status"`
	Error        string      `json:"error,omitempty"`
}
