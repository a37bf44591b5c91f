package model

import "time"

// PoolSnapshot is the storage representation of one completed probe.
type PoolSnapshot struct {
	Chain        ChainID   `json:"chain"`
	Network      string    `json:"network"`
	PoolAddress  string    `json:"pool_address"`
	Token0       string    `json:"token0"`
	Token1       string    `json:"token1"`
	Fee          int       `json:"fee"`
	Liquidity    string    `json:"liquidity"`
	Tick         int32     `json:"tick"`
	SqrtPriceX96 string    `json:"sqrt_price_x96"`
	ObservedAt   time.Time `json:"observed_at"`
}
