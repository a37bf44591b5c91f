package model

import "encoding/json"

// ResponseTypeLiquidity is the envelope type tag.
const ResponseTypeLiquidity = "liquidity"

// LiquidityResponse is the aggregate envelope returned to callers.
// Chain holds the originally requested selector; TokenA/TokenB the
// originally supplied symbols or addresses.
type LiquidityResponse struct {
	Type    string       `json:"type"`
	Chain   string       `json:"chain"`
	TokenA  string       `json:"token_a"`
	TokenB  string       `json:"token_b"`
	Results []PoolResult `json:"results"`
}

// MarshalJSON ensures the envelope is encoded with stable field names.
func (r LiquidityResponse) MarshalJSON() ([]byte, error) {
	type Alias LiquidityResponse
	return json.Marshal(Alias(r))
}

// UnmarshalJSON decodes a LiquidityResponse from JSON.
func (r *LiquidityResponse) UnmarshalJSON(data []byte) error {
	type Alias LiquidityResponse
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = LiquidityResponse(a)
	return nil
}
