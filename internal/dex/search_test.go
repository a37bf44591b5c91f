package dex

import (
	"context"
	"reflect"
	"testing"
	"time"

	"poolscout/internal/model"
)

// fakeReader serves canned results per fee tier, optionally delaying some
// tiers to shuffle completion order.
type fakeReader struct {
	chain   model.ChainID
	tiers   []int
	results map[int]model.PoolResult
	delays  map[int]time.Duration
}

func (f *fakeReader) Chain() model.ChainID { return f.chain }

func (f *fakeReader) Network() string { return "mainnet" }

func (f *fakeReader) FeeTiers() []int { return f.tiers }

func (f *fakeReader) GetPool(_ context.Context, query model.PoolQuery) model.PoolResult {
	fee := query.FeeTier
	if delay, ok := f.delays[fee]; ok {
		time.Sleep(delay)
	}
	if result, ok := f.results[fee]; ok {
		return result
	}
	return model.PoolResult{Chain: f.chain, Fee: fee, Status: model.StatusPoolNotFound}
}

func successResult(fee int, liquidity string) model.PoolResult {
	pool := "0x1111111111111111111111111111111111111111"
	return model.PoolResult{
		Chain:       model.ChainEthereum,
		Network:     "mainnet",
		PoolAddress: &pool,
		Fee:         fee,
		Liquidity:   liquidity,
		Status:      model.StatusSuccess,
	}
}

func errorResult(fee int, msg string) model.PoolResult {
	return model.PoolResult{Chain: model.ChainEthereum, Fee: fee, Status: model.StatusError, Error: msg}
}

func notFoundResult(fee int) model.PoolResult {
	return model.PoolResult{Chain: model.ChainEthereum, Fee: fee, Status: model.StatusPoolNotFound}
}

var tokenA = model.TokenRef{Symbol: "WETH", Address: "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"}
var tokenB = model.TokenRef{Symbol: "USDC", Address: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"}

func TestBestPoolPicksHighestLiquidity(t *testing.T) {
	reader := &fakeReader{
		chain: model.ChainEthereum,
		tiers: []int{500, 3000, 10000},
		results: map[int]model.PoolResult{
			500:   successResult(500, "1000"),
			3000:  successResult(3000, "98765432109876543210987654321"), // past 2^63
			10000: successResult(10000, "5000"),
		},
	}

	best := BestPool(context.Background(), reader, tokenA, tokenB)
	if best.Fee != 3000 {
		t.Fatalf("expected tier 3000 to win, got %d", best.Fee)
	}
	if best.Liquidity != "98765432109876543210987654321" {
		t.Fatalf("liquidity mismatch: %s", best.Liquidity)
	}
}

func TestBestPoolTieBreaksToLowestFee(t *testing.T) {
	reader := &fakeReader{
		chain: model.ChainEthereum,
		tiers: []int{500, 3000, 10000},
		results: map[int]model.PoolResult{
			500:  successResult(500, "777"),
			3000: successResult(3000, "777"),
		},
	}

	best := BestPool(context.Background(), reader, tokenA, tokenB)
	if best.Fee != 500 {
		t.Fatalf("equal liquidity should keep the lower tier, got %d", best.Fee)
	}
}

func TestBestPoolSuccessBeatsError(t *testing.T) {
	reader := &fakeReader{
		chain: model.ChainEthereum,
		tiers: []int{500, 3000, 10000},
		results: map[int]model.PoolResult{
			500:   errorResult(500, "rpc timeout"),
			3000:  successResult(3000, "1"),
			10000: errorResult(10000, "rpc timeout"),
		},
		// slow down the success so errors complete first
		delays: map[int]time.Duration{3000: 20 * time.Millisecond},
	}

	best := BestPool(context.Background(), reader, tokenA, tokenB)
	if best.Status != model.StatusSuccess || best.Fee != 3000 {
		t.Fatalf("success must win regardless of completion order, got %+v", best)
	}
}

func TestBestPoolNotFoundBeatsError(t *testing.T) {
	reader := &fakeReader{
		chain: model.ChainEthereum,
		tiers: []int{500, 3000, 10000},
		results: map[int]model.PoolResult{
			500:   errorResult(500, "connection refused"),
			3000:  notFoundResult(3000),
			10000: errorResult(10000, "connection refused"),
		},
	}

	best := BestPool(context.Background(), reader, tokenA, tokenB)
	if best.Status != model.StatusPoolNotFound {
		t.Fatalf("pool_not_found should outrank error, got %+v", best)
	}
}

func TestBestPoolAllErrorsReturnsLastError(t *testing.T) {
	reader := &fakeReader{
		chain: model.ChainEthereum,
		tiers: []int{500, 3000},
		results: map[int]model.PoolResult{
			500:  errorResult(500, "first"),
			3000: errorResult(3000, "second"),
		},
	}

	best := BestPool(context.Background(), reader, tokenA, tokenB)
	if best.Status != model.StatusError || best.Error != "second" {
		t.Fatalf("expected last error in tier order, got %+v", best)
	}
}

func TestBestPoolIdempotent(t *testing.T) {
	reader := &fakeReader{
		chain: model.ChainEthereum,
		tiers: []int{500, 1500, 3000, 10000},
		results: map[int]model.PoolResult{
			1500:  successResult(1500, "42"),
			3000:  successResult(3000, "42"),
			10000: notFoundResult(10000),
		},
		delays: map[int]time.Duration{1500: 15 * time.Millisecond},
	}

	first := BestPool(context.Background(), reader, tokenA, tokenB)
	second := BestPool(context.Background(), reader, tokenA, tokenB)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("selection must be deterministic: %+v != %+v", first, second)
	}
	if first.Fee != 1500 {
		t.Fatalf("expected lowest equal-liquidity tier, got %d", first.Fee)
	}
}
