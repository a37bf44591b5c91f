package aggregate

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"poolscout/internal/dex"
	"poolscout/internal/model"
	"poolscout/internal/resolver"
)

// fixedReader answers every probe for a chain with the same result,
// optionally after a delay.
type fixedReader struct {
	chain  model.ChainID
	result model.PoolResult
	delay  time.Duration
}

func (f *fixedReader) Chain() model.ChainID { return f.chain }

func (f *fixedReader) Network() string { return "mainnet" }

func (f *fixedReader) FeeTiers() []int { return []int{3000} }

func (f *fixedReader) GetPool(_ context.Context, query model.PoolQuery) model.PoolResult {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	result := f.result
	result.Fee = query.FeeTier
	return result
}

func successFor(chain model.ChainID, liquidity string) model.PoolResult {
	pool := "0x2222222222222222222222222222222222222222"
	return model.PoolResult{
		Chain:       chain,
		Network:     "mainnet",
		PoolAddress: &pool,
		Liquidity:   liquidity,
		Status:      model.StatusSuccess,
	}
}

func testReaders(delays map[model.ChainID]time.Duration) map[model.ChainID]dex.PoolReader {
	readers := make(map[model.ChainID]dex.PoolReader)
	for _, chain := range model.SupportedChains {
		readers[chain] = &fixedReader{
			chain:  chain,
			result: successFor(chain, "18446744073709551617"), // 2^64 + 1
			delay:  delays[chain],
		}
	}
	return readers
}

func newTestAggregator(t *testing.T, delays map[model.ChainID]time.Duration) *Aggregator {
	t.Helper()
	agg, err := NewAggregator(testReaders(delays), resolver.NewResolver(nil, resolver.NewStaticTable()), nil)
	if err != nil {
		t.Fatalf("aggregator construction failed: %v", err)
	}
	return agg
}

func TestAggregateCanonicalOrderUnderSkewedLatency(t *testing.T) {
	// Ethereum slowest, hedera fastest; order must still be canonical.
	agg := newTestAggregator(t, map[model.ChainID]time.Duration{
		model.ChainEthereum: 30 * time.Millisecond,
		model.ChainPolygon:  15 * time.Millisecond,
	})

	response, err := agg.Aggregate(context.Background(), "all", "ETH", "USDC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(response.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(response.Results))
	}
	wantOrder := []model.ChainID{model.ChainEthereum, model.ChainPolygon, model.ChainHedera}
	for i, chain := range wantOrder {
		if response.Results[i].Chain != chain {
			t.Fatalf("result %d should be %s, got %s", i, chain, response.Results[i].Chain)
		}
	}
	if response.Chain != "all" || response.TokenA != "ETH" || response.TokenB != "USDC" {
		t.Fatalf("envelope should echo the request: %+v", response)
	}
}

func TestAggregateSingleChain(t *testing.T) {
	agg := newTestAggregator(t, nil)

	response, err := agg.Aggregate(context.Background(), "polygon", "WETH", "USDC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(response.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(response.Results))
	}
	if response.Results[0].Chain != model.ChainPolygon {
		t.Fatalf("chain mismatch: %s", response.Results[0].Chain)
	}
}

func TestAggregateResolutionFailureIsolation(t *testing.T) {
	agg := newTestAggregator(t, nil)

	response, err := agg.Aggregate(context.Background(), "all", "BADSYMBOL", "USDC")
	if err != nil {
		t.Fatalf("resolution failure must not surface as an error: %v", err)
	}
	if len(response.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(response.Results))
	}
	for _, result := range response.Results {
		if result.Status != model.StatusError {
			t.Fatalf("expected error status for %s, got %s", result.Chain, result.Status)
		}
		if !strings.Contains(result.Error, "resolution") || !strings.Contains(result.Error, "BADSYMBOL") {
			t.Fatalf("error should mention the failed resolution: %q", result.Error)
		}
	}

	// The envelope stays machine-readable even in the all-error case.
	data, err := json.Marshal(response)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var decoded model.LiquidityResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
}

func TestAggregateFailedChainDoesNotBlockOthers(t *testing.T) {
	// USDT is absent from the Hedera static table, present on the others.
	agg := newTestAggregator(t, nil)

	response, err := agg.Aggregate(context.Background(), "all", "USDT", "USDC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(response.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(response.Results))
	}
	if response.Results[0].Status != model.StatusSuccess {
		t.Fatalf("ethereum should succeed: %+v", response.Results[0])
	}
	if response.Results[1].Status != model.StatusSuccess {
		t.Fatalf("polygon should succeed: %+v", response.Results[1])
	}
	if response.Results[2].Status != model.StatusError {
		t.Fatalf("hedera should report a resolution error: %+v", response.Results[2])
	}
}

func TestAggregateLiquidityStringsSurviveEnvelope(t *testing.T) {
	agg := newTestAggregator(t, nil)

	response, err := agg.Aggregate(context.Background(), "ethereum", "WETH", "USDC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := json.Marshal(response)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var decoded model.LiquidityResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Results[0].Liquidity != "18446744073709551617" {
		t.Fatalf("liquidity string mutated: %s", decoded.Results[0].Liquidity)
	}
}

func TestAggregateInvalidSelector(t *testing.T) {
	agg := newTestAggregator(t, nil)

	if _, err := agg.Aggregate(context.Background(), "solana", "WETH", "USDC"); err == nil {
		t.Fatalf("expected error for unsupported selector")
	}
}
