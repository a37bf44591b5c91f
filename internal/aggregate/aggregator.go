package aggregate

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"poolscout/internal/dex"
	"poolscout/internal/model"
)

// TokenResolver maps a symbol or address literal to a TokenRef on one
// chain.
type TokenResolver interface {
	Resolve(ctx context.Context, input string, chain model.ChainID) (model.TokenRef, error)
}

// Aggregator fans a liquidity request out across chains and assembles
// the envelope. One chain's failure never blocks the others.
type Aggregator struct {
	readers  map[model.ChainID]dex.PoolReader
	resolver TokenResolver
	logger   *zap.Logger
}

func NewAggregator(readers map[model.ChainID]dex.PoolReader, resolver TokenResolver, logger *zap.Logger) (*Aggregator, error) {
	if resolver == nil {
		return nil, fmt.Errorf("resolver is nil")
	}
	if len(readers) == 0 {
		return nil, fmt.Errorf("at least one pool reader is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{readers: readers, resolver: resolver, logger: logger}, nil
}

// Aggregate resolves both tokens per chain, runs the fee-tier search on
// every requested chain concurrently, and returns the envelope with
// results in canonical chain order. The returned error covers only an
// invalid chain selector; per-chain trouble lands inside the envelope.
func (a *Aggregator) Aggregate(ctx context.Context, chainSelector, tokenA, tokenB string) (model.LiquidityResponse, error) {
	chains, err := model.ExpandChainSelector(chainSelector)
	if err != nil {
		return model.LiquidityResponse{}, err
	}

	response := model.LiquidityResponse{
		Type:    model.ResponseTypeLiquidity,
		Chain:   selectorLabel(chainSelector),
		TokenA:  tokenA,
		TokenB:  tokenB,
		Results: make([]model.PoolResult, len(chains)),
	}

	// Index-addressed slice keeps canonical order no matter which chain
	// finishes first.
	var wg sync.WaitGroup
	for i, chain := range chains {
		wg.Add(1)
		go func(i int, chain model.ChainID) {
			defer wg.Done()
			response.Results[i] = a.queryChain(ctx, chain, tokenA, tokenB)
		}(i, chain)
	}
	wg.Wait()

	return response, nil
}

func (a *Aggregator) queryChain(ctx context.Context, chain model.ChainID, tokenA, tokenB string) model.PoolResult {
	reader, ok := a.readers[chain]
	if !ok {
		return model.PoolResult{
			Chain:  chain,
			TokenA: tokenA,
			TokenB: tokenB,
			Status: model.StatusError,
			Error:  fmt.Sprintf("no pool client configured for %s", chain),
		}
	}

	refA, err := a.resolver.Resolve(ctx, tokenA, chain)
	if err != nil {
		return a.resolutionErrorResult(reader, chain, tokenA, tokenB, tokenA)
	}
	refB, err := a.resolver.Resolve(ctx, tokenB, chain)
	if err != nil {
		return a.resolutionErrorResult(reader, chain, tokenA, tokenB, tokenB)
	}

	a.logger.Debug("chain query",
		zap.String("chain", string(chain)),
		zap.String("token_a", refA.Address),
		zap.String("token_b", refB.Address),
		zap.String("source_a", string(refA.Source)),
		zap.String("source_b", string(refB.Source)),
	)

	return dex.BestPool(ctx, reader, refA, refB)
}

func (a *Aggregator) resolutionErrorResult(reader dex.PoolReader, chain model.ChainID, tokenA, tokenB, failed string) model.PoolResult {
	a.logger.Warn("token resolution failed",
		zap.String("chain", string(chain)),
		zap.String("symbol", failed),
	)
	return model.PoolResult{
		Chain:   chain,
		Network: reader.Network(),
		TokenA:  tokenA,
		TokenB:  tokenB,
		Status:  model.StatusError,
		Error:   fmt.Sprintf("token resolution failed: %s", failed),
	}
}

func selectorLabel(selector string) string {
	if selector == "" {
		return model.ChainAll
	}
	return selector
}
