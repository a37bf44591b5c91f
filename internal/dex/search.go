package dex

import (
	"context"
	"math/big"
	"sync"

	"poolscout/internal/model"
)

// BestPool probes every supported fee tier for the pair and picks the
// winner. Probes run concurrently; selection is a deterministic scan in
// ascending tier order, so completion timing never changes the outcome.
//
// Precedence: success beats pool_not_found beats error. Among successes
// the largest liquidity wins, compared as big integers; equal liquidity
// keeps the lower fee tier. Without a success, the last pool_not_found in
// tier order is returned, else the last error.
func BestPool(ctx context.Context, reader PoolReader, tokenA, tokenB model.TokenRef) model.PoolResult {
	tiers := reader.FeeTiers()
	results := make([]model.PoolResult, len(tiers))

	var wg sync.WaitGroup
	for i, fee := range tiers {
		wg.Add(1)
		go func(i, fee int) {
			defer wg.Done()
			results[i] = reader.GetPool(ctx, model.PoolQuery{
				Chain:   reader.Chain(),
				TokenA:  tokenA,
				TokenB:  tokenB,
				FeeTier: fee,
			})
		}(i, fee)
	}
	wg.Wait()

	bestIdx := -1
	var bestLiquidity *big.Int
	lastNotFound := -1
	lastError := -1

	for i, result := range results {
		switch result.Status {
		case model.StatusSuccess:
			liquidity := parseLiquidity(result.Liquidity)
			if bestIdx < 0 || liquidity.Cmp(bestLiquidity) > 0 {
				bestIdx = i
				bestLiquidity = liquidity
			}
		case model.StatusPoolNotFound:
			lastNotFound = i
		case model.StatusError:
			lastError = i
		}
	}

	if bestIdx >= 0 {
		return results[bestIdx]
	}
	if lastNotFound >= 0 {
		return results[lastNotFound]
	}
	if lastError >= 0 {
		return results[lastError]
	}

	// Empty tier lists are rejected at construction; this is unreachable
	// for a well-formed reader.
	return model.PoolResult{
		Chain:  reader.Chain(),
		Status: model.StatusError,
		Error:  "no fee tiers configured",
	}
}

func parseLiquidity(value string) *big.Int {
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return new(big.Int)
	}
	return parsed
}
