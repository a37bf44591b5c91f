package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"poolscout/internal/model"
)

// ResolutionFailure reports that a symbol could not be mapped to an
// address on a chain. It is the expected terminal outcome for unknown
// symbols, never a panic.
type ResolutionFailure struct {
	Symbol string
	Chain  model.ChainID
	Reason string
}

func (f *ResolutionFailure) Error() string {
	return fmt.Sprintf("token resolution failed: %s on %s (%s)", f.Symbol, f.Chain, f.Reason)
}

// Strategy is one lookup source in the resolution chain. found=false with
// a nil error means "not known here, try the next source".
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, symbol string, chain model.ChainID) (model.TokenRef, bool, error)
}

// Resolver maps symbols or address literals to TokenRefs by walking an
// ordered list of strategies until the first hit.
type Resolver struct {
	strategies []Strategy
	logger     *zap.Logger
}

func NewResolver(logger *zap.Logger, strategies ...Strategy) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{strategies: strategies, logger: logger}
}

// Resolve maps input to a TokenRef on chain. Address literals (EVM hex or
// Hedera shard.realm.num) pass through untouched with constants
// provenance; symbols walk the strategy chain.
func (r *Resolver) Resolve(ctx context.Context, input string, chain model.ChainID) (model.TokenRef, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return model.TokenRef{}, &ResolutionFailure{Symbol: input, Chain: chain, Reason: "empty symbol"}
	}

	if common.IsHexAddress(trimmed) && strings.HasPrefix(trimmed, "0x") {
		ref := model.TokenRef{
			Symbol:  trimmed,
			Chain:   chain,
			Address: strings.ToLower(trimmed),
			Source:  model.SourceConstants,
		}
		if chain == model.ChainHedera {
			if id, err := AddressToEntityID(common.HexToAddress(trimmed)); err == nil {
				ref.NativeID = id
			}
		}
		return ref, nil
	}

	if chain == model.ChainHedera && IsEntityID(trimmed) {
		addr, err := EntityIDToAddress(trimmed)
		if err != nil {
			return model.TokenRef{}, &ResolutionFailure{Symbol: input, Chain: chain, Reason: err.Error()}
		}
		return model.TokenRef{
			Symbol:   trimmed,
			Chain:    chain,
			Address:  strings.ToLower(addr.Hex()),
			NativeID: trimmed,
			Source:   model.SourceConstants,
		}, nil
	}

	symbol := CanonicalSymbol(trimmed)

	for _, strategy := range r.strategies {
		ref, found, err := strategy.Resolve(ctx, symbol, chain)
		if err != nil {
			r.logger.Warn("resolver strategy failed",
				zap.String("strategy", strategy.Name()),
				zap.String("symbol", symbol),
				zap.String("chain", string(chain)),
				zap.Error(err),
			)
			continue
		}
		if found {
			return ref, nil
		}
	}

	return model.TokenRef{}, &ResolutionFailure{Symbol: symbol, Chain: chain, Reason: "not_found"}
}

// CanonicalSymbol uppercases a symbol and maps native-asset spellings to
// their wrapped form, since AMM pools cannot hold the native asset.
func CanonicalSymbol(symbol string) string {
	upper := strings.ToUpper(strings.TrimSpace(symbol))
	if wrapped, ok := symbolAliases[upper]; ok {
		return wrapped
	}
	return upper
}

var symbolAliases = map[string]string{
	"ETH":     "WETH",
	"ETHER":   "WETH",
	"ETHERUM": "WETH",
	"MATIC":   "WMATIC",
	"POL":     "WMATIC",
	"HBAR":    "WHBAR",
}
