package dex

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"poolscout/internal/chain"
	"poolscout/internal/model"
)

var zeroAddress = common.Address{}

// PoolReader answers single fee-tier probes for one chain.
type PoolReader interface {
	Chain() model.ChainID
	Network() string
	FeeTiers() []int
	GetPool(ctx context.Context, query model.PoolQuery) model.PoolResult
}

// ClientConfig configures a per-chain pool client. It is built once at
// startup from the process config; nothing here changes mid-request.
type ClientConfig struct {
	Chain         model.ChainID
	Network       string
	Factory       common.Address
	WrappedNative common.Address
	FeeTiers      []int
	ProbeTimeout  time.Duration
}

// PoolClient reads V3-style pools from one chain via the factory
// contract. A single observation per call; retries, if any, belong to an
// outer layer.
type PoolClient struct {
	cfg    ClientConfig
	chain  *chain.Client
	logger *zap.Logger
}

func NewPoolClient(cfg ClientConfig, chainClient *chain.Client, logger *zap.Logger) (*PoolClient, error) {
	if chainClient == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	if len(cfg.FeeTiers) == 0 {
		return nil, fmt.Errorf("%s: fee tier list is empty", cfg.Chain)
	}
	for i := 1; i < len(cfg.FeeTiers); i++ {
		if cfg.FeeTiers[i] <= cfg.FeeTiers[i-1] {
			return nil, fmt.Errorf("%s: fee tiers must be strictly ascending", cfg.Chain)
		}
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PoolClient{cfg: cfg, chain: chainClient, logger: logger}, nil
}

func (c *PoolClient) Chain() model.ChainID { return c.cfg.Chain }

func (c *PoolClient) Network() string { return c.cfg.Network }

func (c *PoolClient) FeeTiers() []int {
	tiers := make([]int, len(c.cfg.FeeTiers))
	copy(tiers, c.cfg.FeeTiers)
	return tiers
}

// GetPool probes one (token pair, fee tier) combination. Absence of a
// pool is a normal outcome surfaced as pool_not_found; only transport or
// contract trouble becomes an error result. Nothing propagates past this
// boundary as a Go error.
func (c *PoolClient) GetPool(ctx context.Context, query model.PoolQuery) model.PoolResult {
	addrA := c.substituteNative(query.TokenA)
	addrB := c.substituteNative(query.TokenB)
	fee := query.FeeTier

	result := model.PoolResult{
		Chain:   c.cfg.Chain,
		Network: c.cfg.Network,
		TokenA:  strings.ToLower(addrA.Hex()),
		TokenB:  strings.ToLower(addrB.Hex()),
		Fee:     fee,
	}

	if addrA == addrB {
		result.Status = model.StatusError
		result.Error = "token_a and token_b must be different"
		return result
	}
	if c.cfg.Factory == zeroAddress {
		result.Status = model.StatusError
		result.Error = fmt.Sprintf("%s factory address not configured", c.cfg.Chain)
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.ProbeTimeout)
	defer cancel()

	// Factories key pools by sorted token order, not caller order.
	token0, token1 := orderTokens(addrA, addrB)

	pool, err := c.factoryGetPool(ctx, token0, token1, fee)
	if err != nil {
		if isPoolMissingError(err) {
			result.Status = model.StatusPoolNotFound
			return result
		}
		result.Status = model.StatusError
		result.Error = fmt.Sprintf("factory lookup: %v", err)
		return result
	}
	if pool == zeroAddress {
		result.Status = model.StatusPoolNotFound
		return result
	}

	liquidity, tick, sqrtPrice, err := c.readPoolState(ctx, pool)
	if err != nil {
		result.Status = model.StatusError
		result.Error = fmt.Sprintf("pool state read: %v", err)
		return result
	}

	poolHex := strings.ToLower(pool.Hex())
	result.PoolAddress = &poolHex
	result.Liquidity = liquidity.String()
	result.Tick = tick
	result.SqrtPriceX96 = sqrtPrice.String()
	result.Status = model.StatusSuccess

	c.logger.Debug("pool probe",
		zap.String("chain", string(c.cfg.Chain)),
		zap.String("pool", poolHex),
		zap.Int("fee", fee),
		zap.String("liquidity", result.Liquidity),
	)

	return result
}

// substituteNative rewrites the raw native-asset marker (zero address) to
// the wrapped-native token. Resolvers usually hand over the wrapped form
// already; this covers callers that did not.
func (c *PoolClient) substituteNative(token model.TokenRef) common.Address {
	addr := common.HexToAddress(token.Address)
	if addr == zeroAddress && c.cfg.WrappedNative != zeroAddress {
		return c.cfg.WrappedNative
	}
	return addr
}

func (c *PoolClient) factoryGetPool(ctx context.Context, token0, token1 common.Address, fee int) (common.Address, error) {
	factoryABI, err := V3FactoryABI()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse factory abi: %w", err)
	}

	data, err := factoryABI.Pack("getPool", token0, token1, big.NewInt(int64(fee)))
	if err != nil {
		return common.Address{}, fmt.Errorf("pack getPool: %w", err)
	}

	factory := c.cfg.Factory
	resp, err := c.chain.CallContract(ctx, ethereum.CallMsg{To: &factory, Data: data})
	if err != nil {
		return common.Address{}, err
	}

	values, err := factoryABI.Unpack("getPool", resp)
	if err != nil {
		return common.Address{}, fmt.Errorf("unpack getPool: %w", err)
	}
	return asAddress(values[0])
}

func (c *PoolClient) readPoolState(ctx context.Context, pool common.Address) (*big.Int, int32, *big.Int, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return nil, 0, nil, fmt.Errorf("parse pool abi: %w", err)
	}

	values, err := c.callPoolMethod(ctx, pool, poolABI, "liquidity")
	if err != nil {
		return nil, 0, nil, err
	}
	liquidity, err := asBigInt(values[0])
	if err != nil {
		return nil, 0, nil, fmt.Errorf("liquidity: %w", err)
	}

	values, err = c.callPoolMethod(ctx, pool, poolABI, "slot0")
	if err != nil {
		return nil, 0, nil, err
	}
	if len(values) < 2 {
		return nil, 0, nil, fmt.Errorf("slot0: short response")
	}
	sqrtPrice, err := asBigInt(values[0])
	if err != nil {
		return nil, 0, nil, fmt.Errorf("sqrt price: %w", err)
	}
	tickInt, err := asBigInt(values[1])
	if err != nil {
		return nil, 0, nil, fmt.Errorf("tick: %w", err)
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("tick: %w", err)
	}

	return liquidity, tick, sqrtPrice, nil
}

func (c *PoolClient) callPoolMethod(ctx context.Context, pool common.Address, poolABI abi.ABI, method string) ([]interface{}, error) {
	data, err := poolABI.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	resp, err := c.chain.CallContract(ctx, ethereum.CallMsg{To: &pool, Data: data})
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := poolABI.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

// orderTokens sorts two addresses into the factory's canonical order.
func orderTokens(a, b common.Address) (common.Address, common.Address) {
	if strings.ToLower(a.Hex()) < strings.ToLower(b.Hex()) {
		return a, b
	}
	return b, a
}

// isPoolMissingError reports whether a factory call failure means "no
// pool at this tier". Hedera's relay surfaces missing pools as contract
// reverts rather than a zero address.
func isPoolMissingError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"execution reverted",
		"contract_execution_exception",
		"pool does not exist",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func int24FromBig(value *big.Int) (int32, error) {
	min := big.NewInt(-1 << 23)
	max := big.NewInt((1 << 23) - 1)
	if value.Cmp(min) < 0 || value.Cmp(max) > 0 {
		return 0, fmt.Errorf("int24 overflow: %s", value.String())
	}
	return int32(value.Int64()), nil
}
