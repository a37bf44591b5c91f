package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolscout/internal/aggregate"
	"poolscout/internal/chain"
	"poolscout/internal/config"
	"poolscout/internal/dex"
	"poolscout/internal/model"
	"poolscout/internal/resolver"
	"poolscout/internal/storage"
	"poolscout/internal/storage/postgres"
)

func runLiquidity(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	selector, _ := cmd.Flags().GetString("chain")
	chains, err := model.ExpandChainSelector(selector)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	readers := make(map[model.ChainID]dex.PoolReader, len(chains))
	for _, chainID := range chains {
		rpcURL := cfg.RPCURLs[string(chainID)]
		if rpcURL == "" {
			return fmt.Errorf("%s: rpc url is required", chainID)
		}

		chainClient, err := chain.NewClient(ctx, rpcURL)
		if err != nil {
			return fmt.Errorf("connect %s rpc: %w", chainID, err)
		}
		defer chainClient.Close()

		reader, err := newPoolReader(cfg, chainID, chainClient, logger)
		if err != nil {
			return err
		}
		readers[chainID] = reader
	}

	tokenResolver, err := buildResolver(cfg, logger)
	if err != nil {
		return err
	}

	agg, err := aggregate.NewAggregator(readers, tokenResolver, logger)
	if err != nil {
		return err
	}

	logger.Info("liquidity query",
		zap.String("chain", selector),
		zap.String("token_a", args[0]),
		zap.String("token_b", args[1]),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)

	response, err := agg.Aggregate(ctx, selector, args[0], args[1])
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	fmt.Println(string(encoded))

	return persistSnapshots(ctx, cfg, response, logger)
}

func newPoolReader(cfg config.Config, chainID model.ChainID, chainClient *chain.Client, logger *zap.Logger) (dex.PoolReader, error) {
	network := "mainnet"
	if chainID == model.ChainHedera {
		network = cfg.HederaNetwork
	}

	var wrappedNative common.Address
	if addr, ok := resolver.WrappedNativeAddress(chainID); ok {
		wrappedNative = common.HexToAddress(addr)
	}

	return dex.NewPoolClient(dex.ClientConfig{
		Chain:         chainID,
		Network:       network,
		Factory:       common.HexToAddress(cfg.Factories[string(chainID)]),
		WrappedNative: wrappedNative,
		FeeTiers:      cfg.FeeTiers[string(chainID)],
		ProbeTimeout:  cfg.ProbeTimeout,
	}, chainClient, logger)
}

func buildResolver(cfg config.Config, logger *zap.Logger) (*resolver.Resolver, error) {
	strategies := []resolver.Strategy{resolver.NewStaticTable()}

	var cache *resolver.FileCache
	if cfg.CachePath != "" {
		var err error
		cache, err = resolver.NewFileCache(cfg.CachePath, cfg.CacheTTL)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, resolver.NewCacheLookup(cache))
	}

	if cfg.DiscoveryURL != "" {
		client := resolver.NewDiscoveryClient(cfg.DiscoveryURL, cfg.DiscoveryTimeout)
		strategies = append(strategies, resolver.NewDiscoveryLookup(client, cache, logger))
	}

	return resolver.NewResolver(logger, strategies...), nil
}

// persistSnapshots writes successful probe results to the configured
// sinks. Persistence trouble is logged, not fatal; the caller already has
// the response on stdout.
func persistSnapshots(ctx context.Context, cfg config.Config, response model.LiquidityResponse, logger *zap.Logger) error {
	if cfg.Out == "" && cfg.PGDSN == "" {
		return nil
	}

	snapshots := snapshotsFromResults(response.Results, time.Now().UTC())
	if len(snapshots) == 0 {
		return nil
	}

	if cfg.Out != "" {
		sink := storage.NewJsonlStorage(cfg.Out)
		if err := sink.PutSnapshotBatch(snapshots); err != nil {
			logger.Warn("jsonl snapshot write failed", zap.Error(err))
		}
	}

	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			logger.Warn("postgres connect failed", zap.Error(err))
			return nil
		}
		defer store.Close()
		if err := store.UpsertSnapshots(ctx, snapshots); err != nil {
			logger.Warn("postgres snapshot write failed", zap.Error(err))
		}
	}

	return nil
}

func snapshotsFromResults(results []model.PoolResult, observedAt time.Time) []model.PoolSnapshot {
	var snapshots []model.PoolSnapshot
	for _, result := range results {
		if result.Status != model.StatusSuccess || result.PoolAddress == nil {
			continue
		}
		token0, token1 := result.TokenA, result.TokenB
		if token1 < token0 {
			token0, token1 = token1, token0
		}
		snapshots = append(snapshots, model.PoolSnapshot{
			Chain:        result.Chain,
			Network:      result.Network,
			PoolAddress:  *result.PoolAddress,
			Token0:       token0,
			Token1:       token1,
			Fee:          result.Fee,
			Liquidity:    result.Liquidity,
			Tick:         result.Tick,
			SqrtPriceX96: result.SqrtPriceX96,
			ObservedAt:   observedAt,
		})
	}
	return snapshots
}
