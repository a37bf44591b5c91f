package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "poolscout",
		Short:        "Multi-chain AMM pool liquidity lookup",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	liquidityCmd := &cobra.Command{
		Use:   "liquidity TOKEN_A TOKEN_B",
		Short: "Find the deepest pool for a token pair",
		Args:  cobra.ExactArgs(2),
		RunE:  runLiquidity,
	}

	liquidityCmd.Flags().String("chain", "all", "chain selector (ethereum, polygon, hedera, all)")
	liquidityCmd.Flags().StringToString("rpc-url", nil, "per-chain RPC URL overrides (chain=url)")
	liquidityCmd.Flags().StringToString("factory", nil, "per-chain factory address overrides (chain=address)")
	liquidityCmd.Flags().String("hedera-network", "mainnet", "hedera network (mainnet, testnet)")
	liquidityCmd.Flags().Duration("probe-timeout", 10*time.Second, "per-probe RPC timeout")
	liquidityCmd.Flags().String("cache", "./data/token_cache.json", "token cache file path")
	liquidityCmd.Flags().Duration("cache-ttl", 24*time.Hour, "token cache entry TTL, 0 keeps entries forever")
	liquidityCmd.Flags().String("discovery-url", "", "token discovery service base URL")
	liquidityCmd.Flags().Duration("discovery-timeout", 15*time.Second, "discovery request timeout")
	liquidityCmd.Flags().String("out", "", "optional snapshot JSONL path")
	liquidityCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for snapshots")
	liquidityCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(liquidityCmd)

	resolveCmd := &cobra.Command{
		Use:   "resolve TOKEN",
		Short: "Resolve a token symbol or address on one chain",
		Args:  cobra.ExactArgs(1),
		RunE:  runResolve,
	}

	resolveCmd.Flags().String("chain", "ethereum", "chain (ethereum, polygon, hedera)")
	resolveCmd.Flags().String("cache", "./data/token_cache.json", "token cache file path")
	resolveCmd.Flags().Duration("cache-ttl", 24*time.Hour, "token cache entry TTL, 0 keeps entries forever")
	resolveCmd.Flags().String("discovery-url", "", "token discovery service base URL")
	resolveCmd.Flags().Duration("discovery-timeout", 15*time.Second, "discovery request timeout")
	resolveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(resolveCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
