package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"poolscout/internal/config"
	"poolscout/internal/model"
)

func runResolve(cmd *cobra.Command, args []string) error {
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

	chainFlag, _ := cmd.Flags().GetString("chain")
	chainID, err := model.ParseChainID(chainFlag)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokenResolver, err := buildResolver(cfg, logger)
	if err != nil {
		return err
	}

	token, err := tokenResolver.Resolve(ctx, args[0], chainID)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}
