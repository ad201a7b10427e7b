package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/analytics"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/chain"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/config"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/dex"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/rebalance"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/wallet"
)

// positionReport is the analyze command's per-position output row.
type positionReport struct {
	PositionID   string          `json:"position_id"`
	Range        model.TickRange `json:"range"`
	CurrentTick  int32           `json:"current_tick"`
	CurrentPrice float64         `json:"current_price"`
	KPIs         model.KPISet    `json:"kpis"`
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
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

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if cfg.AnalyticsURL == "" {
		return fmt.Errorf("analytics url is required")
	}
	if len(cfg.PositionIDs) == 0 {
		return fmt.Errorf("at least one position id is required")
	}
	if !common.IsHexAddress(cfg.PoolAddress) {
		return fmt.Errorf("invalid pool address: %q", cfg.PoolAddress)
	}
	if !common.IsHexAddress(cfg.PositionManager) {
		return fmt.Errorf("invalid position manager address: %q", cfg.PositionManager)
	}

	account, err := wallet.NewAccount(cfg.WalletAddress, cfg.ChainID)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	reader := dex.NewReader(chainClient, logger)
	source := analytics.NewHTTPSource(cfg.AnalyticsURL, logger)
	fetcher := rebalance.NewFetcher(reader, source,
		common.HexToAddress(cfg.PoolAddress),
		common.HexToAddress(cfg.PositionManager),
		account, logger)
	engine := analytics.NewEngine(logger)

	snapshot, err := fetcher.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("fetch snapshot: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	for _, id := range cfg.PositionIDs {
		position, err := fetcher.Position(ctx, id)
		if err != nil {
			return fmt.Errorf("fetch position %s: %w", id, err)
		}

		report := positionReport{
			PositionID:   id,
			Range:        position.Range,
			CurrentTick:  snapshot.CurrentTick,
			CurrentPrice: snapshot.CurrentPrice,
			KPIs:         engine.ComputeKPIs(snapshot, position.Range),
		}
		if err := encoder.Encode(report); err != nil {
			return err
		}
	}
	return nil
}
