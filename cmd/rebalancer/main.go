package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/advisor"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/analytics"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/chain"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/config"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/dex"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/executor"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/notify"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/rebalance"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/storage"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/storage/postgres"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/wallet"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "rebalancer",
		Short:        "Concentrated-liquidity position rebalancer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run periodic rebalance cycles",
		RunE:  runLoop,
	}
	addEngineFlags(runCmd)
	runCmd.Flags().Duration("interval", time.Hour, "time between cycles")
	runCmd.Flags().String("metrics-addr", ":9090", "prometheus metrics listen address")
	root.AddCommand(runCmd)

	cycleCmd := &cobra.Command{
		Use:   "cycle",
		Short: "Run a single rebalance cycle and exit",
		RunE:  runCycle,
	}
	addEngineFlags(cycleCmd)
	root.AddCommand(cycleCmd)

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute and print pool KPIs without executing anything",
		RunE:  runAnalyze,
	}
	addEngineFlags(analyzeCmd)
	root.AddCommand(analyzeCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "chain RPC URL")
	cmd.Flags().String("analytics-url", "", "analytics REST endpoint")
	cmd.Flags().String("executor-url", "", "execution collaborator endpoint")
	cmd.Flags().String("pg-dsn", "", "optional Postgres DSN for KPI history and results")
	cmd.Flags().String("pool", "", "pool contract address")
	cmd.Flags().String("position-manager", "", "position manager contract address")
	cmd.Flags().StringSlice("position", nil, "position ids (comma-separated)")
	cmd.Flags().String("wallet", "", "wallet address owning the positions")
	cmd.Flags().Uint64("chain-id", 0, "chain id")
	cmd.Flags().String("risk-profile", "medium", "risk profile (conservative, medium, aggressive)")
	cmd.Flags().String("gemini-api-key", "", "optional Gemini API key")
	cmd.Flags().String("gemini-model", "gemini-2.0-flash", "Gemini model name")
	cmd.Flags().String("webhook-url", "", "optional notification webhook URL")
	cmd.Flags().String("out", "./data/results.jsonl", "results JSONL path")
	cmd.Flags().String("incidents", "./data/incidents.json", "incident file path")
	cmd.Flags().Bool("incidents-enabled", true, "persist unresolved incidents")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

// engine bundles the wired dependencies of one rebalancer process.
type engine struct {
	cfg          config.Config
	logger       *zap.Logger
	account      wallet.Account
	chainClient  *chain.Client
	store        *postgres.Store
	orchestrator *rebalance.Orchestrator
}

func (e *engine) close() {
	if e.store != nil {
		e.store.Close()
	}
	if e.chainClient != nil {
		e.chainClient.Close()
	}
}

func buildEngine(ctx context.Context, cfg config.Config, logger *zap.Logger) (*engine, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	if cfg.AnalyticsURL == "" {
		return nil, fmt.Errorf("analytics url is required")
	}
	if cfg.ExecutorURL == "" {
		return nil, fmt.Errorf("executor url is required")
	}
	if len(cfg.PositionIDs) == 0 {
		return nil, fmt.Errorf("at least one position id is required")
	}
	if !common.IsHexAddress(cfg.PoolAddress) {
		return nil, fmt.Errorf("invalid pool address: %q", cfg.PoolAddress)
	}
	if !common.IsHexAddress(cfg.PositionManager) {
		return nil, fmt.Errorf("invalid position manager address: %q", cfg.PositionManager)
	}

	profile, err := model.ParseRiskProfile(cfg.RiskProfile)
	if err != nil {
		return nil, err
	}

	account, err := wallet.NewAccount(cfg.WalletAddress, cfg.ChainID)
	if err != nil {
		return nil, err
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}

	reader := dex.NewReader(chainClient, logger)
	source := analytics.NewHTTPSource(cfg.AnalyticsURL, logger)
	fetcher := rebalance.NewFetcher(reader, source,
		common.HexToAddress(cfg.PoolAddress),
		common.HexToAddress(cfg.PositionManager),
		account, logger)

	var primary advisor.Strategy
	if cfg.GeminiAPIKey != "" {
		gemini, err := advisor.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
		if err != nil {
			chainClient.Close()
			return nil, fmt.Errorf("init gemini advisor: %w", err)
		}
		primary = gemini
	}
	adv := advisor.New(primary, advisor.NewHeuristic(), logger)

	exec := executor.NewClient(executor.NewHTTPCaller(cfg.ExecutorURL), logger)

	var notifier notify.Notifier = notify.Nop{}
	if cfg.WebhookURL != "" {
		notifier = notify.NewWebhook(cfg.WebhookURL, logger)
	}

	var results storage.Storage = storage.NewJsonlStorage(cfg.Out)
	var history rebalance.KPIRecorder
	var store *postgres.Store
	if cfg.PostgresDSN != "" {
		store, err = postgres.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			chainClient.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		history = store
		results = multiSink{results, &pgResultSink{store: store}}
	}

	orchestrator := rebalance.New(rebalance.Config{
		PoolAddress:     common.HexToAddress(cfg.PoolAddress),
		PositionManager: common.HexToAddress(cfg.PositionManager),
		PositionIDs:     cfg.PositionIDs,
		RiskProfile:     profile,
		IncidentPath:    cfg.Incidents,
		IncidentEnabled: cfg.IncidentsEnabled,
	}, account, fetcher, analytics.NewEngine(logger), adv, exec, notifier, results, history, logger)

	return &engine{
		cfg:          cfg,
		logger:       logger,
		account:      account,
		chainClient:  chainClient,
		store:        store,
		orchestrator: orchestrator,
	}, nil
}

func runLoop(cmd *cobra.Command, _ []string) error {
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer e.close()

	if e.store != nil {
		last, ok, err := e.store.LoadCycleState(ctx, e.stateName())
		if err != nil {
			logger.Warn("failed to load cycle state", zap.Error(err))
		} else if ok {
			logger.Info("previous cycle found", zap.Time("last_cycle_at", last))
		}
	}

	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.Handler()}
	go func() {
		logger.Info("metrics listening", zap.String("addr", cfg.MetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("rebalancer start",
		zap.String("pool", cfg.PoolAddress),
		zap.String("wallet", e.account.String()),
		zap.Int("positions", len(cfg.PositionIDs)),
		zap.String("risk_profile", cfg.RiskProfile),
		zap.Duration("interval", cfg.Interval),
	)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		e.runOnce(ctx)
		select {
		case <-ctx.Done():
			logger.Info("rebalancer stopping")
			return nil
		case <-ticker.C:
		}
	}
}

func runCycle(cmd *cobra.Command, _ []string) error {
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer e.close()

	e.runOnce(ctx)
	return nil
}

func (e *engine) runOnce(ctx context.Context) {
	results, err := e.orchestrator.RunCycle(ctx)
	if err != nil {
		e.logger.Error("cycle aborted", zap.Error(err))
		return
	}

	var failed int
	for _, result := range results {
		if !result.Success {
			failed++
		}
	}
	e.logger.Info("cycle complete",
		zap.Int("positions", len(results)),
		zap.Int("failed", failed))

	if e.store != nil {
		if err := e.store.SaveCycleState(ctx, e.stateName(), time.Now().UTC()); err != nil {
			e.logger.Warn("failed to save cycle state", zap.Error(err))
		}
	}
}

func (e *engine) stateName() string {
	return "rebalancer:" + e.account.String()
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
