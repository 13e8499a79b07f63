package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/adani-quant/trading-dashboard/internal/backtest"
	"github.com/adani-quant/trading-dashboard/internal/candle"
	"github.com/adani-quant/trading-dashboard/internal/config"
	"github.com/adani-quant/trading-dashboard/internal/db"
	"github.com/adani-quant/trading-dashboard/internal/portfolio"
	"github.com/adani-quant/trading-dashboard/internal/server"
	"github.com/adani-quant/trading-dashboard/internal/strategy"
)

var cfgPath string

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return cfg, err
	}
	cfg.SetupLogging()
	return cfg, nil
}

// openStorage returns the Postgres cache when a DSN is configured and
// the in-memory store otherwise.
func openStorage(cfg config.Config) (db.Storage, error) {
	if cfg.PostgresDSN == "" {
		return db.NewMemory(), nil
	}
	store, err := db.NewPostgres(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	log.Info("Connected to Postgres")
	return store, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

var rootCmd = &cobra.Command{
	Use:           "trading-dashboard",
	Short:         "Backtesting dashboard for Adani group stocks",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load data, run the backtests, and serve the dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStorage(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, cancel := signalContext()
		defer cancel()

		srv := server.New(cfg, store)
		if err := srv.LoadData(ctx); err != nil {
			return err
		}
		return srv.Start(ctx)
	},
}

// runBacktests loads the configured CSVs and backtests every symbol
// with a registered strategy. Per-symbol load failures are logged and
// skipped.
func runBacktests(ctx context.Context, cfg config.Config, store db.Storage) ([]*backtest.Result, error) {
	from, _ := cfg.FromTime()
	to, _ := cfg.ToTime()
	loaded, loadErrs := candle.LoadDirectory(cfg.DataDir, cfg.Symbols, cfg.Timeframe)
	for symbol, err := range loadErrs {
		log.WithField("symbol", symbol).WithError(err).Error("Skipping symbol")
	}
	if len(loaded) == 0 {
		return nil, fmt.Errorf("no symbols loaded from %s", cfg.DataDir)
	}

	var results []*backtest.Result
	for _, symbol := range strategy.Symbols() {
		candles, ok := loaded[symbol]
		if !ok {
			continue
		}
		candles = candle.FilterRange(candles, from, to)

		if err := store.SaveCandles(ctx, candles); err != nil {
			log.WithField("symbol", symbol).WithError(err).Warn("Caching candles failed")
		}

		strat, err := strategy.ForSymbol(symbol)
		if err != nil {
			return nil, err
		}
		result, err := backtest.Run(strat, candles, cfg.StartingCapital)
		if err != nil {
			return nil, fmt.Errorf("backtesting %s: %w", symbol, err)
		}
		results = append(results, result)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no configured symbol has a strategy")
	}
	return results, nil
}

func printPortfolio(results []*backtest.Result) error {
	combined, err := portfolio.Combine(results)
	if err != nil {
		return err
	}
	m := combined.Metrics
	fmt.Println("\nEqual-Weight Portfolio:")
	fmt.Printf("  Total Return:   %.2f%%\n", m.TotalReturnPct)
	fmt.Printf("  Annualized:     %.2f%%\n", m.AnnualizedReturnPct)
	fmt.Printf("  Sharpe Ratio:   %.2f\n", m.SharpeRatio)
	fmt.Printf("  Max Drawdown:   %.2f%%\n", m.MaxDrawdownPct)
	fmt.Printf("  Win Rate:       %.2f%%\n", m.WinRatePct)
	fmt.Printf("  Profit Factor:  %.2f\n", m.ProfitFactor)

	fmt.Println("\nPer-Symbol Metrics:")
	symbols := make([]string, 0, len(combined.PerSymbol))
	for symbol := range combined.PerSymbol {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	for _, symbol := range symbols {
		sm := combined.PerSymbol[symbol]
		fmt.Printf("  %-12s return %7.2f%%  sharpe %6.2f  max dd %7.2f%%  win rate %6.2f%%\n",
			symbol, sm.TotalReturnPct, sm.SharpeRatio, sm.MaxDrawdownPct, sm.WinRatePct)
	}
	return nil
}

var exportDir string

var backtestCmd = &cobra.Command{
	Use:   "backtest [symbol...]",
	Short: "Run the strategy backtests and print the trade logs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if len(args) > 0 {
			filtered := make(map[string]string, len(args))
			for _, symbol := range args {
				file, ok := cfg.Symbols[symbol]
				if !ok {
					return fmt.Errorf("symbol %s is not configured", symbol)
				}
				filtered[symbol] = file
			}
			cfg.Symbols = filtered
		}
		store, err := openStorage(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, cancel := signalContext()
		defer cancel()

		results, err := runBacktests(ctx, cfg, store)
		if err != nil {
			return err
		}

		fmt.Println("Backtest Summary:")
		backtest.WriteSummaryTable(os.Stdout, results)

		for _, r := range results {
			fmt.Printf("\nTrades: %s (%s)\n", r.Symbol, r.Strategy)
			backtest.WriteTradesTable(os.Stdout, r)
		}

		if err := printPortfolio(results); err != nil {
			return err
		}

		if exportDir != "" {
			if err := os.MkdirAll(exportDir, 0o755); err != nil {
				return fmt.Errorf("creating export dir: %w", err)
			}
			for _, r := range results {
				trades := filepath.Join(exportDir, fmt.Sprintf("%s_trades.csv", r.Symbol))
				equity := filepath.Join(exportDir, fmt.Sprintf("%s_equity.csv", r.Symbol))
				if err := backtest.ExportTradesCSV(trades, r); err != nil {
					return err
				}
				if err := backtest.ExportEquityCSV(equity, r); err != nil {
					return err
				}
			}
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the per-symbol summary table and portfolio metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStorage(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, cancel := signalContext()
		defer cancel()

		results, err := runBacktests(ctx, cfg, store)
		if err != nil {
			return err
		}

		backtest.WriteSummaryTable(os.Stdout, results)
		return printPortfolio(results)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config YAML")
	backtestCmd.Flags().StringVarP(&exportDir, "export", "e", "", "directory for trade and equity CSV exports")
	rootCmd.AddCommand(serveCmd, backtestCmd, reportCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
