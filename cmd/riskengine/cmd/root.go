package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"RiskEngine/internal/config"
	"RiskEngine/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "riskengine",
	Short: "Per-asset risk metrics for a ticker universe",
	Long: `RiskEngine downloads daily closing prices for a list of tickers and a
benchmark, computes daily returns, rolling annualized volatility, Sharpe
ratio and beta, and stores one row per ticker and date.

Commands:
  run     - execute the pipeline once
  serve   - run the pipeline on a cron schedule with Telegram commands
  report  - export stored metrics as a table, CSV or chart
  config  - generate or validate configuration files`,
	SilenceUsage: true,
}

var (
	cfgPath  string
	logLevel string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultPath, "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

// loadConfig reads and validates the configuration and builds the logger.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	log := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		return nil, log, fmt.Errorf("config validation: %w", err)
	}
	return cfg, log, nil
}
