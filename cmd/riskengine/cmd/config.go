package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"RiskEngine/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate the configuration after env overrides

Examples:
  riskengine config init -o configs/config.yaml
  riskengine config validate -c configs/config.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var configInitOutput string

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "config.yaml", "output config file path")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("✓ Created default configuration: %s\n", configInitOutput)
	fmt.Println("\nEdit the file and run with:")
	fmt.Printf("  riskengine run -c %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("✓ Configuration valid: %s\n", cfgPath)
	fmt.Printf("  Tickers: %s (benchmark %s, period %s)\n", strings.Join(cfg.Tickers, ", "), cfg.Benchmark, cfg.Period)
	fmt.Printf("  Metrics: window %d, annualization %.0f, risk-free %.2f%%\n",
		cfg.Metrics.Window, cfg.Metrics.Annualization, cfg.Metrics.RiskFreeRate*100)
	fmt.Printf("  Data source: %s\n", cfg.DataSource.Provider)
	fmt.Printf("  Database: %s\n", cfg.Database.Driver)
	fmt.Printf("  Schedule: %s\n", cfg.Schedule.Cron)
	fmt.Printf("  Telegram: %t\n", cfg.Telegram.Enabled())
	return nil
}
