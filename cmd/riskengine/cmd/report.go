package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"RiskEngine/internal/model"
	"RiskEngine/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export stored metrics",
	Long: `Read the stored market_data table and print the latest rows, or
export it as CSV or as a cumulative return chart.

Examples:
  riskengine report --ticker PETR4
  riskengine report --csv metrics.csv
  riskengine report --chart cumulative.png`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

var (
	reportTicker string
	reportCSV    string
	reportChart  string
	reportTail   int
)

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&reportTicker, "ticker", "t", "", "limit to one ticker")
	reportCmd.Flags().StringVar(&reportCSV, "csv", "", "write rows as CSV to this path (- for stdout)")
	reportCmd.Flags().StringVar(&reportChart, "chart", "", "write a cumulative return PNG to this path")
	reportCmd.Flags().IntVarP(&reportTail, "tail", "n", 5, "rows to print per ticker")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	repo, err := newRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer repo.Close()

	ticker := strings.ToUpper(reportTicker)
	records, err := repo.LoadMetrics(ctx, ticker)
	if err != nil {
		return fmt.Errorf("load metrics: %w", err)
	}
	if len(records) == 0 {
		return errors.New("no metrics stored, run the pipeline first")
	}

	if reportCSV != "" {
		if err := writeCSV(reportCSV, records); err != nil {
			return err
		}
	}
	if reportChart != "" {
		title := "Cumulative return"
		if ticker != "" {
			title += " | " + ticker
		}
		img, err := report.RenderCumulativeChart(title, report.CumulativeByTicker(records))
		if err != nil {
			return err
		}
		if err := os.WriteFile(reportChart, img, 0644); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ chart written: %s\n", reportChart)
	}
	if reportCSV == "" && reportChart == "" {
		return printTail(os.Stdout, records, reportTail)
	}
	return nil
}

func writeCSV(path string, records []model.MetricRecord) error {
	if path == "-" {
		return report.WriteCSV(os.Stdout, records)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := report.WriteCSV(f, records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close csv: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ csv written: %s (%d rows)\n", path, len(records))
	return nil
}
