package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the pipeline once",
	Long: `Download prices, compute the risk metrics and replace the stored
market_data table. The last rows of every processed ticker are printed.

Examples:
  riskengine run
  riskengine run --tail 10 -c configs/config.yaml`,
	Args: cobra.NoArgs,
	RunE: runPipelineOnce,
}

var runTail int

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().IntVarP(&runTail, "tail", "n", 5, "rows to print per ticker (0 prints none)")
}

func runPipelineOnce(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	p, _, cleanup, err := newPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	summary, records, err := p.RunWithRecords(ctx)
	if err != nil {
		return fmt.Errorf("run %s: %w", summary.RunID, err)
	}

	if runTail > 0 {
		if err := printTail(os.Stdout, records, runTail); err != nil {
			return err
		}
	}
	fmt.Printf("\n✓ run %s: %d/%d tickers, %d rows, %d skipped, %d undefined ratios (%s)\n",
		summary.RunID, len(summary.Processed), len(summary.Tickers), summary.Rows,
		len(summary.Skipped), summary.UndefinedRatios, summary.Duration().Round(time.Millisecond))
	for _, w := range summary.Skipped {
		fmt.Printf("  skipped %s: %s\n", w.Ticker, w.Reason)
	}
	return nil
}
