package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"RiskEngine/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the pipeline on a schedule",
	Long: `Start the cron scheduler and, when Telegram is configured, listen for
chat commands (/run, /status, /latest, /chart). Stops on SIGINT or SIGTERM.

Examples:
  riskengine serve
  riskengine serve --run-now`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveRunNow bool

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveRunNow, "run-now", os.Getenv("RUN_ON_START") == "true", "run the pipeline once at startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	p, repo, cleanup, err := newPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	n, tn := newNotifier(cfg, log)
	sched := scheduler.NewScheduler(ctx, p, repo, n, log)
	if err := sched.RegisterAll(cfg.Schedule.Cron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
	}
	if serveRunNow {
		log.Info().Msg("run-now enabled, executing pipeline")
		go func(ctx context.Context) { _, _ = sched.RunNow(ctx) }(ctx)
	}

	log.Info().Msg("RiskEngine is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping")
	return nil
}
