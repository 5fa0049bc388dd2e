package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"wingspan/pkg/cli"
	"wingspan/pkg/config"
)

var scheduleFlags struct {
	cronExpr string
	logLevel string
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run a pipeline repeatedly on a cron schedule",
	Long: `Re-run a pipeline configuration on a cron schedule until interrupted.
Each firing reloads the config file, so edits take effect on the next run.

Examples:
  # Run every 6 hours
  wingspan schedule --cron "0 */6 * * *"

  # Run daily at 3 AM
  wingspan schedule --cron "0 3 * * *"`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringVar(&scheduleFlags.cronExpr, "cron", "", "cron expression for scheduled runs (required)")
	scheduleCmd.Flags().StringVar(&scheduleFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	scheduleCmd.MarkFlagRequired("cron")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError(cfgFile, fmt.Sprintf("failed to load pipeline config: %v", err))
	}

	if scheduleFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = scheduleFlags.logLevel
	}
	appLogger, shutdownLogger, err := newRunLogger(cfg.Telemetry.Logging)
	if err != nil {
		return cli.NewConfigError(cfgFile, fmt.Sprintf("failed to initialize logging: %v", err))
	}
	defer shutdownLogger()
	logger := appLogger.Slog()
	slog.SetDefault(logger)

	ctx := cli.SetupSignalHandler()

	sched := newPipelineScheduler(scheduleFlags.cronExpr, logger)
	if err := sched.Start(ctx); err != nil {
		return cli.NewCommandError("schedule", err)
	}

	if next := sched.NextRun(); next != nil {
		fmt.Printf("Scheduler running. Next execution: %s\n", next.Format("2006-01-02 15:04:05"))
	}
	fmt.Println("Press Ctrl+C to stop.")

	<-ctx.Done()
	sched.Stop()
	return nil
}
