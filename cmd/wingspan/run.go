package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"wingspan/pkg/cli"
	"wingspan/pkg/config"
	"wingspan/pkg/correlation"
	"wingspan/pkg/correlation/engine"
	"wingspan/pkg/correlation/runtime"
	"wingspan/pkg/correlation/selector"
	"wingspan/pkg/correlation/storage"
	"wingspan/pkg/feather"
	"wingspan/pkg/identity"
	"wingspan/pkg/scoring"
	"wingspan/pkg/semantic"
	"wingspan/pkg/telemetry/health"
	"wingspan/pkg/telemetry/logging"
	"wingspan/pkg/telemetry/tracing"
	"wingspan/pkg/timeparse"
)

var runFlags struct {
	timeout      time.Duration
	logLevel     string
	dryRun       bool
	scanInterval time.Duration
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a correlation pipeline once",
	Long: `Load a pipeline configuration, select the configured correlation engine,
execute every wing, and write matches to the results database.

Examples:
  # Run with default config path
  wingspan run

  # Run with a custom config file
  wingspan run --config /path/to/pipeline.yaml

  # Bound wall-clock execution time
  wingspan run --timeout 10m`,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().DurationVar(&runFlags.timeout, "timeout", 0, "wall-clock execution timeout (0 disables)")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without executing")
	runCmd.Flags().DurationVar(&runFlags.scanInterval, "scan-interval", 0, "TWSE scan interval override (0 uses each wing's time_window)")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError(cfgFile, fmt.Sprintf("failed to load pipeline config: %v", err))
	}

	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	appLogger, shutdownLogger, err := newRunLogger(cfg.Telemetry.Logging)
	if err != nil {
		return cli.NewConfigError(cfgFile, fmt.Sprintf("failed to initialize logging: %v", err))
	}
	defer shutdownLogger()
	logger := appLogger.Slog()
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return cli.NewConfigError(cfgFile, fmt.Sprintf("failed to initialize tracing: %v", err))
	}
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	ctx := context.Background()
	var cancel context.CancelFunc
	if runFlags.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, runFlags.timeout)
		defer cancel()
	}

	ctx, runSpan := tracer.Start(ctx, "wingspan.pipeline.run")
	tracing.SetPipelineAttributes(runSpan, cfg.PipelineName, "", cfg.EngineType)
	defer runSpan.End()

	result, err := executePipeline(ctx, cfg, logger)
	if err != nil {
		tracing.SetErrorAttributes(runSpan, err, "pipeline_execution")
		return cli.NewCommandError("run", err)
	}

	tracing.SetPipelineAttributes(runSpan, cfg.PipelineName, result.executionID, cfg.EngineType)

	printRunSummary(result)
	return nil
}

// checkReadiness runs a best-effort readiness pass over the feather
// databases and the results store before executing any wing, logging a
// warning (but not aborting) for any component that fails.
func checkReadiness(ctx context.Context, cfg *config.Config, resultsDBPath string, logger *slog.Logger) {
	checker := health.New(5 * time.Second)

	checker.RegisterCheck("feathers", func(ctx context.Context) error {
		if len(cfg.Feathers) == 0 {
			return errors.New("no feathers configured")
		}
		for _, fc := range cfg.Feathers {
			if _, err := os.Stat(fc.DatabasePath); err != nil {
				return fmt.Errorf("feather %s: %w", fc.FeatherID, err)
			}
		}
		return nil
	})

	checker.RegisterCheck("results_store", func(ctx context.Context) error {
		if _, err := os.Stat(resultsDBPath); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	})

	status := checker.CheckReadiness(ctx)
	for name, result := range status.Checks {
		if result.Status != "ok" {
			logger.Warn("readiness check failed", "component", name, "message", result.Message)
		}
	}
}

// pipelineRun summarizes one executePipeline call.
type pipelineRun struct {
	executionID  string
	results      []*correlation.CorrelationResult
	totalMatches int
	wasCancelled bool
}

// executePipeline binds cfg into engine.Options, selects the configured
// engine, and runs every wing, opening a results writer and recording the
// execution.
func executePipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipelineRun, error) {
	feathers := make(map[string]feather.FeatherRef, len(cfg.Feathers))
	for _, fc := range cfg.Feathers {
		feathers[fc.FeatherID] = fc.ToFeatherRef()
	}

	wings := make([]*correlation.Wing, 0, len(cfg.Wings))
	for _, wc := range cfg.Wings {
		wings = append(wings, wc.ToWing())
	}

	dbPath := cfg.Output.ResultsDBPath
	if dbPath == "" {
		dbPath = "data/results.db"
	}

	checkReadiness(ctx, cfg, dbPath, logger)

	writer, err := storage.NewSQLiteWriter(&storage.SQLiteConfig{
		Path:         dbPath,
		MaxOpenConns: 4,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("opening results database: %w", err)
	}
	defer writer.Close()

	executionID, err := writer.OpenExecution(cfg.PipelineName, cfg.EngineType, len(wings))
	if err != nil {
		return nil, fmt.Errorf("opening execution: %w", err)
	}

	var scoringCfg *scoring.Config
	if cfg.Scoring.ConfigPath != "" {
		scoringCfg, err = scoring.LoadConfig(cfg.Scoring.ConfigPath)
		if err != nil {
			logger.Warn("scoring configuration unavailable, falling back to match-count ratio", "error", err)
			scoringCfg = nil
		}
	} else {
		scoringCfg = scoring.DefaultConfig()
	}

	var semanticMapper *semantic.Mapper
	if cfg.Semantic.Enabled {
		catalog, err := semantic.LoadCatalog(semantic.CatalogSources{PipelinePath: cfg.Semantic.RulesPath})
		if err != nil {
			logger.Warn("semantic catalog unavailable, disabling semantic annotation", "error", err)
			catalog = nil
		}
		semanticMapper = semantic.NewMapper(catalog, logger)
	}

	var memBudget *runtime.MemoryBudget
	if cfg.Memory.SoftLimitMB > 0 {
		memBudget = runtime.NewMemoryBudget(cfg.Memory.SoftLimitMB * 1024 * 1024)
	}

	progress := runtime.NewPublisher(64)
	defer progress.Close()
	cancelToken := runtime.NewCancelToken()
	go func() {
		<-ctx.Done()
		cancelToken.RequestCancel()
	}()

	opts := &engine.Options{
		PipelineName:         cfg.PipelineName,
		ExecutionID:          executionID,
		Feathers:             feathers,
		Filters:              cfg.Filters.ToFilterConfig(),
		IdentityRegistry:     identity.NewRegistry(),
		Parser:               timeparse.NewParser(),
		ScoringConfig:        scoringCfg,
		Semantic:             semanticMapper,
		Writer:               writer,
		StreamingForceEnable: cfg.Streaming.ForceEnable,
		StreamingThreshold:   cfg.Streaming.Threshold,
		MaxWorkers:           cfg.Parallelism.MaxWorkers,
		MemoryBudget:         memBudget,
		SpillDir:             cfg.Memory.SpillDir,
		MaxTimeRange:         cfg.MaxTimeRangeYears,
		Progress:             progress,
		Cancel:               cancelToken,
		Logger:               logger,
	}

	eng, err := selector.Select(cfg.EngineType, opts, runFlags.scanInterval)
	if err != nil {
		return nil, fmt.Errorf("selecting engine: %w", err)
	}

	results, err := eng.Execute(ctx, wings)
	if err != nil {
		return nil, fmt.Errorf("executing pipeline: %w", err)
	}

	stats := eng.GetStatistics()
	if err := writer.FinalizeExecution(executionID, stats.TotalMatches, stats.WasCancelled); err != nil {
		logger.Error("failed to finalize execution", "error", err)
	}

	return &pipelineRun{
		executionID:  executionID,
		results:      results,
		totalMatches: stats.TotalMatches,
		wasCancelled: stats.WasCancelled,
	}, nil
}

func printRunSummary(run *pipelineRun) {
	fmt.Printf("Execution %s\n", run.executionID)
	for _, r := range run.results {
		fmt.Printf("  wing %s: %d matches, %d records scanned", r.WingID, r.TotalMatches, r.TotalRecordsScanned)
		if r.StreamingMode {
			fmt.Print(" (streamed)")
		}
		if r.WasCancelled {
			fmt.Print(" (cancelled)")
		}
		fmt.Println()
		for _, w := range r.Warnings {
			fmt.Printf("    warning: %s\n", w)
		}
		for _, e := range r.Errors {
			fmt.Printf("    error: %s\n", e)
		}
	}
	fmt.Printf("Total matches: %d\n", run.totalMatches)
	if run.wasCancelled {
		fmt.Println("Execution was cancelled before completing.")
	}
}

// newRunLogger builds the pipeline's structured logger through
// pkg/telemetry/logging, so PII redaction and the configured output format
// apply uniformly rather than falling back to a bare slog handler. The
// returned shutdown func stops the logger's buffer goroutine; log writes are
// synchronous, so no output waits on it.
func newRunLogger(cfg config.LoggingConfig) (*logging.Logger, func(), error) {
	lg, err := logging.New(logging.Config{
		Level:          cfg.Level,
		Format:         cfg.Format,
		AddSource:      cfg.AddSource,
		RedactPII:      cfg.RedactPII,
		BufferSize:     cfg.BufferSize,
		RedactPatterns: cfg.RedactPatterns,
		Writer:         os.Stdout,
	})
	if err != nil {
		return nil, nil, err
	}
	return lg, func() { _ = lg.Shutdown() }, nil
}
