// Package main provides the dataset build entry point.
// Executes: load → clean → rolling features → rankings merge → save → exports
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"ufc-data-lab/internal/config"
	"ufc-data-lab/internal/observability"
	"ufc-data-lab/internal/orchestrator"
	"ufc-data-lab/internal/storage/clickhouse"
	"ufc-data-lab/internal/storage/migrations"
	"ufc-data-lab/internal/storage/postgres"
)

func main() {
	os.Exit(realMain())
}

// realMain returns the process exit code so deferred cleanup runs first.
func realMain() int {
	// Parse flags
	configPath := flag.String("config", "", "YAML config file (default $UFC_CONFIG)")
	output := flag.String("output", "", "Processed CSV path (overrides output_file)")
	window := flag.Int("window", 0, "Lookback window (overrides lookback_window)")
	split := flag.Bool("split", false, "Also write train/test split files")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (overrides postgres_dsn)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (overrides clickhouse_dsn)")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (empty to disable)")
	flag.Parse()

	// Create context with cancellation for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}
	applyFlags(cfg, *output, *window, *split, *postgresDSN, *clickhouseDSN)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		return 1
	}

	return exitCode(logger, run(ctx, cfg, logger, *metricsAddr))
}

// exitCode maps a run error to the process exit status.
func exitCode(logger logrus.FieldLogger, err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		logger.Warn("build cancelled")
		return 130
	default:
		logger.WithError(err).Error("build failed")
		return 1
	}
}

func applyFlags(cfg *config.Config, output string, window int, split bool, postgresDSN, clickhouseDSN string) {
	if output != "" {
		cfg.OutputFile = output
	}
	if window != 0 {
		cfg.LookbackWindow = window
	}
	if split {
		cfg.SplitEnabled = true
	}
	if postgresDSN != "" {
		cfg.PostgresDSN = postgresDSN
	}
	if clickhouseDSN != "" {
		cfg.ClickhouseDSN = clickhouseDSN
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger, metricsAddr string) error {
	metrics := observability.NewMetrics("")

	// Start metrics server if enabled
	if metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			logger.WithField("addr", metricsAddr).Info("starting metrics server")
			if err := http.ListenAndServe(metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Error("metrics server error")
			}
		}()
	}

	opts := orchestrator.Options{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics,
	}

	if cfg.PostgresDSN != "" {
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		applied, err := migrations.RunPostgresMigrations(ctx, pool)
		if err != nil {
			return fmt.Errorf("postgres migrations: %w", err)
		}
		logger.WithField("applied", applied).Info("postgres migrations applied")

		opts.ProcessedFightStore = postgres.NewProcessedFightStore(pool)
		opts.RunStore = postgres.NewRunStore(pool)
	}

	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			return fmt.Errorf("clickhouse migrations: %w", err)
		}
		defer func() { _ = conn.Close() }()
		logger.Info("clickhouse migrations applied")

		opts.FeatureStore = clickhouse.NewFeatureStore(conn)
	}

	result, err := orchestrator.New(opts).Run(ctx)
	if err != nil {
		return err
	}

	fields := logrus.Fields{
		"output":       result.Build.OutputPath,
		"rows_written": result.Build.RowsWritten,
		"sha256":       result.Build.OutputSHA256,
	}
	if result.SummaryPath != "" {
		fields["summary"] = result.SummaryPath
	}
	if result.Split != nil {
		fields["train"] = result.Split.TrainPath
		fields["test"] = result.Split.TestPath
	}
	logger.WithFields(fields).Info("dataset build completed")
	return nil
}
