// Package main verifies an existing processed dataset.
// It rebuilds the dataset to compare hashes, then rereads the existing file and
// recomputes its features from the rows it stores.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"ufc-data-lab/internal/config"
	"ufc-data-lab/internal/observability"
	"ufc-data-lab/internal/pipeline"
	"ufc-data-lab/internal/verification"
)

func main() {
	os.Exit(realMain())
}

// realMain returns the process exit code so deferred cleanup runs first.
func realMain() int {
	configPath := flag.String("config", "", "YAML config file (default $UFC_CONFIG)")
	output := flag.String("output", "", "Processed CSV to verify (default from config)")
	maxReported := flag.Int("max-reported", 20, "Maximum divergences to log")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}
	logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		return 1
	}

	path := cfg.OutputPath()
	if *output != "" {
		path = *output
	}

	ok, err := verify(ctx, cfg, logger, path, *maxReported)
	return exitCode(logger, ok, err)
}

// exitCode is 1 when verification could not run and 2 on any divergence.
func exitCode(logger logrus.FieldLogger, ok bool, err error) int {
	switch {
	case err != nil:
		logger.WithError(err).Error("verification failed")
		return 1
	case !ok:
		return 2
	default:
		return 0
	}
}

func verify(ctx context.Context, cfg *config.Config, logger *logrus.Logger, path string, maxReported int) (bool, error) {
	// Rebuild quietly; only the verdict matters here.
	quiet := logrus.New()
	quiet.SetOutput(logger.Out)
	quiet.SetLevel(logrus.WarnLevel)
	factory := func(c *config.Config) *pipeline.DatasetBuilder {
		return pipeline.NewDatasetBuilder(c, quiet)
	}

	idem, err := verification.VerifyIdempotent(ctx, cfg, factory, path)
	if err != nil {
		return false, err
	}
	log := logger.WithFields(logrus.Fields{
		"output":         path,
		"existing_sha":   idem.ExistingSHA256,
		"rebuilt_sha":    idem.RebuiltSHA256,
		"hashes_matched": idem.Match,
	})
	if idem.Match {
		log.Info("rebuild is byte-identical")
	} else {
		log.Error("rebuild differs from existing output")
	}

	stored, err := verification.LoadProcessedCSV(path, cfg.RelevantStats, cfg.MissingValue)
	if err != nil {
		return false, fmt.Errorf("load existing output: %w", err)
	}
	report := verification.VerifyRecords(stored, idem.Rankings, cfg.RelevantStats, cfg.LookbackWindow)
	reported := 0
	for _, r := range report.Results {
		for _, d := range r.Divergences {
			if reported >= maxReported {
				break
			}
			logger.WithFields(logrus.Fields{
				"row":      r.Row,
				"fight_id": r.FightID,
				"field":    d.Field,
				"expected": d.Expected,
				"actual":   d.Actual,
			}).Error("divergence")
			reported++
		}
	}
	logger.WithFields(logrus.Fields{
		"records":   report.TotalRecords,
		"matched":   report.MatchedRecords,
		"divergent": report.DivergentRecords,
	}).Info("feature recomputation finished")

	return idem.Match && report.OK(), nil
}
