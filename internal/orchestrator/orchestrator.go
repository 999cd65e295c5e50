// Package orchestrator provides end-to-end build orchestration.
// It coordinates: dataset build → split → summary → exports → run record
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ufc-data-lab/internal/config"
	"ufc-data-lab/internal/domain"
	"ufc-data-lab/internal/normalization"
	"ufc-data-lab/internal/observability"
	"ufc-data-lab/internal/pipeline"
	"ufc-data-lab/internal/reporting"
	"ufc-data-lab/internal/storage"
)

// SummaryFile is the summary Markdown name inside the processed directory.
const SummaryFile = "build_summary.md"

// Sink labels on the records_exported_total metric.
const (
	SinkProcessedFights = "processed_fights"
	SinkFeatures        = "fighter_rolling_features"
)

// ErrNoConfig is returned by Run when Options.Config is nil.
var ErrNoConfig = errors.New("orchestrator: config is required")

// Options for creating Orchestrator.
type Options struct {
	Config  *config.Config
	Logger  logrus.FieldLogger
	Metrics *observability.Metrics

	// Optional export sinks; nil disables the export.
	ProcessedFightStore storage.ProcessedFightStore
	FeatureStore        storage.FeatureStore
	RunStore            storage.RunStore

	// Clock stamps run records and the summary. Defaults to time.Now.
	Clock func() time.Time
}

// Orchestrator coordinates one dataset build and its exports.
type Orchestrator struct {
	cfg     *config.Config
	log     logrus.FieldLogger
	metrics *observability.Metrics

	fightStore   storage.ProcessedFightStore
	featureStore storage.FeatureStore
	runStore     storage.RunStore

	clock func() time.Time
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.NewMetrics("")
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Orchestrator{
		cfg:          opts.Config,
		log:          log.WithField("component", "orchestrator"),
		metrics:      metrics,
		fightStore:   opts.ProcessedFightStore,
		featureStore: opts.FeatureStore,
		runStore:     opts.RunStore,
		clock:        clock,
	}
}

// Metrics returns the metrics the orchestrator records on.
func (o *Orchestrator) Metrics() *observability.Metrics {
	return o.metrics
}

// RunResult contains results from orchestrator execution.
type RunResult struct {
	RunID            string
	Build            *pipeline.Result
	Split            *reporting.SplitSummary // nil when the split is disabled
	SummaryPath      string                  // empty when the summary is disabled
	FightsExported   int
	FeaturesExported int
	StartedAt        time.Time
	FinishedAt       time.Time
}

// Run executes the full build.
// Phases:
//  1. Build the processed CSV
//  2. Write the train/test split
//  3. Write the summary Markdown
//  4. Export processed fights and feature points
//  5. Record the run
//
// The processed CSV is saved before any export starts, so an export failure
// leaves the CSV in place.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	if o.cfg == nil {
		return nil, ErrNoConfig
	}

	result := &RunResult{
		RunID:     uuid.NewString(),
		StartedAt: o.clock().UTC(),
	}
	log := o.log.WithField("run_id", result.RunID)

	err := o.run(ctx, log, result)
	result.FinishedAt = o.clock().UTC()
	o.metrics.RecordRun(err == nil, result.FinishedAt)

	if o.cfg.MetricsFile != "" {
		if mErr := o.metrics.WriteTextfile(o.cfg.MetricsFile); mErr != nil {
			log.WithError(mErr).Warn("failed to write metrics textfile")
		}
	}

	if err != nil {
		log.WithError(err).Error("run failed")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"rows_written":      result.Build.RowsWritten,
		"fights_exported":   result.FightsExported,
		"features_exported": result.FeaturesExported,
		"sha256":            result.Build.OutputSHA256,
	}).Info("run completed")
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, log logrus.FieldLogger, result *RunResult) error {
	// Phase 1: Build
	log.Info("phase 1: building processed dataset")
	builder := pipeline.NewDatasetBuilder(o.cfg, log).WithMetrics(o.metrics)
	build, err := builder.Build(ctx)
	if err != nil {
		return fmt.Errorf("phase 1 (build) failed: %w", err)
	}
	result.Build = build
	records := builder.Records()

	// Phase 2: Split
	if o.cfg.SplitEnabled {
		log.Info("phase 2: writing train/test split")
		split, err := builder.SaveSplit(build.OutputPath)
		if err != nil {
			return fmt.Errorf("phase 2 (split) failed: %w", err)
		}
		result.Split = split
	}

	// Phase 3: Summary
	if o.cfg.SummaryEnabled {
		log.Info("phase 3: writing build summary")
		path, err := o.writeSummary(result, records)
		if err != nil {
			return fmt.Errorf("phase 3 (summary) failed: %w", err)
		}
		result.SummaryPath = path
	}

	// Phase 4: Exports
	if o.fightStore != nil {
		log.Info("phase 4: exporting processed fights")
		n, err := o.exportFights(ctx, records, result.RunID)
		if err != nil {
			return fmt.Errorf("phase 4 (export fights) failed: %w", err)
		}
		result.FightsExported = n
	}
	if o.featureStore != nil {
		log.Info("phase 4: exporting rolling features")
		n, err := o.exportFeatures(ctx, records)
		if err != nil {
			return fmt.Errorf("phase 4 (export features) failed: %w", err)
		}
		result.FeaturesExported = n
	}

	// Phase 5: Run record
	if o.runStore != nil {
		run := &domain.PipelineRun{
			RunID:          result.RunID,
			StartedAt:      result.StartedAt,
			FinishedAt:     o.clock().UTC(),
			FightsLoaded:   build.FightsLoaded,
			FightsKept:     build.FightsKept,
			RankingsLoaded: build.RankingsLoaded,
			RankingsKept:   build.RankingsKept,
			RowsWritten:    build.RowsWritten,
			WarningCount:   len(builder.Warnings()),
			LookbackWindow: o.cfg.LookbackWindow,
			OutputPath:     build.OutputPath,
			OutputSHA256:   build.OutputSHA256,
		}
		if err := o.runStore.Insert(ctx, run); err != nil {
			return fmt.Errorf("phase 5 (record run) failed: %w", err)
		}
	}
	return nil
}

func (o *Orchestrator) writeSummary(result *RunResult, records []*domain.ProcessedRecord) (string, error) {
	build := result.Build
	summary := &reporting.BuildSummary{
		GeneratedAt:    o.clock(),
		RunID:          result.RunID,
		FightsPath:     o.cfg.FightsPath(),
		RankingsPath:   o.cfg.RankingsPath(),
		OutputPath:     build.OutputPath,
		OutputSHA256:   build.OutputSHA256,
		FightsLoaded:   build.FightsLoaded,
		FightsKept:     build.FightsKept,
		RankingsLoaded: build.RankingsLoaded,
		RankingsKept:   build.RankingsKept,
		RowsWritten:    build.RowsWritten,
		LookbackWindow: o.cfg.LookbackWindow,
		Stats:          o.cfg.RelevantStats,
		Warnings:       build.Warnings,
		Split:          result.Split,
	}
	if len(records) > 0 {
		// records are ordered by date
		summary.FirstFight = records[0].Fight.Date
		summary.LastFight = records[len(records)-1].Fight.Date
	}

	path := filepath.Join(o.cfg.ProcessedDataDir, SummaryFile)
	if err := reporting.WriteFileAtomic(path, []byte(reporting.RenderSummaryMarkdown(summary))); err != nil {
		return "", err
	}
	return path, nil
}

func (o *Orchestrator) exportFights(ctx context.Context, records []*domain.ProcessedRecord, runID string) (int, error) {
	fights := make([]*domain.ProcessedFight, 0, len(records))
	for _, rec := range records {
		fights = append(fights, domain.NewProcessedFight(rec, o.cfg.RelevantStats, runID))
	}
	if len(fights) == 0 {
		return 0, nil
	}
	if err := o.fightStore.UpsertBulk(ctx, fights); err != nil {
		return 0, err
	}
	o.metrics.RecordsExported.WithLabelValues(SinkProcessedFights).Add(float64(len(fights)))
	return len(fights), nil
}

func (o *Orchestrator) exportFeatures(ctx context.Context, records []*domain.ProcessedRecord) (int, error) {
	points := normalization.FeaturePoints(records, o.cfg.RelevantStats, o.cfg.LookbackWindow)
	if len(points) == 0 {
		return 0, nil
	}
	if err := o.featureStore.InsertBulk(ctx, points); err != nil {
		return 0, err
	}
	o.metrics.RecordsExported.WithLabelValues(SinkFeatures).Add(float64(len(points)))
	return len(points), nil
}
