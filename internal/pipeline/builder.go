// Package pipeline builds the processed fights dataset.
//
// A DatasetBuilder runs the stages in order:
//
//	Load -> Clean -> CleanRankings -> ComputeRollingFeatures -> MergeRankings -> Save
//
// Each stage keeps its output in memory for the next one. Build runs all of
// them with the configured paths and window.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"ufc-data-lab/internal/config"
	"ufc-data-lab/internal/domain"
	"ufc-data-lab/internal/ingestion"
	"ufc-data-lab/internal/lookup"
	"ufc-data-lab/internal/normalization"
	"ufc-data-lab/internal/observability"
	"ufc-data-lab/internal/reporting"
)

// ErrStageOrder is returned when a stage runs before its prerequisite.
var ErrStageOrder = errors.New("pipeline stage called out of order")

type stage int

const (
	stageNew stage = iota
	stageLoaded
	stageCleaned
	stageFeatures
	stageMerged
)

// Result summarizes a Build.
type Result struct {
	OutputPath     string
	OutputSHA256   string
	FightsLoaded   int
	FightsKept     int
	RankingsLoaded int
	RankingsKept   int
	RowsWritten    int
	Warnings       []domain.WarningCount
}

// DatasetBuilder runs the dataset build stages over in-memory tables.
// It is not safe for concurrent use.
type DatasetBuilder struct {
	cfg     *config.Config
	log     logrus.FieldLogger
	metrics *observability.Metrics // optional

	stage           stage
	rankingsCleaned bool

	fightsInput *ingestion.FightsInput
	rankingsRaw *ingestion.RawTable

	fights   *domain.FightTable
	rankings []*domain.RankingRecord
	records  []*domain.ProcessedRecord

	fightWarnings   []domain.ValidationWarning
	rankingWarnings []domain.ValidationWarning

	outputSHA256 string
}

// NewDatasetBuilder creates a builder for cfg.
func NewDatasetBuilder(cfg *config.Config, log logrus.FieldLogger) *DatasetBuilder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &DatasetBuilder{
		cfg: cfg,
		log: log.WithField("component", "dataset_builder"),
	}
}

// WithMetrics records row counts, warnings and stage durations on m.
func (b *DatasetBuilder) WithMetrics(m *observability.Metrics) *DatasetBuilder {
	b.metrics = m
	return b
}

// Load reads the fights and rankings CSVs at the configured paths and checks
// their schemas. A successful Load resets every later stage.
func (b *DatasetBuilder) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer b.observe("load", time.Now())

	fightsPath := b.cfg.FightsPath()
	fightsInput, err := ingestion.LoadFights(fightsPath, b.cfg.RelevantStats)
	if err != nil {
		return fmt.Errorf("load fights: %w", err)
	}
	if err := ingestion.CheckConflicts(fightsInput.Table, reporting.DerivedColumns(b.cfg.RelevantStats)); err != nil {
		return fmt.Errorf("load fights: %w", err)
	}

	rankingsPath := b.cfg.RankingsPath()
	rankingsRaw, err := ingestion.LoadRankings(rankingsPath)
	if err != nil {
		return fmt.Errorf("load rankings: %w", err)
	}

	*b = DatasetBuilder{cfg: b.cfg, log: b.log, metrics: b.metrics}
	b.fightsInput = fightsInput
	b.rankingsRaw = rankingsRaw
	b.stage = stageLoaded

	b.log.WithFields(logrus.Fields{
		"fights_path":   fightsPath,
		"fights_rows":   fightsInput.Table.Len(),
		"rankings_path": rankingsPath,
		"rankings_rows": rankingsRaw.Len(),
	}).Info("loaded raw tables")
	return nil
}

// Clean validates the loaded fights. The raw table is left untouched.
func (b *DatasetBuilder) Clean() (*domain.FightTable, error) {
	if b.stage < stageLoaded {
		return nil, fmt.Errorf("%w: clean requires load", ErrStageOrder)
	}
	defer b.observe("clean", time.Now())

	table, warnings := normalization.CleanFights(b.fightsInput)
	b.fights = table
	b.fightWarnings = warnings
	b.records = nil
	b.stage = stageCleaned

	loaded := b.fightsInput.Table.Len()
	b.log.WithFields(warningFields(warnings, loaded, table.Len())).Info("cleaned fights")
	if b.metrics != nil {
		b.metrics.RecordLoaded(domain.StageFights, loaded, table.Len())
		b.metrics.RecordWarnings(warnings)
	}
	return table, nil
}

// CleanRankings validates the loaded rankings.
func (b *DatasetBuilder) CleanRankings() ([]*domain.RankingRecord, error) {
	if b.stage < stageLoaded {
		return nil, fmt.Errorf("%w: clean rankings requires load", ErrStageOrder)
	}
	defer b.observe("clean_rankings", time.Now())

	rankings, warnings := normalization.CleanRankings(b.rankingsRaw)
	b.rankings = rankings
	b.rankingWarnings = warnings
	b.rankingsCleaned = true

	loaded := b.rankingsRaw.Len()
	b.log.WithFields(warningFields(warnings, loaded, len(rankings))).Info("cleaned rankings")
	if b.metrics != nil {
		b.metrics.RecordLoaded(domain.StageRankings, loaded, len(rankings))
		b.metrics.RecordWarnings(warnings)
	}
	return rankings, nil
}

// ComputeRollingFeatures derives each fighter's rolling averages over the
// last window fights strictly before each bout.
func (b *DatasetBuilder) ComputeRollingFeatures(window int) ([]*domain.ProcessedRecord, error) {
	if b.stage < stageCleaned {
		return nil, fmt.Errorf("%w: rolling features require clean", ErrStageOrder)
	}
	defer b.observe("rolling_features", time.Now())

	records, err := normalization.ComputeRollingFeatures(b.fights.Fights, len(b.cfg.RelevantStats), window)
	if err != nil {
		return nil, fmt.Errorf("compute rolling features: %w", err)
	}
	b.records = records
	b.stage = stageFeatures

	b.log.WithFields(logrus.Fields{
		"window": window,
		"rows":   len(records),
		"stats":  len(b.cfg.RelevantStats),
	}).Info("computed rolling features")
	return records, nil
}

// MergeRankings attaches to every fight each fighter's latest rank in the
// fight's weight class as of the fight date. The row count is unchanged.
func (b *DatasetBuilder) MergeRankings(rankings []*domain.RankingRecord) ([]*domain.ProcessedRecord, error) {
	if b.stage < stageFeatures {
		return nil, fmt.Errorf("%w: merge rankings requires rolling features", ErrStageOrder)
	}
	defer b.observe("merge_rankings", time.Now())

	idx := lookup.NewRankIndex(rankings)
	merged := lookup.MergeRankings(b.records, idx)

	matched := 0
	for _, rec := range merged {
		if rec.RankA != nil {
			matched++
		}
		if rec.RankB != nil {
			matched++
		}
	}

	b.records = merged
	b.stage = stageMerged

	b.log.WithFields(logrus.Fields{
		"rankings":      idx.Len(),
		"rows":          len(merged),
		"ranks_matched": matched,
	}).Info("merged rankings")
	return merged, nil
}

// Save writes the processed table to path through a temp file and an atomic
// rename. Identical in-memory data always produces identical bytes.
func (b *DatasetBuilder) Save(path string) error {
	if b.stage < stageFeatures {
		return fmt.Errorf("%w: save requires rolling features", ErrStageOrder)
	}
	defer b.observe("save", time.Now())

	data, err := reporting.RenderProcessedCSV(b.fights.Columns, b.cfg.RelevantStats, b.records, b.cfg.MissingValue)
	if err != nil {
		return fmt.Errorf("render processed csv: %w", err)
	}
	if err := reporting.WriteFileAtomic(path, data); err != nil {
		return err
	}

	sum := sha256.Sum256(data)
	b.outputSHA256 = hex.EncodeToString(sum[:])

	b.log.WithFields(logrus.Fields{
		"path":   path,
		"rows":   len(b.records),
		"sha256": b.outputSHA256,
	}).Info("saved processed dataset")
	if b.metrics != nil {
		b.metrics.RowsWritten.Add(float64(len(b.records)))
	}
	return nil
}

// Build runs every stage with the configured paths and lookback window.
func (b *DatasetBuilder) Build(ctx context.Context) (*Result, error) {
	if err := b.Load(ctx); err != nil {
		return nil, err
	}
	if _, err := b.Clean(); err != nil {
		return nil, err
	}
	rankings, err := b.CleanRankings()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := b.ComputeRollingFeatures(b.cfg.LookbackWindow); err != nil {
		return nil, err
	}
	if _, err := b.MergeRankings(rankings); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := b.cfg.OutputPath()
	if err := b.Save(out); err != nil {
		return nil, err
	}

	return &Result{
		OutputPath:     out,
		OutputSHA256:   b.outputSHA256,
		FightsLoaded:   b.fightsInput.Table.Len(),
		FightsKept:     b.fights.Len(),
		RankingsLoaded: b.rankingsRaw.Len(),
		RankingsKept:   len(b.rankings),
		RowsWritten:    len(b.records),
		Warnings:       b.Summary(),
	}, nil
}

// Warnings returns every collected warning, fights first, in row order.
func (b *DatasetBuilder) Warnings() []domain.ValidationWarning {
	out := make([]domain.ValidationWarning, 0, len(b.fightWarnings)+len(b.rankingWarnings))
	out = append(out, b.fightWarnings...)
	return append(out, b.rankingWarnings...)
}

// Summary counts the collected warnings by table and kind.
func (b *DatasetBuilder) Summary() []domain.WarningCount {
	return domain.SummarizeWarnings(b.Warnings())
}

// Records returns the processed records of the latest feature or merge stage.
func (b *DatasetBuilder) Records() []*domain.ProcessedRecord {
	return b.records
}

// Columns returns the original fights header.
func (b *DatasetBuilder) Columns() []string {
	if b.fights == nil {
		return nil
	}
	return b.fights.Columns
}

// Header returns the processed output header.
func (b *DatasetBuilder) Header() []string {
	return reporting.ProcessedHeader(b.Columns(), b.cfg.RelevantStats)
}

// Rankings returns the cleaned rankings, nil before CleanRankings.
func (b *DatasetBuilder) Rankings() []*domain.RankingRecord {
	if !b.rankingsCleaned {
		return nil
	}
	return b.rankings
}

// Config returns the builder configuration.
func (b *DatasetBuilder) Config() *config.Config {
	return b.cfg
}

func (b *DatasetBuilder) observe(stage string, start time.Time) {
	if b.metrics != nil {
		b.metrics.RecordStage(stage, time.Since(start))
	}
}

// warningFields logs dropped rows and the per-kind breakdown of warnings.
func warningFields(warnings []domain.ValidationWarning, loaded, kept int) logrus.Fields {
	fields := logrus.Fields{
		"loaded":   loaded,
		"kept":     kept,
		"dropped":  loaded - kept,
		"warnings": len(warnings),
	}
	for _, c := range domain.SummarizeWarnings(warnings) {
		fields[string(c.Kind)] = c.Count
	}
	return fields
}
