package verification

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"ufc-data-lab/internal/config"
	"ufc-data-lab/internal/domain"
	"ufc-data-lab/internal/pipeline"
)

// BuilderFactory creates a builder for cfg.
type BuilderFactory func(cfg *config.Config) *pipeline.DatasetBuilder

// IdempotencyResult compares an existing output with a fresh rebuild.
type IdempotencyResult struct {
	OutputPath     string
	ExistingSHA256 string
	RebuiltSHA256  string
	Match          bool

	// Rebuilt rows and rankings, for VerifyRecords.
	Records  []*domain.ProcessedRecord
	Rankings []*domain.RankingRecord
}

// VerifyIdempotent rebuilds the dataset described by cfg into a temporary
// directory and compares its sha256 with the file at outputPath.
// The temporary directory is removed before returning.
func VerifyIdempotent(ctx context.Context, cfg *config.Config, factory BuilderFactory, outputPath string) (*IdempotencyResult, error) {
	existing, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("read existing output: %w", err)
	}

	dir, err := os.MkdirTemp("", "ufc-verify-*")
	if err != nil {
		return nil, fmt.Errorf("create rebuild dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	rebuildCfg := *cfg
	rebuildCfg.RelevantStats = append([]string(nil), cfg.RelevantStats...)
	rebuildCfg.ProcessedDataDir = dir
	rebuildCfg.OutputFile = filepath.Base(outputPath)

	builder := factory(&rebuildCfg)
	result, err := builder.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("rebuild: %w", err)
	}

	sum := sha256.Sum256(existing)
	existingSHA := hex.EncodeToString(sum[:])

	return &IdempotencyResult{
		OutputPath:     outputPath,
		ExistingSHA256: existingSHA,
		RebuiltSHA256:  result.OutputSHA256,
		Match:          existingSHA == result.OutputSHA256,
		Records:        builder.Records(),
		Rankings:       builder.Rankings(),
	}, nil
}
