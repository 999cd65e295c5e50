// Package storage defines the export sinks of the dataset build.
package storage

import (
	"context"

	"ufc-data-lab/internal/domain"
)

// ProcessedFightStore provides access to processed_fights storage.
type ProcessedFightStore interface {
	// UpsertBulk inserts or replaces fights by fight_id atomically.
	UpsertBulk(ctx context.Context, fights []*domain.ProcessedFight) error

	// GetByID retrieves a fight by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, fightID string) (*domain.ProcessedFight, error)

	// GetAll retrieves all fights, ordered by fight_date ASC, fight_id ASC.
	GetAll(ctx context.Context) ([]*domain.ProcessedFight, error)
}

// FeatureStore provides access to fighter_rolling_features storage.
// Rows are keyed by (fighter_id, stat, window, fight_id); re-inserting a key
// replaces the row.
type FeatureStore interface {
	// InsertBulk adds multiple points.
	InsertBulk(ctx context.Context, points []*domain.FighterFeaturePoint) error

	// GetByFighter retrieves a fighter's points, ordered by fight_date ASC, stat ASC.
	GetByFighter(ctx context.Context, fighterID string) ([]*domain.FighterFeaturePoint, error)
}

// RunStore provides access to pipeline_runs storage.
type RunStore interface {
	// Insert adds a run. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, run *domain.PipelineRun) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.PipelineRun, error)
}

// ValidateFight checks the fields every stored fight must carry.
func ValidateFight(f *domain.ProcessedFight) error {
	if f == nil || f.FightID == "" || f.FighterA == "" || f.FighterB == "" || f.FightDate.IsZero() {
		return ErrInvalidInput
	}
	if len(f.RollingA) != len(f.Stats) || len(f.RollingB) != len(f.Stats) {
		return ErrInvalidInput
	}
	return nil
}

// ValidateFeaturePoint checks the fields every stored point must carry.
func ValidateFeaturePoint(p *domain.FighterFeaturePoint) error {
	if p == nil || p.FightID == "" || p.FighterID == "" || p.Stat == "" || p.Window < 1 {
		return ErrInvalidInput
	}
	return nil
}
