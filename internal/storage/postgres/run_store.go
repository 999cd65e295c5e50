package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"ufc-data-lab/internal/domain"
	"ufc-data-lab/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

// Insert adds a run. Returns ErrDuplicateKey if run_id exists and
// ErrInvalidInput if run_id is not a UUID.
func (s *RunStore) Insert(ctx context.Context, run *domain.PipelineRun) error {
	if run == nil {
		return storage.ErrInvalidInput
	}
	if _, err := uuid.Parse(run.RunID); err != nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO pipeline_runs (
			run_id, started_at, finished_at,
			fights_loaded, fights_kept, rankings_loaded, rankings_kept,
			rows_written, warning_count, lookback_window, output_path, output_sha256
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.pool.Exec(ctx, query,
		run.RunID,
		run.StartedAt,
		run.FinishedAt,
		run.FightsLoaded,
		run.FightsKept,
		run.RankingsLoaded,
		run.RankingsKept,
		run.RowsWritten,
		run.WarningCount,
		run.LookbackWindow,
		run.OutputPath,
		run.OutputSHA256,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert pipeline run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.PipelineRun, error) {
	query := `
		SELECT run_id, started_at, finished_at,
			fights_loaded, fights_kept, rankings_loaded, rankings_kept,
			rows_written, warning_count, lookback_window, output_path, output_sha256
		FROM pipeline_runs
		WHERE run_id = $1
	`

	var run domain.PipelineRun
	err := s.pool.QueryRow(ctx, query, runID).Scan(
		&run.RunID,
		&run.StartedAt,
		&run.FinishedAt,
		&run.FightsLoaded,
		&run.FightsKept,
		&run.RankingsLoaded,
		&run.RankingsKept,
		&run.RowsWritten,
		&run.WarningCount,
		&run.LookbackWindow,
		&run.OutputPath,
		&run.OutputSHA256,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get pipeline run by id: %w", err)
	}

	run.StartedAt = run.StartedAt.UTC()
	run.FinishedAt = run.FinishedAt.UTC()
	return &run, nil
}
