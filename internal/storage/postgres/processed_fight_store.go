package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"ufc-data-lab/internal/domain"
	"ufc-data-lab/internal/storage"
)

// ProcessedFightStore implements storage.ProcessedFightStore using PostgreSQL.
type ProcessedFightStore struct {
	pool *Pool
}

// NewProcessedFightStore creates a new ProcessedFightStore.
func NewProcessedFightStore(pool *Pool) *ProcessedFightStore {
	return &ProcessedFightStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ProcessedFightStore = (*ProcessedFightStore)(nil)

const selectProcessedFights = `
	SELECT fight_id, run_id, fight_date, fighter_a_id, fighter_b_id, weight_class, winner,
		rank_a, rank_b, stats, rolling_a, rolling_b
	FROM processed_fights
`

// UpsertBulk inserts or replaces fights by fight_id in one transaction.
func (s *ProcessedFightStore) UpsertBulk(ctx context.Context, fights []*domain.ProcessedFight) error {
	if len(fights) == 0 {
		return nil
	}
	for _, f := range fights {
		if err := storage.ValidateFight(f); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO processed_fights (
			fight_id, run_id, fight_date, fighter_a_id, fighter_b_id, weight_class, winner,
			rank_a, rank_b, stats, rolling_a, rolling_b
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (fight_id) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			fight_date = EXCLUDED.fight_date,
			fighter_a_id = EXCLUDED.fighter_a_id,
			fighter_b_id = EXCLUDED.fighter_b_id,
			weight_class = EXCLUDED.weight_class,
			winner = EXCLUDED.winner,
			rank_a = EXCLUDED.rank_a,
			rank_b = EXCLUDED.rank_b,
			stats = EXCLUDED.stats,
			rolling_a = EXCLUDED.rolling_a,
			rolling_b = EXCLUDED.rolling_b,
			updated_at = now()
	`

	return s.pool.inTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, f := range fights {
			rollingA, err := encodeRolling(f.RollingA)
			if err != nil {
				return fmt.Errorf("encode rolling_a for %s: %w", f.FightID, err)
			}
			rollingB, err := encodeRolling(f.RollingB)
			if err != nil {
				return fmt.Errorf("encode rolling_b for %s: %w", f.FightID, err)
			}

			batch.Queue(query,
				f.FightID,
				f.RunID,
				f.FightDate,
				f.FighterA,
				f.FighterB,
				string(f.WeightClass),
				string(f.Winner),
				rankToText(f.RankA),
				rankToText(f.RankB),
				f.Stats,
				rollingA,
				rollingB,
			)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("upsert processed fights: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a fight by its ID. Returns ErrNotFound if not exists.
func (s *ProcessedFightStore) GetByID(ctx context.Context, fightID string) (*domain.ProcessedFight, error) {
	row := s.pool.QueryRow(ctx, selectProcessedFights+` WHERE fight_id = $1`, fightID)
	f, err := scanProcessedFight(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get processed fight by id: %w", err)
	}
	return f, nil
}

// GetAll retrieves all fights, ordered by fight_date ASC, fight_id ASC.
func (s *ProcessedFightStore) GetAll(ctx context.Context) ([]*domain.ProcessedFight, error) {
	rows, err := s.pool.Query(ctx, selectProcessedFights+` ORDER BY fight_date ASC, fight_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("get all processed fights: %w", err)
	}
	defer rows.Close()

	var fights []*domain.ProcessedFight
	for rows.Next() {
		f, err := scanProcessedFight(rows)
		if err != nil {
			return nil, fmt.Errorf("scan processed fight row: %w", err)
		}
		fights = append(fights, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate processed fight rows: %w", err)
	}
	return fights, nil
}

// scanProcessedFight scans a single row into a ProcessedFight.
func scanProcessedFight(row pgx.Row) (*domain.ProcessedFight, error) {
	var f domain.ProcessedFight
	var weightClass, winner string
	var rankA, rankB *string
	var rollingA, rollingB []byte

	err := row.Scan(
		&f.FightID,
		&f.RunID,
		&f.FightDate,
		&f.FighterA,
		&f.FighterB,
		&weightClass,
		&winner,
		&rankA,
		&rankB,
		&f.Stats,
		&rollingA,
		&rollingB,
	)
	if err != nil {
		return nil, err
	}

	f.WeightClass = domain.WeightClass(weightClass)
	f.Winner = domain.Winner(winner)
	if f.RankA, err = textToRank(rankA); err != nil {
		return nil, err
	}
	if f.RankB, err = textToRank(rankB); err != nil {
		return nil, err
	}
	if f.RollingA, err = decodeRolling(rollingA); err != nil {
		return nil, fmt.Errorf("decode rolling_a: %w", err)
	}
	if f.RollingB, err = decodeRolling(rollingB); err != nil {
		return nil, fmt.Errorf("decode rolling_b: %w", err)
	}
	return &f, nil
}
