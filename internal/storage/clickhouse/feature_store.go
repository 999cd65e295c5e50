package clickhouse

import (
	"context"
	"fmt"
	"time"

	"ufc-data-lab/internal/domain"
	"ufc-data-lab/internal/storage"
)

// FeatureStore implements storage.FeatureStore using ClickHouse.
// The table is a ReplacingMergeTree, so reads use FINAL to see one row per key.
type FeatureStore struct {
	conn *Conn
}

// NewFeatureStore creates a new FeatureStore.
func NewFeatureStore(conn *Conn) *FeatureStore {
	return &FeatureStore{conn: conn}
}

// Compile-time interface check.
var _ storage.FeatureStore = (*FeatureStore)(nil)

// InsertBulk adds multiple points in one batch.
func (s *FeatureStore) InsertBulk(ctx context.Context, points []*domain.FighterFeaturePoint) error {
	if len(points) == 0 {
		return nil
	}
	for _, p := range points {
		if err := storage.ValidateFeaturePoint(p); err != nil {
			return err
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO fighter_rolling_features (
			fight_id, fighter_id, side, fight_date, stat, lookback_window, value, prior_fights
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		// Nil values go straight to the Nullable column
		err = batch.Append(
			p.FightID, p.FighterID, string(p.Side), p.FightDate, p.Stat,
			uint16(p.Window), p.Value, uint16(p.PriorFights),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByFighter retrieves a fighter's points, ordered by fight_date ASC, stat ASC.
func (s *FeatureStore) GetByFighter(ctx context.Context, fighterID string) ([]*domain.FighterFeaturePoint, error) {
	query := `
		SELECT fight_id, fighter_id, side, fight_date, stat, lookback_window, value, prior_fights
		FROM fighter_rolling_features FINAL
		WHERE fighter_id = ?
		ORDER BY fight_date ASC, stat ASC, lookback_window ASC, fight_id ASC
	`

	rows, err := s.conn.Query(ctx, query, fighterID)
	if err != nil {
		return nil, fmt.Errorf("query by fighter id: %w", err)
	}
	defer rows.Close()

	var points []*domain.FighterFeaturePoint
	for rows.Next() {
		var (
			p           domain.FighterFeaturePoint
			side        string
			fightDate   time.Time
			window      uint16
			priorFights uint16
		)
		if err := rows.Scan(&p.FightID, &p.FighterID, &side, &fightDate, &p.Stat, &window, &p.Value, &priorFights); err != nil {
			return nil, fmt.Errorf("scan feature row: %w", err)
		}
		p.Side = domain.Side(side)
		p.FightDate = time.Date(fightDate.Year(), fightDate.Month(), fightDate.Day(), 0, 0, 0, 0, time.UTC)
		p.Window = int(window)
		p.PriorFights = int(priorFights)
		points = append(points, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature rows: %w", err)
	}
	return points, nil
}
