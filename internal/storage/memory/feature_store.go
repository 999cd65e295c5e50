package memory

import (
	"context"
	"sort"
	"sync"

	"ufc-data-lab/internal/domain"
	"ufc-data-lab/internal/storage"
)

type featureKey struct {
	fighterID string
	stat      string
	window    int
	fightID   string
}

// FeatureStore is an in-memory implementation of storage.FeatureStore.
type FeatureStore struct {
	mu   sync.RWMutex
	data map[featureKey]*domain.FighterFeaturePoint
}

// NewFeatureStore creates a new in-memory feature store.
func NewFeatureStore() *FeatureStore {
	return &FeatureStore{
		data: make(map[featureKey]*domain.FighterFeaturePoint),
	}
}

var _ storage.FeatureStore = (*FeatureStore)(nil)

// InsertBulk adds multiple points. A repeated key replaces the stored point,
// the same way ReplacingMergeTree collapses rows.
func (s *FeatureStore) InsertBulk(_ context.Context, points []*domain.FighterFeaturePoint) error {
	for _, p := range points {
		if err := storage.ValidateFeaturePoint(p); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		pointCopy := *p
		if p.Value != nil {
			v := *p.Value
			pointCopy.Value = &v
		}
		s.data[featureKey{p.FighterID, p.Stat, p.Window, p.FightID}] = &pointCopy
	}
	return nil
}

// GetByFighter retrieves a fighter's points, ordered by fight_date ASC, stat ASC.
func (s *FeatureStore) GetByFighter(_ context.Context, fighterID string) ([]*domain.FighterFeaturePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.FighterFeaturePoint
	for k, p := range s.data {
		if k.fighterID == fighterID {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.FightDate.Equal(b.FightDate) {
			return a.FightDate.Before(b.FightDate)
		}
		if a.Stat != b.Stat {
			return a.Stat < b.Stat
		}
		if a.Window != b.Window {
			return a.Window < b.Window
		}
		return a.FightID < b.FightID
	})
	return result, nil
}
