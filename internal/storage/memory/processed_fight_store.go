package memory

import (
	"context"
	"sort"
	"sync"

	"ufc-data-lab/internal/domain"
	"ufc-data-lab/internal/storage"
)

// ProcessedFightStore is an in-memory implementation of storage.ProcessedFightStore.
type ProcessedFightStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ProcessedFight // keyed by fight_id
}

// NewProcessedFightStore creates a new in-memory processed fight store.
func NewProcessedFightStore() *ProcessedFightStore {
	return &ProcessedFightStore{
		data: make(map[string]*domain.ProcessedFight),
	}
}

var _ storage.ProcessedFightStore = (*ProcessedFightStore)(nil)

// UpsertBulk inserts or replaces fights by fight_id. Nothing is written if
// any fight is invalid.
func (s *ProcessedFightStore) UpsertBulk(_ context.Context, fights []*domain.ProcessedFight) error {
	for _, f := range fights {
		if err := storage.ValidateFight(f); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range fights {
		s.data[f.FightID] = f.Clone()
	}
	return nil
}

// GetByID retrieves a fight by its ID. Returns ErrNotFound if not exists.
func (s *ProcessedFightStore) GetByID(_ context.Context, fightID string) (*domain.ProcessedFight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, exists := s.data[fightID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return f.Clone(), nil
}

// GetAll retrieves all fights, ordered by fight_date ASC, fight_id ASC.
func (s *ProcessedFightStore) GetAll(_ context.Context) ([]*domain.ProcessedFight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.ProcessedFight, 0, len(s.data))
	for _, f := range s.data {
		result = append(result, f.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].FightDate.Equal(result[j].FightDate) {
			return result[i].FightDate.Before(result[j].FightDate)
		}
		return result[i].FightID < result[j].FightID
	})
	return result, nil
}
