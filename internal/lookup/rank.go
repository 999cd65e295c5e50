// Package lookup resolves point-in-time values for fights.
package lookup

import (
	"sort"
	"time"

	"ufc-data-lab/internal/domain"
	"ufc-data-lab/internal/normalization"
)

type rankKey struct {
	fighterID   string
	weightClass domain.WeightClass
}

// RankIndex answers as-of rank queries per (fighter, weight class).
type RankIndex struct {
	byKey map[rankKey][]*domain.RankingRecord
	size  int
}

// NewRankIndex indexes rankings. Records in unrankable weight classes are
// skipped. The input slice is not modified.
func NewRankIndex(rankings []*domain.RankingRecord) *RankIndex {
	sorted := make([]*domain.RankingRecord, 0, len(rankings))
	for _, r := range rankings {
		if r.WeightClass.IsRankable() {
			sorted = append(sorted, r)
		}
	}
	normalization.SortRankings(sorted)

	idx := &RankIndex{byKey: make(map[rankKey][]*domain.RankingRecord)}
	for _, r := range sorted {
		k := rankKey{fighterID: r.FighterID, weightClass: r.WeightClass}
		idx.byKey[k] = append(idx.byKey[k], r)
		idx.size++
	}
	return idx
}

// Len returns the number of indexed rankings.
func (x *RankIndex) Len() int {
	return x.size
}

// RankAt returns the most recent rank with as_of_date at or before date.
// Ties on as_of_date resolve to the later input row.
// Returns nil when no such ranking exists.
func (x *RankIndex) RankAt(fighterID string, wc domain.WeightClass, date time.Time) *domain.Rank {
	if !wc.IsRankable() {
		return nil
	}
	list := x.byKey[rankKey{fighterID: fighterID, weightClass: wc}]

	// First entry strictly after date
	i := sort.Search(len(list), func(i int) bool {
		return list[i].AsOf.After(date)
	})
	if i == 0 {
		return nil
	}
	rank := list[i-1].Rank
	return &rank
}

// MergeRankings returns copies of records with RankA and RankB resolved as of
// each fight date in the fight's weight class.
func MergeRankings(records []*domain.ProcessedRecord, idx *RankIndex) []*domain.ProcessedRecord {
	out := make([]*domain.ProcessedRecord, len(records))
	for i, rec := range records {
		merged := *rec
		f := rec.Fight
		merged.RankA = idx.RankAt(f.FighterA, f.WeightClass, f.Date)
		merged.RankB = idx.RankAt(f.FighterB, f.WeightClass, f.Date)
		out[i] = &merged
	}
	return out
}
