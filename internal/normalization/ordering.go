package normalization

import (
	"sort"

	"ufc-data-lab/internal/domain"
)

// SortFights orders fights by (date ASC, seq ASC).
// Seq is the input position, so ties keep insertion order.
func SortFights(fights []*domain.FightRecord) {
	sort.SliceStable(fights, func(i, j int) bool {
		return compareFights(fights[i], fights[j]) < 0
	})
}

// SortRankings orders rankings by (fighter_id, weight_class, as_of_date, seq).
func SortRankings(rankings []*domain.RankingRecord) {
	sort.SliceStable(rankings, func(i, j int) bool {
		return compareRankings(rankings[i], rankings[j]) < 0
	})
}

// compareFights returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
func compareFights(a, b *domain.FightRecord) int {
	if !a.Date.Equal(b.Date) {
		if a.Date.Before(b.Date) {
			return -1
		}
		return 1
	}
	return compareInts(a.Seq, b.Seq)
}

// compareRankings returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
func compareRankings(a, b *domain.RankingRecord) int {
	if a.FighterID != b.FighterID {
		if a.FighterID < b.FighterID {
			return -1
		}
		return 1
	}
	if a.WeightClass != b.WeightClass {
		if a.WeightClass < b.WeightClass {
			return -1
		}
		return 1
	}
	if !a.AsOf.Equal(b.AsOf) {
		if a.AsOf.Before(b.AsOf) {
			return -1
		}
		return 1
	}
	return compareInts(a.Seq, b.Seq)
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
