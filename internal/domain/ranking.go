package domain

import (
	"strconv"
	"strings"
	"time"
)

// Rankings CSV column names.
const (
	ColumnRankFighter     = "fighter_id"
	ColumnRankWeightClass = "weight_class"
	ColumnRank            = "rank"
	ColumnRankAsOf        = "as_of_date"
)

// RankingColumns are the columns every rankings table must carry.
var RankingColumns = []string{ColumnRankFighter, ColumnRankWeightClass, ColumnRank, ColumnRankAsOf}

// UnrankedLabel is how an unranked position is rendered.
const UnrankedLabel = "unranked"

// Rank is a ranking position. Position is only meaningful when Ranked.
type Rank struct {
	Position int
	Ranked   bool
}

// String renders the rank as a CSV cell.
func (r Rank) String() string {
	if !r.Ranked {
		return UnrankedLabel
	}
	return strconv.Itoa(r.Position)
}

// ParseRank parses a raw rank cell: a positive integer or an unranked marker.
func ParseRank(raw string) (Rank, bool) {
	v := strings.TrimSpace(strings.ToLower(raw))
	switch v {
	case UnrankedLabel, "nr", "-":
		return Rank{}, true
	case "":
		return Rank{}, false
	}

	n, err := strconv.Atoi(strings.TrimPrefix(v, "#"))
	if err != nil || n < 1 {
		return Rank{}, false
	}
	return Rank{Position: n, Ranked: true}, true
}

// RankingRecord is a fighter's rank in a weight class at a point in time.
type RankingRecord struct {
	Seq         int // 0-based position in the input file
	FighterID   string
	WeightClass WeightClass
	Rank        Rank
	AsOf        time.Time // UTC midnight
}
