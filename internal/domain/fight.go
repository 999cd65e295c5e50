package domain

import (
	"strings"
	"time"
)

// Fights CSV column names.
const (
	ColumnDate        = "date"
	ColumnFighterA    = "fighter_a_id"
	ColumnFighterB    = "fighter_b_id"
	ColumnWeightClass = "weight_class"
	ColumnWinner      = "winner"
)

// FightColumns are the non-stat columns every fights table must carry.
var FightColumns = []string{ColumnDate, ColumnFighterA, ColumnFighterB, ColumnWinner, ColumnWeightClass}

// DateLayout is the canonical rendering of calendar dates.
const DateLayout = "2006-01-02"

// Side identifies a fighter's corner within a bout.
type Side string

const (
	SideA Side = "fighter_a"
	SideB Side = "fighter_b"
)

// Winner is the normalized bout outcome.
type Winner string

const (
	WinnerFighterA  Winner = "fighter_a"
	WinnerFighterB  Winner = "fighter_b"
	WinnerDraw      Winner = "draw"
	WinnerNoContest Winner = "no_contest"
)

// IsDecisive reports whether one fighter won.
func (w Winner) IsDecisive() bool {
	return w == WinnerFighterA || w == WinnerFighterB
}

// ParseWinner resolves a raw winner cell. Fighter ids are accepted in
// addition to the corner tokens.
func ParseWinner(raw, fighterA, fighterB string) (Winner, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", false
	}
	if v == fighterA {
		return WinnerFighterA, true
	}
	if v == fighterB {
		return WinnerFighterB, true
	}

	switch strings.ToLower(v) {
	case "fighter_a", "a", "red":
		return WinnerFighterA, true
	case "fighter_b", "b", "blue":
		return WinnerFighterB, true
	case "draw", "d":
		return WinnerDraw, true
	case "no contest", "no_contest", "no-contest", "nc":
		return WinnerNoContest, true
	}
	return "", false
}

// FightRecord is one cleaned historical bout.
type FightRecord struct {
	FightID     string      // base58(sha256(date|fighter_a_id|fighter_b_id))
	Seq         int         // 0-based position in the input file
	Date        time.Time   // UTC midnight
	FighterA    string      // fighter_a_id
	FighterB    string      // fighter_b_id
	WeightClass WeightClass // normalized
	Winner      Winner      // normalized
	StatsA      []*float64  // aligned with configured stats, nil = missing
	StatsB      []*float64  // aligned with configured stats, nil = missing
	Values      []string    // header-aligned cells, normalized where applicable
}

// FighterID returns the id of the fighter in the given corner.
func (f *FightRecord) FighterID(side Side) string {
	if side == SideB {
		return f.FighterB
	}
	return f.FighterA
}

// Stats returns the stat vector of the given corner.
func (f *FightRecord) Stats(side Side) []*float64 {
	if side == SideB {
		return f.StatsB
	}
	return f.StatsA
}

// FightTable is a cleaned fights table. Columns is the original header.
type FightTable struct {
	Columns []string
	Fights  []*FightRecord
}

// Len returns the number of fights.
func (t *FightTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Fights)
}
