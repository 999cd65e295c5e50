// Package ingestion loads the raw fights and rankings CSVs and checks their
// schemas. Rows are returned as text; typing and cleaning happen in
// normalization.
package ingestion

import (
	"sort"

	"ufc-data-lab/internal/domain"
)

// StatColumns locates one configured stat in the fights header.
// A and B are equal when the table carries a single bout-level column.
type StatColumns struct {
	Stat      string
	A         int
	B         int
	BoutLevel bool
}

// FightsInput is a loaded fights table with its stat layout resolved.
type FightsInput struct {
	Table *RawTable
	Stats []StatColumns
}

// StatColumnName returns the per-side column name of a stat.
func StatColumnName(side domain.Side, stat string) string {
	return string(side) + "_" + stat
}

// LoadFights reads the fights CSV and resolves every configured stat to
// either fighter_a_<stat>/fighter_b_<stat> or a single <stat> column.
func LoadFights(path string, stats []string) (*FightsInput, error) {
	table, err := ReadTable(path)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, c := range domain.FightColumns {
		if !table.HasColumn(c) {
			missing = append(missing, c)
		}
	}

	layout := make([]StatColumns, 0, len(stats))
	for _, stat := range stats {
		a := table.ColumnIndex(StatColumnName(domain.SideA, stat))
		b := table.ColumnIndex(StatColumnName(domain.SideB, stat))
		switch {
		case a >= 0 && b >= 0:
			layout = append(layout, StatColumns{Stat: stat, A: a, B: b})
		case table.HasColumn(stat):
			i := table.ColumnIndex(stat)
			layout = append(layout, StatColumns{Stat: stat, A: i, B: i, BoutLevel: true})
		default:
			if a < 0 {
				missing = append(missing, StatColumnName(domain.SideA, stat))
			}
			if b < 0 {
				missing = append(missing, StatColumnName(domain.SideB, stat))
			}
		}
	}

	if len(missing) > 0 {
		return nil, &SchemaError{Path: path, Missing: missing}
	}
	return &FightsInput{Table: table, Stats: layout}, nil
}

// LoadRankings reads the rankings CSV and checks its required columns.
func LoadRankings(path string) (*RawTable, error) {
	table, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	if err := table.Require(domain.RankingColumns...); err != nil {
		return nil, err
	}
	return table, nil
}

// CheckConflicts returns a SchemaError if the input header already carries
// any of the derived column names.
func CheckConflicts(table *RawTable, derived []string) error {
	var conflicts []string
	for _, c := range derived {
		if table.HasColumn(c) {
			conflicts = append(conflicts, c)
		}
	}
	if len(conflicts) == 0 {
		return nil
	}
	sort.Strings(conflicts)
	return &SchemaError{Path: table.Path, Conflicts: conflicts}
}
