package reporting

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"ufc-data-lab/internal/domain"
)

// Derived column names.
const (
	ColumnRankA = "fighter_a_rank"
	ColumnRankB = "fighter_b_rank"
)

// RollingColumnName returns the derived column of a stat for one corner.
func RollingColumnName(side domain.Side, stat string) string {
	return string(side) + "_rolling_" + stat
}

// DerivedColumns returns the columns appended to the fights header:
// both ranks, then fighter A's rolling stats, then fighter B's.
func DerivedColumns(stats []string) []string {
	cols := make([]string, 0, 2+2*len(stats))
	cols = append(cols, ColumnRankA, ColumnRankB)
	for _, side := range []domain.Side{domain.SideA, domain.SideB} {
		for _, s := range stats {
			cols = append(cols, RollingColumnName(side, s))
		}
	}
	return cols
}

// ProcessedHeader returns the full output header.
func ProcessedHeader(columns, stats []string) []string {
	header := make([]string, 0, len(columns)+2+2*len(stats))
	header = append(header, columns...)
	return append(header, DerivedColumns(stats)...)
}

// FormatFloat renders an average the way the output CSV carries it.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ProcessedRow renders one record aligned with ProcessedHeader.
// missing is written for every absent rank or average.
func ProcessedRow(rec *domain.ProcessedRecord, columns int, statCount int, missing string) []string {
	row := make([]string, 0, columns+2+2*statCount)
	for i := 0; i < columns; i++ {
		if i < len(rec.Fight.Values) {
			row = append(row, rec.Fight.Values[i])
		} else {
			row = append(row, "")
		}
	}

	for _, r := range []*domain.Rank{rec.RankA, rec.RankB} {
		if r == nil {
			row = append(row, missing)
			continue
		}
		row = append(row, r.String())
	}

	for _, rolling := range [][]*float64{rec.RollingA, rec.RollingB} {
		for s := 0; s < statCount; s++ {
			if s >= len(rolling) || rolling[s] == nil {
				row = append(row, missing)
				continue
			}
			row = append(row, FormatFloat(*rolling[s]))
		}
	}
	return row
}

// RenderProcessedCSV renders the processed table. Records are written in
// the order given.
func RenderProcessedCSV(columns, stats []string, records []*domain.ProcessedRecord, missing string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(ProcessedHeader(columns, stats)); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(ProcessedRow(rec, len(columns), len(stats), missing)); err != nil {
			return nil, fmt.Errorf("write row %s: %w", rec.Fight.FightID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
