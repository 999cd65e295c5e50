package verification

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"ufc-data-lab/internal/domain"
	"ufc-data-lab/internal/ingestion"
	"ufc-data-lab/internal/normalization"
	"ufc-data-lab/internal/reporting"
)

// UnknownPriorFights marks a record whose window size was not stored.
// The processed CSV does not carry it, so VerifyRecords skips the check.
const UnknownPriorFights = -1

// LoadProcessedCSV reads a processed CSV back into records in file order.
// Every row must survive cleaning again; derived cells equal to missing, or
// any missing marker, load as nil.
func LoadProcessedCSV(path string, stats []string, missing string) ([]*domain.ProcessedRecord, error) {
	in, err := ingestion.LoadFights(path, stats)
	if err != nil {
		return nil, err
	}
	table := in.Table

	rankCols := []int{table.ColumnIndex(reporting.ColumnRankA), table.ColumnIndex(reporting.ColumnRankB)}
	var absent []string
	for i, c := range []string{reporting.ColumnRankA, reporting.ColumnRankB} {
		if rankCols[i] < 0 {
			absent = append(absent, c)
		}
	}
	rollingCols := make(map[domain.Side][]int, 2)
	for _, side := range []domain.Side{domain.SideA, domain.SideB} {
		for _, stat := range stats {
			name := reporting.RollingColumnName(side, stat)
			i := table.ColumnIndex(name)
			if i < 0 {
				absent = append(absent, name)
			}
			rollingCols[side] = append(rollingCols[side], i)
		}
	}
	if len(absent) > 0 {
		return nil, &ingestion.SchemaError{Path: path, Missing: absent}
	}

	fights, warnings := normalization.CleanFights(in)
	for _, w := range warnings {
		if w.Kind.Drops() {
			return nil, fmt.Errorf("%s: processed row dropped on reload: %s", path, w)
		}
	}

	records := make([]*domain.ProcessedRecord, 0, len(fights.Fights))
	for _, f := range fights.Fights {
		row := table.Rows[f.Seq]
		rec := &domain.ProcessedRecord{
			Fight:        f,
			PriorFightsA: UnknownPriorFights,
			PriorFightsB: UnknownPriorFights,
		}

		ranks := make([]*domain.Rank, 2)
		for i, col := range rankCols {
			r, err := parseStoredRank(row[col], missing)
			if err != nil {
				return nil, fmt.Errorf("%s: row %d: %s: %w", path, f.Seq+1, table.Columns[col], err)
			}
			ranks[i] = r
		}
		rec.RankA, rec.RankB = ranks[0], ranks[1]

		for _, side := range []domain.Side{domain.SideA, domain.SideB} {
			values := make([]*float64, len(stats))
			for s, col := range rollingCols[side] {
				v, err := parseStoredFloat(row[col], missing)
				if err != nil {
					return nil, fmt.Errorf("%s: row %d: %s: %w", path, f.Seq+1, table.Columns[col], err)
				}
				values[s] = v
			}
			if side == domain.SideA {
				rec.RollingA = values
			} else {
				rec.RollingB = values
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func isStoredMissing(raw, missing string) bool {
	return raw == missing || normalization.IsMissing(raw)
}

func parseStoredRank(raw, missing string) (*domain.Rank, error) {
	if isStoredMissing(raw, missing) {
		return nil, nil
	}
	r, ok := domain.ParseRank(raw)
	if !ok {
		return nil, fmt.Errorf("invalid rank %q", raw)
	}
	return &r, nil
}

func parseStoredFloat(raw, missing string) (*float64, error) {
	if isStoredMissing(raw, missing) {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsInf(v, 0) {
		return nil, fmt.Errorf("invalid average %q", raw)
	}
	return &v, nil
}
