// Package normalization turns raw ingested tables into typed, ordered
// records and derives the rolling per-fighter features.
package normalization

import (
	"math"
	"strconv"
	"strings"

	"ufc-data-lab/internal/domain"
	"ufc-data-lab/internal/idhash"
	"ufc-data-lab/internal/ingestion"
)

// CleanFights validates and types every fights row.
//
// Rows missing date, fighter ids or winner are dropped, as are rows with an
// unparseable date, an unrecognized winner, a fighter facing themselves, or a
// repeated (date, fighter_a_id, fighter_b_id). Unknown weight classes and
// non-numeric stats are kept with a warning.
//
// Returned fights keep input order; Seq is the 0-based input row.
func CleanFights(in *ingestion.FightsInput) (*domain.FightTable, []domain.ValidationWarning) {
	t := in.Table
	cols := fightColumnIndexes(t)
	out := &domain.FightTable{
		Columns: append([]string(nil), t.Columns...),
		Fights:  make([]*domain.FightRecord, 0, t.Len()),
	}

	var warnings []domain.ValidationWarning
	seen := make(map[fightKey]struct{}, t.Len())

	for i, row := range t.Rows {
		warn := func(kind domain.WarningKind, column, value string) {
			warnings = append(warnings, domain.ValidationWarning{
				Stage:  domain.StageFights,
				Row:    i + 1,
				Kind:   kind,
				Column: column,
				Value:  value,
			})
		}

		if column, ok := firstMissing(row, cols, domain.ColumnDate, domain.ColumnFighterA, domain.ColumnFighterB, domain.ColumnWinner); !ok {
			warn(domain.WarningMissingField, column, "")
			continue
		}

		rawDate := cell(row, cols[domain.ColumnDate])
		date, ok := ParseDate(rawDate)
		if !ok {
			warn(domain.WarningInvalidDate, domain.ColumnDate, rawDate)
			continue
		}

		fighterA := strings.TrimSpace(cell(row, cols[domain.ColumnFighterA]))
		fighterB := strings.TrimSpace(cell(row, cols[domain.ColumnFighterB]))
		if fighterA == fighterB {
			warn(domain.WarningSelfMatch, domain.ColumnFighterB, fighterB)
			continue
		}

		rawWinner := cell(row, cols[domain.ColumnWinner])
		winner, ok := domain.ParseWinner(rawWinner, fighterA, fighterB)
		if !ok {
			warn(domain.WarningInvalidWinner, domain.ColumnWinner, rawWinner)
			continue
		}

		key := fightKey{date: date.Format(domain.DateLayout), fighterA: fighterA, fighterB: fighterB}
		if _, dup := seen[key]; dup {
			warn(domain.WarningDuplicateFight, domain.ColumnDate, key.date)
			continue
		}
		seen[key] = struct{}{}
		fightID := idhash.ComputeFightID(date, fighterA, fighterB)

		rawClass := cell(row, cols[domain.ColumnWeightClass])
		wc, ok := domain.NormalizeWeightClass(rawClass)
		if !ok {
			warn(domain.WarningUnknownWeightClass, domain.ColumnWeightClass, rawClass)
		}

		statsA := make([]*float64, len(in.Stats))
		statsB := make([]*float64, len(in.Stats))
		for s, sc := range in.Stats {
			colA, colB := ingestion.StatColumnName(domain.SideA, sc.Stat), ingestion.StatColumnName(domain.SideB, sc.Stat)
			if sc.BoutLevel {
				colA, colB = sc.Stat, sc.Stat
			}

			v, valid := parseStat(cell(row, sc.A))
			if !valid {
				warn(domain.WarningInvalidStat, colA, cell(row, sc.A))
			}
			statsA[s] = v

			if sc.BoutLevel {
				statsB[s] = copyFloat(v)
				continue
			}
			v, valid = parseStat(cell(row, sc.B))
			if !valid {
				warn(domain.WarningInvalidStat, colB, cell(row, sc.B))
			}
			statsB[s] = v
		}

		values := make([]string, len(t.Columns))
		copy(values, row)
		values[cols[domain.ColumnDate]] = date.Format(domain.DateLayout)
		values[cols[domain.ColumnFighterA]] = fighterA
		values[cols[domain.ColumnFighterB]] = fighterB
		values[cols[domain.ColumnWinner]] = string(winner)
		values[cols[domain.ColumnWeightClass]] = string(wc)

		out.Fights = append(out.Fights, &domain.FightRecord{
			FightID:     fightID,
			Seq:         i,
			Date:        date,
			FighterA:    fighterA,
			FighterB:    fighterB,
			WeightClass: wc,
			Winner:      winner,
			StatsA:      statsA,
			StatsB:      statsB,
			Values:      values,
		})
	}

	return out, warnings
}

// CleanRankings validates and types every rankings row.
// Rows missing a fighter, date or rank are dropped, as are unparseable dates
// and ranks. Unknown weight classes are kept; they never match a fight.
func CleanRankings(t *ingestion.RawTable) ([]*domain.RankingRecord, []domain.ValidationWarning) {
	cols := map[string]int{
		domain.ColumnRankFighter:     t.ColumnIndex(domain.ColumnRankFighter),
		domain.ColumnRankWeightClass: t.ColumnIndex(domain.ColumnRankWeightClass),
		domain.ColumnRank:            t.ColumnIndex(domain.ColumnRank),
		domain.ColumnRankAsOf:        t.ColumnIndex(domain.ColumnRankAsOf),
	}

	var warnings []domain.ValidationWarning
	out := make([]*domain.RankingRecord, 0, t.Len())

	for i, row := range t.Rows {
		warn := func(kind domain.WarningKind, column, value string) {
			warnings = append(warnings, domain.ValidationWarning{
				Stage:  domain.StageRankings,
				Row:    i + 1,
				Kind:   kind,
				Column: column,
				Value:  value,
			})
		}

		if column, ok := firstMissing(row, cols, domain.ColumnRankFighter, domain.ColumnRank, domain.ColumnRankAsOf); !ok {
			warn(domain.WarningMissingField, column, "")
			continue
		}

		rawDate := cell(row, cols[domain.ColumnRankAsOf])
		asOf, ok := ParseDate(rawDate)
		if !ok {
			warn(domain.WarningInvalidDate, domain.ColumnRankAsOf, rawDate)
			continue
		}

		rawRank := cell(row, cols[domain.ColumnRank])
		rank, ok := domain.ParseRank(rawRank)
		if !ok {
			warn(domain.WarningInvalidRank, domain.ColumnRank, rawRank)
			continue
		}

		rawClass := cell(row, cols[domain.ColumnRankWeightClass])
		wc, ok := domain.NormalizeWeightClass(rawClass)
		if !ok {
			warn(domain.WarningUnknownWeightClass, domain.ColumnRankWeightClass, rawClass)
		}

		out = append(out, &domain.RankingRecord{
			Seq:         i,
			FighterID:   strings.TrimSpace(cell(row, cols[domain.ColumnRankFighter])),
			WeightClass: wc,
			Rank:        rank,
			AsOf:        asOf,
		})
	}

	return out, warnings
}

// fightKey identifies a fight for duplicate detection.
type fightKey struct {
	date     string
	fighterA string
	fighterB string
}

func fightColumnIndexes(t *ingestion.RawTable) map[string]int {
	cols := make(map[string]int, len(domain.FightColumns))
	for _, c := range domain.FightColumns {
		cols[c] = t.ColumnIndex(c)
	}
	return cols
}

// firstMissing returns the first listed column whose cell is empty.
func firstMissing(row []string, cols map[string]int, columns ...string) (string, bool) {
	for _, c := range columns {
		if IsMissing(cell(row, cols[c])) {
			return c, false
		}
	}
	return "", true
}

// cell returns row[i], or "" for short rows and absent columns.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// parseStat returns (nil, true) for missing cells and (nil, false) for
// non-numeric ones.
func parseStat(raw string) (*float64, bool) {
	if IsMissing(raw) {
		return nil, true
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsInf(v, 0) {
		return nil, false
	}
	return &v, true
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
