// Package verification checks a processed dataset against an independent
// recomputation. It verifies that stored rows match a brute-force rebuild.
package verification

import (
	"math"

	"ufc-data-lab/internal/domain"
	"ufc-data-lab/internal/reporting"
)

// FloatTolerance is the tolerance for rolling average comparisons.
const FloatTolerance = 1e-9

// FieldDivergence represents a mismatch between stored and recomputed values.
type FieldDivergence struct {
	Field    string      // output column name
	Expected interface{} // recomputed value
	Actual   interface{} // stored value
}

// RecordResult contains the result of verifying a single processed row.
type RecordResult struct {
	FightID     string            // verified fight ID
	Row         int               // 0-based output row
	Match       bool              // true if all fields match
	Divergences []FieldDivergence // list of divergent fields
}

// VerificationReport contains results for batch verification.
type VerificationReport struct {
	TotalRecords     int            // total rows verified
	MatchedRecords   int            // rows that matched exactly
	DivergentRecords int            // rows with divergences
	Results          []RecordResult // individual results
}

// OK reports whether every row matched.
func (r *VerificationReport) OK() bool {
	return r.DivergentRecords == 0
}

// VerifyRecords recomputes every rolling average and rank of records by
// scanning the whole table and the rankings, and compares them with the
// stored values. records must be in output order.
func VerifyRecords(records []*domain.ProcessedRecord, rankings []*domain.RankingRecord, stats []string, window int) *VerificationReport {
	report := &VerificationReport{TotalRecords: len(records)}

	for i, rec := range records {
		result := RecordResult{Row: i}
		if rec == nil || rec.Fight == nil {
			result.Divergences = append(result.Divergences, FieldDivergence{Field: "fight", Expected: "present", Actual: nil})
		} else {
			result.FightID = rec.Fight.FightID
			result.Divergences = append(result.Divergences, crucialFields(rec, len(stats))...)
			if i > 0 && records[i-1] != nil && records[i-1].Fight != nil && !inOrder(records[i-1].Fight, rec.Fight) {
				result.Divergences = append(result.Divergences, FieldDivergence{
					Field:    domain.ColumnDate,
					Expected: "after " + records[i-1].Fight.Date.Format(domain.DateLayout),
					Actual:   rec.Fight.Date.Format(domain.DateLayout),
				})
			}
			result.Divergences = append(result.Divergences, compareRolling(records, rec, stats, window)...)
			result.Divergences = append(result.Divergences, compareRanks(rec, rankings)...)
		}

		result.Match = len(result.Divergences) == 0
		if result.Match {
			report.MatchedRecords++
		} else {
			report.DivergentRecords++
		}
		report.Results = append(report.Results, result)
	}
	return report
}

// crucialFields checks the fields every kept fight must carry.
func crucialFields(rec *domain.ProcessedRecord, statCount int) []FieldDivergence {
	var divergences []FieldDivergence
	f := rec.Fight

	if f.FightID == "" {
		divergences = append(divergences, FieldDivergence{Field: "fight_id", Expected: "non-empty", Actual: f.FightID})
	}
	if f.Date.IsZero() {
		divergences = append(divergences, FieldDivergence{Field: domain.ColumnDate, Expected: "non-zero", Actual: f.Date})
	}
	if f.FighterA == "" {
		divergences = append(divergences, FieldDivergence{Field: domain.ColumnFighterA, Expected: "non-empty", Actual: f.FighterA})
	}
	if f.FighterB == "" {
		divergences = append(divergences, FieldDivergence{Field: domain.ColumnFighterB, Expected: "non-empty", Actual: f.FighterB})
	}
	if f.FighterA != "" && f.FighterA == f.FighterB {
		divergences = append(divergences, FieldDivergence{Field: domain.ColumnFighterB, Expected: "different from " + f.FighterA, Actual: f.FighterB})
	}
	if f.Winner == "" {
		divergences = append(divergences, FieldDivergence{Field: domain.ColumnWinner, Expected: "non-empty", Actual: f.Winner})
	}
	if f.WeightClass == "" {
		divergences = append(divergences, FieldDivergence{Field: domain.ColumnWeightClass, Expected: "non-empty", Actual: f.WeightClass})
	}
	if len(rec.RollingA) != statCount || len(rec.RollingB) != statCount {
		divergences = append(divergences, FieldDivergence{Field: "rolling", Expected: statCount, Actual: len(rec.RollingA)})
	}
	return divergences
}

func inOrder(prev, cur *domain.FightRecord) bool {
	if !prev.Date.Equal(cur.Date) {
		return prev.Date.Before(cur.Date)
	}
	return prev.Seq < cur.Seq
}

// compareRolling recomputes both corners' rolling averages from every fight
// strictly earlier in date. Window sizes are compared unless unknown.
func compareRolling(records []*domain.ProcessedRecord, rec *domain.ProcessedRecord, stats []string, window int) []FieldDivergence {
	var divergences []FieldDivergence
	for _, side := range []domain.Side{domain.SideA, domain.SideB} {
		expected, prior := bruteForceMeans(records, rec.Fight.FighterID(side), rec.Fight, len(stats), window)
		stored := rec.Rolling(side)

		for s, stat := range stats {
			var actual *float64
			if s < len(stored) {
				actual = stored[s]
			}
			if !floatPtrEquals(expected[s], actual) {
				divergences = append(divergences, FieldDivergence{
					Field:    reporting.RollingColumnName(side, stat),
					Expected: floatValue(expected[s]),
					Actual:   floatValue(actual),
				})
			}
		}
		if n := rec.PriorFights(side); n != UnknownPriorFights && prior != n {
			divergences = append(divergences, FieldDivergence{
				Field:    string(side) + "_prior_fights",
				Expected: prior,
				Actual:   n,
			})
		}
	}
	return divergences
}

// bruteForceMeans averages the fighter's last window fights before target,
// skipping missing stats.
func bruteForceMeans(records []*domain.ProcessedRecord, fighterID string, target *domain.FightRecord, statCount, window int) ([]*float64, int) {
	var history [][]*float64
	for _, other := range records {
		if other == nil || other.Fight == nil {
			continue
		}
		f := other.Fight
		if !f.Date.Before(target.Date) {
			continue
		}
		switch fighterID {
		case f.FighterA:
			history = append(history, f.StatsA)
		case f.FighterB:
			history = append(history, f.StatsB)
		}
	}
	if len(history) > window {
		history = history[len(history)-window:]
	}

	means := make([]*float64, statCount)
	for s := 0; s < statCount; s++ {
		var sum float64
		n := 0
		for _, h := range history {
			if s < len(h) && h[s] != nil {
				sum += *h[s]
				n++
			}
		}
		if n > 0 {
			mean := sum / float64(n)
			means[s] = &mean
		}
	}
	return means, len(history)
}

func compareRanks(rec *domain.ProcessedRecord, rankings []*domain.RankingRecord) []FieldDivergence {
	var divergences []FieldDivergence
	for _, side := range []domain.Side{domain.SideA, domain.SideB} {
		expected := bruteForceRank(rankings, rec.Fight.FighterID(side), rec.Fight)
		actual := rec.Rank(side)
		if !rankPtrEquals(expected, actual) {
			field := reporting.ColumnRankA
			if side == domain.SideB {
				field = reporting.ColumnRankB
			}
			divergences = append(divergences, FieldDivergence{
				Field:    field,
				Expected: rankValue(expected),
				Actual:   rankValue(actual),
			})
		}
	}
	return divergences
}

// bruteForceRank scans every ranking for the latest as-of match.
func bruteForceRank(rankings []*domain.RankingRecord, fighterID string, f *domain.FightRecord) *domain.Rank {
	if !f.WeightClass.IsRankable() {
		return nil
	}
	var best *domain.RankingRecord
	for _, r := range rankings {
		if r.FighterID != fighterID || r.WeightClass != f.WeightClass || r.AsOf.After(f.Date) {
			continue
		}
		if best == nil || r.AsOf.After(best.AsOf) || (r.AsOf.Equal(best.AsOf) && r.Seq > best.Seq) {
			best = r
		}
	}
	if best == nil {
		return nil
	}
	rank := best.Rank
	return &rank
}

// floatEquals compares two float64 values within FloatTolerance.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= FloatTolerance
}

// floatPtrEquals compares two *float64 values within FloatTolerance.
// Returns true if both are nil, or both are non-nil and equal.
func floatPtrEquals(a, b *float64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return floatEquals(*a, *b)
}

func rankPtrEquals(a, b *domain.Rank) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func floatValue(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func rankValue(r *domain.Rank) interface{} {
	if r == nil {
		return nil
	}
	return r.String()
}
