package domain

import (
	"fmt"
	"sort"
)

// Stage names a table whose rows produced a warning.
type Stage string

const (
	StageFights   Stage = "fights"
	StageRankings Stage = "rankings"
)

// WarningKind classifies a non-fatal row issue.
type WarningKind string

const (
	WarningMissingField       WarningKind = "missing_field"
	WarningInvalidDate        WarningKind = "invalid_date"
	WarningUnknownWeightClass WarningKind = "unknown_weight_class"
	WarningInvalidWinner      WarningKind = "invalid_winner"
	WarningInvalidRank        WarningKind = "invalid_rank"
	WarningDuplicateFight     WarningKind = "duplicate_fight"
	WarningSelfMatch          WarningKind = "self_match"
	WarningInvalidStat        WarningKind = "invalid_stat"
)

// Drops reports whether a warning of this kind excludes its row.
func (k WarningKind) Drops() bool {
	switch k {
	case WarningUnknownWeightClass, WarningInvalidStat:
		return false
	}
	return true
}

// ValidationWarning is a recovered row-level problem. Warnings are collected,
// never raised.
type ValidationWarning struct {
	Stage  Stage
	Row    int // 1-based data row, header excluded
	Kind   WarningKind
	Column string
	Value  string
}

func (w ValidationWarning) String() string {
	return fmt.Sprintf("%s row %d: %s (%s=%q)", w.Stage, w.Row, w.Kind, w.Column, w.Value)
}

// WarningCount is one line of a warning summary.
type WarningCount struct {
	Stage Stage
	Kind  WarningKind
	Count int
}

// SummarizeWarnings counts warnings by (stage, kind), ordered by stage then kind.
func SummarizeWarnings(warnings []ValidationWarning) []WarningCount {
	type key struct {
		stage Stage
		kind  WarningKind
	}
	counts := make(map[key]int)
	for _, w := range warnings {
		counts[key{w.Stage, w.Kind}]++
	}

	result := make([]WarningCount, 0, len(counts))
	for k, n := range counts {
		result = append(result, WarningCount{Stage: k.stage, Kind: k.kind, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Stage != result[j].Stage {
			return result[i].Stage < result[j].Stage
		}
		return result[i].Kind < result[j].Kind
	})
	return result
}
