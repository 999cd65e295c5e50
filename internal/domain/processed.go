package domain

import "time"

// ProcessedRecord is a fight enriched with ranks and rolling averages.
// Nil pointers are the missing-value sentinel.
type ProcessedRecord struct {
	Fight        *FightRecord
	RankA        *Rank
	RankB        *Rank
	RollingA     []*float64 // aligned with configured stats
	RollingB     []*float64 // aligned with configured stats
	PriorFightsA int        // fights inside fighter A's window
	PriorFightsB int        // fights inside fighter B's window
}

// Rank returns the merged rank of the given corner.
func (p *ProcessedRecord) Rank(side Side) *Rank {
	if side == SideB {
		return p.RankB
	}
	return p.RankA
}

// Rolling returns the rolling averages of the given corner.
func (p *ProcessedRecord) Rolling(side Side) []*float64 {
	if side == SideB {
		return p.RollingB
	}
	return p.RollingA
}

// PriorFights returns the window size actually used for the given corner.
func (p *ProcessedRecord) PriorFights(side Side) int {
	if side == SideB {
		return p.PriorFightsB
	}
	return p.PriorFightsA
}

// FighterFeaturePoint is one rolling average in long format.
// Corresponds to fighter_rolling_features table in ClickHouse.
type FighterFeaturePoint struct {
	FightID     string
	FighterID   string
	Side        Side
	FightDate   time.Time
	Stat        string
	Window      int
	Value       *float64 // NULL when no prior history
	PriorFights int
}

// PipelineRun records one orchestrator run.
// Corresponds to pipeline_runs table in PostgreSQL.
type PipelineRun struct {
	RunID          string // uuid
	StartedAt      time.Time
	FinishedAt     time.Time
	FightsLoaded   int
	FightsKept     int
	RankingsLoaded int
	RankingsKept   int
	RowsWritten    int
	WarningCount   int
	LookbackWindow int
	OutputPath     string
	OutputSHA256   string
}

// ProcessedFight is the stored form of a ProcessedRecord.
// Corresponds to processed_fights table in PostgreSQL.
type ProcessedFight struct {
	FightID     string
	RunID       string
	FightDate   time.Time
	FighterA    string
	FighterB    string
	WeightClass WeightClass
	Winner      Winner
	RankA       *Rank
	RankB       *Rank
	Stats       []string   // stat names, aligned with RollingA and RollingB
	RollingA    []*float64 // NULL entries have no prior history
	RollingB    []*float64
}

// NewProcessedFight flattens a processed record for storage.
func NewProcessedFight(rec *ProcessedRecord, stats []string, runID string) *ProcessedFight {
	f := rec.Fight
	p := &ProcessedFight{
		FightID:     f.FightID,
		RunID:       runID,
		FightDate:   f.Date,
		FighterA:    f.FighterA,
		FighterB:    f.FighterB,
		WeightClass: f.WeightClass,
		Winner:      f.Winner,
		RankA:       rec.RankA,
		RankB:       rec.RankB,
		Stats:       stats,
		RollingA:    rec.RollingA,
		RollingB:    rec.RollingB,
	}
	return p.Clone()
}

// Clone returns a deep copy.
func (p *ProcessedFight) Clone() *ProcessedFight {
	c := *p
	c.RankA = cloneRank(p.RankA)
	c.RankB = cloneRank(p.RankB)
	c.Stats = append([]string(nil), p.Stats...)
	c.RollingA = cloneFloats(p.RollingA)
	c.RollingB = cloneFloats(p.RollingB)
	return &c
}

func cloneRank(r *Rank) *Rank {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

func cloneFloats(in []*float64) []*float64 {
	if in == nil {
		return nil
	}
	out := make([]*float64, len(in))
	for i, v := range in {
		if v != nil {
			c := *v
			out[i] = &c
		}
	}
	return out
}
