package normalization

import (
	"errors"

	"ufc-data-lab/internal/domain"
)

// ErrInvalidWindow is returned for a lookback window below one.
var ErrInvalidWindow = errors.New("lookback window must be >= 1")

// ComputeRollingFeatures computes each fighter's rolling stat averages.
// Inputs are sorted by (date, seq) internally; the result follows that order.
//
// Rules:
//   - history = the fighter's fights with date strictly before this fight, either corner
//   - window = the last min(window, len(history)) of them
//   - rolling_<stat> = mean of the non-missing values in the window, NULL if none
//   - fights on the same date never see each other
func ComputeRollingFeatures(fights []*domain.FightRecord, statCount, window int) ([]*domain.ProcessedRecord, error) {
	if window < 1 {
		return nil, ErrInvalidWindow
	}
	if len(fights) == 0 {
		return nil, nil
	}

	sorted := make([]*domain.FightRecord, len(fights))
	copy(sorted, fights)
	SortFights(sorted)

	// Per-fighter stat vectors in chronological order
	history := make(map[string][][]*float64)
	result := make([]*domain.ProcessedRecord, 0, len(sorted))

	for start := 0; start < len(sorted); {
		end := start
		for end < len(sorted) && sorted[end].Date.Equal(sorted[start].Date) {
			end++
		}
		group := sorted[start:end]

		for _, f := range group {
			rec := &domain.ProcessedRecord{Fight: f}
			rec.RollingA, rec.PriorFightsA = rollingMeans(history[f.FighterA], statCount, window)
			rec.RollingB, rec.PriorFightsB = rollingMeans(history[f.FighterB], statCount, window)
			result = append(result, rec)
		}

		// History grows only after the whole date group is computed
		for _, f := range group {
			history[f.FighterA] = append(history[f.FighterA], f.StatsA)
			history[f.FighterB] = append(history[f.FighterB], f.StatsB)
		}
		start = end
	}

	return result, nil
}

// rollingMeans averages the last window entries of history per stat.
// Returns the means and the number of fights in the window.
func rollingMeans(history [][]*float64, statCount, window int) ([]*float64, int) {
	means := make([]*float64, statCount)
	from := len(history) - window
	if from < 0 {
		from = 0
	}
	recent := history[from:]
	if len(recent) == 0 {
		return means, 0
	}

	for s := 0; s < statCount; s++ {
		var sum float64
		var n int
		for _, stats := range recent {
			if s < len(stats) && stats[s] != nil {
				sum += *stats[s]
				n++
			}
		}
		if n > 0 {
			mean := sum / float64(n)
			means[s] = &mean
		}
	}
	return means, len(recent)
}

// FeaturePoints flattens processed records into long-format feature rows,
// fighter A before fighter B, stats in configured order.
func FeaturePoints(records []*domain.ProcessedRecord, stats []string, window int) []*domain.FighterFeaturePoint {
	points := make([]*domain.FighterFeaturePoint, 0, len(records)*len(stats)*2)
	for _, rec := range records {
		for _, side := range []domain.Side{domain.SideA, domain.SideB} {
			rolling := rec.Rolling(side)
			for s, stat := range stats {
				var v *float64
				if s < len(rolling) {
					v = rolling[s]
				}
				points = append(points, &domain.FighterFeaturePoint{
					FightID:     rec.Fight.FightID,
					FighterID:   rec.Fight.FighterID(side),
					Side:        side,
					FightDate:   rec.Fight.Date,
					Stat:        stat,
					Window:      window,
					Value:       v,
					PriorFights: rec.PriorFights(side),
				})
			}
		}
	}
	return points
}
