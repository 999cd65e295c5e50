package reporting

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ufc-data-lab/internal/domain"
)

func f64(v float64) *float64 { return &v }

func testRecords() []*domain.ProcessedRecord {
	return []*domain.ProcessedRecord{
		{
			Fight: &domain.FightRecord{
				FightID: "f1",
				Values:  []string{"2021-01-01", "A", "B", "lightweight", "fighter_a"},
			},
			RollingA: []*float64{nil},
			RollingB: []*float64{nil},
		},
		{
			Fight: &domain.FightRecord{
				FightID: "f2",
				Values:  []string{"2021-02-01", "A", "C, Jr.", "lightweight", "fighter_b"},
			},
			RankA:    &domain.Rank{Position: 4, Ranked: true},
			RankB:    &domain.Rank{},
			RollingA: []*float64{f64(10)},
			RollingB: []*float64{f64(1.0 / 3.0)},
		},
	}
}

var testColumns = []string{"date", "fighter_a_id", "fighter_b_id", "weight_class", "winner"}

func TestDerivedColumns(t *testing.T) {
	got := DerivedColumns([]string{"x", "y"})
	assert.Equal(t, []string{
		"fighter_a_rank", "fighter_b_rank",
		"fighter_a_rolling_x", "fighter_a_rolling_y",
		"fighter_b_rolling_x", "fighter_b_rolling_y",
	}, got)
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "10", FormatFloat(10))
	assert.Equal(t, "2.5", FormatFloat(2.5))
	assert.Equal(t, "0.3333333333333333", FormatFloat(1.0/3.0))
}

func TestRenderProcessedCSV(t *testing.T) {
	out, err := RenderProcessedCSV(testColumns, []string{"strikes_landed"}, testRecords(), "")
	require.NoError(t, err)

	want := "date,fighter_a_id,fighter_b_id,weight_class,winner,fighter_a_rank,fighter_b_rank,fighter_a_rolling_strikes_landed,fighter_b_rolling_strikes_landed\n" +
		"2021-01-01,A,B,lightweight,fighter_a,,,,\n" +
		"2021-02-01,A,\"C, Jr.\",lightweight,fighter_b,4,unranked,10,0.3333333333333333\n"
	assert.Equal(t, want, string(out))
}

func TestRenderProcessedCSV_MissingValue(t *testing.T) {
	out, err := RenderProcessedCSV(testColumns, []string{"strikes_landed"}, testRecords()[:1], "NA")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(out), "fighter_a,NA,NA,NA,NA\n"), string(out))
}

func TestRenderProcessedCSV_Deterministic(t *testing.T) {
	a, err := RenderProcessedCSV(testColumns, []string{"strikes_landed"}, testRecords(), "")
	require.NoError(t, err)
	b, err := RenderProcessedCSV(testColumns, []string{"strikes_landed"}, testRecords(), "")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.csv")

	require.NoError(t, WriteFileAtomic(path, []byte("first\n")))
	require.NoError(t, WriteFileAtomic(path, []byte("second\n")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWriteFileAtomic_Unwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// A regular file where a directory is expected
	err := WriteFileAtomic(filepath.Join(blocker, "out.csv"), []byte("data"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWrite))
	var we *WriteError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, filepath.Join(blocker, "out.csv"), we.Path)
}

func TestWriteFileAtomic_DestinationIsDirectory(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.csv")
	require.NoError(t, os.Mkdir(target, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "keep"), []byte("x"), 0o644))

	err := WriteFileAtomic(target, []byte("data"))

	assert.True(t, errors.Is(err, ErrWrite))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRenderSummaryMarkdown(t *testing.T) {
	s := &BuildSummary{
		GeneratedAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		RunID:          "run-1",
		FightsPath:     "data/raw/ufc-master.csv",
		RankingsPath:   "data/raw/ufc-rankings.csv",
		OutputPath:     "data/processed/ufc-processed.csv",
		FightsLoaded:   10,
		FightsKept:     8,
		RankingsLoaded: 5,
		RankingsKept:   5,
		RowsWritten:    8,
		LookbackWindow: 3,
		Stats:          []string{"strikes_landed"},
		FirstFight:     time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		LastFight:      time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		Warnings: []domain.WarningCount{
			{Stage: domain.StageFights, Kind: domain.WarningInvalidDate, Count: 2},
			{Stage: domain.StageFights, Kind: domain.WarningUnknownWeightClass, Count: 1},
		},
		Split: &SplitSummary{TrainRows: 6, TestRows: 2, Seed: 42, TrainPath: "t.csv", TestPath: "s.csv"},
	}

	md := RenderSummaryMarkdown(s)

	assert.Contains(t, md, "Generated: 2024-05-01T12:00:00Z")
	assert.Contains(t, md, "| fights | 10 | 8 | 2 |")
	assert.Contains(t, md, "Rows written: 8")
	assert.Contains(t, md, "Fight dates: 2020-01-01 to 2021-01-01")
	assert.Contains(t, md, "| fights | invalid_date | 2 | yes |")
	assert.Contains(t, md, "| fights | unknown_weight_class | 1 | no |")
	assert.Contains(t, md, "| train | 6 | t.csv |")
	assert.Equal(t, md, RenderSummaryMarkdown(s))
}

func TestRenderSummaryMarkdown_NoWarnings(t *testing.T) {
	md := RenderSummaryMarkdown(&BuildSummary{})
	assert.Contains(t, md, "No warnings.")
	assert.NotContains(t, md, "Train/Test Split")
	assert.NotContains(t, md, "Fight dates")
}
