package pipeline

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ufc-data-lab/internal/domain"
)

func splitRecords(n int) []*domain.ProcessedRecord {
	records := make([]*domain.ProcessedRecord, n)
	for i := range records {
		records[i] = &domain.ProcessedRecord{Fight: &domain.FightRecord{Seq: i}}
	}
	return records
}

func TestSplitTrainTest_Sizes(t *testing.T) {
	train, test := SplitTrainTest(splitRecords(10), 0.2, 42)
	assert.Len(t, train, 8)
	assert.Len(t, test, 2)

	train, test = SplitTrainTest(splitRecords(3), 0.2, 42)
	assert.Len(t, train, 2)
	assert.Len(t, test, 1)

	train, test = SplitTrainTest(nil, 0.2, 42)
	assert.Empty(t, train)
	assert.Empty(t, test)
}

func TestSplitTrainTest_DeterministicAndOrdered(t *testing.T) {
	records := splitRecords(50)

	train1, test1 := SplitTrainTest(records, 0.3, 7)
	train2, test2 := SplitTrainTest(records, 0.3, 7)
	assert.Equal(t, train1, train2)
	assert.Equal(t, test1, test2)

	seen := make(map[int]bool)
	for _, part := range [][]*domain.ProcessedRecord{train1, test1} {
		for i := 1; i < len(part); i++ {
			assert.Less(t, part[i-1].Fight.Seq, part[i].Fight.Seq, "parts keep input order")
		}
		for _, rec := range part {
			seen[rec.Fight.Seq] = true
		}
	}
	assert.Len(t, seen, 50)

	_, other := SplitTrainTest(records, 0.3, 8)
	assert.NotEqual(t, test1, other, "a different seed should pick different rows")
}

func TestFilterDecisive(t *testing.T) {
	records := []*domain.ProcessedRecord{
		{Fight: &domain.FightRecord{Values: []string{"fighter_a"}}},
		{Fight: &domain.FightRecord{Values: []string{"draw"}}},
		{Fight: &domain.FightRecord{Values: []string{"fighter_b"}}},
	}

	out, err := FilterDecisive(records, []string{"winner"}, "winner")
	require.NoError(t, err)
	assert.Len(t, out, 2)

	_, err = FilterDecisive(records, []string{"winner"}, "result")
	assert.ErrorIs(t, err, ErrUnknownTarget)
}

func TestSplitPaths(t *testing.T) {
	train, test := SplitPaths("data/processed/ufc-processed.csv")
	assert.Equal(t, "data/processed/ufc-processed_train.csv", train)
	assert.Equal(t, "data/processed/ufc-processed_test.csv", test)
}

func TestDatasetBuilder_SaveSplit(t *testing.T) {
	cfg := testConfig(t)
	cfg.SplitEnabled = true
	cfg.SplitDecisiveOnly = true
	b, _ := newTestBuilder(t, cfg)
	_, err := b.Build(context.Background())
	require.NoError(t, err)

	summary, err := b.SaveSplit(cfg.OutputPath())
	require.NoError(t, err)

	// Three decisive rows, round(3*0.2) = 1 in test
	assert.Equal(t, 2, summary.TrainRows)
	assert.Equal(t, 1, summary.TestRows)
	assert.Equal(t, int64(42), summary.Seed)

	header := strings.SplitN(expectedProcessedCSV, "\n", 2)[0]
	for _, p := range []string{summary.TrainPath, summary.TestPath} {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
		assert.Equal(t, header, lines[0])
		for _, line := range lines[1:] {
			assert.NotContains(t, line, ",draw,")
			assert.NotContains(t, line, ",no_contest,")
		}
	}
}
