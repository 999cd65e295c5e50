package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ufc-data-lab/internal/domain"
	"ufc-data-lab/internal/storage"
)

func ptr[T any](v T) *T {
	return &v
}

func date(m, d int) time.Time {
	return time.Date(2021, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func testFight(id string, d time.Time) *domain.ProcessedFight {
	return &domain.ProcessedFight{
		FightID:     id,
		RunID:       "run-1",
		FightDate:   d,
		FighterA:    "A",
		FighterB:    "B",
		WeightClass: domain.WeightClassLightweight,
		Winner:      domain.WinnerFighterA,
		RankA:       &domain.Rank{Position: 3, Ranked: true},
		Stats:       []string{"strikes_landed"},
		RollingA:    []*float64{ptr(10.0)},
		RollingB:    []*float64{nil},
	}
}

func TestProcessedFightStore_UpsertAndGet(t *testing.T) {
	store := NewProcessedFightStore()
	ctx := context.Background()

	require.NoError(t, store.UpsertBulk(ctx, []*domain.ProcessedFight{
		testFight("f2", date(2, 1)),
		testFight("f1", date(1, 1)),
		testFight("f0", date(2, 1)),
	}))

	got, err := store.GetByID(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.RankA.Position)
	assert.Nil(t, got.RankB)
	assert.Equal(t, 10.0, *got.RollingA[0])
	assert.Nil(t, got.RollingB[0])

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"f1", "f0", "f2"}, []string{all[0].FightID, all[1].FightID, all[2].FightID})
}

func TestProcessedFightStore_UpsertReplaces(t *testing.T) {
	store := NewProcessedFightStore()
	ctx := context.Background()

	require.NoError(t, store.UpsertBulk(ctx, []*domain.ProcessedFight{testFight("f1", date(1, 1))}))
	updated := testFight("f1", date(1, 1))
	updated.RunID = "run-2"
	updated.RollingA = []*float64{ptr(12.5)}
	require.NoError(t, store.UpsertBulk(ctx, []*domain.ProcessedFight{updated}))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "run-2", all[0].RunID)
	assert.Equal(t, 12.5, *all[0].RollingA[0])
}

func TestProcessedFightStore_CopiesOnWrite(t *testing.T) {
	store := NewProcessedFightStore()
	ctx := context.Background()

	f := testFight("f1", date(1, 1))
	require.NoError(t, store.UpsertBulk(ctx, []*domain.ProcessedFight{f}))
	*f.RollingA[0] = 99
	f.RankA.Position = 1

	got, err := store.GetByID(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, *got.RollingA[0])
	assert.Equal(t, 3, got.RankA.Position)
}

func TestProcessedFightStore_Errors(t *testing.T) {
	store := NewProcessedFightStore()
	ctx := context.Background()

	_, err := store.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	bad := testFight("", date(1, 1))
	assert.ErrorIs(t, store.UpsertBulk(ctx, []*domain.ProcessedFight{testFight("ok", date(1, 1)), bad}), storage.ErrInvalidInput)

	misaligned := testFight("f1", date(1, 1))
	misaligned.RollingB = nil
	assert.ErrorIs(t, store.UpsertBulk(ctx, []*domain.ProcessedFight{misaligned}), storage.ErrInvalidInput)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "a rejected batch writes nothing")
}

func TestFeatureStore_InsertAndGet(t *testing.T) {
	store := NewFeatureStore()
	ctx := context.Background()

	points := []*domain.FighterFeaturePoint{
		{FightID: "f2", FighterID: "A", Side: domain.SideA, FightDate: date(2, 1), Stat: "takedowns_landed", Window: 3, Value: ptr(1.0), PriorFights: 1},
		{FightID: "f2", FighterID: "A", Side: domain.SideA, FightDate: date(2, 1), Stat: "strikes_landed", Window: 3, Value: ptr(10.0), PriorFights: 1},
		{FightID: "f1", FighterID: "A", Side: domain.SideA, FightDate: date(1, 1), Stat: "strikes_landed", Window: 3},
		{FightID: "f1", FighterID: "B", Side: domain.SideB, FightDate: date(1, 1), Stat: "strikes_landed", Window: 3},
	}
	require.NoError(t, store.InsertBulk(ctx, points))

	got, err := store.GetByFighter(ctx, "A")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "f1", got[0].FightID)
	assert.Nil(t, got[0].Value)
	assert.Equal(t, "strikes_landed", got[1].Stat)
	assert.Equal(t, "takedowns_landed", got[2].Stat)

	none, err := store.GetByFighter(ctx, "Z")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFeatureStore_ReinsertCollapses(t *testing.T) {
	store := NewFeatureStore()
	ctx := context.Background()

	p := &domain.FighterFeaturePoint{FightID: "f1", FighterID: "A", FightDate: date(1, 1), Stat: "s", Window: 2, Value: ptr(1.0)}
	require.NoError(t, store.InsertBulk(ctx, []*domain.FighterFeaturePoint{p}))
	p2 := *p
	p2.Value = ptr(2.0)
	require.NoError(t, store.InsertBulk(ctx, []*domain.FighterFeaturePoint{&p2}))

	got, err := store.GetByFighter(ctx, "A")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2.0, *got[0].Value)
}

func TestFeatureStore_InvalidInput(t *testing.T) {
	store := NewFeatureStore()
	err := store.InsertBulk(context.Background(), []*domain.FighterFeaturePoint{{FightID: "f1", FighterID: "A", Stat: "s", Window: 0}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
	assert.NoError(t, store.InsertBulk(context.Background(), nil))
}

func TestRunStore(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	run := &domain.PipelineRun{RunID: "r1", RowsWritten: 5, OutputSHA256: "abc"}
	require.NoError(t, store.Insert(ctx, run))
	assert.ErrorIs(t, store.Insert(ctx, run), storage.ErrDuplicateKey)
	assert.ErrorIs(t, store.Insert(ctx, &domain.PipelineRun{}), storage.ErrInvalidInput)

	got, err := store.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 5, got.RowsWritten)
	assert.Equal(t, 1, store.Len())

	_, err = store.GetByID(ctx, "r2")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
